package middleware

import (
	"net/http"
	"strings"

	"huddle/internal/core/ports"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(sessions ports.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		uid, displayName, err := sessions.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		// Store user info in context
		c.Set("user_id", uid)
		c.Set("display_name", displayName)
		c.Next()
	}
}

func OptionalAuthMiddleware(sessions ports.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			if uid, displayName, err := sessions.ValidateToken(parts[1]); err == nil {
				c.Set("user_id", uid)
				c.Set("display_name", displayName)
			}
		}

		c.Next()
	}
}
