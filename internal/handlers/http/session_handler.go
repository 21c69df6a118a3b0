package http

import (
	"net/http"
	"strings"

	"huddle/internal/core/ports"
	"huddle/pkg/errors"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}
}

type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=50"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=50"`
	Password    string `json:"password" binding:"required,max=128"`
}

func (h *SessionHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.New(errors.ErrCodeValidation, "invalid request format", http.StatusBadRequest))
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)

	identity, token, err := h.sessions.Register(c.Request.Context(), req.DisplayName, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"uid":          identity.UID,
		"display_name": identity.DisplayName,
		"avatar":       identity.AvatarURL,
		"token":        token,
	})
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.New(errors.ErrCodeValidation, "invalid request format", http.StatusBadRequest))
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)

	identity, token, err := h.sessions.Login(c.Request.Context(), req.DisplayName, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":          identity.UID,
		"display_name": identity.DisplayName,
		"avatar":       identity.AvatarURL,
		"token":        token,
	})
}
