package http

import (
	"net/http"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/errors"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directory ports.DirectoryService
	ids       ports.IdentityStore
}

func NewDirectoryHandler(directory ports.DirectoryService, ids ports.IdentityStore) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		ids:       ids,
	}
}

func (h *DirectoryHandler) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	api := router.Group("/api/v1/channels")
	api.Use(auth)
	{
		api.GET("", h.ListChannels)
		api.POST("", h.CreateChannel)
		api.POST("/:id/select", h.SelectChannel)
	}
}

type CreateChannelRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Details string `json:"details" binding:"required,max=500"`
}

func (h *DirectoryHandler) ListChannels(c *gin.Context) {
	channels := h.directory.Channels()

	response := gin.H{"channels": channels}
	if active, ok := h.directory.ActiveChannel(); ok {
		response["active_id"] = active
	}

	c.JSON(http.StatusOK, response)
}

func (h *DirectoryHandler) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.New(errors.ErrCodeValidation, "invalid request format", http.StatusBadRequest))
		return
	}

	uid := currentUserID(c)
	identity, err := h.ids.Get(c.Request.Context(), uid)
	if err != nil {
		c.Error(err)
		return
	}

	channel, err := h.directory.CreateChannel(c.Request.Context(), req.Name, req.Details, identity)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, channel)
}

func (h *DirectoryHandler) SelectChannel(c *gin.Context) {
	id := domain.ChannelID(c.Param("id"))
	if err := h.directory.SelectChannel(id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"active_id": id})
}

// currentUserID reads the uid set by the auth middleware.
func currentUserID(c *gin.Context) domain.UserID {
	if v, ok := c.Get("user_id"); ok {
		if uid, ok := v.(domain.UserID); ok {
			return uid
		}
	}
	return ""
}
