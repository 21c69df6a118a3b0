package http

import (
	"io"
	"net/http"
	"strings"
	"sync"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/cache"
	"huddle/pkg/errors"
	"huddle/pkg/validation"

	"github.com/gin-gonic/gin"
)

// PipelineFactory builds a fresh avatar pipeline for one user session.
type PipelineFactory func() ports.ProfilePipeline

type ProfileHandler struct {
	factory PipelineFactory
	blobs   ports.BlobStore
	ids     ports.IdentityStore
	records ports.DirectoryRecordStore
	cache   *cache.Cache

	maxUploadBytes int64

	mu        sync.Mutex
	pipelines map[domain.UserID]ports.ProfilePipeline
}

func NewProfileHandler(
	factory PipelineFactory,
	blobs ports.BlobStore,
	ids ports.IdentityStore,
	records ports.DirectoryRecordStore,
	recordCache *cache.Cache,
	maxUploadBytes int64,
) *ProfileHandler {
	return &ProfileHandler{
		factory:        factory,
		blobs:          blobs,
		ids:            ids,
		records:        records,
		cache:          recordCache,
		maxUploadBytes: maxUploadBytes,
		pipelines:      make(map[domain.UserID]ports.ProfilePipeline),
	}
}

func (h *ProfileHandler) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	avatar := router.Group("/api/v1/profile/avatar")
	avatar.Use(auth)
	{
		avatar.POST("/preview", h.LoadPreview)
		avatar.POST("/crop", h.CropPreview)
		avatar.POST("/commit", h.Commit)
		avatar.POST("/reset", h.Reset)
		avatar.GET("", h.PipelineState)
	}

	profile := router.Group("/api/v1/profile")
	profile.Use(auth)
	{
		profile.PUT("/display_name", h.UpdateDisplayName)
	}

	users := router.Group("/api/v1/users")
	users.Use(auth)
	{
		users.GET("/:uid", h.GetDirectoryRecord)
	}

	// Blob serving is public; avatar URLs are embedded in channel records
	// visible to everyone.
	router.GET("/avatars/user/:uid", h.ServeAvatar)
}

// pipeline returns the caller's avatar pipeline, creating one on first
// use. One pipeline per user; it lives until reset.
func (h *ProfileHandler) pipeline(uid domain.UserID) ports.ProfilePipeline {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.pipelines[uid]
	if !ok {
		p = h.factory()
		h.pipelines[uid] = p
	}
	return p
}

func (h *ProfileHandler) LoadPreview(c *gin.Context) {
	uid := currentUserID(c)

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxUploadBytes+1))
	if err != nil {
		c.Error(errors.Wrap(err, errors.ErrCodeValidation, "failed to read upload", http.StatusBadRequest))
		return
	}
	if err := validation.ValidateUploadSize(int64(len(data)), h.maxUploadBytes); err != nil {
		c.Error(err)
		return
	}

	if err := h.pipeline(uid).LoadPreview(c.Request.Context(), data); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stage": h.pipeline(uid).Stage().String()})
}

func (h *ProfileHandler) CropPreview(c *gin.Context) {
	uid := currentUserID(c)

	var region domain.CropRegion
	if err := c.BindJSON(&region); err != nil {
		c.Error(errors.New(errors.ErrCodeValidation, "invalid request format", http.StatusBadRequest))
		return
	}

	if err := h.pipeline(uid).CropPreview(c.Request.Context(), region); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stage": h.pipeline(uid).Stage().String()})
}

func (h *ProfileHandler) Commit(c *gin.Context) {
	uid := currentUserID(c)

	result, err := h.pipeline(uid).Commit(c.Request.Context(), uid)
	if err != nil {
		c.Error(err)
		return
	}

	// A committed avatar invalidates the cached directory record.
	h.cache.Delete(string(uid))

	response := gin.H{
		"stage":  h.pipeline(uid).Stage().String(),
		"avatar": result.AvatarURL,
	}
	if result.RecordErr != nil {
		response["record_error"] = result.RecordErr.Error()
	}

	c.JSON(http.StatusOK, response)
}

func (h *ProfileHandler) Reset(c *gin.Context) {
	uid := currentUserID(c)
	h.pipeline(uid).Reset()
	c.JSON(http.StatusOK, gin.H{"stage": domain.StageIdle.String()})
}

func (h *ProfileHandler) PipelineState(c *gin.Context) {
	uid := currentUserID(c)
	p := h.pipeline(uid)

	c.JSON(http.StatusOK, gin.H{
		"stage":    p.Stage().String(),
		"progress": p.Progress(),
	})
}

type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=50"`
}

func (h *ProfileHandler) UpdateDisplayName(c *gin.Context) {
	uid := currentUserID(c)

	var req UpdateDisplayNameRequest
	if err := c.BindJSON(&req); err != nil {
		c.Error(errors.New(errors.ErrCodeValidation, "invalid request format", http.StatusBadRequest))
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if err := validation.ValidateDisplayName(name); err != nil {
		c.Error(err)
		return
	}

	if err := h.ids.UpdateDisplayName(c.Request.Context(), uid, name); err != nil {
		c.Error(err)
		return
	}

	identity, err := h.ids.Get(c.Request.Context(), uid)
	if err != nil {
		c.Error(err)
		return
	}

	// The directory record mirrors the identity; a failure here is
	// reported the same way commit reports it, without rolling back.
	record := &domain.DirectoryRecord{Name: identity.DisplayName, AvatarURL: identity.AvatarURL}
	recordErr := h.records.Update(c.Request.Context(), uid, record)
	h.cache.Delete(string(uid))

	response := gin.H{"display_name": identity.DisplayName}
	if recordErr != nil {
		response["record_error"] = recordErr.Error()
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProfileHandler) GetDirectoryRecord(c *gin.Context) {
	uid := domain.UserID(c.Param("uid"))

	if cached, ok := h.cache.Get(string(uid)); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	record, err := h.records.Get(c.Request.Context(), uid)
	if err != nil {
		c.Error(err)
		return
	}

	h.cache.Set(string(uid), record)
	c.JSON(http.StatusOK, record)
}

func (h *ProfileHandler) ServeAvatar(c *gin.Context) {
	uid := c.Param("uid")

	blob, err := h.blobs.Get(c.Request.Context(), "avatars/user/"+uid)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, blob.Data)
}
