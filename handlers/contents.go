package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/culturequest/culturequest/backend/go-services/internal/content"
	"github.com/culturequest/culturequest/backend/go-services/internal/contributors"
	"github.com/culturequest/culturequest/backend/go-services/internal/moderation"
	"github.com/culturequest/culturequest/backend/go-services/internal/storage"
	"github.com/culturequest/culturequest/backend/go-services/internal/topics"
	"github.com/culturequest/culturequest/backend/go-services/pkg/logger"
)

// SubmitRequest is the payload for a new lesson submission.
type SubmitRequest struct {
	ContributorID string `json:"contributorId" binding:"required"`
	TopicID       string `json:"topicId" binding:"required"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}

// ContentHandler holds dependencies
type ContentHandler struct {
	svc   *moderation.Service
	media *storage.MediaStore // optional, video endpoints return 503 when nil
}

func NewContentHandler(svc *moderation.Service, media *storage.MediaStore) *ContentHandler {
	return &ContentHandler{svc: svc, media: media}
}

// Register routes under /api/contents. The moderator middleware chain guards
// the manual review actions; read and submit endpoints stay open.
func (h *ContentHandler) Register(rg *gin.RouterGroup, moderator ...gin.HandlerFunc) {
	g := rg.Group("/contents")
	g.POST("", h.Submit)
	g.GET("/queue", h.Queue)
	g.GET("/search", h.Search)
	g.GET("/contributor/:id", h.ListByContributor)
	g.GET("/topic/:id", h.ListByTopic)
	g.GET("/:id", h.Get)
	g.GET("/:id/moderation", h.GetModeration)
	g.GET("/:id/video", h.GetVideo)
	g.POST("/:id/video", h.UploadVideo)

	m := g.Group("")
	m.Use(moderator...)
	m.PUT("/:id/approve", h.Approve)
	m.PUT("/:id/reject", h.Reject)
}

// Submit accepts a lesson draft, screens it and returns the stored content
// with its post-screening status.
func (h *ContentHandler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.svc.Submit(c.Request.Context(), req.ContributorID, req.TopicID, req.Title, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrEmptyTitle), errors.Is(err, moderation.ErrEmptyBody):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, contributors.ErrNotFound), errors.Is(err, topics.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			logger.Errorf("submit failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get returns a single content item.
func (h *ContentHandler) Get(c *gin.Context) {
	item, err := h.svc.GetContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

// GetModeration returns the screening verdict for a content item.
// 404 while the item is still awaiting screening.
func (h *ContentHandler) GetModeration(c *gin.Context) {
	res, err := h.svc.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, moderation.ErrResultNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no moderation result yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Queue lists everything waiting on a moderator decision.
func (h *ContentHandler) Queue(c *gin.Context) {
	items, err := h.svc.Queue(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Search performs a case-insensitive title keyword search (?keyword=).
func (h *ContentHandler) Search(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword query parameter required"})
		return
	}
	items, err := h.svc.SearchTitle(c.Request.Context(), keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListByContributor returns a contributor's submissions.
func (h *ContentHandler) ListByContributor(c *gin.Context) {
	items, err := h.svc.ListByContributor(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListByTopic returns all content under a topic.
func (h *ContentHandler) ListByTopic(c *gin.Context) {
	items, err := h.svc.ListByTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, topics.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Approve promotes pending content to APPROVED.
// 409 when the item already left the review queue.
func (h *ContentHandler) Approve(c *gin.Context) {
	h.transition(c, h.svc.ApproveManually)
}

// Reject moves pending content to REJECTED.
func (h *ContentHandler) Reject(c *gin.Context) {
	h.transition(c, h.svc.RejectManually)
}

func (h *ContentHandler) transition(c *gin.Context, do func(ctx context.Context, id string) (*content.Content, error)) {
	item, err := do(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		case errors.Is(err, content.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "only pending content can be moderated"})
		default:
			logger.Errorf("manual transition failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// UploadVideo stores a lesson video in the media store and attaches its key.
func (h *ContentHandler) UploadVideo(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}
	id := c.Param("id")
	if _, err := h.svc.GetContent(c.Request.Context(), id); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file form field required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	key := "lessons/" + id + "/" + fh.Filename
	contentType := fh.Header.Get("Content-Type")
	if err := h.media.Upload(c.Request.Context(), key, f, fh.Size, contentType); err != nil {
		logger.Errorf("video upload failed for content %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	if err := h.svc.SetVideoKey(c.Request.Context(), id, key); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"videoKey": key})
}

// GetVideo redirects to a short-lived presigned URL for the lesson video.
func (h *ContentHandler) GetVideo(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}
	item, err := h.svc.GetContent(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if item.VideoKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no video attached"})
		return
	}
	url, err := h.media.PresignedURL(c.Request.Context(), item.VideoKey, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, url)
}
