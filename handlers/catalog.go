package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/culturequest/culturequest/backend/go-services/internal/contributors"
	"github.com/culturequest/culturequest/backend/go-services/internal/leaderboard"
	"github.com/culturequest/culturequest/backend/go-services/internal/learners"
	"github.com/culturequest/culturequest/backend/go-services/internal/topics"
	"github.com/culturequest/culturequest/backend/go-services/pkg/logger"
)

// CatalogHandler serves the read-side catalog: contributors, topics and
// learner profiles. Learner writes also refresh the leaderboard.
type CatalogHandler struct {
	contributors contributors.Repository
	topics       topics.Repository
	learners     learners.Repository
	board        *leaderboard.Service
}

func NewCatalogHandler(ctr contributors.Repository, top topics.Repository, lrn learners.Repository, board *leaderboard.Service) *CatalogHandler {
	return &CatalogHandler{contributors: ctr, topics: top, learners: lrn, board: board}
}

func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	ct := rg.Group("/contributors")
	ct.POST("", h.CreateContributor)
	ct.GET("", h.ListContributors)
	ct.GET("/:id", h.GetContributor)

	tp := rg.Group("/topics")
	tp.POST("", h.CreateTopic)
	tp.GET("", h.ListTopics)
	tp.GET("/:id", h.GetTopic)

	ln := rg.Group("/learners")
	ln.POST("", h.UpsertLearner)
	ln.GET("", h.ListLearners)
	ln.GET("/:id", h.GetLearner)
	ln.PUT("/:id/xp", h.SetLearnerXP)
}

func (h *CatalogHandler) CreateContributor(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		FullName string `json:"fullName" binding:"required"`
		Bio      string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctr := &contributors.Contributor{Email: req.Email, FullName: req.FullName, Bio: req.Bio, IsActive: true}
	if err := h.contributors.Create(c.Request.Context(), ctr); err != nil {
		logger.Errorf("create contributor failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ctr)
}

func (h *CatalogHandler) ListContributors(c *gin.Context) {
	out, err := h.contributors.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetContributor(c *gin.Context) {
	ctr, err := h.contributors.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, contributors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contributor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ctr)
}

func (h *CatalogHandler) CreateTopic(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := &topics.Topic{Name: req.Name, Description: req.Description}
	if err := h.topics.Create(c.Request.Context(), t); err != nil {
		logger.Errorf("create topic failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *CatalogHandler) ListTopics(c *gin.Context) {
	out, err := h.topics.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetTopic(c *gin.Context) {
	t, err := h.topics.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, topics.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "topic not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpsertLearner creates or updates a learner profile and mirrors the XP
// onto the leaderboard.
func (h *CatalogHandler) UpsertLearner(c *gin.Context) {
	var req struct {
		ID       string `json:"id"`
		Username string `json:"username" binding:"required"`
		TotalXP  int    `json:"totalXp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.learners.Upsert(c.Request.Context(), &learners.Learner{ID: req.ID, Username: req.Username, TotalXP: req.TotalXP})
	if err != nil {
		logger.Errorf("upsert learner failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.board != nil {
		if err := h.board.UpsertScore(c.Request.Context(), l); err != nil {
			logger.Warnf("leaderboard update failed for learner %s: %v", l.ID, err)
		}
	}
	c.JSON(http.StatusCreated, l)
}

func (h *CatalogHandler) ListLearners(c *gin.Context) {
	out, err := h.learners.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetLearner(c *gin.Context) {
	l, err := h.learners.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, learners.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "learner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, l)
}

// SetLearnerXP replaces a learner's XP total and refreshes their ranking.
func (h *CatalogHandler) SetLearnerXP(c *gin.Context) {
	var req struct {
		TotalXP int `json:"totalXp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := h.learners.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, learners.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "learner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	l.TotalXP = req.TotalXP
	l, err = h.learners.Upsert(c.Request.Context(), l)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.board != nil {
		if err := h.board.UpsertScore(c.Request.Context(), l); err != nil {
			logger.Warnf("leaderboard update failed for learner %s: %v", l.ID, err)
		}
	}
	c.JSON(http.StatusOK, l)
}
