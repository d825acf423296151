package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/culturequest/culturequest/backend/go-services/internal/leaderboard"
	"github.com/culturequest/culturequest/backend/go-services/internal/learners"
)

const defaultLeaderboardLimit = 10

// LeaderboardHandler serves XP ranking reads.
type LeaderboardHandler struct {
	board *leaderboard.Service
}

func NewLeaderboardHandler(board *leaderboard.Service) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

func (h *LeaderboardHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/leaderboard")
	g.GET("", h.Top)
	g.GET("/:learnerId", h.Rank)
}

// Top returns the highest-ranked learners (?limit=, default 10, max 100).
func (h *LeaderboardHandler) Top(c *gin.Context) {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	entries, err := h.board.Top(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Rank returns a single learner's position and XP.
func (h *LeaderboardHandler) Rank(c *gin.Context) {
	entry, err := h.board.Rank(c.Request.Context(), c.Param("learnerId"))
	if err != nil {
		switch {
		case errors.Is(err, learners.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "learner not found"})
		case errors.Is(err, leaderboard.ErrNotRanked):
			c.JSON(http.StatusNotFound, gin.H{"error": "learner not ranked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}
