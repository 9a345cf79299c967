package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Abenetwolde/afalagi-telegram-bot/internal/models"
	"github.com/Abenetwolde/afalagi-telegram-bot/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ModerationHandler exposes the submission store over REST for non-chat
// moderation clients. Every handler is a direct store operation with no
// cross-request state.
type ModerationHandler struct {
	log *zap.Logger
}

func NewModerationHandler(log *zap.Logger) *ModerationHandler {
	return &ModerationHandler{log: log}
}

// ListSubmissions returns every submission with its answers.
func (h *ModerationHandler) ListSubmissions(c *gin.Context) {
	submissions, err := repository.ListAllSubmissions(c.Request.Context())
	if err != nil {
		h.log.Error("Error fetching submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// Approve moves a pending submission to approved.
func (h *ModerationHandler) Approve(c *gin.Context) {
	h.review(c, models.StatusApproved, "Submission approved")
}

// Reject moves a pending submission to rejected.
func (h *ModerationHandler) Reject(c *gin.Context) {
	h.review(c, models.StatusRejected, "Submission rejected")
}

// review applies a terminal status. Terminal submissions are never touched:
// the store only updates from pending, and an ineffective update reports 409.
func (h *ModerationHandler) review(c *gin.Context, status, message string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	changed, err := repository.SetSubmissionStatus(c.Request.Context(), uint(id), status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		h.log.Error("Error updating submission status",
			zap.Uint64("submission_id", id),
			zap.String("status", status),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if !changed {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission already reviewed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Stats returns submission totals for dashboards.
func (h *ModerationHandler) Stats(c *gin.Context) {
	total, err := repository.CountSubmissions(c.Request.Context(), "")
	if err != nil {
		h.log.Error("Error fetching stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	approved, err := repository.CountSubmissions(c.Request.Context(), models.StatusApproved)
	if err != nil {
		h.log.Error("Error fetching stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totalSubmissions":    total,
		"approvedSubmissions": approved,
	})
}
