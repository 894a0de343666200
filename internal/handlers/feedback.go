package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/feedback"
)

// SubmitFeedback runs a submission through the guard. Empty fields are a
// silent no-op by contract, so they answer 204 rather than an error.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var input struct {
		Title       string `json:"title" binding:"max=200"`
		Description string `json:"description" binding:"max=5000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sess := h.Sessions.Get(ctx, visitorID(c))

	err := sess.Feedback.Submit(ctx, input.Title, input.Description)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"state":  sess.Feedback.State(),
		})
	case errors.Is(err, feedback.ErrEmptyFields):
		c.Status(http.StatusNoContent)
	default:
		var rl *feedback.RateLimitedError
		if errors.As(err, &rl) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": rl.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": feedback.ErrSubmitFailed.Error()})
	}
}

// GetFeedbackState returns the guard's display snapshot (success flag,
// last error, submission count).
func (h *Handler) GetFeedbackState(c *gin.Context) {
	sess := h.Sessions.Get(c.Request.Context(), visitorID(c))
	c.JSON(http.StatusOK, gin.H{"state": sess.Feedback.State()})
}

// StartFeedbackForm re-anchors the dwell-time clock when the visitor
// opens the form on an existing page session.
func (h *Handler) StartFeedbackForm(c *gin.Context) {
	sess := h.Sessions.Get(c.Request.Context(), visitorID(c))
	sess.Feedback.ResetFormStart()
	c.Status(http.StatusNoContent)
}
