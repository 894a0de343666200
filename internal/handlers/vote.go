package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/vote"
)

// GetVoteStatus reports this visitor's membership for one event.
func (h *Handler) GetVoteStatus(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	sess := h.Sessions.Get(c.Request.Context(), visitorID(c))
	c.JSON(http.StatusOK, gin.H{"voted": sess.Votes.Voted(eventID)})
}

// ToggleVote flips this visitor's vote on one event. The backend's
// response is authoritative for both membership and count; a failure
// surfaces as a scoped message the page shows next to that event.
func (h *Handler) ToggleVote(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return
	}

	ctx := c.Request.Context()
	sess := h.Sessions.Get(ctx, visitorID(c))

	result, err := sess.Votes.Toggle(ctx, eventID)
	if err != nil {
		status := http.StatusBadGateway
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": vote.ErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"votes": result.Votes,
		"voted": result.Voted,
	})
}

// GetVotes returns the full membership set plus any per-event transient
// errors still on screen.
func (h *Handler) GetVotes(c *gin.Context) {
	sess := h.Sessions.Get(c.Request.Context(), visitorID(c))
	c.JSON(http.StatusOK, gin.H{
		"votes":  sess.Votes.Membership(),
		"errors": sess.Votes.Errors(),
	})
}
