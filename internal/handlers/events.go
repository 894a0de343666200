package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

const voteRefreshTimeout = 10 * time.Second

// GetEvents returns everything the page template renders: settings, the
// five status buckets, and the derived timeline view. A successful load
// kicks off a vote-status refresh for this visitor's proposed events in
// the background so the page itself never waits on it.
func (h *Handler) GetEvents(c *gin.Context) {
	ctx := c.Request.Context()

	groups, err := h.Loader.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load events")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to load events. Please try again later.",
		})
		return
	}

	sess := h.Sessions.Get(ctx, visitorID(c))
	go func(ids []int) {
		refreshCtx, cancel := context.WithTimeout(context.Background(), voteRefreshTimeout)
		defer cancel()
		sess.Votes.Refresh(refreshCtx, ids)
	}(groups.ProposedIDs())

	c.JSON(http.StatusOK, gin.H{
		"settings": h.loadSettings(ctx),
		"events":   groups,
		"timeline": h.Loader.Timeline(),
		"votes":    sess.Votes.Membership(),
	})
}
