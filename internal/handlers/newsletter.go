package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

type newsletterInput struct {
	Email string `json:"email" binding:"required,email"`
}

// Subscribe adds an email to the newsletter list. The endpoint is gated
// on the admin backend's newsletter_enabled setting.
func (h *Handler) Subscribe(c *gin.Context) {
	h.newsletter(c, h.Client.SubscribeToNewsletter, "Failed to subscribe. Please try again.")
}

// Unsubscribe removes an email from the newsletter list.
func (h *Handler) Unsubscribe(c *gin.Context) {
	h.newsletter(c, h.Client.UnsubscribeFromNewsletter, "Failed to unsubscribe. Please try again.")
}

func (h *Handler) newsletter(c *gin.Context, call func(ctx context.Context, email string) error, genericMsg string) {
	var input newsletterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email address is required"})
		return
	}

	ctx := c.Request.Context()

	if !h.loadSettings(ctx).NewsletterEnabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "The newsletter is currently disabled."})
		return
	}

	if err := call(ctx, input.Email); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
			return
		}
		logger.Error().Err(err).Msg("Newsletter request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": genericMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
