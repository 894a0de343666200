package handlers

import (
	"context"
	"time"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/config"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/models"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/store"
	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

const (
	settingsCacheKey = "settings"
	settingsCacheTTL = 60 * time.Second
)

// loadSettings returns the page settings, cached briefly. A settings
// failure never takes the page down: the fallback carries the configured
// title and leaves the newsletter off.
func (h *Handler) loadSettings(ctx context.Context) models.Settings {
	var settings models.Settings
	if err := store.CacheGet(ctx, h.Store, settingsCacheKey, &settings); err == nil {
		return settings
	}

	settings, err := h.Client.GetSettings(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to fetch settings, using fallback")
		return models.Settings{Title: config.AppConfig.PageTitle}
	}

	if err := store.CacheSet(ctx, h.Store, settingsCacheKey, settings, settingsCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache settings")
	}
	return settings
}
