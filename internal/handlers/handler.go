package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/feed"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/middleware"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/session"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/store"
)

// Handler carries the wired collaborators for the page endpoints.
type Handler struct {
	Client   *api.Client
	Store    store.Store
	Loader   *feed.Loader
	Sessions *session.Manager
}

func NewHandler(client *api.Client, st store.Store, loader *feed.Loader, sessions *session.Manager) *Handler {
	return &Handler{
		Client:   client,
		Store:    st,
		Loader:   loader,
		Sessions: sessions,
	}
}

// visitorID reads the identity set by the visitor middleware.
func visitorID(c *gin.Context) string {
	return c.GetString(middleware.VisitorKey)
}
