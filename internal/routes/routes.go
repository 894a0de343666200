package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/handlers"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/middleware"
)

// RegisterEventRoutes configures the public feed and voting routes
func RegisterEventRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	r.GET("/events", middleware.ReadRateLimit(), h.GetEvents)
	r.GET("/events/:id/vote", h.GetVoteStatus)
	r.POST("/events/:id/vote", middleware.VoteRateLimit(), h.ToggleVote)
	r.GET("/votes", h.GetVotes)
}

// RegisterFeedbackRoutes configures the feedback form routes
func RegisterFeedbackRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	r.POST("/feedback", middleware.WriteRateLimit(), h.SubmitFeedback)
	r.GET("/feedback/state", h.GetFeedbackState)
	r.POST("/feedback/start", h.StartFeedbackForm)
}

// RegisterNewsletterRoutes configures newsletter subscribe/unsubscribe
func RegisterNewsletterRoutes(r *gin.RouterGroup, h *handlers.Handler) {
	r.POST("/newsletter/subscribe", middleware.WriteRateLimit(), h.Subscribe)
	r.POST("/newsletter/unsubscribe", middleware.WriteRateLimit(), h.Unsubscribe)
}
