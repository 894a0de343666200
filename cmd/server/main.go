package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/api"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/config"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/feed"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/handlers"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/middleware"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/routes"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/session"
	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/store"
	"github.com/GauthierNelkinsky/shipshipship-template-default/pkg/logger"
)

func main() {
	// 1. Load config & initialize logger
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting changelog page service...")

	if config.AppConfig.AdminAPIURL == "" {
		logger.Fatal().Msg("ADMIN_API_URL is required")
	}

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Store: Redis when configured, otherwise in-process memory.
	// Without Redis the feedback rate-limit record does not survive a
	// restart.
	var kv store.Store
	var redisStore *store.RedisStore
	if config.AppConfig.RedisAddr != "" {
		rs, err := store.NewRedisStore(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Redis, falling back to in-memory store")
			kv = store.NewMemoryStore()
		} else {
			redisStore = rs
			kv = rs
		}
	} else {
		kv = store.NewMemoryStore()
	}

	// 3. Wire collaborators
	client := api.NewClient(config.AppConfig.AdminAPIURL, config.AppConfig.AdminAPIToken)
	loader := feed.NewLoader(client, feed.WithCacheTTL(30*time.Second))
	sessions := session.NewManager(client, kv, loader)
	h := handlers.NewHandler(client, kv, loader, sessions)

	// 4. Router
	r := gin.New()
	r.Use(middleware.VisitorIdentity())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware())

	apiGroup := r.Group("/api")
	{
		routes.RegisterEventRoutes(apiGroup, h)
		routes.RegisterFeedbackRoutes(apiGroup, h)
		routes.RegisterNewsletterRoutes(apiGroup, h)
	}

	r.GET("/sitemap.xml", h.GenerateSitemap)
	r.GET("/robots.txt", handlers.GenerateRobotsTXT)

	r.GET("/health", func(c *gin.Context) {
		redisStatus := "not configured"
		if redisStore != nil {
			redisStatus = "ok"
			if err := redisStore.Ping(c.Request.Context()); err != nil {
				redisStatus = "error"
			}
		}

		status := "ok"
		if redisStatus == "error" {
			status = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   status,
			"sessions": sessions.Len(),
			"checks": gin.H{
				"redis": redisStatus,
			},
		})
	})

	// 5. Start server with graceful shutdown
	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Forced shutdown")
	}
	logger.Info().Msg("Server stopped")
}
