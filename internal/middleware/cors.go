package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GauthierNelkinsky/shipshipship-template-default/internal/config"
)

func CORSMiddleware() gin.HandlerFunc {
	allowed := []string{"http://localhost:5173"}
	if config.AppConfig.FrontendURL != "" {
		allowed = append([]string{config.AppConfig.FrontendURL}, allowed...)
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
