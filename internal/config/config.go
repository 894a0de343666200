package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	PublicURL   string `mapstructure:"PUBLIC_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Remote admin backend. The token never leaves this process.
	AdminAPIURL   string `mapstructure:"ADMIN_API_URL"`
	AdminAPIToken string `mapstructure:"ADMIN_API_TOKEN"`

	// Redis (optional). When unset, rate-limit state falls back to memory
	// and does not survive a restart.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Page title fallback when the admin backend settings call fails.
	PageTitle string `mapstructure:"PAGE_TITLE"`
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}
