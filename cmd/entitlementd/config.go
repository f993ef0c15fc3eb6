package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// config holds the service configuration, loaded from environment
// variables (optionally via a .env file).
type config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Identity service
	ProjectURL     string `mapstructure:"PROJECT_URL"`
	ServiceRoleKey string `mapstructure:"SERVICE_ROLE_KEY"`

	// Payment provider
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PriceStarter        string `mapstructure:"PRICE_STARTER"`
	PricePro            string `mapstructure:"PRICE_PRO"`
	PricePlus           string `mapstructure:"PRICE_PLUS"`

	// Receipt pipeline
	IAPBypassVerify bool `mapstructure:"IAP_BYPASS_VERIFY"`

	// Profile persistence: supabase | postgres | redis | firestore | memory
	ProfileStore       string `mapstructure:"PROFILE_STORE"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	FirestoreProjectID string `mapstructure:"FIRESTORE_PROJECT_ID"`
}

var configKeys = []string{
	"SERVER_PORT", "LOG_LEVEL",
	"PROJECT_URL", "SERVICE_ROLE_KEY",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"PRICE_STARTER", "PRICE_PRO", "PRICE_PLUS",
	"IAP_BYPASS_VERIFY",
	"PROFILE_STORE", "DATABASE_URL", "REDIS_ADDR", "FIRESTORE_PROJECT_ID",
}

// loadConfig reads configuration from environment variables.
func loadConfig() (config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PROFILE_STORE", "supabase")
	viper.AutomaticEnv()

	// Bind environment variables explicitly so they appear in Unmarshal
	for _, key := range configKeys {
		_ = viper.BindEnv(key)
	}

	var cfg config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.ServiceRoleKey == "" {
		return cfg, fmt.Errorf("SERVICE_ROLE_KEY is required")
	}
	if cfg.ProjectURL == "" {
		return cfg, fmt.Errorf("PROJECT_URL is required")
	}
	return cfg, nil
}
