package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every runtime setting the service reads. It is loaded once
// at startup and passed to the components that need it.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	SolanaRPC      string
	SolanaWS       string
	StablecoinMint string

	JWTSecret string
	Domain    string

	CircleAPIKey       string
	CircleEntitySecret string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	AllowedOrigins []string
}

var envKeys = []string{
	"PORT",
	"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT",
	"SOLANA_RPC", "SOLANA_WS", "STABLECOIN_MINT",
	"JWT_SECRET", "APP_DOMAIN",
	"CIRCLE_API_KEY", "CIRCLE_ENTITY_SECRET",
	"RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USER", "RABBITMQ_PASSWORD",
	"ALLOWED_ORIGINS",
}

// Load reads configuration from the environment (and an optional .env file)
// into a Config. It fails when a secret the service cannot run without is
// missing.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	// a local .env file is optional
	_ = v.ReadInConfig()

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("SOLANA_RPC", "https://api.mainnet-beta.solana.com")
	v.SetDefault("SOLANA_WS", "wss://api.mainnet-beta.solana.com")
	v.SetDefault("STABLECOIN_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	v.SetDefault("APP_DOMAIN", "m33t.app")
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	cfg := &Config{
		Port:               v.GetString("PORT"),
		DBHost:             v.GetString("DB_HOST"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBPort:             v.GetString("DB_PORT"),
		SolanaRPC:          v.GetString("SOLANA_RPC"),
		SolanaWS:           v.GetString("SOLANA_WS"),
		StablecoinMint:     v.GetString("STABLECOIN_MINT"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		Domain:             v.GetString("APP_DOMAIN"),
		CircleAPIKey:       v.GetString("CIRCLE_API_KEY"),
		CircleEntitySecret: v.GetString("CIRCLE_ENTITY_SECRET"),
		RabbitMQHost:       v.GetString("RABBITMQ_HOST"),
		RabbitMQPort:       v.GetString("RABBITMQ_PORT"),
		RabbitMQUser:       v.GetString("RABBITMQ_USER"),
		RabbitMQPassword:   v.GetString("RABBITMQ_PASSWORD"),
		AllowedOrigins:     splitOrigins(v.GetString("ALLOWED_ORIGINS")),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// splitOrigins parses the comma-separated ALLOWED_ORIGINS value.
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// RabbitMQConfigured reports whether RabbitMQ settings are present; the API
// runs without a broker, skipping event publication.
func (c *Config) RabbitMQConfigured() bool {
	return c.RabbitMQHost != ""
}
