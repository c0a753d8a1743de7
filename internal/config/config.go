package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	IsTestMode bool   `env:"TEST_MODE" envDefault:"false"`
	AppName    string `env:"APP_NAME" envDefault:"herbarium"`

	Port           int      `env:"PORT" envDefault:"9090"`
	APIPrefix      string   `env:"API_PREFIX" envDefault:"/api/v1"`
	BaseURL        string   `env:"BASE_URL,required"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`

	Secret string `env:"SECRET,required"`

	PostgresqlURL string `env:"POSTGRESQL_URL,required"`
	RedisURL      string `env:"REDIS_URL,required"`
	RabbitmqURL   string `env:"RABBITMQ_URL,required"`

	// TokenStore selects the token record backend, postgresql or redis.
	TokenStore string `env:"TOKEN_STORE" envDefault:"postgresql"`

	RabbitmqTokenNotificationExchange   string `env:"RABBITMQ_TOKEN_NOTIFICATION_EXCHANGE" envDefault:"token.notifications"`
	RabbitmqTokenNotificationRoutingKey string `env:"RABBITMQ_TOKEN_NOTIFICATION_ROUTING_KEY" envDefault:"token-notification"`
	RabbitmqTokenNotificationQueue      string `env:"RABBITMQ_TOKEN_NOTIFICATION_QUEUE" envDefault:"token-notification"`

	BcryptHasherCost int `env:"BCRYPT_HASHER_COST" envDefault:"10"`

	AwsRegion                     string `env:"AWS_REGION" envDefault:"eu-west-1"`
	AwsAccessKey                  string `env:"AWS_ACCESS_KEY,required"`
	AwsSecretKey                  string `env:"AWS_SECRET_KEY,required"`
	AwsEmailSender                string `env:"AWS_EMAIL_SENDER,required"`
	AwsEmailVerificationTemplate  string `env:"AWS_EMAIL_VERIFICATION_TEMPLATE" envDefault:"herbarium-verify-email"`
	AwsEmailPasswordResetTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE" envDefault:"herbarium-reset-password"`

	TokenSweepPeriod time.Duration `env:"TOKEN_SWEEP_PERIOD" envDefault:"1h"`
}

const (
	TokenStorePostgresql = "postgresql"
	TokenStoreRedis      = "redis"
)

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}
	if cfg.TokenStore != TokenStorePostgresql && cfg.TokenStore != TokenStoreRedis {
		return nil, fmt.Errorf("invalid TOKEN_STORE value: %q", cfg.TokenStore)
	}
	return cfg, nil
}
