package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN       string `env:"DATABASE_DSN,required=true"`
	RabbitMQURL       string `env:"RABBITMQ_URL,required=true"`
	RedisURL          string `env:"REDIS_URL,required=true"`
	NotifyEndpointURL string `env:"NOTIFY_ENDPOINT_URL,required=true"`
	NotifyTimeoutSec  int    `env:"NOTIFY_TIMEOUT_SEC,default=5"`
	MaxRetries        int    `env:"MAX_RETRIES,default=3"`
	SweepIntervalSec  int    `env:"SWEEP_INTERVAL_SEC,default=30"`
	RateLimitPerSec   int    `env:"RATE_LIMIT_PER_SEC,default=100"`
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY,default=8"`
	APIPort           int    `env:"API_PORT,default=8080"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
	JWTSecret         string `env:"JWT_SECRET,required=true"`
	JWTTTLMinutes     int    `env:"JWT_TTL_MINUTES,default=720"`
	MinioEndpoint     string `env:"MINIO_ENDPOINT,required=true"`
	MinioAccessKey    string `env:"MINIO_ACCESS_KEY,required=true"`
	MinioSecretKey    string `env:"MINIO_SECRET_KEY,required=true"`
	MinioBucket       string `env:"MINIO_BUCKET,default=relay-media"`
	MinioUseSSL       bool   `env:"MINIO_USE_SSL,default=false"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
