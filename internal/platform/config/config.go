package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration. Everything comes from the
// environment so main stays lean.
type Config struct {
	Addr string

	// Policy knobs; thresholds are policy constants but must be tunable
	// without a rebuild.
	ConfidenceThreshold    float64
	IdentityMatchThreshold float64

	// PostgresURL switches the case store from in-memory to Postgres when set.
	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig

	// ClerkJWTKey signs/validates clerk tokens for HITL endpoints.
	ClerkJWTKey string
	// AdminToken guards the /admin surface.
	AdminToken string
}

// RedisConfig configures the optional canonical-address cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit mirror.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether an audit mirror broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:                   envOr("MELDEFLOW_ADDR", ":8080"),
		ConfidenceThreshold:    envFloat("MELDEFLOW_CONFIDENCE_THRESHOLD", 0.8),
		IdentityMatchThreshold: envFloat("MELDEFLOW_IDENTITY_THRESHOLD", 0.9),
		PostgresURL:            os.Getenv("MELDEFLOW_POSTGRES_URL"),
		ClerkJWTKey:            envOr("MELDEFLOW_CLERK_JWT_KEY", "dev-secret-key-change-in-production"),
		AdminToken:             os.Getenv("MELDEFLOW_ADMIN_TOKEN"),
		Redis: RedisConfig{
			URL:          os.Getenv("MELDEFLOW_REDIS_URL"),
			PoolSize:     envInt("MELDEFLOW_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("MELDEFLOW_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: envOr("MELDEFLOW_AUDIT_TOPIC", "meldeflow.audit"),
		},
	}
	if brokers := os.Getenv("MELDEFLOW_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
