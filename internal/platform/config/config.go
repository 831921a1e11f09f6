// Package config builds process configuration from environment variables so
// main stays lean. Every external credential, including the BorderConnect
// company key, is threaded from here into constructors rather than read from
// ambient process state at call sites.
package config

import (
	"os"
	"strings"
	"time"
)

// BorderConnect holds the customs gateway credentials and endpoint.
type BorderConnect struct {
	BaseURL    string
	APIKey     string
	CompanyKey string
	Timeout    time.Duration
}

// Kafka configures the lifecycle event publisher. Empty Brokers disables it.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Redis configures draft checkpointing. Empty URL disables it.
type Redis struct {
	URL      string
	DraftTTL time.Duration
}

// Server is the top-level process configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	JWTSigningKey string
	WebhookKey    string
	IntakeBaseURL string
	IntakeTimeout time.Duration
	BorderConnect BorderConnect
	Kafka         Kafka
	Redis         Redis
}

// FromEnv reads the process configuration, applying development defaults for
// everything except credentials.
func FromEnv() Server {
	cfg := Server{
		Addr:          getenv("BORDERLINK_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("BORDERLINK_POSTGRES_DSN"),
		JWTSigningKey: getenv("BORDERLINK_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		WebhookKey:    os.Getenv("BORDERLINK_WEBHOOK_KEY"),
		IntakeBaseURL: getenv("BORDERLINK_INTAKE_URL", "http://localhost:8000"),
		IntakeTimeout: getdur("BORDERLINK_INTAKE_TIMEOUT", 60*time.Second),
		BorderConnect: BorderConnect{
			BaseURL:    getenv("BORDERCONNECT_URL", "https://borderconnect.com"),
			APIKey:     os.Getenv("BORDERCONNECT_API_KEY"),
			CompanyKey: os.Getenv("BORDERCONNECT_COMPANY_KEY"),
			Timeout:    getdur("BORDERCONNECT_TIMEOUT", 30*time.Second),
		},
		Kafka: Kafka{
			Topic: getenv("BORDERLINK_KAFKA_TOPIC", "manifest-lifecycle"),
		},
		Redis: Redis{
			URL:      os.Getenv("BORDERLINK_REDIS_URL"),
			DraftTTL: getdur("BORDERLINK_DRAFT_TTL", 24*time.Hour),
		},
	}
	if brokers := os.Getenv("BORDERLINK_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
