package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration. Everything is env-driven so
// main stays lean; optional collaborators (Postgres, Redis, Kafka) fall back
// to in-memory implementations when unset.
type Config struct {
	Addr string

	// PostgresDSN enables the Postgres-backed stores when set.
	PostgresDSN string

	// RedisURL enables the oracle score cache when set.
	RedisURL string

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// OracleURL is the trust score oracle base URL.
	OracleURL      string
	OracleTimeout  time.Duration
	OracleCacheTTL time.Duration

	// CenterURL is the off-chain verification center base URL. CenterSecret
	// authenticates the center's decision callbacks.
	CenterURL    string
	CenterSecret string

	JWTSigningKey string

	AuditBuffer int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:           envOr("GIGGATE_ADDR", ":8080"),
		PostgresDSN:    os.Getenv("GIGGATE_POSTGRES_DSN"),
		RedisURL:       os.Getenv("GIGGATE_REDIS_URL"),
		KafkaTopic:     envOr("GIGGATE_KAFKA_AUDIT_TOPIC", "giggate.audit"),
		OracleURL:      os.Getenv("GIGGATE_ORACLE_URL"),
		OracleTimeout:  5 * time.Second,
		OracleCacheTTL: 5 * time.Minute,
		CenterURL:      os.Getenv("GIGGATE_CENTER_URL"),
		CenterSecret:   os.Getenv("GIGGATE_CENTER_SECRET"),
		JWTSigningKey:  envOr("GIGGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AuditBuffer:    256,
	}
	if brokers := os.Getenv("GIGGATE_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
