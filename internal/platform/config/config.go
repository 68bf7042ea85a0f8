package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures server-level configuration. Values come from environment
// variables so main stays lean.
type Config struct {
	Addr          string
	LogLevel      string
	LogFormat     string
	JWTSigningKey string

	Redis RedisConfig
	Kafka KafkaConfig

	// ScoreCacheTTL bounds how long a public score may be served from cache
	// before the store is consulted again.
	ScoreCacheTTL time.Duration
}

// RedisConfig configures the optional Redis score cache. An empty URL
// disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event sink. Empty brokers
// disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load builds a Config from environment variables with development
// defaults.
func Load() Config {
	cfg := Config{
		Addr:          envOr("VOUCH_ADDR", ":8080"),
		LogLevel:      envOr("VOUCH_LOG_LEVEL", "info"),
		LogFormat:     envOr("VOUCH_LOG_FORMAT", "json"),
		JWTSigningKey: envOr("VOUCH_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Redis: RedisConfig{
			URL:          os.Getenv("VOUCH_REDIS_URL"),
			PoolSize:     envIntOr("VOUCH_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("VOUCH_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: envOr("VOUCH_KAFKA_AUDIT_TOPIC", "vouch.audit"),
		},
		ScoreCacheTTL: 5 * time.Minute,
	}
	if brokers := os.Getenv("VOUCH_KAFKA_BROKERS"); brokers != "" {
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

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
