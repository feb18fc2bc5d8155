package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration for the review service.
type Server struct {
	Addr string

	// SamplePath points at the pre-generated review sample. The process
	// cannot start without it.
	SamplePath string

	// VerdictBackend selects verdict persistence: "sqlite" (default,
	// durable), "postgres", or "memory" (ephemeral; clients are told to
	// export regularly).
	VerdictBackend string
	VerdictsDir    string
	PostgresURL    string

	// SessionBackend selects session state storage: "memory" (default)
	// or "redis" for multi-instance deployments.
	SessionBackend string
	Redis          RedisConfig

	JWTSigningKey string
	SessionTTL    time.Duration

	// AdminToken guards the aggregate progress/backup endpoints. Empty
	// disables the admin surface entirely.
	AdminToken string
}

// RedisConfig captures connection tuning for the optional Redis session
// store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays
// lean.
func FromEnv() Server {
	cfg := Server{
		Addr:           getEnv("CITADEL_ADDR", ":8080"),
		SamplePath:     getEnv("CITADEL_SAMPLE_PATH", "data/review_sample_200.json"),
		VerdictBackend: getEnv("CITADEL_VERDICT_BACKEND", "sqlite"),
		VerdictsDir:    getEnv("CITADEL_VERDICTS_DIR", "data/verdicts"),
		PostgresURL:    os.Getenv("CITADEL_POSTGRES_URL"),
		SessionBackend: getEnv("CITADEL_SESSION_BACKEND", "memory"),
		JWTSigningKey:  getEnv("CITADEL_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:     getDuration("CITADEL_SESSION_TTL", 12*time.Hour),
		AdminToken:     os.Getenv("CITADEL_ADMIN_TOKEN"),
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("CITADEL_REDIS_URL"),
		PoolSize:     getInt("CITADEL_REDIS_POOL_SIZE", 10),
		MinIdleConns: getInt("CITADEL_REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getDuration("CITADEL_REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getDuration("CITADEL_REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getDuration("CITADEL_REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
