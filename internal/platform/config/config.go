// Package config builds runtime configuration from environment variables so
// main stays lean. Missing optional backends (postgres, redis) fall back to
// in-process defaults rather than failing startup.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Vision   VisionConfig
	Policy   PolicyConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// PostgresConfig configures the attempt/decision/audit database. An empty
// DSN selects the in-memory stores.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the optional attempt cache. An empty URL disables
// caching entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// VisionConfig points at the face comparison subsystem.
type VisionConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PolicyConfig overrides individual threshold policy knobs. Zero values keep
// the calibrated defaults.
type PolicyConfig struct {
	BaseApprove   float64
	BaseReject    float64
	MaxRelaxation float64
	QualityRaise  float64
}

// FromEnv builds the configuration from VERIFACE_* environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envString("VERIFACE_ADDR", ":8080"),
			JWTSigningKey:   envString("VERIFACE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:       envString("VERIFACE_JWT_ISSUER", "veriface"),
			RequestTimeout:  envDuration("VERIFACE_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("VERIFACE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:          os.Getenv("VERIFACE_POSTGRES_DSN"),
			MaxOpenConns: envInt("VERIFACE_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("VERIFACE_POSTGRES_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("VERIFACE_REDIS_URL"),
			PoolSize:     envInt("VERIFACE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("VERIFACE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("VERIFACE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("VERIFACE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("VERIFACE_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("VERIFACE_ATTEMPT_CACHE_TTL", 15*time.Minute),
		},
		Vision: VisionConfig{
			BaseURL: envString("VERIFACE_VISION_URL", "http://localhost:5000"),
			Timeout: envDuration("VERIFACE_VISION_TIMEOUT", 10*time.Second),
		},
		Policy: PolicyConfig{
			BaseApprove:   envFloat("VERIFACE_POLICY_BASE_APPROVE", 0),
			BaseReject:    envFloat("VERIFACE_POLICY_BASE_REJECT", 0),
			MaxRelaxation: envFloat("VERIFACE_POLICY_MAX_RELAXATION", 0),
			QualityRaise:  envFloat("VERIFACE_POLICY_QUALITY_RAISE", 0),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
