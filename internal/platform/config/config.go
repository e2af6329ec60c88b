package config

import (
	"os"
	"strconv"
	"time"

	platformStrings "govdash/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration
	// AllowedOrigins lists browser origins accepted on the websocket stream.
	// Empty means same-origin only.
	AllowedOrigins []string
}

// Backend points at the analytics/auth backend the dashboard delegates to.
type Backend struct {
	URL     string
	Timeout time.Duration
	// BreakerThreshold consecutive unavailable responses open the circuit;
	// while open one probe is sent per BreakerCooldown.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Topology locates the boundary document. Source is an http(s) URL or a
// filesystem path.
type Topology struct {
	Source string
}

// Polling controls the snapshot refresh cadence.
type Polling struct {
	Interval time.Duration
}

// Auth configures session tokens.
type Auth struct {
	JWTSigningKey string
	TokenTTL      time.Duration
	Issuer        string
}

// RedisConfig configures the optional Redis-backed action store.
// An empty URL keeps actions in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Upload configures the supervisor upload console.
type Upload struct {
	ProgressTick time.Duration
	MaxBytes     int64
}

// RateLimit configures per-IP throttling of login and upload starts. The
// bucket store follows Redis: shared when configured, in-process otherwise.
type RateLimit struct {
	Disabled       bool
	LoginRequests  int
	UploadRequests int
	Window         time.Duration
}

// Config is the full service configuration.
type Config struct {
	Server    Server
	Backend   Backend
	Topology  Topology
	Polling   Polling
	Auth      Auth
	Redis     RedisConfig
	Upload    Upload
	RateLimit RateLimit
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("GOVDASH_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            stringEnv("GOVDASH_ADDR", ":8080"),
			LogLevel:        stringEnv("GOVDASH_LOG_LEVEL", "info"),
			ShutdownTimeout: durationEnv("GOVDASH_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  platformStrings.SplitList(os.Getenv("GOVDASH_ALLOWED_ORIGINS"), ","),
		},
		Backend: Backend{
			URL:              stringEnv("GOVDASH_BACKEND_URL", "http://localhost:8000"),
			Timeout:          durationEnv("GOVDASH_BACKEND_TIMEOUT", 10*time.Second),
			BreakerThreshold: intEnv("GOVDASH_BACKEND_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  durationEnv("GOVDASH_BACKEND_BREAKER_COOLDOWN", 10*time.Second),
		},
		Topology: Topology{
			Source: stringEnv("GOVDASH_TOPOLOGY_SOURCE", "data/india_states.geojson"),
		},
		Polling: Polling{
			Interval: durationEnv("GOVDASH_POLL_INTERVAL", 5*time.Second),
		},
		Auth: Auth{
			JWTSigningKey: jwtSigningKey,
			TokenTTL:      durationEnv("GOVDASH_TOKEN_TTL", 8*time.Hour),
			Issuer:        stringEnv("GOVDASH_TOKEN_ISSUER", "govdash"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     intEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Upload: Upload{
			ProgressTick: durationEnv("GOVDASH_UPLOAD_TICK", 300*time.Millisecond),
			MaxBytes:     int64(intEnv("GOVDASH_UPLOAD_MAX_BYTES", 32<<20)),
		},
		RateLimit: RateLimit{
			Disabled:       os.Getenv("GOVDASH_RATELIMIT_DISABLED") == "true",
			LoginRequests:  intEnv("GOVDASH_RATELIMIT_LOGIN", 10),
			UploadRequests: intEnv("GOVDASH_RATELIMIT_UPLOAD", 20),
			Window:         durationEnv("GOVDASH_RATELIMIT_WINDOW", time.Minute),
		},
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
