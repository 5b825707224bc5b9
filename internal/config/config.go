package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, identification makes several remote calls

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Recognition service
	RecognitionURL     string        // base URL of the recognition service
	RecognitionToken   string        // fallback token, the runtime token set through the API wins
	RecognitionTimeout time.Duration // HTTP client timeout per call
	Lang               string        // optional language hint
	MinImageLength     int           // minimum base64 payload length

	// Tuning
	TuningFile     string        // optional YAML tuning file, empty = built-in defaults
	ReloadInterval time.Duration // interval to reload the tuning file
	SweepInterval  time.Duration // interval to repair dangling folder references

	// Storage
	Store string // "redis" | "memory"

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	// Rate limit on identify/grade
	IdentifyBurst  int
	IdentifyPerMin int

	// Upper bound for JSON request bodies; images travel inline as base64.
	MaxBodyMB int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SCANVAULT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SCANVAULT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("SCANVAULT_REQUEST_TIMEOUT", 90*time.Second),

		// Logging
		LogLevel:  getenv("SCANVAULT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SCANVAULT_PRETTY_LOG", true),

		// Recognition
		RecognitionURL:     getenv("SCANVAULT_RECOGNITION_URL", "https://api.ximilar.com"),
		RecognitionToken:   strings.TrimSpace(getenv("SCANVAULT_RECOGNITION_TOKEN", "")),
		RecognitionTimeout: mustDuration("SCANVAULT_RECOGNITION_TIMEOUT", 30*time.Second),
		Lang:               getenv("SCANVAULT_LANG", ""),
		MinImageLength:     getenvInt("SCANVAULT_MIN_IMAGE_LENGTH", 100),

		// Tuning
		TuningFile:     getenv("SCANVAULT_TUNING_FILE", ""),
		ReloadInterval: mustDuration("SCANVAULT_RELOAD_INTERVAL", time.Hour),
		SweepInterval:  mustDuration("SCANVAULT_SWEEP_INTERVAL", 24*time.Hour),

		Store: strings.ToLower(getenv("SCANVAULT_STORE", StoreRedis)),

		// Redis settings
		RedisUser:             getenv("SCANVAULT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SCANVAULT_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("SCANVAULT_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("SCANVAULT_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("SCANVAULT_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("SCANVAULT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("SCANVAULT_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("SCANVAULT_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("SCANVAULT_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("SCANVAULT_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("SCANVAULT_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("SCANVAULT_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SCANVAULT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SCANVAULT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SCANVAULT_TRUST_PROXY", true),

		IdentifyBurst:  getenvInt("SCANVAULT_IDENTIFY_BURST", 5),
		IdentifyPerMin: getenvInt("SCANVAULT_IDENTIFY_PER_MIN", 20),

		MaxBodyMB: getenvInt("SCANVAULT_MAX_BODY_MB", 25),
	}

	switch cfg.Store {
	case StoreRedis:
		cfg.RedisAddr = requireEnv("SCANVAULT_REDIS_ADDR")
		cfg.RedisDB = getenvInt("SCANVAULT_REDIS_DB", 0)
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: SCANVAULT_REDIS_PASSWORD is required when SCANVAULT_REDIS_PASSWORD_REQUIRED=true")
		}
	case StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: SCANVAULT_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	if cfg.MinImageLength < 0 {
		cfg.MinImageLength = 0
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	if c.RecognitionToken != "" {
		c.RecognitionToken = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
