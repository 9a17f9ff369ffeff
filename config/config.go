package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration
type AppConfig struct {
	Env string

	PortalAddr string
	NodeAddr   string

	// Portal side
	LedgerURL      string
	BearerToken    string
	SymmetricKey   string
	CacheBackend   string
	CachePath      string
	RedisURL       string
	Redis          RedisConfig
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int

	ReadTimeout    time.Duration
	LoginTimeout   time.Duration
	SubmitTimeout  time.Duration
	ConfirmTimeout time.Duration
	ReceiptPoll    time.Duration
	ReconcileDelay time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	NotifyDSN     string
	NotifyChannel string

	// Node side
	DBURL                 string
	MinGasPriceGwei       uint64
	SuggestedGasPriceGwei uint64
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() *AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	return &AppConfig{
		Env:        getEnv("ENV", "production"),
		PortalAddr: getEnv("PORTAL_ADDR", ":8080"),
		NodeAddr:   getEnv("NODE_ADDR", ":8545"),

		LedgerURL:      os.Getenv("LEDGER_URL"),
		BearerToken:    os.Getenv("BEARER_TOKEN"),
		SymmetricKey:   os.Getenv("SYMMETRIC_KEY"),
		CacheBackend:   getEnv("CACHE_BACKEND", "leveldb"),
		CachePath:      getEnv("CACHE_PATH", "./data/mirror"),
		RedisURL:       redisURL,
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		RateLimit:      getEnvAsFloat("RATE_LIMIT", 5),
		RateBurst:      getEnvAsInt("RATE_BURST", 10),
		Redis: RedisConfig{
			URL:          redisURL,
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 30*time.Second),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 10*time.Second),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
		},

		ReadTimeout:    getEnvAsDuration("LEDGER_READ_TIMEOUT", 30*time.Second),
		LoginTimeout:   getEnvAsDuration("LEDGER_LOGIN_TIMEOUT", 60*time.Second),
		SubmitTimeout:  getEnvAsDuration("LEDGER_SUBMIT_TIMEOUT", 30*time.Second),
		ConfirmTimeout: getEnvAsDuration("LEDGER_CONFIRM_TIMEOUT", 5*time.Minute),
		ReceiptPoll:    getEnvAsDuration("LEDGER_RECEIPT_POLL", time.Second),
		ReconcileDelay: getEnvAsDuration("CHAT_RECONCILE_DELAY", time.Second),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvAsInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		NotifyDSN:     os.Getenv("NOTIFY_DSN"),
		NotifyChannel: getEnv("NOTIFY_CHANNEL", "portal_events"),

		DBURL:                 os.Getenv("DB_URL"),
		MinGasPriceGwei:       uint64(getEnvAsInt("NODE_MIN_GAS_PRICE_GWEI", 1)),
		SuggestedGasPriceGwei: uint64(getEnvAsInt("NODE_SUGGESTED_GAS_PRICE_GWEI", 10)),
	}
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}

// RequirePortal checks the settings the portal cannot start without.
func (c *AppConfig) RequirePortal() error {
	var missing []string
	if c.LedgerURL == "" {
		missing = append(missing, "LEDGER_URL")
	}
	if c.SymmetricKey == "" {
		missing = append(missing, "SYMMETRIC_KEY")
	}
	if c.CacheBackend == "redis" && c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	switch c.CacheBackend {
	case "redis", "leveldb", "memory":
	default:
		return errors.New("CACHE_BACKEND must be one of redis, leveldb, memory")
	}
	return missingError(missing)
}

// RequireNode checks the settings the ledger node cannot start without.
func (c *AppConfig) RequireNode() error {
	var missing []string
	if c.DBURL == "" {
		missing = append(missing, "DB_URL")
	}
	if c.BearerToken == "" {
		missing = append(missing, "BEARER_TOKEN")
	}
	return missingError(missing)
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return errors.New("missing environment variables: " + strings.Join(missing, ", "))
}

func getEnv(name, defaultValue string) string {
	if value, exists := os.LookupEnv(name); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s, using default: %d", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsFloat(name string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(name); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: Invalid number value for %s, using default: %g", name, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(name); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
		log.Printf("Warning: Invalid duration value for %s, using default: %s", name, defaultValue.String())
	}
	return defaultValue
}

func getEnvAsList(name string, defaultValue []string) []string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
