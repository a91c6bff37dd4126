package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultRPCURL  = "https://mainnet.base.org"
	defaultChainID = 8453 // Base mainnet
)

type Config struct {
	AppPort    string
	AppVersion string
	LogLevel   string
	LogJSON    bool

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Chain. Empty values are allowed: the affected endpoints answer NotConfigured.
	ValidatorPrivateKey string
	ContractAddress     string
	RPCURL              string
	ChainID             int64

	// Receipt polling
	ReceiptMaxAttempts    int
	ReceiptInitialDelay   time.Duration
	ReceiptMaxDelay       time.Duration
	ReceiptTrustOnMissing bool
	ReconcileInterval     time.Duration
	ReconcileBatchSize    int

	AdminJWTSecret string
	AllowedOrigin  string

	// Limits
	APIRateLimit        int
	APIRateWindow       time.Duration
	SignRateLimit       int
	SignRateWindow      time.Duration
	LeaderboardCacheTTL time.Duration
}

// Load reads configuration from the environment (and .env when present).
// Missing secrets are not fatal: handlers report them as NotConfigured.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:    envString("APP_PORT", "8080"),
		AppVersion: envString("APP_VERSION", "dev"),
		LogLevel:   envString("LOG_LEVEL", "info"),
		LogJSON:    envBool("LOG_JSON", false),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		ValidatorPrivateKey: strings.TrimSpace(os.Getenv("VALIDATOR_PRIVATE_KEY")),
		ContractAddress:     strings.TrimSpace(os.Getenv("SCORE_CONTRACT_ADDRESS")),
		RPCURL:              envString("BASE_RPC_URL", defaultRPCURL),
		ChainID:             int64(envInt("CHAIN_ID", defaultChainID)),

		// 2s, 4s, 8s, 16s between five attempts
		ReceiptMaxAttempts:    envInt("RECEIPT_MAX_ATTEMPTS", 5),
		ReceiptInitialDelay:   envDuration("RECEIPT_INITIAL_DELAY", 2*time.Second),
		ReceiptMaxDelay:       envDuration("RECEIPT_MAX_DELAY", 32*time.Second),
		ReceiptTrustOnMissing: envBool("RECEIPT_TRUST_ON_MISSING", true),
		ReconcileInterval:     time.Duration(envInt("RECONCILE_INTERVAL_MINUTES", 10)) * time.Minute,
		ReconcileBatchSize:    envInt("RECONCILE_BATCH_SIZE", 50),

		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),

		APIRateLimit:        envInt("API_RATE_LIMIT", 60),
		APIRateWindow:       time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		SignRateLimit:       envInt("SIGN_RATE_LIMIT", 10),
		SignRateWindow:      time.Duration(envInt("SIGN_RATE_WINDOW_SECONDS", 60)) * time.Second,
		LeaderboardCacheTTL: time.Duration(envInt("LEADERBOARD_CACHE_TTL_SECONDS", 30)) * time.Second,
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt falls back to def on empty, malformed or non-positive values.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// envDuration accepts Go durations ("2s") or bare milliseconds ("2000").
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}
