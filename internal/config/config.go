package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	StripePaymentMethod string

	PaypalClientID     string
	PaypalClientSecret string
	PaypalAPIURL       string

	ProviderTimeout time.Duration
	OrdersCacheTTL  time.Duration
	NotifyWorkers   int
	NotifyBuffer    int
	ShutdownTimeout time.Duration
	LogLevel        string
}

const (
	defaultRunAddress          = ":8080"
	defaultRedisAddr           = "localhost:6379"
	defaultJWTSecret           = "change-me-in-production"
	defaultStripePaymentMethod = "pm_card_visa"
	defaultPaypalAPIURL        = "https://api-m.sandbox.paypal.com"
	defaultProviderTimeout     = 30 * time.Second
	defaultOrdersCacheTTL      = 600 * time.Second
	defaultNotifyWorkers       = 4
	defaultNotifyBuffer        = 256
	defaultShutdownTimeout     = 10 * time.Second
	defaultLogLevel            = "info"
)

// Load parses configuration from an optional .env file, environment variables and flags.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		RedisAddr:           getString(lookup, "REDIS_ADDR", defaultRedisAddr),
		RedisPassword:       getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:             getInt(lookup, "REDIS_DB", 0),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIURL:        getString(lookup, "STRIPE_API_URL", ""),
		StripePaymentMethod: getString(lookup, "STRIPE_SERVER_PAYMENT_METHOD", defaultStripePaymentMethod),
		PaypalClientID:      getString(lookup, "PAYPAL_CLIENT_ID", ""),
		PaypalClientSecret:  getString(lookup, "PAYPAL_CLIENT_SECRET", ""),
		PaypalAPIURL:        getString(lookup, "PAYPAL_API_URL", defaultPaypalAPIURL),
		ProviderTimeout:     getDuration(lookup, "PROVIDER_TIMEOUT", defaultProviderTimeout),
		OrdersCacheTTL:      getDuration(lookup, "ORDERS_CACHE_TTL", defaultOrdersCacheTTL),
		NotifyWorkers:       getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyBuffer:        getInt(lookup, "NOTIFY_BUFFER", defaultNotifyBuffer),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("orderpay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		providerTimeoutStr = cfg.ProviderTimeout.String()
		cacheTTLStr        = cfg.OrdersCacheTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.StripeAPIURL, "stripe-url", cfg.StripeAPIURL, "Stripe API base URL override")
	fs.StringVar(&cfg.PaypalAPIURL, "paypal-url", cfg.PaypalAPIURL, "PayPal API base URL")
	fs.StringVar(&providerTimeoutStr, "provider-timeout", providerTimeoutStr, "Timeout for payment provider calls")
	fs.StringVar(&cacheTTLStr, "cache-ttl", cacheTTLStr, "Lifetime of cached order lists")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of notification dispatchers")
	fs.IntVar(&cfg.NotifyBuffer, "notify-buffer", cfg.NotifyBuffer, "Capacity of the notification queue")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ProviderTimeout, err = time.ParseDuration(providerTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid provider timeout: %w", err)
	}

	if cfg.OrdersCacheTTL, err = time.ParseDuration(cacheTTLStr); err != nil {
		return nil, fmt.Errorf("invalid cache ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyBuffer <= 0 {
		cfg.NotifyBuffer = defaultNotifyBuffer
	}

	if cfg.RedisDB < 0 {
		cfg.RedisDB = 0
	}

	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}

	if cfg.OrdersCacheTTL <= 0 {
		cfg.OrdersCacheTTL = defaultOrdersCacheTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
