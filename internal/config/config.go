package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// CounterPolicy selects how settlement treats an order that would push a
// competition past its ticket limit.
type CounterPolicy string

const (
	// CounterPolicyAdmit increments unconditionally and closes the
	// competition when the limit is reached or passed, permitting a
	// one-order overshoot.
	CounterPolicyAdmit CounterPolicy = "admit"
	// CounterPolicyReject refuses the over-capacity settlement: the order
	// fails and its tickets are released.
	CounterPolicyReject CounterPolicy = "reject"
)

// PayPalConfig holds PayPal gateway credentials.
type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
}

// SquareConfig holds Square gateway credentials.
type SquareConfig struct {
	BaseURL             string
	AccessToken         string
	LocationID          string
	WebhookSignatureKey string
	WebhookURL          string
}

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress    string
	DatabaseURI   string
	RedisAddress  string
	MailerAddress string

	SessionSecret string
	AdminToken    string

	CheckoutReturnURL string
	CheckoutCancelURL string

	ReservationTTL  time.Duration
	ReaperInterval  time.Duration
	ReaperBatch     int
	WorkerPoolSize  int
	ShutdownTimeout time.Duration
	FeedCacheTTL    time.Duration

	CounterPolicy CounterPolicy

	PayPal PayPalConfig
	Square SquareConfig
}

const (
	defaultRunAddress      = ":8080"
	defaultRedisAddress    = "localhost:6379"
	defaultSessionSecret   = "change-me-in-production"
	defaultReservationTTL  = 15 * time.Minute
	defaultReaperInterval  = time.Minute
	defaultReaperBatch     = 64
	defaultWorkerPoolSize  = 4
	defaultShutdownTimeout = 10 * time.Second
	defaultFeedCacheTTL    = 5 * time.Minute
	defaultPayPalBaseURL   = "https://api-m.sandbox.paypal.com"
	defaultSquareBaseURL   = "https://connect.squareupsandbox.com"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		RedisAddress:      getString(lookup, "REDIS_ADDRESS", defaultRedisAddress),
		MailerAddress:     getString(lookup, "MAILER_ADDRESS", ""),
		SessionSecret:     getString(lookup, "SESSION_SECRET", defaultSessionSecret),
		AdminToken:        getString(lookup, "ADMIN_TOKEN", ""),
		CheckoutReturnURL: getString(lookup, "CHECKOUT_RETURN_URL", ""),
		CheckoutCancelURL: getString(lookup, "CHECKOUT_CANCEL_URL", ""),
		ReservationTTL:    getDuration(lookup, "RESERVATION_TTL", defaultReservationTTL),
		ReaperInterval:    getDuration(lookup, "REAPER_INTERVAL", defaultReaperInterval),
		ReaperBatch:       getInt(lookup, "REAPER_BATCH", defaultReaperBatch),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		FeedCacheTTL:      getDuration(lookup, "FEED_CACHE_TTL", defaultFeedCacheTTL),
		CounterPolicy:     CounterPolicy(getString(lookup, "COUNTER_POLICY", string(CounterPolicyAdmit))),
		PayPal: PayPalConfig{
			BaseURL:      getString(lookup, "PAYPAL_BASE_URL", defaultPayPalBaseURL),
			ClientID:     getString(lookup, "PAYPAL_CLIENT_ID", ""),
			ClientSecret: getString(lookup, "PAYPAL_CLIENT_SECRET", ""),
			WebhookID:    getString(lookup, "PAYPAL_WEBHOOK_ID", ""),
		},
		Square: SquareConfig{
			BaseURL:             getString(lookup, "SQUARE_BASE_URL", defaultSquareBaseURL),
			AccessToken:         getString(lookup, "SQUARE_ACCESS_TOKEN", ""),
			LocationID:          getString(lookup, "SQUARE_LOCATION_ID", ""),
			WebhookSignatureKey: getString(lookup, "SQUARE_WEBHOOK_SIGNATURE_KEY", ""),
			WebhookURL:          getString(lookup, "SQUARE_WEBHOOK_URL", ""),
		},
	}

	fs := flag.NewFlagSet("compo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		reservationTTLStr  = cfg.ReservationTTL.String()
		reaperIntervalStr  = cfg.ReaperInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		feedCacheTTLStr    = cfg.FeedCacheTTL.String()
		counterPolicyStr   = string(cfg.CounterPolicy)
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for the feed cache")
	fs.StringVar(&cfg.MailerAddress, "mailer", cfg.MailerAddress, "Mail relay base URL")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Secret for signing session tokens")
	fs.StringVar(&cfg.AdminToken, "admin-token", cfg.AdminToken, "Bearer token for admin endpoints")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reaper workers")
	fs.IntVar(&cfg.ReaperBatch, "reaper-batch", cfg.ReaperBatch, "Maximum expired orders per reaper sweep")
	fs.StringVar(&reservationTTLStr, "reservation-ttl", reservationTTLStr, "How long ticket reservations are held")
	fs.StringVar(&reaperIntervalStr, "reaper-interval", reaperIntervalStr, "Interval between reservation reaper sweeps")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&feedCacheTTLStr, "feed-cache-ttl", feedCacheTTLStr, "Home feed cache TTL")
	fs.StringVar(&counterPolicyStr, "counter-policy", counterPolicyStr, "Sold-counter overshoot policy: admit or reject")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReservationTTL, err = time.ParseDuration(reservationTTLStr); err != nil {
		return nil, fmt.Errorf("invalid reservation ttl: %w", err)
	}

	if cfg.ReaperInterval, err = time.ParseDuration(reaperIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reaper interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.FeedCacheTTL, err = time.ParseDuration(feedCacheTTLStr); err != nil {
		return nil, fmt.Errorf("invalid feed cache ttl: %w", err)
	}

	cfg.CounterPolicy = CounterPolicy(counterPolicyStr)
	if cfg.CounterPolicy != CounterPolicyAdmit && cfg.CounterPolicy != CounterPolicyReject {
		return nil, fmt.Errorf("invalid counter policy %q", counterPolicyStr)
	}

	if secretFile, ok := lookup("SESSION_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read session secret file: %w", err)
		}
		cfg.SessionSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReaperBatch <= 0 {
		cfg.ReaperBatch = defaultReaperBatch
	}

	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = defaultReservationTTL
	}

	if cfg.ReaperInterval <= 0 {
		cfg.ReaperInterval = defaultReaperInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.FeedCacheTTL <= 0 {
		cfg.FeedCacheTTL = defaultFeedCacheTTL
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
