package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "ShopBot"
	defaultAppEnv         = "development"
	defaultOpsPort        = "8080"
	defaultLogLevel       = "info"
	defaultShutdownDelay  = 10 * time.Second
	defaultCredsFile      = "credentials.json"
	defaultSessionTTL     = 30 * time.Minute
	defaultCartTTL        = 72 * time.Hour
	defaultLedgerTimeout  = 10 * time.Second
	defaultLedgerAttempts = 3
	defaultLedgerBackoff  = 500 * time.Millisecond
)

// ErrMissing marks a required configuration value that was not supplied.
// Startup aborts when Load returns an error wrapping it.
var ErrMissing = fmt.Errorf("required configuration missing")

// RetryPolicy is the explicit bounded-retry configuration applied to ledger
// calls. It is configuration, not ambient behavior.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	LogLevel string

	BotToken string
	AdminIDs []int64

	WalletAddress string

	SheetID         string
	CredentialsFile string

	DatabaseURL string
	RedisURL    string

	OpsPort        string
	AdminTokenHash string

	SessionTTL     time.Duration
	CartTTL        time.Duration
	LedgerTimeout  time.Duration
	LedgerRetry    RetryPolicy
	ShutdownPeriod time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance, failing fast on missing required values.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		BotToken:        os.Getenv("BOT_TOKEN"),
		WalletAddress:   os.Getenv("BTC_WALLET"),
		SheetID:         os.Getenv("SHEET_ID"),
		CredentialsFile: getEnv("SHEET_CREDENTIALS_FILE", defaultCredsFile),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		OpsPort:         getEnv("OPS_PORT", defaultOpsPort),
		AdminTokenHash:  os.Getenv("ADMIN_TOKEN_HASH"),
		SessionTTL:      defaultSessionTTL,
		CartTTL:         defaultCartTTL,
		LedgerTimeout:   defaultLedgerTimeout,
		ShutdownPeriod:  defaultShutdownDelay,
		LedgerRetry: RetryPolicy{
			MaxAttempts:    defaultLedgerAttempts,
			InitialBackoff: defaultLedgerBackoff,
			MaxBackoff:     5 * time.Second,
		},
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("%w: BOT_TOKEN", ErrMissing)
	}
	if cfg.WalletAddress == "" {
		return Config{}, fmt.Errorf("%w: BTC_WALLET", ErrMissing)
	}

	ids, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return Config{}, err
	}
	cfg.AdminIDs = ids

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownPeriod = d
	}
	if v := os.Getenv("LEDGER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEDGER_TIMEOUT: %w", err)
		}
		cfg.LedgerTimeout = d
	}
	if v := os.Getenv("LEDGER_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid LEDGER_MAX_ATTEMPTS: %q", v)
		}
		cfg.LedgerRetry.MaxAttempts = n
	}
	if v := os.Getenv("LEDGER_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LEDGER_RETRY_BACKOFF: %w", err)
		}
		cfg.LedgerRetry.InitialBackoff = d
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}

	return cfg, nil
}

// Address returns the ops server listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.OpsPort, ":") {
		return c.OpsPort
	}
	return fmt.Sprintf(":%s", c.OpsPort)
}

// IsAdmin reports whether the given Telegram user id is configured as an admin.
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
