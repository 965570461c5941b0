package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tw-accounting/twacc/internal/format"
	"github.com/tw-accounting/twacc/internal/session"
	"github.com/tw-accounting/twacc/internal/storage"
)

type Config struct {
	// API
	APIURL      string
	Token       string
	HTTPTimeout time.Duration

	// Local state
	StateDir string
	Storage  string

	// Presentation
	Locale       string
	ReportStyle  string
	RatesRefresh time.Duration
	ExplorerURL  string

	// Session
	ProfileFailure string

	LogLevel string
}

// LoadEnvFile loads a .env file from the working directory if there is one.
func LoadEnvFile() {
	_ = godotenv.Load()
}

func Load() *Config {
	return &Config{
		APIURL:      getEnv("TWACC_API_URL", "http://localhost:8001"),
		Token:       getEnv("TWACC_TOKEN", ""),
		HTTPTimeout: getEnvDuration("TWACC_HTTP_TIMEOUT", 30*time.Second),

		StateDir: getEnv("TWACC_STATE_DIR", defaultStateDir()),
		Storage:  getEnv("TWACC_STORAGE", storage.BackendFile),

		Locale:       getEnv("TWACC_LOCALE", string(format.RU)),
		ReportStyle:  getEnv("TWACC_REPORT_STYLE", "dark"),
		RatesRefresh: getEnvDuration("TWACC_RATES_REFRESH", 5*time.Minute),
		ExplorerURL:  getEnv("TWACC_EXPLORER_URL", "https://tronscan.org/#/address/"),

		ProfileFailure: getEnv("TWACC_PROFILE_FAILURE", "logout"),

		LogLevel: getEnv("TWACC_LOG_LEVEL", "info"),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".twacc"
	}
	return filepath.Join(home, ".twacc")
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errors []string

	if u, err := url.Parse(c.APIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': %v", c.APIURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid API URL scheme '%s': must be 'http' or 'https'", u.Scheme))
	} else if u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid API URL '%s': missing host", c.APIURL))
	}

	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}

	if c.StateDir == "" {
		errors = append(errors, "state directory cannot be empty")
	}

	validBackends := []string{storage.BackendFile, storage.BackendSQLite, storage.BackendMemory}
	if !slices.Contains(validBackends, c.Storage) {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.Storage, validBackends))
	}

	if _, err := format.ParseLocale(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': must be ru-RU or en-US", c.Locale))
	}

	validStyles := []string{"dark", "light", "notty", "ascii", "pink", "dracula", "tokyo-night"}
	if !slices.Contains(validStyles, c.ReportStyle) {
		errors = append(errors, fmt.Sprintf("invalid report style '%s': must be one of %v", c.ReportStyle, validStyles))
	}

	if c.RatesRefresh < 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid rates refresh %v: must be at least 10 seconds", c.RatesRefresh))
	}

	if _, err := url.Parse(c.ExplorerURL); err != nil || !strings.HasPrefix(c.ExplorerURL, "http") {
		errors = append(errors, fmt.Sprintf("invalid explorer URL '%s'", c.ExplorerURL))
	}

	if _, err := session.ParseFailurePolicy(c.ProfileFailure); err != nil {
		errors = append(errors, fmt.Sprintf("invalid profile failure policy '%s': must be 'logout' or 'unauthorized-only'", c.ProfileFailure))
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Level returns the configured log level, defaulting to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// FailurePolicy returns the parsed profile failure policy.
func (c *Config) FailurePolicy() session.FailurePolicy {
	p, _ := session.ParseFailurePolicy(c.ProfileFailure)
	return p
}

// FormatLocale returns the parsed display locale.
func (c *Config) FormatLocale() format.Locale {
	l, _ := format.ParseLocale(c.Locale)
	return l
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
