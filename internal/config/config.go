// Package config loads server configuration from flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Data      DataConfig
	Server    ServerConfig
	Auth      AuthConfig
	Email     EmailConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds on-disk locations.
type DataConfig struct {
	// BasePath holds the SQLite database, the search index and the auth key.
	BasePath string
}

// DatabasePath returns the SQLite database file path.
func (d DataConfig) DatabasePath() string {
	return filepath.Join(d.BasePath, "nesvesk.db")
}

// SearchPath returns the directory for the profile search index.
func (d DataConfig) SearchPath() string {
	return filepath.Join(d.BasePath, "search")
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// AuthConfig holds the identity token configuration.
type AuthConfig struct {
	// TokenKey is the PASETO v4 symmetric key shared with the identity provider.
	// Set by auth.LoadOrGenerateKey in the DI layer when not configured.
	TokenKey      []byte
	TokenKeyHex   string
	TokenDuration time.Duration
}

// EmailConfig holds transactional email configuration.
type EmailConfig struct {
	// ResendAPIKey enables delivery. Empty means emails are only logged.
	ResendAPIKey  string
	ResendBaseURL string
	From          string
	SiteURL       string
	DefaultLocale string
	Timeout       time.Duration
}

// NotifyConfig holds outbox worker configuration.
type NotifyConfig struct {
	Workers      int
	PollInterval time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
}

// RateLimitConfig holds the per-user invitation throttle and the per-IP
// request throttle.
type RateLimitConfig struct {
	InvitationsPerMinute int
	InvitationBurst      int
	RequestsPerMinute    int
	RequestBurst         int
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return loadConfig(flag.CommandLine, os.Args[1:])
}

func loadConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for database, search index and keys")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 0, streaming)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma separated CORS origins")

	tokenDuration := fs.String("token-duration", "", "Accepted identity token lifetime (default: 1h)")

	resendKey := fs.String("resend-api-key", "", "Resend API key (empty disables delivery)")
	siteURL := fs.String("site-url", "", "Public site URL used in email links")
	emailFrom := fs.String("email-from", "", "Sender address for notification emails")

	notifyWorkers := fs.String("notify-workers", "", "Outbox worker count (default: 2)")
	notifyMaxAttempts := fs.String("notify-max-attempts", "", "Delivery attempts before a job fails (default: 5)")

	invitesPerMinute := fs.String("invites-per-minute", "", "Invitations a user may send per minute (default: 10)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Auth: AuthConfig{
			TokenKeyHex: getConfigValue("", "AUTH_TOKEN_KEY", ""),
		},
		Email: EmailConfig{
			ResendAPIKey:  getConfigValue(*resendKey, "RESEND_API_KEY", ""),
			ResendBaseURL: getConfigValue("", "RESEND_BASE_URL", "https://api.resend.com"),
			From:          getConfigValue(*emailFrom, "EMAIL_FROM", "Nešvęsk Vienas <noreply@nesvesk-vienas.lt>"),
			SiteURL:       strings.TrimRight(getConfigValue(*siteURL, "SITE_URL", "http://localhost:3000"), "/"),
			DefaultLocale: getConfigValue("", "EMAIL_DEFAULT_LOCALE", "lt"),
		},
		Notify: NotifyConfig{
			Workers:     getIntConfigValue(*notifyWorkers, "NOTIFY_WORKERS", 2),
			MaxAttempts: getIntConfigValue(*notifyMaxAttempts, "NOTIFY_MAX_ATTEMPTS", 5),
		},
		RateLimit: RateLimitConfig{
			InvitationsPerMinute: getIntConfigValue(*invitesPerMinute, "INVITES_PER_MINUTE", 10),
			InvitationBurst:      getIntConfigValue("", "INVITES_BURST", 5),
			RequestsPerMinute:    getIntConfigValue("", "REQUESTS_PER_MINUTE", 300),
			RequestBurst:         getIntConfigValue("", "REQUESTS_BURST", 100),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "0s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*tokenDuration, "AUTH_TOKEN_DURATION", "1h", &cfg.Auth.TokenDuration},
		{"", "EMAIL_TIMEOUT", "10s", &cfg.Email.Timeout},
		{"", "NOTIFY_POLL_INTERVAL", "5s", &cfg.Notify.PollInterval},
		{"", "NOTIFY_BASE_BACKOFF", "30s", &cfg.Notify.BaseBackoff},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Email.DefaultLocale != "lt" && c.Email.DefaultLocale != "en" {
		return fmt.Errorf("invalid email locale: %s (must be lt or en)", c.Email.DefaultLocale)
	}

	if c.Notify.Workers < 1 {
		return fmt.Errorf("notify workers must be at least 1, got %d", c.Notify.Workers)
	}
	if c.Notify.MaxAttempts < 1 {
		return fmt.Errorf("notify max attempts must be at least 1, got %d", c.Notify.MaxAttempts)
	}

	if c.RateLimit.InvitationsPerMinute < 1 {
		return fmt.Errorf("invites per minute must be at least 1, got %d", c.RateLimit.InvitationsPerMinute)
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("requests per minute must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	}

	// Production deployments must not silently drop emails.
	if c.App.Environment == "production" && c.Email.ResendAPIKey == "" {
		return errors.New("RESEND_API_KEY is required in production")
	}

	return nil
}

// EmailEnabled reports whether notification emails are actually delivered.
func (c *Config) EmailEnabled() bool {
	return c.Email.ResendAPIKey != ""
}

// expandDataPath expands ~ and makes the data path absolute.
// Defaults to ~/NesveskVienas when unset.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	path := c.Data.BasePath
	if path == "" {
		c.Data.BasePath = filepath.Join(homeDir, "NesveskVienas")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	c.Data.BasePath = filepath.Clean(path)
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments). Existing variables win.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
