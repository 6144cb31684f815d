package model

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the check-in API client.
type APIConfig struct {
	// BaseURL is the root URL of the check-in server.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times a rate-limited (429) request is retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// RatePerSec caps outgoing requests per second.
	RatePerSec float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// DashboardConfig holds dashboard rendering preferences.
type DashboardConfig struct {
	// ListDays is the number of trailing days shown in the list view.
	ListDays int `mapstructure:"list_days" yaml:"list_days"`

	// DefaultView is "calendar" or "list".
	DefaultView string `mapstructure:"default_view" yaml:"default_view"`

	// DefaultFilter is "all", "checked" or "missed".
	DefaultFilter string `mapstructure:"default_filter" yaml:"default_filter"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Confetti           bool `mapstructure:"confetti" yaml:"confetti"`
	RefreshIntervalSec int  `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
	Mouse              bool `mapstructure:"mouse" yaml:"mouse"`
}

// ReminderConfig controls the daily missed check-in reminder.
type ReminderConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// AlertTime is the local time of day, HH:MM, at which a missing
	// check-in is reported.
	AlertTime string `mapstructure:"alert_time" yaml:"alert_time"`
}

// LogConfig controls the rolling log file.
type LogConfig struct {
	Path       string `mapstructure:"path" yaml:"path"`
	Level      string `mapstructure:"level" yaml:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Display   DisplayConfig   `mapstructure:"display" yaml:"display"`
	Reminder  ReminderConfig  `mapstructure:"reminder" yaml:"reminder"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// Limits on configurable values.
const (
	MinListDays     = 1
	MaxListDays     = 365
	DefaultListDays = 14
)

// envPrefix namespaces environment overrides, e.g. CHECKIN_API_BASE_URL.
const envPrefix = "CHECKIN"

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/checkin/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "checkin", "config.yaml")
}

// DefaultLogPath returns ~/.local/state/checkin/checkin.log.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "checkin.log")
	}
	return filepath.Join(home, ".local", "state", "checkin", "checkin.log")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:5000",
			TimeoutSec: 10,
			MaxRetries: 3,
			RatePerSec: 5,
		},
		Dashboard: DashboardConfig{
			ListDays:      DefaultListDays,
			DefaultView:   string(ViewCalendar),
			DefaultFilter: string(FilterAll),
		},
		Display: DisplayConfig{
			Confetti:           true,
			RefreshIntervalSec: 300,
			Mouse:              true,
		},
		Reminder: ReminderConfig{
			Enabled:   true,
			AlertTime: "10:00",
		},
		Log: LogConfig{
			Path:       DefaultLogPath(),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return defaultAppConfig()
}

// setDefaults registers every default with v so that missing keys and
// environment overrides resolve consistently.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("api.rate_per_sec", d.API.RatePerSec)
	v.SetDefault("dashboard.list_days", d.Dashboard.ListDays)
	v.SetDefault("dashboard.default_view", d.Dashboard.DefaultView)
	v.SetDefault("dashboard.default_filter", d.Dashboard.DefaultFilter)
	v.SetDefault("display.confetti", d.Display.Confetti)
	v.SetDefault("display.refresh_interval_sec", d.Display.RefreshIntervalSec)
	v.SetDefault("display.mouse", d.Display.Mouse)
	v.SetDefault("reminder.enabled", d.Reminder.Enabled)
	v.SetDefault("reminder.alert_time", d.Reminder.AlertTime)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with CHECKIN_ override file values. If the
// file does not exist, defaults (plus environment overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that the UI cannot recover from.
func (c *AppConfig) Validate() error {
	if err := ValidateBaseURL(c.API.BaseURL); err != nil {
		return err
	}
	if err := ValidateListDays(c.Dashboard.ListDays); err != nil {
		return err
	}
	if c.Reminder.Enabled {
		if _, err := ParseAlertTime(c.Reminder.AlertTime); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBaseURL requires an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url: missing host in %q", raw)
	}
	return nil
}

// ValidateListDays bounds the list window size.
func ValidateListDays(n int) error {
	if n < MinListDays || n > MaxListDays {
		return fmt.Errorf("dashboard.list_days: must be between %d and %d, got %d",
			MinListDays, MaxListDays, n)
	}
	return nil
}

// ParseAlertTime parses an HH:MM time of day into an offset from midnight.
func ParseAlertTime(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("reminder.alert_time: expected HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// RefreshInterval returns the auto-refresh period, or 0 when disabled.
func (c DisplayConfig) RefreshInterval() time.Duration {
	if c.RefreshIntervalSec <= 0 {
		return 0
	}
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("dashboard", cfg.Dashboard)
	v.Set("display", cfg.Display)
	v.Set("reminder", cfg.Reminder)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
