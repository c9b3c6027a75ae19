package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Telegram TelegramConfig `envconfig:"TELEGRAM"`
	Feeds    FeedsConfig    `envconfig:"FEEDS"`
	EIA      EIAConfig      `envconfig:"EIA"`
	Scanner  ScannerConfig  `envconfig:"SCANNER"`
	Reports  ReportsConfig  `envconfig:"REPORTS"`
	Server   ServerConfig   `envconfig:"SERVER"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
}

// TelegramConfig represents Telegram bot configuration. Credentials are
// optional: without them notifications degrade to a logged no-op instead of
// crashing the process.
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// FeedsConfig lists the polled news feeds as "Name|URL" pairs
type FeedsConfig struct {
	Sources []string `envconfig:"FEED_SOURCES" default:"Reuters|https://www.reuters.com/arc/outboundfeeds/rss/?outputType=xml,PIB India|https://pib.gov.in/RssMain.aspx?ModId=3&Lang=1"`
}

// EIAConfig represents the EIA open-data API configuration. Without a key the
// inventory provider is disabled.
type EIAConfig struct {
	APIKey string `envconfig:"EIA_API_KEY" required:"false"`
}

// ScannerConfig represents the polling loop parameters
type ScannerConfig struct {
	Interval     time.Duration `envconfig:"SCANNER_INTERVAL" default:"5m"`
	ErrorBackoff time.Duration `envconfig:"SCANNER_ERROR_BACKOFF" default:"60s"`
	ItemsPerFeed int           `envconfig:"SCANNER_ITEMS_PER_FEED" default:"30"`
	StatePath    string        `envconfig:"SCANNER_STATE_PATH" default:"scanner_state.json"`
	FetchTimeout time.Duration `envconfig:"SCANNER_FETCH_TIMEOUT" default:"10s"`
}

// ReportsConfig represents the time-gated emitters
type ReportsConfig struct {
	SummaryInterval time.Duration `envconfig:"REPORTS_SUMMARY_INTERVAL" default:"1h"`
	AlertCooldown   time.Duration `envconfig:"REPORTS_ALERT_COOLDOWN" default:"15m"`
}

// ServerConfig represents the status HTTP server
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Feed is a parsed feed source
type Feed struct {
	Name string
	URL  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner interval must be positive")
	}
	if c.Scanner.ItemsPerFeed < 1 {
		return fmt.Errorf("items per feed must be at least 1")
	}
	if c.Reports.AlertCooldown <= 0 {
		return fmt.Errorf("alert cooldown must be positive")
	}
	if _, err := c.Feeds.Parse(); err != nil {
		return err
	}
	return nil
}

// Parse splits the configured "Name|URL" pairs into feeds
func (f *FeedsConfig) Parse() ([]Feed, error) {
	feeds := make([]Feed, 0, len(f.Sources))
	for _, source := range f.Sources {
		parts := strings.SplitN(source, "|", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed feed source %q, want Name|URL", source)
		}
		feeds = append(feeds, Feed{Name: parts[0], URL: parts[1]})
	}
	return feeds, nil
}

// NotificationsEnabled returns true when Telegram credentials are present
func (c *TelegramConfig) NotificationsEnabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}
