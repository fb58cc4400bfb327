// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tradejournal/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Journal     JournalConfig `mapstructure:"journal"`
	UI          UIConfig      `mapstructure:"ui"`
	Broker      BrokerConfig  `mapstructure:"broker"`
	Credentials Credentials   `mapstructure:"-"` // Loaded separately
}

// JournalConfig holds journal-related configuration.
type JournalConfig struct {
	DatabasePath     string `mapstructure:"database_path"`
	UserID           string `mapstructure:"user_id"`
	DefaultAccountID string `mapstructure:"default_account"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// BrokerConfig holds the cTrader bridge configuration.
type BrokerConfig struct {
	BridgeURL string `mapstructure:"bridge_url"`
}

// Credentials holds API credentials.
type Credentials struct {
	CTrader CTraderCredentials `mapstructure:"ctrader"`
}

// CTraderCredentials holds cTrader OAuth application credentials.
type CTraderCredentials struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradejournal"
	}
	return filepath.Join(home, ".config", "tradejournal")
}

// DefaultDatabasePath returns the default SQLite database path.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultConfigDir(), "journal.db")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	// Load main config
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	applyDefaults(cfg, configDir)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetDefault("ui.color_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Broker credentials are optional until broker commands run.
			return nil
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CTRADER_CLIENT_ID"); v != "" {
		cfg.Credentials.CTrader.ClientID = v
	}
	if v := os.Getenv("CTRADER_CLIENT_SECRET"); v != "" {
		cfg.Credentials.CTrader.ClientSecret = v
	}
	if v := os.Getenv("CTRADER_BRIDGE_URL"); v != "" {
		cfg.Broker.BridgeURL = v
	}
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.Journal.DatabasePath = v
	}
	if v := os.Getenv("JOURNAL_USER_ID"); v != "" {
		cfg.Journal.UserID = v
	}
}

func applyDefaults(cfg *Config, configDir string) {
	if cfg.Journal.DatabasePath == "" {
		cfg.Journal.DatabasePath = filepath.Join(configDir, "journal.db")
	}
	if cfg.Journal.UserID == "" {
		cfg.Journal.UserID = "default"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Broker.BridgeURL != "" &&
		!strings.HasPrefix(c.Broker.BridgeURL, "http://") &&
		!strings.HasPrefix(c.Broker.BridgeURL, "https://") {
		return errors.Wrapf(errors.ErrConfigInvalid, "bridge_url %q must be an http(s) URL", c.Broker.BridgeURL)
	}
	return nil
}

// HasBroker reports whether the cTrader bridge is configured.
func (c *Config) HasBroker() bool {
	return c.Broker.BridgeURL != ""
}
