package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddr      string        `mapstructure:"SERVER_ADDR"`
	GinMode         string        `mapstructure:"GIN_MODE"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	BadgerDBPath string `mapstructure:"BADGERDB_PATH"`

	// BrowserBin overrides the Chrome executable; empty means auto-detect.
	BrowserBin        string        `mapstructure:"BROWSER_BIN"`
	BrowserStealth    bool          `mapstructure:"BROWSER_STEALTH"`
	NavigationTimeout time.Duration `mapstructure:"NAVIGATION_TIMEOUT"`
	SettleDelay       time.Duration `mapstructure:"SETTLE_DELAY"`

	// TelegramBotToken enables the Telegram client when set.
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
}

var defaults = map[string]any{
	"SERVER_ADDR":        ":3000",
	"GIN_MODE":           "release",
	"LOG_LEVEL":          "info",
	"SHUTDOWN_TIMEOUT":   "10s",
	"BADGERDB_PATH":      "./badger_data",
	"BROWSER_BIN":        "",
	"BROWSER_STEALTH":    false,
	"NAVIGATION_TIMEOUT": "30s",
	"SETTLE_DELAY":       "1s",
	"TELEGRAM_BOT_TOKEN": "",
}

// LoadConfig reads configuration from path/config.yaml and environment variables.
// Environment variables win over the file. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// AutomaticEnv only resolves keys viper already knows about, so every
	// field gets a default.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) validate() error {
	if c.ServerAddr == "" {
		return fmt.Errorf("SERVER_ADDR is not set")
	}
	if c.BadgerDBPath == "" {
		return fmt.Errorf("BADGERDB_PATH is not set")
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("NAVIGATION_TIMEOUT must be positive, got %s", c.NavigationTimeout)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("SETTLE_DELAY must not be negative, got %s", c.SettleDelay)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	return nil
}

// Level returns the parsed log level. LoadConfig has already validated it.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
