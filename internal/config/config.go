package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API      APIConfig
	UI       UIConfig
	Database DatabaseConfig
	Log      LogConfig
}

// APIConfig selects the marketplace backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// UIConfig holds presentation settings. Numbers and money always render
// in pt-BR with reais.
type UIConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// DatabaseConfig holds sqlite settings for the local activity journal.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// APIConfigured reports whether a backend base URL is set.
func (c Config) APIConfigured() bool {
	return strings.TrimSpace(c.API.BaseURL) != ""
}

// Load reads configuration from file and env. Env var overrides use prefix RECILOOP_,
// so RECILOOP_API_BASE_URL selects the API host.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("RECILOOP_CONFIG")
	readFile := true
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		// an explicit path that does not exist yet is allowed; Save creates it
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			readFile = false
		}
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "reciloop"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RECILOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if readFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("ui.poll_interval", 5*time.Second)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "reciloop", "activity.db"))
	v.SetDefault("log.path", filepath.Join(home, ".cache", "reciloop", "reciloop.log"))
	v.SetDefault("log.level", "info")
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used by the `config set-url` command.
func Save(cfg Config) error {
	path := os.Getenv("RECILOOP_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "reciloop", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("ui.poll_interval", cfg.UI.PollInterval.String())
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
