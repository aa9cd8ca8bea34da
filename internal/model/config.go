package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TICKETBOARD_SERVER_BASE_URL.
const EnvPrefix = "TICKETBOARD"

// ServerConfig describes the remote ticket service the board talks to.
type ServerConfig struct {
	// BaseURL is the service endpoint; operations are selected by query string.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request made to the service.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// DeleteMethod is the HTTP verb used for deleteById (GET or DELETE).
	DeleteMethod string `mapstructure:"delete_method" yaml:"delete_method"`

	// TokenKey names the keyring entry holding the bearer token, if any.
	TokenKey string `mapstructure:"token_key" yaml:"token_key"`
}

// LogConfig controls where and how verbosely the applications log.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Mouse bool `mapstructure:"mouse" yaml:"mouse"`

	// RefreshSec reloads the board on this interval; 0 disables it.
	RefreshSec int `mapstructure:"refresh_sec" yaml:"refresh_sec"`
}

// ServiceConfig configures the bundled ticketd service.
type ServiceConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	Driver         string   `mapstructure:"driver" yaml:"driver"`
	DSN            string   `mapstructure:"dsn" yaml:"dsn"`
	Token          string   `mapstructure:"token" yaml:"token"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Dev            bool     `mapstructure:"dev" yaml:"dev"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Service ServiceConfig `mapstructure:"service" yaml:"service"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"base-url":      "server.base_url",
	"timeout":       "server.timeout_sec",
	"delete-method": "server.delete_method",
	"log-level":     "log.level",
	"log-file":      "log.file",
	"refresh":       "display.refresh_sec",
	"addr":          "service.addr",
	"driver":        "service.driver",
	"dsn":           "service.dsn",
	"dev":           "service.dev",
}

// ConfigDir returns ~/.config/ticketboard, or the working directory if the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ticketboard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/ticketboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:      "http://localhost:7070",
			TimeoutSec:   30,
			DeleteMethod: "GET",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "ticketboard.log"),
		},
		Display: DisplayConfig{
			Mouse: true,
		},
		Service: ServiceConfig{
			Addr:           ":7070",
			Driver:         "sqlite",
			DSN:            "tickets.db",
			AllowedOrigins: []string{"*"},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.timeout_sec", d.Server.TimeoutSec)
	v.SetDefault("server.delete_method", d.Server.DeleteMethod)
	v.SetDefault("server.token_key", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("display.mouse", d.Display.Mouse)
	v.SetDefault("display.refresh_sec", 0)
	v.SetDefault("service.addr", d.Service.Addr)
	v.SetDefault("service.driver", d.Service.Driver)
	v.SetDefault("service.dsn", d.Service.DSN)
	v.SetDefault("service.token", "")
	v.SetDefault("service.allowed_origins", d.Service.AllowedOrigins)
	v.SetDefault("service.dev", false)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error. Values are overridden, in increasing
// precedence, by TICKETBOARD_* environment variables and by any flags in
// flags that were set on the command line. flags may be nil.
func LoadConfig(path string, flags *pflag.FlagSet) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

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

	cfg.Server.BaseURL = strings.TrimSpace(cfg.Server.BaseURL)
	cfg.Server.DeleteMethod = strings.ToUpper(strings.TrimSpace(cfg.Server.DeleteMethod))
	if cfg.Server.DeleteMethod == "" {
		cfg.Server.DeleteMethod = "GET"
	}
	if cfg.Server.TimeoutSec <= 0 {
		cfg.Server.TimeoutSec = 30
	}
	if cfg.Display.RefreshSec < 0 {
		cfg.Display.RefreshSec = 0
	}

	return cfg, nil
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

	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)
	v.Set("service", cfg.Service)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
