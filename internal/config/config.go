// Package config loads studyhall configuration.
//
// Sources are applied in increasing priority: built-in defaults, the YAML
// config file, STUDYHALL_* environment variables, then command-line flags
// that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/abhisek/studyhall/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// STUDYHALL_API_BASE_URL -> api.base_url.
const EnvPrefix = "STUDYHALL_"

// Config is the full application configuration.
type Config struct {
	API   APIConfig      `koanf:"api"`
	Auth  AuthConfig     `koanf:"auth"`
	Store StoreConfig    `koanf:"store"`
	Log   logging.Config `koanf:"log"`
	Mock  MockConfig     `koanf:"mock"`
}

// APIConfig points the client at the study backend.
type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration `koanf:"timeout"`
}

// AuthConfig locates the persisted credential.
type AuthConfig struct {
	CredentialsFile string `koanf:"credentials_file"`
}

// StoreConfig locates the local session journal.
type StoreConfig struct {
	DB string `koanf:"db"`
}

// MockConfig configures `studyhall mock`.
type MockConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
		},
		Auth: AuthConfig{
			CredentialsFile: filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "studyhall", "credentials.json"),
		},
		Store: StoreConfig{
			DB: filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "studyhall", "studyhall.db"),
		},
		Log: logging.Config{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state")), "studyhall", "studyhall.log"),
		},
		Mock: MockConfig{
			Addr: "127.0.0.1:8000",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/studyhall/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "studyhall", "config.yaml")
}

// Load reads configuration from path (skipped when the file does not exist),
// the environment, and flags. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must be http or https, got %q", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url has no host: %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// envKey maps STUDYHALL_API_BASE_URL to api.base_url. Only the first
// underscore after the prefix separates section from field.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// flagKeys maps CLI flag names onto config keys. Flags not listed here are
// command-local and never reach the config.
var flagKeys = map[string]string{
	"api-url":   "api.base_url",
	"timeout":   "api.timeout",
	"db":        "store.db",
	"log-level": "log.level",
	"log-file":  "log.file",
	"addr":      "mock.addr",
}

func flagKey(f *pflag.Flag) (string, interface{}) {
	key, ok := flagKeys[f.Name]
	if !ok || !f.Changed {
		return "", nil
	}
	// Every mapped flag is a string or duration; Unmarshal decodes both.
	return key, f.Value.String()
}

func xdgDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}
