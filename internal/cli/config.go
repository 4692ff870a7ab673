package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/mcoot/sovereign-client/internal/factory"
	"github.com/mcoot/sovereign-client/internal/notify"
	"github.com/mcoot/sovereign-client/internal/storage/file"
	redisstorage "github.com/mcoot/sovereign-client/internal/storage/redis"
	"github.com/mcoot/sovereign-client/internal/transport"
)

// DefaultConfigPath is read when no --config is given
const DefaultConfigPath = "~/.config/sovereign/config.toml"

// Environment variables, each overriding the config file
const (
	EnvConfig       = "SOVEREIGN_CONFIG"
	EnvServer       = "SOVEREIGN_SERVER"
	EnvToken        = "SOVEREIGN_TOKEN"
	EnvTokenFile    = "SOVEREIGN_TOKEN_FILE"
	EnvStore        = "SOVEREIGN_STORE"
	EnvRedisURL     = "SOVEREIGN_REDIS_URL"
	EnvPollInterval = "SOVEREIGN_POLL_INTERVAL"
)

// Config holds CLI configuration
type Config struct {
	ServerURL    string
	Token        string
	TokenFile    string
	Store        string
	RedisURL     string
	PollInterval time.Duration
	HTTPTimeout  time.Duration
	Output       string
	Verbose      bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    transport.DefaultConfig().BaseURL,
		TokenFile:    file.DefaultPath(),
		Store:        factory.StorageTypeFile,
		PollInterval: notify.DefaultInterval,
		HTTPTimeout:  transport.DefaultConfig().Timeout,
		Output:       "text",
	}
}

// fileConfig is the on-disk shape of config.toml
type fileConfig struct {
	ServerURL    string `toml:"server_url"`
	Store        string `toml:"store"`
	TokenFile    string `toml:"token_file"`
	RedisURL     string `toml:"redis_url"`
	PollInterval string `toml:"poll_interval"`
	HTTPTimeout  string `toml:"http_timeout"`
	Output       string `toml:"output"`
}

// LoadFile overlays the TOML file at path. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", resolved, err)
	}

	setString(&c.ServerURL, raw.ServerURL)
	setString(&c.Store, raw.Store)
	setString(&c.RedisURL, raw.RedisURL)
	setString(&c.Output, raw.Output)
	if tf := strings.TrimSpace(raw.TokenFile); tf != "" {
		if c.TokenFile, err = expandPath(tf); err != nil {
			return err
		}
	}
	if err := setDuration(&c.PollInterval, raw.PollInterval, "poll_interval"); err != nil {
		return err
	}
	return setDuration(&c.HTTPTimeout, raw.HTTPTimeout, "http_timeout")
}

// LoadEnv overlays SOVEREIGN_* variables read through getenv
func (c *Config) LoadEnv(getenv func(string) string) error {
	setString(&c.ServerURL, getenv(EnvServer))
	setString(&c.Token, getenv(EnvToken))
	setString(&c.TokenFile, getenv(EnvTokenFile))
	setString(&c.Store, getenv(EnvStore))
	setString(&c.RedisURL, getenv(EnvRedisURL))
	return setDuration(&c.PollInterval, getenv(EnvPollInterval), EnvPollInterval)
}

// FactoryConfig translates c into the application factory's settings
func (c *Config) FactoryConfig() (factory.Config, error) {
	fc := factory.Config{
		Transport: transport.Config{
			BaseURL: strings.TrimSuffix(c.ServerURL, "/"),
			Timeout: c.HTTPTimeout,
		},
		Poll:        notify.Config{Interval: c.PollInterval},
		StorageType: c.Store,
		TokenPath:   c.TokenFile,
		Token:       c.Token,
	}
	if c.Store == factory.StorageTypeRedis {
		if c.RedisURL == "" {
			return factory.Config{}, fmt.Errorf("redis store needs a URL (--redis-url or %s)", EnvRedisURL)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}
	return fc, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, name string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s %q: want a positive duration like 20s", name, v)
	}
	*dst = d
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
