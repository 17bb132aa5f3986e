package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load builds a Config from defaults, then the config file in configDir (if
// present), then environment overrides, and validates the result.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg, cfg.FilePath()); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadConfigFile decodes path into cfg. A missing file is not an error.
func loadConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config file: %w", err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TODO_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("TODO_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TODO_CACHE_BACKEND"); v != "" {
		cfg.CacheBackend = v
	}
	if v := os.Getenv("TODO_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks enumerated settings and numeric ranges.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPlaceholder, BackendGoogleTasks:
	default:
		return fmt.Errorf("invalid backend: %s", c.Backend)
	}
	switch c.CacheBackend {
	case CacheFile, CacheBadger, CacheSQLite, CacheMemory:
	default:
		return fmt.Errorf("invalid cache backend: %s", c.CacheBackend)
	}
	if c.Backend == BackendPlaceholder && strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint required for placeholder backend")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("invalid page size: %d", c.PageSize)
	}
	if c.PageIncrement < 1 {
		return fmt.Errorf("invalid page increment: %d", c.PageIncrement)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout.Duration)
	}
	return nil
}
