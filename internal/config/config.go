// Package config handles the configuration directory, the optional config
// file and environment overrides.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional TOML settings filename.
	ConfigFile = "config.toml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// RemoteIDsFile maps locally created task ids to the ids Google Tasks
	// assigned them.
	RemoteIDsFile = "remote_ids.json"

	// DefaultEndpoint is the public list endpoint used by the placeholder backend.
	DefaultEndpoint = "https://jsonplaceholder.typicode.com/todos"

	// DefaultListID is the Google Tasks list used by the googletasks backend.
	DefaultListID = "@default"
)

// Gateway backends.
const (
	BackendPlaceholder = "placeholder"
	BackendGoogleTasks = "googletasks"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheBadger = "badger"
	CacheSQLite = "sqlite"
	CacheMemory = "memory"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Backend selects the remote gateway implementation.
	Backend string `toml:"backend"`

	// Endpoint is the base URL of the placeholder backend.
	Endpoint string `toml:"endpoint"`

	// ListID is the Google Tasks list id used by the googletasks backend.
	ListID string `toml:"list_id"`

	// CacheBackend selects where the cache slot lives.
	CacheBackend string `toml:"cache_backend"`

	// CachePath overrides the cache location. Relative paths resolve against Dir.
	CachePath string `toml:"cache_path"`

	// PageSize is the initial number of records revealed.
	PageSize int `toml:"page_size"`

	// PageIncrement is how many more records each "load more" reveals.
	PageIncrement int `toml:"page_increment"`

	// Timeout bounds each gateway call. Zero means no timeout.
	Timeout Duration `toml:"timeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is one of text, json, logfmt.
	LogFormat string `toml:"log_format"`
}

// Duration wraps time.Duration so it can be written as "5s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// New creates a new Config with defaults and the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := Defaults()
	cfg.Dir = dir
	return cfg, nil
}

// Defaults returns a Config with every setting at its default and no Dir.
func Defaults() *Config {
	return &Config{
		Backend:       BackendPlaceholder,
		Endpoint:      DefaultEndpoint,
		ListID:        DefaultListID,
		CacheBackend:  CacheFile,
		PageSize:      10,
		PageIncrement: 10,
		LogLevel:      "warn",
		LogFormat:     "text",
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to the optional TOML config file.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// ResolvedCachePath returns the cache location for the configured backend.
func (c *Config) ResolvedCachePath() string {
	if c.CachePath != "" {
		if filepath.IsAbs(c.CachePath) {
			return c.CachePath
		}
		return filepath.Join(c.Dir, c.CachePath)
	}
	switch c.CacheBackend {
	case CacheBadger:
		return filepath.Join(c.Dir, "cache.badger")
	case CacheSQLite:
		return filepath.Join(c.Dir, "cache.db")
	default:
		return filepath.Join(c.Dir, "todos.json")
	}
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// RemoteIDsPath returns the path to the local-to-remote id map.
func (c *Config) RemoteIDsPath() string {
	return filepath.Join(c.Dir, RemoteIDsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// NeedsOAuth reports whether the configured backend requires OAuth files.
func (c *Config) NeedsOAuth() bool {
	return c.Backend == BackendGoogleTasks
}
