package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.Backend != BackendPlaceholder {
		t.Errorf("expected backend %q, got %q", BackendPlaceholder, cfg.Backend)
	}
	if cfg.CacheBackend != CacheFile {
		t.Errorf("expected cache backend %q, got %q", CacheFile, cfg.CacheBackend)
	}
	if cfg.PageSize != 10 || cfg.PageIncrement != 10 {
		t.Errorf("expected page size/increment 10/10, got %d/%d", cfg.PageSize, cfg.PageIncrement)
	}
	if cfg.Timeout.Duration != 0 {
		t.Errorf("expected no timeout, got %s", cfg.Timeout.Duration)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
backend = "googletasks"
cache_backend = "sqlite"
page_size = 5
timeout = "3s"
log_level = "debug"
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend != BackendGoogleTasks {
		t.Errorf("expected googletasks, got %q", cfg.Backend)
	}
	if cfg.CacheBackend != CacheSQLite {
		t.Errorf("expected sqlite, got %q", cfg.CacheBackend)
	}
	if cfg.PageSize != 5 {
		t.Errorf("expected page size 5, got %d", cfg.PageSize)
	}
	if cfg.PageIncrement != 10 {
		t.Errorf("expected default page increment, got %d", cfg.PageIncrement)
	}
	if cfg.Timeout.Duration != 3*time.Second {
		t.Errorf("expected 3s timeout, got %s", cfg.Timeout.Duration)
	}
	if !cfg.NeedsOAuth() {
		t.Error("expected googletasks backend to need oauth")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `cache_backend = "sqlite"`)
	t.Setenv("TODO_CACHE_BACKEND", "memory")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CacheBackend != CacheMemory {
		t.Errorf("expected env to win, got %q", cfg.CacheBackend)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `colour = "blue"`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Errorf("expected error to name the key, got %v", err)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `backend = "ftp"`)

	_, err := Load(dir)
	if err == nil || err.Error() != "invalid backend: ftp" {
		t.Errorf("expected invalid backend error, got %v", err)
	}
}

func TestLoad_InvalidPageSize(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `page_size = 0`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for zero page size")
	}
}

func TestResolvedCachePath(t *testing.T) {
	cfg := Defaults()
	cfg.Dir = "/cfg"

	tests := []struct {
		backend string
		path    string
		want    string
	}{
		{CacheFile, "", "/cfg/todos.json"},
		{CacheBadger, "", "/cfg/cache.badger"},
		{CacheSQLite, "", "/cfg/cache.db"},
		{CacheSQLite, "other.db", "/cfg/other.db"},
		{CacheFile, "/abs/x.json", "/abs/x.json"},
	}
	for _, tt := range tests {
		cfg.CacheBackend = tt.backend
		cfg.CachePath = tt.path
		if got := cfg.ResolvedCachePath(); got != tt.want {
			t.Errorf("ResolvedCachePath(%s, %q) = %q, want %q", tt.backend, tt.path, got, tt.want)
		}
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultConfigDir(); got != "/xdg/todo" {
		t.Errorf("expected /xdg/todo, got %q", got)
	}
}
