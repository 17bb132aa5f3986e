package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"todo/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"info":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.WarnLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_DebugFlagWins(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.LogLevel = "error"
	cfg.Debug = true

	logger := New(&buf, cfg)
	logger.Debug("loaded", "source", "cache")

	if !strings.Contains(buf.String(), "loaded") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()

	logger := New(&buf, cfg)
	logger.Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
}

func TestNew_JSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.LogFormat = "json"

	New(&buf, cfg).Warn("cache write failed", "err", "disk full")

	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected JSON output, got %q", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Error("expected non-nil logger")
	}
}
