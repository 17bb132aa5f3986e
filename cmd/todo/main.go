// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todo/internal/backend/googletasks"
	"todo/internal/backend/placeholder"
	"todo/internal/backend/remoteids"
	"todo/internal/cache"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/coordinator"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/store"
	"todo/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newSession)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// newSession wires the gateway, cache, store and coordinator selected by cfg.
func newSession(ctx context.Context, cfg *config.Config) (*session.Session, error) {
	logger := logging.New(os.Stderr, cfg)

	var (
		gw      service.Gateway
		closers []session.Option
	)
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		client, err := googletasks.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		slot, err := cache.OpenFile(cfg.RemoteIDsPath())
		if err != nil {
			return nil, fmt.Errorf("open remote ids: %w", err)
		}
		ids := remoteids.Wrap(client, slot, logger)
		closers = append(closers, session.WithCloser(ids))
		gw = ids
	default:
		gw = placeholder.FromConfig(cfg, logger)
	}

	if err := cfg.EnsureDir(); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	c, err := cache.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	logger.Debug("session ready", "backend", cfg.Backend, "cache", cfg.CacheBackend, "path", cfg.ResolvedCachePath())

	st := store.New(c, gw, logger)
	co := coordinator.New(st, gw, coordinator.WithLogger(logger))
	pager := view.NewPager(cfg.PageSize, cfg.PageIncrement)
	closers = append(closers, session.WithCloser(c))
	return session.New(st, co, pager, closers...), nil
}
