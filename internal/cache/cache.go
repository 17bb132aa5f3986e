// Package cache persists the task list in a single named slot.
//
// The slot holds the whole serialized list; there is no versioning and no
// migration. Storage is pluggable: a JSON file, a badger key, a sqlite row or
// process memory. Every backend stores the same encoded bytes, so a slot
// written by one can be read back by any Cache over the same backend.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"todo/internal/config"
	"todo/internal/task"
)

// SlotName is the name of the single slot holding the task list.
const SlotName = "todos"

var (
	// ErrNotFound is returned by Read when the slot has never been written
	// or was cleared.
	ErrNotFound = errors.New("cache slot empty")

	// ErrMalformed is wrapped by Read when the slot exists but does not hold
	// a well-formed task list.
	ErrMalformed = errors.New("malformed cache slot")
)

// Slot is raw byte storage for one named value.
type Slot interface {
	// Get returns the stored bytes, or ErrNotFound.
	Get(ctx context.Context) ([]byte, error)

	// Put replaces the stored bytes.
	Put(ctx context.Context, data []byte) error

	// Delete removes the value. Deleting an empty slot is not an error.
	Delete(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}

// Cache reads and writes the task list through a Slot.
type Cache struct {
	slot Slot
}

// New wraps slot in a Cache.
func New(slot Slot) *Cache {
	return &Cache{slot: slot}
}

// Open opens the cache backend selected by cfg. logger receives badger's
// internal logs and may be nil.
func Open(cfg *config.Config, logger *log.Logger) (*Cache, error) {
	var (
		slot Slot
		err  error
	)
	switch cfg.CacheBackend {
	case config.CacheFile, "":
		slot, err = OpenFile(cfg.ResolvedCachePath())
	case config.CacheBadger:
		slot, err = OpenBadger(BadgerConfig{Path: cfg.ResolvedCachePath(), SyncWrites: true, Logger: logger})
	case config.CacheSQLite:
		slot, err = OpenSQLite(cfg.ResolvedCachePath())
	case config.CacheMemory:
		slot = NewMemory()
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.CacheBackend)
	}
	if err != nil {
		return nil, err
	}
	return New(slot), nil
}

// Read returns the cached task list. It returns ErrNotFound if the slot is
// absent and an error wrapping ErrMalformed if it cannot be decoded.
func (c *Cache) Read(ctx context.Context) ([]task.Task, error) {
	data, err := c.slot.Get(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Write replaces the cached task list.
func (c *Cache) Write(ctx context.Context, tasks []task.Task) error {
	data, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := c.slot.Put(ctx, data); err != nil {
		return fmt.Errorf("write cache slot: %w", err)
	}
	return nil
}

// Clear removes the slot so the next session re-seeds from the gateway.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.slot.Delete(ctx); err != nil {
		return fmt.Errorf("clear cache slot: %w", err)
	}
	return nil
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.slot.Close()
}
