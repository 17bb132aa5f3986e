package cache

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig holds configuration for a badger-backed slot.
type BadgerConfig struct {
	// Path is the directory for badger files. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in memory. Useful for testing.
	InMemory bool

	// SyncWrites makes each Put durable before returning.
	SyncWrites bool

	// Logger receives badger's internal logs. Nil disables them.
	Logger *log.Logger
}

// Badger is a Slot stored under one key in an embedded badger database.
type Badger struct {
	db  *badger.DB
	key []byte
}

// badgerLogger adapts a charmbracelet logger to badger's Logger interface.
type badgerLogger struct {
	logger *log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// OpenBadger opens (creating if needed) a badger database for the slot.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0700); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db, key: []byte(SlotName)}, nil
}

// Get implements Slot.
func (b *Badger) Get(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read badger slot: %w", err)
	}
	return data, nil
}

// Put implements Slot.
func (b *Badger) Put(ctx context.Context, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key, data)
	})
}

// Delete implements Slot.
func (b *Badger) Delete(ctx context.Context) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key)
	})
}

// Close implements Slot.
func (b *Badger) Close() error {
	return b.db.Close()
}
