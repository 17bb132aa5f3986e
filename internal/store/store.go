// Package store holds the local task list: the single source of truth for
// rendering. It is populated once per session, from the cache if present or
// by seeding from the gateway, and re-persisted after every settled mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"todo/internal/cache"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/task"
)

// ErrNotLoaded is returned by operations that need a loaded store.
var ErrNotLoaded = errors.New("store not loaded")

// LoadError reports that the initial population failed: either the cache
// slot exists but could not be read, or it is absent and the gateway list
// call failed. It is terminal for the session's first render.
type LoadError struct {
	Err error

	// Cache is set when the slot exists but could not be read or decoded.
	// The slot is left as it was; only an explicit reset discards it.
	Cache bool
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load todos: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Source records where the initial list came from.
type Source string

const (
	SourceNone    Source = ""
	SourceCache   Source = "cache"
	SourceGateway Source = "gateway"
)

// Store is an ordered, id-unique list of tasks backed by a cache slot.
// Reads return copies; the caller never holds a reference into the list.
type Store struct {
	mu        sync.Mutex
	persistMu sync.Mutex // orders cache writes by snapshot time
	tasks     []task.Task
	loaded    bool
	source    Source

	cache *cache.Cache
	gw    service.Gateway
	log   *log.Logger
}

// New creates an empty, unloaded store.
func New(c *cache.Cache, gw service.Gateway, logger *log.Logger) *Store {
	return &Store{
		cache: c,
		gw:    gw,
		log:   logging.OrDiscard(logger),
	}
}

// EnsureLoaded populates the store on first call and is a no-op afterwards.
// A well-formed cache slot is adopted verbatim. Only an absent slot is seeded:
// the gateway list is fetched, mapped and written to the cache. A slot that
// cannot be read or decoded fails the load and is never overwritten. A failed
// load leaves the store unloaded so a later call retries.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	cached, err := s.cache.Read(ctx)
	switch {
	case err == nil:
		s.adopt(cached, SourceCache)
		s.log.Debug("loaded from cache", "tasks", len(cached))
		return nil
	case !errors.Is(err, cache.ErrNotFound):
		s.log.Warn("cache unreadable, not seeding", "err", err)
		return &LoadError{Err: err, Cache: true}
	}

	remote, err := s.gw.List(ctx)
	if err != nil {
		return &LoadError{Err: err}
	}
	seeded := task.FromRemoteList(remote)
	if err := s.cache.Write(ctx, seeded); err != nil {
		s.log.Warn("cache write failed", "err", err)
	}
	s.adopt(seeded, SourceGateway)
	s.log.Debug("seeded from gateway", "tasks", len(seeded))
	return nil
}

func (s *Store) adopt(tasks []task.Task, src Source) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	s.tasks = tasks
	s.source = src
	s.loaded = true
}

// Loaded reports whether EnsureLoaded has succeeded.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Source reports where the list was loaded from.
func (s *Store) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Reset tears the session down: the in-memory list is dropped and the next
// EnsureLoaded reads the cache again. The cache itself is untouched.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.loaded = false
	s.source = SourceNone
}

// Tasks returns a copy of the list in store order.
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return task.Clone(s.tasks)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return task.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Prepend inserts t at the front. It fails if the store is not loaded or the
// id is already present.
func (s *Store) Prepend(t task.Task) error {
	return s.Insert(0, t)
}

// Insert places t at index i (clamped to the list bounds).
func (s *Store) Insert(i int, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if s.index(t.ID) >= 0 {
		return fmt.Errorf("duplicate task id: %s", t.ID)
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.tasks) {
		i = len(s.tasks)
	}
	s.tasks = append(s.tasks, task.Task{})
	copy(s.tasks[i+1:], s.tasks[i:])
	s.tasks[i] = t
	return nil
}

// Modify applies fn to the record with the given id and returns the record
// as it was before and after. ok is false if no record has that id.
func (s *Store) Modify(id string, fn func(*task.Task)) (before, after task.Task, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return task.Task{}, task.Task{}, false
	}
	before = s.tasks[i]
	fn(&s.tasks[i])
	s.tasks[i].ID = before.ID
	return before, s.tasks[i], true
}

// Remove deletes the record with the given id and returns it with its former
// index.
func (s *Store) Remove(id string) (removed task.Task, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return task.Task{}, -1, false
	}
	removed = s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return removed, i, true
}

// Persist writes the whole list to the cache. Failures are logged and
// returned; callers treat persistence as best effort.
func (s *Store) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	snapshot := task.Clone(s.tasks)
	s.mu.Unlock()

	if err := s.cache.Write(ctx, snapshot); err != nil {
		s.log.Warn("cache write failed", "err", err)
		return err
	}
	return nil
}

// ClearCache removes the cache slot and resets the store.
func (s *Store) ClearCache(ctx context.Context) error {
	s.Reset()
	return s.cache.Clear(ctx)
}
