// Package session ties the store, coordinator and pager together into the
// state one interactive user sees: the filtered page, the edit target and
// the status line.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"todo/internal/coordinator"
	"todo/internal/store"
	"todo/internal/task"
	"todo/internal/view"
)

var (
	// ErrNoSuchTask is returned when an edit targets an unknown id.
	ErrNoSuchTask = errors.New("no such task")

	// ErrCompletedNotEditable is returned when an edit targets a completed task.
	ErrCompletedNotEditable = errors.New("completed tasks cannot be edited")
)

// Session is the per-user facade over the task list.
type Session struct {
	store *store.Store
	coord *coordinator.Coordinator
	pager *view.Pager

	mu      sync.Mutex
	query   string
	editing string

	closers []io.Closer
}

// Option configures a Session.
type Option func(*Session)

// WithCloser registers c to be closed by Close.
func WithCloser(c io.Closer) Option {
	return func(s *Session) { s.closers = append(s.closers, c) }
}

// New returns a Session. A nil pager gets the default page size and
// increment.
func New(st *store.Store, co *coordinator.Coordinator, pager *view.Pager, opts ...Option) *Session {
	if pager == nil {
		pager = view.NewPager(view.DefaultPageSize, view.DefaultIncrement)
	}
	s := &Session{store: st, coord: co, pager: pager}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load populates the store on first use. Later calls are no-ops.
func (s *Session) Load(ctx context.Context) error {
	return s.store.EnsureLoaded(ctx)
}

// Loaded reports whether the store holds a list.
func (s *Session) Loaded() bool {
	return s.store.Loaded()
}

// Tasks returns every record in store order, unfiltered.
func (s *Session) Tasks() []task.Task {
	return s.store.Tasks()
}

// Task returns the record with the given id.
func (s *Session) Task(id string) (task.Task, bool) {
	return s.store.Get(id)
}

// View returns the current visible page.
func (s *Session) View() view.View {
	return view.Project(s.store.Tasks(), s.Filter(), s.pager.Size())
}

// SetFilter replaces the search query. The page size is not reset.
func (s *Session) SetFilter(q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Filter returns the current search query.
func (s *Session) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// LoadMore grows the page by the pager increment and returns the new size.
func (s *Session) LoadMore() int {
	return s.pager.LoadMore()
}

// PageSize returns the current page size.
func (s *Session) PageSize() int {
	return s.pager.Size()
}

// Status returns the current status message.
func (s *Session) Status() coordinator.Status {
	return s.coord.Status()
}

// DismissStatus clears the status message.
func (s *Session) DismissStatus() {
	s.coord.DismissStatus()
}

// Saving reports whether a create or update is in flight.
func (s *Session) Saving() bool {
	return s.coord.Saving()
}

// Create adds a task. When the visible page had room before the create, the
// page grows by one so the newcomer does not push an existing row off.
func (s *Session) Create(ctx context.Context, title string) coordinator.Outcome {
	before := s.View()
	out := s.coord.Create(ctx, title)
	if out.Phase == coordinator.PhaseCommitted && len(before.Tasks) < before.PageSize {
		s.pager.Grow(1)
	}
	return out
}

// Update retitles the task with the given id.
func (s *Session) Update(ctx context.Context, id, title string) coordinator.Outcome {
	return s.coord.Update(ctx, id, title)
}

// Toggle flips the completed flag of the task with the given id.
func (s *Session) Toggle(ctx context.Context, id string) coordinator.Outcome {
	return s.coord.Toggle(ctx, id)
}

// Remove deletes the task with the given id. If it was the edit target, edit
// mode ends.
func (s *Session) Remove(ctx context.Context, id string) coordinator.Outcome {
	out := s.coord.Remove(ctx, id)
	if out.Phase == coordinator.PhaseCommitted {
		s.mu.Lock()
		if s.editing == id {
			s.editing = ""
		}
		s.mu.Unlock()
	}
	return out
}

// BeginEdit puts the session in edit mode for id and returns the record so
// the caller can prefill its form.
func (s *Session) BeginEdit(id string) (task.Task, error) {
	t, ok := s.store.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", ErrNoSuchTask, id)
	}
	if t.Completed {
		return task.Task{}, ErrCompletedNotEditable
	}
	s.mu.Lock()
	s.editing = id
	s.mu.Unlock()
	s.coord.DismissStatus()
	return t, nil
}

// CancelEdit leaves edit mode without saving.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	s.editing = ""
	s.mu.Unlock()
}

// Editing returns the id being edited, or "" in create mode.
func (s *Session) Editing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Save submits the form: an update in edit mode, otherwise a create. A
// committed save leaves edit mode.
func (s *Session) Save(ctx context.Context, title string) coordinator.Outcome {
	id := s.Editing()
	if id == "" {
		return s.Create(ctx, title)
	}
	out := s.Update(ctx, id, strings.TrimSpace(title))
	if out.Phase == coordinator.PhaseCommitted {
		s.mu.Lock()
		if s.editing == id {
			s.editing = ""
		}
		s.mu.Unlock()
	}
	return out
}

// Reset drops the local list and the cached copy. The next Load reseeds
// from the gateway.
func (s *Session) Reset(ctx context.Context) error {
	s.CancelEdit()
	s.coord.DismissStatus()
	return s.store.ClearCache(ctx)
}

// Close tears down the store and releases registered resources.
func (s *Session) Close() error {
	s.store.Reset()
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
