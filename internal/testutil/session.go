package testutil

import (
	"context"
	"strconv"
	"testing"

	"todo/internal/cache"
	"todo/internal/coordinator"
	"todo/internal/session"
	"todo/internal/store"
	"todo/internal/task"
	"todo/internal/view"
)

// Harness bundles a session with the pieces behind it.
type Harness struct {
	Session *session.Session
	Gateway *FakeGateway
	Store   *store.Store
	Cache   *cache.Cache
	Slot    *cache.Memory
}

// NewHarness returns a session over an in-memory cache and gw. If seed is
// non-nil it is written to the cache first, so loading adopts it verbatim.
// Generated ids are "id-1", "id-2", ...
func NewHarness(t *testing.T, gw *FakeGateway, seed []task.Task) *Harness {
	t.Helper()
	if gw == nil {
		gw = NewFakeGateway()
	}
	slot := cache.NewMemory()
	c := cache.New(slot)
	if seed != nil {
		if err := c.Write(context.Background(), seed); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
	}
	st := store.New(c, gw, nil)

	n := 0
	co := coordinator.New(st, gw, coordinator.WithIDGenerator(func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}))
	sess := session.New(st, co, view.NewPager(view.DefaultPageSize, view.DefaultIncrement), session.WithCloser(c))
	t.Cleanup(func() { _ = sess.Close() })

	return &Harness{Session: sess, Gateway: gw, Store: st, Cache: c, Slot: slot}
}

// Tasks builds n records titled "Task 1".."Task n" with ids "1".."n".
func Tasks(n int) []task.Task {
	out := make([]task.Task, n)
	for i := range out {
		id := strconv.Itoa(i + 1)
		out[i] = task.Task{ID: id, Title: "Task " + id, Description: "Task " + id, DueLabel: task.UnknownDue}
	}
	return out
}

