// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"todo/internal/service"
)

// ErrNotFound is returned when a remote record is not found.
var ErrNotFound = errors.New("not found")

// Call records one gateway invocation.
type Call struct {
	Op     string
	ID     string
	Title  string
	Fields service.PatchFields
}

// FakeGateway is an in-memory implementation of service.Gateway for testing.
// Like the public endpoint it mirrors, writes succeed without being required
// to target an existing record unless Strict is set.
type FakeGateway struct {
	mu     sync.Mutex
	tasks  []service.RemoteTask
	nextID int
	calls  []Call

	// Strict makes Patch and Delete fail with ErrNotFound for unknown ids.
	Strict bool

	// Error injection for testing
	ListErr   error
	CreateErr error
	PatchErr  error
	DeleteErr error

	// Block, if non-nil, is received from before each mutating call returns,
	// letting tests observe the in-flight window.
	Block chan struct{}
}

// NewFakeGateway creates a FakeGateway with no records.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{nextID: 200}
}

// AddTask adds a remote record.
func (f *FakeGateway) AddTask(id int, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.RemoteTask{
		ID:        strconv.Itoa(id),
		Title:     title,
		Completed: completed,
	})
}

// Calls returns the recorded invocations in order.
func (f *FakeGateway) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times op was invoked.
func (f *FakeGateway) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *FakeGateway) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *FakeGateway) wait(ctx context.Context) error {
	if f.Block == nil {
		return nil
	}
	select {
	case <-f.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func gatewayErr(op string, err error) error {
	return &service.GatewayError{Op: op, Err: err}
}

// List implements service.Gateway.
func (f *FakeGateway) List(ctx context.Context) ([]service.RemoteTask, error) {
	f.record(Call{Op: "list"})
	if f.ListErr != nil {
		return nil, gatewayErr("list", f.ListErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]service.RemoteTask, len(f.tasks))
	copy(result, f.tasks)
	return result, nil
}

// Create implements service.Gateway.
func (f *FakeGateway) Create(ctx context.Context, title string) (service.RemoteTask, error) {
	f.record(Call{Op: "create", Title: title})
	if err := f.wait(ctx); err != nil {
		return service.RemoteTask{}, gatewayErr("create", err)
	}
	if f.CreateErr != nil {
		return service.RemoteTask{}, gatewayErr("create", f.CreateErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rt := service.RemoteTask{ID: strconv.Itoa(f.nextID), Title: title}
	f.tasks = append(f.tasks, rt)
	return rt, nil
}

// Patch implements service.Gateway.
func (f *FakeGateway) Patch(ctx context.Context, remoteID string, fields service.PatchFields) (service.RemoteTask, error) {
	f.record(Call{Op: "patch", ID: remoteID, Fields: fields})
	if err := f.wait(ctx); err != nil {
		return service.RemoteTask{}, gatewayErr("patch", err)
	}
	if f.PatchErr != nil {
		return service.RemoteTask{}, gatewayErr("patch", f.PatchErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != remoteID {
			continue
		}
		if fields.Title != nil {
			f.tasks[i].Title = *fields.Title
		}
		if fields.Completed != nil {
			f.tasks[i].Completed = *fields.Completed
		}
		return f.tasks[i], nil
	}
	if f.Strict {
		return service.RemoteTask{}, gatewayErr("patch", ErrNotFound)
	}
	rt := service.RemoteTask{ID: remoteID}
	if fields.Title != nil {
		rt.Title = *fields.Title
	}
	if fields.Completed != nil {
		rt.Completed = *fields.Completed
	}
	return rt, nil
}

// Delete implements service.Gateway.
func (f *FakeGateway) Delete(ctx context.Context, remoteID string) error {
	f.record(Call{Op: "delete", ID: remoteID})
	if err := f.wait(ctx); err != nil {
		return gatewayErr("delete", err)
	}
	if f.DeleteErr != nil {
		return gatewayErr("delete", f.DeleteErr)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == remoteID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	if f.Strict {
		return gatewayErr("delete", ErrNotFound)
	}
	return nil
}
