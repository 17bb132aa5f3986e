// Package coordinator applies create, update, toggle and remove to the local
// store and mirrors them to the gateway.
//
// Create and update call the gateway first and touch the store only on
// success. Toggle and remove change the store immediately, persist, then
// call the gateway; on failure the Policy decides whether the change is
// undone. Every outcome replaces the current status message.
//
// Operations on the same id may interleave at gateway-call boundaries. The
// store stays internally consistent, but e.g. a toggle rollback racing a
// remove of the same record can leave either end state.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/store"
	"todo/internal/task"
)

// Status messages.
const (
	msgAdded      = "Todo added successfully!"
	msgUpdated    = "Todo updated successfully!"
	msgCompleted  = "Task completed!"
	msgIncomplete = "Task marked as incomplete!"
	msgDeleted    = "Todo deleted successfully!"

	prefixSaveFailed   = "Failed to save todo: "
	prefixStatusFailed = "Failed to update task status: "
	prefixDeleteFailed = "Failed to delete todo: "
)

// Coordinator orchestrates mutations against a store and a gateway.
type Coordinator struct {
	store   *store.Store
	gw      service.Gateway
	policy  Policy
	newID   func() string
	log     *log.Logger
	observe func(Transition)

	mu     sync.Mutex
	status Status
	saving bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicy overrides the rollback policy.
func WithPolicy(p Policy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// WithIDGenerator overrides how new task ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) { c.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// WithObserver registers fn to receive every phase transition.
func WithObserver(fn func(Transition)) Option {
	return func(c *Coordinator) { c.observe = fn }
}

// New returns a Coordinator over st and gw.
func New(st *store.Store, gw service.Gateway, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  st,
		gw:     gw,
		policy: DefaultPolicy(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDiscard(c.log)
	return c
}

// Status returns the most recent status message.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// DismissStatus clears the status message.
func (c *Coordinator) DismissStatus() {
	c.setStatus(Status{})
}

// Saving reports whether a create or update is in flight.
func (c *Coordinator) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

func (c *Coordinator) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

func (c *Coordinator) succeed(msg string) {
	c.setStatus(Status{Message: msg, Severity: SeveritySuccess})
}

func (c *Coordinator) fail(msg string) {
	c.setStatus(Status{Message: msg, Severity: SeverityFailure})
}

func (c *Coordinator) beginSave() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saving {
		return false
	}
	c.saving = true
	return true
}

func (c *Coordinator) endSave() {
	c.mu.Lock()
	c.saving = false
	c.mu.Unlock()
}

func (c *Coordinator) transition(kind Kind, id string, phase Phase) {
	c.log.Debug("mutation", "op", kind, "id", id, "phase", phase)
	if c.observe != nil {
		c.observe(Transition{Kind: kind, ID: id, Phase: phase})
	}
}

func (c *Coordinator) settle(out Outcome) Outcome {
	if out.Err != nil && service.IsGatewayError(out.Err) {
		c.log.Warn("gateway call failed", "op", out.Kind, "id", out.ID, "phase", out.Phase, "err", out.Err)
	}
	c.transition(out.Kind, out.ID, out.Phase)
	return out
}

func (c *Coordinator) reject(kind Kind, id string, err error) Outcome {
	return c.settle(Outcome{Kind: kind, ID: id, Phase: PhaseRejected, Err: err})
}

func (c *Coordinator) persist(ctx context.Context) {
	// Best effort: the store logs failures.
	_ = c.store.Persist(ctx)
}

// validateSave runs the checks shared by create and update. A failed title
// check replaces the status; a save already in flight leaves it alone.
func (c *Coordinator) validateSave(kind Kind, id, title string) (Outcome, bool) {
	if err := task.ValidateTitle(title); err != nil {
		c.fail(err.Error())
		return c.reject(kind, id, err), false
	}
	if !c.beginSave() {
		return c.reject(kind, id, ErrSaveInFlight), false
	}
	return Outcome{}, true
}

// Create adds a task with the given title. The gateway is called first; the
// record is prepended to the store only if the call succeeds. The locally
// generated id is authoritative; a gateway that implements service.Linker
// is told which remote id it stands for.
func (c *Coordinator) Create(ctx context.Context, title string) Outcome {
	if out, ok := c.validateSave(KindCreate, "", title); !ok {
		return out
	}
	defer c.endSave()
	c.DismissStatus()

	if !c.store.Loaded() {
		c.fail(prefixSaveFailed + store.ErrNotLoaded.Error())
		return c.reject(KindCreate, "", store.ErrNotLoaded)
	}

	t := task.New(c.newID(), title)
	c.transition(KindCreate, t.ID, PhasePending)

	remote, err := c.gw.Create(ctx, t.Title)
	if err != nil {
		c.fail(prefixSaveFailed + err.Error())
		return c.settle(Outcome{Kind: KindCreate, ID: t.ID, Phase: PhaseFailed, Task: t, Err: err})
	}
	if l, ok := c.gw.(service.Linker); ok {
		if err := l.Link(ctx, t.ID, remote.ID); err != nil {
			c.log.Warn("could not record remote id", "id", t.ID, "remote", remote.ID, "err", err)
		}
	}
	if err := c.store.Prepend(t); err != nil {
		c.fail(prefixSaveFailed + err.Error())
		return c.settle(Outcome{Kind: KindCreate, ID: t.ID, Phase: PhaseFailed, Task: t, Err: err})
	}
	c.persist(ctx)
	c.succeed(msgAdded)
	return c.settle(Outcome{Kind: KindCreate, ID: t.ID, Phase: PhaseCommitted, Task: t})
}

// Update retitles the task with the given id. The gateway is patched first;
// title and description are rewritten only if the call succeeds.
func (c *Coordinator) Update(ctx context.Context, id, title string) Outcome {
	if out, ok := c.validateSave(KindUpdate, id, title); !ok {
		return out
	}
	defer c.endSave()
	c.DismissStatus()

	current, ok := c.store.Get(id)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		c.fail(prefixSaveFailed + err.Error())
		return c.reject(KindUpdate, id, err)
	}

	title = strings.TrimSpace(title)
	c.transition(KindUpdate, id, PhasePending)

	if _, err := c.gw.Patch(ctx, id, service.TitlePatch(title)); err != nil {
		c.fail(prefixSaveFailed + err.Error())
		return c.settle(Outcome{Kind: KindUpdate, ID: id, Phase: PhaseFailed, Task: current, Err: err})
	}

	_, after, ok := c.store.Modify(id, func(t *task.Task) {
		t.Title = title
		t.Description = title
	})
	if !ok {
		// Removed while the patch was in flight; nothing left to rewrite.
		c.log.Debug("updated task vanished before commit", "id", id)
		after = current
	}
	c.persist(ctx)
	c.succeed(msgUpdated)
	return c.settle(Outcome{Kind: KindUpdate, ID: id, Phase: PhaseCommitted, Task: after})
}

// Toggle flips the completed flag immediately, persists, then patches the
// gateway. If the call fails and the policy says so, the flag is restored to
// its pre-call value and persisted again.
func (c *Coordinator) Toggle(ctx context.Context, id string) Outcome {
	c.DismissStatus()

	before, after, ok := c.store.Modify(id, func(t *task.Task) {
		t.Completed = !t.Completed
	})
	if !ok {
		err := fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		c.fail(prefixStatusFailed + err.Error())
		return c.reject(KindToggle, id, err)
	}
	c.persist(ctx)
	c.transition(KindToggle, id, PhasePending)

	if _, err := c.gw.Patch(ctx, id, service.CompletedPatch(after.Completed)); err != nil {
		c.fail(prefixStatusFailed + err.Error())
		if !c.policy.RollbackToggle {
			return c.settle(Outcome{Kind: KindToggle, ID: id, Phase: PhaseCommitted, Task: after, Err: err})
		}
		_, restored, ok := c.store.Modify(id, func(t *task.Task) {
			t.Completed = before.Completed
		})
		if !ok {
			restored = before
		}
		c.persist(ctx)
		return c.settle(Outcome{Kind: KindToggle, ID: id, Phase: PhaseRolledBack, Task: restored, Err: err})
	}

	if after.Completed {
		c.succeed(msgCompleted)
	} else {
		c.succeed(msgIncomplete)
	}
	return c.settle(Outcome{Kind: KindToggle, ID: id, Phase: PhaseCommitted, Task: after})
}

// Remove deletes the task immediately, persists, then calls the gateway. With
// the default policy a failed call does not restore the record.
func (c *Coordinator) Remove(ctx context.Context, id string) Outcome {
	c.DismissStatus()

	removed, index, ok := c.store.Remove(id)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrTaskNotFound, id)
		c.fail(prefixDeleteFailed + err.Error())
		return c.reject(KindRemove, id, err)
	}
	c.persist(ctx)
	c.transition(KindRemove, id, PhasePending)

	if err := c.gw.Delete(ctx, id); err != nil {
		c.fail(prefixDeleteFailed + err.Error())
		if !c.policy.RollbackRemove {
			return c.settle(Outcome{Kind: KindRemove, ID: id, Phase: PhaseCommitted, Task: removed, Err: err})
		}
		if ierr := c.store.Insert(index, removed); ierr != nil {
			c.log.Warn("could not restore removed task", "id", id, "err", ierr)
		}
		c.persist(ctx)
		return c.settle(Outcome{Kind: KindRemove, ID: id, Phase: PhaseRolledBack, Task: removed, Err: err})
	}

	c.succeed(msgDeleted)
	return c.settle(Outcome{Kind: KindRemove, ID: id, Phase: PhaseCommitted, Task: removed})
}

// IsValidation reports whether err is a title validation failure.
func IsValidation(err error) bool {
	var ve *task.ValidationError
	return errors.As(err, &ve)
}
