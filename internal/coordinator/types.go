package coordinator

import (
	"errors"

	"todo/internal/task"
)

var (
	// ErrSaveInFlight rejects a create or update while another is pending.
	ErrSaveInFlight = errors.New("a save is already in progress")

	// ErrTaskNotFound rejects an operation on an id the store does not hold.
	ErrTaskNotFound = errors.New("task not found")
)

// Kind names a mutation.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindToggle Kind = "toggle"
	KindRemove Kind = "remove"
)

// Phase is where a mutation is in its lifecycle.
//
//	Pending    the gateway call is in flight (optimistic change applied, if any)
//	Committed  the local change stands
//	RolledBack the store is back to its pre-operation state
//	Rejected   refused before any side effect
//	Failed     the gateway call failed and no local change had been applied
type Phase int

const (
	PhasePending Phase = iota
	PhaseCommitted
	PhaseRolledBack
	PhaseRejected
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseCommitted:
		return "committed"
	case PhaseRolledBack:
		return "rolled-back"
	case PhaseRejected:
		return "rejected"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Severity styles a status message.
type Severity int

const (
	SeverityNone Severity = iota
	SeveritySuccess
	SeverityFailure
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityFailure:
		return "failure"
	default:
		return "none"
	}
}

// Status is the single most recent outcome message.
type Status struct {
	Message  string
	Severity Severity
}

// IsZero reports whether no status is shown.
func (s Status) IsZero() bool {
	return s.Message == ""
}

// Outcome is the settled result of one mutation.
type Outcome struct {
	Kind  Kind
	ID    string
	Phase Phase

	// Task is the record as the store holds it after the operation, or the
	// record that was removed.
	Task task.Task

	// Err is the validation, guard or gateway error, if any. A Committed
	// outcome can carry a gateway error when the policy keeps the local
	// change despite the remote failure.
	Err error
}

// OK reports whether the operation settled without error.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Transition is reported to observers on every phase change.
type Transition struct {
	Kind  Kind
	ID    string
	Phase Phase
}

// Policy decides which optimistic mutations are undone when the gateway
// call fails. Create and update are applied only after the gateway succeeds
// and need no rollback.
type Policy struct {
	RollbackToggle bool
	RollbackRemove bool
}

// DefaultPolicy rolls back toggles but keeps removals.
func DefaultPolicy() Policy {
	return Policy{RollbackToggle: true, RollbackRemove: false}
}
