package service

import (
	"errors"
	"fmt"
)

// RemoteTask is a task record as the gateway returns it.
type RemoteTask struct {
	ID        string
	Title     string
	Completed bool
}

// PatchFields holds the fields to change in a Patch call.
// Nil fields are left out of the request.
type PatchFields struct {
	Title     *string
	Completed *bool
}

// TitlePatch returns PatchFields that change only the title.
func TitlePatch(title string) PatchFields {
	return PatchFields{Title: &title}
}

// CompletedPatch returns PatchFields that change only the completed flag.
func CompletedPatch(completed bool) PatchFields {
	return PatchFields{Completed: &completed}
}

// GatewayError reports a failed remote call: a non-success HTTP status or a
// transport failure.
type GatewayError struct {
	Op     string // list, create, patch, delete
	Status int    // HTTP status, 0 for transport failures
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: http status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err is or wraps a *GatewayError.
func IsGatewayError(err error) bool {
	var ge *GatewayError
	return errors.As(err, &ge)
}
