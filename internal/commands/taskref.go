package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/session"
	"todo/internal/task"
)

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrTaskRefNotFound indicates no task matches the reference.
	ErrTaskRefNotFound = errors.New("task not found")

	// ErrTaskRefAmbiguous indicates a prefix matches several tasks.
	ErrTaskRefAmbiguous = errors.New("ambiguous task reference")
)

// ResolveTaskRef finds the task named by ref among tasks: an exact id, or
// else a prefix that matches exactly one id. The filter is not applied.
func ResolveTaskRef(tasks []task.Task, ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, ErrTaskRefRequired
	}

	var matches []task.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("%w: %s", ErrTaskRefNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("%w: %s (matches %d tasks)", ErrTaskRefAmbiguous, ref, len(matches))
	}
}

// resolveArg resolves args[0] against the loaded session.
func resolveArg(sess *session.Session, args []string) (task.Task, error) {
	if len(args) == 0 {
		return task.Task{}, ErrTaskRefRequired
	}
	return ResolveTaskRef(sess.Tasks(), args[0])
}

func refError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
