// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/coordinator"
	"todo/internal/exitcode"
	"todo/internal/session"
	"todo/internal/store"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsSession returns true if the command works on the task list.
	// Commands like help, version, login, logout return false.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided.
	// sess is nil if NeedsSession() returns false. It is not loaded yet.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int
}

// load populates the session, printing the load failure on errOut.
func load(ctx context.Context, sess *session.Session, errOut io.Writer) bool {
	if err := sess.Load(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		var le *store.LoadError
		if errors.As(err, &le) && le.Cache {
			fmt.Fprintf(errOut, "hint: run '%s reset' to discard the local cache and reseed\n", config.AppName)
		}
		return false
	}
	return true
}

// report prints the status of a settled mutation and maps it to an exit code.
// A gateway failure is reported even when the local change stands.
func report(cfg *config.Config, sess *session.Session, res coordinator.Outcome, out, errOut io.Writer) int {
	st := sess.Status()
	if res.Err == nil {
		if !cfg.Quiet && st.Message != "" {
			fmt.Fprintln(out, st.Message)
		}
		return exitcode.Success
	}

	msg := st.Message
	if st.Severity != coordinator.SeverityFailure || msg == "" {
		msg = res.Err.Error()
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)

	switch {
	case coordinator.IsValidation(res.Err),
		errors.Is(res.Err, coordinator.ErrTaskNotFound),
		errors.Is(res.Err, coordinator.ErrSaveInFlight):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}
