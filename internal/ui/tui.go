// Package ui provides the interactive terminal list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"todo/internal/session"
)

// Run opens the interactive list on the terminal until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, sess *session.Session) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(New(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
