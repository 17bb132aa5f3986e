package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
)

func init() {
	Register(&ResetCmd{})
}

// ResetCmd drops the cached list. The next command reseeds from the remote.
type ResetCmd struct{}

func (c *ResetCmd) Name() string       { return "reset" }
func (c *ResetCmd) Aliases() []string  { return nil }
func (c *ResetCmd) Synopsis() string   { return "Discard local changes and reseed from the remote" }
func (c *ResetCmd) Usage() string      { return "todo reset" }
func (c *ResetCmd) NeedsSession() bool { return true }

func (c *ResetCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ResetCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if err := sess.Reset(ctx); err != nil {
		fmt.Fprintf(errOut, "error: cache error: %v\n", err)
		return exitcode.BackendError
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
