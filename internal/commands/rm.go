package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd deletes a task. The local removal stands even if the remote
// delete fails.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "todo rm <ref>" }
func (c *RmCmd) NeedsSession() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return refError(errOut, ErrTaskRefRequired)
	}
	if !load(ctx, sess, errOut) {
		return exitcode.BackendError
	}
	t, err := resolveArg(sess, args)
	if err != nil {
		return refError(errOut, err)
	}
	return report(cfg, sess, sess.Remove(ctx, t.ID), out, errOut)
}
