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
	Register(&DoneCmd{})
}

// DoneCmd flips the completed flag of a task. Running it on a completed
// task marks it incomplete again.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string   { return "Toggle a task completed or incomplete" }
func (c *DoneCmd) Usage() string      { return "todo done <ref>" }
func (c *DoneCmd) NeedsSession() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
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
	return report(cfg, sess, sess.Toggle(ctx, t.ID), out, errOut)
}
