package commands

import (
	"context"
	"flag"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/session"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show one task" }
func (c *ShowCmd) Usage() string      { return "todo show <ref>" }
func (c *ShowCmd) NeedsSession() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
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
	output.FormatDetail(out, t)
	return exitcode.Success
}
