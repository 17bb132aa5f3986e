package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd retitles a task. The description follows the title.
type EditCmd struct{}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"update"} }
func (c *EditCmd) Synopsis() string   { return "Retitle a task" }
func (c *EditCmd) Usage() string      { return "todo edit <ref> <title...>" }
func (c *EditCmd) NeedsSession() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return refError(errOut, ErrTaskRefRequired)
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	if !load(ctx, sess, errOut) {
		return exitcode.BackendError
	}

	t, err := resolveArg(sess, args)
	if err != nil {
		return refError(errOut, err)
	}
	if _, err := sess.BeginEdit(t.ID); err != nil {
		if errors.Is(err, session.ErrCompletedNotEditable) {
			fmt.Fprintf(errOut, "error: %v (mark it incomplete first)\n", err)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}
	res := sess.Save(ctx, strings.Join(args[1:], " "))
	return report(cfg, sess, res, out, errOut)
}
