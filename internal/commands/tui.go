package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
	"todo/internal/ui"
)

func init() {
	Register(&TUICmd{})
}

// TUICmd opens the interactive list.
type TUICmd struct{}

func (c *TUICmd) Name() string       { return "tui" }
func (c *TUICmd) Aliases() []string  { return []string{"ui"} }
func (c *TUICmd) Synopsis() string   { return "Open the interactive task list" }
func (c *TUICmd) Usage() string      { return "todo tui" }
func (c *TUICmd) NeedsSession() bool { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if err := ui.Run(ctx, sess); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
