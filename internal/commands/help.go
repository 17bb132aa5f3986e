package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd returns a help command listing the commands in r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %-52s %s\n", "todo", "List the first page of tasks")
	for _, cmd := range c.registry.All() {
		usage := cmd.Usage()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			usage += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-52s %s\n", usage, cmd.Synopsis())
	}
	fmt.Fprint(out, commonFlagsText)
	return exitcode.Success
}

const commonFlagsText = `
Tasks are referenced by id or by a unique id prefix.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
