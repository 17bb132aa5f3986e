package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/session"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list [--search q] [--pages n]`.
type ListCmd struct {
	search string
	pages  int
	all    bool
}

// SetSearch sets the filter query (for testing).
func (c *ListCmd) SetSearch(q string) {
	c.search = q
}

// SetPages sets how many pages to reveal (for testing).
func (c *ListCmd) SetPages(n int) {
	c.pages = n
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "todo list [--search <text>] [--pages <n> | --all]" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "s", "", "")
	fs.IntVar(&c.pages, "pages", 1, "")
	fs.IntVar(&c.pages, "p", 1, "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	pages := c.pages
	if pages == 0 {
		pages = 1
	}
	if pages < 1 {
		fmt.Fprintf(errOut, "error: invalid page count: %d\n", c.pages)
		return exitcode.UserError
	}

	// Positional words are an alternative to --search.
	query := c.search
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}

	if !load(ctx, sess, errOut) {
		return exitcode.BackendError
	}

	sess.SetFilter(query)
	for i := 1; i < pages; i++ {
		sess.LoadMore()
	}
	if c.all {
		for sess.View().More() {
			sess.LoadMore()
		}
	}

	v := sess.View()
	if len(v.Tasks) == 0 && cfg.Quiet {
		return exitcode.Success
	}
	output.FormatView(out, v)
	return exitcode.Success
}
