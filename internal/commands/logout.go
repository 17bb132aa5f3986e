package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/cache"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd removes the stored token. The cached list belongs to the account
// that seeded it, so it is cleared too unless --keep-cache is given.
type LogoutCmd struct {
	keepCache bool
}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove stored Google credentials" }
func (c *LogoutCmd) Usage() string      { return "todo logout [--keep-cache]" }
func (c *LogoutCmd) NeedsSession() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.keepCache, "keep-cache", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}

	if !c.keepCache && cfg.Backend == config.BackendGoogleTasks {
		if err := clearCache(ctx, cfg); err != nil {
			fmt.Fprintf(errOut, "error: clear cache: %v\n", err)
			return exitcode.BackendError
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// clearCache drops the cached list and the remote id pairings made for it.
func clearCache(ctx context.Context, cfg *config.Config) error {
	c, err := cache.Open(cfg, nil)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Clear(ctx); err != nil {
		return err
	}
	ids, err := cache.OpenFile(cfg.RemoteIDsPath())
	if err != nil {
		return err
	}
	return ids.Delete(ctx)
}
