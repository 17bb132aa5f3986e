package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/backend/googletasks"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/session"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd authorizes the googletasks backend.
type LoginCmd struct{}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Authenticate with Google (googletasks backend)" }
func (c *LoginCmd) Usage() string      { return "todo login" }
func (c *LoginCmd) NeedsSession() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if !cfg.NeedsOAuth() {
		if !cfg.Quiet {
			fmt.Fprintf(out, "backend %s needs no login\n", cfg.Backend)
		}
		return exitcode.Success
	}

	if !cfg.HasOAuthClient() {
		printOAuthSetup(cfg, errOut)
		return exitcode.AuthError
	}

	if cfg.HasToken() && googletasks.TokenValid(ctx, cfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	flow, err := googletasks.StartFlow(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer flow.Close()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, flow.AuthURL())

	token, err := flow.Wait(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.TokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func printOAuthSetup(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(errOut, "To use the Google Tasks backend, you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
	fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON")
	fmt.Fprintf(errOut, "4. Save it as %s/%s\n", cfg.Dir, config.OAuthClientFile)
	fmt.Fprintln(errOut, "")
	fmt.Fprintf(errOut, "Then run '%s login' again.\n", config.AppName)
}
