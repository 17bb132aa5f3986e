package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"todo/internal/config"
)

const (
	// CallbackTimeout bounds the wait for the browser redirect.
	CallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	callbackStartPort = 8085

	// Max port attempts
	callbackMaxPortAttempts = 5
)

// LoadToken reads the stored token from cfg.
func LoadToken(cfg *config.Config) (*oauth2.Token, error) {
	data, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}
	return &token, nil
}

// SaveToken writes token to path with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// TokenValid reports whether the stored token parses, carries a refresh
// token and can be refreshed against the provider.
func TokenValid(ctx context.Context, cfg *config.Config) bool {
	token, err := LoadToken(cfg)
	if err != nil || token.RefreshToken == "" {
		return false
	}
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = oauthConfig.TokenSource(ctx, token).Token()
	return err == nil
}

// Flow is one interactive authorization: a local callback server plus the
// PKCE verifier bound to its redirect URL.
type Flow struct {
	config   *oauth2.Config
	listener net.Listener
	verifier string
}

// StartFlow binds the callback listener and returns the flow.
func StartFlow(cfg *config.Config) (*Flow, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	port, listener, err := listenCallback()
	if err != nil {
		return nil, fmt.Errorf("could not bind to local port for OAuth callback")
	}
	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	return &Flow{config: oauthConfig, listener: listener, verifier: oauth2.GenerateVerifier()}, nil
}

// AuthURL is the URL the user opens in a browser.
func (f *Flow) AuthURL() string {
	return f.config.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(f.verifier),
	)
}

// Close releases the callback listener.
func (f *Flow) Close() error {
	return f.listener.Close()
}

// Wait serves the callback until a code arrives, then exchanges it.
func (f *Flow) Wait(ctx context.Context) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			errCh <- fmt.Errorf("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(f.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(CallbackTimeout):
		return nil, fmt.Errorf("oauth callback timed out")
	case <-ctx.Done():
		return nil, fmt.Errorf("cancelled")
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	token, err := f.config.Exchange(exchangeCtx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

func listenCallback() (int, net.Listener, error) {
	for i := 0; i < callbackMaxPortAttempts; i++ {
		port := callbackStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port found")
}
