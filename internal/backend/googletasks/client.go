// Package googletasks implements service.Gateway on one Google Tasks list.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

const (
	// PageSize is the number of tasks requested per API page.
	PageSize = 100

	// APITimeout bounds each API call when the config sets no timeout.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Gateway using the Google Tasks API.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
	log     *log.Logger
}

// OAuthConfig reads the OAuth client credentials from cfg.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}
	return oauthConfig, nil
}

// New creates a client for cfg.ListID.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}

	// Refreshes automatically.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	c, err := NewWithOptions(ctx, cfg.ListID, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	if cfg.Timeout.Duration > 0 {
		c.timeout = cfg.Timeout.Duration
	}
	c.log = logging.OrDiscard(logger)
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client.
func NewWithHTTPClient(ctx context.Context, listID string, httpClient *http.Client) (*Client, error) {
	return NewWithOptions(ctx, listID, option.WithHTTPClient(httpClient))
}

// NewWithOptions creates a client with explicit API client options.
func NewWithOptions(ctx context.Context, listID string, opts ...option.ClientOption) (*Client, error) {
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if listID == "" {
		listID = config.DefaultListID
	}
	return &Client{svc: svc, listID: listID, timeout: APITimeout, log: logging.Discard()}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// List implements service.Gateway. Completed and hidden tasks are included.
func (c *Client) List(ctx context.Context) ([]service.RemoteTask, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	result := []service.RemoteTask{}
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, fromAPI(t))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError("list", err)
	}
	c.log.Debug("listed tasks", "list", c.listID, "count", len(result))
	return result, nil
}

// Create implements service.Gateway.
func (c *Client) Create(ctx context.Context, title string) (service.RemoteTask, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	t, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{Title: title, Status: statusNeedsAction}).Context(ctx).Do()
	if err != nil {
		return service.RemoteTask{}, wrapError("create", err)
	}
	return fromAPI(t), nil
}

// Patch implements service.Gateway.
func (c *Client) Patch(ctx context.Context, id string, fields service.PatchFields) (service.RemoteTask, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body := &tasks.Task{}
	if fields.Title != nil {
		body.Title = *fields.Title
	}
	if fields.Completed != nil {
		body.Status = statusNeedsAction
		if *fields.Completed {
			body.Status = statusCompleted
		}
	}

	t, err := c.svc.Tasks.Patch(c.listID, id, body).Context(ctx).Do()
	if err != nil {
		return service.RemoteTask{}, wrapError("patch", err)
	}
	return fromAPI(t), nil
}

// Delete implements service.Gateway.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError("delete", err)
	}
	return nil
}

func fromAPI(t *tasks.Task) service.RemoteTask {
	return service.RemoteTask{
		ID:        t.Id,
		Title:     t.Title,
		Completed: t.Status == statusCompleted,
	}
}

// wrapError turns API errors into gateway errors with user-friendly messages.
func wrapError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &service.GatewayError{Op: op, Err: fmt.Errorf("request timed out")}
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return &service.GatewayError{Op: op, Err: err}
	}
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		err = fmt.Errorf("token expired or revoked (run: %s login)", config.AppName)
	case http.StatusNotFound:
		err = fmt.Errorf("not found")
	}
	return &service.GatewayError{Op: op, Status: apiErr.Code, Err: err}
}
