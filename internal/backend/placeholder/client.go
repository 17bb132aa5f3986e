// Package placeholder implements service.Gateway against a JSONPlaceholder
// style REST collection: GET for the list, POST to create, PATCH and DELETE
// on /{id}. Writes are acknowledged but not durably stored by the public
// endpoint.
package placeholder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

// DefaultUserID is sent with every create.
const DefaultUserID = 1

// Client implements service.Gateway over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	log      *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the collection at endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDiscard(c.log)
	return c
}

// FromConfig returns a client for cfg.Endpoint with cfg.Timeout applied.
func FromConfig(cfg *config.Config, logger *log.Logger) *Client {
	return New(cfg.Endpoint, WithTimeout(cfg.Timeout.Duration), WithLogger(logger))
}

// remoteID accepts both numeric and string ids.
type remoteID string

func (id *remoteID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = remoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = remoteID(n.String())
	return nil
}

type wireTask struct {
	ID        remoteID `json:"id"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
}

func (w wireTask) remote() service.RemoteTask {
	return service.RemoteTask{ID: string(w.ID), Title: w.Title, Completed: w.Completed}
}

type createBody struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId"`
}

type patchBody struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// List implements service.Gateway.
func (c *Client) List(ctx context.Context) ([]service.RemoteTask, error) {
	var wire []wireTask
	if err := c.do(ctx, "list", http.MethodGet, c.endpoint, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]service.RemoteTask, len(wire))
	seen := make(map[remoteID]bool, len(wire))
	for i, w := range wire {
		switch {
		case w.ID == "":
			return nil, &service.GatewayError{Op: "list", Err: fmt.Errorf("record %d has no id", i)}
		case seen[w.ID]:
			return nil, &service.GatewayError{Op: "list", Err: fmt.Errorf("duplicate id %q", w.ID)}
		}
		seen[w.ID] = true
		out[i] = w.remote()
	}
	return out, nil
}

// Create implements service.Gateway.
func (c *Client) Create(ctx context.Context, title string) (service.RemoteTask, error) {
	var w wireTask
	body := createBody{Title: title, Completed: false, UserID: DefaultUserID}
	if err := c.do(ctx, "create", http.MethodPost, c.endpoint, body, &w); err != nil {
		return service.RemoteTask{}, err
	}
	return w.remote(), nil
}

// Patch implements service.Gateway. Only the non-nil fields are sent.
func (c *Client) Patch(ctx context.Context, id string, fields service.PatchFields) (service.RemoteTask, error) {
	var w wireTask
	body := patchBody{Title: fields.Title, Completed: fields.Completed}
	if err := c.do(ctx, "patch", http.MethodPatch, c.itemURL(id), body, &w); err != nil {
		return service.RemoteTask{}, err
	}
	return w.remote(), nil
}

// Delete implements service.Gateway.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id string) string {
	return c.endpoint + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, target string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &service.GatewayError{Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &service.GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "method", method, "url", target, "err", err)
		return &service.GatewayError{Op: op, Err: wrapTransport(err)}
	}
	defer resp.Body.Close()
	c.log.Debug("request", "op", op, "method", method, "url", target, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &service.GatewayError{Op: op, Status: resp.StatusCode, Err: errors.New(statusText(resp))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &service.GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusText(resp *http.Response) string {
	if t := http.StatusText(resp.StatusCode); t != "" {
		return t
	}
	return "status " + strconv.Itoa(resp.StatusCode)
}

func wrapTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}
