package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

// Client talks to the ReciLoop REST API. It is safe for concurrent use; the
// bearer token is fixed per Client value, see WithToken.
type Client struct {
	rc      *resty.Client
	baseURL string
	token   string
	log     *zap.Logger
}

// Option configures a Client during construction in New.
type Option func(*Client) error

// WithTimeout bounds every request. The value must be greater than zero.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.rc.SetTimeout(d)
		return nil
	}
}

// WithLogger attaches a logger for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithHTTPClient swaps the underlying transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client is nil")
		}
		c.rc = resty.NewWithClient(hc).SetBaseURL(c.baseURL).SetTimeout(hc.Timeout)
		return nil
	}
}

// New constructs a Client for baseURL. An empty baseURL yields ErrNotConfigured
// so the caller can surface a "not configured" status instead of failing later.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	c := &Client{
		baseURL: baseURL,
		rc:      resty.New().SetBaseURL(baseURL).SetTimeout(defaultTimeout),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.rc.SetHeader("Accept", "application/json")
	c.rc.SetLogger(c.log.Sugar())
	return c, nil
}

// BaseURL returns the API host this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

// Authenticated reports whether the client carries a bearer token.
func (c *Client) Authenticated() bool { return c.token != "" }

type call struct {
	op     string
	method string
	path   string
	auth   bool
	build  func(*resty.Request)
}

// do runs a single request: no retries, one outcome.
func (c *Client) do(ctx context.Context, cl call) (*resty.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cl.auth && c.token == "" {
		return nil, fmt.Errorf("%s: %w", cl.op, ErrUnauthorized)
	}

	req := c.rc.R().SetContext(ctx)
	if cl.auth {
		req.SetAuthToken(c.token)
	}
	if cl.build != nil {
		cl.build(req)
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, cl.path)
	elapsed := time.Since(start)
	if err != nil {
		observeRequest(cl.op, outcomeNetwork, elapsed)
		c.log.Warn("api request failed", zap.String("op", cl.op), zap.String("path", cl.path), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", cl.op, err)
	}
	if !resp.IsSuccess() {
		observeRequest(cl.op, outcomeStatus, elapsed)
		apiErr := newError(cl.op, resp.StatusCode(), resp.Body())
		c.log.Warn("api request rejected",
			zap.String("op", cl.op),
			zap.String("path", cl.path),
			zap.Int("status", resp.StatusCode()),
			zap.String("detail", apiErr.Detail))
		return nil, apiErr
	}
	observeRequest(cl.op, outcomeOK, elapsed)
	c.log.Debug("api request ok", zap.String("op", cl.op), zap.Int("status", resp.StatusCode()), zap.Duration("elapsed", elapsed))
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, cl call, out any) error {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	return decode(cl.op, resp.Body(), out)
}

func decode(op string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// isJSONArray reports whether body holds a JSON array.
func isJSONArray(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}
