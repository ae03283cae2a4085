// Package client talks to the cart store HTTP API and implements the cart,
// order, wallet and profile ports on top of it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikolayk812/cartcheckout/internal/domain"
	"github.com/nikolayk812/cartcheckout/internal/httpapi"
	"github.com/nikolayk812/cartcheckout/internal/idempotency"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 5 * time.Second

// Client is shared by the gateways. Every request is bounded by the
// configured timeout in addition to the caller's context.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url[%s] must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) ownerPath(ownerID string, parts ...string) string {
	segments := append([]string{"api", "v1", "owners", url.PathEscape(ownerID)}, parts...)
	return c.baseURL.String() + "/" + strings.Join(segments, "/")
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil). Non-2xx statuses become domain errors. An idempotency key on ctx
// is forwarded as a header.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("http.NewRequest: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if key := idempotency.KeyFrom(ctx); key != "" {
		req.Header.Set(idempotency.Header, key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(method, endpoint, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func transportError(method, endpoint string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, endpoint, err)
}

func statusError(resp *http.Response) error {
	var er httpapi.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &er); err != nil || er.Error == "" {
		er.Error = strings.TrimSpace(string(raw))
	}
	if er.Error == "" {
		er.Error = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, er.Error)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", domain.ErrInsufficientFunds, er.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, er.Error)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrValidation, er.Error)
	case http.StatusGatewayTimeout, http.StatusServiceUnavailable, http.StatusBadGateway:
		return fmt.Errorf("%w: status %d: %s", domain.ErrTransport, resp.StatusCode, er.Error)
	default:
		return &StatusError{Code: resp.StatusCode, Message: er.Error}
	}
}

// StatusError carries the server message of an unmapped non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// IsTimeout reports whether err came from a request that ran out of time.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
