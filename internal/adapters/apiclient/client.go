// Package apiclient is the HTTP plumbing shared by the provider adapters:
// request construction, status checking and JSON decoding, with failures
// typed for the engine. There are no retries; callers own that policy.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"safe-route-service/internal/platform/apperr"
)

// DefaultTimeout bounds each request when the caller's context has no
// earlier deadline.
const DefaultTimeout = 10 * time.Second

// Cap on error bodies kept for logs.
const maxErrorBody = 512

// StatusError is a non-2xx provider response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Client sends JSON requests to one provider.
type Client struct {
	name    string
	session *http.Client
	baseURL string
	headers http.Header
}

// New returns a client for the named provider. A nil session gets a
// default client with DefaultTimeout.
func New(name, baseURL string, session *http.Client) *Client {
	if session == nil {
		session = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		name:    name,
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(http.Header),
	}
}

// SetHeader adds a header sent on every request, e.g. an API key.
func (c *Client) SetHeader(key, value string) {
	c.headers.Set(key, value)
}

func (c *Client) Name() string { return c.name }

// URL joins path onto the base URL and appends query.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) NewRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Do sends req and returns the response when the status is 2xx. Transport
// errors and other statuses come back as ProviderUnavailable.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, apperr.ProviderUnavailable(c.name+" request failed", redactURL(err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, apperr.ProviderUnavailable(c.name+" request failed", &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		})
	}
	return resp, nil
}

// DoJSON sends req and decodes a 2xx JSON body into out. A body that does
// not decode is a ProviderContractViolation.
func (c *Client) DoJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.ProviderContractViolation("decode "+c.name+" response", err)
	}
	return nil
}

// GetJSON is a GET of path with query, decoded into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, c.URL(path, query), nil)
	if err != nil {
		return err
	}
	return c.DoJSON(req, out)
}

// redactURL drops the query from the URL that net/http puts in transport
// errors. Provider API keys travel in the query and must not reach logs.
func redactURL(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return &url.Error{Op: ue.Op, URL: "(redacted)", Err: ue.Err}
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
}
