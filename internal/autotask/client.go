// Package autotask is a thin client for the Autotask REST API. It knows how
// to issue a single request and interpret the response; all query semantics
// live with the callers.
package autotask

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JagminasJ/AutoTaskMCP/internal/config"
)

const clientTimeout = 30 * time.Second

// HTTPError is a non-2xx response from the upstream API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// ParseError is a response that declared application/json but did not parse.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CallOptions shape a single API call.
type CallOptions struct {
	Method  string
	Headers map[string]string
	Params  map[string]any // query parameters; nil values are omitted
	Body    any            // JSON-encoded; ignored for bodyless methods
}

// Client issues requests against one Autotask zone endpoint.
type Client struct {
	baseURL string
	creds   map[string]string
	http    *http.Client
	log     *slog.Logger
}

// New creates a client from the loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		creds:   cfg.Headers(),
		http:    &http.Client{Timeout: clientTimeout},
		log:     logger,
	}
}

// BaseURL returns the configured zone endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// URL joins path segments onto the zone endpoint. Segments are escaped
// individually so identifiers can be passed through as-is.
func (c *Client) URL(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// bodylessMethod reports whether the method carries no request body.
// Attaching a body to one of these is silently ignored, not an error.
func bodylessMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Call issues one request and returns the decoded response: a JSON value
// when the response declares application/json, the raw text otherwise.
// A non-2xx status yields *HTTPError; undecodable declared-JSON yields
// *ParseError.
func (c *Client) Call(ctx context.Context, rawURL string, opts CallOptions) (any, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("autotask: invalid URL %q: %w", rawURL, err)
	}
	if len(opts.Params) > 0 {
		q := u.Query()
		for k, v := range opts.Params {
			if v == nil {
				continue
			}
			q.Set(k, fmt.Sprintf("%v", v))
		}
		u.RawQuery = q.Encode()
	}

	var reqBody io.Reader
	sendBody := opts.Body != nil && !bodylessMethod(method)
	if sendBody {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("autotask: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("autotask: %w", err)
	}
	for k, v := range c.creds {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if sendBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	c.log.Debug("autotask call", "method", method, "url", u.Redacted())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autotask: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("autotask: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(text)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return string(text), nil
	}

	var decoded any
	if err := json.Unmarshal(text, &decoded); err != nil {
		return nil, &ParseError{Err: err}
	}
	return decoded, nil
}
