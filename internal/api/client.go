// Package api is the HTTP client for the task backend: a thin wrapper that fixes the
// base URL and per-call timeout, plus one method per REST operation.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdesk/internal/model"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout is the whole-call budget (connect + response) for one request.
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 8 << 20
	requestIDHeader  = "X-Request-Id"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     log.FieldLogger
}

type Client struct {
	base    *url.URL
	timeout time.Duration
	http    *http.Client
	log     log.FieldLogger
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("api: empty base URL")
	}
	// Relative paths resolve against the last segment, so keep the base a "directory".
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base URL must be absolute: %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	lg := opts.Logger
	if lg == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		lg = l
	}
	return &Client{base: base, timeout: timeout, http: hc, log: lg}, nil
}

// BaseURL returns the normalized base URL (always ends in "/").
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) Timeout() time.Duration { return c.timeout }

// do performs one JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// path is already escaped (ids go through url.PathEscape).
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	u := c.base.ResolveReference(ref)

	var rd io.Reader
	if body != nil {
		b, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.log.WithFields(log.Fields{
		"op":         op,
		"method":     method,
		"url":        u.String(),
		"status":     resp.StatusCode,
		"request_id": reqID,
		"took":       time.Since(start).String(),
	}).Debug("api call")
	if err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, RequestID: reqID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:         op,
			StatusCode: resp.StatusCode,
			Payload:    strings.TrimSpace(string(b)),
			RequestID:  reqID,
		}
	}

	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(b, out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Payload: truncate(string(b), 512), RequestID: reqID, Err: &decodeError{err: err}}
	}
	return nil
}

// decodeError marks a 2xx response whose body could not be read.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode response: " + e.err.Error() }

func (e *decodeError) Unwrap() error { return e.err }

// write performs a create/update call. The change is committed once the server
// answers 2xx, so an unreadable body yields an empty record instead of an error;
// callers fill in what they sent when the returned task has no id.
func (c *Client) write(ctx context.Context, op, method, path string, body any) (model.Task, error) {
	var env envelope[*WireTask]
	err := c.do(ctx, op, method, path, body, &env)
	var de *decodeError
	if errors.As(err, &de) {
		fields := log.Fields{"op": op, "error": de.err.Error()}
		var ae *Error
		if errors.As(err, &ae) {
			fields["request_id"] = ae.RequestID
			fields["payload"] = ae.Payload
		}
		c.log.WithFields(fields).Warn("unreadable response to a successful write")
		return model.Task{}, nil
	}
	if err != nil {
		return model.Task{}, err
	}
	return unwrapTask(env.Data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
