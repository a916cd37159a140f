package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/requestid"
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 1 << 20

// Client posts JSON to the attribution backend and decodes the envelope.
// Zero value is not usable; use New.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	opts    *options
	breaker *gobreaker.CircuitBreaker
	log     *slog.Logger
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	c := &Client{
		baseURL: u,
		http:    o.httpClient,
		opts:    o,
		log:     o.log,
	}
	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if o.breaker != nil {
		c.breaker = newBreaker(u.Host, *o.breaker, c.log)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Post sends body to path and decodes the envelope data into T.
//
// A nil error means the envelope reported success. Backend rejections come
// back as *BackendError; network failures, timeouts and an open circuit
// wrap ErrTransport.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (*T, error) {
	env, err := Do[T](ctx, c, path, body, opts...)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Do is Post returning the whole envelope.
func Do[T any](ctx context.Context, c *Client, path string, body any, opts ...CallOption) (Envelope[T], error) {
	var env Envelope[T]
	co := callOptions{retry: RetryAll}
	for _, opt := range opts {
		opt(&co)
	}
	maxRetries := c.opts.maxRetries
	if co.retry == RetryNever {
		maxRetries = 0
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return env, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	endpoint := c.baseURL.JoinPath(path).String()
	ctx = requestid.WithContext(ctx, requestid.Resolve(ctx))

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.opts.initialInterval
	exp.MaxInterval = c.opts.maxInterval
	exp.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(maxRetries)), ctx)

	attempt := 0
	var raw []byte
	op := func() error {
		attempt++
		start := time.Now()
		status, respBody, err := c.attempt(ctx, endpoint, payload)
		c.report(Result{
			Path:       path,
			StatusCode: status,
			Attempt:    attempt,
			Duration:   time.Since(start),
			Err:        err,
		})
		if err != nil {
			if !co.retry.allows(status, err) {
				return backoff.Permanent(err)
			}
			return err
		}
		raw = respBody
		return nil
	}
	notify := func(err error, next time.Duration) {
		c.log.DebugContext(ctx, "retrying backend request",
			logger.Endpoint(path),
			logger.Attempt(attempt),
			logger.Duration(next),
			logger.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		var httpErr *statusError
		if errors.As(err, &httpErr) {
			return interpret[T](httpErr.status, httpErr.body)
		}
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = errors.Join(err, ctxErr)
		}
		return env, err
	}

	return interpret[T](http.StatusOK, raw)
}

// attempt performs one round trip. Non-2xx responses are returned as
// *statusError so their body can still be interpreted as an envelope.
func (c *Client) attempt(ctx context.Context, endpoint string, payload []byte) (int, []byte, error) {
	run := func() (any, error) {
		return c.roundTrip(ctx, endpoint, payload)
	}

	var (
		res any
		err error
	)
	if c.breaker != nil {
		res, err = c.breaker.Execute(run)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, nil, fmt.Errorf("%w: %w: %w", ErrTransport, ErrCircuitOpen, err)
		}
	} else {
		res, err = run()
	}

	resp, _ := res.(response)
	return resp.status, resp.body, err
}

type response struct {
	status int
	body   []byte
}

func (c *Client) roundTrip(ctx context.Context, endpoint string, payload []byte) (response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.userAgent)
	req.Header.Set(RequestIDHeader, requestid.FromContext(ctx))
	for k, v := range c.opts.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return response{}, fmt.Errorf("%w: %w: %w", ErrTransport, ErrTimeout, err)
		}
		return response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}

	out := response{status: resp.StatusCode, body: body}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &statusError{status: resp.StatusCode, body: body}
	}
	return out, nil
}

func (c *Client) report(r Result) {
	if c.opts.onResult != nil {
		c.opts.onResult(r)
	}
}

// interpret decodes the envelope. Only the status inside the envelope can
// report success; a 2xx response without one is invalid, and an error
// response without one is a rejection with the HTTP status.
func interpret[T any](httpStatus int, raw []byte) (Envelope[T], error) {
	var env Envelope[T]
	httpOK := httpStatus >= 200 && httpStatus < 300
	if len(bytes.TrimSpace(raw)) == 0 {
		if httpOK {
			return env, fmt.Errorf("%w: empty body", ErrInvalidResponse)
		}
		return env, &BackendError{Status: httpStatus}
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		if httpOK {
			return env, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		return env, &BackendError{Status: httpStatus, Msg: sanitize(raw)}
	}
	if env.Status == 0 {
		if httpOK {
			return env, fmt.Errorf("%w: envelope has no status", ErrInvalidResponse)
		}
		env.Status = httpStatus
	}
	if !env.OK() {
		return env, &BackendError{Status: env.Status, Msg: env.Msg}
	}
	return env, nil
}

// retryable reports whether a failed attempt may succeed if repeated.
// Only transport failures and overload responses qualify.
func retryable(status int, err error) bool {
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) {
		return false
	}
	if status == 0 {
		return true
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return status >= 500
}

// unsent reports whether an attempt failed before the request left the
// client, so repeating it cannot duplicate work on the backend.
func unsent(status int, err error) bool {
	if status != 0 || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return u, nil
}

// sanitize keeps response bodies safe to log.
func sanitize(body []byte) string {
	s := strings.ReplaceAll(string(body), "\n", " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
