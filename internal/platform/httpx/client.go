package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusError reports a response with a 4xx/5xx status. RetryAfter is the
// upstream's Retry-After hint in seconds form, zero when absent.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// Client is a thin JSON HTTP client shared by the external service adapters.
// It is safe for concurrent use.
type Client struct {
	session *http.Client
	headers map[string]string

	// MaxAttempts bounds DoWithRetry. Backoff is the first retry delay and
	// doubles per attempt up to MaxBackoff (no cap when zero).
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

func New(timeout time.Duration, headers map[string]string) *Client {
	return &Client{
		session:     &http.Client{Timeout: timeout},
		headers:     headers,
		MaxAttempts: 4,
		Backoff:     200 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
	}
}

func (c *Client) NewRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Do sends req once. Responses with status >= 400 are closed and
// returned as *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{
			Code:       resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return resp, nil
}

// DoWithRetry sends the request built by makeReq, rebuilding it for every
// attempt, until it succeeds, fails with a non-transient error, or MaxAttempts
// is used up. See retryDelay for the wait between attempts.
func (c *Client) DoWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	attempts := max(c.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.Do(req)
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) || attempt >= attempts {
			return nil, err
		}

		timer := time.NewTimer(c.retryDelay(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryDelay is the wait after the given failed attempt: Backoff doubled per
// earlier attempt, raised to the upstream's Retry-After when that is longer,
// and capped at MaxBackoff.
func (c *Client) retryDelay(attempt int, err error) time.Duration {
	d := c.Backoff
	for i := 1; i < attempt && (c.MaxBackoff <= 0 || d < c.MaxBackoff); i++ {
		d *= 2
	}

	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > d {
		d = se.RetryAfter
	}

	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		d = c.MaxBackoff
	}
	return d
}

// parseRetryAfter reads the delay-seconds form of Retry-After. HTTP dates
// are ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// IsTransient reports whether err is worth retrying: timeouts and other
// network errors, rate limiting, and upstream 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
