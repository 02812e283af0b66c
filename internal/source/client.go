package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultAttempts  = 3
	defaultRetryWait = 2 * time.Second
	maxBodyBytes     = 4 << 20
)

// Client is the shared fetch boundary for every adapter: one GET per attempt
// with a bounded constant-delay retry. Retrying lives here so classification
// and dedup stay free of network concerns.
type Client struct {
	http      *http.Client
	headers   map[string]string
	attempts  uint64
	retryWait time.Duration
}

// NewClient builds a client; headers (e.g. User-Agent) apply to every request.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		headers:   headers,
		attempts:  defaultAttempts,
		retryWait: defaultRetryWait,
	}
}

// Get fetches the URL, retrying transient failures until the attempt budget
// or the context deadline runs out.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("request %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s returned %s", url, resp.Status)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryWait), c.attempts-1),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}
