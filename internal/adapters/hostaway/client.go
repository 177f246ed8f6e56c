// internal/adapters/hostaway/client.go
package hostaway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hostaway_sync/internal/adapters/observability"
)

const (
	authTimeout  = 30 * time.Second
	fetchTimeout = 60 * time.Second
	priceTimeout = 30 * time.Second

	maxBody = 64 << 20
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter

	// per-call deadlines; tests shorten them
	authTimeout  time.Duration
	fetchTimeout time.Duration
	priceTimeout time.Duration
}

func New(base string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:         strings.TrimRight(base, "/"),
		hc:           &http.Client{},
		rl:           rate.NewLimiter(rate.Limit(rps), rps),
		authTimeout:  authTimeout,
		fetchTimeout: fetchTimeout,
		priceTimeout: priceTimeout,
	}, nil
}

// WithTimeouts overrides the auth/price and bulk fetch deadlines.
func (c *Client) WithTimeouts(auth, fetch time.Duration) *Client {
	c.authTimeout, c.priceTimeout, c.fetchTimeout = auth, auth, fetch
	return c
}

// ---- Internals ----

type response struct {
	status int
	body   []byte
}

// send performs one request with client-side rate limiting and a bounded deadline.
// No retries here; callers re-invoke.
func (c *Client) send(ctx context.Context, endpoint string, timeout time.Duration, req *http.Request) (response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.rl.Wait(ctx); err != nil {
		return response{}, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hostaway-sync/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("hostaway", endpoint, 0, time.Since(start))
		return response{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	observability.ObserveExternal("hostaway", endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return response{status: resp.StatusCode}, err
	}
	return response{status: resp.StatusCode, body: b}, nil
}

func (c *Client) newRequest(method, path string, q url.Values, body []byte) (*http.Request, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	return http.NewRequest(method, u, rd)
}

// decode parses a JSON body keeping numbers as json.Number so prices and ids keep their precision.
func decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func snippet(b []byte) string {
	const max = 512
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}

func logUpstream(op string, status int, body []byte, err error) {
	ev := log.Warn().Str("op", op).Int("status", status)
	if err != nil {
		ev = ev.Err(err)
	}
	if len(body) > 0 {
		ev = ev.Str("body", snippet(body))
	}
	ev.Msg("hostaway call failed")
}
