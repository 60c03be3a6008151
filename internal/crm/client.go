// Package crm is a small client for the CRM REST API: records, related
// records, module metadata, user preferences, templates and drafts.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the CRM answers 404.
var ErrNotFound = errors.New("crm: not found")

// BaseCurrencyID is the id the CRM uses for the system currency.
const BaseCurrencyID = "-99"

// Client is a minimal HTTP client for the CRM REST API.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	baseSymbol string
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
}

// New creates a client. baseURL should look like "https://crm.example.com/rest/v11"
// (no trailing slash); token is the OAuth access token.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		http:       &http.Client{Timeout: timeout},
		baseSymbol: "$",
	}
}

// WithBaseCurrencySymbol sets the symbol used for the system currency, which
// has no Currencies record of its own.
func (c *Client) WithBaseCurrencySymbol(symbol string) *Client {
	c2 := *c
	if strings.TrimSpace(symbol) != "" {
		c2.baseSymbol = symbol
	}
	return &c2
}

// WithRateLimit caps outgoing requests at rps per second with the given burst.
// A non-positive rps removes the limit.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	c2 := *c
	c2.limiter = nil
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		c2.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &c2
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c2 := *c
	if h != nil {
		c2.http = h
	}
	return &c2
}

func (c *Client) endpoint(q url.Values, segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	u := c.baseURL + "/" + strings.Join(parts, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends a request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	if c == nil {
		return errors.New("nil crm client")
	}
	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	token, err := c.accessToken()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("OAuth-Token", token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm: %s %s failed: status=%d body=%s", method, req.URL.Path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("crm: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
