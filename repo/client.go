package repo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/metrics"
)

// Client performs authenticated requests to a provider's API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Provider is the provider whose endpoints the client uses.
	Provider *Provider
	// Latency observes request durations in seconds with provider and
	// operation labels. If nil, durations are not recorded.
	Latency metrics.Observer
}

// Headers returns the provider's static headers, plus an Authorization
// header with the given token if the provider uses user tokens.
func (c *Client) Headers(token string) http.Header {
	h := c.Provider.Headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if c.Provider.UserToken {
		h.Set("Authorization", c.Provider.Scheme+" "+token)
	}
	return h
}

// Validate checks a token against the provider's identity endpoint.
// It reports true on 200 and false on 403. Any other status is an
// [*UpstreamError].
func (c *Client) Validate(ctx context.Context, token string) (bool, error) {
	h := c.Provider.Headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set("Authorization", c.Provider.Scheme+" "+token)
	_, status, err := c.Get(ctx, "validate", c.Provider.Endpoints.Validity, h)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusForbidden:
		return false, nil
	default:
		return false, &UpstreamError{Op: "validate", Status: status}
	}
}

// ListRepositories fetches the raw repository listing.
func (c *Client) ListRepositories(ctx context.Context, h http.Header) ([]byte, error) {
	b, status, err := c.Get(ctx, "repos", c.Provider.Endpoints.Repos, h)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Op: "repos", Status: status}
	}
	return b, nil
}

// ListBuilds fetches the raw build listing of a repository.
func (c *Client) ListBuilds(ctx context.Context, h http.Header, slug string) ([]byte, error) {
	u, _ := Target(c.Provider.Endpoints.Builds, slug)
	b, status, err := c.Get(ctx, "builds", u, h)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &UpstreamError{Op: "builds", Status: status}
	}
	return b, nil
}

// TriggerBuild starts a build of a repository with the given commit message.
// When the trigger endpoint has no placeholders, the repository is identified
// in the body by accountName and projectSlug instead.
func (c *Client) TriggerBuild(ctx context.Context, h http.Header, slug, msg string) ([]byte, error) {
	u, n := Target(c.Provider.Endpoints.Trigger, slug)
	fields := map[string]string{"message": msg}
	if n == 0 {
		owner, name, _ := strings.Cut(slug, "/")
		fields["accountName"] = owner
		fields["projectSlug"] = name
	}
	body, ctype, err := c.body(fields)
	if err != nil {
		return nil, err
	}
	h = h.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set("Content-Type", ctype)
	b, status, err := c.Do(ctx, "trigger", http.MethodPost, u, h, body)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusAccepted:
		return b, nil
	default:
		return nil, &UpstreamError{Op: "trigger", Status: status}
	}
}

// body encodes request body fields according to the provider's encoding.
func (c *Client) body(fields map[string]string) (io.Reader, string, error) {
	switch c.Provider.Body {
	case JSON:
		var v any = fields
		if c.Provider.Envelope != "" {
			v = map[string]any{c.Provider.Envelope: fields}
		}
		b, err := json.Marshal(v, json.Deterministic(true))
		if err != nil {
			return nil, "", fmt.Errorf("couldn't encode request body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	default:
		vals := make(url.Values, len(fields))
		for k, v := range fields {
			vals.Set(k, v)
		}
		return strings.NewReader(vals.Encode()), "application/x-www-form-urlencoded", nil
	}
}

// Get performs a GET request. See [Client.Do].
func (c *Client) Get(ctx context.Context, op, u string, h http.Header) ([]byte, int, error) {
	return c.Do(ctx, op, http.MethodGet, u, h, nil)
}

// Do performs a request and returns the response body and status.
// The body is truncated to 2 MB. An error is returned only when the request
// could not be completed; unexpected statuses are for the caller to handle.
func (c *Client) Do(ctx context.Context, op, method, u string, h http.Header, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't make %s request: %w", op, err)
	}
	for k, v := range h {
		req.Header[k] = v
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	st := time.Now()
	resp, err := hc.Do(req)
	if c.Latency != nil {
		c.Latency.Observe(time.Since(st).Seconds(), c.Provider.Name, op)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("couldn't %s %s: %w", method, op, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("couldn't read %s response: %w", op, err)
	}
	return b, resp.StatusCode, nil
}
