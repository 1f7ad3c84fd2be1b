// Package catalog is a client for the remote book catalog (the Google Books
// volumes API). Failures never reach the caller: they are logged and turned
// into an empty result.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tableflip.dev/readlog/pkg/book"
)

const (
	DefaultBaseURL  = "https://www.googleapis.com/books/v1/volumes"
	DefaultLanguage = "ru"
	defaultTimeout  = 15 * time.Second
	maxErrorBody    = 512
)

// Client searches the catalog. Calls are independent: no retries, no cache.
type Client struct {
	baseURL    string
	lang       string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithLanguage sets the langRestrict parameter. Empty disables it.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.lang = lang }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. rps <= 0 means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets where request failures are reported.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		lang:       DefaultLanguage,
		userAgent:  "readlog",
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// volumesResponse matches the subset of the volumes API readlog uses.
type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search returns the candidates for a free-text query. Any failure yields an
// empty slice.
func (c *Client) Search(ctx context.Context, query string) []book.Candidate {
	res, err := c.fetch(ctx, "search", query)
	if err != nil {
		c.report(err)
		return []book.Candidate{}
	}
	return res
}

// SearchByTitle looks up a title and returns the first match. This is a
// loose lookup: the catalog may return an unrelated work with a similar title.
func (c *Client) SearchByTitle(ctx context.Context, title string) (book.Candidate, bool) {
	res, err := c.fetch(ctx, "lookup", "intitle:"+title)
	if err != nil {
		c.report(err)
		return book.Candidate{}, false
	}
	if len(res) == 0 {
		return book.Candidate{}, false
	}
	return res[0], true
}

func (c *Client) requestURL(q string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("q", q)
	if c.lang != "" {
		params.Set("langRestrict", c.lang)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (c *Client) fetch(ctx context.Context, op, q string) ([]book.Candidate, error) {
	fail := func(status int, err error) error {
		return &NetworkError{Op: op, Query: q, StatusCode: status, Err: err}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fail(0, err)
	}

	u, err := c.requestURL(q)
	if err != nil {
		return nil, fail(0, fmt.Errorf("build url: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fail(resp.StatusCode, fmt.Errorf("unexpected status: %s", string(body)))
	}

	var vr volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fail(0, fmt.Errorf("decode response: %w", err))
	}

	out := make([]book.Candidate, 0, len(vr.Items))
	for _, it := range vr.Items {
		out = append(out, book.NewCandidate(it.ID, it.VolumeInfo.Title, it.VolumeInfo.Authors, it.VolumeInfo.Description))
	}
	return out, nil
}

func (c *Client) report(err error) {
	var ne *NetworkError
	if !errors.As(err, &ne) {
		c.log.Warn().Err(err).Msg("catalog request failed")
		return
	}
	ev := c.log.Warn()
	if errors.Is(err, context.Canceled) {
		// Superseded or torn-down searches land here.
		ev = c.log.Debug()
	}
	ev.Err(ne.Err).
		Str("op", ne.Op).
		Str("query", ne.Query).
		Int("status", ne.StatusCode).
		Msg("catalog request failed")
}
