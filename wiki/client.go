package wiki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Version is the library version, surfaced in the default User-Agent.
const Version = "0.1.0"

type Option func(*Client)

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.ua = ua
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if c.hc == nil {
			return
		}
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithAPIPathCandidates replaces the ordered table of API path conventions
// tried during endpoint resolution.
func WithAPIPathCandidates(paths []string) Option {
	return func(c *Client) {
		if len(paths) > 0 {
			c.candidates = paths
		}
	}
}

// Client talks to one MediaWiki site. The API endpoint is resolved lazily on
// first use and cached for the lifetime of the Client.
type Client struct {
	baseURL    string
	candidates []string
	hc         *http.Client
	ua         string
	log        zerolog.Logger

	mu       sync.Mutex
	endpoint *Endpoint
	_sf      *singleflight.Group
}

// NewClient creates a Client for a wiki identified by hostname or URL, e.g.
// "en.wikipedia.org" or "https://cuberpg.fandom.com". A full api.php URL is
// accepted and skips endpoint probing.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &EndpointNotFoundError{Host: baseURL}
	}

	c := &Client{
		baseURL:    baseURL,
		candidates: defaultAPIPathCandidates,
		hc: &http.Client{
			Timeout: 15 * time.Second,
		},
		ua:  "wikifetch-go/" + Version,
		log: zerolog.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.hc == nil {
		c.hc = &http.Client{Timeout: 15 * time.Second}
	}

	return c, nil
}

// Get issues a read request against the resolved API endpoint. API errors
// reported in the response envelope are returned as *APIError alongside the
// decoded response.
func (c *Client) Get(ctx context.Context, p any) (*Response, error) {
	ep, err := c.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.getAt(ctx, ep.APIBaseURL, p)
	if err != nil {
		return resp, err
	}
	if apiErr := responseAPIError(resp); apiErr != nil {
		return resp, apiErr
	}
	return resp, nil
}

// getAt performs one GET against an explicit base URL. Used both by Get and
// by endpoint probing, where the base is still a candidate.
func (c *Client) getAt(ctx context.Context, base string, p any) (*Response, error) {
	values, err := normalizeParams(p)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	u.RawQuery = mergeQuery(u.Query(), values).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.ua)

	c.log.Debug().Str("url", u.String()).Msg("api request")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	const maxBody = 8 << 20 // 8MiB
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, err
	}

	resp := &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header.Clone(),
		Raw:        json.RawMessage(body),
	}

	// Best-effort parse of the envelope fields.
	_ = json.Unmarshal(body, &resp.Envelope)

	return resp, nil
}

func mergeQuery(base url.Values, overlay url.Values) url.Values {
	out := url.Values{}
	for k, vs := range base {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	for k, vs := range overlay {
		if len(vs) > 0 {
			out.Set(k, vs[0])
		}
	}
	return out
}

func responseAPIError(r *Response) *APIError {
	if r == nil || (r.Error == nil && len(r.Errors) == 0) {
		return nil
	}
	var code, msg string
	if r.Error != nil {
		code = r.Error.Code
		msg = firstNonEmpty(r.Error.Info, r.Error.Text)
	}
	if len(r.Errors) > 0 {
		if code == "" {
			code = r.Errors[0].Code
		}
		if msg == "" {
			msg = firstNonEmpty(r.Errors[0].Info, r.Errors[0].Text)
		}
	}
	if msg == "" {
		msg = "MediaWiki API error"
	}
	return &APIError{
		Code:       code,
		Message:    msg,
		HTTPStatus: r.StatusCode,
	}
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) resolveSF() *singleflight.Group {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c._sf == nil {
		c._sf = &singleflight.Group{}
	}
	return c._sf
}
