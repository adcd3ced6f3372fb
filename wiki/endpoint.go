package wiki

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Ordered API path conventions: MediaWiki default first (Wikipedia and most
// self-hosted wikis), bare /api.php second (Fandom, wiki.gg).
var defaultAPIPathCandidates = []string{"/w/api.php", "/api.php"}

type siteinfoParams struct {
	Action string `url:"action"`
	Meta   string `url:"meta"`
	Siprop string `url:"siprop"`
}

// Resolve determines the Action API endpoint for the Client's base URL. The
// result is cached; concurrent callers share one probe.
func (c *Client) Resolve(ctx context.Context) (*Endpoint, error) {
	c.mu.Lock()
	if ep := c.endpoint; ep != nil {
		c.mu.Unlock()
		return ep, nil
	}
	c.mu.Unlock()

	v, err, _ := c.resolveSF().Do("endpoint", func() (any, error) {
		c.mu.Lock()
		if ep := c.endpoint; ep != nil {
			c.mu.Unlock()
			return ep, nil
		}
		c.mu.Unlock()

		ep, err := c.resolveEndpoint(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.endpoint = ep
		c.mu.Unlock()
		return ep, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Endpoint), nil
}

func (c *Client) resolveEndpoint(ctx context.Context) (*Endpoint, error) {
	raw := c.baseURL
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, &EndpointNotFoundError{Host: c.baseURL}
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	// A full api.php URL skips probing entirely.
	if strings.Contains(strings.ToLower(u.Path), "api.php") {
		u.RawQuery = ""
		u.Fragment = ""
		c.log.Debug().Str("endpoint", u.String()).Msg("using api.php URL as given")
		return &Endpoint{APIBaseURL: u.String()}, nil
	}

	origin := u.Scheme + "://" + u.Host
	tried := make([]string, 0, len(c.candidates)+1)

	for _, cand := range c.candidates {
		base := origin + cand
		tried = append(tried, base)
		if c.probeEndpoint(ctx, base) {
			c.log.Debug().Str("endpoint", base).Msg("resolved API endpoint")
			return &Endpoint{APIBaseURL: base}, nil
		}
	}

	// Last resort: scan the homepage for a <link> pointing at api.php, the
	// way MediaWiki skins advertise their EditURI/search descriptors.
	tried = append(tried, u.String())
	if base, err := c.discoverFromHomepage(ctx, u.String()); err == nil {
		c.log.Debug().Str("endpoint", base).Msg("discovered API endpoint from homepage")
		return &Endpoint{APIBaseURL: base}, nil
	}

	return nil, &EndpointNotFoundError{Host: u.Host, Tried: tried}
}

// probeEndpoint reports whether base answers like a MediaWiki Action API.
// Any failure just disqualifies the candidate.
func (c *Client) probeEndpoint(ctx context.Context, base string) bool {
	resp, err := c.getAt(ctx, base, siteinfoParams{
		Action: "query",
		Meta:   "siteinfo",
		Siprop: "general",
	})
	if err != nil {
		c.log.Debug().Str("candidate", base).Err(err).Msg("candidate probe failed")
		return false
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var si struct {
		Query struct {
			General struct {
				Sitename string `json:"sitename"`
				MainPage string `json:"mainpage"`
			} `json:"general"`
		} `json:"query"`
	}
	if err := resp.Into(&si); err != nil {
		return false
	}
	return si.Query.General.Sitename != "" || si.Query.General.MainPage != ""
}

func (c *Client) discoverFromHomepage(ctx context.Context, homeURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homeURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.ua)

	res, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("homepage returned status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", err
	}

	home, err := url.Parse(homeURL)
	if err != nil {
		return "", err
	}

	var found string
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		if !strings.Contains(strings.ToLower(ref.Path), "api.php") {
			return true
		}
		ref.RawQuery = ""
		ref.Fragment = ""
		found = home.ResolveReference(ref).String()
		return false
	})
	if found == "" {
		return "", fmt.Errorf("no api.php link on homepage")
	}
	return found, nil
}
