package wiki

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newParseServer serves action=parse from a title-keyed page table.
func newParseServer(t *testing.T, pages map[string]map[string]any) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("meta") == "siteinfo" {
			writeSiteinfo(w)
			return
		}
		if q.Get("action") == "parse" {
			page, ok := pages[q.Get("page")]
			if !ok {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{
						"code": "missingtitle",
						"info": "The page you specified doesn't exist.",
					},
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"parse": page})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "badtest", "info": "unhandled request"},
		})
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestFetch_CanonicalLink(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, map[string]map[string]any{
		"Apple": {
			"title":    "Apple",
			"wikitext": "'''Apple''' is a fruit.",
			"headhtml": `<html><head><link rel="canonical" href="https://wiki.example/wiki/Apple"/></head></html>`,
		},
	})

	art, err := c.Fetch(testContext(t), PageReference{Title: "Apple", PageID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Apple", art.Title)
	assert.Equal(t, "'''Apple''' is a fruit.", art.Wikitext)
	assert.Equal(t, "https://wiki.example/wiki/Apple", art.CanonicalURL)
}

func TestFetch_OgURLFallback(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, map[string]map[string]any{
		"Apple": {
			"title":    "Apple",
			"wikitext": "fruit",
			"headhtml": `<html><head><meta property="og:url" content="https://fandom.example/wiki/Apple"/></head></html>`,
		},
	})

	art, err := c.Fetch(testContext(t), PageReference{Title: "Apple"})
	require.NoError(t, err)
	assert.Equal(t, "https://fandom.example/wiki/Apple", art.CanonicalURL)
}

func TestFetch_IndexURLFallback(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, map[string]map[string]any{
		"Apple pie": {
			"title":    "Apple pie",
			"wikitext": "dessert",
		},
	})

	art, err := c.Fetch(testContext(t), PageReference{Title: "Apple pie"})
	require.NoError(t, err)

	ep, err := c.Resolve(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, ep.APIBaseURL[:len(ep.APIBaseURL)-len("api.php")]+"index.php?title=Apple+pie", art.CanonicalURL)
}

func TestFetch_FollowsSingleRedirect(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, map[string]map[string]any{
		"A": {"title": "A", "wikitext": "#REDIRECT [[B]]"},
		"B": {"title": "B", "wikitext": "the real article"},
	})

	art, err := c.Fetch(testContext(t), PageReference{Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, "B", art.Title)
	assert.Equal(t, "the real article", art.Wikitext)
}

func TestFetch_RedirectChainTooLong(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, map[string]map[string]any{
		"A": {"title": "A", "wikitext": "#REDIRECT [[B]]"},
		"B": {"title": "B", "wikitext": "#REDIRECT [[C]]"},
		"C": {"title": "C", "wikitext": "unreachable"},
	})

	_, err := c.Fetch(testContext(t), PageReference{Title: "A"})
	e, ok := IsContentUnavailable(err)
	require.True(t, ok, "want ContentUnavailableError, got %v", err)
	assert.Contains(t, e.Reason, "redirect chain")
}

func TestFetch_MissingPage(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, nil)

	_, err := c.Fetch(testContext(t), PageReference{Title: "Ghost"})
	_, ok := IsContentUnavailable(err)
	require.True(t, ok, "want ContentUnavailableError, got %v", err)
}

func TestFetch_EmptyWikitext(t *testing.T) {
	t.Parallel()

	c := newParseServer(t, map[string]map[string]any{
		"Blank": {"title": "Blank", "wikitext": "   "},
	})

	_, err := c.Fetch(testContext(t), PageReference{Title: "Blank"})
	_, ok := IsContentUnavailable(err)
	require.True(t, ok, "want ContentUnavailableError, got %v", err)
}

func TestRedirectTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		target string
		ok     bool
	}{
		{"#REDIRECT [[Foo]]", "Foo", true},
		{"#redirect[[Foo bar]]\n", "Foo bar", true},
		{"#Redirect: [[Foo#Section]]", "Foo", true},
		{"#REDIRECT [[Foo|label]]", "Foo", true},
		{"A normal article about #REDIRECT syntax.", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		target, ok := redirectTarget(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.target, target, "input %q", tt.in)
	}
}

func TestEndpointPageURL(t *testing.T) {
	t.Parallel()

	ep := Endpoint{APIBaseURL: "https://en.wikipedia.org/w/api.php"}
	assert.Equal(t,
		"https://en.wikipedia.org/w/index.php?title=Python+%28programming+language%29",
		ep.PageURL("Python (programming language)"))
}
