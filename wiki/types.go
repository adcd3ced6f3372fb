package wiki

import (
	"encoding/json"
	"net/http"

	"github.com/wikifetch/wikifetch-go/wikitext"
)

// Endpoint is a resolved MediaWiki Action API location.
type Endpoint struct {
	// APIBaseURL is the full URL of api.php, e.g.
	// "https://en.wikipedia.org/w/api.php".
	APIBaseURL string
}

// PageURL returns the article-view URL for a page title, built from the
// sibling index.php of the resolved api.php.
func (e Endpoint) PageURL(title string) string {
	return wikitext.ArticleURL(e.APIBaseURL, title)
}

// PageReference identifies one article by its canonical title and page id.
type PageReference struct {
	Title  string
	PageID int
}

// RawArticle is the unrendered content of a fetched page.
type RawArticle struct {
	Title        string
	Wikitext     string
	CanonicalURL string
}

// MWError is a single error entry from a MediaWiki API response.
type MWError struct {
	Code string `json:"code"`
	Info string `json:"info,omitempty"`
	Text string `json:"text,omitempty"`
}

// Envelope holds the common top-level fields every Action API response may
// carry.
type Envelope struct {
	Error    *MWError       `json:"error,omitempty"`
	Errors   []MWError      `json:"errors,omitempty"`
	Warnings map[string]any `json:"warnings,omitempty"`
}

// Response is a decoded API response: the envelope fields plus the raw body
// for caller-side decoding.
type Response struct {
	StatusCode int
	Header     http.Header
	Envelope

	Raw json.RawMessage
}

func (r *Response) Into(out any) error {
	return json.Unmarshal(r.Raw, out)
}
