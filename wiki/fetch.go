package wiki

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type parseParams struct {
	Action string `url:"action"`
	Page   string `url:"page"`
	Prop   string `url:"prop"`
}

type parsedPage struct {
	Title    string
	Wikitext string
	HeadHTML string
}

var redirectRe = regexp.MustCompile(`(?i)^\s*#\s*redirect\s*:?\s*\[\[([^\]|#]+)`)

// redirectTarget reports whether wikitext is a redirect page and, if so, the
// target title.
func redirectTarget(wikitext string) (string, bool) {
	m := redirectRe.FindStringSubmatch(wikitext)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Fetch retrieves the raw wikitext for a page. A single redirect hop is
// followed; longer chains fail to bound worst-case latency on malformed
// wikis.
func (c *Client) Fetch(ctx context.Context, ref PageReference) (RawArticle, error) {
	p, err := c.parsePage(ctx, ref.Title)
	if err != nil {
		return RawArticle{}, err
	}

	if target, ok := redirectTarget(p.Wikitext); ok {
		c.log.Debug().Str("from", p.Title).Str("to", target).Msg("following redirect")
		p, err = c.parsePage(ctx, target)
		if err != nil {
			return RawArticle{}, err
		}
		if _, again := redirectTarget(p.Wikitext); again {
			return RawArticle{}, &ContentUnavailableError{
				Title:  ref.Title,
				Reason: "redirect chain longer than one hop",
			}
		}
	}

	if strings.TrimSpace(p.Wikitext) == "" {
		return RawArticle{}, &ContentUnavailableError{Title: p.Title, Reason: "page has no wikitext"}
	}

	return RawArticle{
		Title:        p.Title,
		Wikitext:     p.Wikitext,
		CanonicalURL: c.canonicalURL(ctx, p),
	}, nil
}

func (c *Client) parsePage(ctx context.Context, title string) (parsedPage, error) {
	resp, err := c.Get(ctx, parseParams{
		Action: "parse",
		Page:   title,
		Prop:   "wikitext|headhtml",
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isMissingPageCode(apiErr.Code) {
			return parsedPage{}, &ContentUnavailableError{Title: title, Reason: apiErr.Message}
		}
		return parsedPage{}, err
	}

	var pr struct {
		Parse struct {
			Title    string `json:"title"`
			Wikitext string `json:"wikitext"`
			HeadHTML string `json:"headhtml"`
		} `json:"parse"`
	}
	if err := resp.Into(&pr); err != nil {
		return parsedPage{}, &MalformedResponseError{What: "parse response", Err: err}
	}
	if pr.Parse.Title == "" {
		return parsedPage{}, &MalformedResponseError{What: "parse response missing title"}
	}

	return parsedPage{
		Title:    pr.Parse.Title,
		Wikitext: pr.Parse.Wikitext,
		HeadHTML: pr.Parse.HeadHTML,
	}, nil
}

// canonicalURL extracts the article-view URL from the page head: rel=canonical
// (Wikipedia), then og:url (wiki.gg, Fandom), then the generic index.php
// link.
func (c *Client) canonicalURL(ctx context.Context, p parsedPage) string {
	if p.HeadHTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HeadHTML)); err == nil {
			if href, ok := doc.Find(`link[rel="canonical"]`).Attr("href"); ok && href != "" {
				return href
			}
			if content, ok := doc.Find(`meta[property="og:url"]`).Attr("content"); ok && content != "" {
				return content
			}
		}
	}
	ep, err := c.Resolve(ctx)
	if err != nil {
		return ""
	}
	return ep.PageURL(p.Title)
}
