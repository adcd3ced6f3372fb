package wiki

import (
	"context"
)

type searchParams struct {
	Action   string `url:"action"`
	List     string `url:"list"`
	Srsearch string `url:"srsearch"`
	Srlimit  int    `url:"srlimit"`
}

type searchResult struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

// Search resolves a free-text query to a single page. The top-ranked hit
// wins; there is no disambiguation step.
func (c *Client) Search(ctx context.Context, query string) (PageReference, error) {
	hits, err := c.search(ctx, query)
	if err != nil {
		return PageReference{}, err
	}
	titles := make([]string, 0, len(hits.Query.Search))
	for _, h := range hits.Query.Search {
		titles = append(titles, h.Title)
	}
	c.log.Debug().Str("query", query).Strs("results", titles).Msg("search results")
	top := hits.Query.Search[0]
	return PageReference{Title: top.Title, PageID: top.PageID}, nil
}

// SearchTitles returns the titles of all hits for a query, best match first.
func (c *Client) SearchTitles(ctx context.Context, query string) ([]string, error) {
	hits, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(hits.Query.Search))
	for _, h := range hits.Query.Search {
		titles = append(titles, h.Title)
	}
	return titles, nil
}

func (c *Client) search(ctx context.Context, query string) (*searchResult, error) {
	resp, err := c.Get(ctx, searchParams{
		Action:   "query",
		List:     "search",
		Srsearch: query,
		Srlimit:  5,
	})
	if err != nil {
		return nil, err
	}

	var sr searchResult
	if err := resp.Into(&sr); err != nil {
		return nil, &MalformedResponseError{What: "search response", Err: err}
	}
	if len(sr.Query.Search) == 0 {
		return nil, &PageNotFoundError{Query: query}
	}
	return &sr, nil
}
