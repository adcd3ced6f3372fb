package wiki

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeParams_Defaults(t *testing.T) {
	t.Parallel()

	v, err := normalizeParams(nil)
	require.NoError(t, err)
	assert.Equal(t, "query", v.Get("action"))
	assert.Equal(t, "json", v.Get("format"))
	assert.Equal(t, "2", v.Get("formatversion"))
	assert.Equal(t, "plaintext", v.Get("errorformat"))
}

func TestNormalizeParams_Map(t *testing.T) {
	t.Parallel()

	v, err := normalizeParams(map[string]any{
		"action":    "parse",
		"page":      "Main Page",
		"redirects": false,
		"prop":      []string{"wikitext", "headhtml"},
		"section":   0,
	})
	require.NoError(t, err)
	assert.Equal(t, "parse", v.Get("action"))
	assert.Equal(t, "Main Page", v.Get("page"))
	assert.Equal(t, "wikitext|headhtml", v.Get("prop"))
	assert.Equal(t, "0", v.Get("section"))
	// False booleans are omitted entirely.
	_, present := v["redirects"]
	assert.False(t, present)
}

func TestNormalizeParams_Struct(t *testing.T) {
	t.Parallel()

	v, err := normalizeParams(searchParams{
		Action:   "query",
		List:     "search",
		Srsearch: "apple pie",
		Srlimit:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, "search", v.Get("list"))
	assert.Equal(t, "apple pie", v.Get("srsearch"))
	assert.Equal(t, "5", v.Get("srlimit"))
}

func TestNormalizeParams_Values(t *testing.T) {
	t.Parallel()

	v, err := normalizeParams(url.Values{"titles": {"A", "B"}})
	require.NoError(t, err)
	assert.Equal(t, "A|B", v.Get("titles"))
}

func TestNormalizeParams_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := normalizeParams(42)
	assert.Error(t, err)
}
