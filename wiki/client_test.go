package wiki

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SetsUserAgentAndDefaults(t *testing.T) {
	t.Parallel()

	var sawUA atomic.Bool
	var gotQuery atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			http.NotFound(w, r)
			return
		}
		if strings.HasPrefix(r.Header.Get("User-Agent"), "wikifetch-go/") {
			sawUA.Store(true)
		}
		gotQuery.Store(r.URL.Query())
		writeSiteinfo(w)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Get(testContext(t), map[string]any{"meta": "siteinfo"})
	require.NoError(t, err)

	assert.True(t, sawUA.Load(), "requests must carry the default User-Agent")
	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "query", q.Get("action"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "2", q.Get("formatversion"))
	assert.Equal(t, "plaintext", q.Get("errorformat"))
}

func TestGet_CustomUserAgent(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		writeSiteinfo(w)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/w/api.php", WithUserAgent("custom-agent/9"))
	require.NoError(t, err)

	_, err = c.Get(testContext(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "custom-agent/9", gotUA.Load())
}

func TestNewClient_EmptyBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient("")
	_, ok := IsEndpointNotFound(err)
	assert.True(t, ok, "want EndpointNotFoundError, got %v", err)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	c, err := NewClient("wiki.example", WithTimeout(3*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.hc.Timeout)
}
