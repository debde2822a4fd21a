package server

import (
	"io"
	"net/http"
	"testing"
	"time"

	"inkwell/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPageCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func getBlogBody(t *testing.T) string {
	t.Helper()
	resp := doJSON(t, http.MethodGet, "/blog/?limit=5", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

// A cached page can lag a write by up to its TTL; after expiry the next
// request renders fresh.
func TestPageCacheStaleness(t *testing.T) {
	mr := withPageCache(t)
	_, token := newPoster(t)

	before := getBlogBody(t)
	assert.NotContains(t, before, "cache canary post")

	postID := createPostViaBlog(t, token, "cache canary post")
	require.NotZero(t, postID)

	// Within the TTL the stale page is served unchanged.
	stale := getBlogBody(t)
	assert.Equal(t, before, stale)

	mr.FastForward(2 * time.Minute)

	// Expiry forces a re-render; the sidebar may still be cached longer,
	// but the post list is fresh.
	fresh := getBlogBody(t)
	assert.Contains(t, fresh, "cache canary post")
}

// A hit skips the handler chain, so the middleware itself must consume
// the one-time flash notice or it would repeat on every cached reply.
func TestPageCacheHitClearsFlash(t *testing.T) {
	withPageCache(t)

	getWithFlash := func() *http.Response {
		req, err := http.NewRequest(http.MethodGet, "/blog/?limit=3", nil)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "flash", Value: "Post added"})
		resp, err := testServer.App().Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return resp
	}

	resp := getWithFlash()
	resp.Body.Close()

	// Same fingerprint again: served from the cache this time.
	resp = getWithFlash()
	resp.Body.Close()

	var cleared bool
	for _, ck := range resp.Cookies() {
		if ck.Name == "flash" && ck.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "cached reply should clear the flash cookie")
}

func TestPageCacheVariesByIdentity(t *testing.T) {
	withPageCache(t)
	_, token := newPoster(t)

	anonymous := getBlogBody(t)
	require.NotEmpty(t, anonymous)

	// An authenticated request has a different fingerprint and therefore
	// never reuses the anonymous entry.
	resp := doJSON(t, http.MethodGet, "/blog/?limit=5", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	keys := cache.GetClient().Keys(t.Context(), "page:*").Val()
	assert.GreaterOrEqual(t, len(keys), 2)
}
