package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/config"
)

func TestPayloadEncoding(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"total_stations":10}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"total_stations":10}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCacheKey(t *testing.T) {
	e := echo.New()
	mk := func(target string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/stations")
		return c
	}
	cfg := config.CacheConfig{Prefix: "stations:cache", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, mk("/api/stations?x=1"))
	b := cacheKeyFrom(cfg, mk("/api/stations?x=2"))
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^stations:cache:[0-9a-f]{40}$`, a)

	cfg.KeyStrategy = "route"
	assert.Equal(t, cacheKeyFrom(cfg, mk("/api/stations?x=1")), cacheKeyFrom(cfg, mk("/api/stations?x=2")))
}

func TestResponseCacheWithoutRedis(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil, nil)
	e := echo.New()
	calls := 0
	h := rc.Middleware()(func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/stats", nil), rec)))
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, rc.Invalidate(context.Background()))

	var nilCache *ResponseCache
	assert.NoError(t, nilCache.Invalidate(context.Background()))
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("def"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(6), cw.size)
	assert.Equal(t, "abcdef", rec.Body.String())
}
