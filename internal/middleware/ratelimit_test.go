package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eco-stations/internal/config"
	"github.com/iliyamo/eco-stations/internal/model"
)

func testLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
}

func TestLocalBuckets(t *testing.T) {
	b := newLocalBuckets(testLimitConfig())
	now := time.Now()

	d := b.take("k", now)
	assert.True(t, d.allowed)
	assert.Equal(t, int64(1), d.remaining)
	assert.True(t, b.take("k", now).allowed)

	d = b.take("k", now)
	assert.False(t, d.allowed)
	assert.Greater(t, d.retry, time.Duration(0))

	// another key has its own bucket
	assert.True(t, b.take("other", now).allowed)
	// refilled after one interval
	assert.True(t, b.take("k", now.Add(time.Minute+time.Second)).allowed)
}

func TestLocalBucketsSweepsIdleKeys(t *testing.T) {
	b := newLocalBuckets(testLimitConfig())
	now := time.Now()
	b.take("idle", now)
	b.take("fresh", now.Add(11*time.Minute))
	_, ok := b.entries["idle"]
	assert.False(t, ok)
}

func TestTokenBucketWithoutRedis(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(testLimitConfig(), nil, nil)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	call := func() (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/login")
		return rec, h(c)
	}

	for i := 0; i < 2; i++ {
		rec, err := call()
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec, err := call()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketDisabled(t *testing.T) {
	cfg := testLimitConfig()
	cfg.Enabled = false
	cfg.Capacity = 1
	e := echo.New()
	h := NewTokenBucket(cfg, nil, nil)(func(c echo.Context) error { return nil })
	for i := 0; i < 5; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), httptest.NewRecorder())
		require.NoError(t, h(c))
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/station/3/review", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/station/:id/review")

	cfg := testLimitConfig()
	assert.Equal(t, "test:rl:ip:10.0.0.9:route:POST /station/:id/review", buildRateKey(cfg, c))

	cfg.KeyStrategy = "user"
	assert.Equal(t, "test:rl:user:anon", buildRateKey(cfg, c))
	SetPrincipal(c, &model.Principal{ID: 42})
	assert.Equal(t, "test:rl:user:42", buildRateKey(cfg, c))
}
