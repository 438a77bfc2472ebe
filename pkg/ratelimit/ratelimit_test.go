package ratelimit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopinhq/loopin/pkg/ratelimit"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newBucket(t *testing.T, c *clock) *ratelimit.Bucket {
	t.Helper()
	b, err := ratelimit.NewBucket(ratelimit.NewMemoryStore(ratelimit.WithClock(c.now)), ratelimit.Config{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Second,
	})
	require.NoError(t, err)
	return b
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.NewBucket(ratelimit.NewMemoryStore(), ratelimit.Config{Capacity: 1, RefillRate: 1})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
}

func TestBucket_AllowAndRefill(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := newBucket(t, c)

	res, err := b.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 1, res.Remaining)

	res, err = b.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	res, err = b.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	other, err := b.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "keys have separate buckets")

	c.t = c.t.Add(time.Second)
	res, err = b.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	_, err = b.AllowN(ctx, "a", 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidTokenCount)
}

func TestBucket_Reset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := newBucket(t, &clock{t: time.Now()})

	_, err := b.AllowN(ctx, "a", 2)
	require.NoError(t, err)
	require.NoError(t, b.Reset(ctx, "a"))

	res, err := b.Allow(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	b := newBucket(t, &clock{t: time.Now()})
	h := ratelimit.Middleware(b, ratelimit.ClientIP, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/chat", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	rec := do("10.0.0.1:2000")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do("10.0.0.1:3000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code)
}
