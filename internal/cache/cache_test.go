package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/codedrop/internal/models"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	value := models.Transfer{Code: "AB12CD", FileCount: 2, ExpiresAt: time.Date(2024, 1, 16, 10, 30, 0, 0, time.UTC)}
	var result models.Transfer

	c := NewMemoryCache(1 * 1024 * 1024)

	require.NoError(t, c.Set(ctx, "key", value, time.Minute))
	require.NoError(t, c.Get(ctx, "key", &result))
	assert.Equal(t, value.Code, result.Code)
	assert.Equal(t, value.FileCount, result.FileCount)
	assert.True(t, value.ExpiresAt.Equal(result.ExpiresAt))

	require.NoError(t, c.Delete(ctx, "key"))
	assert.ErrorIs(t, c.Get(ctx, "key", &result), ErrMiss)
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(1 * 1024 * 1024)
	calls := 0
	load := func() (string, error) {
		calls++
		return "loaded", nil
	}

	v, err := Fetch(ctx, c, Key("transfer", "AB12CD"), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)

	v, err = Fetch(ctx, c, Key("transfer", "AB12CD"), time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "loaded", v)
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err = Fetch(ctx, c, "other", time.Minute, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestNoop(t *testing.T) {
	var c Cacher = Noop{}
	var out string
	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))
	assert.ErrorIs(t, c.Get(context.Background(), "k", &out), ErrMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "transfer:AB12CD", Key("transfer", "AB12CD"))
}

func TestExpireSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Millisecond, 1},
		{500 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{time.Minute, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expireSeconds(tt.in), tt.in.String())
	}
}

type stepTimer struct {
	now atomic.Uint32
}

func (s *stepTimer) Now() uint32 { return s.now.Load() }

func TestMemoryCache_SubSecondTTLExpires(t *testing.T) {
	ctx := context.Background()
	timer := &stepTimer{}
	timer.now.Store(1000)
	c := newMemoryCacheWithTimer(1*1024*1024, timer)

	require.NoError(t, c.Set(ctx, "transfer:AB12CD", "cached", 500*time.Millisecond))
	var out string
	require.NoError(t, c.Get(ctx, "transfer:AB12CD", &out))
	assert.Equal(t, "cached", out)

	timer.now.Store(1002)
	assert.ErrorIs(t, c.Get(ctx, "transfer:AB12CD", &out), ErrMiss)
}
