package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil)

	svc.Set(context.Background(), "k", map[string]int{"a": 1}, 0)

	var got map[string]int
	require.True(t, svc.Get(context.Background(), "k", &got))
	assert.Equal(t, 1, got["a"])
}

func TestCacheServiceMiss(t *testing.T) {
	svc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil)

	var got map[string]int
	assert.False(t, svc.Get(context.Background(), "absent", &got))
}

func TestCacheServiceBackendErrorIsMiss(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("redis: connection refused")
	svc := NewCacheService(repo, nil, time.Minute, nil)

	var got map[string]int
	assert.False(t, svc.Get(context.Background(), "k", &got))
}

func TestCacheServiceSetFailureSwallowed(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.setErr = errors.New("redis: connection refused")
	svc := NewCacheService(repo, nil, time.Minute, nil)

	assert.NotPanics(t, func() {
		svc.Set(context.Background(), "k", 1, time.Minute)
	})
}

func TestCacheServiceDisabledWithoutBackend(t *testing.T) {
	svc := NewCacheService(nil, nil, time.Minute, nil)

	assert.False(t, svc.Enabled())
	var got int
	assert.False(t, svc.Get(context.Background(), "k", &got))
	assert.NotPanics(t, func() {
		svc.Set(context.Background(), "k", 1, 0)
		svc.Invalidate(context.Background(), "k")
	})
}
