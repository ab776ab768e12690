package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/edushield/phishing-filter/internal/core"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entry := &core.CacheEntry{
		TextDigest:  "abc123",
		Probability: 0.82,
		ModelProbs:  map[string]float64{"gpt-4o-mini": 0.82},
		ModelUsed:   "gpt-4o-mini",
		LastSeen:    time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	if err := c.Set(ctx, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "abc123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Probability != 0.82 {
		t.Errorf("expected probability 0.82, got %v", got.Probability)
	}
	if got.ModelUsed != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %q", got.ModelUsed)
	}
	if got.ModelProbs["gpt-4o-mini"] != 0.82 {
		t.Errorf("unexpected model probs: %v", got.ModelProbs)
	}
}

func TestMemoryCacheMissing(t *testing.T) {
	c := newTestCache(t)

	if _, err := c.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryCacheExpired(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entry := &core.CacheEntry{
		TextDigest:  "stale",
		Probability: 0.5,
		ModelUsed:   "none",
		LastSeen:    time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	if err := c.Set(ctx, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := c.Get(ctx, "stale"); err != ErrExpired {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	entry := &core.CacheEntry{
		TextDigest: "gone",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	if err := c.Set(ctx, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "gone"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	fresh := &core.CacheEntry{TextDigest: "fresh", ExpiresAt: time.Now().Add(time.Hour)}
	stale := &core.CacheEntry{TextDigest: "stale", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := c.Set(ctx, fresh); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, stale); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	if _, err := c.Get(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry should survive cleanup, got %v", err)
	}
	if _, err := c.Get(ctx, "stale"); err != ErrNotFound {
		t.Errorf("stale entry should be removed, got %v", err)
	}
}
