package core

import (
	"context"
)

// TextClassifier scores email text with an external model backend.
type TextClassifier interface {
	// Score returns the phishing probability for the given text.
	Score(ctx context.Context, text string) (*ClassifierScore, error)
}

// ScoreCache caches classifier scores by text digest.
type ScoreCache interface {
	// Get retrieves a cached score for a text digest
	Get(ctx context.Context, textDigest string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, textDigest string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
