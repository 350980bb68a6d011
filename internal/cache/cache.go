// Package cache provides completion-response caching.
//
// Caching is a pure optimization: the generator treats every cache error as
// a miss, so a broken cache can never fail a generation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CompletionKey derives a stable cache key from everything that influences a
// completion: model, style, pair count, temperature, and the chunk text.
func CompletionKey(model, style string, questions int, temperature float64, chunkText string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%.3f\x00%s", model, style, questions, temperature, chunkText)
	return "completion:" + hex.EncodeToString(h.Sum(nil))
}
