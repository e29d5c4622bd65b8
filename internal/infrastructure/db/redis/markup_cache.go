package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	defaultMarkupTTL = 24 * time.Hour
	markupKeyPrefix  = "markup:"
)

// MarkupCache stores enriched SSML keyed by a hash of the source text.
// Key format: markup:<blake2b-256 hex of text>
type MarkupCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMarkupCache creates a MarkupCache. A non-positive ttl uses defaultMarkupTTL.
func NewMarkupCache(client *redis.Client, ttl time.Duration) *MarkupCache {
	if ttl <= 0 {
		ttl = defaultMarkupTTL
	}
	return &MarkupCache{client: client, ttl: ttl}
}

// Get returns the cached markup for text. found is false on a miss.
func (m *MarkupCache) Get(ctx context.Context, text string) (string, bool, error) {
	markup, err := m.client.Get(ctx, m.key(text)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("markup cache get: %w", err)
	}
	return markup, true, nil
}

// Put stores markup for text until the TTL expires.
func (m *MarkupCache) Put(ctx context.Context, text, markup string) error {
	if err := m.client.Set(ctx, m.key(text), markup, m.ttl).Err(); err != nil {
		return fmt.Errorf("markup cache put: %w", err)
	}
	return nil
}

func (m *MarkupCache) key(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return markupKeyPrefix + hex.EncodeToString(sum[:])
}
