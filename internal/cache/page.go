package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Redis key prefix for rendered listing pages.
	pageKeyPrefix = "page:home:"

	// DefaultPageTTL is the TTL for cached rendered pages. Pages are also
	// invalidated explicitly on update and delete; the TTL is a backstop.
	DefaultPageTTL = 24 * time.Hour
)

// ErrPageMiss indicates no rendered page is cached for the requested home.
var ErrPageMiss = errors.New("page cache miss")

// GetRenderedPage retrieves a cached rendered page for a home.
// Returns ErrPageMiss if the page has not been generated yet.
func (c *Cache) GetRenderedPage(ctx context.Context, homeID string) ([]byte, error) {
	data, err := c.client.Get(ctx, pageKeyPrefix+homeID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPageMiss
		}
		return nil, fmt.Errorf("get rendered page: %w", err)
	}

	return data, nil
}

// SetRenderedPage stores a rendered page for a home. Not-yet-generated pages
// land here on first request (fallback generation); pre-generation at startup
// fills the same keys.
func (c *Cache) SetRenderedPage(ctx context.Context, homeID string, html []byte) error {
	if err := c.client.Set(ctx, pageKeyPrefix+homeID, html, DefaultPageTTL).Err(); err != nil {
		return fmt.Errorf("set rendered page: %w", err)
	}
	return nil
}

// InvalidatePage drops the cached page for a home. Called after update and
// delete so the next request re-renders from the database.
func (c *Cache) InvalidatePage(ctx context.Context, homeID string) error {
	if err := c.client.Del(ctx, pageKeyPrefix+homeID).Err(); err != nil {
		return fmt.Errorf("invalidate page: %w", err)
	}
	return nil
}
