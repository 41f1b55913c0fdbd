package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// signInKeyPrefix is the Redis key prefix for pending sign-in tokens.
	signInKeyPrefix = "signin:token:"
)

// Common cache errors.
var (
	// ErrTokenNotFound covers expired, already-used, and never-issued tokens
	// alike: the key is simply gone.
	ErrTokenNotFound = errors.New("sign-in token not found")
)

// pendingSignIn is the payload stored for an outstanding sign-in token.
type pendingSignIn struct {
	Email    string `json:"email"`
	IssuedAt int64  `json:"issued_at"`
}

// StoreSignInToken stores a pending sign-in under the token digest with the
// given TTL. The plaintext token never touches Redis.
func (c *Cache) StoreSignInToken(ctx context.Context, tokenDigest, email string, ttl time.Duration) error {
	data, err := json.Marshal(pendingSignIn{
		Email:    email,
		IssuedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal pending sign-in: %w", err)
	}

	key := signInKeyPrefix + tokenDigest
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("store sign-in token: %w", err)
	}

	return nil
}

// ConsumeSignInToken atomically fetches and deletes a pending sign-in by token
// digest, making every token single-use. Returns the email the token was
// issued for, or ErrTokenNotFound if the token is unknown, expired, or was
// already consumed.
func (c *Cache) ConsumeSignInToken(ctx context.Context, tokenDigest string) (string, error) {
	key := signInKeyPrefix + tokenDigest

	data, err := c.client.GetDel(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("consume sign-in token: %w", err)
	}

	var pending pendingSignIn
	if err := json.Unmarshal(data, &pending); err != nil {
		// Corrupted entry - treat as not found.
		return "", ErrTokenNotFound
	}

	return pending.Email, nil
}
