package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const denylistPrefix = "session:revoked:"

// ErrEmptyTokenID is returned when revoking a token without an id.
var ErrEmptyTokenID = errors.New("token id is empty")

// RevokeToken denylists tokenID until expiresAt. Tokens that are already
// expired need no entry.
func (c *Cache) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrEmptyTokenID
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := c.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the denylist.
func (c *Cache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}
