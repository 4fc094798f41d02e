package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked token IDs in Redis until the token would
// have expired anyway.
type RevocationStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRevocationStore constructs a store using keys under prefix.
func NewRevocationStore(client *redis.Client, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "auth:revoked"
	}
	return &RevocationStore{client: client, prefix: prefix, now: time.Now}
}

// Revoke marks tokenID as revoked until expiresAt. Already expired tokens
// are ignored.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("auth: check revocation: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) key(tokenID string) string {
	return s.prefix + ":" + tokenID
}
