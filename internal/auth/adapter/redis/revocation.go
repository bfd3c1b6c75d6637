package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationRegistry records invalidated internal tokens until their natural
// expiry. Tokens are keyed by their SHA-256 digest so raw credentials never
// land in Redis.
type RevocationRegistry struct {
	client *goredis.Client
}

// NewRevocationRegistry creates a registry on the given client.
func NewRevocationRegistry(client *goredis.Client) *RevocationRegistry {
	return &RevocationRegistry{client: client}
}

// IsRevoked reports whether the token has been explicitly invalidated.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(rawToken)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke marks the token invalid for ttl, which should cover the token's
// remaining lifetime.
func (r *RevocationRegistry) Revoke(ctx context.Context, rawToken string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(rawToken), "1", ttl).Err()
}

func (r *RevocationRegistry) key(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
