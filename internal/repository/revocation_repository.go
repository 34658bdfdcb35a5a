package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedKeyPrefix namespaces denylist entries: blacklisted_<raw token>.
const revokedKeyPrefix = "blacklisted_"

// RevocationRepo is the token denylist.  Entries are plain keys with a TTL;
// Redis expires them, nothing ever deletes them explicitly.
type RevocationRepo struct {
	rdb        *redis.Client
	defaultTTL time.Duration
}

// NewRevocationRepo binds the denylist to rdb.  defaultTTL is used whenever
// Revoke is called with a non-positive ttl.
func NewRevocationRepo(rdb *redis.Client, defaultTTL time.Duration) *RevocationRepo {
	return &RevocationRepo{rdb: rdb, defaultTTL: defaultTTL}
}

// Revoke marks token as revoked for ttl.  Calling it again overwrites the
// entry and refreshes the TTL.  The token itself is not inspected, so
// revoking an expired or garbage token is a harmless write.
func (r *RevocationRepo) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+token, "true", ttl).Err()
}

// IsRevoked reports whether a denylist entry exists for token.  A missing
// key, including one that has expired, means not revoked.
func (r *RevocationRepo) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, err := r.rdb.Get(ctx, revokedKeyPrefix+token).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}
