package revocation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	revokedKeyPrefix = "revoked:"
	epochKeyPrefix   = "epoch:"
)

// RedisLedger is a Ledger backed by Redis. Revoked jtis are stored as keys
// with a TTL matching the token's remaining lifetime, so Redis expiry prunes
// them once the token would be rejected as expired anyway.
type RedisLedger struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisLedger returns a Ledger using the given Redis client.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client, now: time.Now}
}

// Revoke marks jti as revoked. The write is visible to every IsRevoked
// issued after Revoke returns.
func (l *RedisLedger) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := l.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (l *RedisLedger) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// BumpEpoch records now as the user's revocation epoch, at second
// resolution to match token iat claims.
func (l *RedisLedger) BumpEpoch(ctx context.Context, userID string) error {
	epoch := strconv.FormatInt(l.now().Unix(), 10)
	if err := l.client.Set(ctx, epochKeyPrefix+userID, epoch, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// EpochFor returns the user's revocation epoch, or the zero time when never bumped.
func (l *RedisLedger) EpochFor(ctx context.Context, userID string) (time.Time, error) {
	val, err := l.client.Get(ctx, epochKeyPrefix+userID).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: corrupt epoch for %s", ErrUnavailable, userID)
	}
	return time.Unix(sec, 0).UTC(), nil
}
