package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records tokens that must be rejected before their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Noop is used when no revocation backend is configured; nothing is ever
// revoked.
type Noop struct{}

func (Noop) Revoke(context.Context, string, time.Time) error { return nil }
func (Noop) IsRevoked(context.Context, string) (bool, error) { return false, nil }

const defaultPrefix = "bookcart:revoked:"

// RedisRevoker keeps revoked token ids in Redis with a TTL matching the
// token's remaining lifetime.
type RedisRevoker struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRevoker(addr, password string) *RedisRevoker {
	return &RedisRevoker{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix: defaultPrefix,
		now:    time.Now,
	}
}

// Ping checks that Redis is reachable.
func (r *RedisRevoker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRevoker) Close() error {
	return r.client.Close()
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return errors.New("session: empty token id")
	}
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
