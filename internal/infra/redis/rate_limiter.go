package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter throttles voucher redemption attempts per player, so a stolen
// or guessed voucher cannot be brute-forced against the signature check.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// RedeemKey namespaces the per-player redemption counter.
func RedeemKey(playerID string) string {
	return fmt.Sprintf("rate_limit:redeem:%s", playerID)
}
