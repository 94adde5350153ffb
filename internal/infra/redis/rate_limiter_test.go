package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRedis struct {
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeRedis) Ping(context.Context) error { return nil }

func (f *fakeRedis) Incr(_ context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeRedis) Expire(_ context.Context, key string, expiration time.Duration) error {
	f.expires[key] = expiration
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.counts, k)
	}
	return nil
}

func (f *fakeRedis) Close() error { return nil }

func TestRateLimiterAllow(t *testing.T) {
	f := newFakeRedis()
	limiter := NewRateLimiter(f)
	ctx := context.Background()
	key := RedeemKey("steve")

	for i := 1; i <= 3; i++ {
		ok, err := limiter.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("attempt %d denied under the limit", i)
		}
	}

	ok, err := limiter.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("attempt over the limit allowed")
	}

	t.Run("window set on first increment only", func(t *testing.T) {
		if f.expires[key] != time.Minute {
			t.Errorf("expire = %v", f.expires[key])
		}
	})

	t.Run("keys are per player", func(t *testing.T) {
		ok, err := limiter.Allow(ctx, RedeemKey("alex"), 3, time.Minute)
		if err != nil || !ok {
			t.Errorf("other player throttled: ok=%v err=%v", ok, err)
		}
	})
}

func TestRateLimiterBackendError(t *testing.T) {
	f := newFakeRedis()
	f.incrErr = errors.New("connection refused")
	limiter := NewRateLimiter(f)

	ok, err := limiter.Allow(context.Background(), RedeemKey("steve"), 3, time.Minute)
	if err == nil {
		t.Fatal("expected backend error")
	}
	if ok {
		t.Error("allowed despite backend error")
	}
}
