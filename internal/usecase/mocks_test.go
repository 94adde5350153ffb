package usecase

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain/model"
)

// memStore is an in-memory Store implementation for tests. It mirrors the
// file store's contract: Mutate persists (bumps saves) only when fn reports
// dirty. A fn error discards nothing because fn already mutated the live
// map; tests that need rollback semantics assert via saves instead.
type memStore[V any] struct {
	mu       sync.Mutex
	m        map[string]V
	saves    int
	failWith error
}

func newMemStore[V any]() *memStore[V] {
	return &memStore[V]{m: make(map[string]V)}
}

func (s *memStore[V]) Load() (map[string]V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make(map[string]V, len(s.m))
	for k, v := range s.m {
		out[k] = v
	}
	return out, nil
}

func (s *memStore[V]) Save(m map[string]V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.m = m
	s.saves++
	return nil
}

func (s *memStore[V]) Mutate(fn func(m map[string]V) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	dirty, err := fn(s.m)
	if err != nil {
		return err
	}
	if dirty {
		s.saves++
	}
	return nil
}

func (s *memStore[V]) View(fn func(m map[string]V) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	return fn(s.m)
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// testSigner is a trivial Signer so voucher tests do not depend on the HMAC
// implementation; security has its own tests.
type testSigner struct{}

func (testSigner) Sign(p model.VoucherPayload) string { return "sig:" + p.CanonicalString() }
func (s testSigner) Verify(p model.VoucherPayload, signature string) bool {
	return s.Sign(p) == signature
}

const (
	goldDuration   = 30 * 24 * 3600
	silverDuration = 24 * 3600
)

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	catalog, err := config.NewCatalog(map[string]*model.VipDefinition{
		"gold": {
			DisplayName:     "Gold",
			DurationSeconds: goldDuration,
			Stackable:       true,
			MaxStack:        3,
			CommandsOnActivate: []string{
				"lp user {player} parent add gold",
				"broadcast {player} is now {vipDisplay} for {durationHuman}",
			},
			CommandsOnExpire: []string{"lp user {player} parent remove gold"},
		},
		"silver": {
			DisplayName:     "Silver",
			DurationSeconds: silverDuration,
		},
	}, "")
	if err != nil {
		t.Fatalf("test catalog: %v", err)
	}
	return catalog
}

// env wires the three use cases over in-memory stores with a controllable
// clock.
type env struct {
	clock        int64
	players      *memStore[*model.PlayerVipState]
	vouchers     *memStore[*model.VoucherRecord]
	history      *memStore[[]model.VipHistoryEntry]
	entitlements *EntitlementUseCase
	voucherUC    *VoucherUseCase
	sweep        *SweepUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	catalog := testCatalog(t)
	e := &env{
		clock:    1_700_000_000,
		players:  newMemStore[*model.PlayerVipState](),
		vouchers: newMemStore[*model.VoucherRecord](),
		history:  newMemStore[[]model.VipHistoryEntry](),
	}
	now := func() int64 { return e.clock }

	e.entitlements = NewEntitlementUseCase(catalog, e.players, e.history, testLogger())
	e.entitlements.now = now
	e.voucherUC = NewVoucherUseCase(catalog, e.vouchers, testSigner{}, e.entitlements, testLogger())
	e.voucherUC.now = now
	e.sweep = NewSweepUseCase(catalog, e.players, e.history, testLogger())
	e.sweep.now = now
	return e
}

func (e *env) advance(seconds int64) { e.clock += seconds }

func (e *env) mustVip(t *testing.T, id string) *model.VipDefinition {
	t.Helper()
	def, err := e.entitlements.catalog.Get(id)
	if err != nil {
		t.Fatalf("vip %s: %v", id, err)
	}
	return def
}
