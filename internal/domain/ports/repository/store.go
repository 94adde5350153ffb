package repository

import "game-vip-service/internal/domain/model"

// Store is the whole-map persistence contract shared by the three stores.
// Load and Save each take the store's internal mutex on their own; Mutate and
// View hold it across the whole callback, which is how services get a
// load-mutate-save critical section without managing locks themselves.
//
// Mutate persists the map only when the callback returns dirty == true and a
// nil error. There are no partial or range queries on purpose: record counts
// are small and atomicity of the full map matters more than throughput.
type Store[V any] interface {
	Load() (map[string]V, error)
	Save(m map[string]V) error
	Mutate(fn func(m map[string]V) (dirty bool, err error)) error
	View(fn func(m map[string]V) error) error
}

// The three store instances of the service.
type (
	PlayerStateStore = Store[*model.PlayerVipState]
	VoucherStore     = Store[*model.VoucherRecord]
	HistoryStore     = Store[[]model.VipHistoryEntry]
)
