package usecase

import (
	"time"

	"github.com/rs/zerolog"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/domain/ports/repository"
)

// SweepUseCase advances time-dependent state for the whole player population:
// one pass marking reminder windows, one pass expiring overdue entitlements.
// Each pass runs under the players store's critical section and persists at
// most once, so re-running a sweep without wall-clock progress is a no-op.
type SweepUseCase struct {
	catalog *config.Catalog
	players repository.PlayerStateStore
	history repository.HistoryStore
	log     *zerolog.Logger

	now func() int64
}

func NewSweepUseCase(catalog *config.Catalog, players repository.PlayerStateStore, history repository.HistoryStore, logger *zerolog.Logger) *SweepUseCase {
	l := logger.With().Str("component", "SweepUseCase").Logger()
	return &SweepUseCase{
		catalog: catalog,
		players: players,
		history: history,
		log:     &l,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Run executes both passes with the current wall clock.
func (uc *SweepUseCase) Run() (reminders []Reminder, expired []ExpiredVip, err error) {
	now := uc.now()
	reminders, err = uc.CollectReminders(now)
	if err != nil {
		return nil, nil, err
	}
	expired, err = uc.SweepExpired(now)
	if err != nil {
		return nil, nil, err
	}
	return reminders, expired, nil
}

// CollectReminders marks and returns one reminder per player entering a new
// expiry window (7d, 1d, 1h; closest window wins). The bitmask persisted on
// the state deduplicates across sweeps; the map is saved once per pass.
func (uc *SweepUseCase) CollectReminders(now int64) ([]Reminder, error) {
	var out []Reminder
	err := uc.players.Mutate(func(m map[string]*model.PlayerVipState) (bool, error) {
		for playerID, state := range m {
			if state == nil || state.ActiveVipID == "" {
				continue
			}
			remaining := state.ExpiresAt - now
			if remaining <= 0 {
				// already expired; the expiry pass handles it
				continue
			}

			bit, window := model.ReminderWindow(remaining)
			if bit == 0 || state.RemindersSent&bit != 0 {
				continue
			}
			state.RemindersSent |= bit

			out = append(out, Reminder{
				PlayerID:         playerID,
				VipID:            state.ActiveVipID,
				ExpiresAt:        state.ExpiresAt,
				RemainingSeconds: remaining,
				WindowSeconds:    window,
				Vip:              uc.catalog.Lookup(state.ActiveVipID),
			})
		}
		return len(out) > 0, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SweepExpired clears every overdue entitlement, closes its history entry and
// returns the expirations so the caller can run vip-specific expiry commands.
// A vip deleted from the catalog still gets cleared; its emission carries a
// nil definition.
func (uc *SweepUseCase) SweepExpired(now int64) ([]ExpiredVip, error) {
	var out []ExpiredVip
	err := uc.players.Mutate(func(m map[string]*model.PlayerVipState) (bool, error) {
		for playerID, state := range m {
			if state == nil || state.ActiveVipID == "" || state.ExpiresAt > now {
				continue
			}

			vipID := state.ActiveVipID
			def := uc.catalog.Lookup(vipID)
			displayName := vipID
			if def != nil && def.DisplayName != "" {
				displayName = def.DisplayName
			}

			out = append(out, ExpiredVip{
				PlayerID:      playerID,
				VipID:         vipID,
				ActivatedAt:   state.ActivatedAt,
				ExpiresAt:     state.ExpiresAt,
				LastKnownName: state.LastKnownName,
				Vip:           def,
			})

			if !state.CloseOpenHistory(vipID, now, model.EndReasonExpired) {
				state.AppendHistory(model.VipHistoryEntry{
					VipID:          vipID,
					VipDisplayName: displayName,
					ActivatedAt:    state.ActivatedAt,
					ExpiresAt:      state.ExpiresAt,
					EndedAt:        now,
					EndReason:      model.EndReasonExpired,
				})
			}
			state.ClearActive()
		}
		return len(out) > 0, nil
	})
	if err != nil {
		return nil, err
	}

	for _, e := range out {
		uc.finalizeHistory(e.PlayerID, e.VipID, now)
		if e.Vip == nil {
			uc.log.Warn().
				Str("player", e.PlayerID).
				Str("vip", e.VipID).
				Msg("expired vip no longer in catalog; expiry commands skipped")
		}
	}
	return out, nil
}

// CountActive returns how many players currently hold an unexpired
// entitlement, for the active gauge.
func (uc *SweepUseCase) CountActive() (int, error) {
	now := uc.now()
	count := 0
	err := uc.players.View(func(m map[string]*model.PlayerVipState) error {
		for _, state := range m {
			if state != nil && state.HasActiveVip(now) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (uc *SweepUseCase) finalizeHistory(playerID, vipID string, endedAt int64) {
	err := uc.history.Mutate(func(m map[string][]model.VipHistoryEntry) (bool, error) {
		entries := m[playerID]
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].IsOpen() && entries[i].VipID == vipID {
				entries[i].EndedAt = endedAt
				entries[i].EndReason = model.EndReasonExpired
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("player", playerID).Msg("history finalize failed")
	}
}
