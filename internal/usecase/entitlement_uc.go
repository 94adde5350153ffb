package usecase

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/domain/ports/repository"
)

// EntitlementUseCase is the per-player VIP state machine: activation,
// stacking, admin grant/removal and read-only queries. Every mutation is a
// single Mutate on the players store, so concurrent callers are serialized.
type EntitlementUseCase struct {
	catalog *config.Catalog
	players repository.PlayerStateStore
	history repository.HistoryStore
	log     *zerolog.Logger

	now func() int64
}

func NewEntitlementUseCase(catalog *config.Catalog, players repository.PlayerStateStore, history repository.HistoryStore, logger *zerolog.Logger) *EntitlementUseCase {
	l := logger.With().Str("component", "EntitlementUseCase").Logger()
	return &EntitlementUseCase{
		catalog: catalog,
		players: players,
		history: history,
		log:     &l,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// Activate applies the state machine for one activation attempt. Custom
// duration 0 means the definition's base duration. Used by both voucher
// redemption and admin grants.
func (uc *EntitlementUseCase) Activate(vip *model.VipDefinition, playerID, playerName string, customDurationSeconds int64) (ActivationResult, error) {
	now := uc.now()
	duration := vip.DurationSeconds
	if customDurationSeconds > 0 {
		duration = customDurationSeconds
	}

	var res ActivationResult
	var staleVipID string
	var staleEndedAt int64
	err := uc.players.Mutate(func(m map[string]*model.PlayerVipState) (bool, error) {
		state := m[playerID]

		if state != nil && state.HasActiveVip(now) {
			// Same tier and stackable: extend instead of rejecting.
			if strings.EqualFold(state.ActiveVipID, vip.ID) && vip.Stackable {
				if vip.MaxStack > 0 && state.StackCount >= vip.MaxStack {
					res = blockedStackLimit(state.Clone(), vip.MaxStack)
					return false, nil
				}

				state.ExpiresAt += duration
				state.StackCount++
				// A stack extension re-arms every reminder window.
				state.RemindersSent = 0
				if name := strings.TrimSpace(playerName); name != "" {
					state.LastKnownName = name
				}
				state.ExtendOpenHistory(vip.ID, state.ExpiresAt)

				res = stackedResult(vip, state.Clone(), duration)
				return true, nil
			}

			res = blockedAlreadyActive(state.Clone())
			return false, nil
		}

		name := strings.TrimSpace(playerName)
		if name == "" {
			name = playerID
		}
		newState := &model.PlayerVipState{
			ActiveVipID:   vip.ID,
			ActivatedAt:   now,
			ExpiresAt:     now + duration,
			LastKnownName: name,
		}
		if state != nil {
			// An expired entitlement the sweep has not reached yet still has
			// an open history entry; it ended at its expiry, close it now.
			if state.ActiveVipID != "" {
				staleVipID = state.ActiveVipID
				staleEndedAt = state.ExpiresAt
				state.CloseOpenHistory(staleVipID, staleEndedAt, model.EndReasonExpired)
			}
			newState.History = state.History
		}
		newState.AppendHistory(model.VipHistoryEntry{
			VipID:          vip.ID,
			VipDisplayName: vip.DisplayName,
			ActivatedAt:    now,
			ExpiresAt:      now + duration,
		})
		m[playerID] = newState

		res = activatedResult(vip, newState.Clone())
		return true, nil
	})
	if err != nil {
		return ActivationResult{}, err
	}

	switch res.Outcome {
	case OutcomeActivated:
		// Close the superseded mirror entry before recording the new open
		// one, so the close lands on the old entry even for the same vip.
		if staleVipID != "" {
			uc.finalizeHistory(playerID, staleVipID, staleEndedAt, model.EndReasonExpired)
		}
		uc.recordActivation(playerID, vip, res.NewState)
	case OutcomeStacked:
		uc.extendHistory(playerID, vip.ID, res.NewState.ExpiresAt)
	}
	return res, nil
}

// AdminAdd grants a VIP directly, without a voucher. Same transition rules as
// voucher activation.
func (uc *EntitlementUseCase) AdminAdd(vipID, playerID, playerName string, customDurationSeconds int64) (ActivationResult, error) {
	vip, err := uc.catalog.Get(vipID)
	if err != nil {
		return ActivationResult{}, err
	}
	res, err := uc.Activate(vip, playerID, playerName, customDurationSeconds)
	if err != nil {
		return ActivationResult{}, err
	}
	uc.log.Info().
		Str("player", playerID).
		Str("vip", vipID).
		Stringer("outcome", res.Outcome).
		Msg("admin grant")
	return res, nil
}

// AdminRemove clears the player's active entitlement. A non-blank vipIDFilter
// that does not match the active vip (case-insensitive) refuses the removal.
// Returns false when nothing was removed.
func (uc *EntitlementUseCase) AdminRemove(vipIDFilter, playerID string) (bool, error) {
	now := uc.now()
	removed := false
	var removedVipID string

	err := uc.players.Mutate(func(m map[string]*model.PlayerVipState) (bool, error) {
		state := m[playerID]
		if state == nil || state.ActiveVipID == "" {
			return false, nil
		}
		if f := strings.TrimSpace(vipIDFilter); f != "" && !strings.EqualFold(state.ActiveVipID, f) {
			return false, nil
		}

		active := state.ActiveVipID
		displayName := active
		if def := uc.catalog.Lookup(active); def != nil && def.DisplayName != "" {
			displayName = def.DisplayName
		}

		if !state.CloseOpenHistory(active, now, model.EndReasonAdminRemove) {
			// Pre-dating state without an open entry: record the end anyway.
			state.AppendHistory(model.VipHistoryEntry{
				VipID:          active,
				VipDisplayName: displayName,
				ActivatedAt:    state.ActivatedAt,
				ExpiresAt:      state.ExpiresAt,
				EndedAt:        now,
				EndReason:      model.EndReasonAdminRemove,
			})
		}
		state.ClearActive()

		removed = true
		removedVipID = active
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		uc.finalizeHistory(playerID, removedVipID, now, model.EndReasonAdminRemove)
		uc.log.Info().Str("player", playerID).Str("vip", removedVipID).Msg("admin removal")
	}
	return removed, nil
}

// PeekActiveDefinition returns the definition of the player's active vip when
// it is still unexpired, matches the optional filter and still exists in the
// catalog. Callers that need the definition's expiry commands must call this
// before AdminRemove.
func (uc *EntitlementUseCase) PeekActiveDefinition(playerID, vipIDFilter string) (*model.VipDefinition, error) {
	now := uc.now()
	var def *model.VipDefinition
	err := uc.players.View(func(m map[string]*model.PlayerVipState) error {
		state := m[playerID]
		if state == nil || !state.HasActiveVip(now) {
			return nil
		}
		if f := strings.TrimSpace(vipIDFilter); f != "" && !strings.EqualFold(state.ActiveVipID, f) {
			return nil
		}
		def = uc.catalog.Lookup(state.ActiveVipID)
		return nil
	})
	return def, err
}

// PlayerState returns a copy of the player's record, or nil when unknown.
func (uc *EntitlementUseCase) PlayerState(playerID string) (*model.PlayerVipState, error) {
	var out *model.PlayerVipState
	err := uc.players.View(func(m map[string]*model.PlayerVipState) error {
		if state := m[playerID]; state != nil {
			out = state.Clone()
		}
		return nil
	})
	return out, err
}

// AllPlayers returns a copy of every player record, for listing.
func (uc *EntitlementUseCase) AllPlayers() (map[string]*model.PlayerVipState, error) {
	out := make(map[string]*model.PlayerVipState)
	err := uc.players.View(func(m map[string]*model.PlayerVipState) error {
		for id, state := range m {
			out[id] = state.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// History returns the player's entries from the history store.
func (uc *EntitlementUseCase) History(playerID string) ([]model.VipHistoryEntry, error) {
	var out []model.VipHistoryEntry
	err := uc.history.View(func(m map[string][]model.VipHistoryEntry) error {
		out = append(out, m[playerID]...)
		return nil
	})
	return out, err
}

// recordActivation mirrors a fresh activation into the history store.
func (uc *EntitlementUseCase) recordActivation(playerID string, vip *model.VipDefinition, state *model.PlayerVipState) {
	err := uc.history.Mutate(func(m map[string][]model.VipHistoryEntry) (bool, error) {
		m[playerID] = append(m[playerID], model.VipHistoryEntry{
			VipID:          vip.ID,
			VipDisplayName: vip.DisplayName,
			ActivatedAt:    state.ActivatedAt,
			ExpiresAt:      state.ExpiresAt,
		})
		return true, nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("player", playerID).Msg("history activation record failed")
	}
}

// extendHistory pushes a stacked expiry into the player's open history entry.
func (uc *EntitlementUseCase) extendHistory(playerID, vipID string, newExpiresAt int64) {
	err := uc.history.Mutate(func(m map[string][]model.VipHistoryEntry) (bool, error) {
		entries := m[playerID]
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].IsOpen() && strings.EqualFold(entries[i].VipID, vipID) {
				entries[i].ExpiresAt = newExpiresAt
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("player", playerID).Msg("history extension failed")
	}
}

// finalizeHistory closes the player's open entry in the history store.
func (uc *EntitlementUseCase) finalizeHistory(playerID, vipID string, endedAt int64, reason model.HistoryEndReason) {
	err := uc.history.Mutate(func(m map[string][]model.VipHistoryEntry) (bool, error) {
		entries := m[playerID]
		for i := len(entries) - 1; i >= 0; i-- {
			if entries[i].IsOpen() && strings.EqualFold(entries[i].VipID, vipID) {
				entries[i].EndedAt = endedAt
				entries[i].EndReason = reason
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		uc.log.Error().Err(err).Str("player", playerID).Msg("history finalize failed")
	}
}
