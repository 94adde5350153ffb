package model

import "strings"

// Reminder window bits persisted in PlayerVipState.RemindersSent. Three fixed
// windows; one bit per window so a sweep fires each reminder at most once.
const (
	Reminder7d = 1
	Reminder1d = 2
	Reminder1h = 4
)

// HistoryEndReason tells why an entitlement ended.
type HistoryEndReason string

const (
	EndReasonNone        HistoryEndReason = ""
	EndReasonExpired     HistoryEndReason = "expired"
	EndReasonAdminRemove HistoryEndReason = "admin_remove"
)

// VipHistoryEntry is one activation of a VIP tier for a player. Created open
// (EndedAt == 0) at activation and closed exactly once when the entitlement
// ends.
type VipHistoryEntry struct {
	VipID          string           `json:"vipId"`
	VipDisplayName string           `json:"vipDisplayName"`
	ActivatedAt    int64            `json:"activatedAt"`
	ExpiresAt      int64            `json:"expiresAt"`
	EndedAt        int64            `json:"endedAt"`
	EndReason      HistoryEndReason `json:"endReason,omitempty"`
}

// IsOpen reports whether the entry still describes a running entitlement.
func (e *VipHistoryEntry) IsOpen() bool { return e.EndedAt == 0 }

// PlayerVipState is the persisted per-player record. A player record is never
// deleted; ending an entitlement only clears the active fields while History
// keeps growing.
//
// Invariant: ActiveVipID != "" iff ExpiresAt > 0.
type PlayerVipState struct {
	ActiveVipID   string `json:"activeVipId,omitempty"`
	ActivatedAt   int64  `json:"activatedAt"`
	ExpiresAt     int64  `json:"expiresAt"`
	LastKnownName string `json:"lastKnownName"`

	// RemindersSent is a bitmask of reminder windows already notified
	// (Reminder7d | Reminder1d | Reminder1h).
	RemindersSent int `json:"remindersSent"`

	// StackCount is how many times the active entitlement was extended via
	// stacking (0 = initial activation).
	StackCount int `json:"stackCount"`

	History []VipHistoryEntry `json:"history"`
}

// HasActiveVip reports whether the player holds a not-yet-expired entitlement.
func (s *PlayerVipState) HasActiveVip(now int64) bool {
	return s.ActiveVipID != "" && s.ExpiresAt > now
}

// ClearActive resets the active entitlement fields, preserving History.
func (s *PlayerVipState) ClearActive() {
	s.ActiveVipID = ""
	s.ActivatedAt = 0
	s.ExpiresAt = 0
	s.RemindersSent = 0
}

// AppendHistory adds an entry to the player's history.
func (s *PlayerVipState) AppendHistory(entry VipHistoryEntry) {
	s.History = append(s.History, entry)
}

// CloseOpenHistory closes the most recent open entry matching vipID
// (case-insensitive). Closing is idempotent: an already-closed history is
// left untouched.
func (s *PlayerVipState) CloseOpenHistory(vipID string, endedAt int64, reason HistoryEndReason) bool {
	for i := len(s.History) - 1; i >= 0; i-- {
		e := &s.History[i]
		if e.IsOpen() && strings.EqualFold(e.VipID, vipID) {
			e.EndedAt = endedAt
			e.EndReason = reason
			return true
		}
	}
	return false
}

// ExtendOpenHistory updates the expiry recorded on the most recent open entry
// matching vipID, so a stacked extension is reflected in history.
func (s *PlayerVipState) ExtendOpenHistory(vipID string, newExpiresAt int64) bool {
	for i := len(s.History) - 1; i >= 0; i-- {
		e := &s.History[i]
		if e.IsOpen() && strings.EqualFold(e.VipID, vipID) {
			e.ExpiresAt = newExpiresAt
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never mutate a cached map value in place.
func (s *PlayerVipState) Clone() *PlayerVipState {
	cp := *s
	cp.History = make([]VipHistoryEntry, len(s.History))
	copy(cp.History, s.History)
	return &cp
}

// ReminderWindow resolves which reminder window applies for the remaining
// lifetime, returning the bitmask bit and the window length in seconds.
// A zero bit means no window applies yet.
func ReminderWindow(remainingSeconds int64) (bit int, windowSeconds int64) {
	const (
		t7d = 7 * 24 * 60 * 60
		t1d = 24 * 60 * 60
		t1h = 60 * 60
	)
	switch {
	case remainingSeconds <= t1h:
		return Reminder1h, t1h
	case remainingSeconds <= t1d:
		return Reminder1d, t1d
	case remainingSeconds <= t7d:
		return Reminder7d, t7d
	default:
		return 0, 0
	}
}
