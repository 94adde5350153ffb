package usecase

import "game-vip-service/internal/domain/model"

// ActivationOutcome enumerates the state machine's possible results. Policy
// rejections are outcomes, not errors, so callers branch without error
// handling.
type ActivationOutcome int

const (
	OutcomeActivated ActivationOutcome = iota
	OutcomeStacked
	OutcomeBlockedAlreadyActive
	OutcomeBlockedStackLimit
)

func (o ActivationOutcome) String() string {
	switch o {
	case OutcomeActivated:
		return "activated"
	case OutcomeStacked:
		return "stacked"
	case OutcomeBlockedAlreadyActive:
		return "blockedAlreadyActive"
	case OutcomeBlockedStackLimit:
		return "blockedStackLimit"
	default:
		return "unknown"
	}
}

// ActivationResult is the outcome of one activation attempt. Vip and NewState
// are set on the applied outcomes; Previous carries the untouched state on
// the blocked ones.
type ActivationResult struct {
	Outcome ActivationOutcome

	Vip      *model.VipDefinition
	NewState *model.PlayerVipState
	Previous *model.PlayerVipState

	// AddedDurationSeconds is the extension applied by a stack.
	AddedDurationSeconds int64
	// MaxStack is the limit that blocked a stack attempt.
	MaxStack int
}

// Applied reports whether the attempt changed player state.
func (r ActivationResult) Applied() bool {
	return r.Outcome == OutcomeActivated || r.Outcome == OutcomeStacked
}

func activatedResult(vip *model.VipDefinition, newState *model.PlayerVipState) ActivationResult {
	return ActivationResult{Outcome: OutcomeActivated, Vip: vip, NewState: newState}
}

func stackedResult(vip *model.VipDefinition, newState *model.PlayerVipState, added int64) ActivationResult {
	return ActivationResult{Outcome: OutcomeStacked, Vip: vip, NewState: newState, AddedDurationSeconds: added}
}

func blockedAlreadyActive(current *model.PlayerVipState) ActivationResult {
	return ActivationResult{Outcome: OutcomeBlockedAlreadyActive, Previous: current}
}

func blockedStackLimit(current *model.PlayerVipState, maxStack int) ActivationResult {
	return ActivationResult{Outcome: OutcomeBlockedStackLimit, Previous: current, MaxStack: maxStack}
}

// ValidationStatus enumerates voucher validation outcomes.
type ValidationStatus int

const (
	VoucherValid ValidationStatus = iota
	VoucherInvalidSignature
	VoucherNotBound
	VoucherUnknown
	VoucherAlreadyUsed
)

// ErrorKey is the stable rejection key surfaced to the message-rendering
// collaborator.
func (s ValidationStatus) ErrorKey() string {
	switch s {
	case VoucherValid:
		return "valid"
	case VoucherInvalidSignature:
		return "invalidSignature"
	case VoucherNotBound:
		return "notYourVoucher"
	case VoucherUnknown:
		return "invalidVoucher"
	case VoucherAlreadyUsed:
		return "alreadyUsedVoucher"
	default:
		return "unknown"
	}
}

func (s ValidationStatus) String() string { return s.ErrorKey() }

// IssuedVoucher pairs a payload with its signature for delivery.
type IssuedVoucher struct {
	Payload   model.VoucherPayload `json:"payload"`
	Signature string               `json:"signature"`
	Vip       *model.VipDefinition `json:"-"`
}

// RedeemResult is the outcome of a full voucher redemption. Activation is nil
// unless Status is VoucherValid.
type RedeemResult struct {
	Status     ValidationStatus
	Activation *ActivationResult
}

// Reminder is emitted when a player enters a not-yet-notified expiry window.
// Vip is nil when the definition no longer exists in the catalog.
type Reminder struct {
	PlayerID         string
	VipID            string
	ExpiresAt        int64
	RemainingSeconds int64
	WindowSeconds    int64
	Vip              *model.VipDefinition
}

// ExpiredVip is emitted for every entitlement the sweep expired. Vip is nil
// when the definition was removed from the catalog; the caller then cannot
// run vip-specific expiry commands.
type ExpiredVip struct {
	PlayerID      string
	VipID         string
	ActivatedAt   int64
	ExpiresAt     int64
	LastKnownName string
	Vip           *model.VipDefinition
}
