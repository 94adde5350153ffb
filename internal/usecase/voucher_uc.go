package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/domain/ports/repository"
)

// Signer signs voucher payloads. Satisfied by security.VoucherSigner.
type Signer interface {
	Sign(payload model.VoucherPayload) string
	Verify(payload model.VoucherPayload, signature string) bool
}

// VoucherUseCase issues, validates and redeems signed single-use vouchers.
type VoucherUseCase struct {
	catalog      *config.Catalog
	vouchers     repository.VoucherStore
	signer       Signer
	entitlements *EntitlementUseCase
	log          *zerolog.Logger

	now func() int64
}

func NewVoucherUseCase(catalog *config.Catalog, vouchers repository.VoucherStore, signer Signer, entitlements *EntitlementUseCase, logger *zerolog.Logger) *VoucherUseCase {
	l := logger.With().Str("component", "VoucherUseCase").Logger()
	return &VoucherUseCase{
		catalog:      catalog,
		vouchers:     vouchers,
		signer:       signer,
		entitlements: entitlements,
		log:          &l,
		now:          func() int64 { return time.Now().Unix() },
	}
}

// Issue creates a signed voucher bound to a player and persists its unused
// record. customDurationSeconds 0 means the definition's base duration.
func (uc *VoucherUseCase) Issue(vipID, issuedTo string, customDurationSeconds int64) (IssuedVoucher, error) {
	vip, err := uc.catalog.Get(vipID)
	if err != nil {
		return IssuedVoucher{}, err
	}

	payload := model.VoucherPayload{
		VoucherID:             uuid.NewString(),
		VipID:                 vipID,
		IssuedTo:              issuedTo,
		IssuedAt:              uc.now(),
		CustomDurationSeconds: customDurationSeconds,
	}
	signature := uc.signer.Sign(payload)

	err = uc.vouchers.Mutate(func(m map[string]*model.VoucherRecord) (bool, error) {
		m[payload.VoucherID] = &model.VoucherRecord{
			VipID:    vipID,
			IssuedTo: issuedTo,
			IssuedAt: payload.IssuedAt,
		}
		return true, nil
	})
	if err != nil {
		return IssuedVoucher{}, err
	}

	uc.log.Info().
		Str("voucher", payload.VoucherID).
		Str("vip", vipID).
		Str("issued_to", issuedTo).
		Msg("voucher issued")
	return IssuedVoucher{Payload: payload, Signature: signature, Vip: vip}, nil
}

// Validate checks signature, binding and single-use status without mutating
// anything.
func (uc *VoucherUseCase) Validate(payload model.VoucherPayload, signature, activatingPlayer string) (ValidationStatus, error) {
	if !uc.signer.Verify(payload, signature) {
		return VoucherInvalidSignature, nil
	}
	if payload.IssuedTo != activatingPlayer {
		return VoucherNotBound, nil
	}

	status := VoucherValid
	err := uc.vouchers.View(func(m map[string]*model.VoucherRecord) error {
		record, ok := m[payload.VoucherID]
		switch {
		case !ok:
			status = VoucherUnknown
		case record.IsUsed():
			status = VoucherAlreadyUsed
		}
		return nil
	})
	if err != nil {
		return VoucherUnknown, err
	}
	return status, nil
}

// Redeem validates the voucher, runs the activation state machine and marks
// the voucher used, all while holding the vouchers store mutex so two racing
// redemptions of the same voucher cannot both consume it. The voucher is only
// consumed when the activation actually applied; a blocked activation leaves
// it redeemable.
func (uc *VoucherUseCase) Redeem(payload model.VoucherPayload, signature, playerID, playerName string) (RedeemResult, error) {
	if !uc.signer.Verify(payload, signature) {
		return RedeemResult{Status: VoucherInvalidSignature}, nil
	}
	if payload.IssuedTo != playerID {
		return RedeemResult{Status: VoucherNotBound}, nil
	}

	var res RedeemResult
	err := uc.vouchers.Mutate(func(m map[string]*model.VoucherRecord) (bool, error) {
		record, ok := m[payload.VoucherID]
		if !ok {
			res.Status = VoucherUnknown
			return false, nil
		}
		if record.IsUsed() {
			res.Status = VoucherAlreadyUsed
			return false, nil
		}

		vip, err := uc.catalog.Get(payload.VipID)
		if err != nil {
			return false, fmt.Errorf("redeem voucher %s: %w", payload.VoucherID, err)
		}

		activation, err := uc.entitlements.Activate(vip, playerID, playerName, payload.CustomDurationSeconds)
		if err != nil {
			return false, err
		}
		res.Status = VoucherValid
		res.Activation = &activation
		if !activation.Applied() {
			return false, nil
		}

		usedAt := uc.now()
		record.UsedAt = &usedAt
		record.UsedBy = playerID
		return true, nil
	})
	if err != nil {
		return RedeemResult{}, err
	}

	if res.Status == VoucherValid && res.Activation.Applied() {
		uc.log.Info().
			Str("voucher", payload.VoucherID).
			Str("player", playerID).
			Stringer("outcome", res.Activation.Outcome).
			Msg("voucher redeemed")
	}
	return res, nil
}

// MarkUsed consumes a voucher outside the Redeem flow. Callers must invoke it
// exactly once per successful activation; a second call overwrites UsedBy.
func (uc *VoucherUseCase) MarkUsed(voucherID, usedBy string) error {
	return uc.vouchers.Mutate(func(m map[string]*model.VoucherRecord) (bool, error) {
		record, ok := m[voucherID]
		if !ok {
			return false, fmt.Errorf("%w: %s", domain.ErrVoucherNotFound, voucherID)
		}
		usedAt := uc.now()
		record.UsedAt = &usedAt
		record.UsedBy = usedBy
		return true, nil
	})
}

// Get returns a copy of the voucher record, or ErrVoucherNotFound.
func (uc *VoucherUseCase) Get(voucherID string) (*model.VoucherRecord, error) {
	var out *model.VoucherRecord
	err := uc.vouchers.View(func(m map[string]*model.VoucherRecord) error {
		record, ok := m[voucherID]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrVoucherNotFound, voucherID)
		}
		cp := *record
		out = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
