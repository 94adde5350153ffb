package model

import (
	"fmt"
)

// VoucherPayload is the signed content of a voucher. Its canonical string is
// a wire format: reordering fields or changing the delimiter invalidates
// every voucher issued before the change.
type VoucherPayload struct {
	VoucherID             string `json:"voucherId"`
	VipID                 string `json:"vipId"`
	IssuedTo              string `json:"issuedTo"`
	IssuedAt              int64  `json:"issuedAt"`
	CustomDurationSeconds int64  `json:"customDurationSeconds"`
}

// CanonicalString is the exact signing input:
// voucherId|vipId|issuedTo|issuedAt|customDurationSeconds.
func (p VoucherPayload) CanonicalString() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d",
		p.VoucherID, p.VipID, p.IssuedTo, p.IssuedAt, p.CustomDurationSeconds)
}

// EffectiveDuration returns the custom duration when set, else the default.
func (p VoucherPayload) EffectiveDuration(defaultSeconds int64) int64 {
	if p.CustomDurationSeconds > 0 {
		return p.CustomDurationSeconds
	}
	return defaultSeconds
}

// VoucherRecord is the persisted issuance record, keyed by voucher id.
// Created unused; marked used exactly once on successful activation. Never
// deleted.
type VoucherRecord struct {
	VipID    string `json:"vipId"`
	IssuedTo string `json:"issuedTo"`
	IssuedAt int64  `json:"issuedAt"`

	UsedAt *int64 `json:"usedAt,omitempty"`
	UsedBy string `json:"usedBy,omitempty"`
}

// IsUsed reports whether the voucher was already redeemed.
func (r *VoucherRecord) IsUsed() bool {
	return r.UsedAt != nil && *r.UsedAt > 0
}
