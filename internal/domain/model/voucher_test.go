package model

import "testing"

func TestCanonicalString(t *testing.T) {
	p := VoucherPayload{
		VoucherID:             "v-123",
		VipID:                 "gold",
		IssuedTo:              "Steve",
		IssuedAt:              1700000000,
		CustomDurationSeconds: 0,
	}
	want := "v-123|gold|Steve|1700000000|0"
	if got := p.CanonicalString(); got != want {
		t.Errorf("CanonicalString() = %q, want %q", got, want)
	}
}

func TestEffectiveDuration(t *testing.T) {
	p := VoucherPayload{}
	if got := p.EffectiveDuration(3600); got != 3600 {
		t.Errorf("default duration = %d, want 3600", got)
	}
	p.CustomDurationSeconds = 120
	if got := p.EffectiveDuration(3600); got != 120 {
		t.Errorf("custom duration = %d, want 120", got)
	}
}

func TestVoucherRecordIsUsed(t *testing.T) {
	r := &VoucherRecord{VipID: "gold", IssuedTo: "Steve"}
	if r.IsUsed() {
		t.Error("fresh record must be unused")
	}
	at := int64(1700000000)
	r.UsedAt = &at
	r.UsedBy = "Steve"
	if !r.IsUsed() {
		t.Error("record with UsedAt set must be used")
	}
}
