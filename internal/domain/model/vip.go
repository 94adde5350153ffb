package model

import (
	"fmt"
	"strings"
)

// VoucherSpec describes how a voucher for a VIP tier is rendered as an
// in-game item. The core never builds items itself; it only carries this
// metadata for the delivery collaborator.
type VoucherSpec struct {
	ItemID string   `yaml:"item_id" json:"itemId"`
	Name   string   `yaml:"name" json:"name"`
	Lore   []string `yaml:"lore" json:"lore"`
}

// VipDefinition is one tier of the VIP catalog. Loaded once from
// configuration and read-only at runtime.
type VipDefinition struct {
	ID              string      `yaml:"-" json:"id"`
	DisplayName     string      `yaml:"display_name" json:"displayName"`
	DurationSeconds int64       `yaml:"duration_seconds" json:"durationSeconds"`
	Stackable       bool        `yaml:"stackable" json:"stackable"`
	MaxStack        int         `yaml:"max_stack" json:"maxStack"` // 0 = unlimited
	Voucher         VoucherSpec `yaml:"voucher" json:"voucher"`

	CommandsOnActivate []string `yaml:"commands_on_activate" json:"commandsOnActivate"`
	CommandsOnExpire   []string `yaml:"commands_on_expire" json:"commandsOnExpire"`
}

// Validate normalizes optional fields and rejects unusable definitions.
func (v *VipDefinition) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("vip definition has no id")
	}
	if v.DisplayName == "" {
		v.DisplayName = v.ID
	}
	if v.DurationSeconds <= 0 {
		return fmt.Errorf("vip %q: duration_seconds must be > 0", v.ID)
	}
	if v.MaxStack < 0 {
		return fmt.Errorf("vip %q: max_stack must be >= 0", v.ID)
	}
	if v.Voucher.Name == "" {
		v.Voucher.Name = "[" + strings.ToUpper(v.ID) + "] Voucher #{voucherIdShort}"
	}
	return nil
}
