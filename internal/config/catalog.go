package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
)

type catalogFile struct {
	Version  int                             `yaml:"version"`
	Defaults catalogDefaults                 `yaml:"defaults"`
	Vips     map[string]*model.VipDefinition `yaml:"vips"`
}

type catalogDefaults struct {
	VoucherItemID string `yaml:"voucher_item_id"`
}

// Catalog is the immutable set of VIP definitions keyed by id. The core never
// mutates it after load.
type Catalog struct {
	vips map[string]*model.VipDefinition
}

// LoadCatalog reads the VIP catalog file and validates every definition.
func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(file.Vips, file.Defaults.VoucherItemID)
}

// NewCatalog builds a catalog from in-memory definitions. The map key becomes
// the definition id.
func NewCatalog(vips map[string]*model.VipDefinition, defaultVoucherItemID string) (*Catalog, error) {
	if len(vips) == 0 {
		return nil, fmt.Errorf("catalog: vips section must not be empty")
	}
	if defaultVoucherItemID == "" {
		defaultVoucherItemID = "Vip_Voucher"
	}
	out := make(map[string]*model.VipDefinition, len(vips))
	for id, def := range vips {
		if def == nil {
			return nil, fmt.Errorf("catalog: vip %q is empty", id)
		}
		def.ID = id
		if def.Voucher.ItemID == "" {
			def.Voucher.ItemID = defaultVoucherItemID
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		out[id] = def
	}
	return &Catalog{vips: out}, nil
}

// Get returns the definition or ErrVipNotFound.
func (c *Catalog) Get(vipID string) (*model.VipDefinition, error) {
	def, ok := c.vips[vipID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVipNotFound, vipID)
	}
	return def, nil
}

// Lookup returns the definition or nil. Used on paths that must tolerate a
// vip deleted from the catalog while a player still holds it.
func (c *Catalog) Lookup(vipID string) *model.VipDefinition {
	return c.vips[vipID]
}

// All returns the definitions sorted by id.
func (c *Catalog) All() []*model.VipDefinition {
	out := make([]*model.VipDefinition, 0, len(c.vips))
	for _, def := range c.vips {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
