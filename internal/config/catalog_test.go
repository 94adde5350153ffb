package config

import (
	"errors"
	"testing"

	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
)

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, "vips.yaml", `
version: 1
defaults:
  voucher_item_id: Special_Voucher
vips:
  gold:
    display_name: Gold
    duration_seconds: 2592000
    stackable: true
    max_stack: 3
    commands_on_activate:
      - "lp user {player} parent add gold"
    commands_on_expire:
      - "lp user {player} parent remove gold"
  silver:
    duration_seconds: 86400
    voucher:
      item_id: Silver_Voucher
      name: "Silver Pass"
      lore:
        - "Right-click to redeem"
`)
	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	gold, err := catalog.Get("gold")
	if err != nil {
		t.Fatal(err)
	}
	if gold.ID != "gold" || gold.DisplayName != "Gold" || !gold.Stackable || gold.MaxStack != 3 {
		t.Errorf("gold: %+v", gold)
	}
	if gold.Voucher.ItemID != "Special_Voucher" {
		t.Errorf("gold voucher item = %q, want catalog default", gold.Voucher.ItemID)
	}
	if len(gold.CommandsOnActivate) != 1 || len(gold.CommandsOnExpire) != 1 {
		t.Errorf("gold commands: %+v", gold)
	}

	silver, err := catalog.Get("silver")
	if err != nil {
		t.Fatal(err)
	}
	if silver.DisplayName != "silver" {
		t.Errorf("DisplayName = %q, want id fallback", silver.DisplayName)
	}
	if silver.Voucher.ItemID != "Silver_Voucher" || silver.Voucher.Name != "Silver Pass" {
		t.Errorf("silver voucher: %+v", silver.Voucher)
	}
}

func TestCatalogGetUnknown(t *testing.T) {
	catalog, err := NewCatalog(map[string]*model.VipDefinition{
		"gold": {DurationSeconds: 60},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Get("copper"); !errors.Is(err, domain.ErrVipNotFound) {
		t.Errorf("err = %v, want ErrVipNotFound", err)
	}
	if catalog.Lookup("copper") != nil {
		t.Error("Lookup returned a definition for unknown id")
	}
}

func TestCatalogAllSorted(t *testing.T) {
	catalog, err := NewCatalog(map[string]*model.VipDefinition{
		"silver":  {DurationSeconds: 60},
		"gold":    {DurationSeconds: 60},
		"diamond": {DurationSeconds: 60},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	all := catalog.All()
	want := []string{"diamond", "gold", "silver"}
	if len(all) != len(want) {
		t.Fatalf("All() = %v", all)
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("All()[%d].ID = %q, want %q", i, all[i].ID, id)
		}
	}
}

func TestNewCatalogValidation(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		if _, err := NewCatalog(nil, ""); err == nil {
			t.Error("expected error for empty catalog")
		}
	})
	t.Run("zero duration", func(t *testing.T) {
		_, err := NewCatalog(map[string]*model.VipDefinition{"gold": {}}, "")
		if err == nil {
			t.Error("expected error for zero duration")
		}
	})
	t.Run("negative max stack", func(t *testing.T) {
		_, err := NewCatalog(map[string]*model.VipDefinition{
			"gold": {DurationSeconds: 60, MaxStack: -1},
		}, "")
		if err == nil {
			t.Error("expected error for negative max_stack")
		}
	})
	t.Run("default voucher item id", func(t *testing.T) {
		catalog, err := NewCatalog(map[string]*model.VipDefinition{
			"gold": {DurationSeconds: 60},
		}, "")
		if err != nil {
			t.Fatal(err)
		}
		gold, _ := catalog.Get("gold")
		if gold.Voucher.ItemID != "Vip_Voucher" {
			t.Errorf("ItemID = %q", gold.Voucher.ItemID)
		}
	})
}
