package main

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/config"
)

func TestCLIPreferences(t *testing.T) {
	o := cliOptions{skinType: " Oily ", concerns: "Acne, Large Pores", avoid: "Alcohol", prefer: ""}
	p := o.preferences()
	if p.SkinType != "Oily" {
		t.Errorf("SkinType = %q; want Oily", p.SkinType)
	}
	if !reflect.DeepEqual(p.SkinConcerns, []string{"Acne", "Large Pores"}) {
		t.Errorf("SkinConcerns = %v", p.SkinConcerns)
	}
	if p.PreferredIngredients != nil {
		t.Errorf("PreferredIngredients = %v; want nil", p.PreferredIngredients)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestWantsListing(t *testing.T) {
	tests := []struct {
		opts cliOptions
		want bool
	}{
		{cliOptions{}, false},
		{cliOptions{product: "Foam"}, false},
		{cliOptions{category: "Cleanser"}, true},
		{cliOptions{maxPrice: 50000}, true},
		{cliOptions{filterPrefs: true}, true},
	}
	for _, tt := range tests {
		if got := tt.opts.wantsListing(); got != tt.want {
			t.Errorf("wantsListing(%+v) = %v; want %v", tt.opts, got, tt.want)
		}
	}
}

func TestOpenStoreNone(t *testing.T) {
	store, err := openStore(&config.Config{StoreDriver: config.StoreNone})
	if !errors.Is(err, errNoStore) || store != nil {
		t.Errorf("openStore(none) = %v, %v; want nil, errNoStore", store, err)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "catalog.db")}
	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("openStore(sqlite) error: %v", err)
	}
	defer store.Close()
	if store == nil {
		t.Error("openStore(sqlite) returned a nil store")
	}
}
