package services

import (
	"reflect"
	"testing"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/rules"
)

func newTestEnhancer(t *testing.T) *Enhancer {
	t.Helper()
	table, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default(): %v", err)
	}
	return NewEnhancer(table, newTestLogger())
}

func TestEnhanceDerivesLabels(t *testing.T) {
	e := newTestEnhancer(t)

	tests := []struct {
		category    models.Category
		name        string
		skinTypes   []string
		concerns    []string
		ingredients []string
	}{
		{
			models.CategoryCleanser, "Salicylic Acid Acne Foam",
			[]string{"Oily"}, []string{"Acne"}, []string{"Salicylic Acid"},
		},
		{
			models.CategoryCleanser, "Gentle Milk Cleanser",
			[]string{"Normal", "Combination"}, nil, nil,
		},
		{
			models.CategoryTreatment, "Niacinamide 10% Serum",
			[]string{models.AllSkinTypes}, nil, []string{"Niacinamide"},
		},
		{
			models.CategoryMoisturizer, "Ceramide Barrier Repair Cream for Dry Skin",
			[]string{"Dry"}, []string{"Damaged Skin Barrier"}, []string{"Ceramide"},
		},
		{
			models.CategorySunscreen, "Mineral Sunscreen SPF 50 with Zinc",
			[]string{"Sensitive"}, nil, []string{"Zinc Oxide", "Physical Filters"},
		},
		{
			models.CategoryMask, "Green Tea Clay Mask",
			[]string{"Oily"}, nil, []string{"Clay"},
		},
	}

	for _, tt := range tests {
		got := e.Enhance(models.Product{Category: tt.category, ProductName: tt.name})
		if !reflect.DeepEqual(got.SuitableSkinTypes, tt.skinTypes) {
			t.Errorf("Enhance(%q).SuitableSkinTypes = %v; want %v", tt.name, got.SuitableSkinTypes, tt.skinTypes)
		}
		if !reflect.DeepEqual(got.TargetsSkinConcerns, tt.concerns) {
			t.Errorf("Enhance(%q).TargetsSkinConcerns = %v; want %v", tt.name, got.TargetsSkinConcerns, tt.concerns)
		}
		if !reflect.DeepEqual(got.KeyIngredients, tt.ingredients) {
			t.Errorf("Enhance(%q).KeyIngredients = %v; want %v", tt.name, got.KeyIngredients, tt.ingredients)
		}
	}
}

func TestEnhanceIsIdempotent(t *testing.T) {
	e := newTestEnhancer(t)
	products := []models.Product{
		{Category: models.CategoryCleanser, Brand: "A", ProductName: "BHA Pore Scrub"},
		{Category: models.CategoryTreatment, Brand: "B", ProductName: "Retinol Dark Spot Serum"},
		{Category: models.CategoryMask, Brand: "C", ProductName: "Sheet Mask"},
		{Category: "Unknown", Brand: "D", ProductName: "Mystery"},
	}
	for _, p := range products {
		once := e.Enhance(p)
		twice := e.Enhance(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Enhance not idempotent for %q: %+v vs %+v", p.ProductName, once, twice)
		}
	}
}

func TestEnhanceNeverLeavesSkinTypesEmpty(t *testing.T) {
	e := newTestEnhancer(t)
	got := e.Enhance(models.Product{Category: "Toner", ProductName: "Rose Water"})
	if !reflect.DeepEqual(got.SuitableSkinTypes, []string{models.AllSkinTypes}) {
		t.Errorf("unknown category skin types = %v; want [%s]", got.SuitableSkinTypes, models.AllSkinTypes)
	}
}

func TestEnhanceDoesNotMutateInput(t *testing.T) {
	e := newTestEnhancer(t)
	in := models.Product{Category: models.CategoryCleanser, ProductName: "Oily Skin Wash", SuitableSkinTypes: []string{"stale"}}
	_ = e.Enhance(in)
	if in.SuitableSkinTypes[0] != "stale" {
		t.Errorf("input mutated: %v", in.SuitableSkinTypes)
	}
}

func TestEnhanceAll(t *testing.T) {
	e := newTestEnhancer(t)
	in := []models.Product{
		{Category: models.CategoryCleanser, ProductName: "Tea Tree Wash"},
		{Category: models.CategoryMask, ProductName: "Charcoal Mask"},
	}
	out := e.EnhanceAll(in)
	if len(out) != 2 {
		t.Fatalf("EnhanceAll returned %d; want 2", len(out))
	}
	if !models.HasLabel(out[0].KeyIngredients, "Tea Tree") || !models.HasLabel(out[1].KeyIngredients, "Charcoal") {
		t.Errorf("ingredients not derived: %v / %v", out[0].KeyIngredients, out[1].KeyIngredients)
	}
	if in[0].KeyIngredients != nil {
		t.Error("EnhanceAll mutated its input")
	}
}
