package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"Cleanser", CategoryCleanser, true},
		{"cleanser", CategoryCleanser, true},
		{"Pelembab", CategoryMoisturizer, true},
		{"skincare_suncare.csv", CategorySunscreen, true},
		{" treatment ", CategoryTreatment, true},
		{"Toner", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseCategory(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseCategory(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCategoriesCoverFiveFixedKeys(t *testing.T) {
	if len(Categories) != 5 {
		t.Fatalf("got %d categories, want 5", len(Categories))
	}
	seen := map[string]bool{}
	for _, info := range Categories {
		if !info.Category.Valid() {
			t.Errorf("%q should be valid", info.Category)
		}
		if seen[info.File] {
			t.Errorf("duplicate file %q", info.File)
		}
		seen[info.File] = true
	}
}

func TestProductCloneDoesNotAlias(t *testing.T) {
	p := Product{SuitableSkinTypes: []string{"Oily"}, KeyIngredients: []string{"Clay"}}
	c := p.Clone()
	c.SuitableSkinTypes[0] = "Dry"
	c.KeyIngredients = append(c.KeyIngredients, "Mud")

	if p.SuitableSkinTypes[0] != "Oily" {
		t.Errorf("original mutated through clone: %v", p.SuitableSkinTypes)
	}
	if len(p.KeyIngredients) != 1 {
		t.Errorf("original ingredients changed: %v", p.KeyIngredients)
	}
	if c.TargetsSkinConcerns != nil {
		t.Errorf("nil concerns should stay nil, got %v", c.TargetsSkinConcerns)
	}
}

func TestSplitLabels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"  ", nil},
		{"Oily", []string{"Oily"}},
		{"Normal, Combination", []string{"Normal", "Combination"}},
		{"Acne,, Dullness ,", []string{"Acne", "Dullness"}},
	}
	for _, tt := range tests {
		if got := SplitLabels(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLabels(%q) = %#v; want %#v", tt.in, got, tt.want)
		}
	}
}

func TestLabelJoins(t *testing.T) {
	p := Product{SuitableSkinTypes: []string{"Normal", "Combination"}}
	if got := p.SkinTypesLabel(); got != "Normal, Combination" {
		t.Errorf("SkinTypesLabel() = %q", got)
	}
	if got := p.ConcernsLabel(); got != "" {
		t.Errorf("ConcernsLabel() = %q; want empty", got)
	}
}

func TestPreferencesValidate(t *testing.T) {
	valid := Preferences{
		SkinType:             "Oily",
		SkinConcerns:         []string{"Acne", "Large Pores"},
		AvoidIngredients:     []string{"Alcohol"},
		PreferredIngredients: []string{"Niacinamide", "AHA/BHA"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid preferences rejected: %v", err)
	}
	if err := (Preferences{}).Validate(); err != nil {
		t.Errorf("empty preferences rejected: %v", err)
	}

	bad := []Preferences{
		{SkinType: "Scaly"},
		{SkinConcerns: []string{"Acne", "Freckles"}},
		{AvoidIngredients: []string{"Water"}},
		{PreferredIngredients: []string{"Snail Mucin"}},
	}
	for _, p := range bad {
		err := p.Validate()
		if !errors.Is(err, ErrInvalidPreferences) {
			t.Errorf("Validate(%+v) = %v; want ErrInvalidPreferences", p, err)
		}
	}
}

func TestPreferencesSummary(t *testing.T) {
	tests := []struct {
		p    Preferences
		want string
	}{
		{Preferences{}, "No preferences set"},
		{Preferences{SkinType: "Dry"}, "Skin: Dry"},
		{
			Preferences{SkinType: "Oily", SkinConcerns: []string{"Acne", "Redness"}, PreferredIngredients: []string{"Retinol"}},
			"Skin: Oily | Concerns: 2 items | Preferred: 1 items",
		},
	}
	for _, tt := range tests {
		if got := tt.p.Summary(); got != tt.want {
			t.Errorf("Summary(%+v) = %q; want %q", tt.p, got, tt.want)
		}
	}
}

func TestPreferencesIsEmpty(t *testing.T) {
	if !(Preferences{SkinType: "  "}).IsEmpty() {
		t.Error("whitespace skin type should count as empty")
	}
	if (Preferences{AvoidIngredients: []string{"Alcohol"}}).IsEmpty() {
		t.Error("avoid list should make preferences non-empty")
	}
}

func TestMethodValid(t *testing.T) {
	for _, m := range []Method{MethodHybrid, MethodSimilarity, MethodContentBased} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if Method("random").Valid() {
		t.Error("unknown method reported valid")
	}
}
