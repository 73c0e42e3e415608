package models

import (
	"errors"
	"fmt"
	"strings"
)

// AllSkinTypes is the fallback skin-type label; a product carrying it matches any skin type filter.
const AllSkinTypes = "All skin types"

var (
	SkinTypes = []string{"Normal", "Dry", "Oily", "Combination", "Sensitive"}

	SkinConcerns = []string{
		"Acne",
		"Premature Aging",
		"Hyperpigmentation",
		"Dullness",
		"Large Pores",
		"Redness",
		"Uneven Texture",
		"Damaged Skin Barrier",
	}

	AvoidableIngredients = []string{"Alcohol", "Fragrance", "Paraben", "Sulfate", "Essential Oils"}

	PreferableIngredients = []string{
		"Hyaluronic Acid",
		"Niacinamide",
		"Vitamin C",
		"Retinol",
		"Salicylic Acid",
		"Centella Asiatica",
		"Peptides",
		"Ceramide",
		"Tea Tree",
		"AHA/BHA",
	}
)

var ErrInvalidPreferences = errors.New("invalid preferences")

// Preferences is the per-request user profile. The zero value is a no-op for
// both filtering and ranking.
type Preferences struct {
	SkinType             string   `json:"skin_type,omitempty" validate:"omitempty,skin_type"`
	SkinConcerns         []string `json:"skin_concerns,omitempty" validate:"omitempty,dive,skin_concern"`
	AvoidIngredients     []string `json:"avoid_ingredients,omitempty" validate:"omitempty,dive,avoid_ingredient"`
	PreferredIngredients []string `json:"preferred_ingredients,omitempty" validate:"omitempty,dive,preferred_ingredient"`
}

func (p Preferences) IsEmpty() bool {
	return strings.TrimSpace(p.SkinType) == "" &&
		len(p.SkinConcerns) == 0 &&
		len(p.AvoidIngredients) == 0 &&
		len(p.PreferredIngredients) == 0
}

// Validate checks every value against the fixed enums.
func (p Preferences) Validate() error {
	if err := Validate(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	return nil
}

// Summary renders a one-line description, e.g. "Skin: Oily | Concerns: 2 items".
func (p Preferences) Summary() string {
	if p.IsEmpty() {
		return "No preferences set"
	}
	var parts []string
	if p.SkinType != "" {
		parts = append(parts, "Skin: "+p.SkinType)
	}
	if n := len(p.SkinConcerns); n > 0 {
		parts = append(parts, fmt.Sprintf("Concerns: %d items", n))
	}
	if n := len(p.AvoidIngredients); n > 0 {
		parts = append(parts, fmt.Sprintf("Avoid: %d items", n))
	}
	if n := len(p.PreferredIngredients); n > 0 {
		parts = append(parts, fmt.Sprintf("Preferred: %d items", n))
	}
	return strings.Join(parts, " | ")
}

// ParseList splits a comma separated CLI value into trimmed, non-empty items.
func ParseList(s string) []string {
	return SplitLabels(s)
}
