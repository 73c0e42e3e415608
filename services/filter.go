package services

import (
	"strings"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

// PriceRange bounds are inclusive and in whole Rupiah.
type PriceRange struct {
	Min float64
	Max float64
}

// FilterOptions selects products. Empty or "All" Category/Brand disable that filter.
type FilterOptions struct {
	Category   string
	Brand      string
	PriceRange *PriceRange

	// Preferences are applied only when FilterByPreferences is set.
	Preferences         *models.Preferences
	FilterByPreferences bool
}

// Filter narrows product lists by category, brand, price and preferences.
type Filter struct {
	priceUnit float64
	logger    *utils.Logger
}

// NewFilter creates a Filter. priceUnit is how many Rupiah one unit of
// Product.Price represents.
func NewFilter(priceUnit float64, logger *utils.Logger) *Filter {
	if priceUnit <= 0 {
		priceUnit = 1
	}
	return &Filter{priceUnit: priceUnit, logger: logger}
}

// Apply runs category, brand, price and preference filters in that order, each
// on the previous stage's output.
func (f *Filter) Apply(products []models.Product, opts FilterOptions) []models.Product {
	result := products

	if sel := strings.TrimSpace(opts.Category); sel != "" && sel != models.FilterAll {
		want := models.Category(sel)
		if c, ok := models.ParseCategory(sel); ok {
			want = c
		}
		result = keep(result, func(p models.Product) bool { return p.Category == want })
	}

	if sel := strings.TrimSpace(opts.Brand); sel != "" && sel != models.FilterAll {
		result = keep(result, func(p models.Product) bool { return p.Brand == sel })
	}

	if r := opts.PriceRange; r != nil {
		lo, hi := r.Min/f.priceUnit, r.Max/f.priceUnit
		result = keep(result, func(p models.Product) bool { return p.Price >= lo && p.Price <= hi })
	}

	if opts.FilterByPreferences && opts.Preferences != nil {
		result = f.ByPreferences(result, *opts.Preferences)
	}
	return result
}

// ByPreferences applies the skin type, concern and avoided-ingredient filters.
// A filter that would remove every product is skipped, so preferences that are
// individually too narrow do not combine into an empty result.
func (f *Filter) ByPreferences(products []models.Product, prefs models.Preferences) []models.Product {
	result := products

	if st := strings.TrimSpace(prefs.SkinType); st != "" {
		result = f.keepOrSkip(result, "skin type "+st, func(p models.Product) bool {
			return models.HasLabel(p.SuitableSkinTypes, st) || models.HasLabel(p.SuitableSkinTypes, models.AllSkinTypes)
		})
	}

	if len(prefs.SkinConcerns) > 0 {
		result = f.keepOrSkip(result, "skin concerns", func(p models.Product) bool {
			for _, c := range prefs.SkinConcerns {
				if models.HasLabel(p.TargetsSkinConcerns, c) {
					return true
				}
			}
			return false
		})
	}

	if len(prefs.AvoidIngredients) > 0 {
		result = f.keepOrSkip(result, "avoided ingredients", func(p models.Product) bool {
			for _, ing := range prefs.AvoidIngredients {
				if models.HasLabel(p.KeyIngredients, ing) {
					return false
				}
			}
			return true
		})
	}
	return result
}

func (f *Filter) keepOrSkip(products []models.Product, name string, pred func(models.Product) bool) []models.Product {
	kept := keep(products, pred)
	if len(kept) == 0 && len(products) > 0 {
		f.logger.Warn("[filter] %s filter matched no products, skipping it", name)
		return products
	}
	return kept
}

func keep(products []models.Product, pred func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
