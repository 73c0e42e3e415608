package models

import (
	"strings"
	"time"
)

// RawProduct holds one unparsed row exactly as it appears in a category source file.
// Every numeric-looking field is still text; the Cleaner turns it into a Product.
type RawProduct struct {
	Category        Category
	Brand           string
	ProductName     string
	Price           string
	Rating          string
	NumberOfReviews string
	RepurchaseYes   string
	RepurchaseNo    string
	RepurchaseMaybe string
	URL             string
	ScrapedAt       time.Time
}

// Product is a cleaned, enhanced catalog record. Products are treated as
// immutable once a catalog snapshot is built; use Clone before modifying one.
type Product struct {
	ID              int      `json:"id"`
	Brand           string   `json:"brand"`
	ProductName     string   `json:"product_name"`
	Category        Category `json:"category"`
	Price           float64  `json:"price"`
	PriceDisplay    string   `json:"price_display"`
	Rating          float64  `json:"rating"`
	NumberOfReviews int      `json:"number_of_reviews"`
	RepurchaseYes   int      `json:"repurchase_yes"`
	RepurchaseNo    int      `json:"repurchase_no"`
	RepurchaseMaybe int      `json:"repurchase_maybe"`
	RepurchaseRate  float64  `json:"repurchase_rate"`

	// Derived by the Enhancer. SuitableSkinTypes is never empty after enhancement;
	// the other two are nil when no keyword matched.
	SuitableSkinTypes   []string `json:"suitable_skin_types"`
	TargetsSkinConcerns []string `json:"targets_skin_concerns,omitempty"`
	KeyIngredients      []string `json:"key_ingredients,omitempty"`
}

// Clone returns a deep copy so callers can never alias a cached snapshot's label slices.
func (p Product) Clone() Product {
	p.SuitableSkinTypes = cloneStrings(p.SuitableSkinTypes)
	p.TargetsSkinConcerns = cloneStrings(p.TargetsSkinConcerns)
	p.KeyIngredients = cloneStrings(p.KeyIngredients)
	return p
}

// SkinTypesLabel returns the comma-joined skin type set.
func (p Product) SkinTypesLabel() string { return strings.Join(p.SuitableSkinTypes, ", ") }

// ConcernsLabel returns the comma-joined concern set, or "" when none were detected.
func (p Product) ConcernsLabel() string { return strings.Join(p.TargetsSkinConcerns, ", ") }

// IngredientsLabel returns the comma-joined ingredient set, or "" when none were detected.
func (p Product) IngredientsLabel() string { return strings.Join(p.KeyIngredients, ", ") }

// TotalRepurchaseVotes is yes+no+maybe.
func (p Product) TotalRepurchaseVotes() int {
	return p.RepurchaseYes + p.RepurchaseNo + p.RepurchaseMaybe
}

// CloneProducts deep-copies a product slice.
func CloneProducts(products []Product) []Product {
	if products == nil {
		return nil
	}
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

// SplitLabels parses a comma-joined label string back into a set. Empty input yields nil.
func SplitLabels(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// HasLabel reports whether labels contains want, ignoring case.
func HasLabel(labels []string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	for _, l := range labels {
		if strings.EqualFold(l, want) {
			return true
		}
	}
	return false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
