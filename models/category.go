package models

import "strings"

// Category is one of the five fixed product categories. A product's category
// comes from the source file it was loaded from, never from the row itself.
type Category string

const (
	CategoryCleanser    Category = "Cleanser"
	CategoryMask        Category = "Mask"
	CategoryMoisturizer Category = "Moisturizer"
	CategorySunscreen   Category = "Sunscreen"
	CategoryTreatment   Category = "Treatment"
)

// FilterAll is the selection sentinel that disables a category or brand filter.
const FilterAll = "All"

// CategoryInfo is the display metadata for a category plus the file it loads from.
type CategoryInfo struct {
	Category    Category `json:"category"`
	File        string   `json:"file"`
	DisplayName string   `json:"display_name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
}

// Categories lists every category in load order.
var Categories = []CategoryInfo{
	{
		Category:    CategoryCleanser,
		File:        "skincare_cleanser.csv",
		DisplayName: "Pembersih Wajah",
		Icon:        "🧼",
		Description: "Cleans dirt, oil and makeup from the face",
		Benefits:    []string{"Lifts dirt and excess oil", "Removes leftover makeup", "Keeps skin pH balanced", "Helps prevent acne"},
	},
	{
		Category:    CategoryMask,
		File:        "skincare_mask.csv",
		DisplayName: "Masker",
		Icon:        "🎭",
		Description: "Intensive care for a range of skin problems",
		Benefits:    []string{"Nourishes the skin", "Lifts dead skin cells", "Brightens and softens", "Minimizes pores"},
	},
	{
		Category:    CategoryMoisturizer,
		File:        "skincare_moisturizer.csv",
		DisplayName: "Pelembab",
		Icon:        "💧",
		Description: "Keeps skin moist and healthy",
		Benefits:    []string{"Hydrates optimally", "Prevents dry and dull skin", "Maintains elasticity", "Strengthens the skin barrier"},
	},
	{
		Category:    CategorySunscreen,
		File:        "skincare_suncare.csv",
		DisplayName: "Sunscreen",
		Icon:        "☀️",
		Description: "Protects skin from harmful UV rays",
		Benefits:    []string{"Protects against UVA and UVB", "Prevents hyperpigmentation", "Lowers skin cancer risk", "Prevents premature aging"},
	},
	{
		Category:    CategoryTreatment,
		File:        "skincare_treatment.csv",
		DisplayName: "Perawatan",
		Icon:        "✨",
		Description: "Treatments for specific skin problems",
		Benefits:    []string{"Fades dark spots", "Treats acne and its marks", "Smooths skin texture", "Reduces signs of aging"},
	},
}

// Info returns the metadata for c.
func (c Category) Info() (CategoryInfo, bool) {
	for _, info := range Categories {
		if info.Category == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}

func (c Category) Valid() bool {
	_, ok := c.Info()
	return ok
}

// ParseCategory accepts a category key, its display name or its source file name,
// case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, info := range Categories {
		if strings.EqualFold(s, string(info.Category)) ||
			strings.EqualFold(s, info.DisplayName) ||
			strings.EqualFold(s, info.File) {
			return info.Category, true
		}
	}
	return "", false
}
