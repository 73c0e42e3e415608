// Package rules holds the keyword table used to derive skin types, concerns and
// key ingredients from product names.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule maps a set of keywords to one label.
type Rule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Matches reports whether any keyword is a substring of lowerText.
// lowerText must already be lowercased.
func (r Rule) Matches(lowerText string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// CategoryRules is the ordered rule set for one category.
type CategoryRules struct {
	DefaultSkinTypes []string `yaml:"default_skin_types"`
	SkinTypes        []Rule   `yaml:"skin_types"`
	Concerns         []Rule   `yaml:"concerns"`
	Ingredients      []Rule   `yaml:"ingredients"`
}

// Table is the full keyword table.
type Table struct {
	FallbackSkinTypes []string                          `yaml:"fallback_skin_types"`
	Categories        map[models.Category]CategoryRules `yaml:"categories"`
}

// For returns the rules for c.
func (t *Table) For(c models.Category) (CategoryRules, bool) {
	r, ok := t.Categories[c]
	return r, ok
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Parse(defaultRules)
}

// LoadFile reads a table from path; an empty path means the embedded table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML table, lowercases every keyword and checks that all five
// categories are present with labelled, non-empty rules.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("rules: parse: %w", err)
	}
	if len(t.FallbackSkinTypes) == 0 {
		t.FallbackSkinTypes = []string{models.AllSkinTypes}
	}

	var errs []error
	for _, info := range models.Categories {
		cr, ok := t.Categories[info.Category]
		if !ok {
			errs = append(errs, fmt.Errorf("category %s missing", info.Category))
			continue
		}
		if len(cr.DefaultSkinTypes) == 0 {
			errs = append(errs, fmt.Errorf("category %s: no default skin types", info.Category))
		}
		for _, set := range [][]Rule{cr.SkinTypes, cr.Concerns, cr.Ingredients} {
			for i := range set {
				if err := normalizeRule(&set[i]); err != nil {
					errs = append(errs, fmt.Errorf("category %s: %w", info.Category, err))
				}
			}
		}
	}
	for c := range t.Categories {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("unknown category %q", c))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("rules: %w", errors.Join(errs...))
	}
	return &t, nil
}

func normalizeRule(r *Rule) error {
	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" {
		return errors.New("rule without label")
	}
	kws := r.Keywords[:0]
	for _, kw := range r.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			kws = append(kws, kw)
		}
	}
	if len(kws) == 0 {
		return fmt.Errorf("rule %q has no keywords", r.Label)
	}
	r.Keywords = kws
	return nil
}
