package services

import (
	"strings"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/rules"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

// Enhancer derives skin types, concerns and key ingredients from product names.
type Enhancer struct {
	table  *rules.Table
	logger *utils.Logger
}

func NewEnhancer(table *rules.Table, logger *utils.Logger) *Enhancer {
	return &Enhancer{table: table, logger: logger}
}

// Enhance returns a copy of p with its three label sets derived from its category
// and name. The result depends only on those two fields, so enhancing twice is a no-op.
func (e *Enhancer) Enhance(p models.Product) models.Product {
	out := p.Clone()
	out.SuitableSkinTypes = nil
	out.TargetsSkinConcerns = nil
	out.KeyIngredients = nil

	name := strings.ToLower(p.ProductName)
	if cr, ok := e.table.For(p.Category); ok {
		out.SuitableSkinTypes = matchLabels(cr.SkinTypes, name)
		if len(out.SuitableSkinTypes) == 0 {
			out.SuitableSkinTypes = append([]string(nil), cr.DefaultSkinTypes...)
		}
		out.TargetsSkinConcerns = matchLabels(cr.Concerns, name)
		out.KeyIngredients = matchLabels(cr.Ingredients, name)
	}
	if len(out.SuitableSkinTypes) == 0 {
		out.SuitableSkinTypes = append([]string(nil), e.table.FallbackSkinTypes...)
	}
	return out
}

// EnhanceAll enhances every product and returns a new slice.
func (e *Enhancer) EnhanceAll(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	var withConcerns, withIngredients int
	for i, p := range products {
		out[i] = e.Enhance(p)
		if out[i].TargetsSkinConcerns != nil {
			withConcerns++
		}
		if out[i].KeyIngredients != nil {
			withIngredients++
		}
	}
	e.logger.Info("[enhancer] Enhanced %d products (%d with concerns, %d with key ingredients)",
		len(out), withConcerns, withIngredients)
	return out
}

// matchLabels returns the labels of every matching rule in rule order, or nil.
func matchLabels(set []rules.Rule, lowerName string) []string {
	var labels []string
	for _, r := range set {
		if r.Matches(lowerName) && !models.HasLabel(labels, r.Label) {
			labels = append(labels, r.Label)
		}
	}
	return labels
}
