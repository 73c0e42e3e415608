package services

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

var ErrProductNotFound = errors.New("product not found")

// Preference bonuses and blend.
const (
	skinTypeBonus   = 0.3
	concernBonus    = 0.15
	ingredientBonus = 0.10

	baseShare       = 0.7
	preferenceShare = 0.3
)

// Content-based fallback scoring.
const (
	sameCategoryScore  = 0.5
	ratingProximityMax = 0.3
	ratingScale        = 5.0
)

// ingredientAliases expands preference values that name a family of ingredients.
var ingredientAliases = map[string][]string{
	"AHA/BHA": {"Glycolic Acid", "Salicylic Acid"},
}

// SimilarityWeights splits the similarity score between normalised rating and
// normalised log review volume. The two should sum to 1.
type SimilarityWeights struct {
	Rating  float64
	Reviews float64
}

// DefaultSimilarityWeights is the even 0.5/0.5 split.
func DefaultSimilarityWeights() SimilarityWeights {
	return SimilarityWeights{Rating: 0.5, Reviews: 0.5}
}

// Request asks for recommendations similar to one product. Brand disambiguates
// products sharing a name; empty picks the first match.
type Request struct {
	ProductName string
	Brand       string
	N           int
	Method      models.Method
	Preferences *models.Preferences
}

// Recommender ranks cross-brand alternatives within a product's category.
type Recommender struct {
	weights  SimilarityWeights
	defaultN int
	logger   *utils.Logger
}

func NewRecommender(weights SimilarityWeights, defaultN int, logger *utils.Logger) *Recommender {
	if defaultN <= 0 {
		defaultN = 5
	}
	return &Recommender{weights: weights, defaultN: defaultN, logger: logger}
}

// Recommend never fails: an unknown product or an empty candidate pool gives an
// empty result. Hybrid tries similarity first and falls back to content-based.
func (r *Recommender) Recommend(products []models.Product, req Request) []models.Recommendation {
	selected, err := FindProduct(products, req.ProductName, req.Brand)
	if err != nil {
		r.logger.Warn("[recommender] %q: %v", req.ProductName, err)
		return []models.Recommendation{}
	}

	n := req.N
	if n <= 0 {
		n = r.defaultN
	}

	var recs []models.Recommendation
	switch req.Method {
	case models.MethodSimilarity:
		recs = r.SimilarityRecommendations(products, selected, n)
	case models.MethodContentBased:
		recs = r.ContentBasedRecommendations(products, selected, n)
	default:
		recs = r.SimilarityRecommendations(products, selected, n)
		if len(recs) == 0 {
			r.logger.Debug("[recommender] No similarity candidates for %q, trying content-based", selected.ProductName)
			recs = r.ContentBasedRecommendations(products, selected, n)
		}
	}

	if req.Preferences != nil && !req.Preferences.IsEmpty() {
		recs = RankByPreferences(recs, *req.Preferences)
		for i := range recs {
			recs[i].Explanation = ExplainPreferenceMatch(recs[i].Product, *req.Preferences)
		}
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return recs
}

// SimilarityRecommendations scores other brands' products in the selected
// product's category by normalised rating and log-dampened review volume.
// Ties break on raw rating, then raw review count.
func (r *Recommender) SimilarityRecommendations(products []models.Product, selected models.Product, n int) []models.Recommendation {
	pool := candidatePool(products, selected)
	if len(pool) == 0 {
		return nil
	}

	var maxLog, maxRating float64
	for _, p := range pool {
		maxLog = math.Max(maxLog, reviewLog(p.NumberOfReviews))
		maxRating = math.Max(maxRating, p.Rating)
	}

	recs := make([]models.Recommendation, len(pool))
	for i, p := range pool {
		var b models.ScoreBreakdown
		if maxLog > 0 {
			b.ReviewWeight = reviewLog(p.NumberOfReviews) / maxLog
		}
		if maxRating > 0 {
			b.RatingNormalized = p.Rating / maxRating
		}
		b.SimilarityScore = r.weights.Rating*b.RatingNormalized + r.weights.Reviews*b.ReviewWeight
		b.FinalScore = b.SimilarityScore
		recs[i] = models.Recommendation{
			Product:   p.Clone(),
			Method:    models.MethodSimilarity,
			Score:     b.FinalScore,
			Breakdown: b,
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Product.Rating != b.Product.Rating {
			return a.Product.Rating > b.Product.Rating
		}
		return a.Product.NumberOfReviews > b.Product.NumberOfReviews
	})
	return topN(recs, n)
}

// ContentBasedRecommendations scores the same pool by rating proximity:
// 0.5 for sharing the category plus up to 0.3 for a close rating.
func (r *Recommender) ContentBasedRecommendations(products []models.Product, selected models.Product, n int) []models.Recommendation {
	pool := candidatePool(products, selected)
	if len(pool) == 0 {
		return nil
	}

	recs := make([]models.Recommendation, len(pool))
	for i, p := range pool {
		score := sameCategoryScore
		if !math.IsNaN(selected.Rating) && !math.IsNaN(p.Rating) {
			score += ratingProximityMax * (1 - math.Abs(selected.Rating-p.Rating)/ratingScale)
		}
		recs[i] = models.Recommendation{
			Product:   p.Clone(),
			Method:    models.MethodContentBased,
			Score:     score,
			Breakdown: models.ScoreBreakdown{ContentScore: score, FinalScore: score},
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	return topN(recs, n)
}

// RankByPreferences blends each recommendation's base score with a preference
// bonus and re-sorts by the blended score. The input slice is not modified.
func RankByPreferences(recs []models.Recommendation, prefs models.Preferences) []models.Recommendation {
	if len(recs) == 0 || prefs.IsEmpty() {
		return recs
	}

	out := make([]models.Recommendation, len(recs))
	for i, rec := range recs {
		pref := PreferenceScore(rec.Product, prefs)
		base := rec.Breakdown.SimilarityScore
		if rec.Method == models.MethodContentBased {
			base = rec.Breakdown.ContentScore
		}
		rec.Breakdown.PreferenceScore = &pref
		rec.Breakdown.FinalScore = baseShare*base + preferenceShare*pref
		rec.Score = rec.Breakdown.FinalScore
		out[i] = rec
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// PreferenceScore is 0.3 for a skin type match, plus 0.15 per matched concern
// and 0.10 per matched preferred ingredient.
func PreferenceScore(p models.Product, prefs models.Preferences) float64 {
	var score float64
	if st := strings.TrimSpace(prefs.SkinType); st != "" && models.HasLabel(p.SuitableSkinTypes, st) {
		score += skinTypeBonus
	}
	score += concernBonus * float64(len(matchedConcerns(p, prefs)))
	score += ingredientBonus * float64(len(matchedIngredients(p, prefs)))
	return score
}

// ExplainPreferenceMatch lists which preferences p satisfies, one phrase per kind.
func ExplainPreferenceMatch(p models.Product, prefs models.Preferences) []string {
	var out []string
	if st := strings.TrimSpace(prefs.SkinType); st != "" && models.HasLabel(p.SuitableSkinTypes, st) {
		out = append(out, "Suitable for "+st+" skin")
	}
	switch concerns := matchedConcerns(p, prefs); len(concerns) {
	case 0:
	case 1:
		out = append(out, "Targets "+concerns[0])
	default:
		out = append(out, "Targets: "+strings.Join(concerns, ", "))
	}
	switch ings := matchedIngredients(p, prefs); len(ings) {
	case 0:
	case 1:
		out = append(out, "Contains "+ings[0]+", which you prefer")
	default:
		out = append(out, "Contains ingredients you prefer: "+strings.Join(ings, ", "))
	}
	return out
}

// FindProduct returns the first product named name (and from brand, when given).
// Exact matches win over case-insensitive ones.
func FindProduct(products []models.Product, name, brand string) (models.Product, error) {
	name = strings.TrimSpace(name)
	brand = strings.TrimSpace(brand)
	if name == "" {
		return models.Product{}, ErrProductNotFound
	}
	brandOK := func(p models.Product) bool { return brand == "" || strings.EqualFold(p.Brand, brand) }

	for _, p := range products {
		if p.ProductName == name && brandOK(p) {
			return p, nil
		}
	}
	for _, p := range products {
		if strings.EqualFold(p.ProductName, name) && brandOK(p) {
			return p, nil
		}
	}
	return models.Product{}, ErrProductNotFound
}

// reviewLog dampens review volume; a negative count counts as none.
func reviewLog(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Log1p(float64(n))
}

func candidatePool(products []models.Product, selected models.Product) []models.Product {
	var pool []models.Product
	for _, p := range products {
		if p.Category == selected.Category && p.Brand != selected.Brand {
			pool = append(pool, p)
		}
	}
	return pool
}

func topN(recs []models.Recommendation, n int) []models.Recommendation {
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}

func matchedConcerns(p models.Product, prefs models.Preferences) []string {
	var out []string
	for _, c := range prefs.SkinConcerns {
		if models.HasLabel(p.TargetsSkinConcerns, c) {
			out = append(out, c)
		}
	}
	return out
}

func matchedIngredients(p models.Product, prefs models.Preferences) []string {
	var out []string
	for _, ing := range prefs.PreferredIngredients {
		labels := []string{ing}
		for key, alias := range ingredientAliases {
			if strings.EqualFold(key, ing) {
				labels = alias
			}
		}
		for _, l := range labels {
			if models.HasLabel(p.KeyIngredients, l) {
				out = append(out, ing)
				break
			}
		}
	}
	return out
}
