package services

import (
	"math"
	"reflect"
	"testing"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
)

func cleanserScenario() []models.Product {
	return []models.Product{
		{ID: 1, Brand: "Brand A", ProductName: "A Foam", Category: models.CategoryCleanser, Rating: 4.5, NumberOfReviews: 1000},
		{ID: 2, Brand: "Brand B", ProductName: "B Gel", Category: models.CategoryCleanser, Rating: 4.8, NumberOfReviews: ParseReviews("1.2k")},
		{ID: 3, Brand: "Brand C", ProductName: "C Milk", Category: models.CategoryCleanser, Rating: 3.0, NumberOfReviews: 50},
		{ID: 4, Brand: "Brand A", ProductName: "A Balm", Category: models.CategoryCleanser, Rating: 4.9, NumberOfReviews: 5000},
		{ID: 5, Brand: "Brand D", ProductName: "D Mask", Category: models.CategoryMask, Rating: 5.0, NumberOfReviews: 9000},
	}
}

func newTestRecommender() *Recommender {
	return NewRecommender(DefaultSimilarityWeights(), 5, newTestLogger())
}

func recIDs(recs []models.Recommendation) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Product.ID
	}
	return out
}

func TestRecommendCrossBrandScenario(t *testing.T) {
	r := newTestRecommender()
	recs := r.Recommend(cleanserScenario(), Request{ProductName: "A Foam"})

	if got := recIDs(recs); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Fatalf("Recommend(A Foam) = %v; want [2 3]", got)
	}
	for i, rec := range recs {
		if rec.Product.Brand == "Brand A" {
			t.Errorf("same-brand product %q recommended", rec.Product.ProductName)
		}
		if rec.Rank != i+1 {
			t.Errorf("rank %d at position %d", rec.Rank, i)
		}
		if rec.Method != models.MethodSimilarity {
			t.Errorf("method = %q; want similarity", rec.Method)
		}
	}
	if recs[0].Breakdown.SimilarityScore != 1 {
		t.Errorf("top candidate similarity = %v; want 1", recs[0].Breakdown.SimilarityScore)
	}
}

func TestSimilarityTieBreaksOnReviewCount(t *testing.T) {
	// Rating-only weights make equal ratings produce equal scores.
	r := NewRecommender(SimilarityWeights{Rating: 1, Reviews: 0}, 5, newTestLogger())
	products := []models.Product{
		{ID: 1, Brand: "Self", ProductName: "Selected", Category: models.CategoryMask, Rating: 4},
		{ID: 2, Brand: "X", ProductName: "Few reviews", Category: models.CategoryMask, Rating: 4.5, NumberOfReviews: 10},
		{ID: 3, Brand: "Y", ProductName: "Many reviews", Category: models.CategoryMask, Rating: 4.5, NumberOfReviews: 900},
		{ID: 4, Brand: "Z", ProductName: "Lower rated", Category: models.CategoryMask, Rating: 4.0, NumberOfReviews: 5000},
	}
	selected := products[0]

	recs := r.SimilarityRecommendations(products, selected, 10)
	if got := recIDs(recs); !reflect.DeepEqual(got, []int{3, 2, 4}) {
		t.Errorf("order = %v; want [3 2 4]", got)
	}
	if recs[0].Score != recs[1].Score {
		t.Errorf("expected a score tie, got %v vs %v", recs[0].Score, recs[1].Score)
	}
}

func TestSimilarityTruncatesToN(t *testing.T) {
	r := newTestRecommender()
	products := cleanserScenario()
	recs := r.SimilarityRecommendations(products, products[0], 1)
	if len(recs) != 1 || recs[0].Product.ID != 2 {
		t.Errorf("top-1 = %v; want [2]", recIDs(recs))
	}
}

func TestSimilarityZeroMaxima(t *testing.T) {
	r := newTestRecommender()
	products := []models.Product{
		{ID: 1, Brand: "A", ProductName: "a", Category: models.CategoryMask},
		{ID: 2, Brand: "B", ProductName: "b", Category: models.CategoryMask},
	}
	recs := r.SimilarityRecommendations(products, products[0], 5)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations; want 1", len(recs))
	}
	b := recs[0].Breakdown
	if b.ReviewWeight != 0 || b.RatingNormalized != 0 || b.SimilarityScore != 0 {
		t.Errorf("zero pool maxima should give zero components, got %+v", b)
	}
}

func TestSimilarityIgnoresNegativeReviewCounts(t *testing.T) {
	r := newTestRecommender()
	products := cleanserScenario()
	products[2].NumberOfReviews = -1 << 40

	recs := r.SimilarityRecommendations(products, products[0], 5)
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations; want 2", len(recs))
	}
	for _, rec := range recs {
		b := rec.Breakdown
		if math.IsNaN(b.ReviewWeight) || math.IsNaN(rec.Score) {
			t.Fatalf("product %d: NaN score %+v", rec.Product.ID, b)
		}
		switch rec.Product.ID {
		case 2:
			if b.ReviewWeight != 1 {
				t.Errorf("product 2 ReviewWeight = %v; want 1", b.ReviewWeight)
			}
		case 3:
			if b.ReviewWeight != 0 {
				t.Errorf("product 3 ReviewWeight = %v; want 0", b.ReviewWeight)
			}
		}
	}
}

func TestScoresAreBounded(t *testing.T) {
	r := newTestRecommender()
	products := cleanserScenario()
	for i := range products {
		products[i].SuitableSkinTypes = []string{"Oily", "Dry"}
		products[i].TargetsSkinConcerns = []string{"Acne", "Dullness"}
		products[i].KeyIngredients = []string{"Niacinamide"}
	}
	prefs := models.Preferences{
		SkinType:             "Oily",
		SkinConcerns:         []string{"Acne", "Dullness"},
		PreferredIngredients: []string{"Niacinamide"},
	}

	base := r.SimilarityRecommendations(products, products[0], 10)
	for _, rec := range base {
		if s := rec.Breakdown.SimilarityScore; s < 0 || s > 1 {
			t.Errorf("similarity %v outside [0,1]", s)
		}
	}
	for _, rec := range RankByPreferences(base, prefs) {
		pref := *rec.Breakdown.PreferenceScore
		if math.Abs(pref-0.7) > 1e-9 {
			t.Errorf("preference score = %v; want 0.7", pref)
		}
		want := 0.7*rec.Breakdown.SimilarityScore + 0.3*pref
		if math.Abs(rec.Score-want) > 1e-9 {
			t.Errorf("final score = %v; want %v", rec.Score, want)
		}
		if rec.Score < 0 || rec.Score > 0.7+0.3*pref {
			t.Errorf("final score %v out of range", rec.Score)
		}
	}
}

func TestRankByPreferencesReorders(t *testing.T) {
	recs := []models.Recommendation{
		{Rank: 1, Method: models.MethodSimilarity, Score: 0.6,
			Product:   models.Product{ID: 1, SuitableSkinTypes: []string{"Dry"}},
			Breakdown: models.ScoreBreakdown{SimilarityScore: 0.6, FinalScore: 0.6}},
		{Rank: 2, Method: models.MethodSimilarity, Score: 0.5,
			Product:   models.Product{ID: 2, SuitableSkinTypes: []string{"Oily"}, TargetsSkinConcerns: []string{"Acne"}},
			Breakdown: models.ScoreBreakdown{SimilarityScore: 0.5, FinalScore: 0.5}},
	}
	prefs := models.Preferences{SkinType: "Oily", SkinConcerns: []string{"Acne"}}

	got := RankByPreferences(recs, prefs)
	if ids := recIDs(got); !reflect.DeepEqual(ids, []int{2, 1}) {
		t.Fatalf("order = %v; want [2 1]", ids)
	}
	if math.Abs(got[0].Score-0.485) > 1e-9 || math.Abs(got[1].Score-0.42) > 1e-9 {
		t.Errorf("scores = %v, %v; want 0.485, 0.42", got[0].Score, got[1].Score)
	}
	if got[0].Rank != 1 || got[1].Rank != 2 {
		t.Errorf("ranks not reassigned: %d, %d", got[0].Rank, got[1].Rank)
	}
	if recs[0].Breakdown.PreferenceScore != nil {
		t.Error("input recommendations were modified")
	}
}

func TestPreferenceScoreSkinTypeNeedsExactLabel(t *testing.T) {
	p := models.Product{SuitableSkinTypes: []string{models.AllSkinTypes}}
	if got := PreferenceScore(p, models.Preferences{SkinType: "Oily"}); got != 0 {
		t.Errorf("PreferenceScore = %v; want 0 for an all-skin-types product", got)
	}
}

func TestPreferenceScoreAliasIngredient(t *testing.T) {
	p := models.Product{KeyIngredients: []string{"Salicylic Acid"}}
	got := PreferenceScore(p, models.Preferences{PreferredIngredients: []string{"AHA/BHA", "Retinol"}})
	if math.Abs(got-0.1) > 1e-9 {
		t.Errorf("PreferenceScore = %v; want 0.1", got)
	}
}

func TestContentBasedRecommendations(t *testing.T) {
	r := newTestRecommender()
	products := []models.Product{
		{ID: 1, Brand: "A", ProductName: "Selected", Category: models.CategorySunscreen, Rating: 4.0},
		{ID: 2, Brand: "B", ProductName: "Far", Category: models.CategorySunscreen, Rating: 3.0},
		{ID: 3, Brand: "C", ProductName: "Close", Category: models.CategorySunscreen, Rating: 4.0},
		{ID: 4, Brand: "A", ProductName: "Same brand", Category: models.CategorySunscreen, Rating: 4.0},
	}

	recs := r.ContentBasedRecommendations(products, products[0], 5)
	if ids := recIDs(recs); !reflect.DeepEqual(ids, []int{3, 2}) {
		t.Fatalf("order = %v; want [3 2]", ids)
	}
	if math.Abs(recs[0].Score-0.8) > 1e-9 || math.Abs(recs[1].Score-0.74) > 1e-9 {
		t.Errorf("scores = %v, %v; want 0.8, 0.74", recs[0].Score, recs[1].Score)
	}
}

func TestRecommendMethods(t *testing.T) {
	r := newTestRecommender()
	products := cleanserScenario()

	content := r.Recommend(products, Request{ProductName: "A Foam", Method: models.MethodContentBased})
	if len(content) != 2 || content[0].Method != models.MethodContentBased {
		t.Errorf("content_based returned %v", recIDs(content))
	}
	sim := r.Recommend(products, Request{ProductName: "A Foam", Method: models.MethodSimilarity, N: 1})
	if len(sim) != 1 || sim[0].Product.ID != 2 {
		t.Errorf("similarity top-1 = %v; want [2]", recIDs(sim))
	}
}

func TestRecommendEmptyResults(t *testing.T) {
	r := newTestRecommender()
	products := cleanserScenario()

	tests := []struct {
		name string
		req  Request
	}{
		{"unknown product", Request{ProductName: "Does Not Exist"}},
		{"empty name", Request{}},
		{"no other brands in category", Request{ProductName: "D Mask"}},
		{"brand mismatch", Request{ProductName: "A Foam", Brand: "Brand B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Recommend(products, tt.req)
			if got == nil || len(got) != 0 {
				t.Errorf("Recommend(%+v) = %v; want empty non-nil slice", tt.req, got)
			}
		})
	}
}

func TestRecommendWithPreferencesExplains(t *testing.T) {
	r := newTestRecommender()
	products := cleanserScenario()
	products[2].SuitableSkinTypes = []string{"Oily"}
	products[2].TargetsSkinConcerns = []string{"Acne", "Large Pores"}
	products[2].KeyIngredients = []string{"Tea Tree"}

	prefs := &models.Preferences{
		SkinType:             "Oily",
		SkinConcerns:         []string{"Acne", "Large Pores"},
		PreferredIngredients: []string{"Tea Tree"},
	}
	recs := r.Recommend(products, Request{ProductName: "A Foam", Preferences: prefs})

	var c *models.Recommendation
	for i := range recs {
		if recs[i].Product.ID == 3 {
			c = &recs[i]
		}
	}
	if c == nil {
		t.Fatalf("product 3 missing from %v", recIDs(recs))
	}
	want := []string{
		"Suitable for Oily skin",
		"Targets: Acne, Large Pores",
		"Contains Tea Tree, which you prefer",
	}
	if !reflect.DeepEqual(c.Explanation, want) {
		t.Errorf("Explanation = %q; want %q", c.Explanation, want)
	}
	if c.Breakdown.PreferenceScore == nil {
		t.Error("preference score not recorded")
	}
}

func TestExplainPreferenceMatchNoMatches(t *testing.T) {
	got := ExplainPreferenceMatch(models.Product{}, models.Preferences{SkinType: "Dry", SkinConcerns: []string{"Acne"}})
	if got != nil {
		t.Errorf("ExplainPreferenceMatch = %q; want nil", got)
	}

	p := models.Product{TargetsSkinConcerns: []string{"Acne"}, KeyIngredients: []string{"Retinol", "Peptides"}}
	got = ExplainPreferenceMatch(p, models.Preferences{SkinConcerns: []string{"Acne"}, PreferredIngredients: []string{"Retinol", "Peptides"}})
	want := []string{"Targets Acne", "Contains ingredients you prefer: Retinol, Peptides"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExplainPreferenceMatch = %q; want %q", got, want)
	}
}

func TestFindProduct(t *testing.T) {
	products := cleanserScenario()
	if p, err := FindProduct(products, "a foam", ""); err != nil || p.ID != 1 {
		t.Errorf("FindProduct(case-insensitive) = %d, %v", p.ID, err)
	}
	if _, err := FindProduct(products, "nope", ""); err != ErrProductNotFound {
		t.Errorf("FindProduct(nope) err = %v; want ErrProductNotFound", err)
	}
}
