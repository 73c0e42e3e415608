package models

// Method selects how recommendations are produced.
type Method string

const (
	MethodHybrid       Method = "hybrid"
	MethodSimilarity   Method = "similarity"
	MethodContentBased Method = "content_based"
)

func (m Method) Valid() bool {
	switch m {
	case MethodHybrid, MethodSimilarity, MethodContentBased:
		return true
	}
	return false
}

// ScoreBreakdown carries the transient scoring components for one candidate.
// It is kept apart from Product so scoring columns never end up on a catalog record.
type ScoreBreakdown struct {
	RatingNormalized float64  `json:"rating_normalized"`
	ReviewWeight     float64  `json:"review_weight"`
	SimilarityScore  float64  `json:"similarity_score"`
	ContentScore     float64  `json:"content_score,omitempty"`
	PreferenceScore  *float64 `json:"preference_score,omitempty"`
	FinalScore       float64  `json:"final_score"`
}

// Recommendation is one ranked candidate.
type Recommendation struct {
	Rank        int            `json:"rank"`
	Product     Product        `json:"product"`
	Method      Method         `json:"method"`
	Score       float64        `json:"score"`
	Breakdown   ScoreBreakdown `json:"breakdown"`
	Explanation []string       `json:"explanation,omitempty"`
}
