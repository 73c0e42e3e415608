package models

// InsightReport holds the computed analytics over the enhanced catalog.
type InsightReport struct {
	TotalProducts int       `json:"total_products"`
	TotalBrands   int       `json:"total_brands"`
	TotalReviews  int       `json:"total_reviews"`
	AverageRating float64   `json:"average_rating"`
	AveragePrice  float64   `json:"average_price"`
	MinPrice      float64   `json:"min_price"`
	MaxPrice      float64   `json:"max_price"`
	MostExpensive *Product  `json:"most_expensive,omitempty"`
	TopRated      []Product `json:"top_rated"`

	RatingDistribution map[string]int   `json:"rating_distribution"`
	TopBrands          []BrandStat      `json:"top_brands"`
	Categories         []CategoryStat   `json:"categories"`
	PriceBands         []PriceBand      `json:"price_bands"`
	Repurchase         []RepurchaseStat `json:"repurchase"`
}

type BrandStat struct {
	Brand         string  `json:"brand"`
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
	ProductCount  int     `json:"product_count"`
}

type CategoryStat struct {
	Category      Category `json:"category"`
	Count         int      `json:"count"`
	AverageRating float64  `json:"average_rating"`
	RatingStdDev  float64  `json:"rating_std_dev"`
	AveragePrice  float64  `json:"average_price"`
}

// PriceBand is one price quintile.
type PriceBand struct {
	Label          string  `json:"label"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
	Count          int     `json:"count"`
	AverageRating  float64 `json:"average_rating"`
	AverageReviews float64 `json:"average_reviews"`
}

// RepurchaseStat is the yes/maybe/no vote split for a category, in percent.
type RepurchaseStat struct {
	Category Category `json:"category"`
	YesPct   float64  `json:"yes_pct"`
	MaybePct float64  `json:"maybe_pct"`
	NoPct    float64  `json:"no_pct"`
}
