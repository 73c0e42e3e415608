package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

// PriceUnavailable is the display string for a product without a price.
const PriceUnavailable = "Price unavailable"

var (
	// parenIntRegexp captures the count in "Yes (87)"
	parenIntRegexp = regexp.MustCompile(`\((\d+)\)`)
	intRegexp      = regexp.MustCompile(`\d+`)
	// leadingNumRegexp captures the numeric prefix of "1.5k"
	leadingNumRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	voteRegexp       = regexp.MustCompile(`(?i)\b(yes|no|maybe)\b`)
)

// Cleaner transforms RawProducts into clean, typed Products.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses every raw row. Prices and ratings that fail to parse are filled
// with the median over the whole batch, so the batch should hold every category.
func (c *Cleaner) Clean(raw []models.RawProduct) []models.Product {
	result := make([]models.Product, len(raw))
	prices := make([]float64, len(raw))
	ratings := make([]float64, len(raw))

	for i, r := range raw {
		p := models.Product{
			ID:              i + 1,
			Brand:           normaliseText(r.Brand),
			ProductName:     normaliseText(r.ProductName),
			Category:        r.Category,
			PriceDisplay:    FormatPrice(r.Price),
			NumberOfReviews: ParseReviews(r.NumberOfReviews),
			RepurchaseYes:   ParseRepurchase(r.RepurchaseYes),
			RepurchaseNo:    ParseRepurchase(r.RepurchaseNo),
			RepurchaseMaybe: ParseRepurchase(r.RepurchaseMaybe),
		}
		if total := p.TotalRepurchaseVotes(); total > 0 {
			p.RepurchaseRate = float64(p.RepurchaseYes) / float64(total) * 100
		}
		prices[i] = ParsePrice(r.Price)
		ratings[i] = ParseRating(r.Rating)
		result[i] = p
	}

	medianPrice, filledPrices := fillNaN(prices)
	medianRating, filledRatings := fillNaN(ratings)
	for i := range result {
		result[i].Price = prices[i]
		result[i].Rating = ratings[i]
	}

	if filledPrices > 0 || filledRatings > 0 {
		c.logger.Warn("[cleaner] Filled %d prices with median %.2f and %d ratings with median %.2f",
			filledPrices, medianPrice, filledRatings, medianRating)
	}
	c.logger.Info("[cleaner] Cleaned %d products", len(result))
	return result
}

// ParseReviews turns a review count such as "1.5k", "(1,234)" or "87" into an int.
// Anything unparsable is 0.
func ParseReviews(raw string) int {
	s := strings.TrimSpace(raw)
	if isNullToken(s) {
		return 0
	}
	s = strings.NewReplacer("(", "", ")", "", " ", "").Replace(s)

	if strings.ContainsAny(s, "kK") {
		s = strings.ReplaceAll(s, ",", ".")
		match := leadingNumRegexp.FindString(s)
		if match == "" {
			return 0
		}
		n, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0
		}
		return reviewCount(n * 1000)
	}

	kept := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, s)
	if kept == "" {
		return 0
	}
	// "." is read as a decimal point, "," as a thousands separator
	n, err := strconv.ParseFloat(kept, 64)
	if err != nil {
		return 0
	}
	return reviewCount(n)
}

// reviewCount truncates n to an int; counts outside [0, MaxInt32) are 0.
func reviewCount(n float64) int {
	if math.IsNaN(n) || n < 0 || n >= math.MaxInt32 {
		return 0
	}
	return int(n)
}

// ParsePrice returns the numeric price, the midpoint for "a - b" ranges, or NaN.
// "." is kept as a decimal point, so "Rp 45.000" parses as 45 (thousands of Rupiah).
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "Rp", ""))
	if isNullToken(s) {
		return math.NaN()
	}
	if strings.Contains(s, "-") {
		if parts := strings.Split(s, "-"); len(parts) == 2 {
			low, errLow := strconv.ParseFloat(digitsAndDots(parts[0]), 64)
			high, errHigh := strconv.ParseFloat(digitsAndDots(parts[1]), 64)
			if errLow != nil || errHigh != nil {
				return math.NaN()
			}
			return (low + high) / 2
		}
	}
	v, err := strconv.ParseFloat(digitsAndDots(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseRating repairs zero-padded ratings without a decimal point ("048" is 4.8).
// Empty or unparsable input is NaN.
func ParseRating(raw string) float64 {
	s := strings.TrimSpace(raw)
	if isNullToken(s) {
		return math.NaN()
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	if !strings.Contains(s, ".") {
		s = s[:1] + "." + s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseRepurchase reads a repurchase vote count: "Yes (87)" is 87, "12 people" is 12,
// a bare Yes/No/Maybe is 1, anything else 0.
func ParseRepurchase(raw string) int {
	s := strings.TrimSpace(raw)
	if isNullToken(s) {
		return 0
	}
	if m := parenIntRegexp.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := intRegexp.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return n
		}
	}
	if voteRegexp.MatchString(s) {
		return 1
	}
	return 0
}

// FormatPrice normalises a raw price string for display, e.g. "Rp 10.000 - Rp 20.000".
func FormatPrice(raw string) string {
	s := strings.TrimSpace(raw)
	if isNullToken(s) {
		return PriceUnavailable
	}

	switch n := strings.Count(s, "Rp"); {
	case n > 1:
		var parts []string
		for _, p := range strings.Split(s, "Rp") {
			if p = strings.Trim(p, " -"); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) >= 2 {
			return "Rp " + parts[0] + " - Rp " + parts[1]
		}
		return s
	case n == 0:
		if parts := strings.Split(s, "-"); len(parts) == 2 {
			return "Rp " + strings.TrimSpace(parts[0]) + " - Rp " + strings.TrimSpace(parts[1])
		}
		return "Rp " + s
	default:
		return s
	}
}

// median returns the median of the non-NaN values, or 0 when there are none.
func median(values []float64) float64 {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 0
	}
	sort.Float64s(valid)
	mid := len(valid) / 2
	if len(valid)%2 == 0 {
		return (valid[mid-1] + valid[mid]) / 2
	}
	return valid[mid]
}

// fillNaN replaces NaNs in place with the median and reports how many it replaced.
func fillNaN(values []float64) (float64, int) {
	m := median(values)
	filled := 0
	for i, v := range values {
		if math.IsNaN(v) {
			values[i] = m
			filled++
		}
	}
	return m, filled
}

func digitsAndDots(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, s)
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "nan", "none":
		return true
	}
	return false
}

// normaliseText strips leading/trailing whitespace, collapses internal whitespace
// and maps the literal "null" to "".
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}
