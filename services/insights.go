package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

// PriceBandLabels names the five price quintiles, cheapest first.
var PriceBandLabels = []string{"Very Cheap", "Cheap", "Moderate", "Expensive", "Very Expensive"}

const (
	topRatedLimit  = 5
	topBrandsLimit = 10
)

type InsightService struct {
	priceUnit float64
	logger    *utils.Logger
}

// NewInsightService reports prices in Rupiah by scaling stored prices with priceUnit.
func NewInsightService(priceUnit float64, logger *utils.Logger) *InsightService {
	if priceUnit <= 0 {
		priceUnit = 1
	}
	return &InsightService{priceUnit: priceUnit, logger: logger}
}

func (s *InsightService) Generate(products []models.Product) *models.InsightReport {
	report := &models.InsightReport{
		RatingDistribution: make(map[string]int),
		TopRated:           []models.Product{},
		TopBrands:          []models.BrandStat{},
		Categories:         []models.CategoryStat{},
		PriceBands:         []models.PriceBand{},
		Repurchase:         []models.RepurchaseStat{},
	}

	if len(products) == 0 {
		return report
	}

	report.TotalProducts = len(products)

	var ratingSum, priceSum float64
	var rated []models.Product
	brands := make(map[string]struct{})

	for i, p := range products {
		ratingSum += p.Rating
		priceSum += p.Price
		report.TotalReviews += p.NumberOfReviews
		report.RatingDistribution[fmt.Sprintf("%.1f", p.Rating)]++
		if p.Brand != "" {
			brands[p.Brand] = struct{}{}
		}
		if p.Rating > 0 {
			rated = append(rated, p)
		}

		if i == 0 || p.Price < report.MinPrice {
			report.MinPrice = p.Price
		}
		if i == 0 || p.Price > report.MaxPrice {
			report.MaxPrice = p.Price
			mostExpensive := p.Clone()
			report.MostExpensive = &mostExpensive
		}
	}

	n := float64(len(products))
	report.TotalBrands = len(brands)
	report.AverageRating = round2(ratingSum / n)
	report.AveragePrice = round2(priceSum / n)
	report.MinPrice = round2(report.MinPrice)
	report.MaxPrice = round2(report.MaxPrice)

	// Top 5 by rating, more reviewed first on ties
	sort.SliceStable(rated, func(i, j int) bool {
		if rated[i].Rating != rated[j].Rating {
			return rated[i].Rating > rated[j].Rating
		}
		return rated[i].NumberOfReviews > rated[j].NumberOfReviews
	})
	if len(rated) > topRatedLimit {
		rated = rated[:topRatedLimit]
	}
	report.TopRated = models.CloneProducts(rated)

	report.TopBrands = brandStats(products)
	report.Categories = categoryStats(products)
	report.PriceBands = priceBands(products)
	report.Repurchase = repurchaseStats(products)

	s.logger.Debug("[insights] %d products, %d brands, %d price bands", report.TotalProducts, report.TotalBrands, len(report.PriceBands))
	return report
}

// brandStats returns the ten most reviewed brands.
func brandStats(products []models.Product) []models.BrandStat {
	type acc struct {
		reviews, count int
		ratingSum      float64
	}
	byBrand := make(map[string]*acc)
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		a, ok := byBrand[p.Brand]
		if !ok {
			a = &acc{}
			byBrand[p.Brand] = a
		}
		a.reviews += p.NumberOfReviews
		a.ratingSum += p.Rating
		a.count++
	}

	stats := make([]models.BrandStat, 0, len(byBrand))
	for brand, a := range byBrand {
		stats = append(stats, models.BrandStat{
			Brand:         brand,
			TotalReviews:  a.reviews,
			AverageRating: round2(a.ratingSum / float64(a.count)),
			ProductCount:  a.count,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalReviews != stats[j].TotalReviews {
			return stats[i].TotalReviews > stats[j].TotalReviews
		}
		return stats[i].Brand < stats[j].Brand
	})
	if len(stats) > topBrandsLimit {
		stats = stats[:topBrandsLimit]
	}
	return stats
}

// categoryStats follows the fixed category order; absent categories are omitted.
func categoryStats(products []models.Product) []models.CategoryStat {
	stats := []models.CategoryStat{}
	for _, info := range models.Categories {
		var ratings []float64
		var priceSum float64
		for _, p := range products {
			if p.Category == info.Category {
				ratings = append(ratings, p.Rating)
				priceSum += p.Price
			}
		}
		if len(ratings) == 0 {
			continue
		}
		mean := sum(ratings) / float64(len(ratings))
		stats = append(stats, models.CategoryStat{
			Category:      info.Category,
			Count:         len(ratings),
			AverageRating: round2(mean),
			RatingStdDev:  round2(sampleStdDev(ratings, mean)),
			AveragePrice:  round2(priceSum / float64(len(ratings))),
		})
	}
	return stats
}

// priceBands splits products into price quintiles. Edges are linear-interpolated
// quantiles; each band includes its upper edge and the first also its lower one.
// Bands left empty by duplicate edges are omitted.
func priceBands(products []models.Product) []models.PriceBand {
	prices := make([]float64, len(products))
	for i, p := range products {
		prices[i] = p.Price
	}
	sort.Float64s(prices)

	edges := make([]float64, len(PriceBandLabels)+1)
	for i := range edges {
		edges[i] = quantile(prices, float64(i)/float64(len(PriceBandLabels)))
	}

	type acc struct {
		count                int
		min, max             float64
		ratingSum, reviewSum float64
	}
	accs := make([]acc, len(PriceBandLabels))
	for _, p := range products {
		b := len(PriceBandLabels) - 1
		for i := 1; i < len(edges); i++ {
			if p.Price <= edges[i] {
				b = i - 1
				break
			}
		}
		a := &accs[b]
		if a.count == 0 || p.Price < a.min {
			a.min = p.Price
		}
		if a.count == 0 || p.Price > a.max {
			a.max = p.Price
		}
		a.count++
		a.ratingSum += p.Rating
		a.reviewSum += float64(p.NumberOfReviews)
	}

	bands := []models.PriceBand{}
	for i, a := range accs {
		if a.count == 0 {
			continue
		}
		bands = append(bands, models.PriceBand{
			Label:          PriceBandLabels[i],
			MinPrice:       round2(a.min),
			MaxPrice:       round2(a.max),
			Count:          a.count,
			AverageRating:  round2(a.ratingSum / float64(a.count)),
			AverageReviews: round2(a.reviewSum / float64(a.count)),
		})
	}
	return bands
}

// repurchaseStats gives each category's vote split; categories without votes are omitted.
func repurchaseStats(products []models.Product) []models.RepurchaseStat {
	stats := []models.RepurchaseStat{}
	for _, info := range models.Categories {
		var yes, no, maybe int
		for _, p := range products {
			if p.Category == info.Category {
				yes += p.RepurchaseYes
				no += p.RepurchaseNo
				maybe += p.RepurchaseMaybe
			}
		}
		total := float64(yes + no + maybe)
		if total == 0 {
			continue
		}
		stats = append(stats, models.RepurchaseStat{
			Category: info.Category,
			YesPct:   round2(float64(yes) / total * 100),
			MaybePct: round2(float64(maybe) / total * 100),
			NoPct:    round2(float64(no) / total * 100),
		})
	}
	return stats
}

func (s *InsightService) Print(r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 SKINCARE CATALOG INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total products : \033[1m%d\033[0m\n", r.TotalProducts)
	fmt.Printf("  Brands         : \033[1m%d\033[0m\n", r.TotalBrands)
	fmt.Printf("  Total reviews  : \033[1m%d\033[0m\n", r.TotalReviews)
	fmt.Printf("  Average rating : \033[1m%.2f ★\033[0m\n", r.AverageRating)
	fmt.Println()

	if r.TotalProducts == 0 {
		fmt.Printf("  No products loaded\n")
		fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	// Price Stats
	fmt.Printf("\033[1;33m  Price Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Average price : \033[1;32m%s\033[0m\n", s.rupiah(r.AveragePrice))
	fmt.Printf("  Minimum price : \033[1;32m%s\033[0m\n", s.rupiah(r.MinPrice))
	fmt.Printf("  Maximum price : \033[1;32m%s\033[0m\n", s.rupiah(r.MaxPrice))
	fmt.Println()

	if r.MostExpensive != nil {
		fmt.Printf("\033[1;33m  Most Expensive Product\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s\n", truncate(r.MostExpensive.ProductName, 50))
		fmt.Printf("  Brand : %s\n", r.MostExpensive.Brand)
		fmt.Printf("  Price : \033[1;31m%s\033[0m\n", r.MostExpensive.PriceDisplay)
		fmt.Println()
	}

	fmt.Printf("\033[1;33m  Top 5 Highest Rated Products\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Printf("  No rated products found\n")
	} else {
		for i, p := range r.TopRated {
			fmt.Printf("  \033[1m%d.\033[0m %-40s \033[1;32m%.1f ★\033[0m\n",
				i+1, truncate(p.ProductName, 38), p.Rating)
		}
	}
	fmt.Println()

	// Rating distribution, lowest rating first
	fmt.Printf("\033[1;33m  Rating Distribution\033[0m\n")
	fmt.Printf("  %s\n", thin)
	ratings := make([]string, 0, len(r.RatingDistribution))
	for k := range r.RatingDistribution {
		ratings = append(ratings, k)
	}
	sort.Strings(ratings)
	for _, k := range ratings {
		cnt := r.RatingDistribution[k]
		fmt.Printf("  %-6s %s (%d)\n", k, strings.Repeat("█", barLength(cnt, r.TotalProducts)), cnt)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top Brands by Reviews\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for i, b := range r.TopBrands {
		fmt.Printf("  %2d. %-28s %8d reviews  %.2f ★  (%d)\n",
			i+1, truncate(b.Brand, 28), b.TotalReviews, b.AverageRating, b.ProductCount)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Categories\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, c := range r.Categories {
		fmt.Printf("  %-12s %4d products  %.2f ± %.2f ★  avg %s\n",
			c.Category, c.Count, c.AverageRating, c.RatingStdDev, s.rupiah(c.AveragePrice))
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Price Ranges\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, b := range r.PriceBands {
		fmt.Printf("  %-15s %4d products  %.2f ★  %.0f reviews\n",
			b.Label, b.Count, b.AverageRating, b.AverageReviews)
	}
	fmt.Println()

	if len(r.Repurchase) > 0 {
		fmt.Printf("\033[1;33m  Repurchase Intent\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, rp := range r.Repurchase {
			fmt.Printf("  %-12s yes %5.1f%%  maybe %5.1f%%  no %5.1f%%\n",
				rp.Category, rp.YesPct, rp.MaybePct, rp.NoPct)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func (s *InsightService) rupiah(price float64) string {
	return fmt.Sprintf("Rp %.0f", price*s.priceUnit)
}

// barLength scales a count to at most 30 blocks.
func barLength(count, total int) int {
	if total == 0 {
		return 0
	}
	n := count * 30 / total
	if n == 0 && count > 0 {
		n = 1
	}
	return n
}

// quantile reads the q-th quantile of sorted values with linear interpolation.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// sampleStdDev uses n-1 degrees of freedom; a single value has no spread.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
