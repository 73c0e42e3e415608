package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/config"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/rules"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/scraper/sociolla"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/services"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/storage"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

type cliOptions struct {
	product     string
	brand       string
	n           int
	method      string
	skinType    string
	concerns    string
	avoid       string
	prefer      string
	filterPrefs bool
	category    string
	filterBrand string
	minPrice    float64
	maxPrice    float64
	insights    bool
	scrape      bool
	asJSON      bool
}

func parseFlags() cliOptions {
	var o cliOptions
	flag.StringVar(&o.product, "product", "", "product name to base recommendations on")
	flag.StringVar(&o.brand, "brand", "", "brand of -product, to disambiguate")
	flag.IntVar(&o.n, "n", 0, "number of recommendations (default from DEFAULT_RECOMMENDATIONS)")
	flag.StringVar(&o.method, "method", string(models.MethodHybrid), "hybrid, similarity or content_based")
	flag.StringVar(&o.skinType, "skin-type", "", "preferred skin type, e.g. Oily")
	flag.StringVar(&o.concerns, "concerns", "", "comma-separated skin concerns")
	flag.StringVar(&o.avoid, "avoid", "", "comma-separated ingredients to avoid")
	flag.StringVar(&o.prefer, "prefer", "", "comma-separated preferred ingredients")
	flag.BoolVar(&o.filterPrefs, "filter-prefs", false, "filter the catalog listing by preferences")
	flag.StringVar(&o.category, "category", "", "category filter for the catalog listing")
	flag.StringVar(&o.filterBrand, "filter-brand", "", "brand filter for the catalog listing")
	flag.Float64Var(&o.minPrice, "min-price", 0, "minimum price in Rupiah")
	flag.Float64Var(&o.maxPrice, "max-price", 0, "maximum price in Rupiah (0 = no limit)")
	flag.BoolVar(&o.insights, "insights", false, "print catalog insights")
	flag.BoolVar(&o.scrape, "scrape", false, "scrape fresh category data before loading")
	flag.BoolVar(&o.asJSON, "json", false, "write results as JSON")
	flag.Parse()
	return o
}

func (o cliOptions) preferences() models.Preferences {
	return models.Preferences{
		SkinType:             strings.TrimSpace(o.skinType),
		SkinConcerns:         models.ParseList(o.concerns),
		AvoidIngredients:     models.ParseList(o.avoid),
		PreferredIngredients: models.ParseList(o.prefer),
	}
}

func (o cliOptions) wantsListing() bool {
	return o.category != "" || o.filterBrand != "" || o.minPrice > 0 || o.maxPrice > 0 || o.filterPrefs
}

func main() {
	opts := parseFlags()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		utils.NewLogger().Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	logger := utils.NewLoggerWithOptions(utils.LoggerOptions{Level: cfg.LogLevel, Format: cfg.LogFormat})

	logger.Info("=== Skincare Recommender starting ===")
	logger.Info("Config: data: %s | store: %s | ttl: %v | price unit: %.0f",
		cfg.DataDir, cfg.StoreDriver, cfg.CacheTTL, cfg.PriceUnit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts cliOptions, logger *utils.Logger) error {
	prefs := opts.preferences()
	if err := prefs.Validate(); err != nil {
		return err
	}
	method := models.Method(opts.method)
	if !method.Valid() {
		return fmt.Errorf("unknown method %q", opts.method)
	}

	table, err := rules.LoadFile(cfg.RulesFile)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	dataDir := cfg.DataDir
	if cfg.ScrapeEnabled || opts.scrape {
		if err := scrapeAll(ctx, cfg, logger); err != nil {
			return err
		}
		dataDir = cfg.RawOutputDir
	}

	sep := []rune(cfg.CSVSeparator)[0]
	reader := storage.NewCSVReader(dataDir, sep, logger)
	cleaner := services.NewCleaner(logger)
	enhancer := services.NewEnhancer(table, logger)
	catalog := services.NewCatalog(func(ctx context.Context) ([]models.Product, error) {
		return services.LoadProducts(ctx, reader, cleaner, enhancer, logger)
	}, cfg.CacheTTL, logger)

	products, err := catalog.Get(ctx)
	if err != nil {
		return err
	}
	logger.Info("Catalog ready: %d products (snapshot %s)", len(products), catalog.SnapshotID())

	persistSnapshot(cfg, catalog.SnapshotID(), products, logger)

	if opts.insights {
		svc := services.NewInsightService(cfg.PriceUnit, logger)
		report := svc.Generate(products)
		if opts.asJSON {
			if err := writeJSON(report); err != nil {
				return err
			}
		} else {
			svc.Print(report)
		}
	}

	if opts.wantsListing() {
		filterOpts := services.FilterOptions{
			Category:            opts.category,
			Brand:               opts.filterBrand,
			Preferences:         &prefs,
			FilterByPreferences: opts.filterPrefs,
		}
		if opts.minPrice > 0 || opts.maxPrice > 0 {
			hi := opts.maxPrice
			if hi <= 0 {
				hi = math.Inf(1)
			}
			filterOpts.PriceRange = &services.PriceRange{Min: opts.minPrice, Max: hi}
		}
		listed := services.NewFilter(cfg.PriceUnit, logger).Apply(products, filterOpts)
		if opts.asJSON {
			if err := writeJSON(listed); err != nil {
				return err
			}
		} else {
			printProducts(listed)
		}
	}

	if opts.product != "" {
		rec := services.NewRecommender(services.SimilarityWeights{
			Rating:  cfg.SimilarityRatingWeight,
			Reviews: cfg.SimilarityReviewWeight,
		}, cfg.DefaultResults, logger)

		req := services.Request{ProductName: opts.product, Brand: opts.brand, N: opts.n, Method: method}
		if !prefs.IsEmpty() {
			req.Preferences = &prefs
		}
		recs := rec.Recommend(products, req)
		if opts.asJSON {
			return writeJSON(recs)
		}
		printRecommendations(opts.product, prefs, recs)
	}

	return nil
}

// scrapeAll refreshes every category's raw CSV under RawOutputDir.
func scrapeAll(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	scraper := sociolla.New(cfg, logger)
	sep := []rune(cfg.CSVSeparator)[0]

	written := 0
	for _, info := range models.Categories {
		raw, err := scraper.Scrape(ctx, info)
		if errors.Is(err, context.Canceled) {
			return err
		}
		if err != nil {
			logger.Error("Scrape of %s failed: %v", info.Category, err)
		}
		if len(raw) == 0 {
			logger.Warn("No %s products scraped, keeping previous file", info.Category)
			continue
		}

		path := filepath.Join(cfg.RawOutputDir, info.File)
		w, err := storage.NewCSVWriter(path, sep)
		if err != nil {
			return fmt.Errorf("create raw csv: %w", err)
		}
		if err := w.WriteRaw(raw); err != nil {
			w.Close()
			return fmt.Errorf("write raw csv %s: %w", path, err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close raw csv %s: %w", path, err)
		}
		logger.Info("Raw %s products saved to %s", info.Category, path)
		written++
	}

	if written == 0 {
		return errors.New("scrape produced no data")
	}
	return nil
}

// errNoStore means STORE_DRIVER is none and snapshots are not persisted.
var errNoStore = errors.New("no snapshot store configured")

func openStore(cfg *config.Config) (storage.SnapshotStore, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		return storage.NewPostgresWriter(cfg.DSN())
	case config.StoreSQLite:
		return storage.NewSQLiteStore(cfg.SQLitePath)
	}
	return nil, errNoStore
}

// persistSnapshot stores the loaded catalog; a store failure never stops the query.
func persistSnapshot(cfg *config.Config, snapshotID string, products []models.Product, logger *utils.Logger) {
	store, err := openStore(cfg)
	if errors.Is(err, errNoStore) {
		logger.Debug("Snapshot %s not persisted: %v", snapshotID, err)
		return
	}
	if err != nil {
		logger.Error("Failed to open %s store: %v", cfg.StoreDriver, err)
		return
	}
	defer store.Close()

	if err := store.Write(snapshotID, products); err != nil {
		logger.Error("Snapshot write failed: %v", err)
		return
	}
	logger.Info("Snapshot %s stored in %s", snapshotID, cfg.StoreDriver)
}

func writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printProducts(products []models.Product) {
	thin := strings.Repeat("─", 54)
	fmt.Printf("\n\033[1;33m  Products (%d)\033[0m\n", len(products))
	fmt.Printf("  %s\n", thin)
	if len(products) == 0 {
		fmt.Printf("  No products match the filters\n\n")
		return
	}
	for _, p := range products {
		fmt.Printf("  \033[1m%s\033[0m %s\n", p.Brand, p.ProductName)
		fmt.Printf("    %s | %.1f ★ | %d reviews | %s\n", p.PriceDisplay, p.Rating, p.NumberOfReviews, p.Category)
		fmt.Printf("    Skin: %s\n", p.SkinTypesLabel())
	}
	fmt.Println()
}

func printRecommendations(product string, prefs models.Preferences, recs []models.Recommendation) {
	thin := strings.Repeat("─", 54)
	fmt.Printf("\n\033[1;33m  Recommendations for %q\033[0m\n", product)
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %s\n", prefs.Summary())
	if len(recs) == 0 {
		fmt.Printf("  No recommendations found\n\n")
		return
	}
	for _, r := range recs {
		fmt.Printf("  \033[1m%d.\033[0m %s %s  \033[1;32m%.3f\033[0m (%s)\n",
			r.Rank, r.Product.Brand, r.Product.ProductName, r.Score, r.Method)
		fmt.Printf("     %s | %.1f ★ | %d reviews\n", r.Product.PriceDisplay, r.Product.Rating, r.Product.NumberOfReviews)
		for _, e := range r.Explanation {
			fmt.Printf("     ✓ %s\n", e)
		}
	}
	fmt.Println()
}
