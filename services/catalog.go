package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

var ErrNoData = errors.New("no category data could be loaded")

// CategoryReader reads the raw rows of one category source.
type CategoryReader interface {
	ReadCategory(info models.CategoryInfo) ([]models.RawProduct, error)
}

// LoadFunc produces a fresh, enhanced product list.
type LoadFunc func(ctx context.Context) ([]models.Product, error)

// LoadProducts reads every category concurrently, then cleans and enhances the
// combined rows. A category that fails to read is logged and skipped; only
// when none can be read does it return ErrNoData.
func LoadProducts(ctx context.Context, reader CategoryReader, cleaner *Cleaner, enhancer *Enhancer, logger *utils.Logger) ([]models.Product, error) {
	batches := make([][]models.RawProduct, len(models.Categories))
	failures := make([]error, len(models.Categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, info := range models.Categories {
		i, info := i, info
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, err := reader.ReadCategory(info)
			if err != nil {
				logger.Warn("[loader] Skipping %s: %v", info.Category, err)
				failures[i] = err
				return nil
			}
			batches[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	var raw []models.RawProduct
	loaded := 0
	for i, rows := range batches {
		if failures[i] != nil {
			continue
		}
		loaded++
		raw = append(raw, rows...)
	}
	if loaded == 0 {
		return nil, fmt.Errorf("loader: %w: %w", ErrNoData, errors.Join(failures...))
	}
	logger.Info("[loader] Loaded %d raw products from %d/%d categories", len(raw), loaded, len(models.Categories))

	return enhancer.EnhanceAll(cleaner.Clean(raw)), nil
}

// Catalog caches the loaded product list for ttl. Callers always receive deep
// copies, so the cached snapshot is never mutated.
type Catalog struct {
	load   LoadFunc
	ttl    time.Duration
	now    func() time.Time
	logger *utils.Logger

	mu         sync.Mutex
	products   []models.Product
	loadedAt   time.Time
	snapshotID string
}

func NewCatalog(load LoadFunc, ttl time.Duration, logger *utils.Logger) *Catalog {
	return &Catalog{load: load, ttl: ttl, now: time.Now, logger: logger}
}

// Get returns the cached products, reloading them once the TTL has elapsed.
// If a refresh fails the stale snapshot is served; with no snapshot the error is returned.
func (c *Catalog) Get(ctx context.Context) ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.products == nil || c.now().Sub(c.loadedAt) >= c.ttl {
		if err := c.reloadLocked(ctx); err != nil {
			if c.products == nil {
				return nil, err
			}
			c.logger.Warn("[catalog] Refresh failed, serving snapshot %s: %v", c.snapshotID, err)
		}
	}
	return models.CloneProducts(c.products), nil
}

// Reload discards the cached snapshot and loads a new one.
func (c *Catalog) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloadLocked(ctx)
}

func (c *Catalog) reloadLocked(ctx context.Context) error {
	products, err := c.load(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	c.products = products
	c.loadedAt = c.now()
	c.snapshotID = uuid.NewString()
	c.logger.Info("[catalog] Snapshot %s: %d products", c.snapshotID, len(products))
	return nil
}

// SnapshotID identifies the currently cached product list; it changes on every load.
func (c *Catalog) SnapshotID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotID
}

// Brands returns the sorted distinct brands, optionally limited to one category.
func (c *Catalog) Brands(ctx context.Context, category string) ([]string, error) {
	products, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	products = NewFilter(1, c.logger).Apply(products, FilterOptions{Category: category})

	seen := make(map[string]struct{})
	var brands []string
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; !ok {
			seen[p.Brand] = struct{}{}
			brands = append(brands, p.Brand)
		}
	}
	sort.Strings(brands)
	return brands, nil
}

// ProductsByBrand returns a brand's products sorted by name, optionally limited to one category.
func (c *Catalog) ProductsByBrand(ctx context.Context, brand, category string) ([]models.Product, error) {
	products, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := NewFilter(1, c.logger).Apply(products, FilterOptions{Category: category, Brand: brand})
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].ProductName) < strings.ToLower(out[j].ProductName)
	})
	return out, nil
}

// Find looks a product up by name and optional brand.
func (c *Catalog) Find(ctx context.Context, name, brand string) (models.Product, error) {
	products, err := c.Get(ctx)
	if err != nil {
		return models.Product{}, err
	}
	return FindProduct(products, name, brand)
}
