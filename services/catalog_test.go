package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
)

// stubReader serves canned rows per category and fails the rest.
type stubReader struct {
	mu    sync.Mutex
	rows  map[models.Category][]models.RawProduct
	calls int
}

func (s *stubReader) ReadCategory(info models.CategoryInfo) ([]models.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	rows, ok := s.rows[info.Category]
	if !ok {
		return nil, errors.New("file not found: " + info.File)
	}
	out := make([]models.RawProduct, len(rows))
	for i, r := range rows {
		r.Category = info.Category
		out[i] = r
	}
	return out, nil
}

func TestLoadProductsSkipsFailedCategories(t *testing.T) {
	reader := &stubReader{rows: map[models.Category][]models.RawProduct{
		models.CategoryCleanser: {
			{Brand: "A", ProductName: "Acne Foam", Price: "Rp 10", Rating: "4.0"},
			{Brand: "B", ProductName: "Hydrating Gel", Price: "", Rating: "050"},
		},
		models.CategoryMask: {
			{Brand: "C", ProductName: "Clay Mask", Price: "Rp 30", Rating: ""},
		},
	}}

	products, err := LoadProducts(context.Background(), reader, NewCleaner(newTestLogger()), newTestEnhancer(t), newTestLogger())
	if err != nil {
		t.Fatalf("LoadProducts: %v", err)
	}
	if reader.calls != len(models.Categories) {
		t.Errorf("reader called %d times; want %d", reader.calls, len(models.Categories))
	}
	if len(products) != 3 {
		t.Fatalf("got %d products; want 3", len(products))
	}

	// rows keep category order: cleanser first, then mask
	if products[0].Category != models.CategoryCleanser || products[2].Category != models.CategoryMask {
		t.Errorf("unexpected category order: %q, %q", products[0].Category, products[2].Category)
	}
	// median is taken across categories
	if products[1].Price != 20 {
		t.Errorf("filled price = %v; want 20", products[1].Price)
	}
	if !reflect.DeepEqual(products[0].SuitableSkinTypes, []string{"Oily"}) {
		t.Errorf("products not enhanced: %v", products[0].SuitableSkinTypes)
	}
}

func TestLoadProductsNoData(t *testing.T) {
	reader := &stubReader{rows: map[models.Category][]models.RawProduct{}}
	_, err := LoadProducts(context.Background(), reader, NewCleaner(newTestLogger()), newTestEnhancer(t), newTestLogger())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v; want ErrNoData", err)
	}
}

func TestLoadProductsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &stubReader{rows: map[models.Category][]models.RawProduct{models.CategoryMask: {{Brand: "C"}}}}
	_, err := LoadProducts(ctx, reader, NewCleaner(newTestLogger()), newTestEnhancer(t), newTestLogger())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v; want context.Canceled", err)
	}
}

// fakeClock is advanced manually by tests.
type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newCountingCatalog(ttl time.Duration, products []models.Product) (*Catalog, *int, *fakeClock) {
	loads := 0
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCatalog(func(context.Context) ([]models.Product, error) {
		loads++
		return models.CloneProducts(products), nil
	}, ttl, newTestLogger())
	c.now = clock.Now
	return c, &loads, clock
}

func TestCatalogCachesUntilTTL(t *testing.T) {
	c, loads, clock := newCountingCatalog(time.Hour, cleanserScenario())
	ctx := context.Background()

	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	first := c.SnapshotID()
	clock.t = clock.t.Add(59 * time.Minute)
	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if *loads != 1 {
		t.Errorf("loads within TTL = %d; want 1", *loads)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	if *loads != 2 {
		t.Errorf("loads after TTL = %d; want 2", *loads)
	}
	if c.SnapshotID() == first {
		t.Error("snapshot id should change on reload")
	}

	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if *loads != 3 {
		t.Errorf("loads after Reload = %d; want 3", *loads)
	}
}

func TestCatalogCopyOnRead(t *testing.T) {
	products := cleanserScenario()
	products[0].SuitableSkinTypes = []string{"Oily"}
	c, _, _ := newCountingCatalog(time.Hour, products)
	ctx := context.Background()

	got, _ := c.Get(ctx)
	got[0].Brand = "Mutated"
	got[0].SuitableSkinTypes[0] = "Mutated"

	again, _ := c.Get(ctx)
	if again[0].Brand != "Brand A" || again[0].SuitableSkinTypes[0] != "Oily" {
		t.Errorf("cached snapshot was mutated: %+v", again[0])
	}
}

func TestCatalogServesStaleOnRefreshFailure(t *testing.T) {
	fail := false
	clock := &fakeClock{t: time.Now()}
	c := NewCatalog(func(context.Context) ([]models.Product, error) {
		if fail {
			return nil, ErrNoData
		}
		return cleanserScenario(), nil
	}, time.Minute, newTestLogger())
	c.now = clock.Now
	ctx := context.Background()

	if _, err := c.Get(ctx); err != nil {
		t.Fatal(err)
	}
	fail = true
	clock.t = clock.t.Add(time.Hour)
	got, err := c.Get(ctx)
	if err != nil || len(got) != len(cleanserScenario()) {
		t.Errorf("Get after failed refresh = %d products, %v; want stale snapshot", len(got), err)
	}
	if err := c.Reload(ctx); !errors.Is(err, ErrNoData) {
		t.Errorf("Reload err = %v; want ErrNoData", err)
	}
}

func TestCatalogInitialLoadFailure(t *testing.T) {
	c := NewCatalog(func(context.Context) ([]models.Product, error) { return nil, ErrNoData }, time.Minute, newTestLogger())
	if _, err := c.Get(context.Background()); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v; want ErrNoData", err)
	}
}

func TestCatalogLookups(t *testing.T) {
	c, _, _ := newCountingCatalog(time.Hour, cleanserScenario())
	ctx := context.Background()

	brands, err := c.Brands(ctx, "Cleanser")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Brand A", "Brand B", "Brand C"}; !reflect.DeepEqual(brands, want) {
		t.Errorf("Brands(Cleanser) = %v; want %v", brands, want)
	}
	all, _ := c.Brands(ctx, models.FilterAll)
	if len(all) != 4 {
		t.Errorf("Brands(All) = %v; want 4 brands", all)
	}

	byBrand, err := c.ProductsByBrand(ctx, "Brand A", "")
	if err != nil {
		t.Fatal(err)
	}
	if ids := ids(byBrand); !reflect.DeepEqual(ids, []int{4, 1}) {
		t.Errorf("ProductsByBrand(Brand A) = %v; want [4 1] sorted by name", ids)
	}

	p, err := c.Find(ctx, "C Milk", "")
	if err != nil || p.ID != 3 {
		t.Errorf("Find(C Milk) = %d, %v", p.ID, err)
	}
	if _, err := c.Find(ctx, "missing", ""); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("Find(missing) err = %v; want ErrProductNotFound", err)
	}
}
