package sociolla

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/config"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

// categoryPaths maps each category to its listing path on the store.
var categoryPaths = map[models.Category]string{
	models.CategoryCleanser:    "/skin-care/cleanser",
	models.CategoryMask:        "/skin-care/mask",
	models.CategoryMoisturizer: "/skin-care/moisturizer",
	models.CategorySunscreen:   "/skin-care/sun-care",
	models.CategoryTreatment:   "/skin-care/treatment",
}

// Scraper collects raw product rows from the Sociolla category listings.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	visited *utils.KeySet
	retry   *utils.RetryConfig
}

// New creates a ready-to-use Sociolla Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		visited: utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// card is the listing data extracted from one product tile.
type card struct {
	Brand   string `json:"brand"`
	Name    string `json:"name"`
	Price   string `json:"price"`
	Rating  string `json:"rating"`
	Reviews string `json:"reviews"`
	URL     string `json:"url"`
}

// repurchase holds the vote labels read from a product page, e.g. "Yes (87)".
type repurchase struct {
	Yes   string `json:"yes"`
	No    string `json:"no"`
	Maybe string `json:"maybe"`
}

// Scrape walks the listing pages of one category and then visits each product
// page for its repurchase votes.
func (s *Scraper) Scrape(ctx context.Context, info models.CategoryInfo) ([]models.RawProduct, error) {
	if _, ok := categoryPaths[info.Category]; !ok {
		return nil, fmt.Errorf("sociolla: no listing path for category %q", info.Category)
	}
	s.logger.Info("[sociolla] Starting %s scrape, target: %d pages", info.Category, s.cfg.PagesToScrape)

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[sociolla] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var products []models.RawProduct
	for page := 1; page <= s.cfg.PagesToScrape; page++ {
		pageURL, err := listingURL(s.cfg.ScrapeBaseURL, info.Category, page)
		if err != nil {
			return products, err
		}
		s.logger.Info("[sociolla] Scraping %s page %d: %s", info.Category, page, pageURL)

		cards, err := s.scrapePage(browserCtx, pageURL)
		if err != nil {
			s.logger.Error("[sociolla] %s page %d failed: %v", info.Category, page, err)
			break
		}

		now := time.Now()
		fresh := 0
		for _, c := range cards {
			if c.URL == "" || !s.visited.Add(c.URL) {
				continue
			}
			products = append(products, toRawProduct(c, info.Category, now))
			fresh++
		}
		if fresh == 0 {
			s.logger.Warn("[sociolla] %s page %d returned no new products, stopping", info.Category, page)
			break
		}
		s.logger.Info("[sociolla] %s page %d done, %d products so far", info.Category, page, len(products))

		if err := pause(ctx, time.Duration(s.cfg.RateLimitMs)*time.Millisecond); err != nil {
			return products, err
		}
	}

	s.enrichProducts(browserCtx, products)

	s.logger.Info("[sociolla] %s scrape complete, total raw products: %d", info.Category, len(products))
	return products, ctx.Err()
}

// scrapePage loads one listing page and extracts its product tiles.
func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string) ([]card, error) {
	var cards []card

	err := s.retry.Do(browserCtx, "listing-page", func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(5*time.Second),

			// Scroll to trigger lazy-loaded tiles
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var tiles = document.querySelectorAll('[class*="product-item"], [class*="ProductCard"], div[itemtype*="Product"]');
					var text = function(root, selectors) {
						for (var i = 0; i < selectors.length; i++) {
							var el = root.querySelector(selectors[i]);
							if (el && el.innerText) return el.innerText.trim();
						}
						return '';
					};
					for (var i = 0; i < tiles.length; i++) {
						var tile = tiles[i];
						var link = tile.querySelector('a[href]');
						results.push({
							brand:   text(tile, ['[class*="brand"]', '[itemprop="brand"]']),
							name:    text(tile, ['[class*="product-name"]', '[class*="name"]', '[itemprop="name"]']),
							price:   text(tile, ['[class*="price"]', '[itemprop="price"]']),
							rating:  text(tile, ['[class*="rating-value"]', '[class*="rating"]']),
							reviews: text(tile, ['[class*="review"]', '[class*="total-rating"]']),
							url:     link ? link.href : ''
						});
					}
					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp listing scrape: %w", err)
		}
		return nil
	})

	return cards, err
}

// enrichProducts fills in repurchase votes from each product page.
func (s *Scraper) enrichProducts(browserCtx context.Context, products []models.RawProduct) {
	for i := range products {
		p := &products[i]
		s.pool.Submit(func() {
			votes, err := s.scrapeDetailPage(browserCtx, p.URL)
			if err != nil {
				s.logger.Warn("[sociolla] Detail page failed for %s: %v", p.URL, err)
				return
			}
			p.RepurchaseYes = votes.Yes
			p.RepurchaseNo = votes.No
			p.RepurchaseMaybe = votes.Maybe
			s.logger.Debug("[sociolla] Enriched: %s", p.ProductName)
		})
	}
	s.pool.Wait()
}

// scrapeDetailPage reads the "would you repurchase" vote labels of one product.
func (s *Scraper) scrapeDetailPage(browserCtx context.Context, productURL string) (repurchase, error) {
	var votes repurchase

	err := s.retry.Do(browserCtx, "detail-page", func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
		defer cancelTimeout()

		err := chromedp.Run(ctx,
			chromedp.Navigate(productURL),
			chromedp.Sleep(4*time.Second),
			chromedp.Evaluate(`
				(function() {
					var result = {yes: '', no: '', maybe: ''};
					var nodes = document.querySelectorAll('[class*="repurchase"] *, [class*="Repurchase"] *');
					for (var i = 0; i < nodes.length; i++) {
						var t = (nodes[i].innerText || '').trim();
						if (nodes[i].children.length > 0 || !t) continue;
						if (/^yes\b/i.test(t) && !result.yes) result.yes = t;
						else if (/^no\b/i.test(t) && !result.no) result.no = t;
						else if (/^maybe\b/i.test(t) && !result.maybe) result.maybe = t;
					}
					return result;
				})()
			`, &votes),
		)
		if err != nil {
			return fmt.Errorf("chromedp detail extract: %w", err)
		}
		return nil
	})

	return votes, err
}

// pause waits d between pages, returning early when ctx is cancelled.
func pause(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// listingURL builds the URL of one listing page of a category.
func listingURL(baseURL string, category models.Category, page int) (string, error) {
	path, ok := categoryPaths[category]
	if !ok {
		return "", fmt.Errorf("sociolla: no listing path for category %q", category)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return "", fmt.Errorf("sociolla: parse base url: %w", err)
	}
	if page > 1 {
		q := u.Query()
		q.Set("page", fmt.Sprint(page))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func toRawProduct(c card, category models.Category, scrapedAt time.Time) models.RawProduct {
	return models.RawProduct{
		Category:        category,
		Brand:           collapseSpace(c.Brand),
		ProductName:     collapseSpace(c.Name),
		Price:           collapseSpace(c.Price),
		Rating:          collapseSpace(c.Rating),
		NumberOfReviews: strings.Trim(collapseSpace(c.Reviews), "()"),
		URL:             strings.TrimSpace(c.URL),
		ScrapedAt:       scrapedAt,
	}
}

// collapseSpace joins multi-line tile text into a single line.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// findChromeBinary locates a Chrome/Chromium binary, preferring the configured one.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
