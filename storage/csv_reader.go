package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
	"github.com/yulvianiputeri/sociolla-skincare-recommender/utils"
)

// rawColumns is the column layout of a category source file. Only brand and
// product_name are required; missing columns read as "".
var rawColumns = []string{
	"brand", "product_name", "price", "rating", "number_of_reviews",
	"repurchase_yes", "repurchase_no", "repurchase_maybe", "url",
}

// CSVReader reads per-category source files from one directory.
type CSVReader struct {
	dir    string
	sep    rune
	logger *utils.Logger
}

// NewCSVReader creates a reader for files under dir separated by sep.
func NewCSVReader(dir string, sep rune, logger *utils.Logger) *CSVReader {
	if sep == 0 {
		sep = ';'
	}
	return &CSVReader{dir: dir, sep: sep, logger: logger}
}

// ReadCategory reads the source file for info. Every row is tagged with the
// category; malformed rows are skipped.
func (r *CSVReader) ReadCategory(info models.CategoryInfo) ([]models.RawProduct, error) {
	path := filepath.Join(r.dir, info.File)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	products, skipped, err := r.decode(f, info.Category)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if skipped > 0 {
		r.logger.Warn("[csv] %s: skipped %d malformed rows", info.File, skipped)
	}
	r.logger.Debug("[csv] %s: read %d rows", info.File, len(products))
	return products, nil
}

func (r *CSVReader) decode(src io.Reader, category models.Category) ([]models.RawProduct, int, error) {
	cr := csv.NewReader(src)
	cr.Comma = r.sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		// a UTF-8 BOM ends up glued to the first header cell
		h = strings.TrimPrefix(h, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"brand", "product_name"} {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", col)
		}
	}

	var (
		products []models.RawProduct
		skipped  int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, err
		}
		if len(rec) != len(header) {
			skipped++
			continue
		}

		get := func(col string) string {
			if i, ok := index[col]; ok {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		products = append(products, models.RawProduct{
			Category:        category,
			Brand:           get("brand"),
			ProductName:     get("product_name"),
			Price:           get("price"),
			Rating:          get("rating"),
			NumberOfReviews: get("number_of_reviews"),
			RepurchaseYes:   get("repurchase_yes"),
			RepurchaseNo:    get("repurchase_no"),
			RepurchaseMaybe: get("repurchase_maybe"),
			URL:             get("url"),
		})
	}
	return products, skipped, nil
}
