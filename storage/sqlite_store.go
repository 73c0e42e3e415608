package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
)

// productRecord is the SQLite row for one product. Label sets are stored as
// JSON objects mapping each label to its position, so order survives a round trip.
type productRecord struct {
	ID              uint   `gorm:"primaryKey"`
	SnapshotID      string `gorm:"index;size:36"`
	ProductID       int    `gorm:"index"`
	Brand           string `gorm:"index"`
	ProductName     string
	Category        string `gorm:"index"`
	Price           float64
	PriceDisplay    string
	Rating          float64
	NumberOfReviews int
	RepurchaseYes   int
	RepurchaseNo    int
	RepurchaseMaybe int
	RepurchaseRate  float64
	SkinTypes       datatypes.JSONMap
	Concerns        datatypes.JSONMap
	Ingredients     datatypes.JSONMap
	CreatedAt       time.Time
}

func (productRecord) TableName() string { return "products" }

// SQLiteStore keeps the latest catalog snapshot in a local SQLite file.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and migrates it.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.AutoMigrate(&productRecord{}); err != nil {
		return nil, fmt.Errorf("sqlite: auto migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Write replaces the stored catalog with one snapshot in a single transaction.
func (s *SQLiteStore) Write(snapshotID string, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	records := make([]productRecord, len(products))
	for i, p := range products {
		records[i] = productRecord{
			SnapshotID:      snapshotID,
			ProductID:       p.ID,
			Brand:           p.Brand,
			ProductName:     p.ProductName,
			Category:        string(p.Category),
			Price:           p.Price,
			PriceDisplay:    p.PriceDisplay,
			Rating:          p.Rating,
			NumberOfReviews: p.NumberOfReviews,
			RepurchaseYes:   p.RepurchaseYes,
			RepurchaseNo:    p.RepurchaseNo,
			RepurchaseMaybe: p.RepurchaseMaybe,
			RepurchaseRate:  p.RepurchaseRate,
			SkinTypes:       toLabelMap(p.SuitableSkinTypes),
			Concerns:        toLabelMap(p.TargetsSkinConcerns),
			Ingredients:     toLabelMap(p.KeyIngredients),
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&productRecord{}).Error; err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		if err := tx.CreateInBatches(records, 100).Error; err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: write snapshot %s: %w", snapshotID, err)
	}
	return nil
}

// FetchAll retrieves the stored catalog in product order.
func (s *SQLiteStore) FetchAll() ([]models.Product, error) {
	var records []productRecord
	if err := s.db.Order("product_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}

	products := make([]models.Product, len(records))
	for i, r := range records {
		products[i] = models.Product{
			ID:                  r.ProductID,
			Brand:               r.Brand,
			ProductName:         r.ProductName,
			Category:            models.Category(r.Category),
			Price:               r.Price,
			PriceDisplay:        r.PriceDisplay,
			Rating:              r.Rating,
			NumberOfReviews:     r.NumberOfReviews,
			RepurchaseYes:       r.RepurchaseYes,
			RepurchaseNo:        r.RepurchaseNo,
			RepurchaseMaybe:     r.RepurchaseMaybe,
			RepurchaseRate:      r.RepurchaseRate,
			SuitableSkinTypes:   fromLabelMap(r.SkinTypes),
			TargetsSkinConcerns: fromLabelMap(r.Concerns),
			KeyIngredients:      fromLabelMap(r.Ingredients),
		}
	}
	return products, nil
}

// SnapshotID returns the snapshot currently stored, or "" when empty.
func (s *SQLiteStore) SnapshotID() (string, error) {
	var ids []string
	if err := s.db.Model(&productRecord{}).Distinct().Limit(1).Pluck("snapshot_id", &ids).Error; err != nil {
		return "", fmt.Errorf("sqlite: snapshot id: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sqlite: get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("sqlite: close db: %w", err)
	}
	return nil
}

func toLabelMap(labels []string) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	for i, l := range labels {
		m[l] = i
	}
	return m
}

func fromLabelMap(m datatypes.JSONMap) []string {
	if len(m) == 0 {
		return nil
	}
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sort.SliceStable(labels, func(i, j int) bool {
		pi, pj := position(m[labels[i]]), position(m[labels[j]])
		if pi != pj {
			return pi < pj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// position reads a label index back. Values scanned from the database arrive as
// json.Number; maps built in memory hold ints.
func position(v interface{}) float64 {
	switch n := v.(type) {
	case json.Number:
		f, _ := n.Float64()
		return f
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
