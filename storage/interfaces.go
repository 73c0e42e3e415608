package storage

import "github.com/yulvianiputeri/sociolla-skincare-recommender/models"

// SnapshotStore is the interface any catalog snapshot backend must satisfy.
// Write replaces the stored catalog with products stamped with snapshotID.
type SnapshotStore interface {
	Write(snapshotID string, products []models.Product) error
	FetchAll() ([]models.Product, error)
	Close() error
}

// RawProductWriter is the interface for persisting unprocessed scraped data.
type RawProductWriter interface {
	WriteRaw(products []models.RawProduct) error
	Close() error
}
