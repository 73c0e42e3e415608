package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
)

// productColumns is the insert column order used by buildInsert.
var productColumns = []string{
	"snapshot_id", "product_id", "brand", "product_name", "category",
	"price", "price_display", "rating", "number_of_reviews",
	"repurchase_yes", "repurchase_no", "repurchase_maybe", "repurchase_rate",
	"suitable_skin_types", "targets_skin_concerns", "key_ingredients",
}

// PostgresWriter persists enhanced catalog snapshots to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id                    SERIAL PRIMARY KEY,
			snapshot_id           UUID          NOT NULL,
			product_id            INTEGER       NOT NULL,
			brand                 TEXT          NOT NULL DEFAULT '',
			product_name          TEXT          NOT NULL DEFAULT '',
			category              VARCHAR(32)   NOT NULL,
			price                 NUMERIC(14,2) NOT NULL DEFAULT 0,
			price_display         TEXT          NOT NULL DEFAULT '',
			rating                NUMERIC(4,2)  NOT NULL DEFAULT 0,
			number_of_reviews     INTEGER       NOT NULL DEFAULT 0,
			repurchase_yes        INTEGER       NOT NULL DEFAULT 0,
			repurchase_no         INTEGER       NOT NULL DEFAULT 0,
			repurchase_maybe      INTEGER       NOT NULL DEFAULT 0,
			repurchase_rate       NUMERIC(6,2)  NOT NULL DEFAULT 0,
			suitable_skin_types   TEXT[]        NOT NULL DEFAULT '{}',
			targets_skin_concerns TEXT[]        NOT NULL DEFAULT '{}',
			key_ingredients       TEXT[]        NOT NULL DEFAULT '{}',
			created_at            TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (snapshot_id, product_id)
		);

		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
		CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand);
		CREATE INDEX IF NOT EXISTS idx_products_rating   ON products(rating);
		CREATE INDEX IF NOT EXISTS idx_products_price    ON products(price);
	`)
	return err
}

// execer is the subset of *sql.DB and *sql.Tx used to write snapshots.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Clear deletes all stored products.
func (pw *PostgresWriter) Clear() error {
	return clearProducts(pw.db)
}

func clearProducts(db execer) error {
	if _, err := db.Exec("DELETE FROM products"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the stored catalog with one snapshot in a single transaction,
// so a failed batch leaves the previous snapshot in place.
func (pw *PostgresWriter) Write(snapshotID string, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	if err := writeSnapshot(tx, snapshotID, products); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit snapshot %s: %w", snapshotID, err)
	}
	return nil
}

// writeSnapshot clears the table and inserts products in batches, stopping at the first error.
func writeSnapshot(tx execer, snapshotID string, products []models.Product) error {
	if err := clearProducts(tx); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		query, args := buildInsert(snapshotID, products[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

// buildInsert renders a multi-row INSERT with positional placeholders.
func buildInsert(snapshotID string, batch []models.Product) (string, []interface{}) {
	cols := len(productColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, p := range batch {
		placeholders := make([]string, cols)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*cols+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			snapshotID, p.ID, p.Brand, p.ProductName, string(p.Category),
			p.Price, p.PriceDisplay, p.Rating, p.NumberOfReviews,
			p.RepurchaseYes, p.RepurchaseNo, p.RepurchaseMaybe, p.RepurchaseRate,
			pq.Array(nonNil(p.SuitableSkinTypes)), pq.Array(nonNil(p.TargetsSkinConcerns)), pq.Array(nonNil(p.KeyIngredients)),
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO products (%s)
		VALUES %s
		ON CONFLICT (snapshot_id, product_id) DO NOTHING
	`, strings.Join(productColumns, ", "), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the stored catalog in product order.
func (pw *PostgresWriter) FetchAll() ([]models.Product, error) {
	rows, err := pw.db.Query(`
		SELECT product_id, brand, product_name, category, price, price_display, rating,
		       number_of_reviews, repurchase_yes, repurchase_no, repurchase_maybe, repurchase_rate,
		       suitable_skin_types, targets_skin_concerns, key_ingredients
		FROM products
		ORDER BY product_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			p                                models.Product
			category                         string
			skinTypes, concerns, ingredients pq.StringArray
		)
		if err := rows.Scan(
			&p.ID, &p.Brand, &p.ProductName, &category, &p.Price, &p.PriceDisplay, &p.Rating,
			&p.NumberOfReviews, &p.RepurchaseYes, &p.RepurchaseNo, &p.RepurchaseMaybe, &p.RepurchaseRate,
			&skinTypes, &concerns, &ingredients,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		p.Category = models.Category(category)
		p.SuitableSkinTypes = emptyToNil(skinTypes)
		p.TargetsSkinConcerns = emptyToNil(concerns)
		p.KeyIngredients = emptyToNil(ingredients)
		products = append(products, p)
	}
	return products, rows.Err()
}

func nonNil(labels []string) []string {
	if labels == nil {
		return []string{}
	}
	return labels
}

func emptyToNil(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	return labels
}
