package db

import (
	"database/sql"
	"fmt"

	"github.com/dtnitsch/catalog-crawler/models"
)

// Image kinds stored in product_images.
const (
	ImageKindSet     = "set"
	ImageKindView360 = "view360"
	ImageKindVideo   = "video"
)

// SaveProduct replaces the product and all of its child rows in a single
// transaction. runID may be empty for records saved outside a crawl.
func (db *DB) SaveProduct(runID string, p models.ProductRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after Commit

	// Cascades clear sections, tags, images and metadata
	if _, err := tx.Exec(`DELETE FROM products WHERE article_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to replace product %s: %w", p.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO products (
			article_id, url, title, brand, price_current, price_original, sale_tag,
			in_stock, stock_count, main_image, variant_count, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.URL, p.Title, nullString(p.Brand), p.Price.Current, p.Price.Original,
		nullString(p.Price.SaleTag), p.Stock.InStock, p.Stock.Count,
		nullString(p.Assets.MainImage), p.VariantCount, nullString(runID))
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
	}

	for i, name := range p.Section {
		if _, err := tx.Exec(`INSERT INTO product_sections (article_id, position, name) VALUES (?, ?, ?)`,
			p.ID, i, name); err != nil {
			return fmt.Errorf("failed to insert section: %w", err)
		}
	}

	for i, tag := range p.MarketingTags {
		if _, err := tx.Exec(`INSERT INTO product_tags (article_id, position, tag) VALUES (?, ?, ?)`,
			p.ID, i, tag); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	images := []struct {
		kind string
		urls []string
	}{
		{ImageKindSet, p.Assets.Images},
		{ImageKindView360, p.Assets.View360},
		{ImageKindVideo, p.Assets.Video},
	}
	for _, group := range images {
		for i, url := range group.urls {
			if _, err := tx.Exec(`INSERT INTO product_images (article_id, kind, position, url) VALUES (?, ?, ?, ?)`,
				p.ID, group.kind, i, url); err != nil {
				return fmt.Errorf("failed to insert %s image: %w", group.kind, err)
			}
		}
	}

	for key, value := range p.Metadata {
		if _, err := tx.Exec(`INSERT INTO product_metadata (article_id, key, value) VALUES (?, ?, ?)`,
			p.ID, key, nullString(value)); err != nil {
			return fmt.Errorf("failed to insert metadata %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product %s: %w", p.ID, err)
	}
	return nil
}

const productColumns = `article_id, url, title, brand, price_current, price_original, sale_tag,
	in_stock, stock_count, main_image, variant_count`

func scanProduct(row rowScanner) (models.ProductRecord, error) {
	var p models.ProductRecord
	var brand, saleTag, mainImage sql.NullString
	err := row.Scan(&p.ID, &p.URL, &p.Title, &brand, &p.Price.Current, &p.Price.Original, &saleTag,
		&p.Stock.InStock, &p.Stock.Count, &mainImage, &p.VariantCount)
	if err != nil {
		return p, err
	}
	p.Brand = brand.String
	p.Price.SaleTag = saleTag.String
	p.Assets.MainImage = mainImage.String
	return p, nil
}

// GetProduct rebuilds a stored record by article ID.
func (db *DB) GetProduct(articleID string) (*models.ProductRecord, error) {
	p, err := scanProduct(db.QueryRow(`SELECT `+productColumns+` FROM products WHERE article_id = ?`, articleID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", articleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if err := db.loadChildren(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts rebuilds every stored record, ordered by article ID. A
// non-empty runID restricts the list to products last saved by that run.
func (db *DB) ListProducts(runID string) ([]models.ProductRecord, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY article_id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	var products []models.ProductRecord
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	// Children are loaded after the cursor is closed; the pool holds one connection.
	for i := range products {
		if err := db.loadChildren(&products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// CountProducts returns the number of stored products.
func (db *DB) CountProducts() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (db *DB) loadChildren(p *models.ProductRecord) error {
	var err error
	if p.Section, err = db.orderedStrings(`SELECT name FROM product_sections WHERE article_id = ? ORDER BY position`, p.ID); err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}
	if p.MarketingTags, err = db.orderedStrings(`SELECT tag FROM product_tags WHERE article_id = ? ORDER BY position`, p.ID); err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}

	imageQuery := `SELECT url FROM product_images WHERE article_id = ? AND kind = ? ORDER BY position`
	if p.Assets.Images, err = db.orderedStrings(imageQuery, p.ID, ImageKindSet); err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}
	if p.Assets.View360, err = db.orderedStrings(imageQuery, p.ID, ImageKindView360); err != nil {
		return fmt.Errorf("failed to load view360: %w", err)
	}
	if p.Assets.Video, err = db.orderedStrings(imageQuery, p.ID, ImageKindVideo); err != nil {
		return fmt.Errorf("failed to load video: %w", err)
	}

	rows, err := db.Query(`SELECT key, value FROM product_metadata WHERE article_id = ?`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load metadata: %w", err)
	}
	defer rows.Close()

	p.Metadata = make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan metadata: %w", err)
		}
		p.Metadata[key] = value.String
	}
	return rows.Err()
}

// orderedStrings returns the single string column of query, never nil.
func (db *DB) orderedStrings(query string, args ...any) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
