package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"cookie-corner/internal/models"
)

// ProductRepository handles product catalog reads. The reconciliation core
// never writes to the catalog.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, price_small, price_medium, price_large, size_options, image_url, active, created_at, updated_at`

// GetByIDs bulk-fetches products by id. Missing ids are simply absent from
// the result; callers decide whether that fails the request.
func (r *ProductRepository) GetByIDs(ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = ANY($1)`, productColumns)

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

// GetByID retrieves a single product by id
func (r *ProductRepository) GetByID(id string) (*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrProductNotFound
		}
		return nil, err
	}

	return product, nil
}

// ListActive returns all active products for the storefront pages
func (r *ProductRepository) ListActive() ([]*models.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE active = TRUE ORDER BY created_at DESC`, productColumns)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	var (
		priceSmall  sql.NullInt64
		priceMedium sql.NullInt64
		priceLarge  sql.NullInt64
		sizeOptions []byte
	)

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&priceSmall,
		&priceMedium,
		&priceLarge,
		&sizeOptions,
		&product.ImageURL,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if priceSmall.Valid {
		v := int(priceSmall.Int64)
		product.PriceSmall = &v
	}
	if priceMedium.Valid {
		v := int(priceMedium.Int64)
		product.PriceMedium = &v
	}
	if priceLarge.Valid {
		v := int(priceLarge.Int64)
		product.PriceLarge = &v
	}

	if len(sizeOptions) > 0 {
		if err := json.Unmarshal(sizeOptions, &product.SizeOptions); err != nil {
			return nil, fmt.Errorf("failed to decode size options for product %s: %w", product.ID, err)
		}
	}

	return product, nil
}
