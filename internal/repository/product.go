package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshbasket/orderd/internal/domain/product"
)

const (
	productColumns = `id, name, weight, pieces, box_weight, box_price, rating, quantity, image, created_at`

	createProductSQL = `INSERT INTO products (id, name, weight, pieces, box_weight, box_price, rating, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	upsertProductSQL = `INSERT INTO products (id, name, weight, pieces, box_weight, box_price, rating, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			weight = EXCLUDED.weight,
			pieces = EXCLUDED.pieces,
			box_weight = EXCLUDED.box_weight,
			box_price = EXCLUDED.box_price,
			rating = EXCLUDED.rating,
			quantity = EXCLUDED.quantity,
			image = EXCLUDED.image`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at`

	countProductsSQL = `SELECT COUNT(*) FROM products`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create persists a new catalog entry.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Weight, p.Pieces, p.BoxWeight,
		p.BoxPrice, p.Rating, p.Quantity, p.Image,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}

	return nil
}

// Upsert inserts a catalog entry or updates it in place when the id already
// exists. Used by the seeder, so reruns stay idempotent.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Weight, p.Pieces, p.BoxWeight,
		p.BoxPrice, p.Rating, p.Quantity, p.Image,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}

	return nil
}

// List returns all catalog entries, oldest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Count returns the number of catalog entries.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, countProductsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Weight, &p.Pieces, &p.BoxWeight,
		&p.BoxPrice, &p.Rating, &p.Quantity, &p.Image, &p.CreatedAt,
	)
	return p, err
}
