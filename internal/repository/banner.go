package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshbasket/orderd/internal/domain/banner"
)

const (
	addBannerSQL = `INSERT INTO banners (id, image_url) VALUES ($1, $2)`

	pruneBannersSQL = `DELETE FROM banners WHERE id NOT IN (
		SELECT id FROM banners ORDER BY created_at DESC LIMIT $1)`

	listBannersSQL = `SELECT id, image_url, created_at FROM banners ORDER BY created_at`
)

var _ banner.Repository = (*BannerRepository)(nil)

// BannerRepository implements banner.Repository backed by PostgreSQL.
type BannerRepository struct {
	pool *pgxpool.Pool
}

// NewBannerRepository returns a BannerRepository that uses the given pool.
func NewBannerRepository(pool *pgxpool.Pool) *BannerRepository {
	return &BannerRepository{pool: pool}
}

// Add stores a banner and prunes the list down to the newest banner.KeepLatest
// rows, both in one transaction.
func (r *BannerRepository) Add(ctx context.Context, b *banner.Banner) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning banner transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, addBannerSQL, b.ID, b.ImageURL); err != nil {
		return fmt.Errorf("adding banner %q: %w", b.ID, err)
	}
	if _, err := tx.Exec(ctx, pruneBannersSQL, banner.KeepLatest); err != nil {
		return fmt.Errorf("pruning banners: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing banner transaction: %w", err)
	}
	return nil
}

// List returns banners oldest first.
func (r *BannerRepository) List(ctx context.Context) ([]banner.Banner, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, listBannersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing banners: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (banner.Banner, error) {
		var b banner.Banner
		err := row.Scan(&b.ID, &b.ImageURL, &b.CreatedAt)
		return b, err
	})
}
