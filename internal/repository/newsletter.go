package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshbasket/orderd/internal/domain/newsletter"
)

const (
	subscribeSQL = `INSERT INTO newsletter_subscribers (email) VALUES ($1)`

	listSubscribersSQL = `SELECT email, created_at FROM newsletter_subscribers ORDER BY created_at`
)

var _ newsletter.Repository = (*NewsletterRepository)(nil)

// NewsletterRepository implements newsletter.Repository backed by PostgreSQL.
type NewsletterRepository struct {
	pool *pgxpool.Pool
}

// NewNewsletterRepository returns a NewsletterRepository that uses the given pool.
func NewNewsletterRepository(pool *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{pool: pool}
}

// Subscribe adds an email to the list. The primary key on email turns a
// duplicate into newsletter.ErrAlreadySubscribed.
func (r *NewsletterRepository) Subscribe(ctx context.Context, email string) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, subscribeSQL, email)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return newsletter.ErrAlreadySubscribed
		}
		return fmt.Errorf("subscribing %q: %w", email, err)
	}

	return nil
}

// List returns all subscribers, oldest first.
func (r *NewsletterRepository) List(ctx context.Context) ([]newsletter.Subscriber, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, listSubscribersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (newsletter.Subscriber, error) {
		var s newsletter.Subscriber
		err := row.Scan(&s.Email, &s.CreatedAt)
		return s, err
	})
}
