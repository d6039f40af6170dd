package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshbasket/orderd/internal/domain/user"
)

const (
	userColumns = `id, username, phone, password_hash, created_at`

	createUserSQL = `INSERT INTO users (id, username, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	getUserByUsernameSQL = `SELECT ` + userColumns + ` FROM users
		WHERE username = $1 ORDER BY created_at DESC LIMIT 1`

	countUsersSQL = `SELECT COUNT(*) FROM users`
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new user account. A duplicate phone number fails with
// user.ErrPhoneTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, createUserSQL,
		u.ID, u.Username, u.Phone, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrPhoneTaken
		}
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}

	return nil
}

// GetByID returns a single user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, getUserByIDSQL, id)
}

// GetByUsername returns the most recently created account with the given
// username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, getUserByUsernameSQL, username)
}

// Count returns the number of registered accounts.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	var n int64
	if err := r.pool.QueryRow(ctx, countUsersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*user.User, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	return u, err
}
