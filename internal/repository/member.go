package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshbasket/orderd/internal/domain/member"
)

const (
	memberColumns = `id, email, first_name, last_name, phone, shop_name, created_at`

	createMemberSQL = `INSERT INTO members (id, email, first_name, last_name, phone, shop_name)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listMembersSQL = `SELECT ` + memberColumns + ` FROM members ORDER BY created_at`

	recentMembersSQL = `SELECT ` + memberColumns + ` FROM members
		ORDER BY created_at DESC LIMIT $1`
)

var _ member.Repository = (*MemberRepository)(nil)

// MemberRepository implements member.Repository backed by PostgreSQL.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a MemberRepository that uses the given pool.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// Create persists a new member registration.
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	_, err := r.pool.Exec(ctx, createMemberSQL,
		m.ID, m.Email, m.FirstName, m.LastName, m.Phone, m.ShopName,
	)
	if err != nil {
		return fmt.Errorf("creating member %q: %w", m.ID, err)
	}

	return nil
}

// List returns all members, oldest first.
func (r *MemberRepository) List(ctx context.Context) ([]member.Member, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, listMembersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return pgx.CollectRows(rows, scanMember)
}

// Recent returns the newest members first, at most limit entries.
func (r *MemberRepository) Recent(ctx context.Context, limit int) ([]member.Member, error) {
	ctx, cancel := queryContext(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, recentMembersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent members: %w", err)
	}
	return pgx.CollectRows(rows, scanMember)
}

func scanMember(row pgx.CollectableRow) (member.Member, error) {
	var m member.Member
	err := row.Scan(&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.Phone, &m.ShopName, &m.CreatedAt)
	return m, err
}
