package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oiueei/oiueei/internal/domain"
)

// UserDirectory resolves user codes to contact addresses. Profile storage
// is an external collaborator; the engine needs exactly this one lookup.
type UserDirectory struct {
	pool *pgxpool.Pool
}

func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

func (r *UserDirectory) EmailFor(ctx context.Context, userCode string) (string, error) {
	const query = `SELECT email FROM users WHERE code = $1`

	var email string
	err := r.queryRow(ctx, query, userCode).Scan(&email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("email for user: %w", err)
	}
	return email, nil
}

func (r *UserDirectory) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
