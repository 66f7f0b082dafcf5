package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oiueei/oiueei/internal/domain"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) CreateToken(ctx context.Context, token domain.ActionToken) error {
	const stmt = `
INSERT INTO action_tokens (code, action, target_code, recipient_code, recipient_email, context, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	payload, err := json.Marshal(token.Context)
	if err != nil {
		return fmt.Errorf("encode token context: %w", err)
	}

	_, err = r.exec(ctx, stmt,
		token.Code,
		token.Action,
		token.TargetCode,
		token.RecipientCode,
		token.RecipientEmail,
		payload,
		token.CreatedAt,
		token.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeCollision
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

// DeleteToken removes the token and returns it in a single statement.
// The DELETE ... RETURNING is what makes redemption exactly-once: no
// caller can observe a redeemed-but-not-deleted token.
func (r *TokenRepository) DeleteToken(ctx context.Context, code string) (*domain.ActionToken, error) {
	const stmt = `
DELETE FROM action_tokens
WHERE code = $1
RETURNING code, action, target_code, recipient_code, recipient_email, context, created_at, expires_at`

	var (
		token   domain.ActionToken
		action  string
		payload []byte
	)
	err := r.queryRow(ctx, stmt, code).Scan(
		&token.Code,
		&action,
		&token.TargetCode,
		&token.RecipientCode,
		&token.RecipientEmail,
		&payload,
		&token.CreatedAt,
		&token.ExpiresAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("delete token: %w", err)
	}

	token.Action = domain.ActionKind(action)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &token.Context); err != nil {
			return nil, fmt.Errorf("decode token context: %w", err)
		}
	}
	return &token, nil
}

func (r *TokenRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TokenRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
