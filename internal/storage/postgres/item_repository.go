package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oiueei/oiueei/internal/domain"
)

// ItemRepository is the availability-gateway shim over the items table.
// The engine only ever touches category, reservation status, visibility
// and the deal list; everything else about an item belongs to the
// surrounding system.
type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) GetForUpdate(ctx context.Context, code string) (domain.Item, error) {
	const query = `
SELECT code, owner_code, category, status, visible
FROM items
WHERE code = $1
FOR UPDATE`

	var (
		item     domain.Item
		category string
		status   string
	)
	err := r.queryRow(ctx, query, code).
		Scan(&item.Code, &item.OwnerCode, &category, &status, &item.Visible)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Item{}, domain.ErrItemNotFound
		}
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	item.Category = domain.Category(category)
	item.Status = domain.ItemStatus(status)
	return item, nil
}

func (r *ItemRepository) SetStatus(ctx context.Context, code string, status domain.ItemStatus) error {
	const stmt = `UPDATE items SET status = $2 WHERE code = $1`

	tag, err := r.exec(ctx, stmt, code, status)
	if err != nil {
		return fmt.Errorf("set item status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) AppendDeal(ctx context.Context, code, userCode string) error {
	const stmt = `
INSERT INTO item_deals (item_code, user_code)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	if _, err := r.exec(ctx, stmt, code, userCode); err != nil {
		return fmt.Errorf("append deal: %w", err)
	}
	return nil
}

func (r *ItemRepository) CanView(ctx context.Context, code, userCode string) (bool, error) {
	const query = `
SELECT EXISTS (SELECT 1 FROM items WHERE code = $1 AND owner_code = $2)
	OR EXISTS (SELECT 1 FROM item_guests WHERE item_code = $1 AND user_code = $2)`

	var ok bool
	if err := r.queryRow(ctx, query, code, userCode).Scan(&ok); err != nil {
		return false, fmt.Errorf("can view item: %w", err)
	}
	return ok, nil
}

func (r *ItemRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ItemRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
