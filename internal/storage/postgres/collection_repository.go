package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CollectionRepository is the collaborator shim consumed by invite
// redemption. Collection CRUD lives outside this service.
type CollectionRepository struct {
	pool *pgxpool.Pool
}

func NewCollectionRepository(pool *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

func (r *CollectionRepository) AddGuest(ctx context.Context, collectionCode, userCode string) error {
	const stmt = `
INSERT INTO collection_guests (collection_code, user_code)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

	if tx := txFromContext(ctx); tx != nil {
		if _, err := tx.Exec(ctx, stmt, collectionCode, userCode); err != nil {
			return fmt.Errorf("add collection guest: %w", err)
		}
		return nil
	}
	if _, err := r.pool.Exec(ctx, stmt, collectionCode, userCode); err != nil {
		return fmt.Errorf("add collection guest: %w", err)
	}
	return nil
}
