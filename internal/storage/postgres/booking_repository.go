package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oiueei/oiueei/internal/domain"
)

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const bookingColumns = `code, item_code, category, requester_code, requester_email, owner_code,
start_date, end_date, delivery_date, quantity, status, created_at`

func (r *BookingRepository) CreateBooking(ctx context.Context, b domain.Booking) error {
	const stmt = `
INSERT INTO bookings (code, item_code, category, requester_code, requester_email, owner_code,
	start_date, end_date, delivery_date, quantity, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.exec(ctx, stmt,
		b.Code,
		b.ItemCode,
		b.Category,
		b.RequesterCode,
		b.RequesterEmail,
		b.OwnerCode,
		b.StartDate,
		b.EndDate,
		b.DeliveryDate,
		b.Quantity,
		b.Status,
		b.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeCollision
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, code string) (domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE code = $1 FOR UPDATE`

	b, err := scanBooking(r.queryRow(ctx, query, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Booking{}, domain.ErrBookingNotFound
		}
		return domain.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, code string, from, to domain.BookingStatus) error {
	const stmt = `UPDATE bookings SET status = $3 WHERE code = $1 AND status = $2`

	tag, err := r.exec(ctx, stmt, code, from, to)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookingDecided
	}
	return nil
}

func (r *BookingRepository) HasPendingBooking(ctx context.Context, itemCode string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM bookings WHERE item_code = $1 AND status = 'PENDING')`

	var exists bool
	if err := r.queryRow(ctx, query, itemCode).Scan(&exists); err != nil {
		return false, fmt.Errorf("has pending booking: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) ListOpenBookings(ctx context.Context, itemCode string) ([]domain.Booking, error) {
	query := `
SELECT ` + bookingColumns + `
FROM bookings
WHERE item_code = $1 AND status IN ('PENDING', 'ACCEPTED')
ORDER BY start_date NULLS LAST, created_at`

	rows, err := r.query(ctx, query, itemCode)
	if err != nil {
		return nil, fmt.Errorf("list open bookings: %w", err)
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list open bookings: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	const query = `
SELECT code
FROM bookings
WHERE status = 'PENDING' AND created_at < $1
ORDER BY created_at
LIMIT $2`

	rows, err := r.query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan stale pending: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	return codes, nil
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var (
		b        domain.Booking
		category string
		status   string
	)
	err := row.Scan(
		&b.Code,
		&b.ItemCode,
		&category,
		&b.RequesterCode,
		&b.RequesterEmail,
		&b.OwnerCode,
		&b.StartDate,
		&b.EndDate,
		&b.DeliveryDate,
		&b.Quantity,
		&status,
		&b.CreatedAt,
	)
	if err != nil {
		return domain.Booking{}, err
	}
	b.Category = domain.Category(category)
	b.Status = domain.BookingStatus(status)
	return b, nil
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
