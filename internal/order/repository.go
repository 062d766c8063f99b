package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrInvalidStatus = errors.New("invalid order status")

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository reads persisted orders. Order creation happens only in the
// checkout ledger; the monetary fields of an order never change after that.
type Repository interface {
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, total_amount, status, payment_method, created_at, updated_at
		 FROM orders WHERE id=$1`, orderID,
	).Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// caller (handler) can turn this into 404
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT course_id, unit_price, quantity FROM order_lines WHERE order_id=$1`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("select order_lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.CourseID, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan order_line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, total_amount, status, payment_method, created_at, updated_at
		 FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		lineRows, err := r.pool.Query(ctx,
			`SELECT course_id, unit_price, quantity FROM order_lines WHERE order_id=$1`, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("select lines: %w", err)
		}
		for lineRows.Next() {
			var l Line
			if err := lineRows.Scan(&l.CourseID, &l.UnitPrice, &l.Quantity); err != nil {
				lineRows.Close()
				return nil, fmt.Errorf("scan line: %w", err)
			}
			orders[i].Lines = append(orders[i].Lines, l)
		}
		lineRows.Close()
	}

	return orders, nil
}

// UpdateStatus is the administrative transition; it never touches monetary
// fields.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
