package cart

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Items(ctx context.Context, userID string) ([]Item, error)
	Count(ctx context.Context, userID string) (int, error)
	Add(ctx context.Context, userID, courseID string, quantity int) error
	Remove(ctx context.Context, userID, courseID string) error
	Clear(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Items(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, course_id, quantity, added_at
		 FROM cart_items WHERE user_id=$1 ORDER BY added_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.UserID, &it.CourseID, &it.Quantity, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cart_items WHERE user_id=$1`, userID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, courseID string, quantity int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, course_id, quantity, added_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, course_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, userID, courseID, quantity)
	return err
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, courseID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE user_id=$1 AND course_id=$2`, userID, courseID)
	return err
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
