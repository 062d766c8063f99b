package wishlist

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	List(ctx context.Context, userID string) ([]Item, error)
	Add(ctx context.Context, userID, courseID string) error
	Remove(ctx context.Context, userID, courseID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, course_id, added_at
		 FROM wishlist_items WHERE user_id=$1 ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.UserID, &it.CourseID, &it.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, courseID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wishlist_items (user_id, course_id, added_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, course_id) DO NOTHING
	`, userID, courseID)
	return err
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, courseID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id=$1 AND course_id=$2`, userID, courseID)
	return err
}
