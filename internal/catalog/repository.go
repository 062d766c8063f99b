package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("course not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Get(ctx context.Context, courseID string) (Course, error)
	List(ctx context.Context) ([]Course, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Get(ctx context.Context, courseID string) (Course, error) {
	var c Course
	row := r.pool.QueryRow(ctx,
		`SELECT id, title, author, price, is_active, created_at FROM courses WHERE id=$1`, courseID)
	if err := row.Scan(&c.ID, &c.Title, &c.Author, &c.Price, &c.IsActive, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, author, price, is_active, created_at
		 FROM courses WHERE is_active ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Author, &c.Price, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}
