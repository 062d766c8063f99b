package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
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
	Insert(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipient string) ([]Notification, error)
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Insert(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, recipient, type, title, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.Recipient, n.Type, n.Title, n.Message, n.CreatedAt)
	return err
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, recipient string) ([]Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, recipient, type, title, message, created_at
		 FROM notifications WHERE recipient=$1 ORDER BY created_at DESC`, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Type, &n.Title, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
