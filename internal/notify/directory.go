package notify

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var ErrNoOperator = errors.New("no operator configured")

type Operator struct {
	UserID string
	Email  string
}

// OperatorDirectory resolves who gets told about a new order. Injected so
// notification targeting is not baked into configuration literals.
type OperatorDirectory interface {
	Operator(ctx context.Context) (Operator, error)
}

// StaticDirectory serves a single operator from configuration.
type StaticDirectory struct {
	Op Operator
}

func (d StaticDirectory) Operator(ctx context.Context) (Operator, error) {
	if d.Op.Email == "" && d.Op.UserID == "" {
		return Operator{}, ErrNoOperator
	}
	return d.Op, nil
}

// PostgresDirectory reads the operators table.
type PostgresDirectory struct {
	pool DBPool
}

func NewPostgresDirectory(pool DBPool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

func (d *PostgresDirectory) Operator(ctx context.Context) (Operator, error) {
	var op Operator
	row := d.pool.QueryRow(ctx, `SELECT user_id, email FROM operators ORDER BY user_id LIMIT 1`)
	if err := row.Scan(&op.UserID, &op.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Operator{}, ErrNoOperator
		}
		return Operator{}, err
	}
	return op, nil
}
