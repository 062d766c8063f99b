package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger turns a snapshot into the durable order record. Every method call
// runs on the transaction owned by the orchestrator: the order header, its
// lines, and the cart deletion land together or not at all.
type Ledger struct{}

func (Ledger) Write(ctx context.Context, q Querier, userID, paymentMethod string, snap Snapshot) (string, decimal.Decimal, error) {
	total := snap.Total()
	orderID := uuid.NewString()
	now := time.Now().UTC()

	_, err := q.Exec(ctx,
		`INSERT INTO orders (id, user_id, total_amount, status, payment_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		orderID, userID, total, "completed", paymentMethod, now)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range snap {
		_, err := q.Exec(ctx,
			`INSERT INTO order_lines (id, order_id, course_id, unit_price, quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), orderID, l.CourseID, l.UnitPrice, l.Quantity)
		if err != nil {
			return "", decimal.Zero, fmt.Errorf("insert order_line: %w", err)
		}
	}

	// Same transaction as the inserts: a committed order implies an emptied
	// cart, a rollback leaves the cart untouched.
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID); err != nil {
		return "", decimal.Zero, fmt.Errorf("clear cart: %w", err)
	}

	return orderID, total, nil
}
