package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// Querier matches the query methods shared by *pgxpool.Pool and pgx.Tx.
// Snapshot and ledger code runs on whichever the orchestrator hands it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Line is one snapshot entry: the unit price is fixed at snapshot time and is
// unaffected by later catalog changes.
type Line struct {
	CourseID  string
	UnitPrice decimal.Decimal
	Quantity  int
}

type Snapshot []Line

func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ItemOverride is the "buy now" path: an explicit item list that bypasses the
// stored cart.
type ItemOverride struct {
	CourseID string
	Quantity int
}

// SnapshotReader materializes the items to purchase as fixed lines, reading
// prices live from the catalog through the supplied querier.
type SnapshotReader struct{}

func (SnapshotReader) Read(ctx context.Context, q Querier, userID string, override []ItemOverride) (Snapshot, error) {
	refs := override
	if len(refs) == 0 {
		var err error
		refs, err = cartRefs(ctx, q, userID)
		if err != nil {
			return nil, err
		}
	}
	if len(refs) == 0 {
		return nil, ErrEmptyCart
	}

	snap := make(Snapshot, 0, len(refs))
	for _, ref := range refs {
		if ref.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be greater than zero for course %s", ref.CourseID)
		}

		var price decimal.Decimal
		var active bool
		err := q.QueryRow(ctx,
			`SELECT price, is_active FROM courses WHERE id=$1`, ref.CourseID,
		).Scan(&price, &active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &CourseUnavailableError{CourseID: ref.CourseID}
			}
			return nil, fmt.Errorf("lookup course %s: %w", ref.CourseID, err)
		}
		if !active {
			return nil, &CourseUnavailableError{CourseID: ref.CourseID}
		}

		snap = append(snap, Line{CourseID: ref.CourseID, UnitPrice: price, Quantity: ref.Quantity})
	}

	return snap, nil
}

func cartRefs(ctx context.Context, q Querier, userID string) ([]ItemOverride, error) {
	rows, err := q.Query(ctx,
		`SELECT course_id, quantity FROM cart_items WHERE user_id=$1 ORDER BY added_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	var refs []ItemOverride
	for rows.Next() {
		var ref ItemOverride
		if err := rows.Scan(&ref.CourseID, &ref.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return refs, nil
}
