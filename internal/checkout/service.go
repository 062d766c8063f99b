package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Tx is the slice of pgx.Tx the checkout path needs.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// PoolBeginner adapts *pgxpool.Pool to TxBeginner.
type PoolBeginner struct {
	Pool *pgxpool.Pool
}

func (b PoolBeginner) Begin(ctx context.Context) (Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CartCounter is the cheap pre-transaction emptiness check; an empty cart must
// fail before any transaction is opened.
type CartCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

// Receipt is what the post-commit notifier gets to work with.
type Receipt struct {
	OrderID string
	UserID  string
	Total   decimal.Decimal
	Lines   int
}

// Notifier runs after commit on a detached context. It is best-effort: nothing
// it does can change an already-committed result.
type Notifier interface {
	OrderPlaced(ctx context.Context, r Receipt)
}

type Request struct {
	UserID        string
	PaymentMethod string
	// Items, when non-empty, is the explicit "buy now" list; the stored cart
	// is not read but is still emptied on success.
	Items []ItemOverride
}

type Result struct {
	OrderID string          `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}

type Service struct {
	begin    TxBeginner
	carts    CartCounter
	reader   SnapshotReader
	ledger   Ledger
	notifier Notifier // optional
	timeout  time.Duration
	logger   *log.Logger
}

func NewService(begin TxBeginner, carts CartCounter, notifier Notifier, timeout time.Duration, logger *log.Logger) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		begin:    begin,
		carts:    carts,
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// Checkout converts the user's cart (or the explicit item list) into a
// persisted order. The order header, its lines, and the cart deletion share
// one transaction; once that commits the call reports success no matter what
// notification does afterwards.
func (s *Service) Checkout(ctx context.Context, req Request) (Result, error) {
	if req.UserID == "" {
		return Result{}, ErrMissingUser
	}

	if len(req.Items) == 0 {
		n, err := s.carts.Count(ctx, req.UserID)
		if err != nil {
			return Result{}, fmt.Errorf("count cart items: %w", err)
		}
		if n == 0 {
			return Result{}, ErrEmptyCart
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.begin.Begin(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("begin tx: %w", err)
	}
	// No-op after a successful commit.
	defer func() { _ = tx.Rollback(ctx) }()

	snap, err := s.reader.Read(ctx, tx, req.UserID, req.Items)
	if err != nil {
		return Result{}, err
	}

	orderID, total, err := s.ledger.Write(ctx, tx, req.UserID, req.PaymentMethod, snap)
	if err != nil {
		return Result{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, fmt.Errorf("commit: %w", err)
	}

	s.logger.Printf("order %s placed for user %s, %d line(s), total %s",
		orderID, req.UserID, len(snap), total.StringFixed(2))

	if s.notifier != nil {
		// Detached from the request lifetime so notification latency never
		// extends checkout latency; the notifier bounds itself.
		go s.notifier.OrderPlaced(context.WithoutCancel(ctx), Receipt{
			OrderID: orderID,
			UserID:  req.UserID,
			Total:   total,
			Lines:   len(snap),
		})
	}

	return Result{OrderID: orderID, Total: total}, nil
}
