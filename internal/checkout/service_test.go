package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func newService(db *fakeDB, notifier Notifier) *Service {
	return NewService(&fakeBeginner{db: db}, db, notifier, 5*time.Second, log.New(io.Discard, "", 0))
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	db.addCourse("A", "20.00", true)
	db.addCourse("B", "35.50", true)
	db.cart = []ItemOverride{{CourseID: "A", Quantity: 2}, {CourseID: "B", Quantity: 1}}

	svc := newService(db, nil)

	res, err := svc.Checkout(ctx, Request{UserID: "u1", PaymentMethod: "card"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.OrderID == "" {
		t.Fatalf("missing order id")
	}
	if want := decimal.RequireFromString("75.50"); !res.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", res.Total, want)
	}

	if len(db.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(db.orders))
	}
	o := db.orders[0]
	if o.status != "completed" || o.userID != "u1" || o.paymentMethod != "card" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if !o.total.Equal(res.Total) {
		t.Fatalf("persisted total %s != returned total %s", o.total, res.Total)
	}

	if len(db.lines) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(db.lines))
	}
	lineSum := decimal.Zero
	for _, l := range db.lines {
		if l.orderID != res.OrderID {
			t.Fatalf("line references order %s, want %s", l.orderID, res.OrderID)
		}
		lineSum = lineSum.Add(l.unitPrice.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	if !lineSum.Equal(o.total) {
		t.Fatalf("sum of lines %s != order total %s", lineSum, o.total)
	}

	if len(db.cart) != 0 {
		t.Fatalf("cart not emptied: %+v", db.cart)
	}
	if db.lastTx == nil || !db.lastTx.committed || db.lastTx.rolledBack {
		t.Fatalf("transaction state incorrect: %+v", db.lastTx)
	}
}

func TestCheckout_MissingUser(t *testing.T) {
	db := newFakeDB()
	svc := newService(db, nil)

	_, err := svc.Checkout(context.Background(), Request{})
	if !errors.Is(err, ErrMissingUser) {
		t.Fatalf("expected ErrMissingUser, got %v", err)
	}
	if db.beginCount != 0 {
		t.Fatalf("transaction opened for invalid request")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	db := newFakeDB()
	svc := newService(db, nil)

	_, err := svc.Checkout(context.Background(), Request{UserID: "u1"})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if db.beginCount != 0 {
		t.Fatalf("empty cart must fail before any transaction opens, beginCount=%d", db.beginCount)
	}
	if len(db.orders) != 0 {
		t.Fatalf("order persisted for empty cart")
	}
}

func TestCheckout_InactiveCourseInOverride(t *testing.T) {
	db := newFakeDB()
	db.addCourse("A", "20.00", false)
	svc := newService(db, nil)

	_, err := svc.Checkout(context.Background(), Request{
		UserID: "u1",
		Items:  []ItemOverride{{CourseID: "A", Quantity: 1}},
	})

	var unavailable *CourseUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected CourseUnavailableError, got %v", err)
	}
	if unavailable.CourseID != "A" {
		t.Fatalf("unexpected course id %s", unavailable.CourseID)
	}
	if len(db.orders) != 0 || len(db.lines) != 0 {
		t.Fatalf("rows created despite unavailable course")
	}
	if db.lastTx == nil || !db.lastTx.rolledBack || db.lastTx.committed {
		t.Fatalf("transaction not rolled back: %+v", db.lastTx)
	}
}

func TestCheckout_MissingCourse(t *testing.T) {
	db := newFakeDB()
	db.cart = []ItemOverride{{CourseID: "ghost", Quantity: 1}}
	svc := newService(db, nil)

	_, err := svc.Checkout(context.Background(), Request{UserID: "u1"})

	var unavailable *CourseUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected CourseUnavailableError, got %v", err)
	}
	if len(db.cart) != 1 {
		t.Fatalf("cart mutated on failed checkout")
	}
}

func TestCheckout_LineInsertFailureRollsBack(t *testing.T) {
	db := newFakeDB()
	db.addCourse("A", "10.00", true)
	db.addCourse("B", "5.00", true)
	db.cart = []ItemOverride{{CourseID: "A", Quantity: 1}, {CourseID: "B", Quantity: 2}}
	db.lineInsertErr = errors.New("constraint violation")
	svc := newService(db, nil)

	_, err := svc.Checkout(context.Background(), Request{UserID: "u1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(db.orders) != 0 || len(db.lines) != 0 {
		t.Fatalf("partial state survived rollback: orders=%d lines=%d", len(db.orders), len(db.lines))
	}
	if len(db.cart) != 2 {
		t.Fatalf("cart changed on failed checkout: %+v", db.cart)
	}
	if db.lastTx == nil || !db.lastTx.rolledBack {
		t.Fatalf("transaction not rolled back")
	}
}

func TestCheckout_CommitFailure(t *testing.T) {
	db := newFakeDB()
	db.addCourse("A", "10.00", true)
	db.cart = []ItemOverride{{CourseID: "A", Quantity: 1}}
	db.commitErr = errors.New("connection lost")
	svc := newService(db, nil)

	_, err := svc.Checkout(context.Background(), Request{UserID: "u1"})
	if err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
	if len(db.orders) != 0 || len(db.lines) != 0 || len(db.cart) != 1 {
		t.Fatalf("state persisted despite commit failure")
	}
}

func TestCheckout_NotifierReceivesReceipt(t *testing.T) {
	db := newFakeDB()
	db.addCourse("A", "12.25", true)
	db.cart = []ItemOverride{{CourseID: "A", Quantity: 2}}
	n := &fakeNotifier{ch: make(chan Receipt, 1)}
	svc := newService(db, n)

	res, err := svc.Checkout(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	select {
	case r := <-n.ch:
		if r.OrderID != res.OrderID || r.UserID != "u1" || r.Lines != 1 {
			t.Fatalf("unexpected receipt: %+v", r)
		}
		if !r.Total.Equal(decimal.RequireFromString("24.50")) {
			t.Fatalf("receipt total = %s", r.Total)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("notifier not invoked")
	}
}

func TestCheckout_NoNotifierSameResult(t *testing.T) {
	run := func(t *testing.T, notifier Notifier) Result {
		db := newFakeDB()
		db.addCourse("A", "9.99", true)
		db.cart = []ItemOverride{{CourseID: "A", Quantity: 3}}
		svc := newService(db, notifier)
		res, err := svc.Checkout(context.Background(), Request{UserID: "u1"})
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}
		return res
	}

	with := run(t, &fakeNotifier{ch: make(chan Receipt, 1)})
	without := run(t, nil)

	if !with.Total.Equal(without.Total) {
		t.Fatalf("notifier changed the result: %s vs %s", with.Total, without.Total)
	}
	if without.OrderID == "" {
		t.Fatalf("missing order id without notifier")
	}
}

type fakeNotifier struct {
	ch chan Receipt
}

func (n *fakeNotifier) OrderPlaced(ctx context.Context, r Receipt) {
	n.ch <- r
}

// --- in-memory fake database ---

type fakeCourse struct {
	price  decimal.Decimal
	active bool
}

type fakeOrder struct {
	id            string
	userID        string
	total         decimal.Decimal
	status        string
	paymentMethod string
}

type fakeLine struct {
	orderID   string
	courseID  string
	unitPrice decimal.Decimal
	quantity  int
}

type fakeDB struct {
	courses map[string]fakeCourse
	cart    []ItemOverride
	orders  []fakeOrder
	lines   []fakeLine

	beginErr      error
	commitErr     error
	lineInsertErr error

	beginCount int
	lastTx     *fakeTx
}

func newFakeDB() *fakeDB {
	return &fakeDB{courses: make(map[string]fakeCourse)}
}

func (db *fakeDB) addCourse(id, price string, active bool) {
	db.courses[id] = fakeCourse{price: decimal.RequireFromString(price), active: active}
}

// Count satisfies checkout.CartCounter.
func (db *fakeDB) Count(ctx context.Context, userID string) (int, error) {
	return len(db.cart), nil
}

type fakeBeginner struct {
	db *fakeDB
}

func (b *fakeBeginner) Begin(ctx context.Context) (Tx, error) {
	if b.db.beginErr != nil {
		return nil, b.db.beginErr
	}
	b.db.beginCount++
	tx := &fakeTx{db: b.db}
	b.db.lastTx = tx
	return tx, nil
}

// fakeTx buffers writes and applies them on commit, like a real transaction.
type fakeTx struct {
	db *fakeDB

	pendingOrders []fakeOrder
	pendingLines  []fakeLine
	cartCleared   bool

	committed  bool
	rolledBack bool
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "FROM courses") {
		c, ok := tx.db.courses[args[0].(string)]
		if !ok {
			return fakeRow{err: pgx.ErrNoRows}
		}
		return fakeRow{values: []any{c.price, c.active}}
	}
	return fakeRow{err: errors.New("unexpected query: " + sql)}
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if strings.Contains(sql, "FROM cart_items") {
		rows := make([][]any, 0, len(tx.db.cart))
		for _, it := range tx.db.cart {
			rows = append(rows, []any{it.CourseID, it.Quantity})
		}
		return &fakeRows{rows: rows}, nil
	}
	return nil, errors.New("unexpected query: " + sql)
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO orders"):
		tx.pendingOrders = append(tx.pendingOrders, fakeOrder{
			id:            args[0].(string),
			userID:        args[1].(string),
			total:         args[2].(decimal.Decimal),
			status:        args[3].(string),
			paymentMethod: args[4].(string),
		})
	case strings.Contains(sql, "INSERT INTO order_lines"):
		if tx.db.lineInsertErr != nil {
			return pgconn.CommandTag{}, tx.db.lineInsertErr
		}
		tx.pendingLines = append(tx.pendingLines, fakeLine{
			orderID:   args[1].(string),
			courseID:  args[2].(string),
			unitPrice: args[3].(decimal.Decimal),
			quantity:  args[4].(int),
		})
	case strings.Contains(sql, "DELETE FROM cart_items"):
		tx.cartCleared = true
	default:
		return pgconn.CommandTag{}, errors.New("unexpected exec: " + sql)
	}
	return pgconn.CommandTag{}, nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.db.commitErr != nil {
		return tx.db.commitErr
	}
	tx.db.orders = append(tx.db.orders, tx.pendingOrders...)
	tx.db.lines = append(tx.db.lines, tx.pendingLines...)
	if tx.cartCleared {
		tx.db.cart = nil
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}
func (r *fakeRows) Scan(dest ...any) error {
	return assign(r.rows[r.idx-1], dest)
}
func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func assign(values []any, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("scan arity mismatch")
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *bool:
			*d = v.(bool)
		case *decimal.Decimal:
			*d = v.(decimal.Decimal)
		default:
			return errors.New("unsupported scan destination")
		}
	}
	return nil
}
