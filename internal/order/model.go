package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Line is an immutable price snapshot: unit_price is the catalog price at
// checkout time, not the current one.
type Line struct {
	CourseID  string          `json:"courseId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

type Order struct {
	ID            string          `json:"orderId"`
	UserID        string          `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        Status          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Lines         []Line          `json:"lines"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
