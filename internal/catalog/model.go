package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID        string          `json:"courseId"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Price     decimal.Decimal `json:"price"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}
