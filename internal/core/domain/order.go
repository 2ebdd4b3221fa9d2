package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              int64
	SessionID       string
	Items           []CartLine
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	CustomerID      string // empty for walk-in sales
	CreatedAt       time.Time
}

// Clone returns a deep copy of the order's item list.
func (o Order) Clone() Order {
	o.Items = CloneLines(o.Items)
	return o
}
