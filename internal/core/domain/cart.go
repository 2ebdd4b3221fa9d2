package domain

import "github.com/shopspring/decimal"

// CartLine is a copy of the product taken when it was added to the cart.
// The same product added twice yields two independent lines.
type CartLine struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Category  string
	Image     string
}

func NewCartLine(p Product) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Image:     p.Image,
	}
}

type CartView struct {
	Lines    []CartLine
	Discount string // raw discount input as typed by the cashier
	Totals   Totals
}

// CloneLines returns a copy that shares no backing array with lines.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return []CartLine{}
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
