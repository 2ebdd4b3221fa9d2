package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// leadingNumber matches the numeric prefix of a discount input, the way a
// cashier-facing text field is usually read: "12.5%" is 12.5, "abc" is nothing.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// discountScale bounds the fractional digits kept from a discount input.
const discountScale = 4

type Totals struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
}

// DisplayTotals holds Totals rounded to cents for rendering.
type DisplayTotals struct {
	Subtotal        string
	DiscountPercent string
	DiscountAmount  string
	Total           string
}

// ParseDiscount reads a discount percentage from raw input. Missing or
// non-numeric input is 0, as is input outside the float64 range. The value
// is not clamped and keeps at most four decimal places.
func ParseDiscount(raw string) decimal.Decimal {
	m := leadingNumber.FindString(strings.TrimLeft(raw, " \t\r\n"))
	if m == "" {
		return decimal.Zero
	}
	// Out-of-range exponents overflow to Inf or underflow to 0 as a float
	// would; both price as no discount.
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(discountScale)
}

// CalculateTotals prices the given lines at discountPercent.
func CalculateTotals(lines []CartLine, discountPercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price)
	}

	// Shift(-2) divides by 100 without the rounding Div applies.
	discount := subtotal.Mul(discountPercent).Shift(-2)

	return Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		Total:           subtotal.Sub(discount),
	}
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal:        t.Subtotal.StringFixed(2),
		DiscountPercent: t.DiscountPercent.String(),
		DiscountAmount:  t.DiscountAmount.StringFixed(2),
		Total:           t.Total.StringFixed(2),
	}
}
