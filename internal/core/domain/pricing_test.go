package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func line(price string) CartLine {
	return CartLine{Price: decimal.RequireFromString(price)}
}

func TestCalculateTotals_TenPercentOffTwoItems(t *testing.T) {
	totals := CalculateTotals([]CartLine{line("25.00"), line("40.00")}, decimal.NewFromInt(10))

	if !totals.Subtotal.Equal(decimal.RequireFromString("65.00")) {
		t.Errorf("expected subtotal 65.00, got %s", totals.Subtotal)
	}
	if !totals.DiscountAmount.Equal(decimal.RequireFromString("6.50")) {
		t.Errorf("expected discount 6.50, got %s", totals.DiscountAmount)
	}
	if !totals.Total.Equal(decimal.RequireFromString("58.50")) {
		t.Errorf("expected total 58.50, got %s", totals.Total)
	}

	display := totals.Display()
	if display.Subtotal != "65.00" || display.DiscountAmount != "6.50" || display.Total != "58.50" {
		t.Errorf("unexpected display values: %+v", display)
	}
}

func TestCalculateTotals_EmptyCart(t *testing.T) {
	totals := CalculateTotals(nil, decimal.NewFromInt(50))
	if !totals.Subtotal.IsZero() || !totals.Total.IsZero() || !totals.DiscountAmount.IsZero() {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestCalculateTotals_UnclampedDiscount(t *testing.T) {
	lines := []CartLine{line("20.00")}

	over := CalculateTotals(lines, decimal.NewFromInt(150))
	if !over.Total.Equal(decimal.NewFromInt(-10)) {
		t.Errorf("expected total -10 at 150%%, got %s", over.Total)
	}

	negative := CalculateTotals(lines, decimal.NewFromInt(-10))
	if !negative.Total.Equal(decimal.NewFromInt(22)) {
		t.Errorf("expected total 22 at -10%%, got %s", negative.Total)
	}
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "0"},
		{"10", "10"},
		{" 12.5", "12.5"},
		{"7abc", "7"},
		{"15%", "15"},
		{".5", "0.5"},
		{"-5", "-5"},
		{"1e1", "10"},
		{"abc", "0"},
		{"Infinity", "0"},
		{"NaN", "0"},
		{"1e99999999999", "0"},
		{"1e400", "0"},
		{"-1e400", "0"},
		{"1e-400", "0"},
		{"1e-2000000000", "0"},
		{"12.345678", "12.3457"},
	}

	for _, tt := range tests {
		got := ParseDiscount(tt.raw)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseDiscount(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func genPrice(t *rapid.T, label string) decimal.Decimal {
	cents := rapid.Int64Range(0, 1_000_000).Draw(t, label)
	return decimal.New(cents, -2)
}

func TestCalculateTotals_DiscountProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "lines")
		lines := make([]CartLine, n)
		for i := range lines {
			lines[i] = CartLine{Price: genPrice(t, "price")}
		}
		// percentages with up to two decimals in [0, 100]
		pct := decimal.New(rapid.Int64Range(0, 10_000).Draw(t, "pct"), -2)

		totals := CalculateTotals(lines, pct)

		want := totals.Subtotal.Mul(decimal.NewFromInt(1).Sub(pct.Shift(-2)))
		if !totals.Total.Equal(want) {
			t.Fatalf("total %s != subtotal*(1-d/100) %s", totals.Total, want)
		}
		if totals.Total.GreaterThan(totals.Subtotal) {
			t.Fatalf("total %s exceeds subtotal %s", totals.Total, totals.Subtotal)
		}
		if totals.Total.IsNegative() {
			t.Fatalf("total %s is negative for pct %s", totals.Total, pct)
		}
	})
}

func TestCalculateTotals_SubtotalIsSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "lines")
		var cents int64
		lines := make([]CartLine, n)
		for i := range lines {
			c := rapid.Int64Range(0, 100_000).Draw(t, "cents")
			cents += c
			lines[i] = CartLine{Price: decimal.New(c, -2)}
		}

		totals := CalculateTotals(lines, decimal.Zero)
		if !totals.Subtotal.Equal(decimal.New(cents, -2)) {
			t.Fatalf("subtotal %s, want %s", totals.Subtotal, decimal.New(cents, -2))
		}
		if !totals.Total.Equal(totals.Subtotal) {
			t.Fatalf("zero discount changed total: %s vs %s", totals.Total, totals.Subtotal)
		}
	})
}
