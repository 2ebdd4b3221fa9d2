package port

import (
	"context"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type CartRepository interface {
	// Append adds a line to the end of the cart
	Append(ctx context.Context, line domain.CartLine) error

	// RemoveAt deletes the line at index, returns false if index is out of range
	RemoveAt(ctx context.Context, index int) (bool, error)

	// Lines returns a copy of the current cart lines
	Lines(ctx context.Context) ([]domain.CartLine, error)

	// SetDiscount stores the raw discount input
	SetDiscount(ctx context.Context, raw string) error

	// Discount returns the raw discount input
	Discount(ctx context.Context) (string, error)

	// Clear empties the cart and resets the discount input
	Clear(ctx context.Context) error
}
