package port

import (
	"context"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type LedgerRepository interface {
	// CreateOrder assigns the next order ID to draft and appends it, returns the stored order
	CreateOrder(ctx context.Context, draft domain.Order) (domain.Order, error)

	// GetOrder retrieves an order by ID, returns nil if it does not exist
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)

	// ListOrders returns all orders in commit order
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
