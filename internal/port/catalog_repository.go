package port

import (
	"context"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type CatalogRepository interface {
	// ListProducts returns products in catalog order, filtered by category ("" or "All" for every product)
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)

	// GetProduct retrieves a product by ID, returns nil if it does not exist
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
}
