package storage

import (
	"context"

	"github.com/rl1809/pos-register/internal/core/domain"
)

// MemoryCatalog serves a fixed product list. Products are never mutated
// after construction, so reads need no locking.
type MemoryCatalog struct {
	products []domain.Product
	byID     map[int64]int
}

func NewMemoryCatalog(products []domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		c.byID[p.ID] = i
	}
	return c
}

func (c *MemoryCatalog) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	i, ok := c.byID[productID]
	if !ok {
		return nil, nil
	}
	p := c.products[i]
	return &p, nil
}
