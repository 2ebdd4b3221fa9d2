package storage

import (
	"context"
	"sync"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type MemoryCart struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	discount string
}

func NewMemoryCart() *MemoryCart {
	return &MemoryCart{}
}

func (c *MemoryCart) Append(ctx context.Context, line domain.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
	return nil
}

func (c *MemoryCart) RemoveAt(ctx context.Context, index int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.lines) {
		return false, nil
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return true, nil
}

func (c *MemoryCart) Lines(ctx context.Context) ([]domain.CartLine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneLines(c.lines), nil
}

func (c *MemoryCart) SetDiscount(ctx context.Context, raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discount = raw
	return nil
}

func (c *MemoryCart) Discount(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount, nil
}

func (c *MemoryCart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.discount = ""
	return nil
}
