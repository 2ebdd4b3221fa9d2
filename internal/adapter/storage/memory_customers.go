package storage

import (
	"context"
	"sync"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type MemoryCustomers struct {
	mu        sync.RWMutex
	customers []domain.Customer
	byID      map[string]int
	nextSeq   int
}

func NewMemoryCustomers() *MemoryCustomers {
	return &MemoryCustomers{
		byID:    make(map[string]int),
		nextSeq: 1,
	}
}

func (c *MemoryCustomers) CreateCustomer(ctx context.Context, name, email string) (domain.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	customer := domain.Customer{
		ID:    domain.FormatCustomerID(c.nextSeq),
		Name:  name,
		Email: email,
	}
	c.nextSeq++
	c.byID[customer.ID] = len(c.customers)
	c.customers = append(c.customers, customer)

	return customer, nil
}

func (c *MemoryCustomers) GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byID[customerID]
	if !ok {
		return nil, nil
	}
	customer := c.customers[i]
	return &customer, nil
}

func (c *MemoryCustomers) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Customer, len(c.customers))
	copy(out, c.customers)
	return out, nil
}
