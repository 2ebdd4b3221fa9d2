package port

import (
	"context"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type CustomerRepository interface {
	// CreateCustomer assigns the next customer ID and appends the customer
	CreateCustomer(ctx context.Context, name, email string) (domain.Customer, error)

	// GetCustomer retrieves a customer by ID, returns nil if it does not exist
	GetCustomer(ctx context.Context, customerID string) (*domain.Customer, error)

	// ListCustomers returns all customers in registration order
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}
