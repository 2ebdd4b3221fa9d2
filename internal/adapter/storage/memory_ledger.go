package storage

import (
	"context"
	"sync"

	"github.com/rl1809/pos-register/internal/core/domain"
)

// MemoryLedger is an append-only order list. The ID sequence advances under
// the same lock as the append, so IDs are gapless and never reused.
type MemoryLedger struct {
	mu     sync.RWMutex
	orders []domain.Order
	nextID int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{nextID: 1}
}

func (l *MemoryLedger) CreateOrder(ctx context.Context, draft domain.Order) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order := draft.Clone()
	order.ID = l.nextID
	l.nextID++
	l.orders = append(l.orders, order)

	return order.Clone(), nil
}

func (l *MemoryLedger) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// IDs are dense from 1, so the ID doubles as a position.
	i := orderID - 1
	if i < 0 || i >= int64(len(l.orders)) {
		return nil, nil
	}
	o := l.orders[i].Clone()
	return &o, nil
}

func (l *MemoryLedger) ListOrders(ctx context.Context) ([]domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = o.Clone()
	}
	return out, nil
}
