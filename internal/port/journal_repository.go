package port

import (
	"context"

	"github.com/rl1809/pos-register/internal/core/domain"
)

type JournalRepository interface {
	// RecordOrder writes a committed order and its lines to the receipt journal
	RecordOrder(ctx context.Context, order domain.Order) error
}
