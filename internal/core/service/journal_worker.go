package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/pos-register/internal/core/domain"
	"github.com/rl1809/pos-register/internal/port"
)

// JournalWorker drains the committed-order queue into the receipt journal
// until the queue is closed. A failed write is logged and skipped; the order
// itself stays in the ledger.
func JournalWorker(id int, queue <-chan domain.Order, journal port.JournalRepository, timeout time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.Int("worker", id))

	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)

		if err := journal.RecordOrder(ctx, order); err != nil {
			logger.Error("failed to journal order",
				zap.Int64("order_id", order.ID),
				zap.String("session_id", order.SessionID),
				zap.Error(err),
			)
		} else {
			logger.Debug("journaled order", zap.Int64("order_id", order.ID))
		}

		cancel()
	}
}
