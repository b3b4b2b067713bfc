package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// EventPublisher is the minimal surface the services need from the message
// broker. Implementations live in internal/events; a nil publisher disables
// event emission.
type EventPublisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// RefundReceipt is the gateway's acknowledgement of a refund.
type RefundReceipt struct {
	ID     string
	Amount decimal.Decimal
}

// PaymentGateway refunds a previously captured payment. The engine only
// decides the amount and whether to call; protocol details stay behind this
// interface. Gateway failures are non-fatal to cancellation.
type PaymentGateway interface {
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (RefundReceipt, error)
}

// publish is the shared best-effort emit path: errors are logged, never
// returned.
func publish(ctx context.Context, logger *slog.Logger, pub EventPublisher, key string, v any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, key, v); err != nil && logger != nil {
		logger.Warn("publish event failed", "key", key, "error", err)
	}
}
