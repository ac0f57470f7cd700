// Package notify tells the person who placed an order that carriers were alerted.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/form"
)

// ConfirmationMessage is shown after every successful submission.
const ConfirmationMessage = "El nuevo pedido fue notificado a todos los transportistas dentro de la zona de cobertura"

// Confirmation is the subscriber behind the on-screen confirmation. It records
// the last confirmation so the HTTP layer can echo it, and logs each one.
type Confirmation struct {
	logger *zap.SugaredLogger
	sink   func(submissionID, message string)
}

// NewConfirmation returns a Confirmation. sink may be nil.
func NewConfirmation(logger *zap.SugaredLogger, sink func(submissionID, message string)) *Confirmation {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Confirmation{logger: logger, sink: sink}
}

// OrderSubmitted implements form.Subscriber.
func (c *Confirmation) OrderSubmitted(_ context.Context, ev form.OrderSubmitted) error {
	c.logger.Infow(ConfirmationMessage,
		"submission_id", ev.ID,
		"load_type", ev.Order.LoadType,
		"withdrawal_locality", ev.Order.Withdrawal.Locality,
		"delivery_locality", ev.Order.Delivery.Locality,
	)
	if c.sink != nil {
		c.sink(ev.ID, ConfirmationMessage)
	}
	return nil
}
