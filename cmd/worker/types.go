package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/aws"
)

// Dispatcher alerts the carriers covering an order's pickup zone.
type Dispatcher interface {
	Dispatch(ctx context.Context, n aws.CarrierNotification) error
}

// logDispatcher records the dispatch; carriers read it from the log stream.
type logDispatcher struct {
	logger *zap.SugaredLogger
}

func (d logDispatcher) Dispatch(_ context.Context, n aws.CarrierNotification) error {
	d.logger.Infow("carriers notified",
		"submission_id", n.SubmissionID,
		"load_type", n.LoadType,
		"zone", n.Withdrawal.Province,
		"from", n.Withdrawal.Locality,
		"to", n.Delivery.Locality,
		"withdrawal_date", n.WithdrawalDate,
		"delivery_date", n.DeliveryDate,
		"photo_count", n.PhotoCount,
	)
	return nil
}
