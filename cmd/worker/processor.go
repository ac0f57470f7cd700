package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/aws"
	"github.com/imrishuroy/go-cargo-orderform/internal/idempotency"
)

var errInvalidMessage = errors.New("invalid carrier notification")

// Processor handles carrier notifications delivered by SQS. SQS is at least
// once, so each submission id is dispatched only once per dedup window.
type Processor struct {
	seen       *idempotency.Store
	dispatcher Dispatcher
	logger     *zap.SugaredLogger
}

// NewProcessor creates a new worker processor.
func NewProcessor(seen *idempotency.Store, dispatcher Dispatcher, logger *zap.SugaredLogger) *Processor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if dispatcher == nil {
		dispatcher = logDispatcher{logger: logger}
	}
	return &Processor{seen: seen, dispatcher: dispatcher, logger: logger}
}

// Handle processes an SQS batch and reports the messages that failed so only
// those are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.logger.Errorw("worker error", "message_id", rec.MessageId, "error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg aws.CarrierNotification
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	if msg.SubmissionID == "" {
		return fmt.Errorf("%w: missing submission_id", errInvalidMessage)
	}

	p.logger.Debugw("received carrier notification", "submission_id", msg.SubmissionID, "load_type", msg.LoadType)

	created, err := p.seen.CreateIfNotExists(ctx, msg.SubmissionID, msg.SubmissionID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !created {
		rec, err := p.seen.Get(ctx, msg.SubmissionID)
		if err != nil {
			return fmt.Errorf("dedup lookup: %w", err)
		}
		switch {
		case rec == nil:
			// expired in between; treat as new
		case rec.Status == idempotency.StatusFailed:
			p.seen.Delete(msg.SubmissionID)
		default:
			p.logger.Infow("duplicate carrier notification", "submission_id", msg.SubmissionID, "status", rec.Status)
			return nil
		}
		if _, err := p.seen.CreateIfNotExists(ctx, msg.SubmissionID, msg.SubmissionID); err != nil {
			return fmt.Errorf("dedup retake: %w", err)
		}
	}

	if err := p.dispatcher.Dispatch(ctx, msg); err != nil {
		_ = p.seen.MarkFailed(ctx, msg.SubmissionID, err.Error())
		return fmt.Errorf("dispatch %s: %w", msg.SubmissionID, err)
	}

	if err := p.seen.MarkDone(ctx, msg.SubmissionID, msg.SubmissionID, nil, 0); err != nil {
		return fmt.Errorf("failed to update dedup record: %w", err)
	}
	return nil
}
