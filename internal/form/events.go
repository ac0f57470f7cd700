package form

import (
	"context"
	"fmt"
	"time"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// OrderSubmitted is emitted once per successful submission.
type OrderSubmitted struct {
	ID          string       `json:"submission_id"`
	Order       orders.Order `json:"order"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// Subscriber receives submitted orders (confirmation message, carrier
// notification, metrics).
type Subscriber interface {
	OrderSubmitted(ctx context.Context, ev OrderSubmitted) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, ev OrderSubmitted) error

func (f SubscriberFunc) OrderSubmitted(ctx context.Context, ev OrderSubmitted) error {
	return f(ctx, ev)
}

// DispatchError reports subscribers that failed to handle a submission. The
// submission itself succeeded and the form was reset.
type DispatchError struct {
	SubmissionID string
	Err          error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch submission %s: %v", e.SubmissionID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
