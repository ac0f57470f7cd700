package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
	"github.com/imrishuroy/go-cargo-orderform/internal/validation"
)

// Controller owns the state of one in-progress order form. Every change
// re-evaluates the whole snapshot; a successful Submit emits OrderSubmitted
// and resets the form so it can take the next order.
type Controller struct {
	mu          sync.Mutex
	engine      *validation.Engine
	order       orders.PartialOrder
	result      validation.Result
	dateLayout  string
	subscribers []Subscriber
	logger      *zap.SugaredLogger
	newID       func() string
	nowFunc     func() time.Time
}

type Option func(*Controller)

// WithDateLayout sets the layout used for normalized dates (default yyyy-mm-dd).
func WithDateLayout(layout string) Option {
	return func(c *Controller) {
		if layout != "" {
			c.dateLayout = layout
		}
	}
}

// WithSubscribers registers receivers of OrderSubmitted, called in order.
func WithSubscribers(subs ...Subscriber) Option {
	return func(c *Controller) {
		for _, s := range subs {
			if s != nil {
				c.subscribers = append(c.subscribers, s)
			}
		}
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithIDGenerator replaces the submission id source (uuid by default).
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// WithClock sets the clock stamped on submissions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.nowFunc = now
		}
	}
}

// New returns a controller holding an empty order.
func New(engine *validation.Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:     engine,
		dateLayout: orders.DateLayoutYMD,
		logger:     zap.NewNop().Sugar(),
		newID:      uuid.NewString,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.result = engine.Evaluate(c.order)
	return c
}

// SetField updates path and re-validates the whole order. Date fields accept
// time.Time, *time.Time or a date string; nil clears any field. An unknown
// path or a value of the wrong type leaves the form untouched.
func (c *Controller) SetField(path orders.FieldPath, value any) (validation.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !path.Known() {
		return c.resultCopy(), fmt.Errorf("%w: %q", orders.ErrUnknownField, path)
	}
	v, err := c.coerce(path, value)
	if err != nil {
		return c.resultCopy(), err
	}

	next := c.order
	if err := next.Set(path, v); err != nil {
		return c.resultCopy(), err
	}
	c.order = next
	c.result = c.engine.Evaluate(c.order)
	return c.resultCopy(), nil
}

// AddPhotos appends photos to the ones already attached and re-validates.
func (c *Controller) AddPhotos(photos ...orders.Attachment) (validation.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.order
	merged := make([]orders.Attachment, 0, len(next.Photos)+len(photos))
	merged = append(append(merged, next.Photos...), photos...)
	if err := next.Set(orders.PathPhotos, merged); err != nil {
		return c.resultCopy(), err
	}
	c.order = next
	c.result = c.engine.Evaluate(c.order)
	return c.resultCopy(), nil
}

// Evaluate returns the errors of the current snapshot.
func (c *Controller) Evaluate() validation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultCopy()
}

// Snapshot returns a copy of the current partial order.
func (c *Controller) Snapshot() orders.PartialOrder {
	c.mu.Lock()
	defer c.mu.Unlock()
	o := c.order
	if o.Photos != nil {
		o.Photos = append([]orders.Attachment(nil), o.Photos...)
	}
	return o
}

// Submit validates the form. On failure it returns a *validation.Error and
// changes nothing. On success it normalizes the order, resets the form and
// then hands the event to every subscriber; subscriber failures come back as
// a *DispatchError alongside the event. Subscribers run without the form
// lock held.
func (c *Controller) Submit(ctx context.Context) (OrderSubmitted, error) {
	ev, err := c.take()
	if err != nil {
		return OrderSubmitted{}, err
	}

	var errs []error
	for _, s := range c.subscribers {
		if err := s.OrderSubmitted(ctx, ev); err != nil {
			c.logger.Warnw("order subscriber failed", "submission_id", ev.ID, "error", err)
			errs = append(errs, err)
		}
	}
	c.logger.Infow("order submitted", "submission_id", ev.ID, "load_type", ev.Order.LoadType)

	if len(errs) > 0 {
		return ev, &DispatchError{SubmissionID: ev.ID, Err: errors.Join(errs...)}
	}
	return ev, nil
}

// take turns a valid snapshot into its event and resets the form.
func (c *Controller) take() (OrderSubmitted, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := c.engine.Evaluate(c.order)
	if !result.Valid {
		c.logger.Debugw("order submission rejected", "invalid_fields", len(result.Errors))
		return OrderSubmitted{}, &validation.Error{Fields: result.Errors}
	}

	ev := OrderSubmitted{
		ID:          c.newID(),
		Order:       c.order.Normalize(c.dateLayout),
		SubmittedAt: c.nowFunc().UTC(),
	}
	c.order = orders.PartialOrder{}
	c.result = c.engine.Evaluate(c.order)
	return ev, nil
}

// Reset discards the current order without submitting it.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = orders.PartialOrder{}
	c.result = c.engine.Evaluate(c.order)
}

func (c *Controller) coerce(path orders.FieldPath, value any) (any, error) {
	if path != orders.PathWithdrawalDate && path != orders.PathDeliveryDate {
		return value, nil
	}
	loc := c.engine.Location()
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		d := orders.CalendarDay(*v, loc)
		return &d, nil
	case time.Time:
		d := orders.CalendarDay(v, loc)
		return &d, nil
	case string:
		if v == "" {
			return nil, nil
		}
		d, err := orders.ParseDate(v, c.dateLayout, loc)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", orders.ErrInvalidValue, path, err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("%w %s: %T", orders.ErrInvalidValue, path, value)
	}
}

func (c *Controller) resultCopy() validation.Result {
	return validation.Result{Valid: c.result.Valid, Errors: maps.Clone(c.result.Errors)}
}
