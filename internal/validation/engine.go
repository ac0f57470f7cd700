package validation

import (
	"fmt"
	"maps"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// Engine evaluates an OrderSchema against order snapshots. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	schema   OrderSchema
	validate *validatorv10.Validate
	nowFunc  func() time.Time
	location *time.Location
}

type Option func(*Engine)

// WithClock sets the source of "now" used to decide what today is.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.nowFunc = now
		}
	}
}

// WithLocation sets the time zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewEngine builds an engine for schema. Every path named by the schema must
// belong to the field path vocabulary.
func NewEngine(schema OrderSchema, opts ...Option) (*Engine, error) {
	for _, f := range schema.Fields {
		if !f.Path.Known() {
			return nil, fmt.Errorf("field schema: %w: %q", orders.ErrUnknownField, f.Path)
		}
	}
	for _, r := range schema.Rules {
		if !r.Path.Known() {
			return nil, fmt.Errorf("rule %s: %w: %q", r.Name, orders.ErrUnknownField, r.Path)
		}
		if r.Holds == nil {
			return nil, fmt.Errorf("rule %s: missing predicate", r.Name)
		}
	}

	e := &Engine{
		schema:   schema,
		validate: New(),
		nowFunc:  time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Location returns the time zone used for calendar-day comparisons.
func (e *Engine) Location() *time.Location { return e.location }

// Evaluate runs every field rule, then the cross-field rules, and reports at
// most one error per path.
func (e *Engine) Evaluate(order orders.PartialOrder) Result {
	errs := Errors{}
	for _, f := range e.schema.Fields {
		value, err := order.Get(f.Path)
		if err != nil {
			continue // paths are checked in NewEngine
		}
		if fe := f.Validate(e.validate, value); fe != nil {
			if _, taken := errs[f.Path]; !taken {
				errs[f.Path] = *fe
			}
		}
	}

	// cross-field rules only look at field-level outcomes
	fieldErrs := maps.Clone(errs)
	env := RuleEnv{
		Today:    orders.CalendarDay(e.nowFunc(), e.location),
		Location: e.location,
	}
	for _, r := range e.schema.Rules {
		if _, taken := errs[r.Path]; taken {
			continue
		}
		if !dependenciesPassed(r, fieldErrs) {
			continue
		}
		if !r.Holds(order, env) {
			errs[r.Path] = FieldError{Code: r.Code, Message: r.Message}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func dependenciesPassed(r CrossFieldRule, fieldErrs Errors) bool {
	for _, dep := range r.DependsOn {
		if _, failed := fieldErrs[dep]; failed {
			return false
		}
	}
	return true
}
