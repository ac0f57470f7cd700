package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// ErrorCode classifies a field failure.
type ErrorCode string

const (
	CodeMissingRequiredField      ErrorCode = "missing_required_field"
	CodeInvalidEnumValue          ErrorCode = "invalid_enum_value"
	CodeDateOrderingViolation     ErrorCode = "date_ordering_violation"
	CodePastDateViolation         ErrorCode = "past_date_violation"
	CodeUnsupportedAttachmentType ErrorCode = "unsupported_attachment_type"
)

// FieldError is the single message shown next to a field.
type FieldError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Errors maps a field path to its error. Paths without a violation are absent.
type Errors map[orders.FieldPath]FieldError

// Messages flattens the mapping to path -> message for display.
func (e Errors) Messages() map[string]string {
	out := make(map[string]string, len(e))
	for path, fe := range e {
		out[string(path)] = fe.Message
	}
	return out
}

// Paths returns the failing paths in sorted order.
func (e Errors) Paths() []orders.FieldPath {
	paths := make([]orders.FieldPath, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// Result is the outcome of evaluating a snapshot.
type Result struct {
	Valid  bool   `json:"valid"`
	Errors Errors `json:"errors"`
}

// Error wraps a failed evaluation so callers can surface the field errors.
type Error struct {
	Fields Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, p := range e.Fields.Paths() {
		parts = append(parts, fmt.Sprintf("%s: %s", p, e.Fields[p].Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
