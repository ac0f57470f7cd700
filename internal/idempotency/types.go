package idempotency

import "time"

// Status values for idempotency entries
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record tracks one idempotency key: the submission it produced and, once
// done, the response replayed to duplicate requests.
type Record struct {
	Key            string    `json:"idempotency_key"`
	Status         string    `json:"status"`
	SubmissionID   string    `json:"submission_id,omitempty"`
	ResponseBody   []byte    `json:"response_body,omitempty"`
	ResponseStatus int       `json:"response_status,omitempty"` // e.g., 201
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	Note           string    `json:"note,omitempty"`
}
