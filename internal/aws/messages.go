package aws

import (
	"time"

	"github.com/imrishuroy/go-cargo-orderform/internal/form"
	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// CarrierNotification is the payload sent from API -> SQS -> Worker.
// Photo bytes stay with the API; carriers only learn how many there are.
type CarrierNotification struct {
	SubmissionID   string          `json:"submission_id"`
	LoadType       orders.LoadType `json:"load_type"`
	Withdrawal     orders.Address  `json:"withdrawal"`
	Delivery       orders.Address  `json:"delivery"`
	WithdrawalDate string          `json:"withdrawal_date"`
	DeliveryDate   string          `json:"delivery_date"`
	PhotoCount     int             `json:"photo_count"`
	PhotoTypes     []string        `json:"photo_types,omitempty"`
	Observation    string          `json:"observation,omitempty"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

// NewCarrierNotification flattens a submission into the queue payload.
func NewCarrierNotification(ev form.OrderSubmitted) CarrierNotification {
	n := CarrierNotification{
		SubmissionID:   ev.ID,
		LoadType:       ev.Order.LoadType,
		Withdrawal:     ev.Order.Withdrawal,
		Delivery:       ev.Order.Delivery,
		WithdrawalDate: ev.Order.WithdrawalDate,
		DeliveryDate:   ev.Order.DeliveryDate,
		PhotoCount:     len(ev.Order.Photos),
		Observation:    ev.Order.Observation,
		SubmittedAt:    ev.SubmittedAt,
	}
	for _, p := range ev.Order.Photos {
		n.PhotoTypes = append(n.PhotoTypes, p.MimeType)
	}
	return n
}
