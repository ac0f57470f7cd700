package orders

import (
	"strings"
	"time"
)

// LoadType is the kind of cargo being moved.
type LoadType string

const (
	LoadDocumentation LoadType = "documentation"
	LoadPackage       LoadType = "package"
	LoadGrain         LoadType = "grain"
	LoadLivestock     LoadType = "livestock"
)

// LoadTypes lists the accepted cargo kinds in display order.
var LoadTypes = []LoadType{LoadDocumentation, LoadPackage, LoadGrain, LoadLivestock}

// Supported attachment types
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// IsSupportedImage reports whether mimeType may be attached to an order.
func IsSupportedImage(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case MimeJPEG, MimePNG:
		return true
	default:
		return false
	}
}

// Address is a pickup or delivery location.
type Address struct {
	Street    string `json:"street"`
	Locality  string `json:"locality"`
	Province  string `json:"province"`
	Reference string `json:"reference,omitempty"` // optional landmark
}

// Attachment is a photo already resolved to in-memory metadata.
type Attachment struct {
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType"`
	Bytes    []byte `json:"-"`
}

// Size returns the attachment payload length in bytes.
func (a Attachment) Size() int { return len(a.Bytes) }

// PartialOrder is the editable order snapshot. Empty strings, nil dates and
// empty photo lists mean the field has not been filled in yet.
type PartialOrder struct {
	LoadType       LoadType     `json:"loadType,omitempty"`
	Withdrawal     Address      `json:"withdrawal"`
	Delivery       Address      `json:"delivery"`
	WithdrawalDate *time.Time   `json:"withdrawalDate,omitempty"`
	DeliveryDate   *time.Time   `json:"deliveryDate,omitempty"`
	Photos         []Attachment `json:"photos,omitempty"`
	Observation    string       `json:"observation,omitempty"`
}

// Order is the normalized record produced by a successful submission.
// Dates are rendered with the configured calendar layout.
type Order struct {
	LoadType       LoadType     `json:"loadType"`
	Withdrawal     Address      `json:"withdrawal"`
	Delivery       Address      `json:"delivery"`
	WithdrawalDate string       `json:"withdrawalDate"`
	DeliveryDate   string       `json:"deliveryDate"`
	Photos         []Attachment `json:"photos"`
	Observation    string       `json:"observation,omitempty"`
}

// Normalize renders the snapshot as an Order. Callers validate first; absent
// dates render as empty strings.
func (o PartialOrder) Normalize(layout string) Order {
	photos := make([]Attachment, len(o.Photos))
	copy(photos, o.Photos)
	return Order{
		LoadType:       o.LoadType,
		Withdrawal:     o.Withdrawal,
		Delivery:       o.Delivery,
		WithdrawalDate: formatDate(o.WithdrawalDate, layout),
		DeliveryDate:   formatDate(o.DeliveryDate, layout),
		Photos:         photos,
		Observation:    o.Observation,
	}
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

// CalendarDay truncates t to midnight of its calendar day in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
