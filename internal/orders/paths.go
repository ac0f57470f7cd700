package orders

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldPath is the dotted address of a (possibly nested) order field.
type FieldPath string

const (
	PathLoadType           FieldPath = "loadType"
	PathWithdrawalStreet   FieldPath = "withdrawal.street"
	PathWithdrawalLocality FieldPath = "withdrawal.locality"
	PathWithdrawalProvince FieldPath = "withdrawal.province"
	PathWithdrawalRef      FieldPath = "withdrawal.reference"
	PathDeliveryStreet     FieldPath = "delivery.street"
	PathDeliveryLocality   FieldPath = "delivery.locality"
	PathDeliveryProvince   FieldPath = "delivery.province"
	PathDeliveryRef        FieldPath = "delivery.reference"
	PathWithdrawalDate     FieldPath = "withdrawalDate"
	PathDeliveryDate       FieldPath = "deliveryDate"
	PathPhotos             FieldPath = "photos"
	PathObservation        FieldPath = "observation"
)

// FieldPaths is the complete path vocabulary shared with the UI layer.
var FieldPaths = []FieldPath{
	PathLoadType,
	PathWithdrawalStreet, PathWithdrawalLocality, PathWithdrawalProvince, PathWithdrawalRef,
	PathDeliveryStreet, PathDeliveryLocality, PathDeliveryProvince, PathDeliveryRef,
	PathWithdrawalDate, PathDeliveryDate,
	PathPhotos, PathObservation,
}

var (
	ErrUnknownField = errors.New("unknown field path")
	ErrInvalidValue = errors.New("invalid value for field")
)

// Known reports whether p belongs to the path vocabulary.
func (p FieldPath) Known() bool {
	for _, known := range FieldPaths {
		if p == known {
			return true
		}
	}
	return false
}

// Get returns the current value stored at path.
func (o PartialOrder) Get(path FieldPath) (any, error) {
	switch path {
	case PathLoadType:
		return o.LoadType, nil
	case PathWithdrawalDate:
		return o.WithdrawalDate, nil
	case PathDeliveryDate:
		return o.DeliveryDate, nil
	case PathPhotos:
		return o.Photos, nil
	case PathObservation:
		return o.Observation, nil
	}
	field, err := o.addressField(path)
	if err != nil {
		return nil, err
	}
	return *field, nil
}

// Set stores value at path. The value must already have the field's Go type
// (string, LoadType, *time.Time or []Attachment); nil clears the field.
func (o *PartialOrder) Set(path FieldPath, value any) error {
	switch path {
	case PathLoadType:
		switch v := value.(type) {
		case nil:
			o.LoadType = ""
		case LoadType:
			o.LoadType = v
		case string:
			o.LoadType = LoadType(v)
		default:
			return invalid(path, value)
		}
		return nil
	case PathWithdrawalDate, PathDeliveryDate:
		var date *time.Time
		switch v := value.(type) {
		case nil:
		case *time.Time:
			date = v
		case time.Time:
			date = &v
		default:
			return invalid(path, value)
		}
		if path == PathWithdrawalDate {
			o.WithdrawalDate = date
		} else {
			o.DeliveryDate = date
		}
		return nil
	case PathPhotos:
		switch v := value.(type) {
		case nil:
			o.Photos = nil
		case []Attachment:
			o.Photos = make([]Attachment, len(v))
			copy(o.Photos, v)
		default:
			return invalid(path, value)
		}
		return nil
	}

	var target *string
	if path == PathObservation {
		target = &o.Observation
	} else {
		field, err := o.addressField(path)
		if err != nil {
			return err
		}
		target = field
	}
	switch v := value.(type) {
	case nil:
		*target = ""
	case string:
		*target = v
	default:
		return invalid(path, value)
	}
	return nil
}

func (o *PartialOrder) addressField(path FieldPath) (*string, error) {
	prefix, leaf, ok := strings.Cut(string(path), ".")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	var addr *Address
	switch prefix {
	case "withdrawal":
		addr = &o.Withdrawal
	case "delivery":
		addr = &o.Delivery
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, path)
	}
	switch leaf {
	case "street":
		return &addr.Street, nil
	case "locality":
		return &addr.Locality, nil
	case "province":
		return &addr.Province, nil
	case "reference":
		return &addr.Reference, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, path)
}

func invalid(path FieldPath, value any) error {
	return fmt.Errorf("%w %s: %T", ErrInvalidValue, path, value)
}
