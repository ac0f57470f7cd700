package validation

import (
	"errors"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// FieldSchema is the declarative rule for one field path. Tag is a validator
// tag string: "required" rejects absent values, "omitempty" lets them through,
// and any further tags type-check a present value. An empty Tag accepts anything.
type FieldSchema struct {
	Path     orders.FieldPath
	Tag      string
	Messages Messages
}

// Validate checks value against the rule. It has no side effects.
func (f FieldSchema) Validate(v *validatorv10.Validate, value any) *FieldError {
	if f.Tag == "" {
		return nil
	}
	err := v.Var(value, f.Tag)
	if err == nil {
		return nil
	}

	code := CodeMissingRequiredField
	var verrs validatorv10.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if c, ok := tagCodes[verrs[0].Tag()]; ok {
			code = c
		}
	}
	return &FieldError{Code: code, Message: f.Messages.lookup(code)}
}

// RuleEnv is the evaluation-time context handed to cross-field rules.
type RuleEnv struct {
	Today    time.Time // midnight of the current day in Location
	Location *time.Location
}

// Day truncates t to its calendar day in the rule location.
func (env RuleEnv) Day(t time.Time) time.Time {
	return orders.CalendarDay(t, env.Location)
}

// CrossFieldRule checks a constraint spanning more than one field. It runs only
// when every path in DependsOn passed its own field rule, and reports at Path.
type CrossFieldRule struct {
	Name      string
	Path      orders.FieldPath
	DependsOn []orders.FieldPath
	Code      ErrorCode
	Message   string
	Holds     func(order orders.PartialOrder, env RuleEnv) bool
}

// OrderSchema is the full set of rules for an order snapshot.
type OrderSchema struct {
	Fields []FieldSchema
	Rules  []CrossFieldRule
}

// DefaultSchema returns the canonical order rules.
func DefaultSchema() OrderSchema {
	fields := []FieldSchema{
		{
			Path: orders.PathLoadType,
			Tag:  "required,oneof=" + loadTypeOptions(),
			Messages: Messages{
				CodeMissingRequiredField: MsgLoadTypeRequired,
				CodeInvalidEnumValue:     MsgLoadTypeInvalid,
			},
		},
	}
	fields = append(fields, addressFields(
		orders.PathWithdrawalStreet, orders.PathWithdrawalLocality,
		orders.PathWithdrawalProvince, orders.PathWithdrawalRef)...)
	fields = append(fields, addressFields(
		orders.PathDeliveryStreet, orders.PathDeliveryLocality,
		orders.PathDeliveryProvince, orders.PathDeliveryRef)...)
	fields = append(fields,
		FieldSchema{
			Path:     orders.PathWithdrawalDate,
			Tag:      "required",
			Messages: Messages{CodeMissingRequiredField: MsgWithdrawalDateReq},
		},
		FieldSchema{
			Path:     orders.PathDeliveryDate,
			Tag:      "required",
			Messages: Messages{CodeMissingRequiredField: MsgDeliveryDateReq},
		},
		FieldSchema{
			Path:     orders.PathPhotos,
			Tag:      "omitempty," + tagImageTypes,
			Messages: Messages{CodeUnsupportedAttachmentType: MsgUnsupportedPhotoExt},
		},
		FieldSchema{Path: orders.PathObservation},
	)

	return OrderSchema{
		Fields: fields,
		Rules: []CrossFieldRule{
			PickupNotInPast(MsgWithdrawalDatePast),
			DeliveryNotBeforePickup(MsgDeliveryBeforePick),
		},
	}
}

// PickupNotInPast rejects a withdrawal date before today. Today itself passes.
func PickupNotInPast(message string) CrossFieldRule {
	return CrossFieldRule{
		Name:      "pickup_not_in_past",
		Path:      orders.PathWithdrawalDate,
		DependsOn: []orders.FieldPath{orders.PathWithdrawalDate},
		Code:      CodePastDateViolation,
		Message:   message,
		Holds: func(o orders.PartialOrder, env RuleEnv) bool {
			if o.WithdrawalDate == nil {
				return true
			}
			return !env.Day(*o.WithdrawalDate).Before(env.Today)
		},
	}
}

// DeliveryNotBeforePickup rejects a delivery date earlier than the withdrawal date.
func DeliveryNotBeforePickup(message string) CrossFieldRule {
	return CrossFieldRule{
		Name:      "delivery_after_pickup",
		Path:      orders.PathDeliveryDate,
		DependsOn: []orders.FieldPath{orders.PathWithdrawalDate, orders.PathDeliveryDate},
		Code:      CodeDateOrderingViolation,
		Message:   message,
		Holds: func(o orders.PartialOrder, env RuleEnv) bool {
			if o.WithdrawalDate == nil || o.DeliveryDate == nil {
				return true
			}
			return !env.Day(*o.DeliveryDate).Before(env.Day(*o.WithdrawalDate))
		},
	}
}

func addressFields(street, locality, province, reference orders.FieldPath) []FieldSchema {
	return []FieldSchema{
		{Path: street, Tag: "required", Messages: Messages{CodeMissingRequiredField: MsgStreetRequired}},
		{Path: locality, Tag: "required", Messages: Messages{CodeMissingRequiredField: MsgLocalityRequired}},
		{Path: province, Tag: "required", Messages: Messages{CodeMissingRequiredField: MsgProvinceRequired}},
		{Path: reference},
	}
}

func loadTypeOptions() string {
	opts := make([]string, len(orders.LoadTypes))
	for i, lt := range orders.LoadTypes {
		opts[i] = string(lt)
	}
	return strings.Join(opts, " ")
}
