package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
)

// tagImageTypes gates attachment lists to JPEG/PNG.
const tagImageTypes = "image_types"

// tagCodes maps the failing validator tag to the error it represents.
var tagCodes = map[string]ErrorCode{
	"required":    CodeMissingRequiredField,
	"oneof":       CodeInvalidEnumValue,
	tagImageTypes: CodeUnsupportedAttachmentType,
}

// New returns a validator with the order-specific tags registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// image_types passes when every attachment in the slice is a JPEG or PNG.
	if err := v.RegisterValidation(tagImageTypes, imageTypes); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tagImageTypes, err))
	}

	return v
}

func imageTypes(fl validatorv10.FieldLevel) bool {
	photos, ok := fl.Field().Interface().([]orders.Attachment)
	if !ok {
		return false
	}
	for _, p := range photos {
		if !orders.IsSupportedImage(p.MimeType) {
			return false
		}
	}
	return true
}
