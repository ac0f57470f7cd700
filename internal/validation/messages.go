package validation

// Messages holds the fixed text shown for each error code of a field.
type Messages map[ErrorCode]string

// Fixed user-facing messages.
const (
	MsgLoadTypeRequired    = "Seleccione el tipo de carga"
	MsgLoadTypeInvalid     = "Seleccione un tipo de carga válido"
	MsgStreetRequired      = "Calle es requerida"
	MsgLocalityRequired    = "Localidad es requerida"
	MsgProvinceRequired    = "Provincia es requerida"
	MsgWithdrawalDateReq   = "Seleccione la fecha de retiro"
	MsgWithdrawalDatePast  = "La fecha de retiro no puede ser en el pasado"
	MsgDeliveryDateReq     = "Seleccione la fecha de entrega"
	MsgDeliveryBeforePick  = "La fecha de entrega debe ser mayor o igual a la fecha de retiro"
	MsgUnsupportedPhotoExt = "Las imágenes deben ser JPG o PNG"
)

// fallback text when a schema does not name a message for a code
var defaultMessages = Messages{
	CodeMissingRequiredField:      "Campo requerido",
	CodeInvalidEnumValue:          "Valor inválido",
	CodeDateOrderingViolation:     "Fecha fuera de rango",
	CodePastDateViolation:         "La fecha no puede ser en el pasado",
	CodeUnsupportedAttachmentType: MsgUnsupportedPhotoExt,
}

func (m Messages) lookup(code ErrorCode) string {
	if msg, ok := m[code]; ok {
		return msg
	}
	return defaultMessages[code]
}
