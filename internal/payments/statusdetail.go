package payments

// Provider payment statuses.
const (
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusPending   = "pending"
	StatusInProcess = "in_process"
)

var statusMessages = map[string]string{
	StatusApproved:  "Pago aprobado",
	StatusRejected:  "Pago rechazado",
	StatusPending:   "Pago pendiente",
	StatusInProcess: "Pago en proceso",
}

// statusDetailMessages maps the provider's fine-grained rejection codes to
// the copy shown to the shopper. Unmapped codes fall back to a generic hint.
var statusDetailMessages = map[string]string{
	"cc_rejected_insufficient_amount":      "Fondos insuficientes",
	"cc_rejected_bad_filled_card_number":   "Número de tarjeta incorrecto",
	"cc_rejected_bad_filled_date":          "Fecha de vencimiento incorrecta",
	"cc_rejected_bad_filled_security_code": "Código de seguridad incorrecto",
	"cc_rejected_bad_filled_other":         "Datos incompletos o inválidos",
	"cc_rejected_blacklist":                "Tarjeta bloqueada",
	"cc_rejected_call_for_authorize":       "Contacta al emisor para autorizar",
	"cc_rejected_card_disabled":            "Tarjeta inactiva",
	"cc_rejected_duplicated_payment":       "Pago duplicado",
	"cc_rejected_high_risk":                "Pago rechazado por riesgo",
	"cc_rejected_invalid_installments":     "Cuotas inválidas",
	"cc_rejected_max_attempts":             "Intentos máximos alcanzados",
	"cc_rejected_other_reason":             "Pago rechazado por el emisor",
	"cc_rejected_card_error":               "Error con la tarjeta",
	"expired_card":                         "Tarjeta vencida",
}

const fallbackDetailMessage = "Verifica los datos o prueba otro medio de pago"

func statusDetailMessage(detail string) string {
	if msg, ok := statusDetailMessages[detail]; ok {
		return msg
	}
	return fallbackDetailMessage
}

// userMessage composes the status headline with the detail hint, e.g.
// "Pago rechazado: Fondos insuficientes".
func userMessage(status, statusDetail string) string {
	headline, ok := statusMessages[status]
	if !ok {
		headline = "Estado"
	}
	if status != StatusRejected {
		return headline
	}
	return headline + ": " + statusDetailMessage(statusDetail)
}
