package funnel

import "strings"

// Intent es la intención del mensaje dentro del embudo (conjunto cerrado).
// Los valores son las etiquetas que devuelve el clasificador remoto.
type Intent string

const (
	IntentInfoCampaign      Intent = "info_campaña"
	IntentSubmitEmail       Intent = "enviar_correo"
	IntentConfirmActivation Intent = "confirmar_activacion"
	IntentAskPayment        Intent = "preguntar_pago"
	IntentConfirmPayment    Intent = "confirmar_pago"
	IntentOther             Intent = "otro"
)

// ParseIntent limpia la respuesta cruda del modelo. Cualquier etiqueta
// desconocida o malformada cae en "otro": el motor nunca ve basura.
func ParseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentInfoCampaign:
		return IntentInfoCampaign
	case IntentSubmitEmail:
		return IntentSubmitEmail
	case IntentConfirmActivation:
		return IntentConfirmActivation
	case IntentAskPayment:
		return IntentAskPayment
	case IntentConfirmPayment:
		return IntentConfirmPayment
	}
	return IntentOther
}

// Tipos de contenido del mensaje entrante.
const (
	MessageTypeText  = "chat"
	MessageTypeImage = "image"
)

// Message es el mensaje entrante tal como lo entrega el transporte.
type Message struct {
	From    string
	Body    string
	Type    string
	IsGroup bool
}
