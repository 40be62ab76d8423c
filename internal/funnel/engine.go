package funnel

import (
	"strings"
	"time"

	"github.com/algemiroteran/canvabot/internal/entity"
)

// FollowUpDelay es la espera antes del mensaje de cortesía post-venta.
const FollowUpDelay = 3 * time.Second

// Engine decide qué hacer con cada mensaje entrante. No toca I/O: recibe la
// intención ya clasificada y el registro actual del cliente (o nil), y
// devuelve la lista ordenada de efectos para que el controlador los ejecute.
type Engine struct {
	greeted *GreetedSet
}

func NewEngine(greeted *GreetedSet) *Engine {
	return &Engine{greeted: greeted}
}

func (e *Engine) Decide(now time.Time, intent Intent, msg Message, existing *entity.Customer) []Effect {
	// Los grupos no participan del embudo.
	if msg.IsGroup {
		return nil
	}

	switch intent {
	case IntentInfoCampaign:
		return e.decideInfoCampaign(now, msg)
	case IntentSubmitEmail:
		return e.decideSubmitEmail(now, msg, existing)
	case IntentConfirmActivation, IntentAskPayment:
		// Ambas intenciones colapsan en la misma respuesta.
		return []Effect{SendText{To: msg.From, Body: TemplatePaymentInstructions}}
	case IntentConfirmPayment:
		return e.decideConfirmPayment(msg, existing)
	}

	// otro: sin efectos; el controlador deja constancia en el log.
	return nil
}

func (e *Engine) decideInfoCampaign(now time.Time, msg Message) []Effect {
	if e.greeted.Contains(msg.From, now) {
		return nil
	}
	e.greeted.Add(msg.From, now)

	return []Effect{SendText{To: msg.From, Body: TemplatePromo}}
}

func (e *Engine) decideSubmitEmail(now time.Time, msg Message, existing *entity.Customer) []Effect {
	if existing == nil {
		customer := entity.Customer{
			PhoneNumber: msg.From,
			Email:       strings.TrimSpace(msg.Body),
			Status:      entity.StatusPending,
			CreatedAt:   now,
		}
		return []Effect{
			UpsertCustomer{Customer: customer},
			BroadcastEvent{Event: EventNewCustomer, Payload: customer},
			SendText{To: msg.From, Body: TemplateEmailReceived},
		}
	}

	switch existing.Status {
	case entity.StatusPending:
		return []Effect{SendText{To: msg.From, Body: TemplateStillPending}}
	case entity.StatusActivated:
		return []Effect{SendText{To: msg.From, Body: TemplateAlreadyActivated}}
	}

	// Estado "sold": el sistema original no contestaba nada en este caso.
	// Se conserva el silencio hasta que producto defina otra cosa.
	return nil
}

func (e *Engine) decideConfirmPayment(msg Message, existing *entity.Customer) []Effect {
	var effects []Effect

	// El pago solo marca registros existentes; nunca crea uno nuevo.
	if existing != nil {
		sold := *existing
		sold.Status = entity.StatusSold
		effects = append(effects,
			UpsertCustomer{Customer: sold},
			BroadcastEvent{
				Event:   EventStatusChanged,
				Payload: StatusChange{PhoneNumber: sold.PhoneNumber, Status: entity.StatusSold},
			},
		)
	}

	effects = append(effects,
		SendText{To: msg.From, Body: TemplateAccessGranted},
		ScheduleEffect{
			After:  FollowUpDelay,
			Effect: SendText{To: msg.From, Body: TemplateFollowUp},
		},
	)
	return effects
}
