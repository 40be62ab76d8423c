package funnel

import (
	"time"

	"github.com/algemiroteran/canvabot/internal/entity"
)

// Eventos que se empujan al panel por el canal en vivo.
const (
	EventSessionState  = "session-state"
	EventPairing       = "pairing-challenge"
	EventReady         = "ready"
	EventNewCustomer   = "new-customer"
	EventStatusChanged = "status-changed"
)

// Effect es una acción que el motor decide y el controlador ejecuta.
// Unión cerrada: enviar texto, persistir cliente, emitir evento o diferir.
type Effect interface {
	effect()
}

type SendText struct {
	To   string
	Body string
}

type UpsertCustomer struct {
	Customer entity.Customer
}

type BroadcastEvent struct {
	Event   string
	Payload any
}

type ScheduleEffect struct {
	After  time.Duration
	Effect Effect
}

func (SendText) effect()       {}
func (UpsertCustomer) effect() {}
func (BroadcastEvent) effect() {}
func (ScheduleEffect) effect() {}

// StatusChange es el payload del evento status-changed.
type StatusChange struct {
	PhoneNumber string        `json:"phoneNumber"`
	Status      entity.Status `json:"status"`
}
