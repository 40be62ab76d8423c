package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/algemiroteran/canvabot/internal/entity"
	"github.com/algemiroteran/canvabot/internal/funnel"
	"github.com/algemiroteran/canvabot/internal/infra/http/middleware"
)

// State de la sesión de WhatsApp. Una sola sesión activa por proceso.
type State string

const (
	StateDisconnected State = "disconnected"
	StateStarting     State = "starting"
	StateConnected    State = "connected"
)

// Transport es la sesión de WhatsApp vista desde el controlador: arrancar
// (con callbacks para el QR, el listo y los mensajes entrantes), mandar
// texto y cerrar.
type Transport interface {
	Start(ctx context.Context, onQR func(code string), onReady func(), onMessage func(funnel.Message)) error
	SendText(ctx context.Context, to, body string) error
	Stop()
}

// Classifier resuelve la intención de un texto. No devuelve error: la
// degradación a "otro" es responsabilidad del adaptador.
type Classifier interface {
	Classify(ctx context.Context, text string) funnel.Intent
}

// CustomerStore es lo que el controlador necesita del almacenamiento.
type CustomerStore interface {
	FindByPhone(phoneNumber string) (*entity.Customer, error)
	Upsert(customer entity.Customer) error
}

// Broadcaster empuja eventos al panel. Fire-and-forget.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Controller es el dueño del ciclo de vida de la sesión: máquina de estados
// desconectado/arrancando/conectado, despacho de mensajes entrantes al motor
// y ejecución en orden de los efectos que el motor devuelve.
type Controller struct {
	mu    sync.Mutex
	state State

	transport  Transport
	classifier Classifier
	store      CustomerStore
	engine     *funnel.Engine
	hub        Broadcaster

	// Inyectables para las pruebas de tiempo.
	now   func() time.Time
	after func(d time.Duration, fn func())
}

func NewController(transport Transport, classifier Classifier, store CustomerStore, engine *funnel.Engine, hub Broadcaster) *Controller {
	return &Controller{
		state:      StateDisconnected,
		transport:  transport,
		classifier: classifier,
		store:      store,
		engine:     engine,
		hub:        hub,
		now:        time.Now,
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start es idempotente: si la sesión ya está arrancando o conectada, solo
// reporta el estado actual y no levanta una segunda sesión.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		current := c.state
		c.mu.Unlock()
		c.hub.Broadcast(funnel.EventSessionState, current)
		return nil
	}
	c.state = StateStarting
	c.mu.Unlock()

	middleware.RecordSessionState(string(StateStarting))
	c.hub.Broadcast(funnel.EventSessionState, StateStarting)

	if err := c.transport.Start(ctx, c.onQR, c.onReady, c.HandleMessage); err != nil {
		// Sin reintento automático: el estado vuelve atrás y el operador
		// decide cuándo volver a arrancar.
		log.Printf("❌ Error al iniciar el bot: %v", err)
		c.setState(StateDisconnected)
		return err
	}
	return nil
}

// Stop cierra la sesión. Los efectos diferidos en vuelo no se cancelan:
// si disparan contra la sesión cerrada, el envío falla y queda en el log.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.transport.Stop()
	log.Println("🔴 Bot apagado manualmente")
	middleware.RecordSessionState(string(StateDisconnected))
	c.hub.Broadcast(funnel.EventSessionState, StateDisconnected)
}

// Send manda por la sesión activa. Sin sesión conectada es un no-op: el
// panel puede activar clientes aunque el bot esté apagado.
func (c *Controller) Send(ctx context.Context, to, body string) {
	c.mu.Lock()
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected {
		return
	}
	if err := c.transport.SendText(ctx, to, body); err != nil {
		log.Printf("❌ Error al enviar a %s: %v", to, err)
		middleware.RecordSendError()
	}
}

// HandleMessage procesa un mensaje entrante de punta a punta: clasifica,
// consulta el registro del cliente y ejecuta los efectos en orden.
func (c *Controller) HandleMessage(msg funnel.Message) {
	if msg.IsGroup {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msg.Body = strings.TrimSpace(msg.Body)

	// Una imagen se trata como captura del pago, gane lo que gane el
	// clasificador; solo el texto pasa por el modelo.
	intent := funnel.IntentConfirmPayment
	if msg.Type != funnel.MessageTypeImage {
		intent = c.classifier.Classify(ctx, msg.Body)
	}
	middleware.RecordMessage(string(intent))

	if intent == funnel.IntentOther {
		log.Printf("🔕 Mensaje sin intención clara: %s", msg.Body)
		return
	}

	existing, err := c.store.FindByPhone(msg.From)
	if err != nil {
		log.Printf("❌ No se pudo leer el archivo de clientes: %v", err)
		return
	}

	c.execute(c.engine.Decide(c.now(), intent, msg, existing))
}

func (c *Controller) execute(effects []funnel.Effect) {
	for _, effect := range effects {
		c.apply(effect)
	}
}

func (c *Controller) apply(effect funnel.Effect) {
	switch e := effect.(type) {
	case funnel.SendText:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := c.transport.SendText(ctx, e.To, e.Body); err != nil {
			// Sin cola de reenvío: el mensaje se pierde y queda en el log.
			log.Printf("❌ Error al enviar a %s: %v", e.To, err)
			middleware.RecordSendError()
		}
	case funnel.UpsertCustomer:
		if err := c.store.Upsert(e.Customer); err != nil {
			log.Printf("❌ Error al guardar cliente %s: %v", e.Customer.PhoneNumber, err)
		}
	case funnel.BroadcastEvent:
		c.hub.Broadcast(e.Event, e.Payload)
	case funnel.ScheduleEffect:
		inner := e.Effect
		c.after(e.After, func() {
			c.apply(inner)
		})
	}
}

func (c *Controller) onQR(code string) {
	log.Printf("📱 QR recibido (%d bytes)", len(code))
	c.hub.Broadcast(funnel.EventPairing, code)
}

func (c *Controller) onReady() {
	c.mu.Lock()
	if c.state != StateStarting {
		c.mu.Unlock()
		return
	}
	c.state = StateConnected
	c.mu.Unlock()

	log.Println("✅ Bot conectado desde el panel")
	middleware.RecordSessionState(string(StateConnected))
	c.hub.Broadcast(funnel.EventSessionState, StateConnected)
	c.hub.Broadcast(funnel.EventReady, nil)
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	middleware.RecordSessionState(string(state))
	c.hub.Broadcast(funnel.EventSessionState, state)
}
