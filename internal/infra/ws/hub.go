package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/algemiroteran/canvabot/internal/funnel"
)

const writeTimeout = 2 * time.Second

// Mensajes de control que puede mandar el panel.
const (
	controlStartSession = "start-session"
	controlStopSession  = "stop-session"
)

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub mantiene los observadores del panel conectados por websocket.
// Los eventos salen fire-and-forget: sin ack, sin backpressure; el
// observador que no lee se desconecta y listo.
type Hub struct {
	// Callbacks del canal de control; se cablean en el arranque.
	OnStart func()
	OnStop  func()

	// SessionState devuelve el estado actual para saludar a cada
	// observador nuevo, como hacía el panel viejo al conectarse.
	SessionState func() any

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*websocket.Conn),
	}
}

// Handle acepta un observador y atiende su canal de control hasta que corte.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("❌ Error al aceptar websocket: %v", err)
		return
	}

	id := uuid.New().String()
	h.register(id, conn)
	defer h.unregister(id)
	log.Println("🟢 Cliente conectado al panel")

	if h.SessionState != nil {
		h.send(r.Context(), conn, envelope{Event: funnel.EventSessionState, Data: h.SessionState()})
	}

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}

		var control envelope
		if err := json.Unmarshal(data, &control); err != nil {
			continue
		}

		switch control.Event {
		case controlStartSession:
			if h.OnStart != nil {
				h.OnStart()
			}
		case controlStopSession:
			if h.OnStop != nil {
				h.OnStop()
			}
		}
	}
}

// Broadcast manda el evento a todos los observadores. El que falla al
// escribir se da de baja en el acto.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("❌ Error al serializar evento %s: %v", event, err)
		return
	}

	for id, conn := range h.snapshot() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.unregister(id)
		}
	}
}

// Observers devuelve cuántos paneles están conectados.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) send(ctx context.Context, conn *websocket.Conn, env envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(writeCtx, websocket.MessageText, data)
}

func (h *Hub) register(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = conn
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	conn, ok := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()

	if ok {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (h *Hub) snapshot() map[string]*websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := make(map[string]*websocket.Conn, len(h.conns))
	for id, conn := range h.conns {
		conns[id] = conn
	}
	return conns
}
