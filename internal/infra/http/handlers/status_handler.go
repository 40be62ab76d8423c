package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/algemiroteran/canvabot/internal/entity"
	"github.com/algemiroteran/canvabot/internal/funnel"
	"github.com/algemiroteran/canvabot/internal/infra/store"
)

// Sender manda un texto por la sesión activa; sin sesión es un no-op.
type Sender interface {
	Send(ctx context.Context, to, body string)
}

// Broadcaster empuja eventos al panel.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

type StatusHandler struct {
	Store  *store.Store
	Hub    Broadcaster
	Sender Sender
}

func NewStatusHandler(st *store.Store, hub Broadcaster, sender Sender) *StatusHandler {
	return &StatusHandler{Store: st, Hub: hub, Sender: sender}
}

// Handle (POST /status) actualiza el estado de un cliente desde el panel,
// emite status-changed y, si el estado nuevo es "activated", avisa al
// cliente por WhatsApp que su cuenta ya quedó lista.
func (h *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PhoneNumber string `json:"phoneNumber"`
		Status      string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if input.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PHONE", "phoneNumber is required")
		return
	}

	status, err := entity.ParseStatus(input.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		return
	}

	changed, err := h.Store.SetStatus(input.PhoneNumber, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if !changed {
		log.Printf("⚠️ POST /status sin registro para %s", input.PhoneNumber)
	}

	h.Hub.Broadcast(funnel.EventStatusChanged, funnel.StatusChange{
		PhoneNumber: input.PhoneNumber,
		Status:      status,
	})

	if status == entity.StatusActivated {
		h.Sender.Send(r.Context(), input.PhoneNumber, funnel.TemplateActivationComplete)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
