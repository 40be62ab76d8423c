package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/algemiroteran/canvabot/internal/infra/store"
)

type ClientsHandler struct {
	Store *store.Store
}

func NewClientsHandler(st *store.Store) *ClientsHandler {
	return &ClientsHandler{Store: st}
}

// Handle (GET /clients) devuelve la lista completa de clientes.
// Un archivo ilegible es error del request, no del proceso.
func (h *ClientsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(customers)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
