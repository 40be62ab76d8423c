package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/algemiroteran/canvabot/internal/infra/store"
	"github.com/algemiroteran/canvabot/internal/session"
)

type HealthHandler struct {
	Store            *store.Store
	Controller       *session.Controller
	ClassifierConfig bool
	StartTime        time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(st *store.Store, controller *session.Controller, classifierConfigured bool) *HealthHandler {
	return &HealthHandler{
		Store:            st,
		Controller:       controller,
		ClassifierConfig: classifierConfigured,
		StartTime:        time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	// Check Store
	if _, err := h.Store.Load(); err != nil {
		deps["store"] = fmt.Sprintf("unhealthy: %v", err)
	} else {
		deps["store"] = "healthy"
	}

	// La sesión apagada no degrada el proceso: arranca desde el panel.
	deps["session"] = string(h.Controller.State())

	if h.ClassifierConfig {
		deps["classifier"] = "configured"
	} else {
		deps["classifier"] = "not configured"
	}

	status := "healthy"
	if deps["store"] != "healthy" {
		status = "degraded"
	}

	uptime := time.Since(h.StartTime).Round(time.Second).String()

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       uptime,
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}
