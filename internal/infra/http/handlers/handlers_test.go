package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/algemiroteran/canvabot/internal/entity"
	"github.com/algemiroteran/canvabot/internal/funnel"
	"github.com/algemiroteran/canvabot/internal/infra/http/handlers"
	"github.com/algemiroteran/canvabot/internal/infra/store"
	"github.com/algemiroteran/canvabot/internal/session"
)

type recordingHub struct {
	events   []string
	payloads []any
}

func (h *recordingHub) Broadcast(event string, payload any) {
	h.events = append(h.events, event)
	h.payloads = append(h.payloads, payload)
}

type recordingSender struct {
	sent []string
	to   []string
}

func (s *recordingSender) Send(ctx context.Context, to, body string) {
	s.to = append(s.to, to)
	s.sent = append(s.sent, body)
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(filepath.Join(t.TempDir(), "clientes.json"))
}

func TestClientsHandlerListsCustomers(t *testing.T) {
	st := newStore(t)
	assert.NoError(t, st.Upsert(entity.Customer{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusPending}))

	rec := httptest.NewRecorder()
	handlers.NewClientsHandler(st).Handle(rec, httptest.NewRequest(http.MethodGet, "/clients", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"phoneNumber":"57300"`)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)
}

func TestClientsHandlerStoreError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.json")
	assert.NoError(t, os.WriteFile(path, []byte("{roto"), 0o644))

	rec := httptest.NewRecorder()
	handlers.NewClientsHandler(store.New(path)).Handle(rec, httptest.NewRequest(http.MethodGet, "/clients", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "STORE_ERROR")
}

// TestStatusHandlerActivation - activar desde el panel persiste el estado,
// emite status-changed y avisa al cliente por WhatsApp.
func TestStatusHandlerActivation(t *testing.T) {
	st := newStore(t)
	assert.NoError(t, st.Upsert(entity.Customer{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusSold}))

	hub := &recordingHub{}
	sender := &recordingSender{}
	handler := handlers.NewStatusHandler(st, hub, sender)

	body := strings.NewReader(`{"phoneNumber":"57300","status":"activated"}`)
	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/status", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	found, _ := st.FindByPhone("57300")
	assert.Equal(t, entity.StatusActivated, found.Status)

	assert.Equal(t, []string{funnel.EventStatusChanged}, hub.events)
	change, ok := hub.payloads[0].(funnel.StatusChange)
	assert.True(t, ok)
	assert.Equal(t, "57300", change.PhoneNumber)
	assert.Equal(t, entity.StatusActivated, change.Status)

	assert.Equal(t, []string{"57300"}, sender.to)
	assert.Equal(t, []string{funnel.TemplateActivationComplete}, sender.sent)
}

// TestStatusHandlerSoldDoesNotNotify - solo "activated" dispara el mensaje
// al cliente; los demás cambios se quedan en el panel.
func TestStatusHandlerSoldDoesNotNotify(t *testing.T) {
	st := newStore(t)
	assert.NoError(t, st.Upsert(entity.Customer{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusPending}))

	hub := &recordingHub{}
	sender := &recordingSender{}
	handler := handlers.NewStatusHandler(st, hub, sender)

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(`{"phoneNumber":"57300","status":"sold"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{funnel.EventStatusChanged}, hub.events)
	assert.Empty(t, sender.sent)
}

// Los estados en español de la versión vieja del panel siguen valiendo.
func TestStatusHandlerAcceptsLegacyStatus(t *testing.T) {
	st := newStore(t)
	assert.NoError(t, st.Upsert(entity.Customer{PhoneNumber: "57300", Email: "mi@correo.com", Status: entity.StatusPending}))

	rec := httptest.NewRecorder()
	handlers.NewStatusHandler(st, &recordingHub{}, &recordingSender{}).
		Handle(rec, httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(`{"phoneNumber":"57300","status":"vendido"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	found, _ := st.FindByPhone("57300")
	assert.Equal(t, entity.StatusSold, found.Status)
}

func TestStatusHandlerBadRequests(t *testing.T) {
	handler := handlers.NewStatusHandler(newStore(t), &recordingHub{}, &recordingSender{})

	cases := map[string]struct {
		body string
		code string
	}{
		"json inválido":      {body: `{phoneNumber`, code: "INVALID_JSON"},
		"sin teléfono":       {body: `{"status":"sold"}`, code: "MISSING_PHONE"},
		"estado desconocido": {body: `{"phoneNumber":"57300","status":"done"}`, code: "INVALID_STATUS"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(tc.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.code)
		})
	}
}

// TestStatusHandlerUnknownPhoneStillBroadcasts - un número sin registro no es
// error del request; el panel igual recibe el evento y decide qué mostrar.
func TestStatusHandlerUnknownPhoneStillBroadcasts(t *testing.T) {
	hub := &recordingHub{}
	handler := handlers.NewStatusHandler(newStore(t), hub, &recordingSender{})

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(`{"phoneNumber":"99999","status":"sold"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{funnel.EventStatusChanged}, hub.events)
}

func TestStatusHandlerStoreError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.json")
	assert.NoError(t, os.WriteFile(path, []byte("{roto"), 0o644))

	rec := httptest.NewRecorder()
	handlers.NewStatusHandler(store.New(path), &recordingHub{}, &recordingSender{}).
		Handle(rec, httptest.NewRequest(http.MethodPost, "/status", strings.NewReader(`{"phoneNumber":"57300","status":"sold"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "STORE_ERROR")
}

func TestHealthHandlerHealthy(t *testing.T) {
	controller := session.NewController(nil, nil, nil, nil, nil)
	handler := handlers.NewHealthHandler(newStore(t), controller, true)

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"store":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"session":"disconnected"`)
	assert.Contains(t, rec.Body.String(), `"classifier":"configured"`)
}

// La sesión apagada no degrada el health check; un archivo ilegible sí.
func TestHealthHandlerDegradedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clientes.json")
	assert.NoError(t, os.WriteFile(path, []byte("{roto"), 0o644))

	controller := session.NewController(nil, nil, nil, nil, nil)
	handler := handlers.NewHealthHandler(store.New(path), controller, false)

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	assert.Contains(t, rec.Body.String(), `"classifier":"not configured"`)
}
