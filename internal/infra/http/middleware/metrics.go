package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	messagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_messages_processed_total",
			Help: "Total number of inbound WhatsApp messages, by resolved intent",
		},
		[]string{"intent"},
	)

	sendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whatsapp_send_errors_total",
			Help: "Total number of outbound sends that failed and were dropped",
		},
	)

	classificationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intent_classification_errors_total",
			Help: "Total number of classifier calls degraded to the fallback intent",
		},
	)

	sessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "session_state",
			Help: "Current session state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordMessage(intent string) {
	messagesProcessed.WithLabelValues(intent).Inc()
}

func RecordSendError() {
	sendErrors.Inc()
}

func RecordClassificationError() {
	classificationErrors.Inc()
}

func RecordSessionState(state string) {
	for _, s := range []string{"disconnected", "starting", "connected"} {
		value := 0.0
		if s == state {
			value = 1.0
		}
		sessionState.WithLabelValues(s).Set(value)
	}
}
