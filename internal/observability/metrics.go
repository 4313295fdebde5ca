package observability

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Record outcomes.
const (
	OutcomeStored  = "stored"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hvac_http_requests_total",
			Help: "Total requests by route pattern and status code.",
		},
		[]string{"route", "status"},
	)

	RecordCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hvac_records_total",
			Help: "Extracted records by kind (sensor, command) and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	TokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hvac_tokens_issued_total",
			Help: "User tokens issued through the admin endpoint.",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter, RecordCounter, TokensIssued)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware counts requests per chi route pattern; raw paths carry tokens and are never used as labels.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		RequestCounter.WithLabelValues(route, strconv.Itoa(rw.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
