package httpapi

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/entities"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/services"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/observability"
)

// Response bodies kept byte-compatible with what deployed devices expect.
const (
	helloBody      = "hello world!"
	notFoundBody   = "404 - User not found!"
	badPayloadBody = "400 - Invalid payload!"
	issueFailBody  = "500 - Could not issue token!"
)

// Route patterns. Parameters are positional path segments.
const (
	RouteRoot     = "/"
	RouteUpload   = "/upload/API_key={apiKey}/dev={deviceID}/data=*"
	RouteAddToken = "/add_token/API_key={apiKey}"
	RouteMetrics  = "/metrics"
)

type Ingester interface {
	Ingest(ctx context.Context, token, deviceID, encoded string) (services.IngestionResult, error)
}

type TokenIssuer interface {
	IssueToken(ctx context.Context, adminToken string) (string, error)
}

type Server struct {
	ingest Ingester
	admin  TokenIssuer
}

func New(ingest Ingester, admin TokenIssuer) *Server {
	return &Server{ingest: ingest, admin: admin}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(observability.MetricsMiddleware)

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeNotFound)

	r.Get(RouteRoot, s.handleRoot)
	r.Get(RouteUpload, s.handleUpload)
	r.Get(RouteAddToken, s.handleAddToken)
	r.Method(http.MethodGet, RouteMetrics, observability.Handler())
	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, helloBody)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	token := pathParam(r, "apiKey")
	deviceID := pathParam(r, "deviceID")
	encoded := pathParam(r, "*")

	res, err := s.ingest.Ingest(r.Context(), token, deviceID, encoded)
	switch {
	case errors.Is(err, entities.ErrUnauthorized):
		slog.Warn("upload com token inválido", "device_id", deviceID, "remote", r.RemoteAddr)
		writeNotFound(w, r)
		return
	case errors.Is(err, entities.ErrDecode):
		slog.Warn("payload inválido", "device_id", deviceID, "error", err)
		writeText(w, http.StatusBadRequest, badPayloadBody)
		return
	case err != nil:
		slog.Error("falha inesperada no upload", "device_id", deviceID, "error", err)
		writeText(w, http.StatusInternalServerError, "500 - Internal error!")
		return
	}

	countRecord("sensor", res.Sensor != nil, res.SensorErr)
	countRecord("command", res.Command != nil, res.CommandErr)

	writeText(w, http.StatusOK, confirmation(res))
}

func (s *Server) handleAddToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.admin.IssueToken(r.Context(), pathParam(r, "apiKey"))
	if errors.Is(err, entities.ErrUnauthorized) {
		slog.Warn("emissão de token negada", "remote", r.RemoteAddr)
		writeNotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("falha ao emitir token", "error", err)
		writeText(w, http.StatusInternalServerError, issueFailBody)
		return
	}

	observability.TokensIssued.Inc()
	slog.Info("novo token de usuário emitido")
	writeText(w, http.StatusOK, token)
}

func confirmation(res services.IngestionResult) string {
	var b strings.Builder
	b.WriteString("Authenticated<br>Device: ")
	b.WriteString(html.EscapeString(res.DeviceID))
	b.WriteString("<br><br>Sending sensor:<br>")
	b.WriteString(describe(res.Sensor, res.SensorErr))
	b.WriteString("<br><br>Sending command feedback:<br>")
	b.WriteString(describe(res.Command, res.CommandErr))
	return b.String()
}

func describe[T fmt.Stringer](rec *T, err error) string {
	if rec == nil {
		return "None"
	}
	s := html.EscapeString((*rec).String())
	if err != nil {
		s += " (store failed)"
	}
	return s
}

func countRecord(kind string, present bool, err error) {
	outcome := observability.OutcomeStored
	switch {
	case !present:
		outcome = observability.OutcomePartial
	case err != nil:
		outcome = observability.OutcomeFailed
	}
	observability.RecordCounter.WithLabelValues(kind, outcome).Inc()
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// writeNotFound is shared by route misses and auth failures so both look identical to callers.
func writeNotFound(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, notFoundBody)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
