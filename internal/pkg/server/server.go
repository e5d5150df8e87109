package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/anicoll/energy-dashboard/internal/pkg/dashboard"
	"github.com/anicoll/energy-dashboard/internal/pkg/metrics"
	"github.com/anicoll/energy-dashboard/internal/pkg/model"
	"github.com/anicoll/energy-dashboard/internal/pkg/resync"
	"github.com/anicoll/energy-dashboard/pkg/hasher"
)

var (
	errUnauthorized = errors.New("missing or invalid resync token")
	errNoDashboard  = errors.New("no dashboard assembled yet")
)

type tracker interface {
	Refresh(ctx context.Context, preset model.Preset) (*model.Dashboard, error)
	Latest() (*model.Dashboard, model.Preset)
}

type resyncer interface {
	Configured() bool
	Sync(ctx context.Context) (resync.Result, error)
}

type server struct {
	dashboards    tracker
	resync        resyncer
	defaultPreset model.Preset
	tokenHash     string
	corsOrigins   []string
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

func WithDefaultPreset(p model.Preset) func(*server) {
	return func(s *server) {
		s.defaultPreset = p
	}
}

// WithTokenHash guards the resync endpoint with a bcrypt-hashed bearer token.
func WithTokenHash(hash string) func(*server) {
	return func(s *server) {
		s.tokenHash = hash
	}
}

func WithCorsOrigins(origins []string) func(*server) {
	return func(s *server) {
		s.corsOrigins = origins
	}
}

func WithMetrics(m *metrics.Metrics) func(*server) {
	return func(s *server) {
		s.metrics = m
	}
}

func New(t tracker, r resyncer, opts ...func(*server)) *server {
	s := &server{
		dashboards:    t,
		resync:        r,
		defaultPreset: model.PresetThisMonth,
		logger:        zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed, validated and CORS-wrapped HTTP handler.
func (s *server) Handler(ctx context.Context) (http.Handler, error) {
	doc, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := ValidationMiddleware(doc)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(LoggingMiddleware, validate)
	s.handle(r, "/api/dashboard", s.GetDashboard).Methods(http.MethodGet)
	s.handle(r, "/api/dashboard/latest", s.GetLatestDashboard).Methods(http.MethodGet)
	s.handle(r, "/api/resync", s.PostResync).Methods(http.MethodPost)
	s.handle(r, "/health", s.GetHealth).Methods(http.MethodGet)
	r.HandleFunc("/openapi.yaml", serveSpec).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.RecoveryHandler()(handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(r)), nil
}

func (s *server) handle(r *mux.Router, path string, h http.HandlerFunc) *mux.Route {
	return r.Handle(path, s.metrics.WrapHandler(path, h))
}

type auditView struct {
	model.AuditEntry
	Duration string `json:"duration"`
}

type dashboardView struct {
	*model.Dashboard
	Preset         model.Preset `json:"preset"`
	IngestionAudit []auditView  `json:"ingestionAudit"`
}

func newDashboardView(d *model.Dashboard, preset model.Preset) dashboardView {
	audit := make([]auditView, 0, len(d.IngestionAudit))
	for _, entry := range d.IngestionAudit {
		audit = append(audit, auditView{AuditEntry: entry, Duration: entry.DurationLabel()})
	}
	return dashboardView{Dashboard: d, Preset: preset, IngestionAudit: audit}
}

type resyncResponse struct {
	RowsProcessed int           `json:"rowsProcessed"`
	Message       string        `json:"message"`
	Dashboard     dashboardView `json:"dashboard"`
}

func (s *server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	preset, err := dashboard.ParsePreset(r.URL.Query().Get("preset"), s.defaultPreset)
	if err != nil {
		handleError(w, err)
		return
	}
	d, err := s.dashboards.Refresh(r.Context(), preset)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(d, preset))
}

func (s *server) GetLatestDashboard(w http.ResponseWriter, _ *http.Request) {
	d, preset := s.dashboards.Latest()
	if d == nil {
		writeError(w, http.StatusNotFound, errNoDashboard)
		return
	}
	writeJSON(w, http.StatusOK, newDashboardView(d, preset))
}

func (s *server) PostResync(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		handleError(w, errUnauthorized)
		return
	}
	preset, err := dashboard.ParsePreset(r.URL.Query().Get("preset"), s.defaultPreset)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := s.resync.Sync(r.Context())
	s.metrics.ResyncFinished(err)
	if err != nil {
		s.logger.Error("resync failed", zap.Error(err))
		handleError(w, err)
		return
	}

	d, err := s.dashboards.Refresh(r.Context(), preset)
	if err != nil {
		handleError(w, err)
		return
	}
	rows := result.RowsProcessed()
	writeJSON(w, http.StatusOK, resyncResponse{
		RowsProcessed: rows,
		Message:       fmt.Sprintf("Sync completed. %d rows processed.", rows),
		Dashboard:     newDashboardView(d, preset),
	})
}

func (s *server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) authorized(r *http.Request) bool {
	if s.tokenHash == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return hasher.PasswordCorrect(token, s.tokenHash)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrInvalidPreset):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, resync.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, dashboard.ErrReadFailure), errors.Is(err, resync.ErrSyncFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}
