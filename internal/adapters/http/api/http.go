// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lantern-care/lantern/internal/domain/baseline"
	"github.com/lantern-care/lantern/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// IngestSignal folds one observation into the person's baseline.
	// Rejections surface as model.ErrInvalidObservation or
	// model.ErrStaleObservation kinds.
	IngestSignal(ctx context.Context, obs model.SignalObservation) error

	// ComputeAssessment synchronously recomputes a person's assessment.
	ComputeAssessment(ctx context.Context, personID, trigger string) (*model.Assessment, error)

	// Read operations expose assessment and baseline data.
	LatestAssessment(ctx context.Context, personID string) (*model.Assessment, error)
	History(ctx context.Context, personID string, limit, offset int) ([]*model.Assessment, error)
	Baseline(ctx context.Context, personID, signalID string) (baseline.Snapshot, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	signalsHandler     *SignalsHandler
	assessmentsHandler *AssessmentsHandler
	baselinesHandler   *BaselinesHandler

	maxHistoryLimit int
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxHistoryLimit caps GET history ?limit.
func WithMaxHistoryLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxHistoryLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		maxHistoryLimit: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.signalsHandler = NewSignalsHandler(deps)
	s.assessmentsHandler = NewAssessmentsHandler(deps, s.maxHistoryLimit)
	s.baselinesHandler = NewBaselinesHandler(deps)
	return s
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/signals", MetricsMiddleware(s.signalsHandler.HandlePostSignal, "signals"))
		r.Post("/signals/batch", MetricsMiddleware(s.signalsHandler.HandlePostBatch, "signals_batch"))
		r.Post("/assessments/{personID}", MetricsMiddleware(s.assessmentsHandler.HandleCompute, "assessments_compute"))
		r.Get("/assessments/{personID}", MetricsMiddleware(s.assessmentsHandler.HandleGetHistory, "assessments_history"))
		r.Get("/assessments/{personID}/latest", MetricsMiddleware(s.assessmentsHandler.HandleGetLatest, "assessments_latest"))
		r.Get("/baselines/{personID}/{signalID}", MetricsMiddleware(s.baselinesHandler.HandleGetBaseline, "baselines"))
	})
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
