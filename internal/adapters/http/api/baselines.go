// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lantern-care/lantern/internal/domain/baseline"
	"github.com/lantern-care/lantern/internal/domain/model"
)

// BaselinesHandler handles baseline inspection requests.
type BaselinesHandler struct {
	deps Dependencies
}

// NewBaselinesHandler creates a new baselines handler.
func NewBaselinesHandler(deps Dependencies) *BaselinesHandler {
	return &BaselinesHandler{deps: deps}
}

type baselineResponse struct {
	PersonID       string    `json:"person_id"`
	SignalID       string    `json:"signal_id"`
	Mean           float64   `json:"mean"`
	StdDev         float64   `json:"std_dev"`
	DistinctDays   int       `json:"distinct_days"`
	SampleCount    int       `json:"sample_count"`
	Mature         bool      `json:"mature"`
	LastValue      float64   `json:"last_value"`
	LastObservedAt time.Time `json:"last_observed_at"`
}

// HandleGetBaseline handles GET /v1/baselines/{personID}/{signalID} requests.
func (h *BaselinesHandler) HandleGetBaseline(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_baseline"

	personID := chi.URLParam(r, "personID")
	signalID := chi.URLParam(r, "signalID")
	if personID == "" || signalID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	snap, err := h.deps.Baseline(r.Context(), personID, signalID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidObservation):
			writeError(w, http.StatusBadRequest, "unknown_signal", err)
		case errors.Is(err, baseline.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		}
		return
	}

	writeJSON(w, http.StatusOK, baselineResponse{
		PersonID:       snap.PersonID,
		SignalID:       snap.SignalID,
		Mean:           snap.Mean,
		StdDev:         snap.StdDev,
		DistinctDays:   snap.DistinctDays,
		SampleCount:    snap.SampleCount,
		Mature:         snap.Mature,
		LastValue:      snap.LastValue,
		LastObservedAt: snap.LastObservedAt,
	})
}
