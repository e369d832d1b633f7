// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lantern-care/lantern/internal/domain/model"
)

const maxBatchSize = 1000

// SignalsHandler handles observation ingestion requests.
type SignalsHandler struct {
	deps Dependencies
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(deps Dependencies) *SignalsHandler {
	return &SignalsHandler{deps: deps}
}

// HandlePostSignal handles POST /v1/signals requests.
func (h *SignalsHandler) HandlePostSignal(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_signal"

	var obs model.SignalObservation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	if err := h.deps.IngestSignal(r.Context(), obs); err != nil {
		writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// batchResult is the per-item acknowledgement for a batch ingest.
type batchResult struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type batchResponse struct {
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Results  []batchResult `json:"results"`
}

// HandlePostBatch handles POST /v1/signals/batch requests. Items are
// acknowledged independently; one bad observation never sinks the batch.
func (h *SignalsHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_signal_batch"

	var batch []model.SignalObservation
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(batch) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if len(batch) > maxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", NewKind(op, ErrBadRequest))
		return
	}

	resp := batchResponse{Results: make([]batchResult, len(batch))}
	for i, obs := range batch {
		res := batchResult{Index: i, Status: "accepted"}
		if err := h.deps.IngestSignal(r.Context(), obs); err != nil {
			res.Status = "rejected"
			res.Error = err.Error()
			resp.Rejected++
		} else {
			resp.Accepted++
		}
		resp.Results[i] = res
	}
	writeJSON(w, http.StatusMultiStatus, resp)
}

// writeIngestError maps domain rejection kinds onto HTTP statuses.
func writeIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrStaleObservation):
		writeError(w, http.StatusConflict, "stale_observation", err)
	case errors.Is(err, model.ErrInvalidObservation):
		writeError(w, http.StatusBadRequest, "invalid_observation", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
