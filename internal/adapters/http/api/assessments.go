// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lantern-care/lantern/internal/adapters/repository"
	"github.com/lantern-care/lantern/internal/domain/model"
)

const defaultHistoryLimit = 20

// AssessmentsHandler handles assessment requests.
type AssessmentsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps Dependencies, maxLimit int) *AssessmentsHandler {
	if maxLimit < 1 {
		maxLimit = 100
	}
	return &AssessmentsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleCompute handles POST /v1/assessments/{personID} requests, forcing
// a synchronous recompute.
func (h *AssessmentsHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.compute_assessment"

	personID := chi.URLParam(r, "personID")
	if personID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	a, err := h.deps.ComputeAssessment(r.Context(), personID, "api")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type historyResponse struct {
	PersonID    string              `json:"person_id"`
	Assessments []*model.Assessment `json:"assessments"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

// HandleGetHistory handles GET /v1/assessments/{personID} requests.
func (h *AssessmentsHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"

	personID := chi.URLParam(r, "personID")
	if personID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	assessments, err := h.deps.History(r.Context(), personID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	if assessments == nil {
		assessments = []*model.Assessment{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		PersonID:    personID,
		Assessments: assessments,
		Limit:       limit,
		Offset:      offset,
	})
}

// HandleGetLatest handles GET /v1/assessments/{personID}/latest requests.
func (h *AssessmentsHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_latest"

	personID := chi.URLParam(r, "personID")
	if personID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	a, err := h.deps.LatestAssessment(r.Context(), personID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
