package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
	"cosmos-server/internal/universe"

	"github.com/google/uuid"
)

type UniverseHandler struct {
	service *universe.Service
	logger  *slog.Logger
}

func NewUniverseHandler(service *universe.Service, logger *slog.Logger) *UniverseHandler {
	return &UniverseHandler{
		service: service,
		logger:  logger,
	}
}

// CreateUniverse handles POST /api/universes
func (h *UniverseHandler) CreateUniverse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "create_universe")

	var req universe.CreateUniverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, logger, apperrors.WrapValidation("invalid request body", err))
		return
	}

	u, err := h.service.CreateUniverse(r.Context(), req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, u)
}

// GetUniverses handles GET /api/universes
func (h *UniverseHandler) GetUniverses(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "get_universes")

	universes, err := h.service.ListUniverses(r.Context())
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if universes == nil {
		universes = []*universe.Universe{}
	}
	response.Success(w, http.StatusOK, universes)
}

// GetUniverse handles GET /api/universes/{id}
func (h *UniverseHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "get_universe")

	id, err := parseUniverseID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	u, err := h.service.GetUniverse(r.Context(), id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, u)
}

// AdvanceUniverse handles POST /api/universes/{id}/advance
func (h *UniverseHandler) AdvanceUniverse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "advance_universe")

	id, err := parseUniverseID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	req, err := decodeAdvanceRequest(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	u, result, err := h.service.AdvanceUniverse(r.Context(), id, req.Steps)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, universe.AdvanceResponse{
		Universe:     u,
		NewAnomalies: result.Anomalies,
		NewEvents:    result.Events,
	})
}

// ResolveAnomaly handles POST /api/universes/{id}/anomalies/{index}/resolve
func (h *UniverseHandler) ResolveAnomaly(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "resolve_anomaly")

	id, err := parseUniverseID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		response.Error(w, r, logger, apperrors.Validation("invalid anomaly index"))
		return
	}

	u, err := h.service.ResolveAnomaly(r.Context(), id, index)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, u)
}

// DeleteUniverse handles DELETE /api/universes/{id} - Admin only
func (h *UniverseHandler) DeleteUniverse(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "delete_universe")

	id, err := parseUniverseID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.DeleteUniverse(r.Context(), id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeAdvanceRequest reads the optional advance payload. An empty
// body is valid and means one step.
func decodeAdvanceRequest(r *http.Request) (universe.AdvanceRequest, error) {
	var req universe.AdvanceRequest
	if r.Body == nil {
		return req, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return universe.AdvanceRequest{}, apperrors.WrapValidation("invalid request body", err)
	}
	return req, nil
}

func parseUniverseID(r *http.Request) (uuid.UUID, error) {
	idStr := r.PathValue("id")
	if idStr == "" {
		return uuid.Nil, apperrors.Validation("universe ID is required")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, apperrors.Validationf("invalid universe ID %q", idStr)
	}

	return id, nil
}
