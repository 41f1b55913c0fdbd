package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/handler/dto"
	"github.com/supavacation/supavacation/internal/service"
)

// HomeHandler handles HTTP requests for home listings.
type HomeHandler struct {
	svc    *service.HomeService
	logger *slog.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(svc *service.HomeService, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/homes. Requires a session; the owner is always
// the session user. Responds 200 with the full created record.
func (h *HomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	var req dto.HomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	home, err := h.svc.Create(r.Context(), userID, req.Fields())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("home_created",
		"home_id", home.ID,
		"owner_id", home.OwnerID,
	)

	writeJSON(w, http.StatusOK, dto.ToHomeResponse(home))
}

// Get handles GET /api/homes/{id}.
func (h *HomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	home, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToHomeResponse(home))
}

// Update handles PATCH /api/homes/{id}. Owner only.
func (h *HomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	id := chi.URLParam(r, "id")

	var req dto.HomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	home, err := h.svc.Update(r.Context(), userID, id, req.Fields())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("home_updated", "home_id", home.ID)

	writeJSON(w, http.StatusOK, dto.ToHomeResponse(home))
}

// Delete handles DELETE /api/homes/{id}. Owner only.
func (h *HomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("home_deleted", "home_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// Owner handles GET /api/homes/{id}/owner. Public; the page script uses it
// to decide whether to show edit and delete controls.
func (h *HomeHandler) Owner(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ownerID, err := h.svc.OwnerID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OwnerResponse{ID: ownerID})
}

// handleServiceError maps service errors to HTTP responses.
func (h *HomeHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrHomeNotFound):
		writeMessage(w, http.StatusNotFound, "Home not found.")
	case errors.Is(err, service.ErrNotOwner):
		writeMessage(w, http.StatusForbidden, "You are not the owner of this home.")
	case errors.Is(err, service.ErrInvalidHome):
		writeMessage(w, http.StatusBadRequest, "Invalid home fields.")
	default:
		h.logger.Error("internal_error", "error", err)
		writeInternalError(w)
	}
}
