package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/handler/dto"
	"github.com/staywell/staywell/internal/service"
)

// PlaceHandler handles HTTP requests for listings.
type PlaceHandler struct {
	svc    *service.PlaceService
	logger *slog.Logger
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(svc *service.PlaceService, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /places.
func (h *PlaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	place, err := h.svc.Create(r.Context(), auth.IdentityFromContext(r.Context()), req.ToInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("place_created",
		"place_id", place.ID,
		"owner_id", place.OwnerID,
	)

	writeJSON(w, http.StatusOK, place)
}

// ListMine handles GET /user-places.
func (h *PlaceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	places, err := h.svc.ListByOwner(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PlaceList(places))
}

// Get handles GET /places/{id}.
func (h *PlaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	place, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, place)
}

// List handles GET /places.
func (h *PlaceHandler) List(w http.ResponseWriter, r *http.Request) {
	places, err := h.svc.ListAll(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PlaceList(places))
}

// Update handles PUT /places. The listing id travels in the body.
func (h *PlaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", "id is required")
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	place, err := h.svc.Update(r.Context(), identity, req.ID, req.ToInput())
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.logger.Warn("place_update_forbidden",
				"place_id", req.ID,
				"user_id", identity.ID,
			)
		}
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("place_updated", "place_id", place.ID)

	writeJSON(w, http.StatusOK, place)
}

// Delete handles DELETE /places/{id}.
func (h *PlaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	identity := auth.IdentityFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), identity, id); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			h.logger.Warn("place_delete_forbidden",
				"place_id", id,
				"user_id", identity.ID,
			)
		}
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("place_deleted", "place_id", id)

	w.WriteHeader(http.StatusNoContent)
}
