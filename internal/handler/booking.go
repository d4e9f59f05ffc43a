package handler

import (
	"log/slog"
	"net/http"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/handler/dto"
	"github.com/staywell/staywell/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	svc    *service.BookingService
	logger *slog.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(svc *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{svc: svc, logger: logger}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	booking, err := h.svc.Create(r.Context(), auth.IdentityFromContext(r.Context()), req.ToInput())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("booking_created",
		"booking_id", booking.ID,
		"place_id", booking.PlaceID,
		"user_id", booking.UserID,
		"price", booking.Price,
	)

	writeJSON(w, http.StatusOK, booking)
}

// List handles GET /bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListForUser(r.Context(), auth.IdentityFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BookingList(bookings))
}
