// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/handler/dto"
	"github.com/staywell/staywell/internal/service"
	"github.com/staywell/staywell/internal/token"
)

// errBadBody marks a request body that could not be decoded.
var errBadBody = errors.New("invalid request body")

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeJSON reads a single JSON value from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body is empty", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// handleServiceError maps service and auth errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.Is(err, errBadBody):
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusUnprocessableEntity, "WRONG_PASSWORD", "Wrong password")
	case errors.Is(err, service.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "PLACE_NOT_FOUND", "Place not found")
	case errors.Is(err, service.ErrImageNotFound):
		writeError(w, http.StatusNotFound, "IMAGE_NOT_FOUND", "Image not found")
	case errors.Is(err, service.ErrImageFetch):
		writeError(w, http.StatusBadGateway, "IMAGE_FETCH_FAILED", "Could not download the image")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not own this resource")
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "MISSING_CREDENTIAL", "Authentication required")
	case errors.Is(err, auth.ErrRevoked):
		writeError(w, http.StatusUnauthorized, "TOKEN_REVOKED", "Invalid or expired session")
	case errors.Is(err, token.ErrExpired):
		writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Invalid or expired session")
	case errors.Is(err, token.ErrInvalidSignature):
		writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid or expired session")
	case errors.Is(err, token.ErrMalformed), errors.Is(err, token.ErrInvalidClaims):
		writeError(w, http.StatusUnauthorized, "MALFORMED_TOKEN", "Invalid or expired session")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
