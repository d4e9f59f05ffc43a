package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/staywell/staywell/internal/handler/dto"
	"github.com/staywell/staywell/internal/middleware"
	"github.com/staywell/staywell/internal/service"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// UploadHandler handles image uploads and downloads.
type UploadHandler struct {
	svc    *service.UploadService
	logger *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(svc *service.UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, logger: logger}
}

// ByLink handles POST /uploadbylink.
func (h *UploadHandler) ByLink(w http.ResponseWriter, r *http.Request) {
	var req dto.UploadByLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	name, err := h.svc.UploadByLink(r.Context(), req.Link)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("image_stored", "name", name, "source", "link")

	writeJSON(w, http.StatusOK, dto.UploadByLinkResponse{
		Success:   true,
		ImageName: name,
	})
}

// Upload handles POST /upload with files in the "photos" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleServiceError(w, h.logger, err)
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	names, err := h.svc.UploadFiles(r.Context(), r.MultipartForm.File["photos"])
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("image_stored", "count", len(names), "source", "upload")

	writeJSON(w, http.StatusOK, names)
}

// Serve handles GET /uploads/{name}. Stores that can presign redirect the
// client to a short-lived direct link.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	link, ok, err := h.svc.PresignURL(r.Context(), name)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	if ok {
		http.Redirect(w, r, link, http.StatusFound)
		return
	}

	obj, err := h.svc.Open(r.Context(), name)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	// Stored names are unique, so the bytes never change.
	middleware.PublicAsset(w)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("image_stream_failed", "name", name, "error", err)
	}
}
