package handler

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/staywell/staywell/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "staywell_users_registered_total %d\n", snap.UsersRegistered)
	writeLabeled(w, "staywell_logins_total", "status", snap.Logins)
	writeMetric(w, "staywell_tokens_rotated_total %d\n", snap.TokensRotated)
	writeLabeled(w, "staywell_auth_failures_total", "reason", snap.AuthFailures)

	writeMetric(w, "staywell_places_created_total %d\n", snap.PlacesCreated)
	writeMetric(w, "staywell_places_updated_total %d\n", snap.PlacesUpdated)
	writeMetric(w, "staywell_places_deleted_total %d\n", snap.PlacesDeleted)
	writeMetric(w, "staywell_bookings_created_total %d\n", snap.BookingsCreated)

	writeLabeled(w, "staywell_images_stored_total", "source", snap.ImagesStored)
}

// writeLabeled writes one sample per label value, sorted for stable output.
func writeLabeled(w http.ResponseWriter, name, label string, values map[string]uint64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
