package handler

import (
	"fmt"
	"net/http"

	"github.com/supavacation/supavacation/internal/metrics"
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

	writeMetric(w, "supavacation_page_cache_hits_total %d\n", snap.PageCacheHits)
	writeMetric(w, "supavacation_page_cache_misses_total %d\n", snap.PageCacheMisses)
	writeMetric(w, "supavacation_render_duration_seconds_count %d\n", snap.RenderDurationCount)
	writeMetric(w, "supavacation_render_duration_seconds_sum %.6f\n", float64(snap.RenderDurationTotalNs)/1e9)

	writeMetric(w, "supavacation_homes_created_total %d\n", snap.HomesCreated)
	writeMetric(w, "supavacation_homes_updated_total %d\n", snap.HomesUpdated)
	writeMetric(w, "supavacation_homes_deleted_total %d\n", snap.HomesDeleted)

	writeMetric(w, "supavacation_signins_requested_total %d\n", snap.SignInsRequested)
	writeMetric(w, "supavacation_signins_completed_total %d\n", snap.SignInsCompleted)

	writeMetric(w, "supavacation_welcome_emails_total{status=\"sent\"} %d\n", snap.WelcomeEmailsSent)
	writeMetric(w, "supavacation_welcome_emails_total{status=\"failed\"} %d\n", snap.WelcomeEmailsFailed)
	writeMetric(w, "supavacation_welcome_emails_total{status=\"dropped\"} %d\n", snap.WelcomeEmailsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
