package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "soc-dashboard/internal/common/errors"
	"soc-dashboard/internal/common/logger"
	"soc-dashboard/internal/common/metrics"
	"soc-dashboard/internal/common/observability"
	"soc-dashboard/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const readinessTimeout = 5 * time.Second

// Reports renders report bodies by id.
type Reports interface {
	Has(id string) bool
	Render(ctx context.Context, id string) ([]byte, error)
}

// Pinger checks datastore connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	reports Reports
	store   Pinger
	obs     *observability.Observability
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(reports Reports, store Pinger, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = &observability.Observability{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{
		reports: reports,
		store:   store,
		obs:     obs,
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
	}
}

// Health is the liveness probe. It never touches the datastore.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Health{Status: "ok"})
}

// Ready pings the datastore and answers 503 when it is unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.Health{Status: "unavailable", Error: "datastore not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
		writeJSON(w, http.StatusServiceUnavailable, models.Health{Status: "unavailable", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.Health{Status: "ready"})
}

// Report serves one report. Any failure becomes 500 {"error": <message>}.
func (h *Handler) Report(id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := h.obs.StartSpan(r.Context(), "report."+id, attribute.String("report", id))
		defer span.End()
		defer func() { h.obs.RecordReportDuration(ctx, id, time.Since(start)) }()

		payload, err := h.reports.Render(ctx, id)
		if err != nil {
			span.RecordError(err)
			stdErr := apperrors.Normalize(err)
			metrics.ReportErrorsTotal.WithLabelValues(id, apperrors.GetErrorCategory(stdErr.Code)).Inc()
			h.obs.RecordReport(ctx, id, "error")
			h.errors.HandleHTTPError(w, r, err)
			return
		}

		h.obs.RecordReport(ctx, id, "ok")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
