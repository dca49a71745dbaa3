package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"riskgate/internal/threat/models"
	"riskgate/pkg/domain"
	"riskgate/pkg/platform/httputil"
	"riskgate/pkg/requestcontext"
)

type Service interface {
	Process(ctx context.Context, event models.SecurityEvent) (*models.ProcessResult, error)
	Metrics(ctx context.Context) models.MetricsSnapshot
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/threat/events", h.HandleEvent)
	r.Get("/threat/metrics", h.HandleMetrics)
}

// EventRequest is the body of POST /threat/events.
type EventRequest struct {
	models.SecurityEvent
}

// Validate defaults a missing severity to low before checking the event.
func (r *EventRequest) Validate() error {
	if r.Severity == "" {
		r.Severity = domain.SeverityLow
	}
	return r.SecurityEvent.Validate()
}

// HandleEvent answers 200 with the analysis for inline events and 202 for
// queued ones.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Process(ctx, req.SecurityEvent)
	if err != nil {
		h.logger.WarnContext(ctx, "security event rejected",
			"request_id", requestID,
			"event_type", req.Type,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "security event accepted",
		"request_id", requestID,
		"event_id", result.EventID,
		"mode", result.Mode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	status := http.StatusOK
	if result.Mode == models.ModeQueued {
		status = http.StatusAccepted
	}
	httputil.WriteJSON(w, status, result)
}

// HandleMetrics handles GET /threat/metrics.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Metrics(r.Context()))
}
