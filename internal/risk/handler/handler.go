package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"riskgate/internal/risk/models"
	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/platform/httputil"
	"riskgate/pkg/requestcontext"
)

// Service defines the risk operations exposed over HTTP.
type Service interface {
	AssessVerificationRisk(ctx context.Context, verificationID string) (*models.RiskAssessmentResult, error)
	DetectFraudIndicators(ctx context.Context, verificationID string) []models.FraudIndicator
	PerformComplianceScreening(ctx context.Context, verificationID string) []models.ComplianceFlag
}

// Handler wires risk endpoints to the risk service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts risk endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/risk/verifications/{verificationID}", func(r chi.Router) {
		r.Post("/assess", h.HandleAssess)
		r.Get("/fraud-indicators", h.HandleFraudIndicators)
		r.Get("/compliance", h.HandleCompliance)
	})
}

type FraudIndicatorsResponse struct {
	VerificationID string                  `json:"verificationId"`
	Indicators     []models.FraudIndicator `json:"indicators"`
}

type ComplianceResponse struct {
	VerificationID string                  `json:"verificationId"`
	Flags          []models.ComplianceFlag `json:"flags"`
}

func verificationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "verificationID")
	if id == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "verification id is required"))
		return "", false
	}
	return id, true
}

// HandleAssess handles POST /risk/verifications/{verificationID}/assess.
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	id, ok := verificationID(w, r)
	if !ok {
		return
	}
	result, err := h.service.AssessVerificationRisk(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "risk assessment failed",
			"request_id", requestID,
			"verification_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "risk assessment served",
		"request_id", requestID,
		"verification_id", id,
		"category", result.RiskCategory,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleFraudIndicators handles GET /risk/verifications/{verificationID}/fraud-indicators.
func (h *Handler) HandleFraudIndicators(w http.ResponseWriter, r *http.Request) {
	id, ok := verificationID(w, r)
	if !ok {
		return
	}
	indicators := h.service.DetectFraudIndicators(r.Context(), id)
	httputil.WriteJSON(w, http.StatusOK, FraudIndicatorsResponse{VerificationID: id, Indicators: indicators})
}

// HandleCompliance handles GET /risk/verifications/{verificationID}/compliance.
func (h *Handler) HandleCompliance(w http.ResponseWriter, r *http.Request) {
	id, ok := verificationID(w, r)
	if !ok {
		return
	}
	flags := h.service.PerformComplianceScreening(r.Context(), id)
	httputil.WriteJSON(w, http.StatusOK, ComplianceResponse{VerificationID: id, Flags: flags})
}
