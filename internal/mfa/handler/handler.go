package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"riskgate/internal/mfa/models"
	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/platform/httputil"
	"riskgate/pkg/requestcontext"
)

type Service interface {
	CheckMFARequirement(ctx context.Context, mctx models.MFAEnforcementContext) models.MFAEnforcementResult
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/mfa/check", h.HandleCheck)
}

// CheckRequest is the body of POST /mfa/check.
type CheckRequest struct {
	models.MFAEnforcementContext
}

func (r *CheckRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return dErrors.New(dErrors.CodeValidation, "userId is required")
	}
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return dErrors.New(dErrors.CodeValidation, "riskScore must be within [0, 100]")
	}
	if r.DeviceTrustScore < 0 || r.DeviceTrustScore > 1 {
		return dErrors.New(dErrors.CodeValidation, "deviceTrustScore must be within [0, 1]")
	}
	return nil
}

// HandleCheck handles POST /mfa/check. The evaluation itself never fails;
// only malformed requests are rejected.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	mctx := req.MFAEnforcementContext
	if mctx.IPAddress == "" {
		mctx.IPAddress = requestcontext.ClientIP(ctx)
	}
	if mctx.DeviceID == "" {
		mctx.DeviceID = requestcontext.DeviceID(ctx)
	}

	result := h.service.CheckMFARequirement(ctx, mctx)
	h.logger.InfoContext(ctx, "mfa check served",
		"request_id", requestID,
		"user_id", mctx.UserID,
		"required", result.Required,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}
