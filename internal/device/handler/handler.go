package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"riskgate/internal/device/models"
	"riskgate/internal/recordstore"
	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/platform/httputil"
	"riskgate/pkg/requestcontext"
)

// Service defines the device operations exposed over HTTP.
type Service interface {
	RegisterDevice(ctx context.Context, userID string, fp recordstore.DeviceFingerprint, dc models.DeviceContext) (*models.DeviceRegistrationResult, error)
	GetDeviceTrustStatus(ctx context.Context, userID, deviceID string) models.DeviceTrustStatus
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/devices/register", h.HandleRegister)
	r.Get("/devices/{userID}/{deviceID}/trust", h.HandleTrustStatus)
}

// RegisterDeviceRequest is the body of POST /devices/register. Client IP and
// User-Agent come from the request when the body omits them.
type RegisterDeviceRequest struct {
	UserID      string                        `json:"userId"`
	Fingerprint recordstore.DeviceFingerprint `json:"fingerprint"`
	Context     models.DeviceContext          `json:"context"`
}

func (r *RegisterDeviceRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return dErrors.New(dErrors.CodeValidation, "userId is required")
	}
	return nil
}

// HandleRegister handles POST /devices/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RegisterDeviceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Context.IPAddress == "" {
		req.Context.IPAddress = requestcontext.ClientIP(ctx)
	}
	if req.Context.UserAgent == "" {
		req.Context.UserAgent = requestcontext.UserAgent(ctx)
	}

	result, err := h.service.RegisterDevice(ctx, req.UserID, req.Fingerprint, req.Context)
	if err != nil {
		h.logger.WarnContext(ctx, "device registration rejected",
			"request_id", requestID,
			"user_id", req.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "device registration served",
		"request_id", requestID,
		"user_id", req.UserID,
		"device_id", result.DeviceID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleTrustStatus handles GET /devices/{userID}/{deviceID}/trust.
func (h *Handler) HandleTrustStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	deviceID := chi.URLParam(r, "deviceID")
	if userID == "" || deviceID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "userID and deviceID are required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.GetDeviceTrustStatus(r.Context(), userID, deviceID))
}
