package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/device/metrics"
	"riskgate/internal/device/models"
	"riskgate/internal/device/ports"
	"riskgate/internal/recordstore"
	dErrors "riskgate/pkg/domain-errors"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/platform/sentinel"
	"riskgate/pkg/requestcontext"
)

const defaultTrustedTTL = 30 * 24 * time.Hour

// Service is the device trust engine.
type Service struct {
	store      ports.Store
	cache      ports.TrustCache
	auditor    audit.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	trustedTTL time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditor(a audit.Emitter) Option {
	return func(s *Service) { s.auditor = a }
}

// WithTrustCache enables read-through caching of trust status.
func WithTrustCache(c ports.TrustCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithTrustedTTL sets how long a remembered device stays trusted before the
// trust must be re-earned.
func WithTrustedTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.trustedTTL = d
		}
	}
}

func New(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer("riskgate/device"),
		trustedTTL: defaultTrustedTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterDevice validates the fingerprint, computes trust against the
// device's previous state and persists the outcome.
func (s *Service) RegisterDevice(ctx context.Context, userID string, fp recordstore.DeviceFingerprint, dc models.DeviceContext) (*models.DeviceRegistrationResult, error) {
	ctx, span := s.tracer.Start(ctx, "device.RegisterDevice")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "userId is required")
	}
	if err := ValidateFingerprint(fp); err != nil {
		return nil, err
	}
	if err := ValidateContext(dc); err != nil {
		return nil, err
	}

	deviceID := strings.TrimSpace(dc.DeviceID)
	if deviceID == "" {
		deviceID = DeriveDeviceID(fp)
	}
	existing, err := s.store.GetDeviceTrustRecord(ctx, userID, deviceID)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		existing = nil
	case err != nil:
		// without the previous state the device is scored as new
		s.logger.WarnContext(ctx, "device history unavailable",
			"user_id", userID,
			"device_id", deviceID,
			"error", err,
		)
		s.metrics.IncrementDegraded("history")
		existing = nil
	}
	isNew := existing == nil
	span.SetAttributes(attribute.String("device_id", deviceID), attribute.Bool("device.new", isNew))

	result, trustedUntil := s.calculate(ctx, userID, deviceID, fp, dc, existing)
	s.metrics.IncrementRegistration(isNew)

	s.emit(ctx, audit.Event{
		UserID:   userID,
		Subject:  deviceID,
		Action:   string(audit.EventDeviceRegistered),
		Decision: string(result.TrustLevel),
		Metadata: map[string]string{
			"trust_score": strconv.FormatFloat(result.TrustScore, 'f', 4, 64),
			"new_device":  strconv.FormatBool(isNew),
			"ip_address":  dc.IPAddress,
		},
	})
	s.logger.InfoContext(ctx, "device registered",
		"user_id", userID,
		"device_id", deviceID,
		"new_device", isNew,
		"trust_score", result.TrustScore,
		"trust_level", result.TrustLevel,
	)

	return &models.DeviceRegistrationResult{
		DeviceID:     deviceID,
		DisplayName:  parseUserAgent(dc.UserAgent, fp).displayName,
		IsNewDevice:  isNew,
		Trust:        result,
		TrustedUntil: trustedUntil,
	}, nil
}

// CalculateTrustScore scores the device and persists the result as its
// current trust state. Store failures degrade individual analyses to
// neutral; the call itself never fails.
func (s *Service) CalculateTrustScore(ctx context.Context, userID, deviceID string, fp recordstore.DeviceFingerprint, dc models.DeviceContext, existing *recordstore.DeviceTrustRecord) models.DeviceTrustResult {
	ctx, span := s.tracer.Start(ctx, "device.CalculateTrustScore",
		trace.WithAttributes(attribute.String("device_id", deviceID)))
	defer span.End()

	result, _ := s.calculate(ctx, userID, deviceID, fp, dc, existing)
	return result
}

func (s *Service) calculate(ctx context.Context, userID, deviceID string, fp recordstore.DeviceFingerprint, dc models.DeviceContext, existing *recordstore.DeviceTrustRecord) (models.DeviceTrustResult, *time.Time) {
	now := requestcontext.Now(ctx)
	client := parseUserAgent(dc.UserAgent, fp)
	in := s.gatherInputs(ctx, userID, deviceID, now)
	in.fingerprint = fp
	in.context = dc
	in.existing = existing
	in.uaPlatform = client.os

	result := computeTrust(deviceID, in)
	s.metrics.ObserveTrust(result.TrustScore, string(result.TrustLevel), result.RiskFactors)

	var profile *recordstore.BehaviorProfile
	firstSeen := now
	if existing != nil {
		profile = existing.Behavior
		if !existing.FirstSeen.IsZero() {
			firstSeen = existing.FirstSeen
		}
	}
	record := recordstore.DeviceTrustRecord{
		UserID:      userID,
		DeviceID:    deviceID,
		Fingerprint: fp,
		Behavior:    updateProfile(profile, dc.Behavior),
		DisplayName: client.displayName,
		TrustScore:  result.TrustScore,
		TrustLevel:  string(result.TrustLevel),
		RiskFactors: result.RiskFactors,
		FirstSeen:   firstSeen,
		LastSeen:    now,
		UpdatedAt:   now,
	}
	return result, s.persist(ctx, record, result.CanRemember)
}

// gatherInputs fetches the three histories concurrently. Each failure only
// neutralises its own analysis.
func (s *Service) gatherInputs(ctx context.Context, userID, deviceID string, now time.Time) trustInputs {
	in := trustInputs{now: now}
	var g errgroup.Group
	g.Go(func() error {
		sessions, err := s.store.GetRecentSessions(ctx, userID, "", now.Add(-geoHistoryWindow), geoHistoryLimit)
		if err != nil {
			s.degraded(ctx, dimGeographic, userID, deviceID, err)
			return nil
		}
		in.geoSessions, in.geoOK = sessions, true
		return nil
	})
	g.Go(func() error {
		sessions, err := s.store.GetRecentSessions(ctx, userID, "", now.Add(-temporalWindow), temporalLimit)
		if err != nil {
			s.degraded(ctx, dimTemporal, userID, deviceID, err)
			return nil
		}
		in.loginTimes = make([]time.Time, len(sessions))
		for i, sess := range sessions {
			in.loginTimes[i] = sess.CreatedAt
		}
		in.temporalOK = true
		return nil
	})
	g.Go(func() error {
		stats, err := s.store.GetMFAVerificationAttempts(ctx, userID, deviceID, now.Add(-successRateWindow))
		if err != nil {
			s.degraded(ctx, dimSuccessRate, userID, deviceID, err)
			return nil
		}
		in.attempts, in.attemptsOK = stats, true
		return nil
	})
	_ = g.Wait()
	return in
}

func (s *Service) degraded(ctx context.Context, signal, userID, deviceID string, err error) {
	s.metrics.IncrementDegraded(signal)
	s.logger.WarnContext(ctx, "device trust analysis degraded",
		"signal", signal,
		"user_id", userID,
		"device_id", deviceID,
		"error", err,
	)
}

// persist writes the trust record and only then the trusted-device record,
// which depends on the score just stored. It returns the trusted-until time
// when the device was remembered.
func (s *Service) persist(ctx context.Context, record recordstore.DeviceTrustRecord, remember bool) *time.Time {
	if err := s.store.UpsertDeviceTrustRecord(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist device trust",
			"user_id", record.UserID,
			"device_id", record.DeviceID,
			"error", err,
		)
		return nil
	}
	s.invalidate(ctx, record.UserID, record.DeviceID)
	s.emit(ctx, audit.Event{
		UserID:   record.UserID,
		Subject:  record.DeviceID,
		Action:   string(audit.EventDeviceTrustUpdated),
		Decision: record.TrustLevel,
	})
	if !remember {
		return nil
	}

	expires := record.UpdatedAt.Add(s.trustedTTL)
	err := s.store.UpsertTrustedDevice(ctx, recordstore.TrustedDeviceRecord{
		UserID:     record.UserID,
		DeviceID:   record.DeviceID,
		TrustScore: record.TrustScore,
		TrustedAt:  record.UpdatedAt,
		ExpiresAt:  expires,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to remember trusted device",
			"user_id", record.UserID,
			"device_id", record.DeviceID,
			"error", err,
		)
		return nil
	}
	return &expires
}

func (s *Service) invalidate(ctx context.Context, userID, deviceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, deviceID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate trust cache",
			"user_id", userID,
			"device_id", deviceID,
			"error", err,
		)
	}
}

// GetDeviceTrustStatus reports the device's current trust. Unknown devices
// and store failures both report the untrusted default.
func (s *Service) GetDeviceTrustStatus(ctx context.Context, userID, deviceID string) models.DeviceTrustStatus {
	ctx, span := s.tracer.Start(ctx, "device.GetDeviceTrustStatus",
		trace.WithAttributes(attribute.String("device_id", deviceID)))
	defer span.End()

	if userID == "" || deviceID == "" {
		return models.UntrustedStatus()
	}
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID, deviceID)
		if err != nil {
			s.logger.WarnContext(ctx, "trust cache read failed",
				"user_id", userID,
				"device_id", deviceID,
				"error", err,
			)
		} else if cached != nil {
			return *cached
		}
	}

	record, err := s.store.GetDeviceTrustRecord(ctx, userID, deviceID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "device trust lookup failed",
				"user_id", userID,
				"device_id", deviceID,
				"error", err,
			)
		}
		return models.UntrustedStatus()
	}

	now := requestcontext.Now(ctx)
	isTrusted := false
	var maxAge time.Duration
	trusted, err := s.store.GetTrustedDevice(ctx, userID, deviceID)
	switch {
	case err == nil:
		isTrusted = trusted.ActiveAt(now)
		if isTrusted {
			// a cached trusted status must not outlive the trust itself
			maxAge = trusted.ExpiresAt.Sub(now)
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		s.logger.WarnContext(ctx, "trusted device lookup failed",
			"user_id", userID,
			"device_id", deviceID,
			"error", err,
		)
		// not cached: the failure must not pin the device as untrusted
		return statusFrom(record, false)
	}

	status := statusFrom(record, isTrusted)
	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, deviceID, status, maxAge); err != nil {
			s.logger.WarnContext(ctx, "trust cache write failed",
				"user_id", userID,
				"device_id", deviceID,
				"error", err,
			)
		}
	}
	return status
}

func statusFrom(record *recordstore.DeviceTrustRecord, isTrusted bool) models.DeviceTrustStatus {
	level, err := models.ParseTrustLevel(record.TrustLevel)
	if err != nil {
		level = models.LevelFor(record.TrustScore)
	}
	factors := record.RiskFactors
	if factors == nil {
		factors = []string{}
	}
	return models.DeviceTrustStatus{
		IsTrusted:   isTrusted,
		TrustLevel:  level,
		TrustScore:  record.TrustScore,
		RequiresMFA: record.TrustScore < models.HighTrustThreshold,
		RiskFactors: factors,
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
