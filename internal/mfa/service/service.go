package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/mfa/metrics"
	"riskgate/internal/mfa/models"
	"riskgate/internal/mfa/ports"
	"riskgate/internal/recordstore"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/requestcontext"
)

// recoveryWindow bounds how long after a completed recovery flow the user
// may skip MFA.
const recoveryWindow = 15 * time.Minute

// bypassPriority orders grant kinds when more than one is active.
var bypassPriority = []recordstore.BypassKind{
	recordstore.BypassAdminOverride,
	recordstore.BypassEmergencyAccess,
}

// Service decides whether a request must pass MFA.
type Service struct {
	store    ports.Store
	devices  ports.DeviceTrust
	recovery ports.RecoveryVerifier
	auditor  audit.Emitter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
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

// WithDeviceTrust lets the device policy consult the device trust engine.
// Without it the policy uses the trust score carried on the request.
func WithDeviceTrust(d ports.DeviceTrust) Option {
	return func(s *Service) { s.devices = d }
}

func WithRecoveryVerifier(v ports.RecoveryVerifier) Option {
	return func(s *Service) { s.recovery = v }
}

func New(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: otel.Tracer("riskgate/mfa"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckMFARequirement evaluates the four policies concurrently, consolidates
// them and applies any active bypass. Any failure yields the fail-secure
// result: MFA required with every method allowed.
func (s *Service) CheckMFARequirement(ctx context.Context, mctx models.MFAEnforcementContext) (result models.MFAEnforcementResult) {
	ctx, span := s.tracer.Start(ctx, "mfa.CheckMFARequirement",
		trace.WithAttributes(attribute.String("action", mctx.Action)))
	defer span.End()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = s.failSecure(ctx, mctx, fmt.Errorf("policy panic: %v", r))
		}
		span.SetAttributes(attribute.Bool("mfa.required", result.Required), attribute.String("mfa.reason", result.Reason))
		s.metrics.ObserveCheck(time.Since(start), result.Required)
	}()

	if strings.TrimSpace(mctx.UserID) == "" {
		return s.failSecure(ctx, mctx, fmt.Errorf("userId is required"))
	}
	now := requestcontext.Now(ctx)

	decisions, err := s.evaluate(ctx, mctx, now)
	if err != nil {
		return s.failSecure(ctx, mctx, err)
	}
	result = consolidate(decisions)
	for _, d := range decisions {
		if d.Enforce {
			s.metrics.IncrementPolicyEnforced(string(d.Policy))
		}
	}

	if result.Required {
		if kind, ok := s.activeBypass(ctx, mctx, now); ok {
			result.Required = false
			result.BypassAvailable = true
			result.Reason = models.ReasonBypassPrefix + kind
			s.metrics.IncrementBypass(kind)
			s.emit(ctx, audit.Event{
				UserID:   mctx.UserID,
				Subject:  mctx.SessionID,
				Action:   string(audit.EventMFABypassUsed),
				Decision: kind,
				Metadata: map[string]string{
					"action":     mctx.Action,
					"ip_address": mctx.IPAddress,
				},
			})
			s.logger.WarnContext(ctx, "mfa enforcement bypassed",
				"user_id", mctx.UserID,
				"bypass", kind,
			)
		}
	}

	s.emitEnforcement(ctx, mctx, result)
	s.logger.InfoContext(ctx, "mfa requirement checked",
		"user_id", mctx.UserID,
		"action", mctx.Action,
		"required", result.Required,
		"reason", result.Reason,
	)
	return result
}

// evaluate runs the policies concurrently and returns their decisions in a
// fixed order.
func (s *Service) evaluate(ctx context.Context, mctx models.MFAEnforcementContext, now time.Time) ([]models.PolicyDecision, error) {
	decisions := make([]models.PolicyDecision, 4)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.rolePolicy(gctx, mctx, now)
		if err != nil {
			return fmt.Errorf("role policy: %w", err)
		}
		decisions[0] = d
		return nil
	})
	g.Go(func() error {
		decisions[1] = actionPolicy(mctx, now)
		return nil
	})
	g.Go(func() error {
		decisions[2] = riskPolicy(mctx)
		return nil
	})
	g.Go(func() error {
		decisions[3] = s.devicePolicy(gctx, mctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

// activeBypass reports the first active bypass. Lookup failures count as no
// bypass so enforcement stands.
func (s *Service) activeBypass(ctx context.Context, mctx models.MFAEnforcementContext, now time.Time) (string, bool) {
	grants, err := s.store.GetActiveBypassGrants(ctx, mctx.UserID, now)
	if err != nil {
		s.logger.WarnContext(ctx, "bypass grant lookup failed",
			"user_id", mctx.UserID,
			"error", err,
		)
	}
	for _, kind := range bypassPriority {
		if slices.ContainsFunc(grants, func(g recordstore.BypassGrant) bool {
			return g.Kind == kind && now.Before(g.ExpiresAt)
		}) {
			return string(kind), true
		}
	}

	if mctx.RecoveryToken == "" || s.recovery == nil {
		return "", false
	}
	completedAt, err := s.recovery.VerifyRecovery(mctx.RecoveryToken, mctx.UserID, now)
	if err != nil {
		s.logger.WarnContext(ctx, "recovery token rejected",
			"user_id", mctx.UserID,
			"error", err,
		)
		return "", false
	}
	if age := now.Sub(completedAt); age >= 0 && age <= recoveryWindow {
		return models.BypassRecoveryComplete, true
	}
	return "", false
}

func (s *Service) failSecure(ctx context.Context, mctx models.MFAEnforcementContext, err error) models.MFAEnforcementResult {
	s.metrics.IncrementFailSecure()
	s.logger.WarnContext(ctx, "mfa policy evaluation failed; requiring mfa",
		"user_id", mctx.UserID,
		"action", mctx.Action,
		"error", err,
	)
	result := models.FailSecure()
	s.emitEnforcement(ctx, mctx, result)
	return result
}

func (s *Service) emitEnforcement(ctx context.Context, mctx models.MFAEnforcementContext, result models.MFAEnforcementResult) {
	decision := "not_required"
	if result.Required {
		decision = "required"
	}
	s.emit(ctx, audit.Event{
		UserID:   mctx.UserID,
		Subject:  mctx.SessionID,
		Action:   string(audit.EventMFAEnforcement),
		Decision: decision,
		Reason:   result.Reason,
		Metadata: map[string]string{
			"action":            mctx.Action,
			"device_id":         mctx.DeviceID,
			"methods":           strings.Join(result.Methods, ","),
			"freshness_seconds": strconv.Itoa(result.FreshnessSeconds),
		},
	})
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
