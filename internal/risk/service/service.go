package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/metrics"
	"riskgate/internal/risk/models"
	"riskgate/internal/risk/ports"
	dErrors "riskgate/pkg/domain-errors"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/platform/circuit"
	"riskgate/pkg/platform/sentinel"
	"riskgate/pkg/requestcontext"
)

const (
	defaultScreeningTimeout = 3 * time.Second
	velocityWindow          = 24 * time.Hour
)

// Service aggregates the risk sub-scorers, detects fraud indicators and runs
// compliance screening for verification submissions.
type Service struct {
	store            ports.Store
	screening        ports.ScreeningProvider
	behavioral       ports.BehavioralSignal
	geographic       ports.GeographicSignal
	auditor          audit.Emitter
	metrics          *metrics.Metrics
	logger           *slog.Logger
	tracer           trace.Tracer
	breaker          *circuit.Breaker
	breakerTrippedAt atomic.Int64
	screeningTimeout time.Duration
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

func WithScreeningProvider(p ports.ScreeningProvider) Option {
	return func(s *Service) { s.screening = p }
}

func WithScreeningTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.screeningTimeout = d
		}
	}
}

func WithBehavioralSignal(sig ports.BehavioralSignal) Option {
	return func(s *Service) {
		if sig != nil {
			s.behavioral = sig
		}
	}
}

func WithGeographicSignal(sig ports.GeographicSignal) Option {
	return func(s *Service) {
		if sig != nil {
			s.geographic = sig
		}
	}
}

func New(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		behavioral:       NeutralBehavioralSignal{},
		geographic:       JurisdictionSignal{},
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:           otel.Tracer("riskgate/risk"),
		breaker:          circuit.New("compliance-screening", circuit.WithFailureThreshold(5)),
		screeningTimeout: defaultScreeningTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type componentResult struct {
	score    float64
	factors  []models.RiskFactor
	degraded bool
}

// AssessVerificationRisk computes the overall risk of a submission. A failing
// supporting fetch degrades only its own sub-scorer to the neutral value.
func (s *Service) AssessVerificationRisk(ctx context.Context, verificationID string) (*models.RiskAssessmentResult, error) {
	ctx, span := s.tracer.Start(ctx, "risk.AssessVerificationRisk",
		trace.WithAttributes(attribute.String("verification_id", verificationID)))
	defer span.End()
	start := time.Now()

	v, err := s.loadVerification(ctx, verificationID)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	var identity, document, business, behavioral, geographic componentResult
	var g errgroup.Group
	g.Go(func() error {
		identity = s.identityComponent(ctx, v, now)
		return nil
	})
	g.Go(func() error {
		document.score, document.factors = scoreDocuments(v.Documents)
		return nil
	})
	g.Go(func() error {
		business.score, business.factors = scoreBusiness(v.Business, now)
		return nil
	})
	g.Go(func() error {
		behavioral = s.signalComponent(ctx, componentBehavioral, v, s.behavioral)
		return nil
	})
	g.Go(func() error {
		geographic = s.signalComponent(ctx, componentGeographic, v, s.geographic)
		return nil
	})
	_ = g.Wait()

	components := models.ComponentScores{
		Identity:   identity.score,
		Document:   document.score,
		Business:   business.score,
		Behavioral: behavioral.score,
		Geographic: geographic.score,
	}

	var factors []models.RiskFactor
	var degraded []string
	for _, c := range []struct {
		name string
		res  componentResult
	}{
		{componentIdentity, identity},
		{componentDocument, document},
		{componentBusiness, business},
		{componentBehavioral, behavioral},
		{componentGeographic, geographic},
	} {
		factors = append(factors, c.res.factors...)
		if c.res.degraded {
			degraded = append(degraded, c.name)
			s.metrics.IncrementDegraded(c.name)
		}
	}
	if factors == nil {
		factors = []models.RiskFactor{}
	}

	overall := combineComponents(components)
	autoApprove := autoApprovalEligible(overall, factors)
	result := &models.RiskAssessmentResult{
		VerificationID:       v.ID,
		OverallRiskScore:     overall,
		RiskCategory:         classify(overall),
		Components:           components,
		RiskFactors:          factors,
		Recommendations:      recommendations(factors, autoApprove),
		ConfidenceScore:      confidence(factors),
		RequiresManualReview: requiresManualReview(overall, factors),
		AutoApprovalEligible: autoApprove,
		DegradedComponents:   degraded,
		AssessedAt:           now,
	}

	s.metrics.ObserveAssessLatency(time.Since(start))
	s.metrics.IncrementCategory(string(result.RiskCategory))
	span.SetAttributes(
		attribute.Float64("risk.score", overall),
		attribute.String("risk.category", string(result.RiskCategory)),
	)
	s.logger.InfoContext(ctx, "verification risk assessed",
		"verification_id", v.ID,
		"user_id", v.UserID,
		"score", overall,
		"category", result.RiskCategory,
		"manual_review", result.RequiresManualReview,
		"degraded", degraded,
	)
	s.emit(ctx, audit.Event{
		UserID:   v.UserID,
		Subject:  v.ID,
		Action:   string(audit.EventRiskAssessed),
		Decision: string(result.RiskCategory),
		Metadata: map[string]string{
			"score":         strconv.FormatFloat(overall, 'f', 2, 64),
			"manual_review": strconv.FormatBool(result.RequiresManualReview),
		},
	})
	return result, nil
}

func (s *Service) loadVerification(ctx context.Context, id string) (*recordstore.VerificationRecord, error) {
	v, err := s.store.GetVerificationByID(ctx, id)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.New(dErrors.CodeNotFound, "Verification not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "verification store unavailable")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	return v, nil
}

func (s *Service) identityComponent(ctx context.Context, v *recordstore.VerificationRecord, now time.Time) componentResult {
	account := v.Account
	if account == nil {
		created, err := s.store.GetAccountCreationDate(ctx, v.UserID)
		if err != nil {
			s.logger.WarnContext(ctx, "identity sub-scorer degraded",
				"verification_id", v.ID,
				"user_id", v.UserID,
				"error", err,
			)
			return componentResult{score: neutralScore, degraded: true}
		}
		account = &recordstore.AccountRecord{UserID: v.UserID, CreatedAt: created}
	}
	score, factors := scoreIdentity(account, now)
	return componentResult{score: score, factors: factors}
}

type signal interface {
	Score(ctx context.Context, v *recordstore.VerificationRecord) (ports.SignalResult, error)
}

func (s *Service) signalComponent(ctx context.Context, name string, v *recordstore.VerificationRecord, sig signal) componentResult {
	res, err := sig.Score(ctx, v)
	if err != nil {
		s.logger.WarnContext(ctx, "sub-scorer degraded",
			"component", name,
			"verification_id", v.ID,
			"error", err,
		)
		return componentResult{score: neutralScore, degraded: true}
	}
	return componentResult{score: res.Score, factors: res.Factors}
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
