package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"riskgate/internal/threat/metrics"
	"riskgate/internal/threat/models"
	"riskgate/internal/threat/ports"
	"riskgate/internal/threat/queue"
	"riskgate/pkg/domain"
	dErrors "riskgate/pkg/domain-errors"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/requestcontext"
)

const batchWorkers = 4

type Enricher interface {
	Enrich(ctx context.Context, event models.SecurityEvent) models.Enrichment
}

type Detector interface {
	Detect(ctx context.Context, event models.SecurityEvent, enr models.Enrichment) []models.ThreatDetection
}

type ComplianceChecker interface {
	Evaluate(ctx context.Context, event models.SecurityEvent, enr models.Enrichment) []models.ComplianceViolation
}

// Service runs security events through enrichment, detection and
// compliance checks. High and critical events are analysed inline; the
// rest go through the queue when one is configured.
type Service struct {
	enricher   Enricher
	detector   Detector
	compliance ComplianceChecker
	queue      queue.Queue
	alerts     ports.AlertPublisher
	auditor    audit.Emitter
	rolling    *metrics.Rolling
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
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

// WithQueue enables batched processing of low and medium events.
func WithQueue(q queue.Queue) Option {
	return func(s *Service) { s.queue = q }
}

func WithAlertPublisher(p ports.AlertPublisher) Option {
	return func(s *Service) { s.alerts = p }
}

func New(enricher Enricher, detector Detector, compliance ComplianceChecker, opts ...Option) *Service {
	s := &Service{
		enricher:   enricher,
		detector:   detector,
		compliance: compliance,
		rolling:    metrics.NewRolling(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:     otel.Tracer("riskgate/threat"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process validates the event and either analyses it now or queues it. A
// queue that refuses the event falls back to inline analysis.
func (s *Service) Process(ctx context.Context, event models.SecurityEvent) (*models.ProcessResult, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Severity == "" {
		event.Severity = domain.SeverityLow
	}
	if err := event.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	if s.queue != nil && !event.Urgent() {
		err := s.queue.Enqueue(ctx, event)
		if err == nil {
			s.metrics.SetQueueDepth(s.queue.Depth())
			return &models.ProcessResult{EventID: event.ID, Mode: models.ModeQueued}, nil
		}
		s.metrics.IncrementEnqueueRejected()
		s.logger.WarnContext(ctx, "threat queue refused event; analysing inline",
			"event_id", event.ID,
			"queue_full", errors.Is(err, queue.ErrFull),
			"error", err,
		)
	}

	processed := s.analyze(ctx, event, models.ModeProcessed)
	return &models.ProcessResult{EventID: event.ID, Mode: models.ModeProcessed, Processed: &processed}, nil
}

// Run consumes queued events until ctx is cancelled. Without a queue it
// returns immediately.
func (s *Service) Run(ctx context.Context) error {
	if s.queue == nil {
		return nil
	}
	return s.queue.Run(ctx, s.processBatch)
}

func (s *Service) processBatch(ctx context.Context, batch []models.SecurityEvent) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for _, event := range batch {
		g.Go(func() error {
			s.analyze(gctx, event, models.ModeQueued)
			return nil
		})
	}
	_ = g.Wait()
	s.metrics.SetQueueDepth(s.queue.Depth())
	s.logger.InfoContext(ctx, "security event batch processed", "events", len(batch))
}

// Metrics summarises the last hour of processing.
func (s *Service) Metrics(ctx context.Context) models.MetricsSnapshot {
	depth := 0
	if s.queue != nil {
		depth = s.queue.Depth()
	}
	return s.rolling.Snapshot(requestcontext.Now(ctx), depth)
}

func (s *Service) analyze(ctx context.Context, event models.SecurityEvent, mode models.ProcessMode) models.ProcessedEvent {
	ctx, span := s.tracer.Start(ctx, "threat.Process",
		trace.WithAttributes(
			attribute.String("event_id", event.ID),
			attribute.String("event_type", string(event.Type)),
			attribute.String("mode", string(mode)),
		))
	defer span.End()
	start := time.Now()

	enr := s.enricher.Enrich(ctx, event)
	threats := s.detector.Detect(ctx, event, enr)
	violations := s.compliance.Evaluate(ctx, event, enr)

	p := models.ProcessedEvent{
		Event:       event,
		Enrichment:  enr,
		Threats:     threats,
		Violations:  violations,
		ProcessedAt: requestcontext.Now(ctx),
		Duration:    time.Since(start),
	}
	span.SetAttributes(attribute.Int("threats", len(threats)), attribute.Int("violations", len(violations)))

	s.record(ctx, p, mode)
	s.raiseAlert(ctx, p)
	return p
}

func (s *Service) record(ctx context.Context, p models.ProcessedEvent, mode models.ProcessMode) {
	s.rolling.Record(p)
	s.metrics.ObserveProcessed(string(p.Event.Type), string(p.Event.Severity), string(mode), p.Duration)

	for _, t := range p.Threats {
		s.metrics.IncrementThreat(string(t.Type))
		s.emit(ctx, audit.Event{
			UserID:   p.Event.UserID,
			Subject:  p.Event.ID,
			Action:   string(audit.EventThreatDetected),
			Decision: string(t.Type),
			Reason:   t.Description,
			Severity: string(t.Severity),
			Metadata: t.Evidence,
		})
	}
	for _, v := range p.Violations {
		s.metrics.IncrementViolation(string(v.Regulation))
		s.emit(ctx, audit.Event{
			UserID:   p.Event.UserID,
			Subject:  p.Event.ID,
			Action:   string(audit.EventComplianceViolation),
			Decision: v.Rule,
			Reason:   v.Description,
			Severity: string(v.Severity),
			Metadata: map[string]string{"regulation": string(v.Regulation)},
		})
	}
	s.emit(ctx, audit.Event{
		UserID:   p.Event.UserID,
		Subject:  p.Event.ID,
		Action:   string(audit.EventSecurityEventProcessed),
		Decision: string(mode),
		Severity: string(p.Event.Severity),
		Metadata: map[string]string{
			"event_type":  string(p.Event.Type),
			"ip_address":  p.Event.IPAddress,
			"threats":     strconv.Itoa(len(p.Threats)),
			"violations":  strconv.Itoa(len(p.Violations)),
			"duration_ms": strconv.FormatInt(p.Duration.Milliseconds(), 10),
		},
	})

	s.logger.InfoContext(ctx, "security event processed",
		"event_id", p.Event.ID,
		"event_type", p.Event.Type,
		"mode", mode,
		"threats", len(p.Threats),
		"violations", len(p.Violations),
		"degraded", p.Enrichment.Degraded,
		"duration_ms", p.Duration.Milliseconds(),
	)
}

// raiseAlert publishes when anything was found. Publishing failures are
// logged; the analysis result stands.
func (s *Service) raiseAlert(ctx context.Context, p models.ProcessedEvent) {
	if s.alerts == nil || (len(p.Threats) == 0 && len(p.Violations) == 0) {
		return
	}
	sev := p.MaxThreatSeverity()
	for _, v := range p.Violations {
		if v.Severity.Rank() > sev.Rank() {
			sev = v.Severity
		}
	}
	alert := models.Alert{
		ID:         uuid.NewString(),
		EventID:    p.Event.ID,
		EventType:  p.Event.Type,
		UserID:     p.Event.UserID,
		IPAddress:  p.Event.IPAddress,
		Severity:   sev,
		Threats:    p.Threats,
		Violations: p.Violations,
		CreatedAt:  p.ProcessedAt,
	}
	if err := s.alerts.PublishAlert(ctx, alert); err != nil {
		s.metrics.IncrementAlertPublishFailed()
		s.logger.ErrorContext(ctx, "failed to publish threat alert",
			"event_id", p.Event.ID,
			"alert_id", alert.ID,
			"error", err,
		)
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
