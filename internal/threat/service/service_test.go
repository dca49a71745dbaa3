package service

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"riskgate/internal/recordstore"
	"riskgate/internal/threat/compliance"
	"riskgate/internal/threat/detect"
	"riskgate/internal/threat/enrich"
	"riskgate/internal/threat/models"
	"riskgate/internal/threat/ports/mocks"
	"riskgate/internal/threat/queue"
	"riskgate/internal/threat/store"
	"riskgate/pkg/domain"
	dErrors "riskgate/pkg/domain-errors"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/requestcontext"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
}

func (e *recordingEmitter) Emit(_ context.Context, event audit.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Action
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	records *recordstore.InMemoryStore
	alerts  *mocks.MockAlertPublisher
	auditor *recordingEmitter
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.records = recordstore.NewInMemoryStore()
	s.alerts = mocks.NewMockAlertPublisher(s.ctrl)
	s.auditor = &recordingEmitter{}
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	geo := enrich.NewStaticGeoResolver(enrich.GeoRange{
		Prefix:   netip.MustParsePrefix("203.0.113.0/24"),
		Location: domain.GeoLocation{Latitude: 40.71, Longitude: -74.0, Country: "US", City: "New York"},
	})
	intel := enrich.NewBlocklistIntel(enrich.BlockedRange{
		Prefix: netip.MustParsePrefix("198.51.100.0/24"), Score: 0.95, Categories: []string{"botnet"},
	})
	engine, err := compliance.NewEngine(compliance.DefaultRules())
	s.Require().NoError(err)

	opts = append([]Option{WithAuditor(s.auditor), WithAlertPublisher(s.alerts)}, opts...)
	return New(
		enrich.New(geo, intel),
		detect.New(s.records, store.NewMemoryCounters()),
		engine,
		opts...,
	)
}

func (s *ServiceSuite) TestRejectsInvalidEvents() {
	svc := s.newService()

	_, err := svc.Process(s.ctx, models.SecurityEvent{Type: "teleport", UserID: "alice"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Process(s.ctx, models.SecurityEvent{Type: models.EventLogout})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Process(s.ctx, models.SecurityEvent{Type: models.EventLogout, UserID: "alice", Severity: "extreme"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCriticalEventIsAnalysedInline() {
	q := queue.NewChannelQueue()
	svc := s.newService(WithQueue(q))

	var published models.Alert
	s.alerts.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a models.Alert) error {
			published = a
			return nil
		})

	res, err := svc.Process(s.ctx, models.SecurityEvent{
		Type:      models.EventSuspiciousActivity,
		Severity:  domain.SeverityCritical,
		UserID:    "alice",
		IPAddress: "198.51.100.7",
	})
	s.Require().NoError(err)
	s.Equal(models.ModeProcessed, res.Mode)
	s.Require().NotNil(res.Processed)
	s.Zero(q.Depth())

	s.Require().Len(res.Processed.Threats, 1)
	s.Equal(models.ThreatMaliciousIP, res.Processed.Threats[0].Type)
	s.Empty(res.Processed.Violations)
	s.Equal(fixedNow, res.Processed.ProcessedAt)

	s.Equal(res.EventID, published.EventID)
	s.Equal(domain.SeverityCritical, published.Severity)
	s.Equal("alice", published.UserID)

	s.Equal([]string{
		string(audit.EventThreatDetected),
		string(audit.EventSecurityEventProcessed),
	}, s.auditor.actions())
}

func (s *ServiceSuite) TestDefaultsAreFilled() {
	svc := s.newService()
	res, err := svc.Process(s.ctx, models.SecurityEvent{Type: models.EventLogout, UserID: "alice"})
	s.Require().NoError(err)
	s.NotEmpty(res.EventID)
	s.Equal(res.EventID, res.Processed.Event.ID)
	s.Equal(fixedNow, res.Processed.Event.Timestamp)
	s.Equal(domain.SeverityLow, res.Processed.Event.Severity)
}

func (s *ServiceSuite) TestLowEventIsQueuedThenProcessed() {
	q := queue.NewChannelQueue(queue.WithBatchSize(2), queue.WithFlushInterval(10*time.Millisecond))
	svc := s.newService(WithQueue(q))

	res, err := svc.Process(s.ctx, models.SecurityEvent{Type: models.EventLoginSuccess, UserID: "alice", IPAddress: "192.0.2.1"})
	s.Require().NoError(err)
	s.Equal(models.ModeQueued, res.Mode)
	s.Nil(res.Processed)
	s.Equal(1, svc.Metrics(s.ctx).QueueDepth)
	s.Zero(svc.Metrics(s.ctx).EventsProcessed)

	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	s.Eventually(func() bool { return svc.Metrics(s.ctx).EventsProcessed == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	s.NoError(<-done)

	snap := svc.Metrics(s.ctx)
	s.Equal(map[string]int{"login_success": 1}, snap.EventsByType)
	s.Zero(snap.QueueDepth)

	s.auditor.mu.Lock()
	last := s.auditor.events[len(s.auditor.events)-1]
	s.auditor.mu.Unlock()
	s.Equal(string(audit.EventSecurityEventProcessed), last.Action)
	s.Equal(string(models.ModeQueued), last.Decision)
}

func (s *ServiceSuite) TestFullQueueFallsBackToInline() {
	q := queue.NewChannelQueue(queue.WithCapacity(1))
	s.Require().NoError(q.Enqueue(s.ctx, models.SecurityEvent{ID: "filler"}))
	svc := s.newService(WithQueue(q))

	res, err := svc.Process(s.ctx, models.SecurityEvent{Type: models.EventLogout, UserID: "alice"})
	s.Require().NoError(err)
	s.Equal(models.ModeProcessed, res.Mode)
	s.NotNil(res.Processed)
}

func (s *ServiceSuite) TestRunWithoutQueueReturns() {
	s.NoError(s.newService().Run(context.Background()))
}

func (s *ServiceSuite) TestComplianceViolationRaisesAlert() {
	svc := s.newService()
	var published models.Alert
	s.alerts.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a models.Alert) error {
			published = a
			return nil
		})

	res, err := svc.Process(s.ctx, models.SecurityEvent{
		Type:     models.EventPermissionChange,
		Severity: domain.SeverityMedium,
		UserID:   "alice",
		Evidence: map[string]string{"approved_by": "alice"},
	})
	s.Require().NoError(err)
	s.Require().Len(res.Processed.Violations, 1)
	s.Equal("sox.self_approval", res.Processed.Violations[0].Rule)
	s.Equal(domain.SeverityCritical, published.Severity)
	s.Contains(s.auditor.actions(), string(audit.EventComplianceViolation))
}

func (s *ServiceSuite) TestExportAbroadUsesResolvedLocation() {
	svc := s.newService()
	s.alerts.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).Return(nil)

	res, err := svc.Process(s.ctx, models.SecurityEvent{
		Type:      models.EventDataExport,
		Severity:  domain.SeverityHigh,
		UserID:    "alice",
		IPAddress: "203.0.113.40",
		DeviceID:  "dev_known",
		Evidence:  map[string]string{"data_classification": "personal", "purpose": "analytics"},
	})
	s.Require().NoError(err)
	s.Equal("US", res.Processed.Enrichment.Location.Country)
	s.Equal([]string{"gdpr.cross_border_transfer"}, []string{res.Processed.Violations[0].Rule})
	s.Equal(models.ThreatUnknownDevice, res.Processed.Threats[0].Type)
}

func (s *ServiceSuite) TestAlertFailureDoesNotFailProcessing() {
	svc := s.newService()
	s.alerts.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	res, err := svc.Process(s.ctx, models.SecurityEvent{
		Type: models.EventLoginSuccess, Severity: domain.SeverityHigh, UserID: "alice", IPAddress: "198.51.100.9",
	})
	s.Require().NoError(err)
	s.Len(res.Processed.Threats, 1)
}

func (s *ServiceSuite) TestCleanEventPublishesNothing() {
	svc := s.newService()
	res, err := svc.Process(s.ctx, models.SecurityEvent{Type: models.EventLogout, UserID: "alice", IPAddress: "192.0.2.1"})
	s.Require().NoError(err)
	s.NotNil(res.Processed.Threats)
	s.Empty(res.Processed.Threats)
	s.NotNil(res.Processed.Violations)
}

func (s *ServiceSuite) TestBruteForceAcrossEventsShowsInMetrics() {
	svc := s.newService()
	s.alerts.EXPECT().PublishAlert(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	for i := range detect.BruteForceThreshold {
		_, err := svc.Process(s.ctx, models.SecurityEvent{
			Type:      models.EventLoginFailure,
			UserID:    "alice",
			IPAddress: "192.0.2.1",
			Timestamp: fixedNow.Add(time.Duration(i-detect.BruteForceThreshold) * time.Minute),
		})
		s.Require().NoError(err)
	}

	snap := svc.Metrics(s.ctx)
	s.Equal(detect.BruteForceThreshold, snap.EventsProcessed)
	s.Equal(map[string]int{"brute_force": 1}, snap.ThreatsByType)
	s.Equal(map[string]int{"low": detect.BruteForceThreshold}, snap.EventsBySeverity)
}
