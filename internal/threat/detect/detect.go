// Package detect runs the threat detectors over an enriched security event.
package detect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"riskgate/internal/threat/models"
	"riskgate/internal/threat/ports"
	"riskgate/pkg/domain"
	"riskgate/pkg/platform/sentinel"
	"riskgate/pkg/scoring"
)

const (
	AttackWindow             = 15 * time.Minute
	BruteForceThreshold      = 5
	CredentialStuffingUsers  = 10
	behaviorAnomalyThreshold = 0.8
	behaviorHighThreshold    = 0.95
	travelHistoryLimit       = 10
)

// Detector runs every check concurrently. A check whose backing lookup
// fails is skipped and logged rather than failing the event.
type Detector struct {
	history  ports.History
	counters ports.Counters
	behavior ports.BehaviorModel
	logger   *slog.Logger
}

type Option func(*Detector)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithBehaviorModel replaces the default session-hour model.
func WithBehaviorModel(m ports.BehaviorModel) Option {
	return func(d *Detector) {
		if m != nil {
			d.behavior = m
		}
	}
}

func New(history ports.History, counters ports.Counters, opts ...Option) *Detector {
	d := &Detector{
		history:  history,
		counters: counters,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	d.behavior = NewSessionHourModel(history)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type check func(context.Context, models.SecurityEvent, models.Enrichment) (*models.ThreatDetection, error)

// Detect returns detections in a fixed order. Never nil.
func (d *Detector) Detect(ctx context.Context, event models.SecurityEvent, enr models.Enrichment) []models.ThreatDetection {
	checks := []struct {
		name string
		run  check
	}{
		{string(models.ThreatMaliciousIP), d.maliciousIP},
		{string(models.ThreatImpossibleTravel), d.impossibleTravel},
		{string(models.ThreatUnknownDevice), d.unknownDevice},
		{string(models.ThreatBehavioralAnomaly), d.behavioralAnomaly},
		{string(models.ThreatBruteForce), d.bruteForce},
		{string(models.ThreatCredentialStuffing), d.credentialStuffing},
	}
	found := make([]*models.ThreatDetection, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		g.Go(func() error {
			det, err := c.run(gctx, event, enr)
			if err != nil {
				d.logger.WarnContext(ctx, "threat check skipped",
					"check", c.name,
					"event_id", event.ID,
					"error", err,
				)
				return nil
			}
			found[i] = det
			return nil
		})
	}
	_ = g.Wait()

	out := []models.ThreatDetection{}
	for _, det := range found {
		if det != nil {
			out = append(out, *det)
		}
	}
	return out
}

func (d *Detector) maliciousIP(_ context.Context, event models.SecurityEvent, enr models.Enrichment) (*models.ThreatDetection, error) {
	rep := enr.Reputation
	if !rep.Malicious {
		return nil, nil
	}
	sev := domain.SeverityHigh
	if rep.Score >= 0.9 {
		sev = domain.SeverityCritical
	}
	evidence := map[string]string{
		"ip_address": event.IPAddress,
		"score":      strconv.FormatFloat(rep.Score, 'f', 2, 64),
	}
	for i, c := range rep.Categories {
		evidence["category_"+strconv.Itoa(i)] = c
	}
	return &models.ThreatDetection{
		Type:        models.ThreatMaliciousIP,
		Severity:    sev,
		Confidence:  scoring.Clamp(rep.Score, 0, 1),
		Description: "Request originated from an address flagged by threat intelligence",
		Evidence:    evidence,
	}, nil
}

// impossibleTravel compares the event's location with the user's latest
// located session inside the travel window.
func (d *Detector) impossibleTravel(ctx context.Context, event models.SecurityEvent, enr models.Enrichment) (*models.ThreatDetection, error) {
	if event.UserID == "" || enr.Location == nil || !enr.Location.Valid() || d.history == nil {
		return nil, nil
	}
	sessions, err := d.history.GetRecentSessions(ctx, event.UserID, "", event.Timestamp.Add(-TravelWindow), travelHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	for _, sess := range sessions {
		if sess.Location == nil || !sess.Location.Valid() || sess.CreatedAt.After(event.Timestamp) {
			continue
		}
		tc := CheckTravel(*sess.Location, sess.CreatedAt, *enr.Location, event.Timestamp)
		if !tc.Impossible {
			return nil, nil
		}
		return &models.ThreatDetection{
			Type:        models.ThreatImpossibleTravel,
			Severity:    domain.SeverityHigh,
			Confidence:  scoring.Clamp(0.5+(tc.SpeedKmh-MaxTravelSpeedKmh)/(2*MaxTravelSpeedKmh), 0.5, 0.99),
			Description: fmt.Sprintf("Travelled %.0f km in %s", tc.DistanceKm, tc.Elapsed.Round(time.Second)),
			Evidence: map[string]string{
				"from":        sess.Location.Country,
				"to":          enr.Location.Country,
				"distance_km": strconv.FormatFloat(tc.DistanceKm, 'f', 0, 64),
				"speed_kmh":   strconv.FormatFloat(tc.SpeedKmh, 'f', 0, 64),
				"previous_ip": sess.IPAddress,
				"previous_at": sess.CreatedAt.UTC().Format(time.RFC3339),
			},
		}, nil
	}
	return nil, nil
}

func (d *Detector) unknownDevice(ctx context.Context, event models.SecurityEvent, _ models.Enrichment) (*models.ThreatDetection, error) {
	if event.UserID == "" || event.DeviceID == "" || d.history == nil {
		return nil, nil
	}
	rec, err := d.history.GetDeviceTrustRecord(ctx, event.UserID, event.DeviceID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, fmt.Errorf("load device trust: %w", err)
	}
	if rec != nil {
		return nil, nil
	}
	sev := domain.SeverityMedium
	if event.Type == models.EventPermissionChange || event.Type == models.EventDataExport {
		sev = domain.SeverityHigh
	}
	return &models.ThreatDetection{
		Type:        models.ThreatUnknownDevice,
		Severity:    sev,
		Confidence:  0.7,
		Description: "Activity from a device never registered for this user",
		Evidence:    map[string]string{"device_id": event.DeviceID},
	}, nil
}

func (d *Detector) behavioralAnomaly(ctx context.Context, event models.SecurityEvent, _ models.Enrichment) (*models.ThreatDetection, error) {
	if event.UserID == "" || d.behavior == nil {
		return nil, nil
	}
	score, err := d.behavior.Score(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("score behavior: %w", err)
	}
	if score < behaviorAnomalyThreshold {
		return nil, nil
	}
	sev := domain.SeverityMedium
	if score >= behaviorHighThreshold {
		sev = domain.SeverityHigh
	}
	return &models.ThreatDetection{
		Type:        models.ThreatBehavioralAnomaly,
		Severity:    sev,
		Confidence:  scoring.Clamp(score, 0, 1),
		Description: "Activity deviates from the user's usual pattern",
		Evidence:    map[string]string{"anomaly_score": strconv.FormatFloat(score, 'f', 2, 64)},
	}, nil
}

func (d *Detector) bruteForce(ctx context.Context, event models.SecurityEvent, _ models.Enrichment) (*models.ThreatDetection, error) {
	if !event.Type.IsAuthFailure() || event.UserID == "" || d.counters == nil {
		return nil, nil
	}
	n, err := d.counters.RecordFailure(ctx, event.UserID, event.Timestamp, AttackWindow)
	if err != nil {
		return nil, fmt.Errorf("count failures: %w", err)
	}
	if n < BruteForceThreshold {
		return nil, nil
	}
	sev := domain.SeverityHigh
	if n >= 2*BruteForceThreshold {
		sev = domain.SeverityCritical
	}
	return &models.ThreatDetection{
		Type:        models.ThreatBruteForce,
		Severity:    sev,
		Confidence:  scoring.Clamp(float64(n)/float64(2*BruteForceThreshold), 0.5, 1),
		Description: fmt.Sprintf("%d failed authentications in %s", n, AttackWindow),
		Evidence:    map[string]string{"failures": strconv.Itoa(n)},
	}, nil
}

func (d *Detector) credentialStuffing(ctx context.Context, event models.SecurityEvent, _ models.Enrichment) (*models.ThreatDetection, error) {
	if event.Type != models.EventLoginFailure || event.IPAddress == "" || event.UserID == "" || d.counters == nil {
		return nil, nil
	}
	n, err := d.counters.RecordUserForIP(ctx, event.IPAddress, event.UserID, event.Timestamp, AttackWindow)
	if err != nil {
		return nil, fmt.Errorf("count users per ip: %w", err)
	}
	if n < CredentialStuffingUsers {
		return nil, nil
	}
	return &models.ThreatDetection{
		Type:        models.ThreatCredentialStuffing,
		Severity:    domain.SeverityCritical,
		Confidence:  scoring.Clamp(float64(n)/float64(2*CredentialStuffingUsers), 0.5, 1),
		Description: fmt.Sprintf("%d distinct accounts failed from one address in %s", n, AttackWindow),
		Evidence: map[string]string{
			"ip_address":     event.IPAddress,
			"distinct_users": strconv.Itoa(n),
		},
	}, nil
}
