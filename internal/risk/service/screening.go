package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/models"
	"riskgate/pkg/domain"
	audit "riskgate/pkg/platform/audit"
)

// breakerCooldown is how long an open breaker short-circuits before the
// next call is let through as a probe.
const breakerCooldown = 30 * time.Second

var listFlagTypes = map[string]string{
	"sanctions":     "sanctions_match",
	"pep":           "pep_match",
	"watchlist":     "watchlist_match",
	"adverse_media": "adverse_media_match",
}

// PerformComplianceScreening screens the submission against external lists.
// It fails open: provider errors, timeouts and an open breaker all produce
// an empty list.
func (s *Service) PerformComplianceScreening(ctx context.Context, verificationID string) []models.ComplianceFlag {
	ctx, span := s.tracer.Start(ctx, "risk.PerformComplianceScreening",
		trace.WithAttributes(attribute.String("verification_id", verificationID)))
	defer span.End()

	flags := []models.ComplianceFlag{}
	if s.screening == nil {
		return flags
	}
	v, err := s.store.GetVerificationByID(ctx, verificationID)
	if err != nil {
		s.logger.WarnContext(ctx, "compliance screening skipped",
			"verification_id", verificationID,
			"error", err,
		)
		return flags
	}
	if s.breaker.IsOpen() && time.Since(time.Unix(0, s.breakerTrippedAt.Load())) < breakerCooldown {
		s.metrics.IncrementScreening("degraded")
		s.logger.WarnContext(ctx, "compliance screening skipped, circuit open",
			"verification_id", verificationID,
			"breaker", s.breaker.Name(),
		)
		return flags
	}

	sctx, cancel := context.WithTimeout(ctx, s.screeningTimeout)
	defer cancel()
	hits, err := s.screening.Screen(sctx, subjectFor(v))
	if err != nil {
		useFallback, change := s.breaker.RecordFailure()
		if useFallback {
			s.breakerTrippedAt.Store(time.Now().UnixNano())
		}
		if change.Opened {
			s.logger.WarnContext(ctx, "screening circuit opened", "breaker", s.breaker.Name())
		}
		s.metrics.IncrementScreening("degraded")
		s.logger.WarnContext(ctx, "compliance screening degraded",
			"verification_id", verificationID,
			"error", err,
		)
		return flags
	}
	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "screening circuit closed", "breaker", s.breaker.Name())
	}

	for _, h := range hits {
		flags = append(flags, flagFromHit(h))
	}
	if len(flags) == 0 {
		s.metrics.IncrementScreening("clear")
	} else {
		s.metrics.IncrementScreening("flagged")
	}
	s.emit(ctx, audit.Event{
		UserID:   v.UserID,
		Subject:  v.ID,
		Action:   string(audit.EventComplianceScreened),
		Decision: screeningDecision(flags),
	})
	return flags
}

func screeningDecision(flags []models.ComplianceFlag) string {
	if len(flags) == 0 {
		return "clear"
	}
	return "flagged"
}

func flagFromHit(h models.ScreeningHit) models.ComplianceFlag {
	typ, ok := listFlagTypes[strings.ToLower(h.List)]
	if !ok {
		typ = "watchlist_match"
	}
	sev := domain.SeverityMedium
	switch {
	case h.MatchScore >= 0.9:
		sev = domain.SeverityCritical
	case h.MatchScore >= 0.75:
		sev = domain.SeverityHigh
	}
	return models.ComplianceFlag{
		Type:       typ,
		Severity:   sev,
		Source:     h.Source,
		MatchScore: h.MatchScore,
		Details:    fmt.Sprintf("Matched %q on %s list", h.MatchedOn, h.List),
	}
}

func subjectFor(v *recordstore.VerificationRecord) models.ScreeningSubject {
	subject := models.ScreeningSubject{VerificationID: v.ID, Country: v.Country}
	for _, d := range v.Documents {
		if subject.FullName == "" {
			subject.FullName = strings.TrimSpace(d.ExtractedFields[fieldFullName])
		}
		if subject.DateOfBirth == "" {
			subject.DateOfBirth = strings.TrimSpace(d.ExtractedFields[fieldDateOfBirth])
		}
	}
	if v.Business != nil {
		subject.BusinessName = v.Business.Name
	}
	return subject
}
