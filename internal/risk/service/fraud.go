package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/models"
	"riskgate/pkg/domain"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/requestcontext"
)

const (
	rapidUploadWindow = 10 * time.Second
	velocityThreshold = 4
	qualityThreshold  = 50.0
	ocrThreshold      = 60.0
	fieldFullName     = "name"
	fieldDateOfBirth  = "date_of_birth"
)

// DetectFraudIndicators returns indicators ordered by severity, most severe
// first. It never fails: an unknown or unreadable verification yields an
// empty list, and a failing lookup only drops its own check.
func (s *Service) DetectFraudIndicators(ctx context.Context, verificationID string) []models.FraudIndicator {
	ctx, span := s.tracer.Start(ctx, "risk.DetectFraudIndicators",
		trace.WithAttributes(attribute.String("verification_id", verificationID)))
	defer span.End()

	indicators := []models.FraudIndicator{}
	v, err := s.store.GetVerificationByID(ctx, verificationID)
	if err != nil {
		s.logger.WarnContext(ctx, "fraud detection skipped",
			"verification_id", verificationID,
			"error", err,
		)
		return indicators
	}
	now := requestcontext.Now(ctx)

	indicators = append(indicators, s.detectDuplicateDocuments(ctx, v)...)
	indicators = append(indicators, detectRapidUploads(v.Documents)...)
	indicators = append(indicators, detectIdenticalFilenames(v.Documents)...)
	indicators = append(indicators, s.detectVelocity(ctx, v, now)...)
	indicators = append(indicators, detectFieldInconsistency(v.Documents, fieldFullName, "name_inconsistency", "full name")...)
	indicators = append(indicators, detectFieldInconsistency(v.Documents, fieldDateOfBirth, "dob_inconsistency", "date of birth")...)
	indicators = append(indicators, detectPoorQuality(v.Documents)...)

	sortBySeverity(indicators)

	for _, ind := range indicators {
		s.metrics.IncrementFraudIndicator(ind.Type)
	}
	if len(indicators) > 0 {
		types := make([]string, len(indicators))
		for i, ind := range indicators {
			types[i] = ind.Type
		}
		s.emit(ctx, audit.Event{
			UserID:   v.UserID,
			Subject:  v.ID,
			Action:   string(audit.EventFraudIndicatorsFound),
			Severity: string(indicators[0].Severity),
			Reason:   strings.Join(types, ","),
		})
	}
	span.SetAttributes(attribute.Int("fraud.indicators", len(indicators)))
	return indicators
}

// sortBySeverity is stable so equal severities keep detection order.
func sortBySeverity(indicators []models.FraudIndicator) {
	slices.SortStableFunc(indicators, func(a, b models.FraudIndicator) int {
		return cmp.Compare(b.Severity.Rank(), a.Severity.Rank())
	})
}

func (s *Service) detectDuplicateDocuments(ctx context.Context, v *recordstore.VerificationRecord) []models.FraudIndicator {
	var out []models.FraudIndicator
	for _, d := range v.Documents {
		if d.FileHash == "" {
			continue
		}
		refs, err := s.store.FindDocumentsByHash(ctx, d.FileHash, v.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "duplicate document check failed",
				"verification_id", v.ID,
				"document_id", d.ID,
				"error", err,
			)
			continue
		}
		if len(refs) == 0 {
			continue
		}
		matched := make([]string, 0, len(refs))
		for _, r := range refs {
			matched = append(matched, r.VerificationID)
		}
		out = append(out, models.FraudIndicator{
			Type:        "duplicate_document",
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("Document %s was also submitted in %d other verification(s)", d.ID, len(refs)),
			Evidence: map[string]any{
				"documentId":             d.ID,
				"fileHash":               d.FileHash,
				"matchedVerificationIds": matched,
			},
		})
	}
	return out
}

func detectRapidUploads(docs []recordstore.DocumentRecord) []models.FraudIndicator {
	if len(docs) < 2 {
		return nil
	}
	times := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		if !d.UploadedAt.IsZero() {
			times = append(times, d.UploadedAt)
		}
	}
	slices.SortFunc(times, time.Time.Compare)

	pairs := 0
	var shortest time.Duration = -1
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		if gap < rapidUploadWindow {
			pairs++
			if shortest < 0 || gap < shortest {
				shortest = gap
			}
		}
	}
	if pairs == 0 {
		return nil
	}
	return []models.FraudIndicator{{
		Type:        "rapid_document_upload",
		Severity:    domain.SeverityMedium,
		Description: fmt.Sprintf("%d consecutive upload(s) less than %s apart", pairs, rapidUploadWindow),
		Evidence: map[string]any{
			"rapidPairs":      pairs,
			"shortestGapSecs": shortest.Seconds(),
		},
	}}
}

func detectIdenticalFilenames(docs []recordstore.DocumentRecord) []models.FraudIndicator {
	counts := make(map[string]int)
	var order []string
	for _, d := range docs {
		name := strings.ToLower(strings.TrimSpace(d.OriginalFilename))
		if name == "" {
			continue
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}
	var dupes []string
	for _, name := range order {
		if counts[name] >= 2 {
			dupes = append(dupes, name)
		}
	}
	if len(dupes) == 0 {
		return nil
	}
	return []models.FraudIndicator{{
		Type:        "identical_file_names",
		Severity:    domain.SeverityMedium,
		Description: fmt.Sprintf("%d filename(s) reused across documents", len(dupes)),
		Evidence:    map[string]any{"filenames": dupes},
	}}
}

func (s *Service) detectVelocity(ctx context.Context, v *recordstore.VerificationRecord, now time.Time) []models.FraudIndicator {
	n, err := s.store.CountRecentVerifications(ctx, v.UserID, now.Add(-velocityWindow))
	if err != nil {
		s.logger.WarnContext(ctx, "velocity check failed",
			"verification_id", v.ID,
			"user_id", v.UserID,
			"error", err,
		)
		return nil
	}
	if n < velocityThreshold {
		return nil
	}
	return []models.FraudIndicator{{
		Type:        "velocity_abuse",
		Severity:    domain.SeverityHigh,
		Description: fmt.Sprintf("%d verifications submitted within %s", n, velocityWindow),
		Evidence:    map[string]any{"count": n, "windowHours": velocityWindow.Hours()},
	}}
}

func normalizeField(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

func detectFieldInconsistency(docs []recordstore.DocumentRecord, field, typ, label string) []models.FraudIndicator {
	var distinct []string
	for _, d := range docs {
		val := normalizeField(d.ExtractedFields[field])
		if val != "" && !slices.Contains(distinct, val) {
			distinct = append(distinct, val)
		}
	}
	if len(distinct) < 2 {
		return nil
	}
	return []models.FraudIndicator{{
		Type:        typ,
		Severity:    domain.SeverityHigh,
		Description: fmt.Sprintf("Documents disagree on %s (%d distinct values)", label, len(distinct)),
		Evidence:    map[string]any{"distinctValues": len(distinct), "field": field},
	}}
}

// detectPoorQuality scales severity with how far below both thresholds a
// document falls.
func detectPoorQuality(docs []recordstore.DocumentRecord) []models.FraudIndicator {
	var out []models.FraudIndicator
	for _, d := range docs {
		if d.QualityScore >= qualityThreshold || d.OCRConfidence >= ocrThreshold {
			continue
		}
		deficit := (qualityThreshold - d.QualityScore) + (ocrThreshold - d.OCRConfidence)
		sev := domain.SeverityLow
		switch {
		case deficit > 60:
			sev = domain.SeverityHigh
		case deficit > 30:
			sev = domain.SeverityMedium
		}
		out = append(out, models.FraudIndicator{
			Type:        "poor_document_quality",
			Severity:    sev,
			Description: fmt.Sprintf("Document %s has quality %.0f and OCR confidence %.0f", d.ID, d.QualityScore, d.OCRConfidence),
			Evidence: map[string]any{
				"documentId":    d.ID,
				"qualityScore":  d.QualityScore,
				"ocrConfidence": d.OCRConfidence,
			},
		})
	}
	return out
}
