package service

import (
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/models"
	"riskgate/pkg/domain"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/platform/sentinel"
)

func indicatorTypes(indicators []models.FraudIndicator) []string {
	out := make([]string, len(indicators))
	for i, ind := range indicators {
		out[i] = ind.Type
	}
	return out
}

func (s *ServiceSuite) TestDetectFraudIndicators() {
	s.Run("unknown verification yields empty list", func() {
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "missing").Return(nil, sentinel.ErrNotFound)

		indicators := s.service.DetectFraudIndicators(s.ctx, "missing")
		s.NotNil(indicators)
		s.Empty(indicators)
	})

	s.Run("clean submission has no indicators", func() {
		v := &recordstore.VerificationRecord{
			ID:        "ver-clean",
			UserID:    "user-1",
			Documents: []recordstore.DocumentRecord{cleanDocument("doc-1")},
		}
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-clean").Return(v, nil)
		s.store.EXPECT().CountRecentVerifications(gomock.Any(), "user-1", fixedNow.Add(-velocityWindow)).Return(1, nil)

		indicators := s.service.DetectFraudIndicators(s.ctx, "ver-clean")
		s.NotNil(indicators)
		s.Empty(indicators)
	})

	s.Run("indicators are ordered by severity, detection order within a tier", func() {
		t0 := fixedNow.Add(-time.Hour)
		v := &recordstore.VerificationRecord{
			ID:     "ver-fraud",
			UserID: "user-2",
			Documents: []recordstore.DocumentRecord{
				{
					ID:               "doc-a",
					FileHash:         "hash-a",
					OriginalFilename: "ID.jpg",
					UploadedAt:       t0,
					QualityScore:     30,
					OCRConfidence:    20,
					ValidationStatus: recordstore.DocumentValid,
					ExtractedFields:  map[string]string{"name": "Jane Doe", "date_of_birth": "1990-01-01"},
				},
				{
					ID:               "doc-b",
					FileHash:         "hash-b",
					OriginalFilename: " id.JPG",
					UploadedAt:       t0.Add(5 * time.Second),
					QualityScore:     90,
					OCRConfidence:    90,
					ValidationStatus: recordstore.DocumentValid,
					ExtractedFields:  map[string]string{"name": "JANE   doe", "date_of_birth": "1991-01-01"},
				},
			},
		}
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-fraud").Return(v, nil)
		s.store.EXPECT().FindDocumentsByHash(gomock.Any(), "hash-a", "ver-fraud").
			Return([]recordstore.DocumentRef{{DocumentID: "old-doc", VerificationID: "ver-old", UserID: "user-9"}}, nil)
		s.store.EXPECT().FindDocumentsByHash(gomock.Any(), "hash-b", "ver-fraud").Return(nil, nil)
		s.store.EXPECT().CountRecentVerifications(gomock.Any(), "user-2", gomock.Any()).Return(5, nil)

		indicators := s.service.DetectFraudIndicators(s.ctx, "ver-fraud")

		s.Equal([]string{
			"duplicate_document",
			"velocity_abuse",
			"dob_inconsistency",
			"rapid_document_upload",
			"identical_file_names",
			"poor_document_quality",
		}, indicatorTypes(indicators))
		s.Equal(domain.SeverityMedium, indicators[len(indicators)-1].Severity)
		s.Equal([]string{"ver-old"}, indicators[0].Evidence["matchedVerificationIds"])
		s.Contains(s.auditor.actions(), string(audit.EventFraudIndicatorsFound))
	})

	s.Run("documents disagreeing on name and date of birth", func() {
		doc := func(id, name, dob string, at time.Time) recordstore.DocumentRecord {
			return recordstore.DocumentRecord{
				ID:               id,
				OriginalFilename: id + ".jpg",
				UploadedAt:       at,
				QualityScore:     90,
				OCRConfidence:    90,
				ValidationStatus: recordstore.DocumentValid,
				ExtractedFields:  map[string]string{"name": name, "date_of_birth": dob},
			}
		}
		v := &recordstore.VerificationRecord{
			ID:     "ver-names",
			UserID: "user-4",
			Documents: []recordstore.DocumentRecord{
				doc("passport", "Jane Doe", "1990-01-01", fixedNow.Add(-2*time.Hour)),
				doc("licence", "John Smith", "1990-01-01", fixedNow.Add(-time.Hour)),
			},
		}
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-names").Return(v, nil)
		s.store.EXPECT().CountRecentVerifications(gomock.Any(), "user-4", gomock.Any()).Return(1, nil)

		indicators := s.service.DetectFraudIndicators(s.ctx, "ver-names")
		s.Equal([]string{"name_inconsistency"}, indicatorTypes(indicators))
		s.Equal(domain.SeverityHigh, indicators[0].Severity)
		s.Equal("name", indicators[0].Evidence["field"])
		s.Equal(2, indicators[0].Evidence["distinctValues"])

		v.ID = "ver-names-dob"
		v.Documents[1].ExtractedFields["date_of_birth"] = "1991-02-03"
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-names-dob").Return(v, nil)
		s.store.EXPECT().CountRecentVerifications(gomock.Any(), "user-4", gomock.Any()).Return(1, nil)

		s.Equal([]string{"name_inconsistency", "dob_inconsistency"},
			indicatorTypes(s.service.DetectFraudIndicators(s.ctx, "ver-names-dob")))
	})

	s.Run("failing lookups drop only their own check", func() {
		v := &recordstore.VerificationRecord{
			ID:     "ver-partial",
			UserID: "user-3",
			Documents: []recordstore.DocumentRecord{
				{ID: "d1", FileHash: "h1", OriginalFilename: "scan.png", QualityScore: 10, OCRConfidence: 10},
				{ID: "d2", OriginalFilename: "SCAN.png", QualityScore: 90, OCRConfidence: 90},
			},
		}
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-partial").Return(v, nil)
		s.store.EXPECT().FindDocumentsByHash(gomock.Any(), "h1", "ver-partial").Return(nil, errors.New("timeout"))
		s.store.EXPECT().CountRecentVerifications(gomock.Any(), "user-3", gomock.Any()).Return(0, sentinel.ErrUnavailable)

		indicators := s.service.DetectFraudIndicators(s.ctx, "ver-partial")
		s.Equal([]string{"poor_document_quality", "identical_file_names"}, indicatorTypes(indicators))
		s.Equal(domain.SeverityHigh, indicators[0].Severity)
	})
}

func (s *ServiceSuite) TestDetectRapidUploads_Boundary() {
	docs := []recordstore.DocumentRecord{
		{UploadedAt: fixedNow},
		{UploadedAt: fixedNow.Add(rapidUploadWindow)},
	}
	s.Empty(detectRapidUploads(docs), "a gap of exactly the window is not rapid")

	docs[1].UploadedAt = fixedNow.Add(rapidUploadWindow - time.Millisecond)
	s.Len(detectRapidUploads(docs), 1)
}
