package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/mock/gomock"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/models"
	"riskgate/pkg/domain"
	"riskgate/pkg/platform/sentinel"
)

func screeningVerification() *recordstore.VerificationRecord {
	return &recordstore.VerificationRecord{
		ID:      "ver-screen",
		UserID:  "user-screen",
		Country: "GB",
		Business: &recordstore.BusinessRecord{
			ID:   "biz-1",
			Name: "Northwind Export Ltd",
		},
		Documents: []recordstore.DocumentRecord{{
			ID:              "doc-1",
			ExtractedFields: map[string]string{"name": " Ivan Petrov ", "date_of_birth": "1970-05-05"},
		}},
	}
}

func (s *ServiceSuite) TestPerformComplianceScreening() {
	s.Run("hits become flags with severity by match score", func() {
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-screen").Return(screeningVerification(), nil)
		s.screening.EXPECT().Screen(gomock.Any(), models.ScreeningSubject{
			VerificationID: "ver-screen",
			FullName:       "Ivan Petrov",
			DateOfBirth:    "1970-05-05",
			BusinessName:   "Northwind Export Ltd",
			Country:        "GB",
		}).Return([]models.ScreeningHit{
			{List: "sanctions", Source: "OFAC", MatchScore: 0.95, MatchedOn: "Ivan Petrov"},
			{List: "PEP", Source: "EU", MatchScore: 0.8, MatchedOn: "Ivan Petrov"},
			{List: "adverse_media", Source: "news", MatchScore: 0.5, MatchedOn: "Northwind"},
			{List: "unlisted", Source: "local", MatchScore: 0.7, MatchedOn: "Northwind"},
		}, nil)

		flags := s.service.PerformComplianceScreening(s.ctx, "ver-screen")
		s.Require().Len(flags, 4)
		s.Equal("sanctions_match", flags[0].Type)
		s.Equal(domain.SeverityCritical, flags[0].Severity)
		s.Equal("pep_match", flags[1].Type)
		s.Equal(domain.SeverityHigh, flags[1].Severity)
		s.Equal("adverse_media_match", flags[2].Type)
		s.Equal(domain.SeverityMedium, flags[2].Severity)
		s.Equal("watchlist_match", flags[3].Type)
	})

	s.Run("provider error fails open", func() {
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-screen").Return(screeningVerification(), nil)
		s.screening.EXPECT().Screen(gomock.Any(), gomock.Any()).Return(nil, errors.New("502 bad gateway"))

		flags := s.service.PerformComplianceScreening(s.ctx, "ver-screen")
		s.NotNil(flags)
		s.Empty(flags)
	})

	s.Run("unknown verification yields empty list", func() {
		s.store.EXPECT().GetVerificationByID(gomock.Any(), "nope").Return(nil, sentinel.ErrNotFound)
		s.Empty(s.service.PerformComplianceScreening(s.ctx, "nope"))
	})
}

func (s *ServiceSuite) TestPerformComplianceScreening_Timeout() {
	svc := New(s.store, WithScreeningProvider(s.screening), WithScreeningTimeout(20*time.Millisecond))
	s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-screen").Return(screeningVerification(), nil)
	s.screening.EXPECT().Screen(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.ScreeningSubject) ([]models.ScreeningHit, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})

	start := time.Now()
	flags := svc.PerformComplianceScreening(s.ctx, "ver-screen")
	s.Empty(flags)
	s.Less(time.Since(start), time.Second)
}

func (s *ServiceSuite) TestPerformComplianceScreening_CircuitOpens() {
	s.store.EXPECT().GetVerificationByID(gomock.Any(), "ver-screen").Return(screeningVerification(), nil).Times(6)
	s.screening.EXPECT().Screen(gomock.Any(), gomock.Any()).Return(nil, errors.New("down")).Times(5)

	for range 5 {
		s.Empty(s.service.PerformComplianceScreening(s.ctx, "ver-screen"))
	}
	s.True(s.service.breaker.IsOpen())

	// open breaker short-circuits without calling the provider
	s.Empty(s.service.PerformComplianceScreening(s.ctx, "ver-screen"))
}

func (s *ServiceSuite) TestPerformComplianceScreening_NoProvider() {
	svc := New(s.store)
	s.Empty(svc.PerformComplianceScreening(s.ctx, "ver-screen"))
}

func (s *ServiceSuite) TestWatchlistProvider() {
	p := NewWatchlistProvider([]WatchlistEntry{
		{Name: "Ivan Petrov", List: "sanctions", Source: "OFAC"},
		{Name: "Globex Shell Corp", List: "watchlist", Source: "internal"},
	})

	hits, err := p.Screen(context.Background(), models.ScreeningSubject{FullName: "ivan PETROV", BusinessName: "Initech"})
	s.Require().NoError(err)
	s.Require().Len(hits, 1)
	s.Equal(1.0, hits[0].MatchScore)
	s.Equal("OFAC", hits[0].Source)

	hits, err = p.Screen(context.Background(), models.ScreeningSubject{FullName: "Ivan Ivanov"})
	s.Require().NoError(err)
	s.Empty(hits, "one shared token out of three is below threshold")

	s.InDelta(2.0/3.0, tokenOverlap("globex shell", "Globex Shell Corp"), 1e-9)
}
