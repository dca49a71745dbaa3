package recordstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"riskgate/pkg/domain"
	"riskgate/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) TestVerificationLookup() {
	s.store.PutAccount(AccountRecord{UserID: "u1", Email: "a@example.com", CreatedAt: s.now.Add(-48 * time.Hour)})
	s.store.PutVerification(VerificationRecord{
		ID:          "v1",
		UserID:      "u1",
		Status:      VerificationPending,
		SubmittedAt: s.now,
		Documents: []DocumentRecord{
			{ID: "d1", FileHash: "h1", ExtractedFields: map[string]string{"name": "Ann"}},
		},
	})

	s.Run("fills account from accounts table", func() {
		v, err := s.store.GetVerificationByID(s.ctx, "v1")
		s.Require().NoError(err)
		s.Require().NotNil(v.Account)
		s.Equal("a@example.com", v.Account.Email)
	})

	s.Run("returns copies", func() {
		v, err := s.store.GetVerificationByID(s.ctx, "v1")
		s.Require().NoError(err)
		v.Documents[0].ExtractedFields["name"] = "Mallory"

		again, err := s.store.GetVerificationByID(s.ctx, "v1")
		s.Require().NoError(err)
		s.Equal("Ann", again.Documents[0].ExtractedFields["name"])
	})

	s.Run("missing verification", func() {
		_, err := s.store.GetVerificationByID(s.ctx, "nope")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestFindDocumentsByHashExcludesCurrent() {
	s.store.PutVerification(VerificationRecord{ID: "v1", UserID: "u1", Documents: []DocumentRecord{{ID: "d1", FileHash: "shared"}}})
	s.store.PutVerification(VerificationRecord{ID: "v2", UserID: "u2", Documents: []DocumentRecord{{ID: "d2", FileHash: "shared"}}})
	s.store.PutVerification(VerificationRecord{ID: "v3", UserID: "u3", Documents: []DocumentRecord{{ID: "d3", FileHash: "other"}}})

	refs, err := s.store.FindDocumentsByHash(s.ctx, "shared", "v1")
	s.Require().NoError(err)
	s.Equal([]DocumentRef{{DocumentID: "d2", VerificationID: "v2", UserID: "u2"}}, refs)
}

func (s *InMemoryStoreSuite) TestCountRecentVerifications() {
	for i, age := range []time.Duration{time.Hour, 5 * time.Hour, 30 * time.Hour} {
		s.store.PutVerification(VerificationRecord{ID: string(rune('a' + i)), UserID: "u1", SubmittedAt: s.now.Add(-age)})
	}
	n, err := s.store.CountRecentVerifications(s.ctx, "u1", s.now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *InMemoryStoreSuite) TestRecentSessionsNewestFirstWithLimit() {
	for i := range 5 {
		s.store.AddSession(SessionRecord{
			UserID:    "u1",
			DeviceID:  "dev",
			CreatedAt: s.now.Add(-time.Duration(i) * time.Hour),
			Location:  &domain.GeoLocation{Latitude: float64(i)},
		})
	}
	s.store.AddSession(SessionRecord{UserID: "u1", DeviceID: "other", CreatedAt: s.now})

	got, err := s.store.GetRecentSessions(s.ctx, "u1", "dev", s.now.Add(-3*time.Hour-time.Minute), 3)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(s.now, got[0].CreatedAt)
	s.Equal(s.now.Add(-2*time.Hour), got[2].CreatedAt)

	all, err := s.store.GetRecentSessions(s.ctx, "u1", "", s.now.Add(-time.Minute), 0)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *InMemoryStoreSuite) TestDeviceTrustLastWriteWins() {
	first := DeviceTrustRecord{UserID: "u1", DeviceID: "d1", TrustScore: 0.4, FirstSeen: s.now, UpdatedAt: s.now}
	newer := DeviceTrustRecord{UserID: "u1", DeviceID: "d1", TrustScore: 0.9, FirstSeen: s.now.Add(time.Hour), UpdatedAt: s.now.Add(time.Hour)}
	stale := DeviceTrustRecord{UserID: "u1", DeviceID: "d1", TrustScore: 0.1, UpdatedAt: s.now.Add(30 * time.Minute)}

	s.Require().NoError(s.store.UpsertDeviceTrustRecord(s.ctx, first))
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(s.ctx, newer))
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(s.ctx, stale))

	got, err := s.store.GetDeviceTrustRecord(s.ctx, "u1", "d1")
	s.Require().NoError(err)
	s.Equal(0.9, got.TrustScore)
	s.Equal(s.now, got.FirstSeen)
}

func (s *InMemoryStoreSuite) TestTrustedDeviceExpiry() {
	rec := TrustedDeviceRecord{UserID: "u1", DeviceID: "d1", TrustedAt: s.now, ExpiresAt: s.now.Add(30 * 24 * time.Hour)}
	s.Require().NoError(s.store.UpsertTrustedDevice(s.ctx, rec))

	got, err := s.store.GetTrustedDevice(s.ctx, "u1", "d1")
	s.Require().NoError(err)
	s.True(got.ActiveAt(s.now.Add(24 * time.Hour)))
	s.False(got.ActiveAt(s.now.Add(31 * 24 * time.Hour)))

	_, err = s.store.GetTrustedDevice(s.ctx, "u1", "unknown")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestMFAData() {
	s.store.RecordMFAAttempt("u1", "d1", true, s.now.Add(-time.Hour))
	s.store.RecordMFAAttempt("u1", "d1", false, s.now.Add(-2*time.Hour))
	s.store.RecordMFAAttempt("u1", "d2", true, s.now.Add(-time.Hour))
	s.store.RecordMFAAttempt("u1", "d1", true, s.now.Add(-40*24*time.Hour))

	stats, err := s.store.GetMFAVerificationAttempts(s.ctx, "u1", "d1", s.now.Add(-30*24*time.Hour))
	s.Require().NoError(err)
	s.Equal(MFAAttemptStats{Total: 2, Successful: 1}, stats)

	s.store.PutBypassGrant(BypassGrant{UserID: "u1", Kind: BypassAdminOverride, ExpiresAt: s.now.Add(time.Hour)})
	s.store.PutBypassGrant(BypassGrant{UserID: "u1", Kind: BypassEmergencyAccess, ExpiresAt: s.now.Add(-time.Hour)})
	grants, err := s.store.GetActiveBypassGrants(s.ctx, "u1", s.now)
	s.Require().NoError(err)
	s.Require().Len(grants, 1)
	s.Equal(BypassAdminOverride, grants[0].Kind)

	_, err = s.store.GetAccountCreationDate(s.ctx, "ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func TestParseClosedSets(t *testing.T) {
	_, err := ParseVerificationStatus("archived")
	require.Error(t, err)
	_, err = ParseDocumentValidation("unknown")
	require.Error(t, err)
	bs, err := ParseBusinessStatus("verified")
	require.NoError(t, err)
	require.Equal(t, BusinessVerified, bs)
}
