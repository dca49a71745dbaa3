//go:build integration

package recordstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"riskgate/internal/recordstore"
	"riskgate/pkg/platform/sentinel"
	"riskgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *recordstore.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = recordstore.NewPostgresStore(s.postgres.DB)
	s.now = time.Now().UTC().Truncate(time.Second)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"sessions", "mfa_attempts", "device_trust", "trusted_devices",
	))
}

func (s *PostgresStoreSuite) exec(query string, args ...any) {
	_, err := s.postgres.DB.ExecContext(context.Background(), query, args...)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestRecentSessionsNewestFirst() {
	ctx := context.Background()
	for i, city := range []string{"Berlin", "Paris", "Rome"} {
		s.exec(`INSERT INTO sessions (user_id, device_id, latitude, longitude, country, city, created_at)
			VALUES ('u', 'd', 50, 10, 'XX', $1, $2)`, city, s.now.Add(-time.Duration(i)*time.Hour))
	}
	s.exec(`INSERT INTO sessions (user_id, device_id, created_at) VALUES ('u', 'other', $1)`, s.now.Add(-30*time.Minute))

	sessions, err := s.store.GetRecentSessions(ctx, "u", "d", s.now.Add(-90*time.Minute), 10)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal("Berlin", sessions[0].Location.City)
	s.Equal("Paris", sessions[1].Location.City)

	all, err := s.store.GetRecentSessions(ctx, "u", "", s.now.Add(-24*time.Hour), 2)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Nil(all[1].Location, "session without coordinates has no location")
}

func (s *PostgresStoreSuite) TestMFAAttempts() {
	ctx := context.Background()
	s.exec(`INSERT INTO mfa_attempts (user_id, device_id, success, attempted_at) VALUES
		('u', 'd', true, $1), ('u', 'd', false, $1), ('u', 'x', true, $1), ('u', 'd', true, $2)`,
		s.now, s.now.AddDate(0, -2, 0))

	stats, err := s.store.GetMFAVerificationAttempts(ctx, "u", "d", s.now.AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Equal(recordstore.MFAAttemptStats{Total: 2, Successful: 1}, stats)

	stats, err = s.store.GetMFAVerificationAttempts(ctx, "u", "", s.now.AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Equal(3, stats.Total)
}

func (s *PostgresStoreSuite) TestDeviceTrustUpsert() {
	ctx := context.Background()

	_, err := s.store.GetDeviceTrustRecord(ctx, "u", "d")
	s.ErrorIs(err, sentinel.ErrNotFound)

	first := recordstore.DeviceTrustRecord{
		UserID:      "u",
		DeviceID:    "d",
		Fingerprint: recordstore.DeviceFingerprint{CanvasHash: "c", ScreenWidth: 1, ScreenHeight: 1},
		TrustScore:  0.55,
		TrustLevel:  "medium",
		FirstSeen:   s.now.Add(-time.Hour),
		LastSeen:    s.now.Add(-time.Hour),
		UpdatedAt:   s.now.Add(-time.Hour),
	}
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(ctx, first))

	second := first
	second.TrustScore = 0.9
	second.TrustLevel = "high"
	second.Behavior = &recordstore.BehaviorProfile{Samples: 1, TypingMeanMs: 150}
	second.RiskFactors = []string{"vpn_detected"}
	second.FirstSeen = s.now
	second.UpdatedAt = s.now
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(ctx, second))

	stale := first
	stale.TrustScore = 0.1
	stale.UpdatedAt = s.now.Add(-2 * time.Hour)
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(ctx, stale))

	got, err := s.store.GetDeviceTrustRecord(ctx, "u", "d")
	s.Require().NoError(err)
	s.Equal(0.9, got.TrustScore)
	s.Equal([]string{"vpn_detected"}, got.RiskFactors)
	s.True(got.FirstSeen.Equal(first.FirstSeen), "first_seen survives updates")
	s.Require().NotNil(got.Behavior)
	s.Equal(150.0, got.Behavior.TypingMeanMs)
}

func (s *PostgresStoreSuite) TestTrustedDevice() {
	ctx := context.Background()
	rec := recordstore.TrustedDeviceRecord{
		UserID: "u", DeviceID: "d", TrustScore: 0.8, TrustedAt: s.now, ExpiresAt: s.now.Add(24 * time.Hour),
	}
	s.Require().NoError(s.store.UpsertTrustedDevice(ctx, rec))

	got, err := s.store.GetTrustedDevice(ctx, "u", "d")
	s.Require().NoError(err)
	s.True(got.ActiveAt(s.now))
	s.False(got.ActiveAt(s.now.Add(25 * time.Hour)))
}
