package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"riskgate/internal/device/models"
	"riskgate/internal/device/ports/mocks"
	"riskgate/internal/recordstore"
	dErrors "riskgate/pkg/domain-errors"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/platform/sentinel"
	"riskgate/pkg/requestcontext"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

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

func (e *recordingEmitter) count(action audit.AuditEvent) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.Action == string(action) {
			n++
		}
	}
	return n
}

type ServiceSuite struct {
	suite.Suite
	store   *recordstore.InMemoryStore
	auditor *recordingEmitter
	service *Service
	ctx     context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.store = recordstore.NewInMemoryStore()
	s.auditor = &recordingEmitter{}
	s.service = New(s.store, WithAuditor(s.auditor))
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// seedHabits records five daily logins from Berlin at the current hour and
// four successful MFA checks on the device.
func (s *ServiceSuite) seedHabits(userID, deviceID string) {
	for d := 1; d <= 5; d++ {
		loc := berlin
		s.store.AddSession(recordstore.SessionRecord{
			UserID:    userID,
			DeviceID:  deviceID,
			Location:  &loc,
			CreatedAt: fixedNow.AddDate(0, 0, -d),
		})
	}
	for d := 1; d <= 4; d++ {
		s.store.RecordMFAAttempt(userID, deviceID, true, fixedNow.AddDate(0, 0, -d))
	}
}

func (s *ServiceSuite) TestRegisterDevice() {
	s.Run("first contact is low trust and not remembered", func() {
		result, err := s.service.RegisterDevice(s.ctx, "user-1", testFingerprint(), models.DeviceContext{
			IPAddress: "203.0.113.7",
			UserAgent: chromeOnWindows,
		})
		s.Require().NoError(err)

		s.True(result.IsNewDevice)
		s.Equal(DeriveDeviceID(testFingerprint()), result.DeviceID)
		s.Contains(result.DisplayName, "Chrome")
		s.Equal(models.TrustLow, result.Trust.TrustLevel)
		s.True(result.Trust.RequiresMFA)
		s.False(result.Trust.CanRemember)
		s.Nil(result.TrustedUntil)

		record, err := s.store.GetDeviceTrustRecord(s.ctx, "user-1", result.DeviceID)
		s.Require().NoError(err)
		s.Equal(fixedNow, record.FirstSeen)
		s.Equal(string(models.TrustLow), record.TrustLevel)

		_, err = s.store.GetTrustedDevice(s.ctx, "user-1", result.DeviceID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Equal(1, s.auditor.count(audit.EventDeviceRegistered))
	})

	s.Run("malformed fingerprint is a validation error", func() {
		fp := testFingerprint()
		fp.TimezoneOffset = 900
		_, err := s.service.RegisterDevice(s.ctx, "user-1", fp, models.DeviceContext{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing user", func() {
		_, err := s.service.RegisterDevice(s.ctx, " ", testFingerprint(), models.DeviceContext{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestRegisterDevice_ReturningDeviceEarnsTrust() {
	fp := testFingerprint()
	deviceID := DeriveDeviceID(fp)
	s.seedHabits("user-2", deviceID)
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(s.ctx, recordstore.DeviceTrustRecord{
		UserID:      "user-2",
		DeviceID:    deviceID,
		Fingerprint: fp,
		Behavior:    &recordstore.BehaviorProfile{Samples: 5, TypingMeanMs: 180, TypingM2: 1600, MouseMean: 2, MouseM2: 0.16},
		TrustScore:  0.55,
		TrustLevel:  string(models.TrustLow),
		FirstSeen:   fixedNow.AddDate(0, -2, 0),
		UpdatedAt:   fixedNow.AddDate(0, 0, -1),
	}))

	loc := berlin
	result, err := s.service.RegisterDevice(s.ctx, "user-2", fp, models.DeviceContext{
		UserAgent: chromeOnWindows,
		Location:  &loc,
		Behavior:  &models.BehaviorSample{TypingIntervalMs: 180, MouseVelocity: 2},
	})
	s.Require().NoError(err)

	s.False(result.IsNewDevice)
	// (0.25 + 0.2 + 0.15 + 0.15*0.8 + 0.1 + 0.1) / 0.95
	s.InDelta(0.9684, result.Trust.TrustScore, 1e-9)
	s.Equal(models.TrustVerified, result.Trust.TrustLevel)
	s.False(result.Trust.RequiresMFA)
	s.True(result.Trust.CanRemember)
	s.Empty(result.Trust.RiskFactors)
	s.Require().NotNil(result.TrustedUntil)
	s.Equal(fixedNow.Add(defaultTrustedTTL), *result.TrustedUntil)

	record, err := s.store.GetDeviceTrustRecord(s.ctx, "user-2", deviceID)
	s.Require().NoError(err)
	s.Equal(fixedNow.AddDate(0, -2, 0), record.FirstSeen)
	s.Equal(6, record.Behavior.Samples)

	status := s.service.GetDeviceTrustStatus(s.ctx, "user-2", deviceID)
	s.True(status.IsTrusted)
	s.Equal(models.TrustVerified, status.TrustLevel)
	s.False(status.RequiresMFA)
}

func (s *ServiceSuite) TestCalculateTrustScore_Deterministic() {
	fp := testFingerprint()
	s.seedHabits("user-3", "dev-3")
	existing := &recordstore.DeviceTrustRecord{UserID: "user-3", DeviceID: "dev-3", Fingerprint: fp}
	loc := paris
	dc := models.DeviceContext{Location: &loc, Network: models.NetworkInfo{VPN: true}}

	first := s.service.CalculateTrustScore(s.ctx, "user-3", "dev-3", fp, dc, existing)
	second := s.service.CalculateTrustScore(s.ctx, "user-3", "dev-3", fp, dc, existing)
	s.Equal(first, second)
	s.Equal([]string{"vpn_detected", "new_region"}, first.RiskFactors)
}

func (s *ServiceSuite) TestGetDeviceTrustStatus_Unknown() {
	status := s.service.GetDeviceTrustStatus(s.ctx, "nobody", "nothing")
	s.Equal(models.UntrustedStatus(), status)
	s.Equal(models.UntrustedStatus(), s.service.GetDeviceTrustStatus(s.ctx, "", ""))
}

func (s *ServiceSuite) TestGetDeviceTrustStatus_ExpiredTrust() {
	s.Require().NoError(s.store.UpsertDeviceTrustRecord(s.ctx, recordstore.DeviceTrustRecord{
		UserID: "u", DeviceID: "d", TrustScore: 0.85, TrustLevel: string(models.TrustHigh), UpdatedAt: fixedNow,
	}))
	s.Require().NoError(s.store.UpsertTrustedDevice(s.ctx, recordstore.TrustedDeviceRecord{
		UserID: "u", DeviceID: "d", TrustScore: 0.85, TrustedAt: fixedNow.AddDate(0, 0, -31), ExpiresAt: fixedNow.AddDate(0, 0, -1),
	}))

	status := s.service.GetDeviceTrustStatus(s.ctx, "u", "d")
	s.False(status.IsTrusted)
	s.Equal(models.TrustHigh, status.TrustLevel)
	s.False(status.RequiresMFA)
	s.NotNil(status.RiskFactors)
}

// MockedSuite covers store and cache failure paths.
type MockedSuite struct {
	suite.Suite
	store   *mocks.MockStore
	cache   *mocks.MockTrustCache
	service *Service
	ctx     context.Context
}

func (s *MockedSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = mocks.NewMockStore(ctrl)
	s.cache = mocks.NewMockTrustCache(ctrl)
	s.service = New(s.store, WithTrustCache(s.cache))
	s.ctx = requestcontext.WithTime(context.Background(), fixedNow)
}

func TestMockedSuite(t *testing.T) {
	suite.Run(t, new(MockedSuite))
}

func (s *MockedSuite) TestHistoryFailuresDegradeToNeutral() {
	s.store.EXPECT().GetRecentSessions(gomock.Any(), "u", "", gomock.Any(), gomock.Any()).
		Return(nil, sentinel.ErrUnavailable).Times(2)
	s.store.EXPECT().GetMFAVerificationAttempts(gomock.Any(), "u", "d", gomock.Any()).
		Return(recordstore.MFAAttemptStats{}, errors.New("timeout"))
	s.store.EXPECT().UpsertDeviceTrustRecord(gomock.Any(), gomock.Any()).Return(nil)
	s.cache.EXPECT().Invalidate(gomock.Any(), "u", "d").Return(nil)

	loc := tokyo
	res := s.service.CalculateTrustScore(s.ctx, "u", "d", testFingerprint(), models.DeviceContext{Location: &loc}, nil)
	s.Equal(neutralTrust, res.Analysis.Geographic)
	s.Equal(neutralTrust, res.Analysis.Temporal)
	s.Equal(neutralTrust, res.Analysis.SuccessRate)
	s.InDelta(0.5474, res.TrustScore, 1e-9)
}

func (s *MockedSuite) TestTrustedUpsertFollowsTrustRecord() {
	fp := testFingerprint()
	existing := &recordstore.DeviceTrustRecord{
		Fingerprint: fp,
		Behavior:    &recordstore.BehaviorProfile{Samples: 5, TypingMeanMs: 180, TypingM2: 1600, MouseMean: 2, MouseM2: 0.16},
	}
	dc := models.DeviceContext{Behavior: &models.BehaviorSample{TypingIntervalMs: 180, MouseVelocity: 2}}
	s.store.EXPECT().GetRecentSessions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	s.store.EXPECT().GetMFAVerificationAttempts(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(recordstore.MFAAttemptStats{Total: 5, Successful: 5}, nil)

	s.Run("trust record first, then trusted device", func() {
		gomock.InOrder(
			s.store.EXPECT().UpsertDeviceTrustRecord(gomock.Any(), gomock.Any()).Return(nil),
			s.cache.EXPECT().Invalidate(gomock.Any(), "u", "d").Return(nil),
			s.store.EXPECT().UpsertTrustedDevice(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, r recordstore.TrustedDeviceRecord) error {
					s.Equal(fixedNow.Add(defaultTrustedTTL), r.ExpiresAt)
					return nil
				}),
		)
		res := s.service.CalculateTrustScore(s.ctx, "u", "d", fp, dc, existing)
		s.True(res.CanRemember)
	})

	s.Run("failed trust write skips the trusted device", func() {
		s.store.EXPECT().GetRecentSessions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
		s.store.EXPECT().GetMFAVerificationAttempts(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(recordstore.MFAAttemptStats{Total: 5, Successful: 5}, nil)
		s.store.EXPECT().UpsertDeviceTrustRecord(gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)

		res := s.service.CalculateTrustScore(s.ctx, "u", "d", fp, dc, existing)
		s.True(res.CanRemember)
	})
}

func (s *MockedSuite) TestGetDeviceTrustStatus_Cache() {
	s.Run("hit skips the store", func() {
		cached := models.DeviceTrustStatus{IsTrusted: true, TrustLevel: models.TrustHigh, TrustScore: 0.9, RiskFactors: []string{}}
		s.cache.EXPECT().Get(gomock.Any(), "u", "d").Return(&cached, nil)
		s.Equal(cached, s.service.GetDeviceTrustStatus(s.ctx, "u", "d"))
	})

	s.Run("cache error falls back to the store", func() {
		s.cache.EXPECT().Get(gomock.Any(), "u", "d").Return(nil, errors.New("redis down"))
		s.store.EXPECT().GetDeviceTrustRecord(gomock.Any(), "u", "d").
			Return(&recordstore.DeviceTrustRecord{TrustScore: 0.7, TrustLevel: "medium"}, nil)
		s.store.EXPECT().GetTrustedDevice(gomock.Any(), "u", "d").Return(nil, sentinel.ErrNotFound)
		s.cache.EXPECT().Set(gomock.Any(), "u", "d", gomock.Any(), time.Duration(0)).Return(errors.New("redis down"))

		status := s.service.GetDeviceTrustStatus(s.ctx, "u", "d")
		s.Equal(models.TrustMedium, status.TrustLevel)
		s.True(status.RequiresMFA)
		s.False(status.IsTrusted)
	})

	s.Run("trusted status is cached no longer than the trust lasts", func() {
		expires := fixedNow.Add(90 * time.Second)
		s.cache.EXPECT().Get(gomock.Any(), "u", "d").Return(nil, nil)
		s.store.EXPECT().GetDeviceTrustRecord(gomock.Any(), "u", "d").
			Return(&recordstore.DeviceTrustRecord{TrustScore: 0.9, TrustLevel: "high"}, nil)
		s.store.EXPECT().GetTrustedDevice(gomock.Any(), "u", "d").
			Return(&recordstore.TrustedDeviceRecord{UserID: "u", DeviceID: "d", TrustScore: 0.9, ExpiresAt: expires}, nil)
		s.cache.EXPECT().Set(gomock.Any(), "u", "d", gomock.Any(), 90*time.Second).Return(nil)

		status := s.service.GetDeviceTrustStatus(s.ctx, "u", "d")
		s.True(status.IsTrusted)
		s.Equal(models.TrustHigh, status.TrustLevel)
	})

	s.Run("store failure is untrusted and not cached", func() {
		s.cache.EXPECT().Get(gomock.Any(), "u", "d").Return(nil, nil)
		s.store.EXPECT().GetDeviceTrustRecord(gomock.Any(), "u", "d").Return(nil, sentinel.ErrUnavailable)

		s.Equal(models.UntrustedStatus(), s.service.GetDeviceTrustStatus(s.ctx, "u", "d"))
	})
}
