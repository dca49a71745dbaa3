package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	devicemodels "riskgate/internal/device/models"
	"riskgate/internal/mfa/models"
	"riskgate/internal/mfa/ports/mocks"
	"riskgate/internal/mfa/recovery"
	"riskgate/internal/recordstore"
	audit "riskgate/pkg/platform/audit"
	"riskgate/pkg/requestcontext"
)

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

func (e *recordingEmitter) last(action audit.AuditEvent) *audit.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.events) - 1; i >= 0; i-- {
		if e.events[i].Action == string(action) {
			ev := e.events[i]
			return &ev
		}
	}
	return nil
}

var trustedDevice = devicemodels.DeviceTrustStatus{
	IsTrusted:   true,
	TrustLevel:  devicemodels.TrustHigh,
	TrustScore:  0.9,
	RiskFactors: []string{},
}

type ServiceSuite struct {
	suite.Suite
	store   *recordstore.InMemoryStore
	devices *mocks.MockDeviceTrust
	tokens  *recovery.TokenService
	auditor *recordingEmitter
	service *Service
	ctx     context.Context
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = recordstore.NewInMemoryStore()
	s.devices = mocks.NewMockDeviceTrust(ctrl)
	s.tokens = recovery.NewTokenService("test-signing-key", 0)
	s.auditor = &recordingEmitter{}
	s.service = New(s.store,
		WithDeviceTrust(s.devices),
		WithRecoveryVerifier(s.tokens),
		WithAuditor(s.auditor),
	)
	s.ctx = requestcontext.WithTime(context.Background(), now)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// quietLogin is a routine login from a trusted device.
func quietLogin(userID string) models.MFAEnforcementContext {
	return models.MFAEnforcementContext{
		UserID:           userID,
		SessionID:        "sess-1",
		DeviceID:         "dev-1",
		RiskScore:        10,
		DeviceTrustScore: 0.9,
	}
}

func (s *ServiceSuite) trustDevice(status devicemodels.DeviceTrustStatus) {
	s.devices.EXPECT().GetDeviceTrustStatus(gomock.Any(), gomock.Any(), "dev-1").Return(status).AnyTimes()
}

func (s *ServiceSuite) TestSuperAdminWithoutEnrollment() {
	s.trustDevice(trustedDevice)
	s.store.PutRoles("root", models.RoleSuperAdmin)
	s.store.PutAccount(recordstore.AccountRecord{UserID: "root", CreatedAt: now.Add(-time.Hour)})

	result := s.service.CheckMFARequirement(s.ctx, quietLogin("root"))

	s.True(result.Required)
	s.Equal(models.ReasonRoleRequirement, result.Reason)
	s.Equal([]string{models.MethodWebAuthn, models.MethodTOTP}, result.Methods)
	s.Nil(result.GracePeriodExpires)
	s.False(result.BypassAvailable)

	event := s.auditor.last(audit.EventMFAEnforcement)
	s.Require().NotNil(event)
	s.Equal("required", event.Decision)
	s.Equal(models.ReasonRoleRequirement, event.Reason)
}

func (s *ServiceSuite) TestRoleFromRequestCounts() {
	s.trustDevice(trustedDevice)
	mctx := quietLogin("u")
	mctx.UserRoles = []string{" Super_Admin "}

	s.True(s.service.CheckMFARequirement(s.ctx, mctx).Required)
}

func (s *ServiceSuite) TestBusinessOwnerGracePeriod() {
	s.trustDevice(trustedDevice)
	created := now.AddDate(0, 0, -10)
	s.store.PutRoles("owner", models.RoleBusinessOwner, models.RoleUser)
	s.store.PutAccount(recordstore.AccountRecord{UserID: "owner", CreatedAt: created})

	s.Run("suspended while in grace", func() {
		result := s.service.CheckMFARequirement(s.ctx, quietLogin("owner"))
		s.False(result.Required)
		s.Equal(models.ReasonGracePeriod, result.Reason)
		s.Require().NotNil(result.GracePeriodExpires)
		s.Equal(created.Add(30*24*time.Hour), *result.GracePeriodExpires)
	})

	s.Run("enforced once enrolled", func() {
		s.store.PutEnrollment("owner", recordstore.MFAEnrollment{Enabled: true, Methods: []string{models.MethodTOTP}})
		result := s.service.CheckMFARequirement(s.ctx, quietLogin("owner"))
		s.True(result.Required)
		s.Nil(result.GracePeriodExpires)
	})

	s.Run("enforced after grace", func() {
		s.store.PutEnrollment("owner", recordstore.MFAEnrollment{})
		later := requestcontext.WithTime(context.Background(), created.AddDate(0, 0, 31))
		s.True(s.service.CheckMFARequirement(later, quietLogin("owner")).Required)
	})
}

func (s *ServiceSuite) TestPlainUserQuietLogin() {
	s.trustDevice(trustedDevice)
	result := s.service.CheckMFARequirement(s.ctx, quietLogin("user-1"))

	s.False(result.Required)
	s.Equal(models.ReasonNotRequired, result.Reason)
	s.Empty(result.Methods)
	s.Len(result.Policies, 4)
}

func (s *ServiceSuite) TestDevicePolicy() {
	s.Run("missing device id forces mfa", func() {
		mctx := quietLogin("user-1")
		mctx.DeviceID = ""
		result := s.service.CheckMFARequirement(s.ctx, mctx)
		s.True(result.Required)
		s.Equal(models.ReasonMissingDevice, result.Reason)
	})

	s.Run("device engine requires mfa", func() {
		s.devices.EXPECT().GetDeviceTrustStatus(gomock.Any(), "user-1", "dev-1").Return(devicemodels.UntrustedStatus())
		result := s.service.CheckMFARequirement(s.ctx, quietLogin("user-1"))
		s.True(result.Required)
		s.Equal(models.ReasonUntrustedDevice, result.Reason)
	})
}

func (s *ServiceSuite) TestCombinedPolicies() {
	s.trustDevice(trustedDevice)
	mctx := quietLogin("user-1")
	mctx.Action = "password_change"
	mctx.IsNewLocation = true

	result := s.service.CheckMFARequirement(s.ctx, mctx)
	s.True(result.Required)
	s.Equal("sensitive_action,elevated_risk", result.Reason)
	s.Equal(300, result.FreshnessSeconds)
	s.Equal([]string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS, models.MethodEmail}, result.Methods)
}

func (s *ServiceSuite) TestBypass() {
	s.trustDevice(trustedDevice)
	s.store.PutRoles("root", models.RoleSuperAdmin)

	s.Run("emergency access grant", func() {
		s.store.PutBypassGrant(recordstore.BypassGrant{
			UserID: "root", Kind: recordstore.BypassEmergencyAccess, GrantedBy: "oncall", ExpiresAt: now.Add(time.Hour),
		})
		result := s.service.CheckMFARequirement(s.ctx, quietLogin("root"))
		s.False(result.Required)
		s.True(result.BypassAvailable)
		s.Equal("bypass:emergency_access", result.Reason)

		event := s.auditor.last(audit.EventMFABypassUsed)
		s.Require().NotNil(event)
		s.Equal("emergency_access", event.Decision)
	})

	s.Run("admin override wins over emergency access", func() {
		s.store.PutBypassGrant(recordstore.BypassGrant{
			UserID: "root", Kind: recordstore.BypassAdminOverride, GrantedBy: "admin-2", ExpiresAt: now.Add(time.Hour),
		})
		s.Equal("bypass:admin_override", s.service.CheckMFARequirement(s.ctx, quietLogin("root")).Reason)
	})
}

func (s *ServiceSuite) TestRecoveryTokenBypass() {
	s.trustDevice(trustedDevice)
	s.store.PutRoles("root", models.RoleSuperAdmin)

	s.Run("recent recovery", func() {
		token, err := s.tokens.Issue("root", now.Add(-10*time.Minute))
		s.Require().NoError(err)
		mctx := quietLogin("root")
		mctx.RecoveryToken = token

		result := s.service.CheckMFARequirement(s.ctx, mctx)
		s.False(result.Required)
		s.Equal("bypass:recovery_completed", result.Reason)
	})

	s.Run("stale recovery", func() {
		token, err := s.tokens.Issue("root", now.Add(-20*time.Minute))
		s.Require().NoError(err)
		mctx := quietLogin("root")
		mctx.RecoveryToken = token

		s.True(s.service.CheckMFARequirement(s.ctx, mctx).Required)
	})

	s.Run("token for someone else", func() {
		token, err := s.tokens.Issue("intruder", now)
		s.Require().NoError(err)
		mctx := quietLogin("root")
		mctx.RecoveryToken = token

		s.True(s.service.CheckMFARequirement(s.ctx, mctx).Required)
	})
}

func (s *ServiceSuite) TestMissingUserFailsSecure() {
	result := s.service.CheckMFARequirement(s.ctx, models.MFAEnforcementContext{})
	s.Equal(models.FailSecure(), result)
}

// FailureSuite drives store failures through mocks.
type FailureSuite struct {
	suite.Suite
	store   *mocks.MockStore
	service *Service
	ctx     context.Context
}

func (s *FailureSuite) SetupTest() {
	s.store = mocks.NewMockStore(gomock.NewController(s.T()))
	s.service = New(s.store)
	s.ctx = requestcontext.WithTime(context.Background(), now)
}

func TestFailureSuite(t *testing.T) {
	suite.Run(t, new(FailureSuite))
}

func (s *FailureSuite) TestRoleLookupFailureFailsSecure() {
	s.store.EXPECT().GetUserRoles(gomock.Any(), "u").Return(nil, errors.New("connection reset"))

	result := s.service.CheckMFARequirement(s.ctx, quietLogin("u"))
	s.True(result.Required)
	s.Equal(models.ReasonPolicyFailed, result.Reason)
	s.Equal(models.AllMethods(), result.Methods)
}

func (s *FailureSuite) TestAccountLookupFailureFailsSecure() {
	s.store.EXPECT().GetUserRoles(gomock.Any(), "u").Return([]string{models.RoleAdmin}, nil)
	s.store.EXPECT().GetMFAEnrollment(gomock.Any(), "u").Return(recordstore.MFAEnrollment{}, nil)
	s.store.EXPECT().GetAccountCreationDate(gomock.Any(), "u").Return(time.Time{}, errors.New("timeout"))

	s.Equal(models.FailSecure(), s.service.CheckMFARequirement(s.ctx, quietLogin("u")))
}

func (s *FailureSuite) TestBypassLookupFailureKeepsEnforcement() {
	s.store.EXPECT().GetUserRoles(gomock.Any(), "u").Return([]string{models.RoleSuperAdmin}, nil)
	s.store.EXPECT().GetActiveBypassGrants(gomock.Any(), "u", now).Return(nil, errors.New("timeout"))

	result := s.service.CheckMFARequirement(s.ctx, quietLogin("u"))
	s.True(result.Required)
	s.Equal(models.ReasonRoleRequirement, result.Reason)
}

func (s *FailureSuite) TestWithoutDeviceEngineUsesRequestScore() {
	s.store.EXPECT().GetUserRoles(gomock.Any(), "u").Return(nil, nil).Times(2)

	mctx := quietLogin("u")
	s.False(s.service.CheckMFARequirement(s.ctx, mctx).Required)

	s.store.EXPECT().GetActiveBypassGrants(gomock.Any(), "u", now).Return(nil, nil)
	mctx.DeviceTrustScore = 0.7
	result := s.service.CheckMFARequirement(s.ctx, mctx)
	s.True(result.Required)
	s.Equal(models.ReasonUntrustedDevice, result.Reason)
}
