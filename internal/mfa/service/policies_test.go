package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"riskgate/internal/mfa/models"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestHighestRole(t *testing.T) {
	assert.Equal(t, models.RoleSuperAdmin, highestRole([]string{"user", "super_admin", "admin"}))
	assert.Equal(t, models.RoleBusinessOwner, highestRole([]string{"business_member", "business_owner"}))
	assert.Equal(t, models.RoleUser, highestRole([]string{"auditor"}))
	assert.Equal(t, models.RoleUser, highestRole(nil))
}

func TestActionPolicy(t *testing.T) {
	recent := now.Add(-4 * time.Minute)
	stale := now.Add(-6 * time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name    string
		action  string
		last    *time.Time
		enforce bool
	}{
		{"no action", "", nil, false},
		{"unlisted action", "view_profile", nil, false},
		{"never verified", "password_change", nil, true},
		{"verified within window", "password_change", &recent, false},
		{"verified too long ago", "password_change", &stale, true},
		{"longer window still fresh", "data_export", &stale, false},
		{"verification in the future is not trusted", "password_change", &future, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := actionPolicy(models.MFAEnforcementContext{Action: tt.action, LastMFATime: tt.last}, now)
			assert.Equal(t, tt.enforce, d.Enforce)
			if tt.enforce {
				assert.Positive(t, d.FreshnessSeconds)
			}
		})
	}
	assert.Equal(t, 300, actionPolicy(models.MFAEnforcementContext{Action: "password_change"}, now).FreshnessSeconds)
}

func TestRiskPolicy(t *testing.T) {
	tests := []struct {
		name    string
		ctx     models.MFAEnforcementContext
		enforce bool
	}{
		{"quiet", models.MFAEnforcementContext{RiskScore: 20, DeviceTrustScore: 0.9}, false},
		{"new but trusted device", models.MFAEnforcementContext{IsNewDevice: true, DeviceTrustScore: 0.6}, false},
		{"new untrusted device", models.MFAEnforcementContext{IsNewDevice: true, DeviceTrustScore: 0.59}, true},
		{"new location", models.MFAEnforcementContext{IsNewLocation: true, DeviceTrustScore: 0.9}, true},
		{"risk at threshold", models.MFAEnforcementContext{RiskScore: 70, DeviceTrustScore: 0.9}, false},
		{"risk above threshold", models.MFAEnforcementContext{RiskScore: 70.5, DeviceTrustScore: 0.9}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.enforce, riskPolicy(tt.ctx).Enforce)
		})
	}
}

func TestConsolidate(t *testing.T) {
	t.Run("union of enforcing methods", func(t *testing.T) {
		result := consolidate([]models.PolicyDecision{
			{Policy: models.PolicyRole, Enforce: true, Methods: []string{models.MethodTOTP}, Reason: "a"},
			{Policy: models.PolicyAction, Enforce: true, Methods: []string{models.MethodSMS, models.MethodBackupCode}, Reason: "b"},
			{Policy: models.PolicyRisk, Methods: []string{models.MethodEmail}},
		})
		assert.True(t, result.Required)
		assert.ElementsMatch(t, []string{models.MethodTOTP, models.MethodSMS, models.MethodBackupCode}, result.Methods)
		assert.Equal(t, "a,b", result.Reason)
	})

	t.Run("strictest freshness and earliest grace", func(t *testing.T) {
		early, late := now.Add(time.Hour), now.Add(48*time.Hour)
		result := consolidate([]models.PolicyDecision{
			{Enforce: true, FreshnessSeconds: 900, Methods: []string{models.MethodTOTP}},
			{Enforce: true, FreshnessSeconds: 300, Methods: []string{models.MethodTOTP}, GracePeriodExpires: &late},
			{Enforce: true, Methods: []string{models.MethodTOTP}, GracePeriodExpires: &early},
		})
		assert.Equal(t, 300, result.FreshnessSeconds)
		assert.Equal(t, early, *result.GracePeriodExpires)
	})

	t.Run("suspended grace is not reported when another policy enforces", func(t *testing.T) {
		expires := now.Add(time.Hour)
		result := consolidate([]models.PolicyDecision{
			{Policy: models.PolicyRole, GracePeriodExpires: &expires, Reason: models.ReasonGracePeriod},
			{Policy: models.PolicyAction, Enforce: true, Methods: []string{models.MethodTOTP}, Reason: models.ReasonSensitiveAction},
		})
		assert.True(t, result.Required)
		assert.Nil(t, result.GracePeriodExpires)
		assert.Equal(t, models.ReasonSensitiveAction, result.Reason)
	})

	t.Run("nothing enforces", func(t *testing.T) {
		result := consolidate([]models.PolicyDecision{{}, {}})
		assert.False(t, result.Required)
		assert.Empty(t, result.Methods)
		assert.NotNil(t, result.Methods)
		assert.Equal(t, models.ReasonNotRequired, result.Reason)
	})

	t.Run("grace only", func(t *testing.T) {
		expires := now.Add(time.Hour)
		result := consolidate([]models.PolicyDecision{{GracePeriodExpires: &expires}})
		assert.False(t, result.Required)
		assert.Equal(t, models.ReasonGracePeriod, result.Reason)
		assert.Equal(t, expires, *result.GracePeriodExpires)
	})
}
