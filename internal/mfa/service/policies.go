package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	devicemodels "riskgate/internal/device/models"
	"riskgate/internal/mfa/models"
	"riskgate/pkg/platform/sentinel"
	strutil "riskgate/pkg/platform/strings"
)

type roleRequirement struct {
	required bool
	grace    time.Duration
	methods  []string
}

// roleOrder lists roles from most to least privileged.
var roleOrder = []string{
	models.RoleSuperAdmin,
	models.RoleAdmin,
	models.RoleComplianceOfficer,
	models.RoleBusinessOwner,
	models.RoleBusinessMember,
	models.RoleUser,
}

var roleRequirements = map[string]roleRequirement{
	models.RoleSuperAdmin:        {required: true, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	models.RoleAdmin:             {required: true, grace: 7 * 24 * time.Hour, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	models.RoleComplianceOfficer: {required: true, grace: 7 * 24 * time.Hour, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	models.RoleBusinessOwner:     {required: true, grace: 30 * 24 * time.Hour, methods: []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS}},
	models.RoleBusinessMember:    {},
	models.RoleUser:              {},
}

type actionRequirement struct {
	freshness time.Duration
	methods   []string
}

var actionRequirements = map[string]actionRequirement{
	"password_change":       {freshness: 5 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS}},
	"email_change":          {freshness: 5 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS}},
	"mfa_disable":           {freshness: 5 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	"account_deletion":      {freshness: 5 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	"role_change":           {freshness: 5 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	"payment_method_change": {freshness: 10 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS}},
	"api_key_create":        {freshness: 15 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP}},
	"data_export":           {freshness: 15 * time.Minute, methods: []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodEmail}},
}

const riskScoreThreshold = 70.0

var (
	riskMethods   = []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS, models.MethodEmail}
	deviceMethods = []string{models.MethodWebAuthn, models.MethodTOTP, models.MethodSMS}
)

// highestRole picks the most privileged known role. Unknown or missing roles
// count as a plain user.
func highestRole(roles []string) string {
	present := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		present[r] = struct{}{}
	}
	for _, r := range roleOrder {
		if _, ok := present[r]; ok {
			return r
		}
	}
	return models.RoleUser
}

// rolePolicy enforces the requirement of the user's highest role. Roles
// with a grace period are suspended until it ends, counted from account
// creation, unless MFA is already enabled.
func (s *Service) rolePolicy(ctx context.Context, mctx models.MFAEnforcementContext, now time.Time) (models.PolicyDecision, error) {
	decision := models.PolicyDecision{Policy: models.PolicyRole, Methods: []string{}}

	stored, err := s.store.GetUserRoles(ctx, mctx.UserID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return decision, fmt.Errorf("get user roles: %w", err)
	}
	role := highestRole(strutil.DedupeAndTrimLower(append(append([]string{}, mctx.UserRoles...), stored...)))
	req := roleRequirements[role]
	if !req.required {
		return decision, nil
	}

	if req.grace > 0 {
		enrollment, err := s.store.GetMFAEnrollment(ctx, mctx.UserID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return decision, fmt.Errorf("get mfa enrollment: %w", err)
		}
		if !enrollment.Enabled {
			created, err := s.store.GetAccountCreationDate(ctx, mctx.UserID)
			switch {
			case err == nil:
				expires := created.Add(req.grace)
				if now.Before(expires) {
					decision.GracePeriodExpires = &expires
					decision.Reason = models.ReasonGracePeriod
					return decision, nil
				}
			case !errors.Is(err, sentinel.ErrNotFound):
				return decision, fmt.Errorf("get account creation date: %w", err)
			}
			// unknown account age grants no grace
		}
	}

	decision.Enforce = true
	decision.Methods = req.methods
	decision.Reason = models.ReasonRoleRequirement
	return decision, nil
}

// actionPolicy enforces sensitive actions unless MFA was verified within the
// action's freshness window.
func actionPolicy(mctx models.MFAEnforcementContext, now time.Time) models.PolicyDecision {
	decision := models.PolicyDecision{Policy: models.PolicyAction, Methods: []string{}}
	req, ok := actionRequirements[mctx.Action]
	if !ok {
		return decision
	}
	if last := mctx.LastMFATime; last != nil && !last.After(now) && now.Sub(*last) <= req.freshness {
		return decision
	}
	decision.Enforce = true
	decision.Methods = req.methods
	decision.Reason = models.ReasonSensitiveAction
	decision.FreshnessSeconds = int(req.freshness / time.Second)
	return decision
}

func riskPolicy(mctx models.MFAEnforcementContext) models.PolicyDecision {
	decision := models.PolicyDecision{Policy: models.PolicyRisk, Methods: []string{}}
	untrustedNewDevice := mctx.IsNewDevice && mctx.DeviceTrustScore < devicemodels.MediumTrustThreshold
	if untrustedNewDevice || mctx.IsNewLocation || mctx.RiskScore > riskScoreThreshold {
		decision.Enforce = true
		decision.Methods = riskMethods
		decision.Reason = models.ReasonElevatedRisk
	}
	return decision
}

// devicePolicy follows the device trust engine. A request without a device
// id is treated as the riskiest device.
func (s *Service) devicePolicy(ctx context.Context, mctx models.MFAEnforcementContext) models.PolicyDecision {
	decision := models.PolicyDecision{Policy: models.PolicyDevice, Methods: []string{}}
	if mctx.DeviceID == "" {
		decision.Enforce = true
		decision.Methods = deviceMethods
		decision.Reason = models.ReasonMissingDevice
		return decision
	}

	requiresMFA := mctx.DeviceTrustScore < devicemodels.HighTrustThreshold
	if s.devices != nil {
		requiresMFA = s.devices.GetDeviceTrustStatus(ctx, mctx.UserID, mctx.DeviceID).RequiresMFA
	}
	if requiresMFA {
		decision.Enforce = true
		decision.Methods = deviceMethods
		decision.Reason = models.ReasonUntrustedDevice
	}
	return decision
}

// consolidate ORs enforcement, unions the methods of enforcing policies and
// keeps their strictest freshness and earliest grace expiry. A suspended
// role's grace expiry is reported only when nothing enforces.
func consolidate(decisions []models.PolicyDecision) models.MFAEnforcementResult {
	result := models.MFAEnforcementResult{Methods: []string{}, Policies: decisions}
	var methodSets [][]string
	var reasons []string
	var enforcingGrace, suspendedGrace *time.Time
	for _, d := range decisions {
		if !d.Enforce {
			suspendedGrace = earliest(suspendedGrace, d.GracePeriodExpires)
			continue
		}
		enforcingGrace = earliest(enforcingGrace, d.GracePeriodExpires)
		result.Required = true
		methodSets = append(methodSets, d.Methods)
		reasons = append(reasons, d.Reason)
		if d.FreshnessSeconds > 0 && (result.FreshnessSeconds == 0 || d.FreshnessSeconds < result.FreshnessSeconds) {
			result.FreshnessSeconds = d.FreshnessSeconds
		}
	}

	result.GracePeriodExpires = suspendedGrace
	if result.Required {
		result.GracePeriodExpires = enforcingGrace
	}

	switch {
	case result.Required:
		result.Methods = strutil.SortedUnion(models.MethodRank, methodSets...)
		result.Reason = strings.Join(strutil.DedupeAndTrim(reasons), ",")
	case result.GracePeriodExpires != nil:
		result.Reason = models.ReasonGracePeriod
	default:
		result.Reason = models.ReasonNotRequired
	}
	return result
}

func earliest(cur, next *time.Time) *time.Time {
	if next == nil || (cur != nil && !next.Before(*cur)) {
		return cur
	}
	t := *next
	return &t
}
