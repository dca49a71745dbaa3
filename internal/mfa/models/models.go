package models

import "time"

// Verification methods. MethodRank fixes their order in results.
const (
	MethodWebAuthn   = "webauthn"
	MethodTOTP       = "totp"
	MethodSMS        = "sms"
	MethodEmail      = "email"
	MethodBackupCode = "backup_code"
)

var MethodRank = map[string]int{
	MethodWebAuthn:   0,
	MethodTOTP:       1,
	MethodSMS:        2,
	MethodEmail:      3,
	MethodBackupCode: 4,
}

// AllMethods is the broadest method set, returned when enforcement fails
// secure.
func AllMethods() []string {
	return []string{MethodWebAuthn, MethodTOTP, MethodSMS, MethodEmail, MethodBackupCode}
}

// Role names, highest privilege first.
const (
	RoleSuperAdmin        = "super_admin"
	RoleAdmin             = "admin"
	RoleComplianceOfficer = "compliance_officer"
	RoleBusinessOwner     = "business_owner"
	RoleBusinessMember    = "business_member"
	RoleUser              = "user"
)

// Policy names the four enforcement policies.
type Policy string

const (
	PolicyRole   Policy = "role"
	PolicyAction Policy = "action"
	PolicyRisk   Policy = "risk"
	PolicyDevice Policy = "device"
)

// Reasons reported on results.
const (
	ReasonNotRequired      = "not_required"
	ReasonGracePeriod      = "grace_period_active"
	ReasonPolicyFailed     = "policy_evaluation_failed"
	ReasonRoleRequirement  = "role_requirement"
	ReasonSensitiveAction  = "sensitive_action"
	ReasonElevatedRisk     = "elevated_risk"
	ReasonUntrustedDevice  = "untrusted_device"
	ReasonMissingDevice    = "missing_device_id"
	ReasonBypassPrefix     = "bypass:"
	BypassRecoveryComplete = "recovery_completed"
)

// MFAEnforcementContext describes one request that may need MFA.
type MFAEnforcementContext struct {
	UserID           string     `json:"userId"`
	SessionID        string     `json:"sessionId,omitempty"`
	UserRoles        []string   `json:"userRoles,omitempty"`
	Action           string     `json:"action,omitempty"`
	DeviceID         string     `json:"deviceId,omitempty"`
	IPAddress        string     `json:"ipAddress,omitempty"`
	RiskScore        float64    `json:"riskScore"`
	DeviceTrustScore float64    `json:"deviceTrustScore"`
	IsNewDevice      bool       `json:"isNewDevice"`
	IsNewLocation    bool       `json:"isNewLocation"`
	LastMFATime      *time.Time `json:"lastMfaTime,omitempty"`
	RecoveryToken    string     `json:"recoveryToken,omitempty"`
}

// PolicyDecision is one policy's verdict. FreshnessSeconds is zero when the
// policy places no freshness bound.
type PolicyDecision struct {
	Policy             Policy     `json:"policy"`
	Enforce            bool       `json:"enforce"`
	Methods            []string   `json:"methods"`
	Reason             string     `json:"reason,omitempty"`
	FreshnessSeconds   int        `json:"freshnessSeconds,omitempty"`
	GracePeriodExpires *time.Time `json:"gracePeriodExpires,omitempty"`
}

type MFAEnforcementResult struct {
	Required           bool             `json:"required"`
	Methods            []string         `json:"methods"`
	Reason             string           `json:"reason"`
	FreshnessSeconds   int              `json:"freshnessSeconds,omitempty"`
	GracePeriodExpires *time.Time       `json:"gracePeriodExpires,omitempty"`
	BypassAvailable    bool             `json:"bypassAvailable"`
	Policies           []PolicyDecision `json:"policies,omitempty"`
}

// FailSecure is the result of an enforcement check that could not complete.
func FailSecure() MFAEnforcementResult {
	return MFAEnforcementResult{
		Required: true,
		Methods:  AllMethods(),
		Reason:   ReasonPolicyFailed,
	}
}
