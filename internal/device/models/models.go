package models

import (
	"fmt"
	"time"

	"riskgate/pkg/domain"
)

// TrustLevel is the coarse bucket derived from a device trust score.
type TrustLevel string

const (
	TrustLow      TrustLevel = "low"
	TrustMedium   TrustLevel = "medium"
	TrustHigh     TrustLevel = "high"
	TrustVerified TrustLevel = "verified"
)

// Trust thresholds. Each is the minimum score of its level: a device is
// remembered from MediumTrustThreshold and skips MFA from HighTrustThreshold.
const (
	MediumTrustThreshold   = 0.6
	HighTrustThreshold     = 0.8
	VerifiedTrustThreshold = 0.95
)

// LevelFor buckets a trust score. Buckets are contiguous and ordered, so
// the level alone tells whether MFA is required or the device may be
// remembered.
func LevelFor(score float64) TrustLevel {
	switch {
	case score >= VerifiedTrustThreshold:
		return TrustVerified
	case score >= HighTrustThreshold:
		return TrustHigh
	case score >= MediumTrustThreshold:
		return TrustMedium
	default:
		return TrustLow
	}
}

func ParseTrustLevel(v string) (TrustLevel, error) {
	switch l := TrustLevel(v); l {
	case TrustLow, TrustMedium, TrustHigh, TrustVerified:
		return l, nil
	}
	return "", fmt.Errorf("unknown trust level %q", v)
}

// NetworkInfo is the client network classification supplied by the edge.
type NetworkInfo struct {
	VPN        bool `json:"vpn"`
	Tor        bool `json:"tor"`
	Datacenter bool `json:"datacenter"`
}

// BehaviorSample is one interaction measurement taken during the login.
type BehaviorSample struct {
	TypingIntervalMs float64 `json:"typingIntervalMs"`
	MouseVelocity    float64 `json:"mouseVelocity"`
}

// DeviceContext is the request context of a registration or trust check.
type DeviceContext struct {
	// DeviceID is the identifier the client kept from an earlier
	// registration. Empty on first contact.
	DeviceID  string              `json:"deviceId,omitempty"`
	IPAddress string              `json:"ipAddress,omitempty"`
	UserAgent string              `json:"userAgent,omitempty"`
	Location  *domain.GeoLocation `json:"location,omitempty"`
	Network   NetworkInfo         `json:"network"`
	Behavior  *BehaviorSample     `json:"behavior,omitempty"`
}

// AnalysisScores are the six per-dimension scores, each in [0, 1].
type AnalysisScores struct {
	Fingerprint float64 `json:"fingerprint"`
	Behavioral  float64 `json:"behavioral"`
	Geographic  float64 `json:"geographic"`
	Network     float64 `json:"network"`
	Temporal    float64 `json:"temporal"`
	SuccessRate float64 `json:"successRate"`
}

type DeviceTrustResult struct {
	DeviceID    string         `json:"deviceId"`
	TrustScore  float64        `json:"trustScore"`
	TrustLevel  TrustLevel     `json:"trustLevel"`
	RiskFactors []string       `json:"riskFactors"`
	RequiresMFA bool           `json:"requiresMFA"`
	CanRemember bool           `json:"canRemember"`
	Analysis    AnalysisScores `json:"analysis"`
}

type DeviceRegistrationResult struct {
	DeviceID     string            `json:"deviceId"`
	DisplayName  string            `json:"displayName"`
	IsNewDevice  bool              `json:"isNewDevice"`
	Trust        DeviceTrustResult `json:"trust"`
	TrustedUntil *time.Time        `json:"trustedUntil,omitempty"`
}

// DeviceTrustStatus is the read view used by login and MFA checks.
type DeviceTrustStatus struct {
	IsTrusted   bool       `json:"isTrusted"`
	TrustLevel  TrustLevel `json:"trustLevel"`
	TrustScore  float64    `json:"trustScore"`
	RequiresMFA bool       `json:"requiresMFA"`
	RiskFactors []string   `json:"riskFactors"`
}

// UntrustedStatus is the safe default when nothing is known about a device.
func UntrustedStatus() DeviceTrustStatus {
	return DeviceTrustStatus{
		TrustLevel:  TrustLow,
		RequiresMFA: true,
		RiskFactors: []string{},
	}
}
