package recordstore

import (
	"fmt"
	"time"

	"riskgate/pkg/domain"
)

// VerificationStatus is the lifecycle state of a KYC/KYB submission.
type VerificationStatus string

const (
	VerificationPending     VerificationStatus = "pending"
	VerificationUnderReview VerificationStatus = "under_review"
	VerificationApproved    VerificationStatus = "approved"
	VerificationRejected    VerificationStatus = "rejected"
)

func ParseVerificationStatus(v string) (VerificationStatus, error) {
	switch s := VerificationStatus(v); s {
	case VerificationPending, VerificationUnderReview, VerificationApproved, VerificationRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown verification status %q", v)
}

// DocumentValidation is the upstream validation outcome of a document.
type DocumentValidation string

const (
	DocumentValid      DocumentValidation = "valid"
	DocumentSuspicious DocumentValidation = "suspicious"
	DocumentInvalid    DocumentValidation = "invalid"
)

func ParseDocumentValidation(v string) (DocumentValidation, error) {
	switch s := DocumentValidation(v); s {
	case DocumentValid, DocumentSuspicious, DocumentInvalid:
		return s, nil
	}
	return "", fmt.Errorf("unknown document validation status %q", v)
}

// BusinessStatus is the registry verification state of a business.
type BusinessStatus string

const (
	BusinessUnverified BusinessStatus = "unverified"
	BusinessPending    BusinessStatus = "pending"
	BusinessVerified   BusinessStatus = "verified"
	BusinessRejected   BusinessStatus = "rejected"
)

func ParseBusinessStatus(v string) (BusinessStatus, error) {
	switch s := BusinessStatus(v); s {
	case BusinessUnverified, BusinessPending, BusinessVerified, BusinessRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown business status %q", v)
}

type AccountRecord struct {
	UserID    string
	Email     string
	CreatedAt time.Time
}

type BusinessRecord struct {
	ID                 string
	Name               string
	VerificationStatus BusinessStatus
	CreatedAt          time.Time
}

// DocumentRecord is one uploaded identity or business document.
type DocumentRecord struct {
	ID               string
	VerificationID   string
	FileHash         string
	OriginalFilename string
	UploadedAt       time.Time
	QualityScore     float64 // 0..100
	OCRConfidence    float64 // 0..100
	ValidationStatus DocumentValidation
	ExtractedFields  map[string]string
	FraudIndicators  []string
}

// VerificationRecord is a submission together with its documents and the
// owning account and business, as loaded from the store.
type VerificationRecord struct {
	ID          string
	UserID      string
	Status      VerificationStatus
	SubmittedAt time.Time
	Country     string
	Location    *domain.GeoLocation
	Account     *AccountRecord
	Business    *BusinessRecord
	Documents   []DocumentRecord
}

// DocumentRef points at a document that shares a hash with another
// submission.
type DocumentRef struct {
	DocumentID     string
	VerificationID string
	UserID         string
}

type SessionRecord struct {
	UserID    string
	DeviceID  string
	IPAddress string
	Location  *domain.GeoLocation
	CreatedAt time.Time
}

// DeviceFingerprint is the client-collected device characteristics.
type DeviceFingerprint struct {
	CanvasHash      string `json:"canvasHash,omitempty"`
	WebGLHash       string `json:"webglHash,omitempty"`
	AudioHash       string `json:"audioHash,omitempty"`
	ScreenWidth     int    `json:"screenWidth"`
	ScreenHeight    int    `json:"screenHeight"`
	ColorDepth      int    `json:"colorDepth"`
	TimezoneOffset  int    `json:"timezoneOffset"`
	Language        string `json:"language,omitempty"`
	Platform        string `json:"platform,omitempty"`
	HardwareThreads int    `json:"hardwareConcurrency,omitempty"`
	TouchSupport    bool   `json:"touchSupport"`
}

// BehaviorProfile is the running interaction profile of a device.
type BehaviorProfile struct {
	Samples      int     `json:"samples"`
	TypingMeanMs float64 `json:"typingMeanMs"`
	TypingM2     float64 `json:"typingM2"`
	MouseMean    float64 `json:"mouseMean"`
	MouseM2      float64 `json:"mouseM2"`
}

// DeviceTrustRecord is the persisted latest trust computation for a
// (user, device) pair. Keyed by (UserID, DeviceID); last write wins.
type DeviceTrustRecord struct {
	UserID      string
	DeviceID    string
	Fingerprint DeviceFingerprint
	Behavior    *BehaviorProfile
	DisplayName string
	TrustScore  float64
	TrustLevel  string
	RiskFactors []string
	FirstSeen   time.Time
	LastSeen    time.Time
	UpdatedAt   time.Time
}

// TrustedDeviceRecord marks a device the user may skip MFA on until
// ExpiresAt.
type TrustedDeviceRecord struct {
	UserID     string
	DeviceID   string
	TrustScore float64
	TrustedAt  time.Time
	ExpiresAt  time.Time
}

func (r TrustedDeviceRecord) ActiveAt(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}

type MFAAttemptStats struct {
	Total      int
	Successful int
}

// MFAEnrollment reports whether the user has MFA configured and with which
// methods.
type MFAEnrollment struct {
	Enabled bool
	Methods []string
}

// BypassKind is the source of a temporary MFA bypass.
type BypassKind string

const (
	BypassAdminOverride   BypassKind = "admin_override"
	BypassEmergencyAccess BypassKind = "emergency_access"
)

type BypassGrant struct {
	UserID    string
	Kind      BypassKind
	GrantedBy string
	Reason    string
	ExpiresAt time.Time
}
