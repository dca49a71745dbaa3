package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply retention and routing per category.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance
	// (risk decisions, screening outcomes, compliance violations).
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events that feed SIEM and alerting
	// (MFA enforcement, bypass use, detected threats).
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from engine logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	UserID    string
	Subject   string
	Action    string
	Decision  string
	Reason    string
	Severity  string
	RequestID string
	Metadata  map[string]string
}

type AuditEvent string

const (
	EventRiskAssessed           AuditEvent = "risk_assessed"
	EventFraudIndicatorsFound   AuditEvent = "fraud_indicators_detected"
	EventComplianceScreened     AuditEvent = "compliance_screened"
	EventDeviceRegistered       AuditEvent = "device_registered"
	EventDeviceTrustUpdated     AuditEvent = "device_trust_updated"
	EventMFAEnforcement         AuditEvent = "mfa_enforcement"
	EventMFABypassUsed          AuditEvent = "mfa_bypass_used"
	EventThreatDetected         AuditEvent = "threat_detected"
	EventComplianceViolation    AuditEvent = "compliance_violation"
	EventSecurityEventProcessed AuditEvent = "security_event_processed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventRiskAssessed:        CategoryCompliance,
	EventComplianceScreened:  CategoryCompliance,
	EventComplianceViolation: CategoryCompliance,

	EventFraudIndicatorsFound: CategorySecurity,
	EventDeviceRegistered:     CategorySecurity,
	EventMFAEnforcement:       CategorySecurity,
	EventMFABypassUsed:        CategorySecurity,
	EventThreatDetected:       CategorySecurity,

	EventDeviceTrustUpdated:     CategoryOperations,
	EventSecurityEventProcessed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. The record store implements it.
type Store interface {
	AppendAuditEvent(ctx context.Context, event Event) error
}

// Emitter is what engines depend on to record audit events.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
