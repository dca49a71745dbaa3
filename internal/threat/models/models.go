package models

import (
	"fmt"
	"strings"
	"time"

	"riskgate/pkg/domain"
)

// EventType tags inbound security events.
type EventType string

const (
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailure       EventType = "login_failure"
	EventLogout             EventType = "logout"
	EventMFAChallenge       EventType = "mfa_challenge"
	EventMFAFailure         EventType = "mfa_failure"
	EventPasswordChange     EventType = "password_change"
	EventPasswordReset      EventType = "password_reset"
	EventPermissionChange   EventType = "permission_change"
	EventDataAccess         EventType = "data_access"
	EventDataExport         EventType = "data_export"
	EventAPIKeyUsage        EventType = "api_key_usage"
	EventSuspiciousActivity EventType = "suspicious_activity"
)

var knownEventTypes = map[EventType]struct{}{
	EventLoginSuccess: {}, EventLoginFailure: {}, EventLogout: {}, EventMFAChallenge: {},
	EventMFAFailure: {}, EventPasswordChange: {}, EventPasswordReset: {}, EventPermissionChange: {},
	EventDataAccess: {}, EventDataExport: {}, EventAPIKeyUsage: {}, EventSuspiciousActivity: {},
}

func (t EventType) IsValid() bool {
	_, ok := knownEventTypes[t]
	return ok
}

// IsAuthFailure reports events that count towards brute force detection.
func (t EventType) IsAuthFailure() bool {
	return t == EventLoginFailure || t == EventMFAFailure
}

// SecurityEvent is an append-only record of something security relevant.
// Evidence carries free-form attributes the detectors and compliance rules
// read, such as "data_classification" or "approved_by".
type SecurityEvent struct {
	ID        string              `json:"id"`
	Type      EventType           `json:"type"`
	Severity  domain.Severity     `json:"severity"`
	UserID    string              `json:"userId,omitempty"`
	IPAddress string              `json:"ipAddress,omitempty"`
	UserAgent string              `json:"userAgent,omitempty"`
	DeviceID  string              `json:"deviceId,omitempty"`
	Location  *domain.GeoLocation `json:"location,omitempty"`
	Evidence  map[string]string   `json:"evidence,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

func (e SecurityEvent) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if !e.Severity.IsValid() {
		return fmt.Errorf("unknown severity %q", e.Severity)
	}
	if strings.TrimSpace(e.UserID) == "" && strings.TrimSpace(e.IPAddress) == "" {
		return fmt.Errorf("event needs a userId or an ipAddress")
	}
	if e.Location != nil && !e.Location.Valid() {
		return fmt.Errorf("location coordinates are out of range")
	}
	return nil
}

// Urgent events are analysed inline instead of being queued.
func (e SecurityEvent) Urgent() bool {
	return e.Severity.AtLeast(domain.SeverityHigh)
}

// IPReputation is what threat intelligence knows about an address.
type IPReputation struct {
	Malicious  bool     `json:"malicious"`
	Score      float64  `json:"score"`
	Categories []string `json:"categories,omitempty"`
}

// Enrichment is context gathered for an event before detection. Degraded
// names lookups that failed open.
type Enrichment struct {
	Location   *domain.GeoLocation `json:"location,omitempty"`
	Reputation IPReputation        `json:"reputation"`
	Degraded   []string            `json:"degraded,omitempty"`
}

type ThreatType string

const (
	ThreatImpossibleTravel   ThreatType = "impossible_travel"
	ThreatBehavioralAnomaly  ThreatType = "behavioral_anomaly"
	ThreatUnknownDevice      ThreatType = "unknown_device"
	ThreatBruteForce         ThreatType = "brute_force"
	ThreatCredentialStuffing ThreatType = "credential_stuffing"
	ThreatMaliciousIP        ThreatType = "malicious_ip"
)

type ThreatDetection struct {
	Type        ThreatType        `json:"type"`
	Severity    domain.Severity   `json:"severity"`
	Confidence  float64           `json:"confidence"`
	Description string            `json:"description"`
	Evidence    map[string]string `json:"evidence,omitempty"`
}

type Regulation string

const (
	RegulationGDPR Regulation = "GDPR"
	RegulationSOX  Regulation = "SOX"
	RegulationPCI  Regulation = "PCI-DSS"
	RegulationCCPA Regulation = "CCPA"
)

type ComplianceViolation struct {
	Regulation  Regulation      `json:"regulation"`
	Rule        string          `json:"rule"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
}

// ProcessedEvent is the outcome of running one event through the pipeline.
type ProcessedEvent struct {
	Event       SecurityEvent         `json:"event"`
	Enrichment  Enrichment            `json:"enrichment"`
	Threats     []ThreatDetection     `json:"threats"`
	Violations  []ComplianceViolation `json:"violations"`
	ProcessedAt time.Time             `json:"processedAt"`
	Duration    time.Duration         `json:"durationNs"`
}

// MaxThreatSeverity is the highest severity among detections, or "" when
// nothing was detected.
func (p ProcessedEvent) MaxThreatSeverity() domain.Severity {
	var max domain.Severity
	for _, t := range p.Threats {
		if t.Severity.Rank() > max.Rank() {
			max = t.Severity
		}
	}
	return max
}

// ProcessMode says how an accepted event was handled.
type ProcessMode string

const (
	ModeProcessed ProcessMode = "processed"
	ModeQueued    ProcessMode = "queued"
)

type ProcessResult struct {
	EventID   string          `json:"eventId"`
	Mode      ProcessMode     `json:"mode"`
	Processed *ProcessedEvent `json:"processed,omitempty"`
}

// Alert is published for every processed event with threats or violations.
type Alert struct {
	ID         string                `json:"id"`
	EventID    string                `json:"eventId"`
	EventType  EventType             `json:"eventType"`
	UserID     string                `json:"userId,omitempty"`
	IPAddress  string                `json:"ipAddress,omitempty"`
	Severity   domain.Severity       `json:"severity"`
	Threats    []ThreatDetection     `json:"threats"`
	Violations []ComplianceViolation `json:"violations"`
	CreatedAt  time.Time             `json:"createdAt"`
}

// MetricsSnapshot summarises the last hour of processing.
type MetricsSnapshot struct {
	WindowStart          time.Time      `json:"windowStart"`
	WindowEnd            time.Time      `json:"windowEnd"`
	EventsProcessed      int            `json:"eventsProcessed"`
	EventsByType         map[string]int `json:"eventsByType"`
	EventsBySeverity     map[string]int `json:"eventsBySeverity"`
	ThreatsDetected      int            `json:"threatsDetected"`
	ThreatsByType        map[string]int `json:"threatsByType"`
	ComplianceViolations int            `json:"complianceViolations"`
	AvgProcessingMs      float64        `json:"avgProcessingMs"`
	QueueDepth           int            `json:"queueDepth"`
}
