package models

import (
	"time"

	"riskgate/pkg/domain"
)

// RiskCategory is the banded overall risk of a verification.
type RiskCategory string

const (
	RiskLow      RiskCategory = "low"
	RiskMedium   RiskCategory = "medium"
	RiskHigh     RiskCategory = "high"
	RiskCritical RiskCategory = "critical"
)

// FactorCategory names the sub-scorer (or detector) that produced a factor.
type FactorCategory string

const (
	FactorIdentity   FactorCategory = "identity"
	FactorDocument   FactorCategory = "document"
	FactorBusiness   FactorCategory = "business"
	FactorBehavioral FactorCategory = "behavioral"
	FactorGeographic FactorCategory = "geographic"
)

// RiskFactor is one contributing signal with its own confidence (0..100).
type RiskFactor struct {
	Type        string          `json:"type"`
	Category    FactorCategory  `json:"category"`
	Severity    domain.Severity `json:"severity"`
	Confidence  float64         `json:"confidence"`
	Description string          `json:"description"`
}

// ComponentScores holds each sub-score on the 0..100 scale. Individual
// submissions report the neutral business score.
type ComponentScores struct {
	Identity   float64 `json:"identity"`
	Document   float64 `json:"document"`
	Business   float64 `json:"business"`
	Behavioral float64 `json:"behavioral"`
	Geographic float64 `json:"geographic"`
}

// RiskAssessmentResult is computed fresh per call and never persisted as
// authoritative state.
type RiskAssessmentResult struct {
	VerificationID       string          `json:"verificationId"`
	OverallRiskScore     float64         `json:"overallRiskScore"`
	RiskCategory         RiskCategory    `json:"riskCategory"`
	Components           ComponentScores `json:"components"`
	RiskFactors          []RiskFactor    `json:"riskFactors"`
	Recommendations      []string        `json:"recommendations"`
	ConfidenceScore      float64         `json:"confidenceScore"`
	RequiresManualReview bool            `json:"requiresManualReview"`
	AutoApprovalEligible bool            `json:"autoApprovalEligible"`
	DegradedComponents   []string        `json:"degradedComponents,omitempty"`
	AssessedAt           time.Time       `json:"assessedAt"`
}

// FraudIndicator is a discrete fraud signal. Evidence is free-form.
type FraudIndicator struct {
	Type        string          `json:"type"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
	Evidence    map[string]any  `json:"evidence,omitempty"`
}

// ComplianceFlag is a sanctions/PEP/watch-list finding.
type ComplianceFlag struct {
	Type       string          `json:"type"`
	Severity   domain.Severity `json:"severity"`
	Source     string          `json:"source"`
	MatchScore float64         `json:"matchScore"`
	Details    string          `json:"details"`
}

// ScreeningSubject is what gets sent to the external screening provider.
type ScreeningSubject struct {
	VerificationID string
	FullName       string
	DateOfBirth    string
	BusinessName   string
	Country        string
}

// ScreeningHit is one match returned by a screening provider.
type ScreeningHit struct {
	List       string  // sanctions, pep, watchlist, adverse_media
	Source     string  // e.g. OFAC, EU, UN
	MatchScore float64 // 0..1
	MatchedOn  string
}
