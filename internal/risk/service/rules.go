package service

import (
	"math"

	"riskgate/internal/risk/models"
	"riskgate/pkg/domain"
	"riskgate/pkg/scoring"
)

const (
	componentIdentity   = "identity"
	componentDocument   = "document"
	componentBusiness   = "business"
	componentBehavioral = "behavioral"
	componentGeographic = "geographic"
)

var componentWeights = map[string]float64{
	componentIdentity:   0.25,
	componentDocument:   0.35,
	componentBusiness:   0.20,
	componentBehavioral: 0.10,
	componentGeographic: 0.10,
}

const (
	lowRiskCeiling    = 25.0
	mediumRiskCeiling = 60.0
	highRiskCeiling   = 80.0

	defaultConfidence = 50.0
)

// combineComponents applies the fixed component weights, clamps to 0..100 and
// rounds to two decimals. Submissions without a business carry the neutral
// business score, so the weights never renormalise.
func combineComponents(c models.ComponentScores) float64 {
	overall := c.Identity*componentWeights[componentIdentity] +
		c.Document*componentWeights[componentDocument] +
		c.Business*componentWeights[componentBusiness] +
		c.Behavioral*componentWeights[componentBehavioral] +
		c.Geographic*componentWeights[componentGeographic]
	return math.Round(scoring.Clamp(overall, 0, 100)*100) / 100
}

func classify(score float64) models.RiskCategory {
	switch {
	case score <= lowRiskCeiling:
		return models.RiskLow
	case score <= mediumRiskCeiling:
		return models.RiskMedium
	case score <= highRiskCeiling:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

func requiresManualReview(score float64, factors []models.RiskFactor) bool {
	if score > mediumRiskCeiling {
		return true
	}
	for _, f := range factors {
		if f.Severity == domain.SeverityCritical {
			return true
		}
	}
	return false
}

func autoApprovalEligible(score float64, factors []models.RiskFactor) bool {
	if score > lowRiskCeiling {
		return false
	}
	for _, f := range factors {
		if f.Severity.AtLeast(domain.SeverityHigh) {
			return false
		}
	}
	return true
}

func confidence(factors []models.RiskFactor) float64 {
	if len(factors) == 0 {
		return defaultConfidence
	}
	confs := make([]float64, len(factors))
	for i, f := range factors {
		confs[i] = f.Confidence
	}
	return math.Round(scoring.Mean(confs)*100) / 100
}

type recommendationKey struct {
	category models.FactorCategory
	severe   bool
}

var recommendationTable = map[recommendationKey]string{
	{models.FactorIdentity, true}:    "Verify applicant identity through an additional channel",
	{models.FactorIdentity, false}:   "Monitor early account activity",
	{models.FactorDocument, true}:    "Manually review submitted documents",
	{models.FactorDocument, false}:   "Request higher quality document images",
	{models.FactorBusiness, true}:    "Perform enhanced due diligence on the business",
	{models.FactorBusiness, false}:   "Confirm business registration details",
	{models.FactorBehavioral, true}:  "Apply post-approval activity monitoring",
	{models.FactorBehavioral, false}: "Collect additional behavioural signals",
	{models.FactorGeographic, true}:  "Apply enhanced jurisdiction screening",
	{models.FactorGeographic, false}: "Confirm applicant residence",
}

var categoryOrder = []models.FactorCategory{
	models.FactorIdentity,
	models.FactorDocument,
	models.FactorBusiness,
	models.FactorBehavioral,
	models.FactorGeographic,
}

// recommendations derives advice from (category, severity) pairs in a fixed
// category order.
func recommendations(factors []models.RiskFactor, autoApprove bool) []string {
	seen := make(map[recommendationKey]bool)
	critical := false
	for _, f := range factors {
		seen[recommendationKey{f.Category, f.Severity.AtLeast(domain.SeverityHigh)}] = true
		if f.Severity == domain.SeverityCritical {
			critical = true
		}
	}

	out := []string{}
	for _, cat := range categoryOrder {
		for _, severe := range []bool{true, false} {
			key := recommendationKey{cat, severe}
			if seen[key] {
				out = append(out, recommendationTable[key])
			}
		}
	}
	if critical {
		out = append(out, "Escalate to the compliance team")
	}
	if len(out) == 0 && autoApprove {
		out = append(out, "Eligible for automatic approval")
	}
	return out
}
