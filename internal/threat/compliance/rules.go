package compliance

import (
	"riskgate/internal/threat/models"
	"riskgate/pkg/domain"
)

// Rule is one regulation check. Expression is CEL over the event variables
// declared in NewEngine and must evaluate to a bool; true means violated.
type Rule struct {
	ID          string
	Regulation  models.Regulation
	Severity    domain.Severity
	Description string
	Expression  string
}

// euCountries is the EEA, where GDPR transfers need no mechanism.
var euCountries = []string{
	"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR", "HU", "IE",
	"IT", "LV", "LT", "LU", "MT", "NL", "PL", "PT", "RO", "SK", "SI", "ES", "SE",
	"IS", "LI", "NO",
}

// DefaultRules are the built-in GDPR, SOX, PCI-DSS and CCPA checks.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "gdpr.cross_border_transfer",
			Regulation:  models.RegulationGDPR,
			Severity:    domain.SeverityHigh,
			Description: "Personal data exported outside the EEA without a transfer mechanism",
			Expression: `event_type == "data_export" && classification == "personal" &&
				country != "" && !(country in eu_countries) &&
				!("transfer_mechanism" in evidence)`,
		},
		{
			ID:          "gdpr.access_without_purpose",
			Regulation:  models.RegulationGDPR,
			Severity:    domain.SeverityMedium,
			Description: "Personal data accessed without a recorded processing purpose",
			Expression: `(event_type == "data_access" || event_type == "data_export") &&
				classification == "personal" && !("purpose" in evidence)`,
		},
		{
			ID:          "sox.unapproved_permission_change",
			Regulation:  models.RegulationSOX,
			Severity:    domain.SeverityHigh,
			Description: "Permission change without a recorded approver",
			Expression:  `event_type == "permission_change" && !("approved_by" in evidence)`,
		},
		{
			ID:          "sox.self_approval",
			Regulation:  models.RegulationSOX,
			Severity:    domain.SeverityCritical,
			Description: "Permission change approved by the user it benefits",
			Expression: `event_type == "permission_change" && "approved_by" in evidence &&
				evidence["approved_by"] == user_id`,
		},
		{
			ID:          "sox.after_hours_change",
			Regulation:  models.RegulationSOX,
			Severity:    domain.SeverityLow,
			Description: "Privileged change outside business hours",
			Expression:  `event_type == "permission_change" && (hour < 6 || hour >= 22)`,
		},
		{
			ID:          "pci.unencrypted_cardholder_export",
			Regulation:  models.RegulationPCI,
			Severity:    domain.SeverityCritical,
			Description: "Cardholder data exported without encryption",
			Expression: `event_type == "data_export" && classification == "cardholder" &&
				!("encrypted" in evidence && evidence["encrypted"] == "true")`,
		},
		{
			ID:          "pci.cardholder_access_untrusted_network",
			Regulation:  models.RegulationPCI,
			Severity:    domain.SeverityHigh,
			Description: "Cardholder data accessed from an address flagged by threat intelligence",
			Expression:  `classification == "cardholder" && malicious_ip`,
		},
		{
			ID:          "ccpa.sale_after_opt_out",
			Regulation:  models.RegulationCCPA,
			Severity:    domain.SeverityHigh,
			Description: "Personal data shared for sale after the consumer opted out",
			Expression: `event_type == "data_export" && "purpose" in evidence && evidence["purpose"] == "sale" &&
				"opt_out" in evidence && evidence["opt_out"] == "true"`,
		},
	}
}
