package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"riskgate/internal/recordstore"
	"riskgate/internal/risk/models"
	"riskgate/internal/risk/ports"
	"riskgate/pkg/domain"
	"riskgate/pkg/scoring"
)

const neutralScore = 50.0

var disposableEmailDomains = []string{
	"mailinator.com", "guerrillamail.com", "10minutemail.com", "tempmail.com",
	"yopmail.com", "trashmail.com", "sharklasers.com", "getnada.com",
}

var suspiciousBusinessKeywords = []string{
	"test", "fake", "demo", "sample", "dummy", "example", "asdf", "xxx",
}

func factor(typ string, cat models.FactorCategory, sev domain.Severity, conf float64, desc string) models.RiskFactor {
	return models.RiskFactor{Type: typ, Category: cat, Severity: sev, Confidence: conf, Description: desc}
}

// scoreIdentity is monotonically non-increasing in account age.
func scoreIdentity(account *recordstore.AccountRecord, now time.Time) (float64, []models.RiskFactor) {
	if account == nil {
		return neutralScore, nil
	}
	var (
		score   float64
		factors []models.RiskFactor
	)
	age := now.Sub(account.CreatedAt)
	switch {
	case age < 24*time.Hour:
		score = 70
		factors = append(factors, factor("new_account", models.FactorIdentity, domain.SeverityHigh, 95,
			"Account was created less than a day ago"))
	case age < 7*24*time.Hour:
		score = 55
		factors = append(factors, factor("new_account", models.FactorIdentity, domain.SeverityMedium, 90,
			"Account was created less than a week ago"))
	case age < 30*24*time.Hour:
		score = 35
		factors = append(factors, factor("young_account", models.FactorIdentity, domain.SeverityLow, 80,
			"Account is less than 30 days old"))
	case age < 90*24*time.Hour:
		score = 20
	case age < 365*24*time.Hour:
		score = 10
	default:
		score = 5
	}

	email := strings.ToLower(strings.TrimSpace(account.Email))
	switch {
	case email == "":
		score += 10
		factors = append(factors, factor("missing_email", models.FactorIdentity, domain.SeverityLow, 70,
			"No email address on the account"))
	case isDisposableEmail(email):
		score += 20
		factors = append(factors, factor("disposable_email", models.FactorIdentity, domain.SeverityHigh, 85,
			"Account email uses a disposable domain"))
	}
	return scoring.Clamp(score, 0, 100), factors
}

func isDisposableEmail(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	return slices.Contains(disposableEmailDomains, email[at+1:])
}

func validationRisk(v recordstore.DocumentValidation) float64 {
	switch v {
	case recordstore.DocumentValid:
		return 0
	case recordstore.DocumentSuspicious:
		return 60
	default:
		return 100
	}
}

// scoreDocuments is exactly 80 when nothing was submitted.
func scoreDocuments(docs []recordstore.DocumentRecord) (float64, []models.RiskFactor) {
	if len(docs) == 0 {
		return 80, []models.RiskFactor{
			factor("no_documents", models.FactorDocument, domain.SeverityHigh, 95, "No documents were submitted"),
		}
	}

	var sum float64
	var lowQuality, lowOCR, suspicious, invalid, flagged int
	for _, d := range docs {
		q := scoring.Clamp(d.QualityScore, 0, 100)
		ocr := scoring.Clamp(d.OCRConfidence, 0, 100)
		sum += 0.4*(100-q) + 0.3*(100-ocr) + 0.3*validationRisk(d.ValidationStatus)
		if q < 50 {
			lowQuality++
		}
		if ocr < 60 {
			lowOCR++
		}
		switch d.ValidationStatus {
		case recordstore.DocumentSuspicious:
			suspicious++
		case recordstore.DocumentInvalid:
			invalid++
		}
		if len(d.FraudIndicators) > 0 {
			flagged++
		}
	}
	score := sum/float64(len(docs)) + 10*float64(flagged)

	var factors []models.RiskFactor
	if lowQuality > 0 {
		factors = append(factors, factor("low_document_quality", models.FactorDocument, domain.SeverityMedium, 80,
			fmt.Sprintf("%d document(s) below quality threshold", lowQuality)))
	}
	if lowOCR > 0 {
		factors = append(factors, factor("low_ocr_confidence", models.FactorDocument, domain.SeverityMedium, 75,
			fmt.Sprintf("%d document(s) with low OCR confidence", lowOCR)))
	}
	if suspicious > 0 {
		factors = append(factors, factor("suspicious_document", models.FactorDocument, domain.SeverityHigh, 85,
			fmt.Sprintf("%d document(s) failed validation as suspicious", suspicious)))
	}
	if invalid > 0 {
		factors = append(factors, factor("invalid_document", models.FactorDocument, domain.SeverityCritical, 95,
			fmt.Sprintf("%d document(s) are invalid", invalid)))
	}
	if flagged > 0 {
		factors = append(factors, factor("document_fraud_flags", models.FactorDocument, domain.SeverityHigh, 90,
			fmt.Sprintf("%d document(s) carry upstream fraud flags", flagged)))
	}
	return scoring.Clamp(score, 0, 100), factors
}

func scoreBusiness(b *recordstore.BusinessRecord, now time.Time) (float64, []models.RiskFactor) {
	if b == nil {
		return neutralScore, nil
	}
	var (
		score   float64
		factors []models.RiskFactor
	)
	age := now.Sub(b.CreatedAt)
	switch {
	case age < 30*24*time.Hour:
		score = 40
		factors = append(factors, factor("new_business", models.FactorBusiness, domain.SeverityMedium, 80,
			"Business was registered less than 30 days ago"))
	case age < 180*24*time.Hour:
		score = 25
	case age < 365*24*time.Hour:
		score = 15
	default:
		score = 5
	}

	switch b.VerificationStatus {
	case recordstore.BusinessPending:
		score += 20
		factors = append(factors, factor("business_verification_pending", models.FactorBusiness, domain.SeverityMedium, 80,
			"Business registry verification is still pending"))
	case recordstore.BusinessUnverified:
		score += 25
		factors = append(factors, factor("business_unverified", models.FactorBusiness, domain.SeverityMedium, 80,
			"Business has not been verified against a registry"))
	case recordstore.BusinessRejected:
		score += 45
		factors = append(factors, factor("business_rejected", models.FactorBusiness, domain.SeverityCritical, 95,
			"Business registry verification was rejected"))
	}

	name := strings.ToLower(b.Name)
	for _, kw := range suspiciousBusinessKeywords {
		if containsWord(name, kw) {
			score += 25
			factors = append(factors, factor("suspicious_business_name", models.FactorBusiness, domain.SeverityHigh, 75,
				fmt.Sprintf("Business name contains %q", kw)))
			break
		}
	}
	return scoring.Clamp(score, 0, 100), factors
}

func containsWord(s, word string) bool {
	return slices.Contains(strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), word)
}

// NeutralBehavioralSignal is the default behavioural scorer: no interaction
// telemetry is collected for submissions, so it reports the midpoint.
type NeutralBehavioralSignal struct{}

func (NeutralBehavioralSignal) Score(context.Context, *recordstore.VerificationRecord) (ports.SignalResult, error) {
	return ports.SignalResult{Score: neutralScore}, nil
}

var (
	sanctionedJurisdictions = []string{"KP", "IR", "SY", "CU"}
	highRiskJurisdictions   = []string{"AF", "MM", "YE", "SS", "LY", "VE", "HT", "ML"}
)

// JurisdictionSignal is the default geographic scorer. It reports the
// midpoint when the submission carries no country or location.
type JurisdictionSignal struct{}

func (JurisdictionSignal) Score(_ context.Context, v *recordstore.VerificationRecord) (ports.SignalResult, error) {
	country := strings.ToUpper(strings.TrimSpace(v.Country))
	if country == "" && v.Location == nil {
		return ports.SignalResult{Score: neutralScore}, nil
	}

	var res ports.SignalResult
	switch {
	case slices.Contains(sanctionedJurisdictions, country):
		res.Score = 95
		res.Factors = append(res.Factors, factor("sanctioned_jurisdiction", models.FactorGeographic, domain.SeverityCritical, 95,
			fmt.Sprintf("Submission country %s is under comprehensive sanctions", country)))
	case slices.Contains(highRiskJurisdictions, country):
		res.Score = 75
		res.Factors = append(res.Factors, factor("high_risk_jurisdiction", models.FactorGeographic, domain.SeverityHigh, 85,
			fmt.Sprintf("Submission country %s is a high-risk jurisdiction", country)))
	case country == "":
		res.Score = 30
	default:
		res.Score = 15
	}

	if v.Location != nil && v.Location.Country != "" && country != "" &&
		!strings.EqualFold(v.Location.Country, country) {
		res.Score += 20
		res.Factors = append(res.Factors, factor("location_country_mismatch", models.FactorGeographic, domain.SeverityMedium, 70,
			fmt.Sprintf("Submitted from %s but declared %s", strings.ToUpper(v.Location.Country), country)))
	}
	res.Score = scoring.Clamp(res.Score, 0, 100)
	return res, nil
}
