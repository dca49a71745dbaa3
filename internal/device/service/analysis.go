package service

import (
	"math"
	"time"

	"riskgate/internal/device/models"
	"riskgate/internal/recordstore"
	"riskgate/pkg/domain"
	strutil "riskgate/pkg/platform/strings"
	"riskgate/pkg/scoring"
)

const neutralTrust = 0.5

const (
	dimFingerprint     = "fingerprint"
	dimBehavioral      = "behavioral"
	dimGeographic      = "geographic"
	dimNetwork         = "network"
	dimTemporal        = "temporal"
	dimSuccessRate     = "success_rate"
	dimUserDesignation = "user_designation"
)

// trustWeights include user_designation, which no analysis produces yet.
// WeightedAverage only normalises over dimensions that are present, so the
// reserved weight drops out until a designation signal exists.
var trustWeights = map[string]float64{
	dimFingerprint:     0.25,
	dimBehavioral:      0.20,
	dimGeographic:      0.15,
	dimNetwork:         0.15,
	dimTemporal:        0.10,
	dimSuccessRate:     0.10,
	dimUserDesignation: 0.05,
}

const (
	geoHistoryWindow   = 30 * 24 * time.Hour
	geoHistoryLimit    = 10
	rapidChangeKm      = 5000.0
	inconsistentKm     = 2000.0
	newRegionKm        = 500.0
	maxRecentCountries = 3

	temporalWindow      = 7 * 24 * time.Hour
	temporalLimit       = 100
	minTemporalSamples  = 3
	normalHourDrift     = 3.0
	suspiciousHourDrift = 6.0

	successRateWindow = 30 * 24 * time.Hour

	minBehaviorSamples = 3
	behaviorAnomalyZ   = 3.0
)

// trustInputs is everything the trust computation reads. Histories that
// could not be fetched are left nil with the matching ok flag unset.
type trustInputs struct {
	fingerprint recordstore.DeviceFingerprint
	context     models.DeviceContext
	existing    *recordstore.DeviceTrustRecord
	uaPlatform  string

	geoSessions []recordstore.SessionRecord
	geoOK       bool
	loginTimes  []time.Time
	temporalOK  bool
	attempts    recordstore.MFAAttemptStats
	attemptsOK  bool

	now time.Time
}

// computeTrust is pure: the same inputs always give the same result.
func computeTrust(deviceID string, in trustInputs) models.DeviceTrustResult {
	var factors []string
	add := func(score float64, fs []string) float64 {
		factors = append(factors, fs...)
		return scoring.Clamp(score, 0, 1)
	}

	var previous *recordstore.DeviceFingerprint
	var profile *recordstore.BehaviorProfile
	if in.existing != nil {
		previous = &in.existing.Fingerprint
		profile = in.existing.Behavior
	}

	analysis := models.AnalysisScores{
		Fingerprint: add(fingerprintStability(in.fingerprint, previous, in.uaPlatform)),
		Behavioral:  add(behavioralConsistency(profile, in.context.Behavior)),
		Geographic:  neutralTrust,
		Network:     add(networkContext(in.context.Network)),
		Temporal:    neutralTrust,
		SuccessRate: neutralTrust,
	}
	if in.geoOK {
		analysis.Geographic = add(geographicConsistency(in.context.Location, in.geoSessions))
	}
	if in.temporalOK {
		analysis.Temporal = add(temporalPattern(in.now, in.loginTimes))
	}
	if in.attemptsOK {
		analysis.SuccessRate = add(successRate(in.attempts))
	}

	score := scoring.Clamp(scoring.WeightedAverage(map[string]float64{
		dimFingerprint: analysis.Fingerprint,
		dimBehavioral:  analysis.Behavioral,
		dimGeographic:  analysis.Geographic,
		dimNetwork:     analysis.Network,
		dimTemporal:    analysis.Temporal,
		dimSuccessRate: analysis.SuccessRate,
	}, trustWeights), 0, 1)
	score = math.Round(score*10000) / 10000

	riskFactors := strutil.DedupeAndTrim(factors)
	if riskFactors == nil {
		riskFactors = []string{}
	}
	return models.DeviceTrustResult{
		DeviceID:    deviceID,
		TrustScore:  score,
		TrustLevel:  models.LevelFor(score),
		RiskFactors: riskFactors,
		RequiresMFA: score < models.HighTrustThreshold,
		CanRemember: score >= models.MediumTrustThreshold,
		Analysis:    analysis,
	}
}

// fingerprintStability compares against the last seen fingerprint. Canvas
// and WebGL weigh 0.3 each, audio and screen 0.2 each.
func fingerprintStability(current recordstore.DeviceFingerprint, previous *recordstore.DeviceFingerprint, uaPlatform string) (float64, []string) {
	var factors []string
	score := neutralTrust
	if previous != nil {
		score = 0.3*hashMatch(current.CanvasHash, previous.CanvasHash) +
			0.3*hashMatch(current.WebGLHash, previous.WebGLHash) +
			0.2*hashMatch(current.AudioHash, previous.AudioHash) +
			0.2*screenMatch(current, *previous)
		if score < 0.5 {
			factors = append(factors, "fingerprint_changed")
		}
	}
	if platformMismatch(uaPlatform, current.Platform) {
		score *= 0.8
		factors = append(factors, "platform_mismatch")
	}
	return score, factors
}

// hashMatch gives half credit when neither side reported the hash.
func hashMatch(a, b string) float64 {
	switch {
	case a == "" && b == "":
		return 0.5
	case a == b:
		return 1
	default:
		return 0
	}
}

func screenMatch(a, b recordstore.DeviceFingerprint) float64 {
	aMissing := a.ScreenWidth == 0 && a.ScreenHeight == 0
	bMissing := b.ScreenWidth == 0 && b.ScreenHeight == 0
	switch {
	case aMissing && bMissing:
		return 0.5
	case a.ScreenWidth == b.ScreenWidth && a.ScreenHeight == b.ScreenHeight:
		return 1
	default:
		return 0
	}
}

// behavioralConsistency scores the login sample against the device's
// running profile by z-score.
func behavioralConsistency(profile *recordstore.BehaviorProfile, sample *models.BehaviorSample) (float64, []string) {
	if profile == nil || profile.Samples < minBehaviorSamples {
		if sample == nil {
			return neutralTrust, nil
		}
		// a first sample starts a profile; mildly better than nothing
		return 0.6, nil
	}
	if sample == nil {
		return neutralTrust, nil
	}

	n := float64(profile.Samples)
	var scores []float64
	maxZ := 0.0
	for _, m := range []struct {
		value, mean, m2 float64
	}{
		{sample.TypingIntervalMs, profile.TypingMeanMs, profile.TypingM2},
		{sample.MouseVelocity, profile.MouseMean, profile.MouseM2},
	} {
		if m.value <= 0 {
			continue
		}
		std := math.Sqrt(m.m2 / (n - 1))
		// identical history would make any change infinitely unusual
		std = math.Max(std, 0.1*math.Abs(m.mean))
		if std == 0 {
			std = 1
		}
		z := math.Abs(m.value-m.mean) / std
		maxZ = math.Max(maxZ, z)
		if z <= 1 {
			scores = append(scores, 1)
		} else {
			scores = append(scores, scoring.Clamp(1-(z-1)/4, 0, 1))
		}
	}
	if len(scores) == 0 {
		return neutralTrust, nil
	}
	var factors []string
	if maxZ > behaviorAnomalyZ {
		factors = append(factors, "behavioral_anomaly")
	}
	return scoring.Mean(scores), factors
}

// updateProfile folds a sample into the profile with Welford's update.
func updateProfile(profile *recordstore.BehaviorProfile, sample *models.BehaviorSample) *recordstore.BehaviorProfile {
	if sample == nil {
		return profile
	}
	next := recordstore.BehaviorProfile{}
	if profile != nil {
		next = *profile
	}
	next.Samples++
	n := float64(next.Samples)
	d := sample.TypingIntervalMs - next.TypingMeanMs
	next.TypingMeanMs += d / n
	next.TypingM2 += d * (sample.TypingIntervalMs - next.TypingMeanMs)
	d = sample.MouseVelocity - next.MouseMean
	next.MouseMean += d / n
	next.MouseM2 += d * (sample.MouseVelocity - next.MouseMean)
	return &next
}

// geographicConsistency measures the jump from the nearest recently seen
// location.
func geographicConsistency(current *domain.GeoLocation, sessions []recordstore.SessionRecord) (float64, []string) {
	if current == nil || !current.Valid() {
		return neutralTrust, nil
	}
	var known []domain.GeoLocation
	countries := make(map[string]struct{})
	for _, s := range sessions {
		if s.Location == nil || !s.Location.Valid() {
			continue
		}
		known = append(known, *s.Location)
		if s.Location.Country != "" {
			countries[s.Location.Country] = struct{}{}
		}
		if len(known) == geoHistoryLimit {
			break
		}
	}
	if len(known) == 0 {
		return neutralTrust, nil
	}

	nearest := math.Inf(1)
	for _, loc := range known {
		nearest = math.Min(nearest, scoring.HaversineKm(current.Latitude, current.Longitude, loc.Latitude, loc.Longitude))
	}

	score := 1.0
	var factors []string
	switch {
	case nearest > rapidChangeKm:
		score *= 0.3
		factors = append(factors, "rapid_location_change")
	case nearest > inconsistentKm:
		score *= 0.6
		factors = append(factors, "inconsistent_location")
	case nearest > newRegionKm:
		score *= 0.8
		factors = append(factors, "new_region")
	}
	if len(countries) > maxRecentCountries {
		score *= 0.5
		factors = append(factors, "multiple_countries")
	}
	return score, factors
}

func networkContext(n models.NetworkInfo) (float64, []string) {
	score := 0.8
	var factors []string
	if n.VPN {
		score *= 0.7
		factors = append(factors, "vpn_detected")
	}
	if n.Tor {
		score *= 0.2
		factors = append(factors, "tor_detected")
	}
	if n.Datacenter {
		score *= 0.6
		factors = append(factors, "datacenter_ip")
	}
	return score, factors
}

func hourOfDay(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) + float64(t.Minute())/60
}

// temporalPattern compares the login hour with the user's recent habit.
// Both drift thresholds widen by the habitual spread.
func temporalPattern(now time.Time, logins []time.Time) (float64, []string) {
	if len(logins) < minTemporalSamples {
		return neutralTrust, nil
	}
	hours := make([]float64, len(logins))
	for i, t := range logins {
		hours[i] = hourOfDay(t)
	}
	mean, spread, ok := scoring.CircularHourStats(hours)
	if !ok {
		return neutralTrust, nil
	}
	drift := scoring.HourDistance(hourOfDay(now), mean)
	switch {
	case drift > suspiciousHourDrift+spread:
		return 0.3, []string{"unusual_login_time"}
	case drift > normalHourDrift+spread:
		return 0.7, nil
	default:
		return 1, nil
	}
}

func successRate(stats recordstore.MFAAttemptStats) (float64, []string) {
	if stats.Total <= 0 {
		return neutralTrust, nil
	}
	rate := float64(stats.Successful) / float64(stats.Total)
	if stats.Total >= 3 && rate < 0.5 {
		return rate, []string{"low_mfa_success_rate"}
	}
	return rate, nil
}
