package detect

import (
	"math"
	"time"

	"riskgate/pkg/domain"
	"riskgate/pkg/scoring"
)

const (
	// MaxTravelSpeedKmh is roughly the cruising speed of a commercial jet.
	MaxTravelSpeedKmh = 800.0
	// TravelWindow bounds how far apart two sightings may be and still be
	// compared.
	TravelWindow = 12 * time.Hour
)

// TravelCheck is the outcome of comparing two sightings of the same user.
type TravelCheck struct {
	DistanceKm float64
	Elapsed    time.Duration
	SpeedKmh   float64
	Impossible bool
}

// CheckTravel compares the previous and current sightings. Sightings out of
// order or further apart than TravelWindow are never impossible. Distinct
// places seen at the same instant travel at infinite speed.
func CheckTravel(prev domain.GeoLocation, prevAt time.Time, cur domain.GeoLocation, curAt time.Time) TravelCheck {
	elapsed := curAt.Sub(prevAt)
	check := TravelCheck{
		DistanceKm: scoring.HaversineKm(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude),
		Elapsed:    elapsed,
	}
	if elapsed < 0 || elapsed >= TravelWindow || check.DistanceKm == 0 {
		return check
	}
	if elapsed == 0 {
		check.SpeedKmh = math.Inf(1)
	} else {
		check.SpeedKmh = check.DistanceKm / elapsed.Hours()
	}
	check.Impossible = check.SpeedKmh > MaxTravelSpeedKmh
	return check
}
