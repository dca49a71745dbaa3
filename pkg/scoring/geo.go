package scoring

import "math"

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between two points in kilometres.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// HourDistance is the distance between two hours of day on the 24h circle.
func HourDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 24)
	return math.Min(d, 24-d)
}

// CircularHourStats returns the circular mean hour of the samples and the
// mean distance of the samples from it. ok is false when there are no
// samples or the samples cancel out.
func CircularHourStats(hours []float64) (mean, spread float64, ok bool) {
	if len(hours) == 0 {
		return 0, 0, false
	}
	var sx, sy float64
	for _, h := range hours {
		rad := h / 24 * 2 * math.Pi
		sx += math.Cos(rad)
		sy += math.Sin(rad)
	}
	if math.Hypot(sx, sy) < 1e-9 {
		return 0, 0, false
	}
	mean = math.Atan2(sy, sx) / (2 * math.Pi) * 24
	if mean < 0 {
		mean += 24
	}
	var acc float64
	for _, h := range hours {
		acc += HourDistance(h, mean)
	}
	return mean, acc / float64(len(hours)), true
}
