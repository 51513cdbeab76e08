package track

import "math"

// EarthRadiusKm is the mean Earth radius used for every distance in this package
const EarthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance between two points in kilometers
func HaversineKm(a, b Position) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lng1Rad := a.Lng * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	lng2Rad := b.Lng * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Ease remaps a [0,1] progress fraction with a quadratic ease-in-out curve
func Ease(progress float64) float64 {
	if progress < 0.5 {
		return 2 * progress * progress
	}
	return 1 - math.Pow(-2*progress+2, 2)/2
}
