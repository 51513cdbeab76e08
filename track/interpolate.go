package track

import "sort"

// PositionAt resolves a query time to a position on the track.
//
// Before the first sample it pins to the first sample, after the last sample to the
// last one. In between it eases between the two samples bracketing t. The samples must
// be ordered by Time; see Validate.
func PositionAt(samples []GeoSample, t float64) Position {
	if len(samples) == 0 {
		return DefaultPosition
	}

	last := samples[len(samples)-1]
	if t >= last.Time {
		return last.Position()
	}
	if t <= samples[0].Time {
		return samples[0].Position()
	}

	i := bracket(samples, t)
	if i < 0 {
		// Only reachable for NaN or unordered input
		return samples[0].Position()
	}
	return interpolate(samples[i], samples[i+1], t)
}

// TotalDistanceKm sums the great-circle distance between consecutive samples
func TotalDistanceKm(samples []GeoSample) float64 {
	distance := 0.0
	for i := 1; i < len(samples); i++ {
		distance += HaversineKm(samples[i-1].Position(), samples[i].Position())
	}
	return distance
}

// DistanceCoveredKm returns the distance travelled along the track up to time t.
// Progress inside the current segment accrues linearly in time, without easing.
func DistanceCoveredKm(samples []GeoSample, t float64) float64 {
	if len(samples) == 0 || !(t > 0) {
		return 0
	}

	idx := lastAtOrBefore(samples, t)
	distance := 0.0
	for i := 1; i <= idx; i++ {
		distance += HaversineKm(samples[i-1].Position(), samples[i].Position())
	}

	if progress, ok := segmentProgress(samples, idx, t); ok {
		distance += HaversineKm(samples[idx].Position(), samples[idx+1].Position()) * progress
	}
	return distance
}

// countAtOrBefore returns the number of leading samples with Time <= t
func countAtOrBefore(samples []GeoSample, t float64) int {
	return sort.Search(len(samples), func(i int) bool {
		return samples[i].Time > t
	})
}

// lastAtOrBefore returns the largest index whose Time <= t, or 0 if there is none
func lastAtOrBefore(samples []GeoSample, t float64) int {
	idx := countAtOrBefore(samples, t) - 1
	if idx < 0 {
		return 0
	}
	return idx
}

// bracket returns i such that samples[i].Time <= t < samples[i+1].Time, or -1
func bracket(samples []GeoSample, t float64) int {
	i := countAtOrBefore(samples, t) - 1
	if i < 0 || i >= len(samples)-1 {
		return -1
	}
	return i
}

func interpolate(cur, next GeoSample, t float64) Position {
	progress := (t - cur.Time) / (next.Time - cur.Time)
	eased := Ease(progress)

	return Position{
		Lat: cur.Lat + (next.Lat-cur.Lat)*eased,
		Lng: cur.Lng + (next.Lng-cur.Lng)*eased,
	}
}

// segmentProgress returns the linear fraction of segment idx -> idx+1 covered at t
func segmentProgress(samples []GeoSample, idx int, t float64) (float64, bool) {
	if idx >= len(samples)-1 {
		return 0, false
	}
	cur, next := samples[idx], samples[idx+1]
	if t < cur.Time || t > next.Time {
		return 0, false
	}
	span := next.Time - cur.Time
	if span <= 0 {
		return 0, false
	}
	return (t - cur.Time) / span, true
}
