package track

// Track is an immutable sample sequence together with its geometry.
// Segment lengths are computed once when the track is built so per-frame
// queries never walk the whole sequence again.
type Track struct {
	samples []GeoSample
	cumKm   []float64 // cumKm[i] is the distance from samples[0] to samples[i]
}

// New builds a Track from samples ordered by Time. The slice is copied.
func New(samples []GeoSample) *Track {
	owned := make([]GeoSample, len(samples))
	copy(owned, samples)

	cumKm := make([]float64, len(owned))
	for i := 1; i < len(owned); i++ {
		cumKm[i] = cumKm[i-1] + HaversineKm(owned[i-1].Position(), owned[i].Position())
	}

	return &Track{samples: owned, cumKm: cumKm}
}

// Samples returns a copy of the sample sequence
func (tr *Track) Samples() []GeoSample {
	out := make([]GeoSample, len(tr.samples))
	copy(out, tr.samples)
	return out
}

// Len returns the number of samples
func (tr *Track) Len() int {
	return len(tr.samples)
}

// Duration returns the time of the last sample, 0 for an empty track
func (tr *Track) Duration() float64 {
	if len(tr.samples) == 0 {
		return 0
	}
	return tr.samples[len(tr.samples)-1].Time
}

// TotalKm returns the memoized total length of the track
func (tr *Track) TotalKm() float64 {
	if len(tr.cumKm) == 0 {
		return 0
	}
	return tr.cumKm[len(tr.cumKm)-1]
}

// PositionAt is PositionAt over the track's samples
func (tr *Track) PositionAt(t float64) Position {
	return PositionAt(tr.samples, t)
}

// DistanceCoveredKm is DistanceCoveredKm using the prefix sums instead of a rescan
func (tr *Track) DistanceCoveredKm(t float64) float64 {
	if len(tr.samples) == 0 || !(t > 0) {
		return 0
	}

	idx := lastAtOrBefore(tr.samples, t)
	distance := tr.cumKm[idx]
	if progress, ok := segmentProgress(tr.samples, idx, t); ok {
		distance += (tr.cumKm[idx+1] - tr.cumKm[idx]) * progress
	}
	return distance
}
