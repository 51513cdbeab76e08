package waveform

import "math"

// Column is the amplitude range of one horizontal pixel
type Column struct {
	Min  float32 `json:"min"`
	Max  float32 `json:"max"`
	Peak float32 `json:"peak"` // max |v|
}

// Envelope is the per-column summary of a sample sequence
type Envelope struct {
	Columns []Column `json:"columns"`
	// Norm is the largest column peak, 1 for silence
	Norm float32 `json:"norm"`
}

// BuildEnvelope buckets samples into columns of step = max(1, n/columns) samples.
// Columns past the end of the samples stay silent.
func BuildEnvelope(samples []float32, columns int) Envelope {
	if columns < 0 {
		columns = 0
	}
	env := Envelope{Columns: make([]Column, columns)}

	step := 1
	if columns > 0 && len(samples)/columns > 1 {
		step = len(samples) / columns
	}

	var globalMax float32
	for i := range env.Columns {
		start := i * step
		if start >= len(samples) {
			break
		}
		end := min(start+step, len(samples))

		c := Column{Min: samples[start], Max: samples[start]}
		for _, v := range samples[start:end] {
			c.Min = min(c.Min, v)
			c.Max = max(c.Max, v)
			c.Peak = max(c.Peak, float32(math.Abs(float64(v))))
		}
		env.Columns[i] = c
		globalMax = max(globalMax, c.Peak)
	}

	env.Norm = 1
	if globalMax > 0 {
		env.Norm = globalMax
	}
	return env
}

// Amplitude returns column i's peak scaled by the envelope norm into [0, 1]
func (e Envelope) Amplitude(i int) float64 {
	return float64(e.Columns[i].Peak / e.Norm)
}
