package track

import (
	"encoding/json"
	"math"
	"testing"
)

func TestTrackMatchesPureFunctions(t *testing.T) {
	samples := irregularSamples()
	tr := New(samples)

	if !almostEqual(tr.TotalKm(), TotalDistanceKm(samples), 1e-9) {
		t.Fatalf("total mismatch: %v vs %v", tr.TotalKm(), TotalDistanceKm(samples))
	}
	for q := -2.0; q <= 33; q += 0.125 {
		if got, want := tr.PositionAt(q), PositionAt(samples, q); got != want {
			t.Fatalf("t=%v: position %+v, want %+v", q, got, want)
		}
		if got, want := tr.DistanceCoveredKm(q), DistanceCoveredKm(samples, q); !almostEqual(got, want, 1e-9) {
			t.Fatalf("t=%v: covered %v, want %v", q, got, want)
		}
	}
}

func TestTrackOwnsItsSamples(t *testing.T) {
	samples := scenarioSamples()
	tr := New(samples)
	samples[1].Lng = 42

	if got := tr.PositionAt(10); got.Lng != 1 {
		t.Fatalf("track changed with its input slice: %+v", got)
	}
	out := tr.Samples()
	out[0].Lat = 10
	if tr.PositionAt(0).Lat != 0 {
		t.Fatal("track changed through Samples()")
	}
}

func TestTrackEmpty(t *testing.T) {
	tr := New(nil)
	if tr.Len() != 0 || tr.Duration() != 0 || tr.TotalKm() != 0 {
		t.Fatalf("unexpected empty track geometry: len=%d duration=%v total=%v", tr.Len(), tr.Duration(), tr.TotalKm())
	}
	if tr.PositionAt(3) != DefaultPosition {
		t.Fatal("expected default position")
	}
	if tr.DistanceCoveredKm(3) != 0 {
		t.Fatal("expected zero covered distance")
	}
}

func TestTrackDuration(t *testing.T) {
	if d := New(scenarioSamples()).Duration(); d != 20 {
		t.Fatalf("expected 20, got %v", d)
	}
}

func TestTrackGeoJSON(t *testing.T) {
	tr := New(scenarioSamples())
	line := tr.LineString()
	if len(line) != 3 || line[2][0] != 2 || line[2][1] != 0 {
		t.Fatalf("unexpected line string: %v", line)
	}

	data, err := json.Marshal(tr.GeoJSON())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string      `json:"type"`
				Coordinates [][]float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]float64 `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Type != "FeatureCollection" || len(decoded.Features) != 1 {
		t.Fatalf("unexpected collection: %s", data)
	}
	f := decoded.Features[0]
	if f.Geometry.Type != "LineString" || len(f.Geometry.Coordinates) != 3 {
		t.Fatalf("unexpected geometry: %s", data)
	}
	if math.Abs(f.Properties["total_km"]-tr.TotalKm()) > 1e-9 {
		t.Fatalf("unexpected total_km: %v", f.Properties["total_km"])
	}
}
