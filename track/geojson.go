package track

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LineString returns the path in lng/lat order for map overlays
func (tr *Track) LineString() orb.LineString {
	line := make(orb.LineString, 0, len(tr.samples))
	for _, s := range tr.samples {
		line = append(line, orb.Point{s.Lng, s.Lat})
	}
	return line
}

// GeoJSON returns the path as a feature collection with the track totals as properties
func (tr *Track) GeoJSON() *geojson.FeatureCollection {
	feature := geojson.NewFeature(tr.LineString())
	feature.Properties["total_km"] = tr.TotalKm()
	feature.Properties["duration"] = tr.Duration()
	feature.Properties["samples"] = tr.Len()

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc
}
