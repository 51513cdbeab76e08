package track

// GeoSample is one recorded point of a track
type GeoSample struct {
	Time float64 `json:"time" validate:"gte=0"`          // seconds from the start of the recording
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`   // degrees
	Lng  float64 `json:"lng" validate:"gte=-180,lte=180"` // degrees
}

// Position is a geographic coordinate handed to the map
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultPosition is returned for an empty sample sequence (Moscow city centre)
var DefaultPosition = Position{Lat: 55.7558, Lng: 37.6176}

// Position returns the coordinates of the sample
func (s GeoSample) Position() Position {
	return Position{Lat: s.Lat, Lng: s.Lng}
}
