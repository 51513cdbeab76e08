package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tkrajina/gpxgo/gpx"
)

// Format names a track file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatGPX  Format = "gpx"
)

var (
	ErrNotMonotonic  = errors.New("samples are not ordered by time")
	ErrUnknownFormat = errors.New("unknown track format")
	ErrMissingTime   = errors.New("gpx point without timestamp")
)

var validate = validator.New()

// LoadOptions controls how a track file is turned into a Track
type LoadOptions struct {
	Format Format
	// Sort orders out-of-order samples by time instead of rejecting them
	Sort bool
}

// LoadFile reads a track from disk. The format falls back to the file extension.
func LoadFile(path string, opts LoadOptions) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track file: %w", err)
	}
	defer file.Close()

	if opts.Format == "" {
		opts.Format = FormatFromPath(path)
	}
	return Load(file, opts)
}

// FormatFromPath guesses the format from a file name
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".gpx") {
		return FormatGPX
	}
	return FormatJSON
}

// Load parses, orders and validates samples and builds a Track
func Load(r io.Reader, opts LoadOptions) (*Track, error) {
	var (
		samples []GeoSample
		err     error
	)
	switch opts.Format {
	case FormatJSON, "":
		samples, err = ParseJSON(r)
	case FormatGPX:
		samples, err = ParseGPX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	if err != nil {
		return nil, err
	}

	if opts.Sort {
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].Time < samples[j].Time
		})
	}
	if err := Validate(samples); err != nil {
		return nil, err
	}
	return New(samples), nil
}

// ParseJSON reads an array of {"time","lat","lng"} records
func ParseJSON(r io.Reader) ([]GeoSample, error) {
	var samples []GeoSample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, fmt.Errorf("failed to parse track JSON: %w", err)
	}
	return samples, nil
}

// ParseGPX flattens all tracks and segments of a GPX document. Sample times are
// seconds since the first point.
func ParseGPX(r io.Reader) ([]GeoSample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GPX: %w", err)
	}
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}

	var samples []GeoSample
	var start *gpx.GPXPoint
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for i := range seg.Points {
				point := &seg.Points[i]
				if point.Timestamp.IsZero() {
					return nil, fmt.Errorf("%w at %.6f,%.6f", ErrMissingTime, point.Latitude, point.Longitude)
				}
				if start == nil {
					start = point
				}
				samples = append(samples, GeoSample{
					Time: point.Timestamp.Sub(start.Timestamp).Seconds(),
					Lat:  point.Latitude,
					Lng:  point.Longitude,
				})
			}
		}
	}
	return samples, nil
}

// Validate checks coordinate ranges and that samples are ordered by time
func Validate(samples []GeoSample) error {
	for i, s := range samples {
		if err := validate.Struct(s); err != nil {
			return fmt.Errorf("invalid sample %d: %w", i, err)
		}
		if i > 0 && s.Time < samples[i-1].Time {
			return fmt.Errorf("%w: sample %d at %.3fs follows %.3fs", ErrNotMonotonic, i, s.Time, samples[i-1].Time)
		}
	}
	return nil
}
