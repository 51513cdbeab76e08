package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kaireichart/track-replay/track"
)

const maxRows = 1_000_000

var (
	ErrInvalidStep   = errors.New("step must be a positive number of seconds")
	ErrTooManyRows   = errors.New("timeline would exceed the row limit")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Row is the replay state at one query time
type Row struct {
	Time      float64
	Lat       float64
	Lng       float64
	CoveredKm float64
}

// Summary describes a track and how it was sampled
type Summary struct {
	Samples     int
	DurationSec float64
	TotalKm     float64
	StepSec     float64
	Rows        int
}

// Timeline samples the replay every step seconds from 0 through the track
// duration. The last row is always at the duration itself.
func Timeline(tr *track.Track, step float64) ([]Row, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, ErrInvalidStep
	}

	duration := tr.Duration()
	if duration/step+1 > maxRows {
		return nil, ErrTooManyRows
	}

	var rows []Row
	add := func(t float64) {
		p := tr.PositionAt(t)
		rows = append(rows, Row{Time: t, Lat: p.Lat, Lng: p.Lng, CoveredKm: tr.DistanceCoveredKm(t)})
	}

	n := int(math.Floor(duration / step))
	for i := 0; i <= n; i++ {
		add(float64(i) * step)
	}
	if last := rows[len(rows)-1].Time; last < duration {
		add(duration)
	}
	return rows, nil
}

func summarize(tr *track.Track, step float64, rows []Row) Summary {
	return Summary{
		Samples:     tr.Len(),
		DurationSec: tr.Duration(),
		TotalKm:     tr.TotalKm(),
		StepSec:     step,
		Rows:        len(rows),
	}
}

// ExportCSVZip returns a ZIP holding timeline.csv and summary.csv
func ExportCSVZip(tr *track.Track, step float64) (*bytes.Buffer, error) {
	rows, err := Timeline(tr, step)
	if err != nil {
		return nil, err
	}

	timelineData, err := generateTimelineCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to generate timeline CSV: %w", err)
	}
	summaryData, err := generateSummaryCSV(summarize(tr, step, rows))
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary CSV: %w", err)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, file := range []struct {
		name string
		data []byte
	}{
		{"timeline.csv", timelineData},
		{"summary.csv", summaryData},
	} {
		f, err := w.Create(file.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s in zip: %w", file.name, err)
		}
		if _, err := f.Write(file.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf, nil
}

func generateTimelineCSV(rows []Row) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write([]string{"time", "lat", "lng", "covered_km"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			fmt.Sprintf("%.3f", r.Time),
			fmt.Sprintf("%.6f", r.Lat),
			fmt.Sprintf("%.6f", r.Lng),
			fmt.Sprintf("%.4f", r.CoveredKm),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func generateSummaryCSV(s Summary) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	records := [][]string{
		{"field", "value"},
		{"samples", fmt.Sprint(s.Samples)},
		{"duration_sec", fmt.Sprintf("%.3f", s.DurationSec)},
		{"total_km", fmt.Sprintf("%.4f", s.TotalKm)},
		{"step_sec", fmt.Sprintf("%.3f", s.StepSec)},
		{"rows", fmt.Sprint(s.Rows)},
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write summary CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX returns a workbook with a Summary sheet and a Timeline sheet
func ExportXLSX(tr *track.Track, step float64) (*bytes.Buffer, error) {
	rows, err := Timeline(tr, step)
	if err != nil {
		return nil, err
	}
	s := summarize(tr, step, rows)

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Summary")
	summary := [][]any{
		{"Field", "Value"},
		{"Samples", s.Samples},
		{"Duration (s)", s.DurationSec},
		{"Total distance (km)", s.TotalKm},
		{"Step (s)", s.StepSec},
		{"Rows", s.Rows},
	}
	for i, r := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Summary", cell, &r); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if _, err := f.NewSheet("Timeline"); err != nil {
		return nil, fmt.Errorf("failed to create timeline sheet: %w", err)
	}
	header := []any{"Time (s)", "Latitude", "Longitude", "Covered (km)"}
	if err := f.SetSheetRow("Timeline", "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write timeline header: %w", err)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{r.Time, r.Lat, r.Lng, r.CoveredKm}
		if err := f.SetSheetRow("Timeline", cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write timeline row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// GenerateFilename names a download after the format and the export time
func GenerateFilename(format string, now time.Time) string {
	ext := "zip"
	if format == "xlsx" {
		ext = "xlsx"
	}
	return fmt.Sprintf("timeline_%s.%s", now.Format("2006-01-02_15-04-05"), ext)
}
