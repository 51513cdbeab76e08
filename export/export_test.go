package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kaireichart/track-replay/track"
)

func testTrack() *track.Track {
	return track.New([]track.GeoSample{
		{Time: 0, Lat: 0, Lng: 0},
		{Time: 10, Lat: 0, Lng: 1},
		{Time: 25, Lat: 0, Lng: 2},
	})
}

func TestTimeline(t *testing.T) {
	rows, err := Timeline(testTrack(), 10)
	if err != nil {
		t.Fatal(err)
	}
	wantTimes := []float64{0, 10, 20, 25}
	if len(rows) != len(wantTimes) {
		t.Fatalf("expected %d rows, got %d", len(wantTimes), len(rows))
	}
	for i, want := range wantTimes {
		if rows[i].Time != want {
			t.Errorf("row %d: expected time %v, got %v", i, want, rows[i].Time)
		}
	}
	if rows[1].Lng != 1 || rows[0].CoveredKm != 0 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if math.Abs(rows[3].CoveredKm-testTrack().TotalKm()) > 1e-9 {
		t.Fatalf("last row should cover the whole track, got %v", rows[3].CoveredKm)
	}
}

func TestTimelineEmptyTrack(t *testing.T) {
	rows, err := Timeline(track.New(nil), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Lat != track.DefaultPosition.Lat {
		t.Fatalf("expected one default row, got %+v", rows)
	}
}

func TestTimelineInvalidStep(t *testing.T) {
	for _, step := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := Timeline(testTrack(), step); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("step %v: expected ErrInvalidStep, got %v", step, err)
		}
	}
	if _, err := Timeline(testTrack(), 1e-6); !errors.Is(err, ErrTooManyRows) {
		t.Errorf("expected ErrTooManyRows, got %v", err)
	}
}

func readZip(t *testing.T, data []byte) map[string][][]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	out := map[string][][]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		records, err := csv.NewReader(rc).ReadAll()
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = records
	}
	return out
}

func TestExportCSVZip(t *testing.T) {
	buf, err := ExportCSVZip(testTrack(), 5)
	if err != nil {
		t.Fatal(err)
	}
	files := readZip(t, buf.Bytes())

	timeline := files["timeline.csv"]
	if len(timeline) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d", len(timeline))
	}
	if strings.Join(timeline[0], ",") != "time,lat,lng,covered_km" {
		t.Fatalf("unexpected header: %v", timeline[0])
	}
	if timeline[3][0] != "10.000" || timeline[3][2] != "1.000000" {
		t.Fatalf("unexpected row: %v", timeline[3])
	}

	summary := files["summary.csv"]
	if len(summary) != 6 || summary[1][1] != "3" || summary[5][1] != "6" {
		t.Fatalf("unexpected summary: %v", summary)
	}
}

func TestExportXLSX(t *testing.T) {
	buf, err := ExportXLSX(testTrack(), 5)
	if err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Timeline")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 7 || rows[0][0] != "Time (s)" {
		t.Fatalf("unexpected timeline sheet: %v", rows)
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 6 || summary[1][0] != "Samples" || summary[1][1] != "3" {
		t.Fatalf("unexpected summary sheet: %v", summary)
	}
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)
	if got := GenerateFilename("csv", now); got != "timeline_2024-03-09_14-05-06.zip" {
		t.Errorf("unexpected csv name %q", got)
	}
	if got := GenerateFilename("xlsx", now); got != "timeline_2024-03-09_14-05-06.xlsx" {
		t.Errorf("unexpected xlsx name %q", got)
	}
}

func TestHandleTimelineExport(t *testing.T) {
	mux := http.NewServeMux()
	SetupHandlers(mux, testTrack())

	tests := []struct {
		name        string
		method      string
		query       string
		code        int
		contentType string
	}{
		{"csv default", http.MethodGet, "", http.StatusOK, "application/zip"},
		{"xlsx", http.MethodGet, "?format=xlsx&step=2.5", http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"bad format", http.MethodGet, "?format=pdf", http.StatusBadRequest, ""},
		{"bad step", http.MethodGet, "?step=abc", http.StatusBadRequest, ""},
		{"zero step", http.MethodGet, "?step=0", http.StatusBadRequest, ""},
		{"post", http.MethodPost, "", http.StatusMethodNotAllowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, "/export/timeline"+tt.query, nil))
			if rec.Code != tt.code {
				body, _ := io.ReadAll(rec.Body)
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, body)
			}
			if tt.contentType != "" {
				if got := rec.Header().Get("Content-Type"); got != tt.contentType {
					t.Fatalf("unexpected content type %q", got)
				}
				if !strings.Contains(rec.Header().Get("Content-Disposition"), "attachment") {
					t.Fatal("expected an attachment")
				}
			}
		})
	}
}
