package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kaireichart/track-replay/metrics"
	"github.com/kaireichart/track-replay/track"
)

// SetupHandlers registers the timeline export endpoint for tr on mux
func SetupHandlers(mux *http.ServeMux, tr *track.Track) {
	mux.HandleFunc("/export/timeline", func(w http.ResponseWriter, r *http.Request) {
		handleTimelineExport(w, r, tr)
	})
}

// handleTimelineExport serves ?format=csv|xlsx&step=<seconds>
func handleTimelineExport(w http.ResponseWriter, r *http.Request, tr *track.Track) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	step := 1.0
	if s := r.URL.Query().Get("step"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			http.Error(w, "Invalid step", http.StatusBadRequest)
			return
		}
		step = v
	}

	var (
		buf         *bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case "csv":
		buf, err = ExportCSVZip(tr, step)
		contentType = "application/zip"
	case "xlsx":
		buf, err = ExportXLSX(tr, step)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		err = fmt.Errorf("%w %q, use 'csv' or 'xlsx'", ErrUnknownFormat, format)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidStep) || errors.Is(err, ErrTooManyRows) || errors.Is(err, ErrUnknownFormat) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	metrics.ExportsTotal.WithLabelValues(format).Inc()
	slog.Info("timeline_export", "format", format, "step", step, "bytes", buf.Len())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", GenerateFilename(format, time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}
