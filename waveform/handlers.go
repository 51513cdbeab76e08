package waveform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kaireichart/track-replay/metrics"
)

const maxUploadBytes = 64 << 20

// SetupHandlers registers the upload endpoints; defaults size the PNG when the
// request does not
func SetupHandlers(mux *http.ServeMux, defaults Options) {
	mux.HandleFunc("/waveform", func(w http.ResponseWriter, r *http.Request) {
		handleWaveform(w, r, defaults)
	})
	mux.HandleFunc("/waveform/info", handleInfo)
}

func handleWaveform(w http.ResponseWriter, r *http.Request, defaults Options) {
	data, ok := readUpload(w, r)
	if !ok {
		return
	}

	opts := defaults
	for _, p := range []struct {
		key string
		dst *int
		max int
	}{
		{"width", &opts.Width, 8192},
		{"height", &opts.Height, 4096},
	} {
		s := r.URL.Query().Get(p.key)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > p.max {
			fail(w, fmt.Sprintf("Invalid %s", p.key), http.StatusBadRequest)
			return
		}
		*p.dst = v
	}

	pcm, err := Decode(bytes.NewReader(data))
	if err != nil {
		fail(w, err.Error(), statusFor(err))
		return
	}

	var png bytes.Buffer
	if err := Render(&png, pcm, opts); err != nil {
		fail(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.WaveformRendersTotal.WithLabelValues("ok").Inc()
	slog.Info("waveform_rendered", "samples", len(pcm.Samples), "duration", pcm.Duration())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(png.Len()))
	w.Write(png.Bytes())
}

func handleInfo(w http.ResponseWriter, r *http.Request) {
	data, ok := readUpload(w, r)
	if !ok {
		return
	}

	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		fail(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h)
}

// readUpload returns the bytes of the multipart "file" field
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		fail(w, "Missing file upload", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(w, fmt.Sprintf("Failed to read upload: %v", err), http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotWAV):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrUnsupportedBitDepth):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, msg string, status int) {
	label := "error"
	if status < http.StatusInternalServerError {
		label = "rejected"
	}
	metrics.WaveformRendersTotal.WithLabelValues(label).Inc()
	http.Error(w, msg, status)
}
