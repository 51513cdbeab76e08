package waveform

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kaireichart/track-replay/metrics"
)

// buildWAV assembles a canonical RIFF/WAVE file around raw PCM data
func buildWAV(format, channels uint16, rate uint32, bits uint16, data []byte) []byte {
	var b bytes.Buffer
	blockAlign := channels * bits / 8
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+len(data)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, format)
	binary.Write(&b, binary.LittleEndian, channels)
	binary.Write(&b, binary.LittleEndian, rate)
	binary.Write(&b, binary.LittleEndian, rate*uint32(blockAlign))
	binary.Write(&b, binary.LittleEndian, blockAlign)
	binary.Write(&b, binary.LittleEndian, bits)
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func pcm16(values ...int16) []byte {
	var b bytes.Buffer
	for _, v := range values {
		binary.Write(&b, binary.LittleEndian, v)
	}
	return b.Bytes()
}

func TestDecode16Bit(t *testing.T) {
	file := buildWAV(1, 1, 8000, 16, pcm16(0, 16384, -32768, 32767))
	pcm, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}

	want := []float32{0, 0.5, -1, 32767.0 / 32768}
	if len(pcm.Samples) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(pcm.Samples))
	}
	for i := range want {
		if pcm.Samples[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], pcm.Samples[i])
		}
	}
	if pcm.Header.SampleRate != 8000 || pcm.Header.BitsPerSample != 16 || pcm.Header.NumChannels != 1 || pcm.Header.DataLength != 8 {
		t.Fatalf("unexpected header: %+v", pcm.Header)
	}
	if math.Abs(pcm.Duration()-4.0/8000) > 1e-12 {
		t.Fatalf("unexpected duration %v", pcm.Duration())
	}
}

func TestDecode8Bit(t *testing.T) {
	file := buildWAV(1, 1, 8000, 8, []byte{128, 255, 0, 192})
	pcm, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	want := []float32{0, 127.0 / 128, -1, 0.5}
	for i := range want {
		if pcm.Samples[i] != want[i] {
			t.Errorf("sample %d: expected %v, got %v", i, want[i], pcm.Samples[i])
		}
	}
}

func TestDecodeStereoKeepsInterleaving(t *testing.T) {
	file := buildWAV(1, 2, 1000, 16, pcm16(16384, -16384, 8192, -8192))
	pcm, err := Decode(bytes.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	if len(pcm.Samples) != 4 || pcm.Samples[1] != -0.5 {
		t.Fatalf("unexpected samples: %v", pcm.Samples)
	}
	if math.Abs(pcm.Duration()-2.0/1000) > 1e-12 {
		t.Fatalf("unexpected duration %v", pcm.Duration())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		file []byte
		want error
	}{
		{"not riff", []byte("this is definitely not a wav file at all"), ErrNotWAV},
		{"float format", buildWAV(3, 1, 8000, 32, make([]byte, 8)), ErrUnsupportedFormat},
		{"24 bit", buildWAV(1, 1, 8000, 24, make([]byte, 6)), ErrUnsupportedBitDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(bytes.NewReader(tt.file)); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReadHeader(t *testing.T) {
	file := buildWAV(1, 2, 44100, 16, pcm16(1, 2, 3, 4))
	h, err := ReadHeader(bytes.NewReader(file))
	if err != nil {
		t.Fatal(err)
	}
	want := Header{SampleRate: 44100, BitsPerSample: 16, NumChannels: 2, DataLength: 8}
	if h != want {
		t.Fatalf("expected %+v, got %+v", want, h)
	}
}

func TestBuildEnvelope(t *testing.T) {
	samples := []float32{0.1, -0.2, 0.4, -0.1, 0.05, 0.0, -0.8, 0.2}
	env := BuildEnvelope(samples, 4)

	want := []Column{
		{Min: -0.2, Max: 0.1, Peak: 0.2},
		{Min: -0.1, Max: 0.4, Peak: 0.4},
		{Min: 0, Max: 0.05, Peak: 0.05},
		{Min: -0.8, Max: 0.2, Peak: 0.8},
	}
	for i := range want {
		if env.Columns[i] != want[i] {
			t.Errorf("column %d: expected %+v, got %+v", i, want[i], env.Columns[i])
		}
	}
	if env.Norm != 0.8 {
		t.Fatalf("expected norm 0.8, got %v", env.Norm)
	}
	if env.Amplitude(3) != 1 {
		t.Fatalf("loudest column should be full scale, got %v", env.Amplitude(3))
	}
}

func TestBuildEnvelopeEdges(t *testing.T) {
	t.Run("silence", func(t *testing.T) {
		env := BuildEnvelope(make([]float32, 10), 5)
		if env.Norm != 1 || env.Amplitude(0) != 0 {
			t.Fatalf("unexpected silent envelope: %+v", env)
		}
	})
	t.Run("fewer samples than columns", func(t *testing.T) {
		env := BuildEnvelope([]float32{0.5, -0.25}, 5)
		if len(env.Columns) != 5 {
			t.Fatalf("expected 5 columns, got %d", len(env.Columns))
		}
		if env.Columns[1].Peak != 0.25 || env.Columns[4] != (Column{}) {
			t.Fatalf("unexpected columns: %+v", env.Columns)
		}
	})
	t.Run("remainder samples dropped", func(t *testing.T) {
		env := BuildEnvelope([]float32{0.1, 0.1, 0.1, 0.9}, 3)
		if env.Norm != 0.1 {
			t.Fatalf("expected the trailing sample outside the last column, got norm %v", env.Norm)
		}
	})
	t.Run("zero columns", func(t *testing.T) {
		if env := BuildEnvelope([]float32{1}, 0); len(env.Columns) != 0 {
			t.Fatalf("expected no columns, got %d", len(env.Columns))
		}
	})
}

func TestRender(t *testing.T) {
	pcm := &PCM{Samples: []float32{0, 0.5, -0.5, 1, -1, 0.25}}
	var buf bytes.Buffer
	if err := Render(&buf, pcm, Options{Width: 120, Height: 60}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 60 {
		t.Fatalf("unexpected size %v", b)
	}

	// left edge column is the waveform colour near the peak line
	r, g, _, _ := img.At(3, 30).RGBA()
	if g <= r {
		t.Fatalf("expected green waveform fill near the centre, got r=%d g=%d", r, g)
	}
}

func TestRenderEmptyUsesDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, nil, Options{}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 200 {
		t.Fatalf("unexpected default size %v", b)
	}
}

func upload(t *testing.T, path string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "clip.wav")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(file)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandlers(t *testing.T) {
	mux := http.NewServeMux()
	SetupHandlers(mux, Options{Width: 200, Height: 80})
	wavFile := buildWAV(1, 1, 8000, 16, pcm16(0, 8000, -8000, 16000, -16000, 0))

	t.Run("png", func(t *testing.T) {
		before := testutil.ToFloat64(metrics.WaveformRendersTotal.WithLabelValues("ok"))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, upload(t, "/waveform?width=64", wavFile))
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("unexpected response %d %q: %s", rec.Code, rec.Header().Get("Content-Type"), rec.Body.String())
		}
		img, err := png.Decode(rec.Body)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 80 {
			t.Fatalf("unexpected size %v", b)
		}
		if got := testutil.ToFloat64(metrics.WaveformRendersTotal.WithLabelValues("ok")) - before; got != 1 {
			t.Fatalf("expected one ok render, got %v", got)
		}
	})

	t.Run("info", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, upload(t, "/waveform/info", wavFile))
		var h Header
		if err := json.NewDecoder(rec.Body).Decode(&h); err != nil {
			t.Fatal(err)
		}
		if h.SampleRate != 8000 || h.DataLength != 12 {
			t.Fatalf("unexpected header: %+v", h)
		}
	})

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{"get", httptest.NewRequest(http.MethodGet, "/waveform", nil), http.StatusMethodNotAllowed},
		{"no file", httptest.NewRequest(http.MethodPost, "/waveform", nil), http.StatusBadRequest},
		{"not wav", upload(t, "/waveform", []byte("RIFX....nope")), http.StatusBadRequest},
		{"unsupported", upload(t, "/waveform", buildWAV(3, 1, 8000, 32, make([]byte, 8))), http.StatusUnsupportedMediaType},
		{"bad width", upload(t, "/waveform?width=-3", wavFile), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, tt.req)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}
