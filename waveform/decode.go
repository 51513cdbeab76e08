// Package waveform decodes PCM WAV files and draws their amplitude envelope.
package waveform

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrNotWAV              = errors.New("not a RIFF/WAVE file")
	ErrUnsupportedFormat   = errors.New("only PCM WAV (audio format 1) is supported")
	ErrUnsupportedBitDepth = errors.New("only 8-bit or 16-bit PCM is supported")
)

const formatPCM = 1

// Header describes a decoded WAV stream
type Header struct {
	SampleRate    int `json:"sample_rate"`
	BitsPerSample int `json:"bits_per_sample"`
	NumChannels   int `json:"num_channels"`
	DataLength    int `json:"data_length"` // bytes of PCM data
}

// PCM holds interleaved samples scaled to [-1, 1)
type PCM struct {
	Header  Header
	Samples []float32
}

// Duration returns the playing time in seconds
func (p *PCM) Duration() float64 {
	frames := len(p.Samples)
	if p.Header.NumChannels > 0 {
		frames /= p.Header.NumChannels
	}
	if p.Header.SampleRate == 0 {
		return 0
	}
	return float64(frames) / float64(p.Header.SampleRate)
}

// ReadHeader validates the stream and returns its format without reading PCM data
func ReadHeader(r io.ReadSeeker) (Header, error) {
	d := wav.NewDecoder(r)
	h, err := readHeader(d)
	if err != nil {
		return Header{}, err
	}
	if err := d.FwdToPCM(); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	h.DataLength = int(d.PCMLen())
	return h, nil
}

func readHeader(d *wav.Decoder) (Header, error) {
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if d.NumChans == 0 {
		return Header{}, fmt.Errorf("%w: fmt chunk not found", ErrNotWAV)
	}
	if d.WavAudioFormat != formatPCM {
		return Header{}, fmt.Errorf("%w: got format %d", ErrUnsupportedFormat, d.WavAudioFormat)
	}
	if d.BitDepth != 8 && d.BitDepth != 16 {
		return Header{}, fmt.Errorf("%w: got %d bits", ErrUnsupportedBitDepth, d.BitDepth)
	}
	return Header{
		SampleRate:    int(d.SampleRate),
		BitsPerSample: int(d.BitDepth),
		NumChannels:   int(d.NumChans),
	}, nil
}

// Decode reads a PCM WAV stream. 16-bit samples scale by 1/32768; 8-bit samples
// are unsigned and scale as (v-128)/128.
func Decode(r io.ReadSeeker) (*PCM, error) {
	d := wav.NewDecoder(r)
	h, err := readHeader(d)
	if err != nil {
		return nil, err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	h.DataLength = len(buf.Data) * h.BitsPerSample / 8

	return &PCM{Header: h, Samples: scale(buf, h.BitsPerSample)}, nil
}

func scale(buf *audio.IntBuffer, bits int) []float32 {
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		if bits == 8 {
			out[i] = float32(v-128) / 128
		} else {
			out[i] = float32(v) / 32768
		}
	}
	return out
}
