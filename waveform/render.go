package waveform

import (
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

const (
	gridSpacing    = 40
	amplitudeScale = 0.45
)

// Options size the rendered image
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 200
	}
	return o
}

// Draw paints the waveform of pcm onto a new context
func Draw(pcm *PCM, opts Options) *gg.Context {
	opts = opts.withDefaults()
	width, height := float64(opts.Width), float64(opts.Height)
	middle := height / 2

	dc := gg.NewContext(opts.Width, opts.Height)

	bg := gg.NewLinearGradient(0, 0, 0, height)
	bg.AddColorStop(0, color.RGBA{0x05, 0x07, 0x12, 0xff})
	bg.AddColorStop(1, color.RGBA{0x0b, 0x10, 0x20, 0xff})
	dc.SetFillStyle(bg)
	dc.DrawRectangle(0, 0, width, height)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 0.05)
	dc.SetLineWidth(1)
	for x := 0.0; x < width; x += gridSpacing {
		dc.DrawLine(x+0.5, 0, x+0.5, height)
	}
	for y := 0.0; y < height; y += gridSpacing {
		dc.DrawLine(0, y+0.5, width, y+0.5)
	}
	dc.Stroke()

	dc.SetRGBA(1, 1, 1, 0.15)
	dc.DrawLine(0, middle+0.5, width, middle+0.5)
	dc.Stroke()

	if pcm == nil || len(pcm.Samples) == 0 {
		return dc
	}

	env := BuildEnvelope(pcm.Samples, opts.Width)
	top := func(x int) float64 { return middle - env.Amplitude(x)*height*amplitudeScale }
	bottom := func(x int) float64 { return middle + env.Amplitude(x)*height*amplitudeScale }

	dc.MoveTo(0, middle)
	for x := range env.Columns {
		dc.LineTo(float64(x), top(x))
	}
	for x := len(env.Columns) - 1; x >= 0; x-- {
		dc.LineTo(float64(x), bottom(x))
	}
	dc.ClosePath()
	dc.SetRGBA255(76, 175, 80, 89)
	dc.Fill()

	dc.SetHexColor("#4caf50")
	dc.SetLineWidth(1.5)
	for x := range env.Columns {
		if x == 0 {
			dc.MoveTo(0, top(0))
			continue
		}
		dc.LineTo(float64(x), top(x))
	}
	dc.Stroke()

	return dc
}

// Render writes the waveform of pcm as a PNG
func Render(w io.Writer, pcm *PCM, opts Options) error {
	return Draw(pcm, opts).EncodePNG(w)
}
