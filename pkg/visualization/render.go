// Package visualization turns a volume into displayable frames: it reslices
// the volume along one of the three orthogonal planes, applies the display
// window and resamples the result to a fixed display size.
package visualization

import (
	"image"

	"golang.org/x/image/draw"

	"mprview/internal/models"
)

// Default display size of a rendered frame
const (
	DefaultDisplayWidth  = 640
	DefaultDisplayHeight = 640
)

// Renderer produces fixed-size frames from a volume. The output size does
// not depend on the plane's native shape, so non-square planes are stretched.
type Renderer struct {
	width  int
	height int
}

// Option configures a Renderer
type Option func(r *Renderer)

// WithDisplaySize sets the frame size; non-positive values keep the default
func WithDisplaySize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// NewRenderer creates a renderer, 640x640 unless configured otherwise
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{width: DefaultDisplayWidth, height: DefaultDisplayHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DisplaySize returns the frame width and height
func (r *Renderer) DisplaySize() (width, height int) {
	return r.width, r.height
}

// Render reslices, windows and resamples the selected plane. Every call
// recomputes the frame from the volume; identical inputs give identical
// output.
func (r *Renderer) Render(vol *models.Volume, sel models.PlaneSelection, win models.WindowSetting) (models.RenderedFrame, error) {
	s, err := Reslice(vol, sel)
	if err != nil {
		return models.RenderedFrame{}, err
	}

	src := &image.Gray{
		Pix:    WindowPlane(s, win),
		Stride: s.Width,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
	dst := image.NewGray(image.Rect(0, 0, r.width, r.height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return models.RenderedFrame{Width: r.width, Height: r.height, Pixels: dst.Pix}, nil
}

// FrameImage wraps a rendered frame as an image without copying
func FrameImage(f models.RenderedFrame) *image.Gray {
	return &image.Gray{
		Pix:    f.Pixels,
		Stride: f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}
