package main

import (
	"image"
	"strings"

	"golang.org/x/image/draw"

	"mprview/internal/models"
	"mprview/pkg/visualization"
)

// ramp runs from dark to bright
const ramp = " .:-=+*#%@"

// preview renders a frame as text, cols characters wide. Terminal cells are
// roughly twice as tall as wide, so half as many rows are used.
func preview(frame models.RenderedFrame, cols int) string {
	if cols <= 0 || frame.Width == 0 || frame.Height == 0 {
		return ""
	}
	rows := cols * frame.Height / frame.Width / 2
	if rows < 1 {
		rows = 1
	}

	src := visualization.FrameImage(frame)
	dst := image.NewGray(image.Rect(0, 0, cols, rows))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var b strings.Builder
	b.Grow((cols + 1) * rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			g := int(dst.GrayAt(x, y).Y)
			b.WriteByte(ramp[g*(len(ramp)-1)/255])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
