package visualization

import (
	"math"

	"mprview/internal/models"
)

// Window maps a calibrated sample to an 8-bit gray level using a linear
// window of center wl and width ww. Samples below the window map to 0 and
// samples above it to 255. Widths below 1, and a NaN width, are treated as 1.
// A non-finite center or an infinite width maps every sample to 0.
func Window(sample int32, wl, ww float64) uint8 {
	if math.IsNaN(wl) || math.IsInf(wl, 0) || math.IsInf(ww, 0) {
		return 0
	}
	if math.IsNaN(ww) || ww < 1 {
		ww = 1
	}
	low := wl - ww/2
	high := wl + ww/2

	v := math.Max(low, math.Min(high, float64(sample)))
	return uint8(math.Round((v - low) / (high - low) * 255))
}

// WindowPlane applies Window to every sample of s
func WindowPlane(s *Slice2D, w models.WindowSetting) []uint8 {
	out := make([]uint8, len(s.Data))
	for i, v := range s.Data {
		out[i] = Window(v, w.Center, w.Width)
	}
	return out
}

// DefaultWindow returns the window derived when the volume was loaded
func DefaultWindow(vol *models.Volume) models.WindowSetting {
	return models.WindowSetting{Center: vol.InitWL, Width: vol.InitWW}
}
