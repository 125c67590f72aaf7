package reconstruction

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"mprview/internal/models"
)

// maxWindowSamples bounds how many voxels AutoWindow looks at
const maxWindowSamples = 1 << 16

// AutoWindow estimates a display window spanning the lowPct..highPct
// quantiles (0..1) of the calibrated intensities. Large volumes are sampled
// with a fixed stride, so the result is deterministic.
func AutoWindow(vol *models.Volume, lowPct, highPct float64) models.WindowSetting {
	lowPct = math.Max(0, math.Min(1, lowPct))
	highPct = math.Max(0, math.Min(1, highPct))
	if highPct < lowPct {
		lowPct, highPct = highPct, lowPct
	}
	if len(vol.Data) == 0 {
		return models.WindowSetting{Center: vol.InitWL, Width: vol.InitWW}
	}

	stride := len(vol.Data) / maxWindowSamples
	if stride < 1 {
		stride = 1
	}
	samples := make([]float64, 0, len(vol.Data)/stride+1)
	for i := 0; i < len(vol.Data); i += stride {
		samples = append(samples, float64(vol.Data[i]))
	}
	sort.Float64s(samples)

	lo := stat.Quantile(lowPct, stat.Empirical, samples, nil)
	hi := stat.Quantile(highPct, stat.Empirical, samples, nil)

	return models.WindowSetting{
		Center: (lo + hi) / 2,
		Width:  math.Max(1, hi-lo),
	}
}
