package reconstruction

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"mprview/internal/logging"
	"mprview/internal/models"
)

// Source yields the parsed slice records found under a directory, in a
// stable discovery order. Records for files that could not be decoded are
// returned without pixels so they still count as discovered files.
type Source interface {
	Slices(ctx context.Context, dir string) ([]models.SliceRecord, error)
}

// Reconstructor assembles volumes from the records supplied by a Source
type Reconstructor struct {
	source Source
}

// NewReconstructor creates a reconstructor reading from src
func NewReconstructor(src Source) *Reconstructor {
	return &Reconstructor{source: src}
}

// Load reads the series under dir and assembles it into a new Volume.
// Either a complete Volume or an error is returned, never both.
func (r *Reconstructor) Load(ctx context.Context, dir string) (*models.Volume, error) {
	records, err := r.source.Slices(ctx, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading series from %s", dir)
	}
	vol, err := Assemble(records)
	if err != nil {
		return nil, err
	}
	logging.Infof("Loaded %d slices with dimensions %dx%d from %s", vol.Depth, vol.Width, vol.Height, dir)
	return vol, nil
}

// LoadSeries is shorthand for NewReconstructor(src).Load(ctx, dir)
func LoadSeries(ctx context.Context, src Source, dir string) (*models.Volume, error) {
	return NewReconstructor(src).Load(ctx, dir)
}

// Assemble orders, calibrates and stacks records into a Volume.
//
// Records are ordered by instance number, falling back to the Z component of
// the image position and then to 0. The sort is stable, so records sharing a
// key (including all records missing both tags) keep their discovery order.
func Assemble(records []models.SliceRecord) (*models.Volume, error) {
	if len(records) == 0 {
		return nil, ErrEmptySeries
	}

	slices := make([]models.SliceRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasPixels() {
			slices = append(slices, rec)
		} else {
			logging.Debugf("Skipping %s: no pixel data", rec.Source)
		}
	}
	if len(slices) == 0 {
		return nil, ErrNoPixelData
	}

	type keyed struct {
		rec *models.SliceRecord
		key float64
	}
	ordered := make([]keyed, len(slices))
	for i := range slices {
		ordered[i] = keyed{rec: &slices[i], key: sortKey(slices[i])}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].key < ordered[j].key
	})
	order := make([]*models.SliceRecord, len(ordered))
	for i, k := range ordered {
		order[i] = k.rec
	}

	first := order[0]
	rows, cols := first.Rows, first.Cols
	if rows <= 0 || cols <= 0 {
		return nil, &GeometryError{Source: first.Source, Rows: rows, Cols: cols, WantRows: rows, WantCols: cols, Samples: len(first.Pixels)}
	}
	sliceSize := rows * cols

	vol := &models.Volume{
		Data:           make([]int32, sliceSize*len(order)),
		Width:          cols,
		Height:         rows,
		Depth:          len(order),
		SliceThickness: first.SliceThickness.FloatOr(0),
		FileCount:      len(records),
	}

	for z, rec := range order {
		if rec.Rows != rows || rec.Cols != cols || len(rec.Pixels) != sliceSize {
			return nil, &GeometryError{
				Source:   rec.Source,
				Rows:     rec.Rows,
				Cols:     rec.Cols,
				WantRows: rows,
				WantCols: cols,
				Samples:  len(rec.Pixels),
			}
		}
		calibrate(vol.Data[z*sliceSize:(z+1)*sliceSize], rec)
	}

	vol.Min, vol.Max = findMinMax(vol.Data)
	vol.InitWL, vol.InitWW = defaultWindow(first, vol.Min, vol.Max)

	return vol, nil
}

// sortKey returns the ordering key for a record
func sortKey(rec models.SliceRecord) float64 {
	if n, ok := rec.InstanceNumber.Int(); ok {
		return float64(n)
	}
	if z, ok := rec.ImagePosition.Float(2); ok {
		return z
	}
	return 0
}

// calibrate writes round(raw*slope + intercept) for every sample of rec into dst
func calibrate(dst []int32, rec *models.SliceRecord) {
	slope := rec.RescaleSlope.FloatOr(1.0)
	intercept := rec.RescaleIntercept.FloatOr(0.0)

	if slope == 1 && intercept == 0 {
		for i, raw := range rec.Pixels {
			dst[i] = saturate(float64(raw))
		}
		return
	}
	for i, raw := range rec.Pixels {
		dst[i] = saturate(math.Round(float64(raw)*slope + intercept))
	}
}

// saturate clamps v to the int32 range; NaN becomes 0
func saturate(v float64) int32 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

// findMinMax returns the minimum and maximum values in a slice
func findMinMax(data []int32) (min, max int32) {
	if len(data) == 0 {
		return 0, 0
	}

	min = data[0]
	max = data[0]

	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return min, max
}

// defaultWindow uses the first slice's window tags, falling back to the
// intensity range when they are missing or unusable
func defaultWindow(first *models.SliceRecord, vmin, vmax int32) (wl, ww float64) {
	wl, ok := first.WindowCenter.FirstFloat()
	if !ok {
		wl = (float64(vmin) + float64(vmax)) / 2
	}
	ww, ok = first.WindowWidth.FirstFloat()
	if !ok || ww <= 0 {
		ww = math.Max(1, (float64(vmax)-float64(vmin))/2)
	}
	return wl, ww
}
