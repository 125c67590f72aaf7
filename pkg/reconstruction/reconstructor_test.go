package reconstruction

import (
	"context"
	"errors"
	"testing"

	"mprview/internal/models"
)

// fakeSource returns a fixed list of records
type fakeSource struct {
	records []models.SliceRecord
	err     error
	dirs    []string
}

func (f *fakeSource) Slices(ctx context.Context, dir string) ([]models.SliceRecord, error) {
	f.dirs = append(f.dirs, dir)
	return f.records, f.err
}

// createTestRecord creates a 2x2 record whose samples all equal value
func createTestRecord(source string, value int) models.SliceRecord {
	return models.SliceRecord{
		Source: source,
		Rows:   2,
		Cols:   2,
		Pixels: []int{value, value, value, value},
	}
}

func sliceOrder(vol *models.Volume) []int32 {
	order := make([]int32, vol.Depth)
	for z := 0; z < vol.Depth; z++ {
		order[z] = vol.At(z, 0, 0)
	}
	return order
}

func equalInt32(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAssembleEmptySeries(t *testing.T) {
	_, err := Assemble(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries, got %v", err)
	}
}

func TestAssembleNoPixelData(t *testing.T) {
	records := []models.SliceRecord{
		{Source: "a.dcm", Rows: 2, Cols: 2},
		{Source: "b.dcm", Rows: 2, Cols: 2},
	}
	_, err := Assemble(records)
	if !errors.Is(err, ErrNoPixelData) {
		t.Errorf("Expected ErrNoPixelData, got %v", err)
	}
}

func TestAssembleOrdering(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r []models.SliceRecord)
		values []int
		want   []int32
	}{
		{
			name: "instance number",
			setup: func(r []models.SliceRecord) {
				r[0].InstanceNumber = models.TagValue{"5"}
				r[1].InstanceNumber = models.TagValue{"1"}
				r[2].InstanceNumber = models.TagValue{"3"}
			},
			values: []int{0, 1, 2},
			want:   []int32{1, 2, 0},
		},
		{
			name: "image position z",
			setup: func(r []models.SliceRecord) {
				r[0].ImagePosition = models.TagValue{"0", "0", "2.0"}
				r[1].ImagePosition = models.TagValue{"0", "0", "-1.0"}
				r[2].ImagePosition = models.TagValue{"0", "0", "0.5"}
			},
			values: []int{0, 1, 2},
			want:   []int32{1, 2, 0},
		},
		{
			name: "unparseable instance number falls back to position",
			setup: func(r []models.SliceRecord) {
				r[0].InstanceNumber = models.TagValue{"abc"}
				r[0].ImagePosition = models.TagValue{"0", "0", "9"}
				r[1].InstanceNumber = models.TagValue{"2"}
				r[2].InstanceNumber = models.TagValue{"1"}
			},
			values: []int{0, 1, 2},
			want:   []int32{2, 1, 0},
		},
		{
			name: "non-finite position uses the fallback key",
			setup: func(r []models.SliceRecord) {
				r[0].ImagePosition = models.TagValue{"0", "0", "3"}
				r[1].ImagePosition = models.TagValue{"0", "0", "NaN"}
				r[2].ImagePosition = models.TagValue{"0", "0", "1"}
				r[3].ImagePosition = models.TagValue{"0", "0", "2"}
			},
			values: []int{0, 1, 2, 3},
			want:   []int32{1, 2, 3, 0},
		},
		{
			name:   "missing tags keep discovery order",
			setup:  func(r []models.SliceRecord) {},
			values: []int{7, 3, 5},
			want:   []int32{7, 3, 5},
		},
		{
			name: "equal keys keep discovery order",
			setup: func(r []models.SliceRecord) {
				r[0].InstanceNumber = models.TagValue{"2"}
				r[1].InstanceNumber = models.TagValue{"1"}
				r[2].InstanceNumber = models.TagValue{"2"}
			},
			values: []int{10, 20, 30},
			want:   []int32{20, 10, 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]models.SliceRecord, len(tt.values))
			for i, v := range tt.values {
				records[i] = createTestRecord("r", v)
			}
			tt.setup(records)

			vol, err := Assemble(records)
			if err != nil {
				t.Fatalf("Failed to assemble: %v", err)
			}
			if got := sliceOrder(vol); !equalInt32(got, tt.want) {
				t.Errorf("Expected slice order %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAssembleRescale(t *testing.T) {
	rec := createTestRecord("ct.dcm", 50)
	rec.RescaleSlope = models.TagValue{"2.0"}
	rec.RescaleIntercept = models.TagValue{"-100.0"}

	vol, err := Assemble([]models.SliceRecord{rec})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if got := vol.At(0, 1, 1); got != 0 {
		t.Errorf("Expected calibrated value 0, got %d", got)
	}

	rec = createTestRecord("half.dcm", 3)
	rec.RescaleSlope = models.TagValue{"0.5"}
	vol, err = Assemble([]models.SliceRecord{rec})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if got := vol.At(0, 0, 0); got != 2 {
		t.Errorf("Expected 1.5 to round to 2, got %d", got)
	}

	// non-finite rescale values fall back to the identity
	rec = createTestRecord("nan.dcm", 5)
	rec.RescaleSlope = models.TagValue{"NaN"}
	rec.RescaleIntercept = models.TagValue{"-Inf"}
	vol, err = Assemble([]models.SliceRecord{rec})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if got := vol.At(0, 0, 0); got != 5 {
		t.Errorf("Expected uncalibrated value 5, got %d", got)
	}
}

func TestAssembleDefaultWindow(t *testing.T) {
	records := []models.SliceRecord{
		{Source: "a", Rows: 1, Cols: 2, Pixels: []int{-1000, 0}},
		{Source: "b", Rows: 1, Cols: 2, Pixels: []int{3000, 10}},
	}
	vol, err := Assemble(records)
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if vol.Min != -1000 || vol.Max != 3000 {
		t.Errorf("Expected range -1000..3000, got %d..%d", vol.Min, vol.Max)
	}
	if vol.InitWL != 1000.0 {
		t.Errorf("Expected initWL 1000, got %f", vol.InitWL)
	}
	if vol.InitWW != 2000.0 {
		t.Errorf("Expected initWW 2000, got %f", vol.InitWW)
	}
}

func TestAssembleWindowTags(t *testing.T) {
	first := createTestRecord("a", 0)
	first.InstanceNumber = models.TagValue{"1"}
	first.WindowCenter = models.TagValue{"40", "400"}
	first.WindowWidth = models.TagValue{"80", "2000"}
	second := createTestRecord("b", 100)
	second.InstanceNumber = models.TagValue{"2"}
	second.WindowCenter = models.TagValue{"999"}

	// second is discovered first but ordered after, so the first slice's tags win
	vol, err := Assemble([]models.SliceRecord{second, first})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if vol.InitWL != 40 || vol.InitWW != 80 {
		t.Errorf("Expected window (40, 80), got (%f, %f)", vol.InitWL, vol.InitWW)
	}

	first.WindowWidth = models.TagValue{"0"}
	first.WindowCenter = models.TagValue{"bogus"}
	vol, err = Assemble([]models.SliceRecord{first, second})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if vol.InitWL != 50 || vol.InitWW != 50 {
		t.Errorf("Expected fallback window (50, 50), got (%f, %f)", vol.InitWL, vol.InitWW)
	}

	flat := createTestRecord("flat", 7)
	vol, err = Assemble([]models.SliceRecord{flat})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}
	if vol.InitWW != 1 {
		t.Errorf("Expected minimum width 1, got %f", vol.InitWW)
	}
}

func TestAssembleMetadata(t *testing.T) {
	a := createTestRecord("a", 1)
	a.SliceThickness = models.TagValue{"2.5"}
	records := []models.SliceRecord{
		a,
		{Source: "broken.dcm"},
		createTestRecord("b", 2),
	}
	vol, err := Assemble(records)
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}

	s := vol.Summary()
	want := models.MetadataSummary{
		Rows:             2,
		Cols:             2,
		SliceThicknessMm: 2.5,
		SliceCount:       2,
		IntensityMin:     1,
		IntensityMax:     2,
		FileCount:        3,
	}
	if s != want {
		t.Errorf("Expected summary %+v, got %+v", want, s)
	}
}

func TestAssembleInconsistentGeometry(t *testing.T) {
	records := []models.SliceRecord{
		createTestRecord("a", 1),
		{Source: "b", Rows: 3, Cols: 2, Pixels: make([]int, 6)},
	}
	_, err := Assemble(records)
	if !errors.Is(err, ErrInconsistentGeometry) {
		t.Fatalf("Expected ErrInconsistentGeometry, got %v", err)
	}
	var gerr *GeometryError
	if !errors.As(err, &gerr) || gerr.Source != "b" {
		t.Errorf("Expected GeometryError for b, got %v", err)
	}

	short := []models.SliceRecord{{Source: "c", Rows: 2, Cols: 2, Pixels: []int{1, 2, 3}}}
	if _, err := Assemble(short); !errors.Is(err, ErrInconsistentGeometry) {
		t.Errorf("Expected ErrInconsistentGeometry for short buffer, got %v", err)
	}
}

func TestLoadSeries(t *testing.T) {
	src := &fakeSource{records: []models.SliceRecord{createTestRecord("a", 4)}}
	vol, err := LoadSeries(context.Background(), src, "/series")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if vol.Depth != 1 || len(src.dirs) != 1 || src.dirs[0] != "/series" {
		t.Errorf("Expected one slice read from /series, got depth %d dirs %v", vol.Depth, src.dirs)
	}

	src = &fakeSource{err: errors.New("permission denied")}
	if _, err := LoadSeries(context.Background(), src, "/locked"); err == nil {
		t.Error("Expected error from failing source, got nil")
	}

	src = &fakeSource{}
	if _, err := LoadSeries(context.Background(), src, "/empty"); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries, got %v", err)
	}
}

func TestAutoWindow(t *testing.T) {
	rec := models.SliceRecord{Source: "ramp", Rows: 10, Cols: 10, Pixels: make([]int, 100)}
	for i := range rec.Pixels {
		rec.Pixels[i] = i
	}
	vol, err := Assemble([]models.SliceRecord{rec})
	if err != nil {
		t.Fatalf("Failed to assemble: %v", err)
	}

	w := AutoWindow(vol, 0, 1)
	if w.Center != 49.5 || w.Width != 99 {
		t.Errorf("Expected full-range window (49.5, 99), got (%f, %f)", w.Center, w.Width)
	}

	w = AutoWindow(vol, 0.9, 0.1)
	if w.Width <= 1 || w.Width >= 99 {
		t.Errorf("Expected swapped percentiles to give an inner window, got width %f", w.Width)
	}
}
