package models

// Volume represents a calibrated 3D intensity volume assembled from a
// series of slices. A Volume is never modified after it has been built;
// a new load produces a new Volume.
type Volume struct {
	// Data is the calibrated volume as a 1D array in (Z, Y, X) row-major order
	Data []int32

	// Width, Height and Depth are the X, Y and Z extents in voxels
	Width  int
	Height int
	Depth  int

	// SliceThickness is taken from the first ordered slice, 0 when absent
	SliceThickness float64

	// Min and Max are the global calibrated intensity range
	Min int32
	Max int32

	// InitWL and InitWW are the default window center and width
	InitWL float64
	InitWW float64

	// FileCount is the number of discovered input files, including those
	// that carried no pixel data
	FileCount int
}

// MetadataSummary is the series information shown next to the rendered frame
type MetadataSummary struct {
	Rows             int
	Cols             int
	SliceThicknessMm float64
	SliceCount       int
	IntensityMin     int32
	IntensityMax     int32
	FileCount        int
}

// Shape returns the volume extents in (Z, Y, X) order
func (v *Volume) Shape() (z, y, x int) {
	return v.Depth, v.Height, v.Width
}

// At returns the calibrated intensity at (z, y, x). It does not check bounds.
func (v *Volume) At(z, y, x int) int32 {
	return v.Data[(z*v.Height+y)*v.Width+x]
}

// SliceData returns the Z-slice at index z without copying
func (v *Volume) SliceData(z int) []int32 {
	n := v.Width * v.Height
	return v.Data[z*n : (z+1)*n]
}

// SizeBytes is the in-memory size of the voxel buffer
func (v *Volume) SizeBytes() int64 {
	return int64(len(v.Data)) * 4
}

// Summary returns the metadata summary for the presentation layer
func (v *Volume) Summary() MetadataSummary {
	return MetadataSummary{
		Rows:             v.Height,
		Cols:             v.Width,
		SliceThicknessMm: v.SliceThickness,
		SliceCount:       v.Depth,
		IntensityMin:     v.Min,
		IntensityMax:     v.Max,
		FileCount:        v.FileCount,
	}
}
