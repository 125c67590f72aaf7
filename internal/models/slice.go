package models

import (
	"math"
	"strconv"
	"strings"
)

// TagValue holds the raw value(s) of an optional, possibly multi-valued tag.
// A nil TagValue means the tag was absent from the source file.
type TagValue []string

// Present reports whether the tag carried at least one value
func (t TagValue) Present() bool {
	return len(t) > 0
}

// Int parses the first value as an integer. Decimal strings such as "12.0"
// are accepted when they hold an integral value.
func (t TagValue) Int() (int, bool) {
	if !t.Present() {
		return 0, false
	}
	s := strings.TrimSpace(t[0])
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, ok := t.Float(0)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// Float parses the i-th value as a float. NaN and infinities are not valid
// decimal strings and count as unparseable.
func (t TagValue) Float(i int) (float64, bool) {
	if i < 0 || i >= len(t) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(t[i]), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FirstFloat parses the first value as a float
func (t TagValue) FirstFloat() (float64, bool) {
	return t.Float(0)
}

// FloatOr returns the first value as a float, or def when absent or unparseable
func (t TagValue) FloatOr(def float64) float64 {
	if f, ok := t.FirstFloat(); ok {
		return f
	}
	return def
}

// SliceRecord represents a single decoded slice file with the tags the
// series loader consumes
type SliceRecord struct {
	// Source identifies where the record came from (usually the file path)
	Source string

	// InstanceNumber is the acquisition-order index (IS)
	InstanceNumber TagValue

	// ImagePosition is the patient-space position of the first voxel, x\y\z
	ImagePosition TagValue

	// SliceThickness is the nominal slice thickness in mm
	SliceThickness TagValue

	// RescaleSlope and RescaleIntercept calibrate stored values
	RescaleSlope     TagValue
	RescaleIntercept TagValue

	// WindowCenter and WindowWidth are the suggested display window
	WindowCenter TagValue
	WindowWidth  TagValue

	// Rows and Cols are the declared pixel matrix size
	Rows int
	Cols int

	// Pixels holds Rows*Cols raw samples in row-major order.
	// nil means the file carried no decodable pixel buffer.
	Pixels []int
}

// HasPixels reports whether the record carries a pixel buffer
func (r SliceRecord) HasPixels() bool {
	return r.Pixels != nil
}
