package reconstruction

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrEmptySeries is returned when the source discovered no candidate files
	ErrEmptySeries = errors.New("no slice files found in series")

	// ErrNoPixelData is returned when files were found but none carried pixel data
	ErrNoPixelData = errors.New("no slice with pixel data could be read")

	// ErrInconsistentGeometry is matched by every *GeometryError
	ErrInconsistentGeometry = errors.New("slices do not share the same geometry")
)

// GeometryError reports a slice whose matrix size differs from the first slice
type GeometryError struct {
	Source     string
	Rows, Cols int
	WantRows   int
	WantCols   int
	Samples    int
}

func (e *GeometryError) Error() string {
	if e.Rows == e.WantRows && e.Cols == e.WantCols {
		return fmt.Sprintf("%v: %s has %d samples, want %d for %dx%d",
			ErrInconsistentGeometry, e.Source, e.Samples, e.WantRows*e.WantCols, e.WantRows, e.WantCols)
	}
	return fmt.Sprintf("%v: %s is %dx%d, want %dx%d",
		ErrInconsistentGeometry, e.Source, e.Rows, e.Cols, e.WantRows, e.WantCols)
}

// Is lets errors.Is match ErrInconsistentGeometry
func (e *GeometryError) Is(target error) bool {
	return target == ErrInconsistentGeometry
}
