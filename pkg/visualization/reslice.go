package visualization

import (
	"fmt"

	"github.com/pkg/errors"

	"mprview/internal/models"
)

// ErrInvalidSelection is matched by every *SelectionError
var ErrInvalidSelection = errors.New("invalid plane selection")

// SelectionError reports a plane index outside the volume
type SelectionError struct {
	Plane  models.Plane
	Index  int
	Extent int
}

func (e *SelectionError) Error() string {
	if e.Extent < 0 {
		return fmt.Sprintf("%v: unknown plane %v", ErrInvalidSelection, e.Plane)
	}
	return fmt.Sprintf("%v: %v index %d outside [0, %d]", ErrInvalidSelection, e.Plane, e.Index, e.Extent-1)
}

// Is lets errors.Is match ErrInvalidSelection
func (e *SelectionError) Is(target error) bool {
	return target == ErrInvalidSelection
}

// Slice2D is a plane of calibrated intensities cut from a volume
type Slice2D struct {
	// Data holds Width*Height samples in row-major order
	Data   []int32
	Width  int
	Height int
}

// Extent returns the number of valid indices for plane, or -1 for an
// unknown plane
func Extent(vol *models.Volume, plane models.Plane) int {
	switch plane {
	case models.Axial:
		return vol.Depth
	case models.Coronal:
		return vol.Height
	case models.Sagittal:
		return vol.Width
	default:
		return -1
	}
}

// CenterIndex returns the middle index of plane, (extent-1)/2
func CenterIndex(vol *models.Volume, plane models.Plane) int {
	n := Extent(vol, plane)
	if n <= 0 {
		return 0
	}
	return (n - 1) / 2
}

// Reslice extracts the selected plane from the volume and flips it
// vertically, so the first stored row ends up at the bottom:
//
//	Axial:    fixed Z, shape (Y, X)
//	Coronal:  fixed Y, shape (Z, X)
//	Sagittal: fixed X, shape (Z, Y)
func Reslice(vol *models.Volume, sel models.PlaneSelection) (*Slice2D, error) {
	extent := Extent(vol, sel.Plane)
	if extent < 0 || sel.Index < 0 || sel.Index >= extent {
		return nil, &SelectionError{Plane: sel.Plane, Index: sel.Index, Extent: extent}
	}

	var s *Slice2D

	switch sel.Plane {
	case models.Axial:
		// XY plane
		s = newSlice2D(vol.Width, vol.Height)
		src := vol.SliceData(sel.Index)
		for y := 0; y < vol.Height; y++ {
			copy(s.row(vol.Height-1-y), src[y*vol.Width:(y+1)*vol.Width])
		}

	case models.Coronal:
		// XZ plane
		s = newSlice2D(vol.Width, vol.Depth)
		for z := 0; z < vol.Depth; z++ {
			row := s.row(vol.Depth - 1 - z)
			for x := 0; x < vol.Width; x++ {
				row[x] = vol.At(z, sel.Index, x)
			}
		}

	case models.Sagittal:
		// YZ plane
		s = newSlice2D(vol.Height, vol.Depth)
		for z := 0; z < vol.Depth; z++ {
			row := s.row(vol.Depth - 1 - z)
			for y := 0; y < vol.Height; y++ {
				row[y] = vol.At(z, y, sel.Index)
			}
		}
	}

	return s, nil
}

func newSlice2D(width, height int) *Slice2D {
	return &Slice2D{Data: make([]int32, width*height), Width: width, Height: height}
}

func (s *Slice2D) row(y int) []int32 {
	return s.Data[y*s.Width : (y+1)*s.Width]
}

// At returns the sample at column x, row y
func (s *Slice2D) At(x, y int) int32 {
	return s.Data[y*s.Width+x]
}
