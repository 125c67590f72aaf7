package models

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Plane is one of the three canonical orthogonal viewing planes
type Plane int

const (
	// Axial planes share a Z coordinate
	Axial Plane = iota
	// Sagittal planes share an X coordinate
	Sagittal
	// Coronal planes share a Y coordinate
	Coronal
)

var planeNames = map[string]Plane{
	"axial":    Axial,
	"sagittal": Sagittal,
	"coronal":  Coronal,
	"xy":       Axial,
	"yz":       Sagittal,
	"xz":       Coronal,
}

// ParsePlane returns the plane for a name such as "axial" or "xz"
func ParsePlane(s string) (Plane, error) {
	p, found := planeNames[strings.ToLower(strings.TrimSpace(s))]
	if !found {
		return Axial, errors.Errorf("unknown plane %q (must be axial, sagittal or coronal)", s)
	}
	return p, nil
}

func (p Plane) String() string {
	switch p {
	case Axial:
		return "Axial"
	case Sagittal:
		return "Sagittal"
	case Coronal:
		return "Coronal"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// PlaneSelection picks a plane and an index along the plane's normal axis
type PlaneSelection struct {
	Plane Plane
	Index int
}

// WindowSetting is a display window. Width below 1 is treated as 1 when applied.
type WindowSetting struct {
	Center float64
	Width  float64
}

// RenderedFrame is a fixed-size 8-bit grayscale frame ready for display
type RenderedFrame struct {
	Width  int
	Height int

	// Pixels holds Width*Height gray levels in row-major order
	Pixels []uint8
}
