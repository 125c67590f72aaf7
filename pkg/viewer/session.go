// Package viewer holds the interactive selection state around a loaded
// volume and renders frames on demand.
package viewer

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"mprview/internal/logging"
	"mprview/internal/models"
	"mprview/pkg/reconstruction"
	"mprview/pkg/visualization"
)

// ErrNoVolume is returned by operations that need a loaded series
var ErrNoVolume = errors.New("no series loaded")

// state is the selection four-tuple, replaced as a whole on every change
type state struct {
	vol    *models.Volume
	sel    models.PlaneSelection
	window models.WindowSetting
}

// Session owns the current volume and selection. A load builds the new
// volume completely before publishing it, so a failed or in-flight load
// leaves the previous volume in use.
type Session struct {
	loader   *reconstruction.Reconstructor
	renderer *visualization.Renderer
	plane    models.Plane

	mu  sync.Mutex // serialises writers
	cur atomic.Pointer[state]
}

// NewSession creates a session that loads from src and renders with r.
// Newly loaded series are shown in the given plane.
func NewSession(src reconstruction.Source, r *visualization.Renderer, plane models.Plane) *Session {
	return &Session{
		loader:   reconstruction.NewReconstructor(src),
		renderer: r,
		plane:    plane,
	}
}

// Load reads the series under dir. On success the new volume replaces the
// old one and the controls reset: the default window and the centre index
// of the current plane.
func (s *Session) Load(ctx context.Context, dir string) (*models.Volume, error) {
	vol, err := s.loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plane := s.plane
	if st := s.cur.Load(); st != nil {
		plane = st.sel.Plane
	}
	s.cur.Store(&state{
		vol:    vol,
		sel:    models.PlaneSelection{Plane: plane, Index: visualization.CenterIndex(vol, plane)},
		window: visualization.DefaultWindow(vol),
	})
	return vol, nil
}

// Volume returns the current volume, or nil before the first load
func (s *Session) Volume() *models.Volume {
	if st := s.cur.Load(); st != nil {
		return st.vol
	}
	return nil
}

// Selection returns the current plane selection and window
func (s *Session) Selection() (models.PlaneSelection, models.WindowSetting, error) {
	st := s.cur.Load()
	if st == nil {
		return models.PlaneSelection{}, models.WindowSetting{}, ErrNoVolume
	}
	return st.sel, st.window, nil
}

// update applies fn to a copy of the current state and publishes it
func (s *Session) update(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.cur.Load()
	if cur == nil {
		return ErrNoVolume
	}
	next := *cur
	if err := fn(&next); err != nil {
		return err
	}
	s.cur.Store(&next)
	return nil
}

// SetPlane switches plane and moves to its centre index
func (s *Session) SetPlane(p models.Plane) error {
	return s.update(func(st *state) error {
		if visualization.Extent(st.vol, p) < 0 {
			return &visualization.SelectionError{Plane: p, Extent: -1}
		}
		st.sel = models.PlaneSelection{Plane: p, Index: visualization.CenterIndex(st.vol, p)}
		return nil
	})
}

// SetIndex moves to index along the current plane's axis
func (s *Session) SetIndex(index int) error {
	return s.update(func(st *state) error {
		extent := visualization.Extent(st.vol, st.sel.Plane)
		if index < 0 || index >= extent {
			return &visualization.SelectionError{Plane: st.sel.Plane, Index: index, Extent: extent}
		}
		st.sel.Index = index
		return nil
	})
}

// Center moves to the centre index of the current plane
func (s *Session) Center() error {
	return s.update(func(st *state) error {
		st.sel.Index = visualization.CenterIndex(st.vol, st.sel.Plane)
		return nil
	})
}

// SetWindow changes the display window
func (s *Session) SetWindow(w models.WindowSetting) error {
	return s.update(func(st *state) error {
		st.window = w
		return nil
	})
}

// Frame renders the current selection
func (s *Session) Frame() (models.RenderedFrame, error) {
	st := s.cur.Load()
	if st == nil {
		return models.RenderedFrame{}, ErrNoVolume
	}
	logging.Debugf("Rendering %v %d with window (%.1f, %.1f)", st.sel.Plane, st.sel.Index, st.window.Center, st.window.Width)
	return s.renderer.Render(st.vol, st.sel, st.window)
}

// Summary returns the metadata of the current volume
func (s *Session) Summary() (models.MetadataSummary, error) {
	st := s.cur.Load()
	if st == nil {
		return models.MetadataSummary{}, ErrNoVolume
	}
	return st.vol.Summary(), nil
}
