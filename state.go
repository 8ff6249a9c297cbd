// seehuhn.de/go/snake - active contours for image segmentation
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package snake

import "seehuhn.de/go/geom/vec"

// State is the part of an optimizer which energies, step sizes and
// termination criteria are bound to.  Only the optimizer changes a State;
// bound objects read it.
type State struct {
	raster   Raster
	curve    *Curve
	previous *Curve
	iter     int
	gamma    []float64
	force    []vec.Vec2
	others   *Mask

	rast     *Rasteriser
	mask     *Mask
	prevMask *Mask
	maskOf   *Curve
}

func newState(r Raster, c *Curve) *State {
	return &State{
		raster: r,
		curve:  c,
		rast:   NewRasteriser(NewMask(r.Width(), r.Height()).bounds()),
	}
}

// Raster returns the image the curve is evolved on.
func (s *State) Raster() Raster {
	return s.raster
}

// Curve returns the current curve.
func (s *State) Curve() *Curve {
	return s.curve
}

// Previous returns the curve of the preceding iteration, or nil before the
// first iteration.
func (s *State) Previous() *Curve {
	return s.previous
}

// Iteration returns the number of completed iterations.
func (s *State) Iteration() int {
	return s.iter
}

// Gamma returns the step sizes used in the last iteration, one per
// coordinate.  The slice must not be modified.
func (s *State) Gamma() []float64 {
	return s.gamma
}

// ExternalForce returns the force exerted on point i by the external
// energies during the last assembly, in curve units.  Before the first
// assembly, and for points created since, the force is zero.
func (s *State) ExternalForce(i int) vec.Vec2 {
	if i < len(s.force) {
		return s.force[i]
	}
	return vec.Vec2{}
}

// OwnedByOther reports whether pixel (x, y) lies inside another curve of a
// Coupled optimizer.
func (s *State) OwnedByOther(x, y int) bool {
	return s.others != nil && s.others.At(x, y)
}

// CurveMask returns the pixels enclosed by the current curve.
// The mask must not be modified.
func (s *State) CurveMask() *Mask {
	if s.maskOf != s.curve {
		s.mask = s.maskFor(s.curve, s.mask)
		s.maskOf = s.curve
	}
	return s.mask
}

// PreviousMask returns the pixels enclosed by the previous curve, or nil
// before the first iteration.  The mask must not be modified.
func (s *State) PreviousMask() *Mask {
	if s.previous == nil {
		return nil
	}
	if s.prevMask == nil {
		s.prevMask = s.maskFor(s.previous, nil)
	}
	return s.prevMask
}

func (s *State) maskFor(c *Curve, reuse *Mask) *Mask {
	if reuse == nil {
		reuse = NewMask(s.raster.Width(), s.raster.Height())
	}
	reuse.fillCurve(s.rast, c)
	return reuse
}

// advance makes next the current curve and counts one iteration.
func (s *State) advance(next *Curve) {
	s.prevMask = nil
	if s.maskOf == s.curve && s.mask != nil {
		s.prevMask = s.mask
		s.mask = nil
	}
	s.maskOf = nil
	s.previous = s.curve
	s.curve = next
	s.iter++
}
