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

import "fmt"

// Length penalises stretching of the curve:
//
//	E = ½·α·Σ |p[i+1] - p[i]|²
//
// The sum runs over all segments of the curve.  For closed curves the
// derivative matrix has 2α on the diagonal and -α for the two neighbours
// of every point.
type Length struct {
	Alpha float64
}

// Bind implements the Term interface.
func (l Length) Bind(s *State, mode Normalization) (Energy, error) {
	if l.Alpha < 0 {
		return nil, fmt.Errorf("%w: length weight %g is negative",
			ErrInitialization, l.Alpha)
	}
	q := &quadraticEnergy{
		state:    s,
		weight:   l.Alpha,
		factor:   1,
		order:    1,
		minCount: 2,
	}
	if mode == NormBalanced && l.Alpha > 0 {
		q.factor = 1 / (2 * l.Alpha)
	}
	if err := q.check(); err != nil {
		return nil, err
	}
	return q, nil
}

// External implements the Term interface.
func (Length) External() bool { return false }

// CounterClockwise implements the Term interface.
func (Length) CounterClockwise() bool { return false }

func (l Length) String() string {
	return fmt.Sprintf("length(α=%g)", l.Alpha)
}

// Curvature penalises bending of the curve:
//
//	E = ½·β·Σ |p[i-1] - 2·p[i] + p[i+1]|²
//
// For closed curves the derivative matrix has 6β on the diagonal, -4β for
// the direct neighbours and β for the second neighbours of every point.
//
// The stencil needs at least five points.  Binding to, or updating with, a
// smaller curve fails with ErrInvalidGeometry.
type Curvature struct {
	Beta float64
}

// minCurvaturePoints is the smallest curve the curvature stencil is
// defined for.
const minCurvaturePoints = 5

// Bind implements the Term interface.
func (c Curvature) Bind(s *State, mode Normalization) (Energy, error) {
	if c.Beta < 0 {
		return nil, fmt.Errorf("%w: curvature weight %g is negative",
			ErrInitialization, c.Beta)
	}
	q := &quadraticEnergy{
		state:    s,
		weight:   c.Beta,
		factor:   1,
		order:    2,
		minCount: minCurvaturePoints,
	}
	if mode == NormBalanced && c.Beta > 0 {
		q.factor = 1 / (8 * c.Beta)
	}
	if err := q.check(); err != nil {
		return nil, err
	}
	return q, nil
}

// External implements the Term interface.
func (Curvature) External() bool { return false }

// CounterClockwise implements the Term interface.
func (Curvature) CounterClockwise() bool { return false }

func (c Curvature) String() string {
	return fmt.Sprintf("curvature(β=%g)", c.Beta)
}
