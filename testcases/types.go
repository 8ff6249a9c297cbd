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

// Package testcases defines synthetic segmentation problems for the snake
// optimizers.  Every test case describes a raster made of bright objects
// on a dark background, together with one initial curve per object.
package testcases

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// TestCase defines a single segmentation problem.
type TestCase struct {
	Name       string   // lowercase a-z and _ only
	Width      int      // raster width in pixels
	Height     int      // raster height in pixels
	Objects    []Object // one object per initial curve
	Foreground float64  // raster value inside the objects
	Background float64  // raster value outside the objects

	// MinOverlap is the smallest acceptable Jaccard index between the
	// region enclosed by a final curve and its object.
	MinOverlap float64
}

// Object is one foreground region of a test case, together with the
// initial curve which is expected to converge to its outline.
type Object struct {
	Shape   path.Path  // outline of the object, in pixel coordinates
	Initial []vec.Vec2 // closed initial polygon, in pixel coordinates
}

// Shapes returns the outlines of all objects as one path.
func (tc TestCase) Shapes() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, obj := range tc.Objects {
			for cmd, pts := range obj.Shape {
				if !yield(cmd, pts) {
					return
				}
			}
		}
	}
}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}
