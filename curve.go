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

import (
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// NoPrev marks a point which has no counterpart in the previous iteration,
// for example because it was inserted by resampling.
const NoPrev = -1

// Curve is an ordered sequence of control points.
//
// A Curve is immutable: all methods which change the geometry return a new
// Curve.  Points are stored in curve units; multiplying by Scale gives
// raster (pixel) coordinates.
type Curve struct {
	pts    []vec.Vec2
	prev   []int
	closed bool
	scale  float64
}

// FromPolygon creates a curve from the given points, in pixel coordinates.
// The points are copied and none of them is linked to a previous curve.
func FromPolygon(pts []vec.Vec2, closed bool) *Curve {
	prev := make([]int, len(pts))
	for i := range prev {
		prev[i] = NoPrev
	}
	return &Curve{
		pts:    slices.Clone(pts),
		prev:   prev,
		closed: closed,
		scale:  1,
	}
}

// WithScale returns the same geometry, stored in units of s pixels.
// The result has Scale() == s.
func (c *Curve) WithScale(s float64) *Curve {
	f := c.scale / s
	pts := make([]vec.Vec2, len(c.pts))
	for i, p := range c.pts {
		pts[i] = p.Mul(f)
	}
	return &Curve{
		pts:    pts,
		prev:   slices.Clone(c.prev),
		closed: c.closed,
		scale:  s,
	}
}

// Len returns the number of control points.
func (c *Curve) Len() int {
	return len(c.pts)
}

// Closed reports whether the last point is connected to the first one.
func (c *Curve) Closed() bool {
	return c.closed
}

// Scale returns the size of one curve unit in pixels.
func (c *Curve) Scale() float64 {
	return c.scale
}

// Point returns control point i, in curve units.
func (c *Curve) Point(i int) vec.Vec2 {
	return c.pts[i]
}

// Prev returns the index of the point in the previous curve which
// corresponds to point i, or NoPrev.
func (c *Curve) Prev(i int) int {
	return c.prev[i]
}

// Points returns a copy of the control points, in curve units.
func (c *Curve) Points() []vec.Vec2 {
	return slices.Clone(c.pts)
}

// PixelPoints returns a copy of the control points, in pixel coordinates.
func (c *Curve) PixelPoints() []vec.Vec2 {
	res := make([]vec.Vec2, len(c.pts))
	for i, p := range c.pts {
		res[i] = p.Mul(c.scale)
	}
	return res
}

// next returns the index of the successor of point i.  For open curves the
// last point has no successor and -1 is returned.
func (c *Curve) next(i int) int {
	if i+1 < len(c.pts) {
		return i + 1
	}
	if c.closed {
		return 0
	}
	return -1
}

// numEdges returns the number of line segments of the curve.
func (c *Curve) numEdges() int {
	n := len(c.pts)
	if c.closed || n == 0 {
		return n
	}
	return n - 1
}

// Perimeter returns the total length of all segments, in curve units.
func (c *Curve) Perimeter() float64 {
	var total float64
	for i := range c.numEdges() {
		total += c.pts[c.next(i)].Sub(c.pts[i]).Length()
	}
	return total
}

// SignedArea returns the area enclosed by the closing polygon, in square
// curve units.  The sign is positive when the points are ordered
// counter-clockwise in a coordinate system where y grows upwards.
func (c *Curve) SignedArea() float64 {
	n := len(c.pts)
	var sum float64
	for i := range n {
		p := c.pts[i]
		q := c.pts[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// CounterClockwise reports whether the signed area of the curve is positive.
func (c *Curve) CounterClockwise() bool {
	return c.SignedArea() > 0
}

// Reversed returns the curve with the order of the points reversed.
// The links to the previous curve travel with the points.
func (c *Curve) Reversed() *Curve {
	res := &Curve{
		pts:    slices.Clone(c.pts),
		prev:   slices.Clone(c.prev),
		closed: c.closed,
		scale:  c.scale,
	}
	slices.Reverse(res.pts)
	slices.Reverse(res.prev)
	return res
}

// clamped returns a copy of c where all points lie inside the pixel grid of
// a width×height raster.
func (c *Curve) clamped(width, height int) *Curve {
	xMax := float64(width-1) / c.scale
	yMax := float64(height-1) / c.scale
	pts := make([]vec.Vec2, len(c.pts))
	for i, p := range c.pts {
		pts[i] = vec.Vec2{
			X: math.Max(0, math.Min(p.X, xMax)),
			Y: math.Max(0, math.Min(p.Y, yMax)),
		}
	}
	return &Curve{pts: pts, prev: c.prev, closed: c.closed, scale: c.scale}
}

// successorOf returns a curve with the given points whose links point to the
// same index in c.  This is the shape of a curve after one solver step.
func (c *Curve) successorOf(pts []vec.Vec2) *Curve {
	prev := make([]int, len(pts))
	for i := range prev {
		prev[i] = i
	}
	return &Curve{pts: pts, prev: prev, closed: c.closed, scale: c.scale}
}

// Path returns the outline of the curve in pixel coordinates.
// Closed curves end with a close command.
func (c *Curve) Path() path.Path {
	return c.outline(c.scale)
}

// outline returns the outline of the curve with all points multiplied by f.
func (c *Curve) outline(f float64) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [1]vec.Vec2
		for i, p := range c.pts {
			buf[0] = p.Mul(f)
			cmd := path.CmdLineTo
			if i == 0 {
				cmd = path.CmdMoveTo
			}
			if !yield(cmd, buf[:]) {
				return
			}
		}
		if c.closed && len(c.pts) > 0 {
			yield(path.CmdClose, nil)
		}
	}
}

// EnclosedPixelCount returns the number of pixels of r which lie inside the
// curve.  Open curves are treated as if they were closed.
func (c *Curve) EnclosedPixelCount(r Raster) int {
	return c.Mask(r.Width(), r.Height()).Count()
}

// Mask rasterises the curve onto a width×height pixel grid.
func (c *Curve) Mask(width, height int) *Mask {
	m := NewMask(width, height)
	m.fillCurve(NewRasteriser(m.bounds()), c)
	return m
}
