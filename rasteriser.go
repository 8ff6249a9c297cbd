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
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// edge is a non-horizontal line segment in pixel coordinates,
// oriented so that y0 < y1.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
	dir    float32 // +1 if the path runs downwards along the edge, -1 otherwise
}

// xAt returns the x coordinate of the edge at height y.
func (e *edge) xAt(y float64) float64 {
	return e.x0 + e.dxdy*(y-e.y0)
}

// Rasteriser computes the area of each pixel covered by a filled path.
//
// Snake masks, enclosed pixel counts and synthetic test rasters are all
// produced by this type.  One instance can be reused for many paths; its
// buffers grow as needed and are kept between calls.
type Rasteriser struct {
	// CTM maps path coordinates to pixel coordinates.
	// Must be a non-singular matrix.
	CTM matrix.Matrix

	// Clip is the pixel region which receives coverage values.
	// Must have integer-aligned coordinates.
	Clip rect.Rect

	// Flatness is the tolerance, in pixels, used when replacing Bézier
	// segments by straight lines.  Must be > 0.
	Flatness float64

	edges  []edge
	active []int
	cover  []float32 // signed height of edge crossings per column; holds the output after integration
	area   []float32 // part of cover which lies right of the crossing, inside the column
	splits []float64 // y values where an edge changes pixel column

	// bounding box of the edges, valid if haveBBox is set
	haveBBox       bool
	bbXMin, bbXMax float64
	bbYMin, bbYMax float64
}

// NewRasteriser returns a rasteriser for the given clip rectangle,
// with the identity transformation.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	return &Rasteriser{
		CTM:      matrix.Identity,
		Clip:     clip,
		Flatness: defaultFlatness,
	}
}

// Reset prepares the rasteriser for a new clip rectangle.  The
// transformation is set back to the identity, and buffer capacity is kept.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.edges = r.edges[:0]
	r.active = r.active[:0]
	r.splits = r.splits[:0]
}

// FillNonZero computes the coverage of the region enclosed by p, using the
// nonzero winding rule.  Subpaths are closed implicitly.
//
// Coverage values in [0, 1] are reported one row at a time.  The slice
// passed to emit only contains the non-zero part of the row, starting at
// pixel xMin, and is only valid during the callback.
func (r *Rasteriser) FillNonZero(p path.Path, emit func(y, xMin int, coverage []float32)) {
	xMin, xMax, yMin, yMax, ok := r.collectEdges(p)
	if !ok {
		return
	}

	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.y0, b.y0)
	})

	r.active = r.active[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		top := float64(y)
		bottom := float64(y + 1)

		for next < len(r.edges) && r.edges[next].y0 < bottom {
			r.active = append(r.active, next)
			next++
		}
		r.active = slices.DeleteFunc(r.active, func(i int) bool {
			return r.edges[i].y1 <= top
		})
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		for _, i := range r.active {
			r.accumulate(&r.edges[i], top, bottom, xMin, xMax)
		}
		integrateNonZero(r.cover, r.area)

		if row, offset := trimZeros(r.cover); row != nil {
			emit(y, xMin+offset, row)
		}
	}
}

// collectEdges flattens the path into the edge list and returns the pixel
// range touched by the edges, clipped to r.Clip.
func (r *Rasteriser) collectEdges(p path.Path) (xMin, xMax, yMin, yMax int, ok bool) {
	r.edges = r.edges[:0]
	r.haveBBox = false

	var current, start vec.Vec2
	open := false
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			if open {
				r.addEdge(current, start)
			}
			current = pts[0]
			start = current
			open = true
		case path.CmdLineTo:
			r.addEdge(current, pts[0])
			current = pts[0]
		case path.CmdQuadTo:
			r.flattenQuadratic(current, pts[0], pts[1], r.addEdge)
			current = pts[1]
		case path.CmdCubeTo:
			r.flattenCubic(current, pts[0], pts[1], pts[2], r.addEdge)
			current = pts[2]
		case path.CmdClose:
			r.addEdge(current, start)
			current = start
			open = false
		}
	}
	if open {
		r.addEdge(current, start)
	}

	if len(r.edges) == 0 {
		return 0, 0, 0, 0, false
	}

	xMin = max(int(math.Floor(r.bbXMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(r.bbXMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(r.bbYMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(r.bbYMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// addEdge transforms the segment from p to q into pixel coordinates and
// appends it to the edge list.  Horizontal segments do not contribute
// coverage and are dropped.
func (r *Rasteriser) addEdge(p, q vec.Vec2) {
	m := r.CTM
	x0 := m[0]*p.X + m[2]*p.Y + m[4]
	y0 := m[1]*p.X + m[3]*p.Y + m[5]
	x1 := m[0]*q.X + m[2]*q.Y + m[4]
	y1 := m[1]*q.X + m[3]*q.Y + m[5]

	if math.Abs(y1-y0) < horizontalEdgeThreshold {
		return
	}

	var dir float32 = 1
	if y1 < y0 {
		x0, y0, x1, y1 = x1, y1, x0, y0
		dir = -1
	}
	r.edges = append(r.edges, edge{
		x0: x0, y0: y0,
		x1: x1, y1: y1,
		dxdy: (x1 - x0) / (y1 - y0),
		dir:  dir,
	})

	if !r.haveBBox {
		r.bbXMin, r.bbXMax = min(x0, x1), max(x0, x1)
		r.bbYMin, r.bbYMax = y0, y1
		r.haveBBox = true
		return
	}
	r.bbXMin = min(r.bbXMin, x0, x1)
	r.bbXMax = max(r.bbXMax, x0, x1)
	r.bbYMin = min(r.bbYMin, y0)
	r.bbYMax = max(r.bbYMax, y1)
}

// accumulate adds the part of e between the heights top and bottom to the
// cover and area buffers of the current row.
//
// The edge is cut where it crosses from one pixel column into the next.
// Every piece adds its signed height h to the cover of its column and
// h·(1-f) to the area, where f is the fractional x position of the piece
// inside the column.  Pieces left of the clip region act on the first
// column; pieces right of it do not affect any visible pixel.
func (r *Rasteriser) accumulate(e *edge, top, bottom float64, xMin, xMax int) {
	ya := max(top, e.y0)
	yb := min(bottom, e.y1)
	if yb <= ya {
		return
	}

	xa := e.xAt(ya)
	xb := e.xAt(yb)
	colLo := math.Floor(min(xa, xb))
	colHi := math.Floor(max(xa, xb))

	r.splits = append(r.splits[:0], ya, yb)
	for x := colLo + 1; x <= colHi; x++ {
		ys := e.y0 + (x-e.x0)/e.dxdy
		if ys > ya && ys < yb {
			r.splits = append(r.splits, ys)
		}
	}
	if len(r.splits) > 2 {
		slices.Sort(r.splits)
	}

	for i := 1; i < len(r.splits); i++ {
		y0, y1 := r.splits[i-1], r.splits[i]
		if y1 <= y0 {
			continue
		}
		h := e.dir * float32(y1-y0)
		xm := e.xAt((y0 + y1) / 2)
		col := int(math.Floor(xm))
		switch {
		case col < xMin:
			r.cover[0] += h
			r.area[0] += h
		case col < xMax:
			k := col - xMin
			r.cover[k] += h
			r.area[k] += h * float32(1-(xm-float64(col)))
		}
	}
}

// integrateNonZero turns the cover and area values of one row into
// coverage values, in place.
func integrateNonZero(cover, area []float32) {
	var acc float32
	for i, c := range cover {
		v := acc + area[i]
		acc += c
		if v < 0 {
			v = -v
		}
		cover[i] = min(v, 1)
	}
}

// trimZeros returns the part of coverage between the first and the last
// non-zero entry, together with its offset.  The result is nil if all
// entries are zero.
func trimZeros(coverage []float32) (trimmed []float32, offset int) {
	lo := slices.IndexFunc(coverage, func(c float32) bool { return c != 0 })
	if lo < 0 {
		return nil, 0
	}
	hi := len(coverage) - 1
	for coverage[hi] == 0 {
		hi--
	}
	return coverage[lo : hi+1], lo
}

// transformLinear applies the linear part of the CTM to v.
func (r *Rasteriser) transformLinear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

// flattenQuadratic replaces the quadratic Bézier curve p0, p1, p2 by
// straight segments whose distance from the curve is at most r.Flatness
// pixels.
func (r *Rasteriser) flattenQuadratic(p0, p1, p2 vec.Vec2, emit func(from, to vec.Vec2)) {
	dev := r.transformLinear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// flattenCubic replaces the cubic Bézier curve p0, …, p3 by straight
// segments.  The number of segments follows Wang's formula.
func (r *Rasteriser) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(from, to vec.Vec2)) {
	d1 := r.transformLinear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.transformLinear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if f := math.Sqrt(3 * m / (4 * r.Flatness)); f > 1 {
			n = int(math.Ceil(f))
		}
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

const (
	// defaultFlatness is the default curve flattening tolerance in pixels.
	defaultFlatness = 0.25

	// horizontalEdgeThreshold is the minimum vertical extent for an edge
	// to contribute to coverage.
	horizontalEdgeThreshold = 1e-10
)
