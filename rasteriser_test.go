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
	"image"
	"math"
	"testing"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// TestTriangleCoverage verifies exact coverage values for a simple triangle.
// The triangle (0,0)→(10,0)→(10,1)→close has a diagonal edge y = x/10.
// Each pixel X should have coverage (2X+1)/20: 0.05, 0.15, ..., 0.95.
func TestTriangleCoverage(t *testing.T) {
	trianglePath := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close().
		Iter()

	r := NewRasteriser(rect.Rect{LLx: 0, LLy: 0, URx: 10, URy: 1})

	coverage := make([]float32, 10)
	r.FillNonZero(trianglePath, func(y, xMin int, cov []float32) {
		if y == 0 {
			copy(coverage[xMin:], cov)
		}
	})

	const epsilon = 1e-5
	for x := range 10 {
		expected := float32(2*x+1) / 20.0
		actual := coverage[x]
		if math.Abs(float64(actual-expected)) > epsilon {
			t.Errorf("pixel %d: expected coverage %.4f, got %.4f", x, expected, actual)
		}
	}
}

// TestWindingDirection checks that both orientations of a polygon give the
// same coverage under the nonzero rule.
func TestWindingDirection(t *testing.T) {
	pts := []vec.Vec2{{X: 2, Y: 3}, {X: 13, Y: 1}, {X: 11, Y: 12}, {X: 4, Y: 9}}
	forward := FromPolygon(pts, true)
	backward := forward.Reversed()

	a := forward.Mask(16, 16)
	b := backward.Mask(16, 16)
	both, either := a.Overlap(b)
	if both != either || both == 0 {
		t.Errorf("masks differ: %d common pixels, %d total", both, either)
	}
}

// TestMaskRectangle checks the pixel count of an axis-aligned rectangle,
// for different curve scales.
func TestMaskRectangle(t *testing.T) {
	pts := []vec.Vec2{{X: 3, Y: 4}, {X: 13, Y: 4}, {X: 13, Y: 10}, {X: 3, Y: 10}}
	for _, scale := range []float64{1, 16, 20} {
		c := FromPolygon(pts, true).WithScale(scale)
		if got := c.Mask(20, 16).Count(); got != 60 {
			t.Errorf("scale %g: got %d pixels, want 60", scale, got)
		}
	}
}

// TestMaskOutsideClip checks that parts of a curve outside the raster are
// ignored.
func TestMaskOutsideClip(t *testing.T) {
	pts := []vec.Vec2{{X: -5, Y: -5}, {X: 5, Y: -5}, {X: 5, Y: 5}, {X: -5, Y: 5}}
	m := FromPolygon(pts, true).Mask(10, 10)
	if got := m.Count(); got != 25 {
		t.Errorf("got %d pixels, want 25", got)
	}
	if !m.At(0, 0) || m.At(5, 5) {
		t.Error("wrong pixels set")
	}
}

// TestAgainstVector compares the coverage of a polygon with the result of
// golang.org/x/image/vector.
func TestAgainstVector(t *testing.T) {
	const w, h = 40, 30
	pts := []vec.Vec2{
		{X: 3.3, Y: 2.1}, {X: 35.7, Y: 5.4}, {X: 28.2, Y: 27.9},
		{X: 17.5, Y: 14.25}, {X: 6.1, Y: 24.8},
	}

	got := make([]float32, w*h)
	r := NewRasteriser(rect.Rect{URx: w, URy: h})
	r.FillNonZero(FromPolygon(pts, true).Path(), func(y, xMin int, cov []float32) {
		copy(got[y*w+xMin:], cov)
	})

	v := vector.NewRasterizer(w, h)
	v.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		v.LineTo(float32(p.X), float32(p.Y))
	}
	v.ClosePath()
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	v.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	var sumGot, sumWant float64
	for i, c := range got {
		want := float64(dst.Pix[i]) / 255
		if d := math.Abs(float64(c) - want); d > 0.01 {
			t.Errorf("pixel (%d, %d): got %.3f, want %.3f", i%w, i/w, c, want)
		}
		sumGot += float64(c)
		sumWant += want
	}
	if math.Abs(sumGot-sumWant) > 0.5 {
		t.Errorf("total coverage %.2f, want %.2f", sumGot, sumWant)
	}
}

// TestCTM checks that the transformation matrix is applied to all path
// points.
func TestCTM(t *testing.T) {
	r := NewRasteriser(rect.Rect{URx: 8, URy: 8})
	r.CTM = matrix.Matrix{4, 0, 0, 4, 0, 0}

	unit := FromPolygon([]vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, true)
	total := 0
	r.FillNonZero(unit.Path(), func(y, xMin int, cov []float32) {
		for _, c := range cov {
			if c > 0.99 {
				total++
			}
		}
	})
	if total != 16 {
		t.Errorf("got %d covered pixels, want 16", total)
	}
}

func TestFlattenCubic(t *testing.T) {
	r := NewRasteriser(rect.Rect{URx: 100, URy: 100})
	p0 := vec.Vec2{X: 0, Y: 0}
	p3 := vec.Vec2{X: 90, Y: 0}
	var segs []vec.Vec2
	r.flattenCubic(p0, vec.Vec2{X: 30, Y: 60}, vec.Vec2{X: 60, Y: 60}, p3, func(from, to vec.Vec2) {
		if len(segs) == 0 {
			segs = append(segs, from)
		}
		segs = append(segs, to)
	})
	if len(segs) < 3 {
		t.Fatalf("only %d points", len(segs))
	}
	if segs[0] != p0 || segs[len(segs)-1] != p3 {
		t.Errorf("end points %v, %v", segs[0], segs[len(segs)-1])
	}
}
