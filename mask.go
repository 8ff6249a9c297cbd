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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// coverageThreshold is the minimum pixel coverage for a pixel to count as
// enclosed by a curve.
const coverageThreshold = 0.5

// Mask is a binary image, stored in row-major order.
type Mask struct {
	Width, Height int
	Pix           []bool
}

// NewMask allocates an empty width×height mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]bool, width*height),
	}
}

// At reports whether pixel (x, y) is set.  Pixels outside the mask are
// never set.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x]
}

// Count returns the number of pixels which are set.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Or sets every pixel which is set in other.  Both masks must have the same
// size.
func (m *Mask) Or(other *Mask) {
	for i, v := range other.Pix {
		if v {
			m.Pix[i] = true
		}
	}
}

// Overlap returns the number of pixels set in both masks and the number of
// pixels set in at least one of them.
func (m *Mask) Overlap(other *Mask) (both, either int) {
	for i, v := range m.Pix {
		w := other.Pix[i]
		if v && w {
			both++
		}
		if v || w {
			either++
		}
	}
	return both, either
}

// Gray converts the mask into an image, with set pixels in white.
func (m *Mask) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v {
			img.Pix[i] = 255
		}
	}
	return img
}

func (m *Mask) bounds() rect.Rect {
	return rect.Rect{LLx: 0, LLy: 0, URx: float64(m.Width), URy: float64(m.Height)}
}

// fillCurve sets all pixels enclosed by c, using r as scratch space.
func (m *Mask) fillCurve(r *Rasteriser, c *Curve) {
	clear(m.Pix)
	r.Reset(m.bounds())
	r.CTM = matrix.Matrix{c.scale, 0, 0, c.scale, 0, 0}
	r.FillNonZero(c.outline(1), func(y, xMin int, coverage []float32) {
		row := m.Pix[y*m.Width+xMin:]
		for i, v := range coverage {
			row[i] = v >= coverageThreshold
		}
	})
}
