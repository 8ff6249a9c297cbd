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
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Resample returns a curve whose consecutive points are roughly the given
// distance apart, in curve units.
//
// A point is removed if it lies within half the spacing of the point
// before it.  If two points are more than 1.5 times the spacing apart, the
// gap is divided evenly into as many segments as the spacing fits into it,
// rounded to the nearest integer.  For closed curves the same rules
// apply to the segment from the last point back to the first; here the
// last point is removed instead of the first.  Both end points of an open
// curve are always kept: if the last point is too close to its
// predecessor, the predecessor is removed.
//
// Points which are kept retain their link to the previous curve, inserted
// points get NoPrev.  A curve which is already evenly spaced at the given
// distance is returned unchanged.
func (c *Curve) Resample(spacing float64) (*Curve, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, fmt.Errorf("%w: invalid resampling distance %g",
			ErrInvalidGeometry, spacing)
	}
	if len(c.pts) == 0 {
		return nil, fmt.Errorf("%w: cannot resample an empty curve", ErrInvalidGeometry)
	}

	lo := 0.5 * spacing
	hi := 1.5 * spacing

	pts := make([]vec.Vec2, 1, len(c.pts))
	prev := make([]int, 1, len(c.pts))
	pts[0] = c.pts[0]
	prev[0] = c.prev[0]

	fill := func(from, to vec.Vec2, d float64) {
		k := int(math.Round(d / spacing))
		step := to.Sub(from).Mul(1 / float64(k))
		for j := 1; j < k; j++ {
			pts = append(pts, from.Add(step.Mul(float64(j))))
			prev = append(prev, NoPrev)
		}
	}

	end := len(c.pts) - 1
	for i := 1; i < len(c.pts); i++ {
		last := pts[len(pts)-1]
		p := c.pts[i]
		d := p.Sub(last).Length()
		if d <= lo {
			if c.closed || i < end {
				continue
			}
			// the end point of an open curve stays in place
			if len(pts) > 1 {
				pts = pts[:len(pts)-1]
				prev = prev[:len(prev)-1]
				last = pts[len(pts)-1]
				d = p.Sub(last).Length()
			}
		}
		if d > hi {
			fill(last, p, d)
		}
		pts = append(pts, p)
		prev = append(prev, c.prev[i])
	}

	if c.closed && len(pts) > 1 {
		last := pts[len(pts)-1]
		d := pts[0].Sub(last).Length()
		switch {
		case d <= lo:
			pts = pts[:len(pts)-1]
			prev = prev[:len(prev)-1]
		case d > hi:
			fill(last, pts[0], d)
		}
	}

	return &Curve{
		pts:    pts,
		prev:   prev,
		closed: c.closed,
		scale:  c.scale,
	}, nil
}
