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
)

// DistanceMetric selects how distances between pixels are measured.
type DistanceMetric int

// These are the supported distance metrics.
const (
	Euclidean  DistanceMetric = iota // straight line distance
	CityBlock                        // |dx| + |dy|
	Chessboard                       // max(|dx|, |dy|)
)

func (m DistanceMetric) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case CityBlock:
		return "city-block"
	case Chessboard:
		return "chessboard"
	default:
		return fmt.Sprintf("DistanceMetric(%d)", int(m))
	}
}

// DistanceMap returns, for every pixel of a w×h grid, the distance to the
// nearest foreground pixel.  Foreground pixels have distance 0.  If there
// are no foreground pixels, all distances are +Inf.
func DistanceMap(fg []bool, w, h int, metric DistanceMetric) []float64 {
	dist := make([]float64, w*h)
	for i, in := range fg {
		if !in {
			dist[i] = math.Inf(1)
		}
	}

	switch metric {
	case CityBlock:
		chamfer(dist, w, h, false)
	case Chessboard:
		chamfer(dist, w, h, true)
	default:
		squaredEuclidean(dist, w, h)
		for i, d := range dist {
			dist[i] = math.Sqrt(d)
		}
	}
	return dist
}

// chamfer computes city-block distances, or chessboard distances if diag
// is set, using one forward and one backward sweep.
func chamfer(dist []float64, w, h int, diag bool) {
	at := func(x, y int) float64 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return math.Inf(1)
		}
		return dist[y*w+x]
	}

	for y := range h {
		for x := range w {
			d := min(at(x-1, y), at(x, y-1))
			if diag {
				d = min(d, at(x-1, y-1), at(x+1, y-1))
			}
			i := y*w + x
			dist[i] = min(dist[i], d+1)
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			d := min(at(x+1, y), at(x, y+1))
			if diag {
				d = min(d, at(x+1, y+1), at(x-1, y+1))
			}
			i := y*w + x
			dist[i] = min(dist[i], d+1)
		}
	}
}

// squaredEuclidean replaces 0/+Inf values by squared Euclidean distances,
// by applying the exact one-dimensional transform of Felzenszwalb and
// Huttenlocher to all columns and then to all rows.
func squaredEuclidean(dist []float64, w, h int) {
	n := max(w, h)
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := range w {
		for y := range h {
			f[y] = dist[y*w+x]
		}
		lowerEnvelope(f[:h], d[:h], v, z)
		for y := range h {
			dist[y*w+x] = d[y]
		}
	}
	for y := range h {
		row := dist[y*w : (y+1)*w]
		copy(f, row)
		lowerEnvelope(f[:w], d[:w], v, z)
		copy(row, d[:w])
	}
}

// lowerEnvelope sets d[q] = min_p (q-p)² + f[p].
func lowerEnvelope(f, d []float64, v []int, z []float64) {
	n := len(f)

	k := -1
	for q := range n {
		if math.IsInf(f[q], 1) {
			continue
		}
		if k < 0 {
			k = 0
			v[0] = q
			z[0] = math.Inf(-1)
			z[1] = math.Inf(1)
			continue
		}
		// z[0] is -Inf, so the loop stops at k == 0 at the latest
		var s float64
		for {
			p := v[k]
			s = ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*(q-p))
			if s > z[k] {
				break
			}
			k--
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = math.Inf(1)
	}

	if k < 0 {
		for q := range d {
			d[q] = math.Inf(1)
		}
		return
	}
	k = 0
	for q := range n {
		for z[k+1] < float64(q) {
			k++
		}
		p := v[k]
		d[q] = float64((q-p)*(q-p)) + f[p]
	}
}
