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

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RegionFit is the two-phase Chan-Vese region energy:
//
//	E = λin·Σ_inside (I - c_in)² + λout·Σ_outside (I - c_out)²
//
// where c_in and c_out are the mean raster values inside and outside the
// curve.  Every point is pushed along the curve normal, outwards if the
// raster value under the point fits the inside mean better than the
// outside mean, and inwards otherwise.
//
// The normal is derived from the point order, so the curve must be ordered
// counter-clockwise.  Pixels which belong to other curves of a Coupled
// optimizer do not count towards the outside region.
type RegionFit struct {
	LambdaIn  float64
	LambdaOut float64
}

// Bind implements the Term interface.
func (r RegionFit) Bind(s *State, mode Normalization) (Energy, error) {
	if s.raster == nil {
		return nil, fmt.Errorf("%w: region fit needs a raster", ErrInitialization)
	}
	if r.LambdaIn < 0 || r.LambdaOut < 0 {
		return nil, fmt.Errorf("%w: region weights (%g, %g) must not be negative",
			ErrInitialization, r.LambdaIn, r.LambdaOut)
	}

	vals := values(s.raster)
	e := &regionFit{
		state: s,
		cfg:   r,
		vals:  vals,
		wIn:   make([]float64, len(vals)),
		wOut:  make([]float64, len(vals)),
		norm:  1,
	}
	if mode == NormBalanced {
		lo, hi := valueRange(s.raster)
		if d := max(r.LambdaIn, r.LambdaOut) * (hi - lo) * (hi - lo); d > 0 {
			e.norm = d
		}
	}
	return e, nil
}

// External implements the Term interface.
func (RegionFit) External() bool { return true }

// CounterClockwise implements the Term interface.
func (RegionFit) CounterClockwise() bool { return true }

func (r RegionFit) String() string {
	return fmt.Sprintf("region(λin=%g, λout=%g)", r.LambdaIn, r.LambdaOut)
}

type regionFit struct {
	state *State
	cfg   RegionFit

	vals      []float64 // raster values, row-major
	wIn, wOut []float64 // region membership of every pixel
	norm      float64

	cIn, cOut float64
	meansOf   *Curve
	othersOf  *Mask
}

// Update recomputes the region means for the current curve.
func (e *regionFit) Update() error {
	s := e.state
	if e.meansOf == s.curve && e.othersOf == s.others {
		return nil
	}

	mask := s.CurveMask()
	w := mask.Width
	nIn, nOut := 0, 0
	for i, inside := range mask.Pix {
		e.wIn[i], e.wOut[i] = 0, 0
		switch {
		case inside:
			e.wIn[i] = 1
			nIn++
		case !s.OwnedByOther(i%w, i/w):
			e.wOut[i] = 1
			nOut++
		}
	}
	if nIn == 0 {
		return fmt.Errorf("%w: curve encloses no pixels", ErrInvalidGeometry)
	}
	if nOut == 0 {
		return fmt.Errorf("%w: curve leaves no background pixels", ErrInvalidGeometry)
	}

	e.cIn = stat.Mean(e.vals, e.wIn)
	e.cOut = stat.Mean(e.vals, e.wOut)
	e.meansOf = s.curve
	e.othersOf = s.others
	return nil
}

// Means returns the mean raster values inside and outside the curve.
func (e *regionFit) Means() (in, out float64) {
	return e.cIn, e.cOut
}

func (e *regionFit) Value() float64 {
	if err := e.Update(); err != nil {
		return math.NaN()
	}
	var sum float64
	for i, v := range e.vals {
		dIn := v - e.cIn
		dOut := v - e.cOut
		sum += e.wIn[i]*e.cfg.LambdaIn*dIn*dIn + e.wOut[i]*e.cfg.LambdaOut*dOut*dOut
	}
	return sum
}

// tau returns the normal speed of point i; positive values move the point
// inwards.
func (e *regionFit) tau(i int) float64 {
	c := e.state.curve
	p := c.pts[i].Mul(c.scale)
	v := sample(e.state.raster, p.X, p.Y)
	dIn := v - e.cIn
	dOut := v - e.cOut
	return (e.cfg.LambdaIn*dIn*dIn - e.cfg.LambdaOut*dOut*dOut) / e.norm
}

// Matrix couples the coordinates of every point with the tangent of the
// curve at this point.  Row i of the result, applied to the coordinates,
// gives τ·(y[j] - y[i]) and row N+i gives -τ·(x[j] - x[i]), where j is the
// successor of point i.  For the last point of an open curve the
// predecessor is used instead.
func (e *regionFit) Matrix() *mat.Dense {
	c := e.state.curve
	n := c.Len()
	a := mat.NewDense(2*n, 2*n, nil)
	if e.Update() != nil {
		return a
	}
	for i := range n {
		t := e.tau(i)
		from, to := i, c.next(i)
		if to < 0 {
			from, to = i-1, i
		}
		if from < 0 {
			continue
		}
		a.Set(i, n+from, a.At(i, n+from)-t)
		a.Set(i, n+to, a.At(i, n+to)+t)
		a.Set(n+i, from, a.At(n+i, from)+t)
		a.Set(n+i, to, a.At(n+i, to)-t)
	}
	return a
}

func (e *regionFit) Bias() *mat.VecDense {
	return nil
}
