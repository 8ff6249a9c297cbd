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

	"gonum.org/v1/gonum/mat"
)

// Normalization selects how energies scale their contributions to the
// linear system of an iteration.
type Normalization int

const (
	// NormNone uses the raw derivatives of all energies.
	NormNone Normalization = iota

	// NormBalanced rescales every energy so that the entries of its matrix
	// and bias are of order one.  This makes the energy weights comparable
	// across energy types.
	NormBalanced
)

func (n Normalization) String() string {
	switch n {
	case NormNone:
		return "none"
	case NormBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// Term is the configuration of an energy.  A Term does not refer to any
// optimizer and may be shared between optimizers; Bind creates the Energy
// which belongs to one optimizer.
type Term interface {
	// Bind checks the configuration against the state of an optimizer and
	// returns the bound energy.
	Bind(s *State, mode Normalization) (Energy, error)

	// External reports whether the term is derived from the image.
	External() bool

	// CounterClockwise reports whether the term relies on the curve points
	// being ordered counter-clockwise.
	CounterClockwise() bool
}

// Energy is a term of the energy functional, bound to one optimizer.
//
// For a curve with N points, matrices are 2N×2N and vectors have length
// 2N.  Indices 0, …, N-1 refer to the x coordinates and N, …, 2N-1 to the y
// coordinates of the points.  An iteration moves the points x to the
// solution x' of
//
//	(I + Γ·A)·x' = x + Γ·b
//
// where A and b are the weighted sums of Matrix and Bias over all energies
// and Γ holds the step sizes.
type Energy interface {
	// Update recomputes curve dependent quantities.  It is called once per
	// iteration, before Matrix and Bias.
	Update() error

	// Value returns the energy of the current curve, or NaN if the energy
	// is undefined for this curve.
	Value() float64

	// Matrix returns the part of the energy derivative which is linear in
	// the point coordinates, or nil.
	Matrix() *mat.Dense

	// Bias returns the force which does not depend linearly on the point
	// coordinates, or nil.
	Bias() *mat.VecDense
}

// coordinates returns the stacked x and y coordinates of the curve points.
func coordinates(c *Curve) *mat.VecDense {
	n := c.Len()
	x := mat.NewVecDense(2*n, nil)
	for i, p := range c.pts {
		x.SetVec(i, p.X)
		x.SetVec(n+i, p.Y)
	}
	return x
}

// blockDiag returns the 2N×2N matrix with the N×N block a on both diagonal
// blocks and zeros elsewhere.
func blockDiag(a mat.Matrix) *mat.Dense {
	n, _ := a.Dims()
	res := mat.NewDense(2*n, 2*n, nil)
	res.Slice(0, n, 0, n).(*mat.Dense).Copy(a)
	res.Slice(n, 2*n, n, 2*n).(*mat.Dense).Copy(a)
	return res
}

// differenceOperator returns the matrix which maps the N point
// coordinates to the forward differences of the given order.  The
// stencils wrap around for closed curves.  Open curves only get the rows
// whose stencil fits inside the curve.
func differenceOperator(n, order int, closed bool) *mat.Dense {
	var stencil []float64
	switch order {
	case 1:
		stencil = []float64{-1, 1}
	case 2:
		stencil = []float64{1, -2, 1}
	default:
		panic("unsupported difference order")
	}

	rows := n
	if !closed {
		rows = n - len(stencil) + 1
	}
	if rows <= 0 {
		return nil
	}
	d := mat.NewDense(rows, n, nil)
	for i := range rows {
		for k, s := range stencil {
			j := (i + k) % n
			d.Set(i, j, d.At(i, j)+s)
		}
	}
	return d
}

// quadraticEnergy is the common implementation of the internal energies,
// E = ½·w·(|D·x|² + |D·y|²) for a difference operator D.
type quadraticEnergy struct {
	state    *State
	weight   float64 // w
	factor   float64 // normalization of the matrix
	order    int
	minCount int
}

func (q *quadraticEnergy) check() error {
	if n := q.state.curve.Len(); n < q.minCount {
		return fmt.Errorf("%w: curve has %d points, need at least %d",
			ErrInvalidGeometry, n, q.minCount)
	}
	return nil
}

func (q *quadraticEnergy) Update() error {
	return q.check()
}

func (q *quadraticEnergy) operator() *mat.Dense {
	c := q.state.curve
	return differenceOperator(c.Len(), q.order, c.closed)
}

func (q *quadraticEnergy) Value() float64 {
	c := q.state.curve
	d := q.operator()
	if d == nil {
		return 0
	}
	n := c.Len()
	x := coordinates(c)
	var dx, dy mat.VecDense
	dx.MulVec(d, x.SliceVec(0, n))
	dy.MulVec(d, x.SliceVec(n, 2*n))
	return 0.5 * q.weight * (mat.Dot(&dx, &dx) + mat.Dot(&dy, &dy))
}

func (q *quadraticEnergy) Matrix() *mat.Dense {
	d := q.operator()
	n := q.state.curve.Len()
	if d == nil {
		return mat.NewDense(2*n, 2*n, nil)
	}
	var block mat.Dense
	block.Mul(d.T(), d)
	block.Scale(q.weight*q.factor, &block)
	return blockDiag(&block)
}

func (q *quadraticEnergy) Bias() *mat.VecDense {
	return nil
}
