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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/vec"
)

// EnergySet is an ordered list of weighted energy terms, together with the
// normalization mode used for all of them.
//
// The weights are relative: when the set is bound they are divided by their
// sum.  An EnergySet is configured once, using Add, and is then only read;
// one set can configure any number of optimizers.
type EnergySet struct {
	mode    Normalization
	terms   []Term
	weights []float64
}

// NewEnergySet returns an empty set with the given normalization mode.
func NewEnergySet(mode Normalization) *EnergySet {
	return &EnergySet{mode: mode}
}

// Add appends a term with the given weight and returns the set.
func (s *EnergySet) Add(t Term, weight float64) *EnergySet {
	s.terms = append(s.terms, t)
	s.weights = append(s.weights, weight)
	return s
}

// Mode returns the normalization mode of the set.
func (s *EnergySet) Mode() Normalization {
	return s.mode
}

// Len returns the number of terms.
func (s *EnergySet) Len() int {
	return len(s.terms)
}

// Terms returns the terms of the set, in order.
func (s *EnergySet) Terms() []Term {
	return append([]Term(nil), s.terms...)
}

// Weights returns the term weights divided by their sum.
func (s *EnergySet) Weights() ([]float64, error) {
	if len(s.weights) == 0 {
		return nil, fmt.Errorf("%w: no energy terms", ErrInitialization)
	}
	for i, w := range s.weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: invalid weight %g for term %d",
				ErrInitialization, w, i)
		}
	}
	total := floats.Sum(s.weights)
	if total <= 0 {
		return nil, fmt.Errorf("%w: energy weights sum to zero", ErrInitialization)
	}
	res := append([]float64(nil), s.weights...)
	floats.Scale(1/total, res)
	return res, nil
}

// CounterClockwise reports whether any term of the set needs the curve
// points in counter-clockwise order.
func (s *EnergySet) CounterClockwise() bool {
	for _, t := range s.terms {
		if t.CounterClockwise() {
			return true
		}
	}
	return false
}

// boundSet is an EnergySet bound to the state of one optimizer.
type boundSet struct {
	energies []Energy
	weights  []float64
	external []bool
}

func (s *EnergySet) bind(st *State) (*boundSet, error) {
	weights, err := s.Weights()
	if err != nil {
		return nil, err
	}
	b := &boundSet{weights: weights}
	for i, t := range s.terms {
		e, err := t.Bind(st, s.mode)
		if err != nil {
			return nil, fmt.Errorf("energy %d (%v): %w", i, t, err)
		}
		b.energies = append(b.energies, e)
		b.external = append(b.external, t.External())
	}
	return b, nil
}

func (b *boundSet) update() error {
	for i, e := range b.energies {
		if err := e.Update(); err != nil {
			return fmt.Errorf("energy %d: %w", i, err)
		}
	}
	return nil
}

// value returns the weighted sum of all energies for the current curve.
// If an energy cannot be evaluated, the result is NaN and the error says
// why.
func (b *boundSet) value() (float64, error) {
	if err := b.update(); err != nil {
		return math.NaN(), err
	}
	var sum float64
	for i, e := range b.energies {
		sum += b.weights[i] * e.Value()
	}
	return sum, nil
}

// assemble returns the weighted sums A and b of the energy matrices and
// biases for the curve c, together with the force of the external
// energies on every point.
func (b *boundSet) assemble(c *Curve) (*mat.Dense, *mat.VecDense, []vec.Vec2) {
	n := c.Len()
	a := mat.NewDense(2*n, 2*n, nil)
	rhs := mat.NewVecDense(2*n, nil)
	extA := mat.NewDense(2*n, 2*n, nil)
	extB := mat.NewVecDense(2*n, nil)
	var scaled mat.Dense
	for i, e := range b.energies {
		w := b.weights[i]
		if m := e.Matrix(); m != nil {
			scaled.Scale(w, m)
			a.Add(a, &scaled)
			if b.external[i] {
				extA.Add(extA, &scaled)
			}
		}
		if v := e.Bias(); v != nil {
			rhs.AddScaledVec(rhs, w, v)
			if b.external[i] {
				extB.AddScaledVec(extB, w, v)
			}
		}
	}

	var f mat.VecDense
	f.MulVec(extA, coordinates(c))
	f.SubVec(extB, &f)
	force := make([]vec.Vec2, n)
	for i := range force {
		force[i] = vec.Vec2{X: f.AtVec(i), Y: f.AtVec(n + i)}
	}
	return a, rhs, force
}
