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

// StepSize is the configuration of a step size strategy.  Bind creates
// the Stepper used by one optimizer.
type StepSize interface {
	Bind(s *State) (Stepper, error)
}

// Stepper provides the step sizes for the next iteration.
type Stepper interface {
	// Step returns one step size per coordinate: entries 0, …, N-1 apply
	// to the x coordinates and N, …, 2N-1 to the y coordinates of the
	// current curve.
	Step() ([]float64, error)
}

// ConstantStep uses the same step size for all points and iterations.
type ConstantStep struct {
	Gamma float64
}

// Bind implements the StepSize interface.
func (c ConstantStep) Bind(s *State) (Stepper, error) {
	if err := checkGamma(c.Gamma); err != nil {
		return nil, err
	}
	return &constantStepper{state: s, gamma: c.Gamma}, nil
}

type constantStepper struct {
	state *State
	gamma float64
}

func (c *constantStepper) Step() ([]float64, error) {
	res := make([]float64, 2*c.state.curve.Len())
	for i := range res {
		res[i] = c.gamma
	}
	return res, nil
}

// PointwiseStep reduces the step size of points which are exposed to a
// strong external force, to keep them from overshooting:
//
//	γ[i] = Gamma / (1 + Damping·|f[i]|)
//
// where f[i] is the external force on point i in the most recent
// assembly.  If Damping is zero, a default of 25 is used.
type PointwiseStep struct {
	Gamma   float64
	Damping float64
}

// defaultDamping is the damping of PointwiseStep if none is given.
const defaultDamping = 25

// Bind implements the StepSize interface.
func (p PointwiseStep) Bind(s *State) (Stepper, error) {
	if err := checkGamma(p.Gamma); err != nil {
		return nil, err
	}
	damping := p.Damping
	if damping == 0 {
		damping = defaultDamping
	}
	if damping < 0 || math.IsNaN(damping) {
		return nil, fmt.Errorf("%w: invalid damping %g", ErrInitialization, p.Damping)
	}
	return &pointwiseStepper{state: s, gamma: p.Gamma, damping: damping}, nil
}

type pointwiseStepper struct {
	state   *State
	gamma   float64
	damping float64
}

func (p *pointwiseStepper) Step() ([]float64, error) {
	n := p.state.curve.Len()
	res := make([]float64, 2*n)
	for i := range n {
		g := p.gamma / (1 + p.damping*p.state.ExternalForce(i).Length())
		res[i] = g
		res[n+i] = g
	}
	return res, nil
}

// DistanceStep makes large steps far away from the foreground of a
// binarized raster and small steps close to it:
//
//	γ[i] = Factor·√D(p[i])
//
// where D is the normalized distance map described at Distance.  Points on
// the foreground do not move.  If Factor is zero, 25 is used.
type DistanceStep struct {
	Distance Distance
	Factor   float64
}

// defaultDistanceFactor is the factor of DistanceStep if none is given.
const defaultDistanceFactor = 25

// Bind implements the StepSize interface.
func (d DistanceStep) Bind(s *State) (Stepper, error) {
	factor := d.Factor
	if factor == 0 {
		factor = defaultDistanceFactor
	}
	if err := checkGamma(factor); err != nil {
		return nil, err
	}
	if s.raster == nil {
		return nil, fmt.Errorf("%w: distance step needs a raster", ErrInitialization)
	}
	dist, err := d.Distance.density(s.raster)
	if err != nil {
		return nil, err
	}
	for i, v := range dist {
		dist[i] = factor * math.Sqrt(v)
	}
	return &distanceStepper{
		state: s,
		w:     s.raster.Width(),
		h:     s.raster.Height(),
		gamma: dist,
	}, nil
}

type distanceStepper struct {
	state *State
	w, h  int
	gamma []float64 // per pixel
}

func (d *distanceStepper) Step() ([]float64, error) {
	c := d.state.curve
	n := c.Len()
	res := make([]float64, 2*n)
	for i := range n {
		p := c.pts[i].Mul(c.scale)
		g := d.gamma[clampIndex(p.Y, d.h)*d.w+clampIndex(p.X, d.w)]
		res[i] = g
		res[n+i] = g
	}
	return res, nil
}

func checkGamma(g float64) error {
	if !(g > 0) || math.IsInf(g, 0) {
		return fmt.Errorf("%w: step size %g must be positive", ErrInitialization, g)
	}
	return nil
}
