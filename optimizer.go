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
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/vec"
)

// Default values for Config fields left at zero.
const (
	// defaultGamma is the step size used if no StepSize is configured.
	defaultGamma = 0.5

	// defaultMaxIterations bounds the run if no Criterion is configured.
	defaultMaxIterations = 100

	// defaultSegmentLength is the target distance between neighbouring
	// points after resampling, in pixels.
	defaultSegmentLength = 5.0

	// defaultResampleInterval is the number of iterations between two
	// resampling steps.
	defaultResampleInterval = 2
)

// minPoints is the smallest number of points an optimizer can evolve.
const minPoints = 5

// Config describes an optimizer run.  A Config holds no per-run state and
// can be used for any number of optimizers.
type Config struct {
	// Energies is the energy functional to minimise.  Required.
	Energies *EnergySet

	// Step determines the step sizes.  If nil, ConstantStep{Gamma: 0.5} is
	// used.
	Step StepSize

	// Termination lists the stopping criteria, which are tested in order
	// after every iteration.  If empty, MaxIterations{Max: 100} is used.
	Termination []Criterion

	// ScaleFactor is the size of one curve unit in pixels.  Energies see the
	// curve in these units.  If zero, the larger raster dimension is used,
	// so that the raster maps to the unit square.
	ScaleFactor float64

	// Resample enables resampling of the curve during the run.
	Resample bool

	// SegmentLength is the target point distance for resampling, in
	// pixels.  If zero, 5 pixels are used.
	SegmentLength float64

	// ResampleInterval is the number of iterations between resampling
	// steps.  If zero, every second iteration resamples.
	ResampleInterval int

	// Logger receives progress messages.  If nil, nothing is logged.
	Logger *log.Logger
}

// Result summarises a finished optimizer run.
type Result struct {
	// Points holds the final curve, in pixel coordinates.
	Points []vec.Vec2
	Closed bool

	Iterations int
	Status     Status

	// StoppedBy is the name of the criterion which stopped the run.
	StoppedBy string

	// Energy is the weighted total energy of the final curve.  It is NaN
	// if one of the energies is undefined for this curve, for example
	// because a region fit curve encloses no pixels.
	Energy float64
}

// Optimizer evolves a single curve on a raster.
//
// Each iteration solves the linear system of the configured energies for
// new point positions, keeps the point order counter-clockwise if an
// energy needs this, resamples the curve if requested, moves points back
// into the raster and finally asks the termination criteria whether to
// stop.
type Optimizer struct {
	state    *State
	energies *boundSet
	stepper  Stepper
	checkers []Checker
	names    []string

	ccw      bool
	resample bool
	spacing  float64 // in curve units
	interval int

	status    Status
	stoppedBy string

	log *log.Logger
}

// NewOptimizer binds the configuration to a new optimizer for the given
// raster and initial polygon, in pixel coordinates.
//
// All problems with the configuration are reported here, wrapping
// ErrInitialization; the error also wraps ErrInvalidGeometry if the
// initial curve is unusable.
func NewOptimizer(r Raster, initial []vec.Vec2, closed bool, cfg *Config) (*Optimizer, error) {
	if r == nil || r.Width() <= 0 || r.Height() <= 0 {
		return nil, fmt.Errorf("%w: empty raster", ErrInitialization)
	}
	if cfg == nil || cfg.Energies == nil {
		return nil, fmt.Errorf("%w: no energies configured", ErrInitialization)
	}
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: %w: no initial points",
			ErrInitialization, ErrInvalidGeometry)
	}

	scale := cfg.ScaleFactor
	if scale == 0 {
		scale = float64(max(r.Width(), r.Height()))
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: invalid scale factor %g", ErrInitialization, scale)
	}
	segment := cfg.SegmentLength
	if segment == 0 {
		segment = defaultSegmentLength
	}
	interval := cfg.ResampleInterval
	if interval == 0 {
		interval = defaultResampleInterval
	}
	if cfg.Resample && (!(segment > 0) || interval < 0) {
		return nil, fmt.Errorf("%w: invalid resampling (segment %g, interval %d)",
			ErrInitialization, segment, interval)
	}

	o := &Optimizer{
		ccw:      cfg.Energies.CounterClockwise(),
		resample: cfg.Resample,
		spacing:  segment / scale,
		interval: interval,
		log:      cfg.Logger,
	}

	c := FromPolygon(initial, closed).WithScale(scale)
	if o.resample && c.Len() <= minPoints {
		var err error
		c, err = c.Resample(o.spacing)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
		}
	}
	if c.Len() < minPoints {
		return nil, fmt.Errorf("%w: %w: curve has %d points, need at least %d",
			ErrInitialization, ErrInvalidGeometry, c.Len(), minPoints)
	}
	if o.ccw && c.Len() > minPoints && !c.CounterClockwise() {
		c = c.Reversed()
		o.logf("snake: reversed initial curve to counter-clockwise order")
	}
	o.state = newState(r, c)

	var err error
	o.energies, err = cfg.Energies.bind(o.state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	step := cfg.Step
	if step == nil {
		step = ConstantStep{Gamma: defaultGamma}
	}
	o.stepper, err = step.Bind(o.state)
	if err != nil {
		return nil, fmt.Errorf("%w: step size: %w", ErrInitialization, err)
	}

	criteria := cfg.Termination
	if len(criteria) == 0 {
		criteria = []Criterion{MaxIterations{Max: defaultMaxIterations}}
	}
	for _, crit := range criteria {
		ch, err := crit.Bind(o.state)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInitialization, crit.Name(), err)
		}
		o.checkers = append(o.checkers, ch)
		o.names = append(o.names, crit.Name())
	}

	o.logf("snake: %d points, scale %g, %d energies, %d criteria",
		c.Len(), scale, len(o.energies.energies), len(o.checkers))
	return o, nil
}

// Curve returns the current curve.
func (o *Optimizer) Curve() *Curve {
	return o.state.curve
}

// Iterations returns the number of completed iterations.
func (o *Optimizer) Iterations() int {
	return o.state.iter
}

// Status returns Done once a termination criterion has fired.
func (o *Optimizer) Status() Status {
	return o.status
}

// Energy returns the weighted total energy of the current curve.
// If one of the energies cannot be evaluated, NaN is returned and the
// reason is logged.
func (o *Optimizer) Energy() float64 {
	v, err := o.energies.value()
	if err != nil {
		o.logf("snake: energy undefined: %v", err)
	}
	return v
}

// Iterate performs one iteration and polls the termination criteria.
func (o *Optimizer) Iterate() (Status, error) {
	s := o.state
	c := s.curve
	if c.Len() < minPoints {
		return Continue, fmt.Errorf("%w: curve has %d points, need at least %d",
			ErrInvalidGeometry, c.Len(), minPoints)
	}

	if err := o.energies.update(); err != nil {
		return Continue, fmt.Errorf("iteration %d: %w", s.iter+1, err)
	}
	a, b, force := o.energies.assemble(c)
	s.force = force

	gamma, err := o.stepper.Step()
	if err != nil {
		return Continue, fmt.Errorf("iteration %d: step size: %w", s.iter+1, err)
	}
	s.gamma = gamma

	next, err := solve(c, a, b, gamma)
	if err != nil {
		return Continue, fmt.Errorf("iteration %d: %w", s.iter+1, err)
	}
	if o.ccw && next.Len() > minPoints && !next.CounterClockwise() {
		next = next.Reversed()
	}
	if o.resample && (s.iter+1)%o.interval == 0 {
		next, err = next.Resample(o.spacing)
		if err != nil {
			return Continue, fmt.Errorf("iteration %d: %w", s.iter+1, err)
		}
	}
	next = next.clamped(s.raster.Width(), s.raster.Height())
	s.advance(next)

	if o.log != nil {
		o.logf("snake: iteration %d: %d points, energy %.6g, step %.3g..%.3g",
			s.iter, next.Len(), o.Energy(), floats.Min(gamma), floats.Max(gamma))
	}

	for i, ch := range o.checkers {
		if ch.Terminate() == Done {
			o.status = Done
			o.stoppedBy = o.names[i]
			o.logf("snake: stopped by %s after %d iterations", o.stoppedBy, s.iter)
			return Done, nil
		}
	}
	o.status = Continue
	return Continue, nil
}

// Run iterates until a termination criterion fires.
func (o *Optimizer) Run() (*Result, error) {
	for {
		status, err := o.Iterate()
		if err != nil {
			return nil, err
		}
		if status == Done {
			return o.Result(), nil
		}
	}
}

// Result describes the current state of the optimizer.
func (o *Optimizer) Result() *Result {
	c := o.state.curve
	return &Result{
		Points:     c.PixelPoints(),
		Closed:     c.closed,
		Iterations: o.state.iter,
		Status:     o.status,
		StoppedBy:  o.stoppedBy,
		Energy:     o.Energy(),
	}
}

func (o *Optimizer) logf(format string, args ...any) {
	if o.log != nil {
		o.log.Printf(format, args...)
	}
}

// solve computes the points x' with (I + Γ·A)·x' = x + Γ·b, where x holds
// the coordinates of c and Γ = diag(gamma).
func solve(c *Curve, a *mat.Dense, b *mat.VecDense, gamma []float64) (*Curve, error) {
	n := c.Len()
	g := mat.NewVecDense(2*n, gamma)

	var h mat.Dense
	h.Mul(mat.NewDiagDense(2*n, gamma), a)
	for i := range 2 * n {
		h.Set(i, i, h.At(i, i)+1)
	}

	var rhs mat.VecDense
	rhs.MulElemVec(g, b)
	rhs.AddVec(&rhs, coordinates(c))

	var x mat.VecDense
	if err := x.SolveVec(&h, &rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNumerical, err)
	}

	pts := make([]vec.Vec2, n)
	for i := range pts {
		pts[i] = vec.Vec2{X: x.AtVec(i), Y: x.AtVec(n + i)}
		if !isFinite(pts[i].X) || !isFinite(pts[i].Y) {
			return nil, fmt.Errorf("%w: non-finite coordinates for point %d", ErrNumerical, i)
		}
	}
	return c.successorOf(pts), nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// setOthers sets the pixels which are owned by other curves.
func (o *Optimizer) setOthers(m *Mask) {
	o.state.others = m
}
