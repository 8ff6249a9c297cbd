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
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Criterion is the configuration of a termination test.  Bind attaches
// the test to the state of one optimizer; a Criterion itself never refers
// to an optimizer and can be reused.
type Criterion interface {
	Bind(s *State) (Checker, error)

	// Name identifies the criterion in results and log messages.
	Name() string
}

// Checker is a termination test bound to one optimizer.
//
// Terminate is called once after every iteration.  Calling it again
// before the next iteration returns the same status.
type Checker interface {
	Terminate() Status
}

// cached implements the per-iteration memoization shared by all checkers.
type cached struct {
	state  *State
	iter   int
	status Status
	valid  bool
}

func (c *cached) get(check func() Status) Status {
	if c.valid && c.iter == c.state.iter {
		return c.status
	}
	c.status = check()
	c.iter = c.state.iter
	c.valid = true
	return c.status
}

// MaxIterations stops the optimizer once Max iterations are complete.
type MaxIterations struct {
	Max int
}

// Bind implements the Criterion interface.
func (m MaxIterations) Bind(s *State) (Checker, error) {
	if m.Max < 1 {
		return nil, fmt.Errorf("%w: maximum iteration count %d must be positive",
			ErrInitialization, m.Max)
	}
	return &maxIterChecker{cached: cached{state: s}, max: m.Max}, nil
}

// Name implements the Criterion interface.
func (m MaxIterations) Name() string {
	return fmt.Sprintf("max-iterations(%d)", m.Max)
}

type maxIterChecker struct {
	cached
	max int
}

func (m *maxIterChecker) Terminate() Status {
	return m.get(func() Status {
		if m.state.iter >= m.max {
			return Done
		}
		return Continue
	})
}

// AreaDiff stops the optimizer when the number of enclosed pixels changes
// by less than the given fraction from one iteration to the next, or after
// more than MaxIter iterations.  A MaxIter of zero means no limit.
//
// If the previous curve enclosed no pixels at all the relative change is
// undefined; the optimizer is then stopped, since the curve has collapsed.
type AreaDiff struct {
	Fraction float64
	MaxIter  int
}

// Bind implements the Criterion interface.
func (a AreaDiff) Bind(s *State) (Checker, error) {
	if err := checkFraction(a.Fraction); err != nil {
		return nil, err
	}
	if a.MaxIter < 0 {
		return nil, fmt.Errorf("%w: negative iteration limit %d", ErrInitialization, a.MaxIter)
	}
	return &areaDiffChecker{cached: cached{state: s}, cfg: a}, nil
}

// Name implements the Criterion interface.
func (a AreaDiff) Name() string {
	return fmt.Sprintf("area-diff(%g)", a.Fraction)
}

type areaDiffChecker struct {
	cached
	cfg AreaDiff
}

func (a *areaDiffChecker) Terminate() Status {
	return a.get(func() Status {
		s := a.state
		if a.cfg.MaxIter > 0 && s.iter > a.cfg.MaxIter {
			return Done
		}
		prev := s.PreviousMask()
		if prev == nil {
			return Continue
		}
		old := prev.Count()
		if old == 0 {
			return Done
		}
		cur := s.CurveMask().Count()
		if math.Abs(1-float64(cur)/float64(old)) < a.cfg.Fraction {
			return Done
		}
		return Continue
	})
}

// Parameters of AreaDiffSliding.
const (
	// slidingWindow is the number of raw area samples which are averaged.
	slidingWindow = 11

	// slidingOffset is the distance, in iterations, between the two
	// smoothed areas which are compared.
	slidingOffset = 10

	// defaultSlidingFraction is the relative change below which
	// AreaDiffSliding stops the optimizer, if no fraction is given.
	defaultSlidingFraction = 0.001
)

// AreaDiffSliding stops the optimizer when the enclosed area, averaged over
// the last 11 iterations, has changed by less than Fraction over the last
// 10 iterations.  If Fraction is zero, 0.001 is used.
//
// Smoothing starts once 11 raw samples are available, and the test needs 11
// smoothed samples; until then it always returns Continue.  The initial
// curve counts as the first raw sample, so the earliest stop is at
// iteration 20.
type AreaDiffSliding struct {
	Fraction float64
}

// Bind implements the Criterion interface.
func (a AreaDiffSliding) Bind(s *State) (Checker, error) {
	frac := a.Fraction
	if frac == 0 {
		frac = defaultSlidingFraction
	}
	if err := checkFraction(frac); err != nil {
		return nil, err
	}
	c := &slidingChecker{cached: cached{state: s}, fraction: frac}
	c.record()
	return c, nil
}

// Name implements the Criterion interface.
func (a AreaDiffSliding) Name() string {
	frac := a.Fraction
	if frac == 0 {
		frac = defaultSlidingFraction
	}
	return fmt.Sprintf("area-diff-sliding(%g)", frac)
}

type slidingChecker struct {
	cached
	fraction float64
	raw      []float64 // the last slidingWindow areas
	smoothed []float64 // the last slidingOffset+1 window means
}

func (c *slidingChecker) record() {
	area := float64(c.state.CurveMask().Count())
	c.raw = append(c.raw, area)
	if len(c.raw) > slidingWindow {
		c.raw = c.raw[1:]
	}
	if len(c.raw) < slidingWindow {
		return
	}
	c.smoothed = append(c.smoothed, stat.Mean(c.raw, nil))
	if len(c.smoothed) > slidingOffset+1 {
		c.smoothed = c.smoothed[1:]
	}
}

func (c *slidingChecker) Terminate() Status {
	return c.get(func() Status {
		c.record()
		if len(c.smoothed) < slidingOffset+1 {
			return Continue
		}
		then := c.smoothed[0]
		now := c.smoothed[len(c.smoothed)-1]
		if then == 0 || math.Abs(now-then)/then < c.fraction {
			return Done
		}
		return Continue
	})
}

// motionEpsilon is the displacement, in curve units, below which a point
// counts as unmoved.
const motionEpsilon = 1e-8

// MotionDiff stops the optimizer when at least the given fraction of the
// points did not move in the last iteration, or after MaxIter iterations.
// A MaxIter of zero means no limit.  Points inserted by resampling count as
// moved.
type MotionDiff struct {
	Fraction float64
	MaxIter  int
}

// Bind implements the Criterion interface.
func (m MotionDiff) Bind(s *State) (Checker, error) {
	if err := checkFraction(m.Fraction); err != nil {
		return nil, err
	}
	if m.MaxIter < 0 {
		return nil, fmt.Errorf("%w: negative iteration limit %d", ErrInitialization, m.MaxIter)
	}
	return &motionChecker{cached: cached{state: s}, cfg: m}, nil
}

// Name implements the Criterion interface.
func (m MotionDiff) Name() string {
	return fmt.Sprintf("motion-diff(%g)", m.Fraction)
}

type motionChecker struct {
	cached
	cfg MotionDiff
}

func (m *motionChecker) Terminate() Status {
	return m.get(func() Status {
		s := m.state
		if m.cfg.MaxIter > 0 && s.iter >= m.cfg.MaxIter {
			return Done
		}
		cur, prev := s.curve, s.previous
		if prev == nil || cur.Len() == 0 {
			return Continue
		}
		unmoved := 0
		for i, p := range cur.pts {
			j := cur.prev[i]
			if j == NoPrev || j >= prev.Len() {
				continue
			}
			if p.Sub(prev.pts[j]).Length() < motionEpsilon {
				unmoved++
			}
		}
		if float64(unmoved)/float64(cur.Len()) >= m.cfg.Fraction {
			return Done
		}
		return Continue
	})
}

// Canceled stops the optimizer once the context is canceled or its
// deadline has passed.
type Canceled struct {
	Ctx context.Context
}

// Bind implements the Criterion interface.
func (c Canceled) Bind(s *State) (Checker, error) {
	if c.Ctx == nil {
		return nil, fmt.Errorf("%w: no context given", ErrInitialization)
	}
	return &canceledChecker{cached: cached{state: s}, ctx: c.Ctx}, nil
}

// Name implements the Criterion interface.
func (Canceled) Name() string {
	return "canceled"
}

type canceledChecker struct {
	cached
	ctx context.Context
}

func (c *canceledChecker) Terminate() Status {
	return c.get(func() Status {
		if c.ctx.Err() != nil {
			return Done
		}
		return Continue
	})
}

func checkFraction(f float64) error {
	if f < 0 || math.IsNaN(f) {
		return fmt.Errorf("%w: invalid fraction %g", ErrInitialization, f)
	}
	return nil
}
