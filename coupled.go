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
	"errors"
	"fmt"
	"log"

	"seehuhn.de/go/geom/vec"
)

// Polygon is an initial curve for a Coupled optimizer, in pixel
// coordinates.
type Polygon struct {
	Points []vec.Vec2
	Closed bool
}

// Coupled evolves several curves on one raster.
//
// Every member is an independent Optimizer, built from the same Config.
// The members only interact through the region statistics: pixels inside
// one curve are not counted as background of the others.  Members whose
// initial curve is unusable are left inactive.
type Coupled struct {
	raster  Raster
	members []*Optimizer
	active  []bool
	done    []bool
	iters   []int
	rounds  int
	log     *log.Logger
}

// CoupledResult summarises a finished Coupled run.  Members has one
// entry per initial polygon; inactive members have a nil entry.
type CoupledResult struct {
	Members []*Result
	Rounds  int
}

// NewCoupled creates one optimizer per polygon.
//
// A polygon for which NewOptimizer fails with ErrInvalidGeometry is marked
// inactive; any other failure is returned.  At least one member must be
// active.
func NewCoupled(r Raster, curves []Polygon, cfg *Config) (*Coupled, error) {
	c := &Coupled{
		raster:  r,
		members: make([]*Optimizer, len(curves)),
		active:  make([]bool, len(curves)),
		done:    make([]bool, len(curves)),
		iters:   make([]int, len(curves)),
	}
	if cfg != nil {
		c.log = cfg.Logger
	}

	numActive := 0
	for i, poly := range curves {
		o, err := NewOptimizer(r, poly.Points, poly.Closed, cfg)
		if errors.Is(err, ErrInvalidGeometry) {
			c.logf("snake %d: inactive: %v", i, err)
			continue
		} else if err != nil {
			return nil, &MemberError{Member: i, Err: err}
		}
		c.members[i] = o
		c.active[i] = true
		numActive++
	}
	if numActive == 0 {
		return nil, fmt.Errorf("%w: no usable curves", ErrInitialization)
	}
	return c, nil
}

// Len returns the number of members, including inactive ones.
func (c *Coupled) Len() int {
	return len(c.members)
}

// Active reports whether member i takes part in the optimization.
func (c *Coupled) Active(i int) bool {
	return c.active[i]
}

// Member returns the optimizer of member i, or nil if it is inactive.
func (c *Coupled) Member(i int) *Optimizer {
	return c.members[i]
}

// Iterations returns the number of iterations performed by member i.
func (c *Coupled) Iterations(i int) int {
	return c.iters[i]
}

// Rounds returns the number of completed rounds.
func (c *Coupled) Rounds() int {
	return c.rounds
}

// Round performs one iteration of every active member which has not yet
// stopped.  The result is Done once all active members have stopped.
func (c *Coupled) Round() (Status, error) {
	if c.finished() {
		return Done, nil
	}

	masks := make([]*Mask, len(c.members))
	for i, o := range c.members {
		if c.active[i] {
			masks[i] = o.state.CurveMask()
		}
	}
	for i, o := range c.members {
		if !c.active[i] || c.done[i] {
			continue
		}
		others := NewMask(c.raster.Width(), c.raster.Height())
		for j, m := range masks {
			if j != i && m != nil {
				others.Or(m)
			}
		}
		o.setOthers(others)
	}

	for i, o := range c.members {
		if !c.active[i] || c.done[i] {
			continue
		}
		status, err := o.Iterate()
		if err != nil {
			return Continue, &MemberError{Member: i, Err: err}
		}
		c.iters[i] = o.Iterations()
		if status == Done {
			c.done[i] = true
			c.logf("snake %d: done after %d iterations (%s)", i, c.iters[i], o.stoppedBy)
		}
	}
	c.rounds++

	if c.finished() {
		c.logf("snake: all curves done after %d rounds", c.rounds)
		return Done, nil
	}
	return Continue, nil
}

// Run performs rounds until every active member has stopped.
func (c *Coupled) Run() (*CoupledResult, error) {
	for {
		status, err := c.Round()
		if err != nil {
			return nil, err
		}
		if status == Done {
			break
		}
	}

	res := &CoupledResult{
		Members: make([]*Result, len(c.members)),
		Rounds:  c.rounds,
	}
	for i, o := range c.members {
		if c.active[i] {
			res.Members[i] = o.Result()
		}
	}
	return res, nil
}

func (c *Coupled) finished() bool {
	for i, a := range c.active {
		if a && !c.done[i] {
			return false
		}
	}
	return true
}

func (c *Coupled) logf(format string, args ...any) {
	if c.log != nil {
		c.log.Printf(format, args...)
	}
}
