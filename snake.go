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

// Package snake implements active contours ("snakes") for image segmentation.
//
// A snake is a closed or open polygon which is moved, one implicit step at a
// time, towards a local minimum of an energy functional.  The functional is
// a weighted sum of internal terms (Length, Curvature), which keep the curve
// short and smooth, and external terms (RegionFit, Intensity, Edge), which
// pull the curve towards image structures.  An Optimizer evolves a single
// curve until one of its termination criteria fires; Coupled runs several
// optimizers on the same raster in lock-step rounds.
package snake

//go:generate go run ./testcases/export
//go:generate go run ./testcases/genpdf
//go:generate go run ./testcases/convergence

// Status is the verdict of a termination criterion.
type Status int

const (
	// Continue means the optimizer should perform another iteration.
	Continue Status = iota

	// Done means the optimizer should stop.
	Done
)

func (s Status) String() string {
	switch s {
	case Continue:
		return "continue"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
