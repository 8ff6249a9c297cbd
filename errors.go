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
)

var (
	// ErrInitialization is returned when an energy, step size or
	// termination criterion cannot be bound to an optimizer.
	ErrInitialization = errors.New("snake: initialization failed")

	// ErrInvalidGeometry is returned when a curve is too small or too
	// degenerate for the requested operation.
	ErrInvalidGeometry = errors.New("snake: invalid geometry")

	// ErrNumerical is returned when the linear system of an iteration
	// cannot be solved reliably.
	ErrNumerical = errors.New("snake: numerical failure")
)

// MemberError reports the failure of one member of a Coupled optimizer.
type MemberError struct {
	Member int
	Err    error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("snake %d: %v", e.Member, e.Err)
}

func (e *MemberError) Unwrap() error {
	return e.Err
}
