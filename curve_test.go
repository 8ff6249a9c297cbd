package snake

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// diff reports a test failure if want and got differ.
func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Errorf("unexpected result (-want +got):\n%s", d)
	}
}

// approx compares floating point values up to rounding errors.
var approx = cmpopts.EquateApprox(0, 1e-9)

// octagon is the closed test curve used throughout the tests.
var octagon = []vec.Vec2{
	{X: 2, Y: 1}, {X: 3, Y: 1}, {X: 4, Y: 2}, {X: 4, Y: 3},
	{X: 3, Y: 4}, {X: 2, Y: 4}, {X: 1, Y: 3}, {X: 1, Y: 2},
}

func unitSquare() *Curve {
	return FromPolygon([]vec.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, true)
}

func TestSignedArea(t *testing.T) {
	c := unitSquare()
	if a := c.SignedArea(); a != 1 {
		t.Errorf("area %g, want 1", a)
	}
	if !c.CounterClockwise() {
		t.Error("square should be counter-clockwise")
	}

	r := c.Reversed()
	if a := r.SignedArea(); a != -1 {
		t.Errorf("reversed area %g, want -1", a)
	}
	if r.CounterClockwise() {
		t.Error("reversed square should be clockwise")
	}

	// the octagon is the 3×3 square with four corners of area ½ removed
	if a := FromPolygon(octagon, true).SignedArea(); a != 7 {
		t.Errorf("octagon area %g, want 7", a)
	}
}

func TestPerimeter(t *testing.T) {
	closed := FromPolygon(octagon, true)
	want := 4 + 4*math.Sqrt2
	if p := closed.Perimeter(); math.Abs(p-want) > 1e-12 {
		t.Errorf("closed perimeter %g, want %g", p, want)
	}

	// the open curve lacks the diagonal from the last to the first point
	open := FromPolygon(octagon, false)
	want -= math.Sqrt2
	if p := open.Perimeter(); math.Abs(p-want) > 1e-12 {
		t.Errorf("open perimeter %g, want %g", p, want)
	}
}

func TestReversedKeepsLinks(t *testing.T) {
	c := FromPolygon(octagon, true)
	c = c.successorOf(c.Points())
	r := c.Reversed()
	for i := range r.Len() {
		j := c.Len() - 1 - i
		if r.Prev(i) != j || r.Point(i) != c.Point(j) {
			t.Errorf("point %d: link %d, want %d", i, r.Prev(i), j)
		}
	}
}

func TestWithScale(t *testing.T) {
	c := FromPolygon(octagon, true)
	s := c.WithScale(8)
	if s.Scale() != 8 {
		t.Errorf("scale %g", s.Scale())
	}
	diff(t, octagon, s.PixelPoints(), approx)
	diff(t, vec.Vec2{X: 0.25, Y: 0.125}, s.Point(0), approx)

	// lengths are measured in curve units
	if p := s.Perimeter(); math.Abs(p-c.Perimeter()/8) > 1e-12 {
		t.Errorf("perimeter %g", p)
	}
}

func TestFromPolygonCopies(t *testing.T) {
	pts := []vec.Vec2{{X: 1, Y: 2}, {X: 3, Y: 4}}
	c := FromPolygon(pts, false)
	pts[0].X = 100
	if c.Point(0).X != 1 {
		t.Error("curve shares the caller's slice")
	}
	for i := range c.Len() {
		if c.Prev(i) != NoPrev {
			t.Errorf("point %d is linked", i)
		}
	}
}

func TestNext(t *testing.T) {
	closed := FromPolygon(octagon, true)
	open := FromPolygon(octagon, false)
	if closed.next(7) != 0 {
		t.Error("closed curve should wrap around")
	}
	if open.next(7) != -1 {
		t.Error("open curve should end")
	}
	if closed.numEdges() != 8 || open.numEdges() != 7 {
		t.Errorf("edges %d, %d", closed.numEdges(), open.numEdges())
	}
}

func TestClamped(t *testing.T) {
	c := FromPolygon([]vec.Vec2{{X: -3, Y: 2}, {X: 12, Y: 5}, {X: 4, Y: 20}}, true).WithScale(2)
	got := c.clamped(10, 10).PixelPoints()
	want := []vec.Vec2{{X: 0, Y: 2}, {X: 9, Y: 5}, {X: 4, Y: 9}}
	diff(t, want, got, approx)
}

func TestEnclosedPixelCount(t *testing.T) {
	r := NewGrayRaster(10, 10)
	doubled := make([]vec.Vec2, len(octagon))
	for i, p := range octagon {
		doubled[i] = p.Mul(2)
	}
	c := FromPolygon(doubled, true).WithScale(4)
	// The 6×6 bounding square loses one pixel at every cut corner.  The
	// two half covered pixels next to it count as enclosed.
	if n := c.EnclosedPixelCount(r); n != 32 {
		t.Errorf("got %d pixels, want 32", n)
	}
}

func TestPath(t *testing.T) {
	c := FromPolygon(octagon[:3], true).WithScale(4)
	var cmds []path.Command
	var pts []vec.Vec2
	for cmd, args := range c.Path() {
		cmds = append(cmds, cmd)
		pts = append(pts, args...)
	}
	diff(t, []path.Command{path.CmdMoveTo, path.CmdLineTo, path.CmdLineTo, path.CmdClose}, cmds)
	diff(t, octagon[:3], pts, approx)

	open := FromPolygon(octagon[:3], false)
	n := 0
	for cmd := range open.Path() {
		if cmd == path.CmdClose {
			t.Error("open curve is closed")
		}
		n++
	}
	if n != 3 {
		t.Errorf("got %d commands, want 3", n)
	}
}
