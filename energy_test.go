package snake

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/vec"
)

func octagonState() *State {
	return newState(NewGrayRaster(8, 8), FromPolygon(octagon, true))
}

func mustBind(t *testing.T, term Term, s *State, mode Normalization) Energy {
	t.Helper()
	e, err := term.Bind(s, mode)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Update(); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestOctagonEnergies(t *testing.T) {
	s := octagonState()

	length := mustBind(t, Length{Alpha: 2}, s, NormNone)
	if v := length.Value(); math.Abs(v-12) > 1e-12 {
		t.Errorf("length energy %g, want 12", v)
	}

	curvature := mustBind(t, Curvature{Beta: 2}, s, NormNone)
	if v := curvature.Value(); math.Abs(v-8) > 1e-12 {
		t.Errorf("curvature energy %g, want 8", v)
	}

	// normalization changes the matrix, not the energy
	balanced := mustBind(t, Length{Alpha: 2}, s, NormBalanced)
	if v := balanced.Value(); math.Abs(v-12) > 1e-12 {
		t.Errorf("balanced length energy %g, want 12", v)
	}
}

func TestLengthMatrix(t *testing.T) {
	s := octagonState()
	a := mustBind(t, Length{Alpha: 2}, s, NormNone).Matrix()

	checkEntries(t, a, 8, map[int]float64{0: 4, 1: -2, 7: -2})
	if !mat.Equal(a, a.T()) {
		t.Error("matrix is not symmetric")
	}

	// A·x is the derivative of the energy
	checkGradient(t, s, Length{Alpha: 2})

	if b := mustBind(t, Length{Alpha: 2}, s, NormNone).Bias(); b != nil {
		t.Error("internal energy has a bias")
	}
}

func TestCurvatureMatrix(t *testing.T) {
	s := octagonState()
	a := mustBind(t, Curvature{Beta: 2}, s, NormNone).Matrix()

	checkEntries(t, a, 8, map[int]float64{0: 12, 1: -8, 7: -8, 2: 2, 6: 2})
	if !mat.Equal(a, a.T()) {
		t.Error("matrix is not symmetric")
	}
	checkGradient(t, s, Curvature{Beta: 2})
}

func TestBalancedMatrices(t *testing.T) {
	s := octagonState()

	a := mustBind(t, Length{Alpha: 5}, s, NormBalanced).Matrix()
	checkEntries(t, a, 8, map[int]float64{0: 1, 1: -0.5, 7: -0.5})

	a = mustBind(t, Curvature{Beta: 5}, s, NormBalanced).Matrix()
	checkEntries(t, a, 8, map[int]float64{0: 0.75, 1: -0.5, 7: -0.5, 2: 0.125, 6: 0.125})
}

// checkEntries verifies that the 2n×2n matrix a consists of two identical
// circulant n×n blocks on the diagonal.  The first row of each block is
// given by offset, all other entries must be zero.
func checkEntries(t *testing.T, a *mat.Dense, n int, offset map[int]float64) {
	t.Helper()
	r, c := a.Dims()
	if r != 2*n || c != 2*n {
		t.Fatalf("matrix is %d×%d, want %d×%d", r, c, 2*n, 2*n)
	}
	for i := range 2 * n {
		for j := range 2 * n {
			want := 0.0
			if i/n == j/n {
				want = offset[((j-i)%n+n)%n]
			}
			if got := a.At(i, j); math.Abs(got-want) > 1e-12 {
				t.Errorf("A[%d,%d] = %g, want %g", i, j, got, want)
			}
		}
	}
}

// checkGradient compares A·x with a numerical derivative of the energy.
func checkGradient(t *testing.T, s *State, term Term) {
	t.Helper()
	c := s.curve
	n := c.Len()
	e := mustBind(t, term, s, NormNone)

	var grad mat.VecDense
	grad.MulVec(e.Matrix(), coordinates(c))

	const h = 1e-6
	for k := range 2 * n {
		pts := c.Points()
		shift := func(d float64) float64 {
			moved := slicesWithShift(pts, k, n, d)
			st := newState(s.raster, FromPolygon(moved, c.closed))
			return mustBind(t, term, st, NormNone).Value()
		}
		num := (shift(h) - shift(-h)) / (2 * h)
		if math.Abs(num-grad.AtVec(k)) > 1e-4 {
			t.Errorf("coordinate %d: derivative %g, matrix gives %g", k, num, grad.AtVec(k))
		}
	}
}

func slicesWithShift(pts []vec.Vec2, k, n int, d float64) []vec.Vec2 {
	res := append([]vec.Vec2(nil), pts...)
	if k < n {
		res[k].X += d
	} else {
		res[k-n].Y += d
	}
	return res
}

func TestOpenCurveStencils(t *testing.T) {
	s := newState(NewGrayRaster(8, 8), FromPolygon(octagon, false))

	// without the closing segment, the length energy loses ½·2·|(1,-1)|² = 2
	e := mustBind(t, Length{Alpha: 2}, s, NormNone)
	if v := e.Value(); math.Abs(v-10) > 1e-12 {
		t.Errorf("open length energy %g, want 10", v)
	}
	a := e.Matrix()
	if a.At(0, 0) != 2 || a.At(0, 7) != 0 || a.At(3, 3) != 4 {
		t.Errorf("unexpected open curve matrix:\n%v", mat.Formatted(a))
	}
	checkGradient(t, s, Length{Alpha: 2})
	checkGradient(t, s, Curvature{Beta: 1})
}

func TestCurvatureTooFewPoints(t *testing.T) {
	s := newState(NewGrayRaster(8, 8), FromPolygon(octagon[:4], true))
	_, err := Curvature{Beta: 1}.Bind(s, NormNone)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("bind: got %v", err)
	}

	s = octagonState()
	e := mustBind(t, Curvature{Beta: 1}, s, NormNone)
	s.advance(FromPolygon(octagon[:4], true))
	if err := e.Update(); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("update: got %v", err)
	}
}

func TestNegativeWeights(t *testing.T) {
	s := octagonState()
	terms := []Term{
		Length{Alpha: -1},
		Curvature{Beta: -1},
		RegionFit{LambdaIn: -1, LambdaOut: 1},
		Intensity{Sigma: -1},
		Edge{Sigma: -2},
	}
	for _, term := range terms {
		if _, err := term.Bind(s, NormNone); !errors.Is(err, ErrInitialization) {
			t.Errorf("%v: got %v", term, err)
		}
	}
}

// discState returns a state with a bright disc of radius 10 and a curve of
// the given radius around it, both centred in a 64×64 raster.
func discState(radius float64, n int) *State {
	r := FillPath(FromPolygon(shifted(regularPolygon(64, 10), 32, 32), true).Path(), 64, 64, 1, 0)
	c := FromPolygon(shifted(regularPolygon(n, radius), 32, 32), true).WithScale(64)
	return newState(r, c)
}

func shifted(pts []vec.Vec2, dx, dy float64) []vec.Vec2 {
	for i := range pts {
		pts[i].X += dx
		pts[i].Y += dy
	}
	return pts
}

func TestRegionFitStructure(t *testing.T) {
	s := discState(20, 24)
	e := mustBind(t, RegionFit{LambdaIn: 1, LambdaOut: 1}, s, NormBalanced)
	a := e.Matrix()
	n := s.curve.Len()

	for i := range n {
		for j := range n {
			if a.At(i, j) != 0 || a.At(n+i, n+j) != 0 {
				t.Fatalf("non-zero diagonal block entry at (%d, %d)", i, j)
			}
			if a.At(i, n+j) != -a.At(n+i, j) {
				t.Fatalf("off-diagonal blocks not antisymmetric at (%d, %d)", i, j)
			}
		}
	}
	if e.Bias() != nil {
		t.Error("region energy has a bias")
	}
}

func TestRegionFitMeans(t *testing.T) {
	s := discState(20, 24)
	e := mustBind(t, RegionFit{LambdaIn: 1, LambdaOut: 1}, s, NormNone)
	in, out := e.(*regionFit).Means()
	if out != 0 {
		t.Errorf("outside mean %g, want 0", out)
	}
	if in < 0.2 || in > 0.3 {
		t.Errorf("inside mean %g, want about 0.25", in)
	}

	// pixels owned by another curve are not part of the background
	others := NewMask(64, 64)
	for i := range others.Pix[:64] {
		others.Pix[i] = true
	}
	s2 := discState(20, 24)
	s2.others = others
	e2 := mustBind(t, RegionFit{LambdaIn: 1, LambdaOut: 1}, s2, NormNone)
	r2 := e2.(*regionFit)
	if r2.wOut[0] != 0 || r2.wOut[64*32] != 1 {
		t.Error("background weights ignore other curves")
	}
}

func TestRegionFitDirection(t *testing.T) {
	// a curve around the disc is pulled inwards
	s := discState(20, 24)
	e := mustBind(t, RegionFit{LambdaIn: 1, LambdaOut: 1}, s, NormBalanced).(*regionFit)
	for i := range s.curve.Len() {
		if tau := e.tau(i); tau <= 0 {
			t.Errorf("point %d: τ = %g, want positive", i, tau)
		}
	}
	checkInward(t, s, e.Matrix(), true)

	// a curve inside the disc is pushed outwards
	s = discState(6, 12)
	e = mustBind(t, RegionFit{LambdaIn: 1, LambdaOut: 1}, s, NormBalanced).(*regionFit)
	checkInward(t, s, e.Matrix(), false)
}

// checkInward verifies that the displacement -A·x points towards the
// centre of the curve for every point, or away from it.
func checkInward(t *testing.T, s *State, a *mat.Dense, inward bool) {
	t.Helper()
	c := s.curve
	n := c.Len()
	var ax mat.VecDense
	ax.MulVec(a, coordinates(c))

	centre := vec.Vec2{X: 0.5, Y: 0.5}
	for i := range n {
		move := vec.Vec2{X: -ax.AtVec(i), Y: -ax.AtVec(n + i)}
		radial := c.Point(i).Sub(centre)
		dot := move.X*radial.X + move.Y*radial.Y
		if inward != (dot < 0) {
			t.Errorf("point %d moves the wrong way (%v)", i, move)
		}
	}
}

func TestRegionFitEmptyRegion(t *testing.T) {
	r := NewGrayRaster(16, 16)
	pts := []vec.Vec2{{X: -5, Y: -5}, {X: 30, Y: -5}, {X: 30, Y: 30}, {X: -5, Y: 30}, {X: -5, Y: 10}}
	s := newState(r, FromPolygon(pts, true))
	e, err := RegionFit{LambdaIn: 1, LambdaOut: 1}.Bind(s, NormNone)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Update(); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("got %v", err)
	}
}

func TestIntensityForce(t *testing.T) {
	// brightness increases to the right
	r := NewGrayRaster(16, 16)
	for y := range 16 {
		for x := range 16 {
			r.Set(x, y, float64(x)/15)
		}
	}
	s := newState(r, FromPolygon(regularPolygon(8, 3), true))
	shifted(s.curve.pts, 8, 8)

	dark := mustBind(t, Intensity{}, s, NormBalanced)
	bright := mustBind(t, Intensity{Bright: true}, s, NormBalanced)
	n := s.curve.Len()
	bd, bb := dark.Bias(), bright.Bias()
	for i := range n {
		if bd.AtVec(i) >= 0 || bb.AtVec(i) <= 0 {
			t.Errorf("point %d: dark force %g, bright force %g", i, bd.AtVec(i), bb.AtVec(i))
		}
		if bd.AtVec(n+i) != 0 {
			t.Errorf("point %d: vertical force %g", i, bd.AtVec(n+i))
		}
		if math.Abs(bd.AtVec(i)+1) > 1e-12 {
			t.Errorf("point %d: balanced force %g, want -1", i, bd.AtVec(i))
		}
	}
	if dark.Matrix() != nil {
		t.Error("field energy has a matrix")
	}
	if math.Abs(dark.Value()+bright.Value()) > 1e-12 {
		t.Error("dark and bright energies are not opposite")
	}
}

func TestEdgeAttraction(t *testing.T) {
	// A vertical step edge between x = 15 and x = 16.  The points next to
	// the edge are pulled towards it.
	r := NewGrayRaster(32, 32)
	for y := range 32 {
		for x := 16; x < 32; x++ {
			r.Set(x, y, 1)
		}
	}
	pts := []vec.Vec2{{X: 14.5, Y: 10}, {X: 14.5, Y: 20}, {X: 17.5, Y: 20}, {X: 17.5, Y: 10}, {X: 16, Y: 5}}
	s := newState(r, FromPolygon(pts, true))
	e := mustBind(t, Edge{}, s, NormBalanced)
	b := e.Bias()
	if b.AtVec(0) <= 0 || b.AtVec(1) <= 0 {
		t.Errorf("left points are not attracted: %g, %g", b.AtVec(0), b.AtVec(1))
	}
	if b.AtVec(2) >= 0 || b.AtVec(3) >= 0 {
		t.Errorf("right points are not attracted: %g, %g", b.AtVec(2), b.AtVec(3))
	}
	if v := e.Value(); v >= 0 {
		t.Errorf("edge energy %g, want negative", v)
	}
}
