package snake

import (
	"errors"
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"
)

func TestConstantStep(t *testing.T) {
	s := octagonState()
	st, err := ConstantStep{Gamma: 0.5}.Bind(s)
	if err != nil {
		t.Fatal(err)
	}
	gamma, err := st.Step()
	if err != nil {
		t.Fatal(err)
	}
	if len(gamma) != 16 {
		t.Fatalf("got %d step sizes, want 16", len(gamma))
	}
	for i, g := range gamma {
		if g != 0.5 {
			t.Errorf("γ[%d] = %g", i, g)
		}
	}

	// the length follows the curve
	s.advance(FromPolygon(octagon[:5], true))
	gamma, _ = st.Step()
	if len(gamma) != 10 {
		t.Errorf("got %d step sizes, want 10", len(gamma))
	}
}

func TestPointwiseStep(t *testing.T) {
	s := octagonState()
	st, err := PointwiseStep{Gamma: 1, Damping: 1}.Bind(s)
	if err != nil {
		t.Fatal(err)
	}

	// before the first assembly there is no force
	gamma, _ := st.Step()
	for i, g := range gamma {
		if g != 1 {
			t.Errorf("γ[%d] = %g, want 1", i, g)
		}
	}

	s.force = make([]vec.Vec2, 8)
	for i := range s.force {
		s.force[i] = vec.Vec2{X: float64(i), Y: 0}
	}
	gamma, _ = st.Step()
	for i := range 8 {
		want := 1 / (1 + float64(i))
		if math.Abs(gamma[i]-want) > 1e-12 || gamma[8+i] != gamma[i] {
			t.Errorf("point %d: γ = %g, %g, want %g", i, gamma[i], gamma[8+i], want)
		}
		if i > 0 && gamma[i] >= gamma[i-1] {
			t.Errorf("point %d: step size does not decrease with the force", i)
		}
	}
}

func TestDistanceStep(t *testing.T) {
	pts := []vec.Vec2{{X: 16.5, Y: 16.5}, {X: 8.5, Y: 16.5}, {X: 4.5, Y: 16.5}, {X: 0.5, Y: 0.5}}
	s := newState(squareRaster(), FromPolygon(pts, true))
	st, err := DistanceStep{}.Bind(s)
	if err != nil {
		t.Fatal(err)
	}
	gamma, err := st.Step()
	if err != nil {
		t.Fatal(err)
	}
	if gamma[0] != 0 {
		t.Errorf("point on the foreground has step size %g", gamma[0])
	}
	if !(gamma[1] > 0 && gamma[1] < gamma[2]) {
		t.Errorf("step sizes %g, %g do not grow with the distance", gamma[1], gamma[2])
	}
	// the corner is furthest from the square
	if math.Abs(gamma[3]-defaultDistanceFactor) > 1e-12 {
		t.Errorf("corner step size %g, want %d", gamma[3], defaultDistanceFactor)
	}
	for i := range 4 {
		if gamma[4+i] != gamma[i] {
			t.Errorf("point %d: x and y step sizes differ", i)
		}
	}
}

func TestStepSizeErrors(t *testing.T) {
	s := octagonState()
	bad := []StepSize{
		ConstantStep{},
		ConstantStep{Gamma: -1},
		ConstantStep{Gamma: math.Inf(1)},
		PointwiseStep{},
		PointwiseStep{Gamma: 1, Damping: -1},
		DistanceStep{Factor: -1},
		DistanceStep{Distance: Distance{Threshold: 2}},
	}
	for _, step := range bad {
		if _, err := step.Bind(s); !errors.Is(err, ErrInitialization) {
			t.Errorf("%#v: got %v", step, err)
		}
	}
}
