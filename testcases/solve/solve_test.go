package solve

import (
	"testing"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/snake/testcases"
)

func TestJaccard(t *testing.T) {
	tc := testcases.All["single"][0]
	target := Raster(tc)

	if j := Jaccard(nil, target); j != 0 {
		t.Errorf("empty curve: %g", j)
	}

	// every pixel of the 4×4 raster is foreground, the curve covers a quarter
	full := Raster(testcases.TestCase{Width: 4, Height: 4, Background: 1})
	square := []vec.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if j := Jaccard(square, full); j != 0.25 {
		t.Errorf("quarter square: %g", j)
	}
}

func TestTrace(t *testing.T) {
	tc := testcases.All["coupled"][0]
	areas, err := Trace(tc)
	if err != nil {
		t.Fatal(err)
	}
	if len(areas) != len(tc.Objects) {
		t.Fatalf("got %d series", len(areas))
	}
	for i, series := range areas {
		if len(series) < 2 {
			t.Fatalf("curve %d: %d samples", i, len(series))
		}
		if series[len(series)-1] >= series[0] {
			t.Errorf("curve %d: area did not shrink (%d → %d)", i, series[0], series[len(series)-1])
		}
	}
}
