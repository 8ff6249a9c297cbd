// Package solve runs the snake optimizers on the synthetic test cases.
package solve

import (
	"fmt"
	"log"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/snake"
	"seehuhn.de/go/snake/testcases"
)

// MaxIterations bounds every run on a test case.
const MaxIterations = 300

// Outcome holds the final curves for a test case, one per object.
type Outcome struct {
	Curves     [][]vec.Vec2
	Iterations []int
	Overlap    []float64 // Jaccard index of each final curve and its object
}

// Raster draws all objects of tc onto the background.
func Raster(tc testcases.TestCase) *snake.GrayRaster {
	return snake.FillPath(tc.Shapes(), tc.Width, tc.Height, tc.Foreground, tc.Background)
}

// Config returns the optimizer configuration used for all test cases.
func Config(logger *log.Logger) *snake.Config {
	energies := snake.NewEnergySet(snake.NormBalanced).
		Add(snake.Length{Alpha: 1}, 0.2).
		Add(snake.RegionFit{LambdaIn: 1, LambdaOut: 1}, 1)
	return &snake.Config{
		Energies: energies,
		Step:     snake.ConstantStep{Gamma: 0.25},
		Termination: []snake.Criterion{
			snake.AreaDiffSliding{},
			snake.MaxIterations{Max: MaxIterations},
		},
		Resample: true,
		Logger:   logger,
	}
}

// Run optimizes the initial curves of tc.  A single object uses an
// Optimizer, several objects use a Coupled optimizer.
func Run(tc testcases.TestCase, logger *log.Logger) (*Outcome, error) {
	r := Raster(tc)
	cfg := Config(logger)

	out := &Outcome{}
	switch len(tc.Objects) {
	case 0:
		return nil, fmt.Errorf("%s: no objects", tc.Name)
	case 1:
		o, err := snake.NewOptimizer(r, tc.Objects[0].Initial, true, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
		res, err := o.Run()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
		out.Curves = append(out.Curves, res.Points)
		out.Iterations = append(out.Iterations, res.Iterations)
	default:
		polys := make([]snake.Polygon, len(tc.Objects))
		for i, obj := range tc.Objects {
			polys[i] = snake.Polygon{Points: obj.Initial, Closed: true}
		}
		c, err := snake.NewCoupled(r, polys, cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
		res, err := c.Run()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
		for _, m := range res.Members {
			if m == nil {
				out.Curves = append(out.Curves, nil)
				out.Iterations = append(out.Iterations, 0)
				continue
			}
			out.Curves = append(out.Curves, m.Points)
			out.Iterations = append(out.Iterations, m.Iterations)
		}
	}

	for i, obj := range tc.Objects {
		target := snake.FillPath(obj.Shape, tc.Width, tc.Height, 1, 0)
		out.Overlap = append(out.Overlap, Jaccard(out.Curves[i], target))
	}
	return out, nil
}

// Jaccard compares the region enclosed by the closed polygon pts with the
// pixels where target is at least 0.5.
func Jaccard(pts []vec.Vec2, target *snake.GrayRaster) float64 {
	if len(pts) == 0 {
		return 0
	}
	got := snake.FromPolygon(pts, true).Mask(target.W, target.H)
	want := snake.NewMask(target.W, target.H)
	for i, v := range target.Pix {
		want.Pix[i] = v >= 0.5
	}
	both, either := got.Overlap(want)
	if either == 0 {
		return 1
	}
	return float64(both) / float64(either)
}

// Trace runs tc on a Coupled optimizer, one member per object, and records
// the number of pixels enclosed by every curve before the first and after
// each round.  Members which have stopped keep their last area.
func Trace(tc testcases.TestCase) ([][]int, error) {
	r := Raster(tc)
	polys := make([]snake.Polygon, len(tc.Objects))
	for i, obj := range tc.Objects {
		polys[i] = snake.Polygon{Points: obj.Initial, Closed: true}
	}
	c, err := snake.NewCoupled(r, polys, Config(nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", tc.Name, err)
	}

	areas := make([][]int, c.Len())
	record := func() {
		for i := range areas {
			if o := c.Member(i); o != nil {
				areas[i] = append(areas[i], o.Curve().EnclosedPixelCount(r))
			}
		}
	}
	record()
	for {
		status, err := c.Round()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tc.Name, err)
		}
		record()
		if status == snake.Done {
			return areas, nil
		}
	}
}
