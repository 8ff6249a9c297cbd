// Command convergence plots the enclosed area of every curve against the
// round number, one PNG file per test case.
package main

import (
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"seehuhn.de/go/snake/testcases"
	"seehuhn.de/go/snake/testcases/solve"
)

const outDir = "testdata/convergence"

func main() {
	log.SetFlags(0)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatal(err)
	}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			areas, err := solve.Trace(tc)
			if err != nil {
				log.Fatal(err)
			}
			if err := plotAreas(name, areas, filepath.Join(outDir, name+".png")); err != nil {
				log.Fatalf("%s: %v", name, err)
			}
		}
	}
}

func plotAreas(title string, areas [][]int, fname string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "round"
	p.Y.Label.Text = "enclosed pixels"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	for i, series := range areas {
		pts := make(plotter.XYs, len(series))
		for k, a := range series {
			pts[k].X = float64(k)
			pts[k].Y = float64(a)
		}
		ln, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		ln.LineStyle.Width = vg.Points(1)
		ln.LineStyle.Color = plotutil.Color(i)
		p.Add(ln)
		p.Legend.Add(fmt.Sprintf("curve %d", i), ln)
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, fname)
}
