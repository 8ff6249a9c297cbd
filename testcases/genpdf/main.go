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

// Command genpdf draws the snake test cases and their results.
// Every page shows the objects in gray, the initial curves dashed and the
// final curves solid.  If Ghostscript is installed, the PDF files are also
// rendered to PNG.
package main

import (
	"fmt"
	"log"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
	"seehuhn.de/go/snake/testcases"
	"seehuhn.de/go/snake/testcases/solve"
)

const outDir = "testdata/results"

// scale is the number of PDF points per raster pixel.
const scale = 4

func main() {
	log.SetFlags(0)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatal(err)
	}
	_, err := exec.LookPath("gs")
	haveGS := err == nil

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			out, err := solve.Run(tc, nil)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("%-24s overlap %.3f\n", name, slices.Min(out.Overlap))

			pdfPath := filepath.Join(outDir, name+".pdf")
			if err := generatePDF(tc, out, pdfPath); err != nil {
				log.Fatalf("%s: %v", name, err)
			}
			if haveGS {
				pngPath := filepath.Join(outDir, name+".png")
				if err := renderPNG(pdfPath, pngPath); err != nil {
					log.Fatalf("%s: %v", name, err)
				}
			}
		}
	}
}

func generatePDF(tc testcases.TestCase, out *solve.Outcome, pdfPath string) error {
	w := float64(tc.Width)
	h := float64(tc.Height)
	paper := &pdf.Rectangle{URx: scale * w, URy: scale * h}

	page, err := document.CreateSinglePage(pdfPath, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	page.SetFillColor(color.DeviceGray(1))
	page.Rectangle(0, 0, scale*w, scale*h)
	page.Fill()

	// raster coordinates have the origin at the top-left corner
	page.Transform(matrix.Matrix{scale, 0, 0, -scale, 0, scale * h})

	page.SetFillColor(color.DeviceGray(0.8))
	drawPath(page, tc.Shapes().ToCubic())
	page.Fill()

	page.SetLineCap(graphics.LineCapRound)
	page.SetLineJoin(graphics.LineJoinRound)

	page.SetStrokeColor(color.DeviceGray(0.4))
	page.SetLineWidth(0.25)
	page.SetLineDash([]float64{1, 1}, 0)
	for _, obj := range tc.Objects {
		drawPolygon(page, obj.Initial)
	}
	page.Stroke()

	page.SetStrokeColor(color.DeviceGray(0))
	page.SetLineWidth(0.4)
	page.SetLineDash(nil, 0)
	for _, pts := range out.Curves {
		drawPolygon(page, pts)
	}
	page.Stroke()

	return page.Close()
}

func drawPath(page *document.Page, p path.Path) {
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			page.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			page.LineTo(pts[0].X, pts[0].Y)
		case path.CmdCubeTo:
			page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			page.ClosePath()
		}
	}
}

func drawPolygon(page *document.Page, pts []vec.Vec2) {
	if len(pts) == 0 {
		return
	}
	page.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		page.LineTo(p.X, p.Y)
	}
	page.ClosePath()
}

func renderPNG(pdfPath, pngPath string) error {
	cmd := exec.Command(
		"gs", "-q",
		"-sDEVICE=pnggray",
		"-r72",
		"-dGraphicsAlphaBits=4",
		"-o", pngPath,
		pdfPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
