// Command export runs all test cases and writes the initial and final
// curves to JSON.  Run from the module root directory.
package main

import (
	"encoding/json"
	"log"
	"maps"
	"os"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/snake/testcases"
	"seehuhn.de/go/snake/testcases/solve"
)

func main() {
	log.SetFlags(0)

	var out struct {
		TestCases []jsonTestCase `json:"testcases"`
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			res, err := solve.Run(tc, nil)
			if err != nil {
				log.Fatal(err)
			}
			out.TestCases = append(out.TestCases, toJSON(category, tc, res))
		}
	}

	if err := os.MkdirAll("testdata", 0755); err != nil {
		log.Fatal(err)
	}
	f, err := os.Create("testdata/results.json")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

type jsonTestCase struct {
	Name       string       `json:"name"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	Foreground float64      `json:"foreground"`
	Background float64      `json:"background"`
	Objects    []jsonObject `json:"objects"`
}

type jsonObject struct {
	Shape      []jsonSegment `json:"shape"`
	Initial    [][]float64   `json:"initial"`
	Final      [][]float64   `json:"final"`
	Iterations int           `json:"iterations"`
	Overlap    float64       `json:"overlap"`
}

type jsonSegment struct {
	Cmd string      `json:"cmd"`
	Pts [][]float64 `json:"pts"`
}

func toJSON(category string, tc testcases.TestCase, res *solve.Outcome) jsonTestCase {
	jtc := jsonTestCase{
		Name:       category + "_" + tc.Name,
		Width:      tc.Width,
		Height:     tc.Height,
		Foreground: tc.Foreground,
		Background: tc.Background,
	}
	for i, obj := range tc.Objects {
		jtc.Objects = append(jtc.Objects, jsonObject{
			Shape:      pathToJSON(obj.Shape),
			Initial:    pointsToJSON(obj.Initial),
			Final:      pointsToJSON(res.Curves[i]),
			Iterations: res.Iterations[i],
			Overlap:    res.Overlap[i],
		})
	}
	return jtc
}

func pointsToJSON(pts []vec.Vec2) [][]float64 {
	res := make([][]float64, len(pts))
	for i, p := range pts {
		res[i] = []float64{p.X, p.Y}
	}
	return res
}

func pathToJSON(p path.Path) []jsonSegment {
	var segs []jsonSegment
	for cmd, pts := range p {
		seg := jsonSegment{Pts: pointsToJSON(pts)}
		switch cmd {
		case path.CmdMoveTo:
			seg.Cmd = "M"
		case path.CmdLineTo:
			seg.Cmd = "L"
		case path.CmdQuadTo:
			seg.Cmd = "Q"
		case path.CmdCubeTo:
			seg.Cmd = "C"
		case path.CmdClose:
			seg.Cmd = "Z"
		}
		segs = append(segs, seg)
	}
	return segs
}
