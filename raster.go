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
	"image"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
)

// Raster is a scalar image.  The optimizers only read from rasters.
type Raster interface {
	Width() int
	Height() int

	// ValueAt returns the value of pixel (x, y), for 0 <= x < Width()
	// and 0 <= y < Height().
	ValueAt(x, y int) float64
}

// GrayRaster is a Raster backed by a slice of values in row-major order.
type GrayRaster struct {
	W, H int
	Pix  []float64
}

// NewGrayRaster allocates a width×height raster filled with zeros.
func NewGrayRaster(width, height int) *GrayRaster {
	return &GrayRaster{
		W:   width,
		H:   height,
		Pix: make([]float64, width*height),
	}
}

// Width implements the Raster interface.
func (g *GrayRaster) Width() int { return g.W }

// Height implements the Raster interface.
func (g *GrayRaster) Height() int { return g.H }

// ValueAt implements the Raster interface.
func (g *GrayRaster) ValueAt(x, y int) float64 {
	return g.Pix[y*g.W+x]
}

// Set changes the value of pixel (x, y).
func (g *GrayRaster) Set(x, y int, v float64) {
	g.Pix[y*g.W+x] = v
}

// FromImage converts img to a raster with values in [0, 1], using the
// luminance of each pixel.
func FromImage(img image.Image) *GrayRaster {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	res := NewGrayRaster(b.Dx(), b.Dy())
	for y := range res.H {
		row := gray.Pix[y*gray.Stride:]
		for x := range res.W {
			res.Pix[y*res.W+x] = float64(row[4*x]) / 255
		}
	}
	return res
}

// Lightness converts img to a raster holding the CIE L* lightness of each
// pixel, in the range [0, 1].
func Lightness(img image.Image) *GrayRaster {
	b := img.Bounds()
	res := NewGrayRaster(b.Dx(), b.Dy())
	for y := range res.H {
		for x := range res.W {
			c, _ := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
			l, _, _ := c.Lab()
			res.Pix[y*res.W+x] = l
		}
	}
	return res
}

// Blur smooths r with a Gaussian kernel of the given standard deviation,
// in pixels.  The result has the same value range as r, quantised to 256
// levels.
func Blur(r Raster, sigma float64) *GrayRaster {
	lo, hi := valueRange(r)
	img, _ := toGray(r, lo, hi)
	return fromChannel(imaging.Blur(img, sigma).Pix, 4, r.Width(), r.Height(), lo, hi)
}

// FillPath returns a width×height raster showing the region enclosed by p.
// Fully covered pixels get the value inside, uncovered pixels the value
// outside, and pixels on the boundary are blended by coverage.
func FillPath(p path.Path, width, height int, inside, outside float64) *GrayRaster {
	res := NewGrayRaster(width, height)
	for i := range res.Pix {
		res.Pix[i] = outside
	}
	rast := NewRasteriser(rect.Rect{URx: float64(width), URy: float64(height)})
	rast.FillNonZero(p, func(y, xMin int, coverage []float32) {
		row := res.Pix[y*width+xMin:]
		for i, c := range coverage {
			row[i] = outside + float64(c)*(inside-outside)
		}
	})
	return res
}

// values returns all pixel values of r in row-major order.
// The result must not be modified.
func values(r Raster) []float64 {
	if g, ok := r.(*GrayRaster); ok {
		return g.Pix
	}
	w, h := r.Width(), r.Height()
	res := make([]float64, 0, w*h)
	for y := range h {
		for x := range w {
			res = append(res, r.ValueAt(x, y))
		}
	}
	return res
}

// valueRange returns the smallest and largest value of r.
func valueRange(r Raster) (lo, hi float64) {
	v := values(r)
	if len(v) == 0 {
		return 0, 0
	}
	return floats.Min(v), floats.Max(v)
}

// toGray maps the values of r linearly from [lo, hi] to 8-bit gray levels.
// The second return value is false if the raster is constant.
func toGray(r Raster, lo, hi float64) (*image.Gray, bool) {
	w, h := r.Width(), r.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	if hi <= lo {
		return img, false
	}
	f := 255 / (hi - lo)
	for y := range h {
		for x := range w {
			img.Pix[y*img.Stride+x] = uint8((r.ValueAt(x, y)-lo)*f + 0.5)
		}
	}
	return img, true
}

// fromChannel reads the first channel of an interleaved 8-bit image with
// the given number of channels and maps it back to [lo, hi].
func fromChannel(pix []uint8, channels, width, height int, lo, hi float64) *GrayRaster {
	res := NewGrayRaster(width, height)
	f := (hi - lo) / 255
	for i := range res.Pix {
		res.Pix[i] = lo + float64(pix[i*channels])*f
	}
	return res
}

// sample returns the value of r at the pixel containing (x, y), in pixel
// coordinates.  Positions outside the raster are moved to the nearest
// border pixel.
func sample(r Raster, x, y float64) float64 {
	return r.ValueAt(clampIndex(x, r.Width()), clampIndex(y, r.Height()))
}

// clampIndex returns the index of the pixel containing coordinate v, moved
// into the range [0, n).
func clampIndex(v float64, n int) int {
	if v < 0 {
		return 0
	}
	return min(int(v), n-1)
}
