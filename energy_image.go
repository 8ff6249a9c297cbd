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
	"fmt"
	"image"
	"math"
	"slices"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Intensity attracts the curve to dark image regions:
//
//	E = Σ I(p[i])
//
// If Bright is set, the sign is reversed and the curve is attracted to
// bright regions.  If Sigma is positive, the raster is smoothed with a
// Gaussian of this standard deviation first, which widens the capture
// range.
type Intensity struct {
	Bright bool
	Sigma  float64
}

// Bind implements the Term interface.
func (t Intensity) Bind(s *State, mode Normalization) (Energy, error) {
	if s.raster == nil {
		return nil, fmt.Errorf("%w: intensity energy needs a raster", ErrInitialization)
	}
	if t.Sigma < 0 {
		return nil, fmt.Errorf("%w: negative smoothing %g", ErrInitialization, t.Sigma)
	}

	var r Raster = s.raster
	if t.Sigma > 0 {
		r = Blur(r, t.Sigma)
	}
	density := append([]float64(nil), values(r)...)
	if t.Bright {
		for i := range density {
			density[i] = -density[i]
		}
	}
	return newFieldEnergy(s, mode, r.Width(), r.Height(), density), nil
}

// External implements the Term interface.
func (Intensity) External() bool { return true }

// CounterClockwise implements the Term interface.
func (Intensity) CounterClockwise() bool { return false }

func (t Intensity) String() string {
	if t.Bright {
		return fmt.Sprintf("intensity(bright, σ=%g)", t.Sigma)
	}
	return fmt.Sprintf("intensity(dark, σ=%g)", t.Sigma)
}

// Edge attracts the curve to strong image edges:
//
//	E = -Σ G(p[i])²
//
// where G is the Sobel gradient magnitude of the raster, scaled to [0, 1].
// If Sigma is positive, the raster is smoothed with a Gaussian of this
// radius before the gradient is taken.
type Edge struct {
	Sigma float64
}

// Bind implements the Term interface.
func (t Edge) Bind(s *State, mode Normalization) (Energy, error) {
	if s.raster == nil {
		return nil, fmt.Errorf("%w: edge energy needs a raster", ErrInitialization)
	}
	if t.Sigma < 0 {
		return nil, fmt.Errorf("%w: negative smoothing %g", ErrInitialization, t.Sigma)
	}

	w, h := s.raster.Width(), s.raster.Height()
	lo, hi := valueRange(s.raster)
	img, ok := toGray(s.raster, lo, hi)
	density := make([]float64, w*h)
	if ok {
		var src image.Image = img
		if t.Sigma > 0 {
			src = blur.Gaussian(img, t.Sigma)
		}
		grad := effect.Sobel(src)
		copyEdgeDensity(density, grad.Pix, grad.Stride, w, h)
	}
	return newFieldEnergy(s, mode, w, h, density), nil
}

// copyEdgeDensity stores -G² for the red channel G of an RGBA gradient
// image.
func copyEdgeDensity(dst []float64, pix []uint8, stride, w, h int) {
	for y := range h {
		row := pix[y*stride:]
		for x := range w {
			g := float64(row[4*x]) / 255
			dst[y*w+x] = -g * g
		}
	}
}

// External implements the Term interface.
func (Edge) External() bool { return true }

// CounterClockwise implements the Term interface.
func (Edge) CounterClockwise() bool { return false }

func (t Edge) String() string {
	return fmt.Sprintf("edge(σ=%g)", t.Sigma)
}

// Distance attracts the curve to the foreground of a binarized raster:
//
//	E = Σ D(p[i])
//
// where D is the distance to the nearest foreground pixel, divided by its
// largest value.  A pixel belongs to the foreground if its value is at
// least Threshold, or at most Threshold if Dark is set.  If Threshold is
// zero, the midpoint of the raster's value range is used.
type Distance struct {
	Metric    DistanceMetric
	Threshold float64
	Dark      bool
}

// Bind implements the Term interface.
func (t Distance) Bind(s *State, mode Normalization) (Energy, error) {
	if s.raster == nil {
		return nil, fmt.Errorf("%w: distance energy needs a raster", ErrInitialization)
	}
	density, err := t.density(s.raster)
	if err != nil {
		return nil, err
	}
	return newFieldEnergy(s, mode, s.raster.Width(), s.raster.Height(), density), nil
}

// density returns the normalized distance map of r.
func (t Distance) density(r Raster) ([]float64, error) {
	switch t.Metric {
	case Euclidean, CityBlock, Chessboard:
	default:
		return nil, fmt.Errorf("%w: unknown distance metric %d", ErrInitialization, int(t.Metric))
	}

	threshold := t.Threshold
	if threshold == 0 {
		lo, hi := valueRange(r)
		threshold = (lo + hi) / 2
	}
	vals := values(r)
	fg := make([]bool, len(vals))
	found := false
	for i, v := range vals {
		if t.Dark {
			fg[i] = v <= threshold
		} else {
			fg[i] = v >= threshold
		}
		found = found || fg[i]
	}
	if !found {
		return nil, fmt.Errorf("%w: distance energy: no foreground pixels", ErrInitialization)
	}

	dist := DistanceMap(fg, r.Width(), r.Height(), t.Metric)
	if largest := floats.Max(dist); largest > 0 {
		floats.Scale(1/largest, dist)
	}
	return dist, nil
}

// External implements the Term interface.
func (Distance) External() bool { return true }

// CounterClockwise implements the Term interface.
func (Distance) CounterClockwise() bool { return false }

func (t Distance) String() string {
	return fmt.Sprintf("distance(%s)", t.Metric)
}

// Parameters of the gradient vector flow.
const (
	// defaultGVFIterations is the number of diffusion steps if none is
	// given.
	defaultGVFIterations = 120

	// defaultGVFMu is the diffusion rate if none is given.  Rates above
	// 0.25 make the iteration unstable.
	defaultGVFMu = 0.2
)

// GVF is an edge energy whose force is the gradient vector flow of the
// edge map.  Where Edge only acts close to an edge, the diffused field
// reaches into homogeneous regions and pulls the curve from further away.
// The energy value is the one of Edge.
//
// If Iterations is zero, 120 diffusion steps are used; if Mu is zero, a
// diffusion rate of 0.2 is used.
type GVF struct {
	Iterations int
	Mu         float64
	Sigma      float64
}

// Bind implements the Term interface.
func (t GVF) Bind(s *State, mode Normalization) (Energy, error) {
	iterations := t.Iterations
	if iterations == 0 {
		iterations = defaultGVFIterations
	}
	mu := t.Mu
	if mu == 0 {
		mu = defaultGVFMu
	}
	if iterations < 0 || !(mu > 0 && mu <= 0.25) {
		return nil, fmt.Errorf("%w: invalid gradient vector flow (%d iterations, μ=%g)",
			ErrInitialization, t.Iterations, t.Mu)
	}

	edge, err := Edge{Sigma: t.Sigma}.Bind(s, NormNone)
	if err != nil {
		return nil, err
	}
	e := edge.(*fieldEnergy)
	e.diffuse(iterations, mu)
	e.normalize(mode)
	return e, nil
}

// External implements the Term interface.
func (GVF) External() bool { return true }

// CounterClockwise implements the Term interface.
func (GVF) CounterClockwise() bool { return false }

func (t GVF) String() string {
	return fmt.Sprintf("gvf(n=%d, μ=%g, σ=%g)", t.Iterations, t.Mu, t.Sigma)
}

// fieldEnergy is an external energy which is the sum of a per-pixel
// density over the curve points.  Its force is the negative gradient of
// the density, taken by central differences.
type fieldEnergy struct {
	state   *State
	w, h    int
	density []float64
	fx, fy  []float64
	factor  float64 // 0 means: use the curve scale
}

func newFieldEnergy(s *State, mode Normalization, w, h int, density []float64) *fieldEnergy {
	e := &fieldEnergy{
		state:   s,
		w:       w,
		h:       h,
		density: density,
		fx:      make([]float64, w*h),
		fy:      make([]float64, w*h),
	}

	at := func(x, y int) float64 {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return density[y*w+x]
	}
	for y := range h {
		for x := range w {
			i := y*w + x
			e.fx[i] = -(at(x+1, y) - at(x-1, y)) / 2
			e.fy[i] = -(at(x, y+1) - at(x, y-1)) / 2
		}
	}
	e.normalize(mode)
	return e
}

// normalize scales balanced forces so that the strongest one has length 1.
func (e *fieldEnergy) normalize(mode Normalization) {
	e.factor = 0
	if mode != NormBalanced {
		return
	}
	var largest float64
	for i := range e.fx {
		largest = max(largest, math.Hypot(e.fx[i], e.fy[i]))
	}
	if largest > 0 {
		e.factor = 1 / largest
	}
}

// diffuse replaces the force by its gradient vector flow: the force is
// spread into homogeneous regions by the iteration
//
//	u ← u + μ·∇²u - |f|²·(u - f)
//
// where f is the original force.  Neumann boundary conditions are used.
func (e *fieldEnergy) diffuse(iterations int, mu float64) {
	w, h := e.w, e.h
	f0x := slices.Clone(e.fx)
	f0y := slices.Clone(e.fy)
	mag := make([]float64, len(f0x))
	for i := range mag {
		mag[i] = f0x[i]*f0x[i] + f0y[i]*f0y[i]
	}

	u, v := e.fx, e.fy
	nu := make([]float64, len(u))
	nv := make([]float64, len(v))
	idx := func(x, y int) int {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return y*w + x
	}
	for range iterations {
		for y := range h {
			for x := range w {
				i := y*w + x
				l, r, t, b := idx(x-1, y), idx(x+1, y), idx(x, y-1), idx(x, y+1)
				lapU := u[l] + u[r] + u[t] + u[b] - 4*u[i]
				lapV := v[l] + v[r] + v[t] + v[b] - 4*v[i]
				nu[i] = u[i] + mu*lapU - mag[i]*(u[i]-f0x[i])
				nv[i] = v[i] + mu*lapV - mag[i]*(v[i]-f0y[i])
			}
		}
		u, nu = nu, u
		v, nv = nv, v
	}
	e.fx, e.fy = u, v
}

func (e *fieldEnergy) Update() error {
	return nil
}

func (e *fieldEnergy) index(i int) int {
	c := e.state.curve
	p := c.pts[i].Mul(c.scale)
	return clampIndex(p.Y, e.h)*e.w + clampIndex(p.X, e.w)
}

func (e *fieldEnergy) Value() float64 {
	var sum float64
	for i := range e.state.curve.Len() {
		sum += e.density[e.index(i)]
	}
	return sum
}

func (e *fieldEnergy) Matrix() *mat.Dense {
	return nil
}

// Bias returns the force on every point.  Without normalization the force
// is converted from pixels to curve units.
func (e *fieldEnergy) Bias() *mat.VecDense {
	c := e.state.curve
	n := c.Len()
	f := e.factor
	if f == 0 {
		f = c.scale
	}
	b := mat.NewVecDense(2*n, nil)
	for i := range n {
		k := e.index(i)
		b.SetVec(i, f*e.fx[k])
		b.SetVec(n+i, f*e.fy[k])
	}
	return b
}
