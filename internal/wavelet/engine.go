// Package wavelet implements the discrete wavelet transforms JPEG 2000
// family codestreams are built on: the reversible 5/3 and irreversible
// 9/7 lifting schemes, in both 2-D and volumetric (Part 10 / JP3D)
// form, driven through Engine and indexed by subband via Decomposition.
package wavelet

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
)

// Shape is the extent of a transform domain. Depth is 1 for an
// ordinary 2-D image; a Depth greater than 1 activates the Z-axis
// pass for Part 10 (JP3D) volumetric data.
type Shape struct {
	Width  int
	Height int
	Depth  int
}

func (s Shape) axisCount() int {
	if s.Depth > 1 {
		return 3
	}
	return 2
}

func (s Shape) size() int {
	depth := s.Depth
	if depth < 1 {
		depth = 1
	}
	return s.Width * s.Height * depth
}

func (s Shape) minExtent() int {
	m := s.Width
	if s.Height < m {
		m = s.Height
	}
	if s.Depth > 1 && s.Depth < m {
		m = s.Depth
	}
	return m
}

// Orientation names a subband by its low/high filter choice on each
// axis in (X, Y[, Z]) order, e.g. "LL", "HL", or for volumetric data
// "LLH", "HHH".
type Orientation string

// Engine runs the forward and inverse wavelet transform for one
// reversibility mode (the 5/3 integer lifting scheme, or the 9/7
// floating-point scheme), and tracks how many forward transforms it
// has performed.
type Engine struct {
	reversible bool

	mu           sync.Mutex
	forwardCount uint64
}

// NewEngine returns a wavelet Engine. reversible selects the 5/3
// integer transform (lossless); false selects the 9/7 floating-point
// transform (lossy).
func NewEngine(reversible bool) *Engine {
	return &Engine{reversible: reversible}
}

// Reversible reports which transform this engine applies.
func (e *Engine) Reversible() bool { return e.reversible }

// Forward decomposes samples (row-major, X fastest, then Y, then Z)
// into a multilevel Decomposition. It returns InvalidConfiguration if
// samples does not match shape's size, or if shape cannot sustain the
// requested number of levels (min(shape) < 2^levels).
func (e *Engine) Forward(samples []float64, shape Shape, levels int) (*Decomposition, error) {
	if shape.Width <= 0 || shape.Height <= 0 {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.forward", 0, 0,
			fmt.Errorf("width and height must be positive, got %dx%d", shape.Width, shape.Height))
	}
	if shape.Depth <= 0 {
		shape.Depth = 1
	}
	if len(samples) != shape.size() {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.forward", 0, 0,
			fmt.Errorf("sample count %d does not match shape %dx%dx%d", len(samples), shape.Width, shape.Height, shape.Depth))
	}
	if levels < 0 {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.forward", 0, 0,
			fmt.Errorf("levels must be non-negative, got %d", levels))
	}
	if levels > 0 && shape.minExtent() < (1<<uint(levels)) {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.forward", 0, 0,
			fmt.Errorf("shape %dx%dx%d cannot sustain %d decomposition levels", shape.Width, shape.Height, shape.Depth, levels))
	}

	data := make([]float64, len(samples))
	copy(data, samples)

	if e.reversible {
		ints := ConvertFloat64ToInt32(data)
		ForwardMultilevel(ints, shape, levels)
		data = ConvertInt32ToFloat64(ints)
	} else {
		ForwardMultilevel97(data, shape, levels)
	}

	e.mu.Lock()
	e.forwardCount++
	e.mu.Unlock()

	return &Decomposition{shape: shape, levels: levels, reversible: e.reversible, coeffs: data}, nil
}

// Inverse reconstructs the sample array a Decomposition was built
// from. The engine's reversibility mode must match the decomposition
// that produced it.
func (e *Engine) Inverse(d *Decomposition) ([]float64, error) {
	if d == nil {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.inverse", 0, 0, fmt.Errorf("nil decomposition"))
	}
	if d.reversible != e.reversible {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.inverse", 0, 0,
			fmt.Errorf("decomposition was built with reversible=%v, engine is reversible=%v", d.reversible, e.reversible))
	}

	out := make([]float64, len(d.coeffs))
	copy(out, d.coeffs)

	if d.reversible {
		ints := ConvertFloat64ToInt32(out)
		InverseMultilevel(ints, d.shape, d.levels)
		out = ConvertInt32ToFloat64(ints)
	} else {
		InverseMultilevel97(out, d.shape, d.levels)
	}

	return out, nil
}

// ForwardTransformCount returns how many times Forward has succeeded
// since the engine was created or last reset.
func (e *Engine) ForwardTransformCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.forwardCount
}

// ResetStatistics zeroes the forward-transform counter.
func (e *Engine) ResetStatistics() {
	e.mu.Lock()
	e.forwardCount = 0
	e.mu.Unlock()
}

// Decomposition is the lazily-indexable result of a forward wavelet
// transform: the coefficient array plus enough geometry to carve out
// any subband on demand without materializing all of them up front.
type Decomposition struct {
	shape      Shape
	levels     int
	reversible bool
	coeffs     []float64
}

func (d *Decomposition) Shape() Shape { return d.shape }
func (d *Decomposition) Levels() int  { return d.levels }

// Approximation returns the coarsest, all-lowpass subband (LL for 2-D,
// LLL for volumetric data) — the reference image used to predict the
// next resolution level when reconstructing progressively.
func (d *Decomposition) Approximation() (*Subband, error) {
	return d.Subband(d.levels, Orientation(strings.Repeat("L", d.shape.axisCount())))
}

// Subband carves out one oriented subband at the given level (1 is
// the finest split, Levels() is the coarsest). The orientation string
// must have one letter ('L' or 'H') per axis of the decomposition's
// shape.
func (d *Decomposition) Subband(level int, orientation Orientation) (*Subband, error) {
	if d.levels == 0 {
		if level != 0 {
			return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.subband", 0, 0,
				fmt.Errorf("decomposition has zero levels"))
		}
		return &Subband{Level: 0, Orientation: orientation, Width: d.shape.Width, Height: d.shape.Height, Depth: d.shape.Depth, Data: append([]float64(nil), d.coeffs...)}, nil
	}
	if level < 1 || level > d.levels {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.subband", 0, 0,
			fmt.Errorf("level %d out of range [1,%d]", level, d.levels))
	}
	axes := d.shape.axisCount()
	if len(orientation) != axes {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "wavelet.subband", 0, 0,
			fmt.Errorf("orientation %q must have %d letters", orientation, axes))
	}

	var llW, llH, llD int
	if axes == 3 {
		llW, llH, llD = LLDimensions3D(d.shape.Width, d.shape.Height, d.shape.Depth, level-1)
	} else {
		llW, llH = LLDimensions(d.shape.Width, d.shape.Height, level-1)
		llD = 1
	}

	lowW, highW := splitLengths(llW, true), llW-splitLengths(llW, true)
	lowH, highH := splitLengths(llH, true), llH-splitLengths(llH, true)
	lowD, highD := 1, 0
	if axes == 3 {
		lowD, highD = splitLengths(llD, true), llD-splitLengths(llD, true)
	}

	offX, w, err := axisOffset(orientation[0], lowW, highW)
	if err != nil {
		return nil, err
	}
	offY, h, err := axisOffset(orientation[1], lowH, highH)
	if err != nil {
		return nil, err
	}
	offZ, dep := 0, 1
	if axes == 3 {
		offZ, dep, err = axisOffset(orientation[2], lowD, highD)
		if err != nil {
			return nil, err
		}
	}

	strideXY := d.shape.Width
	strideZ := d.shape.Width * d.shape.Height

	data := make([]float64, w*h*dep)
	idx := 0
	for z := 0; z < dep; z++ {
		for y := 0; y < h; y++ {
			base := (offZ+z)*strideZ + (offY+y)*strideXY + offX
			copy(data[idx:idx+w], d.coeffs[base:base+w])
			idx += w
		}
	}

	return &Subband{Level: level, Orientation: orientation, Width: w, Height: h, Depth: dep, Data: data}, nil
}

func axisOffset(letter byte, low, high int) (offset, size int, err error) {
	switch letter {
	case 'L', 'l':
		return 0, low, nil
	case 'H', 'h':
		return low, high, nil
	default:
		return 0, 0, errs.NewCodec(errs.InvalidConfiguration, "wavelet.subband", 0, 0,
			fmt.Errorf("orientation letter %q is not L or H", letter))
	}
}

// Subband is one oriented coefficient block carved out of a
// Decomposition.
type Subband struct {
	Level       int
	Orientation Orientation
	Width       int
	Height      int
	Depth       int
	Data        []float64
}
