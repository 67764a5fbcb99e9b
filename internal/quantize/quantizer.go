// Package quantize implements the scalar dead-zone quantizer used
// between the wavelet transform and the entropy coder, and derives
// per-subband step sizes from a quality setting the way OpenJPEG's
// rate-distortion tables do.
package quantize

import (
	"errors"
	"math"
	"math/bits"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
)

var (
	errStepSize = errors.New("step size must be > 0")
	errDeadZone = errors.New("dead zone offset must be in [0, 1]")
)

// Quantizer maps a signed float coefficient to a signed integer index
// and back, using a dead zone around zero (spec.md §4.3).
type Quantizer struct {
	StepSize       float64
	DeadZoneOffset float64
	Reversible     bool
}

// New validates and returns a Quantizer. Reversible mode forces
// StepSize to 1 and bypasses the dead zone, per the lossless 5/3 path.
func New(stepSize, deadZoneOffset float64, reversible bool) (*Quantizer, error) {
	if reversible {
		return &Quantizer{StepSize: 1, DeadZoneOffset: 0, Reversible: true}, nil
	}
	if stepSize <= 0 {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "quantize.new", 0, 0, errStepSize)
	}
	if deadZoneOffset < 0 || deadZoneOffset > 1 {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "quantize.new", 0, 0, errDeadZone)
	}
	return &Quantizer{StepSize: stepSize, DeadZoneOffset: deadZoneOffset}, nil
}

// Quantize maps coefficient c to its signed integer index.
func (q *Quantizer) Quantize(c float64) int32 {
	if q.Reversible {
		return int32(math.RoundToEven(c))
	}
	dz := q.DeadZoneOffset * q.StepSize
	abs := math.Abs(c)
	if abs <= dz {
		return 0
	}
	idx := math.Floor((abs - dz) / q.StepSize)
	if c < 0 {
		return -int32(idx)
	}
	return int32(idx)
}

// Dequantize reconstructs a coefficient from a quantized index, using
// reconstruction parameter r (0.5 by default per spec.md §4.3). Index
// 0 always maps to exactly 0.
func (q *Quantizer) Dequantize(v int32, r float64) float64 {
	if v == 0 {
		return 0
	}
	if q.Reversible {
		return float64(v)
	}
	abs := math.Abs(float64(v))
	mag := (abs + r) * q.StepSize
	if v < 0 {
		return -mag
	}
	return mag
}

// openJPEGNorms97 are the 9/7 wavelet subband norms (OpenJPEG's
// opj_dwt_norms_real), used to scale a single quality-derived step
// size into a step per subband orientation/level.
var openJPEGNorms97 = [4][10]float64{
	{1.000, 1.965, 4.177, 8.403, 16.90, 33.84, 67.69, 135.3, 270.6, 540.9},
	{2.022, 3.989, 8.355, 17.04, 34.27, 68.63, 137.3, 274.6, 549.0, 0.0},
	{2.022, 3.989, 8.355, 17.04, 34.27, 68.63, 137.3, 274.6, 549.0, 0.0},
	{2.080, 3.865, 8.307, 17.18, 34.71, 69.59, 139.3, 278.6, 557.2, 0.0},
}

func norm97(level, orient int) float64 {
	if level < 0 {
		level = 0
	}
	if orient == 0 && level >= 10 {
		level = 9
	} else if orient > 0 && level >= 9 {
		level = 8
	}
	if orient < 0 || orient > 3 {
		return 1.0
	}
	return openJPEGNorms97[orient][level]
}

// qualityScale maps a 1-100 quality setting to a base step size in
// the same curve OpenJPEG's -q option uses.
func qualityScale(quality int) float64 {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	if quality >= 100 {
		return 0
	}
	scale := math.Pow(2.0, (100.0-float64(quality))/12.5)
	if scale < 0.01 {
		scale = 0.01
	}
	return scale * 0.9 * 0.2
}

// subbandIndex decodes the packed subband index (0 = LL, then HL/LH/HH
// per decomposition level from coarsest to finest) into its
// resolution, orientation (0=LL,1=HL,2=LH,3=HH) and wavelet level.
func subbandIndex(idx, numLevels int) (resno, orient, level int) {
	if idx == 0 {
		return 0, 0, numLevels
	}
	resno = (idx-1)/3 + 1
	orient = (idx-1)%3 + 1
	level = numLevels - resno
	if level < 0 {
		level = 0
	}
	return resno, orient, level
}

// StepSizes returns one step size per subband (ordered LL, then
// HL/LH/HH for each level from coarsest to finest) for a quality
// setting in [1, 100], deriving the per-subband scaling from the 9/7
// wavelet norms the same way OpenJPEG's encoder does.
func StepSizes(quality, numLevels int) []float64 {
	if numLevels <= 0 {
		return []float64{qualityScale(quality)}
	}
	scale := qualityScale(quality)
	numSubbands := 3*numLevels + 1
	steps := make([]float64, numSubbands)
	for i := 0; i < numSubbands; i++ {
		_, orient, level := subbandIndex(i, numLevels)
		norm := norm97(level, orient)
		if norm <= 0 {
			steps[i] = scale
		} else {
			steps[i] = scale / norm
		}
	}
	return steps
}

// FromQuality builds one Quantizer per subband for a quality setting.
// quality >= 100 is treated as lossless: every Quantizer is reversible
// regardless of the requested transform, matching the codestream's
// own behavior of ignoring QCD step sizes in that case.
func FromQuality(quality, numLevels int) []*Quantizer {
	if quality >= 100 {
		steps := make([]*Quantizer, maxInt(3*numLevels+1, 1))
		for i := range steps {
			steps[i] = &Quantizer{StepSize: 1, Reversible: true}
		}
		return steps
	}
	sizes := StepSizes(quality, numLevels)
	out := make([]*Quantizer, len(sizes))
	for i, s := range sizes {
		out[i] = &Quantizer{StepSize: s, DeadZoneOffset: 0.5}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// EncodeStepSize packs a float step size into the 16-bit SPqcd/SPqcc
// exponent+mantissa encoding (ISO/IEC 15444-1 Table A.28).
func EncodeStepSize(stepSize float64, bitDepth int) uint16 {
	if stepSize <= 0 {
		return 0
	}
	fixed := int32(math.Floor(stepSize * 8192.0))
	if fixed <= 0 {
		fixed = 1
	}
	log2 := bits.Len32(uint32(fixed)) - 1
	p := log2 - 13
	n := 11 - log2
	var mant int32
	if n < 0 {
		mant = fixed >> uint(-n)
	} else {
		mant = fixed << uint(n)
	}
	mant &= 0x7ff
	expn := bitDepth - p
	if expn < 0 {
		expn = 0
	}
	if expn > 0x1f {
		expn = 0x1f
	}
	return uint16((expn << 11) | int(mant))
}

// DecodeStepSize reverses EncodeStepSize.
func DecodeStepSize(encoded uint16, bitDepth int) float64 {
	expn := int((encoded >> 11) & 0x1f)
	mant := float64(encoded & 0x7ff)
	return math.Ldexp(1.0+mant/2048.0, bitDepth-expn)
}
