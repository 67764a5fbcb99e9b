package wavelet

// 9/7 (Cohen-Daubechies-Feauveau) lifting coefficients, ISO/IEC
// 15444-1 Annex F Table F.4.
const (
	alpha97 = -1.586134342
	beta97  = -0.052980118
	gamma97 = 0.882911075
	delta97 = 0.443506852

	k97    = 1.230174105
	invK97 = 0.812893066
)

// Forward97_1DWithParity runs one level of the irreversible 9/7
// lifting transform over a 1-D signal, writing [L | H] back into data
// in place. even selects which parity the low-pass subband starts on
// (see Forward53_1DWithParity).
func Forward97_1DWithParity(data []float64, even bool) {
	width := len(data)
	if width <= 1 {
		return
	}

	var sn, dn int32
	if even {
		sn = int32((width + 1) >> 1)
	} else {
		sn = int32(width >> 1)
	}
	dn = int32(width) - sn

	var a, b int32
	if even {
		a, b = 0, 1
	} else {
		a, b = 1, 0
	}

	liftStep97(data, a, b+1, dn, min32(dn, sn-b), alpha97)
	liftStep97(data, b, a+1, sn, min32(sn, dn-a), beta97)
	liftStep97(data, a, b+1, dn, min32(dn, sn-b), gamma97)
	liftStep97(data, b, a+1, sn, min32(sn, dn-a), delta97)

	if a == 0 {
		scaleStep97(data, sn, dn, invK97, k97)
	} else {
		scaleStep97(data, dn, sn, k97, invK97)
	}

	deinterleaveH97(data, dn, sn, even)
}

// liftStep97 applies one lifting pass over interleaved samples:
// data[fw-1] += c*(data[fl]+data[fw]) for each step, with a special
// boundary case at the signal edge. Mirrors OpenJPEG's
// opj_dwt_encode_step2 in shape but not in naming.
func liftStep97(data []float64, flStart, fwStart int32, end, m int32, c float64) {
	imax := min32(end, m)

	if imax > 0 {
		fw := fwStart
		fl := flStart
		data[fw-1] += (data[fl] + data[fw]) * c
		fw += 2

		for i := int32(1); i < imax; i++ {
			data[fw-1] += (data[fw-2] + data[fw]) * c
			fw += 2
		}
	}

	if m < end {
		fw := fwStart + 2*m
		data[fw-1] += (2 * data[fw-2]) * c
	}
}

// scaleStep97 applies the K/invK normalization over interleaved data.
func scaleStep97(data []float64, itersC1, itersC2 int32, c1, c2 float64) {
	itersCommon := min32(itersC1, itersC2)

	var i int32
	fw := int32(0)
	for i = 0; i < itersCommon; i++ {
		data[fw] *= c1
		data[fw+1] *= c2
		fw += 2
	}

	if i < itersC1 {
		data[fw] *= c1
	} else if i < itersC2 {
		data[fw+1] *= c2
	}
}

// deinterleaveH97 separates interleaved data into [low | high] format.
func deinterleaveH97(data []float64, dn, sn int32, even bool) {
	width := int(dn + sn)
	tmp := make([]float64, width)

	if even {
		for i := int32(0); i < sn; i++ {
			tmp[i] = data[2*i]
		}
		for i := int32(0); i < dn; i++ {
			tmp[sn+i] = data[2*i+1]
		}
	} else {
		for i := int32(0); i < sn; i++ {
			tmp[i] = data[2*i+1]
		}
		for i := int32(0); i < dn; i++ {
			tmp[sn+i] = data[2*i]
		}
	}

	copy(data, tmp)
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Inverse97_1DWithParity undoes Forward97_1DWithParity.
func Inverse97_1DWithParity(data []float64, even bool) {
	width := len(data)
	if width <= 1 {
		return
	}

	var sn, dn int32
	if even {
		sn = int32((width + 1) >> 1)
	} else {
		sn = int32(width >> 1)
	}
	dn = int32(width) - sn

	var a, b int32
	if even {
		a, b = 0, 1
	} else {
		a, b = 1, 0
	}

	interleaveH97(data, dn, sn, even)

	if a == 0 {
		unscaleStep97(data, sn, dn, invK97, k97)
	} else {
		unscaleStep97(data, dn, sn, k97, invK97)
	}

	unliftStep97(data, b, a+1, sn, min32(sn, dn-a), delta97)
	unliftStep97(data, a, b+1, dn, min32(dn, sn-b), gamma97)
	unliftStep97(data, b, a+1, sn, min32(sn, dn-a), beta97)
	unliftStep97(data, a, b+1, dn, min32(dn, sn-b), alpha97)
}

func unliftStep97(data []float64, flStart, fwStart int32, end, m int32, c float64) {
	liftStep97(data, flStart, fwStart, end, m, -c)
}

func unscaleStep97(data []float64, itersC1, itersC2 int32, c1, c2 float64) {
	itersCommon := min32(itersC1, itersC2)

	var i int32
	fw := int32(0)
	for i = 0; i < itersCommon; i++ {
		data[fw] /= c1
		data[fw+1] /= c2
		fw += 2
	}

	if i < itersC1 {
		data[fw] /= c1
	} else if i < itersC2 {
		data[fw+1] /= c2
	}
}

// interleaveH97 converts [low | high] format back to interleaved.
func interleaveH97(data []float64, dn, sn int32, even bool) {
	width := int(dn + sn)
	tmp := make([]float64, width)

	if even {
		for i := int32(0); i < sn; i++ {
			tmp[2*i] = data[i]
		}
		for i := int32(0); i < dn; i++ {
			tmp[2*i+1] = data[sn+i]
		}
	} else {
		for i := int32(0); i < sn; i++ {
			tmp[2*i+1] = data[i]
		}
		for i := int32(0); i < dn; i++ {
			tmp[2*i] = data[sn+i]
		}
	}

	copy(data, tmp)
}

// Forward97_2DWithParity is the float64 counterpart of
// Forward53_2DWithParity: columns first, then rows.
func Forward97_2DWithParity(data []float64, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if height > 1 {
		col := make([]float64, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Forward97_1DWithParity(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}

	if width > 1 {
		row := make([]float64, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Forward97_1DWithParity(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}
}

// Inverse97_2DWithParity undoes Forward97_2DWithParity.
func Inverse97_2DWithParity(data []float64, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if width > 1 {
		row := make([]float64, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Inverse97_1DWithParity(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}

	if height > 1 {
		col := make([]float64, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Inverse97_1DWithParity(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}
}

// ForwardMultilevel97 runs a multilevel irreversible decomposition
// over shape; Depth > 1 routes through the volumetric pass.
func ForwardMultilevel97(data []float64, shape Shape, levels int) {
	ForwardMultilevel97WithParity(data, shape, levels, 0, 0)
}

// ForwardMultilevel97WithParity is ForwardMultilevel97 for a
// sub-region with origin (x0, y0).
func ForwardMultilevel97WithParity(data []float64, shape Shape, levels int, x0, y0 int) {
	if shape.Depth > 1 {
		forwardMultilevel97Volume(data, shape, levels, x0, y0, 0)
		return
	}

	originalStride := shape.Width
	curWidth, curHeight := shape.Width, shape.Height
	curX0, curY0 := x0, y0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 {
			break
		}

		Forward97_2DWithParity(data, curWidth, curHeight, originalStride, isEven(curX0), isEven(curY0))
		curWidth, curHeight, curX0, curY0 = nextLowpassWindow(curWidth, curHeight, curX0, curY0)
	}
}

// InverseMultilevel97 reverses ForwardMultilevel97.
func InverseMultilevel97(data []float64, shape Shape, levels int) {
	InverseMultilevel97WithParity(data, shape, levels, 0, 0)
}

// InverseMultilevel97WithParity is InverseMultilevel97 for a
// sub-region with origin (x0, y0).
func InverseMultilevel97WithParity(data []float64, shape Shape, levels int, x0, y0 int) {
	if shape.Depth > 1 {
		inverseMultilevel97Volume(data, shape, levels, x0, y0, 0)
		return
	}

	originalStride := shape.Width

	levelWidths := make([]int, levels+1)
	levelHeights := make([]int, levels+1)
	levelX0 := make([]int, levels+1)
	levelY0 := make([]int, levels+1)
	levelWidths[0], levelHeights[0] = shape.Width, shape.Height
	levelX0[0], levelY0[0] = x0, y0

	for i := 1; i <= levels; i++ {
		levelWidths[i], levelHeights[i], levelX0[i], levelY0[i] = nextLowpassWindow(
			levelWidths[i-1], levelHeights[i-1], levelX0[i-1], levelY0[i-1],
		)
	}

	for level := levels - 1; level >= 0; level-- {
		Inverse97_2DWithParity(data, levelWidths[level], levelHeights[level], originalStride,
			isEven(levelX0[level]), isEven(levelY0[level]))
	}
}

// ConvertInt32ToFloat64 widens reversible-path coefficients to
// float64 so Decomposition can hold either transform's output.
func ConvertInt32ToFloat64(data []int32) []float64 {
	result := make([]float64, len(data))
	for i, v := range data {
		result[i] = float64(v)
	}
	return result
}

// ConvertFloat64ToInt32 narrows back to int32 with round-half-away-
// from-zero, the rounding OpenJPEG's own reference decoder uses so
// the reversible path stays bit-exact.
func ConvertFloat64ToInt32(data []float64) []int32 {
	result := make([]int32, len(data))
	for i, v := range data {
		if v >= 0 {
			result[i] = int32(v + 0.5)
		} else {
			result[i] = int32(v - 0.5)
		}
	}
	return result
}
