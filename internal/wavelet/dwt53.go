package wavelet

// Forward53_1DWithParity runs one level of the reversible 5/3 integer
// lifting transform over a 1-D signal, writing [L | H] back into data
// in place. even selects which parity (cas0/cas1 in ISO/IEC 15444-1
// Annex F terms) the low-pass subband starts on — callers pick this
// per axis from the tile-part's origin parity so that a subband split
// at an arbitrary (x0, y0) stays bit-exact with one split at (0, 0).
func Forward53_1DWithParity(data []int32, even bool) {
	width := len(data)

	if even {
		if width <= 1 {
			return
		}

		sn := int32((width + 1) >> 1)
		dn := int32(width - int(sn))
		tmp := make([]int32, width)

		// Predict: high[i] -= (low[i] + low[i+1]) >> 1
		var i int32
		for i = 0; i < sn-1; i++ {
			tmp[sn+i] = data[2*i+1] - ((data[i*2] + data[(i+1)*2]) >> 1)
		}
		if (width % 2) == 0 {
			tmp[sn+i] = data[2*i+1] - data[i*2]
		}

		// Update: low[i] += (high[i-1] + high[i] + 2) >> 2
		data[0] += (tmp[sn] + tmp[sn] + 2) >> 2
		for i = 1; i < dn; i++ {
			data[i] = data[2*i] + ((tmp[sn+(i-1)] + tmp[sn+i] + 2) >> 2)
		}
		if (width % 2) == 1 {
			data[i] = data[2*i] + ((tmp[sn+(i-1)] + tmp[sn+(i-1)] + 2) >> 2)
		}

		copy(data[sn:], tmp[sn:sn+dn])
		return
	}

	if width == 1 {
		data[0] *= 2
		return
	}

	sn := int32(width >> 1)
	dn := int32(width - int(sn))
	tmp := make([]int32, width)

	tmp[sn+0] = data[0] - data[1]
	var i int32
	for i = 1; i < sn; i++ {
		tmp[sn+i] = data[2*i] - ((data[2*i+1] + data[2*(i-1)+1]) >> 1)
	}
	if (width % 2) == 1 {
		tmp[sn+i] = data[2*i] - data[2*(i-1)+1]
	}

	for i = 0; i < dn-1; i++ {
		data[i] = data[2*i+1] + ((tmp[sn+i] + tmp[sn+i+1] + 2) >> 2)
	}
	if (width % 2) == 0 {
		data[i] = data[2*i+1] + ((tmp[sn+i] + tmp[sn+i] + 2) >> 2)
	}

	copy(data[sn:], tmp[sn:sn+dn])
}

// Inverse53_1DWithParity undoes Forward53_1DWithParity: data holds
// [L | H] on entry and the reconstructed signal on return.
func Inverse53_1DWithParity(data []int32, even bool) {
	width := len(data)

	if even {
		if width <= 1 {
			return
		}

		sn := int32((width + 1) >> 1)
		tmp := make([]int32, width)

		var d1c, d1n, s1n, s0c, s0n int32
		s1n = data[0]
		d1n = data[sn]
		s0n = s1n - ((d1n + 1) >> 1)

		var i, j int32
		for i, j = 0, 1; i < (int32(width) - 3); i, j = i+2, j+1 {
			d1c = d1n
			s0c = s0n

			s1n = data[j]
			d1n = data[sn+j]
			s0n = s1n - ((d1c + d1n + 2) >> 2)

			tmp[i] = s0c
			tmp[i+1] = d1c + ((s0c + s0n) >> 1)
		}

		tmp[i] = s0n
		if (width & 1) != 0 {
			tmp[width-1] = data[(width-1)/2] - ((d1n + 1) >> 1)
			tmp[width-2] = d1n + ((s0n + tmp[width-1]) >> 1)
		} else {
			tmp[width-1] = d1n + s0n
		}

		copy(data, tmp)
		return
	}

	if width == 1 {
		data[0] /= 2
		return
	}
	if width == 2 {
		out1 := data[0] - ((data[1] + 1) >> 1)
		out0 := data[1] + out1
		data[0] = out0
		data[1] = out1
		return
	}

	sn := int32(width >> 1)
	tmp := make([]int32, width)

	var s1, s2, dc, dn int32
	s1 = data[sn+1]
	dc = data[0] - ((data[sn] + s1 + 2) >> 2)
	tmp[0] = data[sn] + dc

	notOdd := int32(0)
	if (width & 1) == 0 {
		notOdd = 1
	}
	limit := int32(width) - 2 - notOdd

	var i, j int32
	for i, j = 1, 1; i < limit; i, j = i+2, j+1 {
		s2 = data[sn+j+1]
		dn = data[j] - ((s1 + s2 + 2) >> 2)
		tmp[i] = dc
		tmp[i+1] = s1 + ((dn + dc) >> 1)
		dc = dn
		s1 = s2
	}
	tmp[i] = dc

	if (width & 1) == 0 {
		dn = data[width/2-1] - ((s1 + 1) >> 1)
		tmp[width-2] = s1 + ((dn + dc) >> 1)
		tmp[width-1] = dn
	} else {
		tmp[width-1] = s1 + dc
	}

	copy(data, tmp)
}

// Forward53_2DWithParity runs the separable 5/3 transform over one
// plane of a (possibly strided) buffer: columns first, then rows,
// matching the vertical-before-horizontal pass order the rest of this
// package's multilevel drivers assume.
func Forward53_2DWithParity(data []int32, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if height > 1 {
		col := make([]int32, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Forward53_1DWithParity(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}

	if width > 1 {
		row := make([]int32, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Forward53_1DWithParity(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}
}

// Inverse53_2DWithParity undoes Forward53_2DWithParity (rows then
// columns — the inverse of the forward pass order).
func Inverse53_2DWithParity(data []int32, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if width > 1 {
		row := make([]int32, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Inverse53_1DWithParity(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}

	if height > 1 {
		col := make([]int32, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Inverse53_1DWithParity(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}
}

// ForwardMultilevel runs a multilevel reversible decomposition over
// shape, recursing only on the LL (or, for volumetric shapes, LLL)
// sub-region at each level. Depth > 1 routes through the Part 10
// volumetric pass.
func ForwardMultilevel(data []int32, shape Shape, levels int) {
	ForwardMultilevelWithParity(data, shape, levels, 0, 0)
}

// ForwardMultilevelWithParity is ForwardMultilevel for a sub-region
// whose origin is (x0, y0) in the full image's coordinate space, so
// the lifting parity at each level matches what it would have been
// had the whole image been transformed together.
func ForwardMultilevelWithParity(data []int32, shape Shape, levels int, x0, y0 int) {
	if shape.Depth > 1 {
		forwardMultilevel53Volume(data, shape, levels, x0, y0, 0)
		return
	}

	originalStride := shape.Width
	curWidth, curHeight := shape.Width, shape.Height
	curX0, curY0 := x0, y0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 {
			break
		}

		Forward53_2DWithParity(data, curWidth, curHeight, originalStride, isEven(curX0), isEven(curY0))
		curWidth, curHeight, curX0, curY0 = nextLowpassWindow(curWidth, curHeight, curX0, curY0)
	}
}

// InverseMultilevel reverses ForwardMultilevel, reconstructing from
// the coarsest level back to the finest.
func InverseMultilevel(data []int32, shape Shape, levels int) {
	InverseMultilevelWithParity(data, shape, levels, 0, 0)
}

// InverseMultilevelWithParity is InverseMultilevel for a sub-region
// with origin (x0, y0); see ForwardMultilevelWithParity.
func InverseMultilevelWithParity(data []int32, shape Shape, levels int, x0, y0 int) {
	if shape.Depth > 1 {
		inverseMultilevel53Volume(data, shape, levels, x0, y0, 0)
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
		Inverse53_2DWithParity(data, levelWidths[level], levelHeights[level], originalStride,
			isEven(levelX0[level]), isEven(levelY0[level]))
	}
}
