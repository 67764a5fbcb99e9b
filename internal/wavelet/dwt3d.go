package wavelet

// Volumetric (Part 10 / JP3D) extension of the 5/3 and 9/7 transforms: a
// third separable pass along the Z axis on top of the existing 2-D
// row/column passes. The plane stride (strideXY) and the distance
// between consecutive Z planes (strideZ) stay fixed at the original
// volume's dimensions across levels, matching how the 2-D transforms
// keep the row stride fixed while the active window shrinks.

// Forward53_3DWithParity applies one level of the reversible 5/3
// transform to a width x height x depth window of a volume stored in
// data with the given plane stride and Z stride.
func Forward53_3DWithParity(data []int32, width, height, depth, strideXY, strideZ int, evenX, evenY, evenZ bool) {
	if width <= 1 && height <= 1 && depth <= 1 {
		return
	}

	for z := 0; z < depth; z++ {
		plane := data[z*strideZ:]
		Forward53_2DWithParity(plane, width, height, strideXY, evenX, evenY)
	}

	if depth > 1 {
		col := make([]int32, depth)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				base := y*strideXY + x
				for z := 0; z < depth; z++ {
					col[z] = data[base+z*strideZ]
				}
				Forward53_1DWithParity(col, evenZ)
				for z := 0; z < depth; z++ {
					data[base+z*strideZ] = col[z]
				}
			}
		}
	}
}

// Inverse53_3DWithParity is the inverse of Forward53_3DWithParity: the
// Z pass undoes first (mirroring the forward transform's XY-then-Z
// order), then the per-plane 2-D inverse.
func Inverse53_3DWithParity(data []int32, width, height, depth, strideXY, strideZ int, evenX, evenY, evenZ bool) {
	if width <= 1 && height <= 1 && depth <= 1 {
		return
	}

	if depth > 1 {
		col := make([]int32, depth)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				base := y*strideXY + x
				for z := 0; z < depth; z++ {
					col[z] = data[base+z*strideZ]
				}
				Inverse53_1DWithParity(col, evenZ)
				for z := 0; z < depth; z++ {
					data[base+z*strideZ] = col[z]
				}
			}
		}
	}

	for z := 0; z < depth; z++ {
		plane := data[z*strideZ:]
		Inverse53_2DWithParity(plane, width, height, strideXY, evenX, evenY)
	}
}

// forwardMultilevel53Volume is the Depth>1 branch of ForwardMultilevel,
// recursing on the LLL sub-volume at each level. x0/y0/z0 are the
// volume's origin in the full image's coordinate space.
func forwardMultilevel53Volume(data []int32, shape Shape, levels, x0, y0, z0 int) {
	strideXY := shape.Width
	strideZ := shape.Width * shape.Height

	curWidth, curHeight, curDepth := shape.Width, shape.Height, shape.Depth
	curX0, curY0, curZ0 := x0, y0, z0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 && curDepth <= 1 {
			break
		}

		Forward53_3DWithParity(data, curWidth, curHeight, curDepth, strideXY, strideZ,
			isEven(curX0), isEven(curY0), isEven(curZ0))

		curWidth, curHeight, curDepth, curX0, curY0, curZ0 =
			nextLowpassWindow3D(curWidth, curHeight, curDepth, curX0, curY0, curZ0)
	}
}

// inverseMultilevel53Volume is the Depth>1 branch of InverseMultilevel.
func inverseMultilevel53Volume(data []int32, shape Shape, levels, x0, y0, z0 int) {
	strideXY := shape.Width
	strideZ := shape.Width * shape.Height

	levelWidths := make([]int, levels+1)
	levelHeights := make([]int, levels+1)
	levelDepths := make([]int, levels+1)
	levelX0 := make([]int, levels+1)
	levelY0 := make([]int, levels+1)
	levelZ0 := make([]int, levels+1)
	levelWidths[0], levelHeights[0], levelDepths[0] = shape.Width, shape.Height, shape.Depth
	levelX0[0], levelY0[0], levelZ0[0] = x0, y0, z0

	for i := 1; i <= levels; i++ {
		levelWidths[i], levelHeights[i], levelDepths[i], levelX0[i], levelY0[i], levelZ0[i] =
			nextLowpassWindow3D(levelWidths[i-1], levelHeights[i-1], levelDepths[i-1], levelX0[i-1], levelY0[i-1], levelZ0[i-1])
	}

	for level := levels - 1; level >= 0; level-- {
		Inverse53_3DWithParity(data, levelWidths[level], levelHeights[level], levelDepths[level], strideXY, strideZ,
			isEven(levelX0[level]), isEven(levelY0[level]), isEven(levelZ0[level]))
	}
}

// Forward97_3DWithParity is the irreversible (float64) counterpart of
// Forward53_3DWithParity.
func Forward97_3DWithParity(data []float64, width, height, depth, strideXY, strideZ int, evenX, evenY, evenZ bool) {
	if width <= 1 && height <= 1 && depth <= 1 {
		return
	}

	for z := 0; z < depth; z++ {
		plane := data[z*strideZ:]
		Forward97_2DWithParity(plane, width, height, strideXY, evenX, evenY)
	}

	if depth > 1 {
		col := make([]float64, depth)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				base := y*strideXY + x
				for z := 0; z < depth; z++ {
					col[z] = data[base+z*strideZ]
				}
				Forward97_1DWithParity(col, evenZ)
				for z := 0; z < depth; z++ {
					data[base+z*strideZ] = col[z]
				}
			}
		}
	}
}

// Inverse97_3DWithParity is the inverse of Forward97_3DWithParity.
func Inverse97_3DWithParity(data []float64, width, height, depth, strideXY, strideZ int, evenX, evenY, evenZ bool) {
	if width <= 1 && height <= 1 && depth <= 1 {
		return
	}

	if depth > 1 {
		col := make([]float64, depth)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				base := y*strideXY + x
				for z := 0; z < depth; z++ {
					col[z] = data[base+z*strideZ]
				}
				Inverse97_1DWithParity(col, evenZ)
				for z := 0; z < depth; z++ {
					data[base+z*strideZ] = col[z]
				}
			}
		}
	}

	for z := 0; z < depth; z++ {
		plane := data[z*strideZ:]
		Inverse97_2DWithParity(plane, width, height, strideXY, evenX, evenY)
	}
}

// forwardMultilevel97Volume is the Depth>1 branch of ForwardMultilevel97.
func forwardMultilevel97Volume(data []float64, shape Shape, levels, x0, y0, z0 int) {
	strideXY := shape.Width
	strideZ := shape.Width * shape.Height

	curWidth, curHeight, curDepth := shape.Width, shape.Height, shape.Depth
	curX0, curY0, curZ0 := x0, y0, z0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 && curDepth <= 1 {
			break
		}

		Forward97_3DWithParity(data, curWidth, curHeight, curDepth, strideXY, strideZ,
			isEven(curX0), isEven(curY0), isEven(curZ0))

		curWidth, curHeight, curDepth, curX0, curY0, curZ0 =
			nextLowpassWindow3D(curWidth, curHeight, curDepth, curX0, curY0, curZ0)
	}
}

// inverseMultilevel97Volume is the Depth>1 branch of InverseMultilevel97.
func inverseMultilevel97Volume(data []float64, shape Shape, levels, x0, y0, z0 int) {
	strideXY := shape.Width
	strideZ := shape.Width * shape.Height

	levelWidths := make([]int, levels+1)
	levelHeights := make([]int, levels+1)
	levelDepths := make([]int, levels+1)
	levelX0 := make([]int, levels+1)
	levelY0 := make([]int, levels+1)
	levelZ0 := make([]int, levels+1)
	levelWidths[0], levelHeights[0], levelDepths[0] = shape.Width, shape.Height, shape.Depth
	levelX0[0], levelY0[0], levelZ0[0] = x0, y0, z0

	for i := 1; i <= levels; i++ {
		levelWidths[i], levelHeights[i], levelDepths[i], levelX0[i], levelY0[i], levelZ0[i] =
			nextLowpassWindow3D(levelWidths[i-1], levelHeights[i-1], levelDepths[i-1], levelX0[i-1], levelY0[i-1], levelZ0[i-1])
	}

	for level := levels - 1; level >= 0; level-- {
		Inverse97_3DWithParity(data, levelWidths[level], levelHeights[level], levelDepths[level], strideXY, strideZ,
			isEven(levelX0[level]), isEven(levelY0[level]), isEven(levelZ0[level]))
	}
}
