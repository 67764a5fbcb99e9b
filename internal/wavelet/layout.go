package wavelet

// splitLengths returns how many of n samples fall on the low-pass
// side of one lifting split; even selects which parity starts the
// low-pass run (see Forward53_1DWithParity).
func splitLengths(n int, even bool) (low int) {
	if even {
		return (n + 1) / 2
	}
	return n / 2
}

func isEven(value int) bool {
	return value&1 == 0
}

// nextCoord maps an axis origin through one level of decomposition:
// the LL sub-region's origin in its own, halved coordinate space.
func nextCoord(value int) int {
	return (value + 1) >> 1
}

// LLDimensions returns the low-low (LL) subband dimensions after a multilevel
// decomposition with origin (0,0).
func LLDimensions(width, height, levels int) (llWidth, llHeight int) {
	return LLDimensionsWithParity(width, height, levels, 0, 0)
}

// LLDimensionsWithParity returns the LL subband dimensions after a multilevel
// decomposition for an arbitrary image origin (x0,y0).
func LLDimensionsWithParity(width, height, levels int, x0, y0 int) (llWidth, llHeight int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if levels <= 0 {
		return width, height
	}

	curWidth := width
	curHeight := height
	curX0 := x0
	curY0 := y0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 {
			break
		}

		curWidth, curHeight, curX0, curY0 = nextLowpassWindow(curWidth, curHeight, curX0, curY0)
	}

	return curWidth, curHeight
}

func nextLowpassWindow(width, height, x0, y0 int) (nextWidth, nextHeight, nextX0, nextY0 int) {
	evenRow := isEven(x0)
	evenCol := isEven(y0)

	nextWidth = splitLengths(width, evenRow)
	nextHeight = splitLengths(height, evenCol)
	nextX0 = nextCoord(x0)
	nextY0 = nextCoord(y0)
	return
}

// LLDimensions3D returns the LLL subband dimensions after a multilevel
// volumetric decomposition with origin (0,0,0), for Part 10 (JP3D) data.
func LLDimensions3D(width, height, depth, levels int) (llWidth, llHeight, llDepth int) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return 0, 0, 0
	}
	if levels <= 0 {
		return width, height, depth
	}

	curWidth, curHeight, curDepth := width, height, depth
	curX0, curY0, curZ0 := 0, 0, 0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 && curDepth <= 1 {
			break
		}
		curWidth, curHeight, curDepth, curX0, curY0, curZ0 = nextLowpassWindow3D(curWidth, curHeight, curDepth, curX0, curY0, curZ0)
	}

	return curWidth, curHeight, curDepth
}

func nextLowpassWindow3D(width, height, depth, x0, y0, z0 int) (nextWidth, nextHeight, nextDepth, nextX0, nextY0, nextZ0 int) {
	nextWidth = splitLengths(width, isEven(x0))
	nextHeight = splitLengths(height, isEven(y0))
	nextDepth = splitLengths(depth, isEven(z0))
	nextX0 = nextCoord(x0)
	nextY0 = nextCoord(y0)
	nextZ0 = nextCoord(z0)
	return
}
