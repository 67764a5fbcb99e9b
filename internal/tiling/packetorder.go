package tiling

import "github.com/cocosip/jpeg2000-jpip/internal/codestream"

// PacketKey identifies one packet by its position along each
// progression axis. Slice is always 0 for a non-volumetric order.
type PacketKey struct {
	Layer      int
	Resolution int
	Component  int
	Precinct   int
	Slice      int
}

// axisLetters gives the outer-to-inner traversal order for each
// progression tag. The volumetric ("...S") variants append the slice
// axis last, placing it innermost among the spatial axes (R and P),
// since it is always the final letter of the tag name.
var axisLetters = map[codestream.ProgressionOrder]string{
	codestream.LRCP: "LRCP", codestream.RLCP: "RLCP", codestream.RPCL: "RPCL",
	codestream.PCRL: "PCRL", codestream.CPRL: "CPRL",
	codestream.LRCPS: "LRCPS", codestream.RLCPS: "RLCPS", codestream.RPCLS: "RPCLS",
	codestream.PCRLS: "PCRLS", codestream.CPRLS: "CPRLS",
}

// Enumerate produces the deterministic packet sequence for order,
// traversing the outer dimensions in the order encoded by the
// progression tag (spec.md §4.4). numSlices is ignored (treated as 1)
// for a non-volumetric order.
func Enumerate(order codestream.ProgressionOrder, numLayers, numResolutions, numComponents, numPrecincts, numSlices int) []PacketKey {
	letters, ok := axisLetters[order]
	if !ok {
		letters = "LRCP"
	}
	if numSlices < 1 {
		numSlices = 1
	}

	bounds := map[byte]int{
		'L': numLayers, 'R': numResolutions, 'C': numComponents, 'P': numPrecincts, 'S': numSlices,
	}

	var keys []PacketKey
	var rec func(pos int, cur map[byte]int)
	rec = func(pos int, cur map[byte]int) {
		if pos == len(letters) {
			keys = append(keys, PacketKey{
				Layer: cur['L'], Resolution: cur['R'], Component: cur['C'],
				Precinct: cur['P'], Slice: cur['S'],
			})
			return
		}
		axis := letters[pos]
		for v := 0; v < bounds[axis]; v++ {
			cur[axis] = v
			rec(pos+1, cur)
		}
	}
	rec(0, map[byte]int{'L': 0, 'R': 0, 'C': 0, 'P': 0, 'S': 0})
	return keys
}
