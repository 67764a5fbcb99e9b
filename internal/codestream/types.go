package codestream

// ProgressionOrder is the permutation of (layer, resolution, component,
// precinct[, slice]) that governs packet emission order (spec.md
// §3/§4.4). Values match the codestream's Scod progression byte for
// the 2-D orders; the volumetric variants append a slice dimension.
type ProgressionOrder uint8

const (
	LRCP ProgressionOrder = iota
	RLCP
	RPCL
	PCRL
	CPRL
	// LRCPS places slice innermost of the spatial dimensions for 3-D.
	LRCPS
	RLCPS
	RPCLS
	PCRLS
	CPRLS
)

// Codestream is the structured, invariant-checked result of parsing a
// JPEG 2000 family codestream (spec.md §3/§4.1).
type Codestream struct {
	SIZ *SIZSegment
	COD *CODSegment
	QCD *QCDSegment
	CAP *CAPSegment

	COC map[uint16]*COCSegment
	QCC map[uint16]*QCCSegment
	POC []POCSegment
	RGN []RGNSegment
	COM []COMSegment

	MCT []MCTSegment
	MCC []MCCSegment
	MCO []MCOSegment

	Tiles []*Tile

	// IsHTJ2K is true iff a CAP marker with CapHTBit set appeared in
	// the main header (spec.md §4.1 "HTJ2K detection").
	IsHTJ2K bool

	// IsPartial is set by the parser in tolerate_errors mode when the
	// stream was truncated; Tiles then holds only the tiles that were
	// read successfully.
	IsPartial bool
	Warnings  []string

	// Data is the original byte slice the codestream was parsed from.
	Data []byte
}

// SIZSegment is the image-and-tile-size marker segment, extended with
// an optional third (Z) dimension for Part 10 (JP3D) volumetric data.
type SIZSegment struct {
	Rsiz   uint16
	Xsiz   uint32
	Ysiz   uint32
	XOsiz  uint32
	YOsiz  uint32
	XTsiz  uint32
	YTsiz  uint32
	XTOsiz uint32
	YTOsiz uint32
	Csiz   uint16

	// Is3D, when true, activates the Z* fields below for a JP3D
	// codestream. The wire encoding of the extra fields is this
	// module's own (Part 10 defines no single public byte layout);
	// the builder/parser round-trip them consistently with each other.
	Is3D   bool
	Zsiz   uint32
	ZOsiz  uint32
	ZTsiz  uint32
	ZTOsiz uint32

	Components []ComponentSize
}

// Width, Height and Depth return the image canvas extents; Depth is 1
// for a 2-D (non-volumetric) codestream.
func (s *SIZSegment) Width() int  { return int(s.Xsiz - s.XOsiz) }
func (s *SIZSegment) Height() int { return int(s.Ysiz - s.YOsiz) }
func (s *SIZSegment) Depth() int {
	if !s.Is3D {
		return 1
	}
	return int(s.Zsiz - s.ZOsiz)
}

// ComponentSize holds per-component precision/sign/subsampling.
type ComponentSize struct {
	Ssiz  uint8
	XRsiz uint8
	YRsiz uint8
}

func (c *ComponentSize) BitDepth() int  { return int(c.Ssiz&0x7F) + 1 }
func (c *ComponentSize) IsSigned() bool { return (c.Ssiz & 0x80) != 0 }

// CODSegment is the coding-style-default marker segment.
type CODSegment struct {
	Scod                        uint8
	ProgressionOrder            uint8
	NumberOfLayers              uint16
	MultipleComponentTransform  uint8
	NumberOfDecompositionLevels uint8
	CodeBlockWidth              uint8
	CodeBlockHeight             uint8
	CodeBlockStyle              uint8
	Transformation              uint8 // 0 = 9/7 irreversible, 1 = 5/3 reversible
	PrecinctSizes               []PrecinctSize
}

func (c *CODSegment) CodeBlockSize() (width, height int) {
	return 1 << (c.CodeBlockWidth + 2), 1 << (c.CodeBlockHeight + 2)
}

// Reversible reports whether the codestream uses the lossless 5/3
// wavelet (as opposed to the lossy 9/7).
func (c *CODSegment) Reversible() bool { return c.Transformation == 1 }

type PrecinctSize struct {
	PPx uint8
	PPy uint8
}

// COCSegment overrides coding style for one component.
type COCSegment struct {
	Ccoc                        uint16
	Scoc                        uint8
	NumberOfDecompositionLevels uint8
	CodeBlockWidth              uint8
	CodeBlockHeight             uint8
	CodeBlockStyle              uint8
	Transformation              uint8
	PrecinctSizes               []PrecinctSize
}

// QCDSegment is the quantization-default marker segment.
type QCDSegment struct {
	Sqcd  uint8
	SPqcd []byte
}

func (q *QCDSegment) QuantizationType() int { return int(q.Sqcd & 0x1F) }
func (q *QCDSegment) GuardBits() int        { return int(q.Sqcd >> 5) }

// QCCSegment overrides quantization for one component.
type QCCSegment struct {
	Cqcc  uint16
	Sqcc  uint8
	SPqcc []byte
}

// CAPSegment is the Part-15 capability marker segment; Pcap's high
// bit (CapHTBit) flags HTJ2K block coding.
type CAPSegment struct {
	Pcap uint32
	Ccap []uint16
}

func (c *CAPSegment) IsHT() bool { return c.Pcap&CapHTBit != 0 }

// RGNSegment is the region-of-interest marker segment.
type RGNSegment struct {
	Crgn  uint16
	Srgn  uint8
	SPrgn uint8
}

// POCSegment is a progression-order-change entry.
type POCSegment struct {
	RSpoc  uint8
	CSpoc  uint16
	LYEpoc uint16
	REpoc  uint8
	CEpoc  uint16
	Ppoc   uint8
}

// COMSegment is a comment marker segment; permitted anywhere in the
// main header and between tile-parts (spec.md §4.1).
type COMSegment struct {
	Rcom uint16
	Data []byte
}

// MCTElementType / MCTArrayType classify a Part-2 MCT segment payload.
type MCTElementType uint8
type MCTArrayType uint8

const (
	MCTElementInt16 MCTElementType = iota
	MCTElementInt32
	MCTElementFloat32
	MCTElementFloat64
)

const (
	MCTArrayDecorrelation MCTArrayType = iota
	MCTArrayOffset
)

// MCTSegment declares one multi-component-transform array.
type MCTSegment struct {
	Index       uint8
	ElementType MCTElementType
	ArrayType   MCTArrayType
	Data        []byte
}

// MCCSegment declares a multiple-component collection (which
// components a transform stage reads/writes).
type MCCSegment struct {
	Index              uint8
	CollectionType      uint8
	NumComponents       uint16
	ComponentIDs        []uint16
	OutputComponentIDs  []uint16
	DecorrelateIndex    uint8
	OffsetIndex         uint8
	Reversible          bool
}

// MCOSegment orders the MCT stages to apply.
type MCOSegment struct {
	NumStages    uint8
	StageIndices []uint8
}

// SOTSegment is the start-of-tile-part marker segment.
type SOTSegment struct {
	Isot  uint16 // tile index
	Psot  uint32 // tile-part length from SOT's first byte, 0 = "to EOC" on the last tile-part
	TPsot uint8  // tile-part index
	TNsot uint8  // number of tile-parts for this tile, 0 = unknown
}

// Tile is one parsed tile: its SOT header, any tile-part-local
// overrides, and the raw tile body bytes (SOD..next marker).
type Tile struct {
	Index int
	SOT   *SOTSegment
	COD   *CODSegment
	QCD   *QCDSegment
	RGN   []*RGNSegment
	Data  []byte
}
