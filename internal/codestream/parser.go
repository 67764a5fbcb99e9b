package codestream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
)

// ParseOptions controls parser leniency (spec.md §4.1, §7).
type ParseOptions struct {
	// TolerateErrors makes structural problems non-fatal: the parser
	// returns the tiles it read successfully, sets IsPartial, and
	// records warnings instead of returning an error.
	TolerateErrors bool
}

// Parser is a linear, fail-fast scanner over a codestream buffer.
type Parser struct {
	data      []byte
	offset    int
	opts      ParseOptions
	warnings  []string
	truncated bool
}

// NewParser creates a codestream parser over data.
func NewParser(data []byte, opts ParseOptions) *Parser {
	return &Parser{data: data, opts: opts}
}

// Parse parses the entire codestream per spec.md §4.1.
func Parse(data []byte, opts ParseOptions) (*Codestream, error) {
	return NewParser(data, opts).Parse()
}

func (p *Parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *Parser) fail(kind errs.Kind, phase string, marker uint16, err error) error {
	return errs.NewCodec(kind, phase, p.offset, marker, err)
}

func (p *Parser) Parse() (*Codestream, error) {
	cs := &Codestream{Data: p.data, COC: map[uint16]*COCSegment{}, QCC: map[uint16]*QCCSegment{}}

	if len(p.data) < 2 || binary.BigEndian.Uint16(p.data[0:2]) != MarkerSOC {
		return nil, p.fail(errs.MissingSOC, "soc", 0, nil)
	}
	p.offset = 2

	if err := p.parseMainHeader(cs); err != nil {
		if p.opts.TolerateErrors {
			cs.IsPartial = true
			cs.Warnings = append(p.warnings, err.Error())
			return cs, nil
		}
		return nil, err
	}

	sawEOC := false
parseLoop:
	for {
		marker, err := p.peekMarker()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, p.fail(errs.TruncatedCodestream, "tile-scan", 0, err)
		}

		switch marker {
		case MarkerEOC:
			_, _ = p.readMarker()
			sawEOC = true
			break parseLoop
		case MarkerSOT:
			tile, terr := p.parseTile(cs)
			if terr != nil {
				if p.opts.TolerateErrors {
					cs.IsPartial = true
					p.warnf("tile parse stopped: %v", terr)
					break parseLoop
				}
				return nil, terr
			}
			cs.Tiles = append(cs.Tiles, tile)
		case MarkerCOM:
			_, _ = p.readMarker()
			com, cerr := p.parseCOM()
			if cerr != nil {
				return nil, p.fail(errs.MalformedHeader, "inter-tile-com", MarkerCOM, cerr)
			}
			cs.COM = append(cs.COM, *com)
		default:
			return nil, p.fail(errs.ProtocolError, "tile-scan", marker,
				fmt.Errorf("unexpected marker in tile sequence: 0x%04X (%s)", marker, MarkerName(marker)))
		}
	}

	if !sawEOC {
		if p.opts.TolerateErrors {
			p.warnf("missing EOC marker")
		} else {
			return nil, p.fail(errs.MissingEOC, "eoc", 0, nil)
		}
	}

	if p.truncated {
		cs.IsPartial = true
	}
	cs.Warnings = p.warnings
	return cs, nil
}

func (p *Parser) parseMainHeader(cs *Codestream) error {
	marker, err := p.readMarker()
	if err != nil {
		return p.fail(errs.MalformedHeader, "main-header", 0, err)
	}
	if marker != MarkerSIZ {
		return p.fail(errs.MalformedHeader, "main-header", marker,
			fmt.Errorf("expected SIZ immediately after SOC, got 0x%04X", marker))
	}
	siz, err := p.parseSIZ()
	if err != nil {
		return p.fail(errs.InvalidSIZ, "siz", MarkerSIZ, err)
	}
	cs.SIZ = siz

	sawCOD, sawQCD := false, false
	for {
		marker, err := p.peekMarker()
		if err != nil {
			return p.fail(errs.TruncatedCodestream, "main-header", 0, err)
		}
		if marker == MarkerSOT || marker == MarkerEOC {
			break
		}
		marker, err = p.readMarker()
		if err != nil {
			return p.fail(errs.TruncatedCodestream, "main-header", 0, err)
		}

		switch marker {
		case MarkerSIZ:
			return p.fail(errs.DuplicateMarker, "main-header", marker, fmt.Errorf("duplicate SIZ"))
		case MarkerCOD:
			if sawCOD {
				return p.fail(errs.DuplicateMarker, "main-header", marker, fmt.Errorf("duplicate COD"))
			}
			if sawQCD {
				return p.fail(errs.MalformedHeader, "main-header", marker, fmt.Errorf("COD must precede QCD"))
			}
			cod, err := p.parseCOD()
			if err != nil {
				return p.fail(errs.MalformedHeader, "cod", marker, err)
			}
			cs.COD = cod
			sawCOD = true
		case MarkerQCD:
			if sawQCD {
				return p.fail(errs.DuplicateMarker, "main-header", marker, fmt.Errorf("duplicate QCD"))
			}
			if !sawCOD {
				return p.fail(errs.MalformedHeader, "main-header", marker, fmt.Errorf("QCD seen before COD"))
			}
			qcd, err := p.parseQCD()
			if err != nil {
				return p.fail(errs.MalformedHeader, "qcd", marker, err)
			}
			cs.QCD = qcd
			sawQCD = true
		case MarkerCAP:
			cap, err := p.parseCAP()
			if err != nil {
				return p.fail(errs.MalformedHeader, "cap", marker, err)
			}
			cs.CAP = cap
			cs.IsHTJ2K = cap.IsHT()
		case MarkerCOC:
			coc, err := p.parseCOC()
			if err != nil {
				return p.fail(errs.MalformedHeader, "coc", marker, err)
			}
			cs.COC[coc.Ccoc] = coc
		case MarkerQCC:
			qcc, err := p.parseQCC()
			if err != nil {
				return p.fail(errs.MalformedHeader, "qcc", marker, err)
			}
			cs.QCC[qcc.Cqcc] = qcc
		case MarkerPOC:
			poc, err := p.parsePOC()
			if err != nil {
				return p.fail(errs.MalformedHeader, "poc", marker, err)
			}
			cs.POC = append(cs.POC, *poc)
		case MarkerRGN:
			rgn, err := p.parseRGN()
			if err != nil {
				return p.fail(errs.MalformedHeader, "rgn", marker, err)
			}
			cs.RGN = append(cs.RGN, *rgn)
		case MarkerCOM:
			com, err := p.parseCOM()
			if err != nil {
				return p.fail(errs.MalformedHeader, "com", marker, err)
			}
			cs.COM = append(cs.COM, *com)
		case MarkerMCT:
			seg, err := p.parseMCT()
			if err != nil {
				return p.fail(errs.MalformedHeader, "mct", marker, err)
			}
			cs.MCT = append(cs.MCT, *seg)
		case MarkerMCC:
			seg, err := p.parseMCC()
			if err != nil {
				return p.fail(errs.MalformedHeader, "mcc", marker, err)
			}
			cs.MCC = append(cs.MCC, *seg)
		case MarkerMCO:
			seg, err := p.parseMCO()
			if err != nil {
				return p.fail(errs.MalformedHeader, "mco", marker, err)
			}
			cs.MCO = append(cs.MCO, *seg)
		default:
			if !hasLengthSegment(marker) {
				return p.fail(errs.UnknownMarker, "main-header", marker, fmt.Errorf("unexpected delimiting marker"))
			}
			if err := p.skipSegment(); err != nil {
				return p.fail(errs.UnknownMarker, "main-header", marker, err)
			}
		}
	}

	if cs.SIZ == nil {
		return p.fail(errs.InvalidSIZ, "main-header", 0, fmt.Errorf("missing required SIZ segment"))
	}
	if !sawCOD {
		return p.fail(errs.MalformedHeader, "main-header", 0, fmt.Errorf("missing required COD segment"))
	}
	if !sawQCD {
		return p.fail(errs.MalformedHeader, "main-header", 0, fmt.Errorf("missing required QCD segment"))
	}
	return nil
}

func (p *Parser) parseTile(cs *Codestream) (*Tile, error) {
	tileStart := p.offset
	marker, err := p.readMarker()
	if err != nil {
		return nil, p.fail(errs.TruncatedCodestream, "tile", 0, err)
	}
	if marker != MarkerSOT {
		return nil, p.fail(errs.InvalidTile, "tile", marker, fmt.Errorf("expected SOT, got 0x%04X", marker))
	}
	sot, err := p.parseSOT()
	if err != nil {
		return nil, p.fail(errs.InvalidTile, "sot", MarkerSOT, err)
	}
	if cs.SIZ != nil {
		tilesX, tilesY, tilesZ := TileCounts(cs.SIZ)
		total := tilesX * tilesY * tilesZ
		if int(sot.Isot) >= total {
			return nil, p.fail(errs.InvalidTile, "sot", MarkerSOT,
				fmt.Errorf("tile index %d out of range (%d tiles)", sot.Isot, total))
		}
	}

	tile := &Tile{Index: int(sot.Isot), SOT: sot}

	for {
		marker, err := p.peekMarker()
		if err != nil {
			return nil, p.fail(errs.TruncatedCodestream, "tile-header", 0, err)
		}
		if marker == MarkerSOD {
			_, _ = p.readMarker()
			break
		}
		marker, err = p.readMarker()
		if err != nil {
			return nil, p.fail(errs.TruncatedCodestream, "tile-header", 0, err)
		}
		switch marker {
		case MarkerCOD:
			cod, err := p.parseCOD()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "cod", marker, err)
			}
			tile.COD = cod
		case MarkerQCD:
			qcd, err := p.parseQCD()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "qcd", marker, err)
			}
			tile.QCD = qcd
		case MarkerRGN:
			rgn, err := p.parseRGN()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "rgn", marker, err)
			}
			tile.RGN = append(tile.RGN, rgn)
		case MarkerMCT:
			seg, err := p.parseMCT()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "mct", marker, err)
			}
			cs.MCT = append(cs.MCT, *seg)
		case MarkerMCC:
			seg, err := p.parseMCC()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "mcc", marker, err)
			}
			cs.MCC = append(cs.MCC, *seg)
		case MarkerMCO:
			seg, err := p.parseMCO()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "mco", marker, err)
			}
			cs.MCO = append(cs.MCO, *seg)
		case MarkerCOM:
			com, err := p.parseCOM()
			if err != nil {
				return nil, p.fail(errs.MalformedHeader, "com", marker, err)
			}
			cs.COM = append(cs.COM, *com)
		default:
			if !hasLengthSegment(marker) {
				return nil, p.fail(errs.UnknownMarker, "tile-header", marker, fmt.Errorf("unexpected delimiting marker"))
			}
			if err := p.skipSegment(); err != nil {
				return nil, p.fail(errs.UnknownMarker, "tile-header", marker, err)
			}
		}
	}

	data, truncated := p.readTileDataWithLength(tileStart, sot.Psot)
	if truncated && !p.opts.TolerateErrors {
		return nil, p.fail(errs.TruncatedCodestream, "tile-data", MarkerSOT,
			fmt.Errorf("Psot=%d exceeds remaining stream length", sot.Psot))
	}
	if truncated {
		p.truncated = true
		p.warnf("tile %d truncated: Psot exceeds stream length", sot.Isot)
	}
	tile.Data = data
	return tile, nil
}

func (p *Parser) parseSIZ() (*SIZSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	siz := &SIZSegment{}
	fields := []*uint32{&siz.Xsiz, &siz.Ysiz, &siz.XOsiz, &siz.YOsiz, &siz.XTsiz, &siz.YTsiz, &siz.XTOsiz, &siz.YTOsiz}
	if siz.Rsiz, err = p.readUint16(); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if *f, err = p.readUint32(); err != nil {
			return nil, err
		}
	}
	if siz.Csiz, err = p.readUint16(); err != nil {
		return nil, err
	}
	siz.Components = make([]ComponentSize, siz.Csiz)
	for i := range siz.Components {
		if siz.Components[i].Ssiz, err = p.readUint8(); err != nil {
			return nil, err
		}
		if siz.Components[i].XRsiz, err = p.readUint8(); err != nil {
			return nil, err
		}
		if siz.Components[i].YRsiz, err = p.readUint8(); err != nil {
			return nil, err
		}
	}

	expected := 38 + 3*int(siz.Csiz)
	remaining := int(length) - expected
	if remaining == 16 {
		// JP3D extension: Zsiz, ZOsiz, ZTsiz, ZTOsiz.
		siz.Is3D = true
		if siz.Zsiz, err = p.readUint32(); err != nil {
			return nil, err
		}
		if siz.ZOsiz, err = p.readUint32(); err != nil {
			return nil, err
		}
		if siz.ZTsiz, err = p.readUint32(); err != nil {
			return nil, err
		}
		if siz.ZTOsiz, err = p.readUint32(); err != nil {
			return nil, err
		}
	} else if remaining != 0 {
		return nil, fmt.Errorf("SIZ segment length mismatch: expected %d or %d, got %d", expected, expected+16, length)
	}
	return siz, nil
}

func (p *Parser) parseCOD() (*CODSegment, error) {
	if _, err := p.readUint16(); err != nil {
		return nil, err
	}
	cod := &CODSegment{}
	var err error
	if cod.Scod, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.ProgressionOrder, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.NumberOfLayers, err = p.readUint16(); err != nil {
		return nil, err
	}
	if cod.MultipleComponentTransform, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.NumberOfDecompositionLevels, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.CodeBlockWidth, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.CodeBlockHeight, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.CodeBlockStyle, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.Transformation, err = p.readUint8(); err != nil {
		return nil, err
	}
	if cod.Scod&0x01 != 0 {
		numLevels := int(cod.NumberOfDecompositionLevels) + 1
		cod.PrecinctSizes = make([]PrecinctSize, numLevels)
		for i := 0; i < numLevels; i++ {
			v, err := p.readUint8()
			if err != nil {
				return nil, err
			}
			cod.PrecinctSizes[i] = PrecinctSize{PPx: v & 0x0F, PPy: v >> 4}
		}
	}
	return cod, nil
}

func (p *Parser) parseCOC() (*COCSegment, error) {
	if _, err := p.readUint16(); err != nil {
		return nil, err
	}
	coc := &COCSegment{}
	var err error
	if coc.Ccoc, err = p.readUint16(); err != nil {
		return nil, err
	}
	if coc.Scoc, err = p.readUint8(); err != nil {
		return nil, err
	}
	if coc.NumberOfDecompositionLevels, err = p.readUint8(); err != nil {
		return nil, err
	}
	if coc.CodeBlockWidth, err = p.readUint8(); err != nil {
		return nil, err
	}
	if coc.CodeBlockHeight, err = p.readUint8(); err != nil {
		return nil, err
	}
	if coc.CodeBlockStyle, err = p.readUint8(); err != nil {
		return nil, err
	}
	if coc.Transformation, err = p.readUint8(); err != nil {
		return nil, err
	}
	if coc.Scoc&0x01 != 0 {
		numLevels := int(coc.NumberOfDecompositionLevels) + 1
		coc.PrecinctSizes = make([]PrecinctSize, numLevels)
		for i := 0; i < numLevels; i++ {
			v, err := p.readUint8()
			if err != nil {
				return nil, err
			}
			coc.PrecinctSizes[i] = PrecinctSize{PPx: v & 0x0F, PPy: v >> 4}
		}
	}
	return coc, nil
}

func (p *Parser) parseQCD() (*QCDSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	qcd := &QCDSegment{}
	if qcd.Sqcd, err = p.readUint8(); err != nil {
		return nil, err
	}
	n := int(length) - 3
	if n < 0 {
		return nil, fmt.Errorf("invalid QCD length %d", length)
	}
	qcd.SPqcd = make([]byte, n)
	if _, err := p.read(qcd.SPqcd); err != nil {
		return nil, err
	}
	return qcd, nil
}

func (p *Parser) parseQCC() (*QCCSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	qcc := &QCCSegment{}
	if qcc.Cqcc, err = p.readUint16(); err != nil {
		return nil, err
	}
	if qcc.Sqcc, err = p.readUint8(); err != nil {
		return nil, err
	}
	n := int(length) - 5
	if n < 0 {
		return nil, fmt.Errorf("invalid QCC length %d", length)
	}
	qcc.SPqcc = make([]byte, n)
	if _, err := p.read(qcc.SPqcc); err != nil {
		return nil, err
	}
	return qcc, nil
}

func (p *Parser) parsePOC() (*POCSegment, error) {
	if _, err := p.readUint16(); err != nil {
		return nil, err
	}
	poc := &POCSegment{}
	var err error
	if poc.RSpoc, err = p.readUint8(); err != nil {
		return nil, err
	}
	if poc.CSpoc, err = p.readUint16(); err != nil {
		return nil, err
	}
	if poc.LYEpoc, err = p.readUint16(); err != nil {
		return nil, err
	}
	if poc.REpoc, err = p.readUint8(); err != nil {
		return nil, err
	}
	if poc.CEpoc, err = p.readUint16(); err != nil {
		return nil, err
	}
	if poc.Ppoc, err = p.readUint8(); err != nil {
		return nil, err
	}
	return poc, nil
}

func (p *Parser) parseCAP() (*CAPSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	cap := &CAPSegment{}
	if cap.Pcap, err = p.readUint32(); err != nil {
		return nil, err
	}
	n := (int(length) - 6) / 2
	for i := 0; i < n; i++ {
		v, err := p.readUint16()
		if err != nil {
			return nil, err
		}
		cap.Ccap = append(cap.Ccap, v)
	}
	return cap, nil
}

func (p *Parser) parseRGN() (*RGNSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	if length < 5 {
		return nil, fmt.Errorf("invalid RGN length: %d", length)
	}
	rgn := &RGNSegment{}
	crgn, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	rgn.Crgn = uint16(crgn)
	if rgn.Srgn, err = p.readUint8(); err != nil {
		return nil, err
	}
	if rgn.SPrgn, err = p.readUint8(); err != nil {
		return nil, err
	}
	if remain := int(length) - 5; remain > 0 {
		if _, err := p.read(make([]byte, remain)); err != nil {
			return nil, err
		}
	}
	return rgn, nil
}

func (p *Parser) parseCOM() (*COMSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	com := &COMSegment{}
	if com.Rcom, err = p.readUint16(); err != nil {
		return nil, err
	}
	n := int(length) - 4
	if n < 0 {
		return nil, fmt.Errorf("invalid COM length %d", length)
	}
	com.Data = make([]byte, n)
	if _, err := p.read(com.Data); err != nil {
		return nil, err
	}
	return com, nil
}

func (p *Parser) parseMCT() (*MCTSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	payloadLen := int(length) - 2
	if payloadLen < 6 {
		return nil, fmt.Errorf("invalid MCT length")
	}
	if _, err := p.readUint16(); err != nil { // Zmct
		return nil, err
	}
	imct, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	if _, err := p.readUint16(); err != nil { // Ymct
		return nil, err
	}
	idx := uint8(imct & 0xFF)
	at := uint8((imct >> 8) & 0x3)
	et := uint8((imct >> 10) & 0x3)
	buf := make([]byte, payloadLen-6)
	if _, err := p.read(buf); err != nil {
		return nil, err
	}
	return &MCTSegment{Index: idx, ElementType: MCTElementType(et), ArrayType: MCTArrayType(at), Data: buf}, nil
}

func (p *Parser) parseMCC() (*MCCSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	payloadLen := int(length) - 2
	if payloadLen < 7 {
		return nil, fmt.Errorf("invalid MCC length")
	}
	if _, err := p.readUint16(); err != nil { // Zmcc
		return nil, err
	}
	idx, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	if _, err := p.readUint16(); err != nil { // Ymcc
		return nil, err
	}
	if _, err := p.readUint16(); err != nil { // Qmcc
		return nil, err
	}
	collectionType, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	nmcci, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	compBytes, numComps := componentCount(nmcci)
	comps, err := p.readComponentIDs(numComps, compBytes)
	if err != nil {
		return nil, err
	}
	mmcci, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	outCompBytes, outCount := componentCount(mmcci)
	outComps, err := p.readComponentIDs(outCount, outCompBytes)
	if err != nil {
		return nil, err
	}
	b0, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	b1, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	b2, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	tmcc := (uint32(b0) << 16) | (uint32(b1) << 8) | uint32(b2)
	return &MCCSegment{
		Index: idx, CollectionType: collectionType, NumComponents: numComps,
		ComponentIDs: comps, OutputComponentIDs: outComps,
		DecorrelateIndex: uint8(tmcc & 0xFF), OffsetIndex: uint8((tmcc >> 8) & 0xFF),
		Reversible: (tmcc>>16)&0x1 != 0,
	}, nil
}

func componentCount(field uint16) (bytes int, count uint16) {
	if field&0x8000 != 0 {
		return 2, field & 0x7FFF
	}
	return 1, field
}

func (p *Parser) readComponentIDs(count uint16, bytes int) ([]uint16, error) {
	ids := make([]uint16, count)
	for i := range ids {
		if bytes == 1 {
			v, err := p.readUint8()
			if err != nil {
				return nil, err
			}
			ids[i] = uint16(v)
		} else {
			v, err := p.readUint16()
			if err != nil {
				return nil, err
			}
			ids[i] = v
		}
	}
	return ids, nil
}

func (p *Parser) parseMCO() (*MCOSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	payloadLen := int(length) - 2
	if payloadLen < 1 {
		return nil, fmt.Errorf("invalid MCO length")
	}
	numStages, err := p.readUint8()
	if err != nil {
		return nil, err
	}
	stages := make([]uint8, numStages)
	for i := range stages {
		v, err := p.readUint8()
		if err != nil {
			return nil, err
		}
		stages[i] = v
	}
	return &MCOSegment{NumStages: numStages, StageIndices: stages}, nil
}

func (p *Parser) parseSOT() (*SOTSegment, error) {
	length, err := p.readUint16()
	if err != nil {
		return nil, err
	}
	if length != 10 {
		return nil, fmt.Errorf("invalid SOT segment length: %d", length)
	}
	sot := &SOTSegment{}
	if sot.Isot, err = p.readUint16(); err != nil {
		return nil, err
	}
	if sot.Psot, err = p.readUint32(); err != nil {
		return nil, err
	}
	if sot.TPsot, err = p.readUint8(); err != nil {
		return nil, err
	}
	if sot.TNsot, err = p.readUint8(); err != nil {
		return nil, err
	}
	return sot, nil
}

// --- low-level byte access ---

func (p *Parser) readMarker() (uint16, error) { return p.readUint16() }

func (p *Parser) peekMarker() (uint16, error) {
	if p.offset+2 > len(p.data) {
		return 0, io.EOF
	}
	return binary.BigEndian.Uint16(p.data[p.offset : p.offset+2]), nil
}

func (p *Parser) readUint8() (uint8, error) {
	if p.offset+1 > len(p.data) {
		return 0, io.EOF
	}
	v := p.data[p.offset]
	p.offset++
	return v, nil
}

func (p *Parser) readUint16() (uint16, error) {
	if p.offset+2 > len(p.data) {
		return 0, io.EOF
	}
	v := binary.BigEndian.Uint16(p.data[p.offset : p.offset+2])
	p.offset += 2
	return v, nil
}

func (p *Parser) readUint32() (uint32, error) {
	if p.offset+4 > len(p.data) {
		return 0, io.EOF
	}
	v := binary.BigEndian.Uint32(p.data[p.offset : p.offset+4])
	p.offset += 4
	return v, nil
}

func (p *Parser) read(buf []byte) (int, error) {
	if p.offset+len(buf) > len(p.data) {
		return 0, io.EOF
	}
	n := copy(buf, p.data[p.offset:p.offset+len(buf)])
	p.offset += n
	return n, nil
}

func (p *Parser) skipSegment() error {
	length, err := p.readUint16()
	if err != nil {
		return err
	}
	skip := int(length) - 2
	if skip < 0 || p.offset+skip > len(p.data) {
		return io.EOF
	}
	p.offset += skip
	return nil
}

// readTileData scans until the next marker (0xFF followed by a byte
// that is not a stuffed 0x00 and is a recognized marker range).
func (p *Parser) readTileData() []byte {
	start := p.offset
	for p.offset < len(p.data) {
		if p.data[p.offset] == 0xFF && p.offset+1 < len(p.data) {
			next := p.data[p.offset+1]
			if next != 0x00 && next >= 0x4F {
				break
			}
		}
		p.offset++
	}
	return p.data[start:p.offset]
}

// readTileDataWithLength consumes the tile body. A zero Psot means
// "to EOC" on the last tile-part, which the parser accepts by scanning
// for the next marker instead of trusting a byte count.
func (p *Parser) readTileDataWithLength(tileStart int, psot uint32) (data []byte, truncated bool) {
	if psot == 0 {
		return p.readTileData(), false
	}
	remaining := int(psot) - (p.offset - tileStart)
	if remaining <= 0 {
		return []byte{}, remaining < 0
	}
	if p.offset+remaining > len(p.data) {
		remaining = len(p.data) - p.offset
		truncated = true
	}
	start := p.offset
	p.offset += remaining
	return p.data[start:p.offset], truncated
}

// TileCounts returns (tilesX, tilesY, tilesZ) for a SIZ segment;
// tilesZ is 1 for 2-D codestreams.
func TileCounts(siz *SIZSegment) (x, y, z int) {
	x = ceilDiv(int(siz.Xsiz)-int(siz.XTOsiz), int(siz.XTsiz))
	y = ceilDiv(int(siz.Ysiz)-int(siz.YTOsiz), int(siz.YTsiz))
	z = 1
	if siz.Is3D {
		z = ceilDiv(int(siz.Zsiz)-int(siz.ZTOsiz), int(siz.ZTsiz))
	}
	return
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
