package codestream

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/jpeg2000-jpip/internal/errs"
)

// BuildParams carries the main-header parameters the builder assembles
// into SIZ/COD/QCD (spec.md §4.1).
type BuildParams struct {
	SIZ *SIZSegment
	COD *CODSegment
	QCD *QCDSegment
	CAP *CAPSegment // optional, marks the stream HTJ2K
	COM []COMSegment

	// ZeroLastPsot, when true, encodes the final tile-part's Psot as 0
	// ("to EOC") instead of its exact byte length; both encodings must
	// parse identically (spec.md §8 "Marker structure").
	ZeroLastPsot bool
}

// TilePartInput is one tile-part to assemble: its tile index and the
// already-coded body bytes (packets) to place after SOD.
type TilePartInput struct {
	TileIndex int
	TPsot     uint8
	TNsot     uint8
	Body      []byte
}

// Build assembles a complete codestream byte stream from main-header
// parameters and tile-part bodies (spec.md §4.1).
func Build(params BuildParams, tileParts []TilePartInput) ([]byte, error) {
	if params.SIZ == nil || params.COD == nil || params.QCD == nil {
		return nil, errs.NewCodec(errs.InvalidConfiguration, "build", 0, 0, fmt.Errorf("SIZ, COD and QCD are required"))
	}

	buf := make([]byte, 0, 4096)
	buf = appendMarker(buf, MarkerSOC)
	buf = appendSIZ(buf, params.SIZ)
	buf = appendCOD(buf, params.COD)
	buf = appendQCD(buf, params.QCD)
	if params.CAP != nil {
		buf = appendCAP(buf, params.CAP)
	}
	for _, com := range params.COM {
		buf = appendCOM(buf, com)
	}

	for i, tp := range tileParts {
		isLast := i == len(tileParts)-1
		sotOffset := len(buf)
		sot := SOTSegment{
			Isot:  uint16(tp.TileIndex),
			TPsot: tp.TPsot,
			TNsot: tp.TNsot,
		}
		buf = appendSOT(buf, sot) // Psot placeholder, patched below
		buf = appendMarker(buf, MarkerSOD)
		buf = append(buf, tp.Body...)

		psot := uint32(len(buf) - sotOffset)
		if isLast && params.ZeroLastPsot {
			psot = 0
		}
		binary.BigEndian.PutUint32(buf[sotOffset+6:sotOffset+10], psot)
	}

	buf = appendMarker(buf, MarkerEOC)
	return buf, nil
}

func appendMarker(buf []byte, marker uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, marker)
}

func appendSegment(buf []byte, marker uint16, payload []byte) []byte {
	buf = appendMarker(buf, marker)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)+2))
	return append(buf, payload...)
}

func appendSIZ(buf []byte, siz *SIZSegment) []byte {
	payload := make([]byte, 0, 38+3*len(siz.Components)+16)
	payload = binary.BigEndian.AppendUint16(payload, siz.Rsiz)
	for _, v := range []uint32{siz.Xsiz, siz.Ysiz, siz.XOsiz, siz.YOsiz, siz.XTsiz, siz.YTsiz, siz.XTOsiz, siz.YTOsiz} {
		payload = binary.BigEndian.AppendUint32(payload, v)
	}
	payload = binary.BigEndian.AppendUint16(payload, siz.Csiz)
	for _, c := range siz.Components {
		payload = append(payload, c.Ssiz, c.XRsiz, c.YRsiz)
	}
	if siz.Is3D {
		for _, v := range []uint32{siz.Zsiz, siz.ZOsiz, siz.ZTsiz, siz.ZTOsiz} {
			payload = binary.BigEndian.AppendUint32(payload, v)
		}
	}
	return appendSegment(buf, MarkerSIZ, payload)
}

func appendCOD(buf []byte, cod *CODSegment) []byte {
	payload := []byte{cod.Scod, cod.ProgressionOrder}
	payload = binary.BigEndian.AppendUint16(payload, cod.NumberOfLayers)
	payload = append(payload, cod.MultipleComponentTransform, cod.NumberOfDecompositionLevels,
		cod.CodeBlockWidth, cod.CodeBlockHeight, cod.CodeBlockStyle, cod.Transformation)
	if cod.Scod&0x01 != 0 {
		for _, ps := range cod.PrecinctSizes {
			payload = append(payload, ps.PPx|(ps.PPy<<4))
		}
	}
	return appendSegment(buf, MarkerCOD, payload)
}

func appendQCD(buf []byte, qcd *QCDSegment) []byte {
	payload := append([]byte{qcd.Sqcd}, qcd.SPqcd...)
	return appendSegment(buf, MarkerQCD, payload)
}

func appendCAP(buf []byte, cap *CAPSegment) []byte {
	payload := binary.BigEndian.AppendUint32(nil, cap.Pcap)
	for _, v := range cap.Ccap {
		payload = binary.BigEndian.AppendUint16(payload, v)
	}
	return appendSegment(buf, MarkerCAP, payload)
}

func appendCOM(buf []byte, com COMSegment) []byte {
	payload := binary.BigEndian.AppendUint16(nil, com.Rcom)
	payload = append(payload, com.Data...)
	return appendSegment(buf, MarkerCOM, payload)
}

func appendSOT(buf []byte, sot SOTSegment) []byte {
	payload := binary.BigEndian.AppendUint16(nil, sot.Isot)
	payload = binary.BigEndian.AppendUint32(payload, sot.Psot)
	payload = append(payload, sot.TPsot, sot.TNsot)
	return appendSegment(buf, MarkerSOT, payload)
}
