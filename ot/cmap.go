package ot

import "encoding/binary"

// Cmap provides Unicode to glyph ID mapping. Only subtable format 4 is
// supported; every other encoding record is rejected rather than
// silently skipped, since a font whose only subtables are unsupported
// has no usable cmap at all for this engine's purposes.
type Cmap struct {
	format4 *cmapFormat4
}

// ParseCmap parses a cmap table and its format-4 subtable. When several
// encoding records point at format-4 subtables, the first one is used.
func ParseCmap(data []byte) (*Cmap, error) {
	if len(data) < 4 {
		return nil, newErr(KindTruncated, SourceCmap)
	}

	version := binary.BigEndian.Uint16(data[0:])
	if version != 0 {
		return nil, newErr(KindUnexpectedVersion, SourceCmap)
	}

	numTables := int(binary.BigEndian.Uint16(data[2:]))
	if 4+numTables*8 > len(data) {
		return nil, newErr(KindTruncated, SourceCmap)
	}

	var subtableOffset = -1
	for i := 0; i < numTables; i++ {
		recOff := 4 + i*8
		offset := int(binary.BigEndian.Uint32(data[recOff+4:]))
		if offset < 0 || offset+2 > len(data) {
			return nil, newErr(KindTruncated, SourceCmap)
		}
		format := binary.BigEndian.Uint16(data[offset:])
		if format != 4 {
			return nil, newErr(KindFormatNotSupported, SourceCmap)
		}
		if subtableOffset < 0 {
			subtableOffset = offset
		}
	}

	if subtableOffset < 0 {
		return nil, newErr(KindFormatNotSupported, SourceCmap)
	}

	f4, err := parseCmapFormat4(data, subtableOffset)
	if err != nil {
		return nil, err
	}

	return &Cmap{format4: f4}, nil
}

// Lookup returns the glyph ID mapped to a codepoint, or (0, false) if
// the codepoint is unmapped.
func (c *Cmap) Lookup(cp Codepoint) (GlyphID, bool) {
	return c.format4.lookup(cp)
}

type cmapFormat4 struct {
	segCount        int
	endCode         []uint16
	startCode       []uint16
	idDelta         []int16
	idRangeOffset   []uint16
	rangeOffsetBase int // byte offset of idRangeOffset[0] within data
	data            []byte
}

// parseCmapFormat4 decodes a format-4 subtable exactly per its four
// parallel segment arrays; subtables whose last segment is not
// (0xFFFF, 0xFFFF) are rejected.
func parseCmapFormat4(data []byte, offset int) (*cmapFormat4, error) {
	if offset+14 > len(data) {
		return nil, newErr(KindTruncated, SourceCmap)
	}

	segCountX2 := int(binary.BigEndian.Uint16(data[offset+6:]))
	if segCountX2 == 0 || segCountX2%2 != 0 {
		return nil, newErr(KindMalformed, SourceCmap)
	}
	segCount := segCountX2 / 2

	endCodeOff := offset + 14
	startCodeOff := endCodeOff + segCountX2 + 2 // +2 for reservedPad
	idDeltaOff := startCodeOff + segCountX2
	idRangeOff := idDeltaOff + segCountX2
	glyphArrayOff := idRangeOff + segCountX2

	if glyphArrayOff > len(data) {
		return nil, newErr(KindTruncated, SourceCmap)
	}

	f := &cmapFormat4{
		segCount:        segCount,
		endCode:         make([]uint16, segCount),
		startCode:       make([]uint16, segCount),
		idDelta:         make([]int16, segCount),
		idRangeOffset:   make([]uint16, segCount),
		rangeOffsetBase: idRangeOff,
		data:            data,
	}

	for i := 0; i < segCount; i++ {
		f.endCode[i] = binary.BigEndian.Uint16(data[endCodeOff+i*2:])
		f.startCode[i] = binary.BigEndian.Uint16(data[startCodeOff+i*2:])
		f.idDelta[i] = int16(binary.BigEndian.Uint16(data[idDeltaOff+i*2:]))
		f.idRangeOffset[i] = binary.BigEndian.Uint16(data[idRangeOff+i*2:])
	}

	if f.endCode[segCount-1] != 0xFFFF || f.startCode[segCount-1] != 0xFFFF {
		return nil, newErr(KindMalformed, SourceCmap)
	}

	return f, nil
}

// lookup walks the segments in increasing order; each segment covers
// [startCode, endCode] and contributes only codes strictly above the
// previous segment's endCode, mirroring the binary format's overlap
// tolerance.
func (f *cmapFormat4) lookup(cp Codepoint) (GlyphID, bool) {
	if cp > 0xFFFF {
		return 0, false
	}
	code := uint16(cp)

	var prevEnd uint16
	for i := 0; i < f.segCount; i++ {
		if code < f.startCode[i] || code > f.endCode[i] {
			prevEnd = f.endCode[i]
			continue
		}
		if i > 0 && code <= prevEnd {
			return 0, false
		}

		if f.idRangeOffset[i] == 0 {
			return uint16(code + uint16(f.idDelta[i])), true
		}

		glyphArrayIdx := int(code-f.startCode[i]) + int(f.idRangeOffset[i])/2 + i
		byteOff := f.rangeOffsetBase + glyphArrayIdx*2
		if byteOff+2 > len(f.data) {
			return 0, false
		}
		g := binary.BigEndian.Uint16(f.data[byteOff:])
		if g == 0 {
			return 0, false
		}
		return uint16(uint32(g) + uint32(uint16(f.idDelta[i]))), true
	}

	return 0, false
}
