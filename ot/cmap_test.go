package ot

import (
	"encoding/binary"
	"testing"
)

// buildCmapTable wraps one or more encoding-record subtables in a
// minimal cmap header. All records point at platform 3 (Windows),
// encoding 1 (BMP) for these tests; format selection only depends on
// the format word inside the subtable itself.
func buildCmapTable(subtables ...[]byte) []byte {
	numTables := len(subtables)
	headerSize := 4 + numTables*8

	data := make([]byte, headerSize)
	binary.BigEndian.PutUint16(data[0:], 0)
	binary.BigEndian.PutUint16(data[2:], uint16(numTables))

	offset := headerSize
	for i, st := range subtables {
		recordOff := 4 + i*8
		binary.BigEndian.PutUint16(data[recordOff:], 3)
		binary.BigEndian.PutUint16(data[recordOff+2:], 1)
		binary.BigEndian.PutUint32(data[recordOff+4:], uint32(offset))

		data = append(data, st...)
		offset += len(st)
	}

	return data
}

// buildFormat4 builds a format-4 subtable covering exactly the given
// codepoint->glyph mappings, using idDelta-only segments (no
// idRangeOffset indirection) for simplicity.
func buildFormat4(mappings map[uint16]uint16) []byte {
	cps := make([]uint16, 0, len(mappings))
	for cp := range mappings {
		cps = append(cps, cp)
	}
	for i := 0; i < len(cps); i++ {
		for j := i + 1; j < len(cps); j++ {
			if cps[i] > cps[j] {
				cps[i], cps[j] = cps[j], cps[i]
			}
		}
	}

	type segment struct {
		startCode, endCode uint16
		delta              int16
	}
	var segments []segment

	if len(cps) > 0 {
		start := cps[0]
		end := cps[0]
		delta := int16(mappings[start]) - int16(start)

		for i := 1; i < len(cps); i++ {
			cp := cps[i]
			expectedGid := int16(end) + 1 + delta

			if cp == end+1 && int16(mappings[cp]) == expectedGid {
				end = cp
			} else {
				segments = append(segments, segment{start, end, delta})
				start = cp
				end = cp
				delta = int16(mappings[cp]) - int16(cp)
			}
		}
		segments = append(segments, segment{start, end, delta})
	}

	segments = append(segments, segment{0xFFFF, 0xFFFF, 1})

	segCount := len(segments)
	segCountX2 := segCount * 2

	headerSize := 14
	arraySize := segCountX2 * 4
	totalSize := headerSize + arraySize + 2

	data := make([]byte, totalSize)

	binary.BigEndian.PutUint16(data[0:], 4)
	binary.BigEndian.PutUint16(data[2:], uint16(totalSize))
	binary.BigEndian.PutUint16(data[4:], 0)
	binary.BigEndian.PutUint16(data[6:], uint16(segCountX2))
	binary.BigEndian.PutUint16(data[8:], uint16(segCountX2))
	binary.BigEndian.PutUint16(data[10:], 0)
	binary.BigEndian.PutUint16(data[12:], 0)

	endCodeOff := 14
	startCodeOff := endCodeOff + segCountX2 + 2
	idDeltaOff := startCodeOff + segCountX2
	idRangeOffOff := idDeltaOff + segCountX2

	for i, seg := range segments {
		binary.BigEndian.PutUint16(data[endCodeOff+i*2:], seg.endCode)
		binary.BigEndian.PutUint16(data[startCodeOff+i*2:], seg.startCode)
		binary.BigEndian.PutUint16(data[idDeltaOff+i*2:], uint16(seg.delta))
		binary.BigEndian.PutUint16(data[idRangeOffOff+i*2:], 0)
	}

	return data
}

func TestCmapFormat4Basic(t *testing.T) {
	mappings := map[uint16]uint16{
		'A': 1,
		'B': 2,
		'C': 3,
	}

	subtable := buildFormat4(mappings)
	cmapData := buildCmapTable(subtable)

	cmap, err := ParseCmap(cmapData)
	if err != nil {
		t.Fatalf("ParseCmap failed: %v", err)
	}

	tests := []struct {
		cp        Codepoint
		wantGid   GlyphID
		wantFound bool
	}{
		{'A', 1, true},
		{'B', 2, true},
		{'C', 3, true},
		{'D', 0, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		gid, found := cmap.Lookup(tt.cp)
		if found != tt.wantFound || gid != tt.wantGid {
			t.Errorf("Lookup(%q) = (%d, %v), want (%d, %v)",
				rune(tt.cp), gid, found, tt.wantGid, tt.wantFound)
		}
	}
}

func TestCmapFormat4Range(t *testing.T) {
	mappings := map[uint16]uint16{
		'a': 10,
		'b': 11,
		'c': 12,
		'd': 13,
		'e': 14,
	}

	subtable := buildFormat4(mappings)
	cmapData := buildCmapTable(subtable)

	cmap, err := ParseCmap(cmapData)
	if err != nil {
		t.Fatalf("ParseCmap failed: %v", err)
	}

	for cp, wantGid := range mappings {
		gid, found := cmap.Lookup(Codepoint(cp))
		if !found {
			t.Errorf("Lookup(%q) not found, want %d", rune(cp), wantGid)
		} else if gid != GlyphID(wantGid) {
			t.Errorf("Lookup(%q) = %d, want %d", rune(cp), gid, wantGid)
		}
	}
}

func TestCmapFormat4MissingSentinel(t *testing.T) {
	// Last segment must be (0xFFFF, 0xFFFF); truncate it away.
	subtable := buildFormat4(map[uint16]uint16{'A': 1})
	segCountX2 := int(binary.BigEndian.Uint16(subtable[6:]))
	segCount := segCountX2 / 2
	endCodeOff := 14
	// Corrupt the last (sentinel) segment's endCode.
	binary.BigEndian.PutUint16(subtable[endCodeOff+(segCount-1)*2:], 0xFFFE)

	cmapData := buildCmapTable(subtable)
	if _, err := ParseCmap(cmapData); err == nil {
		t.Fatal("ParseCmap succeeded with a corrupted sentinel segment, want error")
	}
}

func TestCmapOnlyFormat4Supported(t *testing.T) {
	// A format-12 style subtable (header alone is enough to trip the
	// unsupported-format branch; only the format field is read before
	// the subtable is rejected).
	format12 := make([]byte, 16)
	binary.BigEndian.PutUint16(format12[0:], 12)

	cmapData := buildCmapTable(format12)
	_, err := ParseCmap(cmapData)
	if err == nil {
		t.Fatal("ParseCmap succeeded with only a format-12 subtable, want FormatNotSupported")
	}
	otErr, ok := err.(*Error)
	if !ok || otErr.Kind != KindFormatNotSupported {
		t.Errorf("ParseCmap error = %v, want KindFormatNotSupported", err)
	}
}

func TestParserBasic(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	p := NewParser(data)

	v16, err := p.U16()
	if err != nil {
		t.Fatalf("U16 failed: %v", err)
	}
	if v16 != 0x0001 {
		t.Errorf("U16 = 0x%04X, want 0x0001", v16)
	}

	v32, err := p.U32()
	if err != nil {
		t.Fatalf("U32 failed: %v", err)
	}
	if v32 != 0x02030405 {
		t.Errorf("U32 = 0x%08X, want 0x02030405", v32)
	}

	if p.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", p.Remaining())
	}
}

func TestTag(t *testing.T) {
	tag := MakeTag('c', 'm', 'a', 'p')
	if tag != TagCmap {
		t.Errorf("MakeTag('c','m','a','p') = %v, want %v", tag, TagCmap)
	}

	if tag.String() != "cmap" {
		t.Errorf("Tag.String() = %q, want %q", tag.String(), "cmap")
	}
}
