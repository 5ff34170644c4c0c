package ot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePackedPointsAllPoints(t *testing.T) {
	// count byte 0 means "every point", no run bytes follow.
	points, consumed, err := parsePackedPoints([]byte{0x00, 0xFF}, 10)
	if err != nil {
		t.Fatalf("parsePackedPoints: %v", err)
	}
	if points != nil {
		t.Errorf("expected nil points for the all-points sentinel, got %v", points)
	}
	if consumed != 1 {
		t.Errorf("expected 1 byte consumed, got %d", consumed)
	}
}

func TestParsePackedPointsExplicitRun(t *testing.T) {
	// 3 points, one run of 3 (runHeader 0x02 = count-1), single-byte
	// deltas 1, 2, 3 -> cumulative indices 1, 3, 6.
	data := []byte{0x03, 0x02, 0x01, 0x02, 0x03}
	points, consumed, err := parsePackedPoints(data, 100)
	if err != nil {
		t.Fatalf("parsePackedPoints: %v", err)
	}
	want := []int{1, 3, 6}
	if diff := cmp.Diff(want, points); diff != "" {
		t.Errorf("packed points mismatch (-want +got):\n%s", diff)
	}
	if consumed != len(data) {
		t.Errorf("expected to consume %d bytes, got %d", len(data), consumed)
	}
}

func TestParsePackedPointsRejectsOutOfRange(t *testing.T) {
	// A single point whose cumulative index reaches maxPointIndex is invalid.
	data := []byte{0x01, 0x00, 0x05}
	if _, _, err := parsePackedPoints(data, 5); err == nil {
		t.Fatal("expected error for point index >= maxPointIndex")
	}
}

func TestParsePackedDeltasMixedRuns(t *testing.T) {
	// x: one all-zero run of 2, then one word run of 1 (-300).
	// y: a single byte run covering all 3 deltas (5, -5, 0).
	data := []byte{
		0x81,       // allZero, count-1=1 -> 2 zero deltas
		0x40,       // word, count-1=0 -> 1 word delta
		0xFE, 0xD4, // -300
		0x02,             // byte run, count-1=2 -> 3 byte deltas
		0x05, 0xFB, 0x00, // 5, -5, 0
	}
	xDeltas, yDeltas, err := parsePackedDeltas(data, 3)
	if err != nil {
		t.Fatalf("parsePackedDeltas: %v", err)
	}
	wantX := []float32{0, 0, -300}
	wantY := []float32{5, -5, 0}

	if diff := cmp.Diff(wantX, xDeltas); diff != "" {
		t.Errorf("x deltas mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantY, yDeltas); diff != "" {
		t.Errorf("y deltas mismatch (-want +got):\n%s", diff)
	}
}

// TestApplyGvarSinglePointMove exercises ApplyGvar end to end on a
// rectangle glyph whose gvar table moves exactly one point, forcing
// every other point in the contour to pick up the same delta via the
// "one touched point broadcasts to the whole contour" IUP rule.
func TestApplyGvarSinglePointMove(t *testing.T) {
	_, glyfData := buildRectGlyf(t, 500, 700)
	outline, err := ParseSimpleGlyph(glyfData)
	if err != nil {
		t.Fatalf("ParseSimpleGlyph: %v", err)
	}

	gvarData := buildGvarSinglePointDelta(t, 1, 100, -50)
	gvar, err := ParseGvar(gvarData)
	if err != nil {
		t.Fatalf("ParseGvar: %v", err)
	}

	if err := ApplyGvar(outline, gvar, 0, []float32{1.0}); err != nil {
		t.Fatalf("ApplyGvar: %v", err)
	}

	want := []OutlineRawPoint{
		{X: 100, Y: -50, OnCurve: true},
		{X: 600, Y: -50, OnCurve: true},
		{X: 600, Y: 650, OnCurve: true},
		{X: 100, Y: 650, OnCurve: true},
	}
	if diff := cmp.Diff(want, outline.Points); diff != "" {
		t.Errorf("ApplyGvar points mismatch (-want +got):\n%s", diff)
	}
}

// buildGvarSinglePointDelta builds a minimal gvar table (one axis, no
// shared tuples) for glyph 0 with a single non-intermediate tuple at
// coordinate 1.0 that moves only point index `point` by (dx, dy).
func buildGvarSinglePointDelta(t *testing.T, point int, dx, dy int16) []byte {
	t.Helper()

	// glyphData layout: tupleVariationHeaders + serialized data.
	// tupleVariationCount = 1, no shared points.
	// one tuple: variationDataSize, tupleIndex (embeddedPeak, no
	// intermediate, private points), peak coords (1 axis, F2Dot14),
	// then packed points + packed deltas.

	// count=1, one byte-sized run (runHeader 0x00) of a single delta.
	packedPoints := []byte{0x01, 0x00, byte(point)}

	// runHeader 0x40: word-sized run, count-1=0 -> exactly one delta.
	packedDeltaX := []byte{0x40, byte(dx >> 8), byte(dx)}
	packedDeltaY := []byte{0x40, byte(dy >> 8), byte(dy)}

	serialized := append(append([]byte{}, packedPoints...), append(packedDeltaX, packedDeltaY...)...)

	tupleIndex := uint16(0x8000) // embeddedPeak, no intermediate
	tupleIndex |= 0x2000         // private point numbers

	peakBytes := []byte{0x40, 0x00} // F2Dot14 1.0 = 16384 = 0x4000

	header := []byte{
		byte(len(serialized) >> 8), byte(len(serialized)),
		byte(tupleIndex >> 8), byte(tupleIndex),
	}
	header = append(header, peakBytes...)

	glyphData := []byte{0x00, 0x01} // tupleVariationCount=1, no shared points flag
	dataOffset := uint16(4 + len(header))
	glyphData = append(glyphData, byte(dataOffset>>8), byte(dataOffset))
	glyphData = append(glyphData, header...)
	glyphData = append(glyphData, serialized...)

	// gvar header: version, reserved, axisCount=1, sharedTupleCount=0,
	// sharedTuplesOffset, glyphCount=1, flags=1 (long offsets),
	// glyphVarDataOffset, offsets[2]={0, len(glyphData)} as raw byte
	// counts (long format avoids the short format's /2 rounding, which
	// this odd-length test payload would not survive).
	const headerLen = 20
	data := make([]byte, headerLen+8) // +8 for the two long offsets
	data[0], data[1] = 0x00, 0x01     // version 1
	// data[2:4] reserved
	data[4], data[5] = 0x00, 0x01 // axisCount=1
	data[6], data[7] = 0x00, 0x00 // sharedTupleCount=0
	// sharedTuplesOffset at [8:12] = 0
	data[12], data[13] = 0x00, 0x01 // glyphCount=1
	data[14], data[15] = 0x00, 0x01 // flags=1 (long offsets)
	glyphVarDataOffset := uint32(headerLen + 8)
	data[16] = byte(glyphVarDataOffset >> 24)
	data[17] = byte(glyphVarDataOffset >> 16)
	data[18] = byte(glyphVarDataOffset >> 8)
	data[19] = byte(glyphVarDataOffset)
	// offsets (long format, raw byte counts): {0, len(glyphData)}
	data[20], data[21], data[22], data[23] = 0x00, 0x00, 0x00, 0x00
	glyphDataLen := uint32(len(glyphData))
	data[24] = byte(glyphDataLen >> 24)
	data[25] = byte(glyphDataLen >> 16)
	data[26] = byte(glyphDataLen >> 8)
	data[27] = byte(glyphDataLen)

	data = append(data, glyphData...)
	return data
}
