package ot

import "encoding/binary"

// TagGvar is the table tag for the glyph variations table.
var TagGvar = MakeTag('g', 'v', 'a', 'r')

// Gvar represents a parsed gvar (Glyph Variations) table: variation
// data for TrueType glyph outlines, keyed by glyph id.
type Gvar struct {
	data                []byte
	axisCount           int
	sharedTupleCount    int
	glyphCount          int
	sharedTuplesOffset  uint32
	glyphVarDataOffset  uint32
	glyphVarDataOffsets []uint32 // length glyphCount+1
}

// ParseGvar parses a gvar table.
func ParseGvar(data []byte) (*Gvar, error) {
	if len(data) < 20 {
		return nil, newErr(KindTruncated, SourceGvar)
	}

	version := binary.BigEndian.Uint16(data[0:])
	if version != 1 {
		return nil, newErr(KindUnexpectedVersion, SourceGvar)
	}

	g := &Gvar{
		data:               data,
		axisCount:          int(binary.BigEndian.Uint16(data[4:])),
		sharedTupleCount:   int(binary.BigEndian.Uint16(data[6:])),
		sharedTuplesOffset: binary.BigEndian.Uint32(data[8:]),
		glyphCount:         int(binary.BigEndian.Uint16(data[12:])),
		glyphVarDataOffset: binary.BigEndian.Uint32(data[16:]),
	}

	flags := binary.BigEndian.Uint16(data[14:])
	longOffsets := (flags & 1) != 0
	offsetsStart := 20

	g.glyphVarDataOffsets = make([]uint32, g.glyphCount+1)

	if longOffsets {
		if len(data) < offsetsStart+(g.glyphCount+1)*4 {
			return nil, newErr(KindTruncated, SourceGvar)
		}
		for i := 0; i <= g.glyphCount; i++ {
			g.glyphVarDataOffsets[i] = binary.BigEndian.Uint32(data[offsetsStart+i*4:])
		}
	} else {
		if len(data) < offsetsStart+(g.glyphCount+1)*2 {
			return nil, newErr(KindTruncated, SourceGvar)
		}
		for i := 0; i <= g.glyphCount; i++ {
			g.glyphVarDataOffsets[i] = uint32(binary.BigEndian.Uint16(data[offsetsStart+i*2:])) * 2
		}
	}

	return g, nil
}

// HasData returns true if the gvar table has any glyph variation data.
func (g *Gvar) HasData() bool {
	return g != nil && g.glyphCount > 0
}

// AxisCount returns the number of variation axes.
func (g *Gvar) AxisCount() int {
	return g.axisCount
}

// GlyphCount returns the number of glyphs with variation data.
func (g *Gvar) GlyphCount() int {
	return g.glyphCount
}

func (g *Gvar) getSharedTuple(index int) []float32 {
	if index >= g.sharedTupleCount {
		return nil
	}

	tupleSize := g.axisCount * 2
	offset := int(g.sharedTuplesOffset) + index*tupleSize
	if offset+tupleSize > len(g.data) {
		return nil
	}

	coords := make([]float32, g.axisCount)
	for i := 0; i < g.axisCount; i++ {
		coords[i] = f2dot14ToFloat(int16(binary.BigEndian.Uint16(g.data[offset+i*2:])))
	}
	return coords
}

// tupleVariation is one decoded tuple-variation-data entry: a region
// (peak, optional intermediate start/end) plus the deltas it
// contributes, either to every point (pointNumbers == nil) or to the
// explicit points named by pointNumbers.
type tupleVariation struct {
	peak         []float32
	start, end   []float32
	pointNumbers []int // nil means "applies to every point"
	xDeltas      []float32
	yDeltas      []float32
}

// glyphTupleVariations decodes every tuple-variation entry for a
// glyph. numPoints is the glyph's real (non-phantom) point count;
// every point index, whether shared or private, must be strictly
// less than numPoints+4.
func (g *Gvar) glyphTupleVariations(glyphID GlyphID, numPoints int) ([]tupleVariation, error) {
	if int(glyphID) >= g.glyphCount {
		return nil, nil
	}

	startOffset := g.glyphVarDataOffset + g.glyphVarDataOffsets[glyphID]
	endOffset := g.glyphVarDataOffset + g.glyphVarDataOffsets[glyphID+1]
	if startOffset == endOffset {
		return nil, nil
	}
	if int(endOffset) > len(g.data) || startOffset > endOffset {
		return nil, newErr(KindTruncated, SourceGvar)
	}

	glyphData := g.data[startOffset:endOffset]
	if len(glyphData) < 4 {
		return nil, newErr(KindTruncated, SourceGvar)
	}

	maxPointIndex := numPoints + 4

	tupleVarCount := binary.BigEndian.Uint16(glyphData[0:])
	tupleCount := int(tupleVarCount & 0x0FFF)
	sharedPointNumbers := (tupleVarCount & 0x8000) != 0
	dataOffset := int(binary.BigEndian.Uint16(glyphData[2:]))

	if tupleCount == 0 {
		return nil, nil
	}

	var sharedPoints []int
	serializedDataStart := dataOffset
	if sharedPointNumbers {
		pts, consumed, err := parsePackedPoints(glyphData[serializedDataStart:], maxPointIndex)
		if err != nil {
			return nil, err
		}
		sharedPoints = pts
		serializedDataStart += consumed
	}

	headerOffset := 4
	serializedOffset := serializedDataStart
	var tuples []tupleVariation

	for t := 0; t < tupleCount; t++ {
		if headerOffset+4 > len(glyphData) {
			return nil, newErr(KindTruncated, SourceGvar)
		}

		variationDataSize := int(binary.BigEndian.Uint16(glyphData[headerOffset:]))
		tupleIndex := binary.BigEndian.Uint16(glyphData[headerOffset+2:])
		headerOffset += 4

		embeddedPeak := (tupleIndex & 0x8000) != 0
		intermediateRegion := (tupleIndex & 0x4000) != 0
		privatePointNumbers := (tupleIndex & 0x2000) != 0
		tupleIdx := int(tupleIndex & 0x0FFF)

		var peak []float32
		if embeddedPeak {
			if headerOffset+g.axisCount*2 > len(glyphData) {
				return nil, newErr(KindTruncated, SourceGvar)
			}
			peak = make([]float32, g.axisCount)
			for i := 0; i < g.axisCount; i++ {
				peak[i] = f2dot14ToFloat(int16(binary.BigEndian.Uint16(glyphData[headerOffset:])))
				headerOffset += 2
			}
		} else {
			peak = g.getSharedTuple(tupleIdx)
		}
		for _, v := range peak {
			if v < -1 || v > 1 {
				return nil, newErr(KindMalformed, SourceGvar)
			}
		}

		var start, end []float32
		if intermediateRegion {
			if headerOffset+g.axisCount*4 > len(glyphData) {
				return nil, newErr(KindTruncated, SourceGvar)
			}
			start = make([]float32, g.axisCount)
			end = make([]float32, g.axisCount)
			for i := 0; i < g.axisCount; i++ {
				start[i] = f2dot14ToFloat(int16(binary.BigEndian.Uint16(glyphData[headerOffset:])))
				headerOffset += 2
			}
			for i := 0; i < g.axisCount; i++ {
				end[i] = f2dot14ToFloat(int16(binary.BigEndian.Uint16(glyphData[headerOffset:])))
				headerOffset += 2
			}
			for i := range peak {
				if start[i] < -1 || end[i] > 1 || !(start[i] <= peak[i] && peak[i] <= end[i]) {
					return nil, newErr(KindMalformed, SourceGvar)
				}
			}
		}

		var pointNumbers []int
		deltaDataStart := serializedOffset
		if privatePointNumbers {
			pts, consumed, err := parsePackedPoints(glyphData[serializedOffset:], maxPointIndex)
			if err != nil {
				return nil, err
			}
			pointNumbers = pts
			deltaDataStart += consumed
		} else {
			pointNumbers = sharedPoints
		}

		numDeltas := len(pointNumbers)
		if numDeltas == 0 {
			numDeltas = maxPointIndex
		}
		xDeltas, yDeltas, err := parsePackedDeltas(glyphData[deltaDataStart:], numDeltas)
		if err != nil {
			return nil, err
		}

		tuples = append(tuples, tupleVariation{
			peak:         peak,
			start:        start,
			end:          end,
			pointNumbers: pointNumbers,
			xDeltas:      xDeltas,
			yDeltas:      yDeltas,
		})

		serializedOffset += variationDataSize
	}

	return tuples, nil
}

// parsePackedPoints decodes the packed-points encoding: one or two
// control bytes give a total count (0 meaning "every point"); runs of
// up to 128 entries follow as cumulative deltas off the previous point
// index. Every decoded index must stay below maxPointIndex (the real
// point count plus the 4 phantom slots).
func parsePackedPoints(data []byte, maxPointIndex int) ([]int, int, error) {
	if len(data) == 0 {
		return nil, 0, newErr(KindTruncated, SourceGvar)
	}

	count := int(data[0])
	offset := 1

	if count == 0 {
		return nil, offset, nil
	}

	if count&0x80 != 0 {
		if len(data) < 2 {
			return nil, 0, newErr(KindTruncated, SourceGvar)
		}
		count = ((count & 0x7F) << 8) | int(data[1])
		offset = 2
	}

	points := make([]int, 0, count)
	pointsRead := 0
	lastPoint := 0

	for pointsRead < count {
		if offset >= len(data) {
			return nil, 0, newErr(KindTruncated, SourceGvar)
		}
		runHeader := data[offset]
		offset++

		pointsAreWords := (runHeader & 0x80) != 0
		runCount := int(runHeader&0x7F) + 1

		for i := 0; i < runCount && pointsRead < count; i++ {
			var delta int
			if pointsAreWords {
				if offset+2 > len(data) {
					return nil, 0, newErr(KindTruncated, SourceGvar)
				}
				delta = int(binary.BigEndian.Uint16(data[offset:]))
				offset += 2
			} else {
				if offset >= len(data) {
					return nil, 0, newErr(KindTruncated, SourceGvar)
				}
				delta = int(data[offset])
				offset++
			}
			lastPoint += delta
			if lastPoint >= maxPointIndex {
				return nil, 0, newErr(KindMalformed, SourceGvar)
			}
			points = append(points, lastPoint)
			pointsRead++
		}
	}

	return points, offset, nil
}

// parsePackedDeltas decodes the packed-deltas encoding: runs preceded
// by a control byte whose top bit marks an all-zero run, next bit
// marks word-sized values, and low 6 bits give count-1. The x-run
// sequence is followed immediately by the y-run sequence.
func parsePackedDeltas(data []byte, numDeltas int) (xDeltas, yDeltas []float32, err error) {
	xDeltas = make([]float32, numDeltas)
	yDeltas = make([]float32, numDeltas)
	offset := 0

	readRuns := func(out []float32) error {
		read := 0
		for read < numDeltas {
			if offset >= len(data) {
				return newErr(KindTruncated, SourceGvar)
			}
			runHeader := data[offset]
			offset++

			allZero := (runHeader & 0x80) != 0
			isWord := (runHeader & 0x40) != 0
			runCount := int(runHeader&0x3F) + 1

			for i := 0; i < runCount && read < numDeltas; i++ {
				var delta float32
				switch {
				case allZero:
					delta = 0
				case isWord:
					if offset+2 > len(data) {
						return newErr(KindTruncated, SourceGvar)
					}
					delta = float32(int16(binary.BigEndian.Uint16(data[offset:])))
					offset += 2
				default:
					if offset >= len(data) {
						return newErr(KindTruncated, SourceGvar)
					}
					delta = float32(int8(data[offset]))
					offset++
				}
				out[read] = delta
				read++
			}
		}
		return nil
	}

	if err := readRuns(xDeltas); err != nil {
		return nil, nil, err
	}
	if err := readRuns(yDeltas); err != nil {
		return nil, nil, err
	}

	return xDeltas, yDeltas, nil
}
