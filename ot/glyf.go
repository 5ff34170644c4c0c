package ot

import "encoding/binary"

// Loca represents the parsed loca table (index to location).
type Loca struct {
	offsets   []uint32
	numGlyphs int
}

// ParseLoca parses the loca table. format selects 16-bit (LocaFormatShort)
// or 32-bit (LocaFormatLong) offset entries.
func ParseLoca(data []byte, numGlyphs int, format LocaFormat) (*Loca, error) {
	numEntries := numGlyphs + 1
	l := &Loca{numGlyphs: numGlyphs}

	if format == LocaFormatShort {
		if len(data) < numEntries*2 {
			return nil, newErr(KindTruncated, SourceLoca)
		}
		l.offsets = make([]uint32, numEntries)
		for i := 0; i < numEntries; i++ {
			l.offsets[i] = uint32(binary.BigEndian.Uint16(data[i*2:])) * 2
		}
	} else {
		if len(data) < numEntries*4 {
			return nil, newErr(KindTruncated, SourceLoca)
		}
		l.offsets = make([]uint32, numEntries)
		for i := 0; i < numEntries; i++ {
			l.offsets[i] = binary.BigEndian.Uint32(data[i*4:])
		}
	}

	for i := 1; i < numEntries; i++ {
		if l.offsets[i] < l.offsets[i-1] {
			return nil, newErr(KindMalformed, SourceLoca)
		}
	}

	return l, nil
}

// GetOffset returns the (offset, length) byte range for a glyph.
func (l *Loca) GetOffset(gid GlyphID) (uint32, uint32, bool) {
	idx := int(gid)
	if idx < 0 || idx >= l.numGlyphs {
		return 0, 0, false
	}
	start := l.offsets[idx]
	end := l.offsets[idx+1]
	return start, end - start, true
}

// NumGlyphs returns the number of glyphs described by loca.
func (l *Loca) NumGlyphs() int {
	return l.numGlyphs
}

// Glyf represents the parsed glyf table (glyph outline data).
type Glyf struct {
	data []byte
	loca *Loca
}

// ParseGlyf parses the glyf table using an already-parsed loca table.
func ParseGlyf(data []byte, loca *Loca) (*Glyf, error) {
	return &Glyf{data: data, loca: loca}, nil
}

// OutlineRawPoint is a single canonical outline point: its contour's
// on-curve flag and coordinates, before any midpoint projection.
type OutlineRawPoint struct {
	X, Y    float32
	OnCurve bool
}

// ContourRange is a half-open [Start, End) index range into an
// Outline's Points slice. Contours partition the point sequence and
// never overlap.
type ContourRange struct {
	Start, End int
}

// GeometryKind discriminates the two shapes an Outline's rebuilt
// geometry list can hold.
type GeometryKind uint8

const (
	// GeometrySegment is a straight line from P1 to P2.
	GeometrySegment GeometryKind = iota
	// GeometryQuadCurve is a quadratic Bezier from P1 through
	// control point P2 to P3.
	GeometryQuadCurve
)

// OutlineGeometry is one rebuilt drawing primitive.
type OutlineGeometry struct {
	Kind   GeometryKind
	P1, P2 struct{ X, Y float32 }
	P3     struct{ X, Y float32 } // only meaningful for GeometryQuadCurve
}

// Outline is the canonical glyph shape: a flat raw-point array plus
// contour index ranges, with bounding box and drawable geometry
// derived by Rebuild. The raw-point form is what variation deltas
// mutate; geometry must be regenerated after every mutation.
type Outline struct {
	XMin, YMin, XMax, YMax float32
	Points                 []OutlineRawPoint
	Contours               []ContourRange
	Geometry               []OutlineGeometry
}

// Clone returns a deep copy whose Points slice can be mutated
// independently of the receiver.
func (o *Outline) Clone() (*Outline, error) {
	if o == nil {
		return nil, nil
	}
	clone := &Outline{
		XMin: o.XMin, YMin: o.YMin, XMax: o.XMax, YMax: o.YMax,
		Points:   make([]OutlineRawPoint, len(o.Points)),
		Contours: make([]ContourRange, len(o.Contours)),
	}
	copy(clone.Points, o.Points)
	copy(clone.Contours, o.Contours)
	if err := clone.Rebuild(); err != nil {
		return nil, err
	}
	return clone, nil
}

// Rebuild recomputes the bounding box (over every point, including
// implicit midpoints) and the drawable geometry projection from the
// current raw points. It is idempotent: rebuilding an already-rebuilt
// outline yields an equal outline. It reports KindMalformed if any
// contour's first point is a control point (off-curve): a contour must
// start on-curve, and this engine refuses to synthesize a start point
// for one that doesn't.
func (o *Outline) Rebuild() error {
	o.Geometry = o.Geometry[:0]

	if len(o.Points) == 0 {
		o.XMin, o.YMin, o.XMax, o.YMax = 0, 0, 0, 0
		return nil
	}

	minX, minY := o.Points[0].X, o.Points[0].Y
	maxX, maxY := minX, minY
	includeBBox := func(x, y float32) {
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}

	for _, c := range o.Contours {
		if err := o.rebuildContour(c, includeBBox); err != nil {
			return err
		}
	}

	o.XMin, o.YMin, o.XMax, o.YMax = minX, minY, maxX, maxY
	return nil
}

// rebuildContour appends the geometry segments/curves for one contour
// and folds every visited point into the bounding box via includeBBox.
// A contour whose first point is a control point is rejected as
// KindMalformed rather than given a synthesized midpoint start.
func (o *Outline) rebuildContour(c ContourRange, includeBBox func(x, y float32)) error {
	n := c.End - c.Start
	if n < 3 {
		return nil
	}

	at := func(i int) OutlineRawPoint {
		return o.Points[c.Start+((i%n)+n)%n]
	}

	if !at(0).OnCurve {
		return newErr(KindMalformed, SourceGlyf)
	}

	startX, startY := at(0).X, at(0).Y
	startIdx := 0
	includeBBox(startX, startY)

	curX, curY := startX, startY
	i := startIdx
	for consumed := 0; consumed < n; {
		next := at(i + 1)
		if next.OnCurve {
			includeBBox(next.X, next.Y)
			o.Geometry = append(o.Geometry, OutlineGeometry{
				Kind: GeometrySegment,
				P1:   struct{ X, Y float32 }{curX, curY},
				P2:   struct{ X, Y float32 }{next.X, next.Y},
			})
			curX, curY = next.X, next.Y
			i++
			consumed++
			continue
		}

		ctrl := next
		after := at(i + 2)
		endX, endY := after.X, after.Y
		if !after.OnCurve {
			endX, endY = (ctrl.X+after.X)/2, (ctrl.Y+after.Y)/2
		}
		includeBBox(ctrl.X, ctrl.Y)
		includeBBox(endX, endY)

		o.Geometry = append(o.Geometry, OutlineGeometry{
			Kind: GeometryQuadCurve,
			P1:   struct{ X, Y float32 }{curX, curY},
			P2:   struct{ X, Y float32 }{ctrl.X, ctrl.Y},
			P3:   struct{ X, Y float32 }{endX, endY},
		})
		curX, curY = endX, endY
		i++
		consumed++
		if after.OnCurve {
			i++
			consumed++
		}
	}
	return nil
}

// simpleGlyphFlags bits, per the glyf simple-glyph flag byte.
const (
	flagOnCurve      byte = 0x01
	flagXShort       byte = 0x02
	flagYShort       byte = 0x04
	flagRepeat       byte = 0x08
	flagXSameOrPos   byte = 0x10
	flagYSameOrPos   byte = 0x20
)

// ParseSimpleGlyph decodes a simple (non-composite, non-empty) glyph
// body into an Outline. data is the glyph's full record including its
// 10-byte header.
func ParseSimpleGlyph(data []byte) (*Outline, error) {
	if len(data) < 10 {
		return nil, newErr(KindTruncated, SourceGlyf)
	}

	numberOfContours := int(int16(binary.BigEndian.Uint16(data[0:])))
	if numberOfContours <= 0 {
		return nil, newErr(KindMalformed, SourceGlyf)
	}

	offset := 10
	if offset+numberOfContours*2 > len(data) {
		return nil, newErr(KindTruncated, SourceGlyf)
	}

	endPts := make([]int, numberOfContours)
	for i := 0; i < numberOfContours; i++ {
		endPts[i] = int(binary.BigEndian.Uint16(data[offset:]))
		offset += 2
	}

	numPoints := endPts[numberOfContours-1] + 1
	for i := 1; i < numberOfContours; i++ {
		if endPts[i] <= endPts[i-1] {
			return nil, newErr(KindMalformed, SourceGlyf)
		}
	}

	if offset+2 > len(data) {
		return nil, newErr(KindTruncated, SourceGlyf)
	}
	instructionLength := int(binary.BigEndian.Uint16(data[offset:]))
	offset += 2 + instructionLength
	if offset > len(data) {
		return nil, newErr(KindTruncated, SourceGlyf)
	}

	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; {
		if offset >= len(data) {
			return nil, newErr(KindTruncated, SourceGlyf)
		}
		f := data[offset]
		offset++
		flags[i] = f
		i++
		if f&flagRepeat != 0 {
			if offset >= len(data) {
				return nil, newErr(KindTruncated, SourceGlyf)
			}
			repeatCount := int(data[offset])
			offset++
			for r := 0; r < repeatCount && i < numPoints; r++ {
				flags[i] = f
				i++
			}
		}
	}

	xs := make([]float32, numPoints)
	x := 0
	for i := 0; i < numPoints; i++ {
		f := flags[i]
		switch {
		case f&flagXShort != 0:
			if offset >= len(data) {
				return nil, newErr(KindTruncated, SourceGlyf)
			}
			d := int(data[offset])
			offset++
			if f&flagXSameOrPos == 0 {
				d = -d
			}
			x += d
		case f&flagXSameOrPos == 0:
			if offset+2 > len(data) {
				return nil, newErr(KindTruncated, SourceGlyf)
			}
			x += int(int16(binary.BigEndian.Uint16(data[offset:])))
			offset += 2
		}
		xs[i] = float32(x)
	}

	ys := make([]float32, numPoints)
	y := 0
	for i := 0; i < numPoints; i++ {
		f := flags[i]
		switch {
		case f&flagYShort != 0:
			if offset >= len(data) {
				return nil, newErr(KindTruncated, SourceGlyf)
			}
			d := int(data[offset])
			offset++
			if f&flagYSameOrPos == 0 {
				d = -d
			}
			y += d
		case f&flagYSameOrPos == 0:
			if offset+2 > len(data) {
				return nil, newErr(KindTruncated, SourceGlyf)
			}
			y += int(int16(binary.BigEndian.Uint16(data[offset:])))
			offset += 2
		}
		ys[i] = float32(y)
	}

	points := make([]OutlineRawPoint, numPoints)
	for i := 0; i < numPoints; i++ {
		points[i] = OutlineRawPoint{X: xs[i], Y: ys[i], OnCurve: flags[i]&flagOnCurve != 0}
	}

	contours := make([]ContourRange, numberOfContours)
	start := 0
	for i, end := range endPts {
		contours[i] = ContourRange{Start: start, End: end + 1}
		if contours[i].End-contours[i].Start < 3 {
			return nil, newErr(KindMalformed, SourceGlyf)
		}
		start = end + 1
	}

	outline := &Outline{Points: points, Contours: contours}
	if err := outline.Rebuild(); err != nil {
		return nil, err
	}
	return outline, nil
}

// GlyphOutline returns the parsed Outline for a glyph, or nil (not an
// error) for an empty glyph or one with no glyf entry. Composite
// glyphs are treated the same as empty glyphs: parsed as absent.
func (g *Glyf) GlyphOutline(gid GlyphID) (*Outline, error) {
	offset, length, ok := g.loca.GetOffset(gid)
	if !ok {
		return nil, newErr(KindMissing, SourceLoca)
	}
	if length == 0 {
		return nil, nil
	}
	if int(offset)+int(length) > len(g.data) {
		return nil, newErr(KindTruncated, SourceGlyf)
	}

	data := g.data[offset : offset+length]
	if len(data) < 2 {
		return nil, newErr(KindTruncated, SourceGlyf)
	}

	numberOfContours := int16(binary.BigEndian.Uint16(data))
	if numberOfContours <= 0 {
		// Negative: composite glyph, treated as absent (see the comment
		// on GlyphOutline). Zero: an explicitly empty outline, also
		// absent rather than an error.
		return nil, nil
	}

	return ParseSimpleGlyph(data)
}

// ParseGlyfFromFont parses both glyf and loca tables from a font.
func ParseGlyfFromFont(font *Font) (*Glyf, error) {
	maxpData, err := font.TableData(TagMaxp)
	if err != nil {
		return nil, err
	}
	maxp, err := ParseMaxp(maxpData)
	if err != nil {
		return nil, err
	}

	headData, err := font.TableData(TagHead)
	if err != nil {
		return nil, err
	}
	head, err := ParseHead(headData)
	if err != nil {
		return nil, err
	}

	locaData, err := font.TableData(TagLoca)
	if err != nil {
		return nil, err
	}
	loca, err := ParseLoca(locaData, int(maxp.NumGlyphs), head.IndexToLocFormat)
	if err != nil {
		return nil, err
	}

	glyfData, err := font.TableData(TagGlyf)
	if err != nil {
		return nil, err
	}

	return ParseGlyf(glyfData, loca)
}
