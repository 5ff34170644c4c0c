package ot

import (
	"hash/fnv"
	"math"
)

// ScaledGlyph is the variation engine's final output: one glyph's
// outline and metrics resolved for a specific pixel size and
// design-space point, ready to hand to a rasterizer. Points in Outline
// lie in the unit square [0,1]x[0,1] with Y growing downward.
type ScaledGlyph struct {
	Width, Height      int
	BearingX, BearingY int
	AdvanceWidth       int
	Outline            *Outline // nil when the glyph has no visible geometry
	UniqueID           uint64
}

// roundLeft truncates towards zero, then steps one lower when that
// truncation moved a negative value up — the "round left" half of the
// §4.6 rounding policy, applied to the low edge of a scaled bounding
// box. A whole value is returned unchanged.
func roundLeft(v float32) int {
	t := int(v)
	if v < float32(t) {
		t--
	}
	return t
}

// roundRight is roundLeft's mirror for the high edge: truncate towards
// zero, then step one higher when that truncation moved a positive
// value down. A whole value is returned unchanged.
func roundRight(v float32) int {
	t := int(v)
	if v > float32(t) {
		t++
	}
	return t
}

// fingerprint computes ScaledGlyph.UniqueID: glyph id, then size's raw
// bit pattern, then either each coordinate's raw bit pattern or one
// zero word per axis when coords is absent. FNV-1a 64 over that exact
// byte stream, so the result is stable across runs, threads, and
// machines.
func fingerprint(glyphID GlyphID, size float32, coords []float32, axisCount int) uint64 {
	h := fnv.New64a()
	var buf [4]byte
	writeU16 := func(v uint16) {
		buf[0], buf[1] = byte(v>>8), byte(v)
		h.Write(buf[:2])
	}
	writeU32 := func(v uint32) {
		buf[0], buf[1], buf[2], buf[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		h.Write(buf[:4])
	}
	writeF32 := func(f float32) {
		writeU32(math.Float32bits(f))
	}

	writeU16(glyphID)
	writeF32(size)
	if coords != nil {
		for _, c := range coords {
			writeF32(c)
		}
	} else {
		for i := 0; i < axisCount; i++ {
			writeU32(0)
		}
	}

	return h.Sum64()
}

// EvaluateScaledGlyph is the scaled-glyph builder described in spec
// §4.6: it resolves a glyph's outline and advance width for one
// (size, design-space point) request. userCoords is nil for an
// unvariated request; when non-nil and coordsNormalized is false it is
// first normalized via NormalizeAxisCoords (§4.4).
func EvaluateScaledGlyph(
	head *Head,
	hmtx *Hmtx,
	glyf *Glyf,
	fvar *Fvar,
	avar *Avar,
	gvar *Gvar,
	hvar *Hvar,
	glyphID GlyphID,
	size float32,
	userCoords []float32,
	coordsNormalized bool,
) (ScaledGlyph, error) {
	var coords []float32
	if userCoords != nil {
		if coordsNormalized {
			coords = userCoords
		} else {
			normalized, err := NormalizeAxisCoords(fvar, avar, userCoords)
			if err != nil {
				return ScaledGlyph{}, err
			}
			coords = normalized
		}
	}

	uid := fingerprint(glyphID, size, coords, fvar.AxisCount())

	if head == nil || head.UnitsPerEm == 0 {
		return ScaledGlyph{}, newErr(KindMissingTable, SourceRaster)
	}
	scaler := size / float32(head.UnitsPerEm)

	baseAdvance := float32(hmtx.GetAdvanceWidth(glyphID))
	if coords != nil {
		baseAdvance += AdvanceWidthDelta(hvar, glyphID, coords)
	}
	advance := baseAdvance * scaler

	outline, err := glyf.GlyphOutline(glyphID)
	if err != nil {
		return ScaledGlyph{}, err
	}
	if outline == nil {
		return ScaledGlyph{
			AdvanceWidth: ceilInt(advance),
			UniqueID:     uid,
		}, nil
	}

	clone, err := outline.Clone()
	if err != nil {
		return ScaledGlyph{}, err
	}
	if coords != nil {
		oldWidth := clone.XMax - clone.XMin
		if err := ApplyGvar(clone, gvar, glyphID, coords); err != nil {
			return ScaledGlyph{}, err
		}
		newWidth := clone.XMax - clone.XMin
		advance += (newWidth - oldWidth) * scaler
	}

	xMinRaw := clone.XMin * scaler
	xMaxRaw := clone.XMax * scaler
	yMinRaw := clone.YMin * scaler
	yMaxRaw := clone.YMax * scaler

	xMinWhole := roundLeft(xMinRaw)
	xMaxWhole := roundRight(xMaxRaw)
	yMinWhole := roundLeft(yMinRaw)
	yMaxWhole := roundRight(yMaxRaw)

	width := xMaxWhole - xMinWhole
	height := yMaxWhole - yMinWhole
	if width <= 0 || height <= 0 {
		return ScaledGlyph{}, newErr(KindMalformed, SourceRaster)
	}

	widthRaw := xMaxRaw - xMinRaw
	advance -= float32(width) - widthRaw

	xOffset := (xMinRaw - float32(xMinWhole)) - xMinRaw
	yOffset := (yMinRaw - float32(yMinWhole)) - yMinRaw

	for i := range clone.Points {
		p := &clone.Points[i]
		p.X = ((p.X*scaler)+xOffset) / float32(width)
		p.Y = (float32(height) - ((p.Y*scaler + yOffset))) / float32(height)
	}
	if err := clone.Rebuild(); err != nil {
		return ScaledGlyph{}, err
	}

	return ScaledGlyph{
		Width:        width,
		Height:       height,
		BearingX:     xMinWhole,
		BearingY:     yMinWhole,
		AdvanceWidth: ceilInt(advance),
		Outline:      clone,
		UniqueID:     uid,
	}, nil
}

// ceilInt rounds a float32 up to the nearest integer, matching §4.6's
// "ceiling of the real advance" rule for the final advance width.
func ceilInt(v float32) int {
	t := int(v)
	if v > float32(t) {
		t++
	}
	return t
}
