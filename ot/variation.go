package ot

// tupleScalar implements the scaler shared by gvar tuple weighting and
// hvar region weighting: for each axis with a non-zero peak, compute a
// [0,1] contribution factor from where coord sits relative to
// (start, peak, end); multiply factors across axes. A tuple whose
// axes are all ignored (every peak is zero, matching coord zero)
// never applies.
func tupleScalar(peak, start, end, coords []float32) (float32, bool) {
	scalar := float32(1.0)
	anyEngaged := false

	for i, p := range peak {
		if p == 0 {
			continue
		}
		anyEngaged = true

		var coord float32
		if i < len(coords) {
			coord = coords[i]
		}

		if coord == p {
			continue
		}

		hasIntermediate := start != nil && end != nil
		if hasIntermediate {
			s, e := start[i], end[i]
			if coord < s || coord > e || coord == s || coord == e {
				return 0, false
			}
			if coord < p {
				scalar *= (coord - s) / (p - s)
			} else {
				scalar *= (e - coord) / (e - p)
			}
			continue
		}

		if coord == 0 || (coord > 0) != (p > 0) {
			return 0, false
		}
		scalar *= coord / p
	}

	if !anyEngaged {
		return 0, false
	}
	return scalar, true
}

// NormalizeAxisCoords maps a slice of user-space axis values (one per
// font axis, in fvar's declared order) to normalized [-1,1]
// coordinates, applying avar's piecewise-linear remap when present.
func NormalizeAxisCoords(fvar *Fvar, avar *Avar, userCoords []float32) ([]float32, error) {
	if fvar == nil || !fvar.HasData() {
		return nil, newErr(KindNoData, SourceFvar)
	}
	if len(userCoords) != fvar.AxisCount() {
		return nil, newErr(KindInvalidCoords, SourceVariation)
	}

	normalized := make([]float32, len(userCoords))
	for i, v := range userCoords {
		normalized[i] = fvar.NormalizeAxisValue(i, v)
	}

	if avar.HasData() {
		mapped, err := avar.MapCoords(normalized)
		if err != nil {
			return nil, err
		}
		normalized = mapped
	}

	return normalized, nil
}

// ApplyGvar mutates outline in place, adding gvar's variation deltas
// for glyphID at the given normalized coordinates, then rebuilding the
// outline's bounding box and geometry. Phantom point deltas (the 4
// trailing slots beyond the real point count) are accumulated but
// never applied to visible geometry and take no part in IUP inference.
func ApplyGvar(outline *Outline, gvar *Gvar, glyphID GlyphID, coords []float32) error {
	if gvar == nil || !gvar.HasData() {
		return nil
	}
	if int(glyphID) >= gvar.GlyphCount() {
		return nil
	}

	numPoints := len(outline.Points)
	total := numPoints + 4

	tuples, err := gvar.glyphTupleVariations(glyphID, numPoints)
	if err != nil {
		return err
	}
	if len(tuples) == 0 {
		return nil
	}

	accX := make([]float32, total)
	accY := make([]float32, total)

	for _, tv := range tuples {
		scalar, ok := tupleScalar(tv.peak, tv.start, tv.end, coords)
		if !ok {
			continue
		}

		if tv.pointNumbers == nil {
			for i := 0; i < total && i < len(tv.xDeltas); i++ {
				accX[i] += scalar * tv.xDeltas[i]
				accY[i] += scalar * tv.yDeltas[i]
			}
			continue
		}

		touchedX := make(map[int]float32, len(tv.pointNumbers))
		touchedY := make(map[int]float32, len(tv.pointNumbers))
		for i, idx := range tv.pointNumbers {
			if i >= len(tv.xDeltas) {
				break
			}
			touchedX[idx] = scalar * tv.xDeltas[i]
			touchedY[idx] = scalar * tv.yDeltas[i]
		}

		// Phantom points only move when explicitly touched.
		for idx := numPoints; idx < total; idx++ {
			if dx, ok := touchedX[idx]; ok {
				accX[idx] += dx
				accY[idx] += touchedY[idx]
			}
		}

		for _, c := range outline.Contours {
			applyContourDeltas(outline, c, touchedX, touchedY, accX, accY)
		}
	}

	for i := range outline.Points {
		outline.Points[i].X += accX[i]
		outline.Points[i].Y += accY[i]
	}

	return outline.Rebuild()
}

// applyContourDeltas implements the gvar per-contour IUP rule: if no
// points in the contour are touched, the contour is left alone; if
// exactly one is touched, its delta broadcasts to the whole contour;
// otherwise every untouched point infers its delta from the pair of
// touched points bracketing it in cyclic contour order.
func applyContourDeltas(outline *Outline, c ContourRange, touchedX, touchedY map[int]float32, accX, accY []float32) {
	var touchedIdx []int
	for i := c.Start; i < c.End; i++ {
		if _, ok := touchedX[i]; ok {
			touchedIdx = append(touchedIdx, i)
		}
	}

	if len(touchedIdx) == 0 {
		return
	}

	if len(touchedIdx) == 1 {
		only := touchedIdx[0]
		for i := c.Start; i < c.End; i++ {
			accX[i] += touchedX[only]
			accY[i] += touchedY[only]
		}
		return
	}

	n := c.End - c.Start
	for i := c.Start; i < c.End; i++ {
		if dx, ok := touchedX[i]; ok {
			accX[i] += dx
			accY[i] += touchedY[i]
			continue
		}

		prev, follow := bracketingTouched(i, c.Start, n, touchedX)

		accX[i] += inferDelta(outline.Points[i].X, outline.Points[prev].X, outline.Points[follow].X, touchedX[prev], touchedX[follow])
		accY[i] += inferDelta(outline.Points[i].Y, outline.Points[prev].Y, outline.Points[follow].Y, touchedY[prev], touchedY[follow])
	}
}

// bracketingTouched finds the nearest touched predecessor and
// follower of point i within a contour of n points starting at
// base, walking the contour's cyclic order in each direction.
func bracketingTouched(i, base, n int, touched map[int]float32) (prev, follow int) {
	rel := i - base
	for j := 1; j <= n; j++ {
		idx := base + ((rel-j)%n+n)%n
		if _, ok := touched[idx]; ok {
			prev = idx
			break
		}
	}
	for j := 1; j <= n; j++ {
		idx := base + (rel+j)%n
		if _, ok := touched[idx]; ok {
			follow = idx
			break
		}
	}
	return prev, follow
}

// inferDelta applies the IUP inference rule for a single axis: t is
// the untouched point's base coordinate, px/fx the bracketing touched
// points' base coordinates, pd/fd their already-scaled deltas.
func inferDelta(t, px, fx, pd, fd float32) float32 {
	if px == fx {
		if pd == fd {
			return pd
		}
		return 0
	}

	lo, hi := px, fx
	loDelta, hiDelta := pd, fd
	if lo > hi {
		lo, hi = hi, lo
		loDelta, hiDelta = hiDelta, loDelta
	}

	if t <= lo {
		return loDelta
	}
	if t >= hi {
		return hiDelta
	}

	frac := (t - lo) / (hi - lo)
	return loDelta + frac*(hiDelta-loDelta)
}

// AdvanceWidthDelta returns the hvar-derived advance width adjustment
// for a glyph at the given normalized coordinates, or 0 if the font
// has no hvar table. hvar's ItemVariationStore works in F2Dot14
// (1.0 == 16384) rather than the float32 [-1,1] the rest of this
// package uses, so coords are converted at this one boundary.
func AdvanceWidthDelta(hvar *Hvar, glyphID GlyphID, coords []float32) float32 {
	if hvar == nil || !hvar.HasData() {
		return 0
	}
	f2dot14 := make([]int, len(coords))
	for i, c := range coords {
		f2dot14[i] = floatToF2DOT14(c)
	}
	return hvar.GetAdvanceDelta(glyphID, f2dot14)
}
