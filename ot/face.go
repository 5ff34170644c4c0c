package ot

// Face wraps a parsed Font with the tables this engine's callers need
// most often, so simple lookups don't require re-parsing a table on
// every call and variation evaluation doesn't require wiring
// NormalizeAxisCoords/ApplyGvar/AdvanceWidthDelta by hand.
//
// Every required table (head, maxp, hhea, hmtx, cmap, loca+glyf, name)
// is parsed once in NewFace; fvar/avar/gvar/hvar are parsed only when
// present and are nil otherwise, matching the Font data model's
// "present-and-valid or absent" rule for optional tables.
type Face struct {
	font *Font

	head *Head
	maxp *Maxp
	hhea *Hhea
	hmtx *Hmtx
	cmap *Cmap
	glyf *Glyf
	name *Name

	fvar *Fvar
	avar *Avar
	gvar *Gvar
	hvar *Hvar
}

// NewFace assembles a Face from a parsed Font, parsing every required
// table up front and every optional table when the font carries it.
func NewFace(font *Font) (*Face, error) {
	f := &Face{font: font}

	headData, err := font.TableData(TagHead)
	if err != nil {
		return nil, newErr(KindMissingTable, SourceHead)
	}
	f.head, err = ParseHead(headData)
	if err != nil {
		return nil, err
	}

	maxpData, err := font.TableData(TagMaxp)
	if err != nil {
		return nil, newErr(KindMissingTable, SourceMaxp)
	}
	f.maxp, err = ParseMaxp(maxpData)
	if err != nil {
		return nil, err
	}

	hheaData, err := font.TableData(TagHhea)
	if err != nil {
		return nil, newErr(KindMissingTable, SourceHhea)
	}
	f.hhea, err = ParseHhea(hheaData)
	if err != nil {
		return nil, err
	}

	hmtxData, err := font.TableData(TagHmtx)
	if err != nil {
		return nil, newErr(KindMissingTable, SourceHmtx)
	}
	f.hmtx, err = ParseHmtx(hmtxData, int(f.hhea.NumberOfHMetrics), int(f.maxp.NumGlyphs))
	if err != nil {
		return nil, err
	}

	cmapData, err := font.TableData(TagCmap)
	if err != nil {
		return nil, newErr(KindMissingTable, SourceCmap)
	}
	f.cmap, err = ParseCmap(cmapData)
	if err != nil {
		return nil, err
	}

	f.glyf, err = ParseGlyfFromFont(font)
	if err != nil {
		return nil, err
	}

	nameData, err := font.TableData(TagName)
	if err != nil {
		return nil, newErr(KindMissingTable, SourceName)
	}
	f.name, err = ParseName(nameData)
	if err != nil {
		return nil, err
	}

	if font.HasTable(TagFvar) {
		data, err := font.TableData(TagFvar)
		if err != nil {
			return nil, err
		}
		f.fvar, err = ParseFvar(data)
		if err != nil {
			return nil, err
		}
	}
	if font.HasTable(TagAvar) {
		data, err := font.TableData(TagAvar)
		if err != nil {
			return nil, err
		}
		f.avar, err = ParseAvar(data)
		if err != nil {
			return nil, err
		}
	}
	if font.HasTable(TagGvar) {
		data, err := font.TableData(TagGvar)
		if err != nil {
			return nil, err
		}
		f.gvar, err = ParseGvar(data)
		if err != nil {
			return nil, err
		}
	}
	if font.HasTable(TagHvar) {
		data, err := font.TableData(TagHvar)
		if err != nil {
			return nil, err
		}
		f.hvar, err = ParseHvar(data)
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

// UnitsPerEM returns the font's design-unit granularity.
func (f *Face) UnitsPerEM() uint16 {
	return f.head.UnitsPerEm
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Face) NumGlyphs() int {
	return int(f.maxp.NumGlyphs)
}

// AdvanceWidth returns a glyph's unvaried advance width, in design
// units, from hmtx.
func (f *Face) AdvanceWidth(glyph GlyphID) uint16 {
	return f.hmtx.GetAdvanceWidth(glyph)
}

// Lookup maps a Unicode codepoint to a glyph id via the font's cmap
// format-4 subtable.
func (f *Face) Lookup(cp Codepoint) (GlyphID, bool) {
	return f.cmap.Lookup(cp)
}

// FamilyName returns the name table's family name (nameID 1).
func (f *Face) FamilyName() string {
	if f.name == nil {
		return ""
	}
	return f.name.FamilyName()
}

// PostscriptName returns the name table's PostScript name (nameID 6).
func (f *Face) PostscriptName() string {
	if f.name == nil {
		return ""
	}
	return f.name.PostScriptName()
}

// HasVariations reports whether the font has a usable fvar table.
func (f *Face) HasVariations() bool {
	return f.fvar.HasData()
}

// VariationAxes returns every variation axis the font declares.
func (f *Face) VariationAxes() []AxisInfo {
	return f.fvar.AxisInfos()
}

// FindVariationAxis finds a variation axis by its 4-byte tag.
func (f *Face) FindVariationAxis(tag Tag) (AxisInfo, bool) {
	return f.fvar.FindAxis(tag)
}

// NamedInstances returns the font's predefined design-space points.
func (f *Face) NamedInstances() []NamedInstance {
	return f.fvar.NamedInstances()
}

// Scale is the one-call entry point most callers use instead of
// driving NormalizeAxisCoords/ApplyGvar/AdvanceWidthDelta directly: it
// resolves glyphID's outline and metrics for the given pixel size and
// design-space coordinates. coords may be nil (unvaried request); when
// non-nil, coordsNormalized selects whether coords are already in
// [-1,1] or still need normalizing against fvar/avar.
func (f *Face) Scale(glyphID GlyphID, coords []float32, coordsNormalized bool, size float32) (ScaledGlyph, error) {
	return EvaluateScaledGlyph(f.head, f.hmtx, f.glyf, f.fvar, f.avar, f.gvar, f.hvar, glyphID, size, coords, coordsNormalized)
}
