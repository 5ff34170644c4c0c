package ot

import "encoding/binary"

// Font represents a parsed OpenType/TrueType font: a table directory
// plus the raw bytes each table offset points into. ParseFont never
// copies table data; Font keeps a reference to the input slice for its
// whole lifetime.
type Font struct {
	data   []byte
	tables map[Tag]tableRecord
}

type tableRecord struct {
	offset uint32
	length uint32
}

const sfntVersionTrueType = 0x00010000
const sfntVersionOTTO = 0x4F54544F
const sfntVersionTTC = 0x74746366 // 'ttcf'

// ParseFont parses a single TrueType-outline sfnt font from data.
//
// TrueType Collections are rejected outright (KindCollectionNotSupported)
// rather than transparently merged: this engine has exactly one notion
// of "the font", and a collection has several. CFF/OTTO fonts are
// rejected (KindCFFNotSupported): glyf/loca is the only outline source
// this engine understands.
func ParseFont(data []byte) (*Font, error) {
	if len(data) < 4 {
		return nil, newErr(KindTruncated, SourceFontData)
	}

	sfntVersion := binary.BigEndian.Uint32(data[0:4])

	switch sfntVersion {
	case sfntVersionTTC:
		return nil, newErr(KindCollectionNotSupported, SourceFontData)
	case sfntVersionOTTO:
		return nil, newErr(KindCFFNotSupported, SourceTableDirectory)
	case sfntVersionTrueType:
		// fall through
	default:
		return nil, newErr(KindInvalidSfntVersion, SourceFontData)
	}

	if len(data) < 12 {
		return nil, newErr(KindTruncated, SourceTableDirectory)
	}

	p := NewParser(data)
	if err := p.Skip(4); err != nil { // sfnt version, already read above
		return nil, newErr(KindTruncated, SourceTableDirectory)
	}
	numTables, _ := p.U16()
	if err := p.Skip(6); err != nil { // searchRange, entrySelector, rangeShift
		return nil, newErr(KindTruncated, SourceTableDirectory)
	}

	font := &Font{
		data:   data,
		tables: make(map[Tag]tableRecord, numTables),
	}

	for i := 0; i < int(numTables); i++ {
		tag, err := p.Tag()
		if err != nil {
			return nil, newErr(KindTruncated, SourceTableDirectory)
		}
		if err := p.Skip(4); err != nil { // checksum
			return nil, newErr(KindTruncated, SourceTableDirectory)
		}
		tableOffset, err := p.U32()
		if err != nil {
			return nil, newErr(KindTruncated, SourceTableDirectory)
		}
		tableLength, err := p.U32()
		if err != nil {
			return nil, newErr(KindTruncated, SourceTableDirectory)
		}

		// Last occurrence of a duplicated tag wins.
		font.tables[tag] = tableRecord{offset: tableOffset, length: tableLength}
	}

	return font, nil
}

// HasTable returns true if the font has the given table.
func (f *Font) HasTable(tag Tag) bool {
	_, ok := f.tables[tag]
	return ok
}

// TableData returns the raw data for a table.
func (f *Font) TableData(tag Tag) ([]byte, error) {
	rec, ok := f.tables[tag]
	if !ok {
		return nil, newErr(KindMissingTable, SourceFontData)
	}

	end := rec.offset + rec.length
	if end > uint32(len(f.data)) {
		return nil, newErr(KindTruncated, SourceFontData)
	}

	return f.data[rec.offset:end], nil
}

// TableParser returns a parser for the given table.
func (f *Font) TableParser(tag Tag) (*Parser, error) {
	data, err := f.TableData(tag)
	if err != nil {
		return nil, err
	}
	return NewParser(data), nil
}

// NumGlyphs returns the number of glyphs in the font.
// Returns 0 if maxp table is missing or invalid.
func (f *Font) NumGlyphs() int {
	data, err := f.TableData(TagMaxp)
	if err != nil || len(data) < 6 {
		return 0
	}
	return int(binary.BigEndian.Uint16(data[4:]))
}

// GlyphID represents a glyph index.
type GlyphID = uint16

// Codepoint represents a Unicode codepoint.
type Codepoint = uint32
