package ot

import "fmt"

// Kind enumerates the ways a table or font structure can fail to parse
// or a variation computation can fail to evaluate. The two concerns
// share one Kind set since both ultimately report "this binary data
// does not mean what the caller hoped".
type Kind uint8

const (
	// KindUnexpectedTag means a 4-byte tag field did not match any
	// value the reader expected at that position.
	KindUnexpectedTag Kind = iota + 1
	// KindTruncated means a table or record ran past the end of the
	// buffer it was being read from.
	KindTruncated
	// KindInvalidSfntVersion means the font's leading 4 bytes were
	// not a recognized sfnt version and not the ttcf/OTTO tags either.
	KindInvalidSfntVersion
	// KindCFFNotSupported means the font's sfnt version identified it
	// as an OTTO/CFF font, which this engine does not parse.
	KindCFFNotSupported
	// KindCollectionNotSupported means the font data is a TrueType
	// Collection (ttcf), which this engine does not parse.
	KindCollectionNotSupported
	// KindFormatNotSupported means a table was present but used a
	// subtable format this engine does not implement (e.g. any cmap
	// format other than 4).
	KindFormatNotSupported
	// KindUnexpectedVersion means a table's version field held a value
	// this engine does not know how to parse.
	KindUnexpectedVersion
	// KindMalformed means a table's internal structure violated an
	// invariant this engine requires (bad counts, bad offsets, bad
	// breakpoint ordering, etc.) even though the bytes were in range.
	KindMalformed
	// KindMissingTable means a required table was absent from the font.
	KindMissingTable
	// KindNoData means an optional table was absent; callers of
	// variation APIs see this instead of KindMissingTable so they can
	// tell "this font has no variations" from "this font is broken".
	KindNoData
	// KindInvalidCoords means a caller supplied a coordinate slice
	// whose length did not match the font's axis count.
	KindInvalidCoords
	// KindMissing means a caller named a glyph id the font does not
	// have at all (as opposed to one that has no visible outline,
	// which is not an error — see EvaluateScaledGlyph).
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedTag:
		return "unexpected tag"
	case KindTruncated:
		return "truncated"
	case KindInvalidSfntVersion:
		return "invalid sfnt version"
	case KindCFFNotSupported:
		return "CFF not supported"
	case KindCollectionNotSupported:
		return "font collection not supported"
	case KindFormatNotSupported:
		return "format not supported"
	case KindUnexpectedVersion:
		return "unexpected version"
	case KindMalformed:
		return "malformed"
	case KindMissingTable:
		return "missing table"
	case KindNoData:
		return "no data"
	case KindInvalidCoords:
		return "invalid coordinates"
	case KindMissing:
		return "missing glyph"
	default:
		return "unknown error kind"
	}
}

// Source identifies the table or structure an Error originated from.
type Source uint8

const (
	SourceFontData Source = iota + 1
	SourceTableDirectory
	SourceHead
	SourceMaxp
	SourceHhea
	SourceHmtx
	SourceCmap
	SourceLoca
	SourceGlyf
	SourceName
	SourceFvar
	SourceAvar
	SourceGvar
	SourceHvar
	SourceVariation
	SourceRaster
	SourceFace
)

func (s Source) String() string {
	switch s {
	case SourceFontData:
		return "font data"
	case SourceTableDirectory:
		return "table directory"
	case SourceHead:
		return "head"
	case SourceMaxp:
		return "maxp"
	case SourceHhea:
		return "hhea"
	case SourceHmtx:
		return "hmtx"
	case SourceCmap:
		return "cmap"
	case SourceLoca:
		return "loca"
	case SourceGlyf:
		return "glyf"
	case SourceName:
		return "name"
	case SourceFvar:
		return "fvar"
	case SourceAvar:
		return "avar"
	case SourceGvar:
		return "gvar"
	case SourceHvar:
		return "hvar"
	case SourceVariation:
		return "variation"
	case SourceRaster:
		return "raster"
	case SourceFace:
		return "face"
	default:
		return "unknown source"
	}
}

// Error is the structured error type returned by every table parser
// and variation operation in this package. Callers branch on Kind
// rather than matching error strings.
type Error struct {
	Kind   Kind
	Source Source
}

func (e *Error) Error() string {
	return fmt.Sprintf("ot: %s: %s", e.Source, e.Kind)
}

func newErr(k Kind, s Source) *Error {
	return &Error{Kind: k, Source: s}
}
