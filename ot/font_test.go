package ot

import "testing"

// TestParseFontShortCollectionBuffer checks that a truncated TrueType
// Collection buffer is classified by its sfnt tag before any length
// requirement on the table directory kicks in: a 4-byte "ttcf" buffer
// is CollectionNotSupported, never Truncated.
func TestParseFontShortCollectionBuffer(t *testing.T) {
	data := []byte("ttcf")

	_, err := ParseFont(data)
	otErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("ParseFont error type = %T, want *Error", err)
	}
	if otErr.Kind != KindCollectionNotSupported || otErr.Source != SourceFontData {
		t.Fatalf("ParseFont(%q) = %v, want Kind=%v Source=%v", data, otErr, KindCollectionNotSupported, SourceFontData)
	}
}

// TestParseFontShortCFFBuffer checks the same ordering for an 8-byte
// "OTTO" buffer: it must be CFFNotSupported, not Truncated, even though
// it is far short of a full 12-byte table directory header.
func TestParseFontShortCFFBuffer(t *testing.T) {
	data := []byte("OTTO\x00\x00\x00\x00")

	_, err := ParseFont(data)
	otErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("ParseFont error type = %T, want *Error", err)
	}
	if otErr.Kind != KindCFFNotSupported || otErr.Source != SourceTableDirectory {
		t.Fatalf("ParseFont(%q) = %v, want Kind=%v Source=%v", data, otErr, KindCFFNotSupported, SourceTableDirectory)
	}
}

// TestParseFontTooShortForTag checks that a buffer too short to even
// contain the 4-byte sfnt tag still reports Truncated.
func TestParseFontTooShortForTag(t *testing.T) {
	data := []byte{0x00, 0x01}

	_, err := ParseFont(data)
	otErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("ParseFont error type = %T, want *Error", err)
	}
	if otErr.Kind != KindTruncated || otErr.Source != SourceFontData {
		t.Fatalf("ParseFont(%q) = %v, want Kind=%v Source=%v", data, otErr, KindTruncated, SourceFontData)
	}
}

// TestParseFontTrueTypeTooShortForDirectory checks that a buffer that
// identifies as TrueType (the 4-byte 0x00010000 tag) but is too short
// to hold the rest of the table directory header reports Truncated
// against the table directory, not the font data as a whole.
func TestParseFontTrueTypeTooShortForDirectory(t *testing.T) {
	data := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x01}

	_, err := ParseFont(data)
	otErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("ParseFont error type = %T, want *Error", err)
	}
	if otErr.Kind != KindTruncated || otErr.Source != SourceTableDirectory {
		t.Fatalf("ParseFont(%q) = %v, want Kind=%v Source=%v", data, otErr, KindTruncated, SourceTableDirectory)
	}
}
