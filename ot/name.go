package ot

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
)

// NameRecord is one decoded entry of the name table.
type NameRecord struct {
	PlatformID uint16
	EncodingID uint16
	LanguageID uint16
	NameID     uint16
	Value      string
}

// Name represents the name table: version 0 and version 1 (which adds
// language-tag records this engine does not otherwise use) are both
// accepted.
type Name struct {
	records []NameRecord
	byID    map[uint16]string // last-wins lookup by nameID
}

var utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()

// ParseName parses the name table.
func ParseName(data []byte) (*Name, error) {
	if len(data) < 6 {
		return nil, newErr(KindTruncated, SourceName)
	}

	format := binary.BigEndian.Uint16(data[0:])
	if format != 0 && format != 1 {
		return nil, newErr(KindUnexpectedVersion, SourceName)
	}

	count := binary.BigEndian.Uint16(data[2:])
	storageOffset := binary.BigEndian.Uint16(data[4:])

	n := &Name{byID: make(map[uint16]string)}

	recordOffset := 6
	for i := 0; i < int(count); i++ {
		if recordOffset+12 > len(data) {
			return nil, newErr(KindTruncated, SourceName)
		}

		rec := NameRecord{
			PlatformID: binary.BigEndian.Uint16(data[recordOffset:]),
			EncodingID: binary.BigEndian.Uint16(data[recordOffset+2:]),
			LanguageID: binary.BigEndian.Uint16(data[recordOffset+4:]),
			NameID:     binary.BigEndian.Uint16(data[recordOffset+6:]),
		}
		length := binary.BigEndian.Uint16(data[recordOffset+8:])
		offset := binary.BigEndian.Uint16(data[recordOffset+10:])
		recordOffset += 12

		stringOffset := int(storageOffset) + int(offset)
		if stringOffset+int(length) > len(data) {
			return nil, newErr(KindTruncated, SourceName)
		}
		stringData := data[stringOffset : stringOffset+int(length)]

		var str string
		if rec.PlatformID == 3 || rec.PlatformID == 0 {
			decoded, err := utf16BEDecoder.Bytes(stringData)
			if err == nil {
				str = string(decoded)
			}
		} else if rec.PlatformID == 1 && rec.EncodingID == 0 {
			str = string(stringData)
		}
		rec.Value = str

		n.records = append(n.records, rec)
		if str != "" {
			n.byID[rec.NameID] = str
		}
	}

	return n, nil
}

// Get returns the string for a nameID and whether one was found.
func (n *Name) Get(nameID uint16) (string, bool) {
	s, ok := n.byID[nameID]
	return s, ok
}

// PostScriptName returns the PostScript name (nameID 6).
func (n *Name) PostScriptName() string {
	return n.byID[6]
}

// FamilyName returns the font family name (nameID 1).
func (n *Name) FamilyName() string {
	return n.byID[1]
}

// FullName returns the full font name (nameID 4).
func (n *Name) FullName() string {
	return n.byID[4]
}

// Records returns every decoded name record in table order.
func (n *Name) Records() []NameRecord {
	return n.records
}
