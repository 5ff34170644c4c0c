package ot

import "encoding/binary"

const headMagicNumber = 0x5F0F3CF5

// LocaFormat describes the width of glyph offsets in the loca table.
type LocaFormat int16

const (
	LocaFormatShort LocaFormat = 0
	LocaFormatLong  LocaFormat = 1
)

// Head represents the font header table.
type Head struct {
	Version            uint32
	FontRevision       uint32
	CheckSumAdjustment uint32
	MagicNumber        uint32
	Flags              uint16
	UnitsPerEm         uint16
	Created            int64
	Modified           int64
	XMin               int16
	YMin               int16
	XMax               int16
	YMax               int16
	MacStyle           uint16
	LowestRecPPEM      uint16
	FontDirectionHint  int16
	IndexToLocFormat   LocaFormat
	GlyphDataFormat    int16
}

// ParseHead parses the head table. Only major=1, minor=0 is accepted,
// and MagicNumber must equal 0x5F0F3CF5.
func ParseHead(data []byte) (*Head, error) {
	if len(data) < 54 {
		return nil, newErr(KindTruncated, SourceHead)
	}

	major := binary.BigEndian.Uint16(data[0:])
	minor := binary.BigEndian.Uint16(data[2:])
	if major != 1 || minor != 0 {
		return nil, newErr(KindUnexpectedVersion, SourceHead)
	}

	magic := binary.BigEndian.Uint32(data[12:])
	if magic != headMagicNumber {
		return nil, newErr(KindMalformed, SourceHead)
	}

	locaFormat := int16(binary.BigEndian.Uint16(data[50:]))
	if locaFormat != int16(LocaFormatShort) && locaFormat != int16(LocaFormatLong) {
		return nil, newErr(KindFormatNotSupported, SourceHead)
	}

	h := &Head{
		Version:            uint32(major)<<16 | uint32(minor),
		FontRevision:       binary.BigEndian.Uint32(data[4:]),
		CheckSumAdjustment: binary.BigEndian.Uint32(data[8:]),
		MagicNumber:        magic,
		Flags:              binary.BigEndian.Uint16(data[16:]),
		UnitsPerEm:         binary.BigEndian.Uint16(data[18:]),
		Created:            int64(binary.BigEndian.Uint64(data[20:])),
		Modified:           int64(binary.BigEndian.Uint64(data[28:])),
		XMin:               int16(binary.BigEndian.Uint16(data[36:])),
		YMin:               int16(binary.BigEndian.Uint16(data[38:])),
		XMax:               int16(binary.BigEndian.Uint16(data[40:])),
		YMax:               int16(binary.BigEndian.Uint16(data[42:])),
		MacStyle:           binary.BigEndian.Uint16(data[44:]),
		LowestRecPPEM:      binary.BigEndian.Uint16(data[46:]),
		FontDirectionHint:  int16(binary.BigEndian.Uint16(data[48:])),
		IndexToLocFormat:   LocaFormat(locaFormat),
		GlyphDataFormat:    int16(binary.BigEndian.Uint16(data[52:])),
	}

	return h, nil
}
