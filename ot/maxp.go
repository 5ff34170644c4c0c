package ot

import "encoding/binary"

const maxpVersion05 = 0x00005000
const maxpVersion10 = 0x00010000

// Maxp represents the maxp table. Version 0.5 carries only NumGlyphs;
// version 1.0 also carries the max-elements fields used by hinting,
// which this engine never reads but still parses for completeness.
type Maxp struct {
	Version              uint32
	NumGlyphs            uint16
	MaxPoints            uint16
	MaxContours          uint16
	MaxCompositePoints   uint16
	MaxCompositeContours uint16
	MaxZones             uint16
	MaxTwilightPoints    uint16
	MaxStorage           uint16
	MaxFunctionDefs      uint16
	MaxInstructionDefs   uint16
	MaxStackElements     uint16
	MaxSizeOfInstrs      uint16
	MaxComponentElements uint16
	MaxComponentDepth    uint16
}

// ParseMaxp parses the maxp table.
func ParseMaxp(data []byte) (*Maxp, error) {
	if len(data) < 6 {
		return nil, newErr(KindTruncated, SourceMaxp)
	}

	version := binary.BigEndian.Uint32(data[0:])
	m := &Maxp{
		Version:   version,
		NumGlyphs: binary.BigEndian.Uint16(data[4:]),
	}

	switch version {
	case maxpVersion05:
		return m, nil
	case maxpVersion10:
		if len(data) < 32 {
			return nil, newErr(KindTruncated, SourceMaxp)
		}
		m.MaxPoints = binary.BigEndian.Uint16(data[6:])
		m.MaxContours = binary.BigEndian.Uint16(data[8:])
		m.MaxCompositePoints = binary.BigEndian.Uint16(data[10:])
		m.MaxCompositeContours = binary.BigEndian.Uint16(data[12:])
		m.MaxZones = binary.BigEndian.Uint16(data[14:])
		m.MaxTwilightPoints = binary.BigEndian.Uint16(data[16:])
		m.MaxStorage = binary.BigEndian.Uint16(data[18:])
		m.MaxFunctionDefs = binary.BigEndian.Uint16(data[20:])
		m.MaxInstructionDefs = binary.BigEndian.Uint16(data[22:])
		m.MaxStackElements = binary.BigEndian.Uint16(data[24:])
		m.MaxSizeOfInstrs = binary.BigEndian.Uint16(data[26:])
		m.MaxComponentElements = binary.BigEndian.Uint16(data[28:])
		m.MaxComponentDepth = binary.BigEndian.Uint16(data[30:])
		return m, nil
	default:
		return nil, newErr(KindUnexpectedVersion, SourceMaxp)
	}
}
