package decoder

// Mode represents a QR code data encoding mode.
type Mode int

const (
	ModeTerminator        Mode = 0x00
	ModeNumeric           Mode = 0x01
	ModeAlphanumeric      Mode = 0x02
	ModeStructuredAppend  Mode = 0x03
	ModeByte              Mode = 0x04
	ModeFNC1FirstPosition Mode = 0x05
	ModeECI               Mode = 0x07
	ModeKanji             Mode = 0x08
	ModeFNC1SecondPosition Mode = 0x09
	ModeHanzi             Mode = 0x0D
)

// characterCountBits contains [v1-9, v10-26, v27-40] bit counts.
var characterCountBits = map[Mode][3]int{
	ModeTerminator:         {0, 0, 0},
	ModeNumeric:            {10, 12, 14},
	ModeAlphanumeric:       {9, 11, 13},
	ModeStructuredAppend:   {0, 0, 0},
	ModeByte:               {8, 16, 16},
	ModeECI:                {0, 0, 0},
	ModeKanji:              {8, 10, 12},
	ModeFNC1FirstPosition:  {0, 0, 0},
	ModeFNC1SecondPosition: {0, 0, 0},
	ModeHanzi:              {8, 10, 12},
}

// bitsToMode maps a mode indicator's raw 4-bit value back to a Mode; every
// key here also appears as a Mode constant above.
var bitsToMode = map[int]Mode{
	0x0: ModeTerminator,
	0x1: ModeNumeric,
	0x2: ModeAlphanumeric,
	0x3: ModeStructuredAppend,
	0x4: ModeByte,
	0x5: ModeFNC1FirstPosition,
	0x7: ModeECI,
	0x8: ModeKanji,
	0x9: ModeFNC1SecondPosition,
	0xD: ModeHanzi,
}

// ModeForBits returns the Mode for the given 4-bit value.
func ModeForBits(bits int) (Mode, error) {
	mode, ok := bitsToMode[bits]
	if !ok {
		return 0, errInvalidMode
	}
	return mode, nil
}

// versionOffset picks which of the three [v1-9, v10-26, v27-40]
// character-count-bit columns applies to a version number.
func versionOffset(number int) int {
	switch {
	case number <= 9:
		return 0
	case number <= 26:
		return 1
	default:
		return 2
	}
}

// CharacterCountBits returns the number of bits used to encode the character
// count for this mode in the given version.
func (m Mode) CharacterCountBits(version *Version) int {
	return characterCountBits[m][versionOffset(version.Number)]
}

// Bits returns the 4-bit encoding of this mode.
func (m Mode) Bits() int {
	return int(m)
}
