package resultparser

import (
	"strings"

	"github.com/cdellis/barscan"
)

// VINResult is a parsed ISO 3779 vehicle identification number.
type VINResult struct {
	RawText           string
	WorldManufacturer string
	VehicleDescriptor string
	VehicleIdentifier string
	CountryCode       string
	VehicleAttributes string
	ModelYear         int
	PlantCode         byte
	SequentialNumber  string
}

type vinParser struct{}

// Parse recognizes a 17-character VIN encoded as Code 39. It strips the
// characters I, O, and Q (easily confused with 1, 0, 1 and excluded from
// the VIN alphabet), requires the remainder to be 17 uppercase
// alphanumerics, and validates the ISO 3779 check digit before splitting
// the string into its component fields.
func (vinParser) Parse(result *barscan.Result) (*ParsedResult, bool) {
	if result.Format != barscan.FormatCode39 {
		return nil, false
	}
	raw := strings.TrimSpace(stripIOQ(result.Text))
	if len(raw) != 17 || !isUpperAlnum(raw) {
		return nil, false
	}
	if !vinChecksumValid(raw) {
		return nil, false
	}

	wmi := raw[0:3]
	vr := &VINResult{
		RawText:           raw,
		WorldManufacturer: wmi,
		VehicleDescriptor: raw[3:9],
		VehicleIdentifier: raw[9:17],
		CountryCode:       vinCountryCode(wmi),
		VehicleAttributes: raw[3:8],
		ModelYear:         vinModelYear(raw[9]),
		PlantCode:         raw[10],
		SequentialNumber:  raw[11:],
	}
	return &ParsedResult{Kind: TypeVIN, DisplayResult: raw, VIN: vr}, true
}

func stripIOQ(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'I', 'O', 'Q':
			return -1
		default:
			return r
		}
	}, s)
}

func isUpperAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

func vinChecksumValid(vin string) bool {
	sum := 0
	for i := 0; i < len(vin); i++ {
		val, ok := vinCharValue(vin[i])
		if !ok {
			return false
		}
		sum += vinPositionWeight(i+1) * val
	}
	return vin[8] == vinCheckChar(sum%11)
}

func vinCharValue(c byte) (int, bool) {
	switch {
	case c >= 'A' && c <= 'I':
		return int(c-'A') + 1, true
	case c >= 'J' && c <= 'R':
		return int(c-'J') + 1, true
	case c >= 'S' && c <= 'Z':
		return int(c-'S') + 2, true
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	default:
		return 0, false
	}
}

func vinPositionWeight(position int) int {
	switch {
	case position >= 1 && position <= 7:
		return 9 - position
	case position == 8:
		return 10
	case position == 9:
		return 0
	case position >= 10 && position <= 17:
		return 19 - position
	default:
		return 0
	}
}

func vinCheckChar(remainder int) byte {
	if remainder < 10 {
		return '0' + byte(remainder)
	}
	return 'X'
}

// vinModelYear maps the 10th VIN character to a model year. ISO 3779 reuses
// each letter/digit every 30 years, so the ranges below cover one cycle
// (1984-2009) plus the A-D digits that start the next cycle at 2010; I, O,
// Q, U, and Z are never assigned.
func vinModelYear(c byte) int {
	switch {
	case c >= 'E' && c <= 'H':
		return int(c-'E') + 1984
	case c >= 'J' && c <= 'N':
		return int(c-'J') + 1988
	case c == 'P':
		return 1993
	case c >= 'R' && c <= 'T':
		return int(c-'R') + 1994
	case c >= 'V' && c <= 'Y':
		return int(c-'V') + 1997
	case c >= '1' && c <= '9':
		return int(c-'1') + 2001
	case c >= 'A' && c <= 'D':
		return int(c-'A') + 2010
	default:
		return 0
	}
}

// vinCountryCode maps the first two World Manufacturer Identifier
// characters to an ISO 3166 country code. Several ranges depend on the
// second character to disambiguate (e.g. "SA".."SM" is the UK but
// "SN".."ST" is Germany); unmapped prefixes report the empty string rather
// than guessing.
func vinCountryCode(wmi string) string {
	if len(wmi) < 2 {
		return ""
	}
	c1, c2 := wmi[0], wmi[1]
	switch c1 {
	case '1', '4', '5':
		return "US"
	case '2':
		return "CA"
	case '3':
		if c2 >= 'A' && c2 <= 'W' {
			return "MX"
		}
	case '9':
		if (c2 >= 'A' && c2 <= 'E') || (c2 >= '3' && c2 <= '9') {
			return "BR"
		}
	case 'J':
		if c2 >= 'A' && c2 <= 'T' {
			return "JP"
		}
	case 'K':
		if c2 >= 'L' && c2 <= 'R' {
			return "KO"
		}
	case 'L':
		return "CN"
	case 'M':
		if c2 >= 'A' && c2 <= 'E' {
			return "IN"
		}
	case 'S':
		if c2 >= 'A' && c2 <= 'M' {
			return "UK"
		}
		if c2 >= 'N' && c2 <= 'T' {
			return "DE"
		}
	case 'V':
		if c2 >= 'F' && c2 <= 'R' {
			return "FR"
		}
		if c2 >= 'S' && c2 <= 'W' {
			return "ES"
		}
	case 'W':
		return "DE"
	case 'X':
		if c2 == '0' || (c2 >= '3' && c2 <= '9') {
			return "RU"
		}
	case 'Z':
		if c2 >= 'A' && c2 <= 'R' {
			return "IT"
		}
	}
	return ""
}
