package resultparser

import (
	"strings"

	"github.com/cdellis/barscan"
)

// AddressBookResult is a parsed contact-card payload, recognizing the
// MECARD: scheme used by QR address-book barcodes and the vCard 2.1/3.0
// BEGIN:VCARD block used by most other symbologies.
type AddressBookResult struct {
	Names        []string
	PhoneNumbers []string
	Emails       []string
	Addresses    []string
	Org          string
	Title        string
	URLs         []string
	Note         string
}

type addressBookParser struct{}

func (addressBookParser) Parse(result *barscan.Result) (*ParsedResult, bool) {
	text := result.Text
	switch {
	case strings.HasPrefix(text, "MECARD:"):
		return parseMECARD(text)
	case strings.HasPrefix(text, "BEGIN:VCARD"):
		return parseVCard(text)
	default:
		return nil, false
	}
}

// parseMECARD reads the semicolon-delimited "FIELD:value;" pairs between
// "MECARD:" and the closing ";;", unescaping "\," "\;" and "\\" the way the
// format's field values require.
func parseMECARD(text string) (*ParsedResult, bool) {
	body := strings.TrimPrefix(text, "MECARD:")
	body = strings.TrimSuffix(body, ";;")

	ar := &AddressBookResult{}
	for _, field := range splitMECARDFields(body) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		value = unescapeMECARDValue(value)
		switch strings.ToUpper(key) {
		case "N":
			ar.Names = append(ar.Names, value)
		case "TEL":
			ar.PhoneNumbers = append(ar.PhoneNumbers, value)
		case "EMAIL":
			ar.Emails = append(ar.Emails, value)
		case "ADR":
			ar.Addresses = append(ar.Addresses, value)
		case "ORG":
			ar.Org = value
		case "URL":
			ar.URLs = append(ar.URLs, value)
		case "NOTE":
			ar.Note = value
		}
	}
	if len(ar.Names) == 0 && len(ar.PhoneNumbers) == 0 && len(ar.Emails) == 0 {
		return nil, false
	}
	return &ParsedResult{Kind: TypeAddressBook, DisplayResult: addressBookDisplay(ar), AddressBook: ar}, true
}

// splitMECARDFields splits on unescaped semicolons: a semicolon preceded by
// an odd number of backslashes is an escaped literal, not a delimiter.
func splitMECARDFields(body string) []string {
	var fields []string
	var cur strings.Builder
	backslashes := 0
	for _, r := range body {
		switch r {
		case '\\':
			backslashes++
			cur.WriteRune(r)
		case ';':
			if backslashes%2 == 1 {
				cur.WriteRune(r)
			} else {
				fields = append(fields, cur.String())
				cur.Reset()
			}
			backslashes = 0
		default:
			backslashes = 0
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

func unescapeMECARDValue(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		out.WriteByte(s[i])
	}
	return out.String()
}

// parseVCard reads a minimal subset of vCard 2.1/3.0: FN/N, TEL, EMAIL, ADR,
// ORG, TITLE, URL, and NOTE lines between BEGIN:VCARD and END:VCARD. Parameter
// lists after a ";" on the property name (e.g. "TEL;CELL:") are ignored; only
// the bare property name and the value after the first unparameterized ":"
// are used.
func parseVCard(text string) (*ParsedResult, bool) {
	lines := splitICalLines(text)
	ar := &AddressBookResult{}
	for _, line := range lines {
		prop, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name := prop
		if i := strings.Index(prop, ";"); i >= 0 {
			name = prop[:i]
		}
		switch strings.ToUpper(name) {
		case "FN":
			ar.Names = append(ar.Names, value)
		case "TEL":
			ar.PhoneNumbers = append(ar.PhoneNumbers, value)
		case "EMAIL":
			ar.Emails = append(ar.Emails, value)
		case "ADR":
			ar.Addresses = append(ar.Addresses, strings.ReplaceAll(value, ";", " "))
		case "ORG":
			ar.Org = value
		case "TITLE":
			ar.Title = value
		case "URL":
			ar.URLs = append(ar.URLs, value)
		case "NOTE":
			ar.Note = value
		}
	}
	if len(ar.Names) == 0 && len(ar.PhoneNumbers) == 0 && len(ar.Emails) == 0 {
		return nil, false
	}
	return &ParsedResult{Kind: TypeAddressBook, DisplayResult: addressBookDisplay(ar), AddressBook: ar}, true
}

// addressBookDisplay builds a human-readable summary in the same
// name/org/title/address/phone/email/url/note order the reference address
// book result builds its display string.
func addressBookDisplay(ar *AddressBookResult) string {
	var parts []string
	parts = append(parts, ar.Names...)
	if ar.Title != "" {
		parts = append(parts, ar.Title)
	}
	if ar.Org != "" {
		parts = append(parts, ar.Org)
	}
	parts = append(parts, ar.Addresses...)
	parts = append(parts, ar.PhoneNumbers...)
	parts = append(parts, ar.Emails...)
	parts = append(parts, ar.URLs...)
	if ar.Note != "" {
		parts = append(parts, ar.Note)
	}
	return strings.Join(parts, "\n")
}
