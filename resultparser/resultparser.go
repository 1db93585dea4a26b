// Package resultparser interprets the raw text of a decoded barcode as one
// of a handful of well-known payload shapes: a GS1 expanded product code, a
// calendar event, a vehicle identification number, or a URI. It never
// changes what a Reader returns; callers opt in by calling Parse on a
// barscan.Result once decoding has already produced text.
package resultparser

import "github.com/cdellis/barscan"

// Type identifies which kind of structured payload a ParsedResult holds.
type Type int

const (
	TypeText Type = iota
	TypeURI
	TypeCalendar
	TypeExpandedProduct
	TypeVIN
	TypeAddressBook
)

// ParsedResult is the outcome of interpreting a Result's text. Exactly one
// of the Calendar, ExpandedProduct, VIN, or AddressBook fields is
// populated, matching Kind; TypeText and TypeURI results carry only
// DisplayResult.
type ParsedResult struct {
	Kind            Type
	DisplayResult   string
	Calendar        *CalendarResult
	ExpandedProduct *ExpandedProductResult
	VIN             *VINResult
	AddressBook     *AddressBookResult
}

// Parser recognizes one payload shape from a barcode's decoded text.
type Parser interface {
	Parse(result *barscan.Result) (*ParsedResult, bool)
}

// parsers is tried in order; the first match wins. Order matters only in
// that a more specific grammar (VIN, expanded product) should be tried
// before the catch-all URI/text parsers.
var parsers = []Parser{
	expandedProductParser{},
	vinParser{},
	addressBookParser{},
	calendarParser{},
	uriParser{},
}

// Parse runs every registered Parser over result.Text and returns the first
// match. If nothing recognizes the payload, it falls back to TypeText with
// DisplayResult set to the raw text.
func Parse(result *barscan.Result) *ParsedResult {
	for _, p := range parsers {
		if pr, ok := p.Parse(result); ok {
			return pr
		}
	}
	return &ParsedResult{Kind: TypeText, DisplayResult: result.Text}
}
