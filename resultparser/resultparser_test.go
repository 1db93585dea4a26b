package resultparser

import (
	"testing"
	"time"

	"github.com/cdellis/barscan"
)

func TestExpandedProductParser(t *testing.T) {
	result := barscan.NewResult(
		"(01)09524000059109(21)12345678p901(10)1234567p(17)231120",
		nil, nil, barscan.FormatRSSExpanded,
	)

	pr := Parse(result)
	if pr.Kind != TypeExpandedProduct {
		t.Fatalf("Kind = %v, want TypeExpandedProduct", pr.Kind)
	}
	if pr.ExpandedProduct.ProductID != "09524000059109" {
		t.Errorf("ProductID = %q, want 09524000059109", pr.ExpandedProduct.ProductID)
	}
	if pr.ExpandedProduct.LotNumber != "1234567p" {
		t.Errorf("LotNumber = %q, want 1234567p", pr.ExpandedProduct.LotNumber)
	}
	if pr.ExpandedProduct.ExpirationDate != "231120" {
		t.Errorf("ExpirationDate = %q, want 231120", pr.ExpandedProduct.ExpirationDate)
	}
}

func TestExpandedProductParserRejectsOtherFormats(t *testing.T) {
	result := barscan.NewResult("(01)09524000059109", nil, nil, barscan.FormatQRCode)
	if _, ok := (expandedProductParser{}).Parse(result); ok {
		t.Error("expected no match for non-RSS-Expanded format")
	}
}

func TestCalendarParserDurationEnd(t *testing.T) {
	text := "BEGIN:VEVENT\r\nDTSTART:20080504T123456Z\r\nDURATION:P1DT2H3M4S\r\nEND:VEVENT"
	result := barscan.NewResult(text, nil, nil, barscan.FormatQRCode)

	pr := Parse(result)
	if pr.Kind != TypeCalendar {
		t.Fatalf("Kind = %v, want TypeCalendar", pr.Kind)
	}
	wantStart := time.Date(2008, 5, 4, 12, 34, 56, 0, time.UTC)
	wantEnd := time.Date(2008, 5, 5, 14, 38, 0, 0, time.UTC)
	if !pr.Calendar.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", pr.Calendar.Start, wantStart)
	}
	if !pr.Calendar.HasEnd || !pr.Calendar.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", pr.Calendar.End, wantEnd)
	}
}

func TestCalendarParserAllDayStart(t *testing.T) {
	text := "BEGIN:VEVENT\nSUMMARY:Offsite\nDTSTART:20240704\nEND:VEVENT"
	result := barscan.NewResult(text, nil, nil, barscan.FormatQRCode)
	pr := Parse(result)
	if pr.Kind != TypeCalendar {
		t.Fatalf("Kind = %v, want TypeCalendar", pr.Kind)
	}
	if !pr.Calendar.StartAllDay {
		t.Error("expected StartAllDay = true for an 8-digit DTSTART")
	}
	if pr.Calendar.HasEnd {
		t.Error("expected no end time when neither DTEND nor DURATION present")
	}
}

func TestVINParser(t *testing.T) {
	result := barscan.NewResult("1234", nil, nil, barscan.FormatCode39)
	if _, ok := (vinParser{}).Parse(result); ok {
		t.Error("expected no match for a too-short candidate")
	}
}

func TestVINParserFailsBadChecksum(t *testing.T) {
	result := barscan.NewResult("1HGCM82633A123456", nil, nil, barscan.FormatCode39)
	if _, ok := (vinParser{}).Parse(result); ok {
		t.Error("expected no match for a VIN with an incorrect check digit")
	}
}

func TestVINParserAcceptsValidVIN(t *testing.T) {
	// 1HGCM82673A123456 is ISO 3779 checksum-valid for the 16 fields held
	// fixed by TestVINParserFailsBadChecksum: weight position 9 (the check
	// digit itself) carries weight 0, so only the 9th character differs.
	result := barscan.NewResult("1HGCM82673A123456", nil, nil, barscan.FormatCode39)

	pr, ok := (vinParser{}).Parse(result)
	if !ok {
		t.Fatalf("expected a checksum-valid VIN to parse")
	}
	if pr.Kind != TypeVIN {
		t.Fatalf("Kind = %v, want TypeVIN", pr.Kind)
	}
	vin := pr.VIN
	if vin.WorldManufacturer != "1HG" {
		t.Errorf("WorldManufacturer = %q, want 1HG", vin.WorldManufacturer)
	}
	if vin.CountryCode != "US" {
		t.Errorf("CountryCode = %q, want US", vin.CountryCode)
	}
	if vin.ModelYear != 2003 {
		t.Errorf("ModelYear = %d, want 2003", vin.ModelYear)
	}
	if vin.PlantCode != 'A' {
		t.Errorf("PlantCode = %q, want A", vin.PlantCode)
	}
	if vin.SequentialNumber != "123456" {
		t.Errorf("SequentialNumber = %q, want 123456", vin.SequentialNumber)
	}
}

func TestVINParserRejectsNonCode39(t *testing.T) {
	result := barscan.NewResult("1FTCR14X1CPA12345", nil, nil, barscan.FormatQRCode)
	if _, ok := (vinParser{}).Parse(result); ok {
		t.Error("expected no match for non-Code-39 format")
	}
}

func TestMECARDParser(t *testing.T) {
	text := `MECARD:N:Doe,John;TEL:13035551212;EMAIL:jdoe\,jr@example.com;;`
	result := barscan.NewResult(text, nil, nil, barscan.FormatQRCode)

	pr := Parse(result)
	if pr.Kind != TypeAddressBook {
		t.Fatalf("Kind = %v, want TypeAddressBook", pr.Kind)
	}
	if len(pr.AddressBook.Names) != 1 || pr.AddressBook.Names[0] != "Doe,John" {
		t.Errorf("Names = %v, want [Doe,John]", pr.AddressBook.Names)
	}
	if len(pr.AddressBook.PhoneNumbers) != 1 || pr.AddressBook.PhoneNumbers[0] != "13035551212" {
		t.Errorf("PhoneNumbers = %v, want [13035551212]", pr.AddressBook.PhoneNumbers)
	}
	if len(pr.AddressBook.Emails) != 1 || pr.AddressBook.Emails[0] != "jdoe,jr@example.com" {
		t.Errorf("Emails = %v, want [jdoe,jr@example.com] (unescaped)", pr.AddressBook.Emails)
	}
}

func TestVCardParser(t *testing.T) {
	text := "BEGIN:VCARD\nVERSION:3.0\nFN:Jane Smith\nORG:Acme\nTEL;CELL:5551234\nEMAIL:jane@acme.test\nEND:VCARD"
	result := barscan.NewResult(text, nil, nil, barscan.FormatQRCode)

	pr := Parse(result)
	if pr.Kind != TypeAddressBook {
		t.Fatalf("Kind = %v, want TypeAddressBook", pr.Kind)
	}
	if pr.AddressBook.Org != "Acme" {
		t.Errorf("Org = %q, want Acme", pr.AddressBook.Org)
	}
	if len(pr.AddressBook.PhoneNumbers) != 1 || pr.AddressBook.PhoneNumbers[0] != "5551234" {
		t.Errorf("PhoneNumbers = %v, want [5551234] (parameterized property name still recognized)", pr.AddressBook.PhoneNumbers)
	}
}

func TestURIParserFallsBackToText(t *testing.T) {
	result := barscan.NewResult("HELLO WORLD", nil, nil, barscan.FormatQRCode)
	pr := Parse(result)
	if pr.Kind != TypeText {
		t.Errorf("Kind = %v, want TypeText", pr.Kind)
	}
	if pr.DisplayResult != "HELLO WORLD" {
		t.Errorf("DisplayResult = %q, want HELLO WORLD", pr.DisplayResult)
	}
}

func TestURIParserRecognizesScheme(t *testing.T) {
	result := barscan.NewResult("https://example.com/path", nil, nil, barscan.FormatQRCode)
	pr := Parse(result)
	if pr.Kind != TypeURI {
		t.Errorf("Kind = %v, want TypeURI", pr.Kind)
	}
}
