package resultparser

import (
	"strings"

	"github.com/cdellis/barscan"
)

// ExpandedProductResult holds the GS1 application identifiers recognized in
// an RSS Expanded ("expanded product") barcode's text.
type ExpandedProductResult struct {
	RawText          string
	ProductID        string
	SSCC             string
	LotNumber        string
	ProductionDate   string
	PackagingDate    string
	BestBeforeDate   string
	ExpirationDate   string
	Weight           string
	WeightType       string
	WeightIncrement  string
	Price            string
	PriceIncrement   string
	PriceCurrency    string
	UncommonAIs      map[string]string
}

const (
	weightKilogram = "KG"
	weightPound    = "LB"
)

type expandedProductParser struct{}

// Parse implements Parser. It only recognizes barscan.FormatRSSExpanded
// results and walks the text as a run of "(AI)value" GS1 element strings,
// matching the common application identifiers the reference grammar names
// explicitly and stashing anything else in UncommonAIs.
func (expandedProductParser) Parse(result *barscan.Result) (*ParsedResult, bool) {
	if result.Format != barscan.FormatRSSExpanded {
		return nil, false
	}
	rawText := result.Text
	pr := &ExpandedProductResult{
		RawText:     rawText,
		UncommonAIs: map[string]string{},
	}

	i := 0
	for i < len(rawText) {
		ai, ok := findAIValue(i, rawText)
		if !ok {
			return nil, false
		}
		i += len(ai) + 2
		value := findValue(i, rawText)
		i += len(value)

		switch {
		case ai == "00":
			pr.SSCC = value
		case ai == "01":
			pr.ProductID = value
		case ai == "10":
			pr.LotNumber = value
		case ai == "11":
			pr.ProductionDate = value
		case ai == "13":
			pr.PackagingDate = value
		case ai == "15":
			pr.BestBeforeDate = value
		case ai == "17":
			pr.ExpirationDate = value
		case len(ai) == 4 && ai[:3] == "310":
			pr.Weight = value
			pr.WeightType = weightKilogram
			pr.WeightIncrement = ai[3:]
		case len(ai) == 4 && ai[:3] == "320":
			pr.Weight = value
			pr.WeightType = weightPound
			pr.WeightIncrement = ai[3:]
		case len(ai) == 4 && (ai[:3] == "392" || ai[:3] == "393"):
			pr.Price = value
			pr.PriceIncrement = ai[3:]
			if ai[:3] == "393" && len(value) > 3 {
				pr.PriceCurrency = value[:3]
				pr.Price = value[3:]
			}
		default:
			pr.UncommonAIs[ai] = value
		}
	}

	return &ParsedResult{
		Kind:            TypeExpandedProduct,
		DisplayResult:   rawText,
		ExpandedProduct: pr,
	}, true
}

// findAIValue reads the application identifier starting at a '(' in text at
// position i, returning the digit string between the parentheses. It
// mirrors the reference grammar: the first character must be '(', every
// character up to the matching ')' must be a digit, and a malformed or
// unterminated identifier is reported as no match.
func findAIValue(i int, text string) (string, bool) {
	if i >= len(text) || text[i] != '(' {
		return "", false
	}
	var sb strings.Builder
	for j := i + 1; j < len(text); j++ {
		c := text[j]
		if c == ')' {
			return sb.String(), true
		}
		if c < '0' || c > '9' {
			return "", false
		}
		sb.WriteByte(c)
	}
	return "", false
}

// findValue reads an AI's value starting at position i, stopping just
// before the next well-formed "(AI)" element string so that a literal '('
// inside a value (not followed by digits and ')') is kept as data.
func findValue(i int, text string) string {
	var sb strings.Builder
	rest := text[i:]
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		if c == '(' {
			if _, ok := findAIValue(j, rest); ok {
				break
			}
			sb.WriteByte('(')
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
