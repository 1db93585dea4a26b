package resultparser

import (
	"regexp"
	"strings"

	"github.com/cdellis/barscan"
)

var uriSchemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]{1,32}:`)

type uriParser struct{}

// Parse recognizes a well-formed absolute URI: an explicit "scheme:" prefix,
// or a bare "www." / "http" host that a reader would plausibly follow. It is
// intentionally permissive — full RFC 3986 validation is out of scope — and
// exists mainly as a fallback ahead of the bare-text case.
func (uriParser) Parse(result *barscan.Result) (*ParsedResult, bool) {
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, false
	}
	if uriSchemePattern.MatchString(text) || strings.HasPrefix(text, "www.") {
		if strings.Contains(text, " ") {
			return nil, false
		}
		return &ParsedResult{Kind: TypeURI, DisplayResult: text}, true
	}
	return nil, false
}
