package county

import (
	"regexp"
	"strings"
)

// Confidence describes how an address match was obtained.
type Confidence int

const (
	// MatchNone means no county could be extracted.
	MatchNone Confidence = iota
	// MatchExact means the address contained the literal
	// ", <Name> County" pattern.
	MatchExact
	// MatchSubstring means a county name appeared somewhere in the
	// address text. A city or street name that contains a county name
	// will mis-match, so callers should treat this tier as best-effort.
	MatchSubstring
)

// countyPattern matches ", <Name> County" with an optional trailing
// comma, e.g. "123 Main St, Punta Gorda, Charlotte County, FL".
var countyPattern = regexp.MustCompile(`(?i),\s*([A-Za-z .-]+?)\s+County\b`)

// FromAddress extracts a county from free-text address input. The exact
// ", X County" pattern is tried first; otherwise every known county
// name is scanned for as a substring.
func FromAddress(address string) (Reference, Confidence) {
	if strings.TrimSpace(address) == "" {
		return Reference{}, MatchNone
	}

	if m := countyPattern.FindStringSubmatch(address); m != nil {
		if ref, ok := ByName(strings.TrimSpace(m[1])); ok {
			return ref, MatchExact
		}
	}

	upper := strings.ToUpper(address)
	for _, ref := range All() {
		if strings.Contains(upper, strings.ToUpper(ref.Name)) {
			return ref, MatchSubstring
		}
	}

	return Reference{}, MatchNone
}
