package pathfilter

import "strings"

// DefaultMinLength is the minimum path length accepted by Default rules.
// Anything shorter is almost always a bare date stub or a spam root path.
const DefaultMinLength = 16

// DefaultSkipSubstrings lists path fragments that mark archive and listing
// pages rather than content.
var DefaultSkipSubstrings = []string{"/category/", "/page/", "/tag/"}

// queryMarkers are the characters that betray a tracking or query-string URL.
const queryMarkers = "?&"

// Rules holds the noise-filtering policy for page paths.
// The zero value only rejects query-string paths; use Default for the
// standard policy.
type Rules struct {
	// MinLength rejects paths shorter than this many characters.
	// Zero disables the length check.
	MinLength int

	// SkipSubstrings rejects any path containing one of these fragments.
	SkipSubstrings []string

	// AllowQueryStrings keeps paths containing '?' or '&'. These are almost
	// always the same page counted once per tracking parameter, so the
	// default is to drop them.
	AllowQueryStrings bool
}

// Default returns the standard noise-filtering policy.
func Default() Rules {
	return Rules{
		MinLength:      DefaultMinLength,
		SkipSubstrings: DefaultSkipSubstrings,
	}
}

// Valid reports whether path should be included in trend analysis.
func (r Rules) Valid(path string) bool {
	if !r.AllowQueryStrings && strings.ContainsAny(path, queryMarkers) {
		return false
	}
	for _, frag := range r.SkipSubstrings {
		if strings.Contains(path, frag) {
			return false
		}
	}
	return len(path) >= r.MinLength
}
