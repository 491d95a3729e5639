package autosearch

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchMethod selects how Matcher.Matches compares a pattern to a
// candidate string (§3 AutoSearch Item: matcher).
type MatchMethod int

const (
	MatchPartial MatchMethod = iota
	MatchExact
	MatchRegex
	MatchWildcard
)

// Matcher is the {method, pattern} pair an item matches candidates
// against. The zero value is a partial matcher with an empty pattern,
// which matches every candidate and reports IsEmpty(); use NewMatcher to
// build a matcher with a pattern.
type Matcher struct {
	Method  MatchMethod
	Pattern string

	re *regexp.Regexp // compiled lazily for MatchRegex
}

// NewMatcher compiles a Matcher, defaulting Pattern to fallback when
// pattern is empty (§3: "pattern defaults to search_string if
// unspecified").
func NewMatcher(method MatchMethod, pattern, fallback string) (Matcher, error) {
	if pattern == "" {
		pattern = fallback
	}
	m := Matcher{Method: method, Pattern: pattern}
	if method == MatchRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Matcher{}, fmt.Errorf("autosearch: invalid regex pattern %q: %w", pattern, err)
		}
		m.re = re
	}
	return m, nil
}

// IsEmpty reports whether the matcher has no pattern to match against,
// used by user-nick matching where an empty user_matcher matches anyone.
func (m Matcher) IsEmpty() bool {
	return m.Pattern == ""
}

// Matches reports whether candidate satisfies the matcher.
func (m Matcher) Matches(candidate string) bool {
	switch m.Method {
	case MatchExact:
		return strings.EqualFold(candidate, m.Pattern)
	case MatchRegex:
		if m.re == nil {
			re, err := regexp.Compile(m.Pattern)
			if err != nil {
				return false
			}
			m.re = re
		}
		return m.re.MatchString(candidate)
	case MatchWildcard:
		return wildcardMatch(strings.ToLower(m.Pattern), strings.ToLower(candidate))
	default: // MatchPartial
		return strings.Contains(strings.ToLower(candidate), strings.ToLower(m.Pattern))
	}
}

// wildcardMatch implements glob-style matching with '*' (any run) and '?'
// (single char), case already normalized by the caller.
func wildcardMatch(pattern, s string) bool {
	// Standard DP-free two-pointer glob match with backtracking via
	// remembered star position, same algorithm shells use for filenames.
	var sIdx, pIdx, starIdx, starMatch int
	starIdx = -1
	for sIdx < len(s) {
		if pIdx < len(pattern) && (pattern[pIdx] == '?' || pattern[pIdx] == s[sIdx]) {
			sIdx++
			pIdx++
			continue
		}
		if pIdx < len(pattern) && pattern[pIdx] == '*' {
			starIdx = pIdx
			starMatch = sIdx
			pIdx++
			continue
		}
		if starIdx != -1 {
			pIdx = starIdx + 1
			starMatch++
			sIdx = starMatch
			continue
		}
		return false
	}
	for pIdx < len(pattern) && pattern[pIdx] == '*' {
		pIdx++
	}
	return pIdx == len(pattern)
}
