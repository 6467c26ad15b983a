// Package match implements the small wildcard matcher used for tool
// allow/deny policies. Patterns are plain names with optional "*"
// wildcards ("orient_*", "*_delete", "*secret*"); "*" alone matches
// everything.
package match

import "strings"

// Pattern is a compiled wildcard pattern.
type Pattern struct {
	raw           string
	segments      []string
	anchoredStart bool
	anchoredEnd   bool
}

// Compile parses a wildcard pattern. Compiling never fails: a pattern
// without wildcards is an exact-match pattern.
func Compile(pattern string) Pattern {
	return Pattern{
		raw:           pattern,
		segments:      splitSegments(pattern),
		anchoredStart: !strings.HasPrefix(pattern, "*"),
		anchoredEnd:   !strings.HasSuffix(pattern, "*"),
	}
}

func splitSegments(pattern string) []string {
	var segments []string
	for _, part := range strings.Split(pattern, "*") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// String returns the original pattern text.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether s matches the pattern. Literal segments must
// appear in order; anchored ends pin the first and last segments.
func (p Pattern) Match(s string) bool {
	if len(p.segments) == 0 {
		// Pure wildcard ("*", "**", ...) or the empty pattern.
		return p.raw != "" || s == ""
	}

	rest := s
	last := len(p.segments) - 1
	for i, segment := range p.segments {
		// An anchored final segment must close out the string, so it
		// matches by suffix rather than first occurrence.
		if i == last && p.anchoredEnd {
			if !strings.HasSuffix(rest, segment) {
				return false
			}
			if i == 0 && p.anchoredStart && len(rest) != len(segment) {
				return false
			}
			return true
		}
		idx := strings.Index(rest, segment)
		if idx < 0 {
			return false
		}
		if i == 0 && p.anchoredStart && idx != 0 {
			return false
		}
		rest = rest[idx+len(segment):]
	}
	return true
}

// List is an ordered set of compiled patterns.
type List []Pattern

// CompileList compiles each pattern in order.
func CompileList(patterns []string) List {
	list := make(List, 0, len(patterns))
	for _, pattern := range patterns {
		list = append(list, Compile(pattern))
	}
	return list
}

// Match reports whether any pattern in the list matches s.
func (l List) Match(s string) bool {
	for _, pattern := range l {
		if pattern.Match(s) {
			return true
		}
	}
	return false
}

// Allowed applies allow/deny semantics: deny patterns win over allow
// patterns, and an empty allow list allows everything not denied.
func Allowed(name string, allow, deny List) bool {
	if deny.Match(name) {
		return false
	}
	if len(allow) == 0 {
		return true
	}
	return allow.Match(name)
}
