package emit

import (
	"strings"

	"kpoet/internal/names"
)

var keywords = map[string]bool{
	"as": true, "break": true, "class": true, "continue": true, "do": true,
	"else": true, "false": true, "for": true, "fun": true, "if": true,
	"in": true, "interface": true, "is": true, "null": true, "object": true,
	"package": true, "return": true, "super": true, "this": true, "throw": true,
	"true": true, "try": true, "typealias": true, "typeof": true, "val": true,
	"var": true, "when": true, "while": true,
}

// escapeName wraps reserved words and non-identifiers in backticks.
func escapeName(s string) string {
	if s == "" || (!keywords[s] && names.IsIdent(s)) {
		return s
	}
	if strings.HasPrefix(s, "`") {
		return s
	}
	return "`" + s + "`"
}

// escapeSegments escapes every dot-separated segment of s.
func escapeSegments(s string) string {
	segs := strings.Split(s, ".")
	for i, seg := range segs {
		segs[i] = escapeName(seg)
	}
	return strings.Join(segs, ".")
}
