package code

import (
	"fmt"
	"strings"
)

// Quote returns value as a string literal. Values containing a newline become
// a raw string with margin markers:
//
//	"""
//	|first
//	|second
//	""".trimMargin()
func Quote(value string) string {
	if strings.Contains(value, "\n") {
		return rawLiteral(value)
	}
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '$':
			b.WriteString(`\$`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func rawLiteral(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 32)
	b.WriteString("\"\"\"\n|")
	for i := 0; i < len(value); i++ {
		switch {
		case strings.HasPrefix(value[i:], `"""`):
			b.WriteString(`""${'"'}`)
			i += 2
		case value[i] == '\n':
			b.WriteString("\n|")
		case value[i] == '$':
			b.WriteString(`${'$'}`)
		default:
			b.WriteByte(value[i])
		}
	}
	if !strings.HasSuffix(value, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(`""".trimMargin()`)
	return b.String()
}
