// Package code parses format strings with typed directives into immutable
// code fragments.
//
// Directives:
//
//	%L  literal            %N  name
//	%S  escaped string     %T  type reference
//	%%  percent sign       %W  soft-wrap space
//	%>  indent             %<  unindent
//	%[  statement begin    %]  statement end
//
// Argument-bearing directives take the next argument (%L), an explicit
// 1-based index (%2L) or, in named mode, a map key (%name:L).
package code

import (
	"fmt"
	"strings"

	"kpoet/internal/names"
)

// PartKind identifies one element of a fragment.
type PartKind uint8

const (
	PartText PartKind = iota
	PartLiteral
	PartName
	PartString
	PartType
	PartWrap
	PartIndent
	PartUnindent
	PartStatementBegin
	PartStatementEnd
)

// Part is literal text or a directive. Argument-bearing parts carry their
// coerced argument: Text for names, Arg for literals, Str for strings and
// Type for type references.
type Part struct {
	Kind PartKind
	Text string
	Arg  any
	Str  *string
	Type names.TypeName
}

// Fragment is an immutable sequence of parts. The zero value is empty.
type Fragment struct {
	parts []Part
}

// Parts returns the parts of f. The slice must not be modified.
func (f Fragment) Parts() []Part {
	return f.parts
}

func (f Fragment) IsEmpty() bool {
	return len(f.parts) == 0
}

// String renders f without import resolution or wrapping.
func (f Fragment) String() string {
	var b strings.Builder
	for _, p := range f.parts {
		switch p.Kind {
		case PartText, PartName:
			b.WriteString(p.Text)
		case PartLiteral:
			b.WriteString(literalString(p.Arg))
		case PartString:
			if p.Str == nil {
				b.WriteString("null")
			} else {
				b.WriteString(Quote(*p.Str))
			}
		case PartType:
			b.WriteString(p.Type.String())
		case PartWrap:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func literalString(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case Fragment:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func directiveKind(c byte) (PartKind, bool) {
	switch c {
	case 'L':
		return PartLiteral, true
	case 'N':
		return PartName, true
	case 'S':
		return PartString, true
	case 'T':
		return PartType, true
	case 'W':
		return PartWrap, true
	case '>':
		return PartIndent, true
	case '<':
		return PartUnindent, true
	case '[':
		return PartStatementBegin, true
	case ']':
		return PartStatementEnd, true
	}
	return 0, false
}

func isNoArgDirective(c byte) bool {
	switch c {
	case '%', 'W', '>', '<', '[', ']':
		return true
	}
	return false
}
