package decl

import (
	"fmt"
	"slices"

	"kpoet/internal/diag"
)

// Modifier is a declaration modifier. Declaration order is the canonical
// emission order.
type Modifier uint8

const (
	Public Modifier = iota
	Protected
	Private
	Internal
	Expect
	Actual
	Final
	Open
	Abstract
	Sealed
	Const
	External
	Override
	Lateinit
	Tailrec
	Vararg
	Suspend
	Inner
	Enum
	AnnotationModifier
	Value
	Fun
	Companion
	Inline
	Noinline
	Crossinline
	Reified
	Infix
	Operator
	Data
)

var modifierKeywords = [...]string{
	Public:             "public",
	Protected:          "protected",
	Private:            "private",
	Internal:           "internal",
	Expect:             "expect",
	Actual:             "actual",
	Final:              "final",
	Open:               "open",
	Abstract:           "abstract",
	Sealed:             "sealed",
	Const:              "const",
	External:           "external",
	Override:           "override",
	Lateinit:           "lateinit",
	Tailrec:            "tailrec",
	Vararg:             "vararg",
	Suspend:            "suspend",
	Inner:              "inner",
	Enum:               "enum",
	AnnotationModifier: "annotation",
	Value:              "value",
	Fun:                "fun",
	Companion:          "companion",
	Inline:             "inline",
	Noinline:           "noinline",
	Crossinline:        "crossinline",
	Reified:            "reified",
	Infix:              "infix",
	Operator:           "operator",
	Data:               "data",
}

func (m Modifier) String() string {
	if int(m) < len(modifierKeywords) {
		return modifierKeywords[m]
	}
	return fmt.Sprintf("Modifier(%d)", m)
}

// ParseModifier maps a keyword to its modifier.
func ParseModifier(keyword string) (Modifier, error) {
	for m, kw := range modifierKeywords {
		if kw == keyword {
			return Modifier(m), nil
		}
	}
	return 0, diag.Errorf(diag.UntInvalid, "unknown modifier '%s'", keyword)
}

// Canonical returns mods deduplicated and in canonical order.
func Canonical(mods []Modifier) []Modifier {
	out := slices.Clone(mods)
	slices.Sort(out)
	return slices.Compact(out)
}

// Has reports whether mods contains m.
func Has(mods []Modifier, m Modifier) bool {
	return slices.Contains(mods, m)
}
