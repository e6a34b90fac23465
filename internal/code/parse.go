package code

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"kpoet/internal/diag"
	"kpoet/internal/names"
)

// Identifier is implemented by declarations that can be referenced with %N.
type Identifier interface {
	Identifier() string
}

// TypeNamer is implemented by values that stand for a type reference.
type TypeNamer interface {
	TypeName() names.TypeName
}

var lowercaseArg = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)

// Of parses format in positional mode. Bare directives consume arguments left
// to right; indexed directives (%2L) consume the given 1-based argument.
func Of(format string, args ...any) (Fragment, error) {
	parts, err := appendPositional(nil, format, args)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{parts: parts}, nil
}

// MustOf is like Of but panics on a malformed format.
func MustOf(format string, args ...any) Fragment {
	f, err := Of(format, args...)
	if err != nil {
		panic(err)
	}
	return f
}

// Named parses format in named mode: every directive is %name:X and every key
// of args must be referenced at least once.
func Named(format string, args map[string]any) (Fragment, error) {
	parts, err := appendNamed(nil, format, args)
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{parts: parts}, nil
}

func appendPositional(parts []Part, format string, args []any) ([]Part, error) {
	hasRelative := false
	hasIndexed := false
	relative := 0
	used := make([]int, len(args))

	for p := 0; p < len(format); {
		if format[p] != '%' {
			next := strings.IndexByte(format[p+1:], '%')
			if next < 0 {
				next = len(format)
			} else {
				next += p + 1
			}
			parts = appendText(parts, format[p:next])
			p = next
			continue
		}

		p++ // '%'
		indexStart := p
		var c byte
		for {
			if p >= len(format) {
				return nil, diag.Errorf(diag.TplDangling, "dangling format characters in '%s'", format)
			}
			c = format[p]
			p++
			if c < '0' || c > '9' {
				break
			}
		}
		indexEnd := p - 1

		if isNoArgDirective(c) {
			if indexStart != indexEnd {
				return nil, diag.Errorf(diag.TplIndexedNoArg, "%%%%, %%W, %%>, %%<, %%[, and %%] may not have an index")
			}
			parts = appendControl(parts, c)
			continue
		}

		var index int
		if indexStart < indexEnd {
			directive := format[indexStart-1 : indexEnd+1]
			n, err := parseIndex(format[indexStart:indexEnd])
			if err != nil || n < 1 || n > len(args) {
				return nil, diag.Errorf(diag.TplIndexOutOfRange,
					"index %s for '%s' not in range (received %d arguments)",
					format[indexStart:indexEnd], directive, len(args))
			}
			index = n - 1
			hasIndexed = true
			used[index]++
		} else {
			index = relative
			hasRelative = true
			relative++
			if index >= len(args) {
				return nil, diag.Errorf(diag.TplIndexOutOfRange,
					"index %d for '%s' not in range (received %d arguments)",
					index+1, format[indexStart-1:indexEnd+1], len(args))
			}
		}

		if hasIndexed && hasRelative {
			return nil, diag.Errorf(diag.TplMixedIndexing, "cannot mix indexed and positional parameters")
		}

		part, err := argumentPart(format, c, args[index])
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	switch {
	case hasRelative:
		if relative < len(args) {
			return nil, diag.Errorf(diag.TplUnusedArgument,
				"unused arguments: expected %d, received %d", relative, len(args))
		}
	case hasIndexed:
		var unused []string
		for i, n := range used {
			if n == 0 {
				unused = append(unused, "%"+strconv.Itoa(i+1))
			}
		}
		if len(unused) > 0 {
			plural := ""
			if len(unused) > 1 {
				plural = "s"
			}
			return nil, diag.Errorf(diag.TplUnusedArgument,
				"unused argument%s: %s", plural, strings.Join(unused, ", "))
		}
	case len(args) > 0:
		return nil, diag.Errorf(diag.TplUnusedArgument,
			"unused arguments: expected 0, received %d", len(args))
	}
	return parts, nil
}

func parseIndex(digits string) (int, error) {
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](n)
}

func appendNamed(parts []Part, format string, args map[string]any) ([]Part, error) {
	keys := slices.Sorted(maps.Keys(args))
	for _, k := range keys {
		if !lowercaseArg.MatchString(k) {
			return nil, diag.Errorf(diag.TplNamedCase, "argument '%s' must start with a lowercase character", k)
		}
	}
	referenced := make(map[string]bool, len(args))

	for p := 0; p < len(format); {
		next := strings.IndexByte(format[p:], '%')
		if next < 0 {
			parts = appendText(parts, format[p:])
			break
		}
		if next > 0 {
			parts = appendText(parts, format[p:p+next])
			p += next
		}

		if name, c, width, ok := scanNamedDirective(format[p:]); ok {
			arg, present := args[name]
			if !present {
				return nil, diag.Errorf(diag.TplMissingNamed, "missing named argument for %%%s", name)
			}
			referenced[name] = true
			if isNoArgDirective(c) {
				return nil, diag.Errorf(diag.TplIndexedNoArg, "%%%%, %%W, %%>, %%<, %%[, and %%] may not have an index")
			}
			part, err := argumentPart(format, c, arg)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			p += width
			continue
		}

		if p+1 >= len(format) {
			return nil, diag.Errorf(diag.TplDangling, "dangling %% at end")
		}
		c := format[p+1]
		if !isNoArgDirective(c) {
			return nil, diag.Errorf(diag.TplUnknownDirective, "unknown format %%%c at %d in '%s'", c, p+1, format)
		}
		parts = appendControl(parts, c)
		p += 2
	}

	var unused []string
	for _, k := range keys {
		if !referenced[k] {
			unused = append(unused, k)
		}
	}
	switch len(unused) {
	case 0:
		return parts, nil
	case 1:
		return nil, diag.Errorf(diag.TplUnusedArgument, "unused named argument: %s", unused[0])
	default:
		return nil, diag.Errorf(diag.TplUnusedArgument, "unused named arguments: %s", strings.Join(unused, ", "))
	}
}

// scanNamedDirective matches "%name:X" at the start of s.
func scanNamedDirective(s string) (name string, c byte, width int, ok bool) {
	i := 1
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == 1 || i+1 >= len(s) || s[i] != ':' {
		return "", 0, 0, false
	}
	return s[1:i], s[i+1], i + 2, true
}

func isNameByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func appendText(parts []Part, text string) []Part {
	if text == "" {
		return parts
	}
	if n := len(parts); n > 0 && parts[n-1].Kind == PartText {
		parts[n-1].Text += text
		return parts
	}
	return append(parts, Part{Kind: PartText, Text: text})
}

func appendControl(parts []Part, c byte) []Part {
	if c == '%' {
		return appendText(parts, "%")
	}
	kind, _ := directiveKind(c)
	return append(parts, Part{Kind: kind})
}

func argumentPart(format string, c byte, arg any) (Part, error) {
	switch c {
	case 'L':
		return Part{Kind: PartLiteral, Arg: arg}, nil
	case 'N':
		name, err := argToName(arg)
		if err != nil {
			return Part{}, err
		}
		return Part{Kind: PartName, Text: name}, nil
	case 'S':
		s, err := argToString(arg)
		if err != nil {
			return Part{}, err
		}
		return Part{Kind: PartString, Str: s}, nil
	case 'T':
		t, err := argToType(arg)
		if err != nil {
			return Part{}, err
		}
		return Part{Kind: PartType, Type: t}, nil
	default:
		return Part{}, diag.Errorf(diag.TplUnknownDirective, "invalid format string: '%s'", format)
	}
}

func argToName(arg any) (string, error) {
	switch v := arg.(type) {
	case string:
		return v, nil
	case Identifier:
		return v.Identifier(), nil
	}
	return "", diag.Errorf(diag.TplBadArgument, "expected name but was %v", arg)
}

func argToString(arg any) (*string, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case string:
		return &v, nil
	case *string:
		return v, nil
	case fmt.Stringer:
		s := v.String()
		return &s, nil
	}
	return nil, diag.Errorf(diag.TplBadArgument, "expected string but was %v", arg)
}

func argToType(arg any) (names.TypeName, error) {
	switch v := arg.(type) {
	case names.TypeName:
		return v, nil
	case TypeNamer:
		return v.TypeName(), nil
	}
	return nil, diag.Errorf(diag.TplBadArgument, "expected type but was %v", arg)
}
