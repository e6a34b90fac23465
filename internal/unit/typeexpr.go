package unit

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"kpoet/internal/diag"
	"kpoet/internal/names"
)

// typeParser reads type expressions such as
//
//	kotlin.collections.Map<kotlin.String, out T>?
//	suspend a.B.(kotlin.Int) -> kotlin.Unit
//
// Leading lower-case segments form the namespace. A bare name is a type
// variable when one of that name is in scope, otherwise a class of the unit's
// own namespace.
type typeParser struct {
	src       string
	toks      []string
	pos       int
	namespace string
	vars      map[string]*names.TypeVariable
}

// ParseType parses src in the context of namespace with the given type
// variables in scope.
func ParseType(src, namespace string, vars map[string]*names.TypeVariable) (names.TypeName, error) {
	toks, err := tokenizeType(src)
	if err != nil {
		return nil, err
	}
	p := &typeParser{src: src, toks: toks, namespace: namespace, vars: vars}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, p.errorf("unexpected '%s'", p.toks[p.pos])
	}
	return t, nil
}

func tokenizeType(src string) ([]string, error) {
	var toks []string
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '-':
			if i+1 >= len(rs) || rs[i+1] != '>' {
				return nil, badType(src, "stray '-'")
			}
			toks = append(toks, "->")
			i += 2
		case strings.ContainsRune(".,<>()?*", r):
			toks = append(toks, string(r))
			i++
		case r == '`':
			j := i + 1
			for j < len(rs) && rs[j] != '`' {
				j++
			}
			if j >= len(rs) {
				return nil, badType(src, "unterminated backtick")
			}
			toks = append(toks, string(rs[i+1:j]))
			i = j + 1
		case r == '_' || unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (rs[j] == '_' || unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])) {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		default:
			return nil, badType(src, fmt.Sprintf("unexpected character %q", r))
		}
	}
	if len(toks) == 0 {
		return nil, badType(src, "empty type")
	}
	return toks, nil
}

func badType(src, reason string) error {
	return diag.Errorf(diag.UntBadType, "malformed type '%s': %s", src, reason)
}

func (p *typeParser) errorf(format string, args ...any) error {
	return badType(p.src, fmt.Sprintf(format, args...))
}

func (p *typeParser) peek(n int) string {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return ""
}

func (p *typeParser) accept(tok string) bool {
	if p.peek(0) == tok {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		if p.pos >= len(p.toks) {
			return p.errorf("expected '%s' at end", tok)
		}
		return p.errorf("expected '%s', found '%s'", tok, p.peek(0))
	}
	return nil
}

func isWord(tok string) bool {
	return tok != "" && names.IsIdent(tok)
}

func (p *typeParser) parseType() (names.TypeName, error) {
	suspend := false
	if p.peek(0) == "suspend" && (p.peek(1) == "(" || isWord(p.peek(1))) {
		suspend = true
		p.pos++
	}

	var t names.TypeName
	if p.peek(0) == "(" {
		list, err := p.parseList("(", ")", p.parseType)
		if err != nil {
			return nil, err
		}
		switch {
		case p.accept("->"):
			ret, err := p.parseType()
			if err != nil {
				return nil, err
			}
			t = &names.Lambda{Params: list, Return: ret, Suspend: suspend}
		case len(list) == 1 && !suspend:
			t = list[0]
		default:
			return nil, p.errorf("parameter list without '->'")
		}
	} else {
		named, err := p.parseNamed()
		if err != nil {
			return nil, err
		}
		t = named
		if p.peek(0) == "." && p.peek(1) == "(" {
			p.pos++
			params, err := p.parseList("(", ")", p.parseType)
			if err != nil {
				return nil, err
			}
			if err := p.expect("->"); err != nil {
				return nil, err
			}
			ret, err := p.parseType()
			if err != nil {
				return nil, err
			}
			t = &names.Lambda{Receiver: named, Params: params, Return: ret, Suspend: suspend}
		} else if suspend {
			return nil, p.errorf("suspend applies to function types only")
		}
	}

	if p.accept("?") {
		t = names.NullableOf(t)
	}
	return t, nil
}

func (p *typeParser) parseList(open, closing string, item func() (names.TypeName, error)) ([]names.TypeName, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}
	var out []names.TypeName
	if p.accept(closing) {
		return out, nil
	}
	for {
		t, err := item()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if p.accept(closing) {
			return out, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *typeParser) parseArgument() (names.TypeName, error) {
	switch {
	case p.accept("*"):
		return names.Star, nil
	case p.peek(0) == "out" && (isWord(p.peek(1)) || p.peek(1) == "("):
		p.pos++
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return names.ProducerOf(t), nil
	case p.peek(0) == "in" && (isWord(p.peek(1)) || p.peek(1) == "("):
		p.pos++
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return names.ConsumerOf(t), nil
	}
	return p.parseType()
}

// parseNamed reads a possibly qualified, possibly parameterized class name
// or a type variable.
func (p *typeParser) parseNamed() (names.TypeName, error) {
	var ns []string
	for {
		tok := p.peek(0)
		if !isWord(tok) {
			if tok == "" {
				return nil, p.errorf("unexpected end")
			}
			return nil, p.errorf("unexpected '%s'", tok)
		}
		if startsLower(tok) && p.peek(1) == "." && isWord(p.peek(2)) {
			ns = append(ns, tok)
			p.pos += 2
			continue
		}
		break
	}

	first := p.peek(0)
	p.pos++
	qualified := p.peek(0) == "." && isWord(p.peek(1))
	if len(ns) == 0 && !qualified && p.peek(0) != "<" {
		if v, ok := p.vars[first]; ok {
			return v, nil
		}
	}

	namespace := strings.Join(ns, ".")
	if len(ns) == 0 {
		namespace = p.namespace
	}
	cls, err := names.NewClassName(namespace, first)
	if err != nil {
		return nil, p.errorf("%v", err)
	}
	cur, err := p.withArgs(cls, nil)
	if err != nil {
		return nil, err
	}

	for p.peek(0) == "." && isWord(p.peek(1)) {
		p.pos++
		seg := p.peek(0)
		p.pos++
		if cls, err = cls.Nested(seg); err != nil {
			return nil, p.errorf("%v", err)
		}
		outer, _ := cur.(*names.Parameterized)
		if cur, err = p.withArgs(cls, outer); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// withArgs applies an optional argument list to cls. A nested class of a
// parameterized outer class keeps the outer arguments.
func (p *typeParser) withArgs(cls *names.ClassName, outer *names.Parameterized) (names.TypeName, error) {
	var args []names.TypeName
	if p.peek(0) == "<" {
		var err error
		if args, err = p.parseList("<", ">", p.parseArgument); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, p.errorf("empty type argument list")
		}
	}
	switch {
	case outer != nil:
		return &names.Parameterized{Raw: cls, Args: args, Outer: outer}, nil
	case len(args) > 0:
		return names.Parameterize(cls, args...), nil
	default:
		return cls, nil
	}
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}
