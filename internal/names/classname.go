package names

import (
	"maps"
	"strings"
	"unicode"

	"kpoet/internal/diag"
)

// ClassName is a qualified symbol: a dotted namespace plus one or more nested
// simple names, e.g. namespace "a.b" with simple names ["Outer", "Inner"].
// Tags carry caller metadata and are not part of the identity.
type ClassName struct {
	namespace string
	simple    []string
	nullable  bool
	tags      map[string]string
}

// NewClassName validates every segment and returns the class name.
func NewClassName(namespace string, simple ...string) (*ClassName, error) {
	segments, err := splitNamespace(namespace)
	if err != nil {
		return nil, err
	}
	if len(simple) == 0 {
		return nil, diag.Errorf(diag.SymMalformedName, "class name '%s' requires at least one simple name", namespace)
	}
	ids := make([]string, len(simple))
	for i, s := range simple {
		id, err := Ident(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return &ClassName{namespace: strings.Join(segments, "."), simple: ids}, nil
}

// MustClassName is like NewClassName but panics on invalid input. It is meant
// for package-level declarations of well-known names.
func MustClassName(namespace string, simple ...string) *ClassName {
	c, err := NewClassName(namespace, simple...)
	if err != nil {
		panic(err)
	}
	return c
}

// BestGuess parses a dotted name, treating the first segment that starts with
// an upper-case letter as the outermost simple name.
func BestGuess(qualified string) (*ClassName, error) {
	parts := strings.Split(qualified, ".")
	for i, p := range parts {
		if p == "" {
			break
		}
		if r := []rune(p)[0]; unicode.IsUpper(r) {
			return NewClassName(strings.Join(parts[:i], "."), parts[i:]...)
		}
	}
	return nil, diag.Errorf(diag.SymMalformedName, "couldn't make a guess for %s", qualified)
}

func (*ClassName) typeName() {}

func (*ClassName) Kind() Kind { return KindClass }

func (c *ClassName) Namespace() string { return c.namespace }

// SimpleNames returns a copy of the nested simple names, outermost first.
func (c *ClassName) SimpleNames() []string {
	return append([]string(nil), c.simple...)
}

// SimpleName returns the innermost simple name.
func (c *ClassName) SimpleName() string {
	return c.simple[len(c.simple)-1]
}

func (c *ClassName) IsNullable() bool { return c.nullable }

// CanonicalName is the dotted form without nullability, e.g. "a.b.Outer.Inner".
func (c *ClassName) CanonicalName() string {
	if c.namespace == "" {
		return strings.Join(c.simple, ".")
	}
	return c.namespace + "." + strings.Join(c.simple, ".")
}

func (c *ClassName) String() string {
	if c.nullable {
		return c.CanonicalName() + "?"
	}
	return c.CanonicalName()
}

// Enclosing returns the class that directly contains c, or nil for a
// top-level class.
func (c *ClassName) Enclosing() *ClassName {
	if len(c.simple) == 1 {
		return nil
	}
	return &ClassName{namespace: c.namespace, simple: c.simple[:len(c.simple)-1]}
}

// TopLevel returns the outermost class containing c.
func (c *ClassName) TopLevel() *ClassName {
	return &ClassName{namespace: c.namespace, simple: c.simple[:1]}
}

// Nested returns the class name of a member type of c.
func (c *ClassName) Nested(name string) (*ClassName, error) {
	id, err := Ident(name)
	if err != nil {
		return nil, err
	}
	simple := make([]string, len(c.simple), len(c.simple)+1)
	copy(simple, c.simple)
	return &ClassName{namespace: c.namespace, simple: append(simple, id)}, nil
}

// Peer returns a class in the same scope as c.
func (c *ClassName) Peer(name string) (*ClassName, error) {
	if enclosing := c.Enclosing(); enclosing != nil {
		return enclosing.Nested(name)
	}
	return NewClassName(c.namespace, name)
}

// AsNullable returns a nullable copy of c.
func (c *ClassName) AsNullable() *ClassName {
	cp := *c
	cp.nullable = true
	return &cp
}

// AsNonNull returns a copy of c without the nullable flag and without tags.
func (c *ClassName) AsNonNull() *ClassName {
	return &ClassName{namespace: c.namespace, simple: c.simple}
}

// WithTag returns a copy of c carrying key=value.
func (c *ClassName) WithTag(key, value string) *ClassName {
	cp := *c
	cp.tags = maps.Clone(c.tags)
	if cp.tags == nil {
		cp.tags = make(map[string]string, 1)
	}
	cp.tags[key] = value
	return &cp
}

func (c *ClassName) Tag(key string) (string, bool) {
	v, ok := c.tags[key]
	return v, ok
}

// Same reports whether c and other denote the same symbol, ignoring
// nullability and tags.
func (c *ClassName) Same(other *ClassName) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.CanonicalName() == other.CanonicalName()
}

// Equal compares canonical form and nullability.
func (c *ClassName) Equal(other *ClassName) bool {
	return c.Same(other) && c.nullable == other.nullable
}
