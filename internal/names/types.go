package names

import (
	"strings"

	"kpoet/internal/diag"
)

// Parameterized is a generic class applied to type arguments. Outer is set for
// member types of a parameterized class, e.g. Outer<A>.Inner<B>.
type Parameterized struct {
	Raw   *ClassName
	Args  []TypeName
	Outer *Parameterized
}

// Parameterize applies args to raw.
func Parameterize(raw *ClassName, args ...TypeName) *Parameterized {
	return &Parameterized{Raw: raw.AsNonNull(), Args: args}
}

// Nested returns the parameterized member type name of p.
func (p *Parameterized) Nested(name string, args ...TypeName) (*Parameterized, error) {
	raw, err := p.Raw.Nested(name)
	if err != nil {
		return nil, err
	}
	return &Parameterized{Raw: raw, Args: args, Outer: p}, nil
}

func (*Parameterized) typeName() {}

func (*Parameterized) Kind() Kind { return KindParameterized }

func (p *Parameterized) String() string {
	var b strings.Builder
	if p.Outer != nil {
		b.WriteString(p.Outer.String())
		b.WriteByte('.')
		b.WriteString(p.Raw.SimpleName())
	} else {
		b.WriteString(p.Raw.CanonicalName())
	}
	if len(p.Args) > 0 {
		b.WriteByte('<')
		writeJoined(&b, p.Args)
		b.WriteByte('>')
	}
	return b.String()
}

// Variance of a type variable or type argument.
type Variance uint8

const (
	Invariant Variance = iota
	In
	Out
)

func (v Variance) Keyword() string {
	switch v {
	case In:
		return "in"
	case Out:
		return "out"
	default:
		return ""
	}
}

// TypeVariable is a bare type parameter name with optional bounds.
type TypeVariable struct {
	Name     string
	Bounds   []TypeName
	Variance Variance
	Reified  bool
}

// NewTypeVariable validates name and returns the type variable.
func NewTypeVariable(name string, bounds ...TypeName) (*TypeVariable, error) {
	id, err := Ident(name)
	if err != nil {
		return nil, err
	}
	return &TypeVariable{Name: id, Bounds: bounds}, nil
}

// WithVariance returns a copy of v with variance set.
func (v *TypeVariable) WithVariance(variance Variance) *TypeVariable {
	cp := *v
	cp.Variance = variance
	return &cp
}

func (*TypeVariable) typeName() {}

func (*TypeVariable) Kind() Kind { return KindVariable }

func (v *TypeVariable) String() string { return v.Name }

// Wildcard is a use-site projection. A well-formed wildcard has exactly one
// upper bound and at most one lower bound; when a lower bound is present the
// upper bound is kotlin.Any?.
type Wildcard struct {
	Upper []TypeName
	Lower []TypeName
}

// Star is the unbounded projection, rendered as "*".
var Star = &Wildcard{Upper: []TypeName{AnyNullable}}

// ProducerOf returns the projection "out t".
func ProducerOf(t TypeName) *Wildcard {
	return &Wildcard{Upper: []TypeName{t}}
}

// ConsumerOf returns the projection "in t".
func ConsumerOf(t TypeName) *Wildcard {
	return &Wildcard{Upper: []TypeName{AnyNullable}, Lower: []TypeName{t}}
}

// Validate reports a structural error for any other bound shape.
func (w *Wildcard) Validate() error {
	if len(w.Upper) != 1 || len(w.Lower) > 1 {
		return diag.Errorf(diag.StrMalformedWildcard,
			"unexpected wildcard bounds: %d upper, %d lower", len(w.Upper), len(w.Lower))
	}
	return nil
}

// IsStar reports whether w is the unbounded projection.
func (w *Wildcard) IsStar() bool {
	if len(w.Upper) != 1 || len(w.Lower) != 0 {
		return false
	}
	c, ok := w.Upper[0].(*ClassName)
	return ok && c.IsNullable() && c.Same(Any)
}

func (*Wildcard) typeName() {}

func (*Wildcard) Kind() Kind { return KindWildcard }

func (w *Wildcard) String() string {
	switch {
	case w.Validate() != nil:
		return "<malformed wildcard>"
	case len(w.Lower) == 1:
		return "in " + w.Lower[0].String()
	case w.IsStar():
		return "*"
	default:
		return "out " + w.Upper[0].String()
	}
}

// Lambda is a function type: [suspend] [Receiver.](Params) -> Return.
type Lambda struct {
	Receiver TypeName
	Params   []TypeName
	Return   TypeName
	Suspend  bool
}

func (*Lambda) typeName() {}

func (*Lambda) Kind() Kind { return KindLambda }

func (l *Lambda) String() string {
	var b strings.Builder
	if l.Suspend {
		b.WriteString("suspend ")
	}
	if l.Receiver != nil {
		if l.Receiver.Kind() == KindLambda {
			b.WriteString("(" + l.Receiver.String() + ").")
		} else {
			b.WriteString(l.Receiver.String() + ".")
		}
	}
	b.WriteByte('(')
	writeJoined(&b, l.Params)
	b.WriteString(") -> ")
	ret := l.Return
	if ret == nil {
		ret = Unit
	}
	b.WriteString(ret.String())
	return b.String()
}

// Array is kotlin.Array<Component>.
type Array struct {
	Component TypeName
}

func ArrayOf(component TypeName) *Array {
	return &Array{Component: component}
}

// Parameterized returns the equivalent kotlin.Array<Component> reference.
func (a *Array) Parameterized() *Parameterized {
	return Parameterize(ArrayClass, a.Component)
}

func (*Array) typeName() {}

func (*Array) Kind() Kind { return KindArray }

func (a *Array) String() string { return a.Parameterized().String() }

// Nullable marks any non-class reference as nullable. Class names carry their
// own flag; use NullableOf to build either.
type Nullable struct {
	Elem TypeName
}

// NullableOf returns t marked nullable.
func NullableOf(t TypeName) TypeName {
	switch t.Kind() {
	case KindClass:
		return t.(*ClassName).AsNullable()
	case KindNullable:
		return t
	default:
		return &Nullable{Elem: t}
	}
}

// NonNullOf strips nullability from t.
func NonNullOf(t TypeName) TypeName {
	switch t.Kind() {
	case KindClass:
		c := t.(*ClassName)
		if !c.IsNullable() {
			return c
		}
		cp := *c
		cp.nullable = false
		return &cp
	case KindNullable:
		return t.(*Nullable).Elem
	default:
		return t
	}
}

func (*Nullable) typeName() {}

func (*Nullable) Kind() Kind { return KindNullable }

func (n *Nullable) String() string {
	if n.Elem.Kind() == KindLambda {
		return "(" + n.Elem.String() + ")?"
	}
	return n.Elem.String() + "?"
}

// IsNullable reports whether t renders with a trailing "?".
func IsNullable(t TypeName) bool {
	switch t.Kind() {
	case KindClass:
		return t.(*ClassName).IsNullable()
	case KindNullable:
		return true
	default:
		return false
	}
}

func writeJoined(b *strings.Builder, types []TypeName) {
	for i, t := range types {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
}
