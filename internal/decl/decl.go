// Package decl holds the declaration descriptors rendered by package emit.
//
// Descriptors are plain data. Callers assemble them once and must not mutate
// them while a render is in progress; the same tree may be rendered
// concurrently.
package decl

import (
	"kpoet/internal/code"
	"kpoet/internal/names"
)

// File is one output unit.
type File struct {
	Namespace   string
	Name        string
	Comment     code.Fragment
	Annotations []Annotation
	Aliases     []Alias
	Members     []Member
}

// Alias imports Class under a different simple name.
type Alias struct {
	Class *names.ClassName
	Name  string
}

// Member is a top-level or nested declaration.
type Member interface {
	code.Identifier
	member()
}

// TypeKind selects the keyword of a type declaration.
type TypeKind uint8

const (
	KindClass TypeKind = iota
	KindInterface
	KindObject
	KindEnum
	KindAnnotation
)

func (k TypeKind) Keyword() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum class"
	case KindAnnotation:
		return "annotation class"
	default:
		return "class"
	}
}

// Type is a class, interface, object, enum or annotation declaration.
// Companion, when set, is emitted last as "companion object".
type Type struct {
	Kind           TypeKind
	Name           string
	Doc            code.Fragment
	Annotations    []Annotation
	Modifiers      []Modifier
	TypeVariables  []*names.TypeVariable
	Constructor    *Func
	Superclass     names.TypeName
	SuperclassArgs []code.Fragment
	Supertypes     []names.TypeName
	EnumConstants  []EnumConstant
	Init           code.Fragment
	Members        []Member
	Companion      *Type
}

func (t *Type) Identifier() string { return t.Name }

func (*Type) member() {}

// NestedTypeNames lists the simple names of the member types of t.
func (t *Type) NestedTypeNames() []string {
	var out []string
	for _, m := range t.Members {
		if nested, ok := m.(*Type); ok {
			out = append(out, nested.Name)
		}
	}
	if t.Companion != nil {
		out = append(out, t.companionName())
	}
	return out
}

func (t *Type) companionName() string {
	if t.Companion.Name == "" {
		return "Companion"
	}
	return t.Companion.Name
}

// EnumConstant is one entry of an enum class.
type EnumConstant struct {
	Name string
	Doc  code.Fragment
	Args code.Fragment
}

// Binding makes a constructor parameter a property.
type Binding uint8

const (
	BindNone Binding = iota
	BindVal
	BindVar
)

// Param is a function or constructor parameter.
type Param struct {
	Name        string
	Type        names.TypeName
	Default     code.Fragment
	Modifiers   []Modifier
	Annotations []Annotation
	Binding     Binding
}

func (p Param) Identifier() string { return p.Name }

// Func is a function, constructor, getter or setter. The body is emitted in
// braces when it is non-empty or HasBody is set.
type Func struct {
	Name          string
	Doc           code.Fragment
	Annotations   []Annotation
	Modifiers     []Modifier
	TypeVariables []*names.TypeVariable
	Receiver      names.TypeName
	Params        []Param
	Returns       names.TypeName
	Body          code.Fragment
	HasBody       bool
}

func (f *Func) Identifier() string { return f.Name }

func (*Func) member() {}

// Property is a val or var declaration.
type Property struct {
	Name        string
	Doc         code.Fragment
	Annotations []Annotation
	Modifiers   []Modifier
	Receiver    names.TypeName
	Type        names.TypeName
	Mutable     bool
	Initializer code.Fragment
	Delegated   bool
	Getter      *Func
	Setter      *Func
}

func (p *Property) Identifier() string { return p.Name }

func (*Property) member() {}

// TypeAlias declares "typealias Name<T> = Type".
type TypeAlias struct {
	Name          string
	Doc           code.Fragment
	Modifiers     []Modifier
	TypeVariables []*names.TypeVariable
	Type          names.TypeName
}

func (a *TypeAlias) Identifier() string { return a.Name }

func (*TypeAlias) member() {}

// Code is free-standing code emitted as is.
type Code struct {
	Body code.Fragment
}

func (*Code) Identifier() string { return "" }

func (*Code) member() {}

// Annotation is "@Type(members)". Target is the optional use-site target such
// as "file" or "get".
type Annotation struct {
	Type    *names.ClassName
	Members []code.Fragment
	Target  string
}
