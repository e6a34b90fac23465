package names

import "fmt"

// Kind tags the closed set of type reference variants.
type Kind uint8

const (
	KindClass Kind = iota
	KindParameterized
	KindVariable
	KindWildcard
	KindLambda
	KindArray
	KindNullable
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindParameterized:
		return "parameterized"
	case KindVariable:
		return "variable"
	case KindWildcard:
		return "wildcard"
	case KindLambda:
		return "lambda"
	case KindArray:
		return "array"
	case KindNullable:
		return "nullable"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// TypeName is implemented by every type reference variant of this package.
type TypeName interface {
	Kind() Kind
	// String returns the fully qualified debug form.
	String() string
	typeName()
}
