// Package names models qualified symbols and type references.
//
// A ClassName is a namespace plus one or more nested simple names. Every other
// reference kind (Parameterized, TypeVariable, Wildcard, Lambda, Array,
// Nullable) is built from class names and other references. All values are
// immutable once constructed and safe to share between goroutines.
//
// Rendering code switches on TypeName.Kind and never type-tests open sets.
package names
