package names

import (
	"errors"
	"testing"

	"kpoet/internal/diag"
)

func TestBestGuess(t *testing.T) {
	tests := []struct {
		in        string
		namespace string
		canonical string
		simple    string
	}{
		{"kotlin.collections.Map.Entry", "kotlin.collections", "kotlin.collections.Map.Entry", "Entry"},
		{"Foo", "", "Foo", "Foo"},
		{"a.b.Outer", "a.b", "a.b.Outer", "Outer"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := BestGuess(tt.in)
			if err != nil {
				t.Fatalf("BestGuess(%q): %v", tt.in, err)
			}
			if c.Namespace() != tt.namespace || c.CanonicalName() != tt.canonical || c.SimpleName() != tt.simple {
				t.Fatalf("got namespace=%q canonical=%q simple=%q", c.Namespace(), c.CanonicalName(), c.SimpleName())
			}
		})
	}
}

func TestBestGuessRejectsLowercase(t *testing.T) {
	_, err := BestGuess("a.b.c")
	if !errors.Is(err, diag.ErrSymbol) {
		t.Fatalf("expected symbol error, got %v", err)
	}
	if err.Error() != "couldn't make a guess for a.b.c" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNewClassNameValidation(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		simple    []string
	}{
		{"no simple names", "a.b", nil},
		{"digit start", "a", []string{"1Foo"}},
		{"empty namespace segment", "a..b", []string{"Foo"}},
		{"dash", "a", []string{"Foo-Bar"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClassName(tt.namespace, tt.simple...); !errors.Is(err, diag.ErrSymbol) {
				t.Fatalf("expected symbol error, got %v", err)
			}
		})
	}
}

func TestIdentNormalizesNFC(t *testing.T) {
	id, err := Ident("Cafe\u0301")
	if err != nil {
		t.Fatalf("Ident: %v", err)
	}
	if id != "Caf\u00e9" {
		t.Fatalf("expected NFC form, got %q", id)
	}
}

func TestClassNameNesting(t *testing.T) {
	outer := MustClassName("a.b", "Outer")
	inner, err := outer.Nested("Inner")
	if err != nil {
		t.Fatalf("Nested: %v", err)
	}
	if got := inner.CanonicalName(); got != "a.b.Outer.Inner" {
		t.Fatalf("canonical %q", got)
	}
	if !inner.Enclosing().Same(outer) || !inner.TopLevel().Same(outer) {
		t.Fatalf("enclosing/top-level mismatch")
	}
	if outer.Enclosing() != nil {
		t.Fatalf("top-level class has no enclosing class")
	}
	if len(outer.SimpleNames()) != 1 {
		t.Fatalf("Nested must not alias the receiver's names")
	}
}

func TestClassNameIdentityIgnoresTags(t *testing.T) {
	a := MustClassName("a", "Foo")
	b := a.WithTag("origin", "unit.yaml")
	if !a.Equal(b) {
		t.Fatalf("tags must not affect equality")
	}
	if _, ok := a.Tag("origin"); ok {
		t.Fatalf("WithTag must copy")
	}
	if v, _ := b.Tag("origin"); v != "unit.yaml" {
		t.Fatalf("tag lost: %q", v)
	}
	if a.Equal(a.AsNullable()) || !a.Same(a.AsNullable()) {
		t.Fatalf("nullability must affect Equal but not Same")
	}
}

func TestTypeStrings(t *testing.T) {
	tv, _ := NewTypeVariable("T")
	outer := Parameterize(MustClassName("a", "Outer"), String)
	inner, _ := outer.Nested("Inner", Int)
	tests := []struct {
		name string
		typ  TypeName
		want string
	}{
		{"class", List, "kotlin.collections.List"},
		{"nullable class", NullableOf(String), "kotlin.String?"},
		{"parameterized", Parameterize(Map, String, NullableOf(Int)), "kotlin.collections.Map<kotlin.String, kotlin.Int?>"},
		{"nested parameterized", inner, "a.Outer<kotlin.String>.Inner<kotlin.Int>"},
		{"star", Star, "*"},
		{"producer", ProducerOf(tv), "out T"},
		{"consumer", ConsumerOf(String), "in kotlin.String"},
		{"lambda", &Lambda{Receiver: String, Params: []TypeName{Int}, Return: Boolean}, "kotlin.String.(kotlin.Int) -> kotlin.Boolean"},
		{"nullable lambda", NullableOf(&Lambda{}), "(() -> kotlin.Unit)?"},
		{"array", ArrayOf(Int), "kotlin.Array<kotlin.Int>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWildcardValidate(t *testing.T) {
	bad := &Wildcard{Upper: []TypeName{String, Int}}
	err := bad.Validate()
	if !errors.Is(err, diag.ErrStructure) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if err.Error() != "unexpected wildcard bounds: 2 upper, 0 lower" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if err := ConsumerOf(String).Validate(); err != nil {
		t.Fatalf("consumer wildcard is well-formed: %v", err)
	}
}

func TestNullableRoundTrip(t *testing.T) {
	l := &Lambda{Return: Int}
	n := NullableOf(l)
	if n.Kind() != KindNullable || !IsNullable(n) {
		t.Fatalf("expected nullable wrapper, got %s", n.Kind())
	}
	if NonNullOf(n) != TypeName(l) {
		t.Fatalf("NonNullOf must unwrap")
	}
	if NullableOf(n) != n {
		t.Fatalf("NullableOf must be idempotent")
	}
	if IsNullable(NonNullOf(AnyNullable)) {
		t.Fatalf("NonNullOf must clear the class flag")
	}
}
