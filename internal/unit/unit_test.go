package unit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kpoet/internal/diag"
	"kpoet/internal/emit"
	"kpoet/internal/names"
)

func TestParseType(t *testing.T) {
	tv, err := names.NewTypeVariable("T")
	if err != nil {
		t.Fatalf("NewTypeVariable: %v", err)
	}
	vars := map[string]*names.TypeVariable{"T": tv}

	tests := []struct {
		src  string
		want string
		kind names.Kind
	}{
		{"kotlin.String", "kotlin.String", names.KindClass},
		{"kotlin.String?", "kotlin.String?", names.KindClass},
		{"Foo", "app.Foo", names.KindClass},
		{"T", "T", names.KindVariable},
		{"T?", "T?", names.KindNullable},
		{"a.Map.Entry", "a.Map.Entry", names.KindClass},
		{"List<*>", "app.List<*>", names.KindParameterized},
		{"kotlin.collections.Map<kotlin.String, out T>?", "kotlin.collections.Map<kotlin.String, out T>?", names.KindNullable},
		{"a.Sink<in kotlin.Int>", "a.Sink<in kotlin.Int>", names.KindParameterized},
		{"a.Outer<T>.Inner<kotlin.Int>", "a.Outer<T>.Inner<kotlin.Int>", names.KindParameterized},
		{"(kotlin.Int, T) -> kotlin.Unit", "(kotlin.Int, T) -> kotlin.Unit", names.KindLambda},
		{"((kotlin.Int) -> kotlin.Unit)?", "((kotlin.Int) -> kotlin.Unit)?", names.KindNullable},
		{"suspend a.B.(kotlin.Int) -> kotlin.Boolean", "suspend a.B.(kotlin.Int) -> kotlin.Boolean", names.KindLambda},
		{"() -> T", "() -> T", names.KindLambda},
		{"a.`in`.Thing", "a.in.Thing", names.KindClass},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseType(tt.src, "app", vars)
			if err != nil {
				t.Fatalf("ParseType(%q): %v", tt.src, err)
			}
			if got.String() != tt.want {
				t.Fatalf("ParseType(%q) = %q, want %q", tt.src, got.String(), tt.want)
			}
			if got.Kind() != tt.kind {
				t.Fatalf("ParseType(%q) kind = %v, want %v", tt.src, got.Kind(), tt.kind)
			}
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"kotlin.",
		"a.Map<>",
		"a.List<a.B",
		"(a.A, a.B)",
		"a.A -",
		"a.A b",
		"suspend a.A",
		"a.A#",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseType(src, "app", nil)
			if err == nil {
				t.Fatalf("ParseType(%q) succeeded", src)
			}
			if !errors.Is(err, diag.ErrUnit) {
				t.Fatalf("ParseType(%q) error class: %v", src, err)
			}
		})
	}
}

const greeterUnit = `namespace: com.example
aliases:
  - {class: other.Thing, as: OtherThing}
members:
  - class: Greeter
    modifiers: [data]
    constructor:
      params:
        - {name: name, type: kotlin.String, bind: val}
    members:
      - fun: greet
        returns: kotlin.String
        body:
          format: "return %S + name\n"
          args: ["Hello, "]
  - property: thing
    type: other.Thing
    init:
      format: "%T()"
      args: [!type other.Thing]
`

func TestDecodeAndRender(t *testing.T) {
	u, err := Decode([]byte(greeterUnit), "units/greeter_service.kp.yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if u.Output != "GreeterService.kt" {
		t.Fatalf("Output = %q", u.Output)
	}

	got, err := emit.New(emit.Options{ImplicitNamespaces: []string{"kotlin"}}).Render(u.File)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "package com.example\n" +
		"\n" +
		"import other.Thing as OtherThing\n" +
		"\n" +
		"data class Greeter(val name: String) {\n" +
		"  fun greet(): String {\n" +
		"    return \"Hello, \" + name\n" +
		"  }\n" +
		"}\n" +
		"\n" +
		"val thing: OtherThing = OtherThing()\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEnumAndTypeVariables(t *testing.T) {
	src := `namespace: app
members:
  - enum: Color
    constants:
      - RED
      - {name: GREEN, args: {format: "%L", args: [2]}}
  - fun: max
    type_variables:
      - {name: T, bounds: ["kotlin.Comparable<T>"]}
    params:
      - {name: a, type: T}
      - {name: b, type: T}
    returns: T
    body: "return if (a > b) a else b\n"
`
	u, err := Decode([]byte(src), "max.kp.yaml")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, err := emit.New(emit.Options{ImplicitNamespaces: []string{"kotlin"}}).Render(u.File)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "package app\n" +
		"\n" +
		"enum class Color {\n" +
		"  RED,\n" +
		"  GREEN(2)\n" +
		"}\n" +
		"\n" +
		"fun <T : Comparable<T>> max(a: T, b: T): T {\n" +
		"  return if (a > b) a else b\n" +
		"}\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		code  diag.Code
		line  int
		class error
	}{
		{
			name:  "member without kind",
			src:   "namespace: app\nmembers:\n  - doc: nothing\n",
			code:  diag.UntUnknownKind,
			line:  3,
			class: diag.ErrUnit,
		},
		{
			name:  "two kinds",
			src:   "members:\n  - class: A\n    fun: b\n",
			code:  diag.UntInvalid,
			line:  2,
			class: diag.ErrUnit,
		},
		{
			name:  "bad type",
			src:   "members:\n  - property: x\n    type: a.Map<>\n",
			code:  diag.UntBadType,
			line:  2,
			class: diag.ErrUnit,
		},
		{
			name:  "unknown modifier",
			src:   "members:\n  - class: A\n    modifiers: [sealed, shiny]\n",
			code:  diag.UntInvalid,
			line:  2,
			class: diag.ErrUnit,
		},
		{
			name:  "unused argument",
			src:   "members:\n  - code:\n      format: \"x\\n\"\n      args: [1]\n",
			code:  diag.TplUnusedArgument,
			line:  3,
			class: diag.ErrTemplate,
		},
		{
			name:  "invalid parameter name",
			src:   "members:\n  - fun: f\n    params:\n      - {name: 1x, type: a.B}\n",
			code:  diag.SymInvalidIdentifier,
			line:  4,
			class: diag.ErrSymbol,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.src), "bad.kp.yaml")
			var de *diag.Error
			if !errors.As(err, &de) {
				t.Fatalf("expected *diag.Error, got %v", err)
			}
			if de.Code != tt.code {
				t.Fatalf("code = %s, want %s (%v)", de.Code.ID(), tt.code.ID(), err)
			}
			if de.Path != "bad.kp.yaml" || de.Line != tt.line {
				t.Fatalf("location = %s:%d, want bad.kp.yaml:%d", de.Path, de.Line, tt.line)
			}
			if !errors.Is(err, tt.class) {
				t.Fatalf("error class mismatch: %v", err)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		path, name, want string
	}{
		{"a/greeter_service.kp.yaml", "", "GreeterService.kt"},
		{"b/user-repo.kp.yml", "", "UserRepo.kt"},
		{"c/x.kp.yaml", "Explicit", "Explicit.kt"},
		{"d/x.kp.yaml", "Done.kt", "Done.kt"},
	}
	for _, tt := range tests {
		if got := outputName(tt.path, tt.name); got != tt.want {
			t.Errorf("outputName(%q, %q) = %q, want %q", tt.path, tt.name, got, tt.want)
		}
	}
}
