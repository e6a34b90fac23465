package emit

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kpoet/internal/code"
	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/names"
)

var implicit = []string{"kotlin", "kotlin.collections"}

func render(t *testing.T, opts Options, f *decl.File) string {
	t.Helper()
	out, err := New(opts).Render(f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func renderCode(t *testing.T, opts Options, namespace string, format string, args ...any) string {
	t.Helper()
	body, err := code.Of(format, args...)
	if err != nil {
		t.Fatalf("code.Of: %v", err)
	}
	out, err := New(opts).RenderCode(namespace, body)
	if err != nil {
		t.Fatalf("RenderCode: %v", err)
	}
	return out
}

func assertText(t *testing.T, got, want string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func greeterFile() *decl.File {
	return &decl.File{
		Namespace: "com.example",
		Members: []decl.Member{
			&decl.Type{
				Kind: decl.KindClass,
				Name: "Greeter",
				Constructor: &decl.Func{Params: []decl.Param{
					{Name: "name", Type: names.String, Binding: decl.BindVal},
				}},
				Members: []decl.Member{
					&decl.Func{
						Name:    "greet",
						Returns: names.String,
						Body:    code.MustOf("return %S + name\n", "Hello, "),
					},
				},
			},
		},
	}
}

func TestRenderFile(t *testing.T) {
	want := "package com.example\n" +
		"\n" +
		"import kotlin.String\n" +
		"\n" +
		"class Greeter(val name: String) {\n" +
		"  fun greet(): String {\n" +
		"    return \"Hello, \" + name\n" +
		"  }\n" +
		"}\n"
	assertText(t, render(t, Options{}, greeterFile()), want)
}

func TestRenderIsDeterministic(t *testing.T) {
	r := New(Options{})
	f := greeterFile()
	first, err := r.Render(f)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for range 5 {
		again, err := r.Render(f)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if again != first {
			t.Fatalf("render is not deterministic:\n%s\n---\n%s", first, again)
		}
	}
}

func TestImportCollision(t *testing.T) {
	x := names.MustClassName("x", "Foo")
	y := names.MustClassName("y", "Foo")
	got := renderCode(t, Options{}, "app", "val a = %T()\nval b = %T()\n", x, y)
	want := "package app\n\nimport x.Foo\n\nval a = Foo()\nval b = y.Foo()\n"
	assertText(t, got, want)
}

func TestImportIdempotence(t *testing.T) {
	x := names.MustClassName("x", "Foo")
	got := renderCode(t, Options{}, "app", "%T()\n%T()\n%T.bar()\n", x, x, x.AsNullable())
	if n := strings.Count(got, "import "); n != 1 {
		t.Fatalf("expected a single import, got %d:\n%s", n, got)
	}
	want := "package app\n\nimport x.Foo\n\nFoo()\nFoo()\nFoo?.bar()\n"
	assertText(t, got, want)
}

func TestOwnNamespaceBlocksImport(t *testing.T) {
	mine := names.MustClassName("app", "Foo")
	theirs := names.MustClassName("lib", "Foo")
	got := renderCode(t, Options{}, "app", "val a = %T()\nval b = %T()\n", theirs, mine)
	want := "package app\n\nval a = lib.Foo()\nval b = Foo()\n"
	assertText(t, got, want)
}

func TestAliasesSeedImports(t *testing.T) {
	x := names.MustClassName("x", "Foo")
	y := names.MustClassName("y", "Foo")
	f := &decl.File{
		Namespace: "app",
		Aliases:   []decl.Alias{{Class: x, Name: "XFoo"}},
		Members: []decl.Member{
			&decl.Code{Body: code.MustOf("val a = %T()\nval b = %T()\n", x, y)},
		},
	}
	want := "package app\n\nimport x.Foo as XFoo\nimport y.Foo\n\nval a = XFoo()\nval b = Foo()\n"
	assertText(t, render(t, Options{}, f), want)
}

func TestImplicitNamespacesAreNotListed(t *testing.T) {
	got := renderCode(t, Options{ImplicitNamespaces: implicit}, "app", "val s: %T = %S\n", names.String, "x")
	assertText(t, got, "package app\n\nval s: String = \"x\"\n")
}

func TestNestedTypesUseShortNames(t *testing.T) {
	inner := names.MustClassName("app", "Outer", "Inner")
	f := &decl.File{
		Namespace: "app",
		Members: []decl.Member{
			&decl.Type{
				Name: "Outer",
				Members: []decl.Member{
					&decl.Type{Name: "Inner"},
					&decl.Property{Name: "inner", Type: inner},
				},
			},
			&decl.Property{Name: "x", Type: inner},
		},
	}
	want := "package app\n" +
		"\n" +
		"class Outer {\n" +
		"  class Inner\n" +
		"\n" +
		"  val inner: Inner\n" +
		"}\n" +
		"\n" +
		"val x: Outer.Inner\n"
	assertText(t, render(t, Options{}, f), want)
}

func TestImportedOuterQualifiesNested(t *testing.T) {
	entry := names.MustClassName("lib", "Map", "Entry")
	got := renderCode(t, Options{}, "app", "val e: %T? = null\n", entry)
	want := "package app\n\nimport lib.Map\n\nval e: Map.Entry? = null\n"
	assertText(t, got, want)
}

func TestKdocReferencesAreNotImported(t *testing.T) {
	f := &decl.File{
		Namespace: "app",
		Members: []decl.Member{
			&decl.Type{Name: "Bar", Doc: code.MustOf("See %T.\n", names.MustClassName("x", "Foo"))},
		},
	}
	want := "package app\n\n/**\n * See x.Foo.\n */\nclass Bar\n"
	assertText(t, render(t, Options{}, f), want)
}

func TestStatementContinuation(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{
			name:   "expression continuation",
			format: "%[val total = first +\nsecond\n%]",
			want:   "val total = first +\n    second\n",
		},
		{
			name:   "block opener",
			format: "%[items.forEach {\n%>println(it)\n%<}\n%]",
			want:   "items.forEach {\n  println(it)\n}\n",
		},
		{
			name:   "arrow",
			format: "%[val f = { x: Int ->\n%>x * 2\n%<}\n%]",
			want:   "val f = { x: Int ->\n  x * 2\n}\n",
		},
		{
			name:   "raw literal",
			format: "%[val s = %S\n%]",
			args:   []any{"a\nb"},
			want:   "val s = \"\"\"\n  |a\n  |b\n  \"\"\".trimMargin()\n",
		},
		{
			name:   "extra indent is removed at statement end",
			format: "%[a(\nb)\n%]c\n",
			want:   "a(\n    b)\nc\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderCode(t, Options{}, "", tt.format, tt.args...)
			assertText(t, got, tt.want)
		})
	}
}

func TestCallArgumentsReflow(t *testing.T) {
	got := renderCode(t, Options{ColumnLimit: 30}, "",
		"%[val result = compute(%L,%W%L,%W%L)\n%]", "alphaValue", "betaValue", "gammaValue")
	want := "val result = compute(\n    alphaValue,\n    betaValue,\n    gammaValue\n)\n"
	assertText(t, got, want)
}

func TestCallArgumentsFit(t *testing.T) {
	got := renderCode(t, Options{}, "", "%[val result = compute(%L,%W%L)\n%]", "a", "b")
	assertText(t, got, "val result = compute(a, b)\n")
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"nested statement", "%[a%[b\n%]%]", "statement enter %[ followed by statement enter %["},
		{"unmatched end", "a\n%]", "statement exit %] has no matching statement enter %["},
		{"unclosed", "%[a\n", "statement enter %[ was never closed"},
		{"unindent below zero", "%<a\n", "cannot unindent 1 from 0"},
		{"unbalanced indent", "%>a\n", "unbalanced indentation: level 1 at end of unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).RenderCode("", code.MustOf(tt.format))
			if err == nil {
				t.Fatalf("expected error %q", tt.want)
			}
			if err.Error() != tt.want {
				t.Fatalf("got %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, diag.ErrStructure) {
				t.Fatalf("expected structural error class, got %v", err)
			}
		})
	}
}

func TestMalformedWildcard(t *testing.T) {
	bad := names.Parameterize(names.List, &names.Wildcard{})
	_, err := New(Options{}).RenderCode("", code.MustOf("val x: %T\n", bad))
	if !errors.Is(err, diag.ErrStructure) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestTypeReferences(t *testing.T) {
	tv, _ := names.NewTypeVariable("T")
	tests := []struct {
		name string
		typ  names.TypeName
		want string
	}{
		{"star", names.Parameterize(names.List, names.Star), "List<*>"},
		{"producer", names.Parameterize(names.List, names.ProducerOf(tv)), "List<out T>"},
		{"consumer", names.Parameterize(names.List, names.ConsumerOf(names.Int)), "List<in Int>"},
		{"nullable lambda", names.NullableOf(&names.Lambda{Params: []names.TypeName{names.Int}}), "((Int) -> Unit)?"},
		{"receiver lambda", &names.Lambda{Receiver: names.String, Return: names.Boolean, Suspend: true}, "suspend String.() -> Boolean"},
		{"array", names.ArrayOf(names.NullableOf(names.String)), "Array<String?>"},
		{"nullable parameterized", names.NullableOf(names.Parameterize(names.Map, names.String, names.Int)), "Map<String, Int>?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderCode(t, Options{ImplicitNamespaces: implicit}, "", "%T\n", tt.typ)
			assertText(t, got, tt.want+"\n")
		})
	}
}

func TestKeywordEscaping(t *testing.T) {
	f := &decl.File{
		Namespace: "a.in",
		Members: []decl.Member{
			&decl.Code{Body: code.MustOf("val %N = %T.%N\n", "is", names.MustClassName("b.when", "Obj"), "fun")},
		},
	}
	want := "package a.`in`\n\nimport b.`when`.Obj\n\nval `is` = Obj.`fun`\n"
	assertText(t, render(t, Options{}, f), want)
}

func TestEnumAndCompanion(t *testing.T) {
	f := &decl.File{
		Members: []decl.Member{
			&decl.Type{
				Kind:          decl.KindEnum,
				Name:          "Color",
				EnumConstants: []decl.EnumConstant{{Name: "RED"}, {Name: "GREEN", Args: code.MustOf("%L", 2)}},
			},
			&decl.Type{
				Name: "Box",
				Companion: &decl.Type{Members: []decl.Member{
					&decl.Property{
						Name:        "EMPTY",
						Modifiers:   []decl.Modifier{decl.Const},
						Type:        names.Int,
						Initializer: code.MustOf("0"),
					},
				}},
			},
		},
	}
	want := "enum class Color {\n" +
		"  RED,\n" +
		"  GREEN(2)\n" +
		"}\n" +
		"\n" +
		"class Box {\n" +
		"  companion object {\n" +
		"    const val EMPTY: Int = 0\n" +
		"  }\n" +
		"}\n"
	assertText(t, render(t, Options{ImplicitNamespaces: implicit}, f), want)
}

func TestFunctionSignature(t *testing.T) {
	comparable := names.MustClassName("kotlin", "Comparable")
	cloneable := names.MustClassName("kotlin", "Cloneable")
	tv := &names.TypeVariable{Name: "T"}
	tv.Bounds = []names.TypeName{names.Parameterize(comparable, tv), cloneable}
	f := &decl.File{
		Members: []decl.Member{
			&decl.Type{
				Kind: decl.KindInterface,
				Name: "Sorter",
				Members: []decl.Member{
					&decl.Func{
						Name:          "sort",
						Modifiers:     []decl.Modifier{decl.Override, decl.Public},
						TypeVariables: []*names.TypeVariable{tv},
						Params: []decl.Param{
							{Name: "items", Type: names.Parameterize(names.List, tv)},
							{Name: "desc", Type: names.Boolean, Default: code.MustOf("false")},
						},
						Returns: names.Unit,
					},
				},
			},
		},
	}
	want := "interface Sorter {\n" +
		"  public override fun <T> sort(items: List<T>, desc: Boolean = false) where T : Comparable<T>, T : Cloneable\n" +
		"}\n"
	assertText(t, render(t, Options{ImplicitNamespaces: implicit, ColumnLimit: 200}, f), want)
}
