package code

import (
	"errors"
	"testing"

	"kpoet/internal/diag"
	"kpoet/internal/names"
)

func TestOfErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{"dangling", "abc%", nil, "dangling format characters in 'abc%'"},
		{"dangling index", "abc%12", nil, "dangling format characters in 'abc%12'"},
		{"indexed no-arg", "%1>", nil, "%%, %W, %>, %<, %[, and %] may not have an index"},
		{"index out of range", "%3L", []any{1, 2}, "index 3 for '%3L' not in range (received 2 arguments)"},
		{"index zero", "%0L", []any{1}, "index 0 for '%0L' not in range (received 1 arguments)"},
		{"relative out of range", "%L %L", []any{1}, "index 2 for '%L' not in range (received 1 arguments)"},
		{"mixed", "%1L %L", []any{1, 2}, "cannot mix indexed and positional parameters"},
		{"unused relative", "%L", []any{1, 2}, "unused arguments: expected 1, received 2"},
		{"unused indexed", "%2L", []any{1, 2}, "unused argument: %1"},
		{"unused indexed plural", "%2L", []any{1, 2, 3}, "unused arguments: %1, %3"},
		{"no directives", "abc", []any{1}, "unused arguments: expected 0, received 1"},
		{"unknown directive", "%X", []any{1}, "invalid format string: '%X'"},
		{"bad name", "%N", []any{42}, "expected name but was 42"},
		{"bad type", "%T", []any{"kotlin.String"}, "expected type but was kotlin.String"},
		{"bad string", "%S", []any{3.5}, "expected string but was 3.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Of(tt.format, tt.args...)
			if err == nil {
				t.Fatalf("expected error %q", tt.want)
			}
			if err.Error() != tt.want {
				t.Fatalf("got %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, diag.ErrTemplate) {
				t.Fatalf("expected template error class")
			}
		})
	}
}

func TestNamedErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   map[string]any
		want   string
	}{
		{"uppercase", "%Foo:L", map[string]any{"Foo": 1}, "argument 'Foo' must start with a lowercase character"},
		{"missing", "%foo:L", map[string]any{}, "missing named argument for %foo"},
		{"dangling", "abc%", nil, "dangling % at end"},
		{"unknown", "%x", nil, "unknown format %x at 1 in '%x'"},
		{"unused", "%a:L", map[string]any{"a": 1, "b": 2}, "unused named argument: b"},
		{"unused plural", "x", map[string]any{"b": 1, "a": 2}, "unused named arguments: a, b"},
		{"unknown code", "%a:Q", map[string]any{"a": 1}, "invalid format string: '%a:Q'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Named(tt.format, tt.args)
			if err == nil {
				t.Fatalf("expected error %q", tt.want)
			}
			if err.Error() != tt.want {
				t.Fatalf("got %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestArgumentConsumption(t *testing.T) {
	tests := []struct {
		format     string
		directives int
	}{
		{"%L", 1},
		{"%L + %L", 2},
		{"%N(%S, %L)%W%%", 3},
		{"%[%L%]%>%<", 1},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			args := make([]any, tt.directives)
			for i := range args {
				args[i] = "x"
			}
			if _, err := Of(tt.format, args...); err != nil {
				t.Fatalf("exact argument count rejected: %v", err)
			}
			if _, err := Of(tt.format, append(args, "extra")...); err == nil {
				t.Fatalf("extra argument accepted")
			}
			if _, err := Of(tt.format, args[:len(args)-1]...); err == nil {
				t.Fatalf("missing argument accepted")
			}
		})
	}
}

func TestFragmentString(t *testing.T) {
	list := names.Parameterize(names.List, names.String)
	f, err := Of("val %N: %T = %L(%S,%W%S)%%", "items", list, "listOf", "a\"b", nil)
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	want := `val items: kotlin.collections.List<kotlin.String> = listOf("a\"b", null)%`
	if got := f.String(); got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
}

func TestIndexedRepeat(t *testing.T) {
	f, err := Of("%1L + %1L = %2L", 2, 4)
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	if got := f.String(); got != "2 + 2 = 4" {
		t.Fatalf("got %q", got)
	}
}

func TestNamedRepeat(t *testing.T) {
	f, err := Named("%text:S.length == %len:L && %text:S != null", map[string]any{"text": "hi", "len": 2})
	if err != nil {
		t.Fatalf("Named: %v", err)
	}
	if got := f.String(); got != `"hi".length == 2 && "hi" != null` {
		t.Fatalf("got %q", got)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `"plain"`},
		{`a"b\c$d`, `"a\"b\\c\$d"`},
		{"tab\there", `"tab\there"`},
		{"a\nb", "\"\"\"\n|a\n|b\n\"\"\".trimMargin()"},
		{"a\n", "\"\"\"\n|a\n|\"\"\".trimMargin()"},
		{"$x\n\"\"\"", "\"\"\"\n|${'$'}x\n|\"\"${'\"'}\n\"\"\".trimMargin()"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Quote(tt.in); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	b := NewBuilder().
		BeginControlFlow("if (%N > 0)", "x").
		AddStatement("return %L", 1).
		NextControlFlow("else").
		AddStatement("return %L", 0).
		EndControlFlow()
	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := "if (x > 0) {\nreturn 1\n} else {\nreturn 0\n}\n"
	if got := f.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	kinds := 0
	for _, p := range f.Parts() {
		if p.Kind == PartStatementBegin || p.Kind == PartStatementEnd {
			kinds++
		}
	}
	if kinds != 4 {
		t.Fatalf("expected two statements, got %d markers", kinds)
	}
}

func TestBuilderKeepsFirstError(t *testing.T) {
	b := NewBuilder().Add("%L").Add("%2L", 1)
	if _, err := b.Build(); err == nil || err.Error() != "index 1 for '%L' not in range (received 0 arguments)" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestJoin(t *testing.T) {
	a := MustOf("%L", 1)
	b := MustOf("%S", "two")
	f, err := Join(",%W", a, b, a)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := f.String(); got != `1, "two", 1` {
		t.Fatalf("got %q", got)
	}
}
