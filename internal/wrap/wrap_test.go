package wrap

import (
	"strings"
	"testing"
)

// event is one call on the wrapper: text, a soft-wrap at the given level,
// or a hard newline.
type event struct {
	text   string
	wrap   int
	isWrap bool
	nl     bool
	indent int
}

func txt(s string) event { return event{text: s} }

func sw(level int) event { return event{wrap: level, isWrap: true} }

func nl() event { return event{nl: true} }

func indentTo(level int) event { return event{indent: level} }

func run(t *testing.T, limit int, events ...event) string {
	t.Helper()
	var out strings.Builder
	w := New(&out, "  ", limit)
	for _, ev := range events {
		switch {
		case ev.isWrap:
			w.WrappingSpace(ev.wrap)
		case ev.nl:
			w.Newline()
		case ev.indent > 0:
			w.AppendIndent(ev.indent)
		default:
			w.Append(ev.text)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return out.String()
}

func TestWrapper(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		events []event
		want   string
	}{
		{
			name:   "wraps at soft space",
			limit:  10,
			events: []event{txt("abcde"), sw(0), txt("fghij")},
			want:   "abcde\n    fghij",
		},
		{
			name:   "fits exactly",
			limit:  10,
			events: []event{txt("abcde"), sw(0), txt("fghi")},
			want:   "abcde fghi",
		},
		{
			name:   "continuation uses base level",
			limit:  10,
			events: []event{indentTo(1), txt("abcd"), sw(1), txt("efghij")},
			want:   "  abcd\n      efghij",
		},
		{
			name:   "single over-budget segment is not split",
			limit:  5,
			events: []event{txt("abcdefghij")},
			want:   "abcdefghij",
		},
		{
			name:   "hard newline resets the line",
			limit:  10,
			events: []event{txt("abcde"), nl(), txt("fghij"), sw(0), txt("k")},
			want:   "abcde\nfghij k",
		},
		{
			name:   "unary minus is never moved to a new line",
			limit:  10,
			events: []event{txt("aaaaaaaa"), sw(0), txt("-b")},
			want:   "aaaaaaaa -b",
		},
		{
			name:   "compound assignment may start a line",
			limit:  10,
			events: []event{txt("aaaaaaaa"), sw(0), txt("+= b")},
			want:   "aaaaaaaa\n    += b",
		},
		{
			name:   "arrow may start a line",
			limit:  10,
			events: []event{txt("aaaaaaaa"), sw(0), txt("-> b")},
			want:   "aaaaaaaa\n    -> b",
		},
		{
			name:   "group that fits stays flat",
			limit:  30,
			events: []event{txt("call(alpha,"), sw(0), txt("beta)")},
			want:   "call(alpha, beta)",
		},
		{
			name:  "overlong group is exploded",
			limit: 20,
			events: []event{
				indentTo(1), txt("call(alpha,"), sw(1), txt("beta,"), sw(1), txt("gamma)"),
			},
			want: "  call(\n      alpha,\n      beta,\n      gamma\n  )",
		},
		{
			name:  "closer keeps trailing text",
			limit: 12,
			events: []event{
				txt("if (first &&"), sw(0), txt("second) {"),
			},
			want: "if (\n    first &&\n    second\n) {",
		},
		{
			name:  "nested groups stay flat inside exploded interior",
			limit: 12,
			events: []event{
				txt("f(g(a,"), sw(0), txt("b),"), sw(0), txt("c)"),
			},
			want: "f(\n    g(a, b),\n    c\n)",
		},
		{
			name:   "empty group is never exploded",
			limit:  5,
			events: []event{txt("abcdefgh()")},
			want:   "abcdefgh()",
		},
		{
			name:   "unmatched closer is text",
			limit:  20,
			events: []event{txt("a)"), sw(0), txt("b")},
			want:   "a) b",
		},
		{
			name:   "unmatched opener is text",
			limit:  8,
			events: []event{txt("call(aaa"), sw(0), txt("bbb")},
			want:   "call(aaa\n    bbb",
		},
		{
			name:  "sibling groups are resolved one at a time",
			limit: 20,
			events: []event{
				txt("f(a)"), sw(0), txt("+"), sw(0), txt("g(bbbbbbbb,"), sw(0), txt("c)"),
			},
			want: "f(a) + g(\n    bbbbbbbb,\n    c\n)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.limit, tt.events...); got != tt.want {
				t.Fatalf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestAppendNonWrappingIgnoresBrackets(t *testing.T) {
	var out strings.Builder
	w := New(&out, "  ", 8)
	w.Append("x(")
	w.AppendNonWrapping(`"(("`)
	w.Append(")")
	w.WrappingSpace(0)
	w.Append("y")
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got, want := out.String(), "x(\"((\")\n    y"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWideRunesCountCells(t *testing.T) {
	got := run(t, 10, txt("日本語"), sw(0), txt("abcd"))
	if want := "日本語\n    abcd"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestClosedWrapperPanics(t *testing.T) {
	var out strings.Builder
	w := New(&out, "  ", 10)
	_ = w.Close()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic after Close")
		}
	}()
	w.Append("x")
}
