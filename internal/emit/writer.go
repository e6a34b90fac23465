package emit

import (
	"fmt"
	"io"
	"strings"

	"kpoet/internal/code"
	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/names"
	"kpoet/internal/trace"
	"kpoet/internal/wrap"
)

type pass uint8

const (
	passDiscover pass = iota + 1
	passRender
)

func (p pass) String() string {
	if p == passDiscover {
		return "discover"
	}
	return "render"
}

// writer is the state of one render pass. Nothing in it outlives the pass.
type writer struct {
	out       *wrap.Wrapper
	opts      Options
	pass      pass
	namespace string
	span      *trace.Span

	level           int
	kdoc            bool
	comment         bool
	trailingNewline bool
	line            strings.Builder
	stmt            *statement

	scope   []scopeEntry
	symbols *symbolTable
}

func newWriter(out io.Writer, opts Options, p pass, namespace string, symbols *symbolTable) *writer {
	return &writer{
		out:             wrap.New(out, opts.Indent, opts.ColumnLimit),
		opts:            opts,
		pass:            p,
		namespace:       namespace,
		trailingNewline: true,
		symbols:         symbols,
	}
}

// finish closes the wrapper and checks that every balanced construct was
// closed.
func (w *writer) finish() error {
	if w.stmt != nil {
		return diag.Errorf(diag.StrUnclosedStatement, "statement enter %%[ was never closed")
	}
	if len(w.scope) != 0 {
		return diag.Errorf(diag.StrUnbalancedScope, "scope stack not empty at end of unit (%d open)", len(w.scope))
	}
	if w.level != 0 {
		return diag.Errorf(diag.StrUnbalancedIndent, "unbalanced indentation: level %d at end of unit", w.level)
	}
	if err := w.out.Close(); err != nil {
		return diag.Wrap(diag.IOWriteOutput, err, "write output")
	}
	return nil
}

func (w *writer) indent(levels int) {
	w.level += levels
}

func (w *writer) unindent(levels int) {
	if w.level-levels < 0 {
		panic(diag.Errorf(diag.StrBadUnindent, "cannot unindent %d from %d", levels, w.level))
	}
	w.level -= levels
}

// emit writes wrappable text.
func (w *writer) emit(s string) {
	w.emitText(s, true)
}

// emitText writes s line by line, indenting each non-empty line and adding
// the doc or comment prefix. Only wrapping text tracks brackets.
func (w *writer) emitText(s string, wrapping bool) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			if (w.kdoc || w.comment) && w.trailingNewline {
				w.emitIndentation()
				if w.kdoc {
					w.out.AppendNonWrapping(" *")
				} else {
					w.out.AppendNonWrapping("//")
				}
			}
			w.newline()
		}
		if line == "" {
			continue
		}
		if w.trailingNewline {
			w.emitIndentation()
			if w.kdoc {
				w.out.AppendNonWrapping(" * ")
			} else if w.comment {
				w.out.AppendNonWrapping("// ")
			}
		}
		if wrapping && !w.kdoc && !w.comment {
			w.out.Append(line)
		} else {
			w.out.AppendNonWrapping(line)
		}
		w.line.WriteString(line)
		w.trailingNewline = false
	}
}

func (w *writer) newline() {
	w.out.Newline()
	w.trailingNewline = true
	ended := w.line.String()
	w.line.Reset()
	w.statementBreak(ended)
}

func (w *writer) emitIndentation() {
	w.out.AppendIndent(w.level)
}

func (w *writer) wrappingSpace() {
	if w.kdoc || w.comment {
		w.emit(" ")
		return
	}
	w.out.WrappingSpace(w.level)
	w.line.WriteByte(' ')
}

// emitCode writes every part of f. With ensureTrailingNewline a missing final
// newline is added.
func (w *writer) emitCode(f code.Fragment, ensureTrailingNewline bool) {
	for _, p := range f.Parts() {
		switch p.Kind {
		case code.PartText:
			w.emit(p.Text)
		case code.PartLiteral:
			w.emitLiteral(p.Arg)
		case code.PartName:
			w.emit(escapeName(p.Text))
		case code.PartString:
			if p.Str == nil {
				w.emit("null")
			} else {
				w.emitText(code.Quote(*p.Str), false)
			}
		case code.PartType:
			w.emitType(p.Type)
		case code.PartWrap:
			w.wrappingSpace()
		case code.PartIndent:
			w.indent(1)
		case code.PartUnindent:
			w.unindent(1)
		case code.PartStatementBegin:
			w.beginStatement()
		case code.PartStatementEnd:
			w.endStatement()
		}
	}
	if ensureTrailingNewline && !w.trailingNewline {
		w.emit("\n")
	}
}

// emitLiteral writes a %L argument. Fragments and declarations are emitted in
// place; everything else uses its default textual form.
func (w *writer) emitLiteral(v any) {
	switch v := v.(type) {
	case nil:
		w.emit("null")
	case code.Fragment:
		w.emitCode(v, false)
	case *decl.Type:
		w.typeDecl(v)
	case *decl.Func:
		w.function(v, nil)
	case *decl.Property:
		w.property(v, nil)
	case *decl.TypeAlias:
		w.typeAlias(v)
	case decl.Annotation:
		w.annotation(v, true)
	case decl.Param:
		w.param(v)
	case string:
		w.emit(v)
	default:
		w.emit(fmt.Sprint(v))
	}
}

func (w *writer) emitKdoc(doc code.Fragment) {
	if doc.IsEmpty() {
		return
	}
	w.emit("/**\n")
	w.kdoc = true
	w.emitCode(doc, true)
	w.kdoc = false
	w.emit(" */\n")
}

func (w *writer) emitComment(comment code.Fragment) {
	w.trailingNewline = true
	w.comment = true
	w.emitCode(comment, true)
	w.comment = false
}

// emitType writes a type reference, shortening class names where possible.
func (w *writer) emitType(t names.TypeName) {
	switch t.Kind() {
	case names.KindClass:
		c := t.(*names.ClassName)
		w.emit(w.lookupName(c))
		if c.IsNullable() {
			w.emit("?")
		}
	case names.KindParameterized:
		p := t.(*names.Parameterized)
		if p.Outer != nil {
			w.emitType(p.Outer)
			w.emit("." + escapeName(p.Raw.SimpleName()))
		} else {
			w.emitType(p.Raw.AsNonNull())
		}
		if len(p.Args) > 0 {
			w.emit("<")
			for i, arg := range p.Args {
				if i > 0 {
					w.emit(", ")
				}
				w.emitType(arg)
			}
			w.emit(">")
		}
	case names.KindVariable:
		w.emit(escapeName(t.(*names.TypeVariable).Name))
	case names.KindWildcard:
		wc := t.(*names.Wildcard)
		if err := wc.Validate(); err != nil {
			panic(err)
		}
		switch {
		case len(wc.Lower) == 1:
			w.emit("in ")
			w.emitType(wc.Lower[0])
		case wc.IsStar():
			w.emit("*")
		default:
			w.emit("out ")
			w.emitType(wc.Upper[0])
		}
	case names.KindLambda:
		w.emitLambda(t.(*names.Lambda))
	case names.KindArray:
		w.emitType(t.(*names.Array).Parameterized())
	case names.KindNullable:
		elem := t.(*names.Nullable).Elem
		if elem.Kind() == names.KindLambda {
			w.emit("(")
			w.emitType(elem)
			w.emit(")?")
			return
		}
		w.emitType(elem)
		w.emit("?")
	}
}

func (w *writer) emitLambda(l *names.Lambda) {
	if l.Suspend {
		w.emit("suspend ")
	}
	if l.Receiver != nil {
		if l.Receiver.Kind() == names.KindLambda {
			w.emit("(")
			w.emitType(l.Receiver)
			w.emit(")")
		} else {
			w.emitType(l.Receiver)
		}
		w.emit(".")
	}
	w.emit("(")
	for i, p := range l.Params {
		if i > 0 {
			w.emit(", ")
		}
		w.emitType(p)
	}
	w.emit(") -> ")
	ret := l.Return
	if ret == nil {
		ret = names.Unit
	}
	w.emitType(ret)
}
