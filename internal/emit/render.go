// Package emit renders declaration trees to source text.
//
// Every render runs two passes over the same tree. The discovery pass writes
// to a discard sink and records which qualified symbols could be imported; the
// final pass renders with that import set frozen, printing each symbol with
// the shortest name that still resolves to it.
package emit

import (
	"io"
	"strconv"
	"strings"

	"kpoet/internal/code"
	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/trace"
)

const (
	DefaultIndent      = "  "
	DefaultColumnLimit = 100
)

// Options configures a Renderer.
type Options struct {
	Indent      string
	ColumnLimit int
	// ImplicitNamespaces are imported without an import line.
	ImplicitNamespaces []string
	Tracer             trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.ColumnLimit <= 0 {
		o.ColumnLimit = DefaultColumnLimit
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	return o
}

// Renderer holds immutable options and may be shared between goroutines.
type Renderer struct {
	opts Options
}

func New(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

func (r *Renderer) Options() Options {
	return r.opts
}

// Render returns the text of f. Structural violations found while rendering
// are returned as *diag.Error.
func (r *Renderer) Render(f *decl.File) (text string, err error) {
	span := trace.Begin(r.opts.Tracer, trace.ScopeUnit, "render:"+f.Namespace, 0)
	defer func() {
		span.WithExtra("bytes", strconv.Itoa(len(text)))
		if err != nil {
			span.End(err.Error())
			return
		}
		span.End("")
	}()

	symbols, err := newSymbolTable(f.Aliases)
	if err != nil {
		return "", err
	}
	for _, m := range f.Members {
		if t, ok := m.(*decl.Type); ok {
			symbols.referenced[t.Name] = true
		}
	}

	if err := r.pass(io.Discard, passDiscover, f, symbols, span); err != nil {
		return "", err
	}
	symbols.freeze()

	var out strings.Builder
	if err := r.pass(&out, passRender, f, symbols, span); err != nil {
		return "", err
	}
	return out.String(), nil
}

// RenderCode renders body as the only member of a unit in namespace.
func (r *Renderer) RenderCode(namespace string, body code.Fragment) (string, error) {
	return r.Render(&decl.File{
		Namespace: namespace,
		Members:   []decl.Member{&decl.Code{Body: body}},
	})
}

func (r *Renderer) pass(out io.Writer, p pass, f *decl.File, symbols *symbolTable, parent *trace.Span) (err error) {
	span := trace.Begin(r.opts.Tracer, trace.ScopeDecl, "pass:"+p.String(), parent.ID())
	defer func() { span.End(errDetail(err)) }()

	w := newWriter(out, r.opts, p, f.Namespace, symbols)
	w.span = span
	defer catch(&err)
	w.file(f)
	return w.finish()
}

// catch turns a *diag.Error panic raised during emission into an error.
// Any other panic is re-raised.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*diag.Error); ok {
		*err = e
		return
	}
	panic(r)
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
