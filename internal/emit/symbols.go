package emit

import (
	"slices"
	"strings"

	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/names"
)

// symbolTable is the import state of one render. Pass 1 fills importable and
// referenced; pass 2 reads imported, which is frozen before it starts.
type symbolTable struct {
	aliasOf    map[string]string           // canonical name -> alias
	imported   map[string]*names.ClassName // simple name or alias -> symbol
	importable map[string]*names.ClassName // pass 1 discoveries, first wins
	order      []string                    // discovery order of importable
	referenced map[string]bool             // own-namespace simple names in use
}

func newSymbolTable(aliases []decl.Alias) (*symbolTable, error) {
	st := &symbolTable{
		aliasOf:    make(map[string]string, len(aliases)),
		imported:   make(map[string]*names.ClassName, len(aliases)),
		importable: make(map[string]*names.ClassName),
		referenced: make(map[string]bool),
	}
	for _, a := range aliases {
		name, err := names.Ident(a.Name)
		if err != nil {
			return nil, err
		}
		if prev, ok := st.imported[name]; ok && !prev.Same(a.Class) {
			return nil, diag.Errorf(diag.SymMalformedName, "alias '%s' already names %s", name, prev.CanonicalName())
		}
		st.imported[name] = a.Class.AsNonNull()
		st.aliasOf[a.Class.CanonicalName()] = name
	}
	return st, nil
}

// freeze moves the pass 1 discoveries into the import table. Names reserved
// by the unit's own namespace and alias names are skipped.
func (st *symbolTable) freeze() {
	for _, simple := range st.order {
		if st.referenced[simple] {
			continue
		}
		if _, taken := st.imported[simple]; taken {
			continue
		}
		st.imported[simple] = st.importable[simple]
	}
}

// importLines returns the sorted import directives, skipping symbols of
// implicit namespaces unless they are aliased.
func (st *symbolTable) importLines(implicit []string) []string {
	type entry struct{ canonical, line string }
	var entries []entry
	for name, c := range st.imported {
		canonical := c.CanonicalName()
		if alias, ok := st.aliasOf[canonical]; ok && alias == name {
			if alias == c.SimpleName() && slices.Contains(implicit, c.Namespace()) {
				continue
			}
			line := escapeSegments(canonical)
			if alias != c.SimpleName() {
				line += " as " + escapeName(alias)
			}
			entries = append(entries, entry{canonical, line})
			continue
		}
		if slices.Contains(implicit, c.Namespace()) {
			continue
		}
		entries = append(entries, entry{canonical, escapeSegments(canonical)})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := strings.Compare(a.canonical, b.canonical); c != 0 {
			return c
		}
		return strings.Compare(a.line, b.line)
	})
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.line
	}
	return lines
}

// scopeEntry is a type declaration entered during emission.
type scopeEntry struct {
	t    *decl.Type
	name string
}

func (w *writer) pushScope(t *decl.Type, name string) {
	w.scope = append(w.scope, scopeEntry{t: t, name: name})
}

func (w *writer) popScope() {
	if len(w.scope) == 0 {
		panic(diag.Errorf(diag.StrUnbalancedScope, "scope stack underflow"))
	}
	w.scope = w.scope[:len(w.scope)-1]
}

// lookupName returns the shortest form of c that resolves to c at this
// point of the output, recording importable symbols during discovery.
func (w *writer) lookupName(c *names.ClassName) string {
	resolvedElsewhere := false
	for cur := c.AsNonNull(); cur != nil; cur = cur.Enclosing() {
		simple := cur.SimpleName()
		if alias, ok := w.symbols.aliasOf[cur.CanonicalName()]; ok {
			simple = alias
		}
		resolved := w.resolve(simple)
		resolvedElsewhere = resolved != nil
		if resolved != nil && resolved.Same(cur) {
			suffix := c.SimpleNames()[len(cur.SimpleNames())-1:]
			suffix[0] = simple
			return joinEscaped(suffix)
		}
	}

	if resolvedElsewhere {
		return escapeSegments(c.CanonicalName())
	}

	if c.Namespace() == w.namespace {
		w.symbols.referenced[c.TopLevel().SimpleName()] = true
		return joinEscaped(c.SimpleNames())
	}

	if !w.kdoc && w.pass == passDiscover {
		w.importable(c)
	}
	return escapeSegments(c.CanonicalName())
}

func (w *writer) importable(c *names.ClassName) {
	if c.Namespace() == "" {
		return
	}
	top := c.TopLevel()
	simple := top.SimpleName()
	if _, taken := w.symbols.importable[simple]; taken {
		return
	}
	w.symbols.importable[simple] = top
	w.symbols.order = append(w.symbols.order, simple)
}

// resolve maps a simple name to the symbol it denotes here: a member type
// of an enclosing declaration, the top-level declaration, or an import.
func (w *writer) resolve(simple string) *names.ClassName {
	for i := len(w.scope) - 1; i >= 0; i-- {
		if slices.Contains(w.scope[i].t.NestedTypeNames(), simple) {
			return w.scopeClassName(i, simple)
		}
	}
	if len(w.scope) > 0 && w.scope[0].name == simple {
		return w.scopeClassName(-1, simple)
	}
	if c, ok := w.symbols.imported[simple]; ok {
		return c
	}
	return nil
}

// scopeClassName builds the class name of simple nested in scope[0..depth].
func (w *writer) scopeClassName(depth int, simple string) *names.ClassName {
	path := make([]string, 0, depth+2)
	for i := 0; i <= depth; i++ {
		path = append(path, w.scope[i].name)
	}
	path = append(path, simple)
	c, err := names.NewClassName(w.namespace, path...)
	if err != nil {
		panic(err)
	}
	return c
}

func joinEscaped(segs []string) string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = escapeName(s)
	}
	return strings.Join(out, ".")
}
