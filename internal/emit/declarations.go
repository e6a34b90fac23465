package emit

import (
	"kpoet/internal/code"
	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/names"
	"kpoet/internal/trace"
)

func (w *writer) file(f *decl.File) {
	if !f.Comment.IsEmpty() {
		w.emitComment(f.Comment)
	}
	for _, a := range f.Annotations {
		a.Target = "file"
		w.annotation(a, false)
	}
	if len(f.Annotations) > 0 {
		w.emit("\n")
	}
	if f.Namespace != "" {
		w.emit("package " + escapeSegments(f.Namespace) + "\n\n")
	}
	if w.pass == passRender {
		if lines := w.symbols.importLines(w.opts.ImplicitNamespaces); len(lines) > 0 {
			for _, line := range lines {
				w.emit("import " + line + "\n")
			}
			w.emit("\n")
		}
	}
	for i, m := range f.Members {
		if i > 0 {
			w.emit("\n")
		}
		w.member(m)
	}
}

func (w *writer) member(m decl.Member) {
	span := trace.Begin(w.opts.Tracer, trace.ScopeDecl, "decl:"+m.Identifier(), w.span.ID())
	defer span.End(w.pass.String())

	switch m := m.(type) {
	case *decl.Type:
		w.typeDecl(m)
	case *decl.Func:
		w.function(m, w.enclosing())
	case *decl.Property:
		w.property(m, w.enclosing())
	case *decl.TypeAlias:
		w.typeAlias(m)
	case *decl.Code:
		w.emitCode(m.Body, true)
	default:
		panic(diag.Errorf(diag.StrUnsupportedMember, "unsupported member %T", m))
	}
}

func (w *writer) enclosing() *decl.Type {
	if len(w.scope) == 0 {
		return nil
	}
	return w.scope[len(w.scope)-1].t
}

func (w *writer) typeDecl(t *decl.Type) {
	w.emitKdoc(t.Doc)
	w.annotations(t.Annotations)
	w.modifiers(t.Modifiers)

	name := t.Name
	if decl.Has(t.Modifiers, decl.Companion) {
		if name == "" {
			name = "Companion"
		}
		w.emit("object")
		if name != "Companion" {
			w.emit(" " + escapeName(name))
		}
	} else {
		if name == "" {
			panic(diag.Errorf(diag.StrMalformedDeclaration, "%s declaration without a name", t.Kind.Keyword()))
		}
		w.emit(t.Kind.Keyword() + " " + escapeName(name))
	}
	w.typeVariables(t.TypeVariables)

	if ctor := t.Constructor; ctor != nil {
		if len(ctor.Annotations) > 0 || len(ctor.Modifiers) > 0 {
			w.emit(" ")
			w.annotations(ctor.Annotations)
			w.modifiers(ctor.Modifiers)
			w.emit("constructor")
		}
		w.params(ctor.Params)
	}

	first := true
	sep := func() {
		if first {
			w.emit(" : ")
			first = false
		} else {
			w.emit(", ")
		}
	}
	if t.Superclass != nil {
		sep()
		w.emitType(t.Superclass)
		if t.Kind == decl.KindClass || t.Kind == decl.KindEnum || t.Kind == decl.KindObject {
			w.emit("(")
			for i, arg := range t.SuperclassArgs {
				if i > 0 {
					w.emit(",")
					w.wrappingSpace()
				}
				w.emitCode(arg, false)
			}
			w.emit(")")
		}
	}
	for _, st := range t.Supertypes {
		sep()
		w.emitType(st)
	}
	w.whereClause(t.TypeVariables)

	hasBody := len(t.EnumConstants) > 0 || len(t.Members) > 0 || t.Companion != nil || !t.Init.IsEmpty()
	if !hasBody {
		w.emit("\n")
		return
	}

	w.emit(" {\n")
	w.indent(1)
	w.pushScope(t, name)

	blank := false
	separate := func() {
		if blank {
			w.emit("\n")
		}
		blank = true
	}
	for i, c := range t.EnumConstants {
		w.emitKdoc(c.Doc)
		w.emit(escapeName(c.Name))
		if !c.Args.IsEmpty() {
			w.emit("(")
			w.emitCode(c.Args, false)
			w.emit(")")
		}
		switch {
		case i < len(t.EnumConstants)-1:
			w.emit(",\n")
		case len(t.Members) > 0 || t.Companion != nil || !t.Init.IsEmpty():
			w.emit(";\n")
		default:
			w.emit("\n")
		}
		blank = true
	}
	if !t.Init.IsEmpty() {
		separate()
		w.emit("init {\n")
		w.indent(1)
		w.emitCode(t.Init, true)
		w.unindent(1)
		w.emit("}\n")
	}
	for _, m := range t.Members {
		separate()
		w.member(m)
	}
	if t.Companion != nil {
		separate()
		companion := *t.Companion
		companion.Modifiers = append([]decl.Modifier{decl.Companion}, t.Companion.Modifiers...)
		companion.Kind = decl.KindObject
		w.typeDecl(&companion)
	}

	w.popScope()
	w.unindent(1)
	w.emit("}\n")
}

func (w *writer) function(f *decl.Func, enclosing *decl.Type) {
	w.emitKdoc(f.Doc)
	w.annotations(f.Annotations)
	w.modifiers(f.Modifiers)

	if f.Name == "constructor" {
		w.emit("constructor")
	} else {
		w.emit("fun ")
		if len(f.TypeVariables) > 0 {
			w.typeVariables(f.TypeVariables)
			w.emit(" ")
		}
		if f.Receiver != nil {
			w.receiver(f.Receiver)
		}
		w.emit(escapeName(f.Name))
	}
	w.params(f.Params)
	if f.Returns != nil && !isUnit(f.Returns) {
		w.emit(": ")
		w.emitType(f.Returns)
	}
	w.whereClause(f.TypeVariables)

	abstract := decl.Has(f.Modifiers, decl.Abstract) || (enclosing != nil && enclosing.Kind == decl.KindInterface)
	if f.Body.IsEmpty() && !f.HasBody && abstract {
		w.emit("\n")
		return
	}
	w.body(f.Body)
}

func (w *writer) body(body code.Fragment) {
	w.emit(" {\n")
	w.indent(1)
	w.emitCode(body, true)
	w.unindent(1)
	w.emit("}\n")
}

func (w *writer) receiver(t names.TypeName) {
	if t.Kind() == names.KindLambda {
		w.emit("(")
		w.emitType(t)
		w.emit(")")
	} else {
		w.emitType(t)
	}
	w.emit(".")
}

func isUnit(t names.TypeName) bool {
	c, ok := t.(*names.ClassName)
	return ok && !c.IsNullable() && c.Same(names.Unit)
}

func (w *writer) property(p *decl.Property, _ *decl.Type) {
	w.emitKdoc(p.Doc)
	w.annotations(p.Annotations)
	w.modifiers(p.Modifiers)
	if p.Mutable {
		w.emit("var ")
	} else {
		w.emit("val ")
	}
	if p.Receiver != nil {
		w.receiver(p.Receiver)
	}
	w.emit(escapeName(p.Name))
	if p.Type != nil {
		w.emit(": ")
		w.emitType(p.Type)
	}
	if !p.Initializer.IsEmpty() {
		if p.Delegated {
			w.emit(" by ")
		} else {
			w.emit(" = ")
		}
		if hasStatements(p.Initializer) {
			w.emitCode(p.Initializer, false)
		} else {
			w.beginStatement()
			w.emitCode(p.Initializer, false)
			w.endStatement()
		}
	}
	w.emit("\n")
	if p.Getter != nil || p.Setter != nil {
		w.indent(1)
		if p.Getter != nil {
			w.accessor("get", p.Getter)
		}
		if p.Setter != nil {
			w.accessor("set", p.Setter)
		}
		w.unindent(1)
	}
}

func hasStatements(f code.Fragment) bool {
	for _, p := range f.Parts() {
		if p.Kind == code.PartStatementBegin {
			return true
		}
	}
	return false
}

func (w *writer) accessor(kind string, f *decl.Func) {
	w.emitKdoc(f.Doc)
	w.annotations(f.Annotations)
	w.modifiers(f.Modifiers)
	w.emit(kind)
	if f.Body.IsEmpty() && !f.HasBody {
		w.emit("\n")
		return
	}
	w.params(f.Params)
	if f.Returns != nil && kind == "get" {
		w.emit(": ")
		w.emitType(f.Returns)
	}
	w.body(f.Body)
}

func (w *writer) typeAlias(a *decl.TypeAlias) {
	if a.Type == nil {
		panic(diag.Errorf(diag.StrMalformedDeclaration, "typealias %s without a type", a.Name))
	}
	w.emitKdoc(a.Doc)
	w.modifiers(a.Modifiers)
	w.emit("typealias " + escapeName(a.Name))
	w.typeVariables(a.TypeVariables)
	w.emit(" = ")
	w.emitType(a.Type)
	w.emit("\n")
}

func (w *writer) annotations(list []decl.Annotation) {
	for _, a := range list {
		w.annotation(a, false)
	}
}

// annotation writes "@Type(members)" followed by a space when inline and a
// newline otherwise.
func (w *writer) annotation(a decl.Annotation, inline bool) {
	if a.Type == nil {
		panic(diag.Errorf(diag.StrMalformedDeclaration, "annotation without a type"))
	}
	w.emit("@")
	if a.Target != "" {
		w.emit(a.Target + ":")
	}
	w.emitType(a.Type)
	if len(a.Members) > 0 {
		w.emit("(")
		for i, m := range a.Members {
			if i > 0 {
				w.emit(",")
				w.wrappingSpace()
			}
			w.emitCode(m, false)
		}
		w.emit(")")
	}
	if inline {
		w.emit(" ")
	} else {
		w.emit("\n")
	}
}

func (w *writer) modifiers(mods []decl.Modifier) {
	for _, m := range decl.Canonical(mods) {
		w.emit(m.String() + " ")
	}
}

func (w *writer) params(params []decl.Param) {
	w.emit("(")
	for i, p := range params {
		if i > 0 {
			w.emit(",")
			w.wrappingSpace()
		}
		w.param(p)
	}
	w.emit(")")
}

func (w *writer) param(p decl.Param) {
	for _, a := range p.Annotations {
		w.annotation(a, true)
	}
	w.modifiers(p.Modifiers)
	switch p.Binding {
	case decl.BindVal:
		w.emit("val ")
	case decl.BindVar:
		w.emit("var ")
	}
	if p.Type == nil {
		panic(diag.Errorf(diag.StrMalformedDeclaration, "parameter %s without a type", p.Name))
	}
	w.emit(escapeName(p.Name) + ": ")
	w.emitType(p.Type)
	if !p.Default.IsEmpty() {
		w.emit(" = ")
		w.emitCode(p.Default, false)
	}
}

// typeVariables writes "<out T : Bound, R>". Variables with several bounds
// are constrained in the where clause instead.
func (w *writer) typeVariables(vars []*names.TypeVariable) {
	if len(vars) == 0 {
		return
	}
	w.emit("<")
	for i, v := range vars {
		if i > 0 {
			w.emit(", ")
		}
		if v.Reified {
			w.emit("reified ")
		}
		if kw := v.Variance.Keyword(); kw != "" {
			w.emit(kw + " ")
		}
		w.emit(escapeName(v.Name))
		if len(v.Bounds) == 1 {
			w.emit(" : ")
			w.emitType(v.Bounds[0])
		}
	}
	w.emit(">")
}

func (w *writer) whereClause(vars []*names.TypeVariable) {
	first := true
	for _, v := range vars {
		if len(v.Bounds) < 2 {
			continue
		}
		for _, b := range v.Bounds {
			if first {
				w.emit(" where ")
				first = false
			} else {
				w.emit(", ")
			}
			w.emit(escapeName(v.Name) + " : ")
			w.emitType(b)
		}
	}
}
