package unit

import (
	"maps"
	"strconv"

	"gopkg.in/yaml.v3"

	"kpoet/internal/code"
	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/names"
)

// scoped returns a builder with specs added to the type variables in scope.
// Bounds are parsed after every new variable is visible so a variable may
// refer to itself.
func (b *builder) scoped(specs []typeVarSpec) (*builder, []*names.TypeVariable, error) {
	if len(specs) == 0 {
		return b, nil, nil
	}
	inner := *b
	inner.vars = maps.Clone(b.vars)
	if inner.vars == nil {
		inner.vars = make(map[string]*names.TypeVariable, len(specs))
	}
	vars := make([]*names.TypeVariable, len(specs))
	for i, s := range specs {
		v, err := names.NewTypeVariable(s.Name)
		if err != nil {
			return nil, nil, locate(err, b.path, s.line)
		}
		v.Reified = s.Reified
		switch s.Variance {
		case "":
		case "in":
			v.Variance = names.In
		case "out":
			v.Variance = names.Out
		default:
			return nil, nil, b.errorf(s.line, diag.UntInvalid, "unknown variance '%s'", s.Variance)
		}
		vars[i] = v
		inner.vars[v.Name] = v
	}
	for i, s := range specs {
		for _, src := range s.Bounds {
			t, err := inner.typeName(src, s.line)
			if err != nil {
				return nil, nil, err
			}
			vars[i].Bounds = append(vars[i].Bounds, t)
		}
	}
	return &inner, vars, nil
}

func (b *builder) typeName(src string, line int) (names.TypeName, error) {
	t, err := ParseType(src, b.namespace, b.vars)
	if err != nil {
		return nil, locate(err, b.path, line)
	}
	return t, nil
}

func (b *builder) optionalType(src string, line int) (names.TypeName, error) {
	if src == "" {
		return nil, nil
	}
	return b.typeName(src, line)
}

func (b *builder) className(src string, line int) (*names.ClassName, error) {
	t, err := b.typeName(src, line)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*names.ClassName)
	if !ok {
		return nil, b.errorf(line, diag.UntBadType, "expected a class name, got '%s'", src)
	}
	return c, nil
}

func (b *builder) modifiers(keywords []string, line int) ([]decl.Modifier, error) {
	out := make([]decl.Modifier, 0, len(keywords))
	for _, kw := range keywords {
		m, err := decl.ParseModifier(kw)
		if err != nil {
			return nil, locate(err, b.path, line)
		}
		out = append(out, m)
	}
	return out, nil
}

func (b *builder) typeDecl(s *memberSpec, kind decl.TypeKind, name string) (*decl.Type, error) {
	if name == "" {
		return nil, b.errorf(s.line, diag.UntInvalid, "%s without a name", kind.Keyword())
	}
	return b.typeBody(s, kind, name)
}

func (b *builder) typeBody(s *memberSpec, kind decl.TypeKind, name string) (*decl.Type, error) {
	b, vars, err := b.scoped(s.TypeVariables)
	if err != nil {
		return nil, err
	}
	t := &decl.Type{Kind: kind, Name: name, TypeVariables: vars}
	if t.Doc, err = b.fragment(s.Doc); err != nil {
		return nil, err
	}
	if t.Annotations, err = b.annotations(s.Annotations); err != nil {
		return nil, err
	}
	if t.Modifiers, err = b.modifiers(s.Modifiers, s.line); err != nil {
		return nil, err
	}
	if c := s.Constructor; c != nil {
		ctor := &decl.Func{Name: "constructor"}
		if ctor.Modifiers, err = b.modifiers(c.Modifiers, s.line); err != nil {
			return nil, err
		}
		if ctor.Annotations, err = b.annotations(c.Annotations); err != nil {
			return nil, err
		}
		if ctor.Params, err = b.params(c.Params); err != nil {
			return nil, err
		}
		t.Constructor = ctor
	}
	if t.Superclass, err = b.optionalType(s.Superclass, s.line); err != nil {
		return nil, err
	}
	for i := range s.SuperclassArgs {
		arg, err := b.fragment(&s.SuperclassArgs[i])
		if err != nil {
			return nil, err
		}
		t.SuperclassArgs = append(t.SuperclassArgs, arg)
	}
	for _, src := range s.Supertypes {
		st, err := b.typeName(src, s.line)
		if err != nil {
			return nil, err
		}
		t.Supertypes = append(t.Supertypes, st)
	}
	if len(s.Constants) > 0 && kind != decl.KindEnum {
		return nil, b.errorf(s.line, diag.UntInvalid, "constants are only allowed in enums")
	}
	for _, c := range s.Constants {
		ec := decl.EnumConstant{Name: c.Name}
		if _, err := names.Ident(c.Name); err != nil {
			return nil, locate(err, b.path, c.line)
		}
		if ec.Doc, err = b.fragment(c.Doc); err != nil {
			return nil, err
		}
		if ec.Args, err = b.fragment(c.Args); err != nil {
			return nil, err
		}
		t.EnumConstants = append(t.EnumConstants, ec)
	}
	if t.Init, err = b.fragment(s.Init); err != nil {
		return nil, err
	}
	if t.Members, err = b.members(s.Members); err != nil {
		return nil, err
	}
	if s.Companion != nil {
		if t.Companion, err = b.typeBody(s.Companion, decl.KindObject, s.Companion.Object); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (b *builder) function(s *memberSpec, name string) (*decl.Func, error) {
	if name == "" {
		return nil, b.errorf(s.line, diag.UntInvalid, "fun without a name")
	}
	b, vars, err := b.scoped(s.TypeVariables)
	if err != nil {
		return nil, err
	}
	f := &decl.Func{Name: name, TypeVariables: vars, HasBody: s.Body != nil}
	if f.Doc, err = b.fragment(s.Doc); err != nil {
		return nil, err
	}
	if f.Annotations, err = b.annotations(s.Annotations); err != nil {
		return nil, err
	}
	if f.Modifiers, err = b.modifiers(s.Modifiers, s.line); err != nil {
		return nil, err
	}
	if f.Receiver, err = b.optionalType(s.Receiver, s.line); err != nil {
		return nil, err
	}
	if f.Params, err = b.params(s.Params); err != nil {
		return nil, err
	}
	if f.Returns, err = b.optionalType(s.Returns, s.line); err != nil {
		return nil, err
	}
	if f.Body, err = b.fragment(s.Body); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *builder) property(s *memberSpec) (*decl.Property, error) {
	if s.Property == "" {
		return nil, b.errorf(s.line, diag.UntInvalid, "property without a name")
	}
	if s.Init != nil && s.Delegate != nil {
		return nil, b.errorf(s.line, diag.UntInvalid, "property %s has both init and delegate", s.Property)
	}
	p := &decl.Property{Name: s.Property, Mutable: s.Mutable}
	var err error
	if p.Doc, err = b.fragment(s.Doc); err != nil {
		return nil, err
	}
	if p.Annotations, err = b.annotations(s.Annotations); err != nil {
		return nil, err
	}
	if p.Modifiers, err = b.modifiers(s.Modifiers, s.line); err != nil {
		return nil, err
	}
	if p.Receiver, err = b.optionalType(s.Receiver, s.line); err != nil {
		return nil, err
	}
	if p.Type, err = b.optionalType(s.Type, s.line); err != nil {
		return nil, err
	}
	initializer := s.Init
	if s.Delegate != nil {
		initializer = s.Delegate
		p.Delegated = true
	}
	if p.Initializer, err = b.fragment(initializer); err != nil {
		return nil, err
	}
	if p.Getter, err = b.accessor(s.Getter, s.line); err != nil {
		return nil, err
	}
	if p.Setter, err = b.accessor(s.Setter, s.line); err != nil {
		return nil, err
	}
	return p, nil
}

func (b *builder) accessor(s *accessorSpec, line int) (*decl.Func, error) {
	if s == nil {
		return nil, nil
	}
	f := &decl.Func{HasBody: s.Body != nil}
	var err error
	if f.Modifiers, err = b.modifiers(s.Modifiers, line); err != nil {
		return nil, err
	}
	if f.Params, err = b.params(s.Params); err != nil {
		return nil, err
	}
	if f.Body, err = b.fragment(s.Body); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *builder) typeAlias(s *memberSpec) (*decl.TypeAlias, error) {
	if s.TypeAlias == "" || s.Type == "" {
		return nil, b.errorf(s.line, diag.UntInvalid, "typealias needs a name and a type")
	}
	b, vars, err := b.scoped(s.TypeVariables)
	if err != nil {
		return nil, err
	}
	a := &decl.TypeAlias{Name: s.TypeAlias, TypeVariables: vars}
	if a.Doc, err = b.fragment(s.Doc); err != nil {
		return nil, err
	}
	if a.Modifiers, err = b.modifiers(s.Modifiers, s.line); err != nil {
		return nil, err
	}
	if a.Type, err = b.typeName(s.Type, s.line); err != nil {
		return nil, err
	}
	return a, nil
}

func (b *builder) params(specs []paramSpec) ([]decl.Param, error) {
	out := make([]decl.Param, 0, len(specs))
	for _, s := range specs {
		if s.Type == "" {
			return nil, b.errorf(s.line, diag.UntInvalid, "parameter %s without a type", s.Name)
		}
		name, err := names.Ident(s.Name)
		if err != nil {
			return nil, locate(err, b.path, s.line)
		}
		p := decl.Param{Name: name}
		switch s.Bind {
		case "":
		case "val":
			p.Binding = decl.BindVal
		case "var":
			p.Binding = decl.BindVar
		default:
			return nil, b.errorf(s.line, diag.UntInvalid, "bind must be val or var, got '%s'", s.Bind)
		}
		if p.Type, err = b.typeName(s.Type, s.line); err != nil {
			return nil, err
		}
		if p.Default, err = b.fragment(s.Default); err != nil {
			return nil, err
		}
		if p.Modifiers, err = b.modifiers(s.Modifiers, s.line); err != nil {
			return nil, err
		}
		if p.Annotations, err = b.annotations(s.Annotations); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *builder) annotations(specs []annotationSpec) ([]decl.Annotation, error) {
	var out []decl.Annotation
	for _, s := range specs {
		c, err := b.className(s.Type, s.line)
		if err != nil {
			return nil, err
		}
		a := decl.Annotation{Type: c, Target: s.Target}
		for i := range s.Members {
			m, err := b.fragment(&s.Members[i])
			if err != nil {
				return nil, err
			}
			a.Members = append(a.Members, m)
		}
		out = append(out, a)
	}
	return out, nil
}

// fragment builds a code fragment. A nil spec is the empty fragment.
func (b *builder) fragment(s *fragmentSpec) (code.Fragment, error) {
	if s == nil {
		return code.Fragment{}, nil
	}
	var (
		f   code.Fragment
		err error
	)
	switch {
	case s.args == nil:
		f, err = code.Of(s.format)
	case s.args.Kind == yaml.SequenceNode:
		args := make([]any, len(s.args.Content))
		for i, n := range s.args.Content {
			if args[i], err = b.argument(n); err != nil {
				return code.Fragment{}, err
			}
		}
		f, err = code.Of(s.format, args...)
	case s.args.Kind == yaml.MappingNode:
		args := make(map[string]any, len(s.args.Content)/2)
		for i := 0; i+1 < len(s.args.Content); i += 2 {
			if args[s.args.Content[i].Value], err = b.argument(s.args.Content[i+1]); err != nil {
				return code.Fragment{}, err
			}
		}
		f, err = code.Named(s.format, args)
	default:
		return code.Fragment{}, b.errorf(s.args.Line, diag.UntBadArgument, "args must be a sequence or a mapping")
	}
	if err != nil {
		return code.Fragment{}, locate(err, b.path, s.line)
	}
	return f, nil
}

// argument converts one fragment argument. Scalars keep their YAML type;
// the !type tag parses a type expression.
func (b *builder) argument(n *yaml.Node) (any, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, b.errorf(n.Line, diag.UntBadArgument, "fragment arguments must be scalars")
	}
	switch n.Tag {
	case "!type":
		return b.typeName(n.Value, n.Line)
	case "!!null":
		return nil, nil
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, b.errorf(n.Line, diag.UntBadArgument, "bad integer '%s'", n.Value)
		}
		return v, nil
	case "!!bool":
		var v bool
		if err := n.Decode(&v); err != nil {
			return nil, b.errorf(n.Line, diag.UntBadArgument, "bad boolean '%s'", n.Value)
		}
		return v, nil
	default:
		return n.Value, nil
	}
}
