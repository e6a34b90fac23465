package code

// Builder assembles a fragment append-only. The first malformed format is
// remembered and returned by Build; later calls are ignored.
type Builder struct {
	parts []Part
	err   error
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends format parsed in positional mode.
func (b *Builder) Add(format string, args ...any) *Builder {
	if b.err != nil {
		return b
	}
	b.parts, b.err = appendPositional(b.parts, format, args)
	return b
}

// AddNamed appends format parsed in named mode.
func (b *Builder) AddNamed(format string, args map[string]any) *Builder {
	if b.err != nil {
		return b
	}
	b.parts, b.err = appendNamed(b.parts, format, args)
	return b
}

// AddStatement appends format as one statement terminated by a newline.
func (b *Builder) AddStatement(format string, args ...any) *Builder {
	if b.err != nil {
		return b
	}
	parts, err := appendPositional(nil, format, args)
	if err != nil {
		b.err = err
		return b
	}
	b.parts = append(b.parts, Part{Kind: PartStatementBegin})
	b.parts = append(b.parts, parts...)
	b.parts = append(b.parts, Part{Kind: PartText, Text: "\n"}, Part{Kind: PartStatementEnd})
	return b
}

// BeginControlFlow appends "controlFlow {" and indents.
func (b *Builder) BeginControlFlow(controlFlow string, args ...any) *Builder {
	return b.Add(controlFlow+" {\n", args...).Indent()
}

// NextControlFlow closes the open block and starts "} controlFlow {".
func (b *Builder) NextControlFlow(controlFlow string, args ...any) *Builder {
	return b.Unindent().Add("} "+controlFlow+" {\n", args...).Indent()
}

// EndControlFlow closes the open block.
func (b *Builder) EndControlFlow() *Builder {
	return b.Unindent().Add("}\n")
}

func (b *Builder) Indent() *Builder {
	if b.err == nil {
		b.parts = append(b.parts, Part{Kind: PartIndent})
	}
	return b
}

func (b *Builder) Unindent() *Builder {
	if b.err == nil {
		b.parts = append(b.parts, Part{Kind: PartUnindent})
	}
	return b
}

// AddFragment appends every part of f.
func (b *Builder) AddFragment(f Fragment) *Builder {
	if b.err == nil {
		b.parts = append(b.parts, f.parts...)
	}
	return b
}

func (b *Builder) Err() error {
	return b.err
}

// Build returns the assembled fragment. The builder may keep being used; the
// returned fragment does not observe later appends.
func (b *Builder) Build() (Fragment, error) {
	if b.err != nil {
		return Fragment{}, b.err
	}
	return Fragment{parts: append([]Part(nil), b.parts...)}, nil
}

// Join concatenates fragments, separated by sep parsed as a format without
// arguments.
func Join(sep string, fragments ...Fragment) (Fragment, error) {
	sepParts, err := appendPositional(nil, sep, nil)
	if err != nil {
		return Fragment{}, err
	}
	var parts []Part
	for i, f := range fragments {
		if i > 0 {
			parts = append(parts, sepParts...)
		}
		parts = append(parts, f.parts...)
	}
	return Fragment{parts: parts}, nil
}
