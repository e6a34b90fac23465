// Package unit decodes unit descriptions (*.kp.yaml) into declaration trees.
//
// A unit names its namespace, optional header comment, import aliases and a
// list of members. Each member carries exactly one kind key:
//
//	namespace: com.example
//	members:
//	  - class: Greeter
//	    constructor:
//	      params:
//	        - {name: name, type: kotlin.String, bind: val}
//	    members:
//	      - fun: greet
//	        returns: kotlin.String
//	        body:
//	          format: "return %S + name\n"
//	          args: ["Hello, "]
//
// Type arguments of a fragment are tagged: `!type kotlin.String`.
package unit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"kpoet/internal/decl"
	"kpoet/internal/diag"
	"kpoet/internal/names"
)

const (
	// Ext is the file suffix of unit descriptions.
	Ext = ".kp.yaml"
	// OutputExt is the suffix of rendered files.
	OutputExt = ".kt"
)

// Unit is a decoded unit description.
type Unit struct {
	Path string
	// Output is the file name the unit renders to, relative to the unit's
	// directory.
	Output string
	File   *decl.File
}

// IsUnitFile reports whether name looks like a unit description.
func IsUnitFile(name string) bool {
	return strings.HasSuffix(name, Ext) || strings.HasSuffix(name, ".kp.yml")
}

// Load reads and decodes the unit at path.
func Load(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.IOLoadUnit, err, "failed to load unit").At(path, 0)
	}
	return Decode(data, path)
}

// Decode decodes a unit description. path is used for locations and the
// default output name.
func Decode(data []byte, path string) (*Unit, error) {
	var spec fileSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		var de *diag.Error
		if errors.As(err, &de) {
			return nil, locate(de, path, 0)
		}
		return nil, diag.Wrap(diag.UntInvalid, err, "invalid unit description").At(path, 0)
	}

	b := &builder{path: path, namespace: spec.Namespace}
	f, err := b.file(&spec)
	if err != nil {
		return nil, err
	}
	return &Unit{Path: path, Output: outputName(path, spec.Name), File: f}, nil
}

// outputName returns the explicit name or the camel-cased file stem, with the
// output suffix.
func outputName(path, name string) string {
	if name == "" {
		stem := filepath.Base(path)
		for _, ext := range []string{Ext, ".kp.yml", filepath.Ext(stem)} {
			if strings.HasSuffix(stem, ext) {
				stem = strings.TrimSuffix(stem, ext)
				break
			}
		}
		name = strcase.ToCamel(stem)
	}
	if !strings.HasSuffix(name, OutputExt) {
		name += OutputExt
	}
	return name
}

// locate fills in the position of err unless it already has one.
func locate(err error, path string, line int) error {
	var de *diag.Error
	if !errors.As(err, &de) {
		return diag.Wrap(diag.UntInvalid, err, "invalid unit description").At(path, line)
	}
	if de.Line != 0 {
		line = de.Line
	}
	return de.At(path, line)
}

// builder turns decoded specs into declarations. vars holds the type
// variables in scope.
type builder struct {
	path      string
	namespace string
	vars      map[string]*names.TypeVariable
}

func (b *builder) errorf(line int, c diag.Code, format string, args ...any) error {
	return diag.Errorf(c, format, args...).At(b.path, line)
}

func (b *builder) file(spec *fileSpec) (*decl.File, error) {
	f := &decl.File{Namespace: spec.Namespace}
	var err error
	if f.Comment, err = b.fragment(spec.Comment); err != nil {
		return nil, err
	}
	if f.Annotations, err = b.annotations(spec.Annotations); err != nil {
		return nil, err
	}
	for _, a := range spec.Aliases {
		c, err := names.BestGuess(a.Class)
		if err != nil {
			return nil, locate(err, b.path, a.line)
		}
		if a.As == "" {
			return nil, b.errorf(a.line, diag.UntInvalid, "alias of %s has no name", a.Class)
		}
		f.Aliases = append(f.Aliases, decl.Alias{Class: c, Name: a.As})
	}
	if f.Members, err = b.members(spec.Members); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *builder) members(specs []memberSpec) ([]decl.Member, error) {
	out := make([]decl.Member, 0, len(specs))
	for i := range specs {
		m, err := b.member(&specs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (b *builder) member(s *memberSpec) (decl.Member, error) {
	switch len(s.kinds) {
	case 0:
		return nil, b.errorf(s.line, diag.UntUnknownKind,
			"member has no kind; expected one of %s", strings.Join(memberKinds, ", "))
	case 1:
	default:
		return nil, b.errorf(s.line, diag.UntInvalid, "member declares both %s and %s", s.kinds[0], s.kinds[1])
	}

	switch kind := s.kinds[0]; kind {
	case "class":
		return b.typeDecl(s, decl.KindClass, s.Class)
	case "interface":
		return b.typeDecl(s, decl.KindInterface, s.Interface)
	case "object":
		return b.typeDecl(s, decl.KindObject, s.Object)
	case "enum":
		return b.typeDecl(s, decl.KindEnum, s.Enum)
	case "annotation":
		return b.typeDecl(s, decl.KindAnnotation, s.Annotation)
	case "fun":
		return b.function(s, s.Fun)
	case "property":
		return b.property(s)
	case "typealias":
		return b.typeAlias(s)
	default:
		body, err := b.fragment(s.Code)
		if err != nil {
			return nil, err
		}
		return &decl.Code{Body: body}, nil
	}
}
