package unit

import (
	"slices"

	"gopkg.in/yaml.v3"

	"kpoet/internal/diag"
)

// memberKinds are the keys that select what a member declares. A member
// carries exactly one of them.
var memberKinds = []string{
	"class", "interface", "object", "enum", "annotation",
	"fun", "property", "typealias", "code",
}

type fileSpec struct {
	Namespace   string           `yaml:"namespace"`
	Name        string           `yaml:"name"`
	Comment     *fragmentSpec    `yaml:"comment"`
	Annotations []annotationSpec `yaml:"annotations"`
	Aliases     []aliasSpec      `yaml:"aliases"`
	Members     []memberSpec     `yaml:"members"`
}

type aliasSpec struct {
	Class string `yaml:"class"`
	As    string `yaml:"as"`
	line  int
}

func (s *aliasSpec) UnmarshalYAML(n *yaml.Node) error {
	type plain aliasSpec
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line = n.Line
	return nil
}

// memberSpec is the union of every member shape; the kind key decides which
// fields apply.
type memberSpec struct {
	Class      string        `yaml:"class"`
	Interface  string        `yaml:"interface"`
	Object     string        `yaml:"object"`
	Enum       string        `yaml:"enum"`
	Annotation string        `yaml:"annotation"`
	Fun        string        `yaml:"fun"`
	Property   string        `yaml:"property"`
	TypeAlias  string        `yaml:"typealias"`
	Code       *fragmentSpec `yaml:"code"`

	Doc           *fragmentSpec    `yaml:"doc"`
	Annotations   []annotationSpec `yaml:"annotations"`
	Modifiers     []string         `yaml:"modifiers"`
	TypeVariables []typeVarSpec    `yaml:"type_variables"`

	Constructor    *constructorSpec `yaml:"constructor"`
	Superclass     string           `yaml:"superclass"`
	SuperclassArgs []fragmentSpec   `yaml:"superclass_args"`
	Supertypes     []string         `yaml:"supertypes"`
	Constants      []constantSpec   `yaml:"constants"`
	Members        []memberSpec     `yaml:"members"`
	Companion      *memberSpec      `yaml:"companion"`

	Receiver string        `yaml:"receiver"`
	Params   []paramSpec   `yaml:"params"`
	Returns  string        `yaml:"returns"`
	Body     *fragmentSpec `yaml:"body"`

	Type     string        `yaml:"type"`
	Mutable  bool          `yaml:"mutable"`
	Init     *fragmentSpec `yaml:"init"`
	Delegate *fragmentSpec `yaml:"delegate"`
	Getter   *accessorSpec `yaml:"get"`
	Setter   *accessorSpec `yaml:"set"`

	kinds []string
	line  int
}

func (s *memberSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return diag.Errorf(diag.UntInvalid, "member must be a mapping").At("", n.Line)
	}
	type plain memberSpec
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	for i := 0; i < len(n.Content); i += 2 {
		if key := n.Content[i].Value; slices.Contains(memberKinds, key) {
			s.kinds = append(s.kinds, key)
		}
	}
	s.line = n.Line
	return nil
}

type constructorSpec struct {
	Modifiers   []string         `yaml:"modifiers"`
	Annotations []annotationSpec `yaml:"annotations"`
	Params      []paramSpec      `yaml:"params"`
}

type accessorSpec struct {
	Modifiers []string      `yaml:"modifiers"`
	Params    []paramSpec   `yaml:"params"`
	Body      *fragmentSpec `yaml:"body"`
}

type paramSpec struct {
	Name        string           `yaml:"name"`
	Type        string           `yaml:"type"`
	Default     *fragmentSpec    `yaml:"default"`
	Bind        string           `yaml:"bind"`
	Modifiers   []string         `yaml:"modifiers"`
	Annotations []annotationSpec `yaml:"annotations"`
	line        int
}

func (s *paramSpec) UnmarshalYAML(n *yaml.Node) error {
	type plain paramSpec
	if err := n.Decode((*plain)(s)); err != nil {
		return err
	}
	s.line = n.Line
	return nil
}

// constantSpec is an enum constant: a bare name or a mapping.
type constantSpec struct {
	Name string        `yaml:"name"`
	Doc  *fragmentSpec `yaml:"doc"`
	Args *fragmentSpec `yaml:"args"`
	line int
}

func (s *constantSpec) UnmarshalYAML(n *yaml.Node) error {
	s.line = n.Line
	if n.Kind == yaml.ScalarNode {
		s.Name = n.Value
		return nil
	}
	type plain constantSpec
	return n.Decode((*plain)(s))
}

// typeVarSpec is a type variable: a bare name or a mapping with bounds.
type typeVarSpec struct {
	Name     string   `yaml:"name"`
	Bounds   []string `yaml:"bounds"`
	Variance string   `yaml:"variance"`
	Reified  bool     `yaml:"reified"`
	line     int
}

func (s *typeVarSpec) UnmarshalYAML(n *yaml.Node) error {
	s.line = n.Line
	if n.Kind == yaml.ScalarNode {
		s.Name = n.Value
		return nil
	}
	type plain typeVarSpec
	return n.Decode((*plain)(s))
}

// annotationSpec is an annotation: a bare type or a mapping.
type annotationSpec struct {
	Type    string         `yaml:"type"`
	Target  string         `yaml:"target"`
	Members []fragmentSpec `yaml:"members"`
	line    int
}

func (s *annotationSpec) UnmarshalYAML(n *yaml.Node) error {
	s.line = n.Line
	if n.Kind == yaml.ScalarNode {
		s.Type = n.Value
		return nil
	}
	type plain annotationSpec
	return n.Decode((*plain)(s))
}

// fragmentSpec is a code fragment: a bare format string or a mapping with
// format and args. A sequence of args binds positionally, a mapping binds by
// name.
type fragmentSpec struct {
	format string
	args   *yaml.Node
	line   int
}

func (s *fragmentSpec) UnmarshalYAML(n *yaml.Node) error {
	s.line = n.Line
	switch n.Kind {
	case yaml.ScalarNode:
		s.format = n.Value
		return nil
	case yaml.MappingNode:
		var v struct {
			Format string    `yaml:"format"`
			Args   yaml.Node `yaml:"args"`
		}
		if err := n.Decode(&v); err != nil {
			return err
		}
		s.format = v.Format
		if v.Args.Kind != 0 {
			s.args = &v.Args
		}
		return nil
	default:
		return diag.Errorf(diag.UntBadArgument, "code must be a string or a mapping with format and args").At("", n.Line)
	}
}
