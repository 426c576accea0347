package manifest

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"mixin-ap/internal/analyze"
)

// File is a parsed manifest.
type File struct {
	Version  string     `yaml:"version"`
	Packages []string   `yaml:"packages,omitempty"`
	Types    []TypeDecl `yaml:"types"`

	// Path is where the manifest was loaded from. Not serialized.
	Path string `yaml:"-"`
}

// TypeDecl describes one type.
type TypeDecl struct {
	Name        string           `yaml:"name"`
	Kind        string           `yaml:"kind,omitempty"`
	Public      bool             `yaml:"public,omitempty"`
	Static      bool             `yaml:"static,omitempty"`
	Enclosing   string           `yaml:"enclosing,omitempty"`
	Superclass  string           `yaml:"superclass,omitempty"`
	Interfaces  []string         `yaml:"interfaces,omitempty"`
	Doc         string           `yaml:"doc,omitempty"`
	Line        int              `yaml:"line,omitempty"`
	Annotations []AnnotationDecl `yaml:"annotations,omitempty"`
	Fields      []MemberDecl     `yaml:"fields,omitempty"`
	Methods     []MemberDecl     `yaml:"methods,omitempty"`
}

// MemberDecl describes a field or method.
type MemberDecl struct {
	Name        string           `yaml:"name"`
	Desc        string           `yaml:"desc"`
	Static      bool             `yaml:"static,omitempty"`
	Doc         string           `yaml:"doc,omitempty"`
	Line        int              `yaml:"line,omitempty"`
	Annotations []AnnotationDecl `yaml:"annotations,omitempty"`
}

// AnnotationDecl describes an annotation instance.
type AnnotationDecl struct {
	Name   string           `yaml:"name"`
	Values map[string]Value `yaml:"values,omitempty"`
}

// Value wraps an annotation value for YAML.
type Value struct {
	analyze.Value
}

// UnmarshalYAML decodes scalars by their resolved tag, sequences as lists,
// and single-key maps as tagged values.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}

			v.Value = analyze.BoolValue(b)
		case "!!int":
			i, err := strconv.ParseInt(node.Value, 0, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}

			v.Value = analyze.IntValue(i)
		default:
			v.Value = analyze.StringValue(node.Value)
		}

		return nil

	case yaml.SequenceNode:
		items := make([]analyze.Value, 0, len(node.Content))
		for _, child := range node.Content {
			var item Value
			if err := child.Decode(&item); err != nil {
				return err
			}

			items = append(items, item.Value)
		}

		v.Value = analyze.ListValue(items...)

		return nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: tagged value must have exactly one key", node.Line)
		}

		key, body := node.Content[0].Value, node.Content[1]

		switch key {
		case "type", "enum", "string":
			var s string
			if err := body.Decode(&s); err != nil {
				return err
			}

			switch key {
			case "type":
				v.Value = analyze.TypeValue(s)
			case "enum":
				v.Value = analyze.EnumValue(s)
			default:
				v.Value = analyze.StringValue(s)
			}
		case "annotation":
			var a AnnotationDecl
			if err := body.Decode(&a); err != nil {
				return err
			}

			v.Value = analyze.AnnotationValue(a.toAnnotation(analyze.Position{}))
		default:
			return fmt.Errorf("line %d: unknown value tag %q", node.Line, key)
		}

		return nil

	default:
		return fmt.Errorf("line %d: expected scalar, sequence or tagged value, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML writes the inverse of UnmarshalYAML.
func (v Value) MarshalYAML() (any, error) {
	switch v.Kind {
	case analyze.ValueBool:
		return v.Bool, nil
	case analyze.ValueInt:
		return v.Int, nil
	case analyze.ValueType:
		return map[string]string{"type": v.Str}, nil
	case analyze.ValueEnum:
		return map[string]string{"enum": v.Str}, nil
	case analyze.ValueAnnotation:
		return map[string]AnnotationDecl{"annotation": annotationDecl(v.Annotation)}, nil
	case analyze.ValueList:
		items := make([]Value, len(v.List))
		for i, item := range v.List {
			items[i] = Value{item}
		}

		return items, nil
	default:
		return v.Str, nil
	}
}

func (a AnnotationDecl) toAnnotation(pos analyze.Position) *analyze.Annotation {
	values := make(map[string]analyze.Value, len(a.Values))
	for k, v := range a.Values {
		values[k] = v.Value
	}

	ann := analyze.NewAnnotation(a.Name, values)
	ann.Pos = pos

	return ann
}

func annotationDecl(a *analyze.Annotation) AnnotationDecl {
	if a == nil {
		return AnnotationDecl{}
	}

	decl := AnnotationDecl{Name: a.Name}
	if len(a.Values) > 0 {
		decl.Values = make(map[string]Value, len(a.Values))
		for k, v := range a.Values {
			decl.Values[k] = Value{v}
		}
	}

	return decl
}
