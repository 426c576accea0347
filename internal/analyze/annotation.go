package analyze

import (
	"strings"

	"mixin-ap/internal/common"
)

// ValueKind tags the payload of an annotation Value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueBool
	ValueInt
	ValueType       // class literal, Str holds the binary name
	ValueEnum       // enum constant, Str holds the constant as written
	ValueAnnotation // nested annotation
	ValueList
)

// Value is one annotation element value.
type Value struct {
	Kind       ValueKind
	Str        string
	Bool       bool
	Int        int64
	Annotation *Annotation
	List       []Value
}

// StringValue builds a string value.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// BoolValue builds a boolean value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// IntValue builds an integer value.
func IntValue(i int64) Value { return Value{Kind: ValueInt, Int: i} }

// TypeValue builds a class literal value.
func TypeValue(name string) Value { return Value{Kind: ValueType, Str: name} }

// EnumValue builds an enum constant value.
func EnumValue(constant string) Value { return Value{Kind: ValueEnum, Str: constant} }

// AnnotationValue builds a nested annotation value.
func AnnotationValue(a *Annotation) Value { return Value{Kind: ValueAnnotation, Annotation: a} }

// ListValue builds an array value.
func ListValue(items ...Value) Value { return Value{Kind: ValueList, List: items} }

// Unfold returns the items of a list value, or the value itself as a single
// item. Annotation arrays with one element may be written without braces, so
// callers always unfold.
func (v Value) Unfold() []Value {
	if v.Kind == ValueList {
		return v.List
	}

	return []Value{v}
}

// Annotation is an annotation instance with its explicitly written values.
type Annotation struct {
	Name   string // as written: "Mixin" or "org.spongepowered.asm.mixin.Mixin"
	Values map[string]Value
	Pos    Position
}

// NewAnnotation builds an annotation with the given values.
func NewAnnotation(name string, values map[string]Value) *Annotation {
	if values == nil {
		values = map[string]Value{}
	}

	return &Annotation{Name: name, Values: values}
}

// SimpleName returns the annotation name without its package.
func (a *Annotation) SimpleName() string {
	return common.SimpleName(a.Name)
}

// Is reports whether the annotation matches name, compared by simple name
// when either side is unqualified.
func (a *Annotation) Is(name string) bool {
	if a == nil {
		return false
	}

	if a.Name == name {
		return true
	}

	if !strings.Contains(name, ".") || !strings.Contains(a.Name, ".") {
		return a.SimpleName() == common.SimpleName(name)
	}

	return false
}

// Value returns the value for key.
func (a *Annotation) Value(key string) (Value, bool) {
	if a == nil {
		return Value{}, false
	}

	v, ok := a.Values[key]

	return v, ok
}

// Bool returns the boolean value for key, or def when absent or not a boolean.
func (a *Annotation) Bool(key string, def bool) bool {
	v, ok := a.Value(key)
	if !ok || v.Kind != ValueBool {
		return def
	}

	return v.Bool
}

// String returns the string or enum value for key, or def.
func (a *Annotation) String(key string, def string) string {
	v, ok := a.Value(key)
	if !ok {
		return def
	}

	switch v.Kind {
	case ValueString, ValueEnum, ValueType:
		return v.Str
	default:
		return def
	}
}

// Strings returns the unfolded string values for key, in order.
func (a *Annotation) Strings(key string) []string {
	return a.collect(key, func(v Value) (string, bool) {
		if v.Kind == ValueString || v.Kind == ValueEnum {
			return v.Str, true
		}

		return "", false
	})
}

// Types returns the unfolded class literal values for key, in order.
func (a *Annotation) Types(key string) []string {
	return a.collect(key, func(v Value) (string, bool) {
		return v.Str, v.Kind == ValueType
	})
}

// Annotations returns the unfolded nested annotations for key, in order.
func (a *Annotation) Annotations(key string) []*Annotation {
	v, ok := a.Value(key)
	if !ok {
		return nil
	}

	var out []*Annotation
	for _, item := range v.Unfold() {
		if item.Kind == ValueAnnotation && item.Annotation != nil {
			out = append(out, item.Annotation)
		}
	}

	return out
}

// Mismatched returns the unfolded values for key whose kind is not want.
func (a *Annotation) Mismatched(key string, want ValueKind) []Value {
	v, ok := a.Value(key)
	if !ok {
		return nil
	}

	var out []Value
	for _, item := range v.Unfold() {
		if item.Kind != want {
			out = append(out, item)
		}
	}

	return out
}

func (a *Annotation) collect(key string, pick func(Value) (string, bool)) []string {
	v, ok := a.Value(key)
	if !ok {
		return nil
	}

	var out []string
	for _, item := range v.Unfold() {
		if s, ok := pick(item); ok {
			out = append(out, s)
		}
	}

	return out
}
