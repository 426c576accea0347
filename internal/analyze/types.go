package analyze

import (
	"fmt"
	"strings"

	"mixin-ap/internal/common"
	"mixin-ap/internal/diagnostic"
)

// TypeKind represents the kind of a compiled unit.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindClass
	TypeKindInterface
	TypeKindEnum
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindClass:
		return "class"
	case TypeKindInterface:
		return "interface"
	case TypeKindEnum:
		return "enum"
	default:
		return common.UnknownStr
	}
}

// ParseTypeKind maps "class", "interface" and "enum" to a TypeKind.
func ParseTypeKind(s string) TypeKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "class":
		return TypeKindClass
	case "interface":
		return TypeKindInterface
	case "enum":
		return TypeKindEnum
	default:
		return TypeKindUnknown
	}
}

// MemberKind distinguishes fields from methods.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
)

// String returns "field" or "method".
func (k MemberKind) String() string {
	if k == MemberMethod {
		return "method"
	}

	return "field"
}

// Position is a source position.
type Position struct {
	File string
	Line int
}

// Element is anything a doc comment can be attached to.
type Element interface {
	QualifiedName() string
	DocComment() string
	Location(annotation string) diagnostic.Location
}

// TypeElement describes a class or interface declaration.
type TypeElement struct {
	Name        string // binary name, e.g. "net.minecraft.World" or "a.Outer$Inner"
	Kind        TypeKind
	Public      bool
	Static      bool
	Enclosing   string   // binary name of the enclosing type, "" at top level
	Superclass  string   // binary name, "" for java.lang.Object
	Interfaces  []string // binary names
	Annotations []*Annotation
	Fields      []*Member
	Methods     []*Member
	Doc         string
	Pos         Position
}

// QualifiedName returns the binary name.
func (t *TypeElement) QualifiedName() string {
	return t.Name
}

// DocComment returns the raw doc comment.
func (t *TypeElement) DocComment() string {
	return t.Doc
}

// Location builds a diagnostic location for this type.
func (t *TypeElement) Location(annotation string) diagnostic.Location {
	return diagnostic.Location{File: t.Pos.File, Line: t.Pos.Line, Element: t.Name, Annotation: annotation}
}

// InternalName returns the name in internal ("a/b/C") form.
func (t *TypeElement) InternalName() string {
	return common.InternalName(t.Name)
}

// SimpleName returns the unqualified name.
func (t *TypeElement) SimpleName() string {
	name := common.SimpleName(t.Name)
	if i := strings.LastIndexByte(name, '$'); i > -1 {
		return name[i+1:]
	}

	return name
}

// Package returns the package of the type.
func (t *TypeElement) Package() string {
	return common.PackageOf(t.Name)
}

// IsInterface reports whether the type is an interface.
func (t *TypeElement) IsInterface() bool {
	return t.Kind == TypeKindInterface
}

// IsTopLevel reports whether the type is directly enclosed by its package.
func (t *TypeElement) IsTopLevel() bool {
	return t.Enclosing == ""
}

// Annotation returns the first annotation matching name, or nil.
func (t *TypeElement) Annotation(name string) *Annotation {
	return findAnnotation(t.Annotations, name)
}

// FindField returns the field named name. An empty desc matches any descriptor.
func (t *TypeElement) FindField(name, desc string) *Member {
	return findMember(t.Fields, name, desc)
}

// FindMethod returns the method named name. An empty desc matches the first
// overload.
func (t *TypeElement) FindMethod(name, desc string) *Member {
	return findMember(t.Methods, name, desc)
}

// Members returns fields followed by methods, in declaration order.
func (t *TypeElement) Members() []*Member {
	out := make([]*Member, 0, len(t.Fields)+len(t.Methods))
	out = append(out, t.Fields...)

	return append(out, t.Methods...)
}

// Member describes a field or method.
type Member struct {
	Kind        MemberKind
	Owner       string // binary name of the declaring type
	Name        string
	Desc        string // JVM descriptor
	Static      bool
	Annotations []*Annotation
	Doc         string
	Pos         Position
}

// QualifiedName returns "Owner.name".
func (m *Member) QualifiedName() string {
	return m.Owner + "." + m.Name
}

// DocComment returns the raw doc comment.
func (m *Member) DocComment() string {
	return m.Doc
}

// Location builds a diagnostic location for this member.
func (m *Member) Location(annotation string) diagnostic.Location {
	return diagnostic.Location{File: m.Pos.File, Line: m.Pos.Line, Element: m.QualifiedName(), Annotation: annotation}
}

// Annotation returns the first annotation matching name, or nil.
func (m *Member) Annotation(name string) *Annotation {
	return findAnnotation(m.Annotations, name)
}

// IsMethod reports whether the member is a method.
func (m *Member) IsMethod() bool {
	return m.Kind == MemberMethod
}

// String returns "name desc".
func (m *Member) String() string {
	return fmt.Sprintf("%s %s", m.Name, m.Desc)
}

func findMember(members []*Member, name, desc string) *Member {
	for _, m := range members {
		if m.Name == name && (desc == "" || m.Desc == desc) {
			return m
		}
	}

	return nil
}

func findAnnotation(anns []*Annotation, name string) *Annotation {
	for _, a := range anns {
		if a.Is(name) {
			return a
		}
	}

	return nil
}
