package analyze

import (
	"mixin-ap/internal/common"
)

// TypeHandle is a compiled unit as seen by the processor. Handles are equal
// iff their names are equal. A handle without an element is imaginary: its
// package is known but the type itself is not visible to the front end
// (typically a package-private class in a dependency).
type TypeHandle struct {
	name    string // binary name
	pkg     string
	element *TypeElement
}

// NewTypeHandle returns a handle for a declared type.
func NewTypeHandle(el *TypeElement) *TypeHandle {
	return &TypeHandle{name: el.Name, pkg: el.Package(), element: el}
}

// NewImaginaryTypeHandle returns a handle for a type known only by name.
func NewImaginaryTypeHandle(pkg, name string) *TypeHandle {
	return &TypeHandle{name: common.BinaryName(name), pkg: pkg}
}

// Name returns the internal ("a/b/C") name.
func (h *TypeHandle) Name() string {
	return common.InternalName(h.name)
}

// BinaryName returns the binary ("a.b.C") name.
func (h *TypeHandle) BinaryName() string {
	return h.name
}

// Package returns the package name.
func (h *TypeHandle) Package() string {
	return h.pkg
}

// Element returns the declaration behind the handle, nil if imaginary.
func (h *TypeHandle) Element() *TypeElement {
	return h.element
}

// IsImaginary reports whether the handle has no declaration.
func (h *TypeHandle) IsImaginary() bool {
	return h.element == nil
}

// IsPublic reports whether the type is public. Imaginary types are never
// public: a public type would have been visible.
func (h *TypeHandle) IsPublic() bool {
	return h.element != nil && h.element.Public
}

// IsInterface reports whether the type is a declared interface.
func (h *TypeHandle) IsInterface() bool {
	return h.element != nil && h.element.IsInterface()
}

// Superclass returns the binary name of the superclass, "" when it is
// java.lang.Object or unknown.
func (h *TypeHandle) Superclass() string {
	if h.element == nil {
		return ""
	}

	return h.element.Superclass
}

// FindField looks up a field on the declaration. Always nil when imaginary.
func (h *TypeHandle) FindField(name, desc string) *Member {
	if h.element == nil {
		return nil
	}

	return h.element.FindField(name, desc)
}

// FindMethod looks up a method on the declaration. Always nil when imaginary.
func (h *TypeHandle) FindMethod(name, desc string) *Member {
	if h.element == nil {
		return nil
	}

	return h.element.FindMethod(name, desc)
}

// Equal reports whether both handles name the same type.
func (h *TypeHandle) Equal(other *TypeHandle) bool {
	if h == nil || other == nil {
		return h == other
	}

	return h.name == other.name
}

// String returns the binary name.
func (h *TypeHandle) String() string {
	return h.name
}

// ContainsHandle reports whether list holds a handle equal to h.
func ContainsHandle(list []*TypeHandle, h *TypeHandle) bool {
	for _, it := range list {
		if it.Equal(h) {
			return true
		}
	}

	return false
}
