package analyze

import (
	"errors"
	"fmt"
	"strings"

	"mixin-ap/internal/common"
)

// ErrDuplicateType is returned when a type is added to an Index twice.
var ErrDuplicateType = errors.New("duplicate type")

// TypeProvider resolves names to handles.
type TypeProvider interface {
	// TypeHandle returns a handle for name ("a.b.C" or "a/b/C"), or nil.
	TypeHandle(name string) *TypeHandle
}

// JavadocProvider returns doc comments for elements.
type JavadocProvider interface {
	Javadoc(e Element) string
}

// Index holds the types a front end discovered.
type Index struct {
	types    map[string]*TypeElement
	order    []string
	packages map[string]struct{}
}

var (
	_ TypeProvider    = (*Index)(nil)
	_ JavadocProvider = (*Index)(nil)
)

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		types:    make(map[string]*TypeElement),
		packages: make(map[string]struct{}),
	}
}

// Add registers a type and its package.
func (i *Index) Add(t *TypeElement) error {
	if t == nil || t.Name == "" {
		return errors.New("type has no name")
	}

	t.Name = common.BinaryName(t.Name)
	if _, ok := i.types[t.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, t.Name)
	}

	for _, m := range t.Members() {
		if m.Owner == "" {
			m.Owner = t.Name
		}
	}

	i.types[t.Name] = t
	i.order = append(i.order, t.Name)
	i.AddPackage(t.Package())

	return nil
}

// AddPackage declares a package as known without declaring any of its types.
func (i *Index) AddPackage(pkg string) {
	if pkg != "" {
		i.packages[pkg] = struct{}{}
	}
}

// HasPackage reports whether pkg is known.
func (i *Index) HasPackage(pkg string) bool {
	_, ok := i.packages[pkg]
	return ok
}

// Merge adds every type of other, in other's order.
func (i *Index) Merge(other *Index) error {
	for _, name := range other.order {
		if err := i.Add(other.types[name]); err != nil {
			return err
		}
	}

	for pkg := range other.packages {
		i.AddPackage(pkg)
	}

	return nil
}

// TypeElement returns the declaration for name, or nil.
func (i *Index) TypeElement(name string) *TypeElement {
	return i.types[common.BinaryName(name)]
}

// Types returns all declarations in the order they were added.
func (i *Index) Types() []*TypeElement {
	out := make([]*TypeElement, 0, len(i.order))
	for _, name := range i.order {
		out = append(out, i.types[name])
	}

	return out
}

// Names returns every declared binary name in the order added.
func (i *Index) Names() []string {
	return append([]string(nil), i.order...)
}

// Len returns the number of declared types.
func (i *Index) Len() int {
	return len(i.order)
}

// TypeHandle resolves name to a handle. A name that is not declared but whose
// package is known yields an imaginary handle; anything else yields nil.
func (i *Index) TypeHandle(name string) *TypeHandle {
	name = common.BinaryName(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	if el := i.types[name]; el != nil {
		return NewTypeHandle(el)
	}

	if pkg := common.PackageOf(name); pkg != "" && i.HasPackage(pkg) {
		return NewImaginaryTypeHandle(pkg, name)
	}

	return nil
}

// Javadoc returns the doc comment attached to e.
func (i *Index) Javadoc(e Element) string {
	if e == nil {
		return ""
	}

	return e.DocComment()
}
