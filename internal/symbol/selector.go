package symbol

import (
	"errors"
	"fmt"
	"strings"

	"mixin-ap/internal/common"
)

// ErrInvalidSelector is returned for selectors that cannot be parsed.
var ErrInvalidSelector = errors.New("invalid member selector")

// Selector is a partially qualified member reference as written in injector
// annotations. Owner and Desc may be empty.
type Selector struct {
	Owner string // internal name, "" if omitted
	Name  string
	Desc  string
	// FieldDesc is set when the selector used the "name:desc" field form.
	FieldDesc bool
}

// ParseSelector parses one of:
//
//	Lowner/Type;name(desc)
//	owner.Type.name(desc)
//	name(desc)
//	name:desc
//	name
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("%w: empty", ErrInvalidSelector)
	}

	var sel Selector

	rest := s
	if strings.HasPrefix(rest, "L") {
		// A ';' inside the descriptor does not end an owner.
		if semi := strings.IndexByte(rest, ';'); semi > 1 && !strings.ContainsAny(rest[:semi], "(:") {
			sel.Owner = rest[1:semi]
			rest = rest[semi+1:]
		}
	}

	if p := strings.IndexByte(rest, '('); p > -1 {
		sel.Desc = rest[p:]
		rest = rest[:p]
	} else if c := strings.IndexByte(rest, ':'); c > -1 {
		sel.Desc = rest[c+1:]
		sel.FieldDesc = true
		rest = rest[:c]
	}

	if sel.Owner == "" {
		if dot := strings.LastIndexByte(rest, '.'); dot > -1 {
			sel.Owner = common.InternalName(rest[:dot])
			rest = rest[dot+1:]
		}
	}

	sel.Name = rest
	if sel.Name == "" || strings.ContainsAny(sel.Name, "/;()") {
		return Selector{}, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}

	if sel.Desc != "" && strings.HasPrefix(sel.Desc, "(") && !strings.Contains(sel.Desc, ")") {
		return Selector{}, fmt.Errorf("%w: unterminated descriptor in %q", ErrInvalidSelector, s)
	}

	return sel, nil
}

// IsField reports whether the selector names a field.
func (s Selector) IsField() bool {
	return s.FieldDesc || (s.Desc != "" && !strings.HasPrefix(s.Desc, "("))
}

// IsQualified reports whether owner, name and descriptor are all present.
func (s Selector) IsQualified() bool {
	return s.Owner != "" && s.Name != "" && s.Desc != ""
}

// Ref converts the selector into a MemberRef, using defaultOwner when the
// selector did not name one.
func (s Selector) Ref(defaultOwner string) MemberRef {
	owner := s.Owner
	if owner == "" {
		owner = defaultOwner
	}

	return NewMemberRef(owner, s.Name, s.Desc)
}

// String renders the selector in its canonical "Lowner;name(desc)" form.
func (s Selector) String() string {
	var b strings.Builder
	if s.Owner != "" {
		b.WriteString("L")
		b.WriteString(s.Owner)
		b.WriteString(";")
	}

	b.WriteString(s.Name)

	if s.Desc != "" {
		if s.IsField() {
			b.WriteString(":")
		}

		b.WriteString(s.Desc)
	}

	return b.String()
}
