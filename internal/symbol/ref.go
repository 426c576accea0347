package symbol

import (
	"fmt"
	"strings"

	"mixin-ap/internal/common"
)

// MemberRef is a field or method reference. Two refs are equal iff their full
// names and descriptors are equal, so MemberRef can be used as a map key.
type MemberRef struct {
	name string
	desc string
}

// NewMemberRef builds a ref from an owner (internal or binary form, may be
// empty), a simple name and a descriptor.
func NewMemberRef(owner, simpleName, desc string) MemberRef {
	return MemberRef{name: joinName(owner, simpleName), desc: desc}
}

// ParseMemberRef builds a ref from a full internal name such as "a/b/C/field".
func ParseMemberRef(fullName, desc string) MemberRef {
	return MemberRef{name: fullName, desc: desc}
}

// Name returns the full internal name, owner included.
func (r MemberRef) Name() string {
	return r.name
}

// SimpleName returns the part of the name after the owner.
func (r MemberRef) SimpleName() string {
	if pos := strings.LastIndexByte(r.name, '/'); pos > -1 {
		return r.name[pos+1:]
	}

	return r.name
}

// Owner returns the internal name of the owner, or "" when there is none.
func (r MemberRef) Owner() string {
	if pos := strings.LastIndexByte(r.name, '/'); pos > -1 {
		return r.name[:pos]
	}

	return ""
}

// HasOwner reports whether the ref carries an owner.
func (r MemberRef) HasOwner() bool {
	return strings.IndexByte(r.name, '/') > -1
}

// Desc returns the descriptor.
func (r MemberRef) Desc() string {
	return r.desc
}

// IsField reports whether the descriptor is a field descriptor.
func (r MemberRef) IsField() bool {
	return !strings.HasPrefix(r.desc, "(")
}

// IsZero reports whether the ref is empty.
func (r MemberRef) IsZero() bool {
	return r.name == "" && r.desc == ""
}

// Move returns a copy of the ref owned by newOwner.
func (r MemberRef) Move(newOwner string) MemberRef {
	return NewMemberRef(newOwner, r.SimpleName(), r.desc)
}

// Rename returns a copy of the ref with a new simple name and descriptor,
// keeping the owner.
func (r MemberRef) Rename(simpleName, desc string) MemberRef {
	return NewMemberRef(r.Owner(), simpleName, desc)
}

// String returns "name desc", or just the name for fields without a descriptor.
func (r MemberRef) String() string {
	if r.desc == "" {
		return r.name
	}

	return fmt.Sprintf("%s %s", r.name, r.desc)
}

func joinName(owner, simpleName string) string {
	if owner == "" {
		return simpleName
	}

	return common.InternalName(owner) + "/" + simpleName
}
