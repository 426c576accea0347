package manifest

import (
	"fmt"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
)

// Validate checks a manifest structurally: names present and unique, kinds
// known, descriptors well formed and enclosing types declared.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError(diagnostic.CodeManifestInvalid, "manifest is nil", diagnostic.Location{})
		return res
	}

	if f.Version != CurrentVersion {
		res.AddError(diagnostic.CodeManifestInvalid,
			fmt.Sprintf("unsupported manifest version %q", f.Version), diagnostic.Location{File: f.Path})
	}

	declared := make(map[string]struct{}, len(f.Types))

	for i := range f.Types {
		t := &f.Types[i]
		loc := diagnostic.Location{File: f.Path, Line: t.Line, Element: t.Name}

		if t.Name == "" {
			res.AddError(diagnostic.CodeManifestInvalid, fmt.Sprintf("type #%d has no name", i+1), loc)
			continue
		}

		if _, dup := declared[t.Name]; dup {
			res.AddError(diagnostic.CodeManifestInvalid, fmt.Sprintf("duplicate type %q", t.Name), loc)
		}

		declared[t.Name] = struct{}{}

		if analyze.ParseTypeKind(t.Kind) == analyze.TypeKindUnknown {
			res.AddError(diagnostic.CodeManifestInvalid, fmt.Sprintf("unknown kind %q", t.Kind), loc)
		}

		validateMembers(res, f.Path, t, t.Fields, false)
		validateMembers(res, f.Path, t, t.Methods, true)
	}

	for i := range f.Types {
		t := &f.Types[i]
		if t.Enclosing == "" {
			continue
		}

		if _, ok := declared[t.Enclosing]; !ok {
			res.AddError(diagnostic.CodeManifestInvalid,
				fmt.Sprintf("enclosing type %q is not declared", t.Enclosing),
				diagnostic.Location{File: f.Path, Line: t.Line, Element: t.Name})
		}
	}

	return res
}

func validateMembers(res *diagnostic.Diagnostics, file string, t *TypeDecl, members []MemberDecl, methods bool) {
	kind := "field"
	if methods {
		kind = "method"
	}

	for _, m := range members {
		loc := diagnostic.Location{File: file, Line: m.Line, Element: t.Name + "." + m.Name}

		if m.Name == "" {
			res.AddError(diagnostic.CodeManifestInvalid, fmt.Sprintf("%s of %s has no name", kind, t.Name), loc)
			continue
		}

		valid := validFieldDesc(m.Desc)
		if methods {
			valid = validMethodDesc(m.Desc)
		}

		if !valid {
			res.AddError(diagnostic.CodeManifestInvalid,
				fmt.Sprintf("invalid %s descriptor %q", kind, m.Desc), loc)
		}
	}
}

// scanType consumes one field type from desc and returns the rest.
func scanType(desc string) (string, bool) {
	for len(desc) > 0 && desc[0] == '[' {
		desc = desc[1:]
	}

	if desc == "" {
		return "", false
	}

	switch desc[0] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return desc[1:], true
	case 'L':
		for i := 1; i < len(desc); i++ {
			if desc[i] == ';' {
				return desc[i+1:], i > 1
			}
		}

		return "", false
	default:
		return "", false
	}
}

func validFieldDesc(desc string) bool {
	rest, ok := scanType(desc)
	return ok && rest == ""
}

func validMethodDesc(desc string) bool {
	if len(desc) < 3 || desc[0] != '(' {
		return false
	}

	rest := desc[1:]
	for rest != "" && rest[0] != ')' {
		var ok bool
		if rest, ok = scanType(rest); !ok {
			return false
		}
	}

	if rest == "" {
		return false
	}

	rest = rest[1:]
	if rest == "V" {
		return true
	}

	return validFieldDesc(rest)
}
