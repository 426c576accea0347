package javasrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"mixin-ap/internal/common"
)

var primitives = map[string]string{
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
	"boolean": "Z",
	"void":    "V",
}

// javaLang holds the java.lang types resolved without an import.
var javaLang = map[string]struct{}{
	"Object": {}, "String": {}, "Class": {}, "Enum": {}, "Record": {},
	"Boolean": {}, "Byte": {}, "Character": {}, "Short": {}, "Integer": {},
	"Long": {}, "Float": {}, "Double": {}, "Number": {}, "Void": {},
	"Math": {}, "System": {}, "Thread": {}, "Runnable": {}, "Iterable": {},
	"Comparable": {}, "CharSequence": {}, "StringBuilder": {}, "Throwable": {},
	"Exception": {}, "RuntimeException": {}, "Error": {}, "Override": {},
	"Deprecated": {}, "SuppressWarnings": {}, "FunctionalInterface": {},
	"AutoCloseable": {}, "Cloneable": {},
}

// resolver turns type names as written into binary names, in the scope of
// one declaration.
type resolver struct {
	u          *unit
	known      map[string]struct{}
	scopes     []string // enclosing types, innermost last
	typeParams map[string]struct{}
}

func (r *resolver) nested(binary string, typeParams []string) *resolver {
	params := make(map[string]struct{}, len(r.typeParams)+len(typeParams))
	for p := range r.typeParams {
		params[p] = struct{}{}
	}

	for _, p := range typeParams {
		params[p] = struct{}{}
	}

	return &resolver{
		u:          r.u,
		known:      r.known,
		scopes:     append(append([]string(nil), r.scopes...), binary),
		typeParams: params,
	}
}

func (r *resolver) isKnown(name string) bool {
	_, ok := r.known[name]
	return ok
}

// qualified converts a dotted name such as "a.b.Outer.Inner" to its binary
// form using the declared types, leaving unknown names unchanged.
func (r *resolver) qualified(name string) string {
	if r.isKnown(name) {
		return name
	}

	parts := strings.Split(name, ".")
	for i := len(parts) - 1; i > 0; i-- {
		candidate := strings.Join(parts[:i], ".") + "$" + strings.Join(parts[i:], "$")
		if r.isKnown(candidate) {
			return candidate
		}
	}

	return name
}

// simple resolves an unqualified type name.
func (r *resolver) simple(name string) (string, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		scope := r.scopes[i]
		if candidate := scope + "$" + name; r.isKnown(candidate) {
			return candidate, true
		}

		if simpleBinary(scope) == name {
			return scope, true
		}
	}

	if q, ok := r.u.imports[name]; ok {
		return r.qualified(q), true
	}

	if candidate := r.u.qualify(name); r.isKnown(candidate) {
		return candidate, true
	}

	for _, w := range r.u.wildcards {
		if candidate := r.qualified(w + "." + name); r.isKnown(candidate) {
			return candidate, true
		}
	}

	if _, ok := javaLang[name]; ok {
		return "java.lang." + name, true
	}

	return "", false
}

// binaryName resolves a reference type as written.
func (r *resolver) binaryName(written string) string {
	written = eraseGenerics(strings.Join(strings.Fields(written), ""))

	if _, ok := r.typeParams[written]; ok {
		return "java.lang.Object"
	}

	head, rest, dotted := strings.Cut(written, ".")
	if found, ok := r.simple(head); ok {
		if !dotted {
			return found
		}

		return found + "$" + strings.ReplaceAll(rest, ".", "$")
	}

	if dotted {
		return r.qualified(written)
	}

	// Unresolvable names are assumed to live in the current package.
	return r.u.qualify(written)
}

// descriptor builds the JVM descriptor of a type node.
func (r *resolver) descriptor(n *sitter.Node) string {
	if n == nil {
		return "V"
	}

	switch n.Type() {
	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		return primitives[r.u.text(n)]
	case "array_type":
		return strings.Repeat("[", dims(r.u.text(n.ChildByFieldName("dimensions")))) +
			r.descriptor(n.ChildByFieldName("element"))
	case "generic_type":
		return r.descriptor(n.NamedChild(0))
	case "annotated_type":
		return r.descriptor(lastNamed(n))
	default:
		return "L" + common.InternalName(r.binaryName(r.u.text(n))) + ";"
	}
}

func dims(s string) int {
	return strings.Count(s, "[")
}

func lastNamed(n *sitter.Node) *sitter.Node {
	if c := n.NamedChildCount(); c > 0 {
		return n.NamedChild(int(c) - 1)
	}

	return nil
}

func simpleBinary(binary string) string {
	name := common.SimpleName(binary)
	if i := strings.LastIndexByte(name, '$'); i > -1 {
		return name[i+1:]
	}

	return name
}

// eraseGenerics removes every <...> section, nested or not.
func eraseGenerics(s string) string {
	var (
		b     strings.Builder
		depth int
	)

	for _, c := range s {
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth == 0:
			b.WriteRune(c)
		}
	}

	return b.String()
}
