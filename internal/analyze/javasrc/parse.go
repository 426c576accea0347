package javasrc

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"mixin-ap/internal/common"
)

// unit is a parsed compilation unit.
type unit struct {
	path string
	src  []byte
	tree *sitter.Tree

	pkg       string
	imports   map[string]string // simple name -> qualified name as written
	wildcards []string
	declared  []string // binary names of every type declared in the file
}

func parse(ctx context.Context, src Source) (*unit, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Path, err)
	}

	u := &unit{
		path:    src.Path,
		src:     src.Content,
		tree:    tree,
		imports: make(map[string]string),
	}

	root := tree.RootNode()
	if bad := firstError(root); bad != nil {
		tree.Close()
		return nil, fmt.Errorf("%w: %s:%d", ErrSyntax, src.Path, bad.StartPoint().Row+1)
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)

		switch child.Type() {
		case "package_declaration":
			u.pkg = u.text(lastNamedChild(child, "identifier", "scoped_identifier"))
		case "import_declaration":
			u.addImport(child)
		default:
			if isTypeDeclaration(child) {
				u.declare(child, u.qualify(""))
			}
		}
	}

	return u, nil
}

func (u *unit) close() {
	u.tree.Close()
}

func (u *unit) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}

	return n.Content(u.src)
}

func (u *unit) qualify(simple string) string {
	if u.pkg == "" {
		return simple
	}

	if simple == "" {
		return u.pkg
	}

	return u.pkg + "." + simple
}

func (u *unit) addImport(n *sitter.Node) {
	var static, wildcard bool

	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "static":
			static = true
		case "asterisk":
			wildcard = true
		}
	}

	if static {
		return
	}

	name := u.text(lastNamedChild(n, "identifier", "scoped_identifier"))
	if name == "" {
		return
	}

	if wildcard {
		u.wildcards = append(u.wildcards, name)
		return
	}

	u.imports[common.SimpleName(name)] = name
}

// declare records the binary name of a type declaration and its nested
// types. outer is the package for top-level types.
func (u *unit) declare(n *sitter.Node, outer string) {
	name := u.text(n.ChildByFieldName("name"))
	if name == "" {
		return
	}

	binary := name
	if outer != "" {
		sep := "."
		if outer != u.pkg {
			sep = "$"
		}

		binary = outer + sep + name
	}

	u.declared = append(u.declared, binary)

	for _, member := range bodyMembers(n) {
		if isTypeDeclaration(member) {
			u.declare(member, binary)
		}
	}
}

// importedPackages returns the packages named by imports.
func (u *unit) importedPackages() []string {
	var out []string
	for _, q := range u.imports {
		if pkg := common.PackageOf(q); pkg != "" {
			out = append(out, pkg)
		}
	}

	return append(out, u.wildcards...)
}

func isTypeDeclaration(n *sitter.Node) bool {
	switch n.Type() {
	case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
		return true
	default:
		return false
	}
}

// bodyMembers returns the declarations inside a type body, including those
// after the constants of an enum.
func bodyMembers(n *sitter.Node) []*sitter.Node {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	var out []*sitter.Node

	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "enum_body_declarations" {
			for j := 0; j < int(child.NamedChildCount()); j++ {
				out = append(out, child.NamedChild(j))
			}

			continue
		}

		out = append(out, child)
	}

	return out
}

func lastNamedChild(n *sitter.Node, types ...string) *sitter.Node {
	var found *sitter.Node

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		for _, t := range types {
			if child.Type() == t {
				found = child
			}
		}
	}

	return found
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}

	return nil
}

func firstError(n *sitter.Node) *sitter.Node {
	if !n.HasError() {
		return nil
	}

	if n.IsError() || n.IsMissing() {
		return n
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}

	return n
}

// docComment returns the cleaned text of the /** */ comment directly before n.
func (u *unit) docComment(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil {
		return ""
	}

	if t := prev.Type(); t != "block_comment" && t != "comment" {
		return ""
	}

	raw := u.text(prev)
	if !strings.HasPrefix(raw, "/**") {
		return ""
	}

	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines[i] = strings.TrimSpace(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
