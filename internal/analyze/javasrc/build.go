package javasrc

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/common"
)

type modifiers struct {
	public      bool
	static      bool
	annotations []*analyze.Annotation
}

// build converts the declarations of the unit. known holds the binary names
// declared across the whole load.
func (u *unit) build(known map[string]struct{}) []*analyze.TypeElement {
	r := &resolver{u: u, known: known, typeParams: map[string]struct{}{}}
	root := u.tree.RootNode()

	var out []*analyze.TypeElement

	for i := 0; i < int(root.NamedChildCount()); i++ {
		if child := root.NamedChild(i); isTypeDeclaration(child) {
			u.buildType(child, r, "", false, &out)
		}
	}

	return out
}

func (u *unit) buildType(n *sitter.Node, r *resolver, enclosing string, inInterface bool, out *[]*analyze.TypeElement) {
	nameNode := n.ChildByFieldName("name")
	name := u.text(nameNode)
	if name == "" {
		return
	}

	binary := u.qualify(name)
	if enclosing != "" {
		binary = enclosing + "$" + name
	}

	kind := analyze.TypeKindClass
	switch n.Type() {
	case "interface_declaration", "annotation_type_declaration":
		kind = analyze.TypeKindInterface
	case "enum_declaration":
		kind = analyze.TypeKindEnum
	}

	inner := r.nested(binary, u.typeParams(n))
	mods := u.modifiers(n, inner)

	el := &analyze.TypeElement{
		Name:        binary,
		Kind:        kind,
		Public:      mods.public || inInterface,
		Static:      mods.static || (enclosing != "" && (inInterface || kind != analyze.TypeKindClass)),
		Enclosing:   enclosing,
		Annotations: mods.annotations,
		Doc:         u.docComment(n),
		Pos:         u.pos(nameNode),
	}

	if kind == analyze.TypeKindEnum {
		el.Superclass = "java.lang.Enum"
	}

	if sc := n.ChildByFieldName("superclass"); sc != nil {
		el.Superclass = inner.binaryName(u.text(lastNamed(sc)))
	}

	ifaces := n.ChildByFieldName("interfaces")
	if ifaces == nil {
		ifaces = childOfType(n, "extends_interfaces")
	}

	if ifaces != nil {
		if list := childOfType(ifaces, "type_list"); list != nil {
			for i := 0; i < int(list.NamedChildCount()); i++ {
				el.Interfaces = append(el.Interfaces, inner.binaryName(u.text(list.NamedChild(i))))
			}
		}
	}

	*out = append(*out, el)

	iface := kind == analyze.TypeKindInterface
	self := "L" + common.InternalName(binary) + ";"

	if body := n.ChildByFieldName("body"); body != nil && kind == analyze.TypeKindEnum {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			c := body.NamedChild(i)
			if c.Type() != "enum_constant" {
				continue
			}

			cm := u.modifiers(c, inner)
			el.Fields = append(el.Fields, &analyze.Member{
				Kind:        analyze.MemberField,
				Owner:       binary,
				Name:        u.text(c.ChildByFieldName("name")),
				Desc:        self,
				Static:      true,
				Annotations: cm.annotations,
				Doc:         u.docComment(c),
				Pos:         u.pos(c.ChildByFieldName("name")),
			})
		}
	}

	for _, member := range bodyMembers(n) {
		switch member.Type() {
		case "field_declaration", "constant_declaration":
			el.Fields = append(el.Fields, u.fields(member, inner, binary, iface)...)
		case "method_declaration", "constructor_declaration":
			el.Methods = append(el.Methods, u.method(member, inner, binary))
		default:
			if isTypeDeclaration(member) {
				u.buildType(member, inner, binary, iface, out)
			}
		}
	}
}

func (u *unit) fields(n *sitter.Node, r *resolver, owner string, iface bool) []*analyze.Member {
	mods := u.modifiers(n, r)
	typ := n.ChildByFieldName("type")
	doc := u.docComment(n)

	var out []*analyze.Member

	for i := 0; i < int(n.NamedChildCount()); i++ {
		decl := n.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}

		nameNode := decl.ChildByFieldName("name")
		out = append(out, &analyze.Member{
			Kind:        analyze.MemberField,
			Owner:       owner,
			Name:        u.text(nameNode),
			Desc:        strings.Repeat("[", dims(u.text(decl.ChildByFieldName("dimensions")))) + r.descriptor(typ),
			Static:      mods.static || iface,
			Annotations: mods.annotations,
			Doc:         doc,
			Pos:         u.pos(nameNode),
		})
	}

	return out
}

func (u *unit) method(n *sitter.Node, r *resolver, owner string) *analyze.Member {
	mods := u.modifiers(n, r)
	nameNode := n.ChildByFieldName("name")

	mr := &resolver{u: r.u, known: r.known, scopes: r.scopes, typeParams: r.typeParams}
	if params := u.typeParams(n); len(params) > 0 {
		mr.typeParams = make(map[string]struct{}, len(r.typeParams)+len(params))
		for p := range r.typeParams {
			mr.typeParams[p] = struct{}{}
		}

		for _, p := range params {
			mr.typeParams[p] = struct{}{}
		}
	}

	var desc strings.Builder
	desc.WriteByte('(')

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)

			switch p.Type() {
			case "formal_parameter":
				desc.WriteString(strings.Repeat("[", dims(u.text(p.ChildByFieldName("dimensions")))))
				desc.WriteString(mr.descriptor(p.ChildByFieldName("type")))
			case "spread_parameter":
				desc.WriteByte('[')
				desc.WriteString(mr.descriptor(spreadType(p)))
			}
		}
	}

	desc.WriteByte(')')

	name := u.text(nameNode)
	if n.Type() == "constructor_declaration" {
		name = "<init>"
		desc.WriteByte('V')
	} else {
		desc.WriteString(strings.Repeat("[", dims(u.text(n.ChildByFieldName("dimensions")))))
		desc.WriteString(mr.descriptor(n.ChildByFieldName("type")))
	}

	return &analyze.Member{
		Kind:        analyze.MemberMethod,
		Owner:       owner,
		Name:        name,
		Desc:        desc.String(),
		Static:      mods.static,
		Annotations: mods.annotations,
		Doc:         u.docComment(n),
		Pos:         u.pos(nameNode),
	}
}

func spreadType(p *sitter.Node) *sitter.Node {
	for i := 0; i < int(p.NamedChildCount()); i++ {
		switch c := p.NamedChild(i); c.Type() {
		case "modifiers", "variable_declarator":
		default:
			return c
		}
	}

	return nil
}

func (u *unit) typeParams(n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		return nil
	}

	var out []string

	for i := 0; i < int(tp.NamedChildCount()); i++ {
		p := tp.NamedChild(i)
		if p.Type() != "type_parameter" {
			continue
		}

		if id := childOfType(p, "type_identifier"); id != nil {
			out = append(out, u.text(id))
		} else if id := childOfType(p, "identifier"); id != nil {
			out = append(out, u.text(id))
		}
	}

	return out
}

func (u *unit) modifiers(n *sitter.Node, r *resolver) modifiers {
	var mods modifiers

	m := childOfType(n, "modifiers")
	if m == nil {
		return mods
	}

	for i := 0; i < int(m.ChildCount()); i++ {
		c := m.Child(i)

		switch c.Type() {
		case "public":
			mods.public = true
		case "static":
			mods.static = true
		case "annotation", "marker_annotation":
			mods.annotations = append(mods.annotations, u.annotation(c, r))
		}
	}

	return mods
}

func (u *unit) annotation(n *sitter.Node, r *resolver) *analyze.Annotation {
	a := analyze.NewAnnotation(u.text(n.ChildByFieldName("name")), nil)
	a.Pos = u.pos(n)

	args := n.ChildByFieldName("arguments")
	if args == nil {
		return a
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		c := args.NamedChild(i)

		switch c.Type() {
		case "element_value_pair":
			a.Values[u.text(c.ChildByFieldName("key"))] = u.value(c.ChildByFieldName("value"), r)
		case "line_comment", "block_comment", "comment":
		default:
			a.Values["value"] = u.value(c, r)
		}
	}

	return a
}

func (u *unit) value(n *sitter.Node, r *resolver) analyze.Value {
	if n == nil {
		return analyze.StringValue("")
	}

	text := u.text(n)

	switch n.Type() {
	case "string_literal", "character_literal":
		return analyze.StringValue(unquote(text))
	case "true":
		return analyze.BoolValue(true)
	case "false":
		return analyze.BoolValue(false)
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		i, err := parseInt(text)
		if err != nil {
			return analyze.StringValue(text)
		}

		return analyze.IntValue(i)
	case "unary_expression":
		v := u.value(n.ChildByFieldName("operand"), r)

		switch op := u.text(n.ChildByFieldName("operator")); {
		case op == "-" && v.Kind == analyze.ValueInt:
			return analyze.IntValue(-v.Int)
		case op == "!" && v.Kind == analyze.ValueBool:
			return analyze.BoolValue(!v.Bool)
		}

		return analyze.StringValue(text)
	case "binary_expression":
		left := u.value(n.ChildByFieldName("left"), r)
		right := u.value(n.ChildByFieldName("right"), r)

		if u.text(n.ChildByFieldName("operator")) == "+" && left.Kind == analyze.ValueString && right.Kind == analyze.ValueString {
			return analyze.StringValue(left.Str + right.Str)
		}

		return analyze.StringValue(text)
	case "parenthesized_expression":
		return u.value(n.NamedChild(0), r)
	case "class_literal":
		typ := n.NamedChild(0)
		if _, ok := primitives[u.text(typ)]; ok {
			return analyze.TypeValue(u.text(typ))
		}

		return analyze.TypeValue(r.binaryName(u.text(typ)))
	case "annotation", "marker_annotation":
		return analyze.AnnotationValue(u.annotation(n, r))
	case "element_value_array_initializer":
		var items []analyze.Value

		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "line_comment", "block_comment", "comment":
				continue
			}

			items = append(items, u.value(c, r))
		}

		return analyze.ListValue(items...)
	case "field_access", "identifier", "scoped_identifier":
		return analyze.EnumValue(text)
	default:
		return analyze.StringValue(text)
	}
}

func (u *unit) pos(n *sitter.Node) analyze.Position {
	if n == nil {
		return analyze.Position{File: u.path}
	}

	return analyze.Position{File: u.path, Line: int(n.StartPoint().Row) + 1}
}

func unquote(s string) string {
	if strings.HasPrefix(s, `"""`) {
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, `"""`), `"""`))
	}

	if strings.HasPrefix(s, "'") {
		s = `"` + strings.Trim(s, "'") + `"`
	}

	if v, err := strconv.Unquote(s); err == nil {
		return v
	}

	return strings.Trim(s, `"`)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimRight(strings.ReplaceAll(s, "_", ""), "lL")

	return strconv.ParseInt(s, 0, 64)
}
