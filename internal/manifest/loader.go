package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mixin-ap/internal/analyze"
)

// CurrentVersion is written by FromIndex and assumed when a file omits it.
const CurrentVersion = "1"

// LoadFile loads and parses a YAML manifest from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.Path = path

	return f, nil
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = CurrentVersion
	}

	for i := range f.Types {
		if f.Types[i].Kind == "" {
			f.Types[i].Kind = analyze.TypeKindClass.String()
		}
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	return nil
}

// Index converts the manifest into an Index. Call Validate first to get
// positioned diagnostics; Index only fails on duplicate types.
func (f *File) Index() (*analyze.Index, error) {
	idx := analyze.NewIndex()
	if err := f.addTo(idx); err != nil {
		return nil, err
	}

	return idx, nil
}

func (f *File) addTo(idx *analyze.Index) error {
	for _, pkg := range f.Packages {
		idx.AddPackage(pkg)
	}

	for i := range f.Types {
		if err := idx.Add(f.Types[i].element(f.Path)); err != nil {
			return err
		}
	}

	return nil
}

// Load reads, validates and merges manifests into one Index. Validation
// problems of every file are returned together.
func Load(paths ...string) (*analyze.Index, error) {
	idx := analyze.NewIndex()

	for _, path := range paths {
		f, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		if err := Validate(f).Error(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if err := f.addTo(idx); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	return idx, nil
}

func (t *TypeDecl) element(file string) *analyze.TypeElement {
	pos := analyze.Position{File: file, Line: t.Line}

	el := &analyze.TypeElement{
		Name:        t.Name,
		Kind:        analyze.ParseTypeKind(t.Kind),
		Public:      t.Public,
		Static:      t.Static,
		Enclosing:   t.Enclosing,
		Superclass:  t.Superclass,
		Interfaces:  append([]string(nil), t.Interfaces...),
		Annotations: annotations(t.Annotations, pos),
		Doc:         t.Doc,
		Pos:         pos,
	}

	for _, m := range t.Fields {
		el.Fields = append(el.Fields, m.member(analyze.MemberField, file))
	}

	for _, m := range t.Methods {
		el.Methods = append(el.Methods, m.member(analyze.MemberMethod, file))
	}

	return el
}

func (m *MemberDecl) member(kind analyze.MemberKind, file string) *analyze.Member {
	pos := analyze.Position{File: file, Line: m.Line}

	return &analyze.Member{
		Kind:        kind,
		Name:        m.Name,
		Desc:        m.Desc,
		Static:      m.Static,
		Annotations: annotations(m.Annotations, pos),
		Doc:         m.Doc,
		Pos:         pos,
	}
}

func annotations(decls []AnnotationDecl, pos analyze.Position) []*analyze.Annotation {
	if len(decls) == 0 {
		return nil
	}

	out := make([]*analyze.Annotation, len(decls))
	for i, a := range decls {
		out[i] = a.toAnnotation(pos)
	}

	return out
}

// FromIndex dumps an Index as a manifest. Known packages without declared
// types are listed under packages.
func FromIndex(idx *analyze.Index, packages ...string) *File {
	f := &File{Version: CurrentVersion, Packages: packages}

	for _, el := range idx.Types() {
		t := TypeDecl{
			Name:       el.Name,
			Kind:       el.Kind.String(),
			Public:     el.Public,
			Static:     el.Static,
			Enclosing:  el.Enclosing,
			Superclass: el.Superclass,
			Interfaces: el.Interfaces,
			Doc:        el.Doc,
			Line:       el.Pos.Line,
		}

		for _, a := range el.Annotations {
			t.Annotations = append(t.Annotations, annotationDecl(a))
		}

		for _, m := range el.Fields {
			t.Fields = append(t.Fields, memberDecl(m))
		}

		for _, m := range el.Methods {
			t.Methods = append(t.Methods, memberDecl(m))
		}

		f.Types = append(f.Types, t)
	}

	return f
}

func memberDecl(m *analyze.Member) MemberDecl {
	d := MemberDecl{Name: m.Name, Desc: m.Desc, Static: m.Static, Doc: m.Doc, Line: m.Pos.Line}
	for _, a := range m.Annotations {
		d.Annotations = append(d.Annotations, annotationDecl(a))
	}

	return d
}
