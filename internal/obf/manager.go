package obf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/symbol"
)

// Option keys read by the manager.
const (
	OptionOutRefMapFile         = "outRefMapFile"
	OptionDefaultObfuscationEnv = "defaultObfuscationEnv"
)

// Options is the string-keyed option lookup. Missing keys yield "".
type Options interface {
	Option(key string) string
}

// Manager owns the per-scheme mapping providers and the tables filled during
// member registration.
type Manager struct {
	opts     Options
	messager diagnostic.Messager
	schemes  []Scheme

	loadOnce  sync.Once
	providers map[string]*Provider
	active    []Scheme

	fields  *Table
	methods *Table
	refs    *RefMap
}

// NewManager creates a manager for schemes, DefaultSchemes when none are given.
// Mapping files are read lazily on the first lookup.
func NewManager(opts Options, messager diagnostic.Messager, schemes ...Scheme) *Manager {
	if len(schemes) == 0 {
		schemes = DefaultSchemes()
	}

	return &Manager{
		opts:      opts,
		messager:  messager,
		schemes:   schemes,
		providers: make(map[string]*Provider),
		fields:    NewTable(),
		methods:   NewTable(),
		refs:      NewRefMap(),
	}
}

// SetProvider installs p for scheme, bypassing the mapping file option.
func (m *Manager) SetProvider(scheme string, p *Provider) {
	m.init()

	if _, ok := m.providers[scheme]; !ok {
		for _, s := range m.schemes {
			if s.Key == scheme {
				m.active = append(m.active, s)
			}
		}
	}

	m.providers[scheme] = p
}

// Schemes returns the schemes with mapping data, in declaration order.
func (m *Manager) Schemes() []Scheme {
	m.init()
	return append([]Scheme(nil), m.active...)
}

// DefaultScheme returns the scheme written to the refmap's top-level table.
func (m *Manager) DefaultScheme() string {
	if s := m.option(OptionDefaultObfuscationEnv); s != "" {
		return s
	}

	return Searge.Key
}

func (m *Manager) init() {
	m.loadOnce.Do(func() {
		for _, s := range m.schemes {
			path := m.option(s.InputOption)
			if path == "" {
				continue
			}

			p, err := LoadSRG(path)
			if err != nil {
				m.warn(diagnostic.CodeMappingUnreadable,
					fmt.Sprintf("Unable to read %s mappings: %v", s.Display, err))

				continue
			}

			m.providers[s.Key] = p
			m.active = append(m.active, s)
		}
	})
}

// ObfClass returns the mapped internal name of class in every scheme.
func (m *Manager) ObfClass(class string) Data[string] {
	m.init()

	var data Data[string]
	for _, s := range m.active {
		if to, ok := m.providers[s.Key].Class(class); ok {
			data.Add(s.Key, to)
		}
	}

	return data
}

// ObfField returns the mapped field in every scheme.
func (m *Manager) ObfField(ref symbol.MemberRef) Data[symbol.MemberRef] {
	m.init()

	var data Data[symbol.MemberRef]
	for _, s := range m.active {
		if to, ok := m.providers[s.Key].Field(ref); ok {
			data.Add(s.Key, to)
		}
	}

	return data
}

// ObfMethod returns the mapped method in every scheme.
func (m *Manager) ObfMethod(ref symbol.MemberRef) Data[symbol.MemberRef] {
	m.init()

	var data Data[symbol.MemberRef]
	for _, s := range m.active {
		if to, ok := m.providers[s.Key].Method(ref); ok {
			data.Add(s.Key, to)
		}
	}

	return data
}

// AddFieldMapping records "unit/name unit/obf" in the field table.
func (m *Manager) AddFieldMapping(scheme, unit string, from, to symbol.MemberRef) bool {
	entry := fmt.Sprintf("%s %s", from.Move(unit).Name(), to.Move(unit).Name())
	return m.fields.Add(scheme, unit, entry)
}

// AddMethodMapping records "unit/name desc unit/obf obfdesc" in the method
// table.
func (m *Manager) AddMethodMapping(scheme, unit string, from, to symbol.MemberRef) bool {
	entry := fmt.Sprintf("%s %s %s %s", from.Move(unit).Name(), from.Desc(), to.Move(unit).Name(), to.Desc())
	return m.methods.Add(scheme, unit, entry)
}

// FieldMappings returns the field table entries for (scheme, unit).
func (m *Manager) FieldMappings(scheme, unit string) []string {
	return m.fields.Get(scheme, unit)
}

// MethodMappings returns the method table entries for (scheme, unit).
func (m *Manager) MethodMappings(scheme, unit string) []string {
	return m.methods.Get(scheme, unit)
}

// AddClassReference records mapped class names for a reference used in mixin.
func (m *Manager) AddClassReference(mixin, reference string, data Data[string]) {
	for _, scheme := range data.Schemes() {
		to, _ := data.Get(scheme)
		m.refs.Add(scheme, mixin, reference, to)
	}
}

// AddMethodReference records mapped methods for a reference used in mixin, as
// "Lowner;name(desc)".
func (m *Manager) AddMethodReference(mixin, reference string, data Data[symbol.MemberRef]) {
	for _, scheme := range data.Schemes() {
		to, _ := data.Get(scheme)
		m.refs.Add(scheme, mixin, reference, fmt.Sprintf("L%s;%s%s", to.Owner(), to.SimpleName(), to.Desc()))
	}
}

// AddFieldReference records mapped fields for a reference used in mixin, as
// "Lowner;name:desc".
func (m *Manager) AddFieldReference(mixin, reference string, data Data[symbol.MemberRef]) {
	for _, scheme := range data.Schemes() {
		to, _ := data.Get(scheme)

		mapped := fmt.Sprintf("L%s;%s", to.Owner(), to.SimpleName())
		if to.Desc() != "" {
			mapped += ":" + to.Desc()
		}

		m.refs.Add(scheme, mixin, reference, mapped)
	}
}

// RefMap exposes the reference map.
func (m *Manager) RefMap() *RefMap {
	return m.refs
}

// ExportSrgs renders the field and method tables of every scheme as SRG text,
// fields first.
func (m *Manager) ExportSrgs() map[string][]byte {
	out := make(map[string][]byte)
	for scheme, b := range m.fields.Export("FD: ") {
		out[scheme] = b
	}

	for scheme, b := range m.methods.Export("MD: ") {
		out[scheme] = append(out[scheme], b...)
	}

	return out
}

// WriteSrgs writes each scheme's SRG export to the scheme's output option.
// Schemes without an output path are skipped; write failures are warnings.
func (m *Manager) WriteSrgs() {
	exported := m.ExportSrgs()

	for _, s := range m.schemes {
		path := m.option(s.OutputOption)
		if path == "" {
			continue
		}

		if err := writeFile(path, exported[s.Key]); err != nil {
			m.warn(diagnostic.CodeExportFailed, fmt.Sprintf("Unable to write %s mappings: %v", s.Display, err))
		}
	}
}

// WriteRefs writes the refmap to outRefMapFile when it is set.
func (m *Manager) WriteRefs() {
	path := m.option(OptionOutRefMapFile)
	if path == "" {
		return
	}

	var buf bytes.Buffer
	if err := m.refs.Write(&buf, m.DefaultScheme()); err != nil {
		m.warn(diagnostic.CodeExportFailed, fmt.Sprintf("Unable to encode refmap: %v", err))
		return
	}

	if err := writeFile(path, buf.Bytes()); err != nil {
		m.warn(diagnostic.CodeExportFailed, fmt.Sprintf("Unable to write refmap: %v", err))
	}
}

// Reset clears the tables and the refmap. Loaded providers are kept.
func (m *Manager) Reset() {
	m.fields.Reset()
	m.methods.Reset()
	m.refs = NewRefMap()
}

func (m *Manager) option(key string) string {
	if m.opts == nil {
		return ""
	}

	return m.opts.Option(key)
}

func (m *Manager) warn(code, msg string) {
	if m.messager == nil {
		return
	}

	m.messager.PrintMessage(diagnostic.Diagnostic{Severity: diagnostic.SeverityWarning, Code: code, Message: msg})
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0o644)
}
