package mixin

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/obf"
	"mixin-ap/internal/symbol"
	"mixin-ap/internal/targets"
	"mixin-ap/internal/validation"
)

type testHost struct {
	*analyze.Index
	diagnostic.Diagnostics

	options map[string]string
	tokens  map[string]int
}

func (h *testHost) Option(key string) string { return h.options[key] }

func (h *testHost) Token(name string) (int, bool) {
	v, ok := h.tokens[name]
	return v, ok
}

type fixture struct {
	host     *testHost
	obf      *obf.Manager
	provider *obf.Provider
	targets  *targets.Map
	registry *Registry
}

// newFixture builds a registry over an index containing types, with an empty
// searge provider the test can fill.
func newFixture(t *testing.T, types ...*analyze.TypeElement) *fixture {
	t.Helper()

	idx := analyze.NewIndex()
	for _, typ := range types {
		require.NoError(t, idx.Add(typ))
	}

	host := &testHost{
		Index:   idx,
		options: map[string]string{OptionDisableOverwriteChecker: "true"},
		tokens:  map[string]int{},
	}

	obfm := obf.NewManager(host, host)
	provider := obf.NewProvider()
	obfm.SetProvider(obf.Searge.Key, provider)

	tmap, err := targets.Create("test", nil, nil)
	require.NoError(t, err)

	return &fixture{
		host:     host,
		obf:      obfm,
		provider: provider,
		targets:  tmap,
		registry: NewRegistry(host, obfm, tmap, WithValidators(validation.Defaults(&validationServices{host, tmap})...)),
	}
}

type validationServices struct {
	*testHost
	tmap *targets.Map
}

func (s *validationServices) MixinsTargeting(target string) []string {
	return s.tmap.MixinsTargeting(target)
}

func (f *fixture) codes() []string {
	var out []string
	for _, d := range f.host.All() {
		out = append(out, d.Code)
	}

	return out
}

func (f *fixture) dump() string {
	return spew.Sdump(f.host.All())
}

func mixinAnnotation(values map[string]analyze.Value) *analyze.Annotation {
	return analyze.NewAnnotation("org.spongepowered.asm.mixin.Mixin", values)
}

func publicClass(name string, members ...*analyze.Member) *analyze.TypeElement {
	el := &analyze.TypeElement{Name: name, Kind: analyze.TypeKindClass, Public: true}
	for _, m := range members {
		if m.Kind == analyze.MemberField {
			el.Fields = append(el.Fields, m)
		} else {
			el.Methods = append(el.Methods, m)
		}
	}

	return el
}

func mixinClass(name string, ann *analyze.Annotation, members ...*analyze.Member) *analyze.TypeElement {
	el := publicClass(name, members...)
	el.Annotations = []*analyze.Annotation{ann}

	return el
}

func method(name, desc string, anns ...*analyze.Annotation) *analyze.Member {
	return &analyze.Member{Kind: analyze.MemberMethod, Name: name, Desc: desc, Annotations: anns}
}

func field(name, desc string, anns ...*analyze.Annotation) *analyze.Member {
	return &analyze.Member{Kind: analyze.MemberField, Name: name, Desc: desc, Annotations: anns}
}

func targetsValue(names ...string) analyze.Value {
	items := make([]analyze.Value, 0, len(names))
	for _, n := range names {
		items = append(items, analyze.TypeValue(n))
	}

	return analyze.ListValue(items...)
}

func stringsValue(items ...string) analyze.Value {
	values := make([]analyze.Value, 0, len(items))
	for _, s := range items {
		values = append(values, analyze.StringValue(s))
	}

	return analyze.ListValue(values...)
}

func mref(owner, name, desc string) symbol.MemberRef {
	return symbol.NewMemberRef(owner, name, desc)
}
