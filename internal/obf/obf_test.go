package obf

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/symbol"
)

type mapOptions map[string]string

func (m mapOptions) Option(key string) string { return m[key] }

const testSRG = `# dev -> searge
PK: ./ net/minecraft
CL: net/minecraft/World net/minecraft/World
FD: net/minecraft/World/worldTime net/minecraft/World/field_1_a
MD: net/minecraft/World/tick ()V net/minecraft/World/func_2_b ()V
MD: net/minecraft/World/tick (I)V net/minecraft/World/func_3_c (I)V
`

func TestParseSRG(t *testing.T) {
	p, err := ParseSRG(strings.NewReader(testSRG))
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len())

	cls, ok := p.Class("net/minecraft/World")
	assert.True(t, ok)
	assert.Equal(t, "net/minecraft/World", cls)

	fd, ok := p.Field(symbol.NewMemberRef("net/minecraft/World", "worldTime", "J"))
	require.True(t, ok)
	assert.Equal(t, "field_1_a", fd.SimpleName())

	md, ok := p.Method(symbol.NewMemberRef("net/minecraft/World", "tick", "(I)V"))
	require.True(t, ok)
	assert.Equal(t, "func_3_c", md.SimpleName())

	// No descriptor: first mapping for the name.
	md, ok = p.Method(symbol.NewMemberRef("net/minecraft/World", "tick", ""))
	require.True(t, ok)
	assert.Equal(t, "func_2_b", md.SimpleName())

	_, ok = p.Method(symbol.NewMemberRef("net/minecraft/World", "missing", "()V"))
	assert.False(t, ok)
}

func TestParseSRG_Malformed(t *testing.T) {
	tests := []string{
		"CL: onlyone",
		"FD: a",
		"MD: a/b ()V a/c",
		"XX: a b",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSRG(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrMalformedSRG)
		})
	}
}

func TestTable_OrderedAndDuplicateFree(t *testing.T) {
	table := NewTable()

	assert.True(t, table.Add("searge", "a/M", "x"))
	assert.True(t, table.Add("searge", "a/M", "y"))
	assert.False(t, table.Add("searge", "a/M", "x"))
	assert.True(t, table.Add("searge", "a/N", "z"))
	assert.True(t, table.Add("notch", "a/M", "q"))

	assert.Equal(t, []string{"x", "y"}, table.Get("searge", "a/M"))
	assert.Equal(t, []string{}, table.Get("searge", "a/Unknown"))
	assert.Equal(t, []string{}, table.Get("unknown", "a/M"))
	assert.Equal(t, []string{"a/M", "a/N"}, table.Units("searge"))
	assert.Equal(t, []string{"searge", "notch"}, table.Schemes())
	assert.Equal(t, 4, table.Len())

	out := table.Export("FD: ")
	assert.Equal(t, "FD: x\nFD: y\nFD: z\n", string(out["searge"]))
	assert.Equal(t, "FD: q\n", string(out["notch"]))

	table.Reset()
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Schemes())
}

func TestData(t *testing.T) {
	var d Data[string]
	assert.True(t, d.IsEmpty())

	d.Add("notch", "a")
	d.Add("searge", "b")
	d.Add("notch", "c")

	assert.False(t, d.IsEmpty())
	assert.Equal(t, []string{"notch", "searge"}, d.Schemes())

	v, ok := d.Get("notch")
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, ok = d.Get("other")
	assert.False(t, ok)
}

func TestRefMap_Write(t *testing.T) {
	r := NewRefMap()
	r.Add("searge", "a/M", "tick", "Lnet/World;func_2_b()V")
	r.Add("notch", "a/M", "tick", "Lahx;a()V")

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, "searge"))

	var decoded struct {
		Mappings map[string]map[string]string            `json:"mappings"`
		Data     map[string]map[string]map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "Lnet/World;func_2_b()V", decoded.Mappings["a/M"]["tick"])
	assert.Equal(t, "Lahx;a()V", decoded.Data["notch"]["a/M"]["tick"])

	var empty bytes.Buffer
	require.NoError(t, NewRefMap().Write(&empty, "searge"))
	assert.Contains(t, empty.String(), `"mappings": {}`)
}

func TestManager_LookupsAndExport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.srg")
	require.NoError(t, os.WriteFile(in, []byte(testSRG), 0o644))

	opts := mapOptions{
		"reobfSrgFile":  in,
		"outSrgFile":    filepath.Join(dir, "out", "mixins.srg"),
		"outRefMapFile": filepath.Join(dir, "out", "refmap.json"),
	}

	var diags diagnostic.Diagnostics
	m := NewManager(opts, &diags)

	require.Len(t, m.Schemes(), 1)
	assert.Equal(t, "searge", m.Schemes()[0].Key)

	fd := m.ObfField(symbol.NewMemberRef("net/minecraft/World", "worldTime", "J"))
	to, ok := fd.Get("searge")
	require.True(t, ok)

	mixin := "a/WorldMixin"
	assert.True(t, m.AddFieldMapping("searge", mixin, symbol.NewMemberRef("", "worldTime", "J"), to))
	assert.False(t, m.AddFieldMapping("searge", mixin, symbol.NewMemberRef("", "worldTime", "J"), to))

	md := m.ObfMethod(symbol.NewMemberRef("net/minecraft/World", "tick", "()V"))
	mto, _ := md.Get("searge")
	m.AddMethodMapping("searge", mixin, symbol.NewMemberRef("", "tick", "()V"), mto)
	m.AddMethodReference(mixin, "tick", md)

	assert.Equal(t, []string{"a/WorldMixin/worldTime a/WorldMixin/field_1_a"}, m.FieldMappings("searge", mixin))
	assert.Equal(t, []string{"a/WorldMixin/tick ()V a/WorldMixin/func_2_b ()V"}, m.MethodMappings("searge", mixin))

	m.WriteSrgs()
	m.WriteRefs()
	assert.Empty(t, diags.All())

	srg, err := os.ReadFile(opts["outSrgFile"])
	require.NoError(t, err)
	assert.Equal(t,
		"FD: a/WorldMixin/worldTime a/WorldMixin/field_1_a\nMD: a/WorldMixin/tick ()V a/WorldMixin/func_2_b ()V\n",
		string(srg))

	refmap, err := os.ReadFile(opts["outRefMapFile"])
	require.NoError(t, err)
	assert.Contains(t, string(refmap), "Lnet/minecraft/World;func_2_b()V")
}

func TestManager_UnreadableMappingsWarn(t *testing.T) {
	var diags diagnostic.Diagnostics
	m := NewManager(mapOptions{"reobfSrgFile": filepath.Join(t.TempDir(), "missing.srg")}, &diags)

	data := m.ObfClass("a/B")
	assert.True(t, data.IsEmpty())
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodeMappingUnreadable, diags.Warnings[0].Code)
}

func TestManager_SetProviderAndDefaultScheme(t *testing.T) {
	m := NewManager(mapOptions{"defaultObfuscationEnv": "notch"}, nil)
	assert.Equal(t, "notch", m.DefaultScheme())

	p := NewProvider()
	p.AddClass("a/Target", "abc")
	m.SetProvider("notch", p)

	data := m.ObfClass("a/Target")
	v, ok := data.Get("notch")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	m.AddClassReference("a/M", "a.Target", data)
	ref, ok := m.RefMap().Get("notch", "a/M", "a.Target")
	assert.True(t, ok)
	assert.Equal(t, "abc", ref)

	m.Reset()
	assert.True(t, m.RefMap().IsEmpty())
}
