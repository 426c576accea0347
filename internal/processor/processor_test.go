package processor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/metrics"
	"mixin-ap/internal/obf"
	"mixin-ap/internal/targets"
)

const testSRG = `PK: pkg pkg
FD: pkg/T/x pkg/T/field_x
MD: pkg/T/f ()V pkg/T/a ()V
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

// buildIndex returns a target class T and a mixin M shadowing and injecting
// into it.
func buildIndex(t *testing.T) *analyze.Index {
	t.Helper()

	at := analyze.NewAnnotation("At", map[string]analyze.Value{
		"value":  analyze.StringValue("INVOKE"),
		"target": analyze.StringValue("Lpkg/T;f()V"),
	})

	idx := analyze.NewIndex()
	require.NoError(t, idx.Add(&analyze.TypeElement{
		Name:    "pkg.T",
		Kind:    analyze.TypeKindClass,
		Public:  true,
		Fields:  []*analyze.Member{{Kind: analyze.MemberField, Name: "x", Desc: "I"}},
		Methods: []*analyze.Member{{Kind: analyze.MemberMethod, Name: "f", Desc: "()V"}},
	}))
	require.NoError(t, idx.Add(&analyze.TypeElement{
		Name:   "pkg.M",
		Kind:   analyze.TypeKindClass,
		Public: true,
		Annotations: []*analyze.Annotation{analyze.NewAnnotation("Mixin", map[string]analyze.Value{
			"value": analyze.TypeValue("pkg.T"),
		})},
		Fields: []*analyze.Member{{
			Kind: analyze.MemberField, Name: "x", Desc: "I",
			Annotations: []*analyze.Annotation{analyze.NewAnnotation("Shadow", nil)},
		}},
		Methods: []*analyze.Member{
			{
				Kind: analyze.MemberMethod, Name: "f", Desc: "()V",
				Annotations: []*analyze.Annotation{analyze.NewAnnotation("Shadow", nil)},
			},
			{
				Kind: analyze.MemberMethod, Name: "onF", Desc: "()V",
				Annotations: []*analyze.Annotation{analyze.NewAnnotation("Inject", map[string]analyze.Value{
					"method": analyze.StringValue("f"),
					"at":     analyze.AnnotationValue(at),
				})},
			},
		},
	}))

	return idx
}

type run struct {
	dir   string
	env   *Environment
	diags *diagnostic.Diagnostics
}

func newRun(t *testing.T, options map[string]string) *run {
	t.Helper()

	dir := t.TempDir()
	opts := map[string]string{
		"reobfSrgFile":  writeFile(t, dir, "in.srg", testSRG),
		"outSrgFile":    filepath.Join(dir, "out", "mixins.srg"),
		"outRefMapFile": filepath.Join(dir, "out", "refmap.json"),
	}
	for k, v := range options {
		opts[k] = v
	}

	diags := &diagnostic.Diagnostics{}
	env, err := NewEnvironment(Config{
		Options:  opts,
		Index:    buildIndex(t),
		Messager: diags,
		Store:    targets.FileStore{Dir: dir},
	})
	require.NoError(t, err)

	return &run{dir: dir, env: env, diags: diags}
}

func TestEnvironment_RunPassEndToEnd(t *testing.T) {
	r := newRun(t, nil)
	ctx := context.Background()

	require.NoError(t, r.env.RunPass(ctx, r.env.index))
	r.env.WriteMappings(ctx)

	assert.Empty(t, r.diags.Errors, spew.Sdump(r.diags.All()))
	assert.Empty(t, r.diags.Warnings, spew.Sdump(r.diags.All()))

	srg, err := os.ReadFile(filepath.Join(r.dir, "out", "mixins.srg"))
	require.NoError(t, err)
	assert.Equal(t, "FD: pkg/M/x pkg/M/field_x\nMD: pkg/M/f ()V pkg/M/a ()V\n", string(srg))

	raw, err := os.ReadFile(filepath.Join(r.dir, "out", "refmap.json"))
	require.NoError(t, err)

	var refmap struct {
		Mappings map[string]map[string]string            `json:"mappings"`
		Data     map[string]map[string]map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &refmap))
	assert.Equal(t, map[string]string{
		"f":           "Lpkg/T;a()V",
		"Lpkg/T;f()V": "Lpkg/T;a()V",
	}, refmap.Mappings["pkg/M"])
	assert.Equal(t, refmap.Mappings, refmap.Data[obf.Searge.Key])

	assert.Equal(t, []string{"pkg/M"}, r.env.MixinsTargeting("pkg.T"))

	persisted, err := targets.FileStore{Dir: r.dir}.Load(r.env.Session())
	require.NoError(t, err)
	assert.Equal(t, targets.Associations{"pkg/T": {"pkg/M"}}, persisted)
}

func TestEnvironment_DeterministicOutput(t *testing.T) {
	outputs := make([][]byte, 0, 2)

	for range 2 {
		r := newRun(t, nil)
		require.NoError(t, r.env.RunPass(context.Background(), r.env.index))
		r.env.WriteMappings(context.Background())

		srg, err := os.ReadFile(filepath.Join(r.dir, "out", "mixins.srg"))
		require.NoError(t, err)

		refmap, err := os.ReadFile(filepath.Join(r.dir, "out", "refmap.json"))
		require.NoError(t, err)

		outputs = append(outputs, append(srg, refmap...))
	}

	assert.Equal(t, string(outputs[0]), string(outputs[1]))
}

func TestEnvironment_VersionNote(t *testing.T) {
	r := newRun(t, nil)

	notes := r.diags.WithCode(diagnostic.CodeProcessorVersion)
	require.Len(t, notes, 1)
	assert.Equal(t, diagnostic.SeverityNote, notes[0].Severity)
	assert.Equal(t, "Mixin Annotation Processor v"+Version, notes[0].Message)

	var quiet diagnostic.Diagnostics
	_, err := NewEnvironment(Config{Messager: &quiet, SuppressNotes: true, Store: targets.FileStore{Dir: t.TempDir()}})
	require.NoError(t, err)
	assert.Empty(t, quiet.All())
}

func TestEnvironment_ImportsFile(t *testing.T) {
	dir := t.TempDir()
	imports := writeFile(t, dir, "deps.txt", "dep/Base -> dep/BaseMixin\n")

	r := newRun(t, map[string]string{OptionDependencyTargetsFile: imports})
	assert.Equal(t, []string{"dep/BaseMixin"}, r.env.MixinsTargeting("dep.Base"))
	assert.Empty(t, r.diags.Warnings)

	missing := filepath.Join(dir, "missing.txt")
	r = newRun(t, map[string]string{OptionDependencyTargetsFile: missing})

	warnings := r.diags.WithCode(diagnostic.CodeImportUnreadable)
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, "Could not read from specified imports file: "+missing, warnings[0].Message)
}

func TestEnvironment_SharedSession(t *testing.T) {
	dir := t.TempDir()
	props := targets.NewProperties()
	store := targets.FileStore{Dir: dir}

	first, err := NewEnvironment(Config{Index: buildIndex(t), Messager: &diagnostic.Diagnostics{}, Store: store, Properties: props})
	require.NoError(t, err)
	require.NoError(t, first.RunPass(context.Background(), first.index))

	second, err := NewEnvironment(Config{Messager: &diagnostic.Diagnostics{}, Store: store, Properties: props})
	require.NoError(t, err)

	assert.Equal(t, first.Session(), second.Session())
	assert.Equal(t, first.Session(), props.Get(targets.PropertySessionID))
	assert.Equal(t, []string{"pkg/M"}, second.MixinsTargeting("pkg/T"))
}

func TestEnvironment_TypeHandle(t *testing.T) {
	r := newRun(t, nil)

	h := r.env.TypeHandle("pkg/T")
	require.NotNil(t, h)
	assert.Same(t, h, r.env.TypeHandle(" pkg.T "))
	assert.False(t, h.IsImaginary())

	ghost := r.env.TypeHandle("pkg.Ghost")
	require.NotNil(t, ghost)
	assert.True(t, ghost.IsImaginary())

	assert.Nil(t, r.env.TypeHandle("nowhere.Ghost"))

	r.env.OnPassStarted()
	assert.NotSame(t, h, r.env.TypeHandle("pkg.T"))
}

func TestEnvironment_TargetExportDisabled(t *testing.T) {
	r := newRun(t, map[string]string{"disableTargetExport": "true"})
	require.NoError(t, r.env.RunPass(context.Background(), r.env.index))

	_, err := os.Stat(targets.FileStore{Dir: r.dir}.Path(r.env.Session()))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvironment_RunPassCancelled(t *testing.T) {
	r := newRun(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.env.RunPass(ctx, r.env.index)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.env.Declarations())
}

func TestEnvironment_Metrics(t *testing.T) {
	m := metrics.New()
	dir := t.TempDir()

	env, err := NewEnvironment(Config{
		Index:    buildIndex(t),
		Messager: &diagnostic.Diagnostics{},
		Store:    targets.FileStore{Dir: dir},
		Metrics:  m,
	})
	require.NoError(t, err)
	require.NoError(t, env.RunPass(context.Background(), env.index))

	count, err := testutil.GatherAndCount(m.Registry(), "mixin_ap_mixins_registered_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	path := filepath.Join(dir, "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mixin_ap_mixins_registered_total 1")
	assert.Contains(t, string(data), `mixin_ap_members_registered_total{kind="Shadow"} 2`)
	assert.Contains(t, string(data), `mixin_ap_diagnostics_total{severity="note"} 1`)
	assert.Contains(t, string(data), "mixin_ap_passes_completed_total 1")
}

func TestRegistry_EnvironmentLifecycle(t *testing.T) {
	reg := NewRegistry()
	ctx := context.Background()
	cfg := Config{Messager: &diagnostic.Diagnostics{}, Store: targets.FileStore{Dir: t.TempDir()}}

	var (
		wg   sync.WaitGroup
		envs = make([]*Environment, 8)
	)
	for i := range envs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			env, err := reg.Environment(ctx, "build", cfg)
			assert.NoError(t, err)
			envs[i] = env
		}()
	}
	wg.Wait()

	for _, env := range envs {
		assert.Same(t, envs[0], env)
	}
	assert.Equal(t, 1, reg.Len())

	other, err := reg.Environment(ctx, "other", cfg)
	require.NoError(t, err)
	assert.NotSame(t, envs[0], other)

	assert.True(t, reg.Dispose("build"))
	assert.False(t, reg.Dispose("build"))
	assert.Equal(t, 1, reg.Len())

	again, err := reg.Environment(ctx, "build", cfg)
	require.NoError(t, err)
	assert.NotSame(t, envs[0], again)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Environment(ctx, "cancelled", Config{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = reg.Environment(context.Background(), "bad", Config{HandleCacheSize: -1, Messager: &diagnostic.Diagnostics{}})
	assert.Error(t, err)
	assert.Zero(t, reg.Len())
}
