package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixin-ap/internal/targets"
)

const (
	targetSource = `package pkg;

public class T {
    int x;

    void f() {}
}
`
	mixinSource = `package pkg;

import org.spongepowered.asm.mixin.Mixin;
import org.spongepowered.asm.mixin.Shadow;
import org.spongepowered.asm.mixin.injection.At;
import org.spongepowered.asm.mixin.injection.Inject;

@Mixin(T.class)
public class M {
    @Shadow int x;

    @Shadow void f() {}

    @Inject(method = "f", at = @At(value = "INVOKE", target = "Lpkg/T;f()V"))
    void onF() {}
}
`
	badSource = `package pkg;

@Mixin(remap = false)
public class Bad {}
`
	testSRG = `PK: pkg pkg
FD: pkg/T/x pkg/T/field_x
MD: pkg/T/f ()V pkg/T/a ()V
`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))

	err := cmd.Execute()

	return out.String(), err
}

func TestProcess_JavaSources(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, src, "pkg/T.java", targetSource)
	writeFile(t, src, "pkg/M.java", mixinSource)

	out, err := execute(t, "process",
		"--src", src,
		"--store", "memory",
		"--metrics-file", filepath.Join(dir, "metrics.prom"),
		"-A", "reobfSrgFile="+writeFile(t, dir, "in.srg", testSRG),
		"-A", "outSrgFile="+filepath.Join(dir, "out", "mixins.srg"),
		"-A", "outRefMapFile="+filepath.Join(dir, "out", "refmap.json"),
	)
	require.NoError(t, err, out)

	assert.Contains(t, out, "note: [processor_version] Mixin Annotation Processor v")
	assert.NotContains(t, out, "error:")

	srg, err := os.ReadFile(filepath.Join(dir, "out", "mixins.srg"))
	require.NoError(t, err)
	assert.Equal(t, "FD: pkg/M/x pkg/M/field_x\nMD: pkg/M/f ()V pkg/M/a ()V\n", string(srg))

	refmap, err := os.ReadFile(filepath.Join(dir, "out", "refmap.json"))
	require.NoError(t, err)
	assert.Contains(t, string(refmap), `"Lpkg/T;a()V"`)

	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "mixin_ap_passes_completed_total 1")
}

func TestProcess_ErrorsExitNonZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pkg/Bad.java", badSource)

	out, err := execute(t, "process", "--src", dir, "--store", "memory", "--suppress-notes")
	assert.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, "[no_targets]")
	assert.NotContains(t, out, "note:")
}

func TestProcess_ManifestAndDump(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mixins.yaml", `
types:
  - name: pkg.T
    public: true
    methods: [{name: f, desc: ()V}]
  - name: pkg.M
    public: true
    annotations: [{name: Mixin, values: {value: {type: pkg.T}}}]
    methods:
      - name: f
        desc: ()V
        annotations: [{name: Shadow}]
`)
	dump := filepath.Join(dir, "dump.yaml")

	out, err := execute(t, "process", "--manifest", path, "--store", "memory", "--dump-manifest", dump)
	require.NoError(t, err, out)

	raw, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "name: pkg.M")
}

func TestProcess_RequiresInput(t *testing.T) {
	_, err := execute(t, "process", "--store", "memory")
	assert.Error(t, err)
}

func TestTargets_File(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "targets.txt", "pkg/T -> pkg/M,pkg/N\npkg/U -> pkg/O\n")

	out, err := execute(t, "targets", "pkg.T", "--file", file)
	require.NoError(t, err)
	assert.Equal(t, "pkg/M\npkg/N\n", out)

	out, err = execute(t, "targets", "pkg.Unknown", "--file", file)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestTargets_Session(t *testing.T) {
	dir := t.TempDir()

	store, err := targets.OpenBadgerStore(targets.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, store.Save("build-1", targets.Associations{"pkg/T": {"pkg/M"}}))
	require.NoError(t, store.Close())

	out, err := execute(t, "targets", "pkg/T", "--store", "badger", "--store-dir", dir, "--session", "build-1")
	require.NoError(t, err)
	assert.Equal(t, "pkg/M\n", out)

	_, err = execute(t, "targets", "pkg/T", "--store", "memory")
	assert.ErrorContains(t, err, "session is required")
}

func TestLaunch(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a/MANIFEST.MF", "Manifest-Version: 1.0\r\nMixinConfigs: a.mixins.json,b.mixins.json\r\nMain-Class: pkg.Main\r\n")
	second := writeFile(t, dir, "b/MANIFEST.MF", "MixinConfigs: b.mixins.json, c.mixins.json\nMixinTokenProviders: pkg.Tokens\n")

	out, err := execute(t, "launch", first, second, "--agent", "default,missing")
	require.NoError(t, err)

	assert.Contains(t, out, "configs: a.mixins.json,b.mixins.json,c.mixins.json\n")
	assert.Contains(t, out, "token providers: pkg.Tokens\n")
	assert.Contains(t, out, "launch target: pkg.Main\n")
	assert.Contains(t, out, "warning: "+first)
}
