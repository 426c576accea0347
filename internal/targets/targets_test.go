package targets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mixin-ap/internal/common"
)

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()

	s, err := OpenBadgerStore(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestCreate_GeneratesAndPublishesID(t *testing.T) {
	props := NewProperties()

	first, err := Create("", nil, props)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID())
	assert.Equal(t, first.ID(), props.Get(PropertySessionID))

	second, err := Create("", nil, props)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
}

func TestCreate_ReusedIDObservesPersistedAssociations(t *testing.T) {
	store := FileStore{Dir: t.TempDir()}
	props := NewProperties()

	first, err := Create("", store, props)
	require.NoError(t, err)
	first.RegisterTargets("a/MixinA", []string{"a/Target"})
	require.NoError(t, first.Write(false))

	second, err := Create("", store, props)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/MixinA"}, second.MixinsTargeting("a/Target"))
}

func TestSessionIsolation(t *testing.T) {
	stores := map[string]Store{
		"file":   FileStore{Dir: t.TempDir()},
		"badger": newBadgerStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			one, err := Create("session-one", store, NewProperties())
			require.NoError(t, err)
			one.RegisterTargets("a/MixinA", []string{"a/Target"})
			require.NoError(t, one.Write(false))

			two, err := Create("session-two", store, NewProperties())
			require.NoError(t, err)
			assert.Empty(t, two.MixinsTargeting("a/Target"))

			two.RegisterTargets("a/MixinB", []string{"a/Target"})
			require.NoError(t, two.Write(false))

			again, err := Create("session-one", store, NewProperties())
			require.NoError(t, err)
			assert.Equal(t, []string{"a/MixinA"}, again.MixinsTargeting("a/Target"))
		})
	}
}

func TestRegisterTargets_SetSemantics(t *testing.T) {
	m, err := Create("s", nil, nil)
	require.NoError(t, err)

	m.RegisterTargets("a/M", []string{"a/T", "a/U"})
	m.RegisterTargets("a/M", []string{"a/T"})
	m.RegisterTargets("a/N", []string{"a/T"})

	assert.Equal(t, []string{"a/M", "a/N"}, m.MixinsTargeting("a/T"))
	assert.Equal(t, []string{"a/M"}, m.MixinsTargeting("a.U"))
	assert.NotNil(t, m.MixinsTargeting("a/Unknown"))
	assert.Empty(t, m.MixinsTargeting("a/Unknown"))
}

func TestReadImports(t *testing.T) {
	m, err := Create("s", nil, nil)
	require.NoError(t, err)

	require.NoError(t, m.ReadImports(strings.NewReader("Foo -> MixinA,MixinB\n")))
	assert.Equal(t, []string{"MixinA", "MixinB"}, m.MixinsTargeting("Foo"))
}

func TestReadImports_ContinuationAndComments(t *testing.T) {
	in := `# imported
a.b.Foo -> a.MixinA
    a.MixinB,
    a.MixinA
a.b.Bar ->   # nothing yet
	a.MixinC
`

	m, err := Create("s", nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.ReadImports(strings.NewReader(in)))

	assert.Equal(t, []string{"a/MixinA", "a/MixinB"}, m.MixinsTargeting("a/b/Foo"))
	assert.Equal(t, []string{"a/MixinC"}, m.MixinsTargeting("a/b/Bar"))
}

func TestReadImports_Failures(t *testing.T) {
	m, err := Create("s", nil, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, m.ReadImports(strings.NewReader("no arrow here")), ErrImport)
	assert.ErrorIs(t, m.ReadImports(strings.NewReader("  orphan")), ErrImport)
	assert.ErrorIs(t, m.ReadImportsFile(filepath.Join(t.TempDir(), "missing")), ErrImport)
}

func TestWrite_MergeAccumulates(t *testing.T) {
	store := FileStore{Dir: t.TempDir()}

	first, err := Create("build", store, nil)
	require.NoError(t, err)
	first.RegisterTargets("a/M1", []string{"a/T"})
	require.NoError(t, first.Write(false))

	// A separate step that does not load the persisted copy.
	second := &Map{id: "build", store: store, targets: make(map[string]*common.OrderedSet[string])}
	second.RegisterTargets("a/M2", []string{"a/T", "a/U"})
	require.NoError(t, second.Write(true))

	data, err := os.ReadFile(store.Path("build"))
	require.NoError(t, err)
	assert.Equal(t, "a/T -> a/M1,a/M2\na/U -> a/M2\n", string(data))

	require.NoError(t, second.Write(false))
	data, err = os.ReadFile(store.Path("build"))
	require.NoError(t, err)
	assert.Equal(t, "a/T -> a/M2\na/U -> a/M2\n", string(data))
}

func TestEncode_Deterministic(t *testing.T) {
	build := func() []byte {
		m, err := Create("s", nil, nil)
		require.NoError(t, err)
		m.RegisterTargets("a/M2", []string{"z/T", "a/T"})
		m.RegisterTargets("a/M1", []string{"a/T"})

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, m.Snapshot()))

		return buf.Bytes()
	}

	first := build()
	assert.Equal(t, first, build())
	assert.Equal(t, "a/T -> a/M2,a/M1\nz/T -> a/M2\n", string(first))
}

func TestBadgerStore_SaveReplaces(t *testing.T) {
	s := newBadgerStore(t)

	require.NoError(t, s.Save("x", Associations{"a/T": {"a/M"}, "a/U": {"a/N"}}))
	require.NoError(t, s.Save("x", Associations{"a/T": {"a/M", "a/O"}}))

	got, err := s.Load("x")
	require.NoError(t, err)
	assert.Equal(t, Associations{"a/T": {"a/M", "a/O"}}, got)

	empty, err := s.Load("y")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
