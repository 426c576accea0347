package launch

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestRegistry_Sets(t *testing.T) {
	reg := NewRegistry()

	reg.AddConfiguration("mixins.a.json")
	reg.AddConfiguration(" mixins.b.json ")
	reg.AddConfiguration("mixins.a.json")
	reg.AddConfiguration("  ")

	reg.RegisterErrorHandler("pkg.Handler")
	reg.RegisterErrorHandler("")
	reg.RegisterErrorHandler("pkg.Handler")

	reg.AddTokenProvider("pkg.Tokens")

	assert.Equal(t, []string{"mixins.a.json", "mixins.b.json"}, reg.PendingConfigurations())
	assert.Equal(t, []string{"pkg.Handler"}, reg.ErrorHandlers())
	assert.Equal(t, []string{"pkg.Tokens"}, reg.TokenProviders())

	assert.Equal(t, []string{"mixins.a.json", "mixins.b.json"}, reg.DrainConfigurations())
	assert.Empty(t, reg.PendingConfigurations())

	reg.AddConfiguration("mixins.a.json")
	assert.Equal(t, []string{"mixins.a.json"}, reg.DrainConfigurations())
}

func TestReadManifest(t *testing.T) {
	input := "Manifest-Version: 1.0\r\n" +
		"MixinConfigs: mixins.core.json,mixins.cli\r\n" +
		" ent.json\r\n" +
		"Main-Class: app.Main\r\n" +
		"\r\n" +
		"Name: ignored/section\r\n"

	m, err := ReadManifest(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Get("Manifest-Version"))
	assert.Equal(t, "mixins.core.json,mixins.client.json", m.Get(AttrMixinConfigs))
	assert.Equal(t, "app.Main", m.Get(AttrMainClass))
	assert.Empty(t, m.Get("Name"))
}

func TestReadManifest_Malformed(t *testing.T) {
	for _, input := range []string{" continued\n", "no colon here\n", ": empty key\n"} {
		_, err := ReadManifest(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrMalformedManifest, input)
	}
}

func TestDefaultAgent(t *testing.T) {
	var logs bytes.Buffer
	src := Source{URI: "mods/example.jar", Attributes: Manifest{
		AttrMixinConfigs:       " a.json , b.json,,a.json",
		AttrTokenProviders:     "pkg.TokensA, pkg.TokensB",
		AttrMainClass:          "app.Main",
		AttrCompatibilityLevel: "JAVA_8",
	}}

	agent, err := NewDefaultAgent(src, testLogger(&logs))
	require.NoError(t, err)

	reg := NewRegistry()
	agent.Prepare(reg)

	assert.Equal(t, []string{"a.json", "b.json"}, reg.PendingConfigurations())
	assert.Equal(t, []string{"pkg.TokensA", "pkg.TokensB"}, reg.TokenProviders())
	assert.Equal(t, "JAVA_8", reg.CompatibilityLevel())
	assert.Equal(t, "app.Main", agent.LaunchTarget())
	assert.Contains(t, logs.String(), "deprecated")
}

func TestDefaultAgent_EmptyManifest(t *testing.T) {
	agent, err := NewDefaultAgent(Source{}, nil)
	require.NoError(t, err)

	reg := NewRegistry()
	agent.Prepare(reg)

	assert.Empty(t, reg.PendingConfigurations())
	assert.Empty(t, reg.TokenProviders())
	assert.Empty(t, reg.CompatibilityLevel())
	assert.Empty(t, agent.LaunchTarget())
}

type panicAgent struct{}

func (panicAgent) Prepare(*Registry)    { panic("prepare exploded") }
func (panicAgent) LaunchTarget() string { return "" }

type fixedAgent struct{ target, config string }

func (a fixedAgent) Prepare(reg *Registry) { reg.AddConfiguration(a.config) }
func (a fixedAgent) LaunchTarget() string  { return a.target }

func TestContainer_CollectsFailures(t *testing.T) {
	var logs bytes.Buffer
	boom := errors.New("cannot build")

	factories := DefaultFactories()
	require.NoError(t, factories.Register("broken", func(Source, *slog.Logger) (Agent, error) { return nil, boom }))
	require.NoError(t, factories.Register("panicky", func(Source, *slog.Logger) (Agent, error) { return panicAgent{}, nil }))
	require.NoError(t, factories.Register("crashing", func(Source, *slog.Logger) (Agent, error) { panic("ctor exploded") }))
	require.NoError(t, factories.Register("fixed", func(Source, *slog.Logger) (Agent, error) {
		return fixedAgent{target: "other.Main", config: "fixed.json"}, nil
	}))

	assert.ErrorIs(t, factories.Register("fixed", nil), ErrDuplicateAgent)
	assert.Equal(t, []string{DefaultAgentName, "broken", "panicky", "crashing", "fixed"}, factories.Names())

	src := Source{URI: "app.jar", Attributes: Manifest{AttrMixinConfigs: "app.json"}}
	c := NewContainer(src, factories, []string{"missing", "broken", "crashing", "panicky", DefaultAgentName, "fixed"}, testLogger(&logs))

	assert.Equal(t, []string{"panicky", DefaultAgentName, "fixed"}, c.Agents())

	reg := NewRegistry()
	c.Prepare(reg)

	assert.Equal(t, []string{"app.json", "fixed.json"}, reg.PendingConfigurations())
	assert.Equal(t, "other.Main", c.LaunchTarget())
	assert.Equal(t, "app.jar", c.URI())

	failures := c.Failures()
	require.Len(t, failures, 4)
	assert.Equal(t, "missing", failures[0].Agent)
	assert.ErrorIs(t, failures[0], ErrUnknownAgent)
	assert.ErrorIs(t, failures[1], boom)
	assert.Contains(t, failures[2].Error(), "ctor exploded")
	assert.Equal(t, "panicky", failures[3].Agent)
	assert.Contains(t, failures[3].Err.Error(), "prepare exploded")

	assert.Contains(t, logs.String(), "launch agent failed")
}
