package launch

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Manifest attributes read by the default agent.
const (
	AttrMixinConfigs        = "MixinConfigs"
	AttrTokenProviders      = "MixinTokenProviders"
	AttrMainClass           = "Main-Class"
	AttrCompatibilityLevel  = "MixinCompatibilityLevel"
	DefaultAgentName        = "default"
	compatibilityDeprecated = "Setting mixin compatibility level via manifest is deprecated, use 'compatibilityLevel' key in config instead"
)

var (
	// ErrUnknownAgent is recorded for agent names without a factory.
	ErrUnknownAgent = errors.New("unknown launch agent")
	// ErrDuplicateAgent is returned when a factory name is registered twice.
	ErrDuplicateAgent = errors.New("launch agent already registered")
)

// Source is the container an agent is built for.
type Source struct {
	// URI identifies the container, usually the path of the archive.
	URI        string
	Attributes Manifest
}

// Agent turns a container's manifest into registry entries.
type Agent interface {
	// Prepare records the container's configurations and token providers.
	Prepare(reg *Registry)
	// LaunchTarget returns the main class the container asks to launch, ""
	// when it has no opinion.
	LaunchTarget() string
}

// Factory builds an agent for a container.
type Factory func(src Source, logger *slog.Logger) (Agent, error)

// Factories is a table of named agent factories.
type Factories struct {
	mu    sync.RWMutex
	order []string
	table map[string]Factory
}

// NewFactories creates an empty table.
func NewFactories() *Factories {
	return &Factories{table: make(map[string]Factory)}
}

// DefaultFactories returns a table holding the default agent.
func DefaultFactories() *Factories {
	f := NewFactories()
	_ = f.Register(DefaultAgentName, NewDefaultAgent)

	return f
}

// Register adds a factory under name.
func (f *Factories) Register(name string, factory Factory) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.table[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
	}

	f.table[name] = factory
	f.order = append(f.order, name)

	return nil
}

// Lookup returns the factory registered under name.
func (f *Factories) Lookup(name string) (Factory, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	factory, ok := f.table[name]

	return factory, ok
}

// Names returns the registered names in registration order.
func (f *Factories) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return append([]string(nil), f.order...)
}

// DefaultAgent reads the standard mixin manifest attributes.
type DefaultAgent struct {
	src    Source
	logger *slog.Logger
}

// NewDefaultAgent is the Factory of DefaultAgent.
func NewDefaultAgent(src Source, logger *slog.Logger) (Agent, error) {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultAgent{src: src, logger: logger}, nil
}

// Prepare queues the comma separated MixinConfigs and MixinTokenProviders.
// A MixinCompatibilityLevel attribute is honoured with a deprecation
// warning.
func (a *DefaultAgent) Prepare(reg *Registry) {
	if level := a.src.Attributes.Get(AttrCompatibilityLevel); level != "" {
		a.logger.Warn(compatibilityDeprecated, "container", a.src.URI)
		reg.SetCompatibilityLevel(level)
	}

	for _, config := range strings.Split(a.src.Attributes.Get(AttrMixinConfigs), ",") {
		reg.AddConfiguration(config)
	}

	for _, provider := range strings.Split(a.src.Attributes.Get(AttrTokenProviders), ",") {
		reg.AddTokenProvider(provider)
	}
}

// LaunchTarget returns the Main-Class attribute.
func (a *DefaultAgent) LaunchTarget() string {
	return a.src.Attributes.Get(AttrMainClass)
}

func (a *DefaultAgent) String() string {
	return "DefaultAgent[" + a.src.URI + "]"
}
