package launch

import (
	"strings"
	"sync"

	"mixin-ap/internal/common"
)

// Registry collects the pending configuration names, error handlers and
// token providers declared by launch agents. All sets keep insertion order
// and drop duplicates. The zero value is ready to use.
type Registry struct {
	mu             sync.Mutex
	configs        common.OrderedSet[string]
	errorHandlers  common.OrderedSet[string]
	tokenProviders common.OrderedSet[string]
	compatibility  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// AddConfiguration queues a configuration resource name. Blank names are
// ignored.
func (r *Registry) AddConfiguration(name string) {
	r.add(&r.configs, name)
}

// PendingConfigurations returns the queued configuration names.
func (r *Registry) PendingConfigurations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.configs.Items()
}

// DrainConfigurations returns the queued configuration names and empties
// the queue.
func (r *Registry) DrainConfigurations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.configs.Items()
	r.configs.Clear()

	return out
}

// RegisterErrorHandler records an error handler identifier. Blank
// identifiers are ignored.
func (r *Registry) RegisterErrorHandler(id string) {
	r.add(&r.errorHandlers, id)
}

// ErrorHandlers returns the registered error handler identifiers.
func (r *Registry) ErrorHandlers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.errorHandlers.Items()
}

// AddTokenProvider records a token provider name. Blank names are ignored.
func (r *Registry) AddTokenProvider(name string) {
	r.add(&r.tokenProviders, name)
}

// TokenProviders returns the registered token provider names.
func (r *Registry) TokenProviders() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tokenProviders.Items()
}

// SetCompatibilityLevel records the requested compatibility level.
func (r *Registry) SetCompatibilityLevel(level string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.compatibility = strings.TrimSpace(level)
}

// CompatibilityLevel returns the requested compatibility level, "" if none.
func (r *Registry) CompatibilityLevel() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.compatibility
}

func (r *Registry) add(set *common.OrderedSet[string], value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	set.Add(value)
}
