package processor

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// InvocationKey identifies one compiler invocation.
type InvocationKey string

// Registry holds at most one Environment per invocation.
type Registry struct {
	mu    sync.Mutex
	envs  map[InvocationKey]*Environment
	group singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{envs: make(map[InvocationKey]*Environment)}
}

// Environment returns the environment for key, creating it from cfg on the
// first request. Concurrent first requests share one creation; cfg of the
// requests that lose the race is ignored.
func (r *Registry) Environment(ctx context.Context, key InvocationKey, cfg Config) (*Environment, error) {
	if env := r.lookup(key); env != nil {
		return env, nil
	}

	v, err, _ := r.group.Do(string(key), func() (any, error) {
		if env := r.lookup(key); env != nil {
			return env, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		env, err := NewEnvironment(cfg)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.envs[key] = env
		r.mu.Unlock()

		return env, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Environment), nil
}

// Dispose forgets the environment for key and reports whether there was one.
func (r *Registry) Dispose(key InvocationKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.envs[key]
	delete(r.envs, key)

	return ok
}

// Len returns the number of live environments.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.envs)
}

func (r *Registry) lookup(key InvocationKey) *Environment {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.envs[key]
}
