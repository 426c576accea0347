package targets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"mixin-ap/internal/common"
)

// ErrImport classifies failures to read imported associations.
var ErrImport = errors.New("unable to read target imports")

// Map is the target association table of one session.
type Map struct {
	mu      sync.Mutex
	id      string
	store   Store
	targets map[string]*common.OrderedSet[string]
}

// Create opens the session named hint. With an empty hint the identifier
// already published in props is reused, or a new one is generated. The
// identifier is published to props under PropertySessionID.
//
// When the session existed before, its persisted associations are loaded
// from store. A nil store keeps everything in memory.
func Create(hint string, store Store, props *Properties) (*Map, error) {
	m := &Map{
		store:   store,
		targets: make(map[string]*common.OrderedSet[string]),
	}

	if props == nil {
		props = NewProperties()
	}

	reused := hint != ""
	if hint == "" {
		hint = props.Get(PropertySessionID)
		reused = hint != ""
	}

	if hint == "" {
		hint = uuid.NewString()
	}

	m.id = hint
	props.Set(PropertySessionID, hint)

	if reused && store != nil {
		persisted, err := store.Load(hint)
		if err != nil {
			return m, fmt.Errorf("load session %s: %w", hint, err)
		}

		m.merge(persisted)
	}

	return m, nil
}

// ID returns the session identifier.
func (m *Map) ID() string {
	return m.id
}

// ReadImports merges externally supplied associations. Failures wrap
// ErrImport; the map is left unchanged.
func (m *Map) ReadImports(r io.Reader) error {
	a, err := Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImport, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.merge(a)

	return nil
}

// ReadImportsFile merges the associations stored in path.
func (m *Map) ReadImportsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImport, err)
	}
	defer f.Close()

	return m.ReadImports(f)
}

// RegisterTargets records mixin as targeting each of targets. Repeated
// registration is a no-op.
func (m *Map) RegisterTargets(mixin string, targets []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, target := range targets {
		m.add(target, mixin)
	}
}

// MixinsTargeting returns the mixins registered against target, in
// registration order. Unknown targets yield an empty, non-nil slice.
func (m *Map) MixinsTargeting(target string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.targets[common.InternalName(target)].Items()
}

// Snapshot returns a copy of all associations.
func (m *Map) Snapshot() Associations {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(Associations, len(m.targets))
	for target, set := range m.targets {
		out[target] = set.Items()
	}

	return out
}

// Write persists the associations to the store. With merge the persisted
// copy is loaded first and the result is the union of both.
func (m *Map) Write(merge bool) error {
	if m.store == nil {
		return nil
	}

	current := m.Snapshot()
	if !merge {
		return m.store.Save(m.id, current)
	}

	persisted, err := m.store.Load(m.id)
	if err != nil {
		return err
	}

	union := &Map{targets: make(map[string]*common.OrderedSet[string])}
	union.merge(persisted)
	union.merge(current)

	return m.store.Save(m.id, union.Snapshot())
}

// Clear drops all associations. The identifier is kept.
func (m *Map) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.targets = make(map[string]*common.OrderedSet[string])
}

func (m *Map) merge(a Associations) {
	for _, target := range a.Targets() {
		for _, mixin := range a[target] {
			m.add(target, mixin)
		}
	}
}

func (m *Map) add(target, mixin string) {
	target = common.InternalName(target)

	set, ok := m.targets[target]
	if !ok {
		set = common.NewOrderedSet[string]()
		m.targets[target] = set
	}

	set.Add(common.InternalName(mixin))
}
