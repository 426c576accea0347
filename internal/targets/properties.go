package targets

import "sync"

// PropertySessionID is the property the active session identifier is
// published under.
const PropertySessionID = "mixin.target.mapid"

// Properties is a process-wide string property table, passed explicitly to
// whoever needs to share it. The zero value is ready to use.
type Properties struct {
	mu     sync.Mutex
	values map[string]string
}

// NewProperties creates an empty property table.
func NewProperties() *Properties {
	return &Properties{}
}

// Get returns the value for key, "" when unset.
func (p *Properties) Get(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.values[key]
}

// Set stores value under key.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.values == nil {
		p.values = make(map[string]string)
	}

	p.values[key] = value
}
