package obf

import (
	"encoding/json"
	"io"
)

// RefMap maps the references written in mixin annotations to their names in
// each scheme, per mixin class.
type RefMap struct {
	data map[string]map[string]map[string]string // scheme -> mixin -> reference -> mapped
}

// NewRefMap creates an empty reference map.
func NewRefMap() *RefMap {
	return &RefMap{data: make(map[string]map[string]map[string]string)}
}

// Add records that reference, used in mixin, is mapped in scheme.
func (r *RefMap) Add(scheme, mixin, reference, mapped string) {
	mixins, ok := r.data[scheme]
	if !ok {
		mixins = make(map[string]map[string]string)
		r.data[scheme] = mixins
	}

	refs, ok := mixins[mixin]
	if !ok {
		refs = make(map[string]string)
		mixins[mixin] = refs
	}

	refs[reference] = mapped
}

// Get returns the mapped reference.
func (r *RefMap) Get(scheme, mixin, reference string) (string, bool) {
	v, ok := r.data[scheme][mixin][reference]
	return v, ok
}

// IsEmpty reports whether nothing was recorded.
func (r *RefMap) IsEmpty() bool {
	return len(r.data) == 0
}

type refMapFile struct {
	Mappings map[string]map[string]string            `json:"mappings"`
	Data     map[string]map[string]map[string]string `json:"data"`
}

// Write encodes the refmap as JSON. "mappings" holds defaultScheme's table,
// "data" holds every scheme. Keys are sorted by the encoder, so output is
// stable.
func (r *RefMap) Write(w io.Writer, defaultScheme string) error {
	file := refMapFile{
		Mappings: r.data[defaultScheme],
		Data:     r.data,
	}

	if file.Mappings == nil {
		file.Mappings = map[string]map[string]string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(file)
}
