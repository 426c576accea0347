package obf

import (
	"bytes"

	"mixin-ap/internal/common"
)

// Table is an append-only record of remapping entries keyed by scheme and
// compiled unit. Each (scheme, unit) set keeps insertion order and drops
// duplicate entries.
type Table struct {
	schemes *common.OrderedSet[string]
	units   map[string]*common.OrderedSet[string]
	entries map[tableKey]*common.OrderedSet[string]
}

type tableKey struct {
	scheme string
	unit   string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		schemes: common.NewOrderedSet[string](),
		units:   make(map[string]*common.OrderedSet[string]),
		entries: make(map[tableKey]*common.OrderedSet[string]),
	}
}

// Add appends entry for (scheme, unit) and reports whether it was new.
func (t *Table) Add(scheme, unit, entry string) bool {
	t.schemes.Add(scheme)

	units, ok := t.units[scheme]
	if !ok {
		units = common.NewOrderedSet[string]()
		t.units[scheme] = units
	}

	units.Add(unit)

	key := tableKey{scheme: scheme, unit: unit}

	set, ok := t.entries[key]
	if !ok {
		set = common.NewOrderedSet[string]()
		t.entries[key] = set
	}

	return set.Add(entry)
}

// Get returns the entries for (scheme, unit) in insertion order. Unknown
// schemes and units yield an empty, non-nil slice.
func (t *Table) Get(scheme, unit string) []string {
	return t.entries[tableKey{scheme: scheme, unit: unit}].Items()
}

// Schemes returns the schemes with entries, in insertion order.
func (t *Table) Schemes() []string {
	return t.schemes.Items()
}

// Units returns the units with entries under scheme, in insertion order.
func (t *Table) Units(scheme string) []string {
	return t.units[scheme].Items()
}

// Len returns the total number of entries.
func (t *Table) Len() int {
	n := 0
	for _, set := range t.entries {
		n += set.Len()
	}

	return n
}

// Export serializes each scheme as one line per entry, units and entries in
// insertion order, every line prefixed by prefix.
func (t *Table) Export(prefix string) map[string][]byte {
	out := make(map[string][]byte, t.schemes.Len())

	for _, scheme := range t.schemes.Items() {
		var buf bytes.Buffer
		for _, unit := range t.Units(scheme) {
			for _, entry := range t.Get(scheme, unit) {
				buf.WriteString(prefix)
				buf.WriteString(entry)
				buf.WriteByte('\n')
			}
		}

		out[scheme] = buf.Bytes()
	}

	return out
}

// Reset drops every entry.
func (t *Table) Reset() {
	t.schemes.Clear()
	t.units = make(map[string]*common.OrderedSet[string])
	t.entries = make(map[tableKey]*common.OrderedSet[string])
}
