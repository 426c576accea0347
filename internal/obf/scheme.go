package obf

// Scheme is a named deployment-time naming convention.
type Scheme struct {
	// Key identifies the scheme in tables and the refmap.
	Key string
	// Display is a human-readable name.
	Display string
	// InputOption is the option naming the mapping file read for this scheme.
	InputOption string
	// OutputOption is the option naming the SRG file written for this scheme.
	OutputOption string
}

// Built-in schemes.
var (
	Searge = Scheme{Key: "searge", Display: "SRG", InputOption: "reobfSrgFile", OutputOption: "outSrgFile"}
	Notch  = Scheme{Key: "notch", Display: "Notch", InputOption: "reobfNotchSrgFile", OutputOption: "outNotchSrgFile"}
)

// DefaultSchemes returns the built-in schemes in their canonical order.
func DefaultSchemes() []Scheme {
	return []Scheme{Searge, Notch}
}

// Data is the per-scheme result of a mapping lookup, in scheme order.
// An empty Data is the normal result for a member that is not renamed.
type Data[T any] struct {
	schemes []string
	values  map[string]T
}

// Add records v for scheme, replacing any previous value.
func (d *Data[T]) Add(scheme string, v T) {
	if d.values == nil {
		d.values = make(map[string]T)
	}

	if _, ok := d.values[scheme]; !ok {
		d.schemes = append(d.schemes, scheme)
	}

	d.values[scheme] = v
}

// Get returns the value for scheme.
func (d Data[T]) Get(scheme string) (T, bool) {
	v, ok := d.values[scheme]
	return v, ok
}

// IsEmpty reports whether no scheme produced a value.
func (d Data[T]) IsEmpty() bool {
	return len(d.schemes) == 0
}

// Schemes returns the schemes with a value, in the order they were added.
func (d Data[T]) Schemes() []string {
	return append([]string(nil), d.schemes...)
}
