// Package symbol provides the immutable symbolic references the processor
// passes between naming schemes.
//
// A MemberRef identifies a field or method by its full internal name
// ("owner/name") and descriptor. The owner is always derived from the name.
// A Selector is the looser form written in injector annotations, where the
// owner and descriptor may be omitted.
package symbol
