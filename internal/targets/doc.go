// Package targets tracks which mixins target which classes for the lifetime
// of one build invocation (a session).
//
// Associations have set semantics and can be imported from, and exported to,
// a Store so that separately invoked build steps accumulate one picture.
package targets
