// Package mixin models the mixin declarations of a processing pass.
//
// A Declaration is created once per mixin class: it resolves the class's
// targets, decides whether its members are remapped, and hands member
// registration (overwrites, shadows, injectors) to the handler registered
// for the member kind. Handlers record remappings in the obfuscation
// tables owned by obf.Manager.
//
// Nothing here returns an error to the caller. Problems are reported to the
// host's diagnostic sink and registration carries on.
package mixin
