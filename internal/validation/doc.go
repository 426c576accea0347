// Package validation runs structural checks on mixin declarations in two
// passes: EARLY, right after a mixin resolves its targets, and LATE, once
// every mixin of the pass is known.
//
// A validator that returns false stops the remaining validators for that
// declaration in that pass only. Validators report their own diagnostics.
package validation
