// Package match ranks known class names against a name that could not be
// resolved, so a diagnostic can suggest the closest ones.
package match
