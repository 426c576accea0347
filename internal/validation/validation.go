package validation

import (
	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
)

// Pass is the point in processing a validator runs at.
type Pass int

const (
	PassEarly Pass = iota
	PassLate
)

// String returns the pass name.
func (p Pass) String() string {
	switch p {
	case PassEarly:
		return "early"
	case PassLate:
		return "late"
	default:
		return "unknown"
	}
}

// Context is the read-only view of a declaration handed to validators.
type Context struct {
	Mixin      *analyze.TypeElement
	Annotation *analyze.Annotation
	Targets    []*analyze.TypeHandle
}

// Validator checks one aspect of a declaration. Returning false stops the
// validators after it for the same declaration and pass.
type Validator interface {
	Validate(pass Pass, ctx Context) bool
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(pass Pass, ctx Context) bool

// Validate calls f(pass, ctx).
func (f ValidatorFunc) Validate(pass Pass, ctx Context) bool {
	return f(pass, ctx)
}

// Run applies validators in order and reports whether all of them passed.
func Run(pass Pass, validators []Validator, ctx Context) bool {
	for _, v := range validators {
		if !v.Validate(pass, ctx) {
			return false
		}
	}

	return true
}

// Services are the lookups validators are constructed with.
type Services interface {
	diagnostic.Messager
	analyze.TypeProvider
	// Option returns a processor option, "" when unset.
	Option(key string) string
	// MixinsTargeting returns the mixins registered against target.
	MixinsTargeting(target string) []string
}

// Defaults returns the built-in validators in their canonical order.
func Defaults(svc Services) []Validator {
	return []Validator{
		NewParentValidator(svc),
		NewTargetValidator(svc),
	}
}
