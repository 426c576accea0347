package validation

import (
	"mixin-ap/internal/diagnostic"
)

// ParentValidator rejects nested mixin classes that are not static.
type ParentValidator struct {
	messager diagnostic.Messager
}

// NewParentValidator creates a ParentValidator reporting to messager.
func NewParentValidator(messager diagnostic.Messager) *ParentValidator {
	return &ParentValidator{messager: messager}
}

// Validate runs in the EARLY pass only.
func (v *ParentValidator) Validate(pass Pass, ctx Context) bool {
	if pass != PassEarly || ctx.Mixin == nil {
		return true
	}

	if !ctx.Mixin.IsTopLevel() && !ctx.Mixin.Static {
		v.messager.PrintMessage(diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			Code:     diagnostic.CodeInnerMixinNotStatic,
			Message:  "Inner class mixin must be declared static",
			Location: ctx.Mixin.Location("Mixin"),
		})

		return false
	}

	return true
}
