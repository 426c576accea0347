package validation

import (
	"fmt"
	"strings"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/common"
	"mixin-ap/internal/diagnostic"
)

// OptionDisableTargetValidator turns the TargetValidator off when "true".
const OptionDisableTargetValidator = "disableTargetValidator"

const objectClass = "java.lang.Object"

// TargetValidator checks that targets fit the mixin's shape: interface
// mixins may only target interfaces, and a class mixin's superclass must be
// in each target's hierarchy, or be a mixin of a class in it.
type TargetValidator struct {
	svc Services
}

// NewTargetValidator creates a TargetValidator using svc for lookups.
func NewTargetValidator(svc Services) *TargetValidator {
	return &TargetValidator{svc: svc}
}

// Validate runs in the LATE pass only.
func (v *TargetValidator) Validate(pass Pass, ctx Context) bool {
	if pass != PassLate || ctx.Mixin == nil || strings.EqualFold(v.svc.Option(OptionDisableTargetValidator), "true") {
		return true
	}

	if ctx.Mixin.IsInterface() {
		v.validateInterfaceMixin(ctx)
	} else {
		v.validateClassMixin(ctx)
	}

	return true
}

func (v *TargetValidator) validateInterfaceMixin(ctx Context) {
	for _, target := range ctx.Targets {
		if target.IsImaginary() || target.IsInterface() {
			continue
		}

		v.error(ctx, diagnostic.CodeInterfaceTargetClass,
			fmt.Sprintf("Targets for interface mixin %s must be interfaces but %s is a class",
				ctx.Mixin.SimpleName(), target.BinaryName()))
	}
}

func (v *TargetValidator) validateClassMixin(ctx Context) {
	super := ctx.Mixin.Superclass
	if super == "" || super == objectClass {
		return
	}

	for _, target := range ctx.Targets {
		if target.IsImaginary() {
			continue
		}

		if !v.inHierarchy(target, super) {
			v.error(ctx, diagnostic.CodeSuperclassHierarchy,
				fmt.Sprintf("Superclass %s of %s was not found in the hierarchy of target class %s",
					super, ctx.Mixin.SimpleName(), target.BinaryName()))
		}
	}
}

// inHierarchy walks target's superclass chain looking for super, either
// directly or as a mixin applied to one of the classes in it.
func (v *TargetValidator) inHierarchy(target *analyze.TypeHandle, super string) bool {
	superRef := common.InternalName(super)
	seen := make(map[string]bool)

	for h := target; h != nil && !seen[h.Name()]; {
		seen[h.Name()] = true

		if h.Name() == superRef {
			return true
		}

		for _, mixin := range v.svc.MixinsTargeting(h.Name()) {
			if mixin == superRef {
				return true
			}
		}

		// The hierarchy above an invisible class cannot be checked.
		if h.IsImaginary() {
			return true
		}

		next := h.Superclass()
		if next == "" {
			return false
		}

		if h = v.svc.TypeHandle(next); h == nil {
			return true
		}
	}

	return false
}

func (v *TargetValidator) error(ctx Context, code, msg string) {
	v.svc.PrintMessage(diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Code:     code,
		Message:  msg,
		Location: ctx.Mixin.Location("Mixin"),
	})
}
