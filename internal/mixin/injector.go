package mixin

import (
	"fmt"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/symbol"
)

// Injector annotations registered with KindInjector.
var InjectorAnnotations = []string{"Inject", "Redirect", "ModifyArg", "ModifyVariable", "ModifyConstant"}

type injectorHandler struct {
	handlerBase
}

// Register resolves the injector's target methods against every target and,
// when remapping, its injection points. A missing mapping for a target
// method is returned as a deferred error rather than reported.
func (h *injectorHandler) Register(req Request) Result {
	d, m, ann := req.Mixin, req.Member, req.Annotation
	loc := m.Location(ann.SimpleName())

	checkConstraints(h.host, m, ann)

	var deferred *diagnostic.Message

	for _, raw := range ann.Strings("method") {
		sel, err := symbol.ParseSelector(raw)
		if err != nil {
			h.print(diagnostic.SeverityError, diagnostic.CodeInjectionPointInvalid,
				fmt.Sprintf("Invalid @%s method selector: %v", ann.SimpleName(), err), loc)

			continue
		}

		for _, target := range d.Targets() {
			targetMethod := target.FindMethod(sel.Name, sel.Desc)
			if targetMethod == nil && !target.IsImaginary() {
				h.print(diagnostic.SeverityWarning, diagnostic.CodeTargetMemberMissing,
					fmt.Sprintf("Cannot find target method for @%s in %s", ann.SimpleName(), target.BinaryName()), loc)

				continue
			}

			if !req.Remap {
				continue
			}

			desc := sel.Desc
			if targetMethod != nil {
				desc = targetMethod.Desc
			}

			data := h.obf.ObfMethod(symbol.NewMemberRef(target.Name(), sel.Name, desc))
			if data.IsEmpty() {
				deferred = diagnostic.NewMessage(diagnostic.SeverityError, diagnostic.CodeNoObfMapping,
					fmt.Sprintf("Unable to locate obfuscation mapping for @%s target %s", ann.SimpleName(), sel.Name), loc)

				continue
			}

			h.obf.AddMethodReference(d.ClassRef(), raw, data)
		}
	}

	points := 0
	if req.Remap {
		if bad := ann.Mismatched("at", analyze.ValueAnnotation); len(bad) > 0 {
			h.print(diagnostic.SeverityWarning, diagnostic.CodeInjectionPointInvalid,
				fmt.Sprintf("No annotation on @%s injection point", ann.SimpleName()), loc)
		}

		for _, at := range ann.Annotations("at") {
			points += h.registerInjectionPoint(d, m, at)
		}
	}

	return Result{Err: deferred, RemappedPoints: points}
}

// registerInjectionPoint remaps the qualified target of an @At and reports
// whether it was remapped.
func (h *injectorHandler) registerInjectionPoint(d *Declaration, m *analyze.Member, at *analyze.Annotation) int {
	if !at.Bool("remap", true) {
		return 0
	}

	raw := at.String("target", "")
	if raw == "" {
		return 0
	}

	loc := m.Location(at.SimpleName())

	sel, err := symbol.ParseSelector(raw)
	if err != nil {
		h.print(diagnostic.SeverityWarning, diagnostic.CodeInjectionPointInvalid,
			fmt.Sprintf("Invalid @At target: %v", err), loc)

		return 0
	}

	if sel.Owner == "" {
		return 0
	}

	ref := sel.Ref("")

	data := h.obf.ObfMethod(ref)
	if sel.IsField() {
		data = h.obf.ObfField(ref)
	}

	if data.IsEmpty() {
		if !h.obf.ObfClass(sel.Owner).IsEmpty() {
			h.print(diagnostic.SeverityWarning, diagnostic.CodeNoObfMapping,
				fmt.Sprintf("Unable to locate obfuscation mapping for @At target %s", raw), loc)
		}

		return 0
	}

	if sel.IsField() {
		h.obf.AddFieldReference(d.ClassRef(), raw, data)
	} else {
		h.obf.AddMethodReference(d.ClassRef(), raw, data)
	}

	return 1
}
