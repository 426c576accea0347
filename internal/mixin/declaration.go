package mixin

import (
	"fmt"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/common"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/match"
	"mixin-ap/internal/obf"
	"mixin-ap/internal/validation"
)

// AnnotationMixin is the class-level annotation marking a mixin.
const AnnotationMixin = "Mixin"

// Declaration is one registered mixin class.
type Declaration struct {
	host Host
	obf  *obf.Manager

	annotation *analyze.Annotation
	mixin      *analyze.TypeElement
	handle     *analyze.TypeHandle
	classRef   string

	targets []*analyze.TypeHandle
	primary *analyze.TypeHandle
	remap   bool
}

func newDeclaration(host Host, obfm *obf.Manager, el *analyze.TypeElement) *Declaration {
	d := &Declaration{
		host:       host,
		obf:        obfm,
		annotation: el.Annotation(AnnotationMixin),
		mixin:      el,
		handle:     analyze.NewTypeHandle(el),
		classRef:   el.InternalName(),
	}

	d.primary = d.initTargets()
	d.remap = d.annotation.Bool("remap", true) && len(d.targets) > 0 && d.primary != nil

	return d
}

// initTargets resolves public targets (class literals in "value") and then
// private targets (names in "targets"), returning the first one found.
func (d *Declaration) initTargets() *analyze.TypeHandle {
	var primary *analyze.TypeHandle

	if bad := d.annotation.Mismatched("value", analyze.ValueType); len(bad) > 0 {
		d.printMessage(diagnostic.SeverityWarning, diagnostic.CodePublicTargetsInvalid,
			fmt.Sprintf("Error processing public targets: %d value(s) are not class literals", len(bad)), nil)
	}

	for _, name := range d.annotation.Types("value") {
		target := d.host.TypeHandle(name)
		if target == nil {
			target = analyze.NewImaginaryTypeHandle(common.PackageOf(name), name)
		}

		if analyze.ContainsHandle(d.targets, target) {
			continue
		}

		d.targets = append(d.targets, target)
		if primary == nil {
			primary = target
		}
	}

	for _, name := range d.annotation.Strings("targets") {
		target := d.host.TypeHandle(name)
		if analyze.ContainsHandle(d.targets, target) {
			continue
		}

		if target == nil {
			d.printMessage(diagnostic.SeverityError, diagnostic.CodeTargetNotFound,
				fmt.Sprintf("Mixin target %s could not be found", name), d.suggest(name))

			return nil
		}

		if target.IsPublic() {
			d.printMessage(diagnostic.SeverityError, diagnostic.CodeTargetPublicByName,
				fmt.Sprintf("Mixin target %s is public and must be specified in value", name), nil)

			return nil
		}

		d.addSoftTarget(target, name)
		if primary == nil {
			primary = target
		}
	}

	if primary == nil {
		d.printMessage(diagnostic.SeverityError, diagnostic.CodeNoTargets, "Mixin has no targets", nil)
	}

	return primary
}

// addSoftTarget adds a target referenced by name, recording its mapped class
// name in the refmap so the reference survives obfuscation.
func (d *Declaration) addSoftTarget(target *analyze.TypeHandle, reference string) {
	if data := d.obf.ObfClass(target.Name()); !data.IsEmpty() {
		d.obf.AddClassReference(d.classRef, reference, data)
	}

	d.targets = append(d.targets, target)
}

func (d *Declaration) suggest(name string) []string {
	namer, ok := d.host.(typeNamer)
	if !ok {
		return nil
	}

	return match.Suggest(name, namer.Names(), match.DefaultSuggestions)
}

func (d *Declaration) printMessage(sev diagnostic.Severity, code, msg string, suggestions []string) {
	d.host.PrintMessage(diagnostic.Diagnostic{
		Severity:    sev,
		Code:        code,
		Message:     msg,
		Location:    d.mixin.Location(AnnotationMixin),
		Suggestions: suggestions,
	})
}

// Annotation returns the @Mixin annotation, nil when the class has none.
func (d *Declaration) Annotation() *analyze.Annotation {
	return d.annotation
}

// Mixin returns the mixin class.
func (d *Declaration) Mixin() *analyze.TypeElement {
	return d.mixin
}

// Handle returns the handle of the mixin class.
func (d *Declaration) Handle() *analyze.TypeHandle {
	return d.handle
}

// ClassRef returns the internal name of the mixin class.
func (d *Declaration) ClassRef() string {
	return d.classRef
}

// IsInterface reports whether the mixin is an interface.
func (d *Declaration) IsInterface() bool {
	return d.mixin.IsInterface()
}

// Targets returns the resolved targets in resolution order.
func (d *Declaration) Targets() []*analyze.TypeHandle {
	return append([]*analyze.TypeHandle(nil), d.targets...)
}

// TargetNames returns the internal names of the resolved targets.
func (d *Declaration) TargetNames() []string {
	names := make([]string, 0, len(d.targets))
	for _, t := range d.targets {
		names = append(names, t.Name())
	}

	return names
}

// PrimaryTarget returns the first resolved target, nil when resolution
// failed.
func (d *Declaration) PrimaryTarget() *analyze.TypeHandle {
	return d.primary
}

// PrimaryTargetRef returns the internal name of the primary target, "" when
// there is none.
func (d *Declaration) PrimaryTargetRef() string {
	if d.primary == nil {
		return ""
	}

	return d.primary.Name()
}

// Remap reports whether members of this mixin are remapped. It is false
// when the annotation disables remapping, when there are no targets, and
// when target resolution aborted, even if some public targets had already
// resolved: without a primary target there is nothing to look members up in.
func (d *Declaration) Remap() bool {
	return d.remap
}

// FieldMappings returns the field table entries recorded for this mixin.
func (d *Declaration) FieldMappings(scheme string) []string {
	return d.obf.FieldMappings(scheme, d.classRef)
}

// MethodMappings returns the method table entries recorded for this mixin.
func (d *Declaration) MethodMappings(scheme string) []string {
	return d.obf.MethodMappings(scheme, d.classRef)
}

// ValidationContext returns the view handed to validators.
func (d *Declaration) ValidationContext() validation.Context {
	return validation.Context{
		Mixin:      d.mixin,
		Annotation: d.annotation,
		Targets:    d.Targets(),
	}
}

// String returns the simple name of the mixin.
func (d *Declaration) String() string {
	return d.mixin.SimpleName()
}
