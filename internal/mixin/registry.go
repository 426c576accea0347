package mixin

import (
	"fmt"
	"strings"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/common"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/obf"
	"mixin-ap/internal/targets"
	"mixin-ap/internal/validation"
)

// Registry owns the mixin declarations of one processing environment.
type Registry struct {
	host       Host
	obf        *obf.Manager
	targets    *targets.Map
	validators []validation.Validator
	handlers   map[MemberKind]Handler
	observer   Observer

	mixins map[string]*Declaration
	order  []string
	pass   []*Declaration
}

// Option configures a Registry.
type Option func(*Registry)

// WithValidators sets the validators run on every declaration.
func WithValidators(validators ...validation.Validator) Option {
	return func(r *Registry) {
		r.validators = validators
	}
}

// WithHandler replaces the handler for kind.
func WithHandler(kind MemberKind, h Handler) Option {
	return func(r *Registry) {
		r.handlers[kind] = h
	}
}

// WithObserver installs an activity observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(host Host, obfm *obf.Manager, tmap *targets.Map, opts ...Option) *Registry {
	r := &Registry{
		host:     host,
		obf:      obfm,
		targets:  tmap,
		handlers: DefaultHandlers(host, obfm),
		observer: nopObserver{},
		mixins:   make(map[string]*Declaration),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RegisterMixin registers el as a mixin and returns its declaration. A class
// that is already registered yields the existing declaration unchanged.
func (r *Registry) RegisterMixin(el *analyze.TypeElement) *Declaration {
	if d, ok := r.mixins[el.Name]; ok {
		return d
	}

	d := newDeclaration(r.host, r.obf, el)
	r.targets.RegisterTargets(d.ClassRef(), d.TargetNames())
	r.runValidators(validation.PassEarly, d)

	r.mixins[el.Name] = d
	r.order = append(r.order, el.Name)
	r.pass = append(r.pass, d)
	r.observer.MixinRegistered()

	return d
}

// Get returns the declaration for a binary or internal class name.
func (r *Registry) Get(name string) *Declaration {
	return r.mixins[common.BinaryName(name)]
}

// Declarations returns every declaration in registration order.
func (r *Registry) Declarations() []*Declaration {
	out := make([]*Declaration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.mixins[name])
	}

	return out
}

// PassDeclarations returns the declarations registered since the current
// pass started.
func (r *Registry) PassDeclarations() []*Declaration {
	return append([]*Declaration(nil), r.pass...)
}

// MixinsTargeting returns the internal names of mixins targeting target.
func (r *Registry) MixinsTargeting(target string) []string {
	return r.targets.MixinsTargeting(target)
}

// RegisterOverwrite registers an @Overwrite method.
func (r *Registry) RegisterOverwrite(method *analyze.Member, ann *analyze.Annotation) {
	r.registerMember(KindOverwrite, method, ann)
}

// RegisterShadow registers a @Shadow field or method.
func (r *Registry) RegisterShadow(member *analyze.Member, ann *analyze.Annotation) {
	r.registerMember(KindShadow, member, ann)
}

// RegisterInjector registers an injector method and its injection points.
//
// A deferred error from the injector is only reported when none of its
// injection points were remapped: one remapped point is taken as evidence
// that the injector is usable. Consumers relying on every missing mapping
// being reported should be aware of this.
func (r *Registry) RegisterInjector(method *analyze.Member, ann *analyze.Annotation) Result {
	res := r.registerMember(KindInjector, method, ann)
	if res.RemappedPoints == 0 && res.Err != nil {
		res.Err.SendTo(r.host)
	}

	return res
}

func (r *Registry) registerMember(kind MemberKind, member *analyze.Member, ann *analyze.Annotation) Result {
	d := r.Get(member.Owner)
	if d == nil {
		r.host.PrintMessage(diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			Code:     diagnostic.CodeNonMixinMember,
			Message:  fmt.Sprintf("Found @%s annotation on a non-mixin %s", ann.SimpleName(), member.Kind),
			Location: member.Location(ann.SimpleName()),
		})

		return Result{}
	}

	h, ok := r.handlers[kind]
	if !ok {
		return Result{}
	}

	res := h.Register(Request{
		Mixin:      d,
		Member:     member,
		Annotation: ann,
		Remap:      d.Remap() && ann.Bool("remap", true),
	})
	r.observer.MemberRegistered(kind.String())

	return res
}

// OnPassStarted forgets the declarations of the previous pass.
func (r *Registry) OnPassStarted() {
	r.pass = nil
}

// OnPassCompleted exports the target associations, unless disabled, then
// runs the LATE validators over the declarations of the pass in
// registration order.
func (r *Registry) OnPassCompleted() {
	if !strings.EqualFold(r.host.Option(OptionDisableTargetExport), "true") {
		if err := r.targets.Write(true); err != nil {
			r.host.PrintMessage(diagnostic.Diagnostic{
				Severity: diagnostic.SeverityWarning,
				Code:     diagnostic.CodeExportFailed,
				Message:  fmt.Sprintf("Unable to export target associations: %v", err),
			})
		} else {
			r.observer.TargetsExported(len(r.targets.Snapshot()))
		}
	}

	for _, d := range r.pass {
		r.runValidators(validation.PassLate, d)
	}
}

// Clear drops every declaration. Recorded mappings and target associations
// are kept.
func (r *Registry) Clear() {
	r.mixins = make(map[string]*Declaration)
	r.order = nil
	r.pass = nil
}

func (r *Registry) runValidators(pass validation.Pass, d *Declaration) {
	if !validation.Run(pass, r.validators, d.ValidationContext()) {
		r.observer.ValidatorVeto(pass.String())
	}
}
