package mixin

import (
	"fmt"

	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/obf"
	"mixin-ap/internal/symbol"
)

// MemberKind selects the handler a member is registered with.
type MemberKind int

const (
	KindOverwrite MemberKind = iota
	KindShadow
	KindInjector
)

// String returns the annotation name associated with the kind.
func (k MemberKind) String() string {
	switch k {
	case KindOverwrite:
		return "Overwrite"
	case KindShadow:
		return "Shadow"
	case KindInjector:
		return "Injector"
	default:
		return "unknown"
	}
}

// Request is one member registration.
type Request struct {
	Mixin      *Declaration
	Member     *analyze.Member
	Annotation *analyze.Annotation
	// Remap is the mixin's remap flag combined with the member's own.
	Remap bool
}

// Result is the outcome of a registration.
type Result struct {
	// Err is an error the handler deferred to the caller.
	Err *diagnostic.Message
	// RemappedPoints counts injection points that were remapped.
	RemappedPoints int
}

// Handler registers members of one kind.
type Handler interface {
	Register(req Request) Result
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(req Request) Result

// Register calls f(req).
func (f HandlerFunc) Register(req Request) Result {
	return f(req)
}

// DefaultHandlers returns the built-in dispatch table.
func DefaultHandlers(host Host, obfm *obf.Manager) map[MemberKind]Handler {
	base := handlerBase{host: host, obf: obfm}

	return map[MemberKind]Handler{
		KindOverwrite: &overwriteHandler{base},
		KindShadow:    &shadowHandler{base},
		KindInjector:  &injectorHandler{base},
	}
}

type handlerBase struct {
	host Host
	obf  *obf.Manager
}

func (h handlerBase) print(sev diagnostic.Severity, code, msg string, loc diagnostic.Location) {
	h.host.PrintMessage(diagnostic.Diagnostic{Severity: sev, Code: code, Message: msg, Location: loc})
}

// addMapping records from -> to for every scheme in data, into the field
// or method table depending on the member kind.
func (h handlerBase) addMapping(d *Declaration, isField bool, from symbol.MemberRef, data obf.Data[symbol.MemberRef], rename func(string) string) {
	for _, scheme := range data.Schemes() {
		mapped, _ := data.Get(scheme)
		to := symbol.NewMemberRef("", rename(mapped.SimpleName()), mapped.Desc())

		if isField {
			h.obf.AddFieldMapping(scheme, d.ClassRef(), from, to)
		} else {
			h.obf.AddMethodMapping(scheme, d.ClassRef(), from, to)
		}
	}
}

func memberLabel(m *analyze.Member) string {
	return fmt.Sprintf("%s %s", m.Kind, m.Name)
}
