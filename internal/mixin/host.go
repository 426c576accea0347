package mixin

import (
	"mixin-ap/internal/analyze"
	"mixin-ap/internal/diagnostic"
)

// Option keys read by the registry and its handlers.
const (
	OptionDisableTargetExport     = "disableTargetExport"
	OptionDisableOverwriteChecker = "disableOverwriteChecker"
	OptionOverwriteErrorLevel     = "overwriteErrorLevel"
)

// Host is the processing environment a registry runs in.
type Host interface {
	diagnostic.Messager
	analyze.TypeProvider
	analyze.JavadocProvider
	// Option returns a processor option, "" when unset.
	Option(key string) string
	// Token resolves a constraint token.
	Token(name string) (int, bool)
}

// Observer is notified of registry activity. All methods must be cheap.
type Observer interface {
	MixinRegistered()
	MemberRegistered(kind string)
	ValidatorVeto(pass string)
	TargetsExported(n int)
}

type nopObserver struct{}

func (nopObserver) MixinRegistered()        {}
func (nopObserver) MemberRegistered(string) {}
func (nopObserver) ValidatorVeto(string)    {}
func (nopObserver) TargetsExported(int)     {}

// typeNamer is implemented by hosts able to list every known type, used to
// suggest alternatives for targets that cannot be found.
type typeNamer interface {
	Names() []string
}
