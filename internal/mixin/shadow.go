package mixin

import (
	"fmt"
	"strings"

	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/symbol"
)

// DefaultShadowPrefix is stripped from shadow names before lookup.
const DefaultShadowPrefix = "shadow$"

type shadowHandler struct {
	handlerBase
}

func (h *shadowHandler) Register(req Request) Result {
	d, m, ann := req.Mixin, req.Member, req.Annotation
	loc := m.Location(ann.SimpleName())

	prefix := ann.String("prefix", DefaultShadowPrefix)
	name, prefixed := strings.CutPrefix(m.Name, prefix)

	if target := d.PrimaryTarget(); target != nil && !target.IsImaginary() {
		found := target.FindMethod(name, m.Desc) != nil
		if !m.IsMethod() {
			found = target.FindField(name, m.Desc) != nil
		}

		if !found {
			h.print(diagnostic.SeverityWarning, diagnostic.CodeTargetMemberMissing,
				fmt.Sprintf("Cannot find target for @Shadow %s in %s", m.Kind, target.BinaryName()), loc)
		}
	}

	if !req.Remap {
		return Result{}
	}

	ref := symbol.NewMemberRef(d.PrimaryTargetRef(), name, m.Desc)

	data := h.obf.ObfField(ref)
	if m.IsMethod() {
		data = h.obf.ObfMethod(ref)
	}

	if data.IsEmpty() {
		h.print(diagnostic.SeverityWarning, diagnostic.CodeNoObfMapping,
			fmt.Sprintf("Unable to locate obfuscation mapping for @Shadow %s", memberLabel(m)), loc)

		return Result{}
	}

	rename := keepName
	if prefixed {
		rename = func(obfName string) string { return prefix + obfName }
	}

	h.addMapping(d, !m.IsMethod(), symbol.NewMemberRef("", m.Name, m.Desc), data, rename)

	return Result{}
}
