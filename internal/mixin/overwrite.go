package mixin

import (
	"fmt"
	"strings"

	"mixin-ap/internal/diagnostic"
	"mixin-ap/internal/symbol"
)

type overwriteHandler struct {
	handlerBase
}

func (h *overwriteHandler) Register(req Request) Result {
	d, m, ann := req.Mixin, req.Member, req.Annotation
	loc := m.Location(ann.SimpleName())

	h.checkJavadoc(req)
	checkConstraints(h.host, m, ann)

	for _, target := range d.Targets() {
		if !target.IsImaginary() && target.FindMethod(m.Name, m.Desc) == nil {
			h.print(diagnostic.SeverityWarning, diagnostic.CodeTargetMemberMissing,
				fmt.Sprintf("Cannot find target for @Overwrite method in %s", target.BinaryName()), loc)
		}
	}

	if !req.Remap {
		return Result{}
	}

	if len(d.Targets()) > 1 {
		h.print(diagnostic.SeverityError, diagnostic.CodeMultipleTargets,
			"Mixin with multiple targets cannot remap an @Overwrite method", loc)

		return Result{}
	}

	data := h.obf.ObfMethod(symbol.NewMemberRef(d.PrimaryTargetRef(), m.Name, m.Desc))
	if data.IsEmpty() {
		sev := diagnostic.SeverityError
		if d.IsInterface() {
			sev = diagnostic.SeverityWarning
		}

		h.print(sev, diagnostic.CodeNoObfMapping, "No obfuscation mapping for @Overwrite method", loc)

		return Result{}
	}

	h.addMapping(d, false, symbol.NewMemberRef("", m.Name, m.Desc), data, keepName)

	return Result{}
}

// checkJavadoc requires @author and @reason tags on overwrites.
func (h *overwriteHandler) checkJavadoc(req Request) {
	if strings.EqualFold(h.host.Option(OptionDisableOverwriteChecker), "true") {
		return
	}

	sev := diagnostic.SeverityWarning
	if strings.EqualFold(h.host.Option(OptionOverwriteErrorLevel), "error") {
		sev = diagnostic.SeverityError
	}

	loc := req.Member.Location(req.Annotation.SimpleName())

	doc := h.host.Javadoc(req.Member)
	if strings.TrimSpace(doc) == "" {
		h.print(sev, diagnostic.CodeOverwriteJavadoc, "@Overwrite is missing javadoc comment", loc)
		return
	}

	lower := strings.ToLower(doc)
	if !strings.Contains(lower, "@author") {
		h.print(sev, diagnostic.CodeOverwriteJavadoc, "@Overwrite is missing an @author tag", loc)
	}

	if !strings.Contains(lower, "@reason") {
		h.print(sev, diagnostic.CodeOverwriteJavadoc, "@Overwrite is missing an @reason tag", loc)
	}
}

func keepName(name string) string {
	return name
}
