package diagnostic

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "note", SeverityNote.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity("ERROR")
	require.True(t, ok)
	assert.Equal(t, SeverityError, sev)

	sev, ok = ParseSeverity(" warning ")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, sev)

	_, ok = ParseSeverity("fatal")
	assert.False(t, ok)
}

func TestDiagnostics_CollectsBySeverity(t *testing.T) {
	d := &Diagnostics{}
	d.AddError("e1", "broken", Location{Element: "a.B"})
	d.AddWarning("w1", "odd", Location{})
	d.AddNote("n1", "fyi", Location{})

	assert.True(t, d.HasErrors())
	assert.Len(t, d.Errors, 1)
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Notes, 1)
	assert.Len(t, d.All(), 3)
	assert.Len(t, d.WithCode("w1"), 1)
	require.Error(t, d.Error())
	assert.Contains(t, d.Error().Error(), "a.B: [e1] broken")

	d.Reset()
	assert.False(t, d.HasErrors())
	assert.NoError(t, d.Error())
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Code:        "target_not_found",
		Message:     "Mixin target a.Foo could not be found",
		Location:    Location{File: "M.java", Line: 3, Element: "a.M", Annotation: "Mixin"},
		Suggestions: []string{"a.Foa"},
	}

	assert.Equal(t,
		"M.java:3 a.M @Mixin: [target_not_found] Mixin target a.Foo could not be found (did you mean a.Foa?)",
		d.String())
}

func TestMessage_SendTo(t *testing.T) {
	d := &Diagnostics{}

	var nilMsg *Message
	nilMsg.SendTo(d)
	assert.Empty(t, d.All())

	NewMessage(SeverityError, "c", "text", Location{}).SendTo(d)
	assert.Len(t, d.Errors, 1)
}

func TestTeeAndLogMessager(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	collector := &Diagnostics{}

	sink := Tee{collector, LogMessager{Logger: logger}, nil}
	sink.PrintMessage(Diagnostic{Severity: SeverityWarning, Code: "w", Message: "careful"})

	assert.Len(t, collector.Warnings, 1)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "careful")
}
