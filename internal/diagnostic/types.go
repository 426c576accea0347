package diagnostic

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"mixin-ap/internal/common"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// ParseSeverity maps "note", "warning" and "error" (any case) to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "note":
		return SeverityNote, true
	case "warning", "warn":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	default:
		return SeverityNote, false
	}
}

// Location identifies where a diagnostic applies.
type Location struct {
	// File is the source file, if known.
	File string
	// Line is the 1-based line, 0 if unknown.
	Line int
	// Element is the qualified name of the class or member the message is about.
	Element string
	// Annotation is the simple name of the annotation the message is about.
	Annotation string
}

// IsZero reports whether no location information is present.
func (l Location) IsZero() bool {
	return l == Location{}
}

// String formats the location as "file:line element @Annotation".
func (l Location) String() string {
	var parts []string
	if l.File != "" {
		if l.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", l.File, l.Line))
		} else {
			parts = append(parts, l.File)
		}
	}

	if l.Element != "" {
		parts = append(parts, l.Element)
	}

	if l.Annotation != "" {
		parts = append(parts, "@"+l.Annotation)
	}

	return strings.Join(parts, " ")
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Location is where the diagnostic applies (may be zero).
	Location Location
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if !d.Location.IsZero() {
		return d.Location.String() + ": " + msg
	}

	return msg
}

// Messager is the sink diagnostics are delivered to.
type Messager interface {
	PrintMessage(d Diagnostic)
}

// MessagerFunc adapts a function to the Messager interface.
type MessagerFunc func(d Diagnostic)

// PrintMessage calls f(d).
func (f MessagerFunc) PrintMessage(d Diagnostic) {
	f(d)
}

// Diagnostics collects diagnostics by severity. It implements Messager and is
// safe for concurrent use.
type Diagnostics struct {
	mu sync.Mutex

	Errors   []Diagnostic
	Warnings []Diagnostic
	Notes    []Diagnostic
}

var _ Messager = (*Diagnostics)(nil)

// PrintMessage records d under its severity.
func (d *Diagnostics) PrintMessage(m Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch m.Severity {
	case SeverityError:
		d.Errors = append(d.Errors, m)
	case SeverityWarning:
		d.Warnings = append(d.Warnings, m)
	default:
		d.Notes = append(d.Notes, m)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message string, loc Location) {
	d.PrintMessage(Diagnostic{Severity: SeverityError, Code: code, Message: message, Location: loc})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message string, loc Location) {
	d.PrintMessage(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Location: loc})
}

// AddNote adds a note diagnostic.
func (d *Diagnostics) AddNote(code, message string, loc Location) {
	d.PrintMessage(Diagnostic{Severity: SeverityNote, Code: code, Message: message, Location: loc})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.Errors) > 0
}

// All returns every diagnostic, errors first, then warnings, then notes.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Notes))
	out = append(out, d.Errors...)
	out = append(out, d.Warnings...)

	return append(out, d.Notes...)
}

// WithCode returns the diagnostics carrying code, in severity order.
func (d *Diagnostics) WithCode(code string) []Diagnostic {
	var out []Diagnostic
	for _, m := range d.All() {
		if m.Code == code {
			out = append(out, m)
		}
	}

	return out
}

// Reset drops everything collected so far.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Errors, d.Warnings, d.Notes = nil, nil, nil
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.Errors) == 0 {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// Tee fans every message out to all sinks.
type Tee []Messager

// PrintMessage forwards d to each non-nil sink.
func (t Tee) PrintMessage(d Diagnostic) {
	for _, m := range t {
		if m != nil {
			m.PrintMessage(d)
		}
	}
}

// Message is a diagnostic whose delivery the caller decides on.
type Message struct {
	Diagnostic
}

// NewMessage builds a deferred message.
func NewMessage(sev Severity, code, text string, loc Location) *Message {
	return &Message{Diagnostic{Severity: sev, Code: code, Message: text, Location: loc}}
}

// SendTo delivers the message. A nil message is a no-op.
func (m *Message) SendTo(sink Messager) {
	if m == nil || sink == nil {
		return
	}

	sink.PrintMessage(m.Diagnostic)
}
