package diagnostic

import (
	"context"
	"log/slog"
)

// LogMessager writes diagnostics to a structured logger.
type LogMessager struct {
	Logger *slog.Logger
}

// PrintMessage logs d at the slog level matching its severity.
func (l LogMessager) PrintMessage(d Diagnostic) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	switch d.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}

	attrs := []slog.Attr{slog.String("code", d.Code)}
	if !d.Location.IsZero() {
		attrs = append(attrs, slog.String("location", d.Location.String()))
	}

	if len(d.Suggestions) > 0 {
		attrs = append(attrs, slog.Any("suggestions", d.Suggestions))
	}

	logger.LogAttrs(context.Background(), level, d.Message, attrs...)
}
