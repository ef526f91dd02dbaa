package importer

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Diagnostic is a non-fatal finding raised while parsing a source file.
// Level uses zap's levels so a caller can filter or log it directly.
type Diagnostic struct {
	Level   zapcore.Level
	File    string
	Section string
	// Index is the position of Line inside the section buffer, or -1 when the
	// finding is not tied to a single line.
	Index   int
	Line    string
	Message string
}

// String renders the diagnostic for console output.
func (d Diagnostic) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("%s %s [%s]: %s", d.Level.CapitalString(), d.File, d.Section, d.Message)
	}
	return fmt.Sprintf("%s %s [%s] %d: %s: %q", d.Level.CapitalString(), d.File, d.Section, d.Index, d.Message, d.Line)
}

// Fields returns the structured logging fields for d.
func (d Diagnostic) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("file", d.File),
		zap.String("section", d.Section),
	}
	if d.Index >= 0 {
		fields = append(fields, zap.Int("index", d.Index), zap.String("line", d.Line))
	}
	return fields
}

// Log writes d to logger at its own level.
func (d Diagnostic) Log(logger *zap.Logger) {
	if ce := logger.Check(d.Level, d.Message); ce != nil {
		ce.Write(d.Fields()...)
	}
}

// CountAtLeast returns how many diagnostics are at or above level.
func CountAtLeast(diags []Diagnostic, level zapcore.Level) int {
	n := 0
	for _, d := range diags {
		if d.Level >= level {
			n++
		}
	}
	return n
}
