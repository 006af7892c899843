// Package dsl implements the transcription shorthand front end: scanning the
// notation into typed tokens and segmenting the token stream into the
// document tree that word indices address.
package dsl

import "fmt"

// Severity classifies a diagnostic.
type Severity string

const (
	// SeverityWarning marks a recoverable problem; output is still produced.
	SeverityWarning Severity = "warning"
	// SeverityError marks a problem the compiler could not recover cleanly from.
	SeverityError Severity = "error"
)

// Diagnostic reports a problem at a source position. The compiler never fails
// outright; everything it wants the caller to know arrives as a Diagnostic.
type Diagnostic struct {
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Col      int      `json:"col"`
	Severity Severity `json:"severity"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Col, d.Severity, d.Message)
}

// Warnf builds a warning diagnostic at the given position.
func Warnf(line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Col:      col,
		Severity: SeverityWarning,
	}
}
