// Package diag carries diagnostics from the generation engine back to the
// host. Diagnostics are values; reporters decide where they go (a Bag for
// the CLI, the host compiler, a log).
package diag

import (
	"fmt"

	"github.com/teranos/minigen/decl"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Note points at a secondary location related to a diagnostic.
type Note struct {
	Location decl.Location
	Msg      string
}

// Diagnostic is one message tied to a source location.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Location decl.Location

	// Subject is the unit key or declaration identity the diagnostic is about.
	Subject string
	Notes   []Note
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Code.ID(), d.Message)
}

// WithNote returns a copy of the diagnostic with an extra note.
func (d Diagnostic) WithNote(loc decl.Location, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Location: loc, Msg: msg})
	return d
}

// New builds a diagnostic with a formatted message.
func New(sev Severity, code Code, loc decl.Location, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}
