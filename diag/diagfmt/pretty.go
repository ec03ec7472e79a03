// Package diagfmt renders diagnostics for terminals (pretty), tools (JSON)
// and code-scanning integrations (SARIF).
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/pterm/pterm"

	"github.com/teranos/minigen/decl"
	"github.com/teranos/minigen/diag"
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color bool
	// BaseDir, when set, makes file paths relative to it.
	BaseDir string
}

// Pretty writes one block per diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  note: <path>:<line>: <msg>
//
// Items are expected to be sorted already.
func Pretty(w io.Writer, items []diag.Diagnostic, opts PrettyOpts) error {
	for _, d := range items {
		loc := displayLocation(d.Location, opts.BaseDir)
		sev := d.Severity.String()
		msg := d.Message
		if opts.Color {
			switch d.Severity {
			case diag.SevError:
				sev = pterm.Red(sev)
			case diag.SevWarning:
				sev = pterm.Yellow(sev)
			default:
				sev = pterm.Blue(sev)
			}
			loc = pterm.LightCyan(loc)
		}
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev, d.Code.ID(), msg); err != nil {
			return err
		}
		for _, n := range d.Notes {
			label := "note:"
			if opts.Color {
				label = pterm.Gray(label)
			}
			nloc := displayLocation(n.Location, opts.BaseDir)
			if _, err := fmt.Fprintf(w, "  %s %s: %s\n", label, nloc, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary returns a one-line count, e.g. "2 errors, 1 warning".
func Summary(items []diag.Diagnostic) string {
	var errs, warns int
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	return fmt.Sprintf("%d %s, %d %s", errs, plural(errs, "error"), warns, plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func displayLocation(loc decl.Location, base string) string {
	if base != "" && filepath.IsAbs(loc.File) {
		if rel, err := filepath.Rel(base, loc.File); err == nil {
			loc.File = rel
		}
	}
	return loc.String()
}
