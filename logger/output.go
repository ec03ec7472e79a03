package logger

// Output controls what categories of information the CLI prints at each
// verbosity level. Unlike log levels, categories select WHAT is shown.
//
//	0 (default) - diagnostics, written/stale files summary
//	1 (-v)      - + per-package progress, each written file
//	2 (-vv)     - + round boundaries, unit readiness, timing, config
//	3 (-vvv)    - + every declaration and key assignment

// OutputCategory defines a category of output that can be enabled/disabled
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputDiagnostics OutputCategory = iota
	OutputSummary

	// Level 1 (-v)
	OutputProgress
	OutputFiles

	// Level 2 (-vv)
	OutputRounds
	OutputTiming
	OutputConfig

	// Level 3 (-vvv)
	OutputDeclarations
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputDiagnostics: VerbosityUser,
	OutputSummary:     VerbosityUser,

	OutputProgress: VerbosityInfo,
	OutputFiles:    VerbosityInfo,

	OutputRounds: VerbosityDebug,
	OutputTiming: VerbosityDebug,
	OutputConfig: VerbosityDebug,

	OutputDeclarations: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}

var categoryNames = map[OutputCategory]string{
	OutputDiagnostics:  "diagnostics",
	OutputSummary:      "summary",
	OutputProgress:     "progress",
	OutputFiles:        "files",
	OutputRounds:       "rounds",
	OutputTiming:       "timing",
	OutputConfig:       "config",
	OutputDeclarations: "declarations",
}

// CategoryName returns the human-readable name for an output category
func CategoryName(category OutputCategory) string {
	if name, ok := categoryNames[category]; ok {
		return name
	}
	return "unknown"
}
