package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across minigen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Session and rounds
	FieldSessionID = "session_id"
	FieldRound     = "round"
	FieldFinal     = "final"

	// Units and declarations
	FieldUnitKey = "unit_key"
	FieldKind    = "kind"
	FieldRole    = "role"
	FieldDeclID  = "decl_id"

	// Output
	FieldArtifact = "artifact"
	FieldPath     = "path"
	FieldMode     = "mode"

	// Host
	FieldPackage  = "package"
	FieldPatterns = "patterns"

	// Flux runtime
	FieldAction   = "action"
	FieldSequence = "seq"

	// Components
	FieldComponent = "component"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"
	FieldCode  = "code"

	// Counts
	FieldCount     = "count"
	FieldUnits     = "units"
	FieldArtifacts = "artifacts"
	FieldErrors    = "errors"
)

// Context keys for propagating logging context
type contextKey string

const (
	sessionIDKey contextKey = "logger_session_id"
	componentKey contextKey = "logger_component"
)

// WithSessionID adds a processing session ID to the context for logging
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok && sessionID != "" {
		fields = append(fields, FieldSessionID, sessionID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// LoggerFromContext returns a logger with fields extracted from context.
func LoggerFromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	func NewScanner() *Scanner {
//	    return &Scanner{
//	        logger: logger.ComponentLogger("host.scanner"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
// Example:
//
//	roundLogger := logger.ChildLogger(base, logger.FieldRound, n)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
