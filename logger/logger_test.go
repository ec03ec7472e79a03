package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{VerbosityTrace, zapcore.DebugLevel},
		{9, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "Trace (-vvv+)", LevelName(7))
	assert.Equal(t, "Unknown", LevelName(-2))
}

func TestShouldOutput(t *testing.T) {
	assert.True(t, ShouldOutput(0, OutputDiagnostics))
	assert.False(t, ShouldOutput(0, OutputFiles))
	assert.True(t, ShouldOutput(1, OutputFiles))
	assert.False(t, ShouldOutput(1, OutputRounds))
	assert.True(t, ShouldOutput(2, OutputRounds))
	assert.False(t, ShouldOutput(2, OutputDeclarations))
	assert.True(t, ShouldOutput(3, OutputDeclarations))
	assert.False(t, ShouldOutput(2, OutputCategory(99)))
	assert.Equal(t, "rounds", CategoryName(OutputRounds))
	assert.Equal(t, "unknown", CategoryName(OutputCategory(99)))
}

func TestInitialize(t *testing.T) {
	defer func() { Logger = zap.NewNop().Sugar() }()

	require.NoError(t, Initialize(false, VerbosityDebug))
	assert.False(t, JSONOutput)
	assert.Equal(t, VerbosityDebug, Verbosity)
	assert.True(t, Logger.Desugar().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Initialize(true, VerbosityUser))
	assert.True(t, JSONOutput)
	assert.False(t, Logger.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FieldsFromContext(ctx))

	ctx = WithSessionID(ctx, "abc")
	ctx = WithComponent(ctx, "host.driver")
	assert.Equal(t, []interface{}{FieldSessionID, "abc", FieldComponent, "host.driver"}, FieldsFromContext(ctx))
	assert.NotNil(t, LoggerFromContext(ctx))
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("everforest")
	SetTheme("gruvbox")
	assert.Equal(t, "gruvbox", currentTheme)
	SetTheme("solarized")
	assert.Equal(t, "gruvbox", currentTheme, "unknown themes are ignored")
}

func TestAbbreviateName(t *testing.T) {
	assert.Equal(t, "e.session", abbreviateName("engine.session"))
	assert.Equal(t, "h.scanner.load", abbreviateName("host.scanner.load"))
	assert.Equal(t, "sink", abbreviateName("sink"))
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func TestMinimalEncoder(t *testing.T) {
	enc := newMinimalEncoder()
	ent := zapcore.Entry{
		Level:      zapcore.WarnLevel,
		Time:       time.Date(2024, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: "engine.session",
		Message:    "round complete",
	}
	fields := []zapcore.Field{
		zap.Int(FieldRound, 2),
		zap.String(FieldUnitKey, "store:app.Counter"),
		zap.Int(FieldUnits, 3),
		zap.Int(FieldArtifacts, 4),
		zap.Error(errors.New("boom")),
		zap.String("ignored", "x"),
	}

	buf, err := enc.EncodeEntry(ent, fields)
	require.NoError(t, err)
	got := stripANSI(buf.String())
	assert.Equal(t, "13:04:35  WARN  e.session  round complete  #2 store:app.Counter boom (3 units, 4 artifacts)\n", got)
}
