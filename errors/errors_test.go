package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrapf(ErrConflict, "artifact %s", "store:app.Counter#go")

	assert.Equal(t, "artifact store:app.Counter#go: artifact conflict", err.Error())
	assert.True(t, Is(err, ErrConflict))
	assert.False(t, Is(err, ErrStale))
}

func TestIsProtocolError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"out of order", WithStack(ErrOutOfOrderRound), true},
		{"reentrant", Wrap(ErrReentrantRound, "round 3"), true},
		{"aborted", ErrSessionAborted, true},
		{"conflict", ErrConflict, false},
		{"plain", New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProtocolError(tt.err))
		})
	}
}

func TestNewKindTableError(t *testing.T) {
	err := NewKindTableError("kind %q: role %q has no annotation", "store", "reducer")
	assert.True(t, Is(err, ErrInvalidKindTable))
	assert.Contains(t, err.Error(), `kind "store": role "reducer" has no annotation`)
}

func TestAssertionFailure(t *testing.T) {
	err := AssertionFailedf("unit %s validated while incomplete", "store:x")
	assert.True(t, IsAssertionFailure(err))
	assert.False(t, IsAssertionFailure(New("user error")))
}

type loadError struct {
	pkg string
}

func (e *loadError) Error() string { return "cannot load " + e.pkg }

func TestAsThroughWraps(t *testing.T) {
	err := Wrap(&loadError{pkg: "./internal/..."}, "scan")

	var target *loadError
	require.True(t, As(err, &target))
	assert.Equal(t, "./internal/...", target.pkg)
	assert.Equal(t, target, UnwrapAll(err))
}

func TestHintsAndDetails(t *testing.T) {
	err := WithDetailf(WithHint(ErrStale, "run minigen generate"), "%d files", 2)

	assert.Equal(t, []string{"run minigen generate"}, GetAllHints(err))
	assert.Equal(t, []string{"2 files"}, GetAllDetails(err))
	assert.True(t, Is(err, ErrStale))
}

func TestStackTraceInVerboseFormat(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func ExampleWithHint() {
	err := WithHint(Wrap(ErrStale, "check"), "run 'minigen generate' to refresh generated files")
	fmt.Println(err)
	fmt.Println(FlattenHints(err))
	// Output:
	// check: generated files are out of date
	// run 'minigen generate' to refresh generated files
}
