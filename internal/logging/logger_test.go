package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/iterlab/internal/dynamo"
)

var _ dynamo.RunLog = (*RunLogger)(nil)

func TestRunLoggerFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	var console bytes.Buffer

	l, err := New(dir, WithConsole(&console), Plain())
	require.NoError(t, err)

	l.Interim("The value of     1th iteration : 5.000000")
	l.Warn("cap reached")
	l.Result("Result : 5.000000")
	require.NoError(t, l.Close())

	assert.Equal(t,
		"The value of     1th iteration : 5.000000\ncap reached\nResult : 5.000000\n",
		console.String())

	interim, err := os.ReadFile(filepath.Join(dir, InterimFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(interim)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "level=INFO")
	assert.Contains(t, lines[0], "1th iteration : 5.000000")
	assert.Contains(t, lines[1], "level=WARN")
	assert.Contains(t, lines[1], "cap reached")

	result, err := os.ReadFile(filepath.Join(dir, ResultFile))
	require.NoError(t, err)
	assert.Contains(t, string(result), "Result : 5.000000")
	assert.NotContains(t, string(result), "iteration")
}

func TestRunLoggerAfterClose(t *testing.T) {
	l, err := New(t.TempDir(), WithConsole(nil))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.NotPanics(t, func() { l.Interim("late") })
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.NotPanics(t, func() {
		l.Interim("a")
		l.Result("b")
		l.Warn("c")
	})
	assert.NoError(t, l.Close())
}

func TestNewDiagnostic(t *testing.T) {
	var buf bytes.Buffer

	NewDiagnostic(&buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	NewDiagnostic(&buf, true).Debug("shown", "method", "rk4")
	assert.Contains(t, buf.String(), "method=rk4")
}
