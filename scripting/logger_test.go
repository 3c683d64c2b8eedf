package scripting_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/marionette/scripting"
)

func TestLineWriterSplitsLines(t *testing.T) {
	var lines []string
	w := scripting.NewLineWriter(func(line string) { lines = append(lines, line) })

	n, err := w.Write([]byte("first\nsecond\npart"))
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	assert.Equal(t, []string{"first", "second"}, lines)

	// The partial line is held until its newline arrives, even across
	// multiple writes.
	_, err = w.Write([]byte("ial"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, lines)

	_, err = w.Write([]byte(" line\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "partial line"}, lines)
}

func TestLineWriterCloseFlushes(t *testing.T) {
	var lines []string
	w := scripting.NewLineWriter(func(line string) { lines = append(lines, line) })

	_, err := w.Write([]byte("no newline"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, []string{"no newline"}, lines)

	// Closing again is a no-op.
	require.NoError(t, w.Close())
	assert.Equal(t, []string{"no newline"}, lines)
}

func TestLineWriterAsStream(t *testing.T) {
	var lines []string
	w := scripting.NewLineWriter(func(line string) { lines = append(lines, line) })

	fmt.Fprintf(w, "entity %d at (%g, %g)\n", 3, 1.5, 2.5)
	assert.Equal(t, []string{"entity 3 at (1.5, 2.5)"}, lines)
}
