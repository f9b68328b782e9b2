package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	in := "  The app crashes frequently after the update\n\n\t\nGreat product but shipping was slow  \r\nlast line without newline"
	items, err := Lines(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The app crashes frequently after the update",
		"Great product but shipping was slow",
		"last line without newline",
	}, items)
}

func TestLines_Empty(t *testing.T) {
	items, err := Lines(strings.NewReader("\n \n"))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLines_TooLong(t *testing.T) {
	_, err := Lines(strings.NewReader(strings.Repeat("x", maxLine+1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read feedback")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0o644))

	items, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, items)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, Args([]string{" a ", "", "  ", "b c"}))
	assert.Empty(t, Args(nil))
}
