package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/aretw0/isoscene/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a file backend rooted in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ISOSCENE_BACKEND", "file")
	t.Setenv("ISOSCENE_DATA_DIR", dir)
	t.Setenv("ISOSCENE_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_EditAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "layers", "add", "Roof", "-w", "house")
	require.NoError(t, err)

	out, err := run(t, dir, "objects", "add", "cube", "1", "0", "2", "-w", "house")
	require.NoError(t, err)
	var obj domain.Object
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	assert.Equal(t, domain.KindCube, obj.Kind)

	out, err = run(t, dir, "layers", "ls", "-w", "house")
	require.NoError(t, err)
	assert.Contains(t, out, "* 2\tRoof\tvisible\t1 objects")

	out, err = run(t, dir, "state", "set", "scene.zoom", "2", "-w", "house")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, dir, "state", "get", "scene.zoom", "-w", "house")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, dir, "history", "undo", "-w", "house")
	require.NoError(t, err)
	assert.Contains(t, out, string(domain.ActionAddObject))

	out, err = run(t, dir, "workspaces", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "- house")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "layers", "rm", "1", "-w", "w")
	assert.Error(t, err, "the last layer stays")

	_, err = run(t, dir, "objects", "add", "banana", "-w", "w")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = run(t, dir, "state", "get", "scene.nope", "-w", "w")
	assert.ErrorIs(t, err, domain.ErrPathNotFound)

	_, err = run(t, dir, "history", "redo", "-w", "w")
	assert.Error(t, err)
}

func TestCLI_HistorySizeSurvivesReset(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ISOSCENE_HISTORY_SIZE", "7")

	out, err := run(t, dir, "state", "get", "history.maxHistorySize", "-w", "h")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	for _, cmd := range []string{"reset", "clear"} {
		_, err = run(t, dir, "state", cmd, "-w", "h")
		require.NoError(t, err)
		out, err = run(t, dir, "state", "get", "history.maxHistorySize", "-w", "h")
		require.NoError(t, err)
		assert.Equal(t, "7\n", out, "after %s", cmd)
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, 2.0, parseValue("2"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "night", parseValue("night"))
	assert.Equal(t, map[string]any{"a": 1.0}, parseValue(`{"a":1}`))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "isoscene version ")
}
