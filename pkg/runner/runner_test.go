package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rla/pkg/errors"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRunCapturesCombinedOutput(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "tool", `echo out; echo err 1>&2`)

	out, err := New().Run(context.Background(), Command{Name: script})
	require.NoError(t, err)
	assert.Contains(t, out, "out")
	assert.Contains(t, out, "err")
}

func TestRunUsesWorkingDir(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "tool", `pwd`)

	out, err := New().Run(context.Background(), Command{Name: script, Dir: dir})
	require.NoError(t, err)

	resolved, _ := filepath.EvalSymlinks(dir)
	assert.Contains(t, out, resolved)
}

func TestRunFailureIsToolFailure(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "tool", `echo "bad dex" 1>&2; exit 3`)

	cmd := Command{Name: script, Args: []string{"d", "classes.dex"}}
	out, err := New().Run(context.Background(), cmd)
	require.Error(t, err)

	assert.Contains(t, out, "bad dex")
	assert.True(t, errors.IsErrorCode(err, errors.ErrToolFailure))

	details := errors.GetErrorDetails(err)
	assert.Equal(t, cmd.String(), details["command"])
	assert.Equal(t, 3, details["exit_code"])
	assert.Contains(t, details["output"], "bad dex")
	assert.Contains(t, err.Error(), "bad dex", "output is part of the user-visible message")
}

func TestRunMissingBinary(t *testing.T) {
	_, err := New().Run(context.Background(), Command{Name: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrToolFailure))
	assert.Equal(t, -1, errors.GetErrorDetails(err)["exit_code"])
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"plain", Command{Name: "git", Args: []string{"add", "."}}, "git add ."},
		{"quoted", Command{Name: "git", Args: []string{"commit", "-m", "First init project"}}, "git commit -m 'First init project'"},
		{"java", Java("java", "/jars/smali.jar", "a", "unit"), "java -jar /jars/smali.jar a unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}
