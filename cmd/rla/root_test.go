package rla

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rla/pkg/config"
	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/runner"
	"github.com/arthur-debert/rla/pkg/testutil"
)

type harness struct {
	sim    *testutil.Simulator
	runner *testutil.FakeRunner
	dir    string
	app    App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	sim := &testutil.Simulator{Fail: map[string]string{}}
	fake := &testutil.FakeRunner{Handler: sim.Handle}
	settings := testutil.Settings(t)

	return &harness{
		sim:    sim,
		runner: fake,
		dir:    t.TempDir(),
		app: App{
			Settings: func() (*config.Settings, error) { return settings, nil },
			Runner:   func() runner.Runner { return fake },
			TempRoot: t.TempDir(),
		},
	}
}

func (h *harness) run(args ...string) (string, error) {
	root := NewRootCmdWith(h.app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func (h *harness) sampleApk(t *testing.T) string {
	apk := filepath.Join(h.dir, "app.apk")
	testutil.WriteApk(t, apk, testutil.SampleApk())
	return apk
}

func TestUnpackThenPack(t *testing.T) {
	h := newHarness(t)
	apk := h.sampleApk(t)

	out, err := h.run("unpack", apk, "--no-jadx")
	require.NoError(t, err)
	assert.Contains(t, out, "Unpacked "+apk)
	assert.Contains(t, out, "units: classes.dex, classes2.dex")
	assert.Contains(t, out, "[completed] git-commit")
	assert.NotContains(t, out, "jadx")

	root := filepath.Join(h.dir, "app")
	out, err = h.run("pack", "-d", root)
	require.NoError(t, err)
	output := filepath.Join(root, "output", "1.apk")
	assert.Contains(t, out, "Packed "+output)
	assert.Contains(t, out, "strategy: full")
	assert.Equal(t, []string{output}, h.sim.Signed())
}

func TestUnpackFlags(t *testing.T) {
	h := newHarness(t)
	apk := h.sampleApk(t)

	_, err := h.run("unpack", apk, "--smali", "--no-git", "--no-jadx")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(h.dir, "app", ".rla.config.json"))
	require.NoError(t, err)
	var cfg map[string]bool
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, map[string]bool{
		"smali_only":     true,
		"git_enable":     false,
		"jadx_enable":    false,
		"force_override": false,
	}, cfg)

	_, err = h.run("unpack", apk)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = h.run("unpack", apk, "-f", "--no-git", "--no-jadx")
	assert.NoError(t, err)
}

func TestUnpackRejectsNonApk(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("unpack", filepath.Join(h.dir, "app.zip"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestPackJSONOutput(t *testing.T) {
	h := newHarness(t)
	apk := h.sampleApk(t)
	_, err := h.run("unpack", apk, "--smali", "--no-git", "--no-jadx")
	require.NoError(t, err)

	out, err := h.run("pack", "-d", filepath.Join(h.dir, "app"), "--format", "json")
	require.NoError(t, err)

	var got struct {
		Fields map[string]string `json:"fields"`
		Tasks  []struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "smali-only", got.Fields["strategy"])
	require.NotEmpty(t, got.Tasks)
	assert.Equal(t, "produce", got.Tasks[0].Name)
}

func TestPackOutsideProject(t *testing.T) {
	h := newHarness(t)
	t.Chdir(h.dir)

	_, err := h.run("pack")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestSignCommand(t *testing.T) {
	h := newHarness(t)
	apk := h.sampleApk(t)

	out, err := h.run("sign", apk)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed "+apk)
	assert.Equal(t, []string{apk}, h.sim.Signed())
}

func TestConvertCommands(t *testing.T) {
	h := newHarness(t)
	smali := filepath.Join(h.dir, "Foo.smali")
	require.NoError(t, os.WriteFile(smali, []byte(".class LFoo;"), 0644))
	java := filepath.Join(h.dir, "Main.java")
	require.NoError(t, os.WriteFile(java, []byte("class Main {}"), 0644))

	out, err := h.run("smali2java", smali)
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+filepath.Join(h.dir, "Foo.java")+"\n", out)

	out, err = h.run("java2smali", java)
	require.NoError(t, err)
	assert.Equal(t, "Wrote "+filepath.Join(h.dir, "Main.smali")+"\n", out)
}

func TestPassthrough(t *testing.T) {
	h := newHarness(t)
	h.runner.Handler = nil

	_, err := h.run("baksmali", "--version", "-v")
	require.NoError(t, err)

	calls := h.runner.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Attach)
	assert.Equal(t, "baksmali.jar", filepath.Base(calls[0].Args[1]))
	assert.Equal(t, []string{"--version", "-v"}, calls[0].Args[2:], "flags go to the tool untouched")
}

func TestConfigCommand(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("config")
	require.NoError(t, err)
	assert.Contains(t, out, "[signing]")
	assert.Contains(t, out, "password = 'android'")

	out, err = h.run("config", "--template")
	require.NoError(t, err)
	assert.Contains(t, out, "# java = ")
}

func TestVersionAndHelp(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "rla version dev")

	out, err = h.run("help", "topics")
	require.NoError(t, err)
	for _, topic := range []string{"layout", "signing", "workflow", "--force", "--smali"} {
		assert.Contains(t, out, topic)
	}

	out, err = h.run("help", "layout")
	require.NoError(t, err)
	assert.Contains(t, out, "Names are fixed")

	out, err = h.run("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "PROJECT COMMANDS:")
	assert.Contains(t, out, "unpack")
}

func TestNoCommand(t *testing.T) {
	h := newHarness(t)
	_, err := h.run()
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestUnknownFormat(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("sign", h.sampleApk(t), "--format", "xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Empty(t, h.sim.Signed())
}
