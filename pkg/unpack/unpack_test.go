// pkg/unpack/unpack_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: testutil simulator (no JDK needed), real temp directories
// PURPOSE: Unpack destination rules, phase layout, optional task policy

package unpack_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/orchestrator"
	"github.com/arthur-debert/rla/pkg/project"
	"github.com/arthur-debert/rla/pkg/testutil"
	"github.com/arthur-debert/rla/pkg/unpack"
)

func fullConfig() project.Config {
	return project.Config{GitEnable: true, JadxEnable: true}
}

func sample(t *testing.T, env *testutil.Env) string {
	apk := filepath.Join(env.Dir, "app.apk")
	testutil.WriteApk(t, apk, testutil.SampleApk())
	return apk
}

func TestUnpackFullMode(t *testing.T) {
	env := testutil.NewEnv(t)
	apk := sample(t, env)

	res, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{Apk: apk, Config: fullConfig()})
	require.NoError(t, err)

	l := res.Layout
	assert.Equal(t, filepath.Join(env.Dir, "app"), l.Root)
	assert.Equal(t, []string{"classes.dex", "classes2.dex"}, res.Units)

	files := testutil.Tree(l.Root)
	for _, want := range []string{
		"bak.apk",
		".gitignore",
		".rla.config.json",
		"minifrida/index.js",
		"minifrida/package.json",
		".unpacked/AndroidManifest.xml",
		".unpacked/assets/payload.dex",
		"smalis/classes.dex/com/example/Main.smali",
		"smalis/classes2.dex/com/example/Main.smali",
		"jadx-src/app/src/main/java/Main.java",
		"jadx-src/app/src/main/AndroidManifest.xml",
		".git/COMMIT",
	} {
		assert.Contains(t, files, want)
	}
	assert.NotContains(t, files, "smalis/payload.dex/com/example/Main.smali", "nested dex is not a unit")

	backup, err := os.ReadFile(l.BackupApk())
	require.NoError(t, err)
	original, err := os.ReadFile(apk)
	require.NoError(t, err)
	assert.Equal(t, original, backup)

	cfg, err := project.LoadConfig(afero.NewOsFs(), l)
	require.NoError(t, err)
	assert.Equal(t, fullConfig(), cfg)

	commit, err := os.ReadFile(filepath.Join(l.Root, ".git", "COMMIT"))
	require.NoError(t, err)
	assert.Equal(t, "-m First init project", string(commit))

	for _, name := range []string{unpack.TaskPrepare, unpack.TaskExtract, unpack.TaskGitInit, unpack.TaskJadx, unpack.TaskGitCommit} {
		assert.Equal(t, orchestrator.TaskCompleted, res.Report.State(name), name)
	}

	require.NotNil(t, res.Manifest)
	assert.Equal(t, "com.example", res.Manifest.Package)
	assert.Equal(t, "21", res.Manifest.MinSdk)
}

func TestUnpackSmaliOnly(t *testing.T) {
	env := testutil.NewEnv(t)
	apk := sample(t, env)

	res, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{
		Apk:    apk,
		Config: project.Config{SmaliOnly: true},
	})
	require.NoError(t, err)

	_, err = os.Stat(res.Layout.UnpackedDir())
	assert.True(t, os.IsNotExist(err), "no raw tree in smali-only mode")
	assert.Len(t, res.Units, 2)

	smali, err := os.ReadFile(filepath.Join(res.Layout.UnitDir("classes2.dex"), "com", "example", "Main.smali"))
	require.NoError(t, err)
	assert.Equal(t, ".class smali of dex:classes2", string(smali))
}

func TestUnpackRejectsNonApk(t *testing.T) {
	env := testutil.NewEnv(t)
	input := filepath.Join(env.Dir, "app.zip")
	testutil.WriteApk(t, input, testutil.SampleApk())

	_, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{Apk: input})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	assert.Equal(t, []string{"app.zip"}, testutil.Tree(env.Dir), "nothing written")
	assert.Empty(t, env.Runner.Calls())
}

func TestUnpackRejectsNamelessApk(t *testing.T) {
	for _, force := range []bool{false, true} {
		env := testutil.NewEnv(t)
		input := filepath.Join(env.Dir, ".apk")
		testutil.WriteApk(t, input, testutil.SampleApk())
		require.NoError(t, os.WriteFile(filepath.Join(env.Dir, "notes.txt"), []byte("keep"), 0644))

		_, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{
			Apk:    input,
			Config: project.Config{SmaliOnly: true, ForceOverride: force},
		})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "force=%v", force)

		assert.ElementsMatch(t, []string{".apk", "notes.txt"}, testutil.Tree(env.Dir), "force=%v", force)
		assert.Empty(t, env.Runner.Calls())
	}
}

func TestUnpackMissingInput(t *testing.T) {
	env := testutil.NewEnv(t)

	_, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{
		Apk: filepath.Join(env.Dir, "absent.apk"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestUnpackExistingDestination(t *testing.T) {
	t.Run("refused without force", func(t *testing.T) {
		env := testutil.NewEnv(t)
		apk := sample(t, env)
		stale := filepath.Join(env.Dir, "app", "notes.txt")
		require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
		require.NoError(t, os.WriteFile(stale, []byte("mine"), 0644))

		_, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{Apk: apk})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

		data, err := os.ReadFile(stale)
		require.NoError(t, err)
		assert.Equal(t, "mine", string(data), "destination untouched")
	})

	t.Run("replaced with force", func(t *testing.T) {
		env := testutil.NewEnv(t)
		apk := sample(t, env)
		stale := filepath.Join(env.Dir, "app", "notes.txt")
		require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
		require.NoError(t, os.WriteFile(stale, []byte("mine"), 0644))

		res, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{
			Apk:    apk,
			Config: project.Config{ForceOverride: true},
		})
		require.NoError(t, err)

		_, err = os.Stat(stale)
		assert.True(t, os.IsNotExist(err), "old content removed")
		_, err = os.Stat(res.Layout.BackupApk())
		assert.NoError(t, err)
	})
}

func TestUnpackWithoutGit(t *testing.T) {
	env := testutil.NewEnv(t)
	apk := sample(t, env)

	res, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{
		Apk:    apk,
		Config: project.Config{JadxEnable: true},
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(res.Layout.Root, ".git"))
	assert.True(t, os.IsNotExist(err))
	for _, c := range env.Runner.Calls() {
		assert.NotEqual(t, "git", c.Name)
	}
	assert.Equal(t, orchestrator.TaskSkipped, res.Report.State(unpack.TaskGitCommit))
}

func TestUnpackOptionalFailuresAreSwallowed(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Simulator.Fail["jadx"] = "jadx: command not found"
	env.Simulator.Fail["git commit"] = "Author identity unknown"
	apk := sample(t, env)

	res, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{Apk: apk, Config: fullConfig()})
	require.NoError(t, err)

	assert.Equal(t, orchestrator.TaskWarned, res.Report.State(unpack.TaskJadx))
	assert.Equal(t, orchestrator.TaskWarned, res.Report.State(unpack.TaskGitCommit))
	assert.Equal(t, orchestrator.TaskCompleted, res.Report.State(unpack.TaskExtract))
	assert.Nil(t, res.Manifest)
}

func TestUnpackDisassemblyFailureKeepsOtherUnits(t *testing.T) {
	env := testutil.NewEnv(t)
	env.Simulator.Fail[".unpacked/classes2.dex"] = "bad dex magic"
	apk := sample(t, env)

	res, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{Apk: apk, Config: fullConfig()})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTaskFailed))
	assert.True(t, errors.IsErrorCode(err, errors.ErrToolFailure))
	assert.Contains(t, err.Error(), unpack.TaskExtract)

	_, statErr := os.Stat(filepath.Join(res.Layout.UnitDir("classes.dex"), "com", "example", "Main.smali"))
	assert.NoError(t, statErr, "sibling unit is kept")
	_, statErr = os.Stat(res.Layout.UnitDir("classes2.dex"))
	assert.True(t, os.IsNotExist(statErr))

	assert.Equal(t, orchestrator.TaskSkipped, res.Report.State(unpack.TaskGitCommit))
	assert.Empty(t, env.Runner.CallsMatching("git", "commit"))
}

func TestUnpackWithoutDex(t *testing.T) {
	env := testutil.NewEnv(t)
	apk := filepath.Join(env.Dir, "nodex.apk")
	testutil.WriteApk(t, apk, map[string]string{"AndroidManifest.xml": "m", "assets/a.dex": "nested"})

	_, err := unpack.New(env.Session).Unpack(context.Background(), unpack.Options{Apk: apk})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "no dex found")
}
