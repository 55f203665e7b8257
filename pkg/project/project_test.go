// pkg/project/project_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero in-memory filesystem
// PURPOSE: Layout paths, project config IO, root discovery, output numbering

package project

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rla/pkg/errors"
)

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "/work/app"}

	assert.Equal(t, "/work/app/bak.apk", l.BackupApk())
	assert.Equal(t, "/work/app/.rla.config.json", l.ConfigFile())
	assert.Equal(t, "/work/app/.gitignore", l.GitIgnore())
	assert.Equal(t, "/work/app/.unpacked", l.UnpackedDir())
	assert.Equal(t, "/work/app/smalis/classes2.dex", l.UnitDir("classes2.dex"))
	assert.Equal(t, "/work/app/.unpacked/classes.dex", l.UnpackedDex("classes.dex"))
	assert.Equal(t, "/work/app/jadx-src", l.JadxDir())
	assert.Equal(t, "/work/app/output", l.OutputDir())
	assert.Equal(t, "/work/app/minifrida", l.FridaDir())
}

func TestRootForApk(t *testing.T) {
	assert.Equal(t, "/tmp/app", RootForApk("/tmp/app.apk"))
	assert.Equal(t, "rel/dir/game", RootForApk("rel/dir/game.apk"))
}

func TestConfigRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Layout{Root: "/p"}
	require.NoError(t, fs.MkdirAll(l.Root, 0755))

	cfg := Config{SmaliOnly: true, GitEnable: true}
	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"smali_only": true`)
	assert.Contains(t, string(data), `"force_override": false`)
	require.NoError(t, afero.WriteFile(fs, l.ConfigFile(), data, 0644))

	got, err := LoadConfig(fs, l)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Layout{Root: "/p"}

	_, err := LoadConfig(fs, l)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "missing file")

	require.NoError(t, afero.WriteFile(fs, l.ConfigFile(), []byte("{not json"), 0644))
	_, err = LoadConfig(fs, l)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "malformed file")
}

func TestFindRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/app/smalis/classes.dex/com/example", 0755))
	require.NoError(t, afero.WriteFile(fs, "/work/app/.rla.config.json", []byte("{}"), 0644))

	tests := []struct {
		name  string
		start string
	}{
		{"at root", "/work/app"},
		{"one level down", "/work/app/smalis"},
		{"deep inside", "/work/app/smalis/classes.dex/com/example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := FindRoot(fs, tt.start)
			require.NoError(t, err)
			assert.Equal(t, "/work/app", l.Root)
		})
	}

	t.Run("not found", func(t *testing.T) {
		require.NoError(t, fs.MkdirAll("/elsewhere/deep", 0755))
		_, err := FindRoot(fs, "/elsewhere/deep")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	t.Run("nearest marker wins", func(t *testing.T) {
		require.NoError(t, fs.MkdirAll("/work/app/nested/inner", 0755))
		require.NoError(t, afero.WriteFile(fs, "/work/app/nested/.rla.config.json", []byte("{}"), 0644))
		l, err := FindRoot(fs, "/work/app/nested/inner")
		require.NoError(t, err)
		assert.Equal(t, "/work/app/nested", l.Root)
	})
}

func TestNextOutput(t *testing.T) {
	l := Layout{Root: "/p"}

	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{"missing directory starts at one", nil, "1.apk"},
		{"sequential", []string{"1.apk", "2.apk"}, "3.apk"},
		{"gap uses highest", []string{"1.apk", "7.apk"}, "8.apk"},
		{"non numeric ignored", []string{"final.apk", "2.apk", "notes.txt"}, "3.apk"},
		{"idsig leftovers ignored", []string{"4.apk.idsig"}, "1.apk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for _, name := range tt.existing {
				require.NoError(t, afero.WriteFile(fs, filepath.Join(l.OutputDir(), name), nil, 0644))
			}

			got, err := NextOutput(fs, l)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(l.OutputDir(), tt.want), got)

			exists, _ := afero.DirExists(fs, l.OutputDir())
			assert.True(t, exists)
		})
	}
}

func TestNextOutputIsStrictlyIncreasing(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Layout{Root: "/p"}

	for i := 1; i <= 5; i++ {
		got, err := NextOutput(fs, l)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(l.OutputDir(), []string{"", "1", "2", "3", "4", "5"}[i]+".apk"), got)
		require.NoError(t, afero.WriteFile(fs, got, []byte("apk"), 0644))
	}
}

func TestUnitNamesAndTopLevelDex(t *testing.T) {
	fs := afero.NewMemMapFs()
	l := Layout{Root: "/p"}

	_, err := UnitNames(fs, l)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	require.NoError(t, fs.MkdirAll(l.UnitDir("classes2.dex"), 0755))
	require.NoError(t, fs.MkdirAll(l.UnitDir("classes.dex"), 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(l.SmaliDir(), "stray.txt"), nil, 0644))

	names, err := UnitNames(fs, l)
	require.NoError(t, err)
	assert.Equal(t, []string{"classes.dex", "classes2.dex"}, names)

	require.NoError(t, afero.WriteFile(fs, l.UnpackedDex("classes.dex"), nil, 0644))
	require.NoError(t, afero.WriteFile(fs, l.UnpackedDex("resources.arsc"), nil, 0644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(l.UnpackedDir(), "lib", "x.dex"), nil, 0644))

	dex, err := TopLevelDex(fs, l.UnpackedDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"classes.dex"}, dex)
}
