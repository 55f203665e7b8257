package testutil

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteApk writes a zip package with the given entries
func WriteApk(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)

	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		fw, err := w.Create(n)
		require.NoError(t, err)
		_, err = io.WriteString(fw, entries[n])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

// ReadApk returns the entries of a zip package
func ReadApk(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

// SampleApk is a minimal two-dex package
func SampleApk() map[string]string {
	return map[string]string{
		"AndroidManifest.xml":  "manifest",
		"classes.dex":          "dex:classes",
		"classes2.dex":         "dex:classes2",
		"resources.arsc":       "arsc",
		"res/layout/main.xml":  "layout",
		"assets/payload.dex":   "nested dex",
		"META-INF/MANIFEST.MF": "signature",
	}
}
