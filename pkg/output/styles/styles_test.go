package styles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/rla/pkg/errors"
)

func TestEmbeddedStyles(t *testing.T) {
	require.NoError(t, LoadStyles(defaultStyles))

	for _, name := range []string{"Header", "Label", "Path", "Success", "Warning", "Error", "Muted", "Code", "Indent"} {
		t.Run(name, func(t *testing.T) {
			_, exists := StyleRegistry[name]
			assert.True(t, exists, "style %s should exist", name)
		})
	}

	assert.True(t, GetStyle("Success").GetBold())
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#73D216"}, GetStyle("Success").GetForeground())
	assert.Equal(t, 2, GetStyle("Indent").GetMarginLeft())
}

func TestGetStyleUnknown(t *testing.T) {
	assert.Equal(t, lipgloss.NewStyle(), GetStyle("NoSuchStyle"))
}

func TestLoadStylesFromFile(t *testing.T) {
	t.Cleanup(func() { _ = LoadStyles(defaultStyles) })

	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
colors:
  accent: {light: "#000000", dark: "#FFFFFF"}
styles:
  Header: {underline: true, foreground: accent}
`), 0644))

	require.NoError(t, LoadStylesFromFile(path))
	assert.True(t, GetStyle("Header").GetUnderline())
	assert.False(t, GetStyle("Header").GetBold())
	_, exists := StyleRegistry["Success"]
	assert.False(t, exists, "registry is replaced, not merged")
}

func TestLoadStylesErrors(t *testing.T) {
	t.Cleanup(func() { _ = LoadStyles(defaultStyles) })

	err := LoadStylesFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))

	err = LoadStyles([]byte("styles: [not, a, map"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
