// Package deps materializes the files rla hands to external tools or drops
// into new projects. Text assets are compiled in; the java tools and the
// debug keystore are located through the tool settings.
package deps

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"

	"github.com/arthur-debert/rla/pkg/config"
	"github.com/arthur-debert/rla/pkg/errors"
)

//go:embed assets
var assets embed.FS

// Dep is one materializable file
type Dep struct {
	// Name is the file name once released
	Name string

	asset  string
	locate func(*config.Settings) string
}

var (
	GitIgnore    = Dep{Name: ".gitignore", asset: "assets/gitignore"}
	FridaIndex   = Dep{Name: "index.js", asset: "assets/minifrida/index.js"}
	FridaPackage = Dep{Name: "package.json", asset: "assets/minifrida/package.json"}

	Smali     = Dep{Name: "smali.jar", locate: (*config.Settings).SmaliJar}
	Baksmali  = Dep{Name: "baksmali.jar", locate: (*config.Settings).BaksmaliJar}
	Apksigner = Dep{Name: "apksigner.jar", locate: (*config.Settings).ApksignerJar}
	Dx        = Dep{Name: "dx.jar", locate: (*config.Settings).DxJar}
	Keystore  = Dep{Name: "debug.keystore", locate: (*config.Settings).Keystore}
)

// Frida lists the helper files of the minifrida directory
var Frida = []Dep{FridaIndex, FridaPackage}

// Embedded reports whether the dep ships inside the binary
func (d Dep) Embedded() bool { return d.asset != "" }

// Bytes returns the content of an embedded dep
func (d Dep) Bytes() ([]byte, error) {
	if !d.Embedded() {
		return nil, errors.Newf(errors.ErrInternal, "%s is not an embedded asset", d.Name)
	}
	data, err := assets.ReadFile(d.asset)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal, "missing embedded asset %s", d.asset)
	}
	return data, nil
}

// Source returns where an external dep is read from
func (d Dep) Source(s *config.Settings) string {
	if d.locate == nil {
		return ""
	}
	return d.locate(s)
}

// Release writes the dep into dir under its name and returns the path.
// External deps that cannot be found are NOT_FOUND.
func (d Dep) Release(s *config.Settings, dir string) (string, error) {
	target := filepath.Join(dir, d.Name)

	if d.Embedded() {
		data, err := d.Bytes()
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot release %s", d.Name)
		}
		return target, nil
	}

	src := d.Source(s)
	if _, err := os.Stat(src); err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound,
			"%s not found at %s (set [jars] in %s)", d.Name, src, config.UserConfigPath()).
			WithDetail("path", src)
	}

	if err := copy.Copy(src, target); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot release %s", d.Name)
	}
	return target, nil
}
