// Package manifest reads the decoded AndroidManifest.xml that jadx leaves
// in an exported source tree.
package manifest

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/rla/pkg/errors"
)

// FileName is the manifest name inside a decompiled tree
const FileName = "AndroidManifest.xml"

// Manifest holds the identifying attributes of a package
type Manifest struct {
	Package     string `json:"package"`
	VersionName string `json:"version_name,omitempty"`
	VersionCode string `json:"version_code,omitempty"`
	MinSdk      string `json:"min_sdk,omitempty"`
	TargetSdk   string `json:"target_sdk,omitempty"`
}

// Find returns the shallowest manifest below dir
func Find(dir string) (string, error) {
	found := ""
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != FileName {
			return nil
		}
		if found == "" || depth(path) < depth(found) {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot scan %s", dir)
	}
	if found == "" {
		return "", errors.Newf(errors.ErrNotFound, "no %s under %s", FileName, dir).
			WithDetail("path", dir)
	}
	return found, nil
}

func depth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}

// Read parses a text manifest
func Read(path string) (*Manifest, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse %s", path).
			WithDetail("path", path)
	}

	root := doc.SelectElement("manifest")
	if root == nil {
		return nil, errors.Newf(errors.ErrConfigParse, "%s has no manifest element", path).
			WithDetail("path", path)
	}

	m := &Manifest{
		Package:     root.SelectAttrValue("package", ""),
		VersionName: root.SelectAttrValue("android:versionName", ""),
		VersionCode: root.SelectAttrValue("android:versionCode", ""),
	}
	if sdk := root.SelectElement("uses-sdk"); sdk != nil {
		m.MinSdk = sdk.SelectAttrValue("android:minSdkVersion", "")
		m.TargetSdk = sdk.SelectAttrValue("android:targetSdkVersion", "")
	}
	return m, nil
}

// Load finds and reads the manifest below dir
func Load(dir string) (*Manifest, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return Read(path)
}
