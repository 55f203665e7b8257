// Package archive reads and writes the zip container of an android package.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/rla/pkg/errors"
)

// Filter selects archive entries by their slash separated name
type Filter func(name string) bool

// All selects every entry
func All(string) bool { return true }

// TopLevelDex selects dex files at the archive root, e.g. classes2.dex
func TopLevelDex(name string) bool {
	return !strings.Contains(name, "/") && strings.HasSuffix(name, ".dex")
}

// storedSuffixes are written without compression when no reference archive
// says otherwise. The platform maps resources.arsc and native libraries
// directly from the package.
var storedSuffixes = []string{
	"resources.arsc", ".so", ".png", ".jpg", ".jpeg", ".webp", ".mp4", ".ogg",
}

// DefaultMethod picks the compression method for an entry name
func DefaultMethod(name string) uint16 {
	for _, s := range storedSuffixes {
		if strings.HasSuffix(name, s) {
			return zip.Store
		}
	}
	return zip.Deflate
}

// Expand extracts the entries of src accepted by filter into dest and
// returns their names in archive order. Entries that would land outside
// dest are rejected.
func Expand(src, dest string, filter Filter) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot open archive %s", src)
	}
	defer r.Close()

	if filter == nil {
		filter = All
	}

	var names []string
	for _, f := range r.File {
		if !filter(f.Name) {
			continue
		}

		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return names, err
		}

		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(target, 0755); err != nil {
				return names, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return names, err
		}
		names = append(names, f.Name)
	}

	return names, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(target))
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot read entry %s", f.Name)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create %s", target)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
	}
	return out.Close()
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.Newf(errors.ErrArchive, "entry %q escapes %s", name, dest)
	}
	return target, nil
}

// Methods returns the compression method of every entry in an archive
func Methods(src string) (map[string]uint16, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchive, "cannot open archive %s", src)
	}
	defer r.Close()

	methods := make(map[string]uint16, len(r.File))
	for _, f := range r.File {
		methods[f.Name] = f.Method
	}
	return methods, nil
}

// Compress writes every regular file under srcDir into a new archive at
// dest. Entry names are slash separated paths relative to srcDir, in
// lexical order. methods overrides the compression method per entry; names
// it does not list use DefaultMethod.
func Compress(srcDir, dest string, methods map[string]uint16) error {
	var files []string
	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", srcDir)
	}
	sort.Strings(files)

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create %s", dest)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	for _, p := range files {
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", p)
		}
		name := filepath.ToSlash(rel)

		method, ok := methods[name]
		if !ok {
			method = DefaultMethod(name)
		}
		if err := addFile(w, p, name, method); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot finish %s", dest)
	}
	return out.Close()
}

func addFile(w *zip.Writer, src, name string, method uint16) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot build header for %s", src)
	}
	header.Name = name
	header.Method = method

	fw, err := w.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot add %s", name)
	}

	f, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer f.Close()

	if _, err := io.Copy(fw, f); err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot write entry %s", name)
	}
	return nil
}

// Update replaces or adds entries in the archive at target, taking the
// file srcDir/<name> for every name. Untouched entries are copied raw,
// without recompression. A replaced entry keeps its compression method.
func Update(target, srcDir string, names []string) error {
	replace := make(map[string]bool, len(names))
	for _, n := range names {
		replace[n] = true
	}

	r, err := zip.OpenReader(target)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchive, "cannot open archive %s", target)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create temp archive beside %s", target)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := zip.NewWriter(tmp)
	methods := make(map[string]uint16)
	for _, f := range r.File {
		if replace[f.Name] {
			methods[f.Name] = f.Method
			continue
		}
		if err := w.Copy(f); err != nil {
			tmp.Close()
			return errors.Wrapf(err, errors.ErrArchive, "cannot copy entry %s", f.Name)
		}
	}

	for _, n := range names {
		method, ok := methods[n]
		if !ok {
			method = DefaultMethod(n)
		}
		if err := addFile(w, filepath.Join(srcDir, filepath.FromSlash(n)), n, method); err != nil {
			tmp.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, errors.ErrArchive, "cannot finish %s", target)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot flush %s", tmpName)
	}
	r.Close()

	if err := os.Rename(tmpName, target); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", target)
	}
	return nil
}
