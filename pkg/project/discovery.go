package project

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/arthur-debert/rla/pkg/errors"
)

// FindRoot walks from start up to the filesystem root and returns the first
// directory holding a project config file.
func FindRoot(fs afero.Fs, start string) (Layout, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Layout{}, errors.Wrapf(err, errors.ErrInvalidInput, "bad start directory %s", start)
	}

	for {
		ok, err := afero.Exists(fs, filepath.Join(dir, ConfigFile))
		if err != nil {
			return Layout{}, errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", dir)
		}
		if ok {
			return Layout{Root: dir}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Layout{}, errors.Newf(errors.ErrNotFound,
				"no %s found in %s or any parent directory", ConfigFile, start).
				WithDetail("start", start)
		}
		dir = parent
	}
}

// NextOutput returns output/<n>.apk where n is one more than the largest
// numeric stem already present, starting at 1. The output directory is
// created when missing. Non-numeric names are ignored.
func NextOutput(fs afero.Fs, l Layout) (string, error) {
	if err := fs.MkdirAll(l.OutputDir(), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", l.OutputDir())
	}

	entries, err := afero.ReadDir(fs, l.OutputDir())
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", l.OutputDir())
	}

	highest := 0
	for _, e := range entries {
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		n, err := strconv.Atoi(stem)
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return filepath.Join(l.OutputDir(), strconv.Itoa(highest+1)+ApkExt), nil
}

// UnitNames lists the disassembly unit directories, sorted
func UnitNames(fs afero.Fs, l Layout) ([]string, error) {
	entries, err := afero.ReadDir(fs, l.SmaliDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "no %s directory in %s", SmaliDir, l.Root)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", l.SmaliDir())
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// TopLevelDex lists dex files directly inside dir, sorted
func TopLevelDex(fs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", dir)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsDexName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
