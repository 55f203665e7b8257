// Package project describes the on-disk shape of an rla project: the fixed
// directory layout, the per-project config file, root discovery and output
// artifact numbering.
package project

import (
	"path/filepath"
	"strings"
)

// Fixed names inside a project root. Pack relies on these being stable
// between rla versions.
const (
	// BackupApk is the untouched copy of the input package
	BackupApk = "bak.apk"

	// ConfigFile marks a directory as a project root
	ConfigFile = ".rla.config.json"

	// GitIgnoreFile keeps build outputs out of the project history
	GitIgnoreFile = ".gitignore"

	// UnpackedDir holds the raw extracted archive tree (full mode only)
	UnpackedDir = ".unpacked"

	// SmaliDir holds one disassembly unit per dex file
	SmaliDir = "smalis"

	// JadxDir holds the decompiled java reference sources
	JadxDir = "jadx-src"

	// OutputDir holds numbered, signed output packages
	OutputDir = "output"

	// FridaDir holds the bundled instrumentation helper scripts
	FridaDir = "minifrida"

	ApkExt = ".apk"
	DexExt = ".dex"
)

// Layout resolves project paths for a root directory. It performs no I/O.
type Layout struct {
	Root string
}

// NewLayout returns the layout for root, made absolute when possible.
func NewLayout(root string) Layout {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return Layout{Root: filepath.Clean(root)}
}

// RootForApk returns the project directory for an input package: the
// package path with its extension removed.
func RootForApk(apkPath string) string {
	return strings.TrimSuffix(apkPath, filepath.Ext(apkPath))
}

func (l Layout) BackupApk() string   { return filepath.Join(l.Root, BackupApk) }
func (l Layout) ConfigFile() string  { return filepath.Join(l.Root, ConfigFile) }
func (l Layout) GitIgnore() string   { return filepath.Join(l.Root, GitIgnoreFile) }
func (l Layout) UnpackedDir() string { return filepath.Join(l.Root, UnpackedDir) }
func (l Layout) SmaliDir() string    { return filepath.Join(l.Root, SmaliDir) }
func (l Layout) JadxDir() string     { return filepath.Join(l.Root, JadxDir) }
func (l Layout) OutputDir() string   { return filepath.Join(l.Root, OutputDir) }
func (l Layout) FridaDir() string    { return filepath.Join(l.Root, FridaDir) }

// UnitDir is the disassembly unit for a dex file name, e.g. smalis/classes2.dex
func (l Layout) UnitDir(dexName string) string {
	return filepath.Join(l.SmaliDir(), dexName)
}

// UnpackedDex is where a dex of the given name sits in the raw tree
func (l Layout) UnpackedDex(dexName string) string {
	return filepath.Join(l.UnpackedDir(), dexName)
}

// IsDexName reports whether name is a dex file name
func IsDexName(name string) bool {
	return filepath.Ext(name) == DexExt
}
