package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Settings is the effective tool configuration
type Settings struct {
	Tools       ToolSettings        `koanf:"tools" toml:"tools"`
	Jars        JarSettings         `koanf:"jars" toml:"jars"`
	Signing     SigningSettings     `koanf:"signing" toml:"signing"`
	Concurrency ConcurrencySettings `koanf:"concurrency" toml:"concurrency"`
	Git         GitSettings         `koanf:"git" toml:"git"`
}

// ToolSettings names the executables looked up on PATH
type ToolSettings struct {
	Java     string `koanf:"java" toml:"java"`
	Git      string `koanf:"git" toml:"git"`
	Jadx     string `koanf:"jadx" toml:"jadx"`
	Zipalign string `koanf:"zipalign" toml:"zipalign"`
	Javac    string `koanf:"javac" toml:"javac"`
}

// JarSettings locates the vendored java tools
type JarSettings struct {
	Dir       string `koanf:"dir" toml:"dir"`
	Smali     string `koanf:"smali" toml:"smali"`
	Baksmali  string `koanf:"baksmali" toml:"baksmali"`
	Apksigner string `koanf:"apksigner" toml:"apksigner"`
	Dx        string `koanf:"dx" toml:"dx"`
}

type SigningSettings struct {
	Keystore string `koanf:"keystore" toml:"keystore"`
	Password string `koanf:"password" toml:"password"`
	Zipalign bool   `koanf:"zipalign" toml:"zipalign"`
}

type ConcurrencySettings struct {
	Workers int `koanf:"workers" toml:"workers"`
}

type GitSettings struct {
	CommitMessage string `koanf:"commit_message" toml:"commit_message"`
}

// JarDir returns the directory relative jar names resolve against
func (s *Settings) JarDir() string {
	if s.Jars.Dir != "" {
		return expandHome(s.Jars.Dir)
	}
	return filepath.Join(xdg.DataHome, "rla", "jars")
}

// Resolve turns a jar or keystore setting into an absolute path
func (s *Settings) Resolve(name string) string {
	name = expandHome(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.JarDir(), name)
}

func (s *Settings) SmaliJar() string     { return s.Resolve(s.Jars.Smali) }
func (s *Settings) BaksmaliJar() string  { return s.Resolve(s.Jars.Baksmali) }
func (s *Settings) ApksignerJar() string { return s.Resolve(s.Jars.Apksigner) }
func (s *Settings) DxJar() string        { return s.Resolve(s.Jars.Dx) }
func (s *Settings) Keystore() string     { return s.Resolve(s.Signing.Keystore) }

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		return filepath.Join(xdg.Home, strings.TrimPrefix(p, "~"))
	}
	return p
}
