package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/runner"
)

// Simulator mimics the external tools closely enough for the pipelines:
// it reads and writes the same files the real tools would.
type Simulator struct {
	// Fail maps a command line fragment to the output of a failing run
	Fail map[string]string

	mu     sync.Mutex
	signed []string
}

// Signed lists the packages apksigner was run on
func (s *Simulator) Signed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.signed...)
}

// Handle implements Handler
func (s *Simulator) Handle(cmd runner.Command) (string, error) {
	line := cmd.String()
	for frag, out := range s.Fail {
		if strings.Contains(line, frag) {
			return out, errors.Newf(errors.ErrToolFailure, "%s failed\n%s", line, out).
				WithDetail("command", line).
				WithDetail("exit_code", 1).
				WithDetail("output", out)
		}
	}

	args := cmd.Args
	tool := filepath.Base(cmd.Name)
	if len(args) >= 2 && args[0] == "-jar" {
		tool = strings.TrimSuffix(filepath.Base(args[1]), ".jar")
		args = args[2:]
	}

	var err error
	switch tool {
	case "baksmali":
		err = s.baksmali(args)
	case "smali":
		err = s.smali(args)
	case "apksigner":
		err = s.sign(args)
	case "dx":
		err = s.dx(args)
	case "javac":
		err = s.javac(cmd.Dir, args)
	case "jadx":
		err = s.jadx(args)
	case "git":
		err = s.git(cmd.Dir, args)
	case "zipalign":
		err = s.zipalign(args)
	default:
		err = fmt.Errorf("simulator: unknown tool %q", tool)
	}

	if err != nil {
		return err.Error(), errors.Wrapf(err, errors.ErrToolFailure, "%s failed", line).
			WithDetail("command", line)
	}
	return "", nil
}

// d <dex> -o <out>
func (s *Simulator) baksmali(args []string) error {
	if len(args) != 4 || args[0] != "d" || args[2] != "-o" {
		return fmt.Errorf("bad baksmali args %v", args)
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	pkg := filepath.Join(args[3], "com", "example")
	if err := os.MkdirAll(pkg, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(pkg, "Main.smali"), []byte(".class smali of "+string(data)), 0644)
}

// a <unit> -o <dex>
func (s *Simulator) smali(args []string) error {
	if len(args) != 4 || args[0] != "a" || args[2] != "-o" {
		return fmt.Errorf("bad smali args %v", args)
	}
	if info, err := os.Stat(args[1]); err != nil || !info.IsDir() {
		return fmt.Errorf("unit %s is not a directory", args[1])
	}
	if err := os.MkdirAll(filepath.Dir(args[3]), 0755); err != nil {
		return err
	}
	return os.WriteFile(args[3], []byte("assembled:"+filepath.Base(args[1])), 0644)
}

// sign --ks <ks> --ks-pass pass:<pw> <apk>
func (s *Simulator) sign(args []string) error {
	if len(args) != 6 || args[0] != "sign" || args[1] != "--ks" || args[3] != "--ks-pass" {
		return fmt.Errorf("bad apksigner args %v", args)
	}
	if _, err := os.Stat(args[2]); err != nil {
		return fmt.Errorf("keystore: %w", err)
	}
	apk := args[5]
	if _, err := os.Stat(apk); err != nil {
		return err
	}
	if err := os.WriteFile(apk+".idsig", []byte("v4"), 0644); err != nil {
		return err
	}
	s.mu.Lock()
	s.signed = append(s.signed, apk)
	s.mu.Unlock()
	return nil
}

// --dex --output <dex> <class files...>
func (s *Simulator) dx(args []string) error {
	if len(args) < 4 || args[0] != "--dex" || args[1] != "--output" {
		return fmt.Errorf("bad dx args %v", args)
	}
	return os.WriteFile(args[2], []byte("dx:"+strings.Join(args[3:], ",")), 0644)
}

// --release 8 <files...>, run in dir
func (s *Simulator) javac(dir string, args []string) error {
	if len(args) < 3 || args[0] != "--release" {
		return fmt.Errorf("bad javac args %v", args)
	}
	for _, f := range args[2:] {
		src := f
		if !filepath.IsAbs(src) {
			src = filepath.Join(dir, f)
		}
		if _, err := os.Stat(src); err != nil {
			return err
		}
		class := strings.TrimSuffix(src, ".java") + ".class"
		if err := os.WriteFile(class, []byte("class"), 0644); err != nil {
			return err
		}
	}
	return nil
}

// -e <apk> -d <out>   or   -d <out> <file>
const simulatedManifest = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" android:versionCode="1" android:versionName="1.0" package="com.example">
    <uses-sdk android:minSdkVersion="21" android:targetSdkVersion="33"/>
</manifest>
`

func (s *Simulator) jadx(args []string) error {
	switch {
	case len(args) == 4 && args[0] == "-e" && args[2] == "-d":
		src := filepath.Join(args[3], "app", "src", "main", "java")
		if err := os.MkdirAll(src, 0755); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(src, "Main.java"), []byte("class Main {}"), 0644); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(filepath.Dir(src), "AndroidManifest.xml"), []byte(simulatedManifest), 0644)
	case len(args) == 3 && args[0] == "-d":
		name := strings.TrimSuffix(filepath.Base(args[2]), filepath.Ext(args[2]))
		out := filepath.Join(args[1], "sources", "com", "example")
		if err := os.MkdirAll(out, 0755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(out, name+".java"), []byte("class "+name+" {}"), 0644)
	}
	return fmt.Errorf("bad jadx args %v", args)
}

func (s *Simulator) git(dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("git: no subcommand")
	}
	if args[0] == "init" {
		return os.MkdirAll(filepath.Join(dir, ".git"), 0755)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return fmt.Errorf("not a git repository: %s", dir)
	}
	if args[0] == "commit" {
		return os.WriteFile(filepath.Join(dir, ".git", "COMMIT"), []byte(strings.Join(args[1:], " ")), 0644)
	}
	return nil
}

// -f 4 <in> <out>
func (s *Simulator) zipalign(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("bad zipalign args %v", args)
	}
	data, err := os.ReadFile(args[2])
	if err != nil {
		return err
	}
	return os.WriteFile(args[3], data, 0644)
}

// Tree lists the regular files under dir as slash separated relative paths
func Tree(dir string) []string {
	var out []string
	_ = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(dir, p)
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out
}
