// Package convert translates single files between smali and java, for
// reading a class as java or for writing a new one in java and dropping
// its smali into a unit.
package convert

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/copy"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
	"github.com/arthur-debert/rla/pkg/session"
	"github.com/arthur-debert/rla/pkg/tools"
)

// Converter runs single file conversions in the session scratch space
type Converter struct {
	sess   *session.Session
	tools  *tools.Toolbox
	logger zerolog.Logger
}

// New creates a Converter for a session
func New(sess *session.Session) *Converter {
	return &Converter{sess: sess, tools: tools.New(sess), logger: logging.GetLogger("convert")}
}

// SmaliToJava decompiles one smali file and writes <name>.java beside it.
// It returns the path of the java file.
func (c *Converter) SmaliToJava(ctx context.Context, smali string) (string, error) {
	src, err := checkInput(smali, ".smali")
	if err != nil {
		return "", err
	}

	out, err := c.sess.TempDir("jadx")
	if err != nil {
		return "", err
	}
	if err := c.tools.JadxDecompile(ctx, src, out); err != nil {
		return "", err
	}

	name := stem(src)
	found, err := findFiles(out, func(base string) bool { return base == name+".java" })
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", errors.Newf(errors.ErrNotFound, "jadx produced no %s.java for %s", name, smali)
	}

	dest := filepath.Join(filepath.Dir(src), name+".java")
	if err := tools.Move(found[0], dest); err != nil {
		return "", err
	}
	c.logger.Info().Str("source", src).Str("java", dest).Msg("Decompiled")
	return dest, nil
}

// JavaToSmali compiles one java file for the java 8 target, converts the
// classes to dex and disassembles them. The smali of the class and of its
// nested classes is written beside the java file; their paths are returned.
func (c *Converter) JavaToSmali(ctx context.Context, java string) ([]string, error) {
	src, err := checkInput(java, ".java")
	if err != nil {
		return nil, err
	}

	work, err := c.sess.TempDir("javac")
	if err != nil {
		return nil, err
	}
	base := filepath.Base(src)
	if err := copy.Copy(src, filepath.Join(work, base)); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot stage %s", src)
	}
	if err := c.tools.Javac(ctx, work, []string{base}); err != nil {
		return nil, err
	}

	classes, err := findFiles(work, func(b string) bool { return strings.HasSuffix(b, ".class") })
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "javac produced no class files for %s", java)
	}
	rel := make([]string, len(classes))
	for i, cls := range classes {
		rel[i], _ = filepath.Rel(work, cls)
	}

	dex := filepath.Join(work, "classes.dex")
	if err := c.tools.Dx(ctx, work, dex, rel); err != nil {
		return nil, err
	}

	smaliDir, err := c.sess.TempDir("smali")
	if err != nil {
		return nil, err
	}
	if err := c.tools.Baksmali(ctx, dex, smaliDir); err != nil {
		return nil, err
	}

	name := stem(src)
	produced, err := findFiles(smaliDir, func(b string) bool {
		return b == name+".smali" || strings.HasPrefix(b, name+"$")
	})
	if err != nil {
		return nil, err
	}
	if len(produced) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no %s.smali produced for %s", name, java)
	}

	var written []string
	for _, p := range produced {
		dest := filepath.Join(filepath.Dir(src), filepath.Base(p))
		if err := tools.Move(p, dest); err != nil {
			return written, err
		}
		written = append(written, dest)
	}
	c.logger.Info().Str("source", src).Strs("smali", written).Msg("Compiled")
	return written, nil
}

func checkInput(path, ext string) (string, error) {
	if filepath.Ext(path) != ext {
		return "", errors.Newf(errors.ErrInvalidInput, "%s is not a %s file", path, ext).
			WithDetail("path", path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", errors.Newf(errors.ErrInvalidInput, "%s is not an existing file", path).
			WithDetail("path", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "bad path %s", path)
	}
	return abs, nil
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// findFiles returns the regular files under dir whose base name matches,
// sorted by path.
func findFiles(dir string, match func(base string) bool) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && match(d.Name()) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot scan %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

