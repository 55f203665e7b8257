// Package tools wraps the external programs rla drives. Every method maps
// to one command line; failures surface as TOOL_FAILURE from the runner.
package tools

import (
	"context"
	"os"

	"github.com/otiai10/copy"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rla/pkg/deps"
	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
	"github.com/arthur-debert/rla/pkg/runner"
	"github.com/arthur-debert/rla/pkg/session"
)

// Toolbox runs tools with the executables and jars of a session
type Toolbox struct {
	sess   *session.Session
	logger zerolog.Logger
}

// New creates a toolbox bound to a session
func New(sess *session.Session) *Toolbox {
	return &Toolbox{sess: sess, logger: logging.GetLogger("tools")}
}

func (t *Toolbox) java(ctx context.Context, dep deps.Dep, args ...string) (string, error) {
	jar, err := t.sess.Dep(dep)
	if err != nil {
		return "", err
	}
	return t.sess.Runner.Run(ctx, runner.Java(t.sess.Settings.Tools.Java, jar, args...))
}

// Baksmali disassembles one dex file into outDir
func (t *Toolbox) Baksmali(ctx context.Context, dex, outDir string) error {
	_, err := t.java(ctx, deps.Baksmali, "d", dex, "-o", outDir)
	return err
}

// Smali assembles a disassembly unit into a dex file
func (t *Toolbox) Smali(ctx context.Context, unitDir, outDex string) error {
	_, err := t.java(ctx, deps.Smali, "a", unitDir, "-o", outDex)
	return err
}

// Dx converts class files, given relative to workDir, into one dex file
func (t *Toolbox) Dx(ctx context.Context, workDir, outDex string, classFiles []string) error {
	jar, err := t.sess.Dep(deps.Dx)
	if err != nil {
		return err
	}
	cmd := runner.Java(t.sess.Settings.Tools.Java, jar, append([]string{"--dex", "--output", outDex}, classFiles...)...)
	cmd.Dir = workDir
	_, err = t.sess.Runner.Run(ctx, cmd)
	return err
}

// Javac compiles java sources for the java 8 target dx understands
func (t *Toolbox) Javac(ctx context.Context, workDir string, files []string) error {
	_, err := t.sess.Runner.Run(ctx, runner.Command{
		Name: t.sess.Settings.Tools.Javac,
		Args: append([]string{"--release", "8"}, files...),
		Dir:  workDir,
	})
	return err
}

// JadxExport decompiles a package into a gradle style source tree
func (t *Toolbox) JadxExport(ctx context.Context, apk, outDir string) error {
	_, err := t.sess.Runner.Run(ctx, runner.Command{
		Name: t.sess.Settings.Tools.Jadx,
		Args: []string{"-e", apk, "-d", outDir},
	})
	return err
}

// JadxDecompile decompiles a single input file into outDir
func (t *Toolbox) JadxDecompile(ctx context.Context, input, outDir string) error {
	_, err := t.sess.Runner.Run(ctx, runner.Command{
		Name: t.sess.Settings.Tools.Jadx,
		Args: []string{"-d", outDir, input},
	})
	return err
}

func (t *Toolbox) git(ctx context.Context, dir string, args ...string) error {
	_, err := t.sess.Runner.Run(ctx, runner.Command{Name: t.sess.Settings.Tools.Git, Args: args, Dir: dir})
	return err
}

// GitInit creates a repository in dir
func (t *Toolbox) GitInit(ctx context.Context, dir string) error {
	return t.git(ctx, dir, "init")
}

// GitCommitAll stages everything in dir and commits it
func (t *Toolbox) GitCommitAll(ctx context.Context, dir, message string) error {
	if err := t.git(ctx, dir, "add", "."); err != nil {
		return err
	}
	return t.git(ctx, dir, "commit", "-m", message)
}

// Zipalign aligns apk in place through a sibling temp file
func (t *Toolbox) Zipalign(ctx context.Context, apk string) error {
	aligned, err := t.sess.TempPath("aligned.apk")
	if err != nil {
		return err
	}
	if _, err := t.sess.Runner.Run(ctx, runner.Command{
		Name: t.sess.Settings.Tools.Zipalign,
		Args: []string{"-f", "4", apk, aligned},
	}); err != nil {
		return err
	}
	return Move(aligned, apk)
}

// ZipalignAvailable reports whether alignment is enabled and installed
func (t *Toolbox) ZipalignAvailable() bool {
	return t.sess.Settings.Signing.Zipalign && runner.LookPath(t.sess.Settings.Tools.Zipalign)
}

// Sign signs apk in place with the debug keystore. apksigner also writes
// a v4 signature beside the package (<apk>.idsig); it is removed.
func (t *Toolbox) Sign(ctx context.Context, apk string) error {
	keystore, err := t.sess.Dep(deps.Keystore)
	if err != nil {
		return err
	}

	if _, err := t.java(ctx, deps.Apksigner,
		"sign", "--ks", keystore, "--ks-pass", "pass:"+t.sess.Settings.Signing.Password, apk); err != nil {
		return err
	}

	idsig := apk + ".idsig"
	if err := os.Remove(idsig); err != nil && !os.IsNotExist(err) {
		t.logger.Warn().Err(err).Str("path", idsig).Msg("Could not remove v4 signature file")
	}
	return nil
}

// Passthrough runs one of the bundled jars with the caller's arguments,
// attached to the terminal.
func (t *Toolbox) Passthrough(ctx context.Context, dep deps.Dep, args []string) error {
	jar, err := t.sess.Dep(dep)
	if err != nil {
		return err
	}
	cmd := runner.Java(t.sess.Settings.Tools.Java, jar, args...)
	cmd.Attach = true
	_, err = t.sess.Runner.Run(ctx, cmd)
	return err
}

// Move renames src to dst, copying across filesystems when a rename is
// not possible.
func Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copy.Copy(src, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot move %s to %s", src, dst)
	}
	if err := os.Remove(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", src)
	}
	return nil
}
