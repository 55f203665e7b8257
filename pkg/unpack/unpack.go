// Package unpack turns an android package into an editable project.
//
// Phase one runs four tasks side by side: writing the project files,
// extracting and disassembling the dex files, git init and the jadx
// decompile. The last two are best effort. Phase two commits the fresh
// tree when git is enabled.
package unpack

import (
	"context"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/rla/pkg/archive"
	"github.com/arthur-debert/rla/pkg/deps"
	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
	"github.com/arthur-debert/rla/pkg/manifest"
	"github.com/arthur-debert/rla/pkg/orchestrator"
	"github.com/arthur-debert/rla/pkg/project"
	"github.com/arthur-debert/rla/pkg/scaffold"
	"github.com/arthur-debert/rla/pkg/session"
	"github.com/arthur-debert/rla/pkg/tools"
)

// Task names, as they appear in logs and reports
const (
	TaskPrepare   = "prepare-files"
	TaskExtract   = "extract"
	TaskGitInit   = "git-init"
	TaskJadx      = "jadx"
	TaskGitCommit = "git-commit"
)

// Options selects what unpack produces
type Options struct {
	Apk    string
	Config project.Config
}

// Result describes a finished unpack
type Result struct {
	Layout project.Layout
	Units  []string
	Report *orchestrator.Report

	// Manifest is read from the jadx export when it succeeded
	Manifest *manifest.Manifest
}

// Unpacker runs the unpack pipeline
type Unpacker struct {
	sess   *session.Session
	tools  *tools.Toolbox
	fs     afero.Fs
	orch   *orchestrator.Orchestrator
	logger zerolog.Logger
}

// New creates an Unpacker for a session
func New(sess *session.Session) *Unpacker {
	return &Unpacker{
		sess:   sess,
		tools:  tools.New(sess),
		fs:     afero.NewOsFs(),
		orch:   orchestrator.New("unpack"),
		logger: logging.GetLogger("unpack"),
	}
}

// Unpack creates the project directory next to the package. It refuses
// anything not named <name>.apk and an existing destination unless
// Config.ForceOverride is set, in which case the destination is replaced.
func (u *Unpacker) Unpack(ctx context.Context, opts Options) (*Result, error) {
	// a bare ".apk" would make the package's own directory the project root
	if filepath.Ext(opts.Apk) != project.ApkExt || project.RootForApk(filepath.Base(opts.Apk)) == "" {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s is not an apk file", opts.Apk).
			WithDetail("path", opts.Apk)
	}

	apk, err := filepath.Abs(opts.Apk)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "bad path %s", opts.Apk)
	}
	if _, err := os.Stat(apk); err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "%s does not exist", opts.Apk).
			WithDetail("path", opts.Apk)
	}

	layout := project.NewLayout(project.RootForApk(apk))
	if err := u.prepareRoot(layout, opts.Config.ForceOverride); err != nil {
		return nil, err
	}

	u.logger.Info().Str("apk", apk).Str("root", layout.Root).
		Bool("smaliOnly", opts.Config.SmaliOnly).Msg("Unpacking")

	var units []string
	var plan orchestrator.Plan
	plan.Name = "unpack"

	first := []orchestrator.Task{
		orchestrator.Required(TaskPrepare, func(ctx context.Context) error {
			return u.prepareFiles(ctx, layout, apk, opts.Config)
		}),
		orchestrator.Required(TaskExtract, func(ctx context.Context) error {
			var err error
			units, err = u.extract(ctx, layout, apk, opts.Config.SmaliOnly)
			return err
		}),
	}
	if opts.Config.GitEnable {
		first = append(first, orchestrator.Optional(TaskGitInit, func(ctx context.Context) error {
			return u.tools.GitInit(ctx, layout.Root)
		}))
	}
	if opts.Config.JadxEnable {
		first = append(first, orchestrator.Optional(TaskJadx, func(ctx context.Context) error {
			return u.tools.JadxExport(ctx, apk, layout.JadxDir())
		}))
	}
	plan.Add("prepare", first...)

	if opts.Config.GitEnable {
		plan.Add("commit", orchestrator.Optional(TaskGitCommit, func(ctx context.Context) error {
			return u.tools.GitCommitAll(ctx, layout.Root, u.sess.Settings.Git.CommitMessage)
		}))
	}

	report, err := u.orch.Run(ctx, plan)
	if err != nil {
		return &Result{Layout: layout, Report: report}, err
	}

	res := &Result{Layout: layout, Units: units, Report: report}
	if report.State(TaskJadx) == orchestrator.TaskCompleted {
		m, err := manifest.Load(layout.JadxDir())
		if err != nil {
			u.logger.Debug().Err(err).Msg("No manifest in jadx export")
		} else {
			res.Manifest = m
		}
	}
	return res, nil
}

func (u *Unpacker) prepareRoot(layout project.Layout, force bool) error {
	_, err := os.Lstat(layout.Root)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", layout.Root)
	}

	if err == nil {
		if !force {
			return errors.Newf(errors.ErrAlreadyExists,
				"%s already exists, use --force to replace it", layout.Root).
				WithDetail("path", layout.Root)
		}
		u.logger.Info().Str("root", layout.Root).Msg("Removing existing project")
		if err := os.RemoveAll(layout.Root); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", layout.Root)
		}
	}

	if err := os.Mkdir(layout.Root, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", layout.Root)
	}
	return nil
}

func (u *Unpacker) prepareFiles(ctx context.Context, layout project.Layout, apk string, cfg project.Config) error {
	cfgData, err := cfg.Marshal()
	if err != nil {
		return err
	}
	gitignore, err := deps.GitIgnore.Bytes()
	if err != nil {
		return err
	}

	batch := scaffold.New(layout.Root).
		File(layout.GitIgnore(), gitignore, 0644).
		File(layout.ConfigFile(), cfgData, 0644).
		Dir(layout.FridaDir(), 0755)

	for _, d := range deps.Frida {
		data, err := d.Bytes()
		if err != nil {
			return err
		}
		batch.File(filepath.Join(layout.FridaDir(), d.Name), data, 0644)
	}

	if err := batch.Apply(ctx); err != nil {
		return err
	}

	// streamed, packages can be large
	if err := copy.Copy(apk, layout.BackupApk()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot back up %s", apk)
	}
	return nil
}

// extract disassembles every top-level dex of the package into one unit
// per dex. Full mode keeps the whole raw tree for pack; smali-only mode
// pulls just the dex files into scratch space.
func (u *Unpacker) extract(ctx context.Context, layout project.Layout, apk string, smaliOnly bool) ([]string, error) {
	var dexDir string
	if smaliOnly {
		dir, err := u.sess.TempDir("dex")
		if err != nil {
			return nil, err
		}
		if _, err := archive.Expand(apk, dir, archive.TopLevelDex); err != nil {
			return nil, err
		}
		dexDir = dir
	} else {
		if _, err := archive.Expand(apk, layout.UnpackedDir(), archive.All); err != nil {
			return nil, err
		}
		dexDir = layout.UnpackedDir()
	}

	names, err := project.TopLevelDex(u.fs, dexDir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no dex found in %s", apk)
	}

	if err := os.MkdirAll(layout.SmaliDir(), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", layout.SmaliDir())
	}

	// release the jar before fanning out so a missing jar fails once
	if _, err := u.sess.Dep(deps.Baksmali); err != nil {
		return nil, err
	}

	u.logger.Debug().Strs("dex", names).Msg("Disassembling")
	err = orchestrator.FanOut(ctx, u.sess.Workers(), names, func(ctx context.Context, name string) error {
		return u.tools.Baksmali(ctx, filepath.Join(dexDir, name), layout.UnitDir(name))
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}
