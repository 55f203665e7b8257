package pack

import (
	"context"
	"path/filepath"

	"github.com/agnivade/levenshtein"
	"github.com/otiai10/copy"
	"github.com/spf13/afero"

	"github.com/arthur-debert/rla/pkg/archive"
	"github.com/arthur-debert/rla/pkg/deps"
	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/orchestrator"
	"github.com/arthur-debert/rla/pkg/project"
	"github.com/arthur-debert/rla/pkg/session"
	"github.com/arthur-debert/rla/pkg/tools"
)

// Strategy builds the unsigned output package of a project
type Strategy interface {
	Name() string
	Produce(ctx context.Context, p *Project, out string) error
}

// StrategyFor picks the strategy matching how the project was unpacked
func StrategyFor(sess *session.Session, cfg project.Config) Strategy {
	a := assembler{sess: sess, tools: tools.New(sess)}
	if cfg.SmaliOnly {
		return &SmaliOnlyStrategy{assembler: a}
	}
	return &FullStrategy{assembler: a}
}

type assembler struct {
	sess  *session.Session
	tools *tools.Toolbox
}

// assemble turns every unit into <scratch>/<unit> concurrently and returns
// the directory holding the dex files. A failing unit does not stop the
// others, but the first failure is returned once all are done.
func (a assembler) assemble(ctx context.Context, p *Project) (string, error) {
	dir, err := a.sess.TempDir("dex")
	if err != nil {
		return "", err
	}

	if _, err := a.sess.Dep(deps.Smali); err != nil {
		return "", err
	}

	err = orchestrator.FanOut(ctx, a.sess.Workers(), p.Units, func(ctx context.Context, unit string) error {
		return a.tools.Smali(ctx, p.Layout.UnitDir(unit), filepath.Join(dir, unit))
	})
	if err != nil {
		return "", err
	}
	return dir, nil
}

// SmaliOnlyStrategy splices the assembled dex files into a copy of the
// original package. Untouched entries are carried over as is.
type SmaliOnlyStrategy struct {
	assembler
}

func (s *SmaliOnlyStrategy) Name() string { return "smali-only" }

func (s *SmaliOnlyStrategy) Produce(ctx context.Context, p *Project, out string) error {
	dexDir, err := s.assemble(ctx, p)
	if err != nil {
		return err
	}

	if err := copy.Copy(p.Layout.BackupApk(), out); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy %s to %s", p.Layout.BackupApk(), out)
	}
	return archive.Update(out, dexDir, p.Units)
}

// FullStrategy writes the assembled dex files over the raw tree and
// compresses the whole tree, reusing the compression method of each entry
// in the original package.
type FullStrategy struct {
	assembler
}

func (s *FullStrategy) Name() string { return "full" }

func (s *FullStrategy) Produce(ctx context.Context, p *Project, out string) error {
	dexDir, err := s.assemble(ctx, p)
	if err != nil {
		return err
	}

	if err := s.checkMapping(p); err != nil {
		return err
	}

	for _, unit := range p.Units {
		if err := copy.Copy(filepath.Join(dexDir, unit), p.Layout.UnpackedDex(unit)); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot update %s", p.Layout.UnpackedDex(unit))
		}
	}

	methods, err := archive.Methods(p.Layout.BackupApk())
	if err != nil {
		return err
	}
	return archive.Compress(p.Layout.UnpackedDir(), out, methods)
}

// checkMapping verifies every unit has a dex of the same name in the raw
// tree before anything there is overwritten.
func (s *FullStrategy) checkMapping(p *Project) error {
	existing, err := project.TopLevelDex(afero.NewOsFs(), p.Layout.UnpackedDir())
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}

	for _, unit := range p.Units {
		if known[unit] {
			continue
		}
		err := errors.Newf(errors.ErrMappingMismatch,
			"%s has no counterpart in %s", unit, project.UnpackedDir).
			WithDetail("unit", unit)
		if hint := closest(unit, existing); hint != "" {
			err = err.WithDetail("closest", hint)
			err.Message += ", did you mean " + hint + "?"
		}
		return err
	}
	return nil
}

func closest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
