// Package pack rebuilds a signed package from a project.
//
// The output path is allocated first, then the project's strategy
// assembles the smali units and writes the unsigned package. The result is
// aligned when zipalign is available and finally signed with the debug
// keystore. A failed signature leaves the unsigned package in output/.
package pack

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
	"github.com/arthur-debert/rla/pkg/orchestrator"
	"github.com/arthur-debert/rla/pkg/project"
	"github.com/arthur-debert/rla/pkg/session"
	"github.com/arthur-debert/rla/pkg/tools"
)

// Task names, as they appear in logs and reports
const (
	TaskProduce  = "produce"
	TaskZipalign = "zipalign"
	TaskSign     = "sign"
)

// Project is a loaded project ready to be packed
type Project struct {
	Layout project.Layout
	Config project.Config
	Units  []string
}

// Result describes a finished pack
type Result struct {
	Output   string
	Strategy string
	Report   *orchestrator.Report
}

// Packer runs the pack pipeline
type Packer struct {
	sess   *session.Session
	tools  *tools.Toolbox
	fs     afero.Fs
	orch   *orchestrator.Orchestrator
	logger zerolog.Logger
}

// New creates a Packer for a session
func New(sess *session.Session) *Packer {
	return &Packer{
		sess:   sess,
		tools:  tools.New(sess),
		fs:     afero.NewOsFs(),
		orch:   orchestrator.New("pack"),
		logger: logging.GetLogger("pack"),
	}
}

// Open loads the project rooted at root. An empty root is searched for
// upwards from the working directory.
func (p *Packer) Open(root string) (*Project, error) {
	var layout project.Layout
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read working directory")
		}
		if layout, err = project.FindRoot(p.fs, cwd); err != nil {
			return nil, err
		}
	} else {
		layout = project.NewLayout(root)
	}

	cfg, err := project.LoadConfig(p.fs, layout)
	if err != nil {
		return nil, err
	}
	units, err := project.UnitNames(p.fs, layout)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, errors.Newf(errors.ErrNotFound, "no smali units in %s", layout.SmaliDir())
	}

	return &Project{Layout: layout, Config: cfg, Units: units}, nil
}

// Pack builds output/<n>.apk for the project at root
func (p *Packer) Pack(ctx context.Context, root string) (*Result, error) {
	proj, err := p.Open(root)
	if err != nil {
		return nil, err
	}

	out, err := project.NextOutput(p.fs, proj.Layout)
	if err != nil {
		return nil, err
	}

	strategy := StrategyFor(p.sess, proj.Config)
	p.logger.Info().Str("root", proj.Layout.Root).Str("strategy", strategy.Name()).
		Strs("units", proj.Units).Str("output", out).Msg("Packing")

	plan := p.finishPlan(out)
	plan.Name = "pack"
	plan.Phases = append([]orchestrator.Phase{{
		Name: "assemble",
		Tasks: []orchestrator.Task{orchestrator.Required(TaskProduce, func(ctx context.Context) error {
			return strategy.Produce(ctx, proj, out)
		})},
	}}, plan.Phases...)

	report, err := p.orch.Run(ctx, plan)
	res := &Result{Output: out, Strategy: strategy.Name(), Report: report}
	if err != nil {
		p.discardPartial(out, report)
		return res, err
	}
	return res, nil
}

// Sign aligns and signs an existing package in place
func (p *Packer) Sign(ctx context.Context, apk string) (*orchestrator.Report, error) {
	if _, err := os.Stat(apk); err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "%s does not exist", apk).WithDetail("path", apk)
	}
	plan := p.finishPlan(apk)
	plan.Name = "sign"
	return p.orch.Run(ctx, plan)
}

func (p *Packer) finishPlan(apk string) orchestrator.Plan {
	var plan orchestrator.Plan
	if p.tools.ZipalignAvailable() {
		plan.Add("align", orchestrator.Optional(TaskZipalign, func(ctx context.Context) error {
			return p.tools.Zipalign(ctx, apk)
		}))
	}
	plan.Add("sign", orchestrator.Required(TaskSign, func(ctx context.Context) error {
		return p.tools.Sign(ctx, apk)
	}))
	return plan
}

// discardPartial removes a half written package when production failed.
// After a signing failure the unsigned package is kept.
func (p *Packer) discardPartial(out string, report *orchestrator.Report) {
	if report == nil || report.State(TaskProduce) != orchestrator.TaskFailed {
		return
	}
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		p.logger.Warn().Err(err).Str("path", out).Msg("Could not remove partial output")
	}
}
