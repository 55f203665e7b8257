package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
)

// Orchestrator executes plans
type Orchestrator struct {
	logger zerolog.Logger
}

// New creates an orchestrator logging under the given component name
func New(component string) *Orchestrator {
	return &Orchestrator{logger: logging.GetLogger(component)}
}

// Run executes the phases of plan in order. Every task of a phase is
// joined before the next phase starts. The returned report lists every
// task that ran, including those of the failing phase.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) (*Report, error) {
	report := &Report{Plan: plan.Name}
	done := logging.LogOperationStart(o.logger, plan.Name)
	defer done()

	for _, phase := range plan.Phases {
		results, err := o.runPhase(ctx, phase)
		report.Results = append(report.Results, results...)
		if err != nil {
			o.logger.Debug().Str("phase", phase.Name).Err(err).Msg("Phase failed, stopping plan")
			return report, err
		}
	}

	return report, nil
}

// RunPhase runs a single phase and returns its first required failure
func (o *Orchestrator) RunPhase(ctx context.Context, phase Phase) error {
	_, err := o.runPhase(ctx, phase)
	return err
}

func (o *Orchestrator) runPhase(ctx context.Context, phase Phase) ([]TaskResult, error) {
	var (
		mu      sync.Mutex
		results []TaskResult
		g       errgroup.Group
	)

	for _, task := range phase.Tasks {
		task := task
		g.Go(func() error {
			res := o.runTask(ctx, phase.Name, task)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()

			if res.State == TaskFailed {
				return res.Err
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

func (o *Orchestrator) runTask(ctx context.Context, phase string, task Task) TaskResult {
	logger := o.logger.With().Str("task", task.Name).Str("kind", task.Kind.String()).Logger()
	done := logging.LogOperationStart(logger, task.Name)
	defer done()

	start := time.Now()
	err := task.Run(ctx)
	res := TaskResult{
		Phase:    phase,
		Name:     task.Name,
		Kind:     task.Kind,
		State:    TaskCompleted,
		Duration: time.Since(start),
	}

	if err == nil {
		return res
	}

	if task.Kind == KindOptional {
		logger.Warn().Err(err).Msgf("%s failed, continuing", task.Name)
		res.State = TaskWarned
		res.Err = err
		return res
	}

	logger.Debug().Err(err).Msg("Required task failed")
	res.State = TaskFailed
	res.Err = errors.Wrapf(err, errors.ErrTaskFailed, "%s", task.Name).
		WithDetail("task", task.Name)
	return res
}

// FanOut calls fn once per item, concurrently, with at most limit calls in
// flight (limit <= 0 means no bound). All calls run to completion; the
// first error to occur is returned.
func FanOut[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) error) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(ctx, item)
		})
	}
	return g.Wait()
}
