// Package orchestrator runs pipeline tasks in sequential phases. Tasks in a
// phase run concurrently and are always joined; a failed task never cancels
// its siblings. Optional task failures are logged and swallowed, the first
// required failure ends the plan once its phase has drained.
package orchestrator

import (
	"context"
	"time"
)

// Kind says whether a task failure aborts the pipeline
type Kind int

const (
	KindRequired Kind = iota
	KindOptional
)

func (k Kind) String() string {
	if k == KindOptional {
		return "optional"
	}
	return "required"
}

// Func is the body of a task
type Func func(ctx context.Context) error

// Task is a named unit of pipeline work
type Task struct {
	Name string
	Kind Kind
	Run  Func
}

// Required builds a task whose failure aborts the pipeline
func Required(name string, fn Func) Task {
	return Task{Name: name, Kind: KindRequired, Run: fn}
}

// Optional builds a best-effort task
func Optional(name string, fn Func) Task {
	return Task{Name: name, Kind: KindOptional, Run: fn}
}

// Phase is a set of tasks that run concurrently
type Phase struct {
	Name  string
	Tasks []Task
}

// Plan is an ordered list of phases
type Plan struct {
	Name   string
	Phases []Phase
}

// Add appends a phase, skipping empty ones
func (p *Plan) Add(name string, tasks ...Task) *Plan {
	if len(tasks) > 0 {
		p.Phases = append(p.Phases, Phase{Name: name, Tasks: tasks})
	}
	return p
}

// TaskState is the final state of a task in a report
type TaskState string

const (
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
	// TaskWarned is an optional task that failed
	TaskWarned  TaskState = "warned"
	TaskSkipped TaskState = "skipped"
)

// TaskResult records how one task ended
type TaskResult struct {
	Phase    string
	Name     string
	Kind     Kind
	State    TaskState
	Err      error
	Duration time.Duration
}

// Report collects task results in completion order
type Report struct {
	Plan    string
	Results []TaskResult
}

// State returns the state of a named task, or TaskSkipped when it never ran
func (r *Report) State(name string) TaskState {
	for _, res := range r.Results {
		if res.Name == name {
			return res.State
		}
	}
	return TaskSkipped
}
