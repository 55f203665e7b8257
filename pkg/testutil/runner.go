package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/arthur-debert/rla/pkg/runner"
)

// Handler answers one command
type Handler func(cmd runner.Command) (string, error)

// FakeRunner implements runner.Runner without spawning processes
type FakeRunner struct {
	Handler Handler

	mu    sync.Mutex
	calls []runner.Command
}

// Run records cmd and delegates to the handler
func (f *FakeRunner) Run(_ context.Context, cmd runner.Command) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.Handler == nil {
		return "", nil
	}
	return f.Handler(cmd)
}

// Calls returns a copy of every recorded command
func (f *FakeRunner) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]runner.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsMatching returns recorded commands whose rendered line contains all
// of the given fragments
func (f *FakeRunner) CallsMatching(fragments ...string) []runner.Command {
	var out []runner.Command
	for _, c := range f.Calls() {
		line := c.String()
		match := true
		for _, frag := range fragments {
			if !strings.Contains(line, frag) {
				match = false
				break
			}
		}
		if match {
			out = append(out, c)
		}
	}
	return out
}
