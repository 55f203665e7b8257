// Package session holds the per-invocation state shared by the pipelines:
// settings, the process runner, a lazily created scratch directory and the
// counter that keeps temporary names unique.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/rla/pkg/config"
	"github.com/arthur-debert/rla/pkg/deps"
	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
	"github.com/arthur-debert/rla/pkg/runner"
)

// Session is created once per command and passed to the pipelines
type Session struct {
	ID       uuid.UUID
	Settings *config.Settings
	Runner   runner.Runner

	logger zerolog.Logger

	// TempRoot is where the scratch directory is created; empty means the
	// system default.
	TempRoot string

	scratchOnce sync.Once
	scratch     string
	scratchErr  error

	counter atomic.Uint64

	mu       sync.Mutex
	released map[string]string
}

// New creates a session over the real filesystem
func New(settings *config.Settings, r runner.Runner) *Session {
	id := uuid.New()
	return &Session{
		ID:       id,
		Settings: settings,
		Runner:   r,
		logger:   logging.GetLogger("session").With().Str("session", id.String()).Logger(),
		released: make(map[string]string),
	}
}

// Workers is the bound on concurrent tool invocations, 0 for none
func (s *Session) Workers() int {
	if s.Settings == nil {
		return 0
	}
	return s.Settings.Concurrency.Workers
}

// Scratch returns the session scratch directory, creating it on first use
func (s *Session) Scratch() (string, error) {
	s.scratchOnce.Do(func() {
		prefix := fmt.Sprintf("rla-%s-", s.ID.String()[:8])
		s.scratch, s.scratchErr = os.MkdirTemp(s.TempRoot, prefix)
		if s.scratchErr != nil {
			s.scratchErr = errors.Wrap(s.scratchErr, errors.ErrDirCreate, "cannot create scratch directory")
			return
		}
		s.logger.Debug().Str("path", s.scratch).Msg("Scratch directory created")
	})
	return s.scratch, s.scratchErr
}

// TempPath returns a fresh, unused path inside the scratch directory. The
// name is kept as a suffix so tools that care about extensions still work.
func (s *Session) TempPath(name string) (string, error) {
	dir, err := s.Scratch()
	if err != nil {
		return "", err
	}
	n := s.counter.Add(1)
	return filepath.Join(dir, fmt.Sprintf("%d-%s", n, name)), nil
}

// TempDir creates and returns a fresh directory inside the scratch directory
func (s *Session) TempDir(name string) (string, error) {
	p, err := s.TempPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", p)
	}
	return p, nil
}

// Dep releases d into the scratch directory once per session and returns
// its path. Concurrent callers share the first release.
func (s *Session) Dep(d deps.Dep) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.released[d.Name]; ok {
		return p, nil
	}

	dir, err := s.Scratch()
	if err != nil {
		return "", err
	}
	depDir := filepath.Join(dir, "deps")
	if err := os.MkdirAll(depDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", depDir)
	}

	p, err := d.Release(s.Settings, depDir)
	if err != nil {
		return "", err
	}
	s.logger.Debug().Str("dep", d.Name).Str("path", p).Msg("Dependency released")
	s.released[d.Name] = p
	return p, nil
}

// Close removes the scratch directory if one was created
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scratch == "" {
		return nil
	}
	if err := os.RemoveAll(s.scratch); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove %s", s.scratch)
	}
	s.logger.Debug().Str("path", s.scratch).Msg("Scratch directory removed")
	return nil
}
