// Package runner executes external tools and turns their failures into
// TOOL_FAILURE errors carrying the command line and captured output.
package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
)

// Command describes one external process invocation
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one
	Dir string
	// Attach connects the process to this process's stdio instead of
	// capturing its output.
	Attach bool
}

// String renders the command line for logs and error messages
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"'") {
			parts[i] = "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
		}
	}
	return strings.Join(parts, " ")
}

// Java builds a "java -jar <jar> args..." command
func Java(java, jar string, args ...string) Command {
	return Command{Name: java, Args: append([]string{"-jar", jar}, args...)}
}

// Runner runs a command to completion
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger zerolog.Logger
}

// New creates an ExecRunner
func New() *ExecRunner {
	return &ExecRunner{logger: logging.GetLogger("runner")}
}

// Run executes cmd and returns its combined stdout and stderr. A non-zero
// exit, or a binary that cannot be started, is a TOOL_FAILURE.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	logging.LogCommand(r.logger, cmd.Name, cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var out bytes.Buffer
	if cmd.Attach {
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
	} else {
		c.Stdout = &out
		c.Stderr = &out
	}

	err := c.Run()
	output := out.String()

	if err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}

		r.logger.Debug().
			Err(err).
			Str("command", cmd.String()).
			Int("exitCode", exitCode).
			Str("output", output).
			Msg("Command execution failed")

		return output, errors.Wrapf(err, errors.ErrToolFailure,
			"%s failed\n%s", cmd.String(), strings.TrimSpace(output)).
			WithDetail("command", cmd.String()).
			WithDetail("exit_code", exitCode).
			WithDetail("output", output)
	}

	r.logger.Trace().
		Str("command", cmd.String()).
		Str("output", output).
		Msg("Command executed successfully")

	return output, nil
}

// LookPath reports whether an executable can be found
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
