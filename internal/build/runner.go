// Package build runs the external build command and captures its outcome.
package build

import (
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/conneroisu/vigil/internal/errors"
	"github.com/conneroisu/vigil/internal/logging"
)

// SpawnExitCode is the synthetic exit code reported when the build command
// cannot be started at all (binary missing, permission denied).
const SpawnExitCode = -1

// BuildResult captures the outcome of one build invocation
type BuildResult struct {
	Succeeded bool
	ExitCode  int
	Output    string
	Duration  time.Duration
}

// Runner invokes the configured external build command synchronously
type Runner struct {
	command string
	args    []string
	dir     string
	logger  logging.Logger
}

// NewRunner creates a runner for the given command line and working
// directory. The command line is split on whitespace into argv; there is no
// shell interpretation.
func NewRunner(command, dir string, logger logging.Logger) (*Runner, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("build command is empty")
	}
	if logger == nil {
		logger = logging.NewLogger(nil)
	}
	return &Runner{
		command: fields[0],
		args:    fields[1:],
		dir:     dir,
		logger:  logger.WithComponent("build"),
	}, nil
}

// Command returns the command line the runner was created with
func (r *Runner) Command() string {
	return strings.Join(append([]string{r.command}, r.args...), " ")
}

// Run spawns the build command, blocks until it exits, and reports its exit
// code with stdout and stderr merged into one captured stream. Failure to
// launch at all is reported as a failed result with a synthetic exit code,
// never as an error: a broken build must not take the watch loop down with
// it. Cancelling the context kills the child process.
func (r *Runner) Run(ctx context.Context) BuildResult {
	r.logger.Info(ctx, "build started", "command", r.Command(), "dir", r.dir)

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = r.dir

	start := time.Now()
	output, err := cmd.CombinedOutput()
	result := BuildResult{
		Output:   string(output),
		Duration: time.Since(start),
	}

	if err == nil {
		result.Succeeded = true
		r.logger.Info(ctx, "build succeeded", "duration", result.Duration.String())
		return result
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		// The process never started; there is no captured output, so the
		// launch error stands in for it.
		result.ExitCode = SpawnExitCode
		if result.Output == "" {
			result.Output = err.Error()
		}
	}

	r.logger.Error(ctx, err, "build failed",
		"exit_code", result.ExitCode,
		"duration", result.Duration.String(),
	)
	return result
}

// Err converts a failed result into a BuildError for collection; a
// successful result yields nil.
func (r *Runner) Err(result BuildResult) *errors.BuildError {
	if result.Succeeded {
		return nil
	}
	return &errors.BuildError{
		Command:   r.Command(),
		Dir:       r.dir,
		ExitCode:  result.ExitCode,
		Output:    result.Output,
		Timestamp: time.Now(),
	}
}
