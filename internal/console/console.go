// Package console prints vigil's operator-facing status lines: change
// batches, build results, and server state. Structured logs carry the same
// events; this output exists for the human sitting at the terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/conneroisu/vigil/internal/build"
	"github.com/conneroisu/vigil/internal/errors"
	"github.com/conneroisu/vigil/internal/watcher"
)

// Reporter writes human-readable status lines
type Reporter struct {
	out io.Writer

	ok   *color.Color
	fail *color.Color
	note *color.Color
}

// NewReporter creates a reporter writing to stdout
func NewReporter() *Reporter {
	return NewReporterTo(os.Stdout)
}

// NewReporterTo creates a reporter writing to the given writer
func NewReporterTo(out io.Writer) *Reporter {
	return &Reporter{
		out:  out,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed, color.Bold),
		note: color.New(color.FgCyan),
	}
}

// Changes reports one detected change batch
func (r *Reporter) Changes(events []watcher.ChangeEvent) {
	if len(events) == 0 {
		return
	}
	r.note.Fprintf(r.out, "%d file(s) changed:\n", len(events))
	for _, event := range events {
		fmt.Fprintf(r.out, "  %s %s\n", event.Type, event.Path)
	}
}

// BuildStarted reports the start of a build
func (r *Reporter) BuildStarted(command string) {
	r.note.Fprintf(r.out, "building: %s\n", command)
}

// BuildResult reports a finished build. Captured output is printed on
// failure so compiler and tooling errors reach the operator.
func (r *Reporter) BuildResult(result build.BuildResult) {
	if result.Succeeded {
		r.ok.Fprintf(r.out, "build ok (%s)\n", result.Duration.Round(time.Millisecond))
		return
	}
	r.fail.Fprintf(r.out, "build failed (exit %d)\n", result.ExitCode)
	if output := strings.TrimSpace(result.Output); output != "" {
		fmt.Fprintln(r.out, output)
	}
}

// LastBuildFailure reminds the operator at shutdown when the most recent
// build did not succeed. A nil error prints nothing.
func (r *Reporter) LastBuildFailure(buildErr *errors.BuildError) {
	if buildErr == nil {
		return
	}
	r.fail.Fprintf(r.out, "last build failed (exit %d): %s\n", buildErr.ExitCode, buildErr.Command)
}

// Serving reports the preview server's address
func (r *Reporter) Serving(addr, root string) {
	r.ok.Fprintf(r.out, "serving %s at http://%s\n", root, addr)
}

// Stopping reports shutdown
func (r *Reporter) Stopping() {
	r.note.Fprintln(r.out, "shutting down")
}
