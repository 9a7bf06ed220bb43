// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report prints per-fixture progress and the final batch summary.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/bartekus/testman/internal/runner"
)

const (
	blue  = "\x1b[1;34m"
	green = "\x1b[1;32m"
	red   = "\x1b[1;31m"
	reset = "\x1b[0m"
)

// Options configures a Reporter.
type Options struct {
	// Color enables ANSI colors in harness output.
	Color bool
	// StripANSI removes escape sequences from captured processor output.
	StripANSI bool
}

// Reporter writes harness output. It implements runner.Observer.
type Reporter struct {
	out  io.Writer
	opts Options
}

// New returns a Reporter writing to out.
func New(out io.Writer, opts Options) *Reporter {
	return &Reporter{out: out, opts: opts}
}

// Summary is the outcome of a batch.
type Summary struct {
	Total  int
	Failed int
}

// OK reports whether every run passed.
func (s Summary) OK() bool { return s.Failed == 0 }

// ExitCode is 0 when every run passed and 1 otherwise.
func (s Summary) ExitCode() int {
	if s.OK() {
		return 0
	}
	return 1
}

// RunFinished prints the status line for one run.
func (r *Reporter) RunFinished(run runner.Run) {
	marker := r.paint(green, "PASS")
	if !run.Success {
		marker = r.paint(red, "FAIL")
	}
	_, _ = fmt.Fprintf(r.out, "%s %s\n", r.paint(blue, run.Fixture.Name()), marker)
}

// Say prints a phase banner.
func (r *Reporter) Say(msg string) {
	_, _ = fmt.Fprintln(r.out, r.paint(blue, msg))
}

// Summarize prints failing fixtures with their output, followed by the
// summary line, and returns the batch outcome.
func (r *Reporter) Summarize(b *runner.Batch) Summary {
	s := Summary{Total: b.Total(), Failed: len(b.Failed)}
	if s.OK() {
		_, _ = fmt.Fprintf(r.out, "All %d tests passed!\n", s.Total)
		return s
	}

	failed := append([]runner.Run(nil), b.Failed...)
	sort.Slice(failed, func(i, j int) bool { return failed[i].Fixture.Name() < failed[j].Fixture.Name() })

	_, _ = fmt.Fprintln(r.out, "fails:")
	for _, run := range failed {
		_, _ = fmt.Fprintln(r.out, r.paint(red, run.Fixture.Name()+":"))
		_, _ = fmt.Fprintln(r.out, r.output(run.Output))
		_, _ = fmt.Fprintln(r.out)
	}
	_, _ = fmt.Fprintf(r.out, "%d/%d tests failed.\n", s.Failed, s.Total)
	return s
}

func (r *Reporter) output(s string) string {
	if r.opts.StripANSI {
		s = stripansi.Strip(s)
	}
	return strings.TrimRight(s, "\n")
}

func (r *Reporter) paint(color, s string) string {
	if !r.opts.Color {
		return s
	}
	return color + s + reset
}
