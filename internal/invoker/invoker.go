// SPDX-License-Identifier: AGPL-3.0-or-later

// Package invoker launches the external processor for one fixture at a time.
package invoker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/mode"
)

// Outcome is what a finished processor invocation reports.
type Outcome struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Success is true when the processor exited with status zero.
func (o Outcome) Success() bool { return o.ExitCode == 0 }

// Pending is a launched invocation that has not been waited on.
type Pending interface {
	// Wait blocks until the process exits. A nonzero exit is an Outcome, not an error.
	Wait() (Outcome, error)
}

// Invoker starts the processor without waiting for it.
type Invoker interface {
	Start(ctx context.Context, f fixture.Fixture, m mode.Mode) (Pending, error)
}

// Exec runs `<tester> -m <mode> <fixture>` as a child process.
type Exec struct {
	tester string
	log    *slog.Logger
}

// NewExec returns an Invoker for the processor at tester.
func NewExec(tester string, log *slog.Logger) *Exec {
	return &Exec{tester: tester, log: log}
}

// Start launches the processor. Only a process that cannot be started at all
// is an error; that error is an ErrLaunch.
func (e *Exec) Start(ctx context.Context, f fixture.Fixture, m mode.Mode) (Pending, error) {
	if !m.Processor() {
		return nil, harnesserr.Configf("mode %s is not a processor mode", m)
	}

	cmd := exec.CommandContext(ctx, e.tester, "-m", m.String(), f.Path)
	p := &process{cmd: cmd, fixture: f, log: e.log}
	// Same writer for both streams so exec serializes the writes.
	cmd.Stdout = &p.out
	cmd.Stderr = &p.out

	p.start = time.Now()
	if err := cmd.Start(); err != nil {
		return nil, harnesserr.Launch(fmt.Sprintf("start %s for %s", e.tester, f.Name()), err)
	}
	e.log.Debug("processor started", "fixture", f.Name(), "mode", m, "pid", cmd.Process.Pid)
	return p, nil
}

type process struct {
	cmd     *exec.Cmd
	fixture fixture.Fixture
	log     *slog.Logger
	start   time.Time
	out     bytes.Buffer
}

func (p *process) Wait() (Outcome, error) {
	err := p.cmd.Wait()
	o := Outcome{
		Output:   p.out.String(),
		Duration: time.Since(p.start),
	}
	if err == nil {
		return o, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// -1 when the process was killed by a signal.
		o.ExitCode = exitErr.ExitCode()
		p.log.Debug("processor failed", "fixture", p.fixture.Name(), "exit_code", o.ExitCode)
		return o, nil
	}
	return o, harnesserr.IO("collect output of "+p.fixture.Name(), err)
}
