// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"time"

	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/mode"
)

// Status represents the outcome of a single run.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Run is one processor execution against one fixture. Immutable once produced.
type Run struct {
	Fixture  fixture.Fixture
	Output   string
	Success  bool
	ExitCode int
	Duration time.Duration
}

// Status maps Success to a Status.
func (r Run) Status() Status {
	if r.Success {
		return StatusPass
	}
	return StatusFail
}

// Batch is every run produced by one Runner.Run call.
// Failed and Passed hold runs in completion order.
type Batch struct {
	ID       string
	Mode     mode.Mode
	Started  time.Time
	Duration time.Duration
	Failed   []Run
	Passed   []Run
}

// Total is the number of runs in the batch.
func (b *Batch) Total() int { return len(b.Failed) + len(b.Passed) }

// OK reports whether no run failed.
func (b *Batch) OK() bool { return len(b.Failed) == 0 }

// RunRecord is one stored run.
// Matches <state-dir>/fixtures/<fixture>.json schema.
type RunRecord struct {
	Fixture    string `json:"fixture"`
	Status     Status `json:"status"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Output     string `json:"output,omitempty"`
}

// LastRun summarizes the most recent stored batch.
// Matches <state-dir>/last-run.json schema.
type LastRun struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Status     Status    `json:"status"`
	Total      int       `json:"total"`
	Passed     []string  `json:"passed"`
	Failed     []string  `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

func newRunRecord(r Run) RunRecord {
	return RunRecord{
		Fixture:    r.Fixture.Name(),
		Status:     r.Status(),
		ExitCode:   r.ExitCode,
		DurationMS: r.Duration.Milliseconds(),
		Output:     r.Output,
	}
}

func newLastRun(b *Batch) LastRun {
	last := LastRun{
		ID:         b.ID,
		Mode:       b.Mode.String(),
		Status:     StatusPass,
		Total:      b.Total(),
		Passed:     runNames(b.Passed),
		Failed:     runNames(b.Failed),
		StartedAt:  b.Started.UTC(),
		DurationMS: b.Duration.Milliseconds(),
	}
	if !b.OK() {
		last.Status = StatusFail
	}
	return last
}

func runNames(runs []Run) []string {
	names := make([]string, 0, len(runs))
	for _, r := range runs {
		names = append(names, r.Fixture.Name())
	}
	return names
}
