// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bartekus/testman/internal/runner"
)

// WriteTable renders a stored batch, failures first.
func WriteTable(w io.Writer, last *runner.LastRun, records []runner.RunRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Last run %s (%s, %s)", last.ID, last.Mode, formatDuration(last.DurationMS)))

	t.AppendHeader(table.Row{"Fixture", "Status", "Exit", "Duration"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Fixture", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Exit", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
	})

	for _, rec := range records {
		t.AppendRow(table.Row{rec.Fixture, statusString(rec.Status), rec.ExitCode, formatDuration(rec.DurationMS)})
	}

	t.AppendFooter(table.Row{
		"Total", fmt.Sprintf("%d failed / %d", len(last.Failed), last.Total), "", "",
	})
	t.Render()
}

func statusString(s runner.Status) string {
	switch s {
	case runner.StatusPass:
		return "PASS"
	case runner.StatusFail:
		return "FAIL"
	}
	return string(s)
}

func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
