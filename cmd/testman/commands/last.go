// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/testman/cmd/testman/internal/clierr"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/report"
	"github.com/bartekus/testman/internal/runner"
)

func newLastCmd(opts *rootOptions) *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the results of the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return clierr.Fatal("config", err)
			}
			store := runner.NewStateStore(cfg.StateDir)
			out := cmd.OutOrStdout()

			if show != "" {
				rec, err := store.ReadRun(show)
				if err != nil {
					return clierr.Fatal("read state", harnesserr.IO("read "+show, err))
				}
				if rec == nil {
					return clierr.Newf(clierr.TestFailure, "no stored run for %s", show)
				}
				_, _ = fmt.Fprintf(out, "%s: %s (exit %d)\n", rec.Fixture, strings.ToUpper(string(rec.Status)), rec.ExitCode)
				if rec.Output != "" {
					_, _ = fmt.Fprintln(out, strings.TrimRight(rec.Output, "\n"))
				}
				return nil
			}

			last, err := store.ReadLastRun()
			if err != nil {
				return clierr.Fatal("read state", harnesserr.IO("read last run", err))
			}
			if last == nil {
				_, _ = fmt.Fprintln(out, "No run state found.")
				return nil
			}

			var records []runner.RunRecord
			for _, name := range append(append([]string{}, last.Failed...), last.Passed...) {
				rec, err := store.ReadRun(name)
				if err != nil {
					return clierr.Fatal("read state", harnesserr.IO("read "+name, err))
				}
				if rec != nil {
					records = append(records, *rec)
				}
			}
			report.WriteTable(out, last, records)
			return nil
		},
	}
	cmd.Flags().StringVar(&show, "show", "", "print the captured output of one fixture")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear stored run state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, opts)
			if err != nil {
				return clierr.Fatal("config", err)
			}
			if err := runner.NewStateStore(cfg.StateDir).Reset(); err != nil {
				return clierr.Fatal("reset", harnesserr.IO("remove "+cfg.StateDir, err))
			}
			return nil
		},
	}
}
