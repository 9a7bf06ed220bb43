// SPDX-License-Identifier: AGPL-3.0-or-later

/*
testman - conformance test harness for the KDL tester.
It pulls the upstream KDL fixture corpus, curates it down to what the tester can
currently emit, and runs the tester over the corpus in parallel.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/testman/cmd/testman/internal/clierr"
	"github.com/bartekus/testman/internal/mode"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
	testsDir   string
	tester     string
	stateDir   string
	noColor    bool
	verbose    bool
}

// NewRootCmd constructs the testman root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("TESTMAN_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	opts := &rootOptions{}
	run := &runOptions{rootOptions: opts, mode: mode.Default}

	cmd := &cobra.Command{
		Use:   "testman [pattern]",
		Short: "testman - run the KDL tester over the fixture corpus",
		Long: `Runs the tester against every fixture in the corpus in parallel and reports failures.

pattern restricts the run to fixtures whose names start with it.
Mode extract refreshes the corpus from the upstream archive instead, keeping
only fixtures the tester can emit.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return clierr.Wrap(clierr.RuntimeErr, "usage", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}
			return runTests(cmd, run, pattern)
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierr.Wrap(clierr.RuntimeErr, "invalid flags", err)
	})

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default .testman.yaml in the project root, if present)")
	pf.StringVar(&opts.testsDir, "tests-dir", "", "fixture corpus directory")
	pf.StringVar(&opts.tester, "tester", "", "path to the tester executable")
	pf.StringVar(&opts.stateDir, "state-dir", "", "directory to store run state")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colors and strip them from tester output")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	f := cmd.Flags()
	f.VarP(&run.mode, "mode", "m", "verification mode ("+mode.Names()+")")
	f.BoolVar(&run.build, "build", false, "build the tester before running")
	f.BoolVar(&run.failed, "failed", false, "only rerun fixtures that failed in the last run")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of testman",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "testman version %s\n", version)
		},
	})
	cmd.AddCommand(newLastCmd(opts))
	cmd.AddCommand(newResetCmd(opts))

	return cmd
}
