// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/testman/internal/config"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/projectroot"
)

// loadConfig builds the configuration once: defaults, then the config file,
// then explicitly set flags. Relative paths resolve against the project root,
// which is also returned.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", harnesserr.IO("get working directory", err)
	}
	root, err := projectroot.Find(wd)
	if err != nil {
		return nil, "", harnesserr.IO("find project root", err)
	}

	cfg, err := config.Load(root, opts.configPath)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	if flags.Changed("tests-dir") {
		cfg.TestsDir = opts.testsDir
	}
	if flags.Changed("tester") {
		cfg.Tester = opts.tester
	}
	if flags.Changed("state-dir") {
		cfg.StateDir = opts.stateDir
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.noColor
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	cfg.Resolve(root)
	return &cfg, root, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
