// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bartekus/testman/cmd/testman/internal/clierr"
	"github.com/bartekus/testman/internal/archive"
	"github.com/bartekus/testman/internal/config"
	"github.com/bartekus/testman/internal/curator"
	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/invoker"
	"github.com/bartekus/testman/internal/mode"
	"github.com/bartekus/testman/internal/report"
	"github.com/bartekus/testman/internal/runner"
)

// runOptions holds the flags of the root (run) command.
type runOptions struct {
	*rootOptions
	mode   mode.Mode
	build  bool
	failed bool
}

func runTests(cmd *cobra.Command, opts *runOptions, pattern string) error {
	ctx := cmd.Context()

	cfg, root, err := loadConfig(cmd, opts.rootOptions)
	if err != nil {
		return clierr.Fatal("config", err)
	}
	if opts.failed && opts.mode == mode.Extract {
		return clierr.Fatal("usage", harnesserr.Configf("--failed cannot be combined with mode extract"))
	}
	log := newLogger(cmd.ErrOrStderr(), opts.verbose)

	rep := report.New(cmd.OutOrStdout(), report.Options{
		Color:     !cfg.NoColor,
		StripANSI: cfg.NoColor,
	})

	if opts.build {
		rep.Say("Building...")
		if err := invoker.Build(ctx, root, cfg.Build); err != nil {
			return clierr.Fatal("build", err)
		}
	}
	if err := cfg.CheckTester(); err != nil {
		return clierr.Fatal("tester", err)
	}
	log.Debug("using tester", "path", cfg.Tester, "tests", cfg.TestsDir)

	r := runner.NewRunner(invoker.NewExec(cfg.Tester, log), rep, log)

	switch opts.mode {
	case mode.Extract:
		fetcher := archive.NewHTTPFetcher(cfg.FetchTimeout, log)
		res, err := curator.New(cfg, fetcher, r, rep, log).Refresh(ctx)
		if err != nil {
			return clierr.Fatal("extract", err)
		}
		log.Info("corpus refreshed", "dir", res.CorpusDir, "kept", res.Kept, "removed", len(res.Removed))
		return nil
	case mode.Compare, mode.Check, mode.Emit:
		return runBatch(cmd, cfg, opts, r, rep, log, pattern)
	}
	return clierr.Fatal("usage", harnesserr.Configf("unhandled mode %s", opts.mode))
}

func runBatch(cmd *cobra.Command, cfg *config.Config, opts *runOptions, r *runner.Runner, rep *report.Reporter, log *slog.Logger, pattern string) error {
	fixtures, err := fixture.Select(cfg.TestsDir, pattern, cfg.Extension)
	if err != nil {
		return clierr.Fatal("select fixtures", err)
	}

	store := runner.NewStateStore(cfg.StateDir)
	if opts.failed {
		names, err := store.LoadFailedFixtures()
		if err != nil {
			return clierr.Fatal("load last run", harnesserr.IO("read state", err))
		}
		fixtures = fixture.Restrict(fixtures, names)
	}

	batch, err := r.Run(cmd.Context(), fixtures, opts.mode)
	if err != nil {
		return clierr.Fatal("run", err)
	}
	// The stored state only feeds `last` and --failed; losing it must not mask the result.
	if err := store.WriteBatch(batch); err != nil {
		log.Warn("could not store run state", "dir", store.Dir(), "error", err)
	}

	if s := rep.Summarize(batch); !s.OK() {
		return clierr.Silent(s.ExitCode())
	}
	return nil
}
