// SPDX-License-Identifier: AGPL-3.0-or-later

// Package curator refreshes the fixture corpus from the upstream archive,
// keeping only fixtures the processor can currently emit.
package curator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bartekus/testman/internal/archive"
	"github.com/bartekus/testman/internal/config"
	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/mode"
	"github.com/bartekus/testman/internal/runner"
)

// Announcer prints phase banners.
type Announcer interface {
	Say(msg string)
}

// Result describes a finished refresh.
type Result struct {
	Extracted int
	Removed   []string
	Kept      int
	CorpusDir string
}

// Curator runs the fetch, extract, filter, install cycle.
type Curator struct {
	cfg     *config.Config
	fetcher archive.Fetcher
	runner  *runner.Runner
	say     Announcer
	log     *slog.Logger
}

// New returns a Curator. The runner should report to the same output as say.
func New(cfg *config.Config, fetcher archive.Fetcher, r *runner.Runner, say Announcer, log *slog.Logger) *Curator {
	return &Curator{
		cfg:     cfg,
		fetcher: fetcher,
		runner:  r,
		say:     say,
		log:     log,
	}
}

// Refresh replaces the corpus with the upstream fixtures that pass emit mode.
//
// Everything happens in a staging directory next to the corpus; the existing
// corpus is only touched once filtering is complete. The final remove and
// rename are not atomic together: a crash between them leaves no corpus.
func (c *Curator) Refresh(ctx context.Context) (*Result, error) {
	c.say.Say("Fetching archive...")
	data, err := c.fetcher.Fetch(ctx, c.cfg.ArchiveURL)
	if err != nil {
		return nil, err
	}

	parent := filepath.Dir(c.cfg.TestsDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, harnesserr.IO("create "+parent, err)
	}
	staging, err := os.MkdirTemp(parent, ".testman-staging-")
	if err != nil {
		return nil, harnesserr.IO("create staging directory", err)
	}
	installed := false
	defer func() {
		if !installed {
			_ = os.RemoveAll(staging)
		}
	}()
	c.log.Debug("staging corpus", "dir", staging)

	c.say.Say("Unzipping...")
	extracted, err := archive.Extract(data, c.cfg.Matcher(), staging)
	if err != nil {
		return nil, err
	}

	c.say.Say("Filtering tests...")
	batch, err := c.runner.Run(ctx, extracted, mode.Emit)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Extracted: len(extracted),
		Kept:      len(batch.Passed),
		CorpusDir: c.cfg.TestsDir,
	}
	for _, run := range batch.Failed {
		if err := removeFixture(run.Fixture); err != nil {
			return nil, err
		}
		res.Removed = append(res.Removed, run.Fixture.Name())
	}
	c.log.Debug("corpus filtered", "extracted", res.Extracted, "removed", len(res.Removed))

	c.say.Say("Copying tests...")
	if err := os.Chmod(staging, 0o755); err != nil {
		return nil, harnesserr.IO("chmod "+staging, err)
	}
	if err := os.RemoveAll(c.cfg.TestsDir); err != nil {
		return nil, harnesserr.IO("remove old corpus", err)
	}
	if err := os.Rename(staging, c.cfg.TestsDir); err != nil {
		return nil, harnesserr.IO("install corpus", err)
	}
	installed = true

	c.say.Say("Cleaning up...")
	c.say.Say("Done!")
	return res, nil
}

// removeFixture deletes a fixture and any sidecar the processor left beside it.
func removeFixture(f fixture.Fixture) error {
	if err := os.Remove(f.Path); err != nil {
		return harnesserr.IO("remove "+f.Name(), err)
	}
	if err := os.Remove(f.Sidecar()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return harnesserr.IO("remove sidecar of "+f.Name(), err)
	}
	return nil
}
