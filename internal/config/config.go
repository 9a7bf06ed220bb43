// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config holds the settings shared by every testman component.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/harnesserr"
)

// FileName is the config file looked up in the project root.
const FileName = ".testman.yaml"

// Config is built once at startup and passed to every component.
type Config struct {
	// TestsDir is the curated corpus directory.
	TestsDir string `yaml:"tests_dir"`
	// Tester is the processor executable.
	Tester string `yaml:"tester"`
	// ArchiveURL is where extract mode downloads the upstream corpus.
	ArchiveURL string `yaml:"archive_url"`
	// Marker must appear in an archive entry path for it to be a fixture.
	Marker string `yaml:"marker"`
	// Extension is the fixture file extension, dot included.
	Extension string `yaml:"extension"`
	// StateDir stores the last batch.
	StateDir string `yaml:"state_dir"`
	// FetchTimeout bounds the archive download. Zero disables it.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// NoColor disables ANSI output and strips it from captured output.
	NoColor bool `yaml:"no_color"`
	// Build is the command that builds the processor.
	Build []string `yaml:"build"`
}

// Default returns the settings used when no file or flag overrides them.
func Default() Config {
	return Config{
		TestsDir:     "tests",
		Tester:       "target/debug/tester",
		ArchiveURL:   "https://github.com/kdl-org/kdl/archive/refs/heads/main.zip",
		Marker:       "/input/",
		Extension:    ".kdl",
		StateDir:     ".testman",
		FetchTimeout: 2 * time.Minute,
		Build:        []string{"cargo", "build", "-p", "tester"},
	}
}

// Load reads path over the defaults. An empty path means FileName in root,
// which may be absent.
func Load(root, path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, harnesserr.Config("read config file", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, harnesserr.Config("parse config YAML "+path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.TestsDir == "" {
		return harnesserr.Configf("tests_dir is empty")
	}
	if c.Tester == "" {
		return harnesserr.Configf("tester is empty")
	}
	if c.StateDir == "" {
		return harnesserr.Configf("state_dir is empty")
	}
	if !strings.HasPrefix(c.Extension, ".") {
		return harnesserr.Configf("extension %q must start with a dot", c.Extension)
	}
	if c.FetchTimeout < 0 {
		return harnesserr.Configf("fetch_timeout %s is negative", c.FetchTimeout)
	}
	return nil
}

// Resolve anchors relative paths at root.
func (c *Config) Resolve(root string) {
	c.TestsDir = anchor(root, c.TestsDir)
	c.Tester = anchor(root, c.Tester)
	c.StateDir = anchor(root, c.StateDir)
}

// CheckTester verifies the processor exists and is executable.
func (c *Config) CheckTester() error {
	info, err := os.Stat(c.Tester)
	if err != nil {
		return harnesserr.Launch(fmt.Sprintf("`tester` binary not found at %s", c.Tester), err)
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return harnesserr.Launch(fmt.Sprintf("%s is not an executable file", c.Tester), nil)
	}
	return nil
}

// Matcher selects fixtures from archive entries.
func (c *Config) Matcher() fixture.EntryMatcher {
	return fixture.EntryMatcher{Marker: c.Marker, Extension: c.Extension}
}

func anchor(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
