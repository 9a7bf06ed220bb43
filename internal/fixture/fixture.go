// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fixture names the input files testman feeds to the processor and
// selects them from a corpus directory or an archive listing.
package fixture

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bartekus/testman/internal/harnesserr"
)

// SidecarExt is the extension of the expected-output file the processor
// writes next to a fixture in emit mode.
const SidecarExt = ".json"

// Fixture is one input file, identified by its path.
type Fixture struct {
	Path string
}

// New returns the fixture at path.
func New(path string) Fixture {
	return Fixture{Path: filepath.Clean(path)}
}

// Name is the basename, unique within a corpus directory.
func (f Fixture) Name() string { return filepath.Base(f.Path) }

// Sidecar is the path of the processor-owned expected-output file.
func (f Fixture) Sidecar() string {
	return strings.TrimSuffix(f.Path, filepath.Ext(f.Path)) + SidecarExt
}

func (f Fixture) String() string { return f.Name() }

// EntryMatcher selects archive entries that are fixtures.
type EntryMatcher struct {
	// Marker must appear in the entry path, e.g. "/input/".
	Marker string
	// Extension must end the entry path, e.g. ".kdl".
	Extension string
}

// Match reports whether an archive entry path names a fixture.
// Directory entries never match.
func (m EntryMatcher) Match(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	if m.Marker != "" && !strings.Contains(name, m.Marker) {
		return false
	}
	return m.Extension == "" || strings.HasSuffix(name, m.Extension)
}

// Select returns the fixtures in dir whose names match `<prefix>*<ext>`,
// sorted by name. The prefix may contain glob metacharacters.
// A missing directory yields no fixtures.
func Select(dir, prefix, ext string) ([]Fixture, error) {
	pattern := filepath.Join(dir, prefix+"*"+ext)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, harnesserr.Config("fixture pattern "+prefix, err)
	}

	fixtures := make([]Fixture, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		fixtures = append(fixtures, New(m))
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].Path < fixtures[j].Path })
	return fixtures, nil
}

// Dedupe drops repeated paths, keeping the first occurrence.
func Dedupe(fixtures []Fixture) []Fixture {
	seen := make(map[string]bool, len(fixtures))
	out := make([]Fixture, 0, len(fixtures))
	for _, f := range fixtures {
		key := filepath.Clean(f.Path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// Restrict keeps the fixtures whose names are in names.
func Restrict(fixtures []Fixture, names []string) []Fixture {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Fixture
	for _, f := range fixtures {
		if want[f.Name()] {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the basenames of fixtures in order.
func Names(fixtures []Fixture) []string {
	names := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		names = append(names, f.Name())
	}
	return names
}
