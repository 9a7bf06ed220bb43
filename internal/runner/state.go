// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StateStore handles reading and writing stored batch results.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at the given base directory (e.g. .testman).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

// Dir returns the base directory.
func (s *StateStore) Dir() string { return s.baseDir }

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

func (s *StateStore) runPath(name string) string {
	return filepath.Join(s.baseDir, "fixtures", name+".json")
}

// ReadLastRun loads the last batch summary. No stored batch is (nil, nil).
func (s *StateStore) ReadLastRun() (*LastRun, error) {
	var last LastRun
	ok, err := readJSON(s.lastRunPath(), &last)
	if err != nil || !ok {
		return nil, err
	}
	return &last, nil
}

// ReadRun loads the stored run of one fixture. No stored run is (nil, nil).
func (s *StateStore) ReadRun(name string) (*RunRecord, error) {
	var rec RunRecord
	ok, err := readJSON(s.runPath(name), &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// WriteBatch replaces the stored state with b.
func (s *StateStore) WriteBatch(b *Batch) error {
	if err := os.RemoveAll(filepath.Join(s.baseDir, "fixtures")); err != nil {
		return fmt.Errorf("clearing fixture results: %w", err)
	}
	for _, runs := range [][]Run{b.Failed, b.Passed} {
		for _, r := range runs {
			if err := writeJSON(s.runPath(r.Fixture.Name()), newRunRecord(r)); err != nil {
				return fmt.Errorf("writing result for %s: %w", r.Fixture.Name(), err)
			}
		}
	}
	if err := writeJSON(s.lastRunPath(), newLastRun(b)); err != nil {
		return fmt.Errorf("writing last run: %w", err)
	}
	return nil
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}

// LoadFailedFixtures returns the names of fixtures that failed in the last batch.
func (s *StateStore) LoadFailedFixtures() ([]string, error) {
	last, err := s.ReadLastRun()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}
	return last.Failed, nil
}

func readJSON(path string, v any) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}

func writeJSON(path string, v any) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
