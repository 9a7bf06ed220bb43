// SPDX-License-Identifier: AGPL-3.0-or-later

// Package testutil holds helpers shared by testman's package tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// ScriptedTester is a processor stand-in driven by its fixtures: the first line
// `exit N` sets the exit status and the remaining lines are echoed to stderr.
// Fixtures without an exit line pass.
const ScriptedTester = `#!/bin/sh
# usage: tester -m <mode> <file>
code=$(head -n 1 "$3" | sed -n 's/^exit //p')
tail -n +2 "$3" >&2
exit "${code:-0}"
`

// EmittingTester behaves like ScriptedTester and also writes the sidecar in emit mode.
const EmittingTester = `#!/bin/sh
code=$(head -n 1 "$3" | sed -n 's/^exit //p')
tail -n +2 "$3" >&2
if [ "$2" = emit ] && [ "${code:-0}" = 0 ]; then
  echo '[]' > "${3%.kdl}.json"
fi
exit "${code:-0}"
`

// WriteTester writes an executable processor script into a temp dir and returns its path.
func WriteTester(t testing.TB, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tester")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { //nolint:gosec // test executable
		t.Fatalf("write tester: %v", err)
	}
	return path
}

// WriteFixtures creates name -> content files in dir.
func WriteFixtures(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil { //nolint:gosec // test data
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
}

// Entry is one file of an archive built by Zip.
type Entry struct {
	Name string
	Body string
}

// Zip builds an in-memory zip archive containing entries in order.
func Zip(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.Name, err)
		}
		if _, err := io.WriteString(w, e.Body); err != nil {
			t.Fatalf("zip write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ListDir returns the sorted entry names of dir.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
