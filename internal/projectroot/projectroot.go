// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the directory testman resolves relative paths against.
package projectroot

import (
	"os"
	"path/filepath"
)

// Markers identify a project root, checked in order at each level.
var Markers = []string{".testman.yaml", "Cargo.toml"}

// Find walks up from start to the nearest directory holding one of Markers.
// Without a marker anywhere above, start itself is the root.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for dir := abs; ; {
		for _, m := range Markers {
			if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}
