// SPDX-License-Identifier: AGPL-3.0-or-later

package projectroot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[workspace]\n"), 0o644))
	nested := filepath.Join(root, "tester", "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindPrefersNearestMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), nil, 0o644))
	sub := filepath.Join(root, "harness")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, ".testman.yaml"), nil, 0o644))

	got, err := Find(sub)
	require.NoError(t, err)
	assert.Equal(t, sub, got)
}
