// SPDX-License-Identifier: AGPL-3.0-or-later

package curator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/testman/internal/config"
	"github.com/bartekus/testman/internal/harnesserr"
	"github.com/bartekus/testman/internal/invoker"
	"github.com/bartekus/testman/internal/runner"
	"github.com/bartekus/testman/internal/testutil"
)

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type banners []string

func (b *banners) Say(msg string) { *b = append(*b, msg) }

type harness struct {
	cfg     *config.Config
	fetcher *fakeFetcher
	said    *banners
	curator *Curator
}

func newHarness(t *testing.T, script string, data []byte) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Resolve(t.TempDir())
	cfg.Tester = testutil.WriteTester(t, script)

	log := testutil.Logger()
	h := &harness{cfg: &cfg, fetcher: &fakeFetcher{data: data}, said: &banners{}}
	r := runner.NewRunner(invoker.NewExec(cfg.Tester, log), nil, log)
	h.curator = New(h.cfg, h.fetcher, r, h.said, log)
	return h
}

func upstream(t *testing.T, total int, failing ...int) []byte {
	t.Helper()
	fail := map[int]bool{}
	for _, i := range failing {
		fail[i] = true
	}
	entries := []testutil.Entry{
		{Name: "kdl-main/README.md", Body: "# KDL"},
		{Name: "kdl-main/tests/test_cases/expected_kdl/f00.kdl", Body: "exit 1\n"},
	}
	for i := 0; i < total; i++ {
		body := fmt.Sprintf("node%d\n", i)
		if fail[i] {
			body = "exit 1\nunsupported\n"
		}
		entries = append(entries, testutil.Entry{
			Name: fmt.Sprintf("kdl-main/tests/test_cases/input/f%02d.kdl", i),
			Body: body,
		})
	}
	return testutil.Zip(t, entries...)
}

func stagingDirs(t *testing.T, parent string) []string {
	t.Helper()
	var out []string
	for _, name := range testutil.ListDir(t, parent) {
		if strings.HasPrefix(name, ".testman-staging-") {
			out = append(out, name)
		}
	}
	return out
}

func TestRefresh_RemovesFailingFixtures(t *testing.T) {
	h := newHarness(t, testutil.ScriptedTester, upstream(t, 10, 3, 7))

	res, err := h.curator.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, res.Extracted)
	assert.Equal(t, 8, res.Kept)
	assert.ElementsMatch(t, []string{"f03.kdl", "f07.kdl"}, res.Removed)

	files := testutil.ListDir(t, h.cfg.TestsDir)
	assert.Len(t, files, 8)
	assert.NotContains(t, files, "f03.kdl")
	assert.NotContains(t, files, "f07.kdl")
	assert.Empty(t, stagingDirs(t, filepath.Dir(h.cfg.TestsDir)))

	assert.Equal(t, banners{
		"Fetching archive...", "Unzipping...", "Filtering tests...",
		"Copying tests...", "Cleaning up...", "Done!",
	}, *h.said)
}

func TestRefresh_ReplacesExistingCorpus(t *testing.T) {
	h := newHarness(t, testutil.ScriptedTester, upstream(t, 2))
	testutil.WriteFixtures(t, h.cfg.TestsDir, map[string]string{"stale.kdl": "old"})

	_, err := h.curator.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"f00.kdl", "f01.kdl"}, testutil.ListDir(t, h.cfg.TestsDir))
	info, err := os.Stat(h.cfg.TestsDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestRefresh_KeepsSidecarsOfSurvivors(t *testing.T) {
	h := newHarness(t, testutil.EmittingTester, upstream(t, 3, 1))

	_, err := h.curator.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"f00.json", "f00.kdl", "f02.json", "f02.kdl"}, testutil.ListDir(t, h.cfg.TestsDir))
}

func TestRefresh_InvalidArchiveLeavesCorpusAlone(t *testing.T) {
	h := newHarness(t, testutil.ScriptedTester, []byte("404: Not Found"))
	testutil.WriteFixtures(t, h.cfg.TestsDir, map[string]string{"kept.kdl": "node"})

	_, err := h.curator.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, harnesserr.ErrArchive)

	assert.Equal(t, []string{"kept.kdl"}, testutil.ListDir(t, h.cfg.TestsDir))
	assert.Empty(t, stagingDirs(t, filepath.Dir(h.cfg.TestsDir)))
	assert.NotContains(t, *h.said, "Filtering tests...")
}

func TestRefresh_NetworkErrorTouchesNothing(t *testing.T) {
	h := newHarness(t, testutil.ScriptedTester, nil)
	h.fetcher.err = harnesserr.Network("GET archive", nil)
	testutil.WriteFixtures(t, h.cfg.TestsDir, map[string]string{"kept.kdl": "node"})
	before := testutil.ListDir(t, filepath.Dir(h.cfg.TestsDir))

	_, err := h.curator.Refresh(context.Background())
	assert.ErrorIs(t, err, harnesserr.ErrNetwork)
	assert.Equal(t, 1, h.fetcher.calls)
	assert.Equal(t, before, testutil.ListDir(t, filepath.Dir(h.cfg.TestsDir)))
	assert.Equal(t, []string{"kept.kdl"}, testutil.ListDir(t, h.cfg.TestsDir))
}

func TestRefresh_LaunchErrorAborts(t *testing.T) {
	h := newHarness(t, testutil.ScriptedTester, upstream(t, 2))
	require.NoError(t, os.Remove(h.cfg.Tester))

	_, err := h.curator.Refresh(context.Background())
	assert.ErrorIs(t, err, harnesserr.ErrLaunch)
	assert.Empty(t, stagingDirs(t, filepath.Dir(h.cfg.TestsDir)))
	_, statErr := os.Stat(h.cfg.TestsDir)
	assert.True(t, os.IsNotExist(statErr))
}
