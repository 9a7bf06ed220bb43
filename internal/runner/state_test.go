// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/testman/internal/fixture"
	"github.com/bartekus/testman/internal/mode"
)

func TestStateStore_WriteBatch(t *testing.T) {
	store := NewStateStore(t.TempDir())

	batch := &Batch{
		ID:       "batch-1",
		Mode:     mode.Check,
		Started:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Duration: 1500 * time.Millisecond,
		Failed: []Run{
			{Fixture: fixture.New("tests/b.kdl"), Output: "boom", ExitCode: 1, Duration: 20 * time.Millisecond},
		},
		Passed: []Run{
			{Fixture: fixture.New("tests/a.kdl"), Success: true},
		},
	}
	require.NoError(t, store.WriteBatch(batch))

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "batch-1", last.ID)
	assert.Equal(t, "check", last.Mode)
	assert.Equal(t, StatusFail, last.Status)
	assert.Equal(t, 2, last.Total)
	assert.Equal(t, []string{"a.kdl"}, last.Passed)
	assert.Equal(t, []string{"b.kdl"}, last.Failed)
	assert.Equal(t, int64(1500), last.DurationMS)

	rec, err := store.ReadRun("b.kdl")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, RunRecord{Fixture: "b.kdl", Status: StatusFail, ExitCode: 1, DurationMS: 20, Output: "boom"}, *rec)

	failed, err := store.LoadFailedFixtures()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.kdl"}, failed)
}

func TestStateStore_WriteBatchReplacesPrevious(t *testing.T) {
	store := NewStateStore(t.TempDir())

	require.NoError(t, store.WriteBatch(&Batch{ID: "1", Failed: []Run{{Fixture: fixture.New("old.kdl")}}}))
	require.NoError(t, store.WriteBatch(&Batch{ID: "2", Passed: []Run{{Fixture: fixture.New("new.kdl"), Success: true}}}))

	old, err := store.ReadRun("old.kdl")
	require.NoError(t, err)
	assert.Nil(t, old)

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Equal(t, StatusPass, last.Status)
	assert.Empty(t, last.Failed)
}

func TestStateStore_EmptyAndReset(t *testing.T) {
	store := NewStateStore(t.TempDir())

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	failed, err := store.LoadFailedFixtures()
	require.NoError(t, err)
	assert.Nil(t, failed)

	require.NoError(t, store.WriteBatch(&Batch{ID: "x"}))
	require.NoError(t, store.Reset())

	last, err = store.ReadLastRun()
	require.NoError(t, err)
	assert.Nil(t, last)
}
