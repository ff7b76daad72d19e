package scraper

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_RecordAndReload(t *testing.T) {
	dir := t.TempDir()

	cp, err := LoadCheckpoint(dir, "demo-league-api")
	require.NoError(t, err)
	assert.False(t, cp.IsDone("u14-boys-premier"))

	require.NoError(t, cp.Record("u14-boys-premier", CheckpointEntry{
		Status:    EventStatusDone,
		Matches:   12,
		Timestamp: time.Now(),
	}))
	assert.True(t, cp.IsDone("u14-boys-premier"))

	reloaded, err := LoadCheckpoint(dir, "demo-league-api")
	require.NoError(t, err)
	assert.True(t, reloaded.IsDone("u14-boys-premier"))
	assert.Equal(t, 12, reloaded.Entries["u14-boys-premier"].Matches)
}

func TestCheckpoint_ErrorEntryNotDone(t *testing.T) {
	dir := t.TempDir()

	cp, err := LoadCheckpoint(dir, "demo-tourney-portal")
	require.NoError(t, err)

	require.NoError(t, cp.Record("spring-classic-2026", CheckpointEntry{
		Status:    EventStatusError,
		Timestamp: time.Now(),
		Error:     "timeout",
	}))
	assert.False(t, cp.IsDone("spring-classic-2026"))
}

func TestLoadCheckpoint_MissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	cp, err := LoadCheckpoint(filepath.Join(dir, "nested"), "any-adapter")
	require.NoError(t, err)
	assert.Empty(t, cp.Entries)
}
