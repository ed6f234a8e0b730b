package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyFile_Rotates(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	f, err := openDailyFile(dir, func() time.Time { return now })
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("{\"msg\":\"one\"}\n"))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = f.Write([]byte("{\"msg\":\"two\"}\n"))
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "2026-03-01.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "{\"msg\":\"one\"}\n", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "2026-03-02.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "{\"msg\":\"two\"}\n", string(second))

	target, err := os.Readlink(filepath.Join(dir, "latest"))
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02.jsonl", target)
	assert.Equal(t, filepath.Join(dir, "2026-03-02.jsonl"), f.Path())
}

func TestPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"2026-03-01.jsonl", "2026-03-10.jsonl", "2026-03-19.jsonl", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	removed := prune(dir, 14, now)

	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, filepath.Join(dir, "2026-03-01.jsonl"))
	assert.FileExists(t, filepath.Join(dir, "2026-03-10.jsonl"))
	assert.FileExists(t, filepath.Join(dir, "2026-03-19.jsonl"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestPrune_MissingDir(t *testing.T) {
	assert.Zero(t, Prune(filepath.Join(t.TempDir(), "missing"), 7))
}
