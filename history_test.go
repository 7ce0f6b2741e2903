package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Tests never write to the real log file.
	Log = slog.New(slog.DiscardHandler)
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	s, err := openHistoryAt(filepath.Join(t.TempDir(), "history.db"), 30)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordBatchRoundTrip(t *testing.T) {
	s := newTestStore(t)

	paths := []string{"/home/u/report.pdf", "/home/u/photo.jpg"}
	batch, err := s.RecordBatch(paths)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, paths, batch.Paths)

	recent, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, batch.BatchID, recent[0].BatchID)
	assert.Equal(t, paths, recent[0].Paths)
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []string{"one", "two", "three"} {
		_, err := s.RecordBatch([]string{p})
		require.NoError(t, err)
	}

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, []string{"three"}, recent[0].Paths)
	assert.Equal(t, []string{"two"}, recent[1].Paths)
}

func TestRecentPreservesPathOrderWithinBatch(t *testing.T) {
	s := newTestStore(t)

	paths := []string{"z.txt", "a.txt", "m.txt"}
	_, err := s.RecordBatch(paths)
	require.NoError(t, err)

	recent, err := s.Recent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, paths, recent[0].Paths)
}

func TestTimesDropped(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RecordBatch([]string{"/tmp/a", "/tmp/b"})
	require.NoError(t, err)
	_, err = s.RecordBatch([]string{"/tmp/a"})
	require.NoError(t, err)

	n, err := s.TimesDropped("/tmp/a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.TimesDropped("/tmp/never")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPruneOnOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	s, err := openHistoryAt(dbPath, 30)
	require.NoError(t, err)
	_, err = s.RecordBatch([]string{"/tmp/recent"})
	require.NoError(t, err)
	old := time.Now().AddDate(0, 0, -90).UnixNano()
	_, err = s.db.Exec(
		"INSERT INTO drops (batch_id, seq, path, path_key, dropped_at) VALUES (?, 0, ?, ?, ?)",
		"old-batch", "/tmp/old", pathKey("/tmp/old"), old,
	)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = openHistoryAt(dbPath, 30)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.TimesDropped("/tmp/old")
	require.NoError(t, err)
	assert.Zero(t, n, "entry older than retention should be pruned")

	n, err = s.TimesDropped("/tmp/recent")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RecordBatch([]string{"/tmp/a"})
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	recent, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestPathKeyStable(t *testing.T) {
	assert.Equal(t, pathKey("/tmp/a"), pathKey("/tmp/a"))
	assert.NotEqual(t, pathKey("/tmp/a"), pathKey("/tmp/b"))
	assert.Len(t, pathKey("/tmp/a"), 32)
}
