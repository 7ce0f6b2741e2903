package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// DropBatch is one drop gesture: the ordered paths that arrived together.
type DropBatch struct {
	BatchID   string    `json:"batchId"`
	Paths     []string  `json:"paths"`
	DroppedAt time.Time `json:"droppedAt"`
}

// HistoryStore persists handled drops in a local sqlite database.
// Timestamps are stored as unix nanoseconds.
type HistoryStore struct {
	db *sql.DB
}

// historyDBPath returns the sqlite file path under the XDG state dir.
func historyDBPath() string {
	dir := filepath.Join(xdg.StateHome, "dropdock")
	os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}

// OpenHistory opens (creating if needed) the history database and prunes
// entries older than retentionDays. retentionDays <= 0 disables pruning.
func OpenHistory(retentionDays int) (*HistoryStore, error) {
	return openHistoryAt(historyDBPath(), retentionDays)
}

func openHistoryAt(path string, retentionDays int) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS drops (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			batch_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			path_key BLOB NOT NULL,
			dropped_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_drops_batch ON drops(batch_id, seq);
		CREATE INDEX IF NOT EXISTS idx_drops_time ON drops(dropped_at DESC);
		CREATE INDEX IF NOT EXISTS idx_drops_key ON drops(path_key);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	if retentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -retentionDays).UnixNano()
		if _, err := db.Exec("DELETE FROM drops WHERE dropped_at < ?", cutoff); err != nil {
			Log.Error("history prune failed", "error", err)
		}
	}

	// WAL for concurrent reads while a batch is being written
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		Log.Error("history WAL mode failed", "error", err)
	}

	return &HistoryStore{db: db}, nil
}

// pathKey returns a stable dedupe key for a path.
func pathKey(path string) []byte {
	sum := blake2b.Sum256([]byte(path))
	return sum[:]
}

// RecordBatch stores one drop gesture and returns it with its assigned
// batch id and timestamp.
func (s *HistoryStore) RecordBatch(paths []string) (DropBatch, error) {
	batch := DropBatch{
		BatchID:   uuid.NewString(),
		Paths:     paths,
		DroppedAt: time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return DropBatch{}, err
	}
	for i, p := range paths {
		_, err := tx.Exec(
			"INSERT INTO drops (batch_id, seq, path, path_key, dropped_at) VALUES (?, ?, ?, ?, ?)",
			batch.BatchID, i, p, pathKey(p), batch.DroppedAt.UnixNano(),
		)
		if err != nil {
			tx.Rollback()
			return DropBatch{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return DropBatch{}, err
	}
	return batch, nil
}

// Recent returns up to limit most recent batches, newest first, each
// with its paths in drop order.
func (s *HistoryStore) Recent(limit int) ([]DropBatch, error) {
	rows, err := s.db.Query(`
		SELECT d.batch_id, d.path, d.dropped_at
		FROM drops d
		JOIN (
			SELECT batch_id, MAX(dropped_at) AS t
			FROM drops GROUP BY batch_id
			ORDER BY t DESC LIMIT ?
		) b ON b.batch_id = d.batch_id
		ORDER BY b.t DESC, d.batch_id, d.seq`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []DropBatch
	index := make(map[string]int)
	for rows.Next() {
		var id, path string
		var at int64
		if err := rows.Scan(&id, &path, &at); err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			index[id] = len(batches)
			batches = append(batches, DropBatch{BatchID: id, DroppedAt: time.Unix(0, at).UTC()})
			i = len(batches) - 1
		}
		batches[i].Paths = append(batches[i].Paths, path)
	}
	return batches, rows.Err()
}

// TimesDropped returns how often a path has been dropped, matched by its
// dedupe key.
func (s *HistoryStore) TimesDropped(path string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM drops WHERE path_key = ?", pathKey(path)).Scan(&n)
	return n, err
}

// Clear removes all history.
func (s *HistoryStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM drops")
	return err
}

// Close closes the underlying database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
