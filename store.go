package galleria

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a fingerprint record does not exist.
var ErrNotFound = sql.ErrNoRows

// storeFileName is the fingerprint database inside the output root.
// The output writer and the pruner both know to leave it alone.
const storeFileName = ".galleria.db"

// ThumbRecord is the stored fingerprint of one generated thumbnail.
// A thumbnail is valid while its source size and mtime still match;
// records are written only by the worker that performed a generation.
type ThumbRecord struct {
	OutPath     string // thumbnail path relative to the output root
	SourcePath  string
	SourceSize  int64
	SourceMtime int64 // unix nanoseconds
	Width       int   // generated pixel width
	Height      int   // generated pixel height
	GeneratedAt time.Time
}

// Matches reports whether the record still fingerprints img.
func (r ThumbRecord) Matches(img Image) bool {
	return r.SourceSize == img.Size && r.SourceMtime == img.ModTime.UnixNano()
}

// Store wraps a SQLite database holding thumbnail fingerprint records.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and runs schema migrations. Dry-run builds
// open an existing store purely for reading and never create one.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with a busy timeout so a concurrent reader never sees
	// SQLITE_BUSY; synchronous=NORMAL is safe with WAL and avoids an
	// fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewReadOnlyStore opens an existing database for reading only: no
// schema creation, no journal-mode change, no WAL side files. Writes
// through it fail. Dry-run builds use this so the output tree stays
// untouched; immutable is safe there because a dry run is the only
// process touching the output.
func NewReadOnlyStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS thumbnails (
    out_path TEXT PRIMARY KEY,
    source_path TEXT NOT NULL,
    source_size INTEGER NOT NULL,
    source_mtime INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    generated_at TEXT NOT NULL
);
`)
	return err
}

// Get returns the record for the thumbnail at outPath.
func (s *Store) Get(outPath string) (ThumbRecord, error) {
	row := s.db.QueryRow(`SELECT out_path, source_path, source_size, source_mtime, width, height, generated_at FROM thumbnails WHERE out_path = ?`, outPath)
	return scanRecord(row)
}

// List returns all records ordered by output path.
func (s *Store) List() ([]ThumbRecord, error) {
	rows, err := s.db.Query(`SELECT out_path, source_path, source_size, source_mtime, width, height, generated_at FROM thumbnails ORDER BY out_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ThumbRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Put inserts or replaces the record for rec.OutPath.
func (s *Store) Put(rec ThumbRecord) error {
	_, err := s.db.Exec(`
INSERT INTO thumbnails (out_path, source_path, source_size, source_mtime, width, height, generated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(out_path) DO UPDATE SET
    source_path = excluded.source_path,
    source_size = excluded.source_size,
    source_mtime = excluded.source_mtime,
    width = excluded.width,
    height = excluded.height,
    generated_at = excluded.generated_at
`, rec.OutPath, rec.SourcePath, rec.SourceSize, rec.SourceMtime, rec.Width, rec.Height, rec.GeneratedAt.UTC().Format(time.RFC3339))
	return err
}

// Delete removes the record for outPath. Deleting a missing record is
// not an error.
func (s *Store) Delete(outPath string) error {
	_, err := s.db.Exec(`DELETE FROM thumbnails WHERE out_path = ?`, outPath)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (ThumbRecord, error) {
	var rec ThumbRecord
	var generatedAt string
	if err := row.Scan(&rec.OutPath, &rec.SourcePath, &rec.SourceSize, &rec.SourceMtime, &rec.Width, &rec.Height, &generatedAt); err != nil {
		return ThumbRecord{}, err
	}
	t, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		return ThumbRecord{}, fmt.Errorf("parse generated_at for %q: %w", rec.OutPath, err)
	}
	rec.GeneratedAt = t
	return rec, nil
}
