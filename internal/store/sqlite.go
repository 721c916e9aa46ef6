// Package store persists chunks in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the pure-Go "sqlite" driver

	"github.com/randalmurphy/doc-chunker/internal/chunk"
)

// DriverName is the SQLite driver to use
const DriverName = "sqlite"

// ErrNotFound is returned when a requested file has not been indexed.
var ErrNotFound = errors.New("not found")

// FileRecord describes one indexed source file.
type FileRecord struct {
	Repo            string
	FilePath        string
	Language        string
	ContentHash     string
	ChunkCount      int
	DocumentedCount int
	IndexedAt       time.Time
}

// Stats counts what a repository has stored.
type Stats struct {
	Files            int `json:"files"`
	Chunks           int `json:"chunks"`
	DocumentedChunks int `json:"documented_chunks"`
}

// SQLiteStore stores chunks keyed by repository, file and content hash.
// Identical content within a file is stored once.
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FileHash returns the content hash recorded for a file.
func (s *SQLiteStore) FileHash(ctx context.Context, repo, filePath string) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT content_hash FROM files WHERE repo = ? AND file_path = ?`,
		repo, filePath).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read file hash: %w", err)
	}
	return hash, nil
}

// ReplaceFile swaps the stored chunks of one file for chunks in a single
// transaction.
func (s *SQLiteStore) ReplaceFile(ctx context.Context, rec FileRecord, chunks []chunk.Chunk) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if rec.IndexedAt.IsZero() {
		rec.IndexedAt = time.Now().UTC()
	}
	rec.ChunkCount, rec.DocumentedCount = len(chunks), 0
	for _, c := range chunks {
		if c.HasDocumentation {
			rec.DocumentedCount++
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO files (repo, file_path, language, content_hash, chunk_count, documented_count, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo, file_path) DO UPDATE SET
			language = excluded.language,
			content_hash = excluded.content_hash,
			chunk_count = excluded.chunk_count,
			documented_count = excluded.documented_count,
			indexed_at = excluded.indexed_at`,
		rec.Repo, rec.FilePath, rec.Language, rec.ContentHash,
		rec.ChunkCount, rec.DocumentedCount, rec.IndexedAt); err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM chunks WHERE repo = ? AND file_path = ?`, rec.Repo, rec.FilePath); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, repo, file_path, content_hash, line_start, line_end, chunk_type,
			name, language, content, has_documentation, confidence, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo, file_path, content_hash) DO UPDATE SET
			confidence = MAX(confidence, excluded.confidence),
			has_documentation = MAX(has_documentation, excluded.has_documentation)`)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		meta, merr := json.Marshal(c.Metadata)
		if merr != nil {
			err = fmt.Errorf("failed to encode metadata for %s: %w", c.ID, merr)
			return err
		}
		if _, err = stmt.ExecContext(ctx,
			c.ID, rec.Repo, rec.FilePath, c.ContentHash(), c.LineStart, c.LineEnd, c.Type,
			c.Name, c.Language, c.Content, c.HasDocumentation, c.Confidence, string(meta)); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// Chunks returns the stored chunks of one file ordered by line.
func (s *SQLiteStore) Chunks(ctx context.Context, repo, filePath string) ([]chunk.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_path, line_start, line_end, chunk_type, name, language, content,
			has_documentation, confidence, metadata
		FROM chunks WHERE repo = ? AND file_path = ?
		ORDER BY line_start`, repo, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []chunk.Chunk
	for rows.Next() {
		var (
			c    chunk.Chunk
			meta string
		)
		if err := rows.Scan(&c.ID, &c.FilePath, &c.LineStart, &c.LineEnd, &c.Type, &c.Name,
			&c.Language, &c.Content, &c.HasDocumentation, &c.Confidence, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &c.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", c.ID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// Files returns the indexed file paths of a repository.
func (s *SQLiteStore) Files(ctx context.Context, repo string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_path FROM files WHERE repo = ? ORDER BY file_path`, repo)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// DeleteFile removes a file and its chunks.
func (s *SQLiteStore) DeleteFile(ctx context.Context, repo, filePath string) error {
	for _, q := range []string{
		`DELETE FROM chunks WHERE repo = ? AND file_path = ?`,
		`DELETE FROM files WHERE repo = ? AND file_path = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, q, repo, filePath); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}
	return nil
}

// Prune removes files of repo that are not in keep and reports how many were
// removed.
func (s *SQLiteStore) Prune(ctx context.Context, repo string, keep []string) (int, error) {
	stored, err := s.Files(ctx, repo)
	if err != nil {
		return 0, err
	}
	live := make(map[string]bool, len(keep))
	for _, p := range keep {
		live[p] = true
	}

	removed := 0
	for _, p := range stored {
		if live[p] {
			continue
		}
		if err := s.DeleteFile(ctx, repo, p); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Stats counts the files and chunks stored for repo.
func (s *SQLiteStore) Stats(ctx context.Context, repo string) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM files WHERE repo = ?`, repo).Scan(&st.Files)
	if err != nil {
		return st, fmt.Errorf("failed to count files: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(has_documentation), 0)
		FROM chunks WHERE repo = ?`, repo).Scan(&st.Chunks, &st.DocumentedChunks)
	if err != nil {
		return st, fmt.Errorf("failed to count chunks: %w", err)
	}
	return st, nil
}
