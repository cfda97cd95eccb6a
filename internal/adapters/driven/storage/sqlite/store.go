package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/foldrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Ensure Store and Open implement the ports.
var (
	_ driven.MetadataStore  = (*Store)(nil)
	_ driven.MetadataOpener = Open
)

// Store is the SQLite metadata artifact.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at path, creating the parent
// directory when needed.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return open(path)
}

// OpenStore opens an existing database. A missing file means nothing has
// been indexed yet.
func OpenStore(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotIndexed, path)
		}
		return nil, fmt.Errorf("stat metadata: %w", err)
	}
	return open(path)
}

// Open is a driven.MetadataOpener backed by SQLite files.
func Open(path string, create bool) (driven.MetadataStore, error) {
	var (
		s   *Store
		err error
	)
	if create {
		s, err = NewStore(path)
	} else {
		s, err = OpenStore(path)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ReplaceAll discards the previous build and stores records in order
// inside one transaction.
func (s *Store) ReplaceAll(ctx context.Context, runID string, records []domain.ChunkRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs"); err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, record_count) VALUES (?, ?)", runID, len(records)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks
			(position, run_id, source_path, file, file_type, page, sheet, row_num, chunk_index, tag, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var row sql.NullInt64
		if r.Row != nil {
			row = sql.NullInt64{Int64: int64(*r.Row), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			i, runID, r.SourcePath, r.RelativePath, string(r.FileType),
			r.Page, r.Sheet, row, r.ChunkIndex, r.CitationTag, r.Text,
		); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadAll returns every record in position order.
func (s *Store) LoadAll(ctx context.Context) ([]domain.ChunkRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_path, file, file_type, page, sheet, row_num, chunk_index, tag, text
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	records := []domain.ChunkRecord{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return records, nil
}

// ListFiles returns per-file record counts ordered by path.
func (s *Store) ListFiles(ctx context.Context) ([]domain.FileSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT file, file_type, COUNT(*) FROM chunks GROUP BY file, file_type ORDER BY file
	`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var files []domain.FileSummary
	for rows.Next() {
		var f domain.FileSummary
		var ft string
		if err := rows.Scan(&f.RelativePath, &ft, &f.Records); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.FileType = domain.FileType(ft)
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// RunID returns the identifier of the stored build, or "" when empty.
func (s *Store) RunID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT run_id FROM runs LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query run: %w", err)
	}
	return id, nil
}

func scanRecord(rows *sql.Rows) (domain.ChunkRecord, error) {
	var (
		r   domain.ChunkRecord
		ft  string
		row sql.NullInt64
	)
	if err := rows.Scan(&r.SourcePath, &r.RelativePath, &ft, &r.Page, &r.Sheet, &row,
		&r.ChunkIndex, &r.CitationTag, &r.Text); err != nil {
		return r, fmt.Errorf("scan chunk: %w", err)
	}
	r.FileType = domain.FileType(ft)
	if row.Valid {
		r.Row = domain.RowRef(int(row.Int64))
	}
	return r, nil
}
