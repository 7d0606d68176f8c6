package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"

	"rootforge/internal/domain"
	"rootforge/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// ErrItemNotFound is returned by FirstItem when the catalog has no entry for a root
var ErrItemNotFound = errors.New("no catalog item for root")

// Archive implements ports.Archive on a single SQLite database. File content
// lives in the blobs table, deduplicated by blake3 digest and zstd-compressed;
// a file's storage offset is the id of its blob.
type Archive struct {
	db     *sql.DB
	dbPath string
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// Ensure Archive implements the archive and catalog ports
var (
	_ ports.Archive     = (*Archive)(nil)
	_ ports.ItemCatalog = (*Archive)(nil)
)

// NewArchive creates a new, unopened archive
func NewArchive() *Archive {
	return &Archive{}
}

// Open opens or creates the archive database at dbPath
func (a *Archive) Open(dbPath string) error {
	// Expand ~ in path
	if len(dbPath) > 0 && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}
	a.dbPath = dbPath

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS blobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			digest BLOB NOT NULL UNIQUE,
			size INTEGER NOT NULL,
			data BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			partition TEXT NOT NULL,
			offset INTEGER NOT NULL REFERENCES blobs(id)
		);
		CREATE TABLE IF NOT EXISTS mods (
			path TEXT PRIMARY KEY,
			mod_offset INTEGER NOT NULL,
			original_offset INTEGER NOT NULL,
			item_name TEXT NOT NULL DEFAULT '',
			item_category TEXT NOT NULL DEFAULT '',
			source_application TEXT NOT NULL DEFAULT '',
			mod_pack TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS partition_locks (
			partition TEXT PRIMARY KEY,
			holder TEXT NOT NULL,
			acquired_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS items (
			root TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			PRIMARY KEY (root, name)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_files_partition ON files(partition);
		CREATE INDEX IF NOT EXISTS idx_files_offset ON files(offset);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	if a.enc, err = zstd.NewWriter(nil); err != nil {
		db.Close()
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if a.dec, err = zstd.NewReader(nil); err != nil {
		db.Close()
		return fmt.Errorf("creating zstd decoder: %w", err)
	}
	return nil
}

// Close closes the database connection
func (a *Archive) Close() error {
	if a.dec != nil {
		a.dec.Close()
	}
	if a.enc != nil {
		a.enc.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Path returns the database file path
func (a *Archive) Path() string {
	return a.dbPath
}

// BeginTx starts a transaction
func (a *Archive) BeginTx(ctx context.Context, opts ports.TxOptions) (ports.Tx, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	t := &archiveTx{
		archive:  a,
		tx:       tx,
		id:       uuid.NewString(),
		readOnly: opts.ReadOnly,
		modPack:  opts.ModPack,
	}
	log.WithFields(log.Fields{"tx": t.id, "readOnly": opts.ReadOnly}).Debug("transaction opened")
	return t, nil
}

// IsPartitionLocked reports whether partition is held by an external writer
func (a *Archive) IsPartitionLocked(ctx context.Context, partition string) (bool, error) {
	var holder string
	err := a.db.QueryRowContext(ctx, `SELECT holder FROM partition_locks WHERE partition = ?`, partition).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read partition lock: %w", err)
	}
	return true, nil
}

// LockPartition marks partition as held by holder
func (a *Archive) LockPartition(ctx context.Context, partition, holder string) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO partition_locks (partition, holder, acquired_at) VALUES (?, ?, ?)
	`, partition, holder, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to lock partition %s: %w", partition, err)
	}
	return nil
}

// UnlockPartition releases partition
func (a *Archive) UnlockPartition(ctx context.Context, partition string) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM partition_locks WHERE partition = ?`, partition); err != nil {
		return fmt.Errorf("failed to unlock partition %s: %w", partition, err)
	}
	return nil
}

// ImportFile stores data as unmodified base content for path. No ledger entry is created.
func (a *Archive) ImportFile(ctx context.Context, path string, data []byte) (int64, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	offset, err := a.putBlob(ctx, tx, data)
	if err != nil {
		return 0, err
	}
	if err := setOffset(ctx, tx, path, offset); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return offset, nil
}

// FileInfo describes one indexed file
type FileInfo struct {
	Path   string
	Offset int64
	Size   int64
}

// ListFiles returns indexed files whose path starts with prefix
func (a *Archive) ListFiles(ctx context.Context, prefix string) ([]FileInfo, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT f.path, f.offset, b.size
		FROM files f JOIN blobs b ON b.id = f.offset
		WHERE f.path LIKE ? ESCAPE '\'
		ORDER BY f.path
	`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []FileInfo
	for rows.Next() {
		var f FileInfo
		if err := rows.Scan(&f.Path, &f.Offset, &f.Size); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// AddItem records item as a catalog entry for root
func (a *Archive) AddItem(ctx context.Context, root domain.RootInfo, item domain.Item) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO items (root, name, category) VALUES (?, ?, ?)
	`, root.String(), item.Name, item.Category)
	if err != nil {
		return fmt.Errorf("failed to add catalog item: %w", err)
	}
	return nil
}

// FirstItem returns the alphabetically first catalog item of root
func (a *Archive) FirstItem(ctx context.Context, root domain.RootInfo) (domain.Item, error) {
	var item domain.Item
	err := a.db.QueryRowContext(ctx, `
		SELECT name, category FROM items WHERE root = ? ORDER BY name LIMIT 1
	`, root.String()).Scan(&item.Name, &item.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	return item, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
