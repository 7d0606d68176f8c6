package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lukechampine.com/blake3"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// putBlob stores data and returns its blob id. Identical content is stored once.
func (a *Archive) putBlob(ctx context.Context, q querier, data []byte) (int64, error) {
	digest := blake3.Sum256(data)

	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM blobs WHERE digest = ?`, digest[:]).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to look up blob: %w", err)
	}

	compressed := a.enc.EncodeAll(data, nil)
	res, err := q.ExecContext(ctx, `
		INSERT INTO blobs (digest, size, data) VALUES (?, ?, ?)
	`, digest[:], len(data), compressed)
	if err != nil {
		return 0, fmt.Errorf("failed to store blob: %w", err)
	}
	return res.LastInsertId()
}

// readFile returns the decompressed content indexed at path
func (a *Archive) readFile(ctx context.Context, q querier, path string) ([]byte, error) {
	var compressed []byte
	err := q.QueryRowContext(ctx, `
		SELECT b.data FROM files f JOIN blobs b ON b.id = f.offset WHERE f.path = ?
	`, path).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, ports.ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data, err := a.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decoding blob for %s: %w", path, err)
	}
	return data, nil
}

// indexOffset returns the offset path points at, or 0 when it has no entry
func indexOffset(ctx context.Context, q querier, path string) (int64, error) {
	var offset int64
	err := q.QueryRowContext(ctx, `SELECT offset FROM files WHERE path = ?`, path).Scan(&offset)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read index entry for %s: %w", path, err)
	}
	return offset, nil
}

// setOffset points path at offset; 0 removes the entry
func setOffset(ctx context.Context, q querier, path string, offset int64) error {
	var err error
	if offset == 0 {
		_, err = q.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	} else {
		_, err = q.ExecContext(ctx, `
			INSERT OR REPLACE INTO files (path, partition, offset) VALUES (?, ?, ?)
		`, path, domain.PartitionOf(path), offset)
	}
	if err != nil {
		return fmt.Errorf("failed to update index entry for %s: %w", path, err)
	}
	return nil
}
