package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// ErrReadOnly is returned by writes on a read-only transaction
var ErrReadOnly = errors.New("transaction is read-only")

// ErrTxDone is returned by any call after Commit or Rollback
var ErrTxDone = errors.New("transaction already finished")

// archiveTx implements ports.Tx. Every operation holds mu, so the
// transaction is the single writer for its connection.
type archiveTx struct {
	mu       sync.Mutex
	archive  *Archive
	tx       *sql.Tx
	id       string
	readOnly bool
	modPack  *domain.ModPack
	done     bool
}

// Ensure archiveTx implements Tx
var _ ports.Tx = (*archiveTx)(nil)

func (t *archiveTx) ID() string {
	return t.id
}

func (t *archiveTx) ModPack() *domain.ModPack {
	return t.modPack
}

func (t *archiveTx) check(write bool) error {
	if t.done {
		return ErrTxDone
	}
	if write && t.readOnly {
		return ErrReadOnly
	}
	return nil
}

// IndexFileExists reports whether path has an index entry
func (t *archiveTx) IndexFileExists(ctx context.Context, path string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return false, err
	}
	offset, err := indexOffset(ctx, t.tx, path)
	return offset != 0, err
}

// FileExists reports whether path has an index entry backed by stored content
func (t *archiveTx) FileExists(ctx context.Context, path string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return false, err
	}
	var one int
	err := t.tx.QueryRowContext(ctx, `
		SELECT 1 FROM files f JOIN blobs b ON b.id = f.offset WHERE f.path = ?
	`, path).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return true, nil
}

// ReadFile returns the content stored for path
func (t *archiveTx) ReadFile(ctx context.Context, path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return nil, err
	}
	return t.archive.readFile(ctx, t.tx, path)
}

// IndexOffset returns the storage offset path points at, 0 when unindexed
func (t *archiveTx) IndexOffset(ctx context.Context, path string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return 0, err
	}
	return indexOffset(ctx, t.tx, path)
}

// SetIndexOffset points path at offset without touching the ledger
func (t *archiveTx) SetIndexOffset(ctx context.Context, path string, offset int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}
	return setOffset(ctx, t.tx, path, offset)
}

// WriteModFile stores data as a modification of path
func (t *archiveTx) WriteModFile(ctx context.Context, data []byte, path, sourceApplication string, item domain.Item) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return 0, err
	}
	return t.writeModFile(ctx, data, path, sourceApplication, item)
}

func (t *archiveTx) writeModFile(ctx context.Context, data []byte, path, sourceApplication string, item domain.Item) (int64, error) {
	offset, err := t.archive.putBlob(ctx, t.tx, data)
	if err != nil {
		return 0, err
	}

	original, err := indexOffset(ctx, t.tx, path)
	if err != nil {
		return 0, err
	}
	existing, err := getMod(ctx, t.tx, path)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		original = existing.OriginalOffset
	}

	if err := setOffset(ctx, t.tx, path, offset); err != nil {
		return 0, err
	}

	entry := domain.ModEntry{
		Path:              path,
		ModOffset:         offset,
		OriginalOffset:    original,
		ItemName:          item.Name,
		ItemCategory:      item.Category,
		SourceApplication: sourceApplication,
	}
	if t.modPack != nil {
		entry.ModPack = t.modPack.Name
	} else if existing != nil {
		entry.ModPack = existing.ModPack
	}
	if err := putMod(ctx, t.tx, entry); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{"tx": t.id, "path": path, "offset": offset, "size": len(data)}).Debug("wrote mod file")
	return offset, nil
}

// CopyFile writes the content of oldPath to newPath as a modification
func (t *archiveTx) CopyFile(ctx context.Context, oldPath, newPath, sourceApplication string, item domain.Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}
	data, err := t.archive.readFile(ctx, t.tx, oldPath)
	if err != nil {
		return err
	}
	_, err = t.writeModFile(ctx, data, newPath, sourceApplication, item)
	return err
}

// ModList returns the ledger view of the transaction
func (t *archiveTx) ModList() ports.ModList {
	return &modList{t: t}
}

// DeleteMod reverts path to its original offset and removes its ledger entry
func (t *archiveTx) DeleteMod(ctx context.Context, path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}
	mod, err := getMod(ctx, t.tx, path)
	if err != nil || mod == nil {
		return err
	}
	if err := setOffset(ctx, t.tx, path, mod.OriginalOffset); err != nil {
		return err
	}
	return deleteMod(ctx, t.tx, path)
}

// Commit makes every write of the transaction durable
func (t *archiveTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", t.id, err)
	}
	log.WithField("tx", t.id).Debug("transaction committed")
	return nil
}

// Rollback discards every write of the transaction
func (t *archiveTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("failed to roll back transaction %s: %w", t.id, err)
	}
	log.WithField("tx", t.id).Debug("transaction rolled back")
	return nil
}
