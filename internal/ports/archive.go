package ports

import (
	"context"
	"errors"

	"rootforge/internal/domain"
)

// ErrFileNotFound is returned when a path has no readable content in the archive
var ErrFileNotFound = errors.New("file not found in archive")

// TxOptions configures a new transaction
type TxOptions struct {
	ReadOnly bool
	// ModPack, when set, is the attribution every write in the transaction defaults to
	ModPack *domain.ModPack
}

// Archive is the content-addressed asset store. All reads and writes happen
// through a transaction.
type Archive interface {
	BeginTx(ctx context.Context, opts TxOptions) (Tx, error)

	// IsPartitionLocked reports whether another writer currently holds the partition.
	// The answer is a point-in-time check, not a lock.
	IsPartitionLocked(ctx context.Context, partition string) (bool, error)
}

// Tx is one archive transaction. Nothing it writes is visible outside it until
// Commit; Rollback discards every buffered write. A Tx serializes its own
// operations and may be shared between goroutines.
type Tx interface {
	ID() string
	ModPack() *domain.ModPack

	// IndexFileExists reports whether path has an index entry
	IndexFileExists(ctx context.Context, path string) (bool, error)
	// FileExists reports whether path has an index entry with readable content
	FileExists(ctx context.Context, path string) (bool, error)
	// ReadFile returns the decoded content stored for path
	ReadFile(ctx context.Context, path string) ([]byte, error)

	IndexOffset(ctx context.Context, path string) (int64, error)
	// SetIndexOffset points path at offset; 0 removes the index entry
	SetIndexOffset(ctx context.Context, path string, offset int64) error

	// WriteModFile stores data under path, records it in the ledger and returns its storage offset
	WriteModFile(ctx context.Context, data []byte, path, sourceApplication string, item domain.Item) (int64, error)
	// CopyFile writes the content of oldPath to newPath as a modification
	CopyFile(ctx context.Context, oldPath, newPath, sourceApplication string, item domain.Item) error

	ModList() ModList
	// DeleteMod reverts path to its pre-modification offset and drops its ledger entry
	DeleteMod(ctx context.Context, path string) error

	Commit() error
	Rollback() error
}

// ModList is the ledger view of a transaction
type ModList interface {
	Mods(ctx context.Context) ([]domain.ModEntry, error)
	Mod(ctx context.Context, path string) (*domain.ModEntry, error)
	AddOrUpdateMod(ctx context.Context, mod domain.ModEntry) error
	RemoveMod(ctx context.Context, path string) error
}

// ItemCatalog resolves the representative item of a root
type ItemCatalog interface {
	FirstItem(ctx context.Context, root domain.RootInfo) (domain.Item, error)
}
