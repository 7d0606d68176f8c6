// Package memory provides an in-memory archive with the same transaction
// semantics as the sqlite archive. A transaction works on a private copy of
// the state that replaces the archive state on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"lukechampine.com/blake3"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

var (
	ErrReadOnly = errors.New("transaction is read-only")
	ErrTxDone   = errors.New("transaction already finished")
	// ErrConflict is returned when committing a transaction that began before another commit
	ErrConflict = errors.New("archive changed since the transaction began")

	ErrItemNotFound = errors.New("no catalog item for root")
)

type state struct {
	version int
	files   map[string]int64
	mods    map[string]domain.ModEntry
}

func (s state) clone() state {
	c := state{
		version: s.version,
		files:   make(map[string]int64, len(s.files)),
		mods:    make(map[string]domain.ModEntry, len(s.mods)),
	}
	for k, v := range s.files {
		c.files[k] = v
	}
	for k, v := range s.mods {
		c.mods[k] = v
	}
	return c
}

// Archive is an in-memory ports.Archive
type Archive struct {
	mu      sync.Mutex
	state   state
	blobs   map[int64][]byte
	digests map[[32]byte]int64
	next    int64
	locks   map[string]string
	items   map[domain.RootInfo][]domain.Item
}

var _ ports.Archive = (*Archive)(nil)

// NewArchive creates an empty archive
func NewArchive() *Archive {
	return &Archive{
		state:   state{files: map[string]int64{}, mods: map[string]domain.ModEntry{}},
		blobs:   map[int64][]byte{},
		digests: map[[32]byte]int64{},
		locks:   map[string]string{},
		items:   map[domain.RootInfo][]domain.Item{},
	}
}

// putBlob stores data once per content digest. Blobs are never removed, so a
// rolled back transaction only leaves unreferenced blobs behind.
func (a *Archive) putBlob(data []byte) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	digest := blake3.Sum256(data)
	if id, ok := a.digests[digest]; ok {
		return id
	}
	a.next++
	a.blobs[a.next] = append([]byte(nil), data...)
	a.digests[digest] = a.next
	return a.next
}

func (a *Archive) blob(offset int64) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.blobs[offset]
	return data, ok
}

// ImportFile stores data as base content of path, outside the ledger
func (a *Archive) ImportFile(ctx context.Context, path string, data []byte) (int64, error) {
	offset := a.putBlob(data)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.files[path] = offset
	a.state.version++
	return offset, nil
}

// BeginTx starts a transaction over a copy of the current state
func (a *Archive) BeginTx(ctx context.Context, opts ports.TxOptions) (ports.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return &archiveTx{
		archive:  a,
		id:       uuid.NewString(),
		readOnly: opts.ReadOnly,
		modPack:  opts.ModPack,
		state:    a.state.clone(),
	}, nil
}

func (a *Archive) IsPartitionLocked(ctx context.Context, partition string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.locks[partition]
	return ok, nil
}

// LockPartition marks partition as held by holder
func (a *Archive) LockPartition(ctx context.Context, partition, holder string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.locks[partition]; ok && cur != holder {
		return fmt.Errorf("partition %s is locked by %s", partition, cur)
	}
	a.locks[partition] = holder
	return nil
}

func (a *Archive) UnlockPartition(ctx context.Context, partition string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.locks, partition)
	return nil
}

// AddItem registers item as belonging to root
func (a *Archive) AddItem(ctx context.Context, root domain.RootInfo, item domain.Item) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[root] = append(a.items[root], item)
	return nil
}

// FirstItem returns the alphabetically first item of root
func (a *Archive) FirstItem(ctx context.Context, root domain.RootInfo) (domain.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := a.items[root]
	if len(items) == 0 {
		return domain.Item{}, fmt.Errorf("%s: %w", root, ErrItemNotFound)
	}
	first := items[0]
	for _, it := range items[1:] {
		if it.Name < first.Name {
			first = it
		}
	}
	return first, nil
}

// Snapshot is a comparable view of the committed archive
type Snapshot struct {
	Files map[string]string
	Mods  map[string]domain.ModEntry
}

// Snapshot returns the committed content of every indexed file and the ledger
func (a *Archive) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Snapshot{Files: map[string]string{}, Mods: map[string]domain.ModEntry{}}
	for p, off := range a.state.files {
		s.Files[p] = string(a.blobs[off])
	}
	for p, m := range a.state.mods {
		s.Mods[p] = m
	}
	return s
}

// Paths lists committed paths under prefix in order
func (a *Archive) Paths(prefix string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for p := range a.state.files {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (a *Archive) commit(s state) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s.version != a.state.version {
		return ErrConflict
	}
	s.version++
	a.state = s
	return nil
}
