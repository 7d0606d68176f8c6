package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

type archiveTx struct {
	mu       sync.Mutex
	archive  *Archive
	id       string
	readOnly bool
	modPack  *domain.ModPack
	state    state
	done     bool
}

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

func (t *archiveTx) IndexFileExists(ctx context.Context, path string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return false, err
	}
	return t.state.files[path] != 0, nil
}

func (t *archiveTx) FileExists(ctx context.Context, path string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return false, err
	}
	off := t.state.files[path]
	if off == 0 {
		return false, nil
	}
	_, ok := t.archive.blob(off)
	return ok, nil
}

func (t *archiveTx) ReadFile(ctx context.Context, path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return nil, err
	}
	return t.read(path)
}

func (t *archiveTx) read(path string) ([]byte, error) {
	data, ok := t.archive.blob(t.state.files[path])
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ports.ErrFileNotFound)
	}
	return append([]byte(nil), data...), nil
}

func (t *archiveTx) IndexOffset(ctx context.Context, path string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(false); err != nil {
		return 0, err
	}
	return t.state.files[path], nil
}

func (t *archiveTx) SetIndexOffset(ctx context.Context, path string, offset int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}
	t.setOffset(path, offset)
	return nil
}

func (t *archiveTx) setOffset(path string, offset int64) {
	if offset == 0 {
		delete(t.state.files, path)
		return
	}
	t.state.files[path] = offset
}

func (t *archiveTx) WriteModFile(ctx context.Context, data []byte, path, sourceApplication string, item domain.Item) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return 0, err
	}
	return t.write(data, path, sourceApplication, item), nil
}

func (t *archiveTx) write(data []byte, path, sourceApplication string, item domain.Item) int64 {
	offset := t.archive.putBlob(data)
	original := t.state.files[path]
	existing, had := t.state.mods[path]
	if had {
		original = existing.OriginalOffset
	}
	t.setOffset(path, offset)

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
	} else if had {
		entry.ModPack = existing.ModPack
	}
	t.state.mods[path] = entry
	return offset
}

func (t *archiveTx) CopyFile(ctx context.Context, oldPath, newPath, sourceApplication string, item domain.Item) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}
	data, err := t.read(oldPath)
	if err != nil {
		return err
	}
	t.write(data, newPath, sourceApplication, item)
	return nil
}

func (t *archiveTx) ModList() ports.ModList {
	return &modList{t: t}
}

func (t *archiveTx) DeleteMod(ctx context.Context, path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.check(true); err != nil {
		return err
	}
	mod, ok := t.state.mods[path]
	if !ok {
		return nil
	}
	t.setOffset(path, mod.OriginalOffset)
	delete(t.state.mods, path)
	return nil
}

func (t *archiveTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	if t.readOnly {
		return nil
	}
	if err := t.archive.commit(t.state); err != nil {
		return fmt.Errorf("failed to commit transaction %s: %w", t.id, err)
	}
	return nil
}

func (t *archiveTx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrTxDone
	}
	t.done = true
	return nil
}

type modList struct {
	t *archiveTx
}

func (m *modList) Mods(ctx context.Context) ([]domain.ModEntry, error) {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(false); err != nil {
		return nil, err
	}
	mods := make([]domain.ModEntry, 0, len(m.t.state.mods))
	for _, mod := range m.t.state.mods {
		mods = append(mods, mod)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Path < mods[j].Path })
	return mods, nil
}

func (m *modList) Mod(ctx context.Context, path string) (*domain.ModEntry, error) {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(false); err != nil {
		return nil, err
	}
	mod, ok := m.t.state.mods[path]
	if !ok {
		return nil, nil
	}
	return &mod, nil
}

func (m *modList) AddOrUpdateMod(ctx context.Context, mod domain.ModEntry) error {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(true); err != nil {
		return err
	}
	m.t.state.mods[mod.Path] = mod
	return nil
}

func (m *modList) RemoveMod(ctx context.Context, path string) error {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(true); err != nil {
		return err
	}
	delete(m.t.state.mods, path)
	return nil
}
