package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// modList implements ports.ModList over the mods table of a transaction
type modList struct {
	t *archiveTx
}

var _ ports.ModList = (*modList)(nil)

// Mods returns every ledger entry ordered by path
func (m *modList) Mods(ctx context.Context) ([]domain.ModEntry, error) {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(false); err != nil {
		return nil, err
	}
	return listMods(ctx, m.t.tx)
}

// Mod returns the ledger entry for path, or nil
func (m *modList) Mod(ctx context.Context, path string) (*domain.ModEntry, error) {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(false); err != nil {
		return nil, err
	}
	return getMod(ctx, m.t.tx, path)
}

// AddOrUpdateMod inserts or replaces an entry
func (m *modList) AddOrUpdateMod(ctx context.Context, mod domain.ModEntry) error {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(true); err != nil {
		return err
	}
	return putMod(ctx, m.t.tx, mod)
}

// RemoveMod deletes the entry for path
func (m *modList) RemoveMod(ctx context.Context, path string) error {
	m.t.mu.Lock()
	defer m.t.mu.Unlock()
	if err := m.t.check(true); err != nil {
		return err
	}
	return deleteMod(ctx, m.t.tx, path)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMod(s rowScanner) (domain.ModEntry, error) {
	var mod domain.ModEntry
	err := s.Scan(&mod.Path, &mod.ModOffset, &mod.OriginalOffset, &mod.ItemName,
		&mod.ItemCategory, &mod.SourceApplication, &mod.ModPack)
	return mod, err
}

const modColumns = `path, mod_offset, original_offset, item_name, item_category, source_application, mod_pack`

func getMod(ctx context.Context, q querier, path string) (*domain.ModEntry, error) {
	mod, err := scanMod(q.QueryRowContext(ctx, `SELECT `+modColumns+` FROM mods WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger entry for %s: %w", path, err)
	}
	return &mod, nil
}

func listMods(ctx context.Context, tx *sql.Tx) ([]domain.ModEntry, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+modColumns+` FROM mods ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	defer rows.Close()

	var mods []domain.ModEntry
	for rows.Next() {
		mod, err := scanMod(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, rows.Err()
}

func putMod(ctx context.Context, q querier, mod domain.ModEntry) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO mods (`+modColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, mod.Path, mod.ModOffset, mod.OriginalOffset, mod.ItemName, mod.ItemCategory, mod.SourceApplication, mod.ModPack)
	if err != nil {
		return fmt.Errorf("failed to write ledger entry for %s: %w", mod.Path, err)
	}
	return nil
}

func deleteMod(ctx context.Context, q querier, path string) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM mods WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to remove ledger entry for %s: %w", path, err)
	}
	return nil
}
