package memory

import (
	"context"
	"errors"
	"testing"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

func TestArchive_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	a := NewArchive()
	if _, err := a.ImportFile(ctx, "chara/a.tex", []byte("base")); err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	before := a.Snapshot()

	tx, err := a.BeginTx(ctx, ports.TxOptions{})
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if _, err := tx.WriteModFile(ctx, []byte("mod"), "chara/a.tex", "test", domain.Item{Name: "A"}); err != nil {
		t.Fatalf("WriteModFile failed: %v", err)
	}
	data, _ := tx.ReadFile(ctx, "chara/a.tex")
	if string(data) != "mod" {
		t.Errorf("tx should see its own write, got %q", data)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	after := a.Snapshot()
	if after.Files["chara/a.tex"] != before.Files["chara/a.tex"] || len(after.Mods) != 0 {
		t.Errorf("rollback leaked state: %+v", after)
	}
}

func TestArchive_CommitAndDeleteMod(t *testing.T) {
	ctx := context.Background()
	a := NewArchive()
	base, _ := a.ImportFile(ctx, "chara/a.tex", []byte("base"))

	tx, _ := a.BeginTx(ctx, ports.TxOptions{ModPack: &domain.ModPack{Name: "Pack"}})
	if err := tx.CopyFile(ctx, "chara/a.tex", "chara/b.tex", "test", domain.Item{Name: "B"}); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}
	if _, err := tx.WriteModFile(ctx, []byte("mod"), "chara/a.tex", "test", domain.Item{Name: "A"}); err != nil {
		t.Fatalf("WriteModFile failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	snap := a.Snapshot()
	if snap.Files["chara/b.tex"] != "base" || snap.Files["chara/a.tex"] != "mod" {
		t.Fatalf("unexpected files %v", snap.Files)
	}
	if got := snap.Mods["chara/a.tex"]; got.OriginalOffset != base || got.ModPack != "Pack" {
		t.Errorf("unexpected mod entry %+v", got)
	}

	tx, _ = a.BeginTx(ctx, ports.TxOptions{})
	if err := tx.DeleteMod(ctx, "chara/a.tex"); err != nil {
		t.Fatalf("DeleteMod failed: %v", err)
	}
	if err := tx.DeleteMod(ctx, "chara/b.tex"); err != nil {
		t.Fatalf("DeleteMod failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	snap = a.Snapshot()
	if snap.Files["chara/a.tex"] != "base" {
		t.Errorf("expected base content restored, got %q", snap.Files["chara/a.tex"])
	}
	if _, ok := snap.Files["chara/b.tex"]; ok {
		t.Error("expected copied file to be unindexed")
	}
	if len(snap.Mods) != 0 {
		t.Errorf("expected empty ledger, got %v", snap.Mods)
	}
}

func TestArchive_ConflictingCommit(t *testing.T) {
	ctx := context.Background()
	a := NewArchive()

	first, _ := a.BeginTx(ctx, ports.TxOptions{})
	second, _ := a.BeginTx(ctx, ports.TxOptions{})
	if _, err := first.WriteModFile(ctx, []byte("x"), "chara/x", "test", domain.Item{}); err != nil {
		t.Fatalf("WriteModFile failed: %v", err)
	}
	if err := first.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := second.WriteModFile(ctx, []byte("y"), "chara/y", "test", domain.Item{}); err != nil {
		t.Fatalf("WriteModFile failed: %v", err)
	}
	if err := second.Commit(); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestArchive_ReadOnly(t *testing.T) {
	ctx := context.Background()
	tx, _ := NewArchive().BeginTx(ctx, ports.TxOptions{ReadOnly: true})
	if _, err := tx.WriteModFile(ctx, nil, "chara/x", "test", domain.Item{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if _, err := tx.ReadFile(ctx, "chara/x"); !errors.Is(err, ports.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
