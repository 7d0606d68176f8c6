package sqlite

import (
	"context"
	"fmt"
	"testing"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// BenchmarkWriteModFile benchmarks writing distinct files inside one transaction
func BenchmarkWriteModFile(b *testing.B) {
	ctx := context.Background()
	a := setupTestArchive(b)

	tx, err := a.BeginTx(ctx, ports.TxOptions{})
	if err != nil {
		b.Fatalf("BeginTx failed: %v", err)
	}
	defer tx.Rollback()

	payload := make([]byte, 64<<10)
	i := 0
	b.ResetTimer()
	for b.Loop() {
		payload[0], payload[1] = byte(i), byte(i>>8)
		path := fmt.Sprintf("chara/equipment/e0012/texture/v%04d.tex", i)
		if _, err := tx.WriteModFile(ctx, payload, path, "bench", domain.Item{}); err != nil {
			b.Fatalf("WriteModFile failed: %v", err)
		}
		i++
	}
}

// BenchmarkReadFile benchmarks reading back a compressed blob
func BenchmarkReadFile(b *testing.B) {
	ctx := context.Background()
	a := setupTestArchive(b)
	if _, err := a.ImportFile(ctx, modelPath, make([]byte, 256<<10)); err != nil {
		b.Fatalf("ImportFile failed: %v", err)
	}

	tx, err := a.BeginTx(ctx, ports.TxOptions{ReadOnly: true})
	if err != nil {
		b.Fatalf("BeginTx failed: %v", err)
	}
	defer tx.Rollback()

	b.ResetTimer()
	for b.Loop() {
		if _, err := tx.ReadFile(ctx, modelPath); err != nil {
			b.Fatalf("ReadFile failed: %v", err)
		}
	}
}
