package report

import (
	"context"
	"strings"
	"testing"

	"rootforge/internal/adapters/memory"
	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

func TestListMods(t *testing.T) {
	ctx := context.Background()
	a := memory.NewArchive()
	tx, err := a.BeginTx(ctx, ports.TxOptions{})
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	for _, m := range []struct{ path, app string }{
		{"chara/equipment/e0087/model/c0101e0087_top.mdl", "test"},
		{"chara/equipment/e0012/model/c0101e0012_top.mdl", "test"},
		{"chara/equipment/e0087/e0087.imc", domain.InternalSourceApplication},
	} {
		if _, err := tx.WriteModFile(ctx, []byte(m.path), m.path, m.app, domain.Item{Name: "Shirt"}); err != nil {
			t.Fatalf("WriteModFile failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	tests := []struct {
		name     string
		glob     string
		internal bool
		want     int
	}{
		{name: "everything but internal", want: 2},
		{name: "with internal", internal: true, want: 3},
		{name: "one root", glob: "chara/equipment/e0087/**", want: 1},
		{name: "one root with internal", glob: "chara/equipment/e0087/**", internal: true, want: 2},
		{name: "no match", glob: "chara/weapon/**", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, err := ListMods(ctx, a, tt.glob, tt.internal)
			if err != nil {
				t.Fatalf("ListMods failed: %v", err)
			}
			if len(mods) != tt.want {
				t.Errorf("ListMods returned %d entries, want %d", len(mods), tt.want)
			}
		})
	}
}

func TestFormatClone(t *testing.T) {
	r := &commands.CloneRootResult{
		Files:      domain.NewPathMap(map[string]string{"chara/a.mdl": "chara/b.mdl"}),
		ModPack:    "Item Copy - A to B",
		Message:    "Cloned a to b (1 files)",
		Skipped:    []commands.MaterialOutcome{{Source: "chara/a.mtrl", Reason: "source material does not exist", Status: commands.MaterialSkipped}},
		RaceModels: []domain.RaceCopy{{Race: domain.RaceViera, Base: domain.RaceHyurMidlanderFemale}},
	}

	out := FormatClone(r, []string{commands.ProgressAnalyzing, commands.ProgressComplete})
	for _, want := range []string{
		commands.ProgressAnalyzing,
		"Mod pack: Item Copy - A to B",
		"Created Viera model from Hyur Midlander Female",
		"Skipped chara/a.mtrl: source material does not exist",
		"chara/a.mdl -> chara/b.mdl",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestFormatBatch(t *testing.T) {
	r := &commands.CloneAndResetBatchResult{
		Cleared: domain.NewPathSet("chara/equipment/e0012/model/c0101e0012_top.mdl"),
		Clones: []*commands.CloneRootResult{
			{Message: "Cloned equipment/12/top to equipment/87/top (4 files)", Gaps: 1},
		},
		Message: "Converted 1 roots, reset 1 files",
	}

	out := FormatBatch(r)
	for _, want := range []string{
		"Cloned equipment/12/top to equipment/87/top (4 files)",
		"0 skipped materials, 1 unfilled material set entries",
		"reset chara/equipment/e0012/model/c0101e0012_top.mdl",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
