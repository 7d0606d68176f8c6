package commands

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"rootforge/internal/adapters/metafile"
	"rootforge/internal/application"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// seedShirtScenario stores a three-variant shirt e0012 with a missing and a
// corrupt material, and a destination e0087 that already carries modifications
func seedShirtScenario(t *testing.T, f *fixture) {
	t.Helper()

	meta := domain.NewItemMetadata(shirt12)
	meta.Variants = []domain.VariantEntry{
		{MaterialSet: 1, Mask: 0x3FF, Vfx: 1},
		{MaterialSet: 2, Mask: 0x3FF},
		{MaterialSet: 0, Mask: 0x1},
	}
	for _, race := range []domain.Race{domain.RaceHyurMidlanderMale, domain.RaceHyurMidlanderFemale, domain.RaceViera} {
		meta.Deformations[race] = domain.DeformationFlags{Enabled: true, HasModel: true}
	}

	model := modelBytes(t, "/"+materialName(shirt12, "a"), "/"+materialName(shirt12, "b"))
	vfxFolder, vfxFile := shirt12.VfxPathFor(1)

	f.base(map[string][]byte{
		shirt12.RootFile(): metafile.Encode(meta),
		shirt12.ModelPath(domain.RaceHyurMidlanderMale):   model,
		shirt12.ModelPath(domain.RaceHyurMidlanderFemale): model,
		materialPath(shirt12, 1, "a"):                     materialBytes(t, materialPath(shirt12, 1, "a"), "character", normalTexture(shirt12), dummyTexture),
		materialPath(shirt12, 2, "a"):                     []byte("{corrupt"),
		materialPath(shirt12, 2, "b"):                     materialBytes(t, materialPath(shirt12, 2, "b"), "character", normalTexture(shirt12)),
		normalTexture(shirt12):                            []byte("texture-n"),
		dummyTexture:                                      []byte("dummy"),
		vfxFolder + "/" + vfxFile:                         []byte("vfx"),
	})

	previous := domain.NewItemMetadata(shirt87)
	previous.Variants = []domain.VariantEntry{{MaterialSet: 1, Mask: 0x3FF}}
	previous.Deformations[domain.RaceHyurMidlanderMale] = domain.DeformationFlags{Enabled: true, HasModel: true}
	f.base(map[string][]byte{shirt87.RootFile(): metafile.Encode(previous)})

	f.mods("OtherTool", map[string][]byte{
		"chara/equipment/e0087/model/c0301e0087_top.mdl": []byte("stale"),
		"chara/equipment/e0087/model/c0101e0087_dwn.mdl": []byte("other slot"),
	})
	f.mods(domain.InternalSourceApplication, map[string][]byte{
		"chara/equipment/e0087/texture/v01_c0101e0087_top_s.tex": []byte("internal"),
	})

	f.archive.AddItem(f.ctx, shirt12, domain.Item{Name: "Shirt 12", Category: "Body"})
	f.archive.AddItem(f.ctx, shirt87, domain.Item{Name: "Shirt 87", Category: "Body"})
}

func TestCloneRootCommand_Validate(t *testing.T) {
	body := domain.RootInfo{PrimaryType: domain.ItemTypeHuman, PrimaryID: 101, SecondaryType: domain.ItemTypeBody, SecondaryID: 1}

	tests := []struct {
		name       string
		src        domain.RootInfo
		dst        domain.RootInfo
		app        string
		variant    int
		wantErr    error
		errContain string
	}{
		{
			name:    "valid equipment clone",
			src:     shirt12,
			dst:     shirt87,
			app:     testApp,
			variant: -1,
		},
		{
			name:       "missing source application",
			src:        shirt12,
			dst:        shirt87,
			variant:    -1,
			errContain: "source application is required",
		},
		{
			name:       "bad slot",
			src:        domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "ear"},
			dst:        shirt87,
			app:        testApp,
			variant:    -1,
			errContain: "invalid slot",
		},
		{
			name:       "variant index below -1",
			src:        shirt12,
			dst:        shirt87,
			app:        testApp,
			variant:    -2,
			errContain: "variant index",
		},
		{
			name:    "body roots are rejected",
			src:     body,
			dst:     shirt87,
			app:     testApp,
			variant: -1,
			wantErr: application.ErrRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCloneRootCommand(nil, Codecs{}, domain.Root{Info: tt.src}, domain.Root{Info: tt.dst}, tt.app)
			cmd.VariantIndex = tt.variant
			err := cmd.Validate()

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			case tt.errContain != "":
				if err == nil || !strings.Contains(err.Error(), tt.errContain) {
					t.Errorf("Validate() error = %v, want containing %q", err, tt.errContain)
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestCloneRootCommand_Equipment(t *testing.T) {
	f := newFixture(t)
	seedShirtScenario(t, f)
	before := f.archive.Snapshot()

	sink := &recordingSink{}
	cmd := f.clone(shirt12, shirt87)
	cmd.Progress = sink
	result, err := cmd.Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.State != StateDone || cmd.State() != StateDone {
		t.Errorf("state = %v, want done", result.State)
	}
	if result.Files.Len() != 10 {
		t.Errorf("Files has %d entries, want 10: %v", result.Files.Len(), result.Files.AsMap())
	}
	wantFiles := map[string]string{
		shirt12.ModelPath(domain.RaceHyurMidlanderMale): shirt87.ModelPath(domain.RaceHyurMidlanderMale),
		materialPath(shirt12, 2, "b"):                   materialPath(shirt87, 2, "b"),
		normalTexture(shirt12):                          normalTexture(shirt87),
		dummyTexture:                                    "chara/equipment/e0087/common/texture/dummy.tex",
		shirt12.RootFile():                              shirt87.RootFile(),
	}
	for old, want := range wantFiles {
		if got, _ := result.Files.Get(old); got != want {
			t.Errorf("Files[%s] = %q, want %q", old, got, want)
		}
	}

	if len(result.Skipped) != 2 {
		t.Fatalf("Skipped = %+v, want 2 outcomes", result.Skipped)
	}
	skipped := map[string]bool{}
	for _, o := range result.Skipped {
		skipped[o.Source] = o.Status == MaterialSkipped
	}
	if !skipped[materialPath(shirt12, 1, "b")] || !skipped[materialPath(shirt12, 2, "a")] {
		t.Errorf("unexpected skipped materials %+v", result.Skipped)
	}
	if result.Gaps != 0 {
		t.Errorf("Gaps = %d, want 0", result.Gaps)
	}
	if result.Purged != 1 {
		t.Errorf("Purged = %d, want 1", result.Purged)
	}
	if len(result.RaceModels) != 1 || result.RaceModels[0].Race != domain.RaceViera || result.RaceModels[0].Base != domain.RaceHyurMidlanderFemale {
		t.Errorf("RaceModels = %+v, want Viera from Hyur Midlander Female", result.RaceModels)
	}
	vieraModel := shirt87.ModelPath(domain.RaceViera)
	if !result.Owned.Has(vieraModel) {
		t.Errorf("Owned is missing the created race model %s", vieraModel)
	}
	for _, p := range result.Files.Values() {
		if p == vieraModel {
			t.Errorf("created race model %s should not appear in the file map", p)
		}
	}

	after := f.archive.Snapshot()

	t.Run("models are rewritten", func(t *testing.T) {
		got := modelRefs(t, after.Files[shirt87.ModelPath(domain.RaceHyurMidlanderMale)])
		want := []string{"/" + materialName(shirt87, "a"), "/" + materialName(shirt87, "b")}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("material refs = %v, want %v", got, want)
		}
		viera := after.Files[shirt87.ModelPath(domain.RaceViera)]
		if viera == "" || viera != after.Files[shirt87.ModelPath(domain.RaceHyurMidlanderFemale)] {
			t.Error("Viera model should be a copy of the Hyur Midlander Female model")
		}
	})

	t.Run("materials point at the destination", func(t *testing.T) {
		data := after.Files[materialPath(shirt87, 1, "a")]
		if got := gjson.Get(data, "path").String(); got != materialPath(shirt87, 1, "a") {
			t.Errorf("stored path = %q", got)
		}
		want := []string{normalTexture(shirt87), "chara/equipment/e0087/common/texture/dummy.tex"}
		if got := materialTextures(t, data); !reflect.DeepEqual(got, want) {
			t.Errorf("texture refs = %v, want %v", got, want)
		}
		if after.Files[normalTexture(shirt87)] != "texture-n" {
			t.Error("texture not copied")
		}
	})

	t.Run("material sets are backfilled", func(t *testing.T) {
		if after.Files[materialPath(shirt87, 1, "b")] != after.Files[materialPath(shirt87, 2, "b")] {
			t.Error("set 1 should hold a copy of set 2's b material")
		}
		if after.Files[materialPath(shirt87, 2, "a")] != after.Files[materialPath(shirt87, 1, "a")] {
			t.Error("set 2 should hold a copy of set 1's a material")
		}
	})

	t.Run("purge keeps foreign and internal entries", func(t *testing.T) {
		if _, ok := after.Files["chara/equipment/e0087/model/c0301e0087_top.mdl"]; ok {
			t.Error("stale destination file survived")
		}
		if _, ok := after.Mods["chara/equipment/e0087/model/c0301e0087_top.mdl"]; ok {
			t.Error("stale ledger entry survived")
		}
		for _, p := range []string{
			"chara/equipment/e0087/model/c0101e0087_dwn.mdl",
			"chara/equipment/e0087/texture/v01_c0101e0087_top_s.tex",
		} {
			if _, ok := after.Mods[p]; !ok {
				t.Errorf("%s should not be purged", p)
			}
		}
	})

	t.Run("ledger attribution", func(t *testing.T) {
		for _, p := range []string{
			shirt87.ModelPath(domain.RaceHyurMidlanderMale),
			shirt87.ModelPath(domain.RaceViera),
			materialPath(shirt87, 2, "a"),
			normalTexture(shirt87),
			shirt87.RootFile(),
		} {
			mod, ok := after.Mods[p]
			if !ok {
				t.Errorf("no ledger entry for %s", p)
				continue
			}
			if mod.ItemName != "Shirt 87" || mod.ItemCategory != "Body" || mod.SourceApplication != testApp {
				t.Errorf("%s attributed to %+v", p, mod)
			}
			if mod.ModPack != "Item Copy - Shirt 12 to Shirt 87" {
				t.Errorf("%s mod pack = %q", p, mod.ModPack)
			}
		}
		if result.ModPack != "Item Copy - Shirt 12 to Shirt 87" {
			t.Errorf("result mod pack = %q", result.ModPack)
		}
	})

	t.Run("metadata is reconciled", func(t *testing.T) {
		meta := f.metadata(shirt87)
		if len(meta.Variants) != 3 {
			t.Fatalf("variants = %+v", meta.Variants)
		}
		if meta.Variants[2].MaterialSet != 1 {
			t.Errorf("unset material set fixed to %d, want 1", meta.Variants[2].MaterialSet)
		}
		if !meta.HasModel(domain.RaceViera) {
			t.Error("Viera model flag lost")
		}
	})

	t.Run("source is untouched", func(t *testing.T) {
		for p, data := range before.Files {
			if strings.HasPrefix(p, shirt12.RootFolder()) && after.Files[p] != data {
				t.Errorf("source file %s changed", p)
			}
		}
	})

	want := []string{
		ProgressAnalyzing, ProgressCalculating, ProgressPurging, ProgressModels, ProgressTextures,
		ProgressMaterials, ProgressVfx, ProgressPadding, ProgressMetadata, ProgressBackfill,
		ProgressLedger, ProgressComplete,
	}
	if !reflect.DeepEqual(sink.labels, want) {
		t.Errorf("progress = %v, want %v", sink.labels, want)
	}
}

func TestCloneRootCommand_PadsToPreviousVariants(t *testing.T) {
	f := newFixture(t)
	f.base(simpleRoot(t, shirt12, "src"))

	previous := domain.NewItemMetadata(shirt87)
	for i := 0; i < 4; i++ {
		previous.Variants = append(previous.Variants, domain.VariantEntry{MaterialSet: 1, Decal: i})
	}
	f.base(map[string][]byte{shirt87.RootFile(): metafile.Encode(previous)})

	if _, err := f.clone(shirt12, shirt87).Execute(f.ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	meta := f.metadata(shirt87)
	if len(meta.Variants) != 4 {
		t.Fatalf("variants = %d, want 4", len(meta.Variants))
	}
	for i, v := range meta.Variants {
		if v != meta.Variants[0] {
			t.Errorf("variant %d = %+v, want copy of %+v", i, v, meta.Variants[0])
		}
	}
}

func TestCloneRootCommand_SingleVariant(t *testing.T) {
	f := newFixture(t)
	seedShirtScenario(t, f)

	sink := &recordingSink{}
	cmd := f.clone(shirt12, shirt87)
	cmd.VariantIndex = 1
	cmd.Progress = sink
	if _, err := cmd.Execute(f.ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	meta := f.metadata(shirt87)
	for i, v := range meta.Variants {
		if v.MaterialSet != 2 {
			t.Errorf("variant %d material set = %d, want 2", i, v.MaterialSet)
		}
	}
	found := false
	for _, l := range sink.labels {
		found = found || l == ProgressCollapsing
	}
	if !found {
		t.Errorf("progress %v lacks %q", sink.labels, ProgressCollapsing)
	}
}

func TestCloneRootCommand_Hair(t *testing.T) {
	src := domain.RootInfo{PrimaryType: domain.ItemTypeHuman, PrimaryID: 101, SecondaryType: domain.ItemTypeHair, SecondaryID: 7, Slot: "hir"}
	dst := domain.RootInfo{PrimaryType: domain.ItemTypeHuman, PrimaryID: 201, SecondaryType: domain.ItemTypeHair, SecondaryID: 9, Slot: "hir"}

	srcMaterial := "chara/human/c0101/obj/hair/h0007/material/v0001/mt_c0101h0007_hir_a.mtrl"
	srcTexture := "chara/human/c0101/obj/hair/h0007/texture/c0101h0007_hir_n.tex"
	dstMaterial := "chara/human/c0201/obj/hair/h0009/material/v0001/mt_c0201h0009_c0201_hir_a.mtrl"
	dstTexture := "chara/human/c0201/obj/hair/h0009/texture/c0201h0009_hir_n.tex"
	stale := "chara/human/c0201/obj/hair/h0009/texture/old.tex"

	f := newFixture(t)
	f.base(map[string][]byte{
		src.ModelPath(domain.RaceHyurMidlanderMale): modelBytes(t, "/mt_c0101h0007_hir_a.mtrl"),
		srcMaterial: materialBytes(t, srcMaterial, "hair", srcTexture),
		srcTexture:  []byte("hair-n"),
	})
	f.mods("OtherTool", map[string][]byte{stale: []byte("stale")})

	result, err := f.clone(src, dst).Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got, _ := result.Files.Get(srcMaterial); got != dstMaterial {
		t.Errorf("material maps to %q, want %q", got, dstMaterial)
	}

	after := f.archive.Snapshot()
	model := after.Files["chara/human/c0201/obj/hair/h0009/model/c0201h0009_hir.mdl"]
	if model == "" {
		t.Fatal("destination model missing")
	}
	if refs := modelRefs(t, model); len(refs) != 1 || refs[0] != "/mt_c0201h0009_c0201_hir_a.mtrl" {
		t.Errorf("model refs = %v", refs)
	}
	if got := materialTextures(t, after.Files[dstMaterial]); len(got) != 1 || got[0] != dstTexture {
		t.Errorf("texture refs = %v, want [%s]", got, dstTexture)
	}
	if _, ok := after.Files[stale]; ok {
		t.Error("slotless destination should lose every foreign modification")
	}
	if _, ok := after.Files[dst.RootFile()]; !ok {
		t.Error("destination root file not written")
	}
}

func TestCloneRootCommand_SelfCloneIsIdempotent(t *testing.T) {
	f := newFixture(t)
	files := simpleRoot(t, shirt12, "src")
	meta := domain.NewItemMetadata(shirt12)
	meta.Variants = []domain.VariantEntry{{MaterialSet: 1, Mask: 0x3FF}, {MaterialSet: 2, Mask: 0x3FF}}
	meta.Deformations[domain.RaceHyurMidlanderMale] = domain.DeformationFlags{Enabled: true, HasModel: true}
	files[shirt12.RootFile()] = metafile.Encode(meta)
	files[materialPath(shirt12, 2, "a")] = materialBytes(t, materialPath(shirt12, 2, "a"), "character", normalTexture(shirt12))
	f.base(files)
	before := f.archive.Snapshot()

	result, err := f.clone(shirt12, shirt12).Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	result.Files.Each(func(oldPath, newPath string) {
		if oldPath != newPath {
			t.Errorf("self clone moved %s to %s", oldPath, newPath)
		}
	})

	after := f.archive.Snapshot()
	for p, data := range before.Files {
		if after.Files[p] != data {
			t.Errorf("%s changed", p)
		}
	}
	for p, mod := range after.Mods {
		if !mod.IsInternal() {
			t.Errorf("self clone recorded a modification of %s", p)
		}
	}
}

func TestCloneRootCommand_ModelParseFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	seedShirtScenario(t, f)
	f.base(map[string][]byte{shirt12.ModelPath(domain.RaceHyurMidlanderMale): []byte("garbage")})
	before := f.archive.Snapshot()

	cmd := f.clone(shirt12, shirt87)
	_, err := cmd.Execute(f.ctx)
	if !errors.Is(err, application.ErrParse) {
		t.Fatalf("Execute error = %v, want parse failure", err)
	}
	var parseErr *application.ParseError
	if !errors.As(err, &parseErr) || parseErr.Path != shirt12.ModelPath(domain.RaceHyurMidlanderMale) {
		t.Errorf("error does not name the model: %v", err)
	}
	if cmd.State() != StateCancelled {
		t.Errorf("state = %v, want cancelled", cmd.State())
	}
	if after := f.archive.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("failed clone changed the archive")
	}
}

func TestCloneRootCommand_SynthesisFailure(t *testing.T) {
	f := newFixture(t)
	meta := domain.NewItemMetadata(shirt12)
	meta.Variants = []domain.VariantEntry{{MaterialSet: 1}}
	meta.Deformations[domain.RaceViera] = domain.DeformationFlags{Enabled: true, HasModel: true}
	f.base(map[string][]byte{shirt12.RootFile(): metafile.Encode(meta)})
	before := f.archive.Snapshot()

	cmd := f.clone(shirt12, shirt87)
	_, err := cmd.Execute(f.ctx)
	if !errors.Is(err, application.ErrSynthesis) {
		t.Fatalf("Execute error = %v, want synthesis failure", err)
	}
	var synth *domain.SynthesisError
	if !errors.As(err, &synth) || synth.Race != domain.RaceViera {
		t.Errorf("error does not name the race: %v", err)
	}
	if after := f.archive.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("failed clone changed the archive")
	}
}

func TestCloneRootCommand_LockedPartition(t *testing.T) {
	f := newFixture(t)
	seedShirtScenario(t, f)
	if err := f.archive.LockPartition(f.ctx, "chara", "other-writer"); err != nil {
		t.Fatalf("LockPartition failed: %v", err)
	}

	cmd := f.clone(shirt12, shirt87)
	_, err := cmd.Execute(f.ctx)
	if !errors.Is(err, application.ErrRejected) {
		t.Errorf("Execute error = %v, want rejection", err)
	}
	if cmd.State() != StateCancelled {
		t.Errorf("state = %v, want cancelled", cmd.State())
	}
}

func TestCloneRootCommand_CallerOwnedTransaction(t *testing.T) {
	f := newFixture(t)
	seedShirtScenario(t, f)
	f.base(map[string][]byte{shirt12.ModelPath(domain.RaceHyurMidlanderMale): []byte("garbage")})

	tx, err := f.archive.BeginTx(f.ctx, ports.TxOptions{ModPack: &domain.ModPack{Name: "Caller Pack"}})
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	cmd := f.clone(shirt12, shirt87)
	cmd.Tx = tx
	if _, err := cmd.Execute(f.ctx); !errors.Is(err, application.ErrParse) {
		t.Fatalf("Execute error = %v, want parse failure", err)
	}
	if cmd.State() != StateAborting {
		t.Errorf("state = %v, want aborting until the caller rolls back", cmd.State())
	}
	if _, err := tx.ReadFile(f.ctx, shirt12.RootFile()); err != nil {
		t.Errorf("caller's transaction should stay open: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("Rollback failed: %v", err)
	}
}

func TestCloneRootCommand_CallerModPack(t *testing.T) {
	f := newFixture(t)
	f.base(simpleRoot(t, shirt12, "src"))

	tx, err := f.archive.BeginTx(f.ctx, ports.TxOptions{ModPack: &domain.ModPack{Name: "Caller Pack"}})
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	cmd := f.clone(shirt12, shirt87)
	cmd.Tx = tx
	result, err := cmd.Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if result.ModPack != "Caller Pack" {
		t.Errorf("ModPack = %q, want Caller Pack", result.ModPack)
	}
	mod := f.archive.Snapshot().Mods[shirt87.ModelPath(domain.RaceHyurMidlanderMale)]
	if mod.ModPack != "Caller Pack" {
		t.Errorf("ledger mod pack = %q", mod.ModPack)
	}
	// no catalog entries, so attribution falls back to the file name
	if mod.ItemName != "e0087_top" || mod.ItemCategory != "equipment" {
		t.Errorf("fallback attribution = %+v", mod)
	}
}

func TestCloneRootCommand_Export(t *testing.T) {
	f := newFixture(t)
	f.base(simpleRoot(t, shirt12, "src"))

	exporter := &recordingExporter{}
	sink := &recordingSink{}
	cmd := f.clone(shirt12, shirt87)
	cmd.ExportDirectory = "/tmp/out"
	cmd.Exporter = exporter
	cmd.Progress = sink
	result, err := cmd.Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if exporter.dir != "/tmp/out" || exporter.modPack != result.ModPack {
		t.Errorf("exporter got dir %q pack %q", exporter.dir, exporter.modPack)
	}
	exported := map[string]bool{}
	for _, file := range exporter.files {
		exported[file.Path] = true
	}
	for _, p := range result.Owned.Sorted() {
		if !exported[p] {
			t.Errorf("%s not exported", p)
		}
	}
	if n := len(sink.labels); n < 2 || sink.labels[n-2] != ProgressExporting {
		t.Errorf("progress = %v, want %q before completion", sink.labels, ProgressExporting)
	}
}

func TestCloneRootCommand_ExportFailureKeepsCommit(t *testing.T) {
	f := newFixture(t)
	f.base(simpleRoot(t, shirt12, "src"))

	cmd := f.clone(shirt12, shirt87)
	cmd.ExportDirectory = "/tmp/out"
	cmd.Exporter = &recordingExporter{err: errors.New("disk full")}
	result, err := cmd.Execute(f.ctx)
	if err == nil || result == nil {
		t.Fatalf("Execute = (%v, %v), want result and error", result, err)
	}
	if _, ok := f.archive.Snapshot().Files[shirt87.RootFile()]; !ok {
		t.Error("clone should stay committed when the export fails")
	}
}

func TestInspectRootCommand(t *testing.T) {
	f := newFixture(t)
	seedShirtScenario(t, f)

	inspect := NewInspectRootCommand(f.archive, f.codecs(), domain.Root{Info: shirt12})
	inspect.Catalog = f.archive
	result, err := inspect.Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(result.Metadata.Variants) != 3 {
		t.Errorf("variants = %d, want 3", len(result.Metadata.Variants))
	}
	if len(result.Missing) != 1 || result.Missing[0] != materialPath(shirt12, 1, "b") {
		t.Errorf("Missing = %v", result.Missing)
	}

	kinds := map[string]string{}
	for _, file := range result.Files {
		kinds[file.Path] = file.Kind
	}
	wantKinds := map[string]string{
		shirt12.RootFile(): "meta",
		shirt12.ModelPath(domain.RaceHyurMidlanderMale): "model",
		materialPath(shirt12, 2, "a"):                   "material",
		normalTexture(shirt12):                          "texture",
		"chara/equipment/e0012/vfx/eff/ve0001.avfx":     "vfx",
	}
	for p, want := range wantKinds {
		if kinds[p] != want {
			t.Errorf("kind of %s = %q, want %q", p, kinds[p], want)
		}
	}
	if result.Item.Name != "Shirt 12" {
		t.Errorf("Item = %+v", result.Item)
	}

	uncataloged, err := NewInspectRootCommand(f.archive, f.codecs(), domain.Root{Info: shirt12}).Execute(f.ctx)
	if err != nil {
		t.Fatalf("Execute without catalog failed: %v", err)
	}
	if uncataloged.Item.Name != shirt12.BaseFileName(true) {
		t.Errorf("Item without catalog = %+v, want the base file name", uncataloged.Item)
	}
}
