package metafile

import (
	"bytes"
	"context"
	"testing"

	"rootforge/internal/adapters/memory"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

var top12 = domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "top"}

func sampleMetadata(root domain.RootInfo) *domain.ItemMetadata {
	meta := domain.NewItemMetadata(root)
	meta.Variants = []domain.VariantEntry{
		{MaterialSet: 1, Mask: 0x3FF, Sound: 3},
		{MaterialSet: 2, Vfx: 4, Animation: 1},
	}
	meta.Skeletons[domain.RaceHyurMidlanderMale] = domain.SkeletonBinding{SetID: 12}
	meta.Deformations[domain.RaceHyurMidlanderMale] = domain.DeformationFlags{Enabled: true, HasModel: true}
	meta.Deformations[domain.RaceElezenMale] = domain.DeformationFlags{Enabled: true}
	meta.Equipment = &domain.ParameterRecord{Data: []byte{0x01, 0x80}}
	return meta
}

func TestEncodeDecode(t *testing.T) {
	meta := sampleMetadata(top12)

	data := Encode(meta)
	if !bytes.Equal(data, Encode(meta.Clone())) {
		t.Fatal("encoding is not deterministic")
	}

	got, err := Decode(top12, data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(got.Variants) != 2 || got.Variants[0] != meta.Variants[0] || got.Variants[1] != meta.Variants[1] {
		t.Errorf("variants = %+v", got.Variants)
	}
	if got.Skeletons[domain.RaceHyurMidlanderMale].SetID != 12 {
		t.Errorf("skeletons = %+v", got.Skeletons)
	}
	if !got.HasModel(domain.RaceHyurMidlanderMale) || got.HasModel(domain.RaceElezenMale) {
		t.Errorf("deformations = %+v", got.Deformations)
	}
	if got.Gimmick != nil || !bytes.Equal(got.Equipment.Data, []byte{0x01, 0x80}) {
		t.Errorf("records = %+v %+v", got.Equipment, got.Gimmick)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte("XXXX\x01\x00")},
		{"truncated", Encode(sampleMetadata(top12))[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(top12, tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStore_ApplyThenReadFromTables(t *testing.T) {
	ctx := context.Background()
	archive := memory.NewArchive()
	tx, err := archive.BeginTx(ctx, ports.TxOptions{})
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	store := NewStore()

	meta := sampleMetadata(top12)
	if err := store.ApplyMetadata(ctx, tx, meta); err != nil {
		t.Fatalf("ApplyMetadata failed: %v", err)
	}

	got, err := store.GetMetadata(ctx, tx, top12)
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if len(got.Variants) != 2 || got.Variants[1].MaterialSet != 2 || got.Variants[1].Vfx != 4 {
		t.Errorf("variants from table = %+v", got.Variants)
	}
	if !got.HasModel(domain.RaceHyurMidlanderMale) || !got.Deformations[domain.RaceElezenMale].Enabled {
		t.Errorf("deformations from tables = %+v", got.Deformations)
	}
	if got.Skeletons[domain.RaceHyurMidlanderMale].SetID != 12 {
		t.Errorf("skeletons from table = %+v", got.Skeletons)
	}
	if got.Equipment == nil || !bytes.Equal(got.Equipment.Data, []byte{0x01, 0x80}) {
		t.Errorf("equipment record from table = %+v", got.Equipment)
	}

	mods, _ := tx.ModList().Mods(ctx)
	for _, m := range mods {
		if !m.IsInternal() {
			t.Errorf("table write %s not attributed internally", m.Path)
		}
	}

	// applying again changes nothing
	before := len(mods)
	offsets := map[string]int64{}
	for _, m := range mods {
		offsets[m.Path] = m.ModOffset
	}
	if err := store.ApplyMetadata(ctx, tx, meta); err != nil {
		t.Fatalf("second ApplyMetadata failed: %v", err)
	}
	mods, _ = tx.ModList().Mods(ctx)
	if len(mods) != before {
		t.Errorf("expected %d ledger entries, got %d", before, len(mods))
	}
	for _, m := range mods {
		if offsets[m.Path] != m.ModOffset {
			t.Errorf("%s rewritten", m.Path)
		}
	}
}

func TestStore_SlotsShareTables(t *testing.T) {
	ctx := context.Background()
	tx, _ := memory.NewArchive().BeginTx(ctx, ports.TxOptions{})
	store := NewStore()

	met := domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "met"}
	metMeta := domain.NewItemMetadata(met)
	metMeta.Variants = []domain.VariantEntry{{MaterialSet: 7}}
	metMeta.Equipment = &domain.ParameterRecord{Data: []byte{1, 2, 3}}
	metMeta.Gimmick = &domain.ParameterRecord{Data: []byte{9, 9, 9, 9, 9}}

	if err := store.ApplyMetadata(ctx, tx, sampleMetadata(top12)); err != nil {
		t.Fatalf("ApplyMetadata top failed: %v", err)
	}
	if err := store.ApplyMetadata(ctx, tx, metMeta); err != nil {
		t.Fatalf("ApplyMetadata met failed: %v", err)
	}

	gotTop, _ := store.GetMetadata(ctx, tx, top12)
	gotMet, _ := store.GetMetadata(ctx, tx, met)
	if gotTop.Variants[0].MaterialSet != 1 || gotMet.Variants[0].MaterialSet != 7 {
		t.Errorf("variant columns mixed: top %+v met %+v", gotTop.Variants, gotMet.Variants)
	}
	if !bytes.Equal(gotTop.Equipment.Data, []byte{0x01, 0x80}) || !bytes.Equal(gotMet.Equipment.Data, []byte{1, 2, 3}) {
		t.Errorf("equipment slots mixed: top %v met %v", gotTop.Equipment.Data, gotMet.Equipment.Data)
	}
	if gotMet.Gimmick == nil || gotTop.Gimmick != nil {
		t.Errorf("gimmick record: top %+v met %+v", gotTop.Gimmick, gotMet.Gimmick)
	}
}

func TestStore_SaveMetadataSkipsIdenticalContent(t *testing.T) {
	ctx := context.Background()
	tx, _ := memory.NewArchive().BeginTx(ctx, ports.TxOptions{})
	store := NewStore()
	meta := sampleMetadata(top12)

	if err := store.SaveMetadata(ctx, tx, meta, "test", domain.Item{Name: "Shirt"}); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}
	first, _ := tx.ModList().Mod(ctx, top12.RootFile())
	if first == nil || first.ItemName != "Shirt" {
		t.Fatalf("expected ledger entry, got %+v", first)
	}

	if err := store.SaveMetadata(ctx, tx, meta.Clone(), "other", domain.Item{Name: "Other"}); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}
	second, _ := tx.ModList().Mod(ctx, top12.RootFile())
	if second.SourceApplication != "test" {
		t.Errorf("identical metadata was rewritten: %+v", second)
	}

	got, err := store.GetMetadata(ctx, tx, top12)
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if len(got.Variants) != 2 {
		t.Errorf("expected metadata from root file, got %+v", got)
	}
}

func TestStore_HairSkeletonsScopedToRace(t *testing.T) {
	ctx := context.Background()
	tx, _ := memory.NewArchive().BeginTx(ctx, ports.TxOptions{})
	store := NewStore()

	hair := func(race, id int) domain.RootInfo {
		return domain.RootInfo{PrimaryType: domain.ItemTypeHuman, PrimaryID: race, SecondaryType: domain.ItemTypeHair, SecondaryID: id, Slot: "hir"}
	}
	a := domain.NewItemMetadata(hair(101, 5))
	a.Skeletons[domain.RaceHyurMidlanderMale] = domain.SkeletonBinding{SetID: 5}
	b := domain.NewItemMetadata(hair(201, 5))
	b.Skeletons[domain.RaceHyurMidlanderFemale] = domain.SkeletonBinding{SetID: 5}

	for _, m := range []*domain.ItemMetadata{a, b} {
		if err := store.ApplyMetadata(ctx, tx, m); err != nil {
			t.Fatalf("ApplyMetadata failed: %v", err)
		}
	}

	got, _ := store.GetMetadata(ctx, tx, hair(101, 5))
	if len(got.Skeletons) != 1 || got.Skeletons[domain.RaceHyurMidlanderMale].SetID != 5 {
		t.Errorf("unexpected skeletons %+v", got.Skeletons)
	}
	got, _ = store.GetMetadata(ctx, tx, hair(201, 5))
	if len(got.Skeletons) != 1 {
		t.Errorf("second race lost its binding: %+v", got.Skeletons)
	}
}

func TestStore_EmptyRoot(t *testing.T) {
	ctx := context.Background()
	tx, _ := memory.NewArchive().BeginTx(ctx, ports.TxOptions{})

	got, err := NewStore().GetMetadata(ctx, tx, top12)
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if len(got.Variants) != 0 || len(got.Deformations) != 0 || got.Equipment != nil {
		t.Errorf("expected empty metadata, got %+v", got)
	}
}
