package domain

import "testing"

var (
	equipTop = RootInfo{PrimaryType: ItemTypeEquipment, PrimaryID: 12, Slot: "top"}
	weapon   = RootInfo{PrimaryType: ItemTypeWeapon, PrimaryID: 201, SecondaryType: ItemTypeBody, SecondaryID: 1}
	hair     = RootInfo{PrimaryType: ItemTypeHuman, PrimaryID: 101, SecondaryType: ItemTypeHair, SecondaryID: 5, Slot: "hir"}
)

func TestRootInfo_Names(t *testing.T) {
	tests := []struct {
		name       string
		root       RootInfo
		folder     string
		file       string
		base       string
		baseNoSlot string
		model      string
	}{
		{
			name:       "equipment",
			root:       equipTop,
			folder:     "chara/equipment/e0012/",
			file:       "chara/equipment/e0012/e0012_top.meta",
			base:       "e0012_top",
			baseNoSlot: "e0012",
			model:      "chara/equipment/e0012/model/c0101e0012_top.mdl",
		},
		{
			name:       "accessory",
			root:       RootInfo{PrimaryType: ItemTypeAccessory, PrimaryID: 3, Slot: "ear"},
			folder:     "chara/accessory/a0003/",
			file:       "chara/accessory/a0003/a0003_ear.meta",
			base:       "a0003_ear",
			baseNoSlot: "a0003",
			model:      "chara/accessory/a0003/model/c0101a0003_ear.mdl",
		},
		{
			name:       "weapon",
			root:       weapon,
			folder:     "chara/weapon/w0201/obj/body/b0001/",
			file:       "chara/weapon/w0201/obj/body/b0001/w0201b0001.meta",
			base:       "w0201b0001",
			baseNoSlot: "w0201b0001",
			model:      "chara/weapon/w0201/obj/body/b0001/model/w0201b0001.mdl",
		},
		{
			name:       "hair",
			root:       hair,
			folder:     "chara/human/c0101/obj/hair/h0005/",
			file:       "chara/human/c0101/obj/hair/h0005/c0101h0005_hir.meta",
			base:       "c0101h0005_hir",
			baseNoSlot: "c0101h0005",
			model:      "chara/human/c0101/obj/hair/h0005/model/c0101h0005_hir.mdl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.root.RootFolder(); got != tt.folder {
				t.Errorf("RootFolder() = %q, want %q", got, tt.folder)
			}
			if got := tt.root.RootFile(); got != tt.file {
				t.Errorf("RootFile() = %q, want %q", got, tt.file)
			}
			if got := tt.root.BaseFileName(true); got != tt.base {
				t.Errorf("BaseFileName(true) = %q, want %q", got, tt.base)
			}
			if got := tt.root.BaseFileName(false); got != tt.baseNoSlot {
				t.Errorf("BaseFileName(false) = %q, want %q", got, tt.baseNoSlot)
			}
			if got := tt.root.ModelPath(RaceHyurMidlanderMale); got != tt.model {
				t.Errorf("ModelPath() = %q, want %q", got, tt.model)
			}
		})
	}
}

func TestRootInfo_IsCloneable(t *testing.T) {
	tests := []struct {
		name string
		root RootInfo
		want bool
	}{
		{"equipment", equipTop, true},
		{"weapon", weapon, true},
		{"accessory", RootInfo{PrimaryType: ItemTypeAccessory, PrimaryID: 1, Slot: "nek"}, true},
		{"hair", hair, true},
		{"face", RootInfo{PrimaryType: ItemTypeHuman, PrimaryID: 101, SecondaryType: ItemTypeFace, SecondaryID: 1}, false},
		{"monster", RootInfo{PrimaryType: ItemTypeMonster, PrimaryID: 7001, SecondaryType: ItemTypeBody, SecondaryID: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.root.IsCloneable(); got != tt.want {
				t.Errorf("IsCloneable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootInfo_HairMaterialRoot(t *testing.T) {
	shared := RootInfo{PrimaryType: ItemTypeHuman, PrimaryID: 801, SecondaryType: ItemTypeHair, SecondaryID: 130, Slot: "hir"}
	if got := shared.HairMaterialRoot().PrimaryID; got != 101 {
		t.Errorf("expected shared hair to use race 101, got %d", got)
	}
	if got := hair.HairMaterialRoot(); got != hair {
		t.Errorf("expected own root for hair 5, got %v", got)
	}
}

func TestRootInfo_VfxPathFor(t *testing.T) {
	folder, file := equipTop.VfxPathFor(3)
	if folder != "chara/equipment/e0012/vfx/eff" || file != "ve0003.avfx" {
		t.Errorf("unexpected vfx path %q %q", folder, file)
	}
	if folder, file := equipTop.VfxPathFor(0); folder != "" || file != "" {
		t.Errorf("expected empty vfx path for id 0, got %q %q", folder, file)
	}
}

func TestParseRoot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RootInfo
		wantErr bool
	}{
		{name: "equipment", input: "equipment/12/top", want: equipTop},
		{name: "prefix form", input: "e/12/top", want: equipTop},
		{name: "weapon", input: "weapon/201/body/1", want: weapon},
		{name: "hair", input: "human/101/hair/5/hir", want: hair},
		{name: "archive path", input: "chara/equipment/e0012/model/c0101e0012_top.mdl", want: equipTop},
		{name: "unknown type", input: "vehicle/1", wantErr: true},
		{name: "bad id", input: "equipment/abc/top", wantErr: true},
		{name: "id too large", input: "equipment/10000/top", wantErr: true},
		{name: "too short", input: "equipment", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRoot(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRoot(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRootFromPath(t *testing.T) {
	tests := []struct {
		path string
		want RootInfo
		ok   bool
	}{
		{"chara/equipment/e0012/material/v0001/mt_c0101e0012_top_a.mtrl", equipTop, true},
		{"chara/equipment/e0012/texture/v01_c0101e0012_top_n.tex", equipTop, true},
		{"chara/weapon/w0201/obj/body/b0001/model/w0201b0001.mdl", weapon, true},
		{"chara/human/c0101/obj/hair/h0005/model/c0101h0005_hir.mdl", hair, true},
		{"chara/equipment/e0012/vfx/eff/ve0001.avfx", RootInfo{PrimaryType: ItemTypeEquipment, PrimaryID: 12}, true},
		{"chara/common/texture/dummy.tex", RootInfo{}, false},
		{"ui/icon/000000/000001.tex", RootInfo{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := RootFromPath(tt.path)
			if ok != tt.ok {
				t.Fatalf("RootFromPath ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("RootFromPath = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPartitionOf(t *testing.T) {
	if got := PartitionOf("chara/equipment/e0012/e0012_top.meta"); got != "chara" {
		t.Errorf("expected chara, got %q", got)
	}
	if got := PartitionOf("loose"); got != "loose" {
		t.Errorf("expected loose, got %q", got)
	}
}
