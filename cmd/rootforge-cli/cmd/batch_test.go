package cmd

import (
	"testing"

	"rootforge/internal/domain"
)

func TestParseConversion(t *testing.T) {
	shirt12 := domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "top"}
	shirt87 := domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 87, Slot: "top"}

	tests := []struct {
		name        string
		arg         string
		wantVariant int
		wantErr     bool
	}{
		{name: "all variants", arg: "equipment/12/top:equipment/87/top", wantVariant: -1},
		{name: "one variant", arg: "equipment/12/top:equipment/87/top:3", wantVariant: 3},
		{name: "missing destination", arg: "equipment/12/top", wantErr: true},
		{name: "bad variant", arg: "equipment/12/top:equipment/87/top:x", wantErr: true},
		{name: "negative variant", arg: "equipment/12/top:equipment/87/top:-1", wantErr: true},
		{name: "bad root", arg: "shirt:equipment/87/top", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := parseConversion(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if conv.Source.Info != shirt12 || conv.Destination.Info != shirt87 {
				t.Errorf("unexpected roots %v -> %v", conv.Source.Info, conv.Destination.Info)
			}
			if conv.VariantIndex != tt.wantVariant {
				t.Errorf("VariantIndex = %d, want %d", conv.VariantIndex, tt.wantVariant)
			}
		})
	}
}
