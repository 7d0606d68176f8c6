package application

import (
	"errors"
	"strings"
	"testing"

	"rootforge/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "sourceApplication",
			value:     "rootforge",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "sourceApplication",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "sourceApplication",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "source application is required") {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestValidateRoot(t *testing.T) {
	tests := []struct {
		name    string
		root    domain.RootInfo
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid equipment",
			root: domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "top"},
		},
		{
			name: "valid hair",
			root: domain.RootInfo{PrimaryType: domain.ItemTypeHuman, PrimaryID: 101, SecondaryType: domain.ItemTypeHair, SecondaryID: 5, Slot: "hir"},
		},
		{
			name:    "missing type",
			root:    domain.RootInfo{PrimaryID: 12},
			wantErr: true,
			errMsg:  "has no item type",
		},
		{
			name:    "negative id",
			root:    domain.RootInfo{PrimaryType: domain.ItemTypeWeapon, PrimaryID: -1},
			wantErr: true,
			errMsg:  "id must be between 0 and 9999",
		},
		{
			name:    "sub-id too large",
			root:    domain.RootInfo{PrimaryType: domain.ItemTypeWeapon, PrimaryID: 201, SecondaryType: domain.ItemTypeBody, SecondaryID: 10000},
			wantErr: true,
			errMsg:  "sub-id must be between 0 and 9999",
		},
		{
			name:    "accessory slot on equipment",
			root:    domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "ear"},
			wantErr: true,
			errMsg:  "invalid slot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoot("source", tt.root)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateCloneable(t *testing.T) {
	face := domain.RootInfo{PrimaryType: domain.ItemTypeHuman, PrimaryID: 101, SecondaryType: domain.ItemTypeFace, SecondaryID: 1}
	err := ValidateCloneable(face)
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}

	top := domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "top"}
	if err := ValidateCloneable(top); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"parse", &ParseError{Path: "a.mdl", Err: errors.New("bad")}, ErrParse},
		{"integrity", &IntegrityError{Path: "a.mdl"}, ErrIntegrity},
		{"synthesis", &SynthesisError{Err: &domain.SynthesisError{Race: domain.RaceViera}}, ErrSynthesis},
		{"rejected", &RejectedError{Reason: "locked"}, ErrRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
		})
	}
}
