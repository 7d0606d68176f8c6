package application

import (
	"fmt"
	"strings"

	"rootforge/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "sourceApplication" -> "source application")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"source":            "source root",
		"destination":       "destination root",
		"sourceApplication": "source application",
		"variantIndex":      "variant index",
		"conversions":       "conversions",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateRoot checks that a root's ids and slot are well formed.
// Returns a ValidationError describing the first problem found.
func ValidateRoot(fieldName string, root domain.RootInfo) error {
	displayName := formatFieldName(fieldName)

	if root.PrimaryType == domain.ItemTypeNone || root.PrimaryType.Prefix() == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s has no item type", displayName),
		}
	}
	if root.PrimaryID < 0 || root.PrimaryID > 9999 {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s id must be between 0 and 9999, got %d", displayName, root.PrimaryID),
		}
	}
	if root.HasSecondary() {
		if root.SecondaryType.Prefix() == "" {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("%s has unknown sub-type %q", displayName, root.SecondaryType),
			}
		}
		if root.SecondaryID < 0 || root.SecondaryID > 9999 {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("%s sub-id must be between 0 and 9999, got %d", displayName, root.SecondaryID),
			}
		}
	}
	if (root.PrimaryType == domain.ItemTypeEquipment || root.PrimaryType == domain.ItemTypeAccessory) && !root.HasSecondary() {
		if _, ok := domain.SlotIndex(root.PrimaryType, root.Slot); !ok {
			return &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("%s has invalid slot %q for %s", displayName, root.Slot, root.PrimaryType),
			}
		}
	}
	return nil
}

// ValidateCloneable rejects roots that cannot take part in a clone
func ValidateCloneable(root domain.RootInfo) error {
	if !root.IsCloneable() {
		return &RejectedError{
			Root:   root,
			Reason: "only weapon, equipment, accessory and hair roots can be cloned",
		}
	}
	return nil
}
