package domain

// ReconcileInput is everything the reconciler looks at
type ReconcileInput struct {
	Source      RootInfo
	Destination RootInfo

	// Original is the source metadata as read from the archive
	Original *ItemMetadata
	// SetOne is the metadata of equipment set 1, consulted when Source is set 0
	SetOne *ItemMetadata
	// Previous is the destination metadata before the clone
	Previous *ItemMetadata

	// VariantIndex selects a single variant to expose everywhere; -1 keeps all
	VariantIndex int
}

// ReconcileReport describes what the reconciler changed
type ReconcileReport struct {
	Padded            int
	Collapsed         bool
	MaterialSetsFixed int
}

// Reconcile builds the destination metadata from a copy of the source metadata.
// The inputs are not modified.
func Reconcile(in ReconcileInput) (*ItemMetadata, ReconcileReport) {
	var report ReconcileReport
	meta := in.Original.Retarget(in.Destination)

	switch {
	case in.Source.PrimaryType == ItemTypeEquipment && in.Source.PrimaryID == 0:
		if in.SetOne != nil {
			meta.Equipment = in.SetOne.Equipment.clone()
			if meta.Root.Slot == "met" {
				meta.Gimmick = in.SetOne.Gimmick.clone()
			}
		}
	case in.Destination.PrimaryType == ItemTypeEquipment && in.Destination.PrimaryID == 0:
		meta.Equipment = nil
		meta.Gimmick = nil
	}

	if in.Previous != nil && len(in.Previous.Variants) > len(meta.Variants) {
		var pad VariantEntry
		if len(meta.Variants) > 1 {
			pad = meta.Variants[1]
		} else if len(meta.Variants) == 1 {
			pad = meta.Variants[0]
		}
		for len(meta.Variants) < len(in.Previous.Variants) {
			meta.Variants = append(meta.Variants, pad)
			report.Padded++
		}
	}

	if in.VariantIndex >= 0 && in.VariantIndex < len(meta.Variants) {
		only := meta.Variants[in.VariantIndex]
		for i := range meta.Variants {
			meta.Variants[i] = only
		}
		report.Collapsed = true
	}

	for race := range meta.Skeletons {
		meta.Skeletons[race] = SkeletonBinding{SetID: in.Destination.EffectiveID()}
	}

	valid := meta.FirstMaterialSet()
	if valid == 0 {
		valid = in.Original.FirstMaterialSet()
	}
	if valid == 0 {
		valid = in.Previous.FirstMaterialSet()
	}
	if valid != 0 {
		for i := range meta.Variants {
			if meta.Variants[i].MaterialSet == 0 {
				meta.Variants[i].MaterialSet = valid
				report.MaterialSetsFixed++
			}
		}
	}

	return meta, report
}
