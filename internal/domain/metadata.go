package domain

import "sort"

// VariantEntry is one row of a root's variant table
type VariantEntry struct {
	MaterialSet int
	Decal       int
	Mask        uint16
	Sound       int
	Vfx         int
	Animation   int
}

// SkeletonBinding points a race at an extra skeleton set
type SkeletonBinding struct {
	SetID int
}

// DeformationFlags are the two per-race bits of a slot's deformation entry
type DeformationFlags struct {
	Enabled  bool
	HasModel bool
}

// ParameterRecord is an opaque fixed-size bit-flag record (equipment or gimmick parameters)
type ParameterRecord struct {
	Data []byte
}

func (p *ParameterRecord) clone() *ParameterRecord {
	if p == nil {
		return nil
	}
	return &ParameterRecord{Data: append([]byte(nil), p.Data...)}
}

// ItemMetadata holds a root's per-variant and per-race tables.
// Variants[0] is the canonical first variant. A MaterialSet or Vfx of 0 is unset.
type ItemMetadata struct {
	Root         RootInfo
	Variants     []VariantEntry
	Skeletons    map[Race]SkeletonBinding
	Deformations map[Race]DeformationFlags
	Equipment    *ParameterRecord
	Gimmick      *ParameterRecord
}

// NewItemMetadata returns empty metadata for root
func NewItemMetadata(root RootInfo) *ItemMetadata {
	return &ItemMetadata{
		Root:         root,
		Skeletons:    map[Race]SkeletonBinding{},
		Deformations: map[Race]DeformationFlags{},
	}
}

// Clone returns a deep copy
func (m *ItemMetadata) Clone() *ItemMetadata {
	c := NewItemMetadata(m.Root)
	c.Variants = append([]VariantEntry(nil), m.Variants...)
	for r, s := range m.Skeletons {
		c.Skeletons[r] = s
	}
	for r, d := range m.Deformations {
		c.Deformations[r] = d
	}
	c.Equipment = m.Equipment.clone()
	c.Gimmick = m.Gimmick.clone()
	return c
}

// Retarget returns a deep copy re-pointed at root
func (m *ItemMetadata) Retarget(root RootInfo) *ItemMetadata {
	c := m.Clone()
	c.Root = root
	return c
}

// MaterialSets returns the distinct non-zero material set ids in ascending order
func (m *ItemMetadata) MaterialSets() []int {
	return distinctNonZero(m.Variants, func(v VariantEntry) int { return v.MaterialSet })
}

// VfxIDs returns the distinct non-zero vfx ids in ascending order
func (m *ItemMetadata) VfxIDs() []int {
	return distinctNonZero(m.Variants, func(v VariantEntry) int { return v.Vfx })
}

// FirstMaterialSet returns the first non-zero material set id, or 0
func (m *ItemMetadata) FirstMaterialSet() int {
	if m == nil {
		return 0
	}
	for _, v := range m.Variants {
		if v.MaterialSet != 0 {
			return v.MaterialSet
		}
	}
	return 0
}

// HasModel reports the "has model" deformation flag for race
func (m *ItemMetadata) HasModel(race Race) bool {
	if m == nil {
		return false
	}
	return m.Deformations[race].HasModel
}

func distinctNonZero(variants []VariantEntry, field func(VariantEntry) int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range variants {
		id := field(v)
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
