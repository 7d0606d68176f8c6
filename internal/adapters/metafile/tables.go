package metafile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"rootforge/internal/domain"
)

// Placement table locations
const (
	EquipmentParameterFile = "chara/xls/equipmentparameter/equipmentparameter.eqp"
	GimmickParameterFile   = "chara/xls/equipmentparameter/gimmickparameter.gmp"

	equipmentDeformerRoot = "chara/xls/charadb/equipmentdeformerparameter/"
	accessoryDeformerRoot = "chara/xls/charadb/accessorydeformerparameter/"
	extraSkeletonRoot     = "chara/xls/charadb/"
)

const (
	eqpEntrySize    = 8
	eqdpEntrySize   = 2
	eqdpHeaderSize  = 320
	gmpEntrySize    = 5
	imcHeaderSize   = 4
	imcEquipParts   = 5
	imcDefaultParts = 1
)

// eqpSlots are the byte ranges of each equipment slot within an 8-byte set entry
var eqpSlots = map[string]struct{ offset, size int }{
	"top": {0, 2},
	"dwn": {2, 1},
	"glv": {3, 1},
	"sho": {4, 1},
	"met": {5, 3},
}

// DeformerTablePath returns the per-race deformation table for root's kind
func DeformerTablePath(root domain.RootInfo, race domain.Race) string {
	dir := equipmentDeformerRoot
	if root.PrimaryType == domain.ItemTypeAccessory {
		dir = accessoryDeformerRoot
	}
	return dir + "c" + race.Code() + ".eqdp"
}

// SkeletonTablePath returns the extra-skeleton table root binds through, or ""
func SkeletonTablePath(root domain.RootInfo) string {
	switch {
	case root.PrimaryType == domain.ItemTypeEquipment && (root.Slot == "met" || root.Slot == "top"):
		return extraSkeletonRoot + "extra_" + root.Slot + ".est"
	case root.PrimaryType == domain.ItemTypeHuman && root.SecondaryType == domain.ItemTypeHair:
		return extraSkeletonRoot + "extra_hir.est"
	case root.PrimaryType == domain.ItemTypeHuman && root.SecondaryType == domain.ItemTypeFace:
		return extraSkeletonRoot + "extra_fac.est"
	}
	return ""
}

func usesEquipmentParameters(root domain.RootInfo) bool {
	_, ok := eqpSlots[root.Slot]
	return ok && root.PrimaryType == domain.ItemTypeEquipment && !root.HasSecondary()
}

func usesGimmickParameters(root domain.RootInfo) bool {
	return usesEquipmentParameters(root) && root.Slot == "met"
}

// readEqp returns the slot's bytes of set's entry, nil when the table is too short
func readEqp(table []byte, set int, slot string) *domain.ParameterRecord {
	s := eqpSlots[slot]
	start := set*eqpEntrySize + s.offset
	if start+s.size > len(table) {
		return nil
	}
	return &domain.ParameterRecord{Data: append([]byte(nil), table[start:start+s.size]...)}
}

// writeEqp stores rec in the slot's bytes, growing the table as needed. A nil
// record clears the slot.
func writeEqp(table []byte, set int, slot string, rec *domain.ParameterRecord) []byte {
	s := eqpSlots[slot]
	table = grow(table, (set+1)*eqpEntrySize)
	dst := table[set*eqpEntrySize+s.offset : set*eqpEntrySize+s.offset+s.size]
	clear(dst)
	if rec != nil {
		copy(dst, rec.Data)
	}
	return table
}

func readGmp(table []byte, set int) *domain.ParameterRecord {
	start := set * gmpEntrySize
	if start+gmpEntrySize > len(table) {
		return nil
	}
	return &domain.ParameterRecord{Data: append([]byte(nil), table[start:start+gmpEntrySize]...)}
}

func writeGmp(table []byte, set int, rec *domain.ParameterRecord) []byte {
	table = grow(table, (set+1)*gmpEntrySize)
	dst := table[set*gmpEntrySize : (set+1)*gmpEntrySize]
	clear(dst)
	if rec != nil {
		copy(dst, rec.Data)
	}
	return table
}

// eqdp entries hold 2 bits per slot: enabled, then has-model
func eqdpBit(set, slotIndex int) (byteIndex int, shift uint) {
	bit := (eqdpHeaderSize+set*eqdpEntrySize)*8 + slotIndex*2
	return bit / 8, uint(bit % 8)
}

func readEqdp(table []byte, set, slotIndex int) (domain.DeformationFlags, bool) {
	i, shift := eqdpBit(set, slotIndex)
	if i >= len(table) {
		return domain.DeformationFlags{}, false
	}
	b := table[i] >> shift
	return domain.DeformationFlags{Enabled: b&1 != 0, HasModel: b&2 != 0}, true
}

func writeEqdp(table []byte, set, slotIndex int, flags domain.DeformationFlags) []byte {
	i, shift := eqdpBit(set, slotIndex)
	table = grow(table, eqdpHeaderSize+(set+1)*eqdpEntrySize)
	table[i] &^= 3 << shift
	table[i] |= packDeformation(flags) << shift
	return table
}

type estKey struct {
	Set  uint16
	Race uint16
}

// estTable is count, sorted (set, race) keys, then one skeleton id per key
type estTable struct {
	keys []estKey
	ids  []uint16
}

func parseEst(data []byte) (*estTable, error) {
	t := &estTable{}
	if len(data) == 0 {
		return t, nil
	}
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading skeleton table: %w", err)
	}
	if int64(count)*6 > int64(r.Len()) {
		return nil, fmt.Errorf("skeleton table claims %d entries in %d bytes", count, r.Len())
	}
	t.keys = make([]estKey, count)
	t.ids = make([]uint16, count)
	if err := binary.Read(r, binary.LittleEndian, t.keys); err != nil {
		return nil, fmt.Errorf("reading skeleton keys: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, t.ids); err != nil {
		return nil, fmt.Errorf("reading skeleton ids: %w", err)
	}
	return t, nil
}

// estScope is the part of a skeleton table one root owns: every race of its
// set, or a single race when the root is itself race-specific
type estScope struct {
	set  int
	race domain.Race
}

func scopeOf(root domain.RootInfo) estScope {
	if root.PrimaryType == domain.ItemTypeHuman {
		return estScope{set: root.SecondaryID, race: domain.Race(root.PrimaryID)}
	}
	return estScope{set: root.PrimaryID}
}

func (s estScope) owns(k estKey) bool {
	return int(k.Set) == s.set && (s.race == 0 || domain.Race(k.Race) == s.race)
}

func (t *estTable) bindings(scope estScope) map[domain.Race]domain.SkeletonBinding {
	out := map[domain.Race]domain.SkeletonBinding{}
	for i, k := range t.keys {
		if scope.owns(k) {
			out[domain.Race(k.Race)] = domain.SkeletonBinding{SetID: int(t.ids[i])}
		}
	}
	return out
}

// replace drops every entry in scope and inserts bindings in key order
func (t *estTable) replace(scope estScope, bindings map[domain.Race]domain.SkeletonBinding) {
	type row struct {
		key estKey
		id  uint16
	}
	var rows []row
	for i, k := range t.keys {
		if !scope.owns(k) {
			rows = append(rows, row{k, t.ids[i]})
		}
	}
	for race, b := range bindings {
		key := estKey{Set: uint16(scope.set), Race: uint16(race)}
		if scope.owns(key) {
			rows = append(rows, row{key, uint16(b.SetID)})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].key.Set != rows[j].key.Set {
			return rows[i].key.Set < rows[j].key.Set
		}
		return rows[i].key.Race < rows[j].key.Race
	})
	t.keys = t.keys[:0]
	t.ids = t.ids[:0]
	for _, r := range rows {
		t.keys = append(t.keys, r.key)
		t.ids = append(t.ids, r.id)
	}
}

func (t *estTable) bytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(t.keys)))
	binary.Write(&buf, binary.LittleEndian, t.keys)
	binary.Write(&buf, binary.LittleEndian, t.ids)
	return buf.Bytes()
}

// variant tables: u16 variant count, u16 part count, then rows of part entries
func imcParts(root domain.RootInfo) (parts, column int) {
	if i, ok := domain.SlotIndex(root.PrimaryType, root.Slot); ok && !root.HasSecondary() {
		return imcEquipParts, i
	}
	return imcDefaultParts, 0
}

func readImc(data []byte, root domain.RootInfo) ([]domain.VariantEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < imcHeaderSize {
		return nil, fmt.Errorf("variant table too short: %d bytes", len(data))
	}
	count := int(binary.LittleEndian.Uint16(data[0:]))
	parts := int(binary.LittleEndian.Uint16(data[2:]))
	_, column := imcParts(root)
	if parts == 0 || column >= parts {
		return nil, fmt.Errorf("variant table has %d parts, need column %d", parts, column)
	}
	if imcHeaderSize+count*parts*variantSize > len(data) {
		return nil, fmt.Errorf("variant table claims %d variants in %d bytes", count, len(data))
	}
	variants := make([]domain.VariantEntry, 0, count)
	for i := range count {
		off := imcHeaderSize + (i*parts+column)*variantSize
		v, err := readVariant(bytes.NewReader(data[off : off+variantSize]))
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// writeImc replaces the root's column, growing the table to len(variants) rows.
// Rows beyond len(variants) keep their other columns and get a zero entry.
func writeImc(data []byte, root domain.RootInfo, variants []domain.VariantEntry) ([]byte, error) {
	parts, column := imcParts(root)
	count := 0
	if len(data) >= imcHeaderSize {
		count = int(binary.LittleEndian.Uint16(data[0:]))
		if stored := int(binary.LittleEndian.Uint16(data[2:])); stored != parts {
			return nil, fmt.Errorf("variant table has %d parts, expected %d", stored, parts)
		}
	}
	if len(variants) > count {
		count = len(variants)
	}

	out := grow(append([]byte(nil), data...), imcHeaderSize+count*parts*variantSize)
	binary.LittleEndian.PutUint16(out[0:], uint16(count))
	binary.LittleEndian.PutUint16(out[2:], uint16(parts))
	for i := range count {
		var v domain.VariantEntry
		if i < len(variants) {
			v = variants[i]
		}
		var buf bytes.Buffer
		writeVariant(&buf, v)
		off := imcHeaderSize + (i*parts+column)*variantSize
		copy(out[off:off+variantSize], buf.Bytes())
	}
	return out, nil
}

func grow(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	return append(b, make([]byte, n-len(b))...)
}
