package domain

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// ItemType is the archive category an item root lives under
type ItemType string

const (
	ItemTypeNone      ItemType = ""
	ItemTypeWeapon    ItemType = "weapon"
	ItemTypeEquipment ItemType = "equipment"
	ItemTypeAccessory ItemType = "accessory"
	ItemTypeHuman     ItemType = "human"
	ItemTypeHair      ItemType = "hair"
	ItemTypeBody      ItemType = "body"
	ItemTypeFace      ItemType = "face"
	ItemTypeTail      ItemType = "tail"
	ItemTypeEar       ItemType = "zear"
	ItemTypeMonster   ItemType = "monster"
	ItemTypeDemihuman ItemType = "demihuman"
)

var itemTypePrefixes = map[ItemType]string{
	ItemTypeWeapon:    "w",
	ItemTypeEquipment: "e",
	ItemTypeAccessory: "a",
	ItemTypeHuman:     "c",
	ItemTypeHair:      "h",
	ItemTypeBody:      "b",
	ItemTypeFace:      "f",
	ItemTypeTail:      "t",
	ItemTypeEar:       "z",
	ItemTypeMonster:   "m",
	ItemTypeDemihuman: "d",
}

// Prefix returns the single-letter token used in folder and file names
func (t ItemType) Prefix() string {
	return itemTypePrefixes[t]
}

// ParseItemType accepts either the folder name ("equipment") or the prefix ("e")
func ParseItemType(s string) (ItemType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := itemTypePrefixes[ItemType(s)]; ok {
		return ItemType(s), true
	}
	for t, p := range itemTypePrefixes {
		if p == s {
			return t, true
		}
	}
	if s == "ear" {
		return ItemTypeEar, true
	}
	return ItemTypeNone, false
}

// Slot codes for the five equipment and five accessory positions, in table order.
var (
	EquipmentSlots = []string{"met", "top", "glv", "dwn", "sho"}
	AccessorySlots = []string{"ear", "nek", "wrs", "rir", "ril"}
)

var knownSlots = map[string]bool{
	"met": true, "top": true, "glv": true, "dwn": true, "sho": true,
	"ear": true, "nek": true, "wrs": true, "rir": true, "ril": true,
	"hir": true, "fac": true, "til": true, "zer": true,
}

// SlotIndex returns the position of slot within its item type's slot table
func SlotIndex(t ItemType, slot string) (int, bool) {
	var slots []string
	switch t {
	case ItemTypeEquipment:
		slots = EquipmentSlots
	case ItemTypeAccessory:
		slots = AccessorySlots
	default:
		return 0, false
	}
	for i, s := range slots {
		if s == slot {
			return i, true
		}
	}
	return 0, false
}

// RootInfo identifies an item root. Values are comparable; two roots are
// equal when every field matches.
type RootInfo struct {
	PrimaryType   ItemType
	PrimaryID     int
	SecondaryType ItemType
	SecondaryID   int
	Slot          string
}

// Item is the representative catalog entry of a root, used for attribution only
type Item struct {
	Name     string
	Category string
}

// Root pairs a root address with its representative item
type Root struct {
	Info RootInfo
	Item Item
}

func pad4(n int) string {
	return fmt.Sprintf("%04d", n)
}

// HasSecondary reports whether the root carries a sub-type and sub-id
func (r RootInfo) HasSecondary() bool {
	return r.SecondaryType != ItemTypeNone
}

// IsCloneable reports whether the root can be the source or target of a clone
func (r RootInfo) IsCloneable() bool {
	switch r.PrimaryType {
	case ItemTypeWeapon, ItemTypeEquipment, ItemTypeAccessory:
		return true
	case ItemTypeHuman:
		return r.SecondaryType == ItemTypeHair
	default:
		return false
	}
}

// IsSlotless reports whether the root has no slot or is addressed by a sub-type.
// Such roots own their entire folder.
func (r RootInfo) IsSlotless() bool {
	return r.Slot == "" || r.HasSecondary()
}

// RootFolder returns the folder that holds every file of the root, with a trailing slash
func (r RootInfo) RootFolder() string {
	var b strings.Builder
	b.WriteString("chara/")
	b.WriteString(string(r.PrimaryType))
	b.WriteString("/")
	b.WriteString(r.PrimaryType.Prefix())
	b.WriteString(pad4(r.PrimaryID))
	b.WriteString("/")
	if r.HasSecondary() {
		b.WriteString("obj/")
		b.WriteString(string(r.SecondaryType))
		b.WriteString("/")
		b.WriteString(r.SecondaryType.Prefix())
		b.WriteString(pad4(r.SecondaryID))
		b.WriteString("/")
	}
	return b.String()
}

// BaseFileName returns the shared file-name token, e.g. e0012_top or c0101h0005_hir
func (r RootInfo) BaseFileName(includeSlot bool) string {
	name := r.PrimaryType.Prefix() + pad4(r.PrimaryID)
	if r.HasSecondary() {
		name += r.SecondaryType.Prefix() + pad4(r.SecondaryID)
	}
	if includeSlot && r.Slot != "" {
		name += "_" + r.Slot
	}
	return name
}

// RaceFileName returns the per-race token, e.g. c0101e0012_top. Roots with a
// sub-type already embed their race and return BaseFileName(true).
func (r RootInfo) RaceFileName(race Race) string {
	if r.HasSecondary() {
		return r.BaseFileName(true)
	}
	return "c" + race.Code() + r.BaseFileName(true)
}

// RootFile returns the path of the root's metadata file
func (r RootInfo) RootFile() string {
	return r.RootFolder() + r.BaseFileName(true) + ".meta"
}

// EffectiveID is the id used for skeleton bindings: the sub-id when present
func (r RootInfo) EffectiveID() int {
	if r.HasSecondary() {
		return r.SecondaryID
	}
	return r.PrimaryID
}

// MaterialSetFolder returns the folder for material set id, with a trailing slash
func (r RootInfo) MaterialSetFolder(setID int) string {
	return r.RootFolder() + "material/v" + pad4(setID) + "/"
}

// ModelPath returns the model file for race. Roots with a sub-type have a single model.
func (r RootInfo) ModelPath(race Race) string {
	return r.RootFolder() + "model/" + r.RaceFileName(race) + ".mdl"
}

// VariantTablePath returns the path of the root's variant table file
func (r RootInfo) VariantTablePath() string {
	return r.RootFolder() + r.BaseFileName(false) + ".imc"
}

// HairMaterialRoot returns the root whose folder holds the root's hair materials.
// Hairstyles 115 through 200 share the materials stored under race 0101.
func (r RootInfo) HairMaterialRoot() RootInfo {
	if r.PrimaryType == ItemTypeHuman && r.SecondaryType == ItemTypeHair &&
		r.SecondaryID >= 115 && r.SecondaryID <= 200 {
		shared := r
		shared.PrimaryID = int(RaceHyurMidlanderMale)
		return shared
	}
	return r
}

// UsesVariantTable reports whether the root's variants live in a variant table
func (r RootInfo) UsesVariantTable() bool {
	switch r.PrimaryType {
	case ItemTypeWeapon, ItemTypeEquipment, ItemTypeAccessory, ItemTypeMonster, ItemTypeDemihuman:
		return true
	}
	return false
}

// HasDeformationTable reports whether per-race model flags exist for the root
func (r RootInfo) HasDeformationTable() bool {
	_, ok := SlotIndex(r.PrimaryType, r.Slot)
	return ok && !r.HasSecondary()
}

// VfxPathFor resolves a variant's vfx id to its folder and file name.
// Id 0 means the variant has no effect and yields empty strings.
func (r RootInfo) VfxPathFor(vfxID int) (folder, file string) {
	if vfxID == 0 {
		return "", ""
	}
	return r.RootFolder() + "vfx/eff", "v" + r.PrimaryType.Prefix() + pad4(vfxID) + ".avfx"
}

// String renders the root in the form accepted by ParseRoot
func (r RootInfo) String() string {
	parts := []string{string(r.PrimaryType), strconv.Itoa(r.PrimaryID)}
	if r.HasSecondary() {
		parts = append(parts, string(r.SecondaryType), strconv.Itoa(r.SecondaryID))
	}
	if r.Slot != "" {
		parts = append(parts, r.Slot)
	}
	return strings.Join(parts, "/")
}

// ParseRoot parses type/id[/subtype/subid][/slot], e.g. equipment/12/top or
// human/101/hair/5. Archive paths beginning with chara/ are resolved with RootFromPath.
func ParseRoot(s string) (RootInfo, error) {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if strings.HasPrefix(s, "chara/") {
		root, ok := RootFromPath(s)
		if !ok {
			return RootInfo{}, fmt.Errorf("cannot resolve root from path %q", s)
		}
		return root, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) < 2 || len(parts) > 5 {
		return RootInfo{}, fmt.Errorf("invalid root %q: expected type/id[/subtype/subid][/slot]", s)
	}

	var root RootInfo
	t, ok := ParseItemType(parts[0])
	if !ok {
		return RootInfo{}, fmt.Errorf("invalid root %q: unknown item type %q", s, parts[0])
	}
	root.PrimaryType = t
	id, err := parseID(parts[1])
	if err != nil {
		return RootInfo{}, fmt.Errorf("invalid root %q: %w", s, err)
	}
	root.PrimaryID = id

	rest := parts[2:]
	if len(rest) >= 2 {
		st, ok := ParseItemType(rest[0])
		if !ok {
			return RootInfo{}, fmt.Errorf("invalid root %q: unknown sub-type %q", s, rest[0])
		}
		sid, err := parseID(rest[1])
		if err != nil {
			return RootInfo{}, fmt.Errorf("invalid root %q: %w", s, err)
		}
		root.SecondaryType = st
		root.SecondaryID = sid
		rest = rest[2:]
	}
	if len(rest) == 1 {
		root.Slot = rest[0]
	} else if len(rest) > 1 {
		return RootInfo{}, fmt.Errorf("invalid root %q: unexpected trailing segments", s)
	}
	return root, nil
}

func parseID(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 9999 {
		return 0, fmt.Errorf("id must be a number between 0 and 9999, got %q", s)
	}
	return n, nil
}

var slotTokenRegex = regexp.MustCompile(`_([a-z]{3})`)

// RootFromPath extracts the root that owns an archive path. The slot is read
// from the file name when one of the known slot tokens is present.
func RootFromPath(p string) (RootInfo, bool) {
	segs := strings.Split(p, "/")
	if len(segs) < 3 || segs[0] != "chara" {
		return RootInfo{}, false
	}
	t, ok := ParseItemType(segs[1])
	if !ok || string(t) != segs[1] {
		return RootInfo{}, false
	}
	id, ok := parseIDToken(segs[2], t)
	if !ok {
		return RootInfo{}, false
	}
	root := RootInfo{PrimaryType: t, PrimaryID: id}

	if len(segs) >= 6 && segs[3] == "obj" {
		st, ok := ParseItemType(segs[4])
		if ok && string(st) == segs[4] {
			if sid, ok := parseIDToken(segs[5], st); ok {
				root.SecondaryType = st
				root.SecondaryID = sid
			}
		}
	}

	for _, m := range slotTokenRegex.FindAllStringSubmatch(path.Base(p), -1) {
		if knownSlots[m[1]] {
			root.Slot = m[1]
			break
		}
	}
	return root, true
}

func parseIDToken(tok string, t ItemType) (int, bool) {
	if len(tok) != 5 || tok[:1] != t.Prefix() {
		return 0, false
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PartitionOf returns the archive partition an archive path is stored in
func PartitionOf(p string) string {
	if i := strings.IndexByte(p, '/'); i > 0 {
		return p[:i]
	}
	return p
}
