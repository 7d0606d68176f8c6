// Package metafile stores root metadata. The root file (<base>.meta) is a
// compact little-endian record; roots without one are read from the
// placement tables the archive keeps for every item.
package metafile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"rootforge/internal/domain"
)

const (
	metaMagic   = "RFMD"
	metaVersion = 1
)

// ErrBadMeta is returned for root files that fail to decode
var ErrBadMeta = errors.New("malformed metadata file")

// variant rows use the variant table layout: set, decal, mask|sound<<10, vfx, animation
func writeVariant(w io.Writer, v domain.VariantEntry) {
	binary.Write(w, binary.LittleEndian, [2]uint8{uint8(v.MaterialSet), uint8(v.Decal)})
	binary.Write(w, binary.LittleEndian, v.Mask&0x3FF|uint16(v.Sound)<<10)
	binary.Write(w, binary.LittleEndian, [2]uint8{uint8(v.Vfx), uint8(v.Animation)})
}

func readVariant(r io.Reader) (domain.VariantEntry, error) {
	var raw struct {
		Set, Decal uint8
		Attr       uint16
		Vfx, Anim  uint8
	}
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return domain.VariantEntry{}, err
	}
	return domain.VariantEntry{
		MaterialSet: int(raw.Set),
		Decal:       int(raw.Decal),
		Mask:        raw.Attr & 0x3FF,
		Sound:       int(raw.Attr >> 10),
		Vfx:         int(raw.Vfx),
		Animation:   int(raw.Anim),
	}, nil
}

const variantSize = 6

// Encode serializes meta. Map entries are written in race order so equal
// metadata always encodes to equal bytes.
func Encode(meta *domain.ItemMetadata) []byte {
	var buf bytes.Buffer
	buf.WriteString(metaMagic)
	le := binary.LittleEndian
	binary.Write(&buf, le, uint16(metaVersion))

	rootFile := meta.Root.RootFile()
	binary.Write(&buf, le, uint16(len(rootFile)))
	buf.WriteString(rootFile)

	binary.Write(&buf, le, uint16(len(meta.Variants)))
	for _, v := range meta.Variants {
		writeVariant(&buf, v)
	}

	races := sortedRaces(meta.Skeletons)
	binary.Write(&buf, le, uint16(len(races)))
	for _, r := range races {
		binary.Write(&buf, le, [2]uint16{uint16(r), uint16(meta.Skeletons[r].SetID)})
	}

	races = sortedRaces(meta.Deformations)
	binary.Write(&buf, le, uint16(len(races)))
	for _, r := range races {
		binary.Write(&buf, le, uint16(r))
		buf.WriteByte(packDeformation(meta.Deformations[r]))
	}

	writeRecord(&buf, meta.Equipment)
	writeRecord(&buf, meta.Gimmick)
	return buf.Bytes()
}

func writeRecord(buf *bytes.Buffer, rec *domain.ParameterRecord) {
	if rec == nil {
		buf.WriteByte(0xFF)
		return
	}
	buf.WriteByte(uint8(len(rec.Data)))
	buf.Write(rec.Data)
}

func readRecord(r *bytes.Reader) (*domain.ParameterRecord, error) {
	n, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if n == 0xFF {
		return nil, nil
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return &domain.ParameterRecord{Data: data}, nil
}

// Decode parses a root file written by Encode
func Decode(root domain.RootInfo, data []byte) (*domain.ItemMetadata, error) {
	meta, err := decode(root, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", root.RootFile(), ErrBadMeta, err)
	}
	return meta, nil
}

func decode(root domain.RootInfo, data []byte) (*domain.ItemMetadata, error) {
	r := bytes.NewReader(data)
	le := binary.LittleEndian

	magic := make([]byte, len(metaMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != metaMagic {
		return nil, errors.New("bad magic")
	}
	var version, pathLen uint16
	if err := binary.Read(r, le, &version); err != nil {
		return nil, err
	}
	if version != metaVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}
	if err := binary.Read(r, le, &pathLen); err != nil {
		return nil, err
	}
	if _, err := r.Seek(int64(pathLen), io.SeekCurrent); err != nil {
		return nil, err
	}

	meta := domain.NewItemMetadata(root)
	var count uint16
	if err := binary.Read(r, le, &count); err != nil {
		return nil, err
	}
	for range count {
		v, err := readVariant(r)
		if err != nil {
			return nil, err
		}
		meta.Variants = append(meta.Variants, v)
	}

	if err := binary.Read(r, le, &count); err != nil {
		return nil, err
	}
	for range count {
		var rec [2]uint16
		if err := binary.Read(r, le, &rec); err != nil {
			return nil, err
		}
		meta.Skeletons[domain.Race(rec[0])] = domain.SkeletonBinding{SetID: int(rec[1])}
	}

	if err := binary.Read(r, le, &count); err != nil {
		return nil, err
	}
	for range count {
		var race uint16
		if err := binary.Read(r, le, &race); err != nil {
			return nil, err
		}
		flags, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		meta.Deformations[domain.Race(race)] = unpackDeformation(flags)
	}

	var err error
	if meta.Equipment, err = readRecord(r); err != nil {
		return nil, err
	}
	if meta.Gimmick, err = readRecord(r); err != nil {
		return nil, err
	}
	return meta, nil
}

func packDeformation(d domain.DeformationFlags) byte {
	var b byte
	if d.Enabled {
		b |= 1
	}
	if d.HasModel {
		b |= 2
	}
	return b
}

func unpackDeformation(b byte) domain.DeformationFlags {
	return domain.DeformationFlags{Enabled: b&1 != 0, HasModel: b&2 != 0}
}

func sortedRaces[V any](m map[domain.Race]V) []domain.Race {
	races := make([]domain.Race, 0, len(m))
	for r := range m {
		races = append(races, r)
	}
	sort.Slice(races, func(i, j int) bool { return races[i] < races[j] })
	return races
}
