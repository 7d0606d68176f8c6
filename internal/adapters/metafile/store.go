package metafile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	log "github.com/sirupsen/logrus"

	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// Store implements ports.MetadataStore over an archive transaction
type Store struct{}

var _ ports.MetadataStore = (*Store)(nil)

// NewStore creates a metadata store
func NewStore() *Store {
	return &Store{}
}

// GetMetadata decodes the root file, or assembles the metadata from the
// placement tables when the root has none. Roots with no data anywhere get
// empty metadata.
func (s *Store) GetMetadata(ctx context.Context, tx ports.Tx, root domain.RootInfo) (*domain.ItemMetadata, error) {
	data, err := readOptional(ctx, tx, root.RootFile())
	if err != nil {
		return nil, err
	}
	if data != nil {
		return Decode(root, data)
	}
	return s.fromTables(ctx, tx, root)
}

func (s *Store) fromTables(ctx context.Context, tx ports.Tx, root domain.RootInfo) (*domain.ItemMetadata, error) {
	meta := domain.NewItemMetadata(root)

	if root.UsesVariantTable() {
		data, err := readOptional(ctx, tx, root.VariantTablePath())
		if err != nil {
			return nil, err
		}
		if meta.Variants, err = readImc(data, root); err != nil {
			return nil, fmt.Errorf("%s: %w", root.VariantTablePath(), err)
		}
	}

	if usesEquipmentParameters(root) {
		table, err := readOptional(ctx, tx, EquipmentParameterFile)
		if err != nil {
			return nil, err
		}
		meta.Equipment = readEqp(table, root.PrimaryID, root.Slot)
	}
	if usesGimmickParameters(root) {
		table, err := readOptional(ctx, tx, GimmickParameterFile)
		if err != nil {
			return nil, err
		}
		meta.Gimmick = readGmp(table, root.PrimaryID)
	}

	if root.HasDeformationTable() {
		slot, _ := domain.SlotIndex(root.PrimaryType, root.Slot)
		for _, race := range domain.DeformationRaces {
			table, err := readOptional(ctx, tx, DeformerTablePath(root, race))
			if err != nil {
				return nil, err
			}
			if flags, ok := readEqdp(table, root.PrimaryID, slot); ok && (flags.Enabled || flags.HasModel) {
				meta.Deformations[race] = flags
			}
		}
	}

	if p := SkeletonTablePath(root); p != "" {
		data, err := readOptional(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		est, err := parseEst(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		meta.Skeletons = est.bindings(scopeOf(root))
	}
	return meta, nil
}

// SaveMetadata writes meta's root file. Unchanged content is not rewritten.
func (s *Store) SaveMetadata(ctx context.Context, tx ports.Tx, meta *domain.ItemMetadata, sourceApplication string, item domain.Item) error {
	p := meta.Root.RootFile()
	current, err := readOptional(ctx, tx, p)
	if err != nil {
		return err
	}
	data := Encode(meta)
	if current != nil && bytes.Equal(current, data) {
		return nil
	}
	if _, err := tx.WriteModFile(ctx, data, p, sourceApplication, item); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// ApplyMetadata writes meta into every placement table its root appears in.
// Table writes are attributed to the archive itself.
func (s *Store) ApplyMetadata(ctx context.Context, tx ports.Tx, meta *domain.ItemMetadata) error {
	root := meta.Root

	if root.UsesVariantTable() {
		err := s.update(ctx, tx, root.VariantTablePath(), func(old []byte) ([]byte, error) {
			if old == nil && len(meta.Variants) == 0 {
				return nil, nil
			}
			return writeImc(old, root, meta.Variants)
		})
		if err != nil {
			return err
		}
	}

	if usesEquipmentParameters(root) {
		err := s.update(ctx, tx, EquipmentParameterFile, func(old []byte) ([]byte, error) {
			return writeEqp(old, root.PrimaryID, root.Slot, meta.Equipment), nil
		})
		if err != nil {
			return err
		}
	}
	if usesGimmickParameters(root) {
		err := s.update(ctx, tx, GimmickParameterFile, func(old []byte) ([]byte, error) {
			return writeGmp(old, root.PrimaryID, meta.Gimmick), nil
		})
		if err != nil {
			return err
		}
	}

	if root.HasDeformationTable() {
		slot, _ := domain.SlotIndex(root.PrimaryType, root.Slot)
		for _, race := range domain.DeformationRaces {
			flags := meta.Deformations[race]
			err := s.update(ctx, tx, DeformerTablePath(root, race), func(old []byte) ([]byte, error) {
				if old == nil && !flags.Enabled && !flags.HasModel {
					return nil, nil
				}
				return writeEqdp(old, root.PrimaryID, slot, flags), nil
			})
			if err != nil {
				return err
			}
		}
	}

	if p := SkeletonTablePath(root); p != "" {
		err := s.update(ctx, tx, p, func(old []byte) ([]byte, error) {
			est, err := parseEst(old)
			if err != nil {
				return nil, err
			}
			if old == nil && len(meta.Skeletons) == 0 {
				return nil, nil
			}
			est.replace(scopeOf(root), meta.Skeletons)
			return est.bytes(), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// update rewrites one table through fn, which receives a private copy of the
// current content (nil when absent). A nil result or unchanged bytes skip the write.
func (s *Store) update(ctx context.Context, tx ports.Tx, p string, fn func(old []byte) ([]byte, error)) error {
	current, err := readOptional(ctx, tx, p)
	if err != nil {
		return err
	}
	next, err := fn(bytes.Clone(current))
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	if next == nil || bytes.Equal(current, next) {
		return nil
	}

	item := domain.Item{Name: path.Base(p), Category: domain.InternalSourceApplication}
	if _, err := tx.WriteModFile(ctx, next, p, domain.InternalSourceApplication, item); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	log.WithFields(log.Fields{"table": p, "size": len(next)}).Debug("updated placement table")
	return nil
}

func readOptional(ctx context.Context, tx ports.Tx, p string) ([]byte, error) {
	data, err := tx.ReadFile(ctx, p)
	if errors.Is(err, ports.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}
