package commands

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"rootforge/internal/application"
	"rootforge/internal/domain"
	"rootforge/internal/metrics"
	"rootforge/internal/ports"
)

// Conversion is one source to destination clone of a batch
type Conversion struct {
	Source       domain.Root
	Destination  domain.Root
	VariantIndex int
}

// CloneAndResetBatchResult contains the result of a batch
type CloneAndResetBatchResult struct {
	// Cleared is every path restored to its pre-batch state
	Cleared domain.PathSet
	// Imported is the caller's import set after moved files were swapped in
	Imported domain.PathSet
	Clones   []*CloneRootResult
	Message  string
}

// CloneAndResetBatchCommand clones several roots in one transaction and then
// restores the moved source files to the state recorded in Snapshot
type CloneAndResetBatchCommand struct {
	archive ports.Archive
	codecs  Codecs

	Conversions       []Conversion
	Imported          domain.PathSet
	Snapshot          map[string]domain.LedgerSnapshot
	SourceApplication string

	Catalog  ports.ItemCatalog
	Progress ports.ProgressSink

	// Tx, when set, is shared with the caller, who then owns commit and rollback
	Tx ports.Tx
}

// NewCloneAndResetBatchCommand creates a new CloneAndResetBatchCommand
func NewCloneAndResetBatchCommand(archive ports.Archive, codecs Codecs, conversions []Conversion, imported domain.PathSet, snapshot map[string]domain.LedgerSnapshot, sourceApplication string) *CloneAndResetBatchCommand {
	return &CloneAndResetBatchCommand{
		archive:           archive,
		codecs:            codecs,
		Conversions:       conversions,
		Imported:          imported,
		Snapshot:          snapshot,
		SourceApplication: sourceApplication,
	}
}

// Validate checks the batch without touching the archive
func (c *CloneAndResetBatchCommand) Validate() error {
	if err := application.ValidateRequired("sourceApplication", c.SourceApplication); err != nil {
		return err
	}
	if len(c.Conversions) == 0 {
		return &application.ValidationError{Field: "conversions", Message: "at least one conversion is required"}
	}
	return nil
}

// Execute runs every conversion, then the deferred reset
func (c *CloneAndResetBatchCommand) Execute(ctx context.Context) (result *CloneAndResetBatchResult, err error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tx := c.Tx
	owned := tx == nil
	if owned {
		if tx, err = c.archive.BeginTx(ctx, ports.TxOptions{}); err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() {
			if err == nil {
				return
			}
			if rbErr := tx.Rollback(); rbErr != nil {
				log.WithFields(log.Fields{"tx": tx.ID(), "err": rbErr}).Warn("rollback failed")
			}
		}()
	}

	imported := c.Imported.Clone()
	if imported == nil {
		imported = domain.NewPathSet()
	}
	written := domain.NewPathSet()
	reset := domain.NewPathSet()
	var clones []*CloneRootResult

	for _, conv := range groupByPartition(c.Conversions) {
		clone := NewCloneRootCommand(c.archive, c.codecs, conv.Source, conv.Destination, c.SourceApplication)
		clone.VariantIndex = conv.VariantIndex
		clone.Catalog = c.Catalog
		clone.Progress = c.Progress
		clone.Tx = tx

		res, err := clone.Execute(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to clone %s to %s: %w", conv.Source.Info, conv.Destination.Info, err)
		}
		clones = append(clones, res)

		res.Files.Each(func(oldPath, newPath string) {
			written.Add(newPath)
			if oldPath != newPath {
				imported.Add(newPath)
				reset.Add(oldPath)
			}
		})
		for _, p := range imported.Sorted() {
			if root, ok := domain.RootFromPath(p); ok && root == conv.Source.Info && !reset.Has(p) {
				imported.Remove(p)
				reset.Add(p)
			}
		}
	}

	// Roots may depend on each other, so nothing is restored until every clone ran.
	cleared := domain.NewPathSet()
	list := tx.ModList()
	for _, p := range reset.Sorted() {
		if written.Has(p) {
			continue
		}
		snap, ok := c.Snapshot[p]
		if !ok {
			return nil, &application.IntegrityError{Path: p}
		}
		if snap.Mod != nil {
			err = list.AddOrUpdateMod(ctx, *snap.Mod)
		} else {
			err = list.RemoveMod(ctx, p)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to restore ledger entry of %s: %w", p, err)
		}
		if err = tx.SetIndexOffset(ctx, p, snap.OriginalOffset); err != nil {
			return nil, fmt.Errorf("failed to restore %s: %w", p, err)
		}
		cleared.Add(p)
		imported.Remove(p)
		metrics.BatchResetFilesTotal.Inc()
	}

	if owned {
		if err = tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit batch: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"conversions": len(c.Conversions),
		"cleared":     len(cleared),
		"imported":    len(imported),
	}).Info("batch complete")

	return &CloneAndResetBatchResult{
		Cleared:  cleared,
		Imported: imported,
		Clones:   clones,
		Message:  fmt.Sprintf("Converted %d roots, reset %d files", len(c.Conversions), len(cleared)),
	}, nil
}

// groupByPartition orders conversions by the archive partition of their
// source, keeping the given order inside each partition
func groupByPartition(conversions []Conversion) []Conversion {
	var order []string
	groups := map[string][]Conversion{}
	for _, conv := range conversions {
		partition := domain.PartitionOf(conv.Source.Info.RootFile())
		if _, ok := groups[partition]; !ok {
			order = append(order, partition)
		}
		groups[partition] = append(groups[partition], conv)
	}

	out := make([]Conversion, 0, len(conversions))
	for _, partition := range order {
		out = append(out, groups[partition]...)
	}
	return out
}

// SnapshotLedger records the current ledger state of paths
func SnapshotLedger(ctx context.Context, tx ports.Tx, paths []string) (map[string]domain.LedgerSnapshot, error) {
	out := make(map[string]domain.LedgerSnapshot, len(paths))
	list := tx.ModList()
	for _, p := range paths {
		mod, err := list.Mod(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger entry of %s: %w", p, err)
		}
		offset, err := tx.IndexOffset(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read offset of %s: %w", p, err)
		}
		out[p] = domain.LedgerSnapshot{Mod: mod, OriginalOffset: offset}
	}
	return out, nil
}

// SnapshotBaseline records the state paths had before they were modified at
// all: no ledger entry and the unmodified offset. Use it when the files being
// converted were imported into the archive as modifications.
func SnapshotBaseline(ctx context.Context, tx ports.Tx, paths []string) (map[string]domain.LedgerSnapshot, error) {
	out := make(map[string]domain.LedgerSnapshot, len(paths))
	list := tx.ModList()
	for _, p := range paths {
		mod, err := list.Mod(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger entry of %s: %w", p, err)
		}
		if mod != nil {
			out[p] = domain.LedgerSnapshot{OriginalOffset: mod.OriginalOffset}
			continue
		}
		offset, err := tx.IndexOffset(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read offset of %s: %w", p, err)
		}
		out[p] = domain.LedgerSnapshot{OriginalOffset: offset}
	}
	return out, nil
}
