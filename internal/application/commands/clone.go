package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"rootforge/internal/application"
	"rootforge/internal/domain"
	"rootforge/internal/metrics"
	"rootforge/internal/ports"
)

// CloneState is the stage a clone is in
type CloneState int

const (
	StateValidating CloneState = iota
	StateDiscovering
	StatePlanning
	StatePurging
	StateWritingModels
	StateWritingTextures
	StateWritingMaterials
	StateWritingVfx
	StateReconciling
	StateBackfilling
	StateUpdatingLedger
	StateCommitting
	StateDone
	StateAborting
	StateCancelled
)

var cloneStateNames = [...]string{
	StateValidating:       "validating",
	StateDiscovering:      "discovering",
	StatePlanning:         "planning",
	StatePurging:          "purging",
	StateWritingModels:    "writing models",
	StateWritingTextures:  "writing textures",
	StateWritingMaterials: "writing materials",
	StateWritingVfx:       "writing vfx",
	StateReconciling:      "reconciling metadata",
	StateBackfilling:      "backfilling material sets",
	StateUpdatingLedger:   "updating ledger",
	StateCommitting:       "committing",
	StateDone:             "done",
	StateAborting:         "aborting",
	StateCancelled:        "cancelled",
}

func (s CloneState) String() string {
	if s < 0 || int(s) >= len(cloneStateNames) {
		return fmt.Sprintf("CloneState(%d)", int(s))
	}
	return cloneStateNames[s]
}

// Progress labels, reported in this order
const (
	ProgressAnalyzing   = "Analyzing items and variants..."
	ProgressCalculating = "Calculating files to copy..."
	ProgressPurging     = "Removing existing modifications to destination root..."
	ProgressModels      = "Copying models..."
	ProgressTextures    = "Copying textures..."
	ProgressMaterials   = "Copying materials..."
	ProgressVfx         = "Copying VFX..."
	ProgressPadding     = "Creating missing variants..."
	ProgressCollapsing  = "Setting single-variant data..."
	ProgressMetadata    = "Copying metdata..."
	ProgressBackfill    = "Filling in missing material sets..."
	ProgressLedger      = "Updating modlist..."
	ProgressExporting   = "Exporting files..."
	ProgressComplete    = "Root copy complete."
)

// Codecs bundles the format collaborators a clone reads and writes through
type Codecs struct {
	Models    ports.ModelCodec
	Materials ports.MaterialCodec
	Metadata  ports.MetadataStore
	// Textures is only used by inspection and may be nil
	Textures ports.TextureInspector
}

// CloneRootResult contains the result of cloning a root
type CloneRootResult struct {
	// Files maps every cloned source path to its destination, root file included
	Files      domain.PathMap
	// Owned is every destination path the clone attributed to the destination
	Owned      domain.PathSet
	Skipped    []MaterialOutcome
	Gaps       int
	RaceModels []domain.RaceCopy
	Purged     int
	ModPack    string
	State      CloneState
	Message    string
}

// CloneRootCommand copies the file graph of one root onto another
type CloneRootCommand struct {
	archive ports.Archive
	codecs  Codecs

	Source            domain.Root
	Destination       domain.Root
	SourceApplication string

	// VariantIndex exposes one variant everywhere; -1 keeps every variant
	VariantIndex    int
	ExportDirectory string

	Catalog  ports.ItemCatalog
	Exporter ports.Exporter
	Progress ports.ProgressSink

	// Tx, when set, is used instead of a transaction of the command's own.
	// The caller then owns commit and rollback.
	Tx ports.Tx

	state CloneState
}

// NewCloneRootCommand creates a new CloneRootCommand
func NewCloneRootCommand(archive ports.Archive, codecs Codecs, source, destination domain.Root, sourceApplication string) *CloneRootCommand {
	return &CloneRootCommand{
		archive:           archive,
		codecs:            codecs,
		Source:            source,
		Destination:       destination,
		SourceApplication: sourceApplication,
		VariantIndex:      -1,
	}
}

// State returns the stage the command reached
func (c *CloneRootCommand) State() CloneState {
	return c.state
}

// Validate checks the roots and options without touching the archive
func (c *CloneRootCommand) Validate() error {
	if err := application.ValidateRequired("sourceApplication", c.SourceApplication); err != nil {
		return err
	}
	if err := application.ValidateRoot("source", c.Source.Info); err != nil {
		return err
	}
	if err := application.ValidateRoot("destination", c.Destination.Info); err != nil {
		return err
	}
	if err := application.ValidateCloneable(c.Source.Info); err != nil {
		return err
	}
	if err := application.ValidateCloneable(c.Destination.Info); err != nil {
		return err
	}
	if c.VariantIndex < -1 {
		return &application.ValidationError{
			Field:   "variantIndex",
			Message: fmt.Sprintf("variant index must be -1 or a variant number, got %d", c.VariantIndex),
		}
	}
	return nil
}

func (c *CloneRootCommand) enter(state CloneState, labels ...string) {
	c.state = state
	log.WithFields(log.Fields{"source": c.Source.Info, "destination": c.Destination.Info}).Debugf("clone %s", state)
	for _, l := range labels {
		c.report(l)
	}
}

func (c *CloneRootCommand) report(label string) {
	if c.Progress != nil {
		c.Progress.Report(label)
	}
}

// Execute runs the clone. When the command owns its transaction, any failure
// rolls it back before the error is returned.
func (c *CloneRootCommand) Execute(ctx context.Context) (*CloneRootResult, error) {
	c.enter(StateValidating, ProgressAnalyzing)
	if err := c.Validate(); err != nil {
		c.state = StateCancelled
		return nil, err
	}
	if err := c.checkLocks(ctx); err != nil {
		c.state = StateCancelled
		return nil, err
	}

	c.Source.Item = c.resolveItem(ctx, c.Source)
	c.Destination.Item = c.resolveItem(ctx, c.Destination)

	start := time.Now()
	result, exported, err := c.execute(ctx)
	status := metrics.Ok
	if err != nil {
		status = metrics.Fail
	}
	metrics.ClonesTotal.WithLabelValues(status).Inc()
	metrics.CloneDurationSeconds.WithLabelValues(status).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if exported != nil {
		c.report(ProgressExporting)
		if err := c.Exporter.Export(c.ExportDirectory, result.ModPack, c.Destination.Item, exported); err != nil {
			return result, fmt.Errorf("failed to export clone to %s: %w", c.ExportDirectory, err)
		}
	}

	c.enter(StateDone, ProgressComplete)
	result.State = StateDone
	log.WithFields(log.Fields{
		"source":      c.Source.Info,
		"destination": c.Destination.Info,
		"files":       result.Files.Len(),
		"skipped":     len(result.Skipped),
		"gaps":        result.Gaps,
		"elapsed":     time.Since(start),
	}).Info("root cloned")
	return result, nil
}

func (c *CloneRootCommand) execute(ctx context.Context) (result *CloneRootResult, exported []ports.ExportedFile, err error) {
	tx := c.Tx
	owned := tx == nil
	if owned {
		pack := &domain.ModPack{
			Name:    domain.DefaultModPackName(c.Source.Item, c.Destination.Item),
			Author:  "System",
			Version: "1.0",
		}
		if tx, err = c.archive.BeginTx(ctx, ports.TxOptions{ModPack: pack}); err != nil {
			return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
	}

	defer func() {
		if err == nil {
			return
		}
		c.state = StateAborting
		if !owned {
			log.WithFields(log.Fields{"source": c.Source.Info, "destination": c.Destination.Info, "err": err}).Warn("clone aborted, caller owns the transaction")
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.WithFields(log.Fields{"tx": tx.ID(), "err": rbErr}).Warn("rollback failed")
		}
		c.state = StateCancelled
		log.WithFields(log.Fields{"source": c.Source.Info, "destination": c.Destination.Info, "err": err}).Warn("clone cancelled")
	}()

	result, err = c.run(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	if c.ExportDirectory != "" && c.Exporter != nil {
		if exported, err = collectExport(ctx, tx, result.Owned); err != nil {
			return nil, nil, err
		}
	}
	if owned {
		c.enter(StateCommitting)
		if err = tx.Commit(); err != nil {
			return nil, nil, fmt.Errorf("failed to commit clone: %w", err)
		}
	}
	return result, exported, nil
}

// run executes every stage from discovery to the ledger update inside tx
func (c *CloneRootCommand) run(ctx context.Context, tx ports.Tx) (*CloneRootResult, error) {
	src, dst := c.Source.Info, c.Destination.Info

	c.enter(StateDiscovering)
	graph, err := c.discover(ctx, tx)
	if err != nil {
		return nil, err
	}

	c.enter(StatePlanning, ProgressCalculating)
	plan := newClonePlan(src, dst, graph)

	c.enter(StatePurging, ProgressPurging)
	purged, err := c.purge(ctx, tx, plan)
	if err != nil {
		return nil, err
	}

	c.enter(StateWritingModels, ProgressModels)
	if err := c.writeModels(ctx, tx, graph, plan); err != nil {
		return nil, err
	}

	c.enter(StateWritingTextures, ProgressTextures)
	if err := c.copyRaw(ctx, tx, "texture", plan.textures); err != nil {
		return nil, err
	}

	c.enter(StateWritingMaterials, ProgressMaterials)
	outcomes, copied, err := c.writeMaterials(ctx, tx, graph, plan)
	if err != nil {
		return nil, err
	}

	c.enter(StateWritingVfx, ProgressVfx)
	if err := c.copyRaw(ctx, tx, "vfx", plan.vfx); err != nil {
		return nil, err
	}

	c.enter(StateReconciling, ProgressPadding)
	if c.VariantIndex >= 0 {
		c.report(ProgressCollapsing)
	}
	c.report(ProgressMetadata)
	meta, races, err := c.reconcile(ctx, tx, graph)
	if err != nil {
		return nil, err
	}
	raceModels := make([]string, len(races))
	for i, rc := range races {
		raceModels[i] = rc.To
	}
	owned := plan.owned.With(raceModels...)

	c.enter(StateBackfilling, ProgressBackfill)
	filled, gaps, err := c.backfill(ctx, tx, meta, plan, copied)
	if err != nil {
		return nil, err
	}
	owned = owned.With(filled...)

	c.enter(StateUpdatingLedger, ProgressLedger)
	modPack := domain.DefaultModPackName(c.Source.Item, c.Destination.Item)
	if pack := tx.ModPack(); pack != nil {
		modPack = pack.Name
	}
	if err := c.updateLedger(ctx, tx, owned, modPack); err != nil {
		return nil, err
	}

	var skipped []MaterialOutcome
	for _, o := range outcomes {
		if o.Status == MaterialSkipped {
			skipped = append(skipped, o)
		}
	}

	files := plan.models.Union(plan.materials, plan.textures, plan.vfx).With(src.RootFile(), dst.RootFile())
	return &CloneRootResult{
		Files:      files,
		Owned:      owned,
		Skipped:    skipped,
		Gaps:       gaps,
		RaceModels: races,
		Purged:     purged,
		ModPack:    modPack,
		State:      c.state,
		Message:    fmt.Sprintf("Cloned %s to %s (%d files)", src, dst, files.Len()),
	}, nil
}

func (c *CloneRootCommand) checkLocks(ctx context.Context) error {
	seen := map[string]bool{}
	for _, root := range []domain.RootInfo{c.Source.Info, c.Destination.Info} {
		partition := domain.PartitionOf(root.RootFile())
		if seen[partition] {
			continue
		}
		seen[partition] = true

		locked, err := c.archive.IsPartitionLocked(ctx, partition)
		if err != nil {
			return fmt.Errorf("failed to check partition %s: %w", partition, err)
		}
		if locked {
			return &application.RejectedError{
				Root:   root,
				Reason: fmt.Sprintf("archive partition %q is in use by another writer", partition),
			}
		}
	}
	return nil
}

// resolveItem returns the root's representative item, falling back to its base file name
func (c *CloneRootCommand) resolveItem(ctx context.Context, root domain.Root) domain.Item {
	if root.Item.Name != "" {
		return root.Item
	}
	if c.Catalog != nil {
		item, err := c.Catalog.FirstItem(ctx, root.Info)
		if err == nil {
			return item
		}
		log.WithFields(log.Fields{"root": root.Info, "err": err}).Debug("no catalog item, using file name")
	}
	return domain.Item{Name: root.Info.BaseFileName(true), Category: string(root.Info.PrimaryType)}
}

// write stores one rewritten file under the destination's attribution
func (c *CloneRootCommand) write(ctx context.Context, tx ports.Tx, data []byte, path, kind string) error {
	if _, err := tx.WriteModFile(ctx, data, path, c.SourceApplication, c.Destination.Item); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	metrics.FilesWrittenTotal.WithLabelValues(kind).Inc()
	metrics.BytesWrittenTotal.Add(float64(len(data)))
	return nil
}

func collectExport(ctx context.Context, tx ports.Tx, owned domain.PathSet) ([]ports.ExportedFile, error) {
	var out []ports.ExportedFile
	for _, p := range owned.Sorted() {
		data, err := tx.ReadFile(ctx, p)
		if errors.Is(err, ports.ErrFileNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s for export: %w", p, err)
		}
		out = append(out, ports.ExportedFile{Path: p, Data: data})
	}
	return out, nil
}
