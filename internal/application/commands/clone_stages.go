package commands

import (
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"rootforge/internal/application"
	"rootforge/internal/domain"
	"rootforge/internal/metrics"
	"rootforge/internal/ports"
)

// MaterialStatus tells whether a material made it to the destination
type MaterialStatus int

const (
	MaterialOk MaterialStatus = iota
	MaterialSkipped
)

func (s MaterialStatus) String() string {
	if s == MaterialOk {
		return "ok"
	}
	return "skipped"
}

// MaterialOutcome is the result of copying one material. Skipped materials
// are compensated for by the material set backfill.
type MaterialOutcome struct {
	Source      string
	Destination string
	Status      MaterialStatus
	Reason      string
}

// materialSource is a discovered source material
type materialSource struct {
	doc     ports.MaterialDocument
	missing bool
	err     error
}

// sourceGraph is everything discovery read from the archive
type sourceGraph struct {
	original *domain.ItemMetadata
	setOne   *domain.ItemMetadata
	previous *domain.ItemMetadata

	models    map[string]ports.ModelDocument
	materials map[string]materialSource
	textures  []string
	vfx       []string
}

func (c *CloneRootCommand) discover(ctx context.Context, tx ports.Tx) (*sourceGraph, error) {
	src, dst := c.Source.Info, c.Destination.Info
	store := c.codecs.Metadata

	original, err := store.GetMetadata(ctx, tx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of %s: %w", src, err)
	}
	g := &sourceGraph{original: original}

	if src.PrimaryType == domain.ItemTypeEquipment && src.PrimaryID == 0 {
		setOne := src
		setOne.PrimaryID = 1
		if g.setOne, err = store.GetMetadata(ctx, tx, setOne); err != nil {
			return nil, fmt.Errorf("failed to read metadata of %s: %w", setOne, err)
		}
	}

	if g.previous, err = store.GetMetadata(ctx, tx, dst); err != nil {
		log.WithFields(log.Fields{"root": dst, "err": err}).Warn("unreadable destination metadata, starting empty")
		g.previous = domain.NewItemMetadata(dst)
	}

	if g.models, err = c.discoverModels(ctx, tx); err != nil {
		return nil, err
	}
	if g.materials, err = c.discoverMaterials(ctx, tx, original, g.models); err != nil {
		return nil, err
	}
	if g.textures, err = discoverTextures(ctx, tx, g.materials); err != nil {
		return nil, err
	}
	if g.vfx, err = discoverVfx(ctx, tx, src, original); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"root":      src,
		"models":    len(g.models),
		"materials": len(g.materials),
		"textures":  len(g.textures),
		"vfx":       len(g.vfx),
	}).Debug("discovered source files")
	return g, nil
}

// modelPaths lists the candidate model files of root: one per deformation
// race for slotted equipment, otherwise the single model
func modelPaths(root domain.RootInfo) []string {
	if !root.HasDeformationTable() {
		return []string{root.ModelPath(domain.RaceHyurMidlanderMale)}
	}
	paths := make([]string, 0, len(domain.DeformationRaces))
	for _, race := range domain.DeformationRaces {
		paths = append(paths, root.ModelPath(race))
	}
	return paths
}

// discoverModels reads every existing model serially from the transaction and
// parses them concurrently. A model that fails to parse aborts the clone.
func (c *CloneRootCommand) discoverModels(ctx context.Context, tx ports.Tx) (map[string]ports.ModelDocument, error) {
	var paths []string
	var raw [][]byte
	for _, p := range modelPaths(c.Source.Info) {
		exists, err := tx.FileExists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", p, err)
		}
		if !exists {
			continue
		}
		data, err := tx.ReadFile(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		paths = append(paths, p)
		raw = append(raw, data)
	}

	docs := make([]ports.ModelDocument, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			doc, err := c.codecs.Models.ParseModel(p, raw[i])
			if err != nil {
				return &application.ParseError{Path: p, Err: err}
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]ports.ModelDocument, len(paths))
	for i, p := range paths {
		out[p] = docs[i]
	}
	return out, nil
}

// materialFolders returns the folders a root's models resolve bare material names in
func materialFolders(root domain.RootInfo, meta *domain.ItemMetadata) []string {
	if !root.UsesVariantTable() {
		return []string{root.HairMaterialRoot().MaterialSetFolder(1)}
	}
	sets := meta.MaterialSets()
	if len(sets) == 0 {
		sets = []int{1}
	}
	folders := make([]string, len(sets))
	for i, set := range sets {
		folders[i] = root.MaterialSetFolder(set)
	}
	return folders
}

// discoverMaterials resolves every model material reference in every material
// set folder. Missing or unreadable materials are recorded, not returned as errors.
func (c *CloneRootCommand) discoverMaterials(ctx context.Context, tx ports.Tx, meta *domain.ItemMetadata, models map[string]ports.ModelDocument) (map[string]materialSource, error) {
	folders := materialFolders(c.Source.Info, meta)
	candidates := domain.NewPathSet()
	for _, doc := range models {
		for _, ref := range doc.MaterialRefs() {
			if ref == "" {
				continue
			}
			if strings.HasPrefix(ref, "/") || !strings.Contains(ref, "/") {
				name := path.Base(ref)
				for _, folder := range folders {
					candidates.Add(folder + name)
				}
				continue
			}
			candidates.Add(ref)
		}
	}

	out := make(map[string]materialSource, len(candidates))
	for _, p := range candidates.Sorted() {
		exists, err := tx.FileExists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", p, err)
		}
		if !exists {
			out[p] = materialSource{missing: true}
			continue
		}
		data, err := tx.ReadFile(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		doc, err := c.codecs.Materials.ParseMaterial(p, data)
		if err != nil {
			out[p] = materialSource{err: err}
			continue
		}
		out[p] = materialSource{doc: doc}
	}
	return out, nil
}

func discoverTextures(ctx context.Context, tx ports.Tx, materials map[string]materialSource) ([]string, error) {
	refs := domain.NewPathSet()
	for _, m := range materials {
		if m.doc == nil {
			continue
		}
		for _, ref := range m.doc.TextureRefs() {
			if ref != "" {
				refs.Add(ref)
			}
		}
	}

	var out []string
	for _, p := range refs.Sorted() {
		exists, err := tx.FileExists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", p, err)
		}
		if !exists {
			log.WithField("path", p).Debug("texture reference does not resolve")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func discoverVfx(ctx context.Context, tx ports.Tx, root domain.RootInfo, meta *domain.ItemMetadata) ([]string, error) {
	if !root.UsesVariantTable() {
		return nil, nil
	}
	var out []string
	for _, id := range meta.VfxIDs() {
		folder, file := root.VfxPathFor(id)
		if folder == "" || file == "" {
			continue
		}
		p := folder + "/" + file
		exists, err := tx.FileExists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", p, err)
		}
		if exists {
			out = append(out, p)
		}
	}
	return out, nil
}

// clonePlan holds the path maps built once during planning
type clonePlan struct {
	models    domain.PathMap
	materials domain.PathMap
	textures  domain.PathMap
	vfx       domain.PathMap
	// materialNames maps source material file names to destination file names
	materialNames map[string]string
	// owned is fixed at planning; later stages extend copies of it
	owned domain.PathSet
}

func newClonePlan(src, dst domain.RootInfo, g *sourceGraph) *clonePlan {
	models := make([]string, 0, len(g.models))
	for p := range g.models {
		models = append(models, p)
	}
	materials := make([]string, 0, len(g.materials))
	for p := range g.materials {
		materials = append(materials, p)
	}

	plan := &clonePlan{
		models:        domain.BuildPathMap(src, dst, models),
		materials:     domain.BuildPathMap(src, dst, materials),
		textures:      domain.BuildPathMap(src, dst, g.textures),
		vfx:           domain.BuildPathMap(src, dst, g.vfx),
		materialNames: map[string]string{},
	}
	for _, old := range plan.materials.Olds() {
		name := path.Base(old)
		if _, ok := plan.materialNames[name]; !ok {
			newPath, _ := plan.materials.Get(old)
			plan.materialNames[name] = path.Base(newPath)
		}
	}

	plan.owned = domain.NewPathSet(dst.RootFile())
	for _, m := range []domain.PathMap{plan.models, plan.materials, plan.textures, plan.vfx} {
		for _, p := range m.Values() {
			plan.owned.Add(p)
		}
	}
	return plan
}

// purgePattern selects the destination modifications a clone replaces: the
// whole folder of a slotless root, otherwise files carrying its base file name
func purgePattern(dst domain.RootInfo) string {
	if dst.IsSlotless() {
		return dst.RootFolder() + "**"
	}
	return dst.RootFolder() + "**/*" + dst.BaseFileName(true) + "*"
}

func (c *CloneRootCommand) purge(ctx context.Context, tx ports.Tx, plan *clonePlan) (int, error) {
	dst := c.Destination.Info
	if c.Source.Info == dst {
		return 0, nil
	}

	mods, err := tx.ModList().Mods(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list modifications: %w", err)
	}

	folder := dst.RootFolder() + "**"
	pattern := purgePattern(dst)
	purged := 0
	for _, mod := range mods {
		if mod.IsInternal() {
			continue
		}
		inRoot, err := doublestar.Match(folder, mod.Path)
		if err != nil {
			return 0, fmt.Errorf("bad purge pattern %q: %w", folder, err)
		}
		if !inRoot {
			continue
		}
		match, err := doublestar.Match(pattern, mod.Path)
		if err != nil {
			return 0, fmt.Errorf("bad purge pattern %q: %w", pattern, err)
		}
		if !match && !plan.owned.Has(mod.Path) {
			continue
		}
		if err := tx.DeleteMod(ctx, mod.Path); err != nil {
			return 0, fmt.Errorf("failed to remove modification %s: %w", mod.Path, err)
		}
		purged++
		log.WithField("path", mod.Path).Debug("purged destination modification")
	}
	return purged, nil
}

// writeModels rewrites and serializes models concurrently, then writes them
// in path order. Unchanged models that keep their path are not rewritten.
func (c *CloneRootCommand) writeModels(ctx context.Context, tx ports.Tx, g *sourceGraph, plan *clonePlan) error {
	olds := plan.models.Olds()
	out := make([][]byte, len(olds))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, old := range olds {
		eg.Go(func() error {
			newPath, _ := plan.models.Get(old)
			doc := g.models[old]
			doc.SetPath(newPath)
			changed := domain.RewriteMaterialRefs(doc, plan.materialNames)
			if !changed && old == newPath {
				return nil
			}
			data, err := c.codecs.Models.SerializeModel(doc)
			if err != nil {
				return &application.ParseError{Path: old, Err: err}
			}
			out[i] = data
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, old := range olds {
		if out[i] == nil {
			continue
		}
		newPath, _ := plan.models.Get(old)
		if err := c.write(ctx, tx, out[i], newPath, "model"); err != nil {
			return err
		}
	}
	return nil
}

// copyRaw duplicates files byte for byte
func (c *CloneRootCommand) copyRaw(ctx context.Context, tx ports.Tx, kind string, files domain.PathMap) error {
	for _, old := range files.Olds() {
		newPath, _ := files.Get(old)
		if old == newPath {
			continue
		}
		if err := tx.CopyFile(ctx, old, newPath, c.SourceApplication, c.Destination.Item); err != nil {
			return fmt.Errorf("failed to copy %s to %s: %w", old, newPath, err)
		}
		metrics.FilesWrittenTotal.WithLabelValues(kind).Inc()
	}
	return nil
}

// writeMaterials copies every discovered material. Missing and unreadable
// materials become skipped outcomes; only archive write failures are errors.
// The returned set holds the destination paths that now have a material.
func (c *CloneRootCommand) writeMaterials(ctx context.Context, tx ports.Tx, g *sourceGraph, plan *clonePlan) ([]MaterialOutcome, domain.PathSet, error) {
	copied := domain.NewPathSet()
	var outcomes []MaterialOutcome

	for _, old := range plan.materials.Olds() {
		newPath, _ := plan.materials.Get(old)
		outcome := MaterialOutcome{Source: old, Destination: newPath, Status: MaterialOk}
		src := g.materials[old]

		switch {
		case src.missing:
			outcome.Status, outcome.Reason = MaterialSkipped, "source material does not exist"
		case src.err != nil:
			outcome.Status, outcome.Reason = MaterialSkipped, src.err.Error()
		default:
			src.doc.SetPath(newPath)
			changed := domain.RewriteTextureRefs(src.doc, plan.textures)
			if changed || old != newPath {
				data, err := c.codecs.Materials.SerializeMaterial(src.doc)
				if err != nil {
					outcome.Status, outcome.Reason = MaterialSkipped, err.Error()
					break
				}
				if err := c.write(ctx, tx, data, newPath, "material"); err != nil {
					return nil, nil, err
				}
			}
		}

		if outcome.Status == MaterialOk {
			copied.Add(newPath)
		} else {
			metrics.MaterialsSkippedTotal.Inc()
			entry := log.WithFields(log.Fields{"path": old, "reason": outcome.Reason})
			if src.missing {
				entry.Debug("skipping material")
			} else {
				entry.Warn("skipping material")
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, copied, nil
}

// reconcile builds, saves and applies the destination metadata, then copies
// in any per-race models the new deformation flags require
func (c *CloneRootCommand) reconcile(ctx context.Context, tx ports.Tx, g *sourceGraph) (*domain.ItemMetadata, []domain.RaceCopy, error) {
	dst := c.Destination.Info
	meta, report := domain.Reconcile(domain.ReconcileInput{
		Source:       c.Source.Info,
		Destination:  dst,
		Original:     g.original,
		SetOne:       g.setOne,
		Previous:     g.previous,
		VariantIndex: c.VariantIndex,
	})
	log.WithFields(log.Fields{
		"root":      dst,
		"variants":  len(meta.Variants),
		"padded":    report.Padded,
		"collapsed": report.Collapsed,
		"fixed":     report.MaterialSetsFixed,
	}).Debug("reconciled metadata")

	if err := c.codecs.Metadata.SaveMetadata(ctx, tx, meta, c.SourceApplication, c.Destination.Item); err != nil {
		return nil, nil, fmt.Errorf("failed to save metadata of %s: %w", dst, err)
	}
	if err := c.codecs.Metadata.ApplyMetadata(ctx, tx, meta); err != nil {
		return nil, nil, fmt.Errorf("failed to apply metadata of %s: %w", dst, err)
	}

	var existsErr error
	exists := func(p string) bool {
		ok, err := tx.FileExists(ctx, p)
		if err != nil && existsErr == nil {
			existsErr = err
		}
		return ok
	}
	copies, err := domain.PlanRaceModels(dst, g.previous, meta, exists)
	if existsErr != nil {
		return nil, nil, fmt.Errorf("failed to check race models: %w", existsErr)
	}
	var synth *domain.SynthesisError
	if errors.As(err, &synth) {
		return nil, nil, &application.SynthesisError{Err: synth}
	}
	if err != nil {
		return nil, nil, err
	}

	for _, cp := range copies {
		if err := tx.CopyFile(ctx, cp.From, cp.To, c.SourceApplication, c.Destination.Item); err != nil {
			return nil, nil, fmt.Errorf("failed to create %s model: %w", cp.Race, err)
		}
		metrics.RaceModelsCreatedTotal.Inc()
		log.WithFields(log.Fields{"race": cp.Race, "base": cp.Base, "path": cp.To}).Info("created race model")
	}
	return meta, copies, nil
}

// backfill gives every material set of the destination every material file
// name, copying from a sibling set where the clone produced it. Names with
// no sibling copy are left as gaps. Returns the filled paths.
func (c *CloneRootCommand) backfill(ctx context.Context, tx ports.Tx, meta *domain.ItemMetadata, plan *clonePlan, copied domain.PathSet) (filled []string, gaps int, err error) {
	dst := c.Destination.Info
	if !dst.UsesVariantTable() {
		return nil, 0, nil
	}

	setRoot := dst.RootFolder() + "material/v"
	names := domain.NewPathSet()
	for _, p := range plan.materials.Values() {
		if strings.HasPrefix(p, setRoot) {
			names.Add(path.Base(p))
		}
	}

	sets := meta.MaterialSets()
	for _, set := range sets {
		for _, name := range names.Sorted() {
			target := dst.MaterialSetFolder(set) + name
			if copied.Has(target) {
				continue
			}

			from := ""
			for _, other := range sets {
				if p := dst.MaterialSetFolder(other) + name; copied.Has(p) {
					from = p
					break
				}
			}
			if from == "" {
				gaps++
				metrics.BackfillGapsTotal.Inc()
				log.WithFields(log.Fields{"path": target}).Warn("no sibling material to fill material set")
				continue
			}

			if err := tx.CopyFile(ctx, from, target, c.SourceApplication, c.Destination.Item); err != nil {
				return nil, 0, fmt.Errorf("failed to fill %s: %w", target, err)
			}
			filled = append(filled, target)
			metrics.FilesWrittenTotal.WithLabelValues("material").Inc()
			log.WithFields(log.Fields{"from": from, "path": target}).Debug("filled material set")
		}
	}
	return filled, gaps, nil
}

// updateLedger attributes every owned ledger entry to the destination item
func (c *CloneRootCommand) updateLedger(ctx context.Context, tx ports.Tx, owned domain.PathSet, modPack string) error {
	list := tx.ModList()
	mods, err := list.Mods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list modifications: %w", err)
	}
	for _, mod := range mods {
		if !owned.Has(mod.Path) {
			continue
		}
		mod.ItemName = c.Destination.Item.Name
		mod.ItemCategory = c.Destination.Item.Category
		mod.SourceApplication = c.SourceApplication
		mod.ModPack = modPack
		if err := list.AddOrUpdateMod(ctx, mod); err != nil {
			return fmt.Errorf("failed to update modification %s: %w", mod.Path, err)
		}
	}
	return nil
}
