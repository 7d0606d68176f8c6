// Package report renders archive state and command results as plain text
// for the CLI and the MCP tools.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"

	"rootforge/internal/application/commands"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// FormatInspection renders an inspection as plain text
func FormatInspection(r *commands.InspectRootResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s (%s)\n", r.Root, r.Item.Name, r.Item.Category)

	fmt.Fprintf(&sb, "\nVariants: %d\n", len(r.Metadata.Variants))
	for i, v := range r.Metadata.Variants {
		fmt.Fprintf(&sb, "  %2d  set %d  decal %d  vfx %d  anim %d  mask %#03x\n", i, v.MaterialSet, v.Decal, v.Vfx, v.Animation, v.Mask)
	}

	var races []string
	for _, race := range domain.DeformationRaces {
		if r.Metadata.HasModel(race) {
			races = append(races, race.Code())
		}
	}
	if len(races) > 0 {
		fmt.Fprintf(&sb, "Race models: %s\n", strings.Join(races, " "))
	}

	fmt.Fprintf(&sb, "\nFiles: %d\n", len(r.Files))
	for _, f := range r.Files {
		mark := " "
		if f.Modified {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s %-8s %8s  %s", mark, f.Kind, humanize.Bytes(uint64(f.Size)), f.Path)
		if f.Texture != "" {
			fmt.Fprintf(&sb, "  [%s]", f.Texture)
		}
		sb.WriteByte('\n')
	}
	for _, p := range r.Missing {
		fmt.Fprintf(&sb, "! missing  %s\n", p)
	}
	return sb.String()
}

// ListMods returns the committed ledger entries matching glob
func ListMods(ctx context.Context, archive ports.Archive, glob string, includeInternal bool) ([]domain.ModEntry, error) {
	tx, err := archive.BeginTx(ctx, ports.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	mods, err := tx.ModList().Mods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list modifications: %w", err)
	}

	var out []domain.ModEntry
	for _, mod := range mods {
		if mod.IsInternal() && !includeInternal {
			continue
		}
		if glob != "" {
			ok, err := doublestar.Match(glob, mod.Path)
			if err != nil {
				return nil, fmt.Errorf("invalid glob %q: %w", glob, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, mod)
	}
	return out, nil
}

// FormatMod renders one ledger entry on a line
func FormatMod(m domain.ModEntry) string {
	return fmt.Sprintf("%s  %s  [%s]  %s", m.Path, m.ItemName, m.ModPack, m.SourceApplication)
}

// FormatClone renders a clone result as plain text
func FormatClone(r *commands.CloneRootResult, stages []string) string {
	var sb strings.Builder
	for _, s := range stages {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\n%s\nMod pack: %s\n", r.Message, r.ModPack)
	if r.Purged > 0 {
		fmt.Fprintf(&sb, "Removed %d existing modifications\n", r.Purged)
	}
	for _, rc := range r.RaceModels {
		fmt.Fprintf(&sb, "Created %s model from %s\n", rc.Race, rc.Base)
	}
	for _, o := range r.Skipped {
		fmt.Fprintf(&sb, "Skipped %s: %s\n", o.Source, o.Reason)
	}
	if r.Gaps > 0 {
		fmt.Fprintf(&sb, "%d material set entries could not be filled\n", r.Gaps)
	}

	sb.WriteString("\n")
	sb.WriteString(FormatFileMap(r.Files))
	return sb.String()
}

// FormatFileMap renders one "old -> new" line per pair in old-path order
func FormatFileMap(files domain.PathMap) string {
	var sb strings.Builder
	files.Each(func(oldPath, newPath string) {
		fmt.Fprintf(&sb, "%s -> %s\n", oldPath, newPath)
	})
	return sb.String()
}

// FormatBatch renders a batch result: one summary line per clone, then the
// paths that were reset
func FormatBatch(r *commands.CloneAndResetBatchResult) string {
	var sb strings.Builder
	for _, c := range r.Clones {
		fmt.Fprintf(&sb, "%s\n", c.Message)
		if len(c.Skipped) > 0 || c.Gaps > 0 {
			fmt.Fprintf(&sb, "  %d skipped materials, %d unfilled material set entries\n", len(c.Skipped), c.Gaps)
		}
	}
	fmt.Fprintf(&sb, "\n%s\n", r.Message)
	for _, p := range r.Cleared.Sorted() {
		fmt.Fprintf(&sb, "reset %s\n", p)
	}
	return sb.String()
}
