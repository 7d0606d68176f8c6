package commands

import (
	"context"
	"fmt"

	"rootforge/internal/application"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// InspectedFile is one file a clone of the inspected root would carry
type InspectedFile struct {
	Path     string
	Kind     string
	Size     int
	Modified bool
	// Texture is the texture header summary, empty for other kinds
	Texture string
}

// InspectRootResult contains the result of inspecting a root
type InspectRootResult struct {
	Root     domain.RootInfo
	Item     domain.Item
	Metadata *domain.ItemMetadata
	Files    []InspectedFile
	// Missing lists material paths referenced by a model that do not resolve
	Missing []string
}

// InspectRootCommand reports a root's metadata and file graph without writing anything
type InspectRootCommand struct {
	archive ports.Archive
	codecs  Codecs

	Root    domain.Root
	Catalog ports.ItemCatalog
}

// NewInspectRootCommand creates a new InspectRootCommand
func NewInspectRootCommand(archive ports.Archive, codecs Codecs, root domain.Root) *InspectRootCommand {
	return &InspectRootCommand{
		archive: archive,
		codecs:  codecs,
		Root:    root,
	}
}

// Execute performs the inspection inside a read-only transaction
func (c *InspectRootCommand) Execute(ctx context.Context) (*InspectRootResult, error) {
	if err := application.ValidateRoot("source", c.Root.Info); err != nil {
		return nil, err
	}
	if err := application.ValidateCloneable(c.Root.Info); err != nil {
		return nil, err
	}

	tx, err := c.archive.BeginTx(ctx, ports.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Discovery is shared with a clone of the root onto itself.
	discovery := &CloneRootCommand{codecs: c.codecs, Source: c.Root, Destination: c.Root, Catalog: c.Catalog}
	graph, err := discovery.discover(ctx, tx)
	if err != nil {
		return nil, err
	}

	result := &InspectRootResult{
		Root:     c.Root.Info,
		Item:     discovery.resolveItem(ctx, c.Root),
		Metadata: graph.original,
	}

	var paths []string
	kinds := map[string]string{}
	add := func(kind, p string) {
		if _, ok := kinds[p]; !ok {
			paths = append(paths, p)
		}
		kinds[p] = kind
	}
	if exists, err := tx.FileExists(ctx, c.Root.Info.RootFile()); err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", c.Root.Info.RootFile(), err)
	} else if exists {
		add("meta", c.Root.Info.RootFile())
	}
	for _, p := range sortedKeys(graph.models) {
		add("model", p)
	}
	for _, p := range sortedKeys(graph.materials) {
		if graph.materials[p].missing {
			result.Missing = append(result.Missing, p)
			continue
		}
		add("material", p)
	}
	for _, p := range graph.textures {
		add("texture", p)
	}
	for _, p := range graph.vfx {
		add("vfx", p)
	}

	list := tx.ModList()
	for _, p := range paths {
		data, err := tx.ReadFile(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		mod, err := list.Mod(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger entry of %s: %w", p, err)
		}

		f := InspectedFile{Path: p, Kind: kinds[p], Size: len(data), Modified: mod != nil && !mod.IsInternal()}
		if f.Kind == "texture" && c.codecs.Textures != nil {
			if desc, err := c.codecs.Textures.DescribeTexture(data); err == nil {
				f.Texture = desc
			}
		}
		result.Files = append(result.Files, f)
	}
	return result, nil
}

func sortedKeys[V any](m map[string]V) []string {
	set := domain.NewPathSet()
	for k := range m {
		set.Add(k)
	}
	return set.Sorted()
}
