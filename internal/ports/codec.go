package ports

import (
	"context"

	"rootforge/internal/domain"
)

// ModelDocument is a parsed model. MaterialRefs has one entry per material
// slot referenced by the model's mesh groups.
type ModelDocument interface {
	domain.MaterialReferencer
	Path() string
	SetPath(path string)
}

// ModelCodec converts between model bytes and documents
type ModelCodec interface {
	ParseModel(path string, data []byte) (ModelDocument, error)
	SerializeModel(doc ModelDocument) ([]byte, error)
}

// MaterialDocument is a parsed material
type MaterialDocument interface {
	domain.TextureReferencer
	Path() string
	SetPath(path string)
}

// MaterialCodec converts between material bytes and documents
type MaterialCodec interface {
	ParseMaterial(path string, data []byte) (MaterialDocument, error)
	SerializeMaterial(doc MaterialDocument) ([]byte, error)
}

// MetadataStore reads and writes root metadata
type MetadataStore interface {
	// GetMetadata returns the root's metadata, building it from the placement
	// tables when the root has no metadata file
	GetMetadata(ctx context.Context, tx Tx, root domain.RootInfo) (*domain.ItemMetadata, error)
	// SaveMetadata writes the metadata file of meta.Root
	SaveMetadata(ctx context.Context, tx Tx, meta *domain.ItemMetadata, sourceApplication string, item domain.Item) error
	// ApplyMetadata propagates meta into the placement tables
	ApplyMetadata(ctx context.Context, tx Tx, meta *domain.ItemMetadata) error
}

// TextureInspector summarizes a texture header for display
type TextureInspector interface {
	DescribeTexture(data []byte) (string, error)
}

// ProgressSink receives human-readable stage labels in order
type ProgressSink interface {
	Report(stage string)
}

// ExportedFile is one file handed to an Exporter
type ExportedFile struct {
	Path string
	Data []byte
}

// Exporter writes a finished clone somewhere outside the archive
type Exporter interface {
	Export(dir, modPack string, item domain.Item, files []ExportedFile) error
}
