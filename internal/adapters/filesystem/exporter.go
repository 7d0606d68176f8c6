package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"rootforge/internal/adapters/texture"
	"rootforge/internal/config"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

// ManifestName is the file written next to the exported files
const ManifestName = "manifest.yaml"

// Manifest describes one exported clone
type Manifest struct {
	ModPack  string          `yaml:"mod_pack"`
	Item     string          `yaml:"item"`
	Category string          `yaml:"category"`
	Exported time.Time       `yaml:"exported"`
	Files    []ManifestEntry `yaml:"files"`
}

// ManifestEntry is one exported file
type ManifestEntry struct {
	Path    string        `yaml:"path"`
	Size    int           `yaml:"size"`
	Human   string        `yaml:"human_size"`
	Texture *texture.Info `yaml:"texture,omitempty"`
}

// Exporter implements ports.Exporter by writing archive paths below a directory
type Exporter struct {
	now func() time.Time
}

var _ ports.Exporter = (*Exporter)(nil)

// NewExporter creates a new filesystem exporter
func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// Export writes every file at dir/<archive path> and a manifest listing them
func (e *Exporter) Export(dir, modPack string, item domain.Item, files []ports.ExportedFile) error {
	dir = config.ExpandHome(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	manifest := Manifest{
		ModPack:  modPack,
		Item:     item.Name,
		Category: item.Category,
		Exported: e.now().UTC(),
	}

	var total uint64
	for _, f := range files {
		target, err := exportPath(dir, f.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, f.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}

		entry := ManifestEntry{Path: f.Path, Size: len(f.Data), Human: humanize.Bytes(uint64(len(f.Data)))}
		if strings.HasSuffix(f.Path, ".tex") {
			if info, err := texture.Inspect(f.Data); err == nil {
				entry.Texture = &info
			}
		}
		manifest.Files = append(manifest.Files, entry)
		total += uint64(len(f.Data))
	}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	log.WithFields(log.Fields{
		"dir":   dir,
		"files": len(files),
		"size":  humanize.Bytes(total),
	}).Info("exported clone")
	return nil
}

// exportPath maps an archive path below dir, refusing paths that would escape it
func exportPath(dir, archivePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(archivePath))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to export %q outside %s", archivePath, dir)
	}
	return filepath.Join(dir, clean), nil
}

// ReadManifest loads the manifest of an export directory
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(config.ExpandHome(dir), ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
