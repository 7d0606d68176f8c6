package commands

import (
	"context"
	"testing"

	"rootforge/internal/adapters/gltfmodel"
	"rootforge/internal/adapters/jsonmtrl"
	"rootforge/internal/adapters/memory"
	"rootforge/internal/adapters/metafile"
	"rootforge/internal/adapters/texture"
	"rootforge/internal/domain"
	"rootforge/internal/ports"
)

const testApp = "test"

var (
	shirt12 = domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 12, Slot: "top"}
	shirt87 = domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 87, Slot: "top"}
	shirt99 = domain.RootInfo{PrimaryType: domain.ItemTypeEquipment, PrimaryID: 99, Slot: "top"}
)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	archive *memory.Archive
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), archive: memory.NewArchive()}
}

func (f *fixture) codecs() Codecs {
	return Codecs{
		Models:    gltfmodel.NewCodec(),
		Materials: jsonmtrl.NewCodec(),
		Metadata:  metafile.NewStore(),
		Textures:  texture.Inspector{},
	}
}

// base stores files as unmodified archive content
func (f *fixture) base(files map[string][]byte) {
	f.t.Helper()
	for p, data := range files {
		if _, err := f.archive.ImportFile(f.ctx, p, data); err != nil {
			f.t.Fatalf("ImportFile(%s) failed: %v", p, err)
		}
	}
}

// mods stores files as committed modifications from sourceApplication
func (f *fixture) mods(sourceApplication string, files map[string][]byte) {
	f.t.Helper()
	tx, err := f.archive.BeginTx(f.ctx, ports.TxOptions{})
	if err != nil {
		f.t.Fatalf("BeginTx failed: %v", err)
	}
	item := domain.Item{Name: "Imported", Category: "Imported"}
	for p, data := range files {
		if _, err := tx.WriteModFile(f.ctx, data, p, sourceApplication, item); err != nil {
			f.t.Fatalf("WriteModFile(%s) failed: %v", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		f.t.Fatalf("Commit failed: %v", err)
	}
}

// metadata reads the committed metadata of root
func (f *fixture) metadata(root domain.RootInfo) *domain.ItemMetadata {
	f.t.Helper()
	tx, err := f.archive.BeginTx(f.ctx, ports.TxOptions{ReadOnly: true})
	if err != nil {
		f.t.Fatalf("BeginTx failed: %v", err)
	}
	defer tx.Rollback()
	meta, err := metafile.NewStore().GetMetadata(f.ctx, tx, root)
	if err != nil {
		f.t.Fatalf("GetMetadata(%s) failed: %v", root, err)
	}
	return meta
}

func (f *fixture) clone(src, dst domain.RootInfo) *CloneRootCommand {
	cmd := NewCloneRootCommand(f.archive, f.codecs(), domain.Root{Info: src}, domain.Root{Info: dst}, testApp)
	cmd.Catalog = f.archive
	return cmd
}

func modelBytes(t *testing.T, materials ...string) []byte {
	t.Helper()
	data, err := gltfmodel.Encode(gltfmodel.NewDocument(materials...))
	if err != nil {
		t.Fatalf("encoding model failed: %v", err)
	}
	return data
}

func modelRefs(t *testing.T, data string) []string {
	t.Helper()
	doc, err := gltfmodel.NewCodec().ParseModel("model.mdl", []byte(data))
	if err != nil {
		t.Fatalf("ParseModel failed: %v", err)
	}
	return doc.MaterialRefs()
}

func materialBytes(t *testing.T, p, shader string, textures ...string) []byte {
	t.Helper()
	var slots []jsonmtrl.Texture
	for _, tex := range textures {
		slots = append(slots, jsonmtrl.Texture{Path: tex, Usage: "normal"})
	}
	data, err := jsonmtrl.Encode(p, shader, slots...)
	if err != nil {
		t.Fatalf("encoding material failed: %v", err)
	}
	return data
}

func materialTextures(t *testing.T, data string) []string {
	t.Helper()
	doc, err := jsonmtrl.NewCodec().ParseMaterial("material.mtrl", []byte(data))
	if err != nil {
		t.Fatalf("ParseMaterial failed: %v", err)
	}
	return doc.TextureRefs()
}

func materialName(root domain.RootInfo, suffix string) string {
	return "mt_" + root.RaceFileName(domain.RaceHyurMidlanderMale) + "_" + suffix + ".mtrl"
}

func materialPath(root domain.RootInfo, set int, suffix string) string {
	return root.MaterialSetFolder(set) + materialName(root, suffix)
}

func normalTexture(root domain.RootInfo) string {
	return root.RootFolder() + "texture/v01_" + root.RaceFileName(domain.RaceHyurMidlanderMale) + "_n.tex"
}

const dummyTexture = "chara/common/texture/dummy.tex"

// simpleRoot is a one-variant equipment root with one model, one material and one texture
func simpleRoot(t *testing.T, root domain.RootInfo, tag string) map[string][]byte {
	t.Helper()
	meta := domain.NewItemMetadata(root)
	meta.Variants = []domain.VariantEntry{{MaterialSet: 1, Mask: 0x3FF}}
	meta.Deformations[domain.RaceHyurMidlanderMale] = domain.DeformationFlags{Enabled: true, HasModel: true}

	mat := materialPath(root, 1, "a")
	return map[string][]byte{
		root.RootFile(): metafile.Encode(meta),
		root.ModelPath(domain.RaceHyurMidlanderMale): modelBytes(t, "/"+materialName(root, "a")),
		mat:                 materialBytes(t, mat, "character-"+tag, normalTexture(root)),
		normalTexture(root): []byte("texture-" + tag),
	}
}

func pathsOf(files map[string][]byte) []string {
	set := domain.NewPathSet()
	for p := range files {
		set.Add(p)
	}
	return set.Sorted()
}

type recordingSink struct {
	labels []string
}

func (r *recordingSink) Report(stage string) {
	r.labels = append(r.labels, stage)
}

type recordingExporter struct {
	dir     string
	modPack string
	item    domain.Item
	files   []ports.ExportedFile
	err     error
}

func (r *recordingExporter) Export(dir, modPack string, item domain.Item, files []ports.ExportedFile) error {
	r.dir, r.modPack, r.item, r.files = dir, modPack, item, files
	return r.err
}
